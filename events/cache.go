package events

import (
	"fmt"
	"sync"

	"github.com/toolforge/jobs-emailer/model"

	"github.com/rs/zerolog/log"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/watch"
)

// Job accumulates the event messages seen for one job of one user.
type Job struct {
	Name         string
	Type         string
	EmailsConfig EmailsConfig
	Events       []string
}

// UserJobs groups all cached jobs for a single tool account. One UserJobs
// becomes one email when the compose loop drains the cache.
type UserJobs struct {
	Username string
	Jobs     []*Job
}

// Cache collects relevant pod events between compose runs, keyed
// user → job. Hundreds of events can land at the same time, so access is
// mutex-guarded and the compose loop swaps the whole thing out at once.
type Cache struct {
	mu    sync.Mutex
	users map[string]*UserJobs
	order []string
}

func NewCache() *Cache {
	return &Cache{users: make(map[string]*UserJobs)}
}

// Add validates the event's relevance and caches its message. Returns
// ErrEventNotRelevant (wrapped) for events the filter rejects.
func (c *Cache) Add(eventType watch.EventType, pod *corev1.Pod) error {
	log.Debug().Str("pod", pod.Namespace+"/"+pod.Name).Msg("evaluating event relevance")

	if err := Relevant(eventType, pod); err != nil {
		return err
	}

	username := pod.Labels[model.LabelCreatedBy]
	jobname := pod.Labels[model.LabelJobName]
	jobtype := pod.Labels[model.LabelComponent]
	emails := EmailsConfig(pod.Labels[model.LabelEmails])
	message := eventMessage(pod)

	c.mu.Lock()
	defer c.mu.Unlock()

	user, ok := c.users[username]
	if !ok {
		user = &UserJobs{Username: username}
		c.users[username] = user
		c.order = append(c.order, username)
	}

	var job *Job
	for _, j := range user.Jobs {
		if j.Name == jobname {
			job = j
			break
		}
	}
	if job == nil {
		job = &Job{Name: jobname, Type: jobtype, EmailsConfig: emails}
		user.Jobs = append(user.Jobs, job)
	}
	job.Events = append(job.Events, message)

	log.Info().Str("user", username).Str("job", jobname).
		Str("pod", pod.Namespace+"/"+pod.Name).Msg("caching event")
	log.Debug().Str("message", message).Msg("cached event message")

	return nil
}

// DrainAll returns every cached user group in first-seen order and resets
// the cache in the same critical section, so no event can slip between
// the snapshot and the reset.
func (c *Cache) DrainAll() []*UserJobs {
	c.mu.Lock()
	defer c.mu.Unlock()

	drained := make([]*UserJobs, 0, len(c.order))
	for _, username := range c.order {
		drained = append(drained, c.users[username])
	}

	c.users = make(map[string]*UserJobs)
	c.order = nil

	return drained
}

// Len returns the number of users with cached events.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.users)
}

// eventMessage renders a human-readable line from the pod's first container
// status. Jobs run a single container, but a pod fresh out of the scheduler
// may not have any status yet.
func eventMessage(pod *corev1.Pod) string {
	if len(pod.Status.ContainerStatuses) == 0 {
		return fmt.Sprintf("A pod named '%s' entered phase '%s'.", pod.Name, pod.Status.Phase)
	}

	status := pod.Status.ContainerStatuses[0]
	state := status.State

	switch {
	case state.Terminated != nil:
		t := state.Terminated
		return fmt.Sprintf(
			"A pod named '%s' was created at %s. It was restarted %d times. "+
				"It finished at %s with exit code %d. The reason was '%s' with message '%s'.",
			pod.Name, t.StartedAt, status.RestartCount, t.FinishedAt, t.ExitCode, t.Reason, t.Message,
		)
	case state.Running != nil:
		return fmt.Sprintf(
			"A pod named '%s' started running at %s. It was restarted %d times so far.",
			pod.Name, state.Running.StartedAt, status.RestartCount,
		)
	case state.Waiting != nil:
		return fmt.Sprintf(
			"A pod named '%s' is waiting. The reason is '%s' with message '%s'.",
			pod.Name, state.Waiting.Reason, state.Waiting.Message,
		)
	}

	return fmt.Sprintf("A pod named '%s' entered phase '%s'.", pod.Name, pod.Status.Phase)
}
