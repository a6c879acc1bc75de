package events

import (
	"github.com/toolforge/jobs-emailer/model"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// fakePod builds pods shaped like the ones the jobs framework creates.
// Zero-valued fields fall back to a plain pending job pod for the
// "test-account" tool.
type fakePod struct {
	namespace      string
	account        string
	component      string
	name           string
	jobName        string
	emails         EmailsConfig
	phase          corev1.PodPhase
	containerState string // "waiting", "running", "terminated" or "" for none
	reason         string
	message        string
	exitCode       int32
	restartCount   int32
	deleted        bool
	noToolforge    bool
	managedBy      string
}

func (f fakePod) build() *corev1.Pod {
	if f.namespace == "" {
		f.namespace = "tool-test-account"
	}
	if f.account == "" {
		f.account = "test-account"
	}
	if f.component == "" {
		f.component = model.ComponentJobs
	}
	if f.name == "" {
		f.name = "fake-pod-name"
	}
	if f.jobName == "" {
		f.jobName = "mytestjob"
	}
	if f.emails == "" {
		f.emails = EmailsNone
	}
	if f.phase == "" {
		f.phase = corev1.PodPending
	}
	if f.managedBy == "" {
		f.managedBy = model.JobsFrameworkValue
	}

	toolforge := model.ToolforgeToolValue
	if f.noToolforge {
		toolforge = ""
	}

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      f.name,
			Namespace: f.namespace,
			Labels: map[string]string{
				model.LabelToolforge: toolforge,
				model.LabelManagedBy: f.managedBy,
				model.LabelCreatedBy: f.account,
				model.LabelComponent: f.component,
				model.LabelJobName:   f.jobName,
				model.LabelEmails:    string(f.emails),
			},
		},
		Status: corev1.PodStatus{Phase: f.phase},
	}

	if f.deleted {
		now := metav1.Now()
		pod.DeletionTimestamp = &now
	}

	var state corev1.ContainerState
	switch f.containerState {
	case "waiting":
		state.Waiting = &corev1.ContainerStateWaiting{Reason: f.reason, Message: f.message}
	case "running":
		state.Running = &corev1.ContainerStateRunning{StartedAt: metav1.Now()}
	case "terminated":
		state.Terminated = &corev1.ContainerStateTerminated{
			Reason:     f.reason,
			Message:    f.message,
			ExitCode:   f.exitCode,
			StartedAt:  metav1.Now(),
			FinishedAt: metav1.Now(),
		}
	case "":
		return pod
	}

	pod.Status.ContainerStatuses = []corev1.ContainerStatus{{
		State:        state,
		RestartCount: f.restartCount,
	}}
	return pod
}

// okSequence resembles a good pod run: pending, running, then succeeded.
func okSequence(account, jobName string, emails EmailsConfig) []*corev1.Pod {
	return []*corev1.Pod{
		fakePod{account: account, jobName: jobName, emails: emails,
			phase: corev1.PodPending, containerState: "waiting"}.build(),
		fakePod{account: account, jobName: jobName, emails: emails,
			phase: corev1.PodRunning, containerState: "running"}.build(),
		fakePod{account: account, jobName: jobName, emails: emails,
			phase: corev1.PodSucceeded, containerState: "terminated"}.build(),
	}
}

// failedSequence resembles a bad pod run, ending in a non-zero exit.
func failedSequence(account, jobName string, emails EmailsConfig) []*corev1.Pod {
	return []*corev1.Pod{
		fakePod{account: account, jobName: jobName, emails: emails,
			phase: corev1.PodPending, containerState: "waiting"}.build(),
		fakePod{account: account, jobName: jobName, emails: emails,
			phase: corev1.PodRunning, containerState: "running"}.build(),
		fakePod{account: account, jobName: jobName, emails: emails,
			phase: corev1.PodFailed, containerState: "terminated", exitCode: 99,
			reason: "fake failure", message: "this is a fake failure"}.build(),
	}
}
