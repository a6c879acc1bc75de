package events

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/toolforge/jobs-emailer/model"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/watch"
)

// ErrEventNotRelevant marks pod events the emailer doesn't care about.
// Callers use errors.Is to tell "filtered" apart from real failures.
var ErrEventNotRelevant = errors.New("job event not relevant")

// EmailsConfig is the per-job notification choice users set via the
// jobs.toolforge.org/emails label.
type EmailsConfig string

const (
	EmailsNone      EmailsConfig = "none"
	EmailsAll       EmailsConfig = "all"
	EmailsOnFinish  EmailsConfig = "onfinish"
	EmailsOnFailure EmailsConfig = "onfailure"
)

var relevantComponents = []string{
	model.ComponentJobs,
	model.ComponentCronjobs,
	model.ComponentDeployments,
}

// Relevant decides whether a pod watch event should produce a notification.
// Every rejection reason is wrapped around ErrEventNotRelevant.
func Relevant(eventType watch.EventType, pod *corev1.Pod) error {
	if !strings.HasPrefix(pod.Namespace, model.ToolNamespacePrefix) {
		return fmt.Errorf("%w: not interested in namespace '%s'", ErrEventNotRelevant, pod.Namespace)
	}

	labels := pod.Labels
	if labels[model.LabelToolforge] != model.ToolforgeToolValue {
		return fmt.Errorf("%w: not related to a toolforge tool", ErrEventNotRelevant)
	}
	if labels[model.LabelManagedBy] != model.JobsFrameworkValue {
		return fmt.Errorf("%w: not managed by %s", ErrEventNotRelevant, model.JobsFrameworkValue)
	}

	component := labels[model.LabelComponent]
	if !slices.Contains(relevantComponents, component) {
		return fmt.Errorf("%w: pod not created by a proper component: '%s'", ErrEventNotRelevant, component)
	}

	if eventType != watch.Modified {
		return fmt.Errorf("%w: not MODIFIED type: %s", ErrEventNotRelevant, eventType)
	}
	if pod.DeletionTimestamp != nil {
		return fmt.Errorf("%w: object being deleted", ErrEventNotRelevant)
	}

	phase := pod.Status.Phase
	// https://kubernetes.io/docs/concepts/workloads/pods/pod-lifecycle/#pod-phase
	if phase != corev1.PodRunning && phase != corev1.PodSucceeded && phase != corev1.PodFailed {
		return fmt.Errorf("%w: pod phase not relevant: %s", ErrEventNotRelevant, phase)
	}

	emails := EmailsConfig(labels[model.LabelEmails])
	if !wantsNotification(emails, phase) {
		return fmt.Errorf("%w: per user request, label set to '%s'", ErrEventNotRelevant, emails)
	}

	return nil
}

func wantsNotification(emails EmailsConfig, phase corev1.PodPhase) bool {
	switch emails {
	case EmailsAll:
		return true
	case EmailsOnFinish:
		return phase == corev1.PodSucceeded || phase == corev1.PodFailed
	case EmailsOnFailure:
		return phase == corev1.PodFailed
	}
	// "none", missing or unknown: default to ignore
	return false
}
