package events

import (
	"context"
	"errors"
	"time"

	"github.com/toolforge/jobs-emailer/settings"

	"github.com/rs/zerolog/log"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"
	"k8s.io/utils/ptr"
)

// Watcher streams pod events from the API server into the cache.
type Watcher struct {
	client kubernetes.Interface
	store  *settings.Store
	cache  *Cache
}

func NewWatcher(client kubernetes.Interface, store *settings.Store, cache *Cache) *Watcher {
	return &Watcher{client: client, store: store, cache: cache}
}

// Run watches pods across all namespaces until the context is cancelled.
// Each watch carries a server-side timeout so the stream comes back even on
// a quiet cluster; the outer loop restarts it. A 410 from the API server
// means our resourceVersion aged out of etcd, in which case we relist.
func (w *Watcher) Run(ctx context.Context) {
	var resourceVersion string

	for ctx.Err() == nil {
		// empty on the first pass and after a 410, both mean relist
		if resourceVersion == "" {
			resourceVersion = w.seedResourceVersion(ctx)
		}
		log.Debug().Str("resourceVersion", resourceVersion).Msg("watch pods loop")

		timeout := int64(w.store.Snapshot().WatchTimeout.Seconds())
		stream, err := w.client.CoreV1().Pods(metav1.NamespaceAll).Watch(ctx, metav1.ListOptions{
			TimeoutSeconds:      ptr.To(timeout),
			ResourceVersion:     resourceVersion,
			AllowWatchBookmarks: true,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if apierrors.IsResourceExpired(err) || apierrors.IsGone(err) {
				resourceVersion = ""
			}
			watchRestartsTotal.WithLabelValues("error").Inc()
			log.Warn().Err(err).Msg("pod watch failed, restarting")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for event := range stream.ResultChan() {
			switch event.Type {
			case watch.Bookmark:
				if pod, ok := event.Object.(*corev1.Pod); ok {
					resourceVersion = pod.ResourceVersion
				}
				continue
			case watch.Error:
				status := apierrors.FromObject(event.Object)
				if apierrors.IsResourceExpired(status) || apierrors.IsGone(status) {
					resourceVersion = ""
				}
				log.Warn().Err(status).Msg("pod watch stream error")
				continue
			}

			pod, ok := event.Object.(*corev1.Pod)
			if !ok {
				continue
			}
			resourceVersion = pod.ResourceVersion
			eventsSeenTotal.Inc()

			if err := w.cache.Add(event.Type, pod); err != nil {
				if errors.Is(err, ErrEventNotRelevant) {
					eventsFilteredTotal.Inc()
					log.Debug().Str("pod", pod.Namespace+"/"+pod.Name).Str("reason", err.Error()).Msg("ignoring event")
					continue
				}
				log.Error().Err(err).Str("pod", pod.Namespace+"/"+pod.Name).Msg("failed to cache event")
				continue
			}
			eventsCachedTotal.Inc()
		}
		stream.Stop()
		watchRestartsTotal.WithLabelValues("timeout").Inc()
	}
}

// seedResourceVersion lists a single pod so the first watch doesn't replay
// events from the beginning of history.
func (w *Watcher) seedResourceVersion(ctx context.Context) string {
	list, err := w.client.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{Limit: 1})
	if err != nil {
		log.Warn().Err(err).Msg("unable to seed pod resourceVersion, watching from scratch")
		return ""
	}
	return list.ResourceVersion
}
