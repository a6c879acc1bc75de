package events

import "github.com/prometheus/client_golang/prometheus"

var (
	eventsSeenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "jobs_emailer",
		Subsystem: "events",
		Name:      "pod_events_seen_total",
		Help:      "Total pod events received from the watch stream.",
	})

	eventsCachedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "jobs_emailer",
		Subsystem: "events",
		Name:      "pod_events_cached_total",
		Help:      "Total pod events that passed the filter and were cached.",
	})

	eventsFilteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "jobs_emailer",
		Subsystem: "events",
		Name:      "pod_events_filtered_total",
		Help:      "Total pod events rejected by the relevance filter.",
	})

	watchRestartsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobs_emailer",
		Subsystem: "events",
		Name:      "watch_restarts_total",
		Help:      "Total pod watch stream restarts by cause.",
	}, []string{"cause"})
)

func init() {
	prometheus.MustRegister(eventsSeenTotal, eventsCachedTotal, eventsFilteredTotal, watchRestartsTotal)
}
