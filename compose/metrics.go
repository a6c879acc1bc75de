package compose

import "github.com/prometheus/client_golang/prometheus"

var (
	emailsComposedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "jobs_emailer",
		Subsystem: "compose",
		Name:      "emails_composed_total",
		Help:      "Total emails composed from cached job events.",
	})

	queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "jobs_emailer",
		Subsystem: "compose",
		Name:      "email_queue_depth",
		Help:      "Emails currently waiting in the send queue.",
	})
)

func init() {
	prometheus.MustRegister(emailsComposedTotal, queueDepth)
}
