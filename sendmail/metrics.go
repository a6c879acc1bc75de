package sendmail

import "github.com/prometheus/client_golang/prometheus"

var emailsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "jobs_emailer",
	Subsystem: "sendmail",
	Name:      "emails_sent_total",
	Help:      "Total email send attempts by outcome.",
}, []string{"outcome"})

func init() {
	prometheus.MustRegister(emailsSentTotal)
}
