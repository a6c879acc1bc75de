package settings

import "github.com/prometheus/client_golang/prometheus"

var (
	configReadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobs_emailer",
		Subsystem: "settings",
		Name:      "configmap_reads_total",
		Help:      "Total ConfigMap read attempts by status.",
	}, []string{"status"})

	configAppliesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "jobs_emailer",
		Subsystem: "settings",
		Name:      "configmap_applies_total",
		Help:      "Total times a new ConfigMap revision was applied.",
	})
)

func init() {
	prometheus.MustRegister(configReadsTotal, configAppliesTotal)
}
