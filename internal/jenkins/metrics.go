package jenkins

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jenkins_workbench",
			Subsystem: "transport",
			Name:      "requests_total",
			Help:      "Requests sent to the Jenkins controller by method and status code.",
		},
		[]string{"method", "code"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jenkins_workbench",
			Subsystem: "transport",
			Name:      "request_duration_seconds",
			Help:      "Round trip latency of requests to the Jenkins controller.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jenkins_workbench",
			Subsystem: "facade",
			Name:      "operations_total",
			Help:      "Facade operations by resource kind, operation and outcome.",
		},
		[]string{"kind", "op", "outcome"},
	)
)

func observeOperation(kind, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationsTotal.WithLabelValues(kind, op, outcome).Inc()
}
