// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	JudgeOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "algoprep",
		Subsystem: "judge",
		Name:      "outcomes_total",
		Help:      "Classified code execution outcomes by kind.",
	}, []string{"kind"})

	JudgeLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "algoprep",
		Subsystem: "judge",
		Name:      "request_duration_seconds",
		Help:      "Round trip time of judge submissions.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	RunJobs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "algoprep",
		Subsystem: "worker",
		Name:      "run_jobs_total",
		Help:      "Asynchronous run jobs by final status.",
	}, []string{"status"})

	RunJobRequeues = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "algoprep",
		Subsystem: "worker",
		Name:      "requeues_total",
		Help:      "Run jobs pushed back because the execution lock was held.",
	})

	FramesServed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "algoprep",
		Subsystem: "api",
		Name:      "frames_served_total",
		Help:      "Rendered visualization frames returned by the API.",
	})
)

func init() {
	Registry.MustRegister(
		JudgeOutcomes,
		JudgeLatency,
		RunJobs,
		RunJobRequeues,
		FramesServed,
		collectors.NewGoCollector(),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
