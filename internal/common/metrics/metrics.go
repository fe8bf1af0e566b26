// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

var (
	ParsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voice_parses_total",
			Help: "Parsed utterances by resulting intent and deciding source",
		},
		[]string{"intent", "source"},
	)

	ParseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voice_parse_duration_seconds",
			Help:    "End to end parse latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"intent"},
	)

	ClassifierFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voice_classifier_fallbacks_total",
			Help: "Classifier decisions overridden to search",
		},
		[]string{"reason"},
	)

	ParsePanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voice_parse_panics_total",
			Help: "Parses that panicked and were converted to search",
		},
	)

	StaleResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voice_stale_results_total",
			Help: "Parse results overtaken by a newer utterance in the same session",
		},
	)
)
