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

	WorkerItemsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_items_processed_total",
			Help: "Batch items processed, by outcome (success, not_found, error)",
		},
		[]string{"task_type", "outcome"},
	)

	// outcome is one of success, not_found, auth, rate_limit, bad_request, api_error, transport.
	QuickEnrichRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickenrich_requests_total",
			Help: "QuickEnrich API calls by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	QuickEnrichRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quickenrich_request_duration_seconds",
			Help:    "QuickEnrich API round trip time",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)
