// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Business metrics track article generation operations
var (
	// ArticlesTotal tracks total number of articles in the database
	ArticlesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "articles_total",
			Help: "Total number of articles in the database",
		},
	)

	// PipelineRunsTotal counts keyword enrichment runs by outcome
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of keyword enrichment pipeline runs",
		},
		[]string{"status"}, // status: success, failure
	)

	// PipelineDuration measures end-to-end enrichment pipeline duration
	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_duration_seconds",
			Help:    "Time taken by a keyword enrichment pipeline run",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// PipelinePreciseDegradedTotal counts runs that fell back to bulk
	// metrics because the high-accuracy pass failed
	PipelinePreciseDegradedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_precise_degraded_total",
			Help: "Enrichment runs that kept bulk metrics because the precise pass failed",
		},
	)

	// PipelineCandidates measures the number of scored candidates per run
	PipelineCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_candidates",
			Help:    "Number of scored keyword candidates per enrichment run",
			Buckets: []float64{1, 5, 10, 20, 40, 60, 80, 100},
		},
	)

	// GenerationRunsTotal counts content generation runs by outcome
	GenerationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_runs_total",
			Help: "Total number of article generation runs",
		},
		[]string{"status"}, // status: success, failure
	)

	// GenerationDuration measures time to generate one article
	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Time taken to generate an article",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// PublishTotal counts publish attempts by CMS target and outcome
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_total",
			Help: "Total number of article publish attempts",
		},
		[]string{"cms", "status"},
	)

	// ProviderRequestsTotal counts outbound provider calls by outcome
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of external provider requests",
		},
		[]string{"provider", "operation", "status"},
	)
)

// Job metrics track the background job runner
var (
	// JobsEnqueuedTotal counts jobs accepted by the runner
	JobsEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_enqueued_total",
			Help: "Total number of background jobs enqueued",
		},
		[]string{"kind"},
	)

	// JobsCompletedTotal counts finished jobs by outcome
	JobsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_completed_total",
			Help: "Total number of background jobs completed",
		},
		[]string{"kind", "status"}, // status: success, failure, panic
	)

	// JobsRunning tracks currently executing jobs
	JobsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobs_running",
			Help: "Number of background jobs currently executing",
		},
	)

	// JobsReconciledTotal counts stale in-flight articles re-enqueued by
	// the reconciler
	JobsReconciledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobs_reconciled_total",
			Help: "Stale in-flight articles re-enqueued by the reconciler",
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordOperationDuration records the duration of a named operation
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
