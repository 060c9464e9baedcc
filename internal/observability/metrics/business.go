package metrics

import (
	"time"
)

// RecordPipelineRun records the outcome and duration of one keyword
// enrichment pipeline run.
func RecordPipelineRun(success bool, duration time.Duration, candidates int) {
	status := "success"
	if !success {
		status = "failure"
	}
	PipelineRunsTotal.WithLabelValues(status).Inc()
	PipelineDuration.Observe(duration.Seconds())
	if success {
		PipelineCandidates.Observe(float64(candidates))
	}
}

// RecordPreciseDegraded records that an enrichment run kept bulk metrics
// because the high-accuracy provider pass failed.
func RecordPreciseDegraded() {
	PipelinePreciseDegradedTotal.Inc()
}

// RecordGenerationRun records the outcome and duration of one article
// generation run.
func RecordGenerationRun(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	GenerationRunsTotal.WithLabelValues(status).Inc()
	GenerationDuration.Observe(duration.Seconds())
}

// RecordPublish records a publish attempt against an external CMS.
// CMS should be "shopify" or "wordpress".
func RecordPublish(cms string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	PublishTotal.WithLabelValues(cms, status).Inc()
}

// RecordProviderRequest records one outbound call to an external provider.
func RecordProviderRequest(provider, operation string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	ProviderRequestsTotal.WithLabelValues(provider, operation, status).Inc()
}

// RecordJobEnqueued records that a job was accepted by the runner.
func RecordJobEnqueued(kind string) {
	JobsEnqueuedTotal.WithLabelValues(kind).Inc()
}

// RecordJobCompleted records a finished job. Status should be "success",
// "failure" or "panic".
func RecordJobCompleted(kind, status string) {
	JobsCompletedTotal.WithLabelValues(kind, status).Inc()
}

// RecordReconciled records stale articles re-enqueued by the reconciler.
func RecordReconciled(count int) {
	JobsReconciledTotal.Add(float64(count))
}

// UpdateArticlesTotal updates the total count of articles in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateArticlesTotal(count int64) {
	ArticlesTotal.Set(float64(count))
}
