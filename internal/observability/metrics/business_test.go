package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordPipelineRun(t *testing.T) {
	before := testutil.ToFloat64(PipelineRunsTotal.WithLabelValues("success"))
	RecordPipelineRun(true, 2*time.Second, 42)
	after := testutil.ToFloat64(PipelineRunsTotal.WithLabelValues("success"))
	assert.Equal(t, before+1, after)
}

func TestRecordPipelineRun_Failure(t *testing.T) {
	before := testutil.ToFloat64(PipelineRunsTotal.WithLabelValues("failure"))
	RecordPipelineRun(false, time.Second, 0)
	after := testutil.ToFloat64(PipelineRunsTotal.WithLabelValues("failure"))
	assert.Equal(t, before+1, after)
}

func TestRecordPreciseDegraded(t *testing.T) {
	before := testutil.ToFloat64(PipelinePreciseDegradedTotal)
	RecordPreciseDegraded()
	after := testutil.ToFloat64(PipelinePreciseDegradedTotal)
	assert.Equal(t, before+1, after)
}

func TestRecordPublish(t *testing.T) {
	before := testutil.ToFloat64(PublishTotal.WithLabelValues("shopify", "failure"))
	RecordPublish("shopify", false)
	after := testutil.ToFloat64(PublishTotal.WithLabelValues("shopify", "failure"))
	assert.Equal(t, before+1, after)
}

func TestRecordJobLifecycle(t *testing.T) {
	RecordJobEnqueued("keyword_analysis")
	RecordJobCompleted("keyword_analysis", "success")
	RecordReconciled(3)

	assert.GreaterOrEqual(t, testutil.ToFloat64(JobsEnqueuedTotal.WithLabelValues("keyword_analysis")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(JobsReconciledTotal), 3.0)
}

func TestUpdateArticlesTotal(t *testing.T) {
	UpdateArticlesTotal(17)
	assert.Equal(t, 17.0, testutil.ToFloat64(ArticlesTotal))
}
