package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/prreview-api/internal/domain/review"
	"github.com/target/prreview-api/internal/observability/statsd"
)

func TestEmitJobLifecycle(t *testing.T) {
	t.Parallel()

	var rec statsd.Recorder
	EmitJobLifecycle(&rec, JobMetric{
		Transition: "failed",
		Result:     ResultError,
		Duration:   2 * time.Second,
		Err:        errors.Join(review.ErrUpstreamFetch),
	})

	counts := rec.Named(JobTransition)
	require.Len(t, counts, 1)
	assert.Equal(t, "upstream_fetch", counts[0].Tags["error_class"])
	assert.Equal(t, "failed", counts[0].Tags["transition"])

	timings := rec.Named(JobDuration)
	require.Len(t, timings, 1)
	assert.Equal(t, float64(2000), timings[0].Value)
}

func TestEmitJobLifecycleSkipsClassOnSuccess(t *testing.T) {
	t.Parallel()

	var rec statsd.Recorder
	EmitJobLifecycle(&rec, JobMetric{Transition: "completed", Result: ResultSuccess})

	counts := rec.Named(JobTransition)
	require.Len(t, counts, 1)
	assert.NotContains(t, counts[0].Tags, "error_class")
	assert.Empty(t, rec.Named(JobDuration))
}

func TestEmitFileStageAndQueueDepth(t *testing.T) {
	t.Parallel()

	var rec statsd.Recorder
	EmitFileStage(&rec, FileMetric{Stage: "analyze", Result: ResultError, Err: review.ErrAnalysisUnavailable})
	EmitQueueDepth(&rec, 3, 1)

	files := rec.Named(PipelineFile)
	require.Len(t, files, 1)
	assert.Equal(t, "analyze", files[0].Tags["stage"])
	assert.Equal(t, "analysis_unavailable", files[0].Tags["error_class"])

	depth := rec.Named(QueueDepth)
	require.Len(t, depth, 2)
	assert.Equal(t, float64(3), depth[0].Value)
	assert.Equal(t, "inflight", depth[1].Tags["state"])
}

func TestNilSinkIsSafe(t *testing.T) {
	t.Parallel()

	EmitJobLifecycle(nil, JobMetric{})
	EmitFileStage(nil, FileMetric{})
	EmitQueueDepth(nil, 0, 0)
	assert.Nil(t, CloneTags(nil))
}
