// Package metrics defines the metric names and tags emitted for review jobs.
package metrics

import (
	"time"

	obserrors "github.com/target/prreview-api/internal/observability/errors"
	"github.com/target/prreview-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Metric names.
const (
	JobTransition   = "job.transition"
	JobDuration     = "job.duration"
	JobSubmitted    = "job.submitted"
	PipelineFile    = "pipeline.file"
	PipelineLatency = "pipeline.file.duration"
	QueueDepth      = "queue.depth"
	WorkerTask      = "worker.task"
	WorkerTaskTime  = "worker.task.duration"
)

// JobMetric captures one job status transition.
type JobMetric struct {
	Transition string
	Result     string
	Duration   time.Duration
	Err        error
}

// EmitJobLifecycle emits a transition count and, when known, the time spent.
func EmitJobLifecycle(sink statsd.Sink, in JobMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"transition": in.Transition,
		"result":     in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count(JobTransition, 1, tags)
	if in.Duration > 0 {
		sink.Timing(JobDuration, in.Duration, CloneTags(tags))
	}
}

// FileMetric captures one pipeline stage for one file.
type FileMetric struct {
	Stage    string // fetch or analyze
	Result   string
	Duration time.Duration
	Err      error
}

// EmitFileStage records the outcome of a per-file fetch or analysis call.
func EmitFileStage(sink statsd.Sink, in FileMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"stage": in.Stage, "result": in.Result}
	if in.Err != nil {
		tags["error_class"] = obserrors.Classify(in.Err)
	}
	sink.Count(PipelineFile, 1, tags)
	if in.Duration > 0 {
		sink.Timing(PipelineLatency, in.Duration, CloneTags(tags))
	}
}

// EmitQueueDepth reports pending and in-flight queue lengths.
func EmitQueueDepth(sink statsd.Sink, pending, inflight int64) {
	if sink == nil {
		return
	}
	sink.Gauge(QueueDepth, float64(pending), map[string]string{"state": "pending"})
	sink.Gauge(QueueDepth, float64(inflight), map[string]string{"state": "inflight"})
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
