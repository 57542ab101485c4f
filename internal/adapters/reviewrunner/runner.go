// Package reviewrunner consumes review tasks from the work queue and runs the review pipeline.
package reviewrunner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/target/prreview-api/internal/core"
	"github.com/target/prreview-api/internal/domain/model"
	"github.com/target/prreview-api/internal/domain/review"
	"github.com/target/prreview-api/internal/observability/metrics"
	"github.com/target/prreview-api/internal/observability/statsd"
)

// Pipeline runs one review task to a terminal job status.
type Pipeline interface {
	Run(ctx context.Context, task *model.ReviewTask) (*model.ReviewResult, error)
}

// PipelineFunc adapts a function to Pipeline.
type PipelineFunc func(ctx context.Context, task *model.ReviewTask) (*model.ReviewResult, error)

// Run implements Pipeline.
func (f PipelineFunc) Run(ctx context.Context, task *model.ReviewTask) (*model.ReviewResult, error) {
	return f(ctx, task)
}

// DepthReporter is implemented by queues that can report their length.
type DepthReporter interface {
	Depth(ctx context.Context) (pending, inflight int64, err error)
}

// RunnerOptions configures the worker loop.
type RunnerOptions struct {
	Queue    core.WorkQueue // Required
	Pipeline Pipeline       // Required
	Logger   *slog.Logger
	Metrics  statsd.Sink

	// Concurrency is the number of worker goroutines; defaults to 1.
	Concurrency int
	// DequeueWait bounds each blocking dequeue; defaults to 5s.
	DequeueWait time.Duration
	// ErrorBackoff is the pause after a queue error; defaults to 1s.
	ErrorBackoff time.Duration
	// DepthInterval enables periodic queue depth gauges when the queue is a DepthReporter.
	DepthInterval time.Duration
	// AckTimeout bounds acknowledgements, which run even during shutdown; defaults to 5s.
	AckTimeout time.Duration
}

// Runner pulls review tasks and executes them.
type Runner struct {
	queue         core.WorkQueue
	pipeline      Pipeline
	logger        *slog.Logger
	metrics       statsd.Sink
	workers       int
	wait          time.Duration
	backoff       time.Duration
	depthInterval time.Duration
	ackTimeout    time.Duration
}

// NewRunner constructs a worker loop.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Queue == nil {
		return nil, errors.New("work queue is required")
	}
	if opts.Pipeline == nil {
		return nil, errors.New("pipeline is required")
	}
	r := &Runner{
		queue:         opts.Queue,
		pipeline:      opts.Pipeline,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		workers:       opts.Concurrency,
		wait:          opts.DequeueWait,
		backoff:       opts.ErrorBackoff,
		depthInterval: opts.DepthInterval,
		ackTimeout:    opts.AckTimeout,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("component", "review_runner")
	if r.workers <= 0 {
		r.workers = 1
	}
	if r.wait <= 0 {
		r.wait = 5 * time.Second
	}
	if r.backoff <= 0 {
		r.backoff = time.Second
	}
	if r.ackTimeout <= 0 {
		r.ackTimeout = 5 * time.Second
	}
	return r, nil
}

// Run starts the workers and blocks until ctx is cancelled and every in-progress
// task has returned.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting review runner", "workers", r.workers, "dequeue_wait", r.wait)

	var wg sync.WaitGroup
	for i := range r.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.workerLoop(ctx, r.logger.With("worker", i))
		}()
	}
	if reporter, ok := r.queue.(DepthReporter); ok && r.depthInterval > 0 && r.metrics != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.reportDepth(ctx, reporter)
		}()
	}

	wg.Wait()
	r.logger.InfoContext(context.WithoutCancel(ctx), "review runner stopped")
	return ctx.Err()
}

func (r *Runner) workerLoop(ctx context.Context, logger *slog.Logger) {
	for ctx.Err() == nil {
		d, err := r.queue.Dequeue(ctx, r.wait)
		switch {
		case err == nil:
			r.process(ctx, d, logger)
		case errors.Is(err, model.ErrQueueEmpty):
		case ctx.Err() != nil:
			return
		default:
			logger.WarnContext(ctx, "dequeue failed", "error", err)
			if !sleep(ctx, r.backoff) {
				return
			}
		}
	}
}

// process runs one delivery. The message is acknowledged once the job reached a
// terminal status, or when it can never succeed. Store failures and shutdown
// leave it in flight for redelivery.
func (r *Runner) process(ctx context.Context, d *core.Delivery, logger *slog.Logger) {
	logger = logger.With("job_id", d.Task.JobID)
	start := time.Now()
	_, err := r.pipeline.Run(ctx, &d.Task)

	if !shouldAck(err) {
		logger.WarnContext(ctx, "review not finalized, leaving task in flight", "error", err)
		r.countTask(metrics.ResultNoop, time.Since(start))
		return
	}
	if err != nil {
		logger.InfoContext(ctx, "review finished with failure", "error", err)
	}

	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.ackTimeout)
	defer cancel()
	if ackErr := r.queue.Ack(actx, d); ackErr != nil {
		logger.ErrorContext(ctx, "ack failed", "error", ackErr)
	}
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	r.countTask(result, time.Since(start))
}

// shouldAck drops the delivery unless the pipeline reports that no terminal
// status was written.
func shouldAck(err error) bool {
	return !errors.Is(err, review.ErrNotFinalized)
}

func (r *Runner) countTask(result string, d time.Duration) {
	if r.metrics == nil {
		return
	}
	tags := map[string]string{"result": result}
	r.metrics.Count(metrics.WorkerTask, 1, tags)
	r.metrics.Timing(metrics.WorkerTaskTime, d, metrics.CloneTags(tags))
}

func (r *Runner) reportDepth(ctx context.Context, reporter DepthReporter) {
	ticker := time.NewTicker(r.depthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, inflight, err := reporter.Depth(ctx)
			if err != nil {
				r.logger.DebugContext(ctx, "queue depth unavailable", "error", err)
				continue
			}
			metrics.EmitQueueDepth(r.metrics, pending, inflight)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
