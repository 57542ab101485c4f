package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/prreview-api/internal/core"
	"github.com/target/prreview-api/internal/domain/model"
	"github.com/target/prreview-api/internal/domain/review"
	"github.com/target/prreview-api/internal/observability/metrics"
	"github.com/target/prreview-api/internal/observability/statsd"
	"github.com/target/prreview-api/internal/observability/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// PipelineConfig tunes a review run.
type PipelineConfig struct {
	// Concurrency bounds per-file fetch and analysis work. Zero selects 4.
	Concurrency int
	// MaxFiles caps how many filtered files are reviewed. Zero selects 10; negative disables the cap.
	MaxFiles       int
	ListTimeout    time.Duration
	FetchTimeout   time.Duration
	AnalyzeTimeout time.Duration
	// StoreTimeout bounds each job store write.
	StoreTimeout time.Duration
}

func (c PipelineConfig) withDefaults() PipelineConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.MaxFiles == 0 {
		c.MaxFiles = 10
	}
	if c.ListTimeout <= 0 {
		c.ListTimeout = 15 * time.Second
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.AnalyzeTimeout <= 0 {
		c.AnalyzeTimeout = 90 * time.Second
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 5 * time.Second
	}
	return c
}

// ReviewPipelineOptions groups dependencies for ReviewPipeline.
type ReviewPipelineOptions struct {
	Jobs     *JobService                // Required
	Sources  core.SourceProviderFactory // Required
	Analyzer core.AnalysisProvider      // Required
	Sealer   core.CredentialSealer      // Required
	Parser   *review.RepositoryParser
	Filter   *review.FileFilter
	Cache    *core.ContentCacheService // Optional
	Config   PipelineConfig
	Logger   *slog.Logger
	Metrics  statsd.Sink
	Now      func() time.Time
}

// ReviewPipeline turns one ReviewTask into a terminal job.
type ReviewPipeline struct {
	jobs     *JobService
	sources  core.SourceProviderFactory
	analyzer core.AnalysisProvider
	sealer   core.CredentialSealer
	parser   *review.RepositoryParser
	filter   *review.FileFilter
	cache    *core.ContentCacheService
	cfg      PipelineConfig
	logger   *slog.Logger
	metrics  statsd.Sink
	now      func() time.Time
}

// NewReviewPipeline constructs a ReviewPipeline.
func NewReviewPipeline(opts ReviewPipelineOptions) (*ReviewPipeline, error) {
	switch {
	case opts.Jobs == nil:
		return nil, errors.New("JobService is required")
	case opts.Sources == nil:
		return nil, errors.New("SourceProviderFactory is required")
	case opts.Analyzer == nil:
		return nil, errors.New("AnalysisProvider is required")
	case opts.Sealer == nil:
		return nil, errors.New("CredentialSealer is required")
	}
	p := &ReviewPipeline{
		jobs:     opts.Jobs,
		sources:  opts.Sources,
		analyzer: opts.Analyzer,
		sealer:   opts.Sealer,
		parser:   opts.Parser,
		filter:   opts.Filter,
		cache:    opts.Cache,
		cfg:      opts.Config.withDefaults(),
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
	}
	if p.parser == nil {
		p.parser = review.NewRepositoryParser(nil)
	}
	if p.filter == nil {
		p.filter = review.NewFileFilter(nil)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With("component", "review_pipeline")
	if p.now == nil {
		p.now = time.Now
	}
	return p, nil
}

// Run executes the review for task and writes exactly one terminal status.
//
// Return values:
//   - (result, nil): the job is completed, or was already terminal and its
//     stored result (nil for failed jobs) is returned without writing.
//   - (nil, err) with err wrapping a review sentinel other than ErrNotFinalized:
//     the job was marked failed, or is unknown (ErrJobNotFound).
//   - (nil, err) wrapping review.ErrNotFinalized: no terminal write happened
//     (interrupted run or store failure) and the task should be redelivered.
//     Upstream timeouts that failed the job do not carry it.
func (p *ReviewPipeline) Run(ctx context.Context, task *model.ReviewTask) (*model.ReviewResult, error) {
	if task == nil {
		return nil, errors.New("review task is required")
	}
	ctx, span := tracing.Tracer().Start(ctx, "review.pipeline.run", trace.WithAttributes(
		attribute.String("job.id", task.JobID),
		attribute.String("repository", task.RepositoryReference),
		attribute.String("change", task.ChangeIdentifier),
	))
	defer span.End()

	result, err := p.run(ctx, task)
	tracing.RecordError(span, err)
	return result, err
}

func (p *ReviewPipeline) run(ctx context.Context, task *model.ReviewTask) (*model.ReviewResult, error) {
	started := p.now()
	logger := p.logger.With("job_id", task.JobID)

	marked, err := p.store(ctx, func(sctx context.Context) (bool, error) {
		return p.jobs.MarkProcessing(sctx, task.JobID)
	})
	if err != nil {
		return nil, err
	}
	if !marked {
		logger.InfoContext(ctx, "job already terminal, skipping")
		return p.storedResult(ctx, task.JobID)
	}

	result, runErr := p.review(ctx, task, logger)
	if ctxErr := ctx.Err(); ctxErr != nil {
		// Leave the job processing; the in-flight message is redelivered.
		return nil, fmt.Errorf("%w: review interrupted: %w", review.ErrNotFinalized, ctxErr)
	}
	elapsed := p.now().Sub(started)

	if runErr != nil {
		logger.WarnContext(ctx, "review failed", "error", runErr)
		ok, err := p.store(ctx, func(sctx context.Context) (bool, error) {
			return p.jobs.Fail(sctx, JobFailure{Task: task, Cause: runErr, Elapsed: elapsed})
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return p.storedResult(ctx, task.JobID)
		}
		return nil, runErr
	}

	ok, err := p.store(ctx, func(sctx context.Context) (bool, error) {
		return p.jobs.Complete(sctx, task.JobID, result, elapsed)
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return p.storedResult(ctx, task.JobID)
	}
	logger.InfoContext(ctx, "review completed",
		"files", result.Summary.FileCount,
		"issues", result.Summary.IssueCount,
		"elapsed", elapsed,
	)
	return result, nil
}

// review produces the result without touching the job store.
func (p *ReviewPipeline) review(ctx context.Context, task *model.ReviewTask, logger *slog.Logger) (*model.ReviewResult, error) {
	ref, err := p.parser.Parse(task.RepositoryReference, task.ChangeIdentifier)
	if err != nil {
		return nil, err
	}
	token, err := p.sealer.Open(task.Credentials)
	if err != nil {
		return nil, fmt.Errorf("%w: open credentials: %w", review.ErrInvalidRequest, err)
	}
	source := p.sources.ForToken(token)

	meta := p.metadata(ctx, source, ref, logger)
	revision := ref.ChangeRevision()
	if meta != nil && meta.HeadSHA != "" {
		revision = meta.HeadSHA
	}

	listCtx, cancel := context.WithTimeout(ctx, p.cfg.ListTimeout)
	files, err := source.ListChangedFiles(listCtx, ref)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: list changed files: %w", review.ErrUpstreamFetch, err)
	}

	files = p.filter.Apply(files)
	if p.cfg.MaxFiles > 0 && len(files) > p.cfg.MaxFiles {
		logger.InfoContext(ctx, "capping reviewed files", "filtered", len(files), "max", p.cfg.MaxFiles)
		files = files[:p.cfg.MaxFiles]
	}
	if len(files) == 0 {
		return model.NewReviewResult(nil, meta), nil
	}

	outcomes := make([]review.FileOutcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i, f := range files {
		g.Go(func() error {
			outcomes[i] = p.reviewFile(gctx, source, ref, revision, f.FileName, logger)
			return nil
		})
	}
	_ = g.Wait()

	return review.Aggregate(outcomes, meta)
}

func (p *ReviewPipeline) metadata(
	ctx context.Context,
	source core.SourceProvider,
	ref model.RepositoryRef,
	logger *slog.Logger,
) *model.PullRequestMetadata {
	mctx, cancel := context.WithTimeout(ctx, p.cfg.ListTimeout)
	defer cancel()
	meta, err := source.GetMetadata(mctx, ref)
	if err != nil {
		logger.WarnContext(ctx, "pull request metadata unavailable", "error", err)
		return nil
	}
	return meta
}

func (p *ReviewPipeline) reviewFile(
	ctx context.Context,
	source core.SourceProvider,
	ref model.RepositoryRef,
	revision, name string,
	logger *slog.Logger,
) review.FileOutcome {
	ctx, span := tracing.Tracer().Start(ctx, "review.pipeline.file", trace.WithAttributes(
		attribute.String("file", name),
	))
	defer span.End()

	out := review.FileOutcome{FileName: name}

	content, err := p.fetch(ctx, source, ref, revision, name)
	if err != nil {
		logger.WarnContext(ctx, "file content unavailable, skipping", "file", name, "error", err)
		tracing.RecordError(span, err)
		out.Stage, out.Err = review.StageFetch, err
		return out
	}

	started := p.now()
	actx, cancel := context.WithTimeout(ctx, p.cfg.AnalyzeTimeout)
	analysis, err := p.analyzer.Analyze(actx, name, content)
	cancel()
	p.emitStage(review.StageAnalyze, p.now().Sub(started), err)
	if err != nil {
		logger.WarnContext(ctx, "file analysis failed, skipping", "file", name, "error", err)
		tracing.RecordError(span, err)
		out.Stage, out.Err = review.StageAnalyze, err
		return out
	}

	issues := analysis.Issues
	if issues == nil {
		issues = []model.Issue{}
	}
	out.Review = &model.FileReview{FileName: name, Issues: issues}
	span.SetAttributes(attribute.Int("issues", len(issues)))
	return out
}

func (p *ReviewPipeline) fetch(
	ctx context.Context,
	source core.SourceProvider,
	ref model.RepositoryRef,
	revision, name string,
) (string, error) {
	if content, ok, err := p.cache.Get(ctx, ref, name, revision); err != nil {
		p.logger.DebugContext(ctx, "content cache read failed", "file", name, "error", err)
	} else if ok {
		return content, nil
	}

	started := p.now()
	fctx, cancel := context.WithTimeout(ctx, p.cfg.FetchTimeout)
	content, err := source.GetFileContent(fctx, ref, name, revision)
	cancel()
	p.emitStage(review.StageFetch, p.now().Sub(started), err)
	if err != nil {
		return "", err
	}

	if err := p.cache.Put(ctx, ref, name, revision, content); err != nil {
		p.logger.DebugContext(ctx, "content cache write failed", "file", name, "error", err)
	}
	return content, nil
}

func (p *ReviewPipeline) emitStage(stage review.FileStage, d time.Duration, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.EmitFileStage(p.metrics, metrics.FileMetric{Stage: string(stage), Result: result, Duration: d, Err: err})
}

// store runs one job store write under its own timeout. The write survives
// cancellation of ctx so a finished review is never lost to shutdown.
// store runs a status write detached from ctx. Failures other than an unknown
// job are marked ErrNotFinalized.
func (p *ReviewPipeline) store(ctx context.Context, fn func(context.Context) (bool, error)) (bool, error) {
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.StoreTimeout)
	defer cancel()
	ok, err := fn(sctx)
	if err != nil && !errors.Is(err, review.ErrJobNotFound) {
		return false, fmt.Errorf("%w: %w", review.ErrNotFinalized, err)
	}
	return ok, err
}

func (p *ReviewPipeline) storedResult(ctx context.Context, id string) (*model.ReviewResult, error) {
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.StoreTimeout)
	defer cancel()
	job, err := p.jobs.GetByID(sctx, id)
	if err != nil {
		return nil, err
	}
	return job.Result, nil
}
