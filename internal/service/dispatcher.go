package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/prreview-api/internal/core"
	"github.com/target/prreview-api/internal/domain/model"
	"github.com/target/prreview-api/internal/domain/review"
	apperrors "github.com/target/prreview-api/internal/errors"
	"github.com/target/prreview-api/internal/observability/metrics"
	"github.com/target/prreview-api/internal/observability/statsd"
)

// DispatcherServiceOptions groups dependencies for DispatcherService.
type DispatcherServiceOptions struct {
	Jobs    *JobService           // Required
	Queue   core.WorkQueue        // Required
	Sealer  core.CredentialSealer // Required
	Parser  *review.RepositoryParser
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// DispatcherService accepts review submissions. It only ever creates pending
// jobs and hands them to the work queue; workers own every later transition.
type DispatcherService struct {
	jobs    *JobService
	queue   core.WorkQueue
	sealer  core.CredentialSealer
	parser  *review.RepositoryParser
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewDispatcherService constructs a DispatcherService. A nil Parser accepts the default hosts.
func NewDispatcherService(opts DispatcherServiceOptions) (*DispatcherService, error) {
	switch {
	case opts.Jobs == nil:
		return nil, errors.New("JobService is required")
	case opts.Queue == nil:
		return nil, errors.New("WorkQueue is required")
	case opts.Sealer == nil:
		return nil, errors.New("CredentialSealer is required")
	}
	parser := opts.Parser
	if parser == nil {
		parser = review.NewRepositoryParser(nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DispatcherService{
		jobs:    opts.Jobs,
		queue:   opts.Queue,
		sealer:  opts.Sealer,
		parser:  parser,
		logger:  logger.With("component", "dispatcher"),
		metrics: opts.Metrics,
	}, nil
}

// Submit validates the request, creates a pending job and enqueues exactly one
// task for it. It returns the job id without waiting for the review.
//
// Invalid input returns a validation AppError wrapping review.ErrInvalidRequest
// and creates nothing. When the enqueue fails the created job stays pending and
// the error wraps review.ErrScheduleFailed.
func (s *DispatcherService) Submit(ctx context.Context, req model.SubmitReviewRequest) (string, error) {
	ref, err := s.parser.Parse(req.RepositoryReference, req.ChangeIdentifier)
	if err != nil {
		s.countSubmit(metrics.ResultNoop)
		return "", apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid review request")
	}

	sealed, err := s.sealer.Seal(req.Credentials)
	if err != nil {
		s.countSubmit(metrics.ResultError)
		return "", fmt.Errorf("seal credentials: %w", err)
	}

	changeID := fmt.Sprint(ref.Number)
	job, err := s.jobs.Create(ctx, &model.CreateJobRequest{
		RepositoryReference: ref.URL(),
		ChangeIdentifier:    changeID,
	})
	if err != nil {
		s.countSubmit(metrics.ResultError)
		return "", err
	}

	task := &model.ReviewTask{
		JobID:               job.ID,
		RepositoryReference: job.RepositoryReference,
		ChangeIdentifier:    job.ChangeIdentifier,
		Credentials:         sealed,
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		s.logger.ErrorContext(ctx, "enqueue review task failed", "job_id", job.ID, "error", err)
		s.countSubmit(metrics.ResultError)
		return "", apperrors.Wrap(
			fmt.Errorf("%w: job %s: %w", review.ErrScheduleFailed, job.ID, err),
			apperrors.ErrCodeUnavailable,
			"review could not be scheduled",
		)
	}

	s.logger.InfoContext(ctx, "review submitted", "job_id", job.ID, "change", ref.String())
	s.countSubmit(metrics.ResultSuccess)
	return job.ID, nil
}

func (s *DispatcherService) countSubmit(result string) {
	if s.metrics != nil {
		s.metrics.Count(metrics.JobSubmitted, 1, map[string]string{"result": result})
	}
}
