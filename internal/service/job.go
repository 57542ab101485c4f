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
	apperrors "github.com/target/prreview-api/internal/errors"
	obserrors "github.com/target/prreview-api/internal/observability/errors"
	"github.com/target/prreview-api/internal/observability/metrics"
	"github.com/target/prreview-api/internal/observability/notify"
	"github.com/target/prreview-api/internal/observability/statsd"
	"github.com/target/prreview-api/internal/service/failurenotifier"
)

// ErrJobNotTerminal is returned when a result is requested before the job finished.
var ErrJobNotTerminal = errors.New("job has not finished")

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Repo            core.JobRepository       // Required: job repository
	Logger          *slog.Logger             // Optional: structured logger
	Metrics         statsd.Sink              // Optional: transition metrics
	FailureNotifier *failurenotifier.Service // Optional: failure notification fan-out
}

// JobService owns every read and status write against the job store. Transitions
// pass through here so metrics and failure notifications stay in one place.
type JobService struct {
	repo            core.JobRepository
	logger          *slog.Logger
	metrics         statsd.Sink
	failureNotifier *failurenotifier.Service
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{
		repo:            opts.Repo,
		logger:          logger.With("component", "job_service"),
		metrics:         opts.Metrics,
		failureNotifier: opts.FailureNotifier,
	}, nil
}

// MustNewJobService constructs a new JobService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewJobService(opts JobServiceOptions) *JobService {
	svc, err := NewJobService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create JobService: %v", err))
	}
	return svc
}

// Create records a new pending job.
func (s *JobService) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	job, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.logger.DebugContext(ctx, "job created", "job_id", job.ID, "repository", job.RepositoryReference)
	return job, nil
}

// GetByID returns a job. Unknown ids yield a not_found AppError wrapping ErrJobNotFound.
func (s *JobService) GetByID(ctx context.Context, id string) (*model.Job, error) {
	job, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, review.ErrJobNotFound) {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNotFound, "job "+id)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// GetStatus returns the progress view of a job.
func (s *JobService) GetStatus(ctx context.Context, id string) (*model.JobStatusResponse, error) {
	job, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := job.StatusResponse()
	return &resp, nil
}

// GetResult returns a finished job. Jobs still pending or processing yield a
// conflict AppError wrapping ErrJobNotTerminal.
func (s *JobService) GetResult(ctx context.Context, id string) (*model.Job, error) {
	job, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.Status.Terminal() {
		return nil, apperrors.Wrapf(ErrJobNotTerminal, apperrors.ErrCodeConflict, "job %s is %s", id, job.Status)
	}
	return job, nil
}

// ListRecent returns the newest jobs first.
func (s *JobService) ListRecent(ctx context.Context, limit int) ([]*model.Job, error) {
	jobs, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent jobs: %w", err)
	}
	return jobs, nil
}

// Stats returns job counts per status.
func (s *JobService) Stats(ctx context.Context) (*model.JobStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	return stats, nil
}

// MarkProcessing moves a pending or redelivered job to processing. It reports
// false when the job is already terminal.
func (s *JobService) MarkProcessing(ctx context.Context, id string) (bool, error) {
	ok, err := s.transition(ctx, &model.UpdateStatusRequest{ID: id, Status: model.JobStatusProcessing}, 0, nil)
	if err != nil {
		return false, fmt.Errorf("mark processing: %w", err)
	}
	return ok, nil
}

// Complete stores the result and moves the job to completed.
func (s *JobService) Complete(ctx context.Context, id string, result *model.ReviewResult, elapsed time.Duration) (bool, error) {
	ok, err := s.transition(ctx, &model.UpdateStatusRequest{
		ID:     id,
		Status: model.JobStatusCompleted,
		Result: result,
	}, elapsed, nil)
	if err != nil {
		return false, fmt.Errorf("complete job: %w", err)
	}
	return ok, nil
}

// JobFailure describes why a job failed.
type JobFailure struct {
	Task    *model.ReviewTask
	Cause   error
	Elapsed time.Duration
}

// Fail records the failure detail and moves the job to failed. Notification
// sinks are informed only when this call performed the transition.
func (s *JobService) Fail(ctx context.Context, f JobFailure) (bool, error) {
	if f.Task == nil || f.Cause == nil {
		return false, errors.New("fail job: task and cause are required")
	}
	detail := FailureDetail(f.Cause)
	ok, err := s.transition(ctx, &model.UpdateStatusRequest{
		ID:          f.Task.JobID,
		Status:      model.JobStatusFailed,
		ErrorDetail: detail,
	}, f.Elapsed, f.Cause)
	if err != nil {
		return false, fmt.Errorf("fail job: %w", err)
	}
	if ok && s.failureNotifier.Enabled() {
		s.failureNotifier.NotifyReviewFailure(ctx, notify.ReviewFailurePayload{
			JobID:               f.Task.JobID,
			RepositoryReference: f.Task.RepositoryReference,
			ChangeIdentifier:    f.Task.ChangeIdentifier,
			Error:               detail,
			ErrorClass:          obserrors.Classify(f.Cause),
			Severity:            notify.SeverityError,
		})
	}
	return ok, nil
}

func (s *JobService) transition(
	ctx context.Context,
	req *model.UpdateStatusRequest,
	elapsed time.Duration,
	cause error,
) (bool, error) {
	ok, err := s.repo.UpdateStatus(ctx, req)
	m := metrics.JobMetric{Transition: string(req.Status), Duration: elapsed, Err: cause}
	switch {
	case err != nil:
		m.Result, m.Err = metrics.ResultError, err
	case !ok:
		m.Result = metrics.ResultNoop
	case cause != nil:
		m.Result = metrics.ResultError
	default:
		m.Result = metrics.ResultSuccess
	}
	metrics.EmitJobLifecycle(s.metrics, m)

	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.DebugContext(ctx, "job transition skipped", "job_id", req.ID, "to", req.Status)
	} else {
		s.logger.InfoContext(ctx, "job transitioned", "job_id", req.ID, "status", req.Status)
	}
	return ok, nil
}

// Failure detail prefixes stored with failed jobs.
const (
	DetailUpstreamFetch       = "UpstreamFetchError"
	DetailAnalysisUnavailable = "AnalysisUnavailable"
	DetailInvalidRequest      = "InvalidRequest"
	DetailInternal            = "InternalError"
)

// FailureDetail renders the stored error detail for a pipeline failure as
// "<Kind>: <message>".
func FailureDetail(err error) string {
	kind := DetailInternal
	switch {
	case errors.Is(err, review.ErrUpstreamFetch):
		kind = DetailUpstreamFetch
	case errors.Is(err, review.ErrAnalysisUnavailable):
		kind = DetailAnalysisUnavailable
	case errors.Is(err, review.ErrInvalidRequest):
		kind = DetailInvalidRequest
	}
	return kind + ": " + err.Error()
}
