package data

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/target/prreview-api/internal/domain/model"
)

const (
	// DefaultListLimit is used when ListRecent receives a non-positive limit.
	DefaultListLimit = 50
	// MaxListLimit caps ListRecent.
	MaxListLimit = 1000
)

// RepoConfig holds configuration options for the job repositories.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// JobRepo is the Postgres-backed job store.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a new JobRepo instance with the given database connection and configuration.
func NewJobRepo(db *sql.DB, cfg RepoConfig) *JobRepo {
	return &JobRepo{
		DB:           db,
		timeProvider: resolveTimeProvider(cfg.TimeProvider),
		logger:       resolveLogger(cfg.Logger, "postgres"),
	}
}

func resolveTimeProvider(tp TimeProvider) TimeProvider {
	if tp == nil {
		return &RealTimeProvider{}
	}
	return tp
}

func resolveLogger(l *slog.Logger, backend string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With("component", "job_repo", "backend", backend)
}

const jobColumns = `
  id,
  repository_reference,
  change_identifier,
  status,
  result,
  error_detail,
  created_at,
  updated_at
`

// normalizeListLimit applies DefaultListLimit and MaxListLimit.
func normalizeListLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// validJobID reports whether id could name a stored job. Malformed ids are
// reported as not found instead of reaching the database.
func validJobID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// newJobRecord builds the pending record written by Create.
func newJobRecord(req *model.CreateJobRequest, now time.Time) *model.Job {
	now = now.UTC().Truncate(time.Microsecond)
	return &model.Job{
		ID:                  uuid.NewString(),
		RepositoryReference: req.RepositoryReference,
		ChangeIdentifier:    req.ChangeIdentifier,
		Status:              model.JobStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func encodeResult(r *model.ReviewResult) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal review result: %w", err)
	}
	return b, nil
}

func decodeResult(raw []byte) (*model.ReviewResult, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var r model.ReviewResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("unmarshal review result: %w", err)
	}
	return &r, nil
}

func cloneNullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableBytes(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}

func statusStrings(statuses []model.JobStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func tallyStatus(stats *model.JobStats, status model.JobStatus, n int) {
	switch status {
	case model.JobStatusPending:
		stats.Pending += n
	case model.JobStatusProcessing:
		stats.Processing += n
	case model.JobStatusCompleted:
		stats.Completed += n
	case model.JobStatusFailed:
		stats.Failed += n
	}
}
