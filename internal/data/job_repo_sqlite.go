package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/target/prreview-api/internal/domain/model"
)

// SQLiteJobRepo is the single-node job store used with STORE_DRIVER=sqlite.
// Timestamps are stored as Unix microseconds so ordering and clamping stay numeric.
type SQLiteJobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewSQLiteJobRepo creates a SQLite-backed job store. The schema comes from the sqlite migrations.
func NewSQLiteJobRepo(db *sql.DB, cfg RepoConfig) *SQLiteJobRepo {
	return &SQLiteJobRepo{
		DB:           db,
		timeProvider: resolveTimeProvider(cfg.TimeProvider),
		logger:       resolveLogger(cfg.Logger, "sqlite"),
	}
}

// Create inserts a new pending job.
func (r *SQLiteJobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rec := newJobRecord(req, r.timeProvider.Now())
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO review_jobs (id, repository_reference, change_identifier, status, created_at, updated_at)
		VALUES (?, ?, ?, 'pending', ?, ?)`,
		rec.ID, rec.RepositoryReference, rec.ChangeIdentifier,
		rec.CreatedAt.UnixMicro(), rec.UpdatedAt.UnixMicro(),
	)
	if err != nil {
		return nil, persistenceError("create job", err)
	}
	r.logger.DebugContext(ctx, "job created", "job_id", rec.ID)
	return rec, nil
}

// GetByID retrieves a job by its ID.
func (r *SQLiteJobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if !validJobID(id) {
		return nil, ErrJobNotFound
	}
	row := r.DB.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM review_jobs WHERE id = ?`, id)
	job, err := scanSQLiteJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, persistenceError("get job", err)
	}
	return job, nil
}

// UpdateStatus applies a single atomic transition. It reports false when the job
// exists but its current status does not permit the transition.
func (r *SQLiteJobRepo) UpdateStatus(ctx context.Context, req *model.UpdateStatusRequest) (bool, error) {
	if req == nil {
		return false, errors.New("update status request is required")
	}
	if err := req.Validate(); err != nil {
		return false, err
	}
	if !validJobID(req.ID) {
		return false, ErrJobNotFound
	}
	result, err := encodeResult(req.Result)
	if err != nil {
		return false, err
	}

	sources := req.Status.AllowedSources()
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(sources)), ",")
	query := `
		UPDATE review_jobs
		SET status = ?, result = ?, error_detail = ?, updated_at = MAX(?, created_at)
		WHERE id = ? AND status IN (` + placeholders + `)`

	args := []any{
		string(req.Status),
		nullableString(string(result)),
		nullableString(req.ErrorDetail),
		r.timeProvider.Now().UTC().UnixMicro(),
		req.ID,
	}
	for _, s := range statusStrings(sources) {
		args = append(args, s)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return false, persistenceError("update job status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, persistenceError("update job status rows affected", err)
	}
	if n > 0 {
		return true, nil
	}

	var current string
	err = r.DB.QueryRowContext(ctx, `SELECT status FROM review_jobs WHERE id = ?`, req.ID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrJobNotFound
	}
	if err != nil {
		return false, persistenceError("read job status", err)
	}
	r.logger.DebugContext(ctx, "status transition skipped",
		"job_id", req.ID, "from", current, "to", req.Status)
	return false, nil
}

// ListRecent returns up to limit jobs, newest first.
func (r *SQLiteJobRepo) ListRecent(ctx context.Context, limit int) ([]*model.Job, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM review_jobs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, normalizeListLimit(limit))
	if err != nil {
		return nil, persistenceError("list recent jobs", err)
	}
	defer rows.Close()

	out := []*model.Job{}
	for rows.Next() {
		job, err := scanSQLiteJob(rows)
		if err != nil {
			return nil, persistenceError("scan job", err)
		}
		out = append(out, job)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list recent jobs rows", err)
	}
	return out, nil
}

// Stats returns job counts per status.
func (r *SQLiteJobRepo) Stats(ctx context.Context) (*model.JobStats, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, count(*) FROM review_jobs GROUP BY status`)
	if err != nil {
		return nil, persistenceError("job stats", err)
	}
	defer rows.Close()

	stats := &model.JobStats{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, persistenceError("scan job stats", err)
		}
		tallyStatus(stats, model.JobStatus(status), n)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("job stats rows", err)
	}
	return stats, nil
}

func scanSQLiteJob(scanner jobRowScanner) (*model.Job, error) {
	job := &model.Job{}
	var (
		status             string
		result             sql.NullString
		errorDetail        sql.NullString
		createdAt, updated int64
	)
	if err := scanner.Scan(
		&job.ID,
		&job.RepositoryReference,
		&job.ChangeIdentifier,
		&status,
		&result,
		&errorDetail,
		&createdAt,
		&updated,
	); err != nil {
		return nil, err
	}

	job.Status = model.JobStatus(status)
	job.ErrorDetail = cloneNullableString(errorDetail)
	job.CreatedAt = time.UnixMicro(createdAt).UTC()
	job.UpdatedAt = time.UnixMicro(updated).UTC()
	if result.Valid {
		decoded, err := decodeResult([]byte(result.String))
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", job.ID, err)
		}
		job.Result = decoded
	}
	return job, nil
}
