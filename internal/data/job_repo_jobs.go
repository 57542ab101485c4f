package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/target/prreview-api/internal/data/pgxutil"
	"github.com/target/prreview-api/internal/domain/model"
)

// updateStatusSQL performs a transition in one statement. The status guard makes
// writes from a disallowed source status, including any terminal status, a no-op.
const updateStatusSQL = `
  UPDATE review_jobs
  SET
    status = $2,
    result = $3,
    error_detail = $4,
    updated_at = GREATEST($5, created_at)
  WHERE id = $1 AND status = ANY($6::text[])
`

// Create inserts a new pending job.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rec := newJobRecord(req, r.timeProvider.Now())
	query := `
      INSERT INTO review_jobs (id, repository_reference, change_identifier, status, created_at, updated_at)
      VALUES ($1, $2, $3, 'pending', $4, $5)
      RETURNING ` + jobColumns

	var job *model.Job
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			rows, qerr := tx.Query(ctx, query,
				rec.ID, rec.RepositoryReference, rec.ChangeIdentifier, rec.CreatedAt, rec.UpdatedAt)
			if qerr != nil {
				return qerr
			}
			j, cerr := collectJobFromRows(rows)
			rows.Close()
			if cerr != nil {
				return cerr
			}
			job = j
			return nil
		},
	})
	if err != nil {
		return nil, persistenceError("create job", err)
	}
	r.logger.DebugContext(ctx, "job created", "job_id", job.ID)
	return job, nil
}

// GetByID retrieves a job by its ID.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if !validJobID(id) {
		return nil, ErrJobNotFound
	}
	query := `SELECT ` + jobColumns + ` FROM review_jobs WHERE id = $1`

	var job *model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, query, id)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		j, cerr := collectJobFromRows(rows)
		if cerr != nil {
			return cerr
		}
		job = j
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, persistenceError("get job", err)
	}
	return job, nil
}

// UpdateStatus applies a single atomic transition. It reports false when the job
// exists but its current status does not permit the transition.
func (r *JobRepo) UpdateStatus(ctx context.Context, req *model.UpdateStatusRequest) (bool, error) {
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

	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, updateStatusSQL,
		req.ID,
		string(req.Status),
		nullableBytes(result),
		nullableString(req.ErrorDetail),
		now,
		statusStrings(req.Status.AllowedSources()),
	)
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

	// Distinguish "unknown id" from "transition not allowed".
	var current string
	err = r.DB.QueryRowContext(ctx, `SELECT status FROM review_jobs WHERE id = $1`, req.ID).Scan(&current)
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
func (r *JobRepo) ListRecent(ctx context.Context, limit int) ([]*model.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM review_jobs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	var result []*model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, normalizeListLimit(limit))
		if err != nil {
			return err
		}
		defer rows.Close()

		vals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Job, error) {
			return scanJobFromRow(row)
		})
		if err != nil {
			return err
		}
		result = vals
		return nil
	}); err != nil {
		return nil, persistenceError("list recent jobs", err)
	}
	if result == nil {
		result = []*model.Job{}
	}
	return result, nil
}

// Stats returns job counts per status.
func (r *JobRepo) Stats(ctx context.Context) (*model.JobStats, error) {
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

// collectJobFromRows collects a single job from pgx rows.
func collectJobFromRows(rows pgx.Rows) (*model.Job, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}

	job, err := scanJobFromRow(rows)
	if err != nil {
		return nil, err
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, rowsErr
	}
	return job, nil
}

type jobRowScanner interface {
	Scan(dest ...any) error
}

func scanJobFromRow(scanner jobRowScanner) (*model.Job, error) {
	job := &model.Job{}
	var (
		status      string
		result      []byte
		errorDetail sql.NullString
	)
	if err := scanner.Scan(
		&job.ID,
		&job.RepositoryReference,
		&job.ChangeIdentifier,
		&status,
		&result,
		&errorDetail,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}

	job.Status = model.JobStatus(status)
	job.ErrorDetail = cloneNullableString(errorDetail)
	job.CreatedAt = job.CreatedAt.UTC()
	job.UpdatedAt = job.UpdatedAt.UTC()
	decoded, err := decodeResult(result)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job.ID, err)
	}
	job.Result = decoded
	return job, nil
}
