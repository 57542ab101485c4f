// Package model defines the core data types shared by the review job system.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// JobStatus represents the current status of a review job.
type JobStatus string

const (
	// JobStatusPending indicates a job was accepted and waits for a worker.
	JobStatusPending JobStatus = "pending"
	// JobStatusProcessing indicates a worker is running the review pipeline.
	JobStatusProcessing JobStatus = "processing"
	// JobStatusCompleted indicates the review finished and a result is stored.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the review could not be produced.
	JobStatusFailed JobStatus = "failed"
)

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	return s == JobStatusPending || s == JobStatusProcessing || s == JobStatusCompleted ||
		s == JobStatusFailed
}

// Terminal reports whether no further transitions are allowed from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// transitionSources lists, for every target status, the statuses a job may move from.
// Pending is only ever written on creation.
var transitionSources = map[JobStatus][]JobStatus{
	JobStatusProcessing: {JobStatusPending, JobStatusProcessing},
	JobStatusCompleted:  {JobStatusProcessing},
	JobStatusFailed:     {JobStatusProcessing},
}

// AllowedSources returns the statuses from which a job may transition to s.
// The returned slice is a copy and may be modified by the caller.
func (s JobStatus) AllowedSources() []JobStatus {
	src := transitionSources[s]
	out := make([]JobStatus, len(src))
	copy(out, src)
	return out
}

// CanTransitionTo reports whether moving from s to next is a legal step.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, from := range transitionSources[next] {
		if from == s {
			return true
		}
	}
	return false
}

// ErrInvalidStatusUpdate is returned when a status update carries a payload that
// does not match its target status.
var ErrInvalidStatusUpdate = errors.New("invalid status update")

// Job is a single pull request review request tracked through its outcome.
type Job struct {
	ID                  string        `json:"id"                     db:"id"`
	RepositoryReference string        `json:"repository_reference"   db:"repository_reference"`
	ChangeIdentifier    string        `json:"change_identifier"      db:"change_identifier"`
	Status              JobStatus     `json:"status"                 db:"status"`
	Result              *ReviewResult `json:"result,omitempty"       db:"result"`
	ErrorDetail         *string       `json:"error_detail,omitempty" db:"error_detail"`
	CreatedAt           time.Time     `json:"created_at"             db:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"             db:"updated_at"`
}

// CreateJobRequest represents a request to create a new review job.
type CreateJobRequest struct {
	RepositoryReference string `json:"repository_reference"`
	ChangeIdentifier    string `json:"change_identifier"`
}

// Validate validates the CreateJobRequest fields.
func (r *CreateJobRequest) Validate() error {
	if strings.TrimSpace(r.RepositoryReference) == "" {
		return errors.New("repository_reference is required")
	}
	if _, err := ParseChangeNumber(r.ChangeIdentifier); err != nil {
		return err
	}
	return nil
}

// ParseChangeNumber parses a pull request number. Only positive integers are accepted.
func ParseChangeNumber(id string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return 0, fmt.Errorf("change_identifier must be a pull request number: %q", id)
	}
	if n <= 0 {
		return 0, fmt.Errorf("change_identifier must be positive, got %d", n)
	}
	return n, nil
}

// UpdateStatusRequest describes one atomic status transition of a job.
type UpdateStatusRequest struct {
	ID          string
	Status      JobStatus
	Result      *ReviewResult
	ErrorDetail string
}

// Validate checks that the payload matches the target status: completed jobs carry
// only a result and failed jobs carry only an error detail.
func (r *UpdateStatusRequest) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidStatusUpdate)
	}
	switch r.Status {
	case JobStatusProcessing:
		if r.Result != nil || r.ErrorDetail != "" {
			return fmt.Errorf("%w: processing carries no outcome", ErrInvalidStatusUpdate)
		}
	case JobStatusCompleted:
		if r.Result == nil {
			return fmt.Errorf("%w: completed requires a result", ErrInvalidStatusUpdate)
		}
		if r.ErrorDetail != "" {
			return fmt.Errorf("%w: completed cannot carry an error", ErrInvalidStatusUpdate)
		}
	case JobStatusFailed:
		if strings.TrimSpace(r.ErrorDetail) == "" {
			return fmt.Errorf("%w: failed requires an error detail", ErrInvalidStatusUpdate)
		}
		if r.Result != nil {
			return fmt.Errorf("%w: failed cannot carry a result", ErrInvalidStatusUpdate)
		}
	case JobStatusPending:
		return fmt.Errorf("%w: pending is only set on creation", ErrInvalidStatusUpdate)
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidStatusUpdate, r.Status)
	}
	return nil
}

// JobStats represents counts of jobs in each status.
type JobStats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// Total returns the number of jobs across all statuses.
func (s JobStats) Total() int {
	return s.Pending + s.Processing + s.Completed + s.Failed
}

// JobStatusResponse represents the read-side view of a job's progress.
type JobStatusResponse struct {
	ID          string    `json:"task_id"`
	Status      JobStatus `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ErrorDetail *string   `json:"error,omitempty"`
}

// StatusResponse builds the status view of the job.
func (j *Job) StatusResponse() JobStatusResponse {
	return JobStatusResponse{
		ID:          j.ID,
		Status:      j.Status,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		ErrorDetail: j.ErrorDetail,
	}
}
