package model

import (
	"errors"
	"strings"
)

// ErrQueueEmpty is returned when no task arrived within the dequeue wait.
var ErrQueueEmpty = errors.New("queue empty")

// ReviewTask is the message handed from the dispatcher to a worker through the work queue.
// Credentials hold a sealed provider token; an empty value means the worker default applies.
type ReviewTask struct {
	JobID               string `json:"job_id"`
	RepositoryReference string `json:"repository_reference"`
	ChangeIdentifier    string `json:"change_identifier"`
	Credentials         string `json:"credentials,omitempty"`
}

// Validate validates the ReviewTask fields.
func (t *ReviewTask) Validate() error {
	if strings.TrimSpace(t.JobID) == "" {
		return errors.New("job_id is required")
	}
	if strings.TrimSpace(t.RepositoryReference) == "" {
		return errors.New("repository_reference is required")
	}
	if strings.TrimSpace(t.ChangeIdentifier) == "" {
		return errors.New("change_identifier is required")
	}
	return nil
}

// SubmitReviewRequest is the input accepted by the dispatcher.
type SubmitReviewRequest struct {
	RepositoryReference string
	ChangeIdentifier    string
	Credentials         string
}
