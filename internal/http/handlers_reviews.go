// Package httpx provides the HTTP API for submitting pull request reviews and reading their outcome.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/target/prreview-api/internal/domain/model"
	"github.com/target/prreview-api/internal/service"
)

const defaultListLimit = 50

// ReviewHandlers serves the review submission and read endpoints.
type ReviewHandlers struct {
	Dispatcher *service.DispatcherService
	Jobs       *service.JobService
}

type analyzePRRequest struct {
	RepoURL     string      `json:"repo_url"`
	PRNumber    json.Number `json:"pr_number"`
	GitHubToken string      `json:"github_token,omitempty"`
}

type taskResponse struct {
	TaskID  string          `json:"task_id"`
	Status  model.JobStatus `json:"status"`
	Message string          `json:"message"`
}

type resultResponse struct {
	TaskID       string              `json:"task_id"`
	Status       model.JobStatus     `json:"status"`
	Results      *model.ReviewResult `json:"results,omitempty"`
	ErrorMessage *string             `json:"error_message,omitempty"`
}

type taskSummary struct {
	TaskID              string          `json:"task_id"`
	RepositoryReference string          `json:"repository_reference"`
	ChangeIdentifier    string          `json:"change_identifier"`
	Status              model.JobStatus `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// AnalyzePR accepts a review request and returns 202 with the new task id.
func (h *ReviewHandlers) AnalyzePR(w http.ResponseWriter, r *http.Request) {
	var req analyzePRRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	id, err := h.Dispatcher.Submit(r.Context(), model.SubmitReviewRequest{
		RepositoryReference: req.RepoURL,
		ChangeIdentifier:    req.PRNumber.String(),
		Credentials:         strings.TrimSpace(req.GitHubToken),
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, taskResponse{
		TaskID:  id,
		Status:  model.JobStatusPending,
		Message: "PR analysis has been queued",
	})
}

// TaskStatus returns the progress view of a task.
func (h *ReviewHandlers) TaskStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Jobs.GetStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

// TaskResult returns the review of a completed task or the error of a failed one.
// Tasks that have not finished report their status with 200.
func (h *ReviewHandlers) TaskResult(w http.ResponseWriter, r *http.Request) {
	job, err := h.Jobs.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if !job.Status.Terminal() {
		WriteJSON(w, http.StatusOK, taskResponse{
			TaskID:  job.ID,
			Status:  job.Status,
			Message: "Task is still processing",
		})
		return
	}

	WriteJSON(w, http.StatusOK, resultResponse{
		TaskID:       job.ID,
		Status:       job.Status,
		Results:      job.Result,
		ErrorMessage: job.ErrorDetail,
	})
}

// ListTasks returns the most recent tasks, newest first.
func (h *ReviewHandlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_query",
				Err:     errors.New("limit must be a positive integer"),
			})
			return
		}
		limit = n
	}

	jobs, err := h.Jobs.ListRecent(r.Context(), limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	out := make([]taskSummary, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, taskSummary{
			TaskID:              j.ID,
			RepositoryReference: j.RepositoryReference,
			ChangeIdentifier:    j.ChangeIdentifier,
			Status:              j.Status,
			CreatedAt:           j.CreatedAt,
			UpdatedAt:           j.UpdatedAt,
		})
	}
	WriteJSON(w, http.StatusOK, map[string]any{"tasks": out})
}

// Stats returns per-status task counts.
func (h *ReviewHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Jobs.Stats(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"pending":    stats.Pending,
		"processing": stats.Processing,
		"completed":  stats.Completed,
		"failed":     stats.Failed,
		"total":      stats.Total(),
	})
}
