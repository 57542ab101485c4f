// Package notify defines the payload and sink contract for review failure notifications.
package notify

import (
	"context"
	"strings"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
	SeverityError    = "error"
	SeverityWarning  = "warning"
)

// ReviewFailurePayload captures the data emitted when a review job fails.
type ReviewFailurePayload struct {
	JobID               string
	RepositoryReference string
	ChangeIdentifier    string
	Error               string
	ErrorClass          string
	Severity            string
	OccurredAt          time.Time
	Metadata            map[string]string
}

// Sink describes a destination capable of consuming review failure notifications.
type Sink interface {
	SendReviewFailure(ctx context.Context, payload ReviewFailurePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload ReviewFailurePayload) error

// SendReviewFailure implements the Sink interface.
func (f SinkFunc) SendReviewFailure(ctx context.Context, payload ReviewFailurePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}

// Fallback returns value, or fallback when value is blank.
func Fallback(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
