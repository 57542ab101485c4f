// Package pagerduty triggers PagerDuty Events API v2 incidents for failed review jobs.
package pagerduty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/target/prreview-api/internal/observability/notify"
)

// APIEndpoint is the PagerDuty Events API v2 ingest URL.
const APIEndpoint = "https://events.pagerduty.com/v2/enqueue"

// Config captures runtime configuration for the PagerDuty sink.
type Config struct {
	RoutingKey string
	Source     string
	Component  string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// Endpoint overrides APIEndpoint.
	Endpoint string
}

// Client publishes events via PagerDuty's Events API v2.
type Client struct {
	routingKey string
	source     string
	component  string
	endpoint   string
	poster     notify.Poster
}

var _ notify.Sink = (*Client)(nil)

// NewClient constructs a PagerDuty events client. A routing key is required.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.RoutingKey)
	if key == "" {
		return nil, errors.New("pagerduty routing key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		routingKey: key,
		source:     notify.Fallback(strings.TrimSpace(cfg.Source), "prreview"),
		component:  notify.Fallback(strings.TrimSpace(cfg.Component), "review-pipeline"),
		endpoint:   notify.Fallback(strings.TrimSpace(cfg.Endpoint), APIEndpoint),
		poster:     notify.Poster{Name: "pagerduty api", Client: hc, RetryLimit: cfg.RetryLimit},
	}, nil
}

// SendReviewFailure submits a trigger event to PagerDuty.
func (c *Client) SendReviewFailure(ctx context.Context, payload notify.ReviewFailurePayload) error {
	body, err := json.Marshal(c.buildEvent(payload))
	if err != nil {
		return fmt.Errorf("encode pagerduty payload: %w", err)
	}
	return c.poster.Post(ctx, c.endpoint, body)
}

func (c *Client) buildEvent(payload notify.ReviewFailurePayload) map[string]any {
	severity := notify.Fallback(strings.ToLower(payload.Severity), notify.SeverityCritical)

	occurredAt := payload.OccurredAt.UTC()
	if payload.OccurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	custom := map[string]any{
		"job_id":               payload.JobID,
		"repository_reference": payload.RepositoryReference,
		"change_identifier":    payload.ChangeIdentifier,
		"error":                payload.Error,
		"error_class":          payload.ErrorClass,
	}
	for k, v := range payload.Metadata {
		if _, exists := custom[k]; !exists {
			custom[k] = v
		}
	}

	summary := fmt.Sprintf("Review job %s failed", notify.Fallback(payload.JobID, "unknown"))
	if payload.RepositoryReference != "" {
		summary += fmt.Sprintf(" for %s #%s", payload.RepositoryReference, payload.ChangeIdentifier)
	}

	return map[string]any{
		"routing_key":  c.routingKey,
		"event_action": "trigger",
		"dedup_key":    "review:" + payload.JobID,
		"payload": map[string]any{
			"summary":        summary,
			"severity":       severity,
			"source":         c.source,
			"component":      c.component,
			"class":          payload.ErrorClass,
			"timestamp":      occurredAt.Format(time.RFC3339),
			"custom_details": custom,
		},
	}
}
