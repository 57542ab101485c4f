// Package slack posts review failure notifications to a Slack incoming webhook.
package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/target/prreview-api/internal/observability/notify"
)

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// StatusURLPrefix, when set, turns job ids into links (prefix + "/" + job id).
	StatusURLPrefix string
}

// Client delivers review failure notifications to a Slack webhook.
type Client struct {
	webhookURL      string
	channel         string
	username        string
	statusURLPrefix string
	poster          notify.Poster
}

var _ notify.Sink = (*Client)(nil)

// NewClient builds a Slack webhook client.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
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
		webhookURL:      webhookURL,
		channel:         strings.TrimSpace(cfg.Channel),
		username:        notify.Fallback(strings.TrimSpace(cfg.Username), "prreview"),
		statusURLPrefix: strings.TrimSpace(cfg.StatusURLPrefix),
		poster:          notify.Poster{Name: "slack webhook", Client: hc, RetryLimit: cfg.RetryLimit},
	}, nil
}

// SendReviewFailure posts a formatted message to Slack.
func (c *Client) SendReviewFailure(ctx context.Context, payload notify.ReviewFailurePayload) error {
	body, err := json.Marshal(c.formatMessage(payload))
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}
	return c.poster.Post(ctx, c.webhookURL, body)
}

func (c *Client) formatMessage(payload notify.ReviewFailurePayload) map[string]any {
	var text strings.Builder
	text.WriteString("*Review job failed*")
	if payload.JobID != "" {
		text.WriteString(" ")
		text.WriteString(c.jobLabel(payload.JobID))
	}
	text.WriteByte('\n')

	change := ""
	if payload.RepositoryReference != "" {
		change = escape(payload.RepositoryReference)
		if payload.ChangeIdentifier != "" {
			change += " #" + escape(payload.ChangeIdentifier)
		}
	}
	writeField(&text, "Severity", notify.Fallback(payload.Severity, notify.SeverityCritical))
	writeField(&text, "Change", change)
	writeField(&text, "Error class", payload.ErrorClass)
	writeField(&text, "Error", escape(payload.Error))
	writeMetadata(&text, payload.Metadata)

	occurred := payload.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	text.WriteString("• Timestamp: ")
	text.WriteString(occurred.UTC().Format(time.RFC3339))

	msg := map[string]any{
		"text":     text.String(),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

func (c *Client) jobLabel(jobID string) string {
	id := escape(jobID)
	if c.statusURLPrefix == "" {
		return "`" + id + "`"
	}
	u, err := url.Parse(c.statusURLPrefix)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "`" + id + "`"
	}
	link, err := url.JoinPath(u.String(), jobID)
	if err != nil {
		return "`" + id + "`"
	}
	return fmt.Sprintf("<%s|%s>", link, id)
}

func escape(value string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(value)
}

func writeField(text *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(text, "• %s: %s\n", label, value)
}

func writeMetadata(text *strings.Builder, metadata map[string]string) {
	if len(metadata) == 0 {
		return
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	text.WriteString("• Metadata:\n")
	for _, k := range keys {
		fmt.Fprintf(text, "    • %s: %s\n", k, escape(metadata[k]))
	}
}
