package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBody = 4 << 10

// Poster delivers JSON bodies to a webhook-style endpoint with linear backoff retries.
type Poster struct {
	// Name prefixes error messages, e.g. "slack".
	Name       string
	Client     *http.Client
	RetryLimit int
	// Backoff is the delay unit; attempt n waits n*Backoff. Zero selects 200ms.
	Backoff time.Duration
}

// Post sends body to url, retrying up to RetryLimit times on any failure.
func (p Poster) Post(ctx context.Context, url string, body []byte) error {
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := max(p.RetryLimit, 0) + 1

	var lastErr error
	for attempt := range attempts {
		lastErr = p.postOnce(ctx, url, body)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

func (p Poster) postOnce(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", p.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", p.Name, err)
	}

	var statusErr error
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			statusErr = fmt.Errorf("read %s error response: %w", p.Name, readErr)
		} else {
			statusErr = fmt.Errorf("%s %s: %s", p.Name, resp.Status, strings.TrimSpace(string(b)))
		}
	} else if _, drainErr := io.Copy(io.Discard, resp.Body); drainErr != nil {
		statusErr = fmt.Errorf("drain %s response body: %w", p.Name, drainErr)
	}

	if closeErr := resp.Body.Close(); closeErr != nil {
		return errors.Join(statusErr, fmt.Errorf("close response body: %w", closeErr))
	}
	return statusErr
}
