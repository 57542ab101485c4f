package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// retryableError marks a response worth retrying (rate limiting or a server error).
type retryableError struct {
	statusCode int
	body       string
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("analysis provider status %d: %s", e.statusCode, e.body)
}

// retryWithBackoff calls fn until it succeeds, returns a non-retryable error, or
// maxRetries retries have been spent. The delay doubles from base after each attempt.
func retryWithBackoff(ctx context.Context, maxRetries int, base time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var re *retryableError
		if !errors.As(lastErr, &re) {
			return lastErr
		}

		if attempt < maxRetries {
			timer := time.NewTimer(base << uint(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return lastErr
}
