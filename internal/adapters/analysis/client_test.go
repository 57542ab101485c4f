package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/prreview-api/internal/domain/model"
)

func completionBody(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{BaseURL: srv.URL, APIKey: "sk-test", RetryBaseDelay: time.Millisecond}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

func TestClient_Analyze(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.Zero(t, req.Temperature)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "File: main.go")
		assert.Contains(t, req.Messages[1].Content, "func main()")

		require.NoError(t, json.NewEncoder(w).Encode(completionBody(
			`{"issues":[{"type":"performance","line":2,"description":"allocates in loop","suggestion":"preallocate"}]}`,
		)))
	})

	got, err := c.Analyze(context.Background(), "main.go", "package main\nfunc main() {}\n")
	require.NoError(t, err)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, model.IssueCategoryPerformance, got.Issues[0].Category)
	assert.Equal(t, 2, got.Issues[0].Line)
}

func TestClient_Analyze_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			require.NoError(t, json.NewEncoder(w).Encode(completionBody(`{"issues":[]}`)))
		}
	})

	got, err := c.Analyze(context.Background(), "a.go", "package a")
	require.NoError(t, err)
	assert.Empty(t, got.Issues)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Analyze_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(cfg *Config) { cfg.MaxRetries = 2 })

	_, err := c.Analyze(context.Background(), "a.go", "package a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Analyze_NegativeMaxRetriesDisablesRetry(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, func(cfg *Config) { cfg.MaxRetries = -1 })

	_, err := c.Analyze(context.Background(), "a.go", "package a")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestConfig_MaxRetriesDefaults(t *testing.T) {
	assert.Equal(t, DefaultMaxRetries, Config{}.withDefaults().MaxRetries)
	assert.Equal(t, 5, Config{MaxRetries: 5}.withDefaults().MaxRetries)
	assert.Zero(t, Config{MaxRetries: -1}.withDefaults().MaxRetries)
}

func TestClient_Analyze_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	})

	_, err := c.Analyze(context.Background(), "a.go", "package a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Analyze_MalformedOutput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(completionBody("I found no problems.")))
	})

	_, err := c.Analyze(context.Background(), "a.go", "package a")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
}

func TestClient_Analyze_EmptyCompletion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Analyze(context.Background(), "a.go", "package a")
	require.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestClient_Analyze_TruncatesContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompt := req.Messages[1].Content
		assert.Contains(t, prompt, "Only the beginning of the file is shown.")
		assert.Contains(t, prompt, strings.Repeat("a", 16))
		assert.NotContains(t, prompt, "TAIL")
		require.NoError(t, json.NewEncoder(w).Encode(completionBody(`{"issues":[]}`)))
	}, func(cfg *Config) { cfg.MaxContentBytes = 16 })

	_, err := c.Analyze(context.Background(), "a.go", strings.Repeat("a", 16)+"TAIL")
	require.NoError(t, err)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{Temperature: 3})
	require.Error(t, err)

	_, err = NewClient(Config{CompletionPath: "choices[0"})
	require.Error(t, err)

	c, err := NewClient(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.cfg.BaseURL)
	assert.Equal(t, DefaultMaxContentBytes, c.cfg.MaxContentBytes)
}

func TestTruncate(t *testing.T) {
	s, cut := Truncate("hello", 10)
	assert.Equal(t, "hello", s)
	assert.False(t, cut)

	s, cut = Truncate("hello world", 5)
	assert.Equal(t, "hello", s)
	assert.True(t, cut)

	// "é" is two bytes; cutting inside it backs up to the rune start.
	s, cut = Truncate("aé", 2)
	assert.Equal(t, "a", s)
	assert.True(t, cut)
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retryWithBackoff(ctx, 5, time.Hour, func() error {
		calls++
		cancel()
		return &retryableError{statusCode: 429}
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
