// Package analysis calls an OpenAI-compatible chat completions endpoint to review one file.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/target/prreview-api/internal/core"
	"github.com/target/prreview-api/internal/domain/model"
)

const (
	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-4o-mini"
	// DefaultMaxContentBytes bounds the file content sent to the provider. Longer
	// files are cut at a UTF-8 boundary and only the prefix is reviewed.
	DefaultMaxContentBytes = 12000
	// DefaultTimeout bounds one HTTP attempt.
	DefaultTimeout = 60 * time.Second
	// DefaultMaxRetries is the number of retries after a 429 or 5xx response.
	DefaultMaxRetries = 3
	// DefaultMaxTokens caps the completion length.
	DefaultMaxTokens = 2048
	// DefaultCompletionPath selects the completion text from the response body.
	DefaultCompletionPath = "choices[0].message.content"

	maxErrorBody = 4 << 10
)

// ErrEmptyCompletion is returned when the provider response carries no completion text.
var ErrEmptyCompletion = errors.New("analysis provider returned no completion text")

// Config configures the analysis client.
type Config struct {
	BaseURL         string
	APIKey          string
	Model           string
	Temperature     float64
	MaxTokens       int
	MaxContentBytes int
	Timeout         time.Duration
	// MaxRetries of zero selects DefaultMaxRetries; a negative value disables retries.
	MaxRetries     int
	RetryBaseDelay time.Duration
	// CompletionPath is a JMESPath expression over the response body.
	CompletionPath string
	HTTPClient     *http.Client
	Logger         *slog.Logger
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.MaxContentBytes <= 0 {
		c.MaxContentBytes = DefaultMaxContentBytes
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	switch {
	case c.MaxRetries == 0:
		c.MaxRetries = DefaultMaxRetries
	case c.MaxRetries < 0:
		c.MaxRetries = 0
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = time.Second
	}
	if c.CompletionPath == "" {
		c.CompletionPath = DefaultCompletionPath
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Client implements core.AnalysisProvider.
type Client struct {
	cfg        Config
	http       *http.Client
	completion string
	logger     *slog.Logger
}

var _ core.AnalysisProvider = (*Client)(nil)

// NewClient validates cfg and builds a client.
func NewClient(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be within [0, 2], got %v", cfg.Temperature)
	}
	if _, err := jmespath.Compile(cfg.CompletionPath); err != nil {
		return nil, fmt.Errorf("invalid completion path %q: %w", cfg.CompletionPath, err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:        cfg,
		http:       hc,
		completion: cfg.CompletionPath,
		logger:     cfg.Logger.With("component", "analysis", "model", cfg.Model),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// Analyze reviews one file. Content beyond MaxContentBytes is not sent. Provider
// output that fails validation is reported as *ParseError.
func (c *Client) Analyze(ctx context.Context, fileName, content string) (*model.FileAnalysis, error) {
	content, truncated := Truncate(content, c.cfg.MaxContentBytes)
	if truncated {
		c.logger.DebugContext(ctx, "file content truncated", "file", fileName, "limit_bytes", c.cfg.MaxContentBytes)
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(fileName, content, truncated)},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var text string
	err = retryWithBackoff(ctx, c.cfg.MaxRetries, c.cfg.RetryBaseDelay, func() error {
		t, callErr := c.complete(ctx, payload)
		if callErr != nil {
			return callErr
		}
		text = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", fileName, err)
	}
	return ParseAnalysis(text)
}

func (c *Client) complete(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("analysis request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.DebugContext(ctx, "close response body", "error", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		body := strings.TrimSpace(string(b))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			c.logger.WarnContext(ctx, "analysis provider retryable status", "status", resp.StatusCode)
			return "", &retryableError{statusCode: resp.StatusCode, body: body}
		}
		return "", fmt.Errorf("analysis provider status %d: %s", resp.StatusCode, body)
	}

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return c.extractCompletion(doc)
}

func (c *Client) extractCompletion(doc any) (string, error) {
	v, err := jmespath.Search(c.completion, doc)
	if err != nil {
		return "", fmt.Errorf("evaluate completion path: %w", err)
	}
	text, ok := v.(string)
	if !ok || strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// Truncate cuts s to at most limit bytes without splitting a UTF-8 sequence.
func Truncate(s string, limit int) (string, bool) {
	if limit <= 0 || len(s) <= limit {
		return s, false
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}
