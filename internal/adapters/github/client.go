// Package github reads pull request files, contents and metadata from the GitHub REST API.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/target/prreview-api/internal/core"
	"github.com/target/prreview-api/internal/domain/model"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the public GitHub API endpoint.
	DefaultBaseURL = "https://api.github.com"
	// DefaultTimeout bounds every GitHub request.
	DefaultTimeout = 10 * time.Second
	// DefaultPageSize is the largest page GitHub serves for the files endpoint.
	DefaultPageSize = 100
	// DefaultMaxPages caps pagination; GitHub lists at most 3000 files per pull request.
	DefaultMaxPages = 30

	acceptHeader = "application/vnd.github.v3+json"
	maxErrorBody = 4 << 10
)

// ErrSourceNotFound is returned when the requested file or pull request does not exist.
var ErrSourceNotFound = errors.New("source not found")

// StatusError reports an unexpected HTTP status from the API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github api status %d: %s", e.StatusCode, e.Body)
}

// Config configures the GitHub client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	PageSize  int
	MaxPages  int
	UserAgent string
	// HTTPClient is the base client; the token transport wraps its transport.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PageSize <= 0 || c.PageSize > DefaultPageSize {
		c.PageSize = DefaultPageSize
	}
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.UserAgent == "" {
		c.UserAgent = "prreview"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Client implements core.SourceProvider against the GitHub REST API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

var _ core.SourceProvider = (*Client)(nil)

// NewClient builds a client. A non-empty token is sent as a bearer token through
// an oauth2 transport; an empty token makes unauthenticated requests.
func NewClient(cfg Config, token string) *Client {
	cfg = cfg.withDefaults()

	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{}
	}
	hc := base
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	} else {
		clone := *base
		hc = &clone
	}
	hc.Timeout = cfg.Timeout

	return &Client{
		cfg:    cfg,
		http:   hc,
		logger: cfg.Logger.With("component", "github"),
	}
}

// Factory hands out clients per submitter token.
type Factory struct {
	cfg          Config
	defaultToken string
}

var _ core.SourceProviderFactory = (*Factory)(nil)

// NewFactory returns a factory. defaultToken is used for submissions without credentials.
func NewFactory(cfg Config, defaultToken string) *Factory {
	return &Factory{cfg: cfg, defaultToken: defaultToken}
}

// ForToken returns a client authenticated with token, or with the default token when empty.
//
//nolint:ireturn // port factory returns the interface by contract
func (f *Factory) ForToken(token string) core.SourceProvider {
	if token == "" {
		token = f.defaultToken
	}
	return NewClient(f.cfg, token)
}

type pullFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// ListChangedFiles returns every file touched by the pull request, following pagination.
func (c *Client) ListChangedFiles(ctx context.Context, ref model.RepositoryRef) ([]model.ChangedFile, error) {
	out := []model.ChangedFile{}
	for page := 1; page <= c.cfg.MaxPages; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(c.cfg.PageSize))
		q.Set("page", strconv.Itoa(page))

		var files []pullFile
		if err := c.getJSON(ctx, c.repoPath(ref, "pulls", strconv.Itoa(ref.Number), "files"), q, &files); err != nil {
			return nil, fmt.Errorf("list files for %s: %w", ref, err)
		}
		for _, f := range files {
			out = append(out, model.ChangedFile{
				FileName:  f.Filename,
				Status:    mapFileStatus(f.Status),
				Additions: f.Additions,
				Deletions: f.Deletions,
			})
		}
		if len(files) < c.cfg.PageSize {
			return out, nil
		}
	}
	c.logger.WarnContext(ctx, "file list truncated at page limit",
		"repository", ref.String(), "max_pages", c.cfg.MaxPages)
	return out, nil
}

type contentResponse struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// GetFileContent returns the UTF-8 text of path at revision.
func (c *Client) GetFileContent(ctx context.Context, ref model.RepositoryRef, path, revision string) (string, error) {
	q := url.Values{}
	if revision != "" {
		q.Set("ref", revision)
	}

	var body contentResponse
	if err := c.getJSON(ctx, c.repoPath(ref, "contents")+"/"+escapePath(path), q, &body); err != nil {
		return "", fmt.Errorf("get content %s: %w", path, err)
	}
	if body.Type != "" && body.Type != "file" {
		return "", fmt.Errorf("get content %s: not a file (%s)", path, body.Type)
	}
	if body.Encoding != "base64" {
		// GitHub returns encoding "none" for files above the contents API limit.
		return "", fmt.Errorf("get content %s: unsupported encoding %q", path, body.Encoding)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(body.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decode content %s: %w", path, err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("get content %s: not valid UTF-8 text", path)
	}
	return string(raw), nil
}

type pullResponse struct {
	Title string `json:"title"`
	State string `json:"state"`
	User  struct {
		Login string `json:"login"`
	} `json:"user"`
	Head struct {
		SHA string `json:"sha"`
	} `json:"head"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetMetadata returns descriptive data about the pull request.
func (c *Client) GetMetadata(ctx context.Context, ref model.RepositoryRef) (*model.PullRequestMetadata, error) {
	var pr pullResponse
	if err := c.getJSON(ctx, c.repoPath(ref, "pulls", strconv.Itoa(ref.Number)), nil, &pr); err != nil {
		return nil, fmt.Errorf("get pull request %s: %w", ref, err)
	}
	return &model.PullRequestMetadata{
		Title:     pr.Title,
		Author:    pr.User.Login,
		State:     pr.State,
		HeadSHA:   pr.Head.SHA,
		CreatedAt: pr.CreatedAt,
		UpdatedAt: pr.UpdatedAt,
	}, nil
}

func (c *Client) repoPath(ref model.RepositoryRef, parts ...string) string {
	segs := append([]string{"repos", url.PathEscape(ref.Owner), url.PathEscape(ref.Name)}, parts...)
	return "/" + strings.Join(segs, "/")
}

func escapePath(p string) string {
	parts := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, dst any) error {
	u := c.cfg.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.DebugContext(ctx, "close response body", "error", cerr)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrSourceNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func mapFileStatus(s string) model.ChangedFileStatus {
	switch model.ChangedFileStatus(s) {
	case model.ChangedFileAdded, model.ChangedFileRemoved, model.ChangedFileRenamed:
		return model.ChangedFileStatus(s)
	default:
		return model.ChangedFileModified
	}
}
