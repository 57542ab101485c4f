package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/prreview-api/internal/domain/model"
)

var testRef = model.RepositoryRef{Host: "github.com", Owner: "octo", Name: "widgets", Number: 7}

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_ListChangedFiles_Paginates(t *testing.T) {
	all := []pullFile{
		{Filename: "a.go", Status: "modified", Additions: 3},
		{Filename: "b.go", Status: "added"},
		{Filename: "c.go", Status: "removed"},
		{Filename: "d.go", Status: "copied"},
		{Filename: "e.go", Status: "renamed"},
	}
	var pages []int
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/widgets/pulls/7/files", r.URL.Path)
		assert.Equal(t, acceptHeader, r.Header.Get("Accept"))
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		require.NoError(t, err)
		pages = append(pages, page)

		start := (page - 1) * 2
		end := min(start+2, len(all))
		writeJSON(t, w, all[start:end])
	})

	c := NewClient(Config{BaseURL: srv.URL, PageSize: 2}, "")
	files, err := c.ListChangedFiles(context.Background(), testRef)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, pages)
	require.Len(t, files, 5)
	assert.Equal(t, "a.go", files[0].FileName)
	assert.Equal(t, 3, files[0].Additions)
	assert.Equal(t, model.ChangedFileAdded, files[1].Status)
	assert.Equal(t, model.ChangedFileRemoved, files[2].Status)
	assert.Equal(t, model.ChangedFileModified, files[3].Status)
	assert.Equal(t, model.ChangedFileRenamed, files[4].Status)
}

func TestClient_ListChangedFiles_EmptyAndMaxPages(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, []pullFile{})
		})
		files, err := NewClient(Config{BaseURL: srv.URL}, "").ListChangedFiles(context.Background(), testRef)
		require.NoError(t, err)
		assert.NotNil(t, files)
		assert.Empty(t, files)
	})

	t.Run("stops at max pages", func(t *testing.T) {
		calls := 0
		srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			calls++
			writeJSON(t, w, []pullFile{{Filename: "x.go"}})
		})
		c := NewClient(Config{BaseURL: srv.URL, PageSize: 1, MaxPages: 3}, "")
		files, err := c.ListChangedFiles(context.Background(), testRef)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Len(t, files, 3)
	})
}

func TestClient_SendsBearerToken(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ghp_test", r.Header.Get("Authorization"))
		writeJSON(t, w, []pullFile{})
	})

	_, err := NewClient(Config{BaseURL: srv.URL}, "ghp_test").ListChangedFiles(context.Background(), testRef)
	require.NoError(t, err)
}

func TestFactory_DefaultToken(t *testing.T) {
	var got []string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		writeJSON(t, w, []pullFile{})
	})

	f := NewFactory(Config{BaseURL: srv.URL}, "default-token")
	ctx := context.Background()
	_, err := f.ForToken("").ListChangedFiles(ctx, testRef)
	require.NoError(t, err)
	_, err = f.ForToken("user-token").ListChangedFiles(ctx, testRef)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer default-token", "Bearer user-token"}, got)
}

func TestClient_GetFileContent(t *testing.T) {
	src := "package main\n\nfunc main() {}\n"
	encoded := base64.StdEncoding.EncodeToString([]byte(src))
	wrapped := encoded[:10] + "\n" + encoded[10:]

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/octo/widgets/contents/cmd/app/main.go":
			assert.Equal(t, "abc123", r.URL.Query().Get("ref"))
			writeJSON(t, w, contentResponse{Type: "file", Encoding: "base64", Content: wrapped})
		case "/repos/octo/widgets/contents/big.bin":
			writeJSON(t, w, contentResponse{Type: "file", Encoding: "none"})
		case "/repos/octo/widgets/contents/dir":
			writeJSON(t, w, contentResponse{Type: "dir"})
		case "/repos/octo/widgets/contents/binary.dat":
			writeJSON(t, w, contentResponse{
				Type: "file", Encoding: "base64",
				Content: base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0x00}),
			})
		default:
			http.NotFound(w, r)
		}
	})

	c := NewClient(Config{BaseURL: srv.URL}, "")
	ctx := context.Background()

	got, err := c.GetFileContent(ctx, testRef, "cmd/app/main.go", "abc123")
	require.NoError(t, err)
	assert.Equal(t, src, got)

	_, err = c.GetFileContent(ctx, testRef, "missing.go", "abc123")
	require.ErrorIs(t, err, ErrSourceNotFound)

	_, err = c.GetFileContent(ctx, testRef, "big.bin", "abc123")
	require.ErrorContains(t, err, "unsupported encoding")

	_, err = c.GetFileContent(ctx, testRef, "dir", "abc123")
	require.ErrorContains(t, err, "not a file")

	_, err = c.GetFileContent(ctx, testRef, "binary.dat", "abc123")
	require.ErrorContains(t, err, "UTF-8")
}

func TestClient_GetMetadata(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/widgets/pulls/7", r.URL.Path)
		_, err := w.Write([]byte(`{
			"title": "Add widgets",
			"state": "open",
			"user": {"login": "octocat"},
			"head": {"sha": "0123456789abcdef0123456789abcdef01234567"},
			"created_at": "2024-01-02T03:04:05Z",
			"updated_at": "2024-01-03T03:04:05Z"
		}`))
		require.NoError(t, err)
	})

	meta, err := NewClient(Config{BaseURL: srv.URL}, "").GetMetadata(context.Background(), testRef)
	require.NoError(t, err)
	assert.Equal(t, "Add widgets", meta.Title)
	assert.Equal(t, "octocat", meta.Author)
	assert.Equal(t, "open", meta.State)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", meta.HeadSHA)
	assert.Equal(t, 2024, meta.CreatedAt.Year())
}

func TestClient_StatusError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"rate limit exceeded"}`))
	})

	_, err := NewClient(Config{BaseURL: srv.URL}, "").ListChangedFiles(context.Background(), testRef)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.Contains(t, se.Body, "rate limit")
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{BaseURL: "https://ghe.example.com/api/v3/", PageSize: 500}.withDefaults()
	assert.Equal(t, "https://ghe.example.com/api/v3", cfg.BaseURL)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultMaxPages, cfg.MaxPages)

	assert.Equal(t, DefaultBaseURL, Config{}.withDefaults().BaseURL)
}
