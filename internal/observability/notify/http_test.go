package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoster_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := Poster{Name: "test", Client: srv.Client(), RetryLimit: 3, Backoff: time.Millisecond}
	require.NoError(t, p.Post(context.Background(), srv.URL, []byte(`{}`)))
	assert.Equal(t, int32(3), calls.Load())
}

func TestPoster_ReportsLastError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid_payload"))
	}))
	defer srv.Close()

	p := Poster{Name: "test", Client: srv.Client(), RetryLimit: 1, Backoff: time.Millisecond}
	err := p.Post(context.Background(), srv.URL, []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_payload")
	assert.Contains(t, err.Error(), "test 400")
}

func TestPoster_ContextCanceledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	p := Poster{Name: "test", Client: srv.Client(), RetryLimit: 5, Backoff: time.Hour}
	err := p.Post(ctx, srv.URL, []byte(`{}`))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFallback(t *testing.T) {
	assert.Equal(t, "x", Fallback("x", "y"))
	assert.Equal(t, "y", Fallback("  ", "y"))
	assert.Equal(t, "y", Fallback("", "y"))
}
