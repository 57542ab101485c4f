package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandlers_Health(t *testing.T) {
	okCheck := func(context.Context) error { return nil }
	downCheck := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "no checks",
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name:       "all dependencies up",
			checks:     map[string]HealthCheck{"database": okCheck, "redis": okCheck},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
			wantChecks: map[string]string{"database": "ok", "redis": "ok"},
		},
		{
			name:       "redis down",
			checks:     map[string]HealthCheck{"database": okCheck, "redis": downCheck},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "degraded",
			wantChecks: map[string]string{"database": "ok", "redis": "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HealthHandlers{Checks: tt.checks}
			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body healthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantChecks, body.Checks)
		})
	}
}

func TestHealthHandlers_HeadHasNoBody(t *testing.T) {
	h := &HealthHandlers{Checks: map[string]HealthCheck{
		"database": func(context.Context) error { return errors.New("down") },
	}}
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodHead, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestHealthHandlers_TimeoutBoundsChecks(t *testing.T) {
	h := &HealthHandlers{
		Timeout: 20 * time.Millisecond,
		Checks: map[string]HealthCheck{
			"database": func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		},
	}

	start := time.Now()
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), context.DeadlineExceeded.Error())
}
