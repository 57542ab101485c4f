package config

import (
	"log/slog"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:     "single service - http",
			input:    "http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:     "single service - worker",
			input:    "worker",
			expected: map[ServiceMode]bool{ServiceModeWorker: true},
		},
		{
			name:     "services with spaces",
			input:    " http , worker ",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true, ServiceModeWorker: true},
		},
		{
			name:     "duplicate services",
			input:    "worker,worker,http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true, ServiceModeWorker: true},
		},
		{name: "empty string", input: "", expectError: true},
		{name: "only spaces and commas", input: " , , ", expectError: true},
		{name: "invalid service name", input: "http,scheduler", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseServices(tt.input)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAppConfig_ServiceToggles(t *testing.T) {
	cfg := AppConfig{Services: "worker"}
	assert.False(t, cfg.IsHTTPServerEnabled())
	assert.True(t, cfg.IsWorkerEnabled())

	cfg.Services = "bogus"
	assert.False(t, cfg.IsHTTPServerEnabled())
	assert.False(t, cfg.IsWorkerEnabled())
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "prreview", cfg.Postgres.Name)
	assert.Equal(t, "prreview:reviews", cfg.Queue.Name)
	assert.Equal(t, 4, cfg.Pipeline.Concurrency)
	assert.Equal(t, 10, cfg.Pipeline.MaxFiles)
	assert.Equal(t, 90*time.Second, cfg.Pipeline.AnalyzeTimeout)
	assert.Equal(t, []string{"github.com"}, cfg.Pipeline.AllowedHosts)
	assert.Equal(t, "https://api.github.com", cfg.GitHub.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.Analysis.Model)
	assert.Equal(t, 12000, cfg.Analysis.MaxContentBytes)
	assert.True(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Observability.Metrics.IsEnabled())
	assert.False(t, cfg.Observability.Tracing.Enabled)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.True(t, cfg.IsHTTPServerEnabled())
	assert.True(t, cfg.IsWorkerEnabled())
}

func TestAppConfig_ParseEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", " SQLite ")
	t.Setenv("SQLITE_PATH", "/tmp/reviews.db")
	t.Setenv("PIPELINE_CONCURRENCY", "8")
	t.Setenv("PIPELINE_MAX_FILES", "-1")
	t.Setenv("PIPELINE_ALLOWED_HOSTS", "github.com, github.example.com ,")
	t.Setenv("GITHUB_TOKEN", " ghp_default ")
	t.Setenv("GITHUB_BASE_URL", "https://github.example.com/api/v3/")
	t.Setenv("ANALYSIS_MODEL", "gpt-4o")
	t.Setenv("WORKER_CONCURRENCY", "3")
	t.Setenv("CACHE_TTL", "0s")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_SAMPLER_RATIO", "4")
	t.Setenv("LOG_LEVEL", "DEBUG")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/reviews.db", cfg.Store.SQLitePath)
	assert.Equal(t, 8, cfg.Pipeline.Concurrency)
	assert.Equal(t, -1, cfg.Pipeline.MaxFiles)
	assert.Equal(t, []string{"github.com", "github.example.com"}, cfg.Pipeline.AllowedHosts)
	assert.Equal(t, "ghp_default", cfg.GitHub.Token)
	assert.Equal(t, "https://github.example.com/api/v3", cfg.GitHub.BaseURL)
	assert.Equal(t, "gpt-4o", cfg.Analysis.Model)
	assert.Equal(t, 3, cfg.Worker.Concurrency)
	assert.False(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Observability.Tracing.Enabled)
	assert.Equal(t, "collector:4318", cfg.Observability.Tracing.Endpoint)
	assert.InDelta(t, 1.0, cfg.Observability.Tracing.SampleRatio, 0.0001)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestStoreConfig_UnknownDriver(t *testing.T) {
	s := StoreConfig{Driver: "mysql"}
	s.Sanitize()
	assert.Equal(t, StoreDriverPostgres, s.Driver)
	assert.Equal(t, "prreview.db", s.SQLitePath)
}

func TestAnalysisConfig_SanitizeMaxRetries(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{in: 3, want: 3},
		{in: 0, want: -1},
		{in: -4, want: -1},
	}
	for _, tt := range tests {
		a := AnalysisConfig{MaxRetries: tt.in}
		a.Sanitize()
		assert.Equal(t, tt.want, a.MaxRetries, "MAX_RETRIES=%d", tt.in)
	}
}

func TestWorkerConfig_Sanitize(t *testing.T) {
	w := WorkerConfig{Concurrency: 0, DequeueWait: -time.Second, DepthInterval: -time.Second}
	w.Sanitize()
	assert.Equal(t, 1, w.Concurrency)
	assert.Equal(t, 5*time.Second, w.DequeueWait)
	assert.Equal(t, time.Second, w.ErrorBackoff)
	assert.Zero(t, w.DepthInterval)
}

func TestObservabilityNotificationsConfig_Sanitize(t *testing.T) {
	tests := []struct {
		name          string
		cfg           ObservabilityNotificationsConfig
		wantSlack     bool
		wantPagerDuty bool
	}{
		{
			name: "disabled globally",
			cfg: ObservabilityNotificationsConfig{
				Slack:     SlackNotificationConfig{Enabled: true, WebhookURL: "https://hooks.example.com/x"},
				PagerDuty: PagerDutyNotificationConfig{Enabled: true, RoutingKey: "rk"},
			},
		},
		{
			name: "missing credentials",
			cfg: ObservabilityNotificationsConfig{
				Enabled:   true,
				Slack:     SlackNotificationConfig{Enabled: true, WebhookURL: "  "},
				PagerDuty: PagerDutyNotificationConfig{Enabled: true},
			},
		},
		{
			name: "both configured",
			cfg: ObservabilityNotificationsConfig{
				Enabled:   true,
				Slack:     SlackNotificationConfig{Enabled: true, WebhookURL: "https://hooks.example.com/x"},
				PagerDuty: PagerDutyNotificationConfig{Enabled: true, RoutingKey: "rk"},
			},
			wantSlack:     true,
			wantPagerDuty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Sanitize()
			assert.Equal(t, tt.wantSlack, cfg.Slack.Enabled)
			assert.Equal(t, tt.wantPagerDuty, cfg.PagerDuty.Enabled)
			assert.Equal(t, 5*time.Second, cfg.Timeout)
			assert.Equal(t, defaultObservabilityName, cfg.Slack.Username)
		})
	}
}

func TestObservabilityMetricsConfig_BlankAddressDisables(t *testing.T) {
	m := ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "  "}
	m.Sanitize()
	assert.False(t, m.IsEnabled())
}
