package config

import (
	"log/slog"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: Job store, Redis and cache configuration
//   - http.go: HTTP server configuration
//   - services.go: Service mode and worker configuration
//   - review.go: Pipeline, GitHub and analysis provider configuration
//   - observability.go: Metrics, tracing and failure notifications
type AppConfig struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Job store configuration
	Store    StoreConfig
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Cache    CacheConfig `envPrefix:"CACHE_"`
	Queue    QueueConfig `envPrefix:"QUEUE_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Service mode configuration
	Services string `env:"SERVICES" envDefault:"http,worker"`

	// Worker configuration
	Worker WorkerConfig `envPrefix:"WORKER_"`

	// Review configuration
	Pipeline PipelineConfig `envPrefix:"PIPELINE_"`
	GitHub   GitHubConfig   `envPrefix:"GITHUB_"`
	Analysis AnalysisConfig `envPrefix:"ANALYSIS_"`

	// Security configuration
	Security SecurityConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Store.Sanitize()
	c.Cache.Sanitize()
	c.Queue.Sanitize()
	c.HTTP.Sanitize()
	c.Worker.Sanitize()
	c.Pipeline.Sanitize()
	c.GitHub.Sanitize()
	c.Analysis.Sanitize()
	c.Security.Sanitize()
	c.Observability.Sanitize()
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsWorkerEnabled returns true if the review worker service is enabled.
func (c *AppConfig) IsWorkerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeWorker]
}
