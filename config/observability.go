package config

import (
	"strings"
	"time"
)

const defaultObservabilityName = "prreview"

// ObservabilityConfig groups configuration that controls metrics, tracing, and failure fan-out.
type ObservabilityConfig struct {
	Metrics       ObservabilityMetricsConfig
	Tracing       TracingConfig `envPrefix:"OTEL_"`
	Notifications ObservabilityNotificationsConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
	c.Tracing.Sanitize()
	c.Notifications.Sanitize()
}

// ObservabilityMetricsConfig controls emission of metrics to external sinks such as StatsD.
type ObservabilityMetricsConfig struct {
	Enabled       bool   `env:"METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string `env:"METRICS_PREFIX"         envDefault:"prreview"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	if c.StatsdAddress == "" {
		c.Enabled = false
	}
	c.Prefix = strings.TrimSpace(c.Prefix)
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}

// TracingConfig controls OpenTelemetry trace export.
type TracingConfig struct {
	Enabled     bool    `env:"ENABLED"       envDefault:"false"`
	ServiceName string  `env:"SERVICE_NAME"  envDefault:"prreview"`
	Environment string  `env:"ENVIRONMENT"   envDefault:"development"`
	Endpoint    string  `env:"EXPORTER_OTLP_ENDPOINT"`
	Headers     string  `env:"EXPORTER_OTLP_HEADERS"`
	Insecure    bool    `env:"EXPORTER_OTLP_INSECURE" envDefault:"false"`
	SampleRatio float64 `env:"SAMPLER_RATIO" envDefault:"1"`
}

// Sanitize clamps the sample ratio and restores the service name.
func (c *TracingConfig) Sanitize() {
	if c.ServiceName = strings.TrimSpace(c.ServiceName); c.ServiceName == "" {
		c.ServiceName = defaultObservabilityName
	}
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	switch {
	case c.SampleRatio < 0:
		c.SampleRatio = 0
	case c.SampleRatio > 1:
		c.SampleRatio = 1
	}
}

// ObservabilityNotificationsConfig controls outbound review failure notifications.
type ObservabilityNotificationsConfig struct {
	Enabled    bool                        `env:"NOTIFICATIONS_ENABLED"     envDefault:"false"`
	Timeout    time.Duration               `env:"NOTIFICATIONS_TIMEOUT"     envDefault:"5s"`
	RetryLimit int                         `env:"NOTIFICATIONS_RETRY_LIMIT" envDefault:"3"`
	Slack      SlackNotificationConfig     `                                                   envPrefix:"NOTIFICATIONS_SLACK_"`
	PagerDuty  PagerDutyNotificationConfig `                                                   envPrefix:"NOTIFICATIONS_PAGERDUTY_"`
}

// Sanitize normalises notification configuration values.
func (c *ObservabilityNotificationsConfig) Sanitize() {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.RetryLimit < 0 {
		c.RetryLimit = 0
	}

	c.Slack.sanitize()
	c.PagerDuty.sanitize()

	if !c.Enabled {
		c.Slack.Enabled = false
		c.PagerDuty.Enabled = false
		return
	}

	if c.Slack.Enabled && c.Slack.WebhookURL == "" {
		c.Slack.Enabled = false
	}

	if c.PagerDuty.Enabled && c.PagerDuty.RoutingKey == "" {
		c.PagerDuty.Enabled = false
	}
}

// SlackNotificationConfig controls Slack webhook fan-out.
type SlackNotificationConfig struct {
	Enabled    bool   `env:"ENABLED"     envDefault:"false"`
	WebhookURL string `env:"WEBHOOK_URL"`
	Channel    string `env:"CHANNEL"`
	Username   string `env:"USERNAME"    envDefault:"prreview"`
	// StatusURLPrefix turns job ids into links, e.g. https://reviews.example.com/task-status.
	StatusURLPrefix string `env:"STATUS_URL_PREFIX"`
}

func (c *SlackNotificationConfig) sanitize() {
	c.WebhookURL = strings.TrimSpace(c.WebhookURL)
	c.Channel = strings.TrimSpace(c.Channel)
	c.StatusURLPrefix = strings.TrimRight(strings.TrimSpace(c.StatusURLPrefix), "/")
	if c.Username == "" {
		c.Username = defaultObservabilityName
	}
}

// PagerDutyNotificationConfig controls PagerDuty Events API v2 fan-out.
type PagerDutyNotificationConfig struct {
	Enabled    bool   `env:"ENABLED"     envDefault:"false"`
	RoutingKey string `env:"ROUTING_KEY"`
	Source     string `env:"SOURCE"      envDefault:"prreview"`
	Component  string `env:"COMPONENT"   envDefault:"review-pipeline"`
}

func (c *PagerDutyNotificationConfig) sanitize() {
	c.RoutingKey = strings.TrimSpace(c.RoutingKey)
	if c.Source = strings.TrimSpace(c.Source); c.Source == "" {
		c.Source = defaultObservabilityName
	}
	if c.Component = strings.TrimSpace(c.Component); c.Component == "" {
		c.Component = defaultObservabilityName
	}
}
