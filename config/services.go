package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeWorker runs the review worker that drains the work queue.
	ServiceModeWorker ServiceMode = "worker"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeHTTP,
		ServiceModeWorker,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeWorker:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, worker)", serviceName)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// WorkerConfig contains review worker configuration.
type WorkerConfig struct {
	// Concurrency is the number of tasks processed in parallel.
	Concurrency int `env:"CONCURRENCY" envDefault:"2"`

	// DequeueWait bounds each blocking dequeue.
	DequeueWait time.Duration `env:"DEQUEUE_WAIT" envDefault:"5s"`

	// ErrorBackoff is the pause after a queue error.
	ErrorBackoff time.Duration `env:"ERROR_BACKOFF" envDefault:"1s"`

	// DepthInterval controls queue depth gauges; zero disables them.
	DepthInterval time.Duration `env:"DEPTH_INTERVAL" envDefault:"30s"`

	// RequeueOnStart moves in-flight tasks left by a previous process back to pending.
	RequeueOnStart bool `env:"REQUEUE_ON_START" envDefault:"false"`
}

// Sanitize applies guardrails to worker configuration values.
func (w *WorkerConfig) Sanitize() {
	if w.Concurrency < 1 {
		w.Concurrency = 1
	}
	if w.DequeueWait <= 0 {
		w.DequeueWait = 5 * time.Second
	}
	if w.ErrorBackoff <= 0 {
		w.ErrorBackoff = time.Second
	}
	if w.DepthInterval < 0 {
		w.DepthInterval = 0
	}
}
