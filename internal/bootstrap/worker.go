package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/target/prreview-api/config"
	"github.com/target/prreview-api/internal/adapters/reviewrunner"
)

// WorkerConfig contains configuration for the review worker.
type WorkerConfig struct {
	Services ServiceContainer
	Worker   config.WorkerConfig
	Logger   *slog.Logger
}

// RunWorker drains the review queue until ctx is cancelled.
func RunWorker(ctx context.Context, cfg WorkerConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Worker.RequeueOnStart && cfg.Services.Queue != nil {
		moved, err := cfg.Services.Queue.RequeueInflight(ctx)
		if err != nil {
			return fmt.Errorf("requeue in-flight tasks: %w", err)
		}
		if moved > 0 {
			logger.InfoContext(ctx, "requeued in-flight review tasks", "count", moved)
		}
	}

	runner, err := reviewrunner.NewRunner(reviewrunner.RunnerOptions{
		Queue:         cfg.Services.Queue,
		Pipeline:      cfg.Services.Pipeline,
		Logger:        logger,
		Metrics:       cfg.Services.Observability.MetricsSink,
		Concurrency:   cfg.Worker.Concurrency,
		DequeueWait:   cfg.Worker.DequeueWait,
		ErrorBackoff:  cfg.Worker.ErrorBackoff,
		DepthInterval: cfg.Worker.DepthInterval,
	})
	if err != nil {
		return fmt.Errorf("create review runner: %w", err)
	}

	return runner.Run(ctx)
}
