// Command prreview-admin inspects and operates the review job store and work queue.
package main

import (
	"context"
	"os"

	"github.com/target/prreview-api/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	cfg, cfgErr := bootstrap.LoadConfig()
	logger := bootstrap.InitLogger(cfg.SlogLevel())
	if cfgErr != nil {
		logger.ErrorContext(ctx, "load config", "error", cfgErr)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	app := newAdminApp(&cfg, logger)
	defer app.Close()

	root := newRootCmd(app)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.ErrorContext(ctx, "command failed", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}
