package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/target/prreview-api/config"
)

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	// Signals overrides the shutdown signal channel; nil listens for SIGINT and SIGTERM.
	Signals <-chan os.Signal
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	name string
	done <-chan struct{}
}

// RunServicesWithShutdown starts all enabled services and blocks until a shutdown
// signal arrives or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, errorChannelBufferSize(enabled))

	var server *http.Server
	if enabled[config.ServiceModeHTTP] {
		server = StartHTTPServer(&HTTPServerConfig{
			HTTP:     cfg.Config.HTTP,
			Services: cfg.Services,
			Logger:   logger,
		}, errCh)
	}

	backgrounds := startBackgroundServices(serviceCtx, logger, enabled, errCh, []backgroundService{
		{
			mode: config.ServiceModeWorker,
			name: "review worker",
			start: func(ctx context.Context) error {
				return RunWorker(ctx, WorkerConfig{
					Services: cfg.Services,
					Worker:   cfg.Config.Worker,
					Logger:   logger,
				})
			},
		},
	})

	signals := cfg.Signals
	if signals == nil {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)
		signals = quit
	}

	stop := shutdownConfig{
		cancel:          cancel,
		httpServer:      server,
		shutdownTimeout: cfg.Config.HTTP.ShutdownTimeout,
		logger:          logger,
		backgrounds:     backgrounds,
	}

	var runErr error
	select {
	case <-signals:
		logger.Info("shutting down services...")
	case runErr = <-errCh:
		logger.Error("service error", "error", runErr)
	}
	if stopErr := gracefulStop(stop); stopErr != nil {
		runErr = errors.Join(runErr, stopErr)
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if obsErr := cfg.Services.Observability.Close(flushCtx); obsErr != nil {
		logger.Warn("observability shutdown failed", "error", obsErr)
	}
	return runErr
}

func startBackgroundServices(
	ctx context.Context,
	logger *slog.Logger,
	enabled map[config.ServiceMode]bool,
	errCh chan<- error,
	services []backgroundService,
) []backgroundServiceHandle {
	handles := make([]backgroundServiceHandle, 0, len(services))
	for _, svc := range services {
		if !enabled[svc.mode] {
			continue
		}
		handles = append(handles, backgroundServiceHandle{
			name: svc.name,
			done: launchBackground(ctx, logger, errCh, svc),
		})
	}
	return handles
}

func launchBackground(
	ctx context.Context,
	logger *slog.Logger,
	errCh chan<- error,
	descriptor backgroundService,
) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		err := descriptor.start(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
		select {
		case errCh <- errMsg:
		default:
			logger.WarnContext(ctx, "dropping background service error", "service", descriptor.name, "error", errMsg)
		}
	}()

	logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	return done
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	return errorChannelCapacity(enabled) + 1
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	cancel          context.CancelFunc
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
	backgrounds     []backgroundServiceHandle
}

// gracefulStop stops accepting submissions first, then cancels workers and waits for them.
// Workers leave interrupted jobs in processing; their tasks stay in flight for requeue.
func gracefulStop(cfg shutdownConfig) error {
	var err error
	if cfg.httpServer != nil {
		err = ShutdownHTTPServer(ShutdownConfig{
			Server:  cfg.httpServer,
			Timeout: cfg.shutdownTimeout,
			Logger:  cfg.logger,
		})
	}

	cfg.cancel()
	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}
	return err
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
