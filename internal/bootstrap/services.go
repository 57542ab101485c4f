package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/prreview-api/config"
	"github.com/target/prreview-api/internal/adapters/analysis"
	"github.com/target/prreview-api/internal/adapters/github"
	"github.com/target/prreview-api/internal/core"
	"github.com/target/prreview-api/internal/data"
	"github.com/target/prreview-api/internal/domain/review"
	httpx "github.com/target/prreview-api/internal/http"
	"github.com/target/prreview-api/internal/observability/notify/pagerduty"
	"github.com/target/prreview-api/internal/observability/notify/slack"
	"github.com/target/prreview-api/internal/observability/statsd"
	"github.com/target/prreview-api/internal/observability/tracing"
	"github.com/target/prreview-api/internal/service"
	"github.com/target/prreview-api/internal/service/failurenotifier"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Jobs          *service.JobService
	Dispatcher    *service.DispatcherService
	Pipeline      *service.ReviewPipeline
	Queue         *data.RedisWorkQueue
	HealthChecks  map[string]httpx.HealthCheck
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink     *statsd.Client
	FailureNotifier *failurenotifier.Service
	// ShutdownTracing flushes buffered spans; it is a no-op when tracing is disabled.
	ShutdownTracing func(context.Context) error
}

// Close flushes spans and releases the metrics socket.
func (o ObservabilityContainer) Close(ctx context.Context) error {
	var errs []error
	if o.ShutdownTracing != nil {
		if err := o.ShutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}
	if err := o.MetricsSink.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close statsd: %w", err))
	}
	return errors.Join(errs...)
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	Store       *JobStore
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
	// HTTPClient is shared by the GitHub and analysis adapters; nil selects per-adapter defaults.
	HTTPClient *http.Client
}

// NewServices wires repositories, adapters and services for the enabled service modes.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	if deps.Store == nil || deps.Store.Repo == nil {
		return ServiceContainer{}, errors.New("job store is required")
	}
	if deps.RedisClient == nil {
		return ServiceContainer{}, errors.New("redis client is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	obs := buildObservability(ctx, logger, cfg.Observability)

	jobs := service.MustNewJobService(service.JobServiceOptions{
		Repo:            deps.Store.Repo,
		Logger:          logger,
		Metrics:         obs.MetricsSink,
		FailureNotifier: obs.FailureNotifier,
	})

	queue := data.NewRedisWorkQueue(deps.RedisClient, data.RedisQueueConfig{
		Name:   cfg.Queue.Name,
		Logger: logger,
	})
	sealer := CreateSealer(cfg.Security.CredentialsEncryptionKey, logger)
	parser := review.NewRepositoryParser(cfg.Pipeline.AllowedHosts)

	dispatcher, err := service.NewDispatcherService(service.DispatcherServiceOptions{
		Jobs:    jobs,
		Queue:   queue,
		Sealer:  sealer,
		Parser:  parser,
		Logger:  logger,
		Metrics: obs.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create dispatcher: %w", err)
	}

	pipeline, err := newReviewPipeline(reviewPipelineDeps{
		cfg:        cfg,
		jobs:       jobs,
		sealer:     sealer,
		parser:     parser,
		redis:      deps.RedisClient,
		httpClient: deps.HTTPClient,
		metrics:    obs.MetricsSink,
		logger:     logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	return ServiceContainer{
		Jobs:          jobs,
		Dispatcher:    dispatcher,
		Pipeline:      pipeline,
		Queue:         queue,
		HealthChecks:  buildHealthChecks(deps.Store, deps.RedisClient),
		Observability: obs,
	}, nil
}

type reviewPipelineDeps struct {
	cfg        *config.AppConfig
	jobs       *service.JobService
	sealer     core.CredentialSealer
	parser     *review.RepositoryParser
	redis      redis.UniversalClient
	httpClient *http.Client
	metrics    statsd.Sink
	logger     *slog.Logger
}

func newReviewPipeline(d reviewPipelineDeps) (*service.ReviewPipeline, error) {
	filter, err := review.LoadFileFilter(d.cfg.Pipeline.FilterFile)
	if err != nil {
		return nil, fmt.Errorf("load file filter: %w", err)
	}

	analyzer, err := analysis.NewClient(analysis.Config{
		BaseURL:         d.cfg.Analysis.BaseURL,
		APIKey:          d.cfg.Analysis.APIKey,
		Model:           d.cfg.Analysis.Model,
		MaxTokens:       d.cfg.Analysis.MaxTokens,
		MaxContentBytes: d.cfg.Analysis.MaxContentBytes,
		Timeout:         d.cfg.Analysis.Timeout,
		MaxRetries:      d.cfg.Analysis.MaxRetries,
		RetryBaseDelay:  d.cfg.Analysis.RetryBaseDelay,
		CompletionPath:  d.cfg.Analysis.CompletionPath,
		HTTPClient:      d.httpClient,
		Logger:          d.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create analysis client: %w", err)
	}

	sources := github.NewFactory(github.Config{
		BaseURL:    d.cfg.GitHub.BaseURL,
		Timeout:    d.cfg.GitHub.Timeout,
		HTTPClient: d.httpClient,
		Logger:     d.logger,
	}, d.cfg.GitHub.Token)

	var cache *core.ContentCacheService
	if d.cfg.Cache.Enabled {
		cache = core.NewContentCacheService(
			data.NewRedisCacheRepo(d.redis, d.cfg.Cache.Prefix),
			core.ContentCacheConfig{TTL: d.cfg.Cache.TTL},
		)
	}

	pipeline, err := service.NewReviewPipeline(service.ReviewPipelineOptions{
		Jobs:     d.jobs,
		Sources:  sources,
		Analyzer: analyzer,
		Sealer:   d.sealer,
		Parser:   d.parser,
		Filter:   filter,
		Cache:    cache,
		Config: service.PipelineConfig{
			Concurrency:    d.cfg.Pipeline.Concurrency,
			MaxFiles:       d.cfg.Pipeline.MaxFiles,
			ListTimeout:    d.cfg.Pipeline.ListTimeout,
			FetchTimeout:   d.cfg.Pipeline.FetchTimeout,
			AnalyzeTimeout: d.cfg.Pipeline.AnalyzeTimeout,
			StoreTimeout:   d.cfg.Pipeline.StoreTimeout,
		},
		Logger:  d.logger,
		Metrics: d.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("create review pipeline: %w", err)
	}
	return pipeline, nil
}

func buildHealthChecks(store *JobStore, client redis.UniversalClient) map[string]httpx.HealthCheck {
	checks := map[string]httpx.HealthCheck{}
	if store != nil && store.DB != nil {
		checks["database"] = store.DB.PingContext
	}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}

// buildObservability configures metrics, tracing and notification adapters.
func buildObservability(ctx context.Context, logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	metricsSink, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Metrics.IsEnabled(),
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  obsLogger,
	})
	if err != nil {
		obsLogger.Error("failed to initialise statsd client", "error", err)
		metricsSink, _ = statsd.NewClient(statsd.Config{Logger: obsLogger})
	}

	shutdown := tracing.Init(ctx, obsLogger, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Tracing.Environment,
		Endpoint:    cfg.Tracing.Endpoint,
		Headers:     tracing.ParseHeaders(cfg.Tracing.Headers),
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})

	return ObservabilityContainer{
		MetricsSink:     metricsSink,
		FailureNotifier: buildFailureNotifier(obsLogger, cfg.Notifications),
		ShutdownTracing: shutdown,
	}
}

func buildFailureNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) *failurenotifier.Service {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = slog.Default()
	}
	notifierLogger := baseLogger.With("component", "failure_notifier")

	if !cfg.Enabled {
		return failurenotifier.NewService(failurenotifier.Options{Logger: notifierLogger})
	}

	sinks := make([]failurenotifier.SinkRegistration, 0, 2)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL:      cfg.Slack.WebhookURL,
			Channel:         cfg.Slack.Channel,
			Username:        cfg.Slack.Username,
			Timeout:         cfg.Timeout,
			RetryLimit:      cfg.RetryLimit,
			StatusURLPrefix: cfg.Slack.StatusURLPrefix,
		})
		if err != nil {
			baseLogger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{Name: "slack", Sink: client})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			baseLogger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{Name: "pagerduty", Sink: client})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{
		Logger:  notifierLogger,
		Sinks:   sinks,
		Timeout: 2 * cfg.Timeout,
	})
}

// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
const shutdownWaitTimeout = 15 * time.Second
