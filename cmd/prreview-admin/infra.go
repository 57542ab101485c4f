package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/prreview-api/config"
	"github.com/target/prreview-api/internal/bootstrap"
	"github.com/target/prreview-api/internal/data"
	"github.com/target/prreview-api/internal/service"
)

// adminApp lazily connects the infrastructure each command needs.
type adminApp struct {
	cfg    *config.AppConfig
	logger *slog.Logger

	openStore    func() (*bootstrap.JobStore, error)
	connectRedis func() (redis.UniversalClient, error)

	store *bootstrap.JobStore
	redis redis.UniversalClient
}

func newAdminApp(cfg *config.AppConfig, logger *slog.Logger) *adminApp {
	dbCfg := bootstrap.DatabaseConfig{
		Store:       cfg.Store,
		DBConfig:    cfg.Postgres,
		RedisConfig: cfg.Redis,
		Logger:      logger,
	}
	return &adminApp{
		cfg:    cfg,
		logger: logger,
		openStore: func() (*bootstrap.JobStore, error) {
			return bootstrap.OpenJobStore(dbCfg)
		},
		connectRedis: func() (redis.UniversalClient, error) {
			return bootstrap.ConnectRedis(dbCfg)
		},
	}
}

func (a *adminApp) jobStore() (*bootstrap.JobStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := a.openStore()
	if err != nil {
		return nil, fmt.Errorf("connect job store: %w", err)
	}
	a.store = store
	return store, nil
}

//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func (a *adminApp) redisClient() (redis.UniversalClient, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	client, err := a.connectRedis()
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.redis = client
	return client, nil
}

func (a *adminApp) jobService() (*service.JobService, error) {
	store, err := a.jobStore()
	if err != nil {
		return nil, err
	}
	return service.NewJobService(service.JobServiceOptions{Repo: store.Repo, Logger: a.logger})
}

func (a *adminApp) queue() (*data.RedisWorkQueue, error) {
	client, err := a.redisClient()
	if err != nil {
		return nil, err
	}
	return data.NewRedisWorkQueue(client, data.RedisQueueConfig{Name: a.cfg.Queue.Name, Logger: a.logger}), nil
}

// Close releases whatever connections the command opened.
func (a *adminApp) Close() {
	var errs []error
	if a.store != nil && a.store.DB != nil {
		if err := a.store.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("close admin connections", "error", err)
	}
}
