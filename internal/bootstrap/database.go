package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/redis/go-redis/v9"
	"github.com/target/prreview-api/config"
	"github.com/target/prreview-api/internal/core"
	"github.com/target/prreview-api/internal/data"
	"github.com/target/prreview-api/internal/migrate"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

const connectTimeout = 5 * time.Second

// DatabaseConfig contains configuration for database connections.
type DatabaseConfig struct {
	Store       config.StoreConfig
	DBConfig    config.DBConfig
	RedisConfig config.RedisConfig
	Logger      *slog.Logger
}

// JobStore bundles the job repository with its connection and migration dialect.
type JobStore struct {
	DB      *sql.DB
	Repo    core.JobRepository
	Dialect migrate.Dialect
}

// OpenJobStore connects the configured job store backend.
func OpenJobStore(cfg DatabaseConfig) (*JobStore, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	repoCfg := data.RepoConfig{Logger: logger}

	if cfg.Store.Driver == config.StoreDriverSQLite {
		db, err := ConnectSQLite(cfg.Store.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return &JobStore{DB: db, Repo: data.NewSQLiteJobRepo(db, repoCfg), Dialect: migrate.SQLite}, nil
	}

	db, err := ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	return &JobStore{DB: db, Repo: data.NewJobRepo(db, repoCfg), Dialect: migrate.Postgres}, nil
}

// ConnectDB establishes a connection to the PostgreSQL database.
func ConnectDB(cfg DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", postgresDSN(cfg.DBConfig))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if pingErr := pingDB(db); pingErr != nil {
		return nil, pingErr
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("database connected",
			"driver", config.StoreDriverPostgres,
			"host", cfg.DBConfig.Host,
			"port", cfg.DBConfig.Port,
			"database", cfg.DBConfig.Name,
		)
	}

	return db, nil
}

// ConnectSQLite opens the single-node SQLite job store at path.
func ConnectSQLite(path string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Writers serialise on the file lock; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if pingErr := pingDB(db); pingErr != nil {
		return nil, pingErr
	}
	if logger != nil {
		logger.Info("database connected", "driver", config.StoreDriverSQLite, "path", path)
	}
	return db, nil
}

func postgresDSN(cfg config.DBConfig) string {
	// Build DSN using url.URL to safely handle special characters in credentials
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func sqliteDSN(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}

func pingDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close database connection: %w", closeErr))
		}
		return fmt.Errorf("ping database: %w", pingErr)
	}
	return nil
}

// ConnectRedis establishes a connection to Redis.
//
//nolint:ireturn // returning redis.UniversalClient lets us pick single, sentinel, or cluster clients at runtime.
func ConnectRedis(cfg DatabaseConfig) (redis.UniversalClient, error) {
	client, addrDesc, err := newRedisClient(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("redis connected", "addr", redactRedisAddr(addrDesc))
	}

	return client, nil
}

//nolint:ireturn // returning redis.UniversalClient keeps client selection flexible.
func newRedisClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	switch {
	case cfg.UseCluster:
		return newClusterClient(cfg)
	case cfg.UseSentinel:
		return newSentinelClient(cfg)
	default:
		return newDirectClient(cfg)
	}
}

func redactRedisAddr(addrDesc string) string {
	if u, parseErr := url.Parse(addrDesc); parseErr == nil && u.User != nil {
		u.User = url.User("*")
		return u.Redacted()
	}
	if i := strings.LastIndex(addrDesc, "@"); i > -1 {
		return addrDesc[i+1:]
	}
	return addrDesc
}

//nolint:ireturn // returning redis.UniversalClient keeps client selection flexible.
func newClusterClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	addrs := normalizeAddrs(cfg.ClusterNodes)
	opts := &redis.ClusterOptions{Password: cfg.Password}

	if len(addrs) == 0 {
		fallback, err := clusterFallbackFromURI(cfg.URI, cfg.Password)
		if err != nil {
			return nil, "", err
		}
		if fallback.addr != "" {
			addrs = []string{fallback.addr}
			opts.Username = fallback.username
			opts.Password = fallback.password
			opts.TLSConfig = fallback.tls
		}
	}

	if len(addrs) == 0 {
		return nil, "", errors.New("redis cluster configuration requires at least one address")
	}
	opts.Addrs = addrs

	return redis.NewClusterClient(opts), "cluster:" + strings.Join(addrs, ","), nil
}

//nolint:ireturn // returning redis.UniversalClient keeps client selection flexible.
func newSentinelClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	nodes := normalizeAddrs(cfg.SentinelNodes)
	if len(nodes) == 0 {
		return nil, "", errors.New("redis sentinel configuration requires at least one sentinel node")
	}

	client := redis.NewFailoverClient(&redis.FailoverOptions{
		MasterName:       cfg.SentinelMasterName,
		SentinelAddrs:    nodes,
		Password:         cfg.Password,
		SentinelPassword: cfg.SentinelPassword,
	})
	return client, "sentinel:" + cfg.SentinelMasterName, nil
}

//nolint:ireturn // returning redis.UniversalClient keeps client selection flexible.
func newDirectClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, "", errors.New("redis direct configuration requires a URI")
	}

	if isRedisURL(uri) {
		opt, err := redis.ParseURL(uri)
		if err != nil {
			return nil, "", fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), opt.Addr, nil
	}

	return redis.NewClient(&redis.Options{Addr: uri, Password: cfg.Password}), uri, nil
}

func normalizeAddrs(raw []string) []string {
	result := make([]string, 0, len(raw))
	for _, addr := range raw {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

type clusterSeed struct {
	addr     string
	username string
	password string
	tls      *tls.Config
}

func clusterFallbackFromURI(uri, defaultPassword string) (clusterSeed, error) {
	seed := clusterSeed{password: defaultPassword}
	trimmed := strings.TrimSpace(uri)
	if trimmed == "" {
		return seed, nil
	}
	if !isRedisURL(trimmed) {
		seed.addr = trimmed
		return seed, nil
	}

	opt, err := redis.ParseURL(trimmed)
	if err != nil {
		return seed, fmt.Errorf("parse redis cluster url: %w", err)
	}
	seed.addr = opt.Addr
	seed.username = opt.Username
	seed.tls = opt.TLSConfig
	if opt.Password != "" {
		seed.password = opt.Password
	}
	return seed, nil
}

func isRedisURL(value string) bool {
	return strings.HasPrefix(value, "redis://") || strings.HasPrefix(value, "rediss://")
}

// RunMigrations applies the schema for the job store's dialect.
func RunMigrations(ctx context.Context, store *JobStore, logger *slog.Logger) error {
	if store == nil || store.DB == nil {
		return errors.New("job store is required")
	}
	if err := migrate.Run(ctx, store.DB, store.Dialect); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "database migrations completed", "dialect", store.Dialect.Name)
	}

	return nil
}
