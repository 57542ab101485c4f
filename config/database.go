package config

import (
	"strings"
	"time"
)

// StoreDriver selects the job store backend.
type StoreDriver string

const (
	// StoreDriverPostgres keeps jobs in PostgreSQL.
	StoreDriverPostgres StoreDriver = "postgres"
	// StoreDriverSQLite keeps jobs in a local SQLite file.
	StoreDriverSQLite StoreDriver = "sqlite"
)

// StoreConfig selects and locates the job store.
type StoreConfig struct {
	Driver StoreDriver `env:"STORE_DRIVER" envDefault:"postgres"`
	// SQLitePath is the database file used with STORE_DRIVER=sqlite.
	SQLitePath string `env:"SQLITE_PATH" envDefault:"prreview.db"`
}

// Sanitize normalises the driver name; unknown drivers fall back to postgres.
func (s *StoreConfig) Sanitize() {
	s.Driver = StoreDriver(strings.ToLower(strings.TrimSpace(string(s.Driver))))
	if s.Driver != StoreDriverSQLite {
		s.Driver = StoreDriverPostgres
	}
	if s.SQLitePath = strings.TrimSpace(s.SQLitePath); s.SQLitePath == "" {
		s.SQLitePath = "prreview.db"
	}
}

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"prreview"`
	Password string `env:"PASSWORD"                envDefault:"prreview"`
	Name     string `env:"NAME"                    envDefault:"prreview"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// CacheConfig controls the Redis-backed file content cache.
type CacheConfig struct {
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	TTL     time.Duration `env:"TTL"     envDefault:"30m"`
	Prefix  string        `env:"PREFIX"  envDefault:"prreview:cache:"`
}

// Sanitize disables the cache when the TTL is not positive.
func (c *CacheConfig) Sanitize() {
	if c.TTL <= 0 {
		c.Enabled = false
	}
	c.Prefix = strings.TrimSpace(c.Prefix)
}

// QueueConfig names the Redis work queue.
type QueueConfig struct {
	Name string `env:"NAME" envDefault:"prreview:reviews"`
}

// Sanitize restores the default queue name when blank.
func (q *QueueConfig) Sanitize() {
	if q.Name = strings.TrimSpace(q.Name); q.Name == "" {
		q.Name = "prreview:reviews"
	}
}
