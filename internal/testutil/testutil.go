package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/target/prreview-api/internal/migrate"
	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

// PostgresTarget describes the Postgres instance used by integration tests.
type PostgresTarget struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DSN renders the target as a pgx connection URL.
func (p PostgresTarget) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		p.User, p.Password, net.JoinHostPort(p.Host, p.Port), p.DBName)
}

// PostgresTargetFromEnv reads TEST_DB_* overrides. The default port matches the
// docker-compose test profile; CI sets TEST_DB_PORT=5432.
func PostgresTargetFromEnv() PostgresTarget {
	return PostgresTarget{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     envOr("TEST_DB_PORT", "55432"),
		User:     envOr("TEST_DB_USER", "prreview"),
		Password: envOr("TEST_DB_PASSWORD", "prreview"),
		DBName:   envOr("TEST_DB_NAME", "prreview"),
	}
}

// SetupSQLiteDB opens a migrated SQLite database in the test's temp dir.
func SetupSQLiteDB(t testing.TB) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "prreview.db")
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { closeQuietly(t, "sqlite", db) })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := migrate.Run(ctx, db, migrate.SQLite); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// SetupTestDB connects to the integration Postgres, applies migrations and
// empties review_jobs. The test is skipped when Postgres is unreachable unless
// TEST_REQUIRE_DB or TEST_REQUIRE_INFRA is set.
func SetupTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", PostgresTargetFromEnv().DSN())
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if pingErr := db.PingContext(ctx); pingErr != nil {
		closeQuietly(t, "postgres", db)
		unavailable(t, "TEST_REQUIRE_DB", "postgres not available: %v", pingErr)
	}
	if err := migrate.Run(ctx, db, migrate.Postgres); err != nil {
		closeQuietly(t, "postgres", db)
		t.Fatalf("migrate postgres: %v", err)
	}
	truncateJobs(t, db)
	return db
}

// TeardownTestDB empties review_jobs and closes the handle.
func TeardownTestDB(t testing.TB, db *sql.DB) {
	t.Helper()
	if db == nil {
		return
	}
	truncateJobs(t, db)
	closeQuietly(t, "postgres", db)
}

// SetupTestRedis returns a client on a flushed database. REDIS_ADDR overrides
// the local test address; TEST_REDIS_DB selects the database index.
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()

	addr := envOr("REDIS_ADDR", "localhost:56379")
	dbIndex := 1
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			dbIndex = n
		}
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: dbIndex})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		closeQuietly(t, "redis", client)
		unavailable(t, "TEST_REQUIRE_REDIS", "redis not available at %s: %v", addr, err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Logf("flush redis db %d: %v", dbIndex, err)
	}
	return client
}

func truncateJobs(t testing.TB, db *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "DELETE FROM review_jobs"); err != nil {
		t.Fatalf("clean review_jobs: %v", err)
	}
}

func unavailable(t testing.TB, requireKey, format string, args ...any) {
	t.Helper()
	if envBool(requireKey) || envBool("TEST_REQUIRE_INFRA") {
		t.Fatalf(format, args...)
	}
	t.Skipf(format, args...)
}

func closeQuietly(t testing.TB, name string, c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		t.Logf("close %s: %v", name, err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && b
}
