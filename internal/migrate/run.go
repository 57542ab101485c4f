// Package migrate applies the embedded schema migrations for each supported store backend.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/target/prreview-api/internal/data/pgxutil"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Dialect describes how migrations are located and recorded for one database engine.
type Dialect struct {
	Name        string
	dir         string
	createTable string
	existsQuery string
	insertQuery string
}

var (
	// Postgres applies migrations/postgres.
	Postgres = Dialect{
		Name: "postgres",
		dir:  "migrations/postgres",
		createTable: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		existsQuery: `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`,
		insertQuery: `INSERT INTO schema_migrations (version) VALUES ($1)`,
	}
	// SQLite applies migrations/sqlite.
	SQLite = Dialect{
		Name: "sqlite",
		dir:  "migrations/sqlite",
		createTable: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		existsQuery: `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)`,
		insertQuery: `INSERT INTO schema_migrations (version) VALUES (?)`,
	}
)

// Run applies all SQL migrations embedded for the dialect. It is safe to call multiple times.
func Run(ctx context.Context, db *sql.DB, d Dialect) error {
	if _, err := db.ExecContext(ctx, d.createTable); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	files, err := Files(d)
	if err != nil {
		return err
	}
	logger := slog.Default().With("component", "migrations", "dialect", d.Name)
	for _, f := range files {
		if applyErr := applyMigration(ctx, db, d, f, logger); applyErr != nil {
			return applyErr
		}
	}
	return nil
}

// Files lists the migration files for a dialect in application order.
func Files(d Dialect) ([]string, error) {
	entries, err := migrationsFS.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func applyMigration(ctx context.Context, db *sql.DB, d Dialect, file string, logger *slog.Logger) error {
	version := strings.TrimSuffix(file, ".sql")

	var exists bool
	if err := db.QueryRowContext(ctx, d.existsQuery, version).Scan(&exists); err != nil {
		return fmt.Errorf("check migration %s: %w", file, err)
	}
	if exists {
		return nil
	}

	sqlBytes, err := migrationsFS.ReadFile(d.dir + "/" + file)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", file, err)
	}

	logger.InfoContext(ctx, "applying migration", "version", version)
	return pgxutil.WithSQLTx(ctx, db, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			if _, execErr := tx.ExecContext(ctx, string(sqlBytes)); execErr != nil {
				return fmt.Errorf("exec migration %s: %w", file, execErr)
			}
			if _, insErr := tx.ExecContext(ctx, d.insertQuery, version); insErr != nil {
				return fmt.Errorf("record migration %s: %w", file, insErr)
			}
			return nil
		},
	})
}
