// Package migrate applies the embedded schema migrations.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/target/hiring-api/internal/data/pgxutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// lockKey serializes migration runs across replicas starting at once.
const lockKey int64 = 0x68697265 // "hire"

const createVersionsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// Versions lists the embedded migration versions in apply order.
func Versions() ([]string, error) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, strings.TrimSuffix(strings.TrimPrefix(n, "migrations/"), ".sql"))
	}
	sort.Strings(out)
	return out, nil
}

// Run applies every embedded migration not yet recorded in schema_migrations.
// Each migration runs in its own transaction; calling Run again is a no-op.
func Run(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createVersionsTable); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	versions, err := Versions()
	if err != nil {
		return err
	}

	logger := slog.Default().With("component", "migrations")
	for _, v := range versions {
		applied, applyErr := apply(ctx, db, v)
		if applyErr != nil {
			return applyErr
		}
		if applied {
			logger.InfoContext(ctx, "applied migration", "version", v)
		}
	}
	return nil
}

func apply(ctx context.Context, db *sql.DB, version string) (bool, error) {
	body, err := migrationsFS.ReadFile("migrations/" + version + ".sql")
	if err != nil {
		return false, fmt.Errorf("read migration %s: %w", version, err)
	}

	applied := false
	err = pgxutil.WithSQLTx(ctx, db, pgxutil.SQLTxConfig{Fn: func(tx *sql.Tx) error {
		if _, lockErr := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); lockErr != nil {
			return fmt.Errorf("lock migrations: %w", lockErr)
		}

		var exists bool
		if qErr := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
		).Scan(&exists); qErr != nil {
			return fmt.Errorf("check migration %s: %w", version, qErr)
		}
		if exists {
			return nil
		}

		if _, execErr := tx.ExecContext(ctx, string(body)); execErr != nil {
			return fmt.Errorf("exec migration %s: %w", version, execErr)
		}
		if _, recErr := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version) VALUES ($1)`, version,
		); recErr != nil {
			return fmt.Errorf("record migration %s: %w", version, recErr)
		}
		applied = true
		return nil
	}})
	return applied, err
}
