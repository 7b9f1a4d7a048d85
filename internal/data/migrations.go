package data

import (
	"context"
	"database/sql"

	"github.com/target/hiring-api/internal/migrate"
)

// RunMigrations brings the users, jobs and applications schema up to date.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}
