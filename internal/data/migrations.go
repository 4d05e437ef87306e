package data

import (
	"context"
	"database/sql"

	"github.com/crewdeck/crewdeck/internal/migrate"
)

// RunMigrations sets up the schema by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}
