package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"

	"github.com/crewdeck/crewdeck/internal/bootstrap"
	"github.com/crewdeck/crewdeck/internal/devseed"
)

// withDB connects to Postgres, runs fn, and closes the connection.
func withDB(cmdCtx *commandContext, fn func(ctx context.Context, db *sql.DB) error) error {
	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	return fn(cmdCtx.Ctx, db)
}

func runMigrate(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	timeout := fs.Duration("timeout", defaultMigrationTimeout, "migration timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withDB(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		ctx, cancel := context.WithTimeout(ctx, *timeout)
		defer cancel()
		return bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
	})
}

func runDBSeed(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("db-seed", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withDB(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		if err := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); err != nil {
			return err
		}
		return devseed.Run(ctx, devseed.NewServices(db), cmdCtx.Logger)
	})
}

func runDBReset(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("db-reset", flag.ContinueOnError)
	force := fs.Bool("force", false, "confirm destroying all application data")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withDB(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		if err := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); err != nil {
			return err
		}
		if err := devseed.Reset(ctx, db, *force); err != nil {
			return err
		}
		return devseed.Run(ctx, devseed.NewServices(db), cmdCtx.Logger)
	})
}
