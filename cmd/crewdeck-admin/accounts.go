package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	redisadapter "github.com/crewdeck/crewdeck/internal/adapters/redis"
	"github.com/crewdeck/crewdeck/internal/bootstrap"
	"github.com/crewdeck/crewdeck/internal/data"
	"github.com/crewdeck/crewdeck/internal/domain/auth"
	"github.com/crewdeck/crewdeck/internal/service"
)

// runApprove approves a pending account. The approval goes through the
// profile service so a profile_updated event reaches live sessions.
func runApprove(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("approve", flag.ContinueOnError)
	email := fs.String("email", "", "email of the account to approve")
	admin := fs.Bool("admin", false, "also grant the admin role")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	return withDB(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		profiles := data.NewProfileRepo(db)

		svc, err := buildProfileService(cmdCtx, profiles)
		if err != nil {
			return err
		}

		profile, err := profiles.GetByEmail(ctx, *email)
		if err != nil {
			return fmt.Errorf("look up account: %w", err)
		}

		var role *auth.Role
		if *admin {
			r := auth.RoleAdmin
			role = &r
		}

		approved, err := svc.Approve(ctx, profile.ID, role)
		if err != nil {
			return fmt.Errorf("approve account: %w", err)
		}

		cmdCtx.Logger.InfoContext(ctx, "account approved",
			"user_id", approved.ID,
			"email", approved.Email,
			"role", approved.Role)
		return nil
	})
}

func runListPending(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-pending", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withDB(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		profiles := data.NewProfileRepo(db)

		pending := false
		list, err := profiles.List(ctx, data.ProfilesListOptions{Approved: &pending})
		if err != nil {
			return fmt.Errorf("list pending accounts: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "USER ID\tNAME\tEMAIL\tCREATED")
		for _, p := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				p.ID, p.Name, p.Email, p.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	})
}

// buildProfileService wires the profile service with the Redis event channel
// when Redis is reachable, so approvals propagate to live sessions. Falls
// back to a service without events when Redis is down; the approval still
// lands in Postgres.
func buildProfileService(cmdCtx *commandContext, profiles *data.ProfileRepo) (*service.ProfileService, error) {
	opts := service.ProfileServiceOptions{
		Profiles: profiles,
		Logger:   cmdCtx.Logger,
	}

	client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		cmdCtx.Logger.Warn("redis unavailable; approval will not notify live sessions", "error", err)
	} else {
		opts.Events = redisadapter.NewIdentityEvents(client, cmdCtx.Logger)
	}

	return service.NewProfileService(opts)
}
