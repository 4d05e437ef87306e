// Package devseed populates a development database with a usable starting
// point: an approved admin account, a couple of clients, and open jobs.
// Seeding is idempotent; rows that already exist are skipped.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/crewdeck/crewdeck/internal/data"
	"github.com/crewdeck/crewdeck/internal/domain/auth"
	"github.com/crewdeck/crewdeck/internal/domain/model"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
)

// AdminEmail is the seeded admin login.
const AdminEmail = "admin@crewdeck.local"

// AdminPassword is the seeded admin password. Development only.
const AdminPassword = "crewdeck-dev"

// Services bundles the repositories needed for development seeding.
type Services struct {
	Profiles    *data.ProfileRepo
	Credentials *data.CredentialRepo
	Clients     *data.ClientRepo
	Jobs        *data.JobRepo
}

// NewServices constructs the seeding repositories over the provided DB.
func NewServices(db *sql.DB) Services {
	return Services{
		Profiles:    data.NewProfileRepo(db),
		Credentials: data.NewCredentialRepo(db),
		Clients:     data.NewClientRepo(db),
		Jobs:        data.NewJobRepo(db),
	}
}

// Run executes the full development seeding workflow.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if err := seedAdmin(ctx, svcs, logger); err != nil {
		return err
	}

	clientIDs := seedClients(ctx, svcs.Clients, logger)
	failures := seedJobs(ctx, svcs.Jobs, clientIDs, logger)
	if failures > 0 {
		return fmt.Errorf("seeding finished with %d failures", failures)
	}

	logger.InfoContext(ctx, "development seed complete", "admin_email", AdminEmail)
	return nil
}

func seedAdmin(ctx context.Context, svcs Services, logger *slog.Logger) error {
	existing, err := svcs.Profiles.GetByEmail(ctx, AdminEmail)
	if err != nil && apperrors.GetCode(err) != apperrors.ErrCodeNotFound {
		return fmt.Errorf("look up seed admin: %w", err)
	}
	if existing != nil {
		logger.InfoContext(ctx, "seed admin already exists", "user_id", existing.ID)
		return nil
	}

	profile, err := svcs.Profiles.Create(ctx, data.CreateProfileParams{
		Name:     "Crewdeck Admin",
		Email:    AdminEmail,
		Role:     auth.RoleAdmin,
		Approved: true,
	})
	if err != nil {
		return fmt.Errorf("create seed admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("hash seed admin password: %w", err)
	}
	if err := svcs.Credentials.Upsert(ctx, profile.ID, hash); err != nil {
		return fmt.Errorf("store seed admin credential: %w", err)
	}

	logger.InfoContext(ctx, "seeded admin account", "user_id", profile.ID)
	return nil
}

func seedClients(ctx context.Context, clients *data.ClientRepo, logger *slog.Logger) map[string]string {
	seeds := []model.CreateClientRequest{
		{
			Name:    "Dana Reyes",
			Email:   "dana@harborworks.example",
			Phone:   "555-0142",
			Company: "Harborworks Property Group",
			Address: "18 Pier Road",
		},
		{
			Name:    "Sam Okafor",
			Email:   "sam@briarfield.example",
			Phone:   "555-0177",
			Company: "Briarfield Estates",
			Address: "204 Meadow Lane",
		},
	}

	ids := make(map[string]string, len(seeds))
	for i := range seeds {
		created, err := clients.Create(ctx, &seeds[i])
		if err != nil {
			if apperrors.GetCode(err) == apperrors.ErrCodeConflict {
				logger.InfoContext(ctx, "seed client already exists", "email", seeds[i].Email)
				continue
			}
			logger.WarnContext(ctx, "seed client failed", "email", seeds[i].Email, "error", err)
			continue
		}
		ids[created.Company] = created.ID
	}
	return ids
}

func seedJobs(ctx context.Context, jobs *data.JobRepo, clientIDs map[string]string, logger *slog.Logger) int {
	due := time.Now().UTC().AddDate(0, 0, 7)
	seeds := []model.CreateJobRequest{
		{
			JobNumber: "CD-1001",
			Title:     "Pier storefront repaint",
			Priority:  model.JobPriorityHigh,
			DueDate:   &due,
			Location:  strPtr("18 Pier Road"),
		},
		{
			JobNumber: "CD-1002",
			Title:     "Meadow Lane fence repair",
			Priority:  model.JobPriorityMedium,
			Location:  strPtr("204 Meadow Lane"),
		},
	}
	if id, ok := clientIDs["Harborworks Property Group"]; ok {
		seeds[0].ClientID = &id
	}
	if id, ok := clientIDs["Briarfield Estates"]; ok {
		seeds[1].ClientID = &id
	}

	failures := 0
	for i := range seeds {
		if _, err := jobs.Create(ctx, &seeds[i]); err != nil {
			if apperrors.GetCode(err) == apperrors.ErrCodeConflict {
				logger.InfoContext(ctx, "seed job already exists", "job_number", seeds[i].JobNumber)
				continue
			}
			logger.WarnContext(ctx, "seed job failed", "job_number", seeds[i].JobNumber, "error", err)
			failures++
		}
	}
	return failures
}

func strPtr(s string) *string { return &s }

// Reset drops all application data so seeding starts clean. Refuses to run
// unless force is set, as a guard against pointing at a shared database.
func Reset(ctx context.Context, db *sql.DB, force bool) error {
	if !force {
		return errors.New("reset requires force")
	}
	_, err := db.ExecContext(ctx, `
		TRUNCATE files, time_entries, jobs, clients, credentials, profiles CASCADE`)
	if err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}
