// Package core defines the repository interfaces the services depend on.
// The data package provides the PostgreSQL implementations; tests substitute
// gomock-generated or hand-written doubles.
package core

import (
	"context"
	"time"

	"github.com/crewdeck/crewdeck/internal/data"
	"github.com/crewdeck/crewdeck/internal/domain/auth"
	"github.com/crewdeck/crewdeck/internal/domain/model"
)

// ProfileRepository persists user profiles and the admin mutations on them.
type ProfileRepository interface {
	Create(ctx context.Context, params data.CreateProfileParams) (*auth.Profile, error)
	FetchByID(ctx context.Context, id string) (auth.Profile, error)
	GetByEmail(ctx context.Context, email string) (*auth.Profile, error)
	List(ctx context.Context, opts data.ProfilesListOptions) ([]*auth.Profile, error)
	SetApproval(ctx context.Context, id string, approved bool) (*auth.Profile, error)
	SetRole(ctx context.Context, id string, role auth.Role) (*auth.Profile, error)
	Delete(ctx context.Context, id string) error
}

// CredentialRepository stores password hashes for local accounts.
type CredentialRepository interface {
	Upsert(ctx context.Context, userID string, passwordHash []byte) error
	GetByEmail(ctx context.Context, email string) (*data.Credential, error)
}

// JobRepository persists jobs.
type JobRepository interface {
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	List(ctx context.Context, opts model.JobsListOptions) ([]*model.Job, error)
	Count(ctx context.Context, opts model.JobsListOptions) (int64, error)
	Update(ctx context.Context, id string, req model.UpdateJobRequest) (*model.Job, error)
	Delete(ctx context.Context, id string) error
}

// ClientRepository persists clients.
type ClientRepository interface {
	Create(ctx context.Context, req *model.CreateClientRequest) (*model.Client, error)
	GetByID(ctx context.Context, id string) (*model.Client, error)
	List(ctx context.Context, opts data.ClientsListOptions) ([]*model.Client, error)
	Update(ctx context.Context, id string, req model.UpdateClientRequest) (*model.Client, error)
	Delete(ctx context.Context, id string) error
}

// TimeEntryRepository persists clock-in/clock-out records.
type TimeEntryRepository interface {
	ClockIn(ctx context.Context, userID string, req *model.ClockInRequest) (*model.TimeEntry, error)
	GetOpen(ctx context.Context, userID string) (*model.TimeEntry, error)
	ClockOut(ctx context.Context, id string, endTime time.Time, durationHours float64) (*model.TimeEntry, error)
	Approve(ctx context.Context, id string) (*model.TimeEntry, error)
	ListWithJob(ctx context.Context, opts model.TimeEntriesListOptions) ([]*model.TimeEntryWithJob, error)
	WeeklyEntries(ctx context.Context, userID string, weekStart, weekEnd time.Time) ([]model.ReportEntry, error)
	Delete(ctx context.Context, id string) error
}

// FileRepository persists uploaded file metadata.
type FileRepository interface {
	Create(ctx context.Context, req *model.CreateFileRequest) (*model.FileRecord, error)
	GetByID(ctx context.Context, id string) (*model.FileRecord, error)
	List(ctx context.Context, opts data.FilesListOptions) ([]*model.FileRecord, error)
	Delete(ctx context.Context, id string) (string, error)
}
