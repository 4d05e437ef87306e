package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/crewdeck/crewdeck/config"
	"github.com/crewdeck/crewdeck/internal/adapters/identity"
	"github.com/crewdeck/crewdeck/internal/adapters/localstore"
	"github.com/crewdeck/crewdeck/internal/data"
	"github.com/crewdeck/crewdeck/internal/ports"
	"github.com/crewdeck/crewdeck/internal/service"
	"github.com/crewdeck/crewdeck/internal/session"
)

// ServiceContainer holds all application services plus the session registry
// the HTTP guard consumes.
type ServiceContainer struct {
	Auth       *service.AuthService
	Profiles   *service.ProfileService
	Jobs       *service.JobService
	Clients    *service.ClientService
	Timesheets *service.TimesheetService
	Reports    *service.ReportService
	Files      *service.FileService

	Registry *session.Registry
}

// Close releases the session registry and its live trackers.
func (c ServiceContainer) Close() error {
	if c.Registry == nil {
		return nil
	}
	return c.Registry.Close()
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Profiles    *data.ProfileRepo
	Credentials *data.CredentialRepo
	Jobs        *data.JobRepo
	Clients     *data.ClientRepo
	TimeEntries *data.TimeEntryRepo
	Files       *data.FileRepo
}

func buildRepositories(db *sql.DB) serviceRepositories {
	return serviceRepositories{
		Profiles:    data.NewProfileRepo(db),
		Credentials: data.NewCredentialRepo(db),
		Jobs:        data.NewJobRepo(db),
		Clients:     data.NewClientRepo(db),
		TimeEntries: data.NewTimeEntryRepo(db),
		Files:       data.NewFileRepo(db),
	}
}

// NewServices wires repositories, adapters, and the session registry into
// the full service container.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil {
		return ServiceContainer{}, fmt.Errorf("service deps are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.AppConfig{}
	}

	repos := buildRepositories(deps.DB)

	auth, err := buildAuth(AuthDeps{
		Auth:        cfg.Auth,
		RedisClient: deps.RedisClient,
		Profiles:    repos.Profiles,
		Credentials: repos.Credentials,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	registry, err := session.NewRegistry(session.RegistryOptions{
		Factory: func(sessionID string) ports.IdentityBackend {
			return identity.NewBackend(identity.BackendOptions{
				SessionID: sessionID,
				Sessions:  auth.Sessions,
				Profiles:  repos.Profiles,
				Events:    auth.Events,
				Logger:    logger,
			})
		},
		Events:       auth.Events,
		Logger:       logger,
		InitTimeout:  cfg.Session.InitTimeout,
		FetchTimeout: cfg.Session.FetchTimeout,
		ReapInterval: cfg.Session.ReapInterval,
		IdleTTL:      cfg.Session.IdleTTL,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build session registry: %w", err)
	}

	profileSvc, err := service.NewProfileService(service.ProfileServiceOptions{
		Profiles: repos.Profiles,
		Events:   auth.Events,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build profile service: %w", err)
	}

	jobSvc, err := service.NewJobService(service.JobServiceOptions{Jobs: repos.Jobs})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build job service: %w", err)
	}

	clientSvc, err := service.NewClientService(service.ClientServiceOptions{Clients: repos.Clients})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build client service: %w", err)
	}

	timesheetSvc, err := service.NewTimesheetService(service.TimesheetServiceOptions{
		Entries: repos.TimeEntries,
		Jobs:    repos.Jobs,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build timesheet service: %w", err)
	}

	reportSvc, err := service.NewReportService(service.ReportServiceOptions{Entries: repos.TimeEntries})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build report service: %w", err)
	}

	store, err := localstore.New(cfg.Files.Dir)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("open file store: %w", err)
	}
	fileSvc, err := service.NewFileService(service.FileServiceOptions{
		Store:  store,
		Files:  repos.Files,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build file service: %w", err)
	}

	return ServiceContainer{
		Auth:       auth.Auth,
		Profiles:   profileSvc,
		Jobs:       jobSvc,
		Clients:    clientSvc,
		Timesheets: timesheetSvc,
		Reports:    reportSvc,
		Files:      fileSvc,
		Registry:   registry,
	}, nil
}
