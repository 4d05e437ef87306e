package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/crewdeck/crewdeck/internal/service"
	"github.com/crewdeck/crewdeck/internal/session"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth       AuthServiceInterface
	Profiles   *service.ProfileService
	Jobs       *service.JobService
	Clients    *service.ClientService
	Timesheets *service.TimesheetService
	Reports    *service.ReportService
	Files      *service.FileService

	Registry      *session.Registry
	CookieDomain  string
	CSRFCookieTTL time.Duration
	Logger        *slog.Logger
}

// NewRouter creates and configures a new HTTP router. Route protection runs
// through guard middleware over the session registry: employee routes need an
// approved account, admin routes additionally need the admin role.
func NewRouter(services RouterServices) (http.Handler, error) {
	mux := http.NewServeMux()

	guard, err := NewGuardMiddleware(services.Registry, services.Logger)
	if err != nil {
		return nil, err
	}
	employee := guard.Protect(session.Guard{RequireApproval: true})
	admin := guard.Protect(session.Guard{RequireApproval: true, RequireAdmin: true})
	csrf := CSRFProtection(CSRFConfig{
		CookieDomain: services.CookieDomain,
		CookieTTL:    services.CSRFCookieTTL,
	})

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Registry:     services.Registry,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	registerAuthRoutes(mux, authHandlers, guard)
	registerProfileRoutes(mux, &ProfileHandlers{Svc: services.Profiles}, admin)
	registerJobRoutes(mux, &JobHandlers{Svc: services.Jobs}, employee, admin)
	registerClientRoutes(mux, &ClientHandlers{Svc: services.Clients}, employee, admin)
	registerTimeRoutes(mux, &TimeHandlers{Svc: services.Timesheets}, employee, admin)
	registerReportRoutes(mux, &ReportHandlers{Svc: services.Reports}, employee)
	registerFileRoutes(mux, &FileHandlers{Svc: services.Files}, employee, admin)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return BrowserDetection()(csrf(mux)), nil
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, guard *GuardMiddleware) {
	mux.HandleFunc("POST /api/auth/signup", h.SignUp)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("GET /auth/login", h.BeginOAuth)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	// Me reports status rather than requiring it, so it only populates state.
	mux.Handle("GET /api/auth/me", guard.Populate(http.HandlerFunc(h.Me)))
}

func registerProfileRoutes(mux *http.ServeMux, h *ProfileHandlers, admin func(http.Handler) http.Handler) {
	mux.Handle("GET /api/admin/profiles", admin(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/admin/profiles/{id}", admin(http.HandlerFunc(h.Get)))
	mux.Handle("POST /api/admin/profiles/{id}/approve", admin(http.HandlerFunc(h.Approve)))
	mux.Handle("POST /api/admin/profiles/{id}/revoke", admin(http.HandlerFunc(h.Revoke)))
	mux.Handle("POST /api/admin/profiles/{id}/role", admin(http.HandlerFunc(h.ChangeRole)))
	mux.Handle("DELETE /api/admin/profiles/{id}", admin(http.HandlerFunc(h.Reject)))
}

func registerJobRoutes(mux *http.ServeMux, h *JobHandlers, employee, admin func(http.Handler) http.Handler) {
	mux.Handle("GET /api/jobs", employee(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/jobs/today", employee(http.HandlerFunc(h.Today)))
	mux.Handle("GET /api/jobs/{id}", employee(http.HandlerFunc(h.Get)))
	mux.Handle("POST /api/jobs/{id}/complete", employee(http.HandlerFunc(h.Complete)))

	mux.Handle("POST /api/jobs", admin(http.HandlerFunc(h.Create)))
	mux.Handle("PATCH /api/jobs/{id}", admin(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/jobs/{id}", admin(http.HandlerFunc(h.Delete)))
}

func registerClientRoutes(mux *http.ServeMux, h *ClientHandlers, employee, admin func(http.Handler) http.Handler) {
	mux.Handle("GET /api/clients", employee(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/clients/{id}", employee(http.HandlerFunc(h.Get)))

	mux.Handle("POST /api/clients", admin(http.HandlerFunc(h.Create)))
	mux.Handle("PATCH /api/clients/{id}", admin(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/clients/{id}", admin(http.HandlerFunc(h.Delete)))
}

func registerTimeRoutes(mux *http.ServeMux, h *TimeHandlers, employee, admin func(http.Handler) http.Handler) {
	mux.Handle("POST /api/time/clock-in", employee(http.HandlerFunc(h.ClockIn)))
	mux.Handle("POST /api/time/clock-out", employee(http.HandlerFunc(h.ClockOut)))
	mux.Handle("GET /api/time/current", employee(http.HandlerFunc(h.Current)))
	mux.Handle("GET /api/time/entries", employee(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/time/today", employee(http.HandlerFunc(h.Today)))

	mux.Handle("POST /api/time/entries/{id}/approve", admin(http.HandlerFunc(h.Approve)))
	mux.Handle("DELETE /api/time/entries/{id}", admin(http.HandlerFunc(h.Delete)))
}

func registerReportRoutes(mux *http.ServeMux, h *ReportHandlers, employee func(http.Handler) http.Handler) {
	mux.Handle("GET /api/reports/weekly", employee(http.HandlerFunc(h.Weekly)))
	mux.Handle("GET /api/reports/weekly/export", employee(http.HandlerFunc(h.Export)))
}

func registerFileRoutes(mux *http.ServeMux, h *FileHandlers, employee, admin func(http.Handler) http.Handler) {
	mux.Handle("POST /api/files", employee(http.HandlerFunc(h.Upload)))
	mux.Handle("GET /api/files", employee(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/files/{id}", employee(http.HandlerFunc(h.Get)))
	mux.Handle("GET /api/files/{id}/download", employee(http.HandlerFunc(h.Download)))

	mux.Handle("DELETE /api/files/{id}", admin(http.HandlerFunc(h.Delete)))
}
