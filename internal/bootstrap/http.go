package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crewdeck/crewdeck/config"
	httpx "github.com/crewdeck/crewdeck/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// buildHTTPHandler assembles the router with its outer middleware.
// Order: Recover -> Logging -> Router.
func buildHTTPHandler(cfg *HTTPServerConfig) (http.Handler, error) {
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	router, err := httpx.NewRouter(httpx.RouterServices{
		Auth:          cfg.Services.Auth,
		Profiles:      cfg.Services.Profiles,
		Jobs:          cfg.Services.Jobs,
		Clients:       cfg.Services.Clients,
		Timesheets:    cfg.Services.Timesheets,
		Reports:       cfg.Services.Reports,
		Files:         cfg.Services.Files,
		Registry:      cfg.Services.Registry,
		CookieDomain:  appCfg.HTTP.CookieDomain,
		CSRFCookieTTL: appCfg.HTTP.CSRFCookieTTL,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	h := httpx.Logging(cfg.Logger)(router)
	h = httpx.Recover(cfg.Logger)(h)
	return h, nil
}

// RunHTTPServer starts the HTTP server and blocks until the context is
// canceled, a shutdown signal arrives, or the server fails. The session
// registry is started first so live trackers follow profile updates.
func RunHTTPServer(ctx context.Context, cfg *HTTPServerConfig) error {
	if cfg == nil {
		return errors.New("http server config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Logger = logger

	handler, err := buildHTTPHandler(cfg)
	if err != nil {
		return err
	}

	if err = cfg.Services.Registry.Start(ctx); err != nil {
		return fmt.Errorf("start session registry: %w", err)
	}

	addr := ":8080"
	if cfg.Config != nil && cfg.Config.HTTP.Addr != "" {
		addr = cfg.Config.HTTP.Addr
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", serveErr)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			return fmt.Errorf("shutdown http server: %w", shutdownErr)
		}
		if closeErr := cfg.Services.Close(); closeErr != nil {
			logger.Error("close session registry failed", "error", closeErr)
		}
		logger.Info("HTTP server stopped")
		return nil
	})

	return g.Wait()
}
