package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/crewdeck/crewdeck/config"
	"github.com/crewdeck/crewdeck/internal/adapters/devauth"
	"github.com/crewdeck/crewdeck/internal/adapters/oidc"
	redisadapter "github.com/crewdeck/crewdeck/internal/adapters/redis"
	"github.com/crewdeck/crewdeck/internal/core"
	"github.com/crewdeck/crewdeck/internal/ports"
	"github.com/crewdeck/crewdeck/internal/service"
)

// AuthDeps contains dependencies for building the auth service.
type AuthDeps struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Profiles    core.ProfileRepository
	Credentials core.CredentialRepository
	Logger      *slog.Logger
}

// authBundle groups the auth service with the identity plumbing shared by
// the session registry.
type authBundle struct {
	Auth     *service.AuthService
	Sessions *redisadapter.SessionStore
	Events   *redisadapter.IdentityEvents
}

// buildAuth wires the password authenticator, the configured SSO provider,
// and the Redis-backed session store and event channel into an auth service.
func buildAuth(deps AuthDeps) (authBundle, error) {
	if deps.RedisClient == nil {
		return authBundle{}, fmt.Errorf("auth requires a redis client")
	}

	sessions := redisadapter.NewSessionStoreWithPrefix(deps.RedisClient, "session:")
	events := redisadapter.NewIdentityEvents(deps.RedisClient, deps.Logger)

	authenticator, err := service.NewLocalAuthenticator(service.LocalAuthenticatorOptions{
		Profiles:    deps.Profiles,
		Credentials: deps.Credentials,
		SessionTTL:  deps.Auth.SessionTTL,
		BcryptCost:  deps.Auth.BcryptCost,
	})
	if err != nil {
		return authBundle{}, fmt.Errorf("build local authenticator: %w", err)
	}

	provider, err := buildAuthProvider(deps.Auth, deps.Logger)
	if err != nil {
		return authBundle{}, err
	}

	svc, err := service.NewAuthService(service.AuthServiceOptions{
		Authenticator: authenticator,
		Provider:      provider,
		Sessions:      sessions,
		Profiles:      deps.Profiles,
		Events:        events,
		Logger:        deps.Logger,
	})
	if err != nil {
		return authBundle{}, fmt.Errorf("build auth service: %w", err)
	}

	return authBundle{Auth: svc, Sessions: sessions, Events: events}, nil
}

// buildAuthProvider returns the SSO provider for the configured mode, or nil
// when only password login is offered.
//
//nolint:ireturn // the provider port lets dev and oidc implementations swap at runtime.
func buildAuthProvider(cfg config.AuthConfig, logger *slog.Logger) (ports.AuthProvider, error) {
	switch cfg.Mode {
	case config.AuthModeDev:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID: cfg.DevAuth.UserID,
			Name:   cfg.DevAuth.Name,
			Email:  cfg.DevAuth.Email,
		})
		if err != nil {
			return nil, fmt.Errorf("build dev auth provider: %w", err)
		}
		return prov, nil

	case config.AuthModeOIDC:
		oauth := cfg.OIDC
		if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
			if logger != nil {
				logger.Warn("oidc login disabled: required config missing",
					"discovery_url_empty", oauth.DiscoveryURL == "",
					"client_id_empty", oauth.ClientID == "",
					"client_secret_empty", oauth.ClientSecret == "",
				)
			}
			return nil, nil
		}

		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scope:        oauth.Scope,
			DiscoveryURL: oauth.DiscoveryURL,
		})
		if err != nil {
			return nil, fmt.Errorf("build oidc provider: %w", err)
		}
		return prov, nil

	case config.AuthModePassword:
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
