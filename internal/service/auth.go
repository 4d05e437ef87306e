package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/crewdeck/crewdeck/internal/core"
	"github.com/crewdeck/crewdeck/internal/data"
	domainauth "github.com/crewdeck/crewdeck/internal/domain/auth"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
	"github.com/crewdeck/crewdeck/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Authenticator ports.PasswordAuthenticator
	Provider      ports.AuthProvider // optional; nil disables the OIDC flow
	Sessions      ports.SessionStore
	Profiles      core.ProfileRepository
	Events        ports.IdentityEvents // optional
	Logger        *slog.Logger
}

// AuthService orchestrates signup and the two login modes (password, OIDC),
// minting sessions and broadcasting identity events so live session trackers
// pick up the change.
type AuthService struct {
	authenticator ports.PasswordAuthenticator
	provider      ports.AuthProvider
	sessions      ports.SessionStore
	profiles      core.ProfileRepository
	events        ports.IdentityEvents
	logger        *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Authenticator == nil {
		return nil, errors.New("password authenticator is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if opts.Profiles == nil {
		return nil, errors.New("profile repository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		authenticator: opts.Authenticator,
		provider:      opts.Provider,
		sessions:      opts.Sessions,
		profiles:      opts.Profiles,
		events:        opts.Events,
		logger:        logger,
	}, nil
}

// SignUp registers a new local account. The account starts unapproved, so no
// session is minted; the caller lands on the pending-approval page until an
// admin approves the profile.
func (s *AuthService) SignUp(ctx context.Context, in ports.RegisterInput) (domainauth.Identity, error) {
	identity, err := s.authenticator.Register(ctx, in)
	if err != nil {
		return domainauth.Identity{}, err
	}
	s.logger.InfoContext(ctx, "account registered",
		slog.String("user_id", identity.UserID))
	return identity, nil
}

// Login verifies a password credential and mints a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domainauth.Session, error) {
	identity, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.mintSession(ctx, identity)
}

// BeginLoginResult contains the result of beginning an OIDC login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates the OIDC flow and returns the provider auth URL with
// state and nonce for the callback to verify.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if s.provider == nil {
		return nil, apperrors.Validation("oidc login is not configured")
	}
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing an OIDC login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLogin exchanges the authorization code for an identity, ensures a
// profile row exists (first OIDC sign-in creates an unapproved one), and
// mints a session. The guard still denies the session until the profile is
// approved.
func (s *AuthService) CompleteLogin(ctx context.Context, in CompleteLoginInput) (*domainauth.Session, error) {
	if s.provider == nil {
		return nil, apperrors.Validation("oidc login is not configured")
	}
	if in.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if in.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if in.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  in.Code,
		State: in.State,
		Nonce: in.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	if err := s.ensureProfile(ctx, identity); err != nil {
		return nil, err
	}

	return s.mintSession(ctx, identity)
}

// ensureProfile creates an unapproved employee profile on first OIDC sign-in.
func (s *AuthService) ensureProfile(ctx context.Context, identity domainauth.Identity) error {
	_, err := s.profiles.GetByEmail(ctx, identity.Email)
	if err == nil {
		return nil
	}
	if !apperrors.IsNotFound(err) {
		return fmt.Errorf("look up profile: %w", err)
	}

	_, err = s.profiles.Create(ctx, data.CreateProfileParams{
		ID:    identity.UserID,
		Name:  identity.Name,
		Email: identity.Email,
		Role:  domainauth.RoleEmployee,
	})
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	s.logger.InfoContext(ctx, "profile created for first sign-in",
		slog.String("user_id", identity.UserID))
	return nil
}

// mintSession persists a new session for the identity and broadcasts the
// sign-in so any live tracker for the user picks it up.
func (s *AuthService) mintSession(ctx context.Context, identity domainauth.Identity) (*domainauth.Session, error) {
	session := domainauth.Session{
		ID:        uuid.New().String(),
		UserID:    identity.UserID,
		Name:      identity.Name,
		Email:     identity.Email,
		ExpiresAt: identity.ExpiresAt,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if s.events != nil {
		ev := ports.IdentityEvent{
			Kind:      ports.IdentityEventSignedIn,
			UserID:    session.UserID,
			SessionID: session.ID,
		}
		if err := s.events.Publish(ctx, ev); err != nil {
			// Session state converges on the next lookup; the broadcast is
			// advisory.
			s.logger.WarnContext(ctx, "publish signed_in event failed",
				slog.String("user_id", session.UserID),
				slog.String("error", err.Error()))
		}
	}

	s.logger.InfoContext(ctx, "session created",
		slog.String("user_id", session.UserID),
		slog.String("session_id", session.ID))
	return &session, nil
}
