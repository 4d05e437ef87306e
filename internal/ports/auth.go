package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service
// and internal/session.

import (
	"context"
	"errors"

	domainauth "github.com/crewdeck/crewdeck/internal/domain/auth"
)

// ErrProfileNotFound is returned by ProfileStore when no profile row exists
// for an identifier. Callers that need to distinguish "no profile yet" from a
// transient backend failure check for this sentinel; any other error is
// treated as transient.
var ErrProfileNotFound = errors.New("profile not found")

// ErrSessionNotFound is returned by SessionStore when no session exists for
// an identifier (never stored, expired out, or deleted).
var ErrSessionNotFound = errors.New("session not found")

// RegisterInput carries inputs for creating a new local account.
type RegisterInput struct {
	Name          string
	Email         string
	EmployerEmail string
	Password      string
}

// PasswordAuthenticator verifies local email/password credentials and mints
// identities for them.
type PasswordAuthenticator interface {
	// Register creates a new account and returns its identity.
	Register(ctx context.Context, in RegisterInput) (domainauth.Identity, error)

	// Authenticate checks the credentials and returns the account's identity.
	Authenticate(ctx context.Context, email, password string) (domainauth.Identity, error)
}

// BeginInput carries inputs for initiating an OIDC auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// ProfileStore resolves a user identifier to exactly one profile record.
// Implementations must fail, not silently return a row, when more than one
// record matches; the at-most-one invariant is owned by the backing schema.
type ProfileStore interface {
	FetchByID(ctx context.Context, id string) (domainauth.Profile, error)
}

// IdentityEventKind enumerates the change notifications the identity backend
// delivers.
type IdentityEventKind string

const (
	// IdentityEventSignedIn is published when a session is created.
	IdentityEventSignedIn IdentityEventKind = "signed_in"
	// IdentityEventSignedOut is published when a session ends.
	IdentityEventSignedOut IdentityEventKind = "signed_out"
	// IdentityEventProfileUpdated is published when an admin mutates a
	// profile (approval, role change); live session state should refetch.
	IdentityEventProfileUpdated IdentityEventKind = "profile_updated"
)

// IdentityEvent describes one identity change.
type IdentityEvent struct {
	Kind      IdentityEventKind `json:"kind"`
	UserID    string            `json:"user_id"`
	SessionID string            `json:"session_id,omitempty"`
}

// Subscription is a handle on a live event subscription.
// Unsubscribe must be idempotent: calling it twice produces no error and no
// further callback delivery.
type Subscription interface {
	Unsubscribe() error
}

// IdentityEvents is the change-notification channel of the identity backend.
type IdentityEvents interface {
	Publish(ctx context.Context, ev IdentityEvent) error
	Subscribe(ctx context.Context, onEvent func(IdentityEvent)) (Subscription, error)
}

// IdentityBackend is the single injected dependency the session tracker holds
// on the external identity/data collaborator. It scopes session lookup, change
// notifications, and sign-out to one principal's session.
type IdentityBackend interface {
	// CurrentSession returns the principal's session, or nil when signed out.
	CurrentSession(ctx context.Context) (*domainauth.Session, error)

	// Subscribe registers a change callback invoked with the new session
	// (nil on sign-out) whenever the principal's identity changes.
	Subscribe(onChange func(*domainauth.Session)) (Subscription, error)

	// SignOut ends the principal's session remotely.
	SignOut(ctx context.Context) error

	// FetchProfileByID resolves an identifier to exactly one profile.
	FetchProfileByID(ctx context.Context, id string) (domainauth.Profile, error)
}
