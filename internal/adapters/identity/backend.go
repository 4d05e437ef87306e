// Package identity composes the session store, profile store, and identity
// event channel into the per-principal backend the session tracker consumes.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/crewdeck/crewdeck/internal/domain/auth"
	"github.com/crewdeck/crewdeck/internal/ports"
)

const lookupTimeout = 5 * time.Second

// Backend scopes session lookup, change notifications, and sign-out to one
// session ID. It implements ports.IdentityBackend.
type Backend struct {
	sessionID string
	sessions  ports.SessionStore
	profiles  ports.ProfileStore
	events    ports.IdentityEvents
	logger    *slog.Logger
}

// BackendOptions holds the dependencies for creating a Backend.
type BackendOptions struct {
	SessionID string
	Sessions  ports.SessionStore
	Profiles  ports.ProfileStore
	// Events is optional; without it the backend delivers no change
	// notifications.
	Events ports.IdentityEvents
	Logger *slog.Logger
}

// NewBackend creates a backend bound to one session.
func NewBackend(opts BackendOptions) *Backend {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Backend{
		sessionID: opts.SessionID,
		sessions:  opts.Sessions,
		profiles:  opts.Profiles,
		events:    opts.Events,
		logger:    opts.Logger,
	}
}

// CurrentSession returns the bound session, or nil when it does not exist or
// has expired.
func (b *Backend) CurrentSession(ctx context.Context) (*domainauth.Session, error) {
	sess, err := b.sessions.Get(ctx, b.sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("current session: %w", err)
	}
	return &sess, nil
}

// Subscribe delivers this session's sign-in and sign-out events to onChange
// as session values (nil on sign-out).
func (b *Backend) Subscribe(onChange func(*domainauth.Session)) (ports.Subscription, error) {
	if b.events == nil {
		return noopSubscription{}, nil
	}
	return b.events.Subscribe(context.Background(), func(ev ports.IdentityEvent) {
		if ev.SessionID != b.sessionID {
			return
		}
		switch ev.Kind {
		case ports.IdentityEventSignedOut:
			onChange(nil)
		case ports.IdentityEventSignedIn:
			ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
			defer cancel()
			sess, err := b.CurrentSession(ctx)
			if err != nil {
				b.logger.Warn("session lookup after sign-in event failed",
					slog.String("session_id", b.sessionID),
					slog.String("error", err.Error()))
				return
			}
			onChange(sess)
		}
	})
}

// SignOut deletes the session and broadcasts the sign-out so other instances
// drop their trackers too.
func (b *Backend) SignOut(ctx context.Context) error {
	err := b.sessions.Delete(ctx, b.sessionID)

	if b.events != nil {
		ev := ports.IdentityEvent{
			Kind:      ports.IdentityEventSignedOut,
			SessionID: b.sessionID,
		}
		if pubErr := b.events.Publish(ctx, ev); pubErr != nil {
			b.logger.Warn("publishing sign-out event failed",
				slog.String("session_id", b.sessionID),
				slog.String("error", pubErr.Error()))
		}
	}
	return err
}

// FetchProfileByID resolves an identifier to exactly one profile.
func (b *Backend) FetchProfileByID(ctx context.Context, id string) (domainauth.Profile, error) {
	return b.profiles.FetchByID(ctx, id)
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() error { return nil }
