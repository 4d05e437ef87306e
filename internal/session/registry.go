package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/crewdeck/crewdeck/internal/ports"
)

const (
	defaultReapInterval = time.Minute
	defaultIdleTTL      = 30 * time.Minute
)

// BackendFactory builds an identity backend scoped to one session.
type BackendFactory func(sessionID string) ports.IdentityBackend

// trackerEntry pairs a tracker with the last time a request touched it, so
// the idle sweep can tell live sessions from abandoned ones.
type trackerEntry struct {
	tracker  *Tracker
	lastSeen time.Time
}

// Registry maintains one Tracker per active session for the HTTP layer. It
// also listens for profile-updated events and refreshes the affected
// principal's tracker so admin mutations (approval, role change) take effect
// without a re-login.
//
// Trackers are only retained for sessions that actually resolved to a signed-in
// identity; an ID whose lookup found nothing (garbage cookie, expired session,
// or a failed lookup) is resolved for the current request and then dropped, so
// the next request retries from scratch. A periodic sweep additionally drops
// trackers that have gone idle or signed out since, keeping the map and the
// per-tracker event subscriptions bounded by the set of recently active
// sessions.
type Registry struct {
	factory      BackendFactory
	events       ports.IdentityEvents
	logger       *slog.Logger
	initTimeout  time.Duration
	fetchTimeout time.Duration
	reapInterval time.Duration
	idleTTL      time.Duration

	mu       sync.Mutex
	trackers map[string]*trackerEntry
	sub      ports.Subscription
	closed   bool
}

// RegistryOptions holds the dependencies for creating a Registry.
type RegistryOptions struct {
	Factory BackendFactory
	// Events, when set, is watched for profile-updated notifications.
	Events ports.IdentityEvents
	Logger *slog.Logger

	InitTimeout  time.Duration
	FetchTimeout time.Duration

	// ReapInterval is how often the idle sweep runs. Defaults to 1 minute.
	ReapInterval time.Duration
	// IdleTTL is how long a tracker may go without being acquired before
	// the sweep drops it. Defaults to 30 minutes.
	IdleTTL time.Duration
}

// NewRegistry creates an empty registry.
func NewRegistry(opts RegistryOptions) (*Registry, error) {
	if opts.Factory == nil {
		return nil, errors.New("backend factory is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ReapInterval <= 0 {
		opts.ReapInterval = defaultReapInterval
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = defaultIdleTTL
	}
	return &Registry{
		factory:      opts.Factory,
		events:       opts.Events,
		logger:       opts.Logger,
		initTimeout:  opts.InitTimeout,
		fetchTimeout: opts.FetchTimeout,
		reapInterval: opts.ReapInterval,
		idleTTL:      opts.IdleTTL,
		trackers:     make(map[string]*trackerEntry),
	}, nil
}

// Start subscribes the registry to identity events and launches the idle
// sweep. Both run until ctx is canceled; skipping the event channel is safe
// when none was configured.
func (r *Registry) Start(ctx context.Context) error {
	if r.events != nil {
		sub, err := r.events.Subscribe(ctx, r.onEvent)
		if err != nil {
			return err
		}
		r.mu.Lock()
		r.sub = sub
		r.mu.Unlock()
	}
	go r.reapLoop(ctx)
	return nil
}

func (r *Registry) onEvent(ev ports.IdentityEvent) {
	if ev.Kind != ports.IdentityEventProfileUpdated {
		return
	}
	for _, t := range r.trackersForUser(ev.UserID) {
		ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
		t.RefreshProfile(ctx)
		cancel()
	}
	r.logger.Debug("refreshed trackers after profile update",
		slog.String("user_id", ev.UserID))
}

func (r *Registry) trackersForUser(userID string) []*Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Tracker
	for _, e := range r.trackers {
		snap := e.tracker.Snapshot()
		if snap.Identity != nil && snap.Identity.UserID == userID {
			out = append(out, e.tracker)
		}
	}
	return out
}

// Acquire returns the tracker for sessionID, creating and initializing one
// on first use.
//
// The initial session resolution is deliberately detached from the request's
// cancellation: its outcome outlives the request, and a client that hangs up
// mid-lookup must not decide the session's fate. The tracker's own
// InitTimeout still bounds the work. When the resolution lands on signed-out
// the fresh tracker is not retained: the caller gets the signed-out state for
// this request, and the next request with the same ID resolves again.
func (r *Registry) Acquire(ctx context.Context, sessionID string) (*Tracker, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, errors.New("registry is closed")
	}
	if e, ok := r.trackers[sessionID]; ok {
		e.lastSeen = time.Now()
		r.mu.Unlock()
		return e.tracker, nil
	}
	r.mu.Unlock()

	t, err := NewTracker(TrackerOptions{
		Backend:      r.factory(sessionID),
		Logger:       r.logger,
		InitTimeout:  r.initTimeout,
		FetchTimeout: r.fetchTimeout,
	})
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = t.Close()
		return nil, errors.New("registry is closed")
	}
	if existing, ok := r.trackers[sessionID]; ok {
		// Lost the creation race to another request for the same session.
		existing.lastSeen = time.Now()
		r.mu.Unlock()
		_ = t.Close()
		return existing.tracker, nil
	}
	r.trackers[sessionID] = &trackerEntry{tracker: t, lastSeen: time.Now()}
	r.mu.Unlock()

	t.Initialize(context.WithoutCancel(ctx))

	if snap := t.Snapshot(); snap.Identity == nil {
		r.drop(sessionID, t)
	}
	return t, nil
}

// drop removes the tracker for sessionID, provided it is still the one that
// was installed, and closes it.
func (r *Registry) drop(sessionID string, t *Tracker) {
	r.mu.Lock()
	if e, ok := r.trackers[sessionID]; ok && e.tracker == t {
		delete(r.trackers, sessionID)
	}
	r.mu.Unlock()
	if err := t.Close(); err != nil {
		r.logger.Warn("closing session tracker",
			slog.String("error", err.Error()))
	}
}

// Release closes and drops the tracker for sessionID, if any. Used when a
// session ends.
func (r *Registry) Release(sessionID string) {
	r.mu.Lock()
	e, ok := r.trackers[sessionID]
	if ok {
		delete(r.trackers, sessionID)
	}
	r.mu.Unlock()
	if ok {
		if err := e.tracker.Close(); err != nil {
			r.logger.Warn("closing session tracker",
				slog.String("error", err.Error()))
		}
	}
}

// ActiveSessions reports how many trackers the registry currently holds.
func (r *Registry) ActiveSessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trackers)
}

func (r *Registry) reapLoop(ctx context.Context) {
	ticker := time.NewTicker(r.reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reapIdle(time.Now())
		}
	}
}

// reapIdle drops trackers that have not been acquired within IdleTTL, plus
// any that have signed out since their last acquisition. Each dropped tracker
// releases its backend event subscription.
func (r *Registry) reapIdle(now time.Time) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	var victims []*Tracker
	for id, e := range r.trackers {
		snap := e.tracker.Snapshot()
		idle := now.Sub(e.lastSeen) >= r.idleTTL
		signedOut := !snap.Resolving && snap.Identity == nil
		if idle || signedOut {
			delete(r.trackers, id)
			victims = append(victims, e.tracker)
		}
	}
	r.mu.Unlock()

	for _, t := range victims {
		if err := t.Close(); err != nil {
			r.logger.Warn("closing session tracker",
				slog.String("error", err.Error()))
		}
	}
	if len(victims) > 0 {
		r.logger.Debug("reaped idle session trackers",
			slog.Int("count", len(victims)))
	}
}

// Close tears down the event subscription and every tracker. Idempotent.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	sub := r.sub
	r.sub = nil
	trackers := r.trackers
	r.trackers = make(map[string]*trackerEntry)
	r.mu.Unlock()

	var firstErr error
	if sub != nil {
		firstErr = sub.Unsubscribe()
	}
	for _, e := range trackers {
		if err := e.tracker.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
