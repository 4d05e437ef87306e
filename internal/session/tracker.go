package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/crewdeck/crewdeck/internal/domain/auth"
	"github.com/crewdeck/crewdeck/internal/ports"
)

const (
	defaultInitTimeout  = 10 * time.Second
	defaultFetchTimeout = 5 * time.Second
)

// Tracker maintains one principal's session State across its lifetime and
// keeps it synchronized with the identity backend. It subscribes to the
// backend's change notifications for as long as it lives; Close releases the
// subscription and turns any in-flight callback into a no-op.
//
// All backend failures are converted into absence (signed out, or no
// profile) rather than propagated: consumers of Snapshot never see an error,
// only a state that fails closed.
type Tracker struct {
	backend      ports.IdentityBackend
	logger       *slog.Logger
	initTimeout  time.Duration
	fetchTimeout time.Duration

	mu    sync.Mutex
	state State
	// gen is bumped on every identity change, sign-out, and teardown. A
	// profile fetch captures gen when it starts and its result is discarded
	// if gen moved on, so a slow fetch for a superseded identity can never
	// overwrite a newer one.
	gen    uint64
	closed bool

	sub      ports.Subscription
	initOnce sync.Once
}

// TrackerOptions holds the dependencies for creating a Tracker.
type TrackerOptions struct {
	Backend ports.IdentityBackend
	Logger  *slog.Logger

	// InitTimeout bounds the initial session resolution; on expiry the
	// tracker resolves deterministically to signed-out. Defaults to 10s.
	InitTimeout time.Duration
	// FetchTimeout bounds each profile fetch. Defaults to 5s.
	FetchTimeout time.Duration
}

// NewTracker creates a tracker and subscribes it to the backend's change
// stream. The tracker starts in the resolving state; call Initialize to
// perform the initial session lookup.
func NewTracker(opts TrackerOptions) (*Tracker, error) {
	if opts.Backend == nil {
		return nil, errors.New("identity backend is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.InitTimeout <= 0 {
		opts.InitTimeout = defaultInitTimeout
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}

	t := &Tracker{
		backend:      opts.Backend,
		logger:       opts.Logger,
		initTimeout:  opts.InitTimeout,
		fetchTimeout: opts.FetchTimeout,
		state:        State{Resolving: true},
	}

	sub, err := opts.Backend.Subscribe(t.onIdentityChanged)
	if err != nil {
		return nil, err
	}
	t.sub = sub
	return t, nil
}

// Initialize performs the initial session resolution. It runs at most once;
// subsequent calls return immediately. The resolving flag is guaranteed to
// clear within InitTimeout: a backend that hangs past the deadline resolves
// to signed-out with a logged warning rather than leaving the state
// resolving forever.
func (t *Tracker) Initialize(ctx context.Context) {
	t.initOnce.Do(func() { t.initialize(ctx) })
}

func (t *Tracker) initialize(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, t.initTimeout)
	defer cancel()

	type lookup struct {
		sess *auth.Session
		err  error
	}
	done := make(chan lookup, 1)
	go func() {
		sess, err := t.backend.CurrentSession(ctx)
		done <- lookup{sess: sess, err: err}
	}()

	var sess *auth.Session
	select {
	case res := <-done:
		if res.err != nil {
			t.logger.WarnContext(ctx, "initial session lookup failed; treating as signed out",
				slog.String("error", res.err.Error()))
		} else {
			sess = res.sess
		}
	case <-ctx.Done():
		t.logger.WarnContext(ctx, "initial session resolution deadline exceeded; treating as signed out",
			slog.Duration("timeout", t.initTimeout))
	}

	gen, live := t.setIdentity(sess)
	if live && sess != nil {
		// Resolve the profile within the same deadline so the first
		// non-resolving snapshot already reflects it when the backend is
		// healthy.
		t.resolveProfile(ctx, sess.UserID, gen)
	}

	t.mu.Lock()
	t.state.Resolving = false
	t.mu.Unlock()
}

// onIdentityChanged is invoked by the backend's event stream on sign-in,
// sign-out, and token refresh. A nil session clears identity and profile; a
// non-nil one replaces the identity and re-triggers the profile fetch.
func (t *Tracker) onIdentityChanged(sess *auth.Session) {
	gen, live := t.setIdentity(sess)
	if !live || sess == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.fetchTimeout)
		defer cancel()
		t.resolveProfile(ctx, sess.UserID, gen)
	}()
}

// setIdentity installs the new identity (or clears it), bumping the
// generation so older in-flight profile fetches are superseded. It reports
// the new generation and whether the tracker is still live.
func (t *Tracker) setIdentity(sess *auth.Session) (uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, false
	}
	t.gen++
	if sess == nil {
		t.state.Identity = nil
		t.state.Profile = nil
	} else {
		id := sess.Identity()
		t.state.Identity = &id
		t.state.Profile = nil
	}
	return t.gen, true
}

// resolveProfile fetches the profile for userID and installs it, unless the
// identity has moved on since gen was captured. Fetch failures of any kind
// leave the profile absent.
func (t *Tracker) resolveProfile(ctx context.Context, userID string, gen uint64) {
	profile, err := t.backend.FetchProfileByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrProfileNotFound) {
			t.logger.DebugContext(ctx, "no profile for user",
				slog.String("user_id", userID))
		} else {
			t.logger.WarnContext(ctx, "profile fetch failed; leaving profile absent",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
		}
		t.storeProfile(gen, nil)
		return
	}
	t.storeProfile(gen, &profile)
}

func (t *Tracker) storeProfile(gen uint64, profile *auth.Profile) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || gen != t.gen {
		return
	}
	if t.state.Identity == nil {
		return
	}
	t.state.Profile = profile
}

// RefreshProfile re-runs the profile fetch for the current identity, used
// after a profile-mutating action (approval, role change) to pick up changes
// without a re-login. Signed-out trackers ignore the call.
func (t *Tracker) RefreshProfile(ctx context.Context) {
	t.mu.Lock()
	if t.closed || t.state.Identity == nil {
		t.mu.Unlock()
		return
	}
	userID := t.state.Identity.UserID
	gen := t.gen
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, t.fetchTimeout)
	defer cancel()
	t.resolveProfile(ctx, userID, gen)
}

// SignOut asks the backend to end the session, then clears local state
// regardless of whether the remote call succeeded. The remote error, if any,
// is returned so callers can surface it, but locally the principal is signed
// out either way.
func (t *Tracker) SignOut(ctx context.Context) error {
	err := t.backend.SignOut(ctx)
	if err != nil {
		t.logger.WarnContext(ctx, "remote sign-out failed; clearing local state anyway",
			slog.String("error", err.Error()))
	}

	t.mu.Lock()
	if !t.closed {
		t.gen++
		t.state.Identity = nil
		t.state.Profile = nil
		t.state.Resolving = false
	}
	t.mu.Unlock()
	return err
}

// Snapshot returns a copy of the current state. The copy is detached: later
// tracker updates do not mutate it.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := State{Resolving: t.state.Resolving}
	if t.state.Identity != nil {
		id := *t.state.Identity
		out.Identity = &id
	}
	if t.state.Profile != nil {
		p := *t.state.Profile
		out.Profile = &p
	}
	return out
}

// Close tears the tracker down: the event subscription is released and any
// in-flight callback or fetch becomes a no-op. Close is idempotent.
func (t *Tracker) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.gen++
	t.state = State{}
	sub := t.sub
	t.sub = nil
	t.mu.Unlock()

	if sub != nil {
		return sub.Unsubscribe()
	}
	return nil
}
