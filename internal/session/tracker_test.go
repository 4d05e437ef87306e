package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crewdeck/crewdeck/internal/domain/auth"
	"github.com/crewdeck/crewdeck/internal/ports"
)

// fakeBackend is a controllable in-memory identity backend.
type fakeBackend struct {
	mu         sync.Mutex
	sess       *auth.Session
	sessErr    error
	hangLookup bool

	profiles   map[string]auth.Profile
	profileErr map[string]error
	// fetchGate, when set for a user, blocks that user's profile fetch
	// until the channel is closed.
	fetchGate map[string]chan struct{}

	signOutErr   error
	signOutCalls int

	onChange   func(*auth.Session)
	unsubCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		profiles:   make(map[string]auth.Profile),
		profileErr: make(map[string]error),
		fetchGate:  make(map[string]chan struct{}),
	}
}

func (f *fakeBackend) CurrentSession(ctx context.Context) (*auth.Session, error) {
	f.mu.Lock()
	hang := f.hangLookup
	sess, err := f.sess, f.sessErr
	f.mu.Unlock()
	if hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return sess, err
}

func (f *fakeBackend) Subscribe(onChange func(*auth.Session)) (ports.Subscription, error) {
	f.mu.Lock()
	f.onChange = onChange
	f.mu.Unlock()
	return &fakeSub{backend: f}, nil
}

func (f *fakeBackend) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCalls++
	return f.signOutErr
}

func (f *fakeBackend) FetchProfileByID(ctx context.Context, id string) (auth.Profile, error) {
	f.mu.Lock()
	gate := f.fetchGate[id]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.profileErr[id]; err != nil {
		return auth.Profile{}, err
	}
	p, ok := f.profiles[id]
	if !ok {
		return auth.Profile{}, ports.ErrProfileNotFound
	}
	return p, nil
}

// emit delivers an identity change to the subscriber, like the real event
// stream would.
func (f *fakeBackend) emit(sess *auth.Session) {
	f.mu.Lock()
	onChange := f.onChange
	f.mu.Unlock()
	if onChange != nil {
		onChange(sess)
	}
}

type fakeSub struct {
	backend *fakeBackend
}

func (s *fakeSub) Unsubscribe() error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.unsubCalls++
	s.backend.onChange = nil
	return nil
}

func sessionFor(userID string) *auth.Session {
	return &auth.Session{
		ID:        "sess-" + userID,
		UserID:    userID,
		Email:     userID + "@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func newTestTracker(t *testing.T, backend ports.IdentityBackend) *Tracker {
	t.Helper()
	tr, err := NewTracker(TrackerOptions{
		Backend:      backend,
		InitTimeout:  time.Second,
		FetchTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestTracker_InitializeNoSession(t *testing.T) {
	backend := newFakeBackend()
	tr := newTestTracker(t, backend)

	require.True(t, tr.Snapshot().Resolving)

	tr.Initialize(context.Background())

	snap := tr.Snapshot()
	require.Nil(t, snap.Identity)
	require.Nil(t, snap.Profile)
	require.False(t, snap.Resolving)

	require.True(t, Guard{}.Evaluate(snap).Allowed())
	require.Equal(t,
		Decision{Kind: DecisionDenied, Reason: DenyNoSession},
		Guard{RequireApproval: true}.Evaluate(snap))
}

func TestTracker_InitializeExistingSession(t *testing.T) {
	backend := newFakeBackend()
	backend.sess = sessionFor("u1")
	backend.profiles["u1"] = auth.Profile{
		ID:              "u1",
		Role:            auth.RoleEmployee,
		ApprovedByAdmin: false,
	}
	tr := newTestTracker(t, backend)

	tr.Initialize(context.Background())

	snap := tr.Snapshot()
	require.NotNil(t, snap.Identity)
	require.Equal(t, "u1", snap.Identity.UserID)
	require.NotNil(t, snap.Profile)
	require.False(t, snap.IsApproved())
	require.False(t, snap.IsAdmin())
	require.Equal(t,
		Decision{Kind: DecisionDenied, Reason: DenyNotApproved},
		Guard{RequireApproval: true}.Evaluate(snap))
}

func TestTracker_ApprovedEmployee(t *testing.T) {
	backend := newFakeBackend()
	backend.sess = sessionFor("u1")
	backend.profiles["u1"] = auth.Profile{
		ID:              "u1",
		Role:            auth.RoleEmployee,
		ApprovedByAdmin: true,
	}
	tr := newTestTracker(t, backend)

	tr.Initialize(context.Background())

	snap := tr.Snapshot()
	require.True(t, Guard{RequireApproval: true}.Evaluate(snap).Allowed())
	require.Equal(t,
		Decision{Kind: DecisionDenied, Reason: DenyNotAdmin},
		Guard{RequireApproval: true, RequireAdmin: true}.Evaluate(snap))
}

func TestTracker_ProfileFetchFailureFailsClosed(t *testing.T) {
	backend := newFakeBackend()
	backend.sess = sessionFor("u1")
	backend.profileErr["u1"] = errors.New("backend unreachable")
	tr := newTestTracker(t, backend)

	tr.Initialize(context.Background())

	snap := tr.Snapshot()
	require.NotNil(t, snap.Identity)
	require.Nil(t, snap.Profile)
	require.False(t, snap.IsApproved())
	require.False(t, snap.IsAdmin())
	require.Equal(t,
		Decision{Kind: DecisionDenied, Reason: DenyNotApproved},
		Guard{RequireApproval: true}.Evaluate(snap))
}

func TestTracker_InitializeDeadline(t *testing.T) {
	backend := newFakeBackend()
	backend.hangLookup = true
	tr, err := NewTracker(TrackerOptions{
		Backend:     backend,
		InitTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	defer func() { _ = tr.Close() }()

	start := time.Now()
	tr.Initialize(context.Background())
	require.Less(t, time.Since(start), time.Second)

	snap := tr.Snapshot()
	require.False(t, snap.Resolving)
	require.Nil(t, snap.Identity)
}

func TestTracker_InitializeRunsOnce(t *testing.T) {
	backend := newFakeBackend()
	tr := newTestTracker(t, backend)

	tr.Initialize(context.Background())

	backend.mu.Lock()
	backend.sess = sessionFor("u1")
	backend.mu.Unlock()

	// A second call must not re-run the lookup.
	tr.Initialize(context.Background())
	require.Nil(t, tr.Snapshot().Identity)
}

func TestTracker_IdentityChangeReplacesProfile(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["u1"] = auth.Profile{ID: "u1", Role: auth.RoleEmployee, ApprovedByAdmin: true}
	tr := newTestTracker(t, backend)
	tr.Initialize(context.Background())

	backend.emit(sessionFor("u1"))

	require.Eventually(t, func() bool {
		snap := tr.Snapshot()
		return snap.Profile != nil && snap.Profile.ID == "u1"
	}, time.Second, 5*time.Millisecond)

	backend.emit(nil)

	snap := tr.Snapshot()
	require.Nil(t, snap.Identity)
	require.Nil(t, snap.Profile)
}

// A slow profile fetch for a superseded identity must never overwrite the
// newer identity's profile, regardless of completion order.
func TestTracker_StaleFetchDiscarded(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["a"] = auth.Profile{ID: "a", Role: auth.RoleAdmin, ApprovedByAdmin: true}
	backend.profiles["b"] = auth.Profile{ID: "b", Role: auth.RoleEmployee, ApprovedByAdmin: true}
	gateA := make(chan struct{})
	backend.fetchGate["a"] = gateA
	tr := newTestTracker(t, backend)
	tr.Initialize(context.Background())

	backend.emit(sessionFor("a"))
	backend.emit(sessionFor("b"))

	require.Eventually(t, func() bool {
		snap := tr.Snapshot()
		return snap.Profile != nil && snap.Profile.ID == "b"
	}, time.Second, 5*time.Millisecond)

	// Let a's fetch finish late; its result must be discarded.
	close(gateA)
	time.Sleep(50 * time.Millisecond)

	snap := tr.Snapshot()
	require.NotNil(t, snap.Profile)
	require.Equal(t, "b", snap.Profile.ID)
	require.Equal(t, "b", snap.Identity.UserID)
}

func TestTracker_SignOutClearsLocalStateOnRemoteFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.sess = sessionFor("u1")
	backend.profiles["u1"] = auth.Profile{ID: "u1", Role: auth.RoleAdmin, ApprovedByAdmin: true}
	tr := newTestTracker(t, backend)
	tr.Initialize(context.Background())
	require.NotNil(t, tr.Snapshot().Identity)

	backend.mu.Lock()
	backend.signOutErr = errors.New("network down")
	backend.mu.Unlock()

	err := tr.SignOut(context.Background())
	require.Error(t, err)

	snap := tr.Snapshot()
	require.Nil(t, snap.Identity)
	require.Nil(t, snap.Profile)
	require.False(t, snap.Resolving)
}

func TestTracker_RefreshProfilePicksUpChanges(t *testing.T) {
	backend := newFakeBackend()
	backend.sess = sessionFor("u1")
	backend.profiles["u1"] = auth.Profile{ID: "u1", Role: auth.RoleEmployee, ApprovedByAdmin: false}
	tr := newTestTracker(t, backend)
	tr.Initialize(context.Background())
	require.False(t, tr.Snapshot().IsApproved())

	backend.mu.Lock()
	backend.profiles["u1"] = auth.Profile{ID: "u1", Role: auth.RoleEmployee, ApprovedByAdmin: true}
	backend.mu.Unlock()

	tr.RefreshProfile(context.Background())
	require.True(t, tr.Snapshot().IsApproved())
}

func TestTracker_CloseIsIdempotent(t *testing.T) {
	backend := newFakeBackend()
	tr := newTestTracker(t, backend)
	tr.Initialize(context.Background())

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	require.Equal(t, 1, backend.unsubCalls)

	// A callback arriving after teardown must be a no-op.
	tr.onIdentityChanged(sessionFor("u1"))
	require.Nil(t, tr.Snapshot().Identity)
}

func TestRegistry_AcquireReusesTracker(t *testing.T) {
	backend := newFakeBackend()
	backend.sess = sessionFor("u1")
	reg, err := NewRegistry(RegistryOptions{
		Factory: func(string) ports.IdentityBackend { return backend },
	})
	require.NoError(t, err)
	defer func() { _ = reg.Close() }()

	a, err := reg.Acquire(context.Background(), "sess-u1")
	require.NoError(t, err)
	b, err := reg.Acquire(context.Background(), "sess-u1")
	require.NoError(t, err)
	require.Same(t, a, b)
	require.NotNil(t, a.Snapshot().Identity)
}

func TestRegistry_ReleaseClosesTracker(t *testing.T) {
	backend := newFakeBackend()
	reg, err := NewRegistry(RegistryOptions{
		Factory: func(string) ports.IdentityBackend { return backend },
	})
	require.NoError(t, err)
	defer func() { _ = reg.Close() }()

	_, err = reg.Acquire(context.Background(), "s1")
	require.NoError(t, err)

	reg.Release("s1")
	require.Equal(t, 1, backend.unsubCalls)

	// Releasing an unknown session is a no-op.
	reg.Release("s1")
	require.Equal(t, 1, backend.unsubCalls)
}

func TestRegistry_ProfileUpdateEventRefreshes(t *testing.T) {
	backend := newFakeBackend()
	backend.sess = sessionFor("u1")
	backend.profiles["u1"] = auth.Profile{ID: "u1", Role: auth.RoleEmployee, ApprovedByAdmin: false}
	events := newFakeEvents()
	reg, err := NewRegistry(RegistryOptions{
		Factory: func(string) ports.IdentityBackend { return backend },
		Events:  events,
	})
	require.NoError(t, err)
	defer func() { _ = reg.Close() }()
	require.NoError(t, reg.Start(context.Background()))

	tr, err := reg.Acquire(context.Background(), "sess-u1")
	require.NoError(t, err)
	require.False(t, tr.Snapshot().IsApproved())

	backend.mu.Lock()
	backend.profiles["u1"] = auth.Profile{ID: "u1", Role: auth.RoleEmployee, ApprovedByAdmin: true}
	backend.mu.Unlock()

	events.publish(ports.IdentityEvent{
		Kind:   ports.IdentityEventProfileUpdated,
		UserID: "u1",
	})

	require.Eventually(t, func() bool {
		return tr.Snapshot().IsApproved()
	}, time.Second, 5*time.Millisecond)
}

// fakeEvents is an in-process identity-event channel.
type fakeEvents struct {
	mu       sync.Mutex
	handlers map[int]func(ports.IdentityEvent)
	next     int
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{handlers: make(map[int]func(ports.IdentityEvent))}
}

func (f *fakeEvents) Publish(ctx context.Context, ev ports.IdentityEvent) error {
	f.publish(ev)
	return nil
}

func (f *fakeEvents) publish(ev ports.IdentityEvent) {
	f.mu.Lock()
	handlers := make([]func(ports.IdentityEvent), 0, len(f.handlers))
	for _, h := range f.handlers {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

func (f *fakeEvents) Subscribe(ctx context.Context, onEvent func(ports.IdentityEvent)) (ports.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.handlers[id] = onEvent
	return &fakeEventsSub{events: f, id: id}, nil
}

type fakeEventsSub struct {
	events *fakeEvents
	id     int
}

func (s *fakeEventsSub) Unsubscribe() error {
	s.events.mu.Lock()
	defer s.events.mu.Unlock()
	delete(s.events.handlers, s.id)
	return nil
}
