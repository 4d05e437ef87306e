package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdeck/crewdeck/internal/domain/auth"
	"github.com/crewdeck/crewdeck/internal/ports"
)

// cancelAwareBackend refuses lookups on an already-canceled context, like a
// real store driver would.
type cancelAwareBackend struct {
	*fakeBackend
}

func (b cancelAwareBackend) CurrentSession(ctx context.Context) (*auth.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.fakeBackend.CurrentSession(ctx)
}

func newTestRegistry(t *testing.T, backend ports.IdentityBackend) *Registry {
	t.Helper()
	r, err := NewRegistry(RegistryOptions{
		Factory:     func(string) ports.IdentityBackend { return backend },
		InitTimeout: 200 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func liveBackend(userID string) *fakeBackend {
	b := newFakeBackend()
	b.sess = &auth.Session{ID: "sess-" + userID, UserID: userID, Email: userID + "@example.com"}
	b.profiles[userID] = auth.Profile{ID: userID, Email: userID + "@example.com", ApprovedByAdmin: true}
	return b
}

func TestRegistryAcquire_CanceledRequestDoesNotPinSignedOut(t *testing.T) {
	t.Parallel()
	backend := liveBackend("u1")
	r := newTestRegistry(t, cancelAwareBackend{backend})

	// The client hangs up before the first resolution completes. The
	// session is still live on the backend, so the outcome must not be a
	// cached sign-out.
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	first, err := r.Acquire(canceled, "sess-u1")
	require.NoError(t, err)
	require.NotNil(t, first.Snapshot().Identity, "resolution must be detached from the request context")

	second, err := r.Acquire(context.Background(), "sess-u1")
	require.NoError(t, err)
	snap := second.Snapshot()
	require.NotNil(t, snap.Identity)
	assert.Equal(t, "u1", snap.Identity.UserID)
	assert.Equal(t, 1, r.ActiveSessions())
}

func TestRegistryAcquire_TransientLookupFailureNotCached(t *testing.T) {
	t.Parallel()
	backend := liveBackend("u1")
	backend.mu.Lock()
	backend.sessErr = errors.New("dial tcp: connection refused")
	backend.mu.Unlock()
	r := newTestRegistry(t, backend)

	first, err := r.Acquire(context.Background(), "sess-u1")
	require.NoError(t, err)
	assert.Nil(t, first.Snapshot().Identity, "failed lookup reads as signed out for this request")
	assert.Equal(t, 0, r.ActiveSessions(), "a failed resolution must not be cached")

	// The blip clears; the next request resolves the same session again.
	backend.mu.Lock()
	backend.sessErr = nil
	backend.mu.Unlock()

	second, err := r.Acquire(context.Background(), "sess-u1")
	require.NoError(t, err)
	snap := second.Snapshot()
	require.NotNil(t, snap.Identity)
	assert.Equal(t, "u1", snap.Identity.UserID)
}

func TestRegistryAcquire_UnknownSessionLeavesNoTracker(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	r := newTestRegistry(t, backend)

	tracker, err := r.Acquire(context.Background(), "sess-invented")
	require.NoError(t, err)
	snap := tracker.Snapshot()
	assert.False(t, snap.Resolving)
	assert.Nil(t, snap.Identity)

	assert.Equal(t, 0, r.ActiveSessions())
	backend.mu.Lock()
	unsubs := backend.unsubCalls
	backend.mu.Unlock()
	assert.Equal(t, 1, unsubs, "the discarded tracker must release its subscription")
}

func TestRegistryReapIdle_DropsStaleTrackers(t *testing.T) {
	t.Parallel()
	backend := liveBackend("u1")
	r := newTestRegistry(t, backend)

	_, err := r.Acquire(context.Background(), "sess-u1")
	require.NoError(t, err)
	require.Equal(t, 1, r.ActiveSessions())

	// A sweep right away keeps the freshly used tracker.
	r.reapIdle(time.Now())
	assert.Equal(t, 1, r.ActiveSessions())

	// Once the idle window elapses the tracker goes, subscription included.
	r.reapIdle(time.Now().Add(defaultIdleTTL))
	assert.Equal(t, 0, r.ActiveSessions())
	backend.mu.Lock()
	unsubs := backend.unsubCalls
	backend.mu.Unlock()
	assert.Equal(t, 1, unsubs)
}

func TestRegistryReapIdle_DropsSignedOutTrackers(t *testing.T) {
	t.Parallel()
	backend := liveBackend("u1")
	r := newTestRegistry(t, backend)

	_, err := r.Acquire(context.Background(), "sess-u1")
	require.NoError(t, err)

	// The backend announces a sign-out; the very next sweep drops the
	// tracker even though it was just used.
	backend.emit(nil)
	r.reapIdle(time.Now())
	assert.Equal(t, 0, r.ActiveSessions())
}
