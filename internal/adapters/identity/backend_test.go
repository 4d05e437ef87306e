package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainauth "github.com/crewdeck/crewdeck/internal/domain/auth"
	mockauth "github.com/crewdeck/crewdeck/internal/mocks/auth"
	"github.com/crewdeck/crewdeck/internal/ports"
)

func newTestBackend(t *testing.T) (*Backend, *mockauth.MemorySessionStore, *mockauth.MemoryProfileStore, *mockauth.MemoryIdentityEvents) {
	t.Helper()
	sessions := mockauth.NewMemorySessionStore()
	profiles := mockauth.NewMemoryProfileStore()
	events := mockauth.NewMemoryIdentityEvents()
	b := NewBackend(BackendOptions{
		SessionID: "s1",
		Sessions:  sessions,
		Profiles:  profiles,
		Events:    events,
	})
	return b, sessions, profiles, events
}

func TestBackend_CurrentSession(t *testing.T) {
	b, sessions, _, _ := newTestBackend(t)
	ctx := context.Background()

	// Absent session is not an error, just nil.
	sess, err := b.CurrentSession(ctx)
	require.NoError(t, err)
	require.Nil(t, sess)

	require.NoError(t, sessions.Save(ctx, domainauth.Session{
		ID:        "s1",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	sess, err = b.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, "u1", sess.UserID)
}

func TestBackend_SubscribeFiltersOtherSessions(t *testing.T) {
	b, sessions, _, events := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, domainauth.Session{
		ID:        "s1",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	var changes []*domainauth.Session
	sub, err := b.Subscribe(func(s *domainauth.Session) { changes = append(changes, s) })
	require.NoError(t, err)
	defer func() { _ = sub.Unsubscribe() }()

	// Another principal's events must not reach this backend.
	require.NoError(t, events.Publish(ctx, ports.IdentityEvent{
		Kind:      ports.IdentityEventSignedOut,
		SessionID: "other",
	}))
	require.Empty(t, changes)

	require.NoError(t, events.Publish(ctx, ports.IdentityEvent{
		Kind:      ports.IdentityEventSignedIn,
		UserID:    "u1",
		SessionID: "s1",
	}))
	require.Len(t, changes, 1)
	require.NotNil(t, changes[0])
	require.Equal(t, "u1", changes[0].UserID)

	require.NoError(t, events.Publish(ctx, ports.IdentityEvent{
		Kind:      ports.IdentityEventSignedOut,
		SessionID: "s1",
	}))
	require.Len(t, changes, 2)
	require.Nil(t, changes[1])
}

func TestBackend_SignOutDeletesAndBroadcasts(t *testing.T) {
	b, sessions, _, events := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, domainauth.Session{
		ID:        "s1",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	require.NoError(t, b.SignOut(ctx))

	sess, err := b.CurrentSession(ctx)
	require.NoError(t, err)
	require.Nil(t, sess)

	require.Len(t, events.Published, 1)
	require.Equal(t, ports.IdentityEventSignedOut, events.Published[0].Kind)
	require.Equal(t, "s1", events.Published[0].SessionID)
}

func TestBackend_FetchProfilePassthrough(t *testing.T) {
	b, _, profiles, _ := newTestBackend(t)

	profiles.Put(domainauth.Profile{ID: "u1", ApprovedByAdmin: true})
	p, err := b.FetchProfileByID(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, p.ApprovedByAdmin)

	_, err = b.FetchProfileByID(context.Background(), "nope")
	require.ErrorIs(t, err, ports.ErrProfileNotFound)
}
