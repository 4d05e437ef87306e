package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/crewdeck/crewdeck/internal/data"
	domainauth "github.com/crewdeck/crewdeck/internal/domain/auth"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
	"github.com/crewdeck/crewdeck/internal/mocks"
	mockauth "github.com/crewdeck/crewdeck/internal/mocks/auth"
	"github.com/crewdeck/crewdeck/internal/ports"
)

type authServiceFixture struct {
	authenticator *mockauth.MockPasswordAuthenticator
	provider      *mockauth.MockAuthProvider
	sessions      *mockauth.MemorySessionStore
	profiles      *mocks.MockProfileRepository
	events        *mockauth.MemoryIdentityEvents
	svc           *AuthService
}

func newAuthService(t *testing.T, withProvider bool) *authServiceFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &authServiceFixture{
		authenticator: &mockauth.MockPasswordAuthenticator{},
		sessions:      mockauth.NewMemorySessionStore(),
		profiles:      mocks.NewMockProfileRepository(ctrl),
		events:        mockauth.NewMemoryIdentityEvents(),
	}
	opts := AuthServiceOptions{
		Authenticator: f.authenticator,
		Sessions:      f.sessions,
		Profiles:      f.profiles,
		Events:        f.events,
	}
	if withProvider {
		f.provider = mockauth.NewMockAuthProvider()
		opts.Provider = f.provider
	}

	svc, err := NewAuthService(opts)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestAuthService_Login_MintsSessionAndBroadcasts(t *testing.T) {
	t.Parallel()
	f := newAuthService(t, false)
	ctx := context.Background()

	f.authenticator.AuthenticateFunc = func(_ context.Context, email, password string) (domainauth.Identity, error) {
		require.Equal(t, "jess@example.com", email)
		require.Equal(t, "pw-123456", password)
		return domainauth.Identity{
			UserID:    "u1",
			Name:      "Jess Worker",
			Email:     email,
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil
	}

	sess, err := f.svc.Login(ctx, "jess@example.com", "pw-123456")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "u1", sess.UserID)

	stored, err := f.sessions.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, stored.UserID)

	require.Len(t, f.events.Published, 1)
	assert.Equal(t, ports.IdentityEventSignedIn, f.events.Published[0].Kind)
	assert.Equal(t, "u1", f.events.Published[0].UserID)
	assert.Equal(t, sess.ID, f.events.Published[0].SessionID)
}

func TestAuthService_Login_PropagatesAuthError(t *testing.T) {
	t.Parallel()
	f := newAuthService(t, false)

	f.authenticator.AuthenticateFunc = func(context.Context, string, string) (domainauth.Identity, error) {
		return domainauth.Identity{}, apperrors.Unauthorized("invalid email or password")
	}

	_, err := f.svc.Login(context.Background(), "jess@example.com", "bad")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Empty(t, f.events.Published)
}

func TestAuthService_SignUp_NoSession(t *testing.T) {
	t.Parallel()
	f := newAuthService(t, false)

	identity, err := f.svc.SignUp(context.Background(), ports.RegisterInput{
		Name:     "Jess Worker",
		Email:    "jess@example.com",
		Password: "pw-123456",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-user", identity.UserID)
	// Unapproved accounts get no session and no sign-in broadcast.
	assert.Empty(t, f.events.Published)
}

func TestAuthService_BeginLogin(t *testing.T) {
	t.Parallel()
	f := newAuthService(t, true)

	result, err := f.svc.BeginLogin(context.Background(), "http://localhost/callback")
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", result.AuthURL)
	assert.NotEmpty(t, result.State)
	assert.NotEmpty(t, result.Nonce)
}

func TestAuthService_BeginLogin_NotConfigured(t *testing.T) {
	t.Parallel()
	f := newAuthService(t, false)

	_, err := f.svc.BeginLogin(context.Background(), "http://localhost/callback")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestAuthService_CompleteLogin_CreatesProfileOnFirstSignIn(t *testing.T) {
	t.Parallel()
	f := newAuthService(t, true)
	ctx := context.Background()

	f.profiles.EXPECT().
		GetByEmail(ctx, "mock.user@example.com").
		Return(nil, apperrors.NotFound("profile not found"))
	f.profiles.EXPECT().
		Create(ctx, data.CreateProfileParams{
			ID:    "mock-user-1",
			Name:  "Mock User",
			Email: "mock.user@example.com",
			Role:  domainauth.RoleEmployee,
		}).
		Return(&domainauth.Profile{ID: "mock-user-1"}, nil)

	sess, err := f.svc.CompleteLogin(ctx, CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, "mock-user-1", sess.UserID)

	require.Len(t, f.events.Published, 1)
	assert.Equal(t, ports.IdentityEventSignedIn, f.events.Published[0].Kind)
}

func TestAuthService_CompleteLogin_ExistingProfile(t *testing.T) {
	t.Parallel()
	f := newAuthService(t, true)
	ctx := context.Background()

	f.profiles.EXPECT().
		GetByEmail(ctx, "mock.user@example.com").
		Return(&domainauth.Profile{ID: "mock-user-1", ApprovedByAdmin: true}, nil)

	sess, err := f.svc.CompleteLogin(ctx, CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, "mock-user-1", sess.UserID)
}

func TestAuthService_CompleteLogin_ValidationErrors(t *testing.T) {
	t.Parallel()
	f := newAuthService(t, true)
	ctx := context.Background()

	for _, in := range []CompleteLoginInput{
		{State: "s", Nonce: "n"},
		{Code: "c", Nonce: "n"},
		{Code: "c", State: "s"},
	} {
		_, err := f.svc.CompleteLogin(ctx, in)
		require.Error(t, err)
	}
}
