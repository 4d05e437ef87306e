package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/crewdeck/crewdeck/internal/data"
	domainauth "github.com/crewdeck/crewdeck/internal/domain/auth"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
	"github.com/crewdeck/crewdeck/internal/mocks"
	"github.com/crewdeck/crewdeck/internal/ports"
)

func newLocalAuthenticator(t *testing.T) (*mocks.MockProfileRepository, *mocks.MockCredentialRepository, *LocalAuthenticator) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	profiles := mocks.NewMockProfileRepository(ctrl)
	credentials := mocks.NewMockCredentialRepository(ctrl)

	auth, err := NewLocalAuthenticator(LocalAuthenticatorOptions{
		Profiles:    profiles,
		Credentials: credentials,
		BcryptCost:  bcrypt.MinCost,
	})
	require.NoError(t, err)
	return profiles, credentials, auth
}

func TestLocalAuthenticator_Register(t *testing.T) {
	t.Parallel()
	profiles, credentials, auth := newLocalAuthenticator(t)
	ctx := context.Background()

	created := &domainauth.Profile{
		ID:    "u1",
		Name:  "Jess Worker",
		Email: "jess@example.com",
		Role:  domainauth.RoleEmployee,
	}
	profiles.EXPECT().
		Create(ctx, data.CreateProfileParams{
			Name:  "Jess Worker",
			Email: "jess@example.com",
			Role:  domainauth.RoleEmployee,
		}).
		Return(created, nil)
	credentials.EXPECT().
		Upsert(ctx, "u1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, hash []byte) error {
			return bcrypt.CompareHashAndPassword(hash, []byte("s3cret-password"))
		})

	identity, err := auth.Register(ctx, ports.RegisterInput{
		Name:     "Jess Worker",
		Email:    "Jess@Example.com",
		Password: "s3cret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UserID)
	assert.Equal(t, "jess@example.com", identity.Email)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), identity.ExpiresAt, time.Minute)
}

func TestLocalAuthenticator_Register_Validation(t *testing.T) {
	t.Parallel()
	_, _, auth := newLocalAuthenticator(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    ports.RegisterInput
		field string
	}{
		{
			name:  "missing name",
			in:    ports.RegisterInput{Email: "a@b.com", Password: "longenough"},
			field: "name",
		},
		{
			name:  "missing email",
			in:    ports.RegisterInput{Name: "A", Password: "longenough"},
			field: "email",
		},
		{
			name:  "short password",
			in:    ports.RegisterInput{Name: "A", Email: "a@b.com", Password: "short"},
			field: "password",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tt.in)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.field, apperrors.GetField(err))
		})
	}
}

func TestLocalAuthenticator_Authenticate(t *testing.T) {
	t.Parallel()
	profiles, credentials, auth := newLocalAuthenticator(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-password"), bcrypt.MinCost)
	require.NoError(t, err)

	credentials.EXPECT().
		GetByEmail(ctx, "jess@example.com").
		Return(&data.Credential{UserID: "u1", PasswordHash: hash}, nil)
	profiles.EXPECT().
		GetByEmail(ctx, "jess@example.com").
		Return(&domainauth.Profile{
			ID:              "u1",
			Name:            "Jess Worker",
			Email:           "jess@example.com",
			Role:            domainauth.RoleEmployee,
			ApprovedByAdmin: true,
		}, nil)

	identity, err := auth.Authenticate(ctx, "Jess@Example.com ", "s3cret-password")
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UserID)
	assert.Equal(t, "Jess Worker", identity.Name)
}

func TestLocalAuthenticator_Authenticate_WrongPassword(t *testing.T) {
	t.Parallel()
	_, credentials, auth := newLocalAuthenticator(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-password"), bcrypt.MinCost)
	require.NoError(t, err)
	credentials.EXPECT().
		GetByEmail(ctx, "jess@example.com").
		Return(&data.Credential{UserID: "u1", PasswordHash: hash}, nil)

	_, err = auth.Authenticate(ctx, "jess@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestLocalAuthenticator_Authenticate_UnknownEmail(t *testing.T) {
	t.Parallel()
	_, credentials, auth := newLocalAuthenticator(t)
	ctx := context.Background()

	credentials.EXPECT().
		GetByEmail(ctx, "nobody@example.com").
		Return(nil, apperrors.NotFound("account not found"))

	_, err := auth.Authenticate(ctx, "nobody@example.com", "whatever")
	require.Error(t, err)
	// Unknown account and wrong password are indistinguishable to the caller.
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestLocalAuthenticator_Authenticate_PendingApproval(t *testing.T) {
	t.Parallel()
	profiles, credentials, auth := newLocalAuthenticator(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-password"), bcrypt.MinCost)
	require.NoError(t, err)
	credentials.EXPECT().
		GetByEmail(ctx, "jess@example.com").
		Return(&data.Credential{UserID: "u1", PasswordHash: hash}, nil)
	profiles.EXPECT().
		GetByEmail(ctx, "jess@example.com").
		Return(&domainauth.Profile{ID: "u1", Email: "jess@example.com"}, nil)

	_, err = auth.Authenticate(ctx, "jess@example.com", "s3cret-password")
	require.Error(t, err)
	// Valid credentials on an unapproved account are distinct from bad
	// credentials so the UI can point at the approval queue.
	assert.True(t, apperrors.IsForbidden(err))
}
