package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/crewdeck/crewdeck/internal/domain/auth"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
	"github.com/crewdeck/crewdeck/internal/mocks"
	mockauth "github.com/crewdeck/crewdeck/internal/mocks/auth"
	"github.com/crewdeck/crewdeck/internal/ports"
)

func newProfileService(t *testing.T) (*mocks.MockProfileRepository, *mockauth.MemoryIdentityEvents, *ProfileService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	profiles := mocks.NewMockProfileRepository(ctrl)
	events := mockauth.NewMemoryIdentityEvents()

	svc, err := NewProfileService(ProfileServiceOptions{Profiles: profiles, Events: events})
	require.NoError(t, err)
	return profiles, events, svc
}

func requireProfileUpdated(t *testing.T, events *mockauth.MemoryIdentityEvents, userID string) {
	t.Helper()
	require.Len(t, events.Published, 1)
	assert.Equal(t, ports.IdentityEventProfileUpdated, events.Published[0].Kind)
	assert.Equal(t, userID, events.Published[0].UserID)
}

func TestProfileService_Approve(t *testing.T) {
	t.Parallel()
	profiles, events, svc := newProfileService(t)
	ctx := context.Background()

	profiles.EXPECT().
		SetApproval(ctx, "u1", true).
		Return(&domainauth.Profile{ID: "u1", ApprovedByAdmin: true}, nil)

	p, err := svc.Approve(ctx, "u1", nil)
	require.NoError(t, err)
	assert.True(t, p.ApprovedByAdmin)
	requireProfileUpdated(t, events, "u1")
}

func TestProfileService_ApproveWithRole(t *testing.T) {
	t.Parallel()
	profiles, events, svc := newProfileService(t)
	ctx := context.Background()

	profiles.EXPECT().
		SetRole(ctx, "u1", domainauth.RoleAdmin).
		Return(&domainauth.Profile{ID: "u1", Role: domainauth.RoleAdmin}, nil)
	profiles.EXPECT().
		SetApproval(ctx, "u1", true).
		Return(&domainauth.Profile{ID: "u1", Role: domainauth.RoleAdmin, ApprovedByAdmin: true}, nil)

	role := domainauth.RoleAdmin
	p, err := svc.Approve(ctx, "u1", &role)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, p.Role)
	requireProfileUpdated(t, events, "u1")
}

func TestProfileService_Approve_InvalidRole(t *testing.T) {
	t.Parallel()
	_, events, svc := newProfileService(t)

	role := domainauth.Role("superuser")
	_, err := svc.Approve(context.Background(), "u1", &role)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, events.Published)
}

func TestProfileService_Revoke(t *testing.T) {
	t.Parallel()
	profiles, events, svc := newProfileService(t)
	ctx := context.Background()

	profiles.EXPECT().
		SetApproval(ctx, "u1", false).
		Return(&domainauth.Profile{ID: "u1"}, nil)

	p, err := svc.Revoke(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, p.ApprovedByAdmin)
	requireProfileUpdated(t, events, "u1")
}

func TestProfileService_ChangeRole(t *testing.T) {
	t.Parallel()
	profiles, events, svc := newProfileService(t)
	ctx := context.Background()

	profiles.EXPECT().
		SetRole(ctx, "u1", domainauth.RoleEmployee).
		Return(&domainauth.Profile{ID: "u1", Role: domainauth.RoleEmployee}, nil)

	_, err := svc.ChangeRole(ctx, "u1", domainauth.RoleEmployee)
	require.NoError(t, err)
	requireProfileUpdated(t, events, "u1")
}

func TestProfileService_Reject(t *testing.T) {
	t.Parallel()
	profiles, events, svc := newProfileService(t)
	ctx := context.Background()

	profiles.EXPECT().Delete(ctx, "u1").Return(nil)

	require.NoError(t, svc.Reject(ctx, "u1"))
	requireProfileUpdated(t, events, "u1")
}

func TestProfileService_Reject_NotFound(t *testing.T) {
	t.Parallel()
	profiles, events, svc := newProfileService(t)
	ctx := context.Background()

	profiles.EXPECT().Delete(ctx, "ghost").Return(apperrors.NotFound("profile not found"))

	err := svc.Reject(ctx, "ghost")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Empty(t, events.Published)
}

func TestProfileService_GetByID_MapsSentinel(t *testing.T) {
	t.Parallel()
	profiles, _, svc := newProfileService(t)
	ctx := context.Background()

	profiles.EXPECT().
		FetchByID(ctx, "ghost").
		Return(domainauth.Profile{}, ports.ErrProfileNotFound)

	_, err := svc.GetByID(ctx, "ghost")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProfileService_MutationSucceedsWhenBroadcastFails(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	profiles := mocks.NewMockProfileRepository(ctrl)
	events := mockauth.NewMemoryIdentityEvents()
	events.Err = assert.AnError

	svc, err := NewProfileService(ProfileServiceOptions{Profiles: profiles, Events: events})
	require.NoError(t, err)

	ctx := context.Background()
	profiles.EXPECT().
		SetApproval(ctx, "u1", true).
		Return(&domainauth.Profile{ID: "u1", ApprovedByAdmin: true}, nil)

	p, err := svc.Approve(ctx, "u1", nil)
	require.NoError(t, err)
	assert.True(t, p.ApprovedByAdmin)
}
