package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/crewdeck/crewdeck/internal/data"
	"github.com/crewdeck/crewdeck/internal/domain/model"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
	"github.com/crewdeck/crewdeck/internal/mocks"
)

func newClientService(t *testing.T) (*mocks.MockClientRepository, *ClientService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mocks.NewMockClientRepository(ctrl)
	svc, err := NewClientService(ClientServiceOptions{Clients: repo})
	require.NoError(t, err)
	return repo, svc
}

func TestClientService_Create(t *testing.T) {
	t.Parallel()
	repo, svc := newClientService(t)
	ctx := context.Background()

	req := &model.CreateClientRequest{Name: "Acme Builders", Email: "office@acme.example"}
	expected := &model.Client{ID: "c1", Name: "Acme Builders"}
	repo.EXPECT().Create(ctx, req).Return(expected, nil)

	client, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, expected, client)
}

func TestClientService_Create_InvalidEmail(t *testing.T) {
	t.Parallel()
	_, svc := newClientService(t)

	_, err := svc.Create(context.Background(), &model.CreateClientRequest{
		Name:  "Acme Builders",
		Email: "not-an-address",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestClientService_List(t *testing.T) {
	t.Parallel()
	repo, svc := newClientService(t)
	ctx := context.Background()

	q := "acme"
	opts := data.ClientsListOptions{Q: &q, Limit: 20}
	repo.EXPECT().List(ctx, opts).Return([]*model.Client{{ID: "c1"}}, nil)

	clients, err := svc.List(ctx, opts)
	require.NoError(t, err)
	assert.Len(t, clients, 1)
}

func TestClientService_Update_NoFields(t *testing.T) {
	t.Parallel()
	_, svc := newClientService(t)

	_, err := svc.Update(context.Background(), "c1", model.UpdateClientRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestClientService_Delete_ForeignKeyConflict(t *testing.T) {
	t.Parallel()
	repo, svc := newClientService(t)
	ctx := context.Background()

	repo.EXPECT().
		Delete(ctx, "c1").
		Return(apperrors.Conflict("client has jobs assigned to it"))

	err := svc.Delete(ctx, "c1")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}
