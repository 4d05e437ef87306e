package service

import (
	"context"
	"errors"

	"github.com/crewdeck/crewdeck/internal/core"
	"github.com/crewdeck/crewdeck/internal/data"
	"github.com/crewdeck/crewdeck/internal/domain/model"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
)

// ClientServiceOptions groups dependencies for ClientService.
type ClientServiceOptions struct {
	Clients core.ClientRepository
}

// ClientService orchestrates client CRUD.
type ClientService struct {
	clients core.ClientRepository
}

// NewClientService constructs a new ClientService.
func NewClientService(opts ClientServiceOptions) (*ClientService, error) {
	if opts.Clients == nil {
		return nil, errors.New("client repository is required")
	}
	return &ClientService{clients: opts.Clients}, nil
}

// Create validates and creates a client.
func (s *ClientService) Create(ctx context.Context, req *model.CreateClientRequest) (*model.Client, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	return s.clients.Create(ctx, req)
}

// GetByID retrieves a client by ID.
func (s *ClientService) GetByID(ctx context.Context, id string) (*model.Client, error) {
	return s.clients.GetByID(ctx, id)
}

// List returns clients alphabetically with optional name/company search.
func (s *ClientService) List(ctx context.Context, opts data.ClientsListOptions) ([]*model.Client, error) {
	return s.clients.List(ctx, opts)
}

// Update validates and applies a partial update.
func (s *ClientService) Update(ctx context.Context, id string, req model.UpdateClientRequest) (*model.Client, error) {
	if !req.HasUpdates() {
		return nil, apperrors.Validation("no fields to update")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	return s.clients.Update(ctx, id, req)
}

// Delete removes a client. Jobs referencing it block the delete at the
// database level and surface as a foreign-key conflict.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	return s.clients.Delete(ctx, id)
}
