package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/crewdeck/crewdeck/internal/core"
	"github.com/crewdeck/crewdeck/internal/data"
	domainauth "github.com/crewdeck/crewdeck/internal/domain/auth"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
	"github.com/crewdeck/crewdeck/internal/ports"
)

// ProfileServiceOptions groups dependencies for ProfileService.
type ProfileServiceOptions struct {
	Profiles core.ProfileRepository
	Events   ports.IdentityEvents // optional
	Logger   *slog.Logger
}

// ProfileService is the admin staff-management surface: approval queue, role
// changes, and rejection. Every mutation broadcasts a profile_updated event
// so live session trackers refetch the profile instead of serving stale
// authorization state.
type ProfileService struct {
	profiles core.ProfileRepository
	events   ports.IdentityEvents
	logger   *slog.Logger
}

// NewProfileService constructs a new ProfileService.
func NewProfileService(opts ProfileServiceOptions) (*ProfileService, error) {
	if opts.Profiles == nil {
		return nil, errors.New("profile repository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{
		profiles: opts.Profiles,
		events:   opts.Events,
		logger:   logger,
	}, nil
}

// GetByID retrieves one profile.
func (s *ProfileService) GetByID(ctx context.Context, id string) (*domainauth.Profile, error) {
	if id == "" {
		return nil, apperrors.Validation("profile id is required")
	}
	p, err := s.profiles.FetchByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrProfileNotFound) {
			return nil, apperrors.NotFoundf("profile %s not found", id)
		}
		return nil, err
	}
	return &p, nil
}

// List returns profiles with optional approval and role filters. The admin
// staff view uses Approved=false for the pending queue.
func (s *ProfileService) List(ctx context.Context, opts data.ProfilesListOptions) ([]*domainauth.Profile, error) {
	return s.profiles.List(ctx, opts)
}

// Approve marks a profile as admin-approved, optionally assigning a role in
// the same step.
func (s *ProfileService) Approve(ctx context.Context, id string, role *domainauth.Role) (*domainauth.Profile, error) {
	if role != nil {
		if !role.Valid() {
			return nil, apperrors.ValidationField("role", "invalid role")
		}
		if _, err := s.profiles.SetRole(ctx, id, *role); err != nil {
			return nil, err
		}
	}
	p, err := s.profiles.SetApproval(ctx, id, true)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "profile approved", slog.String("user_id", id))
	s.broadcastProfileUpdated(ctx, id)
	return p, nil
}

// Revoke withdraws admin approval. Live sessions lose access on their next
// guard evaluation once the tracker refetches the profile.
func (s *ProfileService) Revoke(ctx context.Context, id string) (*domainauth.Profile, error) {
	p, err := s.profiles.SetApproval(ctx, id, false)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "profile approval revoked", slog.String("user_id", id))
	s.broadcastProfileUpdated(ctx, id)
	return p, nil
}

// ChangeRole switches a profile between employee and admin.
func (s *ProfileService) ChangeRole(ctx context.Context, id string, role domainauth.Role) (*domainauth.Profile, error) {
	if !role.Valid() {
		return nil, apperrors.ValidationField("role", "invalid role")
	}
	p, err := s.profiles.SetRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "profile role changed",
		slog.String("user_id", id),
		slog.String("role", string(role)))
	s.broadcastProfileUpdated(ctx, id)
	return p, nil
}

// Reject removes a pending profile and its credentials (cascade).
func (s *ProfileService) Reject(ctx context.Context, id string) error {
	if err := s.profiles.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "profile rejected", slog.String("user_id", id))
	s.broadcastProfileUpdated(ctx, id)
	return nil
}

func (s *ProfileService) broadcastProfileUpdated(ctx context.Context, userID string) {
	if s.events == nil {
		return
	}
	ev := ports.IdentityEvent{Kind: ports.IdentityEventProfileUpdated, UserID: userID}
	if err := s.events.Publish(ctx, ev); err != nil {
		// Trackers refetch on their next identity change; the broadcast only
		// accelerates convergence.
		s.logger.WarnContext(ctx, "publish profile_updated event failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	}
}
