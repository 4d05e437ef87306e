// Package session holds the per-principal authentication state machine:
// the state tuple, the authorization predicates derived from it, the guard
// that gates protected routes, and the tracker that keeps the state
// synchronized with the identity backend.
package session

import (
	"github.com/crewdeck/crewdeck/internal/domain/auth"
)

// State is a snapshot of a principal's session: the authenticated identity
// (nil when signed out), the cached profile record (nil until fetched), and
// whether the initial resolution is still in flight.
//
// Invariants: Profile is nil whenever Identity is nil, and no authorization
// decision is rendered while Resolving is true.
type State struct {
	Identity  *auth.Identity
	Profile   *auth.Profile
	Resolving bool
}

// IsAuthenticated reports whether an identity is present.
func (s State) IsAuthenticated() bool {
	return s.Identity != nil
}

// IsApproved reports whether the cached profile exists and carries admin
// approval. An absent profile fails closed.
func (s State) IsApproved() bool {
	return s.Profile != nil && s.Profile.ApprovedByAdmin
}

// IsAdmin reports whether the cached profile exists and holds the admin
// role. An absent profile fails closed.
func (s State) IsAdmin() bool {
	return s.Profile != nil && s.Profile.Role == auth.RoleAdmin
}
