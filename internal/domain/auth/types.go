package auth

// Package auth contains domain-level types for authentication, profiles, and
// sessions. It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Valid reports whether the role is one of the supported values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee:
		return true
	default:
		return false
	}
}

// Identity represents the authenticated principal returned by the identity
// backend. Adapters map provider-specific claims into this shape. The profile
// record (role, approval flag) is looked up separately; the identity carries
// only what the provider asserts.
type Identity struct {
	UserID    string // stable user identifier (sub or local account id)
	Name      string
	Email     string
	ExpiresAt time.Time // absolute expiry from the provider
}

// Profile is the locally stored record describing a principal's role and
// admin-approval status. It is keyed by the Identity's UserID; at most one
// profile exists per identity. Profile existence does not imply approval.
type Profile struct {
	ID              string     `json:"id"                       db:"id"`
	Name            string     `json:"name"                     db:"name"`
	Email           string     `json:"email"                    db:"email"`
	EmployerEmail   *string    `json:"employer_email,omitempty" db:"employer_email"`
	Role            Role       `json:"role"                     db:"role"`
	ApprovedByAdmin bool       `json:"approved_by_admin"        db:"approved_by_admin"`
	CreatedAt       time.Time  `json:"created_at"               db:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"     db:"updated_at"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p Profile) IsAdmin() bool { return p.Role == RoleAdmin }

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity projects the session back into the identity it was minted from.
func (s Session) Identity() Identity {
	return Identity{
		UserID:    s.UserID,
		Name:      s.Name,
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
	}
}

// Expired reports whether the session has passed its absolute expiry.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
