package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crewdeck/crewdeck/internal/domain/auth"
)

func identity(userID string) *auth.Identity {
	return &auth.Identity{UserID: userID, Email: userID + "@example.com"}
}

func profile(role auth.Role, approved bool) *auth.Profile {
	return &auth.Profile{ID: "u1", Role: role, ApprovedByAdmin: approved}
}

func TestState_PredicatesFailClosed(t *testing.T) {
	tests := []struct {
		name          string
		state         State
		authenticated bool
		approved      bool
		admin         bool
	}{
		{
			name:  "signed out",
			state: State{},
		},
		{
			name:          "identity without profile",
			state:         State{Identity: identity("u1")},
			authenticated: true,
		},
		{
			name:          "unapproved admin",
			state:         State{Identity: identity("u1"), Profile: profile(auth.RoleAdmin, false)},
			authenticated: true,
			admin:         true,
		},
		{
			name:          "approved employee",
			state:         State{Identity: identity("u1"), Profile: profile(auth.RoleEmployee, true)},
			authenticated: true,
			approved:      true,
		},
		{
			name:          "approved admin",
			state:         State{Identity: identity("u1"), Profile: profile(auth.RoleAdmin, true)},
			authenticated: true,
			approved:      true,
			admin:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.authenticated, tt.state.IsAuthenticated())
			require.Equal(t, tt.approved, tt.state.IsApproved())
			require.Equal(t, tt.admin, tt.state.IsAdmin())
		})
	}
}

func TestGuard_Evaluate(t *testing.T) {
	signedOut := State{}
	resolving := State{Resolving: true}
	unapproved := State{Identity: identity("u1"), Profile: profile(auth.RoleEmployee, false)}
	approved := State{Identity: identity("u1"), Profile: profile(auth.RoleEmployee, true)}
	admin := State{Identity: identity("u1"), Profile: profile(auth.RoleAdmin, true)}

	tests := []struct {
		name  string
		guard Guard
		state State
		want  Decision
	}{
		{
			name:  "resolving wins over everything",
			guard: Guard{RequireApproval: true, RequireAdmin: true},
			state: resolving,
			want:  Decision{Kind: DecisionResolving},
		},
		{
			name:  "no requirements allows signed out",
			state: signedOut,
			want:  Decision{Kind: DecisionAllowed},
		},
		{
			name:  "approval requirement denies signed out",
			guard: Guard{RequireApproval: true},
			state: signedOut,
			want:  Decision{Kind: DecisionDenied, Reason: DenyNoSession},
		},
		{
			name:  "unapproved employee denied approval",
			guard: Guard{RequireApproval: true},
			state: unapproved,
			want:  Decision{Kind: DecisionDenied, Reason: DenyNotApproved},
		},
		{
			name:  "approved employee allowed",
			guard: Guard{RequireApproval: true},
			state: approved,
			want:  Decision{Kind: DecisionAllowed},
		},
		{
			name:  "approved employee denied admin",
			guard: Guard{RequireApproval: true, RequireAdmin: true},
			state: approved,
			want:  Decision{Kind: DecisionDenied, Reason: DenyNotAdmin},
		},
		{
			name:  "approved admin allowed",
			guard: Guard{RequireApproval: true, RequireAdmin: true},
			state: admin,
			want:  Decision{Kind: DecisionAllowed},
		},
		{
			name:  "admin-only guard skips approval check",
			guard: Guard{RequireAdmin: true},
			state: State{Identity: identity("u1"), Profile: profile(auth.RoleAdmin, false)},
			want:  Decision{Kind: DecisionAllowed},
		},
		{
			name:  "missing profile fails closed",
			guard: Guard{RequireApproval: true},
			state: State{Identity: identity("u1")},
			want:  Decision{Kind: DecisionDenied, Reason: DenyNotApproved},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.guard.Evaluate(tt.state))
		})
	}
}

func TestDecision_Allowed(t *testing.T) {
	require.True(t, Decision{Kind: DecisionAllowed}.Allowed())
	require.False(t, Decision{Kind: DecisionDenied, Reason: DenyNoSession}.Allowed())
	require.False(t, Decision{Kind: DecisionResolving}.Allowed())
}
