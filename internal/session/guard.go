package session

// DecisionKind classifies the outcome of a guard evaluation.
type DecisionKind int

const (
	// DecisionResolving means session state is still being established and
	// no access decision can be rendered yet.
	DecisionResolving DecisionKind = iota
	// DecisionDenied means access is refused; Decision.Reason says why.
	DecisionDenied
	// DecisionAllowed means the protected content may be served unmodified.
	DecisionAllowed
)

// DenyReason identifies which requirement a denied request failed.
type DenyReason string

const (
	// DenyNoSession: no authenticated identity.
	DenyNoSession DenyReason = "no-session"
	// DenyNotApproved: authenticated but the profile lacks admin approval.
	DenyNotApproved DenyReason = "not-approved"
	// DenyNotAdmin: authenticated but the profile lacks the admin role.
	DenyNotAdmin DenyReason = "not-admin"
)

// Decision is the result of evaluating a Guard against a State.
type Decision struct {
	Kind   DecisionKind
	Reason DenyReason // set only when Kind is DecisionDenied
}

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool { return d.Kind == DecisionAllowed }

// Guard gates access to a protected view. Both requirements default to off;
// RequireAdmin does not imply RequireApproval. Callers that want an
// admin-and-approved gate set both flags.
type Guard struct {
	RequireApproval bool
	RequireAdmin    bool
}

// Evaluate renders an access decision for the given state. Checks run in
// fixed priority order: resolving, then authentication, then approval, then
// role, so the caller always redirects for the most fundamental missing
// requirement first.
func (g Guard) Evaluate(s State) Decision {
	switch {
	case s.Resolving:
		return Decision{Kind: DecisionResolving}
	case !s.IsAuthenticated():
		return Decision{Kind: DecisionDenied, Reason: DenyNoSession}
	case g.RequireApproval && !s.IsApproved():
		return Decision{Kind: DecisionDenied, Reason: DenyNotApproved}
	case g.RequireAdmin && !s.IsAdmin():
		return Decision{Kind: DecisionDenied, Reason: DenyNotAdmin}
	default:
		return Decision{Kind: DecisionAllowed}
	}
}
