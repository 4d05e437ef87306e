package httpx

import (
	"context"

	"github.com/crewdeck/crewdeck/internal/session"
)

type stateKey struct{}

type sessionIDKey struct{}

// SetStateInContext stores the resolved session state in the context.
func SetStateInContext(ctx context.Context, s session.State) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

// GetStateFromContext retrieves the session state placed by the guard
// middleware. The second return is false on unguarded routes.
func GetStateFromContext(ctx context.Context) (session.State, bool) {
	s, ok := ctx.Value(stateKey{}).(session.State)
	return s, ok
}

// SetSessionIDInContext stores the session cookie value in the context.
func SetSessionIDInContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// GetSessionIDFromContext retrieves the session cookie value, if any.
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey{}).(string)
	return id, ok
}
