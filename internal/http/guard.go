package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/crewdeck/crewdeck/internal/session"
)

// GuardMiddleware turns session guard decisions into HTTP responses. Each
// request with a session cookie acquires the session's tracker from the
// registry and evaluates the route's guard against its current snapshot.
type GuardMiddleware struct {
	registry *session.Registry
	logger   *slog.Logger
}

// NewGuardMiddleware creates a guard middleware over the given registry.
func NewGuardMiddleware(registry *session.Registry, logger *slog.Logger) (*GuardMiddleware, error) {
	if registry == nil {
		return nil, errors.New("session registry is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GuardMiddleware{registry: registry, logger: logger}, nil
}

// Protect wraps a handler with the given guard. Denials are browser-aware:
// API requests get JSON errors, browser requests get redirects. While the
// session state is still resolving, the request is answered with 503 and a
// Retry-After hint rather than a premature denial.
func (m *GuardMiddleware) Protect(g session.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := m.stateForRequest(r)
			decision := g.Evaluate(state)

			switch decision.Kind {
			case session.DecisionAllowed:
				ctx := SetStateInContext(r.Context(), state)
				if cookie, err := r.Cookie(sessionCookieName); err == nil {
					ctx = SetSessionIDInContext(ctx, cookie.Value)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
			case session.DecisionResolving:
				m.writeResolving(w, r)
			case session.DecisionDenied:
				m.writeDenial(w, r, decision.Reason)
			}
		})
	}
}

// Populate resolves the session state into the request context without
// rendering any access decision. Used by endpoints that report auth status
// rather than require it.
func (m *GuardMiddleware) Populate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := SetStateInContext(r.Context(), m.stateForRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// stateForRequest resolves the session state for the request. No cookie means
// a definitively signed-out state; a cookie means whatever the tracker has
// resolved so far.
func (m *GuardMiddleware) stateForRequest(r *http.Request) session.State {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return session.State{}
	}

	tracker, err := m.registry.Acquire(r.Context(), cookie.Value)
	if err != nil {
		m.logger.WarnContext(r.Context(), "acquiring session tracker failed",
			slog.String("error", err.Error()))
		return session.State{}
	}
	return tracker.Snapshot()
}

func (m *GuardMiddleware) writeResolving(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "1")
	if IsBrowserRequest(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(resolvingPage))
		return
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusServiceUnavailable,
		ErrCode: "session_resolving",
		Err:     errors.New("session state is still being established"),
	})
}

func (m *GuardMiddleware) writeDenial(w http.ResponseWriter, r *http.Request, reason session.DenyReason) {
	browser := IsBrowserRequest(r)

	switch reason {
	case session.DenyNoSession:
		if browser {
			redirectToLogin(w, r)
			return
		}
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
	case session.DenyNotApproved:
		if browser {
			http.Redirect(w, r, "/pending-approval", http.StatusSeeOther)
			return
		}
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: "approval_required",
			Err:     errors.New("account is pending admin approval"),
		})
	case session.DenyNotAdmin:
		if browser {
			http.Redirect(w, r, "/app", http.StatusSeeOther)
			return
		}
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: "insufficient_permissions",
			Err:     errors.New("insufficient permissions"),
		})
	default:
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: "access_denied",
			Err:     errors.New("access denied"),
		})
	}
}

// resolvingPage is served to browsers while the initial session resolution is
// in flight. It retries on the client's behalf instead of flashing a denial.
const resolvingPage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><meta http-equiv="refresh" content="1"><title>Signing in…</title></head>
<body><p>Checking your session…</p></body>
</html>
`
