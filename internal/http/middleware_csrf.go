package httpx

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultCSRFCookieName is the default name for the CSRF cookie.
	DefaultCSRFCookieName = "csrf_token"
	// DefaultCSRFHeaderName is the default name for the CSRF header (canonical form).
	DefaultCSRFHeaderName = "X-Csrf-Token"
	// DefaultCSRFTokenLength is the default length of the CSRF token in bytes.
	DefaultCSRFTokenLength = 32
	// DefaultCSRFCookieTTL is the default lifetime of the CSRF cookie.
	DefaultCSRFCookieTTL = 12 * time.Hour
)

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	// CookieName is the name of the CSRF cookie (default: "csrf_token")
	CookieName string
	// HeaderName is the name of the CSRF header to check (default: "X-Csrf-Token")
	HeaderName string
	// FormFieldName is the name of the form field to check (default: "csrf_token")
	FormFieldName string
	// CookieDomain is the domain for the CSRF cookie
	CookieDomain string
	// CookieTTL is the lifetime of the CSRF cookie (default: 12h)
	CookieTTL time.Duration
	// TokenLength is the length of the CSRF token in bytes (default: 32)
	TokenLength int
}

// csrfGuard enforces the double-submit cookie pattern: a random token lives
// in a cookie the frontend can read, and every state-changing request must
// echo it back in the X-Csrf-Token header or the csrf_token form field.
type csrfGuard struct {
	cfg CSRFConfig
}

// CSRFProtection returns a middleware enforcing double-submit CSRF checks on
// state-changing requests. GET, HEAD, OPTIONS, and TRACE pass through
// unchecked; they still receive a token cookie when the client has none yet.
func CSRFProtection(cfg CSRFConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCSRFCookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultCSRFHeaderName
	}
	if cfg.FormFieldName == "" {
		cfg.FormFieldName = DefaultCSRFCookieName
	}
	if cfg.CookieTTL <= 0 {
		cfg.CookieTTL = DefaultCSRFCookieTTL
	}
	if cfg.TokenLength == 0 {
		cfg.TokenLength = DefaultCSRFTokenLength
	}
	g := &csrfGuard{cfg: cfg}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := g.ensureToken(w, r)
			if !ok {
				http.Error(w, "unable to generate CSRF token", http.StatusInternalServerError)
				return
			}
			r = r.WithContext(setCSRFTokenInContext(r.Context(), token))

			if csrfExemptMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			if !g.tokenMatches(r, token) {
				http.Error(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ensureToken returns the request's token, minting one and setting the cookie
// when the client has none. The cookie is only written on a mint, so repeat
// visitors keep their token. A false return means random generation failed;
// the caller must fail closed.
func (g *csrfGuard) ensureToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	if c, err := r.Cookie(g.cfg.CookieName); err == nil && c.Value != "" {
		return c.Value, true
	}

	raw := make([]byte, g.cfg.TokenLength)
	if _, err := rand.Read(raw); err != nil {
		return "", false
	}
	token := hex.EncodeToString(raw)

	http.SetCookie(w, &http.Cookie{
		Name:   g.cfg.CookieName,
		Value:  token,
		Path:   "/",
		Domain: g.cfg.CookieDomain,
		// The frontend reads this cookie to echo the token in the header.
		HttpOnly: false,
		Secure:   r.TLS != nil || forwardedHTTPS(r),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(g.cfg.CookieTTL / time.Second),
	})
	return token, true
}

// tokenMatches reports whether the request carries a submitted token equal to
// the cookie token, in constant time. The header wins when present; the form
// field is consulted only for form-encoded bodies, so JSON requests cannot
// satisfy the check without the header.
func (g *csrfGuard) tokenMatches(r *http.Request, cookieToken string) bool {
	if cookieToken == "" {
		return false
	}
	submitted := g.submittedToken(r)
	if submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(cookieToken)) == 1
}

func (g *csrfGuard) submittedToken(r *http.Request) string {
	if h := r.Header.Get(g.cfg.HeaderName); h != "" {
		return h
	}
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return ""
		}
		return r.FormValue(g.cfg.FormFieldName)
	}
	return ""
}

// csrfExemptMethod reports whether the method is safe and skips validation.
func csrfExemptMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// forwardedHTTPS reports whether a proxy terminated TLS for this request,
// reading X-Forwarded-Proto and tolerating chained comma-separated values.
func forwardedHTTPS(r *http.Request) bool {
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}

// csrfTokenKey is an unexported context key type for CSRF token storage.
type csrfTokenKey struct{}

func setCSRFTokenInContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfTokenKey{}, token)
}

// GetCSRFToken retrieves the CSRF token from the request context so handlers
// can expose it to clients that cannot read the cookie directly.
func GetCSRFToken(r *http.Request) string {
	if token, ok := r.Context().Value(csrfTokenKey{}).(string); ok {
		return token
	}
	return ""
}
