package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AuthMode selects which single sign-on provider backs the OAuth login flow.
// Password login is always available regardless of mode.
type AuthMode string

const (
	// AuthModeOIDC uses a real OIDC identity provider for SSO.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeDev uses the local dev provider that short-circuits the OAuth
	// flow (for development only).
	AuthModeDev AuthMode = "dev"
	// AuthModePassword disables SSO entirely; only email/password login is
	// offered.
	AuthModePassword AuthMode = "password"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oidc", "dev", "password":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oidc, dev, password)", v)
	}
}

// OIDCConfig contains OIDC provider configuration.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"crewdeck"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:""`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// DevAuthConfig controls the dev auth identity. Used when AUTH_MODE=dev.
type DevAuthConfig struct {
	UserID string `env:"USER_ID" envDefault:"dev-user"`
	Name   string `env:"NAME"    envDefault:"Dev User"`
	Email  string `env:"EMAIL"   envDefault:"dev@example.com"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which SSO provider to use, if any.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oidc"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// DevAuth configuration (used when Mode=dev).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// SessionTTL is how long a minted session lives.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	// BcryptCost is the bcrypt work factor for password hashing.
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

// Sanitize clamps auth values to safe ranges.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL <= 0 {
		a.SessionTTL = 12 * time.Hour
	}
	if a.BcryptCost < bcrypt.MinCost || a.BcryptCost > bcrypt.MaxCost {
		a.BcryptCost = bcrypt.DefaultCost
	}
}
