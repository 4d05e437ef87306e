package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/crewdeck/crewdeck/internal/core"
	"github.com/crewdeck/crewdeck/internal/data"
	domainauth "github.com/crewdeck/crewdeck/internal/domain/auth"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
	"github.com/crewdeck/crewdeck/internal/ports"
)

const minPasswordLen = 8

// LocalAuthenticatorOptions groups dependencies for LocalAuthenticator.
type LocalAuthenticatorOptions struct {
	Profiles    core.ProfileRepository
	Credentials core.CredentialRepository
	SessionTTL  time.Duration // default 12h when zero
	BcryptCost  int           // default bcrypt.DefaultCost when zero
}

// LocalAuthenticator implements ports.PasswordAuthenticator over the profile
// and credential repositories. New accounts start as unapproved employees;
// an admin approves them before the account can sign in.
type LocalAuthenticator struct {
	profiles    core.ProfileRepository
	credentials core.CredentialRepository
	sessionTTL  time.Duration
	bcryptCost  int
}

var _ ports.PasswordAuthenticator = (*LocalAuthenticator)(nil)

// NewLocalAuthenticator constructs a LocalAuthenticator.
func NewLocalAuthenticator(opts LocalAuthenticatorOptions) (*LocalAuthenticator, error) {
	if opts.Profiles == nil {
		return nil, fmt.Errorf("profile repository is required")
	}
	if opts.Credentials == nil {
		return nil, fmt.Errorf("credential repository is required")
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &LocalAuthenticator{
		profiles:    opts.Profiles,
		credentials: opts.Credentials,
		sessionTTL:  ttl,
		bcryptCost:  cost,
	}, nil
}

// Register creates an unapproved employee profile with a password credential
// and returns its identity. The identity itself does not grant access; the
// guard denies unapproved accounts until an admin approves the profile.
func (a *LocalAuthenticator) Register(ctx context.Context, in ports.RegisterInput) (domainauth.Identity, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domainauth.Identity{}, apperrors.ValidationField("name", "name is required")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return domainauth.Identity{}, apperrors.ValidationField("email", "email is required")
	}
	if len(in.Password) < minPasswordLen {
		return domainauth.Identity{}, apperrors.ValidationField("password",
			fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.bcryptCost)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	params := data.CreateProfileParams{
		Name:  strings.TrimSpace(in.Name),
		Email: email,
		Role:  domainauth.RoleEmployee,
	}
	if e := strings.TrimSpace(in.EmployerEmail); e != "" {
		params.EmployerEmail = &e
	}
	profile, err := a.profiles.Create(ctx, params)
	if err != nil {
		return domainauth.Identity{}, err
	}

	if err := a.credentials.Upsert(ctx, profile.ID, hash); err != nil {
		return domainauth.Identity{}, fmt.Errorf("store credential: %w", err)
	}

	return a.identityFor(profile), nil
}

// Authenticate verifies the email/password pair. Invalid credentials return
// an unauthorized error; valid credentials on an unapproved account return a
// distinct forbidden error so the UI can point at the approval queue.
func (a *LocalAuthenticator) Authenticate(ctx context.Context, email, password string) (domainauth.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domainauth.Identity{}, apperrors.Unauthorized("invalid email or password")
	}

	cred, err := a.credentials.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return domainauth.Identity{}, apperrors.Unauthorized("invalid email or password")
		}
		return domainauth.Identity{}, err
	}
	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)); err != nil {
		return domainauth.Identity{}, apperrors.Unauthorized("invalid email or password")
	}

	profile, err := a.profiles.GetByEmail(ctx, email)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("load profile: %w", err)
	}
	if !profile.ApprovedByAdmin {
		return domainauth.Identity{}, apperrors.Forbidden("account is pending admin approval")
	}

	return a.identityFor(profile), nil
}

func (a *LocalAuthenticator) identityFor(p *domainauth.Profile) domainauth.Identity {
	return domainauth.Identity{
		UserID:    p.ID,
		Name:      p.Name,
		Email:     p.Email,
		ExpiresAt: time.Now().Add(a.sessionTTL),
	}
}
