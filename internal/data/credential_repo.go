package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/crewdeck/crewdeck/internal/data/pgxutil"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
)

// Credential is a stored password hash for a local account.
type Credential struct {
	UserID       string `db:"user_id"`
	PasswordHash []byte `db:"password_hash"`
}

// CredentialRepo stores password hashes for local (non-OIDC) accounts.
type CredentialRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCredentialRepo creates a CredentialRepo.
func NewCredentialRepo(db *sql.DB) *CredentialRepo {
	return &CredentialRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Upsert stores the password hash for a user, replacing any previous one.
func (r *CredentialRepo) Upsert(ctx context.Context, userID string, passwordHash []byte) error {
	now := r.timeProvider.Now().UTC()
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO credentials (user_id, password_hash, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO UPDATE
			SET password_hash = EXCLUDED.password_hash, updated_at = $3`,
			userID, passwordHash, now)
		return err
	}); err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// GetByEmail looks up the credential for the account registered under email.
func (r *CredentialRepo) GetByEmail(ctx context.Context, email string) (*Credential, error) {
	var out Credential
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT c.user_id, c.password_hash
			FROM credentials c
			JOIN profiles p ON p.id = c.user_id
			WHERE p.email = $1`, email)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[Credential])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("account not found")
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}
