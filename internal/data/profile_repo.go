// Package data implements the PostgreSQL repositories. Repositories return
// errors already mapped through the application error taxonomy
// (apperrors.MapDBError), so callers can branch on error codes instead of
// driver internals.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crewdeck/crewdeck/internal/data/database"
	"github.com/crewdeck/crewdeck/internal/data/pgxutil"
	"github.com/crewdeck/crewdeck/internal/domain/auth"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
	"github.com/crewdeck/crewdeck/internal/ports"
)

const profileColumns = "id, name, email, employer_email, role, approved_by_admin, created_at, updated_at"

// ProfileRepo provides database operations for profiles. Its FetchByID
// satisfies ports.ProfileStore.
type ProfileRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewProfileRepo creates a ProfileRepo with the real clock.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewProfileRepoWithTimeProvider creates a ProfileRepo with a custom clock.
func NewProfileRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: tp}
}

// CreateProfileParams carries inputs for inserting a profile row.
type CreateProfileParams struct {
	ID            string // generated when empty
	Name          string
	Email         string
	EmployerEmail *string
	Role          auth.Role
	Approved      bool
}

// Create inserts a new profile. New accounts default to the employee role,
// unapproved.
func (r *ProfileRepo) Create(ctx context.Context, params CreateProfileParams) (*auth.Profile, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, apperrors.ValidationField("name", "name is required")
	}
	if strings.TrimSpace(params.Email) == "" {
		return nil, apperrors.ValidationField("email", "email is required")
	}
	if params.ID == "" {
		params.ID = uuid.NewString()
	}
	if params.Role == "" {
		params.Role = auth.RoleEmployee
	}
	if !params.Role.Valid() {
		return nil, apperrors.ValidationField("role", "unknown role")
	}

	now := r.timeProvider.Now().UTC()
	var out auth.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO profiles (id, name, email, employer_email, role, approved_by_admin, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+profileColumns,
			params.ID,
			strings.TrimSpace(params.Name),
			strings.ToLower(strings.TrimSpace(params.Email)),
			params.EmployerEmail,
			params.Role,
			params.Approved,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[auth.Profile])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// FetchByID resolves a user identifier to exactly one profile. Zero rows
// yield ports.ErrProfileNotFound so callers can tell "no profile yet" from a
// transient failure; the schema's primary key guarantees at most one row.
func (r *ProfileRepo) FetchByID(ctx context.Context, id string) (auth.Profile, error) {
	var out auth.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[auth.Profile])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Profile{}, fmt.Errorf("profile %s: %w", id, ports.ErrProfileNotFound)
		}
		return auth.Profile{}, apperrors.MapDBError(err)
	}
	return out, nil
}

// GetByEmail retrieves a profile by email.
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*auth.Profile, error) {
	var out auth.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+profileColumns+` FROM profiles WHERE email = $1`,
			strings.ToLower(strings.TrimSpace(email)))
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[auth.Profile])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// ProfilesListOptions controls filtering when listing profiles.
type ProfilesListOptions struct {
	Approved *bool
	Role     *auth.Role
	Limit    int
	Offset   int
}

// List retrieves profiles, oldest first, with optional approval and role
// filters. The admin staff view uses Approved=false to show the pending
// queue.
func (r *ProfileRepo) List(ctx context.Context, opts ProfilesListOptions) ([]*auth.Profile, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	qopts := []database.ListQueryOption{
		database.WithColumns(strings.Split(profileColumns, ", ")...),
		database.WithOrderBy("created_at", "asc"),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}
	if opts.Approved != nil {
		qopts = append(qopts, database.WithCondition(
			database.WhereCond("approved_by_admin", database.Equal, *opts.Approved)))
	}
	if opts.Role != nil {
		qopts = append(qopts, database.WithCondition(
			database.WhereCond("role", database.Equal, *opts.Role)))
	}
	query, args := database.BuildListQuery(database.NewListQueryOptions("profiles", qopts...))

	var rowsOut []auth.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[auth.Profile])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", apperrors.MapDBError(err))
	}

	res := make([]*auth.Profile, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// SetApproval flips the approval flag on a profile.
func (r *ProfileRepo) SetApproval(ctx context.Context, id string, approved bool) (*auth.Profile, error) {
	return r.updateRow(ctx, `
		UPDATE profiles SET approved_by_admin = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+profileColumns, id, approved)
}

// SetRole changes a profile's role.
func (r *ProfileRepo) SetRole(ctx context.Context, id string, role auth.Role) (*auth.Profile, error) {
	if !role.Valid() {
		return nil, apperrors.ValidationField("role", "unknown role")
	}
	return r.updateRow(ctx, `
		UPDATE profiles SET role = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+profileColumns, id, role)
}

func (r *ProfileRepo) updateRow(ctx context.Context, query, id string, value any) (*auth.Profile, error) {
	var out auth.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, id, value, r.timeProvider.Now().UTC())
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[auth.Profile])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Delete removes a profile row. Credentials cascade with it.
func (r *ProfileRepo) Delete(ctx context.Context, id string) error {
	var tag int64
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		tag = ct.RowsAffected()
		return nil
	}); err != nil {
		return apperrors.MapDBError(err)
	}
	if tag == 0 {
		return apperrors.NotFoundf("profile %s not found", id)
	}
	return nil
}
