package data

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crewdeck/crewdeck/internal/data/database"
	"github.com/crewdeck/crewdeck/internal/data/pgxutil"
	"github.com/crewdeck/crewdeck/internal/domain/model"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
)

const clientColumns = "id, name, email, phone, company, address, notes, created_at, updated_at"

// ClientRepo provides database operations for clients.
type ClientRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewClientRepo creates a ClientRepo with the real clock.
func NewClientRepo(db *sql.DB) *ClientRepo {
	return &ClientRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Create inserts a new client.
func (r *ClientRepo) Create(ctx context.Context, req *model.CreateClientRequest) (*model.Client, error) {
	if req == nil {
		return nil, apperrors.Validation("create client request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	var out model.Client
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO clients (id, name, email, phone, company, address, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+clientColumns,
			uuid.NewString(),
			strings.TrimSpace(req.Name),
			strings.TrimSpace(req.Email),
			strings.TrimSpace(req.Phone),
			strings.TrimSpace(req.Company),
			strings.TrimSpace(req.Address),
			req.Notes,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Client])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves a client by ID.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*model.Client, error) {
	var out model.Client
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Client])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// ClientsListOptions controls filtering when listing clients.
type ClientsListOptions struct {
	Q      *string // substring match on name or company
	Limit  int
	Offset int
}

// List retrieves clients alphabetically with optional name/company search.
func (r *ClientRepo) List(ctx context.Context, opts ClientsListOptions) ([]*model.Client, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	qopts := []database.ListQueryOption{
		database.WithColumns(strings.Split(clientColumns, ", ")...),
		database.WithOrderBy("name", "asc"),
		database.WithLimit(limit),
		database.WithOffset(max(opts.Offset, 0)),
	}
	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		pattern := "%" + strings.TrimSpace(*opts.Q) + "%"
		qopts = append(qopts, database.WithCondition(
			database.WhereRawCond("name ILIKE $1 OR company ILIKE $1", pattern)))
	}
	query, args := database.BuildListQuery(database.NewListQueryOptions("clients", qopts...))

	var rowsOut []model.Client
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Client])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", apperrors.MapDBError(err))
	}

	res := make([]*model.Client, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update applies the set fields of req to a client.
func (r *ClientRepo) Update(ctx context.Context, id string, req model.UpdateClientRequest) (*model.Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Client
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		setClause, args := r.buildUpdateClause(req)
		var query string
		if setClause == "" {
			query = `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
			args = []any{id}
		} else {
			args = append(args, id)
			query = "UPDATE clients SET " + setClause +
				" WHERE id = $" + strconv.Itoa(len(args)) +
				" RETURNING " + clientColumns
		}
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Client])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

func (r *ClientRepo) buildUpdateClause(req model.UpdateClientRequest) (string, []any) {
	setParts := make([]string, 0, 7)
	args := make([]any, 0, 7)
	add := func(column string, value any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if req.Name != nil {
		add("name", strings.TrimSpace(*req.Name))
	}
	if req.Email != nil {
		add("email", strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		add("phone", strings.TrimSpace(*req.Phone))
	}
	if req.Company != nil {
		add("company", strings.TrimSpace(*req.Company))
	}
	if req.Address != nil {
		add("address", strings.TrimSpace(*req.Address))
	}
	if req.Notes != nil {
		add("notes", *req.Notes)
	}
	if len(setParts) == 0 {
		return "", nil
	}
	add("updated_at", r.timeProvider.Now().UTC())
	return strings.Join(setParts, ", "), args
}

// Delete removes a client row. Jobs referencing the client block the delete
// through the foreign key.
func (r *ClientRepo) Delete(ctx context.Context, id string) error {
	var affected int64
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	}); err != nil {
		return apperrors.MapDBError(err)
	}
	if affected == 0 {
		return apperrors.NotFoundf("client %s not found", id)
	}
	return nil
}
