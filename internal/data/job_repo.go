package data

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crewdeck/crewdeck/internal/data/database"
	"github.com/crewdeck/crewdeck/internal/data/pgxutil"
	"github.com/crewdeck/crewdeck/internal/domain/model"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
)

const jobColumns = "id, job_number, title, description, status, priority, start_date, due_date, estimated_hours, location, client_id, created_at, updated_at"

// JobRepo provides database operations for jobs.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewJobRepo creates a JobRepo with the real clock.
func NewJobRepo(db *sql.DB) *JobRepo {
	return &JobRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewJobRepoWithTimeProvider creates a JobRepo with a custom clock.
func NewJobRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *JobRepo {
	return &JobRepo{DB: db, timeProvider: tp}
}

// Create inserts a new job.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, apperrors.Validation("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	var out model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO jobs (
				id, job_number, title, description, status, priority,
				start_date, due_date, estimated_hours, location, client_id, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING `+jobColumns,
			uuid.NewString(),
			strings.TrimSpace(req.JobNumber),
			strings.TrimSpace(req.Title),
			req.Description,
			req.Status,
			req.Priority,
			req.StartDate,
			req.DueDate,
			req.EstimatedHours,
			req.Location,
			req.ClientID,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves a job by ID.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	var out model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// List retrieves jobs with the filters, sorting, and pagination the
// dashboard's job table exposes.
func (r *JobRepo) List(ctx context.Context, opts model.JobsListOptions) ([]*model.Job, error) {
	query, args := database.BuildListQuery(r.buildJobQueryOptions(opts, false))

	var rowsOut []model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Job])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", apperrors.MapDBError(err))
	}

	res := make([]*model.Job, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Count returns the number of jobs matching the same filters as List.
func (r *JobRepo) Count(ctx context.Context, opts model.JobsListOptions) (int64, error) {
	query, args := database.BuildListQuery(r.buildJobQueryOptions(opts, true))

	var count int64
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, query, args...).Scan(&count)
	}); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", apperrors.MapDBError(err))
	}
	return count, nil
}

var jobSortColumns = map[string]string{
	"created_at": "created_at",
	"job_number": "job_number",
	"due_date":   "due_date",
}

func (r *JobRepo) buildJobQueryOptions(opts model.JobsListOptions, countOnly bool) *database.ListQueryOptions {
	qopts := []database.ListQueryOption{
		database.WithColumns(strings.Split(jobColumns, ", ")...),
	}
	if countOnly {
		qopts = append(qopts, database.WithCountOnly())
	} else {
		limit := opts.Limit
		if limit <= 0 {
			limit = 50
		}
		sort, ok := jobSortColumns[opts.Sort]
		if !ok {
			sort = "created_at"
		}
		dir := strings.ToLower(opts.Dir)
		if dir != "asc" && dir != "desc" {
			dir = "desc"
		}
		qopts = append(qopts,
			database.WithOrderBy(sort, dir),
			database.WithLimit(limit),
			database.WithOffset(max(opts.Offset, 0)),
		)
	}

	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		pattern := "%" + strings.TrimSpace(*opts.Q) + "%"
		qopts = append(qopts, database.WithCondition(
			database.WhereRawCond("job_number ILIKE $1 OR title ILIKE $1", pattern)))
	}
	if opts.Status != nil {
		qopts = append(qopts, database.WithCondition(
			database.WhereCond("status", database.Equal, *opts.Status)))
	}
	if opts.Priority != nil {
		qopts = append(qopts, database.WithCondition(
			database.WhereCond("priority", database.Equal, *opts.Priority)))
	}
	if opts.ClientID != nil {
		qopts = append(qopts, database.WithCondition(
			database.WhereCond("client_id", database.Equal, *opts.ClientID)))
	}
	if opts.DueOn != nil {
		d := opts.DueOn.UTC()
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		qopts = append(qopts, database.WithCondition(
			database.WhereRawCond("start_date = $1 OR due_date = $1", day)))
	}

	return database.NewListQueryOptions("jobs", qopts...)
}

// Update applies the set fields of req to a job.
func (r *JobRepo) Update(ctx context.Context, id string, req model.UpdateJobRequest) (*model.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		setClause, args := r.buildUpdateClause(req)
		var query string
		if setClause == "" {
			query = `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
			args = []any{id}
		} else {
			args = append(args, id)
			query = "UPDATE jobs SET " + setClause +
				" WHERE id = $" + strconv.Itoa(len(args)) +
				" RETURNING " + jobColumns
		}
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

func (r *JobRepo) buildUpdateClause(req model.UpdateJobRequest) (string, []any) {
	setParts := make([]string, 0, 10)
	args := make([]any, 0, 10)
	add := func(column string, value any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if req.Title != nil {
		add("title", strings.TrimSpace(*req.Title))
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.Status != nil {
		add("status", *req.Status)
	}
	if req.Priority != nil {
		add("priority", *req.Priority)
	}
	if req.StartDate != nil {
		add("start_date", *req.StartDate)
	}
	if req.DueDate != nil {
		add("due_date", *req.DueDate)
	}
	if req.EstimatedHours != nil {
		add("estimated_hours", *req.EstimatedHours)
	}
	if req.Location != nil {
		add("location", *req.Location)
	}
	if req.ClientID != nil {
		add("client_id", *req.ClientID)
	}
	if len(setParts) == 0 {
		return "", nil
	}
	add("updated_at", r.timeProvider.Now().UTC())
	return strings.Join(setParts, ", "), args
}

// Delete removes a job row. Attached time entries block the delete through
// the foreign key; the mapped ForeignKey error explains that to the caller.
func (r *JobRepo) Delete(ctx context.Context, id string) error {
	var affected int64
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	}); err != nil {
		return apperrors.MapDBError(err)
	}
	if affected == 0 {
		return apperrors.NotFoundf("job %s not found", id)
	}
	return nil
}
