package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/crewdeck/crewdeck/internal/data/pgxutil"
	"github.com/crewdeck/crewdeck/internal/domain/model"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
)

const timeEntryColumns = "id, user_id, job_id, date, start_time, end_time, duration_hours, status, created_at"

// TimeEntryRepo provides database operations for time entries.
type TimeEntryRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewTimeEntryRepo creates a TimeEntryRepo with the real clock.
func NewTimeEntryRepo(db *sql.DB) *TimeEntryRepo {
	return &TimeEntryRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewTimeEntryRepoWithTimeProvider creates a TimeEntryRepo with a custom clock.
func NewTimeEntryRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *TimeEntryRepo {
	return &TimeEntryRepo{DB: db, timeProvider: tp}
}

// ClockIn opens a new entry for the user against a job. A partial unique
// index allows at most one open entry per user; a second clock-in surfaces
// as a Conflict error.
func (r *TimeEntryRepo) ClockIn(ctx context.Context, userID string, req *model.ClockInRequest) (*model.TimeEntry, error) {
	if req == nil {
		return nil, apperrors.Validation("clock-in request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	date := req.Date
	if date.IsZero() {
		date = now
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var out model.TimeEntry
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO time_entries (id, user_id, job_id, date, start_time, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+timeEntryColumns,
			uuid.NewString(),
			userID,
			strings.TrimSpace(req.JobID),
			date,
			now,
			model.TimeEntryStatusOpen,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.TimeEntry])
		return err
	}); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, apperrors.Conflict("you already have an open time entry; clock out first")
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetOpen returns the user's currently open entry, or NotFound.
func (r *TimeEntryRepo) GetOpen(ctx context.Context, userID string) (*model.TimeEntry, error) {
	var out model.TimeEntry
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+timeEntryColumns+` FROM time_entries WHERE user_id = $1 AND end_time IS NULL`,
			userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.TimeEntry])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("no open time entry")
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// ClockOut closes the entry: end time and duration are recorded and the
// entry moves to the submitted state for admin review. Only open entries can
// be closed.
func (r *TimeEntryRepo) ClockOut(ctx context.Context, id string, endTime time.Time, durationHours float64) (*model.TimeEntry, error) {
	var out model.TimeEntry
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE time_entries
			SET end_time = $2, duration_hours = $3, status = $4
			WHERE id = $1 AND end_time IS NULL
			RETURNING `+timeEntryColumns,
			id, endTime.UTC(), durationHours, model.TimeEntryStatusSubmitted)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.TimeEntry])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("open time entry %s not found", id)
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Approve marks a submitted entry as approved for payroll.
func (r *TimeEntryRepo) Approve(ctx context.Context, id string) (*model.TimeEntry, error) {
	var out model.TimeEntry
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE time_entries
			SET status = $2
			WHERE id = $1 AND status = $3
			RETURNING `+timeEntryColumns,
			id, model.TimeEntryStatusApproved, model.TimeEntryStatusSubmitted)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.TimeEntry])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("submitted time entry %s not found", id)
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// ListWithJob retrieves a user's entries joined with the job number and
// title the timesheet table renders, newest first.
func (r *TimeEntryRepo) ListWithJob(ctx context.Context, opts model.TimeEntriesListOptions) ([]*model.TimeEntryWithJob, error) {
	if strings.TrimSpace(opts.UserID) == "" {
		return nil, apperrors.Validation("user_id is required")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	conditions := []string{"t.user_id = $1"}
	args := []any{opts.UserID}
	next := func() int { return len(args) + 1 }

	if opts.From != nil {
		conditions = append(conditions, fmt.Sprintf("t.date >= $%d", next()))
		args = append(args, dateOnly(*opts.From))
	}
	if opts.To != nil {
		conditions = append(conditions, fmt.Sprintf("t.date <= $%d", next()))
		args = append(args, dateOnly(*opts.To))
	}
	if opts.Status != nil {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", next()))
		args = append(args, *opts.Status)
	}

	query := `
		SELECT t.id, t.user_id, t.job_id, t.date, t.start_time, t.end_time,
		       t.duration_hours, t.status, t.created_at,
		       j.job_number, j.title AS job_title
		FROM time_entries t
		JOIN jobs j ON j.id = t.job_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY t.start_time DESC
		LIMIT $` + fmt.Sprint(next())
	args = append(args, limit)
	query += ` OFFSET $` + fmt.Sprint(next())
	args = append(args, max(opts.Offset, 0))

	var rowsOut []model.TimeEntryWithJob
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.TimeEntryWithJob])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", apperrors.MapDBError(err))
	}

	res := make([]*model.TimeEntryWithJob, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// WeeklyEntries returns the user's approved entries in [weekStart, weekEnd]
// flattened for reporting, oldest first.
func (r *TimeEntryRepo) WeeklyEntries(ctx context.Context, userID string, weekStart, weekEnd time.Time) ([]model.ReportEntry, error) {
	query := `
		SELECT t.date, COALESCE(t.duration_hours, 0) AS hours, j.job_number, j.title AS job_title
		FROM time_entries t
		JOIN jobs j ON j.id = t.job_id
		WHERE t.user_id = $1 AND t.status = $2 AND t.date BETWEEN $3 AND $4
		ORDER BY t.date ASC, t.start_time ASC`

	var rowsOut []model.ReportEntry
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query,
			userID, model.TimeEntryStatusApproved, dateOnly(weekStart), dateOnly(weekEnd))
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.ReportEntry])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to load weekly entries: %w", apperrors.MapDBError(err))
	}
	return rowsOut, nil
}

// Delete removes an entry. Employees may delete only their own open or
// submitted entries; that policy lives in the service layer.
func (r *TimeEntryRepo) Delete(ctx context.Context, id string) error {
	var affected int64
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM time_entries WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	}); err != nil {
		return apperrors.MapDBError(err)
	}
	if affected == 0 {
		return apperrors.NotFoundf("time entry %s not found", id)
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
