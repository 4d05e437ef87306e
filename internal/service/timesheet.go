package service

import (
	"context"
	"errors"
	"time"

	"github.com/crewdeck/crewdeck/internal/core"
	"github.com/crewdeck/crewdeck/internal/domain/model"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
)

// TimesheetServiceOptions groups dependencies for TimesheetService.
type TimesheetServiceOptions struct {
	Entries core.TimeEntryRepository
	Jobs    core.JobRepository
	Now     func() time.Time // default time.Now
}

// TimesheetService orchestrates the clock-in/clock-out workflow. At most one
// entry per user is open at a time; the schema enforces it and ClockIn
// surfaces the violation as a conflict.
type TimesheetService struct {
	entries core.TimeEntryRepository
	jobs    core.JobRepository
	now     func() time.Time
}

// NewTimesheetService constructs a new TimesheetService.
func NewTimesheetService(opts TimesheetServiceOptions) (*TimesheetService, error) {
	if opts.Entries == nil {
		return nil, errors.New("time entry repository is required")
	}
	if opts.Jobs == nil {
		return nil, errors.New("job repository is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &TimesheetService{entries: opts.Entries, jobs: opts.Jobs, now: now}, nil
}

// ClockIn opens a time entry for the user against a job.
func (s *TimesheetService) ClockIn(ctx context.Context, userID string, req *model.ClockInRequest) (*model.TimeEntry, error) {
	if userID == "" {
		return nil, apperrors.Validation("user id is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	// Reject unknown jobs up front so the caller gets a not-found instead of
	// a foreign-key conflict.
	if _, err := s.jobs.GetByID(ctx, req.JobID); err != nil {
		return nil, err
	}
	return s.entries.ClockIn(ctx, userID, req)
}

// ClockOut closes the user's open entry, computing its duration. The closed
// entry moves to submitted, awaiting admin approval.
func (s *TimesheetService) ClockOut(ctx context.Context, userID string) (*model.TimeEntry, error) {
	open, err := s.entries.GetOpen(ctx, userID)
	if err != nil {
		return nil, err
	}
	end := s.now()
	hours, err := model.DurationBetween(open.StartTime, end)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	return s.entries.ClockOut(ctx, open.ID, end, hours)
}

// Current returns the user's open entry, or nil when clocked out.
func (s *TimesheetService) Current(ctx context.Context, userID string) (*model.TimeEntry, error) {
	open, err := s.entries.GetOpen(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return open, nil
}

// Approve signs off a submitted entry for payroll.
func (s *TimesheetService) Approve(ctx context.Context, id string) (*model.TimeEntry, error) {
	return s.entries.Approve(ctx, id)
}

// List returns a user's entries with their job columns, newest first.
func (s *TimesheetService) List(ctx context.Context, opts model.TimeEntriesListOptions) ([]*model.TimeEntryWithJob, error) {
	if opts.UserID == "" {
		return nil, apperrors.Validation("user id is required")
	}
	return s.entries.ListWithJob(ctx, opts)
}

// Today returns the user's entries for the current date.
func (s *TimesheetService) Today(ctx context.Context, userID string) ([]*model.TimeEntryWithJob, error) {
	n := s.now().UTC()
	day := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	return s.List(ctx, model.TimeEntriesListOptions{UserID: userID, From: &day, To: &day})
}

// Delete removes an entry.
func (s *TimesheetService) Delete(ctx context.Context, id string) error {
	return s.entries.Delete(ctx, id)
}
