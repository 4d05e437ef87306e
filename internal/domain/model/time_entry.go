package model

import (
	"errors"
	"strings"
	"time"
)

// TimeEntryStatus tracks a time entry through the approval workflow.
type TimeEntryStatus string

const (
	// TimeEntryStatusOpen is a running entry (clocked in, not yet out).
	TimeEntryStatusOpen TimeEntryStatus = "open"
	// TimeEntryStatusSubmitted is a closed entry awaiting admin approval.
	TimeEntryStatusSubmitted TimeEntryStatus = "submitted"
	// TimeEntryStatusApproved is an entry an admin has signed off for payroll.
	TimeEntryStatusApproved TimeEntryStatus = "approved"
)

// Valid reports whether the time entry status is supported.
func (s TimeEntryStatus) Valid() bool {
	switch s {
	case TimeEntryStatusOpen, TimeEntryStatusSubmitted, TimeEntryStatusApproved:
		return true
	default:
		return false
	}
}

// TimeEntry records a clock-in/clock-out pair for one user against one job.
// EndTime and DurationHours are nil while the entry is open.
type TimeEntry struct {
	ID            string          `json:"id"                       db:"id"`
	UserID        string          `json:"user_id"                  db:"user_id"`
	JobID         string          `json:"job_id"                   db:"job_id"`
	Date          time.Time       `json:"date"                     db:"date"`
	StartTime     time.Time       `json:"start_time"               db:"start_time"`
	EndTime       *time.Time      `json:"end_time,omitempty"       db:"end_time"`
	DurationHours *float64        `json:"duration_hours,omitempty" db:"duration_hours"`
	Status        TimeEntryStatus `json:"status"                   db:"status"`
	CreatedAt     time.Time       `json:"created_at"               db:"created_at"`
}

// Open reports whether the entry is still running.
func (e TimeEntry) Open() bool { return e.EndTime == nil }

// DurationBetween computes fractional hours between start and end, rounded to
// two decimal places to match the stored precision.
func DurationBetween(start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, errors.New("end time cannot be before start time")
	}
	hours := end.Sub(start).Hours()
	return float64(int(hours*100+0.5)) / 100, nil
}

// ClockInRequest represents parameters to start a time entry.
type ClockInRequest struct {
	JobID string    `json:"job_id"`
	Date  time.Time `json:"date,omitempty"` // defaults to today when zero
}

// Validate validates ClockInRequest.
func (r *ClockInRequest) Validate() error {
	if strings.TrimSpace(r.JobID) == "" {
		return errors.New("job_id is required")
	}
	return nil
}

// TimeEntriesListOptions controls filtering for listing time entries.
type TimeEntriesListOptions struct {
	UserID string           // required: entries belong to one user
	From   *time.Time       // inclusive date lower bound
	To     *time.Time       // inclusive date upper bound
	Status *TimeEntryStatus // exact match
	Limit  int
	Offset int
}

// TimeEntryWithJob pairs an entry with the job columns the dashboard renders.
type TimeEntryWithJob struct {
	TimeEntry
	JobNumber string `json:"job_number" db:"job_number"`
	JobTitle  string `json:"job_title"  db:"job_title"`
}
