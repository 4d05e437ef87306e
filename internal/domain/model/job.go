//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxJobNumberLen = 64
	maxJobTitleLen  = 255
)

// JobStatus tracks the lifecycle of a job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
	JobStatusOnHold     JobStatus = "on_hold"
)

// Valid reports whether the job status is supported.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled, JobStatusOnHold:
		return true
	default:
		return false
	}
}

// ParseJobStatus normalizes a status string and reports whether it is supported.
func ParseJobStatus(value string) (JobStatus, bool) {
	s := JobStatus(strings.ToLower(strings.TrimSpace(value)))
	if s.Valid() {
		return s, true
	}
	return "", false
}

// JobPriority orders jobs by urgency.
type JobPriority string

const (
	JobPriorityLow    JobPriority = "low"
	JobPriorityMedium JobPriority = "medium"
	JobPriorityHigh   JobPriority = "high"
	JobPriorityUrgent JobPriority = "urgent"
)

// Valid reports whether the job priority is supported.
func (p JobPriority) Valid() bool {
	switch p {
	case JobPriorityLow, JobPriorityMedium, JobPriorityHigh, JobPriorityUrgent:
		return true
	default:
		return false
	}
}

// normalizeJobPriority trims and lowercases the input, defaulting to medium when empty.
func normalizeJobPriority(v JobPriority) JobPriority {
	normalized := JobPriority(strings.ToLower(strings.TrimSpace(string(v))))
	if normalized == "" {
		return JobPriorityMedium
	}
	return normalized
}

// Job represents a unit of billable work tracked on the dashboard.
type Job struct {
	ID             string      `json:"id"                        db:"id"`
	JobNumber      string      `json:"job_number"                db:"job_number"`
	Title          string      `json:"title"                     db:"title"`
	Description    *string     `json:"description,omitempty"     db:"description"`
	Status         JobStatus   `json:"status"                    db:"status"`
	Priority       JobPriority `json:"priority"                  db:"priority"`
	StartDate      *time.Time  `json:"start_date,omitempty"      db:"start_date"`
	DueDate        *time.Time  `json:"due_date,omitempty"        db:"due_date"`
	EstimatedHours *float64    `json:"estimated_hours,omitempty" db:"estimated_hours"`
	Location       *string     `json:"location,omitempty"        db:"location"`
	ClientID       *string     `json:"client_id,omitempty"       db:"client_id"`
	CreatedAt      time.Time   `json:"created_at"                db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"                db:"updated_at"`
}

// Deletable reports whether the job may be removed. In-progress work keeps its
// job row so time entries stay attributable.
func (j Job) Deletable() bool {
	switch j.Status {
	case JobStatusPending, JobStatusCompleted, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// CreateJobRequest represents parameters to create a Job.
type CreateJobRequest struct {
	JobNumber      string      `json:"job_number"`
	Title          string      `json:"title"`
	Description    *string     `json:"description,omitempty"`
	Status         JobStatus   `json:"status,omitempty"`
	Priority       JobPriority `json:"priority,omitempty"`
	StartDate      *time.Time  `json:"start_date,omitempty"`
	DueDate        *time.Time  `json:"due_date,omitempty"`
	EstimatedHours *float64    `json:"estimated_hours,omitempty"`
	Location       *string     `json:"location,omitempty"`
	ClientID       *string     `json:"client_id,omitempty"`
}

// Validate validates CreateJobRequest and normalizes enum fields.
func (r *CreateJobRequest) Validate() error {
	number := strings.TrimSpace(r.JobNumber)
	if number == "" {
		return errors.New("job_number is required and cannot be empty")
	}
	if utf8.RuneCountInString(number) > maxJobNumberLen {
		return errors.New("job_number cannot exceed 64 characters")
	}
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxJobTitleLen {
		return errors.New("title cannot exceed 255 characters")
	}
	if r.Status == "" {
		r.Status = JobStatusPending
	}
	if !r.Status.Valid() {
		return errors.New("invalid status")
	}
	r.Priority = normalizeJobPriority(r.Priority)
	if !r.Priority.Valid() {
		return errors.New("invalid priority")
	}
	if r.EstimatedHours != nil && *r.EstimatedHours < 0 {
		return errors.New("estimated_hours cannot be negative")
	}
	if r.StartDate != nil && r.DueDate != nil && r.DueDate.Before(*r.StartDate) {
		return errors.New("due_date cannot be before start_date")
	}
	return nil
}

// UpdateJobRequest represents parameters to update a Job. Nil fields are left
// unchanged.
type UpdateJobRequest struct {
	Title          *string      `json:"title,omitempty"`
	Description    *string      `json:"description,omitempty"`
	Status         *JobStatus   `json:"status,omitempty"`
	Priority       *JobPriority `json:"priority,omitempty"`
	StartDate      *time.Time   `json:"start_date,omitempty"`
	DueDate        *time.Time   `json:"due_date,omitempty"`
	EstimatedHours *float64     `json:"estimated_hours,omitempty"`
	Location       *string      `json:"location,omitempty"`
	ClientID       *string      `json:"client_id,omitempty"`
}

// HasUpdates reports whether any field is set in UpdateJobRequest.
func (r *UpdateJobRequest) HasUpdates() bool {
	return r.Title != nil || r.Description != nil || r.Status != nil || r.Priority != nil ||
		r.StartDate != nil || r.DueDate != nil || r.EstimatedHours != nil || r.Location != nil ||
		r.ClientID != nil
}

// Validate validates UpdateJobRequest.
func (r *UpdateJobRequest) Validate() error {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			return errors.New("title cannot be empty")
		}
		if utf8.RuneCountInString(title) > maxJobTitleLen {
			return errors.New("title cannot exceed 255 characters")
		}
	}
	if r.Status != nil && !r.Status.Valid() {
		return errors.New("invalid status")
	}
	if r.Priority != nil {
		p := normalizeJobPriority(*r.Priority)
		if !p.Valid() {
			return errors.New("invalid priority")
		}
		*r.Priority = p
	}
	if r.EstimatedHours != nil && *r.EstimatedHours < 0 {
		return errors.New("estimated_hours cannot be negative")
	}
	return nil
}

// JobsListOptions controls paging and filtering for listing jobs.
// Notes:
// - Sort supports: "created_at", "job_number", "due_date" (case-insensitive).
// - Dir supports: "asc", "desc" (case-insensitive); values are normalized internally.
// - Q matches job_number or title via ILIKE substring.
type JobsListOptions struct {
	Limit    int
	Offset   int
	Q        *string      // substring match on job_number or title (ILIKE)
	Status   *JobStatus   // exact match
	Priority *JobPriority // exact match
	ClientID *string      // exact match
	DueOn    *time.Time   // jobs starting or due on this date
	Sort     string       // allowed: "created_at", "job_number", "due_date"
	Dir      string       // allowed: "asc", "desc"
}
