package service

import (
	"context"
	"errors"
	"time"

	"github.com/crewdeck/crewdeck/internal/core"
	"github.com/crewdeck/crewdeck/internal/domain/model"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Jobs core.JobRepository
	Now  func() time.Time // default time.Now
}

// JobService orchestrates job CRUD and the dashboard listings.
type JobService struct {
	jobs core.JobRepository
	now  func() time.Time
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("job repository is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &JobService{jobs: opts.Jobs, now: now}, nil
}

// Create validates and creates a job.
func (s *JobService) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	return s.jobs.Create(ctx, req)
}

// GetByID retrieves a job by ID.
func (s *JobService) GetByID(ctx context.Context, id string) (*model.Job, error) {
	return s.jobs.GetByID(ctx, id)
}

// JobsPage is one page of jobs plus the unpaged total for the list header.
type JobsPage struct {
	Jobs  []*model.Job `json:"jobs"`
	Total int64        `json:"total"`
}

// List returns a page of jobs with the total matching count.
func (s *JobService) List(ctx context.Context, opts model.JobsListOptions) (*JobsPage, error) {
	jobs, err := s.jobs.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	total, err := s.jobs.Count(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &JobsPage{Jobs: jobs, Total: total}, nil
}

// Today returns jobs starting or due today, most urgent sorting left to the
// dashboard.
func (s *JobService) Today(ctx context.Context) ([]*model.Job, error) {
	today := s.now().UTC()
	opts := model.JobsListOptions{DueOn: &today}
	return s.jobs.List(ctx, opts)
}

// Update validates and applies a partial update.
func (s *JobService) Update(ctx context.Context, id string, req model.UpdateJobRequest) (*model.Job, error) {
	if !req.HasUpdates() {
		return nil, apperrors.Validation("no fields to update")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	return s.jobs.Update(ctx, id, req)
}

// MarkComplete transitions a job to completed.
func (s *JobService) MarkComplete(ctx context.Context, id string) (*model.Job, error) {
	status := model.JobStatusCompleted
	return s.jobs.Update(ctx, id, model.UpdateJobRequest{Status: &status})
}

// Delete removes a job. Jobs with work in flight keep their row so time
// entries stay attributable.
func (s *JobService) Delete(ctx context.Context, id string) error {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !job.Deletable() {
		return apperrors.Conflict("job cannot be deleted while work is in progress or on hold")
	}
	return s.jobs.Delete(ctx, id)
}
