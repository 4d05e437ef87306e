// Package httpx provides HTTP handlers and utilities for the crewdeck API.
package httpx

import (
	"errors"
	"net/http"

	"github.com/crewdeck/crewdeck/internal/domain/model"
	"github.com/crewdeck/crewdeck/internal/service"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// JobHandlers provides HTTP handlers for job-related operations.
type JobHandlers struct {
	Svc *service.JobService
}

// Create handles HTTP requests to create a new job.
func (h *JobHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req *model.CreateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, job)
}

// List handles HTTP requests to list jobs with filtering and pagination.
func (h *JobHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultPageSize, maxPageSize)
	opts := model.JobsListOptions{
		Limit:    limit,
		Offset:   offset,
		Q:        queryString(r, "q"),
		ClientID: queryString(r, "client_id"),
		DueOn:    queryDate(r, "due_on"),
		Sort:     r.URL.Query().Get("sort"),
		Dir:      r.URL.Query().Get("dir"),
	}
	if v := r.URL.Query().Get("status"); v != "" {
		if status, ok := model.ParseJobStatus(v); ok {
			opts.Status = &status
		}
	}
	if v := r.URL.Query().Get("priority"); v != "" {
		priority := model.JobPriority(v)
		opts.Priority = &priority
	}

	page, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

// Today handles HTTP requests for jobs starting or due today.
func (h *JobHandlers) Today(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Svc.Today(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// Get handles HTTP requests to retrieve a job by ID.
func (h *JobHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")})
		return
	}

	job, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// Update handles HTTP requests to update a job's fields.
func (h *JobHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")})
		return
	}

	var req model.UpdateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.Svc.Update(r.Context(), id, req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// Complete handles HTTP requests to mark a job as completed.
func (h *JobHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")})
		return
	}

	job, err := h.Svc.MarkComplete(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// Delete handles HTTP requests to delete a job.
func (h *JobHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")})
		return
	}

	if err := h.Svc.Delete(r.Context(), id); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
