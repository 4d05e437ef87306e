package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/crewdeck/crewdeck/internal/data"
	"github.com/crewdeck/crewdeck/internal/domain/model"
	"github.com/crewdeck/crewdeck/internal/service"
)

// maxUploadBytes caps a single file upload at 50 MiB.
const maxUploadBytes = 50 << 20

// FileHandlers provides HTTP handlers for file upload, listing, download, and
// deletion.
type FileHandlers struct {
	Svc *service.FileService
}

// Upload handles multipart file uploads.
// POST /api/files with form fields "file", optional "job_id" and "description".
func (h *FileHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	if userID == "" {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errors.New("authentication required")})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_upload", Err: fmt.Errorf("reading multipart file: %w", err)})
		return
	}
	defer func() { _ = file.Close() }()

	in := service.UploadInput{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Description: r.FormValue("description"),
		UploadedBy:  userID,
		Body:        file,
	}
	if jobID := r.FormValue("job_id"); jobID != "" {
		in.JobID = &jobID
	}

	record, err := h.Svc.Upload(r.Context(), in)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, record)
}

// List handles HTTP requests to list file records with job and category
// filters.
func (h *FileHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultPageSize, maxPageSize)
	opts := data.FilesListOptions{
		JobID:  queryString(r, "job_id"),
		Limit:  limit,
		Offset: offset,
	}
	if v := r.URL.Query().Get("category"); v != "" {
		category := model.FileCategory(v)
		opts.Category = &category
	}

	files, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"files": files})
}

// Get handles HTTP requests to retrieve a file record by ID.
func (h *FileHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("file id is required")})
		return
	}

	record, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, record)
}

// Download handles HTTP requests to stream a file's contents.
func (h *FileHandlers) Download(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("file id is required")})
		return
	}

	record, rc, err := h.Svc.Download(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	defer func() { _ = rc.Close() }()

	contentType := record.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Name))
	if record.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(record.SizeBytes, 10))
	}
	_, _ = io.Copy(w, rc)
}

// Delete handles HTTP requests to delete a file record and its stored blob.
func (h *FileHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("file id is required")})
		return
	}

	if err := h.Svc.Delete(r.Context(), id); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
