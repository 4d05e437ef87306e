package httpx

import (
	"errors"
	"net/http"

	"github.com/crewdeck/crewdeck/internal/domain/model"
	"github.com/crewdeck/crewdeck/internal/service"
)

// TimeHandlers provides HTTP handlers for clock in/out and timesheet listing.
// All entry operations act on the calling user's own timesheet; approval and
// deletion are admin routes.
type TimeHandlers struct {
	Svc *service.TimesheetService
}

// currentUserID returns the authenticated caller's user ID from the guard's
// session state, or "" on an unguarded route.
func currentUserID(r *http.Request) string {
	state, ok := GetStateFromContext(r.Context())
	if !ok || state.Identity == nil {
		return ""
	}
	return state.Identity.UserID
}

// ClockIn handles HTTP requests to open a time entry against a job.
func (h *TimeHandlers) ClockIn(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	if userID == "" {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errors.New("authentication required")})
		return
	}

	var req *model.ClockInRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	entry, err := h.Svc.ClockIn(r.Context(), userID, req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, entry)
}

// ClockOut handles HTTP requests to close the caller's open time entry.
func (h *TimeHandlers) ClockOut(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	if userID == "" {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errors.New("authentication required")})
		return
	}

	entry, err := h.Svc.ClockOut(r.Context(), userID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, entry)
}

// Current handles HTTP requests for the caller's open time entry, if any.
func (h *TimeHandlers) Current(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	if userID == "" {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errors.New("authentication required")})
		return
	}

	entry, err := h.Svc.Current(r.Context(), userID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"entry": entry, "clocked_in": entry != nil})
}

// List handles HTTP requests for the caller's time entries with date and
// status filters.
func (h *TimeHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	if userID == "" {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errors.New("authentication required")})
		return
	}

	limit, offset := ParseLimitOffset(r, defaultPageSize, maxPageSize)
	opts := model.TimeEntriesListOptions{
		UserID: userID,
		From:   queryDate(r, "from"),
		To:     queryDate(r, "to"),
		Limit:  limit,
		Offset: offset,
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := model.TimeEntryStatus(v)
		opts.Status = &status
	}

	entries, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// Today handles HTTP requests for the caller's entries for today.
func (h *TimeHandlers) Today(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	if userID == "" {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errors.New("authentication required")})
		return
	}

	entries, err := h.Svc.Today(r.Context(), userID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// Approve handles HTTP requests to approve a time entry for payroll.
func (h *TimeHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("entry id is required")})
		return
	}

	entry, err := h.Svc.Approve(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, entry)
}

// Delete handles HTTP requests to delete a time entry.
func (h *TimeHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("entry id is required")})
		return
	}

	if err := h.Svc.Delete(r.Context(), id); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
