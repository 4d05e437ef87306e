package httpx

import (
	"errors"
	"net/http"

	"github.com/crewdeck/crewdeck/internal/data"
	domainauth "github.com/crewdeck/crewdeck/internal/domain/auth"
	"github.com/crewdeck/crewdeck/internal/service"
)

// ProfileHandlers provides HTTP handlers for the admin staff-management
// endpoints: the approval queue, role assignment, and access revocation.
type ProfileHandlers struct {
	Svc *service.ProfileService
}

// List handles HTTP requests to list profiles. The pending approval queue is
// ?approved=false.
func (h *ProfileHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultPageSize, maxPageSize)
	opts := data.ProfilesListOptions{
		Approved: queryBool(r, "approved"),
		Limit:    limit,
		Offset:   offset,
	}
	if v := r.URL.Query().Get("role"); v != "" {
		role := domainauth.Role(v)
		if role.Valid() {
			opts.Role = &role
		}
	}

	profiles, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

// Get handles HTTP requests to retrieve a profile by ID.
func (h *ProfileHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("profile id is required")})
		return
	}

	profile, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

type approveRequest struct {
	Role *domainauth.Role `json:"role,omitempty"`
}

// Approve handles HTTP requests to grant a profile admin approval, with an
// optional role assignment in the same call.
func (h *ProfileHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("profile id is required")})
		return
	}

	var req approveRequest
	if r.ContentLength != 0 {
		if !DecodeJSON(w, r, &req) {
			return
		}
	}

	profile, err := h.Svc.Approve(r.Context(), id, req.Role)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// Revoke handles HTTP requests to withdraw a profile's approval.
func (h *ProfileHandlers) Revoke(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("profile id is required")})
		return
	}

	profile, err := h.Svc.Revoke(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

type changeRoleRequest struct {
	Role domainauth.Role `json:"role"`
}

// ChangeRole handles HTTP requests to assign a profile a new role.
func (h *ProfileHandlers) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("profile id is required")})
		return
	}

	var req changeRoleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	profile, err := h.Svc.ChangeRole(r.Context(), id, req.Role)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// Reject handles HTTP requests to reject a pending account, deleting its
// profile.
func (h *ProfileHandlers) Reject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("profile id is required")})
		return
	}

	if err := h.Svc.Reject(r.Context(), id); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
