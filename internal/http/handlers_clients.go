package httpx

import (
	"errors"
	"net/http"

	"github.com/crewdeck/crewdeck/internal/data"
	"github.com/crewdeck/crewdeck/internal/domain/model"
	"github.com/crewdeck/crewdeck/internal/service"
)

// ClientHandlers provides HTTP handlers for client-related operations.
type ClientHandlers struct {
	Svc *service.ClientService
}

// Create handles HTTP requests to create a new client.
func (h *ClientHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req *model.CreateClientRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	client, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, client)
}

// List handles HTTP requests to list clients with optional search.
func (h *ClientHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultPageSize, maxPageSize)
	clients, err := h.Svc.List(r.Context(), data.ClientsListOptions{
		Q:      queryString(r, "q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

// Get handles HTTP requests to retrieve a client by ID.
func (h *ClientHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("client id is required")})
		return
	}

	client, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, client)
}

// Update handles HTTP requests to update a client's fields.
func (h *ClientHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("client id is required")})
		return
	}

	var req model.UpdateClientRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	client, err := h.Svc.Update(r.Context(), id, req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, client)
}

// Delete handles HTTP requests to delete a client. Clients with jobs on file
// surface as a conflict.
func (h *ClientHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("client id is required")})
		return
	}

	if err := h.Svc.Delete(r.Context(), id); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
