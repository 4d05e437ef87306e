package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

const maxClientNameLen = 255

// Client represents a customer the business performs jobs for.
type Client struct {
	ID        string    `json:"id"              db:"id"`
	Name      string    `json:"name"            db:"name"`
	Email     string    `json:"email"           db:"email"`
	Phone     string    `json:"phone"           db:"phone"`
	Company   string    `json:"company"         db:"company"`
	Address   string    `json:"address"         db:"address"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at"      db:"created_at"`
	UpdatedAt time.Time `json:"updated_at"      db:"updated_at"`
}

// CreateClientRequest represents parameters to create a Client.
type CreateClientRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Company string  `json:"company"`
	Address string  `json:"address"`
	Notes   *string `json:"notes,omitempty"`
}

// Validate validates CreateClientRequest.
func (r *CreateClientRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxClientNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	email := strings.TrimSpace(r.Email)
	if email == "" {
		return errors.New("email is required and cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("email is not a valid address")
	}
	return nil
}

// UpdateClientRequest represents parameters to update a Client. Nil fields are
// left unchanged.
type UpdateClientRequest struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Company *string `json:"company,omitempty"`
	Address *string `json:"address,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// HasUpdates reports whether any field is set in UpdateClientRequest.
func (r *UpdateClientRequest) HasUpdates() bool {
	return r.Name != nil || r.Email != nil || r.Phone != nil || r.Company != nil ||
		r.Address != nil || r.Notes != nil
}

// Validate validates UpdateClientRequest.
func (r *UpdateClientRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return errors.New("name cannot be empty")
	}
	if r.Email != nil {
		if _, err := mail.ParseAddress(strings.TrimSpace(*r.Email)); err != nil {
			return errors.New("email is not a valid address")
		}
	}
	return nil
}
