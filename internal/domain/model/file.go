package model

import (
	"errors"
	"strings"
	"time"
)

// FileCategory buckets uploaded documents for filtering on the Files tab.
type FileCategory string

const (
	FileCategorySWMS     FileCategory = "SWMS"
	FileCategoryPrestart FileCategory = "Prestart Cleaning"
	FileCategorySafety   FileCategory = "Safety Manual"
	FileCategoryOther    FileCategory = "Other"
)

// CategorizeFilename infers a category from the uploaded file's name.
// Matches are case-insensitive substring checks, most specific first.
func CategorizeFilename(name string) FileCategory {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "swms"):
		return FileCategorySWMS
	case strings.Contains(lower, "prestart"), strings.Contains(lower, "cleaning"):
		return FileCategoryPrestart
	case strings.Contains(lower, "safety"):
		return FileCategorySafety
	default:
		return FileCategoryOther
	}
}

// FileRecord describes a stored document, optionally attached to a job.
// The bytes live in the file store; this row is only the index entry.
type FileRecord struct {
	ID          string       `json:"id"                    db:"id"`
	Name        string       `json:"name"                  db:"name"`
	Path        string       `json:"path"                  db:"path"`
	ContentType string       `json:"content_type"          db:"content_type"`
	SizeBytes   int64        `json:"size_bytes"            db:"size_bytes"`
	JobID       *string      `json:"job_id,omitempty"      db:"job_id"`
	Description string       `json:"description"           db:"description"`
	Category    FileCategory `json:"category"              db:"category"`
	UploadedBy  string       `json:"uploaded_by"           db:"uploaded_by"`
	CreatedAt   time.Time    `json:"created_at"            db:"created_at"`
}

// CreateFileRequest represents parameters to register an uploaded file.
type CreateFileRequest struct {
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	ContentType string  `json:"content_type"`
	SizeBytes   int64   `json:"size_bytes"`
	JobID       *string `json:"job_id,omitempty"`
	Description string  `json:"description"`
	UploadedBy  string  `json:"uploaded_by"`
}

// Validate validates CreateFileRequest.
func (r *CreateFileRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(r.Path) == "" {
		return errors.New("path is required")
	}
	if r.SizeBytes < 0 {
		return errors.New("size_bytes cannot be negative")
	}
	if strings.TrimSpace(r.UploadedBy) == "" {
		return errors.New("uploaded_by is required")
	}
	return nil
}
