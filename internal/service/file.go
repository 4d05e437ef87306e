package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"github.com/crewdeck/crewdeck/internal/core"
	"github.com/crewdeck/crewdeck/internal/data"
	"github.com/crewdeck/crewdeck/internal/domain/model"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
	"github.com/crewdeck/crewdeck/internal/ports"
)

// FileServiceOptions groups dependencies for FileService.
type FileServiceOptions struct {
	Store  ports.FileStore
	Files  core.FileRepository
	Logger *slog.Logger
}

// FileService pairs blob storage with the files metadata table. The metadata
// row owns the storage key; deleting the row releases the blob.
type FileService struct {
	store  ports.FileStore
	files  core.FileRepository
	logger *slog.Logger
}

// NewFileService constructs a new FileService.
func NewFileService(opts FileServiceOptions) (*FileService, error) {
	if opts.Store == nil {
		return nil, errors.New("file store is required")
	}
	if opts.Files == nil {
		return nil, errors.New("file repository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FileService{store: opts.Store, files: opts.Files, logger: logger}, nil
}

// UploadInput groups parameters for an upload.
type UploadInput struct {
	Name        string
	ContentType string
	JobID       *string
	Description string
	UploadedBy  string
	Body        io.Reader
}

// Upload streams the body into blob storage and registers the metadata row.
// The category is derived from the filename.
func (s *FileService) Upload(ctx context.Context, in UploadInput) (*model.FileRecord, error) {
	name := path.Base(in.Name)
	if name == "" || name == "." || name == "/" {
		return nil, apperrors.ValidationField("name", "file name is required")
	}
	if in.UploadedBy == "" {
		return nil, apperrors.ValidationField("uploaded_by", "uploader is required")
	}
	if in.Body == nil {
		return nil, apperrors.Validation("file body is required")
	}

	key := "files/" + uuid.New().String() + "/" + name
	size, err := s.store.Put(ctx, key, in.Body)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	record, err := s.files.Create(ctx, &model.CreateFileRequest{
		Name:        name,
		Path:        key,
		ContentType: in.ContentType,
		SizeBytes:   size,
		JobID:       in.JobID,
		Description: in.Description,
		UploadedBy:  in.UploadedBy,
	})
	if err != nil {
		// The row owns the key; without it the blob is unreachable.
		if rmErr := s.store.Remove(ctx, key); rmErr != nil {
			s.logger.WarnContext(ctx, "orphaned blob after failed metadata insert",
				slog.String("key", key),
				slog.String("error", rmErr.Error()))
		}
		return nil, err
	}
	return record, nil
}

// GetByID retrieves a file's metadata.
func (s *FileService) GetByID(ctx context.Context, id string) (*model.FileRecord, error) {
	return s.files.GetByID(ctx, id)
}

// List returns file metadata, newest first, with optional job and category
// filters.
func (s *FileService) List(ctx context.Context, opts data.FilesListOptions) ([]*model.FileRecord, error) {
	return s.files.List(ctx, opts)
}

// Download returns a file's metadata and a reader over its content. The
// caller closes the reader.
func (s *FileService) Download(ctx context.Context, id string) (*model.FileRecord, io.ReadCloser, error) {
	record, err := s.files.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(ctx, record.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open blob: %w", err)
	}
	return record, rc, nil
}

// Delete removes the metadata row and then the blob. A blob left behind by a
// failed remove is logged, not surfaced; the row is already gone.
func (s *FileService) Delete(ctx context.Context, id string) error {
	key, err := s.files.Delete(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "remove blob failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
	return nil
}
