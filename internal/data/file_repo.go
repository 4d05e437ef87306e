package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crewdeck/crewdeck/internal/data/database"
	"github.com/crewdeck/crewdeck/internal/data/pgxutil"
	"github.com/crewdeck/crewdeck/internal/domain/model"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
)

const fileColumns = "id, name, path, content_type, size_bytes, job_id, description, category, uploaded_by, created_at"

// FileRepo provides database operations for uploaded file records. The blobs
// themselves live in a ports.FileStore; rows here carry the metadata.
type FileRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewFileRepo creates a FileRepo with the real clock.
func NewFileRepo(db *sql.DB) *FileRepo {
	return &FileRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Create registers an uploaded file. The category is derived from the
// filename, matching how the document library buckets safety paperwork.
func (r *FileRepo) Create(ctx context.Context, req *model.CreateFileRequest) (*model.FileRecord, error) {
	if req == nil {
		return nil, apperrors.Validation("create file request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.FileRecord
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO files (id, name, path, content_type, size_bytes, job_id, description, category, uploaded_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING `+fileColumns,
			uuid.NewString(),
			strings.TrimSpace(req.Name),
			req.Path,
			req.ContentType,
			req.SizeBytes,
			req.JobID,
			req.Description,
			model.CategorizeFilename(req.Name),
			req.UploadedBy,
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.FileRecord])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves a file record by ID.
func (r *FileRepo) GetByID(ctx context.Context, id string) (*model.FileRecord, error) {
	var out model.FileRecord
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+fileColumns+` FROM files WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.FileRecord])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// FilesListOptions controls filtering when listing file records.
type FilesListOptions struct {
	JobID    *string
	Category *model.FileCategory
	Limit    int
	Offset   int
}

// List retrieves file records, newest first.
func (r *FileRepo) List(ctx context.Context, opts FilesListOptions) ([]*model.FileRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	qopts := []database.ListQueryOption{
		database.WithColumns(strings.Split(fileColumns, ", ")...),
		database.WithOrderBy("created_at", "desc"),
		database.WithLimit(limit),
		database.WithOffset(max(opts.Offset, 0)),
	}
	if opts.JobID != nil {
		qopts = append(qopts, database.WithCondition(
			database.WhereCond("job_id", database.Equal, *opts.JobID)))
	}
	if opts.Category != nil {
		qopts = append(qopts, database.WithCondition(
			database.WhereCond("category", database.Equal, *opts.Category)))
	}
	query, args := database.BuildListQuery(database.NewListQueryOptions("files", qopts...))

	var rowsOut []model.FileRecord
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.FileRecord])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list files: %w", apperrors.MapDBError(err))
	}

	res := make([]*model.FileRecord, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Delete removes a file record and reports the stored path so the caller can
// remove the blob afterwards.
func (r *FileRepo) Delete(ctx context.Context, id string) (string, error) {
	var path string
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			`DELETE FROM files WHERE id = $1 RETURNING path`, id).Scan(&path)
	})
	if err != nil {
		mapped := apperrors.MapDBError(err)
		if apperrors.IsNotFound(mapped) {
			return "", apperrors.NotFoundf("file %s not found", id)
		}
		return "", mapped
	}
	return path, nil
}
