package localstore

// Package localstore implements ports.FileStore on the local filesystem.
// Blobs are stored under a root directory keyed by their storage key; the
// metadata row in the files table owns the key.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/crewdeck/crewdeck/internal/errors"
	"github.com/crewdeck/crewdeck/internal/ports"
)

// Store persists blobs under a root directory.
type Store struct {
	root string
}

var _ ports.FileStore = (*Store)(nil)

// New creates a Store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("localstore: root directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Store{root: dir}, nil
}

// Put streams r into the blob at key, replacing any existing content.
// The write goes through a temp file and rename so readers never observe a
// partially written blob.
func (s *Store) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	path, err := s.resolve(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return 0, fmt.Errorf("create blob directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp blob: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	n, err := io.Copy(tmp, contextReader{ctx: ctx, r: r})
	if err != nil {
		return 0, fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("publish blob: %w", err)
	}
	return n, nil
}

// Open returns a reader over the blob at key.
func (s *Store) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFoundf("file %q not found", key)
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

// Remove deletes the blob at key. Removing a missing blob is not an error.
func (s *Store) Remove(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

// resolve maps a storage key to an absolute path under root, rejecting keys
// that would escape it.
func (s *Store) resolve(key string) (string, error) {
	if key == "" {
		return "", apperrors.Validation("storage key is required")
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", apperrors.Validationf("invalid storage key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// contextReader aborts a copy once its context is done, so a canceled upload
// does not keep streaming from a slow client.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
