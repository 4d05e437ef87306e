package ports

import (
	"context"
	"io"
)

// FileStore stores and retrieves uploaded file blobs by opaque key.
type FileStore interface {
	// Put writes the blob under key, overwriting any previous content.
	Put(ctx context.Context, key string, r io.Reader) (int64, error)

	// Open returns a reader over the blob stored under key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Remove deletes the blob under key. Removing a missing key is not an
	// error.
	Remove(ctx context.Context, key string) error
}
