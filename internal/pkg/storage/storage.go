package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned by Get when nothing is stored at the path.
var ErrNotExist = errors.New("stored object does not exist")

// Storage keeps uploaded blobs under relative paths.
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error
	// Get returns ErrNotExist (wrapped) for a missing path.
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete is a no-op for a missing path.
	Delete(ctx context.Context, path string) error
}
