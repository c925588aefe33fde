package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob not found")

// Store is a blob store addressed by path strings.
type Store interface {
	// Put writes data under dir and returns the generated path.
	Put(ctx context.Context, dir, fileName string, data []byte) (string, error)
	Get(ctx context.Context, path string) ([]byte, error)
	// Delete removes path; deleting a missing path is not an error.
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}
