package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"

	"scholarship-backend/internal/domain/storage"
	"scholarship-backend/pkg/id"

	"github.com/spf13/afero"
)

var _ storage.Store = (*FSStore)(nil)

// FSStore keeps blobs on an afero filesystem: the OS disk under a base
// directory in production, an in-memory filesystem in tests.
type FSStore struct{ fs afero.Fs }

func NewFSStore(fsys afero.Fs) *FSStore { return &FSStore{fs: fsys} }

// NewLocalStore roots the store at dir on the OS filesystem.
func NewLocalStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return NewFSStore(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

func (s *FSStore) Put(ctx context.Context, dir, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := id.ObjectKey(dir, fileName)
	if err := s.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return "", err
	}
	if err := afero.WriteFile(s.fs, key, data, 0o644); err != nil {
		return "", err
	}
	return key, nil
}

func (s *FSStore) Get(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := afero.ReadFile(s.fs, p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	return b, err
}

func (s *FSStore) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.fs.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FSStore) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return afero.Exists(s.fs, p)
}
