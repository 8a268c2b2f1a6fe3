package tradecache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/pumprand/pump-client/internal/adapter"
	"github.com/pumprand/pump-client/internal/store"
)

// Backend persists one JSON document per key
//
//go:generate mockgen -source=backend.go -destination=../mocks/tradecache_backend.go -package=mocks -mock_names=Backend=MockBackend
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// FileBackend stores each key as <dir>/<key>.json
type FileBackend struct {
	fs  adapter.FileSystem
	dir string
}

// NewFileBackend creates a file backend rooted at dir
func NewFileBackend(fileSystem adapter.FileSystem, dir string) *FileBackend {
	return &FileBackend{fs: fileSystem, dir: dir}
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := b.fs.ReadFile(b.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

func (b *FileBackend) Put(ctx context.Context, key string, value []byte) error {
	if err := b.fs.MkdirAll(b.dir); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := b.fs.WriteFileAtomic(b.path(key), value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// NewGormBackend stores documents in the key_value_store table
func NewGormBackend(db *gorm.DB) Backend {
	return store.NewKVStore(db)
}
