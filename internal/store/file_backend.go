package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileGateway keeps each key in its own JSON file inside dir.
type FileGateway struct {
	dir string
}

func OpenFileGateway(dir string) (*FileGateway, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileGateway{dir: dir}, nil
}

func fileKeyName(key string) string { return key + ".json" }

func (g *FileGateway) path(key string) string {
	return filepath.Join(g.dir, fileKeyName(key))
}

func (g *FileGateway) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := os.ReadFile(g.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (g *FileGateway) Put(_ context.Context, key string, value []byte) error {
	return writeFileAtomic(g.path(key), value)
}

func (g *FileGateway) Paths() []string {
	return []string{g.path(KeyV2)}
}

func (g *FileGateway) Close() error { return nil }
