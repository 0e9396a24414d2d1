package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// writeFileAtomic replaces path with b so readers never see a partial file.
func writeFileAtomic(path string, b []byte) error {
	path = filepath.Clean(path)
	if path == "" || path == "." {
		return errors.New("write file: missing path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(b))
}
