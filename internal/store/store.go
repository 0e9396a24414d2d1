// Package store persists the planner document.
//
// The document is kept as a JSON value under a stable key in a small key/value
// gateway (SQLite by default, plain JSON files as an alternative). The legacy
// generation lives under its own key and is only read for migration.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	appLog "planner-cli/internal/log"
	"planner-cli/internal/migrate"
	"planner-cli/internal/model"
)

const (
	KeyV2 = "planner_v2"
	KeyV1 = "planner_v1"
)

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
)

func ParseBackend(s string) (Backend, bool) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case BackendSQLite, "":
		return BackendSQLite, true
	case BackendFile:
		return BackendFile, true
	}
	return "", false
}

// Gateway is a minimal key/value medium for raw JSON documents.
type Gateway interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	// Paths lists the files a watcher should observe for external writes.
	Paths() []string
	Close() error
}

type Store struct {
	Dir     string
	Backend Backend
}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store: missing dir")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

// Open returns the gateway for the configured backend.
func (s Store) Open(ctx context.Context) (Gateway, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	switch s.Backend {
	case BackendFile:
		return OpenFileGateway(s.Dir)
	case BackendSQLite, "":
		return OpenSQLite(ctx, filepath.Join(s.Dir, sqliteFileName))
	default:
		return nil, fmt.Errorf("store: unknown backend %q", s.Backend)
	}
}

// Exists reports whether the store directory already holds a document.
func (s Store) Exists() bool {
	for _, name := range []string{sqliteFileName, fileKeyName(KeyV2), fileKeyName(KeyV1)} {
		if _, err := os.Stat(filepath.Join(s.Dir, name)); err == nil {
			return true
		}
	}
	return false
}

// Load runs the load chain over the gateway. A legacy document that had to be
// migrated is written back under the current key right away so the upgrade
// runs only once. Malformed data never fails the load; gateway I/O errors do.
func Load(ctx context.Context, gw Gateway, env model.Env) (*model.Document, migrate.Source, error) {
	v2, _, err := gw.Get(ctx, KeyV2)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", KeyV2, err)
	}
	v1, _, err := gw.Get(ctx, KeyV1)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", KeyV1, err)
	}

	doc, src := migrate.Resolve(v2, v1, env)
	appLog.Info("store loaded", "source", src, "people", len(doc.People), "tasks", len(doc.Tasks))
	if src == migrate.SourceV1 {
		if err := Save(ctx, gw, doc, env.Time()); err != nil {
			return nil, "", fmt.Errorf("persist migrated document: %w", err)
		}
		appLog.Info("legacy document migrated", "people", len(doc.People), "tasks", len(doc.Tasks))
	}
	return doc, src, nil
}

// Save stamps doc with now and writes it under the current key.
func Save(ctx context.Context, gw Gateway, doc *model.Document, now time.Time) error {
	if doc == nil {
		return errors.New("nil document")
	}
	doc.Touch(now)
	b, err := Marshal(doc)
	if err != nil {
		return err
	}
	return gw.Put(ctx, KeyV2, b)
}

func Marshal(doc *model.Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
