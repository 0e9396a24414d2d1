package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "planner.sqlite"

// SQLiteGateway stores each key as one row.
type SQLiteGateway struct {
	path string
	db   *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteGateway, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the TUI and a CLI invocation share the file; busy_timeout avoids
	// "database is locked" while the other side writes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL,
		updated_at_unixms INTEGER NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteGateway{path: path, db: db}, nil
}

func (g *SQLiteGateway) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v string
	err := g.db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(v), true, nil
}

func (g *SQLiteGateway) Put(ctx context.Context, key string, value []byte) error {
	_, err := g.db.ExecContext(ctx,
		`INSERT INTO kv(k, v, updated_at_unixms) VALUES(?, ?, ?)
		 ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at_unixms = excluded.updated_at_unixms`,
		key, string(value), time.Now().UTC().UnixMilli())
	return err
}

func (g *SQLiteGateway) Paths() []string {
	return []string{g.path, g.path + "-wal"}
}

func (g *SQLiteGateway) Close() error {
	if g == nil || g.db == nil {
		return nil
	}
	return g.db.Close()
}
