// Package sqlite persists triplets into a local SQLite database. Useful for
// single-host runs where the output must be queryable without a server.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"pairgen/internal/sample"
	"pairgen/internal/sink"
)

func init() {
	sink.Register("sqlite", New)
}

// Timestamps are stored as RFC3339Nano strings. SQLite has no native
// timestamp type; TEXT round-trips reliably and stays debuggable.
const createTableSQL = `
CREATE TABLE IF NOT EXISTS triplets (
    content_hash TEXT PRIMARY KEY,
    subject      TEXT NOT NULL,
    name         TEXT NOT NULL,
    shape        TEXT NOT NULL,
    payload      TEXT NOT NULL,
    created_at   TEXT NOT NULL
)`

// Store implements sink.Sink over a SQLite file (or :memory:).
type Store struct {
	db  *sql.DB
	cfg sink.Config
}

// New opens the database, verifies connectivity, and ensures the triplets
// table exists. Startup is idempotent: re-running against an existing file
// extends it.
func New(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create triplets table: %w", err)
	}
	return &Store{db: db, cfg: cfg}, nil
}

// Append inserts one triplet keyed by content hash. "INSERT OR IGNORE"
// relies on the PRIMARY KEY constraint, so replays and duplicate payloads
// are silent no-ops.
func (s *Store) Append(ctx context.Context, t *sample.Triplet) error {
	hash, err := t.ContentHash()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("sqlite: marshal triplet: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO triplets (content_hash, subject, name, shape, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		hash, s.cfg.Subject, s.cfg.Name, string(s.cfg.Shape), string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert triplet: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

var _ sink.Sink = (*Store)(nil)
