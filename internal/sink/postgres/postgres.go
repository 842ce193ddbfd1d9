// Package postgres persists triplets into Postgres via a pgx pool. The
// shared-server backend for runs whose output feeds downstream training jobs
// directly from SQL.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"pairgen/internal/sample"
	"pairgen/internal/sink"
)

func init() {
	sink.Register("postgres", New)
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS triplets (
    content_hash TEXT PRIMARY KEY,
    subject      TEXT NOT NULL,
    name         TEXT NOT NULL,
    shape        TEXT NOT NULL,
    payload      JSONB NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store implements sink.Sink over a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
	cfg  sink.Config
}

// New connects and ensures the triplets table exists.
func New(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: create triplets table: %w", err)
	}
	return &Store{pool: pool, cfg: cfg}, nil
}

// Append inserts one triplet keyed by content hash. ON CONFLICT DO NOTHING
// makes replays and duplicate payloads idempotent instead of failing the
// run on the primary-key constraint.
func (s *Store) Append(ctx context.Context, t *sample.Triplet) error {
	hash, err := t.ContentHash()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("postgres: marshal triplet: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO triplets (content_hash, subject, name, shape, payload)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (content_hash) DO NOTHING`,
		hash, s.cfg.Subject, s.cfg.Name, string(s.cfg.Shape), payload,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert triplet: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

var _ sink.Sink = (*Store)(nil)
