// Package mssql persists triplets into SQL Server via database/sql and the
// go-mssqldb driver.
package mssql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"

	"pairgen/internal/sample"
	"pairgen/internal/sink"
)

func init() {
	sink.Register("mssql", New)
}

const createTableSQL = `
IF OBJECT_ID('triplets', 'U') IS NULL
CREATE TABLE triplets (
    content_hash NVARCHAR(64) NOT NULL PRIMARY KEY,
    subject      NVARCHAR(256) NOT NULL,
    name         NVARCHAR(256) NOT NULL,
    shape        NVARCHAR(32) NOT NULL,
    payload      NVARCHAR(MAX) NOT NULL,
    created_at   DATETIMEOFFSET NOT NULL DEFAULT SYSDATETIMEOFFSET()
)`

// Store implements sink.Sink over SQL Server.
type Store struct {
	db  *sql.DB
	cfg sink.Config
}

// New connects, pings, and ensures the triplets table exists.
func New(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mssql: create triplets table: %w", err)
	}
	return &Store{db: db, cfg: cfg}, nil
}

// Append inserts one triplet keyed by content hash. SQL Server has no
// ON CONFLICT clause, so idempotency uses a NOT EXISTS guard against the
// primary key.
func (s *Store) Append(ctx context.Context, t *sample.Triplet) error {
	hash, err := t.ContentHash()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("mssql: marshal triplet: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO triplets (content_hash, subject, name, shape, payload)
		 SELECT @p1, @p2, @p3, @p4, @p5
		 WHERE NOT EXISTS (SELECT 1 FROM triplets WHERE content_hash = @p1)`,
		hash, s.cfg.Subject, s.cfg.Name, string(s.cfg.Shape), string(payload),
	)
	if err != nil {
		return fmt.Errorf("mssql: insert triplet: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

var _ sink.Sink = (*Store)(nil)
