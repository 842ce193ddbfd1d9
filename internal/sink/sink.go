// Package sink defines the triplet persistence interface and the backend
// registry. Backends register themselves from init() functions; blank-import
// internal/sink/all to pull in every built-in backend.
package sink

import (
	"context"
	"fmt"
	"sync"

	"pairgen/internal/sample"
)

// Config is the minimal configuration needed to create a sink.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to SQL backends; validation is backend-specific.
//   - Dir, Subject, Name, and Shape drive file naming for the jsonl backend.
type Config struct {
	Kind string
	DSN  string

	Dir     string
	Subject string
	Name    string
	Shape   sample.Shape
}

// Sink persists generated triplets. Each worker pipeline owns one sink; a
// single sink instance is never shared across goroutines, so implementations
// need not be concurrency-safe.
type Sink interface {
	// Append persists one triplet. SQL backends skip duplicates by content
	// hash; the jsonl backend appends unconditionally.
	Append(ctx context.Context, t *sample.Triplet) error

	// Close flushes and releases backend resources. Call once.
	Close() error
}

type factory func(ctx context.Context, cfg Config) (Sink, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a sink backend under a kind (e.g. "jsonl", "postgres").
//
// Panics on empty kind, nil factory, or duplicate registration. Failing fast
// here avoids ambiguous backend selection at runtime.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("sink: Register called with empty kind")
	}
	if f == nil {
		panic("sink: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("sink: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a Sink using the registered backend factory.
//
// Errors:
//   - Returns an error if cfg.Kind is empty or unsupported.
//   - Returns whatever error the registered factory returns.
func New(ctx context.Context, cfg Config) (Sink, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("sink: missing Kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("sink: unsupported kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
