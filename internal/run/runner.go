// Package run orchestrates generation pipelines: it resolves which schemas
// to generate for, clamps the noise depth, and fans one worker out per
// schema, each worker running its enabled output shapes.
package run

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"pairgen/internal/catalog"
	"pairgen/internal/config"
	"pairgen/internal/example"
	"pairgen/internal/generate"
	"pairgen/internal/sample"
	"pairgen/internal/sink"
	"pairgen/internal/synonym"
)

// Runner wires one generation run. Catalog and Lexicon are shared read-only
// across workers; every worker builds its own random source, renamer,
// generator and engine so no mutable state crosses goroutines.
type Runner struct {
	Catalog *catalog.Catalog
	Lexicon synonym.Lexicon
	Log     generate.Logger

	// Client serves schema fetches for every worker. http.Client is safe for
	// concurrent use; fakes used in tests must be too.
	Client example.HTTPClient

	// NewSink is passed through to each engine. nil means sink.New.
	NewSink func(ctx context.Context, cfg sink.Config) (sink.Sink, error)

	// Seed drives the per-worker random sources. 0 means time-based.
	Seed int64
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// logger returns the configured Logger; nil means discard.
func (r *Runner) logger() generate.Logger {
	if r.Log == nil {
		return nopLogger{}
	}
	return r.Log
}

// Run generates triplets for every schema the configuration selects:
// an explicit subject+name runs one worker; a subject without a name runs
// one worker per schema of the subject; otherwise every subject of the
// domain contributes a worker per schema.
//
// Workers run concurrently and are joined before Run returns; their errors
// are collected, not short-circuited, so one failing schema does not abandon
// the others mid-run.
func (r *Runner) Run(ctx context.Context, cfg config.Config) error {
	depth := cfg.Depth
	if depth > cfg.DepthMaxThreshold {
		depth = cfg.DepthMaxThreshold
	}

	refs, err := r.selectSchemas(cfg)
	if err != nil {
		return err
	}

	seed := r.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var wg sync.WaitGroup
	errs := make([]error, len(refs))

	for i, ref := range refs {
		wg.Add(1)
		normSeed, kvSeed := workerSeeds(seed, i)
		go func(i int, ref catalog.SchemaRef, normSeed, kvSeed int64) {
			defer wg.Done()
			errs[i] = r.runWorker(ctx, cfg, ref, depth, normSeed, kvSeed)
		}(i, ref, normSeed, kvSeed)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// runWorker generates every enabled shape for one schema. The normalized
// pipeline runs on the worker goroutine; the key-values pipeline runs as a
// parallel sub-task joined before the worker finishes.
func (r *Runner) runWorker(ctx context.Context, cfg config.Config, ref catalog.SchemaRef, depth int, normSeed, kvSeed int64) error {
	r.logger().Printf("worker=%s.%s depth=%d iterations=%d start", ref.Subject, ref.Name, depth, cfg.Iterations)

	params := generate.Params{
		Domain:  ref.Domain,
		Subject: ref.Subject,
		Name:    ref.Name,

		Depth:      depth,
		Iterations: cfg.Iterations,

		SynBatchRatio:         cfg.SynBatchRatio,
		EnableSnakeCase:       cfg.EnableSnakeCase,
		CrossSubjectNegatives: cfg.AnyNegativeSubject,
		Retained:              cfg.RetainedSet(),
	}

	var kvErr error
	var kv sync.WaitGroup
	if cfg.KeyValuesEnabled {
		kv.Add(1)
		go func() {
			defer kv.Done()
			p := params
			p.Shape = sample.ShapeKeyValues
			kvErr = r.newEngine(cfg, kvSeed).GenerateSamples(ctx, p)
		}()
	}

	var normErr error
	if cfg.NormalizedEnabled {
		p := params
		p.Shape = sample.ShapeNormalized
		normErr = r.newEngine(cfg, normSeed).GenerateSamples(ctx, p)
	}

	kv.Wait()
	return errors.Join(normErr, kvErr)
}

// workerSeeds derives the two pipeline seeds of one worker. Strided by two
// so no pipeline in a run shares another pipeline's random stream.
func workerSeeds(base int64, i int) (normalized, keyValues int64) {
	return base + 2*int64(i), base + 2*int64(i) + 1
}

// newEngine builds one pipeline-private engine.
func (r *Runner) newEngine(cfg config.Config, seed int64) *generate.Engine {
	rng := rand.New(rand.NewSource(seed))
	return &generate.Engine{
		Catalog: r.Catalog,
		Gen:     example.NewSchemaGenerator(r.Client, rng),
		Renamer: synonym.NewRenamer(r.Lexicon, rng),
		Rand:    rng,
		Log:     r.logger(),
		BaseURL: cfg.BaseURL,
		SinkCfg: sink.Config{
			Kind: cfg.SinkKind,
			DSN:  cfg.SinkDSN,
			Dir:  cfg.OutDir,
		},
		NewSink:     r.NewSink,
		MaxAttempts: cfg.MaxAttempts,
	}
}

// selectSchemas resolves the configured scope to concrete schema references.
func (r *Runner) selectSchemas(cfg config.Config) ([]catalog.SchemaRef, error) {
	switch {
	case cfg.Subject != "" && cfg.Name != "":
		return []catalog.SchemaRef{{Domain: cfg.Domain, Subject: cfg.Subject, Name: cfg.Name}}, nil

	case cfg.Subject != "":
		names, err := r.Catalog.SchemasOf(cfg.Subject)
		if err != nil {
			return nil, err
		}
		refs := make([]catalog.SchemaRef, 0, len(names))
		for _, n := range names {
			refs = append(refs, catalog.SchemaRef{Domain: cfg.Domain, Subject: cfg.Subject, Name: n})
		}
		return refs, nil

	case cfg.Domain != "":
		subjects, err := r.Catalog.SubjectsOf(cfg.Domain)
		if err != nil {
			return nil, err
		}
		var refs []catalog.SchemaRef
		for _, s := range subjects {
			names, err := r.Catalog.SchemasOf(s)
			if err != nil {
				return nil, err
			}
			for _, n := range names {
				refs = append(refs, catalog.SchemaRef{Domain: cfg.Domain, Subject: s, Name: n})
			}
		}
		return refs, nil

	default:
		return nil, errors.New("run: one of SDM_DOMAIN, SDM_SUBJECT or SDM_SUBJECT+SDM_NAME must be set")
	}
}
