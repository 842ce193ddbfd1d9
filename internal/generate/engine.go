// Package generate implements the triplet synthesis engine: for one schema
// and one record shape it walks noise depths, perturbs positive samples,
// pairs each with a verified non-matching negative and persists the
// resulting triplets.
package generate

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"pairgen/internal/catalog"
	"pairgen/internal/example"
	"pairgen/internal/metrics"
	"pairgen/internal/noise"
	"pairgen/internal/sample"
	"pairgen/internal/sink"
	"pairgen/internal/synonym"
)

// Logger is the minimal logging surface the engine needs. *log.Logger
// satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// DefaultMaxAttempts bounds retryable failures per triplet slot.
const DefaultMaxAttempts = 25

// Engine generates triplets for one pipeline. Catalog and Renamer's lexicon
// are shared read-only across pipelines; Rand, Renamer and the sink produced
// by NewSink belong to this engine alone.
type Engine struct {
	Catalog *catalog.Catalog
	Gen     example.Generator
	Renamer *synonym.Renamer
	Rand    *rand.Rand
	Log     Logger

	// BaseURL overrides the default schema host. Empty means the default.
	BaseURL string

	// SinkCfg carries the backend kind and connection settings; the engine
	// fills in the per-pipeline subject, name and shape.
	SinkCfg sink.Config

	// NewSink is a seam over sink.New so tests can capture appended triplets
	// without registering fake backends.
	NewSink func(ctx context.Context, cfg sink.Config) (sink.Sink, error)

	// MaxAttempts caps retryable failures per triplet slot. <= 0 means
	// DefaultMaxAttempts.
	MaxAttempts int
}

// logger returns the configured Logger; nil means discard.
func (e *Engine) logger() Logger {
	if e.Log == nil {
		return nopLogger{}
	}
	return e.Log
}

// Params drives one GenerateSamples run.
type Params struct {
	Shape   sample.Shape
	Domain  string
	Subject string
	Name    string

	Depth      int
	Iterations int

	SynBatchRatio   float64
	EnableSnakeCase bool

	// CrossSubjectNegatives draws the negative's subject at random from the
	// domain instead of reusing the target's subject.
	CrossSubjectNegatives bool

	Retained catalog.PropertySet
}

// GenerateSamples produces and persists Depth x Iterations triplets for one
// schema and shape: for each noise level ii in [0, Depth), Iterations
// triplets whose exclusion set is the subject's shared properties (minus the
// retained ones) plus ii randomly drawn unique properties.
//
// Edge cases:
//   - A retryable failure (generation, synonym sampling, persistence) redoes
//     the slot with fresh randomness; MaxAttempts failures on one slot abort
//     with ExhaustedError.
//   - A subject whose only schema is the target cannot yield a negative;
//     that surfaces as catalog.EmptyCatalogError and is terminal.
//   - Depth 0 generates nothing and returns nil.
func (e *Engine) GenerateSamples(ctx context.Context, p Params) (err error) {
	locator := catalog.SchemaURL(e.BaseURL, p.Subject, p.Name)

	// Reference record for the unfitting-path baseline, drawn in the
	// key-values shape regardless of the run's shape.
	ref, err := e.Gen.Generate(ctx, locator, sample.ShapeKeyValues)
	if err != nil {
		return &GenerationError{Locator: locator, Err: err}
	}
	e.logger().Printf("stage=baseline subject=%s name=%s unfitting=%d", p.Subject, p.Name, len(noise.Paths(ref)))

	shared, err := e.Catalog.SharedProperties(p.Subject)
	if err != nil {
		return err
	}
	unique, err := e.Catalog.UniqueProperties(p.Subject, p.Name)
	if err != nil {
		return err
	}

	cfg := e.SinkCfg
	cfg.Subject = p.Subject
	cfg.Name = p.Name
	cfg.Shape = p.Shape

	newSink := e.NewSink
	if newSink == nil {
		newSink = sink.New
	}
	snk, err := newSink(ctx, cfg)
	if err != nil {
		return err
	}
	// The jsonl sink buffers: Append can return nil for triplets that only
	// reach the file when Close flushes, so a Close failure means counted
	// triplets were lost and must fail the run.
	defer func() {
		if cerr := snk.Close(); cerr != nil {
			err = errors.Join(err, &PersistenceError{Kind: cfg.Kind, Err: cerr})
		}
	}()

	start := time.Now()
	for ii := 0; ii < p.Depth; ii++ {
		k := min(ii, len(unique))

		for jj := 0; jj < p.Iterations; jj++ {
			if err := e.generateSlot(ctx, p, snk, locator, shared, unique, ii, jj, k); err != nil {
				return err
			}
		}
	}

	e.logger().Printf("stage=generate subject=%s name=%s shape=%s ok duration=%s",
		p.Subject, p.Name, p.Shape, time.Since(start).Round(time.Millisecond))
	return nil
}

// generateSlot produces and persists exactly one triplet, retrying retryable
// failures up to the attempt ceiling.
func (e *Engine) generateSlot(ctx context.Context, p Params, snk sink.Sink, locator string, shared, unique catalog.PropertySet, ii, jj, k int) error {
	maxAttempts := e.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		attemptStart := time.Now()
		err := e.attemptTriplet(ctx, p, snk, locator, shared, unique, ii, k)
		if err == nil {
			metrics.IncCounter("pairgen_attempts_total", 1,
				metrics.Labels{"subject": p.Subject, "name": p.Name, "status": "ok"})
			metrics.IncCounter("pairgen_triplets_total", 1,
				metrics.Labels{"subject": p.Subject, "name": p.Name, "shape": string(p.Shape)})
			metrics.ObserveHistogram("pairgen_sample_duration_seconds", time.Since(attemptStart).Seconds(),
				metrics.Labels{"subject": p.Subject, "name": p.Name, "shape": string(p.Shape)})
			return nil
		}
		if !retryable(err) {
			return err
		}

		lastErr = err
		metrics.IncCounter("pairgen_attempts_total", 1,
			metrics.Labels{"subject": p.Subject, "name": p.Name, "status": "retry"})
		e.logger().Printf("stage=generate subject=%s name=%s depth=%d iteration=%d attempt=%d retry err=%v",
			p.Subject, p.Name, ii, jj, attempt+1, err)
	}

	return &ExhaustedError{Locator: locator, Depth: ii, Iteration: jj, Attempts: maxAttempts, LastErr: lastErr}
}

// attemptTriplet is one full positive+negative+persist attempt.
func (e *Engine) attemptTriplet(ctx context.Context, p Params, snk sink.Sink, locator string, shared, unique catalog.PropertySet, ii, k int) error {
	excluded := shared.Diff(p.Retained).Union(e.pick(unique, k))

	pos, err := e.generateSample(ctx, sampleParams{
		shape:           p.Shape,
		locator:         locator,
		domain:          p.Domain,
		synBatchRatio:   p.SynBatchRatio,
		enableSnakeCase: p.EnableSnakeCase,
		matchLabel:      sample.LabelPositive,
		excluded:        excluded,
		retained:        p.Retained,
	})
	if err != nil {
		return err
	}

	negSubject, negShared, err := e.negativeSubject(p, shared)
	if err != nil {
		return err
	}
	negName, err := e.negativeName(negSubject, p.Name, p.CrossSubjectNegatives)
	if err != nil {
		return err
	}

	negUnique, err := e.Catalog.UniqueProperties(negSubject, negName)
	if err != nil {
		return err
	}
	negExcluded := negShared.Diff(p.Retained).Union(e.pick(negUnique, min(ii, len(negUnique))))

	neg, err := e.generateSample(ctx, sampleParams{
		shape:           p.Shape,
		locator:         catalog.SchemaURL(e.BaseURL, negSubject, negName),
		domain:          p.Domain,
		synBatchRatio:   p.SynBatchRatio,
		enableSnakeCase: p.EnableSnakeCase,
		matchLabel:      sample.LabelNegative,
		excluded:        negExcluded,
		retained:        p.Retained,
	})
	if err != nil {
		return err
	}

	t := &sample.Triplet{
		Target: pos.Original,
		Positive: sample.Side{
			Sample:              pos.Modified,
			UnfittingProperties: pos.UnfittingProperties,
			ExcludedProperties:  pos.ExcludedProperties,
			ModifiedProperties:  pos.ModifiedProperties,
			Label:               pos.MatchLabel,
			Metadata:            pos.Metadata,
		},
		Negative: sample.Side{
			// The negative carries its original, not its perturbed copy; the
			// triplet only needs a verified non-match.
			Sample:              neg.Original,
			UnfittingProperties: neg.UnfittingProperties,
			ExcludedProperties:  neg.ExcludedProperties,
			ModifiedProperties:  neg.ModifiedProperties,
			Label:               neg.MatchLabel,
			Metadata:            neg.Metadata,
		},
	}

	if err := snk.Append(ctx, t); err != nil {
		metrics.IncCounter("pairgen_sink_errors_total", 1, metrics.Labels{"kind": e.SinkCfg.Kind})
		return &PersistenceError{Kind: e.SinkCfg.Kind, Err: err}
	}
	return nil
}

// negativeSubject picks the subject the negative sample is drawn from.
func (e *Engine) negativeSubject(p Params, shared catalog.PropertySet) (string, catalog.PropertySet, error) {
	if !p.CrossSubjectNegatives {
		return p.Subject, shared, nil
	}
	subjects, err := e.Catalog.SubjectsOf(p.Domain)
	if err != nil {
		return "", nil, err
	}
	s := subjects[e.Rand.Intn(len(subjects))]
	negShared, err := e.Catalog.SharedProperties(s)
	if err != nil {
		return "", nil, err
	}
	return s, negShared, nil
}

// negativeName picks a schema name from the negative subject that differs
// from the target name. A subject with no other name is terminal when the
// subject is fixed, retryable when subjects are drawn at random.
func (e *Engine) negativeName(subject, targetName string, crossSubject bool) (string, error) {
	names, err := e.Catalog.SchemasOf(subject)
	if err != nil {
		return "", err
	}
	candidates := names[:0:0]
	for _, n := range names {
		if n != targetName {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		err := &catalog.EmptyCatalogError{Scope: "negative", Key: subject}
		if crossSubject {
			// Another subject may be drawn on the next attempt.
			return "", &GenerationError{Locator: subject, Err: err}
		}
		return "", err
	}
	return candidates[e.Rand.Intn(len(candidates))], nil
}

// pick draws k distinct properties from the set uniformly at random.
func (e *Engine) pick(set catalog.PropertySet, k int) catalog.PropertySet {
	if k <= 0 {
		return catalog.PropertySet{}
	}
	sorted := set.Sorted()
	perm := e.Rand.Perm(len(sorted))

	out := make(catalog.PropertySet, k)
	for _, idx := range perm[:k] {
		out[sorted[idx]] = struct{}{}
	}
	return out
}

// retryable classifies one attempt failure. Generation, sampling and
// persistence failures are worth a fresh draw; everything else aborts.
func retryable(err error) bool {
	var genErr *GenerationError
	var sampErr *SamplingError
	var persErr *PersistenceError
	return errors.As(err, &genErr) || errors.As(err, &sampErr) || errors.As(err, &persErr)
}
