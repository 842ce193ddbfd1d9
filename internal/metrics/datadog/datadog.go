// Package datadog implements a Datadog backend for the internal/metrics
// package.
//
// Flushing model:
//   - worker goroutines buffer metrics in-memory (fast, lock-protected)
//   - a background loop submits buffered metrics on a ticker (default 60s)
//   - Close() stops the loop and performs one final flush
//
// Long generation runs therefore produce a time series rather than one spike
// at exit, and short runs still ship their tail on shutdown. A SIGKILL skips
// the final flush; no backend can fix that.
package datadog

import (
	"context"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"pairgen/internal/metrics"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

// Metric names accepted by this backend. Anything else is dropped.
const (
	MetricTriplets       = "pairgen_triplets_total"
	MetricAttempts       = "pairgen_attempts_total"
	MetricSinkErrors     = "pairgen_sink_errors_total"
	MetricSampleDuration = "pairgen_sample_duration_seconds"
)

// Options controls Datadog backend configuration.
type Options struct {
	// JobName becomes tag "job:<name>" on every metric.
	// If empty, defaults to "pairgen".
	JobName string

	// Tags are extra Datadog tags (e.g. []string{"env:prod", "service:pairgen"}).
	Tags []string

	// FlushEvery controls how often buffered metrics are submitted.
	// If <= 0, defaults to 60 seconds.
	FlushEvery time.Duration

	// Unexported test seams. Production code never sets them; unit tests use
	// them to avoid real network submission and nondeterministic clocks.
	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker
	submitter metricsSubmitter
}

// metricsSubmitter is the minimal slice of the Datadog SDK this backend
// needs. The SDK exposes a concrete *datadogV2.MetricsApi; depending on this
// interface instead lets tests swap in a fake.
type metricsSubmitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// Backend implements metrics.Backend for Datadog.
type Backend struct {
	api metricsSubmitter
	ctx context.Context

	flushEvery time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	baseTags []string

	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker

	mu sync.Mutex

	tripletCounts map[string]float64 // subject\x00name\x00shape -> count
	attemptCounts map[string]float64 // subject\x00name\x00status -> count
	sinkErrCounts map[string]float64 // sink kind -> count
	durSamples    map[string][]float64
}

func resolveEnvTag() string {
	if v := strings.TrimSpace(os.Getenv("ENV")); v != "" {
		return "env:" + v
	}
	if v := strings.TrimSpace(os.Getenv("DD_ENV")); v != "" {
		return "env:" + v
	}
	return "env:unknown"
}

// NewBackend constructs a Datadog backend using the official client.
//
// Edge cases:
//   - If opts.FlushEvery <= 0, defaults to 60s.
//   - If opts.JobName is empty, defaults to "pairgen".
//   - Environment tag selection uses ENV then DD_ENV, otherwise env:unknown.
//
// Network errors surface from Flush(), not from construction.
func NewBackend(parent context.Context, opts Options) (*Backend, error) {
	job := opts.JobName
	if job == "" {
		job = "pairgen"
	}

	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}

	baseTags := make([]string, 0, 2+len(opts.Tags))
	baseTags = append(baseTags, resolveEnvTag(), "job:"+job)
	baseTags = append(baseTags, opts.Tags...)

	nowFn := opts.now
	if nowFn == nil {
		nowFn = time.Now
	}
	newTicker := opts.newTicker
	if newTicker == nil {
		newTicker = time.NewTicker
	}

	submitter := opts.submitter
	if submitter == nil {
		cfg := dd.NewConfiguration()
		client := dd.NewAPIClient(cfg)
		submitter = datadogV2.NewMetricsApi(client)
	}

	b := &Backend{
		api:        submitter,
		ctx:        dd.NewDefaultContext(parent),
		flushEvery: flushEvery,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),

		baseTags: baseTags,

		now:       nowFn,
		newTicker: newTicker,

		tripletCounts: make(map[string]float64),
		attemptCounts: make(map[string]float64),
		sinkErrCounts: make(map[string]float64),
		durSamples:    make(map[string][]float64),
	}

	go b.loop()
	return b, nil
}

func (b *Backend) loop() {
	defer close(b.doneCh)

	t := b.newTicker(b.flushEvery)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			_ = b.Flush()
		case <-b.stopCh:
			return
		}
	}
}

// Close stops the background flush loop and performs one final Flush().
// Close-once semantics: a second Close panics on the closed channel.
func (b *Backend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	return b.Flush()
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if delta <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch name {
	case MetricTriplets:
		b.tripletCounts[tripleKey(labels["subject"], labels["name"], labels["shape"])] += delta

	case MetricAttempts:
		status := labels["status"]
		if status == "" {
			status = "unknown"
		}
		b.attemptCounts[tripleKey(labels["subject"], labels["name"], status)] += delta

	case MetricSinkErrors:
		kind := labels["kind"]
		if kind == "" {
			kind = "unknown"
		}
		b.sinkErrCounts[kind] += delta

	default:
		// Unknown counters are dropped.
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if value < 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch name {
	case MetricSampleDuration:
		k := tripleKey(labels["subject"], labels["name"], labels["shape"])
		b.durSamples[k] = append(b.durSamples[k], value)

	default:
		// Unknown histograms are dropped.
	}
}

// snapshot is the detached buffer state a flush submits. Flush resets the
// buffers under the lock and builds the payload out-of-lock.
type snapshot struct {
	tripletCounts map[string]float64
	attemptCounts map[string]float64
	sinkErrCounts map[string]float64
	durSamples    map[string][]float64
}

func (b *Backend) snapshotAndReset() snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := snapshot{
		tripletCounts: b.tripletCounts,
		attemptCounts: b.attemptCounts,
		sinkErrCounts: b.sinkErrCounts,
		durSamples:    b.durSamples,
	}

	b.tripletCounts = make(map[string]float64)
	b.attemptCounts = make(map[string]float64)
	b.sinkErrCounts = make(map[string]float64)
	b.durSamples = make(map[string][]float64)

	return s
}

func (s snapshot) isEmpty() bool {
	return len(s.tripletCounts) == 0 &&
		len(s.attemptCounts) == 0 &&
		len(s.sinkErrCounts) == 0 &&
		len(s.durSamples) == 0
}

// Flush submits buffered metrics to Datadog and resets local buffers.
//
// Buffers reset even when submission fails, so generation never blocks on a
// metrics outage; delivery is best effort.
func (b *Backend) Flush() error {
	snap := b.snapshotAndReset()
	if snap.isEmpty() {
		return nil
	}

	series := b.buildSeries(snap, b.now().Unix())
	payload := datadogV2.MetricPayload{Series: series}

	_, _, err := b.api.SubmitMetrics(b.ctx, payload, *datadogV2.NewSubmitMetricsOptionalParameters())
	return err
}

// buildSeries constructs Datadog series for a snapshot at a fixed timestamp.
// Pure: no locks, no network, no clocks. Naming and tagging here are an
// operational contract.
func (b *Backend) buildSeries(s snapshot, nowUnix int64) []datadogV2.MetricSeries {
	series := make([]datadogV2.MetricSeries, 0, len(s.tripletCounts)+len(s.attemptCounts)+16)

	for k, v := range s.tripletCounts {
		if v == 0 {
			continue
		}
		subject, name, shape := splitTripleKey(k)
		tags := withTags(b.baseTags, "subject:"+subject, "name:"+name, "shape:"+shape)
		series = append(series, countSeries("pairgen.triplets.total", v, tags, nowUnix))
	}

	for k, v := range s.attemptCounts {
		if v == 0 {
			continue
		}
		subject, name, status := splitTripleKey(k)
		tags := withTags(b.baseTags, "subject:"+subject, "name:"+name, "status:"+status)
		series = append(series, countSeries("pairgen.attempts.total", v, tags, nowUnix))
	}

	for kind, v := range s.sinkErrCounts {
		if v == 0 {
			continue
		}
		tags := withTags(b.baseTags, "kind:"+kind)
		series = append(series, countSeries("pairgen.sink.errors.total", v, tags, nowUnix))
	}

	for k, samples := range s.durSamples {
		if len(samples) == 0 {
			continue
		}
		cp := append([]float64(nil), samples...)
		sort.Float64s(cp)

		subject, name, shape := splitTripleKey(k)
		tags := withTags(b.baseTags, "subject:"+subject, "name:"+name, "shape:"+shape)

		prefix := "pairgen.sample.duration_seconds"
		series = append(series, gaugeSeries(prefix+".p50", percentileNearestRank(cp, 0.50), tags, nowUnix))
		series = append(series, gaugeSeries(prefix+".p90", percentileNearestRank(cp, 0.90), tags, nowUnix))
		series = append(series, gaugeSeries(prefix+".p95", percentileNearestRank(cp, 0.95), tags, nowUnix))
		series = append(series, gaugeSeries(prefix+".p99", percentileNearestRank(cp, 0.99), tags, nowUnix))
		series = append(series, gaugeSeries(prefix+".max", cp[len(cp)-1], tags, nowUnix))
		series = append(series, gaugeSeries(prefix+".samples", float64(len(cp)), tags, nowUnix))
	}

	return series
}

func countSeries(metric string, value float64, tags []string, nowUnix int64) datadogV2.MetricSeries {
	return datadogV2.MetricSeries{
		Metric: metric,
		Type:   datadogV2.METRICINTAKETYPE_COUNT.Ptr(),
		Points: []datadogV2.MetricPoint{
			{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(value)},
		},
		Tags: tags,
	}
}

func gaugeSeries(metric string, value float64, tags []string, nowUnix int64) datadogV2.MetricSeries {
	return datadogV2.MetricSeries{
		Metric: metric,
		Type:   datadogV2.METRICINTAKETYPE_GAUGE.Ptr(),
		Points: []datadogV2.MetricPoint{
			{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(value)},
		},
		Tags: tags,
	}
}

func tripleKey(a, b, c string) string {
	return a + "\x00" + b + "\x00" + c
}

func splitTripleKey(k string) (a, b, c string) {
	parts := strings.SplitN(k, "\x00", 3)
	for len(parts) < 3 {
		parts = append(parts, "unknown")
	}
	return parts[0], parts[1], parts[2]
}

func withTags(base []string, extras ...string) []string {
	out := make([]string, 0, len(base)+len(extras))
	out = append(out, base...)
	out = append(out, extras...)
	return out
}

func percentileNearestRank(s []float64, p float64) float64 {
	n := len(s)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return s[0]
	}
	if p >= 1 {
		return s[n-1]
	}
	idx := int(p*float64(n-1) + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return s[idx]
}

var _ metrics.Backend = (*Backend)(nil)

// ParseTagsCSV parses comma-separated tags like "env:prod,service:pairgen".
func ParseTagsCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
