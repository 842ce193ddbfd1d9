// Package metrics is the minimal instrumentation facade the generator code
// depends on. Pipelines call the package-level helpers; the actual backend
// (Datadog, or nothing) is chosen once at startup with SetBackend.
package metrics

import "sync/atomic"

// Labels are free-form metric dimensions.
type Labels map[string]string

// Backend receives metric events. Implementations must be safe for
// concurrent use; workers call these from many goroutines.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
}

// nopBackend drops everything. It is the default so that code can emit
// metrics unconditionally without nil checks.
type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}

// holder keeps the stored concrete type constant across SetBackend calls;
// atomic.Value rejects type changes.
type holder struct {
	b Backend
}

var current atomic.Value // holder

func init() {
	current.Store(holder{b: nopBackend{}})
}

// SetBackend installs the process-wide backend. Passing nil restores the
// no-op backend. Call once during startup, before workers spawn.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	current.Store(holder{b: b})
}

// IncCounter adds delta to a counter on the installed backend.
func IncCounter(name string, delta float64, labels Labels) {
	current.Load().(holder).b.IncCounter(name, delta, labels)
}

// ObserveHistogram records one sample on the installed backend.
func ObserveHistogram(name string, value float64, labels Labels) {
	current.Load().(holder).b.ObserveHistogram(name, value, labels)
}
