package generate

import "fmt"

// GenerationError wraps a failure to synthesize an example record for a
// schema locator. Retryable: the next attempt fetches and fabricates again.
type GenerationError struct {
	Locator string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate: sample for %s: %v", e.Locator, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SamplingError reports a synonym batch that asked for more keys than the
// record has eligible ones. Retryable: the next attempt draws a fresh record.
type SamplingError struct {
	Requested  int
	Population int
}

func (e *SamplingError) Error() string {
	return fmt.Sprintf("generate: sample %d keys from population of %d", e.Requested, e.Population)
}

// PersistenceError wraps a sink failure for one triplet. Retryable: the slot
// is regenerated and appended again.
type PersistenceError struct {
	Kind string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("generate: persist triplet to %s sink: %v", e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ExhaustedError reports a triplet slot whose retryable failures hit the
// attempt ceiling. It is terminal for the pipeline: something structural is
// wrong (unreachable schema host, hostile schema, broken sink) and more
// retries would spin forever.
type ExhaustedError struct {
	Locator   string
	Depth     int
	Iteration int
	Attempts  int
	LastErr   error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("generate: slot depth=%d iteration=%d for %s exhausted after %d attempts: %v",
		e.Depth, e.Iteration, e.Locator, e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }
