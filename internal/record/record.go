// Package record provides the nested-record value model shared by the
// generator pipeline: deep clones, dotted-path edits and recursive key
// removal over map[string]any documents decoded from JSON.
package record

import (
	"strconv"
	"strings"
)

// Record is one generated example instance, as decoded from JSON.
//
// Two shapes occur in practice:
//   - Normalized: multi-valued attributes carry a "value" sub-key next to
//     metadata siblings ({"temperature": {"type": "Property", "value": 21}}).
//   - KeyValue: attributes map directly to their scalar/compound value
//     ({"temperature": 21}), one nesting level shallower than Normalized.
type Record map[string]any

// Clone returns a deep copy of v. Maps and slices are copied recursively;
// scalars are returned as-is.
func Clone(v any) any {
	switch t := v.(type) {
	case Record:
		out := make(Record, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	default:
		return v
	}
}

// CloneRecord is Clone specialized to the top-level Record type.
func CloneRecord(r Record) Record {
	if r == nil {
		return nil
	}
	return Clone(r).(Record)
}

// Keys returns the top-level keys of r in unspecified order.
func Keys(r Record) []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	return out
}

// ClearPath blanks the value addressed by a dotted path, tolerating both
// record shapes.
//
// Resolution order:
//  1. Normalized shape: resolve all but the last segment and assign "" at
//     the final segment.
//  2. KeyValue shape: if step 1 lands on a scalar parent (the record is one
//     nesting level shallower than the path implies), resolve all but the
//     last TWO segments and blank there instead.
//
// A lookup failure on either attempt is silently ignored: the field may
// already be absent because a prior exclusion deleted its subtree. Paths are
// computed once against the pre-exclusion record, so this best-effort
// behavior is load-bearing for the whole exclusion pipeline.
func ClearPath(r Record, path string) {
	if r == nil || path == "" {
		return
	}
	segs := strings.Split(path, ".")

	parent, ok := resolve(r, segs[:len(segs)-1])
	if ok && setEmpty(parent, segs[len(segs)-1]) {
		return
	}

	// Scalar parent (or missing leaf container): treat the record as the
	// shallower KeyValue shape and blank one level up.
	if len(segs) < 2 {
		return
	}
	parent, ok = resolve(r, segs[:len(segs)-2])
	if ok {
		setEmpty(parent, segs[len(segs)-2])
	}
}

// setEmpty assigns "" at key within container, returning false when the
// container cannot hold the assignment (scalar parent or bad index).
func setEmpty(container any, key string) bool {
	switch c := container.(type) {
	case Record:
		if _, ok := c[key]; !ok {
			return true // absent leaf: best-effort no-op
		}
		c[key] = ""
		return true
	case map[string]any:
		if _, ok := c[key]; !ok {
			return true
		}
		c[key] = ""
		return true
	case []any:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(c) {
			return true
		}
		c[idx] = ""
		return true
	default:
		// Scalar parent: the caller should retry against the shallower shape.
		return false
	}
}

// resolve walks segs down from root, descending through maps by key and
// slices by numeric index. ok is false when any intermediate segment is
// absent or unaddressable.
func resolve(root any, segs []string) (any, bool) {
	cur := root
	for _, s := range segs {
		switch c := cur.(type) {
		case Record:
			v, ok := c[s]
			if !ok {
				return nil, false
			}
			cur = v
		case map[string]any:
			v, ok := c[s]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(s)
			if err != nil || idx < 0 || idx >= len(c) {
				return nil, false
			}
			cur = c[idx]
		default:
			// Scalar mid-path: surfaced to the caller as a resolvable value so
			// the shape fallback can kick in at the right depth.
			return cur, true
		}
	}
	return cur, true
}

// DeleteKey removes every occurrence of key anywhere inside v, regardless of
// nesting depth. Whole subtrees are removed, not just scalar leaves.
func DeleteKey(v any, key string) {
	switch t := v.(type) {
	case Record:
		delete(t, key)
		for _, val := range t {
			DeleteKey(val, key)
		}
	case map[string]any:
		delete(t, key)
		for _, val := range t {
			DeleteKey(val, key)
		}
	case []any:
		for _, val := range t {
			DeleteKey(val, key)
		}
	}
}
