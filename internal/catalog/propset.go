package catalog

import "sort"

// PropertySet is a set of dotted attribute-path strings.
type PropertySet map[string]struct{}

// NewPropertySet builds a set from a list of paths, ignoring empty entries.
func NewPropertySet(paths ...string) PropertySet {
	out := make(PropertySet, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		out[p] = struct{}{}
	}
	return out
}

// Has reports membership.
func (s PropertySet) Has(p string) bool {
	_, ok := s[p]
	return ok
}

// Clone returns an independent copy.
func (s PropertySet) Clone() PropertySet {
	out := make(PropertySet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// Intersect returns the elements present in both sets.
func (s PropertySet) Intersect(other PropertySet) PropertySet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(PropertySet)
	for p := range small {
		if large.Has(p) {
			out[p] = struct{}{}
		}
	}
	return out
}

// Diff returns the elements of s not present in other.
func (s PropertySet) Diff(other PropertySet) PropertySet {
	out := make(PropertySet)
	for p := range s {
		if !other.Has(p) {
			out[p] = struct{}{}
		}
	}
	return out
}

// Union returns the combined elements of both sets.
func (s PropertySet) Union(other PropertySet) PropertySet {
	out := make(PropertySet, len(s)+len(other))
	for p := range s {
		out[p] = struct{}{}
	}
	for p := range other {
		out[p] = struct{}{}
	}
	return out
}

// Sorted returns the elements as a sorted slice. Randomized consumers sample
// from this slice so that set iteration order never leaks into outputs.
func (s PropertySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
