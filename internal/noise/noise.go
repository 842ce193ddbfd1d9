// Package noise flags leaf values in generated records that look like
// uncontrolled free text (descriptions, remarks) rather than structured
// tokens (identifiers, URNs, codes, numbers). The pair generator blanks
// those values so the embedding model never trains on gibberish prose.
package noise

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"pairgen/internal/record"
)

// Reject shapes: values matching any of these are structured tokens, never
// sentences. The scheme and decimal patterns match at the start of the value
// on purpose (urn:ngsi-ld:Device:001 and 2024-01-02T10:00:00Z must both stay
// unflagged even though their tails contain extra punctuation).
var (
	wordOnly   = regexp.MustCompile(`^\w+$`)
	hyphenPair = regexp.MustCompile(`^\w+-\w+$`)
	schemeLike = regexp.MustCompile(`^\w+:[\w/]`)
	decimalish = regexp.MustCompile(`^\d+.\d+`)

	// Accept shape: at least one leading word-character run followed by at
	// least one more character of any kind.
	sentence = regexp.MustCompile(`^\w+(\W|\S)+$`)
)

// IsSentence reports whether a leaf value's string form looks like
// natural-language free text.
func IsSentence(s string) bool {
	if wordOnly.MatchString(s) ||
		hyphenPair.MatchString(s) ||
		schemeLike.MatchString(s) ||
		decimalish.MatchString(s) {
		return false
	}
	return sentence.MatchString(s)
}

// Paths walks v recursively (mapping keys, sequence indices) and returns the
// dotted path of every scalar leaf whose string form matches the sentence
// shape. Paths are root-relative with the leading separator stripped, and
// sorted for deterministic downstream behavior.
func Paths(v any) []string {
	var out []string
	walk(v, "", &out)
	sort.Strings(out)
	return out
}

func walk(v any, prefix string, out *[]string) {
	switch t := v.(type) {
	case record.Record:
		walkMap(map[string]any(t), prefix, out)
	case map[string]any:
		walkMap(t, prefix, out)
	case []any:
		for i, item := range t {
			walk(item, prefix+"."+strconv.Itoa(i), out)
		}
	default:
		s, ok := leafString(v)
		if !ok {
			return
		}
		if IsSentence(s) {
			*out = append(*out, strings.TrimPrefix(prefix, "."))
		}
	}
}

func walkMap(m map[string]any, prefix string, out *[]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		walk(m[k], prefix+"."+k, out)
	}
}

// leafString renders the scalar leaf kinds the classifier inspects: strings,
// integers and floating values (including json.Number from streaming
// decodes). Booleans and nulls are never free text.
func leafString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}
