package synonym

import (
	"math/rand"
	"regexp"
	"strings"

	"pairgen/internal/record"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// minSimilarity is the path-similarity floor a candidate must clear to be
// eligible as a replacement word.
const minSimilarity = 0.1

var (
	snakeHead = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	snakeTail = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// Renamer rewrites camelCase field names using synonym lookups. The random
// source is injected so tests and workers control determinism; a Renamer is
// only as concurrency-safe as its Rand, so each worker owns one.
type Renamer struct {
	Lex  Lexicon
	Rand *rand.Rand

	titler cases.Caser
}

// NewRenamer builds a Renamer around a lexicon and a random source.
func NewRenamer(lex Lexicon, rng *rand.Rand) *Renamer {
	return &Renamer{Lex: lex, Rand: rng, titler: cases.Title(language.English)}
}

// RandomizeKey rewrites one camelCase key word by word: each word is looked
// up in the lexicon and, when eligible candidates exist, replaced by one
// chosen at random; words without candidates pass through, so an empty
// lexicon makes RandomizeKey a case-normalizing identity. Every word is
// title-cased, the words are concatenated with no separator, underscores
// from multi-word lemmas are stripped, and only the first character of the
// result is lowered.
func (r *Renamer) RandomizeKey(key string) string {
	words := splitCamelWords(key)
	if len(words) == 0 {
		return key
	}

	out := make([]string, 0, len(words))
	for _, w := range words {
		repl := r.pickSynonym(strings.ToLower(w))
		if repl == "" {
			repl = w
		}
		// Multi-word lemmas come underscore-joined; each part becomes its
		// own camelCase word.
		for _, part := range strings.Split(repl, "_") {
			if part != "" {
				out = append(out, r.title(part))
			}
		}
	}

	return lowerFirst(strings.Join(out, ""))
}

// pickSynonym returns a random eligible lemma for word, or "" when the
// lexicon has nothing usable.
func (r *Renamer) pickSynonym(word string) string {
	var eligible []string
	for _, s := range r.Lex.SynonymsOf(word) {
		if s.Similarity > minSimilarity && s.Lemma != "" {
			eligible = append(eligible, s.Lemma)
		}
	}
	if len(eligible) == 0 {
		return ""
	}
	return eligible[r.Rand.Intn(len(eligible))]
}

func (r *Renamer) title(s string) string {
	if r.titler == (cases.Caser{}) {
		r.titler = cases.Title(language.English)
	}
	return r.titler.String(s)
}

// SnakeCaseKeys returns a copy of v with every map key rewritten to
// snake_case, recursing through nested maps and arrays. Values are shared,
// not copied; callers that mutate afterwards should clone first.
func SnakeCaseKeys(v any) any {
	switch t := v.(type) {
	case record.Record:
		out := make(record.Record, len(t))
		for k, val := range t {
			out[CamelToSnake(k)] = SnakeCaseKeys(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[CamelToSnake(k)] = SnakeCaseKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = SnakeCaseKeys(val)
		}
		return out
	default:
		return v
	}
}

// CamelToSnake converts a camelCase or PascalCase identifier to snake_case.
// Acronym runs keep a single separator: "HTTPCode" -> "http_code".
func CamelToSnake(s string) string {
	s = snakeHead.ReplaceAllString(s, `${1}_${2}`)
	s = snakeTail.ReplaceAllString(s, `${1}_${2}`)
	return strings.ToLower(s)
}

// splitCamelWords breaks a camelCase identifier into its words. A run of
// uppercase letters counts as one word until its last letter starts the next
// word: "parseHTTPCode" -> ["parse", "HTTP", "Code"]. Digits and hyphens
// attach to the preceding word.
func splitCamelWords(s string) []string {
	var words []string
	runes := []rune(s)
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := false
		switch {
		case isLower(prev) && isUpper(cur):
			boundary = true
		case isUpper(prev) && isUpper(cur) && i+1 < len(runes) && isLower(runes[i+1]):
			boundary = true
		}
		if boundary {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	if start < len(runes) {
		words = append(words, string(runes[start:]))
	}
	return words
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
