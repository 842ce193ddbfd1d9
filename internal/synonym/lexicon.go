// Package synonym perturbs field names: lexicon-driven random renaming of
// mixed-case keys and recursive snake_case rewriting of whole records.
package synonym

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Synonym is one near-synonym candidate for a word. Similarity is a 0-1
// path-similarity score measured against the word's first candidate, so the
// first candidate of a non-empty list always scores 1.
type Synonym struct {
	Lemma      string  `json:"lemma"`
	Similarity float64 `json:"similarity"`
}

// Lexicon answers single-word synonym lookups. An empty result is valid and
// means the word has no entries; callers must degrade gracefully.
//
// Implementations must be safe for concurrent reads.
type Lexicon interface {
	SynonymsOf(word string) []Synonym
}

// FileLexicon is a Lexicon backed by a JSON table loaded once at startup:
//
//	{"temperature": [{"lemma": "temperature", "similarity": 1.0},
//	                 {"lemma": "warmth", "similarity": 0.25}], ...}
//
// Lookups are case-insensitive. The zero value is a valid empty lexicon.
type FileLexicon map[string][]Synonym

// LoadLexicon reads a JSON lexicon file. An empty path yields an empty
// lexicon rather than an error, so synonym renaming can be configured off
// simply by not pointing at a file.
func LoadLexicon(path string) (FileLexicon, error) {
	if path == "" {
		return FileLexicon{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("synonym: open lexicon: %w", err)
	}
	var raw map[string][]Synonym
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("synonym: decode lexicon: %w", err)
	}
	lex := make(FileLexicon, len(raw))
	for w, syns := range raw {
		lex[strings.ToLower(w)] = syns
	}
	return lex, nil
}

// SynonymsOf implements Lexicon.
func (l FileLexicon) SynonymsOf(word string) []Synonym {
	return l[strings.ToLower(word)]
}
