package synonym

import (
	"math/rand"
	"reflect"
	"testing"

	"pairgen/internal/record"
)

func newTestRenamer(lex Lexicon) *Renamer {
	return NewRenamer(lex, rand.New(rand.NewSource(1)))
}

// TestRandomizeKey_EmptyLexicon verifies the identity behavior: with no
// synonym entries at all, keys come back case-normalized but otherwise
// unchanged.
func TestRandomizeKey_EmptyLexicon(t *testing.T) {
	t.Parallel()
	r := newTestRenamer(FileLexicon{})

	tests := []string{"temperature", "deviceId", "dateObserved", "batteryLevel"}
	for _, key := range tests {
		if got := r.RandomizeKey(key); got != key {
			t.Fatalf("RandomizeKey(%q)=%q, want identity", key, got)
		}
	}
}

// TestRandomizeKey_FirstCharLower verifies the result always starts
// lower-case and is never empty.
func TestRandomizeKey_FirstCharLower(t *testing.T) {
	t.Parallel()
	lex := FileLexicon{
		"temperature": {{Lemma: "Warmth", Similarity: 0.5}},
	}
	r := newTestRenamer(lex)

	got := r.RandomizeKey("temperature")
	if got == "" {
		t.Fatalf("RandomizeKey returned empty string")
	}
	if got[0] < 'a' || got[0] > 'z' {
		t.Fatalf("RandomizeKey(%q)=%q, want lower-case first char", "temperature", got)
	}
	if got != "warmth" {
		t.Fatalf("RandomizeKey(%q)=%q, want %q", "temperature", got, "warmth")
	}
}

// TestRandomizeKey_PerWordReplacement verifies word splitting, per-word
// lookup, and camelCase recombination.
func TestRandomizeKey_PerWordReplacement(t *testing.T) {
	t.Parallel()
	lex := FileLexicon{
		"device": {{Lemma: "appliance", Similarity: 0.5}},
	}
	r := newTestRenamer(lex)

	if got := r.RandomizeKey("deviceId"); got != "applianceId" {
		t.Fatalf("RandomizeKey(deviceId)=%q, want applianceId", got)
	}
}

// TestRandomizeKey_SimilarityFloor verifies candidates at or below the
// threshold are never picked.
func TestRandomizeKey_SimilarityFloor(t *testing.T) {
	t.Parallel()
	lex := FileLexicon{
		"device": {
			{Lemma: "thingamajig", Similarity: 0.1},
			{Lemma: "doohickey", Similarity: 0.05},
		},
	}
	r := newTestRenamer(lex)

	if got := r.RandomizeKey("deviceId"); got != "deviceId" {
		t.Fatalf("RandomizeKey(deviceId)=%q, want identity when all candidates below floor", got)
	}
}

// TestRandomizeKey_UnderscoreLemmasStripped verifies multi-word lemmas never
// introduce underscores into camelCase keys.
func TestRandomizeKey_UnderscoreLemmasStripped(t *testing.T) {
	t.Parallel()
	lex := FileLexicon{
		"battery": {{Lemma: "heat_energy", Similarity: 0.5}},
	}
	r := newTestRenamer(lex)

	got := r.RandomizeKey("batteryLevel")
	if got != "heatEnergyLevel" {
		t.Fatalf("RandomizeKey(batteryLevel)=%q, want heatEnergyLevel", got)
	}
}

// TestSplitCamelWords verifies case-transition splitting, acronym runs
// included.
func TestSplitCamelWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{in: "temperature", want: []string{"temperature"}},
		{in: "deviceId", want: []string{"device", "Id"}},
		{in: "dateObserved", want: []string{"date", "Observed"}},
		{in: "parseHTTPCode", want: []string{"parse", "HTTP", "Code"}},
		{in: "temp-sensor", want: []string{"temp-sensor"}},
		{in: "", want: nil},
	}
	for _, tc := range tests {
		if got := splitCamelWords(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("splitCamelWords(%q)=%v, want %v", tc.in, got, tc.want)
		}
	}
}

// TestCamelToSnake verifies the two-pass underscore insertion.
func TestCamelToSnake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "deviceId", want: "device_id"},
		{in: "dateObserved", want: "date_observed"},
		{in: "timeZone", want: "time_zone"},
		{in: "HTTPCode", want: "http_code"},
		{in: "already_snake", want: "already_snake"},
		{in: "id", want: "id"},
	}
	for _, tc := range tests {
		if got := CamelToSnake(tc.in); got != tc.want {
			t.Fatalf("CamelToSnake(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

// TestSnakeCaseKeys verifies recursive key rewriting through maps and
// sequences while values pass through untouched.
func TestSnakeCaseKeys(t *testing.T) {
	t.Parallel()

	in := record.Record{
		"deviceId": 1,
		"dateObserved": map[string]any{
			"timeZone": "UTC",
		},
		"sensorList": []any{
			map[string]any{"batteryLevel": 0.9},
		},
	}
	got := SnakeCaseKeys(in).(record.Record)

	want := record.Record{
		"device_id": 1,
		"date_observed": map[string]any{
			"time_zone": "UTC",
		},
		"sensor_list": []any{
			map[string]any{"battery_level": 0.9},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SnakeCaseKeys()=%v, want %v", got, want)
	}

	if in["deviceId"] != 1 {
		t.Fatalf("input mutated")
	}
}

// TestLoadLexicon_EmptyPath verifies the configured-off path.
func TestLoadLexicon_EmptyPath(t *testing.T) {
	t.Parallel()

	lex, err := LoadLexicon("")
	if err != nil {
		t.Fatalf("LoadLexicon(\"\") err=%v", err)
	}
	if got := lex.SynonymsOf("anything"); len(got) != 0 {
		t.Fatalf("empty lexicon returned candidates: %v", got)
	}
}
