package noise

import (
	"reflect"
	"testing"

	"pairgen/internal/record"
)

// TestIsSentence verifies the free-text classification against the token
// shapes the generator actually produces.
func TestIsSentence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "urn_identifier", in: "urn:ngsi-ld:Device:001", want: false},
		{name: "decimal", in: "23.5", want: false},
		{name: "hyphen_pair", in: "temp-sensor", want: false},
		{name: "single_word", in: "sensor", want: false},
		{name: "http_url", in: "http://example.org/x", want: false},
		{name: "iso_date", in: "2023-01-01", want: false},
		{name: "iso_timestamp", in: "2024-01-02T10:00:00Z", want: false},
		{name: "sentence", in: "A temperature sensor located outdoors.", want: true},
		{name: "two_words", in: "outdoor sensor", want: true},
		{name: "word_with_trailing_punct", in: "observed!", want: true},
		{name: "empty", in: "", want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsSentence(tc.in); got != tc.want {
				t.Fatalf("IsSentence(%q)=%v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

// TestPaths verifies dotted-path collection across nested maps and arrays.
func TestPaths(t *testing.T) {
	t.Parallel()

	rec := record.Record{
		"id":          "urn:ngsi-ld:Device:001",
		"type":        "Device",
		"description": "A temperature sensor located outdoors.",
		"temperature": map[string]any{
			"type":  "Property",
			"value": 23.5,
		},
		"remarks": []any{
			"calibrated",
			"needs a firmware update soon",
		},
		"location": map[string]any{
			"value": map[string]any{
				"note": "mounted on the north wall",
			},
		},
	}

	got := Paths(rec)
	want := []string{
		"description",
		"location.value.note",
		"remarks.1",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Paths()=%v, want %v", got, want)
	}
}

// TestPaths_NumericLeaves verifies integers and floats go through the same
// string-form classification as strings.
func TestPaths_NumericLeaves(t *testing.T) {
	t.Parallel()

	rec := record.Record{
		"count": 42,
		"ratio": 0.75,
	}
	if got := Paths(rec); len(got) != 0 {
		t.Fatalf("Paths()=%v, want none for numeric leaves", got)
	}
}

// TestPaths_Empty verifies nil and empty records yield no paths.
func TestPaths_Empty(t *testing.T) {
	t.Parallel()

	if got := Paths(record.Record{}); len(got) != 0 {
		t.Fatalf("Paths(empty)=%v, want none", got)
	}
	if got := Paths(nil); len(got) != 0 {
		t.Fatalf("Paths(nil)=%v, want none", got)
	}
}
