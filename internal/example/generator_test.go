package example

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"pairgen/internal/record"
	"pairgen/internal/sample"
)

// fakeClient serves schema documents from memory, keyed by URL.
type fakeClient struct {
	docs   map[string]string
	status int
}

func (f *fakeClient) Do(req *http.Request) (*http.Response, error) {
	body, ok := f.docs[req.URL.String()]
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	if !ok {
		status = http.StatusNotFound
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}, nil
}

const deviceSchema = `{
  "title": "Device",
  "allOf": [
    {"properties": {
      "id": {"type": "string"},
      "type": {"type": "string"},
      "serialNumber": {"type": "string"},
      "batteryLevel": {"type": "number", "minimum": 0, "maximum": 1}
    }},
    {"properties": {
      "category": {"type": "string", "enum": ["sensor", "actuator"]},
      "dateObserved": {"type": "string", "format": "date-time"},
      "controlledAsset": {"type": "array", "items": {"type": "string"}}
    }}
  ]
}`

const deviceURL = "https://raw.githubusercontent.com/smart-data-models/dataModel.Device/master/Device/schema.json"

func newTestGenerator(t *testing.T) *SchemaGenerator {
	t.Helper()
	return NewSchemaGenerator(&fakeClient{docs: map[string]string{deviceURL: deviceSchema}}, rand.New(rand.NewSource(7)))
}

// TestGenerate_Normalized verifies identity fields and the value sub-key
// wrapping of every attribute.
func TestGenerate_Normalized(t *testing.T) {
	t.Parallel()
	g := newTestGenerator(t)

	rec, err := g.Generate(context.Background(), deviceURL, sample.ShapeNormalized)
	if err != nil {
		t.Fatalf("Generate() err=%v", err)
	}

	id, _ := rec["id"].(string)
	if !strings.HasPrefix(id, "urn:ngsi-ld:Device:") {
		t.Fatalf("id=%q, want urn:ngsi-ld:Device: prefix", id)
	}
	if rec["type"] != "Device" {
		t.Fatalf("type=%v, want Device", rec["type"])
	}
	if _, ok := rec["@context"].(string); !ok {
		t.Fatalf("@context missing")
	}

	for _, attr := range []string{"serialNumber", "batteryLevel", "category", "dateObserved", "controlledAsset"} {
		wrapped, ok := rec[attr].(map[string]any)
		if !ok {
			t.Fatalf("attr %q not wrapped: %T", attr, rec[attr])
		}
		if wrapped["type"] != "Property" {
			t.Fatalf("attr %q type=%v, want Property", attr, wrapped["type"])
		}
		if _, ok := wrapped["value"]; !ok {
			t.Fatalf("attr %q missing value sub-key", attr)
		}
	}
}

// TestGenerate_KeyValues verifies flat attribute values and fabrication by
// declared type.
func TestGenerate_KeyValues(t *testing.T) {
	t.Parallel()
	g := newTestGenerator(t)

	rec, err := g.Generate(context.Background(), deviceURL, sample.ShapeKeyValues)
	if err != nil {
		t.Fatalf("Generate() err=%v", err)
	}

	level, ok := rec["batteryLevel"].(float64)
	if !ok {
		t.Fatalf("batteryLevel=%T, want float64", rec["batteryLevel"])
	}
	if level < 0 || level > 1 {
		t.Fatalf("batteryLevel=%v outside declared [0,1]", level)
	}

	cat, ok := rec["category"].(string)
	if !ok || (cat != "sensor" && cat != "actuator") {
		t.Fatalf("category=%v, want one of the enum values", rec["category"])
	}

	if _, ok := rec["controlledAsset"].([]any); !ok {
		t.Fatalf("controlledAsset=%T, want array", rec["controlledAsset"])
	}
	if rec["dateObserved"] != "2024-01-01T00:00:00Z" {
		t.Fatalf("dateObserved=%v", rec["dateObserved"])
	}
}

// TestGenerate_SeedDeterminism verifies equal seeds reproduce the record
// exactly: fabrication must consume the random source in sorted key order,
// never in map iteration order.
func TestGenerate_SeedDeterminism(t *testing.T) {
	t.Parallel()

	gen := func() record.Record {
		g := NewSchemaGenerator(&fakeClient{docs: map[string]string{deviceURL: deviceSchema}}, rand.New(rand.NewSource(9)))
		rec, err := g.Generate(context.Background(), deviceURL, sample.ShapeKeyValues)
		if err != nil {
			t.Fatalf("Generate() err=%v", err)
		}
		return rec
	}

	first := gen()
	for run := 0; run < 5; run++ {
		if got := gen(); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d diverged:\n got %v\nwant %v", run, got, first)
		}
	}
}

// TestGenerate_Errors verifies transport and content failures surface.
func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	g := NewSchemaGenerator(&fakeClient{docs: map[string]string{}}, rand.New(rand.NewSource(1)))
	if _, err := g.Generate(context.Background(), deviceURL, sample.ShapeNormalized); err == nil {
		t.Fatalf("missing schema accepted")
	}

	g = NewSchemaGenerator(&fakeClient{docs: map[string]string{deviceURL: `{"title": "Empty"}`}}, rand.New(rand.NewSource(1)))
	if _, err := g.Generate(context.Background(), deviceURL, sample.ShapeNormalized); err == nil {
		t.Fatalf("property-less schema accepted")
	}

	g = NewSchemaGenerator(&fakeClient{docs: map[string]string{deviceURL: `not json`}}, rand.New(rand.NewSource(1)))
	if _, err := g.Generate(context.Background(), deviceURL, sample.ShapeNormalized); err == nil {
		t.Fatalf("malformed schema accepted")
	}
}
