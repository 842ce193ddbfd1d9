// Package example synthesizes schema-conformant example records. The
// generator fetches a JSON Schema document from its locator and fabricates a
// plausible entity payload from the declared properties, in either the
// normalized or the key-values shape.
package example

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sort"
	"strings"

	"pairgen/internal/catalog"
	"pairgen/internal/record"
	"pairgen/internal/sample"
)

// Generator produces one example record for a schema locator.
type Generator interface {
	Generate(ctx context.Context, locator string, shape sample.Shape) (record.Record, error)
}

// HTTPClient is the seam over http.Client that schema fetching goes through.
// Tests substitute a fake to serve schema documents from memory.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// maxSchemaBytes bounds a fetched schema document.
const maxSchemaBytes = 4 << 20

// SchemaGenerator is a Generator backed by live schema documents. The random
// source drives value fabrication; like the other randomized collaborators it
// is owned by a single worker.
type SchemaGenerator struct {
	Client HTTPClient
	Rand   *rand.Rand
}

// NewSchemaGenerator builds a SchemaGenerator around a client and a random
// source. A nil client falls back to http.DefaultClient.
func NewSchemaGenerator(client HTTPClient, rng *rand.Rand) *SchemaGenerator {
	if client == nil {
		client = http.DefaultClient
	}
	return &SchemaGenerator{Client: client, Rand: rng}
}

// schemaDoc is the subset of JSON Schema the generator reads.
type schemaDoc struct {
	Title      string               `json:"title"`
	AllOf      []schemaDoc          `json:"allOf"`
	Properties map[string]*propSpec `json:"properties"`
}

type propSpec struct {
	Type       string               `json:"type"`
	Format     string               `json:"format"`
	Enum       []any                `json:"enum"`
	Examples   []any                `json:"examples"`
	Minimum    *float64             `json:"minimum"`
	Maximum    *float64             `json:"maximum"`
	Items      *propSpec            `json:"items"`
	Properties map[string]*propSpec `json:"properties"`
}

// Generate fetches the schema at locator and fabricates one example record.
// Errors from transport, decoding, or an empty property section all surface;
// the caller decides whether the locator is retryable.
func (g *SchemaGenerator) Generate(ctx context.Context, locator string, shape sample.Shape) (record.Record, error) {
	doc, err := g.fetch(ctx, locator)
	if err != nil {
		return nil, err
	}

	props := map[string]*propSpec{}
	collectProperties(doc, props)
	if len(props) == 0 {
		return nil, fmt.Errorf("example: schema %s declares no properties", locator)
	}

	subject, name, err := catalog.ParseSchemaURL("", locator)
	if err != nil {
		// Non-standard locator; fall back to the schema title.
		subject, name = doc.Title, doc.Title
	}

	rec := record.Record{
		"id":       fmt.Sprintf("urn:ngsi-ld:%s:%06d", name, g.Rand.Intn(1_000_000)),
		"type":     name,
		"@context": contextURL(subject),
	}
	// Fabricate in sorted key order: map iteration order would consume the
	// random source differently on every run, defeating fixed seeds.
	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		switch key {
		case "id", "type", "@context":
			continue
		}
		v := g.fabricate(key, props[key], 0)
		if shape == sample.ShapeNormalized {
			rec[key] = map[string]any{"type": "Property", "value": v}
		} else {
			rec[key] = v
		}
	}
	return rec, nil
}

func (g *SchemaGenerator) fetch(ctx context.Context, locator string) (*schemaDoc, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("example: build request: %w", err)
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("example: fetch schema %s: %w", locator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("example: fetch schema %s: status %d", locator, resp.StatusCode)
	}
	var doc schemaDoc
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSchemaBytes)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("example: decode schema %s: %w", locator, err)
	}
	return &doc, nil
}

// collectProperties flattens a schema's own properties and every allOf
// branch into one map. Later branches win on key collision.
func collectProperties(doc *schemaDoc, into map[string]*propSpec) {
	for k, v := range doc.Properties {
		into[k] = v
	}
	for i := range doc.AllOf {
		collectProperties(&doc.AllOf[i], into)
	}
}

// fabricate invents a value for one property. Enum and example lists take
// precedence; otherwise the declared type and format drive the choice.
func (g *SchemaGenerator) fabricate(key string, spec *propSpec, depth int) any {
	if spec == nil {
		return g.word(key)
	}
	if len(spec.Enum) > 0 {
		return spec.Enum[g.Rand.Intn(len(spec.Enum))]
	}
	if len(spec.Examples) > 0 {
		return spec.Examples[g.Rand.Intn(len(spec.Examples))]
	}

	switch spec.Type {
	case "number", "integer":
		lo, hi := 0.0, 100.0
		if spec.Minimum != nil {
			lo = *spec.Minimum
		}
		if spec.Maximum != nil {
			hi = *spec.Maximum
		}
		if hi <= lo {
			hi = lo + 1
		}
		v := lo + g.Rand.Float64()*(hi-lo)
		if spec.Type == "integer" {
			return int(v)
		}
		return float64(int(v*100)) / 100
	case "boolean":
		return g.Rand.Intn(2) == 0
	case "array":
		if depth >= 3 {
			return []any{}
		}
		return []any{g.fabricate(key, spec.Items, depth+1)}
	case "object":
		if depth >= 3 {
			return map[string]any{}
		}
		keys := make([]string, 0, len(spec.Properties))
		for k := range spec.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := map[string]any{}
		for _, k := range keys {
			out[k] = g.fabricate(k, spec.Properties[k], depth+1)
		}
		return out
	default:
		switch spec.Format {
		case "date-time":
			return "2024-01-01T00:00:00Z"
		case "date":
			return "2024-01-01"
		case "uri":
			return "https://example.org/" + key
		}
		return g.word(key)
	}
}

// word fabricates a short free-ish string seeded by the property name.
func (g *SchemaGenerator) word(key string) string {
	suffix := g.Rand.Intn(1000)
	return fmt.Sprintf("%s-%03d", strings.ToLower(key), suffix)
}

func contextURL(subject string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/smart-data-models/%s/master/context.jsonld", subject)
}
