package config

import (
	"strings"
	"testing"
)

// TestFromEnv_Defaults verifies the documented defaults for an empty
// environment.
func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() err=%v", err)
	}

	if cfg.CatalogPath != "catalog.json" {
		t.Fatalf("CatalogPath=%q", cfg.CatalogPath)
	}
	if cfg.OutDir != "./output" {
		t.Fatalf("OutDir=%q", cfg.OutDir)
	}
	if cfg.SinkKind != "jsonl" {
		t.Fatalf("SinkKind=%q", cfg.SinkKind)
	}
	if cfg.Iterations != 10 || cfg.Depth != 0 || cfg.DepthMaxThreshold != 5 || cfg.MaxAttempts != 25 {
		t.Fatalf("numeric defaults: %+v", cfg)
	}
	if cfg.SynBatchRatio != 0 {
		t.Fatalf("SynBatchRatio=%v", cfg.SynBatchRatio)
	}
	if cfg.EnableSnakeCase || cfg.AnyNegativeSubject || cfg.KeyValuesEnabled {
		t.Fatalf("boolean defaults: %+v", cfg)
	}
	if !cfg.NormalizedEnabled {
		t.Fatalf("NormalizedEnabled default false")
	}

	want := []string{"id", "type", "@context"}
	if len(cfg.RetainedProperties) != len(want) {
		t.Fatalf("RetainedProperties=%v", cfg.RetainedProperties)
	}
	for i := range want {
		if cfg.RetainedProperties[i] != want[i] {
			t.Fatalf("RetainedProperties=%v", cfg.RetainedProperties)
		}
	}
}

// TestFromEnv_Overrides verifies the environment wins over defaults and
// values are trimmed.
func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SDM_SUBJECT", "dataModel.Device")
	t.Setenv("SDM_NAME", "Device")
	t.Setenv("GEN_ITERATIONS", " 7 ")
	t.Setenv("GEN_DEPTH", "3")
	t.Setenv("SYN_BATCH_RATIO", "0.25")
	t.Setenv("ENABLE_SNAKE_CASE", "true")
	t.Setenv("OUT_KEYVALUES_ENABLED", "1")
	t.Setenv("SINK_KIND", "postgres")
	t.Setenv("SINK_DSN", "postgres://localhost/pairgen")
	t.Setenv("RETAINED_SHARED_PROPERTIES", "id, type")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() err=%v", err)
	}

	if cfg.Subject != "dataModel.Device" || cfg.Name != "Device" {
		t.Fatalf("scope: %+v", cfg)
	}
	if cfg.Iterations != 7 || cfg.Depth != 3 {
		t.Fatalf("Iterations=%d Depth=%d", cfg.Iterations, cfg.Depth)
	}
	if cfg.SynBatchRatio != 0.25 || !cfg.EnableSnakeCase || !cfg.KeyValuesEnabled {
		t.Fatalf("perturbation settings: %+v", cfg)
	}
	if cfg.SinkKind != "postgres" || cfg.SinkDSN != "postgres://localhost/pairgen" {
		t.Fatalf("sink settings: %+v", cfg)
	}
	if len(cfg.RetainedProperties) != 2 || cfg.RetainedProperties[1] != "type" {
		t.Fatalf("RetainedProperties=%v", cfg.RetainedProperties)
	}
}

// TestFromEnv_Malformed verifies typos fail loudly instead of defaulting.
func TestFromEnv_Malformed(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"GEN_DEPTH", "five"},
		{"GEN_ITERATIONS", "10x"},
		{"SYN_BATCH_RATIO", "quarter"},
		{"OUT_KEYVALUES_ENABLED", "maybe"},
		{"ANY_NEGATIVE_SUBJECT", "2"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := FromEnv()
			if err == nil {
				t.Fatalf("%s=%q accepted", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.key) {
				t.Fatalf("error %v does not name %s", err, tc.key)
			}
		})
	}
}

// TestRetainedSet verifies list-to-set conversion.
func TestRetainedSet(t *testing.T) {
	cfg := Config{RetainedProperties: []string{"id", "type", "@context"}}
	set := cfg.RetainedSet()
	for _, p := range cfg.RetainedProperties {
		if !set.Has(p) {
			t.Fatalf("retained set missing %q", p)
		}
	}
	if set.Has("serialNumber") {
		t.Fatalf("retained set has stray member")
	}
}
