// Package config resolves the generation run configuration from the
// environment. Command-line flags (handled in cmd/) take precedence over
// these values; the environment takes precedence over the defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"pairgen/internal/catalog"
)

// Config is the full configuration surface of a generation run.
type Config struct {
	// Catalog and lexicon inputs.
	CatalogPath string
	LexiconPath string
	BaseURL     string

	// What to generate.
	Domain  string
	Subject string
	Name    string

	// How much to generate.
	Iterations        int
	Depth             int
	DepthMaxThreshold int
	MaxAttempts       int

	// How to perturb.
	SynBatchRatio      float64
	EnableSnakeCase    bool
	AnyNegativeSubject bool
	RetainedProperties []string

	// Output surfaces.
	NormalizedEnabled bool
	KeyValuesEnabled  bool
	OutDir            string
	SinkKind          string
	SinkDSN           string
}

// FromEnv reads every setting from the environment, applying defaults for
// unset variables. Malformed numeric or boolean values are an error rather
// than a silent default: a typo in GEN_DEPTH should not quietly generate
// nothing.
func FromEnv() (Config, error) {
	cfg := Config{
		CatalogPath: envString("CATALOG_PATH", "catalog.json"),
		LexiconPath: envString("LEXICON_PATH", ""),
		BaseURL:     envString("SCHEMA_BASE_URL", ""),

		Domain:  envString("SDM_DOMAIN", ""),
		Subject: envString("SDM_SUBJECT", ""),
		Name:    envString("SDM_NAME", ""),

		OutDir:   envString("OUT_DIR", "./output"),
		SinkKind: envString("SINK_KIND", "jsonl"),
		SinkDSN:  envString("SINK_DSN", ""),

		RetainedProperties: splitCSV(envString("RETAINED_SHARED_PROPERTIES", "id,type,@context")),
	}

	var err error
	if cfg.Iterations, err = envInt("GEN_ITERATIONS", 10); err != nil {
		return Config{}, err
	}
	if cfg.Depth, err = envInt("GEN_DEPTH", 0); err != nil {
		return Config{}, err
	}
	if cfg.DepthMaxThreshold, err = envInt("GEN_DEPTH_MAX_THR", 5); err != nil {
		return Config{}, err
	}
	if cfg.MaxAttempts, err = envInt("GEN_MAX_ATTEMPTS", 25); err != nil {
		return Config{}, err
	}
	if cfg.SynBatchRatio, err = envFloat("SYN_BATCH_RATIO", 0.0); err != nil {
		return Config{}, err
	}
	if cfg.EnableSnakeCase, err = envBool("ENABLE_SNAKE_CASE", false); err != nil {
		return Config{}, err
	}
	if cfg.AnyNegativeSubject, err = envBool("ANY_NEGATIVE_SUBJECT", false); err != nil {
		return Config{}, err
	}
	if cfg.NormalizedEnabled, err = envBool("OUT_NORMALIZED_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.KeyValuesEnabled, err = envBool("OUT_KEYVALUES_ENABLED", false); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// RetainedSet returns the retained property list as a set.
func (c Config) RetainedSet() catalog.PropertySet {
	return catalog.NewPropertySet(c.RetainedProperties...)
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer: %w", key, v, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a number: %w", key, v, err)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("config: %s=%q is not a boolean: %w", key, v, err)
	}
	return b, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
