// Package sample defines the training-sample and triplet types that the
// generator produces and the sinks persist, plus the canonical content hash
// used for idempotent inserts.
package sample

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"pairgen/internal/record"
)

// Shape selects the payload layout of generated records.
type Shape string

const (
	// ShapeNormalized nests every attribute value under a "value" sub-key.
	ShapeNormalized Shape = "normalized"
	// ShapeKeyValues stores attribute values directly under their keys.
	ShapeKeyValues Shape = "keyvalues"
)

// Valid reports whether s is one of the two known shapes.
func (s Shape) Valid() bool {
	return s == ShapeNormalized || s == ShapeKeyValues
}

// Match labels carried by every generated sample. Soft labels, not booleans:
// downstream training treats them as similarity targets.
const (
	LabelPositive = 0.9
	LabelNegative = 0.1
)

// Metadata describes the schema a sample was derived from.
type Metadata struct {
	Format    Shape  `json:"format"`
	SchemaURL string `json:"schemaUrl"`
	Domain    string `json:"domain"`
	Subject   string `json:"subject"`
	Name      string `json:"name"`
}

// Generated is one perturbed sample together with its pristine source record
// and the full account of the perturbations applied.
type Generated struct {
	Modified            record.Record     `json:"modifiedSample"`
	Original            record.Record     `json:"originalSample"`
	ExcludedProperties  []string          `json:"excludedProperties"`
	UnfittingProperties []string          `json:"unfittingProperties"`
	ModifiedProperties  map[string]string `json:"modifiedProperties"`
	MatchLabel          float64           `json:"matchLabel"`
	Metadata            Metadata          `json:"sdmMetadata"`
}

// Side is one leg of a triplet as persisted: the sample payload plus the
// perturbation account and label inherited from its Generated source.
type Side struct {
	Sample              record.Record     `json:"sample"`
	UnfittingProperties []string          `json:"unfittingProperties"`
	ExcludedProperties  []string          `json:"excludedProperties"`
	ModifiedProperties  map[string]string `json:"modifiedProperties"`
	Label               float64           `json:"label"`
	Metadata            Metadata          `json:"sdmMetadata"`
}

// Triplet is one training example: an anchor record, a perturbed positive of
// the same schema, and a verified negative from a different schema. Target is
// the positive's original record (exclusions and blanking applied, renames
// not); positive and negative carry their full perturbation accounts.
type Triplet struct {
	Target   record.Record `json:"target"`
	Positive Side          `json:"positive"`
	Negative Side          `json:"negative"`
}

// ContentHash returns the hex SHA-256 of the triplet's canonical JSON
// encoding. Two triplets with equal payloads hash equal regardless of map
// iteration order, which is what lets the SQL sinks skip duplicate inserts.
func (t *Triplet) ContentHash() (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("sample: marshal triplet for hash: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
