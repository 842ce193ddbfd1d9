package sample

import (
	"strings"
	"testing"

	"pairgen/internal/record"
)

func testTriplet() *Triplet {
	return &Triplet{
		Target: record.Record{"id": "urn:ngsi-ld:Device:001", "type": "Device"},
		Positive: Side{
			Sample:              record.Record{"id": "urn:ngsi-ld:Device:001"},
			UnfittingProperties: []string{"description"},
			ExcludedProperties:  []string{"serialNumber"},
			ModifiedProperties:  map[string]string{"batteryLevel": "energyLevel"},
			Label:               LabelPositive,
			Metadata:            Metadata{Format: ShapeNormalized, Subject: "dataModel.Device", Name: "Device"},
		},
		Negative: Side{
			Sample:   record.Record{"id": "urn:ngsi-ld:DeviceModel:002"},
			Label:    LabelNegative,
			Metadata: Metadata{Format: ShapeNormalized, Subject: "dataModel.Device", Name: "DeviceModel"},
		},
	}
}

// TestContentHash_Deterministic verifies equal payloads hash equal and the
// hash is a 64-char hex SHA-256.
func TestContentHash_Deterministic(t *testing.T) {
	t.Parallel()

	h1, err := testTriplet().ContentHash()
	if err != nil {
		t.Fatalf("ContentHash() err=%v", err)
	}
	h2, err := testTriplet().ContentHash()
	if err != nil {
		t.Fatalf("ContentHash() err=%v", err)
	}

	if h1 != h2 {
		t.Fatalf("equal triplets hash differently: %s vs %s", h1, h2)
	}
	if len(h1) != 64 || strings.ToLower(h1) != h1 {
		t.Fatalf("hash %q is not lowercase hex sha256", h1)
	}
}

// TestContentHash_PayloadSensitive verifies any payload change flips the hash.
func TestContentHash_PayloadSensitive(t *testing.T) {
	t.Parallel()

	base, err := testTriplet().ContentHash()
	if err != nil {
		t.Fatalf("ContentHash() err=%v", err)
	}

	changed := testTriplet()
	changed.Negative.Sample["id"] = "urn:ngsi-ld:DeviceModel:999"
	got, err := changed.ContentHash()
	if err != nil {
		t.Fatalf("ContentHash() err=%v", err)
	}
	if got == base {
		t.Fatalf("changed payload kept hash %s", got)
	}
}

// TestShapeValid verifies the shape whitelist.
func TestShapeValid(t *testing.T) {
	t.Parallel()

	if !ShapeNormalized.Valid() || !ShapeKeyValues.Valid() {
		t.Fatalf("known shapes reported invalid")
	}
	if Shape("flattened").Valid() {
		t.Fatalf("unknown shape reported valid")
	}
}
