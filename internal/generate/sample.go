package generate

import (
	"context"
	"math"

	"pairgen/internal/catalog"
	"pairgen/internal/noise"
	"pairgen/internal/record"
	"pairgen/internal/sample"
	"pairgen/internal/synonym"
)

// sampleParams drives one GenerateSample call.
type sampleParams struct {
	shape           sample.Shape
	locator         string
	domain          string
	synBatchRatio   float64
	enableSnakeCase bool
	matchLabel      float64
	excluded        catalog.PropertySet
	retained        catalog.PropertySet
}

// GenerateSample synthesizes one perturbed sample:
//
//  1. fabricate a schema-conformant record for the locator
//  2. flag free-text leaves, then delete every excluded property subtree
//  3. blank the flagged free-text values
//  4. rename a random batch of keys with synonyms (ratio of the key count)
//  5. optionally snake_case every key of the perturbed copy
//
// The returned Generated keeps both the perturbed record and the
// post-exclusion original, plus the full perturbation account.
func (e *Engine) generateSample(ctx context.Context, p sampleParams) (*sample.Generated, error) {
	rec, err := e.Gen.Generate(ctx, p.locator, p.shape)
	if err != nil {
		return nil, &GenerationError{Locator: p.locator, Err: err}
	}

	unfitting := noise.Paths(rec)

	for _, key := range p.excluded.Sorted() {
		record.DeleteKey(rec, key)
	}
	for _, path := range unfitting {
		record.ClearPath(rec, path)
	}

	modified := record.CloneRecord(rec)
	modifiedProps := map[string]string{}
	if p.synBatchRatio > 0 {
		count := int(math.Floor(float64(len(modified)) * p.synBatchRatio))

		eligible := catalog.NewPropertySet(record.Keys(modified)...).Diff(p.retained).Sorted()
		if count > len(eligible) {
			return nil, &SamplingError{Requested: count, Population: len(eligible)}
		}

		perm := e.Rand.Perm(len(eligible))
		for _, idx := range perm[:count] {
			old := eligible[idx]
			renamed := e.Renamer.RandomizeKey(old)
			modifiedProps[old] = renamed

			v := modified[old]
			delete(modified, old)
			modified[renamed] = v
		}
	}

	if p.enableSnakeCase {
		modified = synonym.SnakeCaseKeys(modified).(record.Record)
	}

	subject, name, err := catalog.ParseSchemaURL(e.BaseURL, p.locator)
	if err != nil {
		return nil, &GenerationError{Locator: p.locator, Err: err}
	}

	if unfitting == nil {
		unfitting = []string{}
	}
	return &sample.Generated{
		Modified:            modified,
		Original:            rec,
		ExcludedProperties:  p.excluded.Sorted(),
		UnfittingProperties: unfitting,
		ModifiedProperties:  modifiedProps,
		MatchLabel:          p.matchLabel,
		Metadata: sample.Metadata{
			Format:    p.shape,
			SchemaURL: p.locator,
			Domain:    p.domain,
			Subject:   subject,
			Name:      name,
		},
	}, nil
}
