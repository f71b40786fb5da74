// Package features assembles the fixed-schema feature vector the risk
// model scores. Column order must exactly match the order the model was
// trained with; a silent mismatch corrupts every prediction, so unknown
// feature names fail loudly instead of being guessed around.
package features

import (
	"fmt"

	"github.com/nephroworks/cdss/internal/domain/model"
)

// Canonical feature names, in training order. This is the fallback schema
// used when the model artifact carries no column metadata.
const (
	Creatinine           = "creatinine"
	DeltaCreatinine24h   = "delta_cr_24h"
	Potassium            = "potassium"
	Bicarbonate          = "bicarbonate"
	BUN                  = "bun"
	PHLevel              = "ph_level"
	FluidOverloadGrade   = "fluid_overload_grade"
	UremicEncephalopathy = "uremic_encephalopathy"
	UrineOutput24h       = "urine_output_24h"
)

// Count is the width of a complete feature vector.
const Count = 9

// CanonicalOrder returns the fallback feature order. The returned slice is
// a fresh copy on every call.
func CanonicalOrder() []string {
	return []string{
		Creatinine,
		DeltaCreatinine24h,
		Potassium,
		Bicarbonate,
		BUN,
		PHLevel,
		FluidOverloadGrade,
		UremicEncephalopathy,
		UrineOutput24h,
	}
}

// values maps an observation onto its named scalar encoding.
func values(obs model.Observation) map[string]float64 {
	return map[string]float64{
		Creatinine:           obs.Creatinine,
		DeltaCreatinine24h:   obs.DeltaCreatinine24h,
		Potassium:            obs.Potassium,
		Bicarbonate:          obs.Bicarbonate,
		BUN:                  obs.BUN,
		PHLevel:              obs.PHLevel,
		FluidOverloadGrade:   float64(obs.FluidOverloadGrade),
		UremicEncephalopathy: float64(obs.EncephalopathyFlag()),
		UrineOutput24h:       obs.UrineOutput24h,
	}
}

// Build encodes an observation as a vector following order. A nil or empty
// order falls back to CanonicalOrder. Every name in order must be a known
// feature and every feature must appear exactly once; anything else
// returns an error rather than silently mis-scoring.
func Build(obs model.Observation, order []string) ([]float64, error) {
	if len(order) == 0 {
		order = CanonicalOrder()
	}
	if len(order) != Count {
		return nil, fmt.Errorf("%w: got %d features, want %d", ErrSchemaMismatch, len(order), Count)
	}

	vals := values(obs)
	vec := make([]float64, 0, Count)
	seen := make(map[string]bool, Count)
	for _, name := range order {
		v, ok := vals[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown feature %q", ErrSchemaMismatch, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate feature %q", ErrSchemaMismatch, name)
		}
		seen[name] = true
		vec = append(vec, v)
	}
	return vec, nil
}

// BaselineVector encodes per-feature reference values following order,
// applying the same schema rules as Build. Features missing from the map
// default to zero.
func BaselineVector(baseline map[string]float64, order []string) ([]float64, error) {
	if len(order) == 0 {
		order = CanonicalOrder()
	}
	if len(order) != Count {
		return nil, fmt.Errorf("%w: got %d features, want %d", ErrSchemaMismatch, len(order), Count)
	}

	known := values(model.Observation{})
	vec := make([]float64, 0, Count)
	for _, name := range order {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("%w: unknown feature %q", ErrSchemaMismatch, name)
		}
		vec = append(vec, baseline[name])
	}
	return vec, nil
}
