// Package model defines the clinical domain records shared across the service.
package model

import (
	"fmt"
	"time"
)

// Physiological bounds enforced on submissions. These mirror the input
// ranges of the intake form.
const (
	minPH         = 6.8
	maxPH         = 7.6
	maxFluidGrade = 3
)

// Observation is one patient submission: the nine lab values and clinical
// signs the risk model was trained on.
type Observation struct {
	Creatinine           float64 `json:"creatinine"`
	DeltaCreatinine24h   float64 `json:"delta_cr_24h"`
	Potassium            float64 `json:"potassium"`
	Bicarbonate          float64 `json:"bicarbonate"`
	BUN                  float64 `json:"bun"`
	PHLevel              float64 `json:"ph_level"`
	FluidOverloadGrade   int     `json:"fluid_overload_grade"`
	UremicEncephalopathy bool    `json:"uremic_encephalopathy"`
	UrineOutput24h       float64 `json:"urine_output_24h"`
}

// Validate checks physiological plausibility. Delta creatinine is the only
// field allowed to be negative.
func (o Observation) Validate() error {
	switch {
	case o.Creatinine < 0:
		return fmt.Errorf("%w: creatinine must be non-negative", ErrInvalidObservation)
	case o.Potassium < 0:
		return fmt.Errorf("%w: potassium must be non-negative", ErrInvalidObservation)
	case o.Bicarbonate < 0:
		return fmt.Errorf("%w: bicarbonate must be non-negative", ErrInvalidObservation)
	case o.BUN < 0:
		return fmt.Errorf("%w: bun must be non-negative", ErrInvalidObservation)
	case o.PHLevel < minPH || o.PHLevel > maxPH:
		return fmt.Errorf("%w: ph_level must be within [%.1f, %.1f]", ErrInvalidObservation, minPH, maxPH)
	case o.FluidOverloadGrade < 0 || o.FluidOverloadGrade > maxFluidGrade:
		return fmt.Errorf("%w: fluid_overload_grade must be within [0, %d]", ErrInvalidObservation, maxFluidGrade)
	case o.UrineOutput24h < 0:
		return fmt.Errorf("%w: urine_output_24h must be non-negative", ErrInvalidObservation)
	}
	return nil
}

// EncephalopathyFlag returns the 0/1 encoding the model and the case row use.
func (o Observation) EncephalopathyFlag() int {
	if o.UremicEncephalopathy {
		return 1
	}
	return 0
}

// Submission is one intake-form submission: the observation plus the
// user's explanation and research-log choices.
type Submission struct {
	Observation Observation
	Explain     bool
	Save        bool
}

// Attribution is one feature's signed contribution to a single prediction
// relative to a baseline expectation.
type Attribution struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
}

// SaveStatus reports the outcome of the opt-in research-log append.
type SaveStatus struct {
	Attempted bool   `json:"attempted"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// Assessment is the result of one pipeline run. Created fresh per
// submission and never retained beyond the recent-case store summary.
type Assessment struct {
	ID           string        `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	Probability  float64       `json:"probability"`
	Percent      string        `json:"percent"`
	Tier         string        `json:"tier"`
	Message      string        `json:"message"`
	Attributions []Attribution `json:"attributions,omitempty"`
	Baseline     *float64      `json:"baseline,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`
	Save         SaveStatus    `json:"save"`
}

// CaseSummary is the compact recent-case record kept in memory.
type CaseSummary struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Probability float64   `json:"probability"`
	Tier        string    `json:"tier"`
	Saved       bool      `json:"saved"`
}
