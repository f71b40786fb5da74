package model

import (
	"math"
	"time"
)

// Timestamp layout used by the research log.
const caseTimeLayout = "2006-01-02 15:04:05"

// Probability is rounded to this many decimals before logging.
const probabilityDecimals = 3

// CaseRow is one flattened research-log entry: the observation plus the
// rounded prediction. Write-once; the remote store is append-only.
type CaseRow struct {
	Timestamp   time.Time
	Observation Observation
	Probability float64
}

// Values flattens the row into the positional layout the remote store
// expects: timestamp, seven numeric fields, fluid grade, encephalopathy
// flag, urine output, rounded probability. The column order is fixed and
// must not change without migrating the spreadsheet.
func (r CaseRow) Values() []any {
	o := r.Observation
	return []any{
		r.Timestamp.Format(caseTimeLayout),
		o.Creatinine,
		o.DeltaCreatinine24h,
		o.Potassium,
		o.Bicarbonate,
		o.BUN,
		o.PHLevel,
		o.FluidOverloadGrade,
		o.EncephalopathyFlag(),
		o.UrineOutput24h,
		RoundProbability(r.Probability),
	}
}

// RoundProbability rounds a probability to the precision stored in the
// research log.
func RoundProbability(p float64) float64 {
	shift := math.Pow10(probabilityDecimals)
	return math.Round(p*shift) / shift
}
