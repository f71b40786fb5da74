// Package tier maps a dialysis-initiation probability to a discrete
// clinical risk category.
package tier

// Fixed clinical thresholds. These are part of the decision-support
// contract, not tunables derived from data.
const (
	highThreshold     = 0.75
	moderateThreshold = 0.40
)

// Tier is the discretized risk bucket derived from a probability.
type Tier int

const (
	Low Tier = iota
	Moderate
	High
)

// ForProbability buckets a probability. Total over [0,1]: p > 0.75 is
// HIGH, 0.40 < p <= 0.75 is MODERATE, everything else is LOW. The
// boundaries themselves fall into the lower bucket.
func ForProbability(p float64) Tier {
	switch {
	case p > highThreshold:
		return High
	case p > moderateThreshold:
		return Moderate
	default:
		return Low
	}
}

// String returns the canonical tier name.
func (t Tier) String() string {
	switch t {
	case High:
		return "HIGH"
	case Moderate:
		return "MODERATE"
	default:
		return "LOW"
	}
}

// Message returns the clinical guidance shown alongside the tier.
func (t Tier) Message() string {
	switch t {
	case High:
		return "HIGH RISK: Consider Dialysis Initiation"
	case Moderate:
		return "MODERATE RISK: Monitor Closely"
	default:
		return "LOW RISK: Conservative Management"
	}
}

// MarshalText encodes the tier as its canonical name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
