// Package explain computes per-feature attributions for a single
// prediction. Attributions are additive: baseline + sum(contributions)
// equals the predicted probability.
package explain

import (
	"context"
	"fmt"
	"math"

	"github.com/nephroworks/cdss/internal/domain/model"
)

// Below this, per-feature occlusion effects are treated as all-zero and
// the gap to baseline is spread evenly.
const effectEpsilon = 1e-12

// Scorer is the single model operation attribution needs.
type Scorer interface {
	Score(ctx context.Context, vec []float64) (float64, error)
}

// Result carries the attribution set for one prediction.
type Result struct {
	Prediction   float64
	Baseline     float64
	Attributions []model.Attribution
}

// Explain attributes one prediction feature-by-feature. Each feature's raw
// effect is measured by occlusion: re-scoring the vector with that feature
// swapped for its baseline value. Raw effects are then scaled so the
// contributions sum exactly to prediction minus baseline. Operates on
// exactly one observation per call; costs len(vec)+2 model evaluations.
func Explain(ctx context.Context, scorer Scorer, names []string, vec, base []float64) (Result, error) {
	if len(vec) == 0 || len(vec) != len(base) || len(vec) != len(names) {
		return Result{}, fmt.Errorf("%w: vector, baseline, and names must align", ErrExplainFailed)
	}

	prediction, err := scorer.Score(ctx, vec)
	if err != nil {
		return Result{}, fmt.Errorf("%w: scoring observation: %w", ErrExplainFailed, err)
	}
	baseline, err := scorer.Score(ctx, base)
	if err != nil {
		return Result{}, fmt.Errorf("%w: scoring baseline: %w", ErrExplainFailed, err)
	}

	effects := make([]float64, len(vec))
	occluded := make([]float64, len(vec))
	for i := range vec {
		copy(occluded, vec)
		occluded[i] = base[i]
		p, err := scorer.Score(ctx, occluded)
		if err != nil {
			return Result{}, fmt.Errorf("%w: occluding %s: %w", ErrExplainFailed, names[i], err)
		}
		effects[i] = prediction - p
	}

	total := prediction - baseline
	var sum float64
	for _, e := range effects {
		sum += e
	}

	attrs := make([]model.Attribution, len(vec))
	for i := range vec {
		var contribution float64
		if math.Abs(sum) > effectEpsilon {
			contribution = effects[i] * total / sum
		} else {
			contribution = total / float64(len(vec))
		}
		attrs[i] = model.Attribution{
			Feature:      names[i],
			Value:        vec[i],
			Contribution: contribution,
		}
	}

	return Result{
		Prediction:   prediction,
		Baseline:     baseline,
		Attributions: attrs,
	}, nil
}
