package explain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nephroworks/cdss/internal/domain/explain"
	"github.com/nephroworks/cdss/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

// linearScorer scores a vector as a weighted sum plus intercept, so exact
// attributions are known in closed form.
type linearScorer struct {
	weights   []float64
	intercept float64
}

func (s *linearScorer) Score(_ context.Context, vec []float64) (float64, error) {
	p := s.intercept
	for i, v := range vec {
		p += s.weights[i] * v
	}
	return p, nil
}

// constScorer always returns the same probability.
type constScorer struct{ p float64 }

func (s *constScorer) Score(context.Context, []float64) (float64, error) { return s.p, nil }

// failScorer fails after a number of successful calls.
type failScorer struct {
	calls int
	after int
}

func (s *failScorer) Score(context.Context, []float64) (float64, error) {
	s.calls++
	if s.calls > s.after {
		return 0, errors.New("unsupported model type")
	}
	return 0.5, nil
}

func TestExplainAdditivity(t *testing.T) {
	Convey("Given a linear model and a fixed vector", t, func() {
		names := features.CanonicalOrder()
		scorer := &linearScorer{
			weights:   []float64{0.05, 0.1, 0.02, -0.01, 0.003, -0.04, 0.06, 0.2, -0.0001},
			intercept: 0.1,
		}
		vec := []float64{2.0, 0.3, 5.1, 18.0, 52.0, 7.25, 2, 1, 400.0}
		base := []float64{1.0, 0.0, 4.2, 24.0, 18.0, 7.4, 0, 0, 1500.0}

		res, err := explain.Explain(context.Background(), scorer, names, vec, base)

		Convey("Then contributions sum with the baseline to the raw prediction", func() {
			So(err, ShouldBeNil)
			sum := res.Baseline
			for _, a := range res.Attributions {
				sum += a.Contribution
			}
			So(sum, ShouldAlmostEqual, res.Prediction, 1e-9)
		})

		Convey("And for a linear model each contribution matches its weighted delta", func() {
			So(err, ShouldBeNil)
			for i, a := range res.Attributions {
				So(a.Feature, ShouldEqual, names[i])
				So(a.Contribution, ShouldAlmostEqual, scorer.weights[i]*(vec[i]-base[i]), 1e-9)
			}
		})
	})
}

func TestExplainConstantModel(t *testing.T) {
	Convey("Given a model with no feature sensitivity", t, func() {
		names := features.CanonicalOrder()
		vec := make([]float64, features.Count)
		base := make([]float64, features.Count)
		for i := range vec {
			vec[i] = float64(i)
		}

		res, err := explain.Explain(context.Background(), &constScorer{p: 0.83}, names, vec, base)

		Convey("Then all contributions are zero and additivity still holds", func() {
			So(err, ShouldBeNil)
			So(res.Prediction, ShouldEqual, 0.83)
			So(res.Baseline, ShouldEqual, 0.83)
			for _, a := range res.Attributions {
				So(a.Contribution, ShouldAlmostEqual, 0, 1e-12)
			}
		})
	})
}

func TestExplainFailures(t *testing.T) {
	Convey("Given misaligned inputs", t, func() {
		_, err := explain.Explain(context.Background(), &constScorer{p: 0.5},
			[]string{"a"}, []float64{1, 2}, []float64{0, 0})
		So(errors.Is(err, explain.ErrExplainFailed), ShouldBeTrue)
	})

	Convey("Given a model that fails mid-attribution", t, func() {
		names := features.CanonicalOrder()
		vec := make([]float64, features.Count)
		base := make([]float64, features.Count)

		_, err := explain.Explain(context.Background(), &failScorer{after: 3}, names, vec, base)

		Convey("Then the failure is wrapped with the attribution sentinel", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, explain.ErrExplainFailed), ShouldBeTrue)
		})
	})
}
