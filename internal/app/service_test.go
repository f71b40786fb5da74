package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nephroworks/cdss/internal/adapters/modelstore"
	"github.com/nephroworks/cdss/internal/adapters/repository"
	"github.com/nephroworks/cdss/internal/app"
	"github.com/nephroworks/cdss/internal/domain/features"
	"github.com/nephroworks/cdss/internal/domain/model"
	"github.com/nephroworks/cdss/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func fixedObservation() model.Observation {
	return model.Observation{
		Creatinine:         2.0,
		DeltaCreatinine24h: 0.0,
		Potassium:          4.5,
		Bicarbonate:        24.0,
		BUN:                40.0,
		PHLevel:            7.4,
		FluidOverloadGrade: 0,
		UrineOutput24h:     1500.0,
	}
}

// recordingWriter captures appended rows and optionally fails.
type recordingWriter struct {
	rows [][]any
	err  error
}

func (w *recordingWriter) Append(_ context.Context, row []any) error {
	if w.err != nil {
		return w.err
	}
	w.rows = append(w.rows, row)
	return nil
}

func newService(t *testing.T, opts ...app.Option) *app.Service {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	svc := app.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("service start: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestAssessTiers(t *testing.T) {
	Convey("Given the fixed observation from the clinical contract", t, func() {
		obs := fixedObservation()

		Convey("A stub model returning 0.83 yields HIGH at 83.0%", func() {
			svc := newService(t, app.WithModel(modelstore.NewStatic(0.83, nil)))
			a, err := svc.Assess(context.Background(), model.Submission{Observation: obs})
			So(err, ShouldBeNil)
			So(a.Tier, ShouldEqual, "HIGH")
			So(a.Percent, ShouldEqual, "83.0%")
			So(a.Message, ShouldContainSubstring, "Dialysis")
			So(a.ID, ShouldNotBeEmpty)
		})

		Convey("A stub model returning 0.50 yields MODERATE", func() {
			svc := newService(t, app.WithModel(modelstore.NewStatic(0.50, nil)))
			a, err := svc.Assess(context.Background(), model.Submission{Observation: obs})
			So(err, ShouldBeNil)
			So(a.Tier, ShouldEqual, "MODERATE")
		})

		Convey("A stub model returning 0.10 yields LOW", func() {
			svc := newService(t, app.WithModel(modelstore.NewStatic(0.10, nil)))
			a, err := svc.Assess(context.Background(), model.Submission{Observation: obs})
			So(err, ShouldBeNil)
			So(a.Tier, ShouldEqual, "LOW")
		})
	})
}

func TestAssessModelUnavailable(t *testing.T) {
	Convey("Given a service with no loaded model", t, func() {
		svc := newService(t)

		Convey("Then assessment fails with the model-unavailable sentinel", func() {
			_, err := svc.Assess(context.Background(), model.Submission{Observation: fixedObservation()})
			So(err, ShouldNotBeNil)
			So(errors.Is(err, modelstore.ErrModelUnavailable), ShouldBeTrue)
			So(svc.ModelReady(), ShouldBeFalse)
		})
	})
}

func TestAssessValidation(t *testing.T) {
	Convey("Given an implausible observation", t, func() {
		svc := newService(t, app.WithModel(modelstore.NewStatic(0.5, nil)))
		obs := fixedObservation()
		obs.PHLevel = 9.0

		_, err := svc.Assess(context.Background(), model.Submission{Observation: obs})
		So(errors.Is(err, model.ErrInvalidObservation), ShouldBeTrue)
	})
}

func TestAssessDeclaredOrder(t *testing.T) {
	Convey("Given a model declaring a broken training order", t, func() {
		bad := modelstore.NewStatic(0.5, []string{"egfr", "creatinine", "bun", "potassium", "bicarbonate", "ph_level", "fluid_overload_grade", "uremic_encephalopathy", "urine_output_24h"})
		svc := newService(t, app.WithModel(bad))

		Convey("Then the schema mismatch fails loudly instead of mis-scoring", func() {
			_, err := svc.Assess(context.Background(), model.Submission{Observation: fixedObservation()})
			So(errors.Is(err, features.ErrSchemaMismatch), ShouldBeTrue)
		})
	})
}

func TestSaveOptIn(t *testing.T) {
	Convey("Given a service with a working research log", t, func() {
		writer := &recordingWriter{}
		svc := newService(t,
			app.WithModel(modelstore.NewStatic(0.83, nil)),
			app.WithCaseWriter(writer),
		)

		Convey("With save disabled, no append happens", func() {
			a, err := svc.Assess(context.Background(), model.Submission{Observation: fixedObservation()})
			So(err, ShouldBeNil)
			So(a.Save.Attempted, ShouldBeFalse)
			So(writer.rows, ShouldBeEmpty)
		})

		Convey("With save enabled, one positional row is appended", func() {
			a, err := svc.Assess(context.Background(), model.Submission{
				Observation: fixedObservation(),
				Save:        true,
			})
			So(err, ShouldBeNil)
			So(a.Save.Attempted, ShouldBeTrue)
			So(a.Save.OK, ShouldBeTrue)
			So(writer.rows, ShouldHaveLength, 1)
			So(writer.rows[0], ShouldHaveLength, 11)
			So(writer.rows[0][10], ShouldEqual, 0.83)
		})
	})

	Convey("Given a research log that is unavailable", t, func() {
		writer := &recordingWriter{err: errors.New("auth failed")}
		svc := newService(t,
			app.WithModel(modelstore.NewStatic(0.83, nil)),
			app.WithCaseWriter(writer),
		)

		Convey("Then the prediction is returned unchanged and only the save reports failure", func() {
			a, err := svc.Assess(context.Background(), model.Submission{
				Observation: fixedObservation(),
				Save:        true,
			})
			So(err, ShouldBeNil)
			So(a.Tier, ShouldEqual, "HIGH")
			So(a.Percent, ShouldEqual, "83.0%")
			So(a.Save.Attempted, ShouldBeTrue)
			So(a.Save.OK, ShouldBeFalse)
			So(a.Save.Error, ShouldContainSubstring, "auth failed")
		})
	})

	Convey("Given no configured research log", t, func() {
		svc := newService(t, app.WithModel(modelstore.NewStatic(0.2, nil)))

		Convey("Then an opted-in save reports the missing configuration", func() {
			a, err := svc.Assess(context.Background(), model.Submission{
				Observation: fixedObservation(),
				Save:        true,
			})
			So(err, ShouldBeNil)
			So(a.Save.Attempted, ShouldBeTrue)
			So(a.Save.OK, ShouldBeFalse)
			So(a.Save.Error, ShouldContainSubstring, "not configured")
		})
	})
}

func TestAssessExplain(t *testing.T) {
	Convey("Given a service asked for attributions", t, func() {
		svc := newService(t,
			app.WithModel(modelstore.NewStatic(0.83, nil)),
			app.WithBaseline(map[string]float64{
				features.Creatinine:  1.0,
				features.Potassium:   4.2,
				features.Bicarbonate: 24.0,
				features.PHLevel:     7.4,
			}),
		)

		a, err := svc.Assess(context.Background(), model.Submission{
			Observation: fixedObservation(),
			Explain:     true,
		})

		Convey("Then one contribution per feature is attached", func() {
			So(err, ShouldBeNil)
			So(a.Attributions, ShouldHaveLength, features.Count)
			So(a.Baseline, ShouldNotBeNil)
			So(a.Warnings, ShouldBeEmpty)
		})

		Convey("And baseline plus contributions equals the prediction", func() {
			So(err, ShouldBeNil)
			sum := *a.Baseline
			for _, attr := range a.Attributions {
				sum += attr.Contribution
			}
			So(sum, ShouldAlmostEqual, a.Probability, 1e-9)
		})
	})
}

func TestAssessExplainDegradesGracefully(t *testing.T) {
	Convey("Given a model whose attribution re-scoring fails", t, func() {
		m := &flakyModel{okCalls: 1, p: 0.83}
		svc := newService(t, app.WithModel(m))

		a, err := svc.Assess(context.Background(), model.Submission{
			Observation: fixedObservation(),
			Explain:     true,
		})

		Convey("Then the prediction survives with a warning instead of aborting", func() {
			So(err, ShouldBeNil)
			So(a.Tier, ShouldEqual, "HIGH")
			So(a.Attributions, ShouldBeEmpty)
			So(a.Warnings, ShouldHaveLength, 1)
			So(a.Warnings[0], ShouldContainSubstring, "attribution unavailable")
		})
	})
}

func TestRecentAndStats(t *testing.T) {
	Convey("Given completed assessments", t, func() {
		svc := newService(t,
			app.WithModel(modelstore.NewStatic(0.83, nil)),
			app.WithRecentStore(repository.NewRingStore(repository.WithCapacity(8))),
		)
		for i := 0; i < 3; i++ {
			_, err := svc.Assess(context.Background(), model.Submission{Observation: fixedObservation()})
			So(err, ShouldBeNil)
		}

		Convey("Then recent summaries are available newest first", func() {
			got, err := svc.Recent(context.Background(), 2)
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 2)
			So(got[0].Tier, ShouldEqual, "HIGH")
			So(got[0].Probability, ShouldEqual, 0.83)
		})

		Convey("And stats report the pipeline state", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["modelLoaded"], ShouldBeTrue)
			So(stats["caseLogging"], ShouldBeFalse)
			So(stats["recentCases"], ShouldEqual, 3)
		})
	})
}

// flakyModel succeeds for the first okCalls scores, then fails. The first
// call is the primary prediction; later calls belong to attribution.
type flakyModel struct {
	p       float64
	okCalls int
	calls   int
}

func (m *flakyModel) Score(context.Context, []float64) (float64, error) {
	m.calls++
	if m.calls > m.okCalls {
		return 0, errors.New("unsupported model type")
	}
	return m.p, nil
}

func (m *flakyModel) FeatureOrder() []string { return nil }
func (m *flakyModel) Close() error           { return nil }
