// Package app provides the core service that runs the assessment pipeline
// and implements the dependencies required by the HTTP API.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nephroworks/cdss/internal/adapters/modelstore"
	"github.com/nephroworks/cdss/internal/adapters/repository"
	"github.com/nephroworks/cdss/internal/domain/explain"
	"github.com/nephroworks/cdss/internal/domain/features"
	"github.com/nephroworks/cdss/internal/domain/model"
	"github.com/nephroworks/cdss/internal/domain/tier"
	"github.com/nephroworks/cdss/pkg/logger"
	"github.com/nephroworks/cdss/pkg/metrics"
)

const defaultAppendTimeout = 10 * time.Second

// CaseWriter appends one flat case row to the research log.
type CaseWriter interface {
	Append(ctx context.Context, row []any) error
}

// Service runs the assessment pipeline. The model handle is loaded once
// before Start and never mutated afterward; everything else is
// request-scoped.
type Service struct {
	mu sync.RWMutex

	model  modelstore.Model
	writer CaseWriter
	recent repository.Store

	baseline       map[string]float64
	recentCapacity int
	appendTimeout  time.Duration

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModel sets the loaded risk model handle. A nil model puts the
// service into degraded mode: assessments fail with a clear
// model-unavailable error instead of crashing.
func WithModel(m modelstore.Model) Option {
	return func(s *Service) { s.model = m }
}

// WithCaseWriter sets the research-log appender. Nil leaves case logging
// unconfigured; opted-in saves then report failure without side effects.
func WithCaseWriter(w CaseWriter) Option {
	return func(s *Service) { s.writer = w }
}

// WithRecentStore sets the recent-case store.
func WithRecentStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.recent = store
		}
	}
}

// WithRecentCapacity bounds the default recent-case store.
func WithRecentCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentCapacity = n
		}
	}
}

// WithBaseline sets per-feature reference values used for attribution.
func WithBaseline(baseline map[string]float64) Option {
	return func(s *Service) {
		if baseline != nil {
			s.baseline = baseline
		}
	}
}

// WithAppendTimeout bounds a single research-log append.
func WithAppendTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.appendTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		baseline:       map[string]float64{},
		recentCapacity: 256,
		appendTimeout:  defaultAppendTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start wires remaining components and marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.recent == nil {
		s.recent = repository.NewRingStore(repository.WithCapacity(s.recentCapacity))
	}

	metrics.SetModelLoaded(s.model != nil)
	s.started = true

	s.logger.Info(ctx, "assessment service started",
		logger.Bool("model_loaded", s.model != nil),
		logger.Bool("case_logging", s.writer != nil),
		logger.Int("recent_capacity", s.recentCapacity),
	)
	return nil
}

// Stop releases the model handle.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.model != nil {
		if err := s.model.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing model", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "assessment service stopped")
}

// Assess runs the synchronous pipeline for one submission: validate,
// build the feature vector, score, tier, then the optional attribution and
// research-log stages. The optional stages carry their own error
// boundaries; their failures become warnings or a save status and never
// block the primary result.
func (s *Service) Assess(ctx context.Context, req model.Submission) (model.Assessment, error) {
	s.mu.RLock()
	m := s.model
	s.mu.RUnlock()

	if m == nil {
		metrics.RecordAssessmentError()
		return model.Assessment{}, modelstore.ErrModelUnavailable
	}

	if err := req.Observation.Validate(); err != nil {
		metrics.RecordAssessmentError()
		return model.Assessment{}, err
	}

	order := m.FeatureOrder()
	vec, err := features.Build(req.Observation, order)
	if err != nil {
		metrics.RecordAssessmentError()
		return model.Assessment{}, err
	}

	start := time.Now()
	p, err := m.Score(ctx, vec)
	metrics.RecordScoreLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordAssessmentError()
		return model.Assessment{}, fmt.Errorf("scoring observation: %w", err)
	}

	t := tier.ForProbability(p)
	assessment := model.Assessment{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Probability: p,
		Percent:     fmt.Sprintf("%.1f%%", p*100),
		Tier:        t.String(),
		Message:     t.Message(),
	}

	if req.Explain {
		s.attachAttributions(ctx, m, order, vec, &assessment)
	}
	if req.Save {
		assessment.Save = s.appendCase(ctx, req.Observation, assessment)
	}

	metrics.RecordAssessment(assessment.Tier)
	s.recent.Record(ctx, model.CaseSummary{
		ID:          assessment.ID,
		Timestamp:   assessment.Timestamp,
		Probability: model.RoundProbability(p),
		Tier:        assessment.Tier,
		Saved:       assessment.Save.OK,
	})

	s.logger.Info(ctx, "assessment completed",
		logger.String("id", assessment.ID),
		logger.Float64("probability", model.RoundProbability(p)),
		logger.String("tier", assessment.Tier),
		logger.Bool("saved", assessment.Save.OK),
	)
	return assessment, nil
}

// attachAttributions runs the explanation stage inside its own error
// boundary. Failures degrade to a warning on the assessment.
func (s *Service) attachAttributions(ctx context.Context, m modelstore.Model, order []string, vec []float64, a *model.Assessment) {
	names := order
	if len(names) == 0 {
		names = features.CanonicalOrder()
	}

	base, err := features.BaselineVector(s.baseline, order)
	if err == nil {
		var res explain.Result
		res, err = explain.Explain(ctx, m, names, vec, base)
		if err == nil {
			a.Attributions = res.Attributions
			baseline := res.Baseline
			a.Baseline = &baseline
			return
		}
	}

	metrics.RecordExplainFailure()
	s.logger.Warn(ctx, "attribution unavailable", logger.Error(err))
	a.Warnings = append(a.Warnings, fmt.Sprintf("attribution unavailable: %v", err))
}

// appendCase runs the opt-in research-log stage inside its own error
// boundary. The assessment stays valid whatever happens here.
func (s *Service) appendCase(ctx context.Context, obs model.Observation, a model.Assessment) model.SaveStatus {
	status := model.SaveStatus{Attempted: true}

	if s.writer == nil {
		status.Error = "case logging is not configured"
		return status
	}

	row := model.CaseRow{
		Timestamp:   a.Timestamp,
		Observation: obs,
		Probability: a.Probability,
	}

	appendCtx, cancel := context.WithTimeout(ctx, s.appendTimeout)
	defer cancel()

	if err := s.writer.Append(appendCtx, row.Values()); err != nil {
		metrics.RecordCaseAppend(false)
		s.logger.Warn(ctx, "research log append failed", logger.Error(err))
		status.Error = err.Error()
		return status
	}

	metrics.RecordCaseAppend(true)
	status.OK = true
	return status
}

// Recent returns up to n recent case summaries, newest first.
func (s *Service) Recent(ctx context.Context, n int) ([]model.CaseSummary, error) {
	s.mu.RLock()
	store := s.recent
	s.mu.RUnlock()
	if store == nil {
		return nil, nil
	}
	return store.Recent(ctx, n)
}

// ModelReady reports whether the risk model handle is loaded.
func (s *Service) ModelReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"modelLoaded": s.model != nil,
		"caseLogging": s.writer != nil,
	}
	if s.recent != nil {
		stats["recentCases"] = s.recent.Count(context.Background())
	}
	return stats
}
