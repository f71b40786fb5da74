package modelstore

import "context"

// Static is a Model returning a fixed probability. Used by tests and by
// local development when no artifact is present.
type Static struct {
	P     float64
	Order []string
	Err   error
}

// NewStatic builds a Static model.
func NewStatic(p float64, order []string) *Static {
	return &Static{P: p, Order: order}
}

// Score returns the fixed probability, or the configured error.
func (s *Static) Score(_ context.Context, _ []float64) (float64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return s.P, nil
}

// FeatureOrder returns the configured training order.
func (s *Static) FeatureOrder() []string { return s.Order }

// Close is a no-op.
func (s *Static) Close() error { return nil }
