// Package modelstore loads the pre-trained risk model artifact and exposes
// the one scoring operation the pipeline needs. The artifact is loaded once
// per process; the returned handle is immutable and safe for concurrent use.
package modelstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Model is the opaque binary classifier. Score maps a feature vector to a
// dialysis-initiation probability in [0,1]. FeatureOrder returns the
// training column order when the artifact declares one, nil otherwise.
type Model interface {
	Score(ctx context.Context, vec []float64) (float64, error)
	FeatureOrder() []string
	Close() error
}

// Load opens the ONNX artifact at modelPath and builds an inference
// session. The training column order is read from an optional sidecar
// schema file next to the artifact; a missing sidecar means the model
// declares no order and callers fall back to the canonical one.
func Load(ctx context.Context, modelPath string, opts ...Option) (Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	cfg := newLoadConfig(modelPath)
	for _, opt := range opts {
		opt(cfg)
	}

	order, err := readSchema(cfg.schemaPath)
	if err != nil {
		return nil, err
	}

	m, err := newONNXModel(modelPath, cfg.libPath, order)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// readSchema parses the sidecar feature-order file: a JSON array of
// feature names written by the training pipeline. A missing file is not an
// error; a malformed one is, since guessing an order mis-scores silently.
func readSchema(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading schema %s: %w", ErrModelUnavailable, path, err)
	}

	var order []string
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("%w: schema %s: %w", ErrInvalidSchema, path, err)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("%w: schema %s is empty", ErrInvalidSchema, path)
	}
	return order, nil
}
