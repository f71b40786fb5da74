package modelstore

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// onnxModel wraps a DynamicAdvancedSession for a single-input tabular
// classifier exported to ONNX.
type onnxModel struct {
	mu         sync.Mutex
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	width      int64
	classes    int64
	order      []string
}

// newONNXModel loads the artifact and validates its tensor layout: one
// float input of shape [batch, width] and a probability output of shape
// [batch, classes].
func newONNXModel(modelPath, libPath string, order []string) (*onnxModel, error) {
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("%w: initializing runtime: %w", ErrModelUnavailable, err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading model info: %w", ErrModelUnavailable, err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("%w: expected 1 input tensor, got %d", ErrModelUnavailable, len(inputs))
	}
	inDims := inputs[0].Dimensions
	if len(inDims) != 2 {
		return nil, fmt.Errorf("%w: expected 2D input tensor, got %v", ErrModelUnavailable, inDims)
	}
	width := inDims[1]
	if width < 1 {
		return nil, fmt.Errorf("%w: input width must be static, got %v", ErrModelUnavailable, inDims)
	}
	if order != nil && int64(len(order)) != width {
		return nil, fmt.Errorf("%w: schema lists %d features, model takes %d", ErrInvalidSchema, len(order), width)
	}

	// Classifier exports often carry a label output alongside the
	// probability tensor; prefer the latter by name, else take the last.
	if len(outputs) == 0 {
		return nil, fmt.Errorf("%w: model has no outputs", ErrModelUnavailable)
	}
	out := outputs[len(outputs)-1]
	for _, o := range outputs {
		if o.Name == "probabilities" || o.Name == "output_probability" {
			out = o
			break
		}
	}
	classes := int64(1)
	if len(out.Dimensions) == 2 && out.Dimensions[1] > 0 {
		classes = out.Dimensions[1]
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: creating session options: %w", ErrModelUnavailable, err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(1)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{out.Name},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: creating session: %w", ErrModelUnavailable, err)
	}

	return &onnxModel{
		session:    session,
		inputName:  inputs[0].Name,
		outputName: out.Name,
		width:      width,
		classes:    classes,
		order:      order,
	}, nil
}

// Score runs one inference. For two-class outputs the positive-class
// probability is returned; single-column outputs are taken as-is.
func (m *onnxModel) Score(ctx context.Context, vec []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrScoreFailed, err)
	}
	if int64(len(vec)) != m.width {
		return 0, fmt.Errorf("%w: got %d features, model takes %d", ErrScoreFailed, len(vec), m.width)
	}

	data := make([]float32, len(vec))
	for i, v := range vec {
		data[i] = float32(v)
	}

	// The session mutates internal scratch state during Run; serialize.
	m.mu.Lock()
	defer m.mu.Unlock()

	in, err := ort.NewTensor(ort.NewShape(1, m.width), data)
	if err != nil {
		return 0, fmt.Errorf("%w: creating input tensor: %w", ErrScoreFailed, err)
	}
	defer in.Destroy()

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, m.classes))
	if err != nil {
		return 0, fmt.Errorf("%w: creating output tensor: %w", ErrScoreFailed, err)
	}
	defer out.Destroy()

	if err := m.session.Run([]ort.Value{in}, []ort.Value{out}); err != nil {
		return 0, fmt.Errorf("%w: inference: %w", ErrScoreFailed, err)
	}

	probs := out.GetData()
	if len(probs) == 0 {
		return 0, fmt.Errorf("%w: empty output tensor", ErrScoreFailed)
	}
	p := float64(probs[len(probs)-1])
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("%w: probability %f outside [0,1]", ErrScoreFailed, p)
	}
	return p, nil
}

// FeatureOrder returns the declared training column order, nil when the
// artifact shipped no sidecar schema.
func (m *onnxModel) FeatureOrder() []string {
	if m.order == nil {
		return nil
	}
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Close releases the inference session.
func (m *onnxModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	err := m.session.Destroy()
	m.session = nil
	return err
}
