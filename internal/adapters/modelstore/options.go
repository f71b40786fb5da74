package modelstore

import "path/filepath"

// loadConfig carries artifact-adjacent paths resolved during Load.
type loadConfig struct {
	libPath    string
	schemaPath string
}

func newLoadConfig(modelPath string) *loadConfig {
	dir := filepath.Dir(modelPath)
	return &loadConfig{
		libPath:    filepath.Join(dir, "libonnxruntime.so"),
		schemaPath: modelPath + ".features.json",
	}
}

// Option applies a configuration option to Load.
type Option func(*loadConfig)

// WithLibraryPath overrides the onnxruntime shared library location.
// Default: libonnxruntime.so next to the model artifact.
func WithLibraryPath(path string) Option {
	return func(c *loadConfig) {
		if path != "" {
			c.libPath = path
		}
	}
}

// WithSchemaPath overrides the sidecar feature-order file location.
// Default: <model>.features.json.
func WithSchemaPath(path string) Option {
	return func(c *loadConfig) {
		if path != "" {
			c.schemaPath = path
		}
	}
}
