// Package config defines service configuration structures and loading hooks.
//
// Conventions follow the rest of the service: defaults come from New,
// file/env layering happens in Load, and external errors are wrapped with
// this package's sentinels.
package config

import (
	"context"
)

// Config contains process configuration for the CDSS risk service.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ModelPath points at the ONNX risk model artifact.
	ModelPath string `koanf:"model_path"`

	// ONNXLibPath points at the onnxruntime shared library. Empty means
	// the library is resolved next to the model artifact.
	ONNXLibPath string `koanf:"onnx_lib_path"`

	// SpreadsheetID identifies the research-log spreadsheet. Empty
	// disables case logging entirely.
	SpreadsheetID string `koanf:"spreadsheet_id"`

	// Worksheet names the sheet that receives case rows.
	Worksheet string `koanf:"worksheet"`

	// CredentialsFile points at the service-account JSON key used for
	// the research log. The service never embeds credentials.
	CredentialsFile string `koanf:"credentials_file"`

	// RecentCapacity bounds the in-memory recent-case store.
	RecentCapacity int `koanf:"recent_capacity"`

	// MaxRecentLimit caps GET /recent?limit.
	MaxRecentLimit int `koanf:"max_recent_limit"`

	// AppendTimeoutMS bounds a single research-log append call.
	AppendTimeoutMS int `koanf:"append_timeout_ms"`

	// Baseline supplies per-feature reference values for attribution,
	// keyed by canonical feature name. Missing features default to zero.
	Baseline map[string]float64 `koanf:"baseline"`
}

// New returns a Config populated with defaults. Context is accepted first
// per the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":8080",
		ModelPath:       "models/nephro_risk.onnx",
		ONNXLibPath:     "",
		SpreadsheetID:   "",
		Worksheet:       "Sheet1",
		CredentialsFile: "",
		RecentCapacity:  256,
		MaxRecentLimit:  100,
		AppendTimeoutMS: 10_000,
		Baseline: map[string]float64{
			"creatinine":            1.0,
			"delta_cr_24h":          0.0,
			"potassium":             4.2,
			"bicarbonate":           24.0,
			"bun":                   18.0,
			"ph_level":              7.4,
			"fluid_overload_grade":  0,
			"uremic_encephalopathy": 0,
			"urine_output_24h":      1500.0,
		},
	}
}
