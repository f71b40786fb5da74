package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if CDSS_CONFIG is set
//  3. env (prefix CDSS_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("CDSS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: CDSS_ADDR, CDSS_MODEL_PATH, ...
	// Keys keep their underscores to match the koanf struct tags.
	envProvider := env.Provider("CDSS_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "cdss_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.ModelPath == "":
		return fmt.Errorf("%w: model_path must not be empty", ErrInvalidConfig)
	case cfg.RecentCapacity < 1:
		return fmt.Errorf("%w: recent_capacity must be positive", ErrInvalidConfig)
	case cfg.MaxRecentLimit < 1:
		return fmt.Errorf("%w: max_recent_limit must be positive", ErrInvalidConfig)
	case cfg.AppendTimeoutMS < 1:
		return fmt.Errorf("%w: append_timeout_ms must be positive", ErrInvalidConfig)
	case cfg.SpreadsheetID != "" && cfg.CredentialsFile == "":
		return fmt.Errorf("%w: credentials_file required when spreadsheet_id is set", ErrInvalidConfig)
	}
	return nil
}
