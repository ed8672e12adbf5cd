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
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if FITFINDR_CONFIG is set
//  3. env (prefix FITFINDR_)
func Load(ctx context.Context) (*Config, error) {
	_ = ctx

	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("FITFINDR_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: FITFINDR_ADDR, FITFINDR_FETCH_QUEUE_SIZE, ...
	// Map env keys like FITFINDR_FETCH_QUEUE_SIZE -> fetch_queue_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("FITFINDR_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "fitfindr_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MaxRecommendationLimit > 0 && c.DefaultRecommendationLimit > c.MaxRecommendationLimit {
		return fmt.Errorf("%w: default_recommendation_limit exceeds max_recommendation_limit", ErrInvalidConfig)
	}
	sum := c.FitWeight + c.StyleWeight + c.TrendWeight + c.FeedbackWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("%w: score weights must sum to 1, got %.3f", ErrInvalidConfig, sum)
	}
	return nil
}
