// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New(); Load layers an optional YAML file and env vars on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// FetchQueueSize bounds the in-memory catalog fetch queue.
	FetchQueueSize int `koanf:"fetch_queue_size"`

	// WorkerCount sets the number of catalog fetch workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the feedback deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxRecommendationLimit caps the per-request recommendation limit.
	MaxRecommendationLimit int `koanf:"max_recommendation_limit"`

	// DefaultRecommendationLimit applies when a request omits the limit.
	DefaultRecommendationLimit int `koanf:"default_recommendation_limit"`

	// MaxOutfits caps the number of outfits assembled per request.
	MaxOutfits int `koanf:"max_outfits"`

	// TrendingLimit is the default size of the trending item list.
	TrendingLimit int `koanf:"trending_limit"`

	// DataDir is the directory for the on-disk document store.
	DataDir string `koanf:"data_dir"`

	// CatalogFetchSize is how many items each fetch job requests per keyword.
	CatalogFetchSize int `koanf:"catalog_fetch_size"`

	// OutfitSeed seeds outfit pool sampling for reproducible assembly.
	OutfitSeed int64 `koanf:"outfit_seed"`

	// Scoring weights. They must sum to 1.
	FitWeight      float64 `koanf:"fit_weight"`
	StyleWeight    float64 `koanf:"style_weight"`
	TrendWeight    float64 `koanf:"trend_weight"`
	FeedbackWeight float64 `koanf:"feedback_weight"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:                   "info",
		Addr:                       ":9080",
		FetchQueueSize:             1024,
		WorkerCount:                runtime.NumCPU() * 2,
		DedupeSize:                 50_000,
		MaxRecommendationLimit:     50,
		DefaultRecommendationLimit: 10,
		MaxOutfits:                 5,
		TrendingLimit:              10,
		DataDir:                    "data",
		CatalogFetchSize:           20,
		OutfitSeed:                 42,
		FitWeight:                  0.4,
		StyleWeight:                0.3,
		TrendWeight:                0.2,
		FeedbackWeight:             0.1,
	}
	return c
}
