// Package config defines gamepulse configuration structures and loading hooks.
//
// Conventions:
// - New(ctx) returns a Config populated with defaults.
// - Load(ctx) layers defaults, an optional YAML file and environment variables.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address of the server, e.g. ":9080".
	Addr string `koanf:"addr"`

	// WindowSeconds is the sliding window length over wall-clock records.
	WindowSeconds int `koanf:"window_seconds"`
	// StepSeconds is the window advance; 0 means WindowSeconds/4.
	StepSeconds int `koanf:"step_seconds"`
	// SpikeThreshold is the normalized score above which a spike is counted.
	SpikeThreshold float64 `koanf:"spike_threshold"`
	// WorstHighlights and BestHighlights bound the exported comment highlights.
	WorstHighlights int `koanf:"worst_highlights"`
	BestHighlights  int `koanf:"best_highlights"`

	// LookbackMinutes is the game-time window preceding a scoring event
	// whose sentiment modulates the adjusted prediction.
	LookbackMinutes float64 `koanf:"lookback_minutes"`

	// DataDir holds raw inputs (records, live scores, scoring plays).
	DataDir string `koanf:"data_dir"`
	// ExportsDir holds exported sentiment series.
	ExportsDir string `koanf:"exports_dir"`
	// OutputDir receives analysis reports.
	OutputDir string `koanf:"output_dir"`
	// ScoringFile is the scoring plays JSON consumed by the analysis.
	ScoringFile string `koanf:"scoring_file"`
	// SkipFiles are export file names the analysis never processes.
	SkipFiles []string `koanf:"skip_files"`

	// StoreBackend selects where exports and reports live: file or redis.
	StoreBackend string `koanf:"store_backend"`
	// RedisAddr, RedisDB and RedisPrefix configure the redis backend.
	RedisAddr   string `koanf:"redis_addr"`
	RedisDB     int    `koanf:"redis_db"`
	RedisPrefix string `koanf:"redis_prefix"`

	// Fetch configures the comment source collaborator.
	Fetch FetchConfig `koanf:"fetch"`
}

// FetchConfig configures comment retrieval.
type FetchConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	UserAgent    string `koanf:"user_agent"`
	// Workers bounds concurrent expansion requests.
	Workers int `koanf:"workers"`
	// RatePerSecond and Burst shape the shared request token bucket.
	RatePerSecond float64 `koanf:"rate_per_second"`
	Burst         int     `koanf:"burst"`
	// CooldownMS is the fixed pause each worker takes between requests.
	CooldownMS int `koanf:"cooldown_ms"`
	// TimeoutMS bounds a single HTTP request.
	TimeoutMS int `koanf:"timeout_ms"`
	// MaxAttempts bounds retries of a single request.
	MaxAttempts int `koanf:"max_attempts"`
	// MaxMore caps children fetched per "more" placeholder.
	MaxMore int `koanf:"max_more"`
	// BatchSize caps IDs per expansion request.
	BatchSize int `koanf:"batch_size"`
	// MaxSeen bounds the IDs one collection remembers; 0 is unbounded.
	MaxSeen int `koanf:"max_seen"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		WindowSeconds:   45,
		StepSeconds:     0,
		SpikeThreshold:  0.3,
		WorstHighlights: 15,
		BestHighlights:  5,
		LookbackMinutes: 0.5,
		DataDir:         "jsons",
		ExportsDir:      "exports",
		OutputDir:       "outputGraphs",
		ScoringFile:     "Data/scoring_plays.json",
		SkipFiles:       []string{"fsuvsvirginia.json", "syracusevsclemson.json"},
		StoreBackend:    "file",
		RedisAddr:       "localhost:6379",
		RedisPrefix:     "gamepulse",
		Fetch: FetchConfig{
			UserAgent:     "gamepulse/0.1",
			Workers:       4,
			RatePerSecond: 2,
			Burst:         1,
			CooldownMS:    500,
			TimeoutMS:     15_000,
			MaxAttempts:   3,
			MaxMore:       5,
			BatchSize:     700,
		},
	}
}

// Validate checks invariants the rest of the program relies on.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WindowSeconds <= 0:
		return fmt.Errorf("%w: window_seconds must be positive", ErrInvalidConfig)
	case c.StepSeconds < 0:
		return fmt.Errorf("%w: step_seconds must not be negative", ErrInvalidConfig)
	case c.LookbackMinutes <= 0:
		return fmt.Errorf("%w: lookback_minutes must be positive", ErrInvalidConfig)
	case c.WorstHighlights < 0 || c.BestHighlights < 0:
		return fmt.Errorf("%w: highlight counts must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.StoreBackend) {
	case "file", "redis":
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	if c.Fetch.BatchSize <= 0 || c.Fetch.MaxAttempts <= 0 {
		return fmt.Errorf("%w: fetch batch_size and max_attempts must be positive", ErrInvalidConfig)
	}
	if c.Fetch.MaxSeen < 0 {
		return fmt.Errorf("%w: fetch max_seen must not be negative", ErrInvalidConfig)
	}
	return nil
}

// StepSecondsOrDefault returns the configured step, or a quarter window
// truncated to whole seconds.
func (c *Config) StepSecondsOrDefault() int {
	if c.StepSeconds > 0 {
		return c.StepSeconds
	}
	if step := c.WindowSeconds / 4; step > 0 {
		return step
	}
	return 1
}
