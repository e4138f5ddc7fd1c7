// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"

	"github.com/halverson/rankcast/internal/domain/scoring"
)

// ScoringConfig tunes the rank scoring ladder. Zero values fall back
// to the compiled defaults in the scoring package.
type ScoringConfig struct {
	// CurveSteps is the score ladder for small rank differences,
	// indexed by the absolute difference.
	CurveSteps []float64 `koanf:"curve_steps"`

	// MissingBaseScore and MissingPenalty apply to predictions for
	// players with no performance record that week.
	MissingBaseScore float64 `koanf:"missing_base_score"`
	MissingPenalty   float64 `koanf:"missing_penalty"`
}

// AnalysisConfig tunes the population validation thresholds.
type AnalysisConfig struct {
	// FairnessStdDev is the maximum allowed standard deviation across
	// per-position mean scores.
	FairnessStdDev float64 `koanf:"fairness_std_dev"`

	// DiscriminationMin is the minimum allowed spread-to-range ratio
	// of the score distribution.
	DiscriminationMin float64 `koanf:"discrimination_min"`

	// StabilityStdDev is the maximum allowed standard deviation across
	// per-week mean scores.
	StabilityStdDev float64 `koanf:"stability_std_dev"`
}

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of evaluation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// Scoring tunes the rank difference curve and missing-player policy.
	Scoring ScoringConfig `koanf:"scoring"`

	// Analysis tunes the population validation thresholds.
	Analysis AnalysisConfig `koanf:"analysis"`
}

// New creates a Config using compiled defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use (e.g.,
// loading from env/files) and is currently unused.
func New(_ context.Context) *Config {
	defaults := scoring.DefaultParams()
	c := &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		QueueSize:           100_000,
		WorkerCount:         runtime.NumCPU() * 2,
		DedupeSize:          50_000,
		MaxLeaderboardLimit: 100,
		Scoring: ScoringConfig{
			CurveSteps:       defaults.Curve.Steps,
			MissingBaseScore: defaults.Missing.BaseScore,
			MissingPenalty:   defaults.Missing.Penalty,
		},
		Analysis: AnalysisConfig{
			FairnessStdDev:    5,
			DiscriminationMin: 0.15,
			StabilityStdDev:   3,
		},
	}
	return c
}

// ScoringParams folds the configured overrides into the default scoring
// parameters.
func (c *Config) ScoringParams() scoring.Params {
	p := scoring.DefaultParams()
	if len(c.Scoring.CurveSteps) > 0 {
		p.Curve.Steps = c.Scoring.CurveSteps
	}
	if c.Scoring.MissingBaseScore > 0 {
		p.Missing.BaseScore = c.Scoring.MissingBaseScore
	}
	if c.Scoring.MissingPenalty > 0 {
		p.Missing.Penalty = c.Scoring.MissingPenalty
	}
	return p
}
