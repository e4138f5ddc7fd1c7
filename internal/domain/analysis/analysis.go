// Package analysis computes population-level statistics over accuracy
// results. It is a calibration and QA tool for tuning the scoring
// constants, not part of runtime scoring.
package analysis

import (
	"math"
	"sort"

	"github.com/halverson/rankcast/internal/domain/model"
)

// Default validation thresholds.
const (
	defaultFairnessStdDev    = 5.0  // max stddev of per-position means
	defaultDiscriminationMin = 0.15 // min distinct-score ratio
	defaultStabilityStdDev   = 3.0  // max stddev of per-week means
)

// bucketBounds are the lower bounds of the seven distribution buckets.
var bucketBounds = [...]float64{90, 80, 70, 60, 50, 40}

// bucketLabels name the buckets from best to worst.
var bucketLabels = [...]string{"90-100", "80-89", "70-79", "60-69", "50-59", "40-49", "<40"}

// Stats summarizes one score population.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// PositionStats summarizes scores for one position.
type PositionStats struct {
	Count          int     `json:"count"`
	Mean           float64 `json:"mean"`
	Median         float64 `json:"median"`
	PerfectMatches int     `json:"perfect_matches"`
	PlayersScored  int     `json:"players_scored"`
}

// WeekStats summarizes scores for one week.
type WeekStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
}

// Bucket is one distribution bucket with its share of the population.
type Bucket struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Checks holds the three pass/fail validation signals.
type Checks struct {
	// PositionFairness passes when no position is systematically
	// advantaged by the curve.
	PositionFairness bool    `json:"position_fairness"`
	PositionStdDev   float64 `json:"position_std_dev"`

	// ScoreDiscrimination passes when scores are granular enough to
	// meaningfully rank users.
	ScoreDiscrimination bool    `json:"score_discrimination"`
	DiscriminationRatio float64 `json:"discrimination_ratio"`

	// WeeklyStability passes when the output distribution does not
	// drift wildly week to week.
	WeeklyStability bool    `json:"weekly_stability"`
	WeeklyStdDev    float64 `json:"weekly_std_dev"`
}

// Report is the analyzer's full output for one batch.
type Report struct {
	Overall      Stats                            `json:"overall"`
	ByPosition   map[model.Position]PositionStats `json:"by_position"`
	ByWeek       map[int]WeekStats                `json:"by_week"`
	Distribution []Bucket                         `json:"distribution"`
	Checks       Checks                           `json:"checks"`
}

// Analyzer computes Reports. Thresholds are configurable so the checks
// can be tightened as the scoring ladder matures.
type Analyzer struct {
	fairnessStdDev    float64
	discriminationMin float64
	stabilityStdDev   float64
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithFairnessThreshold sets the max allowed stddev of position means.
func WithFairnessThreshold(v float64) Option {
	return func(a *Analyzer) {
		if v > 0 {
			a.fairnessStdDev = v
		}
	}
}

// WithDiscriminationThreshold sets the min distinct-score ratio.
func WithDiscriminationThreshold(v float64) Option {
	return func(a *Analyzer) {
		if v > 0 {
			a.discriminationMin = v
		}
	}
}

// WithStabilityThreshold sets the max allowed stddev of weekly means.
func WithStabilityThreshold(v float64) Option {
	return func(a *Analyzer) {
		if v > 0 {
			a.stabilityStdDev = v
		}
	}
}

// New creates an analyzer with configuration options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		fairnessStdDev:    defaultFairnessStdDev,
		discriminationMin: defaultDiscriminationMin,
		stabilityStdDev:   defaultStabilityStdDev,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes the full report for a batch of results. An empty
// batch yields a zero report with all checks failing.
func (a *Analyzer) Analyze(results []model.AccuracyResult) Report {
	report := Report{
		ByPosition:   make(map[model.Position]PositionStats),
		ByWeek:       make(map[int]WeekStats),
		Distribution: make([]Bucket, len(bucketLabels)),
	}
	for i, label := range bucketLabels {
		report.Distribution[i].Label = label
	}
	if len(results) == 0 {
		return report
	}

	scores := make([]float64, len(results))
	byPosition := make(map[model.Position][]float64)
	byWeek := make(map[int][]float64)
	for i, r := range results {
		scores[i] = r.Score
		byPosition[r.Position] = append(byPosition[r.Position], r.Score)
		byWeek[r.Week] = append(byWeek[r.Week], r.Score)

		ps := report.ByPosition[r.Position]
		ps.PerfectMatches += r.PerfectMatches
		ps.PlayersScored += r.PlayersScored
		report.ByPosition[r.Position] = ps

		report.Distribution[bucketIndex(r.Score)].Count++
	}

	report.Overall = summarize(scores)
	for pos, s := range byPosition {
		ps := report.ByPosition[pos]
		ps.Count = len(s)
		ps.Mean = mean(s)
		ps.Median = median(s)
		report.ByPosition[pos] = ps
	}
	for week, s := range byWeek {
		report.ByWeek[week] = WeekStats{Count: len(s), Mean: mean(s)}
	}
	for i := range report.Distribution {
		report.Distribution[i].Percent = 100 * float64(report.Distribution[i].Count) / float64(len(results))
	}

	report.Checks = a.validate(scores, byPosition, byWeek)
	return report
}

// validate computes the three calibration checks over the aggregates.
func (a *Analyzer) validate(scores []float64, byPosition map[model.Position][]float64, byWeek map[int][]float64) Checks {
	var c Checks

	positionMeans := make([]float64, 0, len(byPosition))
	for _, s := range byPosition {
		positionMeans = append(positionMeans, mean(s))
	}
	c.PositionStdDev = stdDev(positionMeans)
	c.PositionFairness = c.PositionStdDev < a.fairnessStdDev

	distinct := make(map[float64]bool, len(scores))
	for _, s := range scores {
		distinct[s] = true
	}
	c.DiscriminationRatio = float64(len(distinct)) / float64(len(scores))
	c.ScoreDiscrimination = c.DiscriminationRatio > a.discriminationMin

	weekMeans := make([]float64, 0, len(byWeek))
	for _, s := range byWeek {
		weekMeans = append(weekMeans, mean(s))
	}
	c.WeeklyStdDev = stdDev(weekMeans)
	c.WeeklyStability = c.WeeklyStdDev < a.stabilityStdDev

	return c
}

// bucketIndex maps a score to its distribution bucket.
func bucketIndex(score float64) int {
	for i, bound := range bucketBounds {
		if score >= bound {
			return i
		}
	}
	return len(bucketBounds) // <40
}

func summarize(scores []float64) Stats {
	s := Stats{
		Count:  len(scores),
		Mean:   mean(scores),
		Median: median(scores),
		StdDev: stdDev(scores),
		Min:    scores[0],
		Max:    scores[0],
	}
	for _, v := range scores {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	return s
}

func mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range scores {
		sum += v
	}
	return sum / float64(len(scores))
}

func median(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// stdDev is the population standard deviation.
func stdDev(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	m := mean(scores)
	sum := 0.0
	for _, v := range scores {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(scores)))
}
