// Package scoring maps rank-prediction error to point values.
//
// The curve rewards exact and near-exact predictions steeply while
// flattening the penalty for large misses, so one badly mis-ranked
// player cannot dominate a multi-player aggregate. All constants live
// in Params so the ladder can be tuned from config without code changes.
package scoring

import "math"

// Default curve constants. The step table covers d = 0..5, the three
// ramps cover 6..10, 11..20, and everything beyond, floored at zero.
const (
	maxScoreValue = 100

	defaultMidSlope  = 3.0
	defaultMidFloor  = 10.0
	defaultMidLimit  = 10
	defaultFarSlope  = 0.5
	defaultFarFloor  = 5.0
	defaultFarLimit  = 20
	defaultTailSlope = 0.25
)

// defaultSteps is the score ladder for small rank differences.
func defaultSteps() []float64 {
	return []float64{100, 85, 70, 55, 40, 25}
}

// Curve describes the piecewise decay of score over rank difference.
type Curve struct {
	// Steps[d] is the score at rank difference d for d < len(Steps).
	Steps []float64
	// MidSlope ramps Steps[last] down per extra rank until MidLimit,
	// floored at MidFloor.
	MidSlope float64
	MidFloor float64
	MidLimit int
	// FarSlope ramps MidFloor down per rank past MidLimit until FarLimit,
	// floored at FarFloor.
	FarSlope float64
	FarFloor float64
	FarLimit int
	// TailSlope ramps FarFloor down past FarLimit, floored at zero.
	TailSlope float64
}

// BonusRule awards Points when both predicted and actual rank fall at or
// above a threshold. Rules are independent and additive.
type BonusRule struct {
	PredictedMax int
	ActualMax    int
	Points       float64
}

// PenaltyRule charges Points when a highly-ranked prediction busts:
// predicted at or above PredictedMax while the actual rank falls below
// ActualOver. Rules are independent and additive.
type PenaltyRule struct {
	PredictedMax int
	ActualOver   int
	Points       float64
}

// MissingPlayerPolicy governs predictions for players with no
// performance record that week (injury, bye, DNP). Predicting an
// inactive player is a forecasting error distinct from a wrong
// active-player guess, so it gets a flat base score plus a penalty
// instead of a rank difference.
type MissingPlayerPolicy struct {
	BaseScore float64
	Penalty   float64
}

// Params bundles every scoring constant: the decay curve, the bonus and
// penalty rules, and the missing-player policy.
type Params struct {
	Curve        Curve
	BonusRules   []BonusRule
	PenaltyRules []PenaltyRule
	Missing      MissingPlayerPolicy
}

// DefaultParams returns the production scoring configuration.
func DefaultParams() Params {
	return Params{
		Curve: Curve{
			Steps:     defaultSteps(),
			MidSlope:  defaultMidSlope,
			MidFloor:  defaultMidFloor,
			MidLimit:  defaultMidLimit,
			FarSlope:  defaultFarSlope,
			FarFloor:  defaultFarFloor,
			FarLimit:  defaultFarLimit,
			TailSlope: defaultTailSlope,
		},
		BonusRules: []BonusRule{
			{PredictedMax: 10, ActualMax: 10, Points: 15}, // top-10 accuracy
			{PredictedMax: 5, ActualMax: 5, Points: 10},   // top-5 accuracy
		},
		PenaltyRules: []PenaltyRule{
			{PredictedMax: 10, ActualOver: 20, Points: 15}, // top-10 bust
			{PredictedMax: 5, ActualOver: 15, Points: 20},  // top-5 bust
		},
		Missing: MissingPlayerPolicy{BaseScore: 40, Penalty: 10},
	}
}

// RankScorer computes point values from rank predictions.
// Pure and side-effect free; any positive integer ranks are valid input.
// Non-positive ranks are a producer contract violation and not defended
// against here.
type RankScorer struct {
	params Params
}

// NewRankScorer creates a scorer with configuration options.
func NewRankScorer(opts ...Option) *RankScorer {
	s := &RankScorer{params: DefaultParams()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Params returns a copy of the active scoring parameters.
func (s *RankScorer) Params() Params {
	return s.params
}

// Score maps a (predicted, actual) rank pair to a point value in [0,100].
func (s *RankScorer) Score(predicted, actual int) float64 {
	d := predicted - actual
	if d < 0 {
		d = -d
	}
	return s.Diff(d)
}

// Diff maps an absolute rank difference to a point value in [0,100].
// Monotonically non-increasing in d.
func (s *RankScorer) Diff(d int) float64 {
	c := s.params.Curve
	last := len(c.Steps) - 1
	switch {
	case d <= last:
		return c.Steps[d]
	case d <= c.MidLimit:
		return math.Max(c.MidFloor, c.Steps[last]-float64(d-last)*c.MidSlope)
	case d <= c.FarLimit:
		return math.Max(c.FarFloor, c.MidFloor-float64(d-c.MidLimit)*c.FarSlope)
	default:
		return math.Max(0, c.FarFloor-float64(d-c.FarLimit)*c.TailSlope)
	}
}

// Adjust evaluates every bonus and penalty rule for a (predicted, actual)
// pair. Rules stack: all applicable bonuses and penalties accumulate.
func (s *RankScorer) Adjust(predicted, actual int) (bonus, penalty float64) {
	for _, r := range s.params.BonusRules {
		if predicted <= r.PredictedMax && actual <= r.ActualMax {
			bonus += r.Points
		}
	}
	for _, r := range s.params.PenaltyRules {
		if predicted <= r.PredictedMax && actual > r.ActualOver {
			penalty += r.Points
		}
	}
	return bonus, penalty
}

// MissingPolicy returns the active missing-player policy.
func (s *RankScorer) MissingPolicy() MissingPlayerPolicy {
	return s.params.Missing
}

// Clamp bounds a score to [0,100].
func Clamp(score float64) float64 {
	return math.Max(0, math.Min(maxScoreValue, score))
}
