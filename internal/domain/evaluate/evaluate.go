// Package evaluate turns a user's position ranking plus the realized
// performance table into a single accuracy score with a breakdown.
package evaluate

import (
	"context"
	"math"
	"sort"

	"github.com/halverson/rankcast/internal/domain/model"
	"github.com/halverson/rankcast/internal/domain/scoring"
)

// defaultCloseRange is the |predicted - actual| window counted as a
// "close" prediction in the breakdown.
const defaultCloseRange = 2

// Evaluator computes an AccuracyResult for one user ranking. The
// computation is pure and synchronous; ctx is accepted for interface
// symmetry with the rest of the pipeline and future external scorers.
type Evaluator interface {
	Evaluate(ctx context.Context, ranking model.UserRanking, records []model.PerformanceRecord) (model.AccuracyResult, error)
}

// RankingEvaluator implements Evaluator on top of a RankScorer.
type RankingEvaluator struct {
	scorer     *scoring.RankScorer
	closeRange int
}

// Option applies a configuration option to the RankingEvaluator.
type Option func(*RankingEvaluator)

// WithScorer sets a custom rank scorer.
func WithScorer(s *scoring.RankScorer) Option {
	return func(e *RankingEvaluator) {
		if s != nil {
			e.scorer = s
		}
	}
}

// WithCloseRange sets the rank-difference window counted as close.
func WithCloseRange(n int) Option {
	return func(e *RankingEvaluator) {
		if n > 0 {
			e.closeRange = n
		}
	}
}

// NewRankingEvaluator creates an evaluator with configuration options.
func NewRankingEvaluator(opts ...Option) *RankingEvaluator {
	e := &RankingEvaluator{
		scorer:     scoring.NewRankScorer(),
		closeRange: defaultCloseRange,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ActualRanks derives dense 1-based actual ranks for the ranking's
// position and week: matching records sorted by realized points
// descending. The sort is stable, so records with equal points keep
// their input order and the first one encountered takes the lower rank.
func ActualRanks(ranking model.UserRanking, records []model.PerformanceRecord) map[string]int {
	matched := make([]model.PerformanceRecord, 0, len(records))
	for _, rec := range records {
		if rec.Position == ranking.Position && rec.Week == ranking.Week {
			matched = append(matched, rec)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].ActualPoints > matched[j].ActualPoints
	})
	ranks := make(map[string]int, len(matched))
	for i, rec := range matched {
		ranks[rec.PlayerID] = i + 1
	}
	return ranks
}

// Evaluate scores every predicted player against the derived actual
// ranking and aggregates into a 0-100 score. The function is total:
// every numeric edge case resolves to a defined value, and an empty
// ranking yields the canonical zero result rather than an error.
func (e *RankingEvaluator) Evaluate(_ context.Context, ranking model.UserRanking, records []model.PerformanceRecord) (model.AccuracyResult, error) {
	result := model.AccuracyResult{
		UserID:   ranking.UserID,
		Week:     ranking.Week,
		Position: ranking.Position,
		Version:  ranking.Version,
	}
	if len(ranking.Rankings) == 0 {
		return result, nil
	}

	actual := ActualRanks(ranking, records)
	missing := e.scorer.MissingPolicy()

	var totalBase, totalBonus, totalPenalty float64
	for _, rp := range ranking.Rankings {
		actualRank, played := actual[rp.PlayerID]
		if !played {
			// Injury, bye, or DNP: flat base plus flat penalty,
			// no rank difference.
			totalBase += missing.BaseScore
			totalPenalty += missing.Penalty
			result.PlayersScored++
			continue
		}

		d := rp.Rank - actualRank
		if d < 0 {
			d = -d
		}
		totalBase += e.scorer.Diff(d)
		if d == 0 {
			result.PerfectMatches++
		}
		if d <= e.closeRange {
			result.ClosePredictions++
		}

		bonus, penalty := e.scorer.Adjust(rp.Rank, actualRank)
		totalBonus += bonus
		totalPenalty += penalty
		result.PlayersScored++
	}

	n := float64(result.PlayersScored)
	average := totalBase / n
	netAdjustment := (totalBonus - totalPenalty) / n

	result.Score = round2(scoring.Clamp(average + netAdjustment))
	result.BonusPoints = totalBonus
	result.PenaltyPoints = totalPenalty
	return result, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
