package scoring

// Option applies a configuration option to the RankScorer.
type Option func(*RankScorer)

// WithParams replaces the full scoring parameter set.
func WithParams(p Params) Option {
	return func(s *RankScorer) {
		if len(p.Curve.Steps) > 0 {
			s.params = p
		}
	}
}

// WithCurveSteps overrides the score ladder for small rank differences.
func WithCurveSteps(steps []float64) Option {
	return func(s *RankScorer) {
		if len(steps) == 0 {
			return
		}
		// Copy to avoid external modifications
		s.params.Curve.Steps = append([]float64(nil), steps...)
	}
}

// WithBonusRules replaces the bonus rules.
func WithBonusRules(rules []BonusRule) Option {
	return func(s *RankScorer) {
		s.params.BonusRules = append([]BonusRule(nil), rules...)
	}
}

// WithPenaltyRules replaces the penalty rules.
func WithPenaltyRules(rules []PenaltyRule) Option {
	return func(s *RankScorer) {
		s.params.PenaltyRules = append([]PenaltyRule(nil), rules...)
	}
}

// WithMissingPlayerPolicy overrides the missing-player policy.
func WithMissingPlayerPolicy(p MissingPlayerPolicy) Option {
	return func(s *RankScorer) {
		if p.BaseScore >= 0 && p.Penalty >= 0 {
			s.params.Missing = p
		}
	}
}
