// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Position identifies a fantasy roster position.
type Position string

// Supported positions.
const (
	PositionQB Position = "QB"
	PositionRB Position = "RB"
	PositionWR Position = "WR"
	PositionTE Position = "TE"
)

// Positions lists all supported positions in a stable order.
func Positions() []Position {
	return []Position{PositionQB, PositionRB, PositionWR, PositionTE}
}

// Valid reports whether p is one of the supported positions.
func (p Position) Valid() bool {
	switch p {
	case PositionQB, PositionRB, PositionWR, PositionTE:
		return true
	}
	return false
}

// PerformanceRecord is a player's realized output for one position+week.
// Records are produced by the external stats feed and never mutated;
// one record per player per week.
type PerformanceRecord struct {
	PlayerID        string   `json:"player_id"`
	PlayerName      string   `json:"player_name"`
	Team            string   `json:"team"`
	Position        Position `json:"position"`
	Week            int      `json:"week"`
	Season          int      `json:"season"`
	ActualPoints    float64  `json:"actual_points"`
	ProjectedPoints float64  `json:"projected_points"`
}

// RankedPlayer is one (player, rank) pair inside a user's ranking.
type RankedPlayer struct {
	PlayerID string `json:"player_id"`
	Rank     int    `json:"rank"`
}

// UserRanking is one user's ordered prediction for a position+week.
// Ranks are 1-based and must form a permutation of 1..N; Validate
// enforces that at the service boundary, the scoring engine assumes it.
type UserRanking struct {
	UserID   string         `json:"user_id"`
	Week     int            `json:"week"`
	Position Position       `json:"position"`
	Version  string         `json:"version"` // bumped when the user edits the ranking
	Rankings []RankedPlayer `json:"rankings"`
}

// SubmissionID returns the idempotency key for this ranking.
func (r UserRanking) SubmissionID() string {
	return strings.Join([]string{r.UserID, strconv.Itoa(r.Week), string(r.Position), r.Version}, "|")
}

// Validate checks the producer contract: non-empty user, valid position,
// positive week, and ranks forming a dense permutation of 1..N with
// unique player ids. An empty Rankings slice is valid (degenerate input).
func (r UserRanking) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("missing user_id")
	}
	if r.Week < 1 {
		return errors.New("week must be positive")
	}
	if !r.Position.Valid() {
		return fmt.Errorf("unknown position %q", r.Position)
	}
	seenRank := make(map[int]bool, len(r.Rankings))
	seenPlayer := make(map[string]bool, len(r.Rankings))
	for _, rp := range r.Rankings {
		if strings.TrimSpace(rp.PlayerID) == "" {
			return errors.New("ranking entry missing player_id")
		}
		if rp.Rank < 1 || rp.Rank > len(r.Rankings) {
			return fmt.Errorf("rank %d out of range 1..%d", rp.Rank, len(r.Rankings))
		}
		if seenRank[rp.Rank] {
			return fmt.Errorf("duplicate rank %d", rp.Rank)
		}
		if seenPlayer[rp.PlayerID] {
			return fmt.Errorf("duplicate player %s", rp.PlayerID)
		}
		seenRank[rp.Rank] = true
		seenPlayer[rp.PlayerID] = true
	}
	return nil
}

// AccuracyResult is the evaluator's output for one (user, week, position).
// Computed on demand and never mutated; safe to cache keyed by
// (user, week, position, version).
type AccuracyResult struct {
	UserID   string   `json:"user_id"`
	Week     int      `json:"week"`
	Position Position `json:"position"`
	Version  string   `json:"version"`

	// Score is the aggregate accuracy in [0,100], rounded to 2 decimals.
	Score float64 `json:"accuracy_score"`

	// Breakdown counters.
	PerfectMatches   int     `json:"perfect_matches"`
	ClosePredictions int     `json:"close_predictions"`
	PlayersScored    int     `json:"players_scored"`
	BonusPoints      float64 `json:"bonus_points"`
	PenaltyPoints    float64 `json:"penalty_points"`
}
