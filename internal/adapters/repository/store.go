// Package repository defines the accuracy store interface and errors.
package repository

import (
	"context"

	"github.com/halverson/rankcast/internal/domain/model"
)

// Entry represents an accuracy leaderboard row.
type Entry struct {
	Rank        int
	UserID      string
	Score       float64
	Evaluations int
	BestScore   float64
}

// Store provides read/write access to evaluated accuracy results.
type Store interface {
	// Record stores an accuracy result for a user. A result for the same
	// week and position replaces the previous one.
	// Returns true if a new evaluation was added, false on replacement.
	Record(ctx context.Context, result model.AccuracyResult) (bool, error)

	// Result returns the stored accuracy result for a user, week and position.
	// Returns ErrResultNotFound if no result has been recorded.
	Result(ctx context.Context, userID string, week int, position model.Position) (model.AccuracyResult, error)

	// Rank returns the current rank and mean accuracy score for a user.
	// Returns ErrNotFound if the user is unknown.
	Rank(ctx context.Context, userID string) (Entry, error)

	// TopN returns the top-N entries ordered by mean accuracy score desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of users tracked on the leaderboard.
	Count(ctx context.Context) int
}
