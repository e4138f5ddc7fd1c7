// Package types contains common types used across the application
package types

// Entry represents an accuracy leaderboard entry
type Entry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"user_id"`
	Score       float64 `json:"score"`
	Evaluations int     `json:"evaluations"`
}
