package repository

import "errors"

// Sentinel kinds for accuracy store errors.
var (
	ErrNotFound       = errors.New("user not found")
	ErrResultNotFound = errors.New("accuracy result not found")
	ErrInvalidLimit   = errors.New("invalid leaderboard limit")
)
