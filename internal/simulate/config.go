package simulate

import "time"

// Config holds configuration for a calibration run.
type Config struct {
	Users       int           // Number of synthetic users
	Weeks       int           // Number of weeks to simulate
	Seed        int64         // Random seed for reproducible runs
	Workers     int           // Number of concurrent evaluation workers
	RankedCount int           // Players each user ranks per position
	ServerURL   string        // When set, drill a live server instead of evaluating in-process
	TopN        int           // Number of top entries to fetch in server mode
	Timeout     time.Duration // HTTP request timeout in server mode
	LogFile     string        // Log file for run output
	Verbose     bool          // Enable verbose logging
}

// Stats holds calibration run statistics.
type Stats struct {
	RankingsGenerated  int
	RecordsGenerated   int
	RankingsEvaluated  int
	EvaluationsFailed  int
	RankingsSubmitted  int
	RankingsAccepted   int
	RankingsDuplicate  int
	RankingsFailed     int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
