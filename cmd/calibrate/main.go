package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/halverson/rankcast/internal/simulate"
)

// Default configuration constants.
const (
	defaultUsers      = 100
	defaultWeeks      = 17
	defaultSeed       = 1
	defaultRanked     = 20
	defaultTopN       = 50
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		users     = flag.Int("users", defaultUsers, "Number of synthetic users")
		weeks     = flag.Int("weeks", defaultWeeks, "Number of weeks to simulate")
		seed      = flag.Int64("seed", defaultSeed, "Random seed for reproducible runs")
		workers   = flag.Int("workers", runtime.NumCPU(), "Number of concurrent workers")
		ranked    = flag.Int("ranked", defaultRanked, "Players each user ranks per position")
		serverURL = flag.String("server", "", "Base URL of a running server to drill (default: evaluate in-process)")
		topN      = flag.Int("top", defaultTopN, "Number of top entries to fetch in server mode")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout in server mode")
		logFile   = flag.String("log", "", "Log file for run output (default: calibration_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	// Setup logging
	if err := simulate.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create run configuration
	config := &simulate.Config{
		Users:       *users,
		Weeks:       *weeks,
		Seed:        *seed,
		Workers:     *workers,
		RankedCount: *ranked,
		ServerURL:   *serverURL,
		TopN:        *topN,
		Timeout:     *timeout,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	// Run the calibration
	if err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Calibration run failed: " + err.Error() + "\n")
		return
	}
}
