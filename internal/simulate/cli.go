package simulate

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/halverson/rankcast/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "calibration_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the calibration tool.
func ShowHelp() {
	os.Stdout.WriteString(`Rankcast Calibration Tool
=========================

Generates a synthetic season of user rankings and player performance
data, scores it, and reports the score population analysis. With -server
it submits the season to a running instance instead.

Usage:
  go run cmd/calibrate/main.go [options]

Options:
  -users int
        Number of synthetic users (default 100)
  -weeks int
        Number of weeks to simulate (default 17)
  -seed int
        Random seed for reproducible runs (default 1)
  -workers int
        Number of concurrent workers (default CPU cores)
  -ranked int
        Players each user ranks per position (default 20)
  -server string
        Base URL of a running server to drill (default: evaluate in-process)
  -top int
        Number of top entries to fetch in server mode (default 50)
  -timeout duration
        HTTP request timeout in server mode (default 30s)
  -log string
        Log file for run output (default: calibration_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Calibrate with default settings
  go run cmd/calibrate/main.go

  # Reproduce a specific run
  go run cmd/calibrate/main.go -users 500 -weeks 17 -seed 42

  # Drill a running server
  go run cmd/calibrate/main.go -server http://localhost:9080 -users 200
`)
}
