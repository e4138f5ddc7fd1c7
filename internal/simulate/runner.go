package simulate

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/halverson/rankcast/internal/domain/analysis"
	"github.com/halverson/rankcast/internal/domain/evaluate"
	"github.com/halverson/rankcast/internal/domain/model"
	"github.com/halverson/rankcast/pkg/logger"
)

// Run executes a complete calibration run: generate a synthetic
// season, score every ranking, and report the population analysis.
// When Config.ServerURL is set the season is submitted to a live
// server instead of being evaluated in-process.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}

	runID := uuid.New().String()
	logger.Get().Info(ctx, "starting calibration run",
		logger.String("runID", runID),
		logger.Int("users", config.Users),
		logger.Int("weeks", config.Weeks),
		logger.Int("workers", config.Workers),
		logger.Any("seed", config.Seed),
		logger.String("serverURL", config.ServerURL))

	// Step 1: Generate the season
	gen := NewGenerator(config.Seed, config.RankedCount)
	season := gen.Season(config.Users, config.Weeks)
	stats.RankingsGenerated = len(season.Rankings)
	stats.RecordsGenerated = len(season.Records)
	log.Printf("🎲 Generated %d rankings and %d performance records (seed %d)",
		stats.RankingsGenerated, stats.RecordsGenerated, config.Seed)

	// Step 2: Score the season, either against a live server or in-process
	if config.ServerURL != "" {
		if err := drillServer(ctx, config, season, stats); err != nil {
			return fmt.Errorf("server drill failed: %w", err)
		}
	} else {
		results, err := evaluateSeason(ctx, config, season, stats)
		if err != nil {
			return fmt.Errorf("season evaluation failed: %w", err)
		}

		// Step 3: Analyze the score population
		report := analysis.New().Analyze(results)
		renderReport(report)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "calibration run completed")
	return nil
}

// evaluateSeason scores every generated ranking concurrently against
// the season's performance records.
func evaluateSeason(ctx context.Context, config *Config, season *Season, stats *Stats) ([]model.AccuracyResult, error) {
	log.Printf("⚖️  Evaluating %d rankings with %d workers...", len(season.Rankings), config.Workers)

	// Index records by position and week for lookup.
	type weekKey struct {
		position model.Position
		week     int
	}
	byWeek := make(map[weekKey][]model.PerformanceRecord)
	for _, r := range season.Records {
		k := weekKey{position: r.Position, week: r.Week}
		byWeek[k] = append(byWeek[k], r)
	}

	evaluator := evaluate.NewRankingEvaluator()

	rankingChan := make(chan model.UserRanking, config.Workers*2)
	results := make([]model.AccuracyResult, 0, len(season.Rankings))

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		failed int
	)

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for ranking := range rankingChan {
				records := byWeek[weekKey{position: ranking.Position, week: ranking.Week}]
				result, err := evaluator.Evaluate(ctx, ranking, records)

				mu.Lock()
				if err != nil {
					failed++
				} else {
					results = append(results, result)
				}
				mu.Unlock()
			}
		}()
	}

	for _, ranking := range season.Rankings {
		select {
		case <-ctx.Done():
			close(rankingChan)
			wg.Wait()
			return nil, fmt.Errorf("context cancelled during evaluation: %w", ctx.Err())
		case rankingChan <- ranking:
		}
	}
	close(rankingChan)
	wg.Wait()

	stats.RankingsEvaluated = len(results)
	stats.EvaluationsFailed = failed

	log.Printf("✅ Evaluated %d rankings (%d failed)", len(results), failed)
	return results, nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.RankingsGenerated) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("rankingsGenerated", stats.RankingsGenerated),
		logger.Int("recordsGenerated", stats.RecordsGenerated),
		logger.Int("rankingsEvaluated", stats.RankingsEvaluated),
		logger.Int("evaluationsFailed", stats.EvaluationsFailed),
		logger.Int("rankingsSubmitted", stats.RankingsSubmitted),
		logger.Int("rankingsAccepted", stats.RankingsAccepted),
		logger.Int("rankingsDuplicate", stats.RankingsDuplicate),
		logger.Int("rankingsFailed", stats.RankingsFailed),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("rankingsPerSecond", perSecond))
}
