// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"

	submissionqueue "github.com/halverson/rankcast/internal/adapters/mq/queue"
	workerpool "github.com/halverson/rankcast/internal/adapters/mq/worker"
	"github.com/halverson/rankcast/internal/adapters/performance"
	"github.com/halverson/rankcast/internal/adapters/repository"
	"github.com/halverson/rankcast/internal/domain/analysis"
	"github.com/halverson/rankcast/internal/domain/dedupe"
	"github.com/halverson/rankcast/internal/domain/evaluate"
	"github.com/halverson/rankcast/internal/domain/model"
	"github.com/halverson/rankcast/internal/domain/scoring"
	"github.com/halverson/rankcast/internal/domain/types"
	"github.com/halverson/rankcast/pkg/logger"
	"github.com/halverson/rankcast/pkg/metrics"
)

// Service implements the API dependencies for the accuracy leaderboard system.
type Service struct {
	mu sync.RWMutex

	// Core components
	leaderboard repository.Store
	results     *repository.TreapStore
	performance *performance.Table
	deduper     dedupe.Deduper
	queue       submissionqueue.Queue
	evaluator   evaluate.Evaluator
	analyzer    *analysis.Analyzer
	workerPool  *workerpool.Pool

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	scoringParams scoring.Params

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithScoringParams sets the scoring curve, bonus/penalty rules and
// missing-player policy used by the evaluator.
func WithScoringParams(params scoring.Params) Option {
	return func(s *Service) {
		s.scoringParams = params
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 2, // Default to 2x CPU cores
		queueSize:     100000,               // Default queue size
		dedupeSize:    50000,                // Default dedupe cache size
		scoringParams: scoring.DefaultParams(),
		stopCh:        make(chan struct{}),
		logger:        nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting accuracy service...")

	// Initialize components
	s.results = repository.NewTreapStore(ctx)
	s.leaderboard = s.results
	s.logger.Info(ctx, "using treap store")
	s.performance = performance.NewTable()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = submissionqueue.NewInMemoryQueue(
		submissionqueue.WithCapacity(s.queueSize),
		submissionqueue.WithBufferSize(s.queueSize),
	)
	s.evaluator = evaluate.NewRankingEvaluator(
		evaluate.WithScorer(scoring.NewRankScorer(scoring.WithParams(s.scoringParams))),
	)
	s.analyzer = analysis.New()

	// Create and start the worker pool
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s.evaluator, s.performance, s.leaderboard)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "accuracy service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping accuracy service...")

	// Stop worker pool
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	// Close result store
	if s.results != nil {
		_ = s.results.Close()
	}

	// Close queue
	if s.queue != nil && !s.queue.IsClosed() {
		_ = s.queue.Close()
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "accuracy service stopped")
}

// SeenAndRecord atomically checks if a submission id was seen and records it if not.
// Returns true if the submission was already seen, false if it was newly recorded.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordSubmissionDuplicate()
	}
	return seen
}

// Unrecord removes a submission ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a ranking for asynchronous evaluation.
func (s *Service) Enqueue(ctx context.Context, r model.UserRanking) bool {
	s.logger.Debug(ctx, "enqueueing ranking submission",
		logger.String("submissionID", r.SubmissionID()),
		logger.Int("players", len(r.Rankings)),
	)

	success := s.queue.Enqueue(ctx, r)
	if success {
		metrics.UpdateQueueSize(s.queue.Len(ctx))
	}
	return success
}

// LoadPerformance stores actual player performance records.
func (s *Service) LoadPerformance(ctx context.Context, records []model.PerformanceRecord) (int, error) {
	loaded, err := s.performance.Load(ctx, records)
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "performance records loaded",
		logger.Int("loaded", loaded),
		logger.Int("total", s.performance.Count(ctx)),
	)
	return loaded, nil
}

// TopN returns the top N leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	entries, err := s.leaderboard.TopN(ctx, n)
	if err != nil {
		return nil, err
	}

	// Convert to API format
	apiEntries := make([]types.Entry, len(entries))
	for i, entry := range entries {
		apiEntries[i] = types.Entry{
			Rank:        entry.Rank,
			UserID:      entry.UserID,
			Score:       entry.Score,
			Evaluations: entry.Evaluations,
		}
	}

	return apiEntries, nil
}

// Rank returns the rank and mean accuracy score for a given user id.
func (s *Service) Rank(ctx context.Context, userID string) (types.Entry, error) {
	entry, err := s.leaderboard.Rank(ctx, userID)
	if err != nil {
		return types.Entry{}, err
	}

	return types.Entry{
		Rank:        entry.Rank,
		UserID:      entry.UserID,
		Score:       entry.Score,
		Evaluations: entry.Evaluations,
	}, nil
}

// Result returns the stored accuracy result for a user, week and position.
func (s *Service) Result(ctx context.Context, userID string, week int, position model.Position) (model.AccuracyResult, error) {
	return s.leaderboard.Result(ctx, userID, week, position)
}

// Report runs the population analyzer over every stored accuracy result.
func (s *Service) Report(ctx context.Context) analysis.Report {
	return s.analyzer.Analyze(s.results.Results(ctx))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		totalUsers := s.leaderboard.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalUsers"] = totalUsers
		stats["performanceRecords"] = s.performance.Count(ctx)

		report := s.Report(ctx)
		stats["evaluations"] = report.Overall.Count
		stats["meanScore"] = report.Overall.Mean
		stats["checks"] = map[string]bool{
			"positionFairness":    report.Checks.PositionFairness,
			"scoreDiscrimination": report.Checks.ScoreDiscrimination,
			"weeklyStability":     report.Checks.WeeklyStability,
		}

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalUsers(totalUsers)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
