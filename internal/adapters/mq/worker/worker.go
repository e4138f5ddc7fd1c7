// Package worker defines worker contracts for asynchronous ranking
// evaluation and leaderboard updates.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/halverson/rankcast/internal/adapters/performance"
	"github.com/halverson/rankcast/internal/domain/model"
	"github.com/halverson/rankcast/pkg/logger"
	"github.com/halverson/rankcast/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 20 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Submission abstracts what workers read off the queue.
// Using the model.UserRanking type for consistency.
type Submission = model.UserRanking

// Updater records an evaluated accuracy result.
type Updater interface {
	Record(ctx context.Context, result model.AccuracyResult) (bool, error)
}

// Evaluator scores a ranking against actual performance records.
type Evaluator interface {
	Evaluate(ctx context.Context, ranking model.UserRanking, records []model.PerformanceRecord) (model.AccuracyResult, error)
}

// Source provides the actual performance records a ranking is scored against.
type Source interface {
	Week(ctx context.Context, position model.Position, week int) ([]model.PerformanceRecord, error)
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Submission
}

// Worker processes submissions and writes accuracy results using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining submissions before stopping.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing ranking submissions.
type InMemoryWorker struct {
	queue     Queue
	evaluator Evaluator
	source    Source
	updater   Updater
	name      string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, evaluator Evaluator, source Source, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		evaluator: evaluator,
		source:    source,
		updater:   updater,
		name:      "worker", // default name
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"), // will be updated by options
	}

	for _, opt := range opts {
		opt(w)
	}

	// Set up logger with worker name if not already set
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	submissionChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case submission, ok := <-submissionChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processSubmission(ctx, submission); err != nil {
				w.logger.Error(ctx, "error processing submission", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processSubmission handles a single ranking submission.
func (w *InMemoryWorker) processSubmission(ctx context.Context, submission Submission) error {
	// Track overall processing latency
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	records, err := w.source.Week(ctx, submission.Position, submission.Week)
	if err != nil {
		if !errors.Is(err, performance.ErrWeekNotLoaded) {
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "performance_lookup")
			w.logger.Error(ctx, "performance lookup failed for submission",
				logger.String("submissionID", submission.SubmissionID()),
				logger.Error(err),
			)
			return fmt.Errorf("performance lookup for %s: %w", submission.SubmissionID(), err)
		}
		// A week with no loaded data scores every ranked player as absent.
		records = nil
		w.logger.Warn(ctx, "no performance records for week, applying missing-player policy",
			logger.String("submissionID", submission.SubmissionID()),
		)
	}

	// Track evaluation latency
	evalStart := time.Now()
	result, err := w.evaluator.Evaluate(ctx, submission, records)
	evalLatency := time.Since(evalStart).Milliseconds()

	metrics.RecordEvaluationLatency(float64(evalLatency))

	if err != nil {
		metrics.RecordEvaluationError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "evaluation_error")
		w.logger.Error(ctx, "evaluation failed for submission",
			logger.String("submissionID", submission.SubmissionID()),
			logger.Error(err),
		)
		return fmt.Errorf("failed to evaluate submission %s: %w", submission.SubmissionID(), err)
	}

	// Update the accuracy leaderboard
	if _, err := w.updater.Record(ctx, result); err != nil {
		metrics.RecordLeaderboardError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "leaderboard_error")
		w.logger.Error(ctx, "leaderboard update failed for submission",
			logger.String("submissionID", submission.SubmissionID()),
			logger.Error(err),
		)
		return fmt.Errorf("leaderboard update failed: %w", err)
	}

	metrics.RecordEvaluationProcessed()

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	evaluator Evaluator
	source    Source
	updater   Updater

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, evaluator Evaluator, source Source, updater Updater) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:   make([]*InMemoryWorker, workerCount),
		queue:     queue,
		evaluator: evaluator,
		source:    source,
		updater:   updater,
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			evaluator,
			source,
			updater,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	// Initialize worker metrics
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerIdleCount(0)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}

	// Start metrics updater
	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater starts a background goroutine that updates worker metrics.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			metrics.UpdateWorkerCount(len(p.workers))
		}
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	// Signal shutdown to all workers
	close(p.shutdown)

	// Wait for all workers to finish
	for _, worker := range p.workers {
		select {
		case <-worker.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new submissions
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Signal shutdown to all workers
	close(p.shutdown)

	// Wait for all workers to finish or context to timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
