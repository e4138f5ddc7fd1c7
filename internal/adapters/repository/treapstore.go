// Package repository defines the accuracy store interface and errors.
package repository

import (
	"context"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/halverson/rankcast/internal/domain/model"
	"github.com/halverson/rankcast/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: mean accuracy score DESC, then userID ASC (deterministic).
// We implement a BST comparator where "less" means ranks earlier
// (i.e., higher score ranks earlier). This makes in-order traversal
// produce the leaderboard from best to worst.

// scoreScale controls fixed-point scaling from float64. Accuracy scores
// are clamped to [0, 100] with two decimal places, so a modest scale
// preserves full precision for means over any evaluation count.
const scoreScale = 1_000_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	if math.IsNaN(x) {
		return 0
	}
	return scoreFP(math.Round(x * scoreScale))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

// resultKey identifies one evaluation slot per user: a week and position.
func resultKey(week int, position model.Position) string {
	return strconv.Itoa(week) + "|" + string(position)
}

// userRecord stores a user's evaluated results and derived aggregates.
type userRecord struct {
	score   scoreFP // fixed-point mean accuracy, mirrors the treap key
	best    float64
	results map[string]model.AccuracyResult
}

// treap node
type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) should appear before (bScore, bID)
// in the leaderboard (higher ranks first).
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore // higher score ranks earlier
	}
	return aID < bID // tie-breaker by id asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// scoreToPriority converts a score to a priority value.
// Higher scores get higher priorities to keep them higher in the treap.
func scoreToPriority(score scoreFP) uint64 {
	const offset = uint64(1) << 63 // shift so all values compare as unsigned
	return uint64(score) + offset
}

func insert(n *node, id string, score scoreFP) *node {
	if n == nil {
		return &node{id: id, score: score, prio: scoreToPriority(score), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = deleteNode(n.left, id, score)
	} else {
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// collectTopN appends up to limit entries in rank order (highest scores first).
func collectTopN(n *node, limit int, byUser map[string]*userRecord, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}

	// In-order traversal follows the less() comparator, which already
	// handles the userID tie-break.
	collectTopN(n.left, limit, byUser, out)

	if len(*out) < limit {
		if rec, exists := byUser[n.id]; exists {
			*out = append(*out, Entry{
				UserID:      n.id,
				Score:       toFloat(rec.score),
				Evaluations: len(rec.results),
				BestScore:   rec.best,
			})
		}
	}

	if len(*out) < limit {
		collectTopN(n.right, limit, byUser, out)
	}
}

type TreapStore struct {
	mu                    sync.RWMutex
	root                  *node
	byUser                map[string]*userRecord
	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		metricsUpdateInterval: 5 * time.Second,
		byUser:                make(map[string]*userRecord),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)

	return s
}

// Close gracefully shuts down the background metrics goroutine.
func (s *TreapStore) Close() error {
	select {
	case <-s.stopChan:
		// Channel already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// Record implements Store.Record with O(log n) expected time on the
// leaderboard plus O(k) over the user's stored results (k is small:
// weeks times positions).
func (s *TreapStore) Record(ctx context.Context, result model.AccuracyResult) (bool, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordStoreUpdateLatency(float64(latency))
	}()

	key := resultKey(result.Week, result.Position)

	// Track if this is a new user so we can update metrics after releasing locks
	isNewUser := false

	s.mu.Lock()
	rec, ok := s.byUser[result.UserID]
	if ok {
		s.root = deleteNode(s.root, result.UserID, rec.score)
	} else {
		rec = &userRecord{results: make(map[string]model.AccuracyResult)}
		s.byUser[result.UserID] = rec
		isNewUser = true
	}

	_, replaced := rec.results[key]
	rec.results[key] = result

	// Recompute aggregates over the user's result set. Replacement can
	// lower both the mean and the best, so a full pass is required.
	var sum, best float64
	for _, r := range rec.results {
		sum += r.Score
		if r.Score > best {
			best = r.Score
		}
	}
	rec.score = toFixedPoint(sum / float64(len(rec.results)))
	rec.best = best

	s.root = insert(s.root, result.UserID, rec.score)
	s.mu.Unlock()

	// Update metrics outside lock
	if isNewUser {
		metrics.UpdateTotalUsers(s.Count(ctx))
	}
	metrics.RecordLeaderboardUpdate()

	return !replaced, nil
}

// Result returns the stored accuracy result for a user, week and position.
func (s *TreapStore) Result(ctx context.Context, userID string, week int, position model.Position) (model.AccuracyResult, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordStoreQueryLatency(float64(latency))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byUser[userID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.AccuracyResult{}, ErrNotFound
	}

	result, ok := rec.results[resultKey(week, position)]
	if !ok {
		metrics.RecordErrorByComponent("repository", "result_not_found")
		return model.AccuracyResult{}, ErrResultNotFound
	}
	return result, nil
}

// Rank returns the current rank and mean accuracy score for a user.
func (s *TreapStore) Rank(ctx context.Context, userID string) (Entry, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordStoreQueryLatency(float64(latency))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byUser[userID]; !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}

	// Collect all entries and find the rank
	allEntries := make([]Entry, 0, len(s.byUser))
	collectAll(s.root, s.byUser, &allEntries)

	// Sort by score (descending) and userID (ascending) to match TopN logic
	sortEntries(allEntries)

	// Assign global ranks with proper tie handling
	assignRanksWithTies(allEntries)

	for _, entry := range allEntries {
		if entry.UserID == userID {
			return entry, nil
		}
	}

	return Entry{}, ErrNotFound
}

// TopN returns the top N entries ordered by mean accuracy score desc.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordStoreQueryLatency(float64(latency))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, n)
	collectTopN(s.root, n, s.byUser, &out)

	// Assign ranks with proper tie handling
	assignRanksWithTies(out)
	return out, nil
}

// Count returns the total number of users on the leaderboard.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUser)
}

// Results returns every stored accuracy result. Intended for population
// analysis over the full batch of evaluations.
func (s *TreapStore) Results(ctx context.Context) []model.AccuracyResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.AccuracyResult, 0, len(s.byUser))
	for _, rec := range s.byUser {
		for _, r := range rec.results {
			out = append(out, r)
		}
	}
	return out
}

// startMetricsUpdater starts a background goroutine that updates store metrics
func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

// updateMetrics refreshes store-level gauges.
func (s *TreapStore) updateMetrics() {
	s.mu.RLock()
	userCount := len(s.byUser)
	s.mu.RUnlock()

	metrics.UpdateTotalUsers(userCount)
}

// collectAll appends all entries in rank order (highest scores first).
func collectAll(n *node, byUser map[string]*userRecord, out *[]Entry) {
	if n == nil {
		return
	}
	collectAll(n.left, byUser, out)
	if rec, ok := byUser[n.id]; ok {
		*out = append(*out, Entry{
			UserID:      n.id,
			Score:       toFloat(rec.score),
			Evaluations: len(rec.results),
			BestScore:   rec.best,
		})
	}
	collectAll(n.right, byUser, out)
}

// sortEntries sorts entries by score (descending) and userID (ascending) to match TopN logic
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})
}

// assignRanksWithTies assigns ranks with proper tie handling.
// Users with the same score get the same rank, and the next distinct
// score takes the following consecutive rank.
func assignRanksWithTies(entries []Entry) {
	if len(entries) == 0 {
		return
	}

	currentRank := 1
	for i := 0; i < len(entries); i++ {
		entries[i].Rank = currentRank

		sameScoreCount := 1
		for j := i + 1; j < len(entries) && entries[j].Score == entries[i].Score; j++ {
			entries[j].Rank = currentRank
			sameScoreCount++
		}

		currentRank++
		i += sameScoreCount - 1
	}
}
