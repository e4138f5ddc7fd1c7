// Package performance stores actual player performance records by
// position and week, the ground truth rankings are scored against.
package performance

import (
	"context"
	"sync"

	"github.com/halverson/rankcast/internal/domain/model"
	"github.com/halverson/rankcast/pkg/metrics"
)

// Source provides read access to loaded performance records.
type Source interface {
	// Week returns all records for a position and week.
	// Returns ErrWeekNotLoaded if no records have been loaded for the pair.
	Week(ctx context.Context, position model.Position, week int) ([]model.PerformanceRecord, error)

	// Count returns the total number of loaded records.
	Count(ctx context.Context) int
}

// Table is an in-memory Source keyed by (position, week).
type Table struct {
	mu     sync.RWMutex
	byWeek map[weekKey][]model.PerformanceRecord
	count  int
}

type weekKey struct {
	position model.Position
	week     int
}

// NewTable constructs an empty performance table.
func NewTable() *Table {
	return &Table{
		byWeek: make(map[weekKey][]model.PerformanceRecord),
	}
}

// Load stores records, grouping them by position and week. Records for a
// (position, week) pair accumulate across calls; a player appearing twice
// for the same pair keeps the later record.
func (t *Table) Load(ctx context.Context, records []model.PerformanceRecord) (int, error) {
	if len(records) == 0 {
		return 0, ErrNoRecords
	}

	t.mu.Lock()
	loaded := 0
	for _, rec := range records {
		if !rec.Position.Valid() || rec.Week <= 0 || rec.PlayerID == "" {
			continue
		}
		key := weekKey{position: rec.Position, week: rec.Week}
		existing := t.byWeek[key]

		replaced := false
		for i := range existing {
			if existing[i].PlayerID == rec.PlayerID {
				existing[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, rec)
			t.count++
		}
		t.byWeek[key] = existing
		loaded++
	}
	total := t.count
	t.mu.Unlock()

	if loaded == 0 {
		return 0, ErrNoRecords
	}

	metrics.UpdatePerformanceRecords(total)
	return loaded, nil
}

// Week implements Source.Week.
func (t *Table) Week(ctx context.Context, position model.Position, week int) ([]model.PerformanceRecord, error) {
	t.mu.RLock()
	records, ok := t.byWeek[weekKey{position: position, week: week}]
	t.mu.RUnlock()

	if !ok {
		metrics.RecordErrorByComponent("performance", "week_not_loaded")
		return nil, ErrWeekNotLoaded
	}

	// Callers may sort; hand out a copy.
	out := make([]model.PerformanceRecord, len(records))
	copy(out, records)
	return out, nil
}

// Count implements Source.Count.
func (t *Table) Count(ctx context.Context) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}
