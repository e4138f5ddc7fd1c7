package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/halverson/rankcast/internal/domain/model"
)

func submission(userID string, week int) Submission {
	return model.UserRanking{
		UserID:   userID,
		Week:     week,
		Position: model.PositionQB,
		Version:  "v1",
		Rankings: []model.RankedPlayer{{PlayerID: "p1", Rank: 1}},
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	// Test empty queue
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	// Test enqueue
	if !q.Enqueue(ctx, submission("user1", 1)) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	// Test dequeue
	subChan := q.Dequeue(ctx)
	s := <-subChan
	if s.UserID != "user1" {
		t.Errorf("expected user1, got %v", s.UserID)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_CapacityLimit(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2), WithBufferSize(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, submission("user1", 1)) {
		t.Error("expected first enqueue to succeed")
	}
	if !q.Enqueue(ctx, submission("user2", 1)) {
		t.Error("expected second enqueue to succeed")
	}

	// Queue is at capacity; further enqueues are rejected
	if q.Enqueue(ctx, submission("user3", 1)) {
		t.Error("expected enqueue to fail at capacity")
	}

	// Draining one slot frees capacity again
	subChan := q.Dequeue(ctx)
	<-subChan

	// Dequeue wrapper drains asynchronously; give it a moment
	deadline := time.Now().Add(time.Second)
	for q.Len(ctx) >= 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if !q.Enqueue(ctx, submission("user3", 1)) {
		t.Error("expected enqueue to succeed after drain")
	}
}

func TestInMemoryQueue_CloseBehavior(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if q.IsClosed() {
		t.Error("expected queue to be open")
	}

	if !q.Enqueue(ctx, submission("user1", 1)) {
		t.Error("expected enqueue to succeed")
	}

	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error on close: %v", err)
	}

	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}

	// Enqueue after close fails
	if q.Enqueue(ctx, submission("user2", 1)) {
		t.Error("expected enqueue to fail after close")
	}

	// Double close is safe
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}

	// Queued submissions drain, then the channel closes
	subChan := q.Dequeue(ctx)
	s, ok := <-subChan
	if !ok {
		t.Fatal("expected queued submission before close")
	}
	if s.UserID != "user1" {
		t.Errorf("expected user1, got %s", s.UserID)
	}
	if _, ok := <-subChan; ok {
		t.Error("expected channel to be closed after drain")
	}
}

func TestInMemoryQueue_ContextCancellation(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx, cancel := context.WithCancel(context.Background())

	if !q.Enqueue(ctx, submission("user1", 1)) {
		t.Error("expected enqueue to succeed")
	}

	subChan := q.Dequeue(ctx)
	<-subChan

	cancel()

	// The dequeue goroutine exits on context cancellation; subsequent
	// receives observe a closed channel once the queue closes.
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error on close: %v", err)
	}
}

func TestInMemoryQueue_ConcurrentProducers(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000), WithBufferSize(1000))
	ctx := context.Background()

	const producers = 8
	const perProducer = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				s := submission(fmt.Sprintf("user%d-%d", p, i), i%17+1)
				if !q.Enqueue(ctx, s) {
					t.Errorf("unexpected enqueue failure for producer %d", p)
					return
				}
			}
		}(p)
	}
	wg.Wait()

	if l := q.Len(ctx); l != producers*perProducer {
		t.Errorf("expected %d queued submissions, got %d", producers*perProducer, l)
	}

	// All submissions drain exactly once
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error on close: %v", err)
	}

	seen := make(map[string]bool)
	for s := range q.Dequeue(ctx) {
		key := s.SubmissionID()
		if seen[key] {
			t.Errorf("submission %s delivered twice", key)
		}
		seen[key] = true
	}
	if len(seen) != producers*perProducer {
		t.Errorf("expected %d drained submissions, got %d", producers*perProducer, len(seen))
	}
}
