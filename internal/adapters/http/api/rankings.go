// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/halverson/rankcast/internal/domain/dedupe"
	"github.com/halverson/rankcast/internal/domain/model"
	"github.com/halverson/rankcast/pkg/metrics"
)

// RankingDependencies defines the interface for ranking submission dependencies
type RankingDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, r model.UserRanking) bool
}

// RankingsHandler handles ranking submission requests
type RankingsHandler struct {
	deps RankingDependencies
}

// NewRankingsHandler creates a new rankings handler
func NewRankingsHandler(deps RankingDependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

// HandlePostRanking handles POST /rankings requests
func (h *RankingsHandler) HandlePostRanking(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_ranking"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var ranking model.UserRanking
	if err := json.NewDecoder(r.Body).Decode(&ranking); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if ranking.Version == "" {
		ranking.Version = "1"
	}
	if err := ranking.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), ranking.SubmissionID()) {
		metrics.RecordSubmissionDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	// Try to enqueue for async evaluation
	if ok := h.deps.Enqueue(r.Context(), ranking); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), ranking.SubmissionID())
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
