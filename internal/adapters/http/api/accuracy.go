// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/halverson/rankcast/internal/adapters/repository"
	"github.com/halverson/rankcast/internal/domain/model"
)

// AccuracyDependencies defines the interface for accuracy read operations.
type AccuracyDependencies interface {
	Rank(ctx context.Context, userID string) (Entry, error)
	Result(ctx context.Context, userID string, week int, position model.Position) (model.AccuracyResult, error)
}

// AccuracyHandler handles accuracy lookups.
type AccuracyHandler struct {
	deps AccuracyDependencies
}

// NewAccuracyHandler creates a new accuracy handler.
func NewAccuracyHandler(deps AccuracyDependencies) *AccuracyHandler {
	return &AccuracyHandler{deps: deps}
}

// HandleGetAccuracy handles GET /accuracy/{user_id} requests.
// Without query parameters it returns the user's overall leaderboard
// entry. With ?week=N&position=P it returns the stored evaluation
// result for that week and position.
func (h *AccuracyHandler) HandleGetAccuracy(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_accuracy"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /accuracy/
	userID := strings.TrimPrefix(r.URL.Path, "/accuracy/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	weekStr := r.URL.Query().Get("week")
	positionStr := r.URL.Query().Get("position")

	if weekStr == "" && positionStr == "" {
		entry, err := h.deps.Rank(r.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusNotFound, "not_found", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, entry)
		return
	}

	// Week and position come as a pair
	week, err := strconv.Atoi(weekStr)
	if err != nil || week < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	position := model.Position(strings.ToUpper(positionStr))
	if !position.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	result, err := h.deps.Result(r.Context(), userID, week, position)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrResultNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}
