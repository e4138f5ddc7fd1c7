// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/halverson/rankcast/internal/domain/model"
)

// PerformanceDependencies defines the interface for performance loading dependencies
type PerformanceDependencies interface {
	LoadPerformance(ctx context.Context, records []model.PerformanceRecord) (int, error)
}

// PerformanceHandler handles performance record loads
type PerformanceHandler struct {
	deps PerformanceDependencies
}

// NewPerformanceHandler creates a new performance handler
func NewPerformanceHandler(deps PerformanceDependencies) *PerformanceHandler {
	return &PerformanceHandler{deps: deps}
}

// performanceRequest mirrors the payload for POST /performance.
type performanceRequest struct {
	Records []model.PerformanceRecord `json:"records"`
}

// HandlePostPerformance handles POST /performance requests
func (h *PerformanceHandler) HandlePostPerformance(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_performance"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req performanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Records) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	loaded, err := h.deps.LoadPerformance(r.Context(), req.Records)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, loadResponse{Status: "loaded", Loaded: loaded})
}
