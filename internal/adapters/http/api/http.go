// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/halverson/rankcast/internal/domain/dedupe"
	"github.com/halverson/rankcast/internal/domain/model"
	"github.com/halverson/rankcast/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a ranking submission for async evaluation.
	// Returns false on backpressure.
	Enqueue(ctx context.Context, r model.UserRanking) bool

	// LoadPerformance stores actual player performance records.
	LoadPerformance(ctx context.Context, records []model.PerformanceRecord) (int, error)

	// Read operations expose accuracy leaderboard data.
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, userID string) (Entry, error)
	Result(ctx context.Context, userID string, week int, position model.Position) (model.AccuracyResult, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	rankingsHandler    *RankingsHandler
	performanceHandler *PerformanceHandler
	leaderboardHandler *LeaderboardHandler
	accuracyHandler    *AccuracyHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		rankingsHandler:    NewRankingsHandler(deps),
		performanceHandler: NewPerformanceHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		accuracyHandler:    NewAccuracyHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.HandlePostRanking, "rankings"))
	mux.HandleFunc("/performance", MetricsMiddleware(s.performanceHandler.HandlePostPerformance, "performance"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/accuracy/", MetricsMiddleware(s.accuracyHandler.HandleGetAccuracy, "accuracy"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type loadResponse struct {
	Status string `json:"status"`
	Loaded int    `json:"loaded"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
