// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nephroworks/cdss/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Assess runs the full prediction pipeline for one submission.
	Assess(ctx context.Context, req model.Submission) (model.Assessment, error)

	// Recent returns up to n recent case summaries, newest first.
	Recent(ctx context.Context, n int) ([]model.CaseSummary, error)

	// ModelReady reports whether the risk model handle is loaded.
	ModelReady() bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	assessHandler *AssessHandler
	recentHandler *RecentHandler
}

// NewServer creates a new API server with all handlers. maxRecentLimit
// caps GET /recent?limit.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxRecentLimit int) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		assessHandler: NewAssessHandler(deps),
		recentHandler: NewRecentHandler(deps, maxRecentLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/assess", MetricsMiddleware(s.assessHandler.HandlePostAssess, "assess"))
	mux.HandleFunc("/recent", MetricsMiddleware(s.recentHandler.HandleGetRecent, "recent"))
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

// wrap annotates an error with the operation that produced it.
func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
