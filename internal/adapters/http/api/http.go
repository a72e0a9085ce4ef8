// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/gamepulse/internal/adapters/repository"
	service "github.com/okian/gamepulse/internal/app"
	"github.com/okian/gamepulse/internal/domain/plays"
	"github.com/okian/gamepulse/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds request bodies; play-by-play feeds are large.
const maxBodyBytes = 64 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SeriesDependencies
	ScoringDependencies
	AnalysisDependencies
	ReportDependencies
}

// Server wires HTTP routes for the pipeline API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	seriesHandler   *SeriesHandler
	scoringHandler  *ScoringHandler
	analysisHandler *AnalysisHandler
	reportHandler   *ReportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		seriesHandler:   NewSeriesHandler(deps),
		scoringHandler:  NewScoringHandler(deps),
		analysisHandler: NewAnalysisHandler(deps),
		reportHandler:   NewReportHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}
	route("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	route("GET /stats", "stats", s.statsHandler.HandleStats)
	route("POST /v1/series", "series", s.seriesHandler.HandlePostSeries)
	route("POST /v1/scoring-plays", "scoring_plays", s.scoringHandler.HandlePostScoringPlays)
	route("POST /v1/analysis", "analysis", s.analysisHandler.HandlePostAnalysis)
	route("GET /v1/reports/{key}", "reports", s.reportHandler.HandleGetReport)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
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

// writeDomainError translates pipeline errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrUnknownGame),
		errors.Is(err, service.ErrGameNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrInvalidKey),
		errors.Is(err, service.ErrMalformedInput),
		errors.Is(err, service.ErrEmptySeries),
		errors.Is(err, service.ErrNoRecords),
		errors.Is(err, plays.ErrGameIndex),
		errors.Is(err, plays.ErrMalformedFeed):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, op string, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return false
	}
	return true
}
