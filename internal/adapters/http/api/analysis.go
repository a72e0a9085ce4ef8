package api

import (
	"context"
	"net/http"
	"strings"

	service "github.com/okian/gamepulse/internal/app"
	"github.com/okian/gamepulse/internal/domain/plays"
	"github.com/okian/gamepulse/internal/domain/predict"
)

// AnalysisDependencies runs the final-score analysis.
type AnalysisDependencies interface {
	ScoringPlays(ctx context.Context) []plays.GameScoring
	Analyze(ctx context.Context, key string, exp service.Export, games []plays.GameScoring) (predict.Report, error)
}

// analysisRequest is the body of POST /v1/analysis.
type analysisRequest struct {
	// Game is the export name that identifies the teams, e.g. "lsuvolemiss".
	Game   string         `json:"game"`
	Export service.Export `json:"export"`
	// ScoringPlays overrides the stored extractor output.
	ScoringPlays []plays.GameScoring `json:"scoring_plays"`
}

func (r analysisRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Game) == "":
		return newKind("validate", ErrBadRequest, "missing game")
	case len(r.Export.Times) == 0:
		return newKind("validate", ErrBadRequest, "missing export.times")
	case len(r.Export.Times) != len(r.Export.Avgs):
		return newKind("validate", ErrBadRequest, "export.times and export.avgs differ in length")
	}
	return nil
}

// AnalysisHandler handles analysis requests.
type AnalysisHandler struct {
	deps AnalysisDependencies
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps AnalysisDependencies) *AnalysisHandler {
	return &AnalysisHandler{deps: deps}
}

// HandlePostAnalysis handles POST /v1/analysis requests.
func (h *AnalysisHandler) HandlePostAnalysis(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_analysis"
	var req analysisRequest
	if !decodeBody(w, r, op, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	games := req.ScoringPlays
	if len(games) == 0 {
		games = h.deps.ScoringPlays(r.Context())
	}
	rep, err := h.deps.Analyze(r.Context(), req.Game, req.Export, games)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
