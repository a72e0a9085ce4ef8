package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/gamepulse/internal/domain/plays"
)

// ScoringDependencies extracts scoring plays from a feed.
type ScoringDependencies interface {
	Extract(ctx context.Context, feed []json.RawMessage) ([]plays.GameScoring, error)
}

// ScoringHandler handles scoring-play extraction requests.
type ScoringHandler struct {
	deps ScoringDependencies
}

// NewScoringHandler creates a new scoring handler.
func NewScoringHandler(deps ScoringDependencies) *ScoringHandler {
	return &ScoringHandler{deps: deps}
}

// HandlePostScoringPlays handles POST /v1/scoring-plays requests. The body
// is a play-by-play feed.
func (h *ScoringHandler) HandlePostScoringPlays(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_scoring_plays"
	var feed []json.RawMessage
	if !decodeBody(w, r, op, &feed) {
		return
	}
	games, err := h.deps.Extract(r.Context(), feed)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if games == nil {
		games = []plays.GameScoring{}
	}
	writeJSON(w, http.StatusOK, games)
}
