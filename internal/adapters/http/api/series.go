package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	service "github.com/okian/gamepulse/internal/app"
)

// SeriesDependencies builds and stores sentiment series.
type SeriesDependencies interface {
	BuildSeries(ctx context.Context, req service.SeriesRequest) (service.Export, error)
	SaveExport(ctx context.Context, key string, exp service.Export) error
}

// seriesRequest is the body of POST /v1/series.
type seriesRequest struct {
	// Key, when set, stores the export under that game name.
	Key     string            `json:"key"`
	Records []json.RawMessage `json:"records"`
	// Feed and GameIndex map the series onto game time.
	Feed      []json.RawMessage `json:"feed"`
	GameIndex *int              `json:"game_index"`
}

func (r seriesRequest) validate() error {
	switch {
	case len(r.Records) == 0:
		return newKind("validate", ErrBadRequest, "missing records")
	case r.GameIndex != nil && len(r.Feed) == 0:
		return newKind("validate", ErrBadRequest, "game_index requires feed")
	case r.GameIndex != nil && *r.GameIndex < 0:
		return newKind("validate", ErrBadRequest, "game_index must not be negative")
	case strings.ContainsAny(r.Key, `/\`):
		return newKind("validate", ErrBadRequest, "key must be a plain name")
	}
	return nil
}

// SeriesHandler handles series requests.
type SeriesHandler struct {
	deps SeriesDependencies
}

// NewSeriesHandler creates a new series handler.
func NewSeriesHandler(deps SeriesDependencies) *SeriesHandler {
	return &SeriesHandler{deps: deps}
}

// HandlePostSeries handles POST /v1/series requests.
func (h *SeriesHandler) HandlePostSeries(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_series"
	var req seriesRequest
	if !decodeBody(w, r, op, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	sr := service.SeriesRequest{Records: req.Records, Feed: req.Feed, GameIndex: -1}
	if req.GameIndex != nil {
		sr.GameIndex = *req.GameIndex
	}
	exp, err := h.deps.BuildSeries(r.Context(), sr)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if req.Key != "" {
		if err := h.deps.SaveExport(r.Context(), req.Key, exp); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, exp)
}
