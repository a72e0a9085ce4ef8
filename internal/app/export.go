package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/okian/gamepulse/internal/domain/model"
	"github.com/okian/gamepulse/internal/domain/scoring"
	"github.com/okian/gamepulse/pkg/logger"
)

// Export is the interchange document between the series and analysis
// stages. Times are game minutes for live series and unix seconds
// otherwise.
type Export struct {
	Times   []float64   `json:"times"`
	Avgs    []float64   `json:"avgs"`
	Counts  []int       `json:"counts"`
	Worst15 []Highlight `json:"worst15"`
	Best5   []Highlight `json:"best5"`
	// Spikes and Live are informational and ignored by the analysis.
	Spikes int  `json:"spikes"`
	Live   bool `json:"live"`
}

// Highlight serializes as a [text, prediction, game_time] triple.
type Highlight model.Highlight

// MarshalJSON implements json.Marshaler.
func (h Highlight) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{h.Text, h.Prediction, h.GameTime})
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *Highlight) UnmarshalJSON(data []byte) error {
	var triple []json.RawMessage
	if err := json.Unmarshal(data, &triple); err != nil {
		return err
	}
	if len(triple) != 3 {
		return fmt.Errorf("%w: highlight has %d fields, want 3", ErrMalformedInput, len(triple))
	}
	if err := json.Unmarshal(triple[0], &h.Text); err != nil {
		return err
	}
	if err := json.Unmarshal(triple[1], &h.Prediction); err != nil {
		return err
	}
	return json.Unmarshal(triple[2], &h.GameTime)
}

// NewExport flattens a scorer series.
func NewExport(s scoring.Series) Export {
	exp := Export{
		Times:   make([]float64, 0, len(s.Points)),
		Avgs:    make([]float64, 0, len(s.Points)),
		Counts:  make([]int, 0, len(s.Points)),
		Worst15: make([]Highlight, 0, len(s.Worst)),
		Best5:   make([]Highlight, 0, len(s.Best)),
		Spikes:  s.Spikes,
		Live:    s.Live,
	}
	for _, p := range s.Points {
		exp.Times = append(exp.Times, p.Time)
		exp.Avgs = append(exp.Avgs, p.Normalized)
		exp.Counts = append(exp.Counts, p.Count)
	}
	for _, h := range s.Worst {
		exp.Worst15 = append(exp.Worst15, Highlight(h))
	}
	for _, h := range s.Best {
		exp.Best5 = append(exp.Best5, Highlight(h))
	}
	return exp
}

// Sentiment returns the normalized series on the game-time axis. Analyze
// rejects exports whose times and avgs differ in length before calling it.
func (e Export) Sentiment() []model.WindowedScore {
	n := min(len(e.Times), len(e.Avgs))
	out := make([]model.WindowedScore, 0, n)
	for i := 0; i < n; i++ {
		ws := model.WindowedScore{Time: e.Times[i], Normalized: e.Avgs[i]}
		if i < len(e.Counts) {
			ws.Count = e.Counts[i]
		}
		out = append(out, ws)
	}
	return out
}

// DecodeExport parses an export document.
func DecodeExport(data []byte) (Export, error) {
	var exp Export
	if err := json.Unmarshal(data, &exp); err != nil {
		return Export{}, fmt.Errorf("%w: export: %w", ErrMalformedInput, err)
	}
	return exp, nil
}

// LoadExport reads an export file. A missing or malformed file is logged
// and yields a zero Export; callers check for an empty series.
func LoadExport(ctx context.Context, log logger.Logger, path string) Export {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error(ctx, "cannot read export", logger.String("path", path), logger.Error(err))
		return Export{}
	}
	exp, err := DecodeExport(data)
	if err != nil {
		log.Error(ctx, "cannot parse export", logger.String("path", path), logger.Error(err))
		return Export{}
	}
	return exp
}
