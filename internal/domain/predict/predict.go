// Package predict compares a pace-based final-score estimate with one
// adjusted by crowd sentiment, at every scoring event of a game.
package predict

import (
	"context"
	"math"
	"sort"

	"github.com/okian/gamepulse/internal/domain/gametime"
	"github.com/okian/gamepulse/internal/domain/model"
	"github.com/okian/gamepulse/pkg/logger"
	"github.com/okian/gamepulse/pkg/metrics"
)

const (
	// DefaultLookback is how far before an event sentiment is averaged, in
	// game minutes.
	DefaultLookback = 0.5
	// NeutralSentiment stands in when no sentiment sample falls in the
	// lookback.
	NeutralSentiment = 0.5

	sentimentBase  = 0.8
	sentimentScale = 0.5
)

// Point is one entry of the score-over-time series. Predictions are nil
// where they are undefined, such as at game time zero.
type Point struct {
	GameTime   float64
	TotalScore int
	Pace       *float64
	Sentiment  *float64
	// SentimentMean is the lookback mean behind Sentiment. SentimentSamples
	// is zero when the mean is the neutral default rather than real signal.
	SentimentMean    *float64
	SentimentSamples int
}

// Result holds the series for one game.
type Result struct {
	Points     []Point
	FinalScore int
}

// Pace returns the pace predictions in game-time order.
func (r Result) Pace() []model.Prediction {
	return r.collect(func(p Point) *float64 { return p.Pace })
}

// Sentiment returns the sentiment-adjusted predictions in game-time order.
func (r Result) Sentiment() []model.Prediction {
	return r.collect(func(p Point) *float64 { return p.Sentiment })
}

func (r Result) collect(pick func(Point) *float64) []model.Prediction {
	var out []model.Prediction
	for _, p := range r.Points {
		if v := pick(p); v != nil {
			out = append(out, model.Prediction{GameTime: p.GameTime, Predicted: *v})
		}
	}
	return out
}

// Engine runs the predictors.
type Engine struct {
	lookback float64
	log      logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLookback sets the sentiment lookback in game minutes.
func WithLookback(minutes float64) Option {
	return func(e *Engine) {
		if minutes > 0 {
			e.lookback = minutes
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{lookback: DefaultLookback}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Get().Named("predict")
	}
	return e
}

// Predict builds the score series from events and evaluates both
// predictors at each event with positive game time. The series starts at
// 0-0 and, when the last event comes before the end of regulation, closes
// at 60 with the final score, where any defined predictor equals the final
// score. sentiment is the windowed series on the same game-time axis.
func (e *Engine) Predict(ctx context.Context, events []model.ScoringEvent, sentiment []model.WindowedScore) Result {
	ordered := make([]model.ScoringEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].GameTime < ordered[j].GameTime })
	e.checkMonotonic(ctx, ordered)

	points := []Point{{GameTime: 0, TotalScore: 0}}
	anyPace, anySentiment := false, false
	for _, ev := range ordered {
		p := Point{GameTime: ev.GameTime, TotalScore: ev.Total()}
		if gt := ev.GameTime; gt > 0 {
			total := float64(p.TotalScore)
			pace := total * (gametime.RegulationEnd / gt)
			p.Pace = &pace
			anyPace = true

			mean, n := e.lookbackMean(sentiment, gt)
			factor := sentimentBase + mean*sentimentScale
			remaining := (gametime.RegulationEnd - gt) / gt
			adjusted := total + total*remaining*factor
			p.Sentiment = &adjusted
			p.SentimentMean = &mean
			p.SentimentSamples = n
			anySentiment = true
		}
		points = append(points, p)
	}

	if last := points[len(points)-1]; last.GameTime < gametime.RegulationEnd {
		closing := Point{GameTime: gametime.RegulationEnd, TotalScore: last.TotalScore}
		final := float64(last.TotalScore)
		if anyPace {
			v := final
			closing.Pace = &v
		}
		if anySentiment {
			v := final
			closing.Sentiment = &v
		}
		points = append(points, closing)
	}

	r := Result{Points: points, FinalScore: points[len(points)-1].TotalScore}
	for _, p := range r.Points {
		if p.Pace != nil {
			metrics.RecordPredictionError("pace", math.Abs(*p.Pace-float64(r.FinalScore)))
		}
		if p.Sentiment != nil {
			metrics.RecordPredictionError("sentiment", math.Abs(*p.Sentiment-float64(r.FinalScore)))
		}
	}
	return r
}

// lookbackMean averages normalized scores with time in [gt-lookback, gt),
// never reaching below zero. It returns NeutralSentiment with no samples.
func (e *Engine) lookbackMean(series []model.WindowedScore, gt float64) (float64, int) {
	start := math.Max(0, gt-e.lookback)
	var sum float64
	n := 0
	for _, s := range series {
		if s.Time >= start && s.Time < gt {
			sum += s.Normalized
			n++
		}
	}
	if n == 0 {
		return NeutralSentiment, 0
	}
	return sum / float64(n), n
}

func (e *Engine) checkMonotonic(ctx context.Context, ordered []model.ScoringEvent) {
	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		if cur.HomeScore < prev.HomeScore || cur.AwayScore < prev.AwayScore {
			e.log.Warn(ctx, "score went down between scoring events",
				logger.String("from", prev.Clock),
				logger.String("to", cur.Clock),
				logger.Int("home_before", prev.HomeScore),
				logger.Int("home_after", cur.HomeScore),
				logger.Int("away_before", prev.AwayScore),
				logger.Int("away_after", cur.AwayScore),
			)
		}
	}
}
