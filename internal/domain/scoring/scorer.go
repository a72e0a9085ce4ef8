// Package scoring turns timestamped sentiment predictions into a windowed
// intensity curve.
//
// A window collects every record whose time falls in [start, start+W]. Its
// raw score is the summed distance from neutral over the moderately
// confident records, weighted by log(1+count) and doubled. Raw scores are
// then normalized by the largest raw score of the run.
package scoring

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/okian/gamepulse/internal/domain/dedupe"
	"github.com/okian/gamepulse/internal/domain/model"
	"github.com/okian/gamepulse/pkg/logger"
	"github.com/okian/gamepulse/pkg/metrics"
)

const (
	// DefaultWindow is the window length W.
	DefaultWindow = 45 * time.Second
	// DefaultSpikeThreshold is the normalized score a spike must rise above.
	DefaultSpikeThreshold = 0.3
	// DefaultWorst and DefaultBest size the exported highlight lists.
	DefaultWorst = 15
	DefaultBest  = 5

	neutral = 0.5
	// records at least this far from neutral are too confident to count.
	confidenceCutoff = 0.3
	scoreScale       = 2.0
)

// Mapper converts a window start to game time. *gametime.Timeline
// satisfies it.
type Mapper interface {
	Lookup(at time.Time) (float64, bool)
}

// Series is the result of one scorer run.
type Series struct {
	Points []model.WindowedScore
	MaxRaw float64
	// Worst and Best hold unique texts seen in mapped windows, ordered by
	// prediction then text. Both are empty without a Mapper.
	Worst []model.Highlight
	Best  []model.Highlight
	// Spikes counts upward crossings of the normalized score above the
	// spike threshold.
	Spikes int
	// Live is true when point times are game minutes.
	Live bool
}

// Scorer computes windowed sentiment scores.
type Scorer struct {
	window         time.Duration
	step           time.Duration
	mapper         Mapper
	spikeThreshold float64
	worst          int
	best           int
	newDeduper     func() dedupe.Deduper
	log            logger.Logger
}

// New creates a Scorer. The step defaults to a quarter of the window,
// truncated to whole seconds.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		window:         DefaultWindow,
		spikeThreshold: DefaultSpikeThreshold,
		worst:          DefaultWorst,
		best:           DefaultBest,
		newDeduper:     func() dedupe.Deduper { return dedupe.New() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.step <= 0 {
		s.step = DefaultStep(s.window)
	}
	if s.log == nil {
		s.log = logger.Get().Named("scoring")
	}
	return s
}

// DefaultStep returns W/4 truncated to whole seconds, never below one second.
func DefaultStep(window time.Duration) time.Duration {
	step := (window / 4).Truncate(time.Second)
	if step < time.Second {
		return time.Second
	}
	return step
}

// WindowScore is the raw score of the predictions inside one window.
// An empty window scores 0.
func WindowScore(predictions []float64) float64 {
	if len(predictions) == 0 {
		return 0
	}
	var sum float64
	for _, p := range predictions {
		if d := math.Abs(p - neutral); d < confidenceCutoff {
			sum += d
		}
	}
	return sum * math.Log(1+float64(len(predictions))) * scoreScale
}

// Normalize divides every raw score by the maximum. A zero maximum yields 0
// for every point.
func Normalize(points []model.WindowedScore, maxRaw float64) {
	for i := range points {
		if maxRaw == 0 {
			points[i].Normalized = 0
			continue
		}
		points[i].Normalized = points[i].Raw / maxRaw
	}
}

// CountSpikes returns how many times the normalized curve rises above
// threshold after being at or below it. A curve that starts above the
// threshold counts as one spike.
func CountSpikes(points []model.WindowedScore, threshold float64) int {
	spikes := 0
	armed := true
	for _, p := range points {
		if p.Normalized > threshold {
			if armed {
				spikes++
				armed = false
			}
			continue
		}
		armed = true
	}
	return spikes
}

type window struct {
	start   time.Time
	records []model.SentimentRecord
	raw     float64
}

// Compute scores the records. The input is not modified; records are
// ordered by time with ties kept in input order.
func (s *Scorer) Compute(ctx context.Context, records []model.SentimentRecord) Series {
	started := time.Now()
	defer func() {
		metrics.RecordSeriesBuildDuration(float64(time.Since(started).Milliseconds()))
	}()

	series := Series{Live: s.mapper != nil}
	metrics.RecordRecordsIngested(len(records))
	if len(records) == 0 {
		return series
	}

	sorted := make([]model.SentimentRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	windows, empty := s.scan(sorted)
	for _, w := range windows {
		series.MaxRaw = math.Max(series.MaxRaw, w.raw)
	}
	metrics.UpdateSeriesMaxRaw(series.MaxRaw)

	seen := s.newDeduper()
	var highlights []model.Highlight
	unmapped := 0
	for _, w := range windows {
		point := model.WindowedScore{
			Time:  unixSeconds(w.start),
			Raw:   w.raw,
			Count: len(w.records),
		}
		if s.mapper != nil {
			gt, ok := s.mapper.Lookup(w.start)
			if !ok {
				unmapped++
				continue
			}
			point.Time = gt
			for _, r := range w.records {
				if !seen.SeenAndRecord(r.Text) {
					highlights = append(highlights, model.Highlight{Text: r.Text, Prediction: r.Prediction, GameTime: gt})
				}
			}
		}
		series.Points = append(series.Points, point)
	}
	Normalize(series.Points, series.MaxRaw)
	series.Spikes = CountSpikes(series.Points, s.spikeThreshold)
	series.Worst, series.Best = s.rank(highlights)

	metrics.RecordWindows(len(series.Points), empty)
	metrics.RecordPointsUnmapped(unmapped)
	s.log.Debug(ctx, "series computed",
		logger.Int("records", len(sorted)),
		logger.Int("points", len(series.Points)),
		logger.Int("empty_windows", empty),
		logger.Int("unmapped", unmapped),
		logger.Float64("max_raw", series.MaxRaw),
		logger.Int("spikes", series.Spikes),
	)
	return series
}

// scan slides the window across sorted records and returns the non-empty
// windows with their raw scores, plus the number of empty windows skipped.
// Both window edges only move forward, so membership costs O(n) overall.
func (s *Scorer) scan(sorted []model.SentimentRecord) ([]window, int) {
	first, last := sorted[0].Time, sorted[len(sorted)-1].Time
	var (
		windows []window
		empty   int
		lo, hi  int
		preds   []float64
	)
	for start := first; !start.After(last); start = start.Add(s.step) {
		end := start.Add(s.window)
		for lo < len(sorted) && sorted[lo].Time.Before(start) {
			lo++
		}
		if hi < lo {
			hi = lo
		}
		for hi < len(sorted) && !sorted[hi].Time.After(end) {
			hi++
		}
		if hi == lo {
			empty++
			continue
		}
		members := sorted[lo:hi]
		preds = preds[:0]
		for _, r := range members {
			preds = append(preds, r.Prediction)
		}
		windows = append(windows, window{start: start, records: members, raw: WindowScore(preds)})
	}
	return windows, empty
}

func (s *Scorer) rank(highlights []model.Highlight) (worst, best []model.Highlight) {
	if len(highlights) == 0 {
		return nil, nil
	}
	sort.Slice(highlights, func(i, j int) bool {
		if highlights[i].Prediction != highlights[j].Prediction {
			return highlights[i].Prediction < highlights[j].Prediction
		}
		return highlights[i].Text < highlights[j].Text
	})
	worst = highlights[:min(s.worst, len(highlights))]
	best = highlights[len(highlights)-min(s.best, len(highlights)):]
	return worst, best
}

func unixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)
}
