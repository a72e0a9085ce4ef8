package scoring_test

import (
	"context"
	"io"
	"math"
	"math/rand"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/okian/gamepulse/internal/domain/dedupe"
	"github.com/okian/gamepulse/internal/domain/model"
	"github.com/okian/gamepulse/internal/domain/scoring"
	"github.com/okian/gamepulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var t0 = time.Date(2025, 10, 4, 19, 30, 0, 0, time.UTC)

func rec(sec float64, p float64, text string) model.SentimentRecord {
	return model.SentimentRecord{
		Time:       t0.Add(time.Duration(sec * float64(time.Second))),
		Text:       text,
		Prediction: p,
	}
}

type mapperFunc func(time.Time) (float64, bool)

func (f mapperFunc) Lookup(at time.Time) (float64, bool) { return f(at) }

func TestWindowScore(t *testing.T) {
	Convey("Given window predictions", t, func() {
		Convey("When some are too confident", func() {
			got := scoring.WindowScore([]float64{0.6, 0.4, 0.95})

			Convey("Then they count toward the weight but not the sum", func() {
				So(got, ShouldAlmostEqual, 0.2*math.Log(4)*2, 1e-12)
			})
		})

		Convey("When the window is empty", func() {
			So(scoring.WindowScore(nil), ShouldEqual, 0.0)
		})

		Convey("When every prediction is exactly neutral", func() {
			So(scoring.WindowScore([]float64{0.5, 0.5}), ShouldEqual, 0.0)
		})
	})
}

func TestDefaultStep(t *testing.T) {
	Convey("Given window lengths", t, func() {
		So(scoring.DefaultStep(45*time.Second), ShouldEqual, 11*time.Second)
		So(scoring.DefaultStep(60*time.Second), ShouldEqual, 15*time.Second)
		So(scoring.DefaultStep(2*time.Second), ShouldEqual, time.Second)
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given raw points", t, func() {
		points := []model.WindowedScore{{Raw: 1}, {Raw: 4}, {Raw: 2}}

		Convey("When the maximum is positive", func() {
			scoring.Normalize(points, 4)

			Convey("Then values land in [0,1] with the maximum at 1", func() {
				So(points[0].Normalized, ShouldEqual, 0.25)
				So(points[1].Normalized, ShouldEqual, 1.0)
				So(points[2].Normalized, ShouldEqual, 0.5)
			})
		})

		Convey("When the maximum is zero", func() {
			scoring.Normalize(points, 0)

			Convey("Then every point is zero", func() {
				for _, p := range points {
					So(p.Normalized, ShouldEqual, 0.0)
				}
			})
		})
	})
}

func TestCountSpikes(t *testing.T) {
	Convey("Given a normalized curve", t, func() {
		var points []model.WindowedScore
		for _, v := range []float64{0.1, 0.5, 0.6, 0.2, 0.4, 0.1, 0.35} {
			points = append(points, model.WindowedScore{Normalized: v})
		}

		Convey("Then each upward crossing counts once", func() {
			So(scoring.CountSpikes(points, 0.3), ShouldEqual, 3)
		})

		Convey("Then a value equal to the threshold does not cross it", func() {
			So(scoring.CountSpikes([]model.WindowedScore{{Normalized: 0.3}}, 0.3), ShouldEqual, 0)
		})

		Convey("Then a curve that opens above the threshold counts that run as a spike", func() {
			curve := []model.WindowedScore{{Normalized: 1}, {Normalized: 0.9}, {Normalized: 0.1}}
			So(scoring.CountSpikes(curve, 0.3), ShouldEqual, 1)
		})

		Convey("Then a curve that never crosses reports zero, not minus one", func() {
			So(scoring.CountSpikes([]model.WindowedScore{{Normalized: 0.1}, {Normalized: 0.2}}, 0.3), ShouldEqual, 0)
			So(scoring.CountSpikes(nil, 0.3), ShouldEqual, 0)
		})
	})
}

func TestComputeWallClock(t *testing.T) {
	Convey("Given records spread over a hundred seconds", t, func() {
		records := []model.SentimentRecord{
			rec(100, 0.4, "c"),
			rec(0, 0.7, "a"),
			rec(10, 0.6, "b"),
		}
		s := scoring.New()
		series := s.Compute(context.Background(), records)

		Convey("Then the input slice is left untouched", func() {
			So(records[0].Text, ShouldEqual, "c")
		})

		Convey("Then only non-empty windows become points", func() {
			So(series.Live, ShouldBeFalse)
			So(len(series.Points), ShouldEqual, 6)
			So(series.Points[0].Count, ShouldEqual, 2)
			So(series.Points[0].Time, ShouldEqual, float64(t0.Unix()))
			So(series.Points[1].Time, ShouldEqual, float64(t0.Unix()+55))
		})

		Convey("Then the loudest window normalizes to one", func() {
			So(series.MaxRaw, ShouldAlmostEqual, 0.6*math.Log(3), 1e-12)
			So(series.Points[0].Normalized, ShouldEqual, 1.0)
			for _, p := range series.Points[1:] {
				So(p.Count, ShouldEqual, 1)
				So(p.Normalized, ShouldAlmostEqual, (0.2*math.Log(2))/(0.6*math.Log(3)), 1e-12)
			}
		})

		Convey("Then one spike is counted and no highlights are kept", func() {
			So(series.Spikes, ShouldEqual, 1)
			So(series.Worst, ShouldBeEmpty)
			So(series.Best, ShouldBeEmpty)
		})
	})

	Convey("Given a record exactly one window after another", t, func() {
		series := scoring.New().Compute(context.Background(), []model.SentimentRecord{
			rec(0, 0.6, "a"),
			rec(45, 0.6, "b"),
		})

		Convey("Then both sit in the first window", func() {
			So(series.Points[0].Count, ShouldEqual, 2)
		})
	})

	Convey("Given only highly confident records", t, func() {
		series := scoring.New().Compute(context.Background(), []model.SentimentRecord{
			rec(0, 0.99, "a"),
			rec(5, 0.01, "b"),
		})

		Convey("Then every normalized score is zero", func() {
			So(series.MaxRaw, ShouldEqual, 0.0)
			So(series.Points, ShouldNotBeEmpty)
			for _, p := range series.Points {
				So(p.Normalized, ShouldEqual, 0.0)
			}
		})
	})

	Convey("Given no records", t, func() {
		series := scoring.New().Compute(context.Background(), nil)

		Convey("Then the series is empty", func() {
			So(series.Points, ShouldBeEmpty)
			So(series.MaxRaw, ShouldEqual, 0.0)
		})
	})
}

func TestComputeMatchesNaiveWindows(t *testing.T) {
	Convey("Given a few hundred random records", t, func() {
		rng := rand.New(rand.NewSource(7))
		var records []model.SentimentRecord
		for i := 0; i < 400; i++ {
			records = append(records, rec(rng.Float64()*1800, rng.Float64(), "x"))
		}
		window, step := 45*time.Second, 11*time.Second
		series := scoring.New(scoring.WithWindow(window), scoring.WithStep(step)).
			Compute(context.Background(), records)

		sorted := append([]model.SentimentRecord(nil), records...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })
		var raws []float64
		for start := sorted[0].Time; !start.After(sorted[len(sorted)-1].Time); start = start.Add(step) {
			var preds []float64
			for _, r := range sorted {
				if !r.Time.Before(start) && !r.Time.After(start.Add(window)) {
					preds = append(preds, r.Prediction)
				}
			}
			if len(preds) > 0 {
				raws = append(raws, scoring.WindowScore(preds))
			}
		}

		Convey("Then every raw score matches filtering each window separately", func() {
			So(len(series.Points), ShouldEqual, len(raws))
			for i := range raws {
				So(series.Points[i].Raw, ShouldEqual, raws[i])
			}
		})

		Convey("Then normalized values stay within [0,1]", func() {
			for _, p := range series.Points {
				So(p.Normalized, ShouldBeBetweenOrEqual, 0.0, 1.0)
			}
		})
	})
}

func TestComputeLive(t *testing.T) {
	// Window starts before t0+60s have no game time; later ones map to
	// minutes since t0.
	mapper := mapperFunc(func(at time.Time) (float64, bool) {
		d := at.Sub(t0)
		if d < 60*time.Second {
			return 0, false
		}
		return d.Minutes(), true
	})

	Convey("Given a live mapper", t, func() {
		records := []model.SentimentRecord{
			rec(0, 0.7, "early"),
			rec(10, 0.6, "early too"),
			rec(100, 0.4, "late"),
		}
		series := scoring.New(scoring.WithMapper(mapper)).Compute(context.Background(), records)

		Convey("Then unmapped windows are dropped", func() {
			So(series.Live, ShouldBeTrue)
			So(len(series.Points), ShouldEqual, 4)
			So(series.Points[0].Time, ShouldAlmostEqual, 66.0/60.0, 1e-9)
		})

		Convey("Then normalization still uses the dropped maximum", func() {
			So(series.MaxRaw, ShouldAlmostEqual, 0.6*math.Log(3), 1e-12)
			So(series.Points[0].Normalized, ShouldBeLessThan, 1.0)
		})

		Convey("Then each text is kept once with its first game time", func() {
			So(len(series.Worst), ShouldEqual, 1)
			So(series.Worst[0].Text, ShouldEqual, "late")
			So(series.Worst[0].GameTime, ShouldAlmostEqual, 66.0/60.0, 1e-9)
			So(series.Best, ShouldResemble, series.Worst)
		})
	})

	Convey("Given many mapped texts", t, func() {
		records := []model.SentimentRecord{
			rec(70, 0.9, "b"),
			rec(71, 0.1, "z"),
			rec(72, 0.1, "a"),
			rec(73, 0.5, "m"),
			rec(74, 0.9, "a"),
		}
		series := scoring.New(scoring.WithMapper(mapper), scoring.WithHighlights(2, 1)).
			Compute(context.Background(), records)

		Convey("Then highlights are ordered by prediction then text", func() {
			So(len(series.Worst), ShouldEqual, 2)
			So(series.Worst[0].Text, ShouldEqual, "a")
			So(series.Worst[0].Prediction, ShouldEqual, 0.1)
			So(series.Worst[1].Text, ShouldEqual, "z")
			So(len(series.Best), ShouldEqual, 1)
			So(series.Best[0].Text, ShouldEqual, "b")
		})
	})

	Convey("Given a run-scoped deduper shared across computations", t, func() {
		d := dedupe.New()
		s := scoring.New(scoring.WithMapper(mapper), scoring.WithDeduper(d))
		first := s.Compute(context.Background(), []model.SentimentRecord{rec(70, 0.4, "same")})
		second := s.Compute(context.Background(), []model.SentimentRecord{rec(80, 0.4, "same")})

		Convey("Then a text is highlighted only the first time", func() {
			So(len(first.Worst), ShouldEqual, 1)
			So(second.Worst, ShouldBeEmpty)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}
