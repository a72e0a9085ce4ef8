package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a dedicated registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithErrorBuckets([]float64{0, 5}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should register its collectors", func() {
				So(manager, ShouldNotBeNil)
				manager.windowsEmitted.Add(2)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				So(testutil.ToFloat64(manager.windowsEmitted), ShouldEqual, 2.0)
			})
		})

		Convey("When registering the same names twice on one registry", func() {
			registry := prometheus.NewRegistry()
			_ = NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording series metrics", func() {
			before := testutil.ToFloat64(globalManager.recordsIngested)
			RecordRecordsIngested(5)
			RecordRecordSkipped("bad_timestamp")
			RecordWindows(3, 1)
			RecordPointsUnmapped(2)
			UpdateSeriesMaxRaw(1.25)
			RecordSeriesBuildDuration(4)

			Convey("Then counters and gauges move", func() {
				So(testutil.ToFloat64(globalManager.recordsIngested)-before, ShouldEqual, 5.0)
				So(testutil.ToFloat64(globalManager.seriesMaxRaw), ShouldEqual, 1.25)
				So(testutil.ToFloat64(globalManager.recordsSkipped.WithLabelValues("bad_timestamp")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording the remaining metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordScoringEvents(4)
					RecordDriveSkipped("no_plays")
					RecordGameSkipped()
					RecordPredictionError("pace", 21)
					RecordAnalysis("ok")
					RecordStoreOperation("file", "put", "ok")
					RecordFetch("morechildren", "ok", 120)
					UpdateFetchQueueSize(3)
					RecordCommentsCollected(10)
					RecordHTTPRequest("analysis", "POST", "200")
					RecordHTTPRequestDuration("analysis", "POST", "200", 3)
				}, ShouldNotPanic)
			})
		})

		Convey("When reading the registry", func() {
			Convey("Then it is the custom one", func() {
				So(GetRegistry(), ShouldEqual, customRegistry)
			})
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording runtime figures", func() {
			UpdateSystemMemoryUsage(2048)
			UpdateSystemGoroutineCount(12)
			RecordSystemGCPauseTime(0.2)

			Convey("Then the gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.systemMemoryBytes), ShouldEqual, 2048.0)
				So(testutil.ToFloat64(globalManager.systemGoroutines), ShouldEqual, 12.0)
			})
		})
	})
}
