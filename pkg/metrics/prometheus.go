// Package metrics provides Prometheus metrics for the gamepulse pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by gamepulse.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	errorBuckets     []float64
	registry         prometheus.Registerer

	// Sentiment series
	recordsIngested       prometheus.Counter
	recordsSkipped        *prometheus.CounterVec
	windowsEmitted        prometheus.Counter
	windowsEmpty          prometheus.Counter
	pointsUnmapped        prometheus.Counter
	seriesMaxRaw          prometheus.Gauge
	seriesBuildDurationMs prometheus.Histogram

	// Scoring plays
	scoringEventsExtracted prometheus.Counter
	drivesSkipped          *prometheus.CounterVec
	gamesSkipped           prometheus.Counter

	// Predictions
	predictionAbsError *prometheus.HistogramVec
	analysesTotal      *prometheus.CounterVec

	// Storage
	storeOperations *prometheus.CounterVec

	// Comment fetching
	fetchRequests  *prometheus.CounterVec
	fetchLatencyMs prometheus.Histogram
	fetchQueueSize prometheus.Gauge
	commentsTotal  prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryBytes prometheus.Gauge
	systemGoroutines  prometheus.Gauge
	systemGCPauseMs   prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // dedicated registry without Go runtime collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gamepulse",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		errorBuckets:     []float64{0, 1, 2, 5, 10, 20, 40, 80, 160},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.recordsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "records_ingested_total",
		Help: "Sentiment records accepted into a series build",
	})
	m.recordsSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "records_skipped_total",
		Help: "Sentiment records dropped while loading, by reason",
	}, []string{"reason"})
	m.windowsEmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "windows_emitted_total",
		Help: "Non-empty sliding windows that produced a score",
	})
	m.windowsEmpty = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "windows_empty_total",
		Help: "Sliding windows skipped because they held no records",
	})
	m.pointsUnmapped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "points_unmapped_total",
		Help: "Series points dropped because no game-time mapping was available",
	})
	m.seriesMaxRaw = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "series_max_raw_score",
		Help: "Maximum raw window score of the last series build",
	})
	m.seriesBuildDurationMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "series_build_duration_milliseconds",
		Help:    "Time spent computing a windowed series",
		Buckets: m.histogramBuckets,
	})

	m.scoringEventsExtracted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "scoring_events_extracted_total",
		Help: "Scoring events derived from play-by-play drives",
	})
	m.drivesSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "drives_skipped_total",
		Help: "Scoring drives skipped during extraction, by reason",
	}, []string{"reason"})
	m.gamesSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "games_skipped_total",
		Help: "Games skipped during extraction because of malformed team data",
	})

	m.predictionAbsError = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "prediction_abs_error_points",
		Help:    "Absolute final-score prediction error in points, by predictor",
		Buckets: m.errorBuckets,
	}, []string{"predictor"})
	m.analysesTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "analyses_total",
		Help: "Game analyses attempted, by outcome",
	}, []string{"outcome"})

	m.storeOperations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "store_operations_total",
		Help: "Repository operations by backend, operation and outcome",
	}, []string{"backend", "op", "outcome"})

	m.fetchRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "fetch_requests_total",
		Help: "Comment source requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"})
	m.fetchLatencyMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "fetch_latency_milliseconds",
		Help:    "Comment source request latency",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})
	m.fetchQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "fetch_queue_size",
		Help: "Pending comment expansion jobs",
	})
	m.commentsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "comments_collected_total",
		Help: "Unique comments collected from the comment source",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryBytes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system",
		Name: "memory_bytes",
		Help: "Heap bytes allocated and still in use",
	})
	m.systemGoroutines = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system",
		Name: "goroutines",
		Help: "Number of goroutines",
	})
	m.systemGCPauseMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "system",
		Name:    "gc_pause_milliseconds",
		Help:    "Average GC pause",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
	})
}

// Sentiment series.

// RecordRecordsIngested adds n accepted sentiment records.
func RecordRecordsIngested(n int) {
	globalManager.recordsIngested.Add(float64(n))
}

// RecordRecordSkipped counts one dropped record.
func RecordRecordSkipped(reason string) {
	globalManager.recordsSkipped.WithLabelValues(reason).Inc()
}

// RecordWindows records emitted and empty window counts of one build.
func RecordWindows(emitted, empty int) {
	globalManager.windowsEmitted.Add(float64(emitted))
	globalManager.windowsEmpty.Add(float64(empty))
}

// RecordPointsUnmapped counts series points dropped for lack of a game-time mapping.
func RecordPointsUnmapped(n int) {
	globalManager.pointsUnmapped.Add(float64(n))
}

// UpdateSeriesMaxRaw sets the maximum raw score of the last build.
func UpdateSeriesMaxRaw(v float64) {
	globalManager.seriesMaxRaw.Set(v)
}

// RecordSeriesBuildDuration observes how long a series build took.
func RecordSeriesBuildDuration(ms float64) {
	globalManager.seriesBuildDurationMs.Observe(ms)
}

// Scoring plays.

// RecordScoringEvents adds n extracted scoring events.
func RecordScoringEvents(n int) {
	globalManager.scoringEventsExtracted.Add(float64(n))
}

// RecordDriveSkipped counts a skipped scoring drive.
func RecordDriveSkipped(reason string) {
	globalManager.drivesSkipped.WithLabelValues(reason).Inc()
}

// RecordGameSkipped counts a skipped game.
func RecordGameSkipped() {
	globalManager.gamesSkipped.Inc()
}

// Predictions.

// RecordPredictionError observes the absolute error of one prediction point.
func RecordPredictionError(predictor string, absErr float64) {
	globalManager.predictionAbsError.WithLabelValues(predictor).Observe(absErr)
}

// RecordAnalysis counts an analysis by outcome (ok, skipped, error).
func RecordAnalysis(outcome string) {
	globalManager.analysesTotal.WithLabelValues(outcome).Inc()
}

// Storage.

// RecordStoreOperation counts a repository call.
func RecordStoreOperation(backend, op, outcome string) {
	globalManager.storeOperations.WithLabelValues(backend, op, outcome).Inc()
}

// Comment fetching.

// RecordFetch counts a comment source request and observes its latency.
func RecordFetch(endpoint, outcome string, latencyMs float64) {
	globalManager.fetchRequests.WithLabelValues(endpoint, outcome).Inc()
	globalManager.fetchLatencyMs.Observe(latencyMs)
}

// UpdateFetchQueueSize sets the number of pending expansion jobs.
func UpdateFetchQueueSize(size int) {
	globalManager.fetchQueueSize.Set(float64(size))
}

// RecordCommentsCollected adds n unique comments.
func RecordCommentsCollected(n int) {
	globalManager.commentsTotal.Add(float64(n))
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// System.

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryBytes.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutines.Set(float64(n))
}

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPauseMs.Observe(ms)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
