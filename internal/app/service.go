// Package service wires the pipeline stages together: series export,
// scoring-play extraction, analysis, and comment fetching. It backs both
// the CLI and the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/gamepulse/internal/adapters/reddit"
	"github.com/okian/gamepulse/internal/adapters/repository"
	"github.com/okian/gamepulse/internal/config"
	"github.com/okian/gamepulse/internal/domain/dedupe"
	"github.com/okian/gamepulse/internal/domain/plays"
	"github.com/okian/gamepulse/internal/domain/predict"
	"github.com/okian/gamepulse/internal/domain/scoring"
	"github.com/okian/gamepulse/pkg/logger"
	"github.com/okian/gamepulse/pkg/metrics"
)

// CommentSource collects the comments of a thread.
type CommentSource interface {
	Collect(ctx context.Context, postID string) ([]reddit.Comment, error)
}

// Stats is a snapshot of the service counters.
type Stats struct {
	RunID           string    `json:"run_id"`
	StartedAt       time.Time `json:"started_at"`
	Started         bool      `json:"started"`
	SeriesBuilt     int64     `json:"series_built"`
	GamesExtracted  int64     `json:"games_extracted"`
	AnalysesOK      int64     `json:"analyses_ok"`
	AnalysesFailed  int64     `json:"analyses_failed"`
	AnalysesSkipped int64     `json:"analyses_skipped"`
	CommentsFetched int64     `json:"comments_fetched"`
	StoreBackend    string    `json:"store_backend"`
	WindowSeconds   int       `json:"window_seconds"`
	StepSeconds     int       `json:"step_seconds"`
	LookbackMinutes float64   `json:"lookback_minutes"`
}

// Service runs the pipeline against one configuration.
type Service struct {
	mu sync.RWMutex

	cfg      *config.Config
	store    repository.Store
	labeler  Labeler
	renderer Renderer
	source   CommentSource
	matchups map[string]Matchup
	skip     map[string]struct{}
	logger   logger.Logger

	runID     string
	startedAt time.Time
	started   bool

	seriesBuilt     atomic.Int64
	gamesExtracted  atomic.Int64
	analysesOK      atomic.Int64
	analysesFailed  atomic.Int64
	analysesSkipped atomic.Int64
	commentsFetched atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore uses store instead of opening one from the configuration.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithLabeler replaces the pass-through labeler.
func WithLabeler(l Labeler) Option {
	return func(s *Service) {
		if l != nil {
			s.labeler = l
		}
	}
}

// WithRenderer replaces the store-backed report renderer.
func WithRenderer(r Renderer) Option {
	return func(s *Service) {
		s.renderer = r
	}
}

// WithCommentSource sets where Fetch collects comments from.
func WithCommentSource(src CommentSource) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithMatchups replaces the export name to teams table.
func WithMatchups(m map[string]Matchup) Option {
	return func(s *Service) {
		s.matchups = m
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Start must be called before use.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		matchups: DefaultMatchups,
		skip:     make(map[string]struct{}, len(cfg.SkipFiles)),
		runID:    uuid.NewString(),
	}
	for _, name := range cfg.SkipFiles {
		s.skip[exportKey(name)] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store unless one was injected.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service").With(logger.String("run_id", s.runID))
	}
	if s.store == nil {
		store, err := NewStore(ctx, s.cfg)
		if err != nil {
			return err
		}
		s.store = store
	}
	if s.labeler == nil {
		s.labeler = NewPassThroughLabeler(s.logger.Named("labeler"))
	}
	if s.renderer == nil {
		s.renderer = NewStoreRenderer(s.store)
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "service started",
		logger.String("store", s.cfg.StoreBackend),
		logger.Int("window_seconds", s.cfg.WindowSeconds),
		logger.Int("step_seconds", s.cfg.StepSecondsOrDefault()),
	)
	return nil
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing store", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// scorer builds a scorer from the configuration with a fresh deduper.
func (s *Service) scorer(mapper scoring.Mapper) *scoring.Scorer {
	opts := []scoring.Option{
		scoring.WithWindow(time.Duration(s.cfg.WindowSeconds) * time.Second),
		scoring.WithStep(time.Duration(s.cfg.StepSecondsOrDefault()) * time.Second),
		scoring.WithSpikeThreshold(s.cfg.SpikeThreshold),
		scoring.WithHighlights(s.cfg.WorstHighlights, s.cfg.BestHighlights),
		scoring.WithDeduper(dedupe.New()),
		scoring.WithLogger(s.logger.Named("scoring")),
	}
	if mapper != nil {
		opts = append(opts, scoring.WithMapper(mapper))
	}
	return scoring.New(opts...)
}

// SeriesRequest describes one series build.
type SeriesRequest struct {
	// Records are raw record documents, labelled by the service's Labeler.
	Records []json.RawMessage
	// Feed is the live play-by-play feed; with GameIndex >= 0 the series
	// is mapped onto game time through that game's timeline.
	Feed      []json.RawMessage
	GameIndex int
}

// BuildSeries labels the records and computes the windowed series.
func (s *Service) BuildSeries(ctx context.Context, req SeriesRequest) (Export, error) {
	if err := s.ready(); err != nil {
		return Export{}, err
	}
	records := s.labeler.Label(ctx, req.Records)
	if len(records) == 0 {
		return Export{}, ErrNoRecords
	}

	var mapper scoring.Mapper
	if req.GameIndex >= 0 && len(req.Feed) > 0 {
		tl, err := plays.BuildTimeline(ctx, s.logger.Named("timeline"), req.Feed, req.GameIndex)
		if err != nil {
			return Export{}, fmt.Errorf("build timeline: %w", err)
		}
		s.logger.Debug(ctx, "live timeline built",
			logger.Int("game_index", req.GameIndex),
			logger.Int("samples", tl.Len()),
		)
		mapper = tl
	}

	series := s.scorer(mapper).Compute(ctx, records)
	s.seriesBuilt.Add(1)
	s.logger.Info(ctx, "series built",
		logger.Int("records", len(records)),
		logger.Int("points", len(series.Points)),
		logger.Int("spikes", series.Spikes),
		logger.Bool("live", series.Live),
	)
	return NewExport(series), nil
}

// SaveExport stores an export under the base name of key.
func (s *Service) SaveExport(ctx context.Context, key string, exp Export) error {
	if err := s.ready(); err != nil {
		return err
	}
	doc, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return s.store.Put(ctx, repository.KindExport, exportKey(key), doc)
}

// Extract pulls the scoring plays out of a play-by-play feed and stores
// them where the analysis looks for them.
func (s *Service) Extract(ctx context.Context, feed []json.RawMessage) ([]plays.GameScoring, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	games := plays.NewExtractor(plays.WithExtractorLogger(s.logger.Named("extractor"))).Extract(ctx, feed)
	s.gamesExtracted.Add(int64(len(games)))

	doc, err := json.MarshalIndent(games, "", "  ")
	if err != nil {
		return games, fmt.Errorf("encode scoring plays: %w", err)
	}
	if err := s.store.Put(ctx, repository.KindScoring, exportKey(s.cfg.ScoringFile), doc); err != nil {
		return games, fmt.Errorf("store scoring plays: %w", err)
	}
	return games, nil
}

// ScoringPlays returns the stored scoring plays. Anything unreadable is
// logged and yields nil.
func (s *Service) ScoringPlays(ctx context.Context) []plays.GameScoring {
	if err := s.ready(); err != nil {
		return nil
	}
	doc, err := s.store.Get(ctx, repository.KindScoring, exportKey(s.cfg.ScoringFile))
	if err != nil {
		s.logger.Error(ctx, "cannot load scoring plays", logger.Error(err))
		return nil
	}
	var games []plays.GameScoring
	if err := json.Unmarshal(doc, &games); err != nil {
		s.logger.Error(ctx, "cannot parse scoring plays", logger.Error(err))
		return nil
	}
	return games
}

// Analyze predicts the final score of the game named by key from its
// export and renders the report.
func (s *Service) Analyze(ctx context.Context, key string, exp Export, games []plays.GameScoring) (rep predict.Report, err error) {
	defer func() {
		if err != nil {
			s.analysesFailed.Add(1)
			metrics.RecordAnalysis("error")
			return
		}
		s.analysesOK.Add(1)
		metrics.RecordAnalysis("ok")
	}()
	if err := s.ready(); err != nil {
		return predict.Report{}, err
	}

	key = exportKey(key)
	m, ok := s.matchups[key]
	if !ok {
		return predict.Report{}, fmt.Errorf("%w: %s", ErrUnknownGame, key)
	}
	if len(exp.Times) == 0 || len(exp.Avgs) == 0 {
		return predict.Report{}, fmt.Errorf("%w: %s", ErrEmptySeries, key)
	}
	if len(exp.Times) != len(exp.Avgs) {
		return predict.Report{}, fmt.Errorf("%w: %s: %d times, %d avgs",
			ErrMalformedInput, key, len(exp.Times), len(exp.Avgs))
	}
	game, ok := plays.FindGame(games, m.Away, m.Home)
	if !ok {
		return predict.Report{}, fmt.Errorf("%w: %s at %s", ErrGameNotFound, m.Away, m.Home)
	}

	engine := predict.New(
		predict.WithLookback(s.cfg.LookbackMinutes),
		predict.WithLogger(s.logger.Named("predict")),
	)
	result := engine.Predict(ctx, game.Events(), exp.Sentiment())
	rep = predict.NewReport(m.Away, m.Home, result)
	if err := s.renderer.Render(ctx, rep); err != nil {
		return rep, err
	}
	s.logger.Info(ctx, "game analyzed",
		logger.String("game", key),
		logger.String("report", rep.Key()),
		logger.Int("final_score", rep.FinalScore),
		logger.Int("points", len(rep.Time)),
	)
	return rep, nil
}

// Summary tallies a batch analysis.
type Summary struct {
	Succeeded []string
	Failed    map[string]error
	Skipped   []string
}

// WriteTo prints the success and error summary.
func (s Summary) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "Analyzed %d game(s), %d failed, %d skipped.\n",
		len(s.Succeeded), len(s.Failed), len(s.Skipped))
	total := int64(n)
	if err != nil {
		return total, err
	}
	for _, key := range s.Succeeded {
		n, err = fmt.Fprintf(w, "  ok    %s\n", key)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	for _, key := range sortedKeys(s.Failed) {
		n, err = fmt.Fprintf(w, "  error %s: %v\n", key, s.Failed[key])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	for _, key := range s.Skipped {
		n, err = fmt.Fprintf(w, "  skip  %s\n", key)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// AnalyzeAll analyzes every stored export except the skip list, one game
// at a time, and keeps going past failures.
func (s *Service) AnalyzeAll(ctx context.Context) (Summary, error) {
	if err := s.ready(); err != nil {
		return Summary{}, err
	}
	keys, err := s.store.List(ctx, repository.KindExport)
	if err != nil {
		return Summary{}, fmt.Errorf("list exports: %w", err)
	}
	sum := Summary{Failed: make(map[string]error)}
	if len(keys) == 0 {
		s.logger.Warn(ctx, "no exports to analyze")
		return sum, nil
	}
	games := s.ScoringPlays(ctx)

	for _, key := range keys {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		if _, skip := s.skip[exportKey(key)]; skip {
			s.analysesSkipped.Add(1)
			metrics.RecordAnalysis("skipped")
			sum.Skipped = append(sum.Skipped, key)
			continue
		}
		doc, err := s.store.Get(ctx, repository.KindExport, key)
		if err != nil {
			sum.Failed[key] = err
			continue
		}
		exp, err := DecodeExport(doc)
		if err != nil {
			sum.Failed[key] = err
			continue
		}
		if _, err := s.Analyze(ctx, key, exp, games); err != nil {
			s.logger.Error(ctx, "analysis failed", logger.String("game", key), logger.Error(err))
			sum.Failed[key] = err
			continue
		}
		sum.Succeeded = append(sum.Succeeded, key)
	}
	return sum, nil
}

// Report returns a stored report document.
func (s *Service) Report(ctx context.Context, key string) ([]byte, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, repository.KindReport, key)
}

// Fetch collects a thread's comments.
func (s *Service) Fetch(ctx context.Context, postID string) ([]reddit.Comment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.source == nil {
		return nil, ErrNoCommentSource
	}
	comments, err := s.source.Collect(ctx, postID)
	if err != nil {
		return nil, err
	}
	s.commentsFetched.Add(int64(len(comments)))
	return comments, nil
}

// GetStats returns a snapshot of the service counters.
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		RunID:           s.runID,
		StartedAt:       s.startedAt,
		Started:         s.started,
		SeriesBuilt:     s.seriesBuilt.Load(),
		GamesExtracted:  s.gamesExtracted.Load(),
		AnalysesOK:      s.analysesOK.Load(),
		AnalysesFailed:  s.analysesFailed.Load(),
		AnalysesSkipped: s.analysesSkipped.Load(),
		CommentsFetched: s.commentsFetched.Load(),
		StoreBackend:    s.cfg.StoreBackend,
		WindowSeconds:   s.cfg.WindowSeconds,
		StepSeconds:     s.cfg.StepSecondsOrDefault(),
		LookbackMinutes: s.cfg.LookbackMinutes,
	}
}

// IsNotFound reports whether err means a missing document.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func sortedKeys(m map[string]error) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
