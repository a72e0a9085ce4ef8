package scoring

import (
	"time"

	"github.com/okian/gamepulse/internal/domain/dedupe"
	"github.com/okian/gamepulse/pkg/logger"
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWindow sets the window length W. Non-positive values are ignored.
func WithWindow(d time.Duration) Option {
	return func(s *Scorer) {
		if d > 0 {
			s.window = d
		}
	}
}

// WithStep overrides the distance between consecutive window starts.
func WithStep(d time.Duration) Option {
	return func(s *Scorer) {
		if d > 0 {
			s.step = d
		}
	}
}

// WithMapper switches the scorer to live mode: window starts are mapped to
// game time and windows without a mapping are dropped.
func WithMapper(m Mapper) Option {
	return func(s *Scorer) {
		s.mapper = m
	}
}

// WithSpikeThreshold sets the normalized level a spike must exceed.
func WithSpikeThreshold(v float64) Option {
	return func(s *Scorer) {
		s.spikeThreshold = v
	}
}

// WithHighlights sets how many of the lowest and highest predictions are
// kept.
func WithHighlights(worst, best int) Option {
	return func(s *Scorer) {
		if worst >= 0 {
			s.worst = worst
		}
		if best >= 0 {
			s.best = best
		}
	}
}

// WithDeduper shares a run-scoped deduper for highlight texts instead of
// creating a fresh one per Compute call.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Scorer) {
		if d != nil {
			s.newDeduper = func() dedupe.Deduper { return d }
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scorer) {
		s.log = l
	}
}
