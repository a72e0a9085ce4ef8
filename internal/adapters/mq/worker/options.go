package worker

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/okian/gamepulse/pkg/logger"
	"golang.org/x/time/rate"
)

type options struct {
	workers  int
	limiter  *rate.Limiter
	cooldown time.Duration
	clock    clockwork.Clock
	log      logger.Logger
}

// Option applies a configuration option to the Pool.
type Option func(*options)

// WithWorkers sets how many jobs run at once.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithRate allows perSecond jobs to start per second, with bursts of up to
// burst. A non-positive rate removes the limit.
func WithRate(perSecond float64, burst int) Option {
	return func(o *options) {
		if perSecond <= 0 {
			o.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		o.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// WithCooldown sets how long a worker rests after each job.
func WithCooldown(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.cooldown = d
		}
	}
}

// WithClock replaces the clock that paces the cooldown.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
