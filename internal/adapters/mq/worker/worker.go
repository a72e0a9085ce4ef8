// Package worker runs a bounded pool that drains a work queue. Handlers may
// produce follow-up jobs, which go back on the same queue; the pool stops
// once no job is queued or in flight.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/okian/gamepulse/internal/adapters/mq/queue"
	"github.com/okian/gamepulse/pkg/logger"
	"golang.org/x/time/rate"
)

// Default pool configuration constants.
const (
	defaultWorkers  = 4
	defaultCooldown = 500 * time.Millisecond
)

// Handler processes one job and returns any follow-up jobs.
type Handler[J any] interface {
	Handle(ctx context.Context, job J) ([]J, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[J any] func(ctx context.Context, job J) ([]J, error)

// Handle calls f.
func (f HandlerFunc[J]) Handle(ctx context.Context, job J) ([]J, error) { return f(ctx, job) }

// Stats summarizes a pool run.
type Stats struct {
	Handled int64
	Failed  int64
	Dropped int64 // follow-ups the queue refused
}

// Pool runs a fixed number of workers. Before each job a worker waits for a
// rate-limit token; after each job it rests for the cooldown.
type Pool[J any] struct {
	queue    queue.Queue[J]
	handler  Handler[J]
	workers  int
	limiter  *rate.Limiter
	cooldown time.Duration
	clock    clockwork.Clock
	log      logger.Logger

	pending atomic.Int64
	handled atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// NewPool creates a pool over q. Jobs must be added with Submit.
func NewPool[J any](q queue.Queue[J], h Handler[J], opts ...Option) *Pool[J] {
	o := options{
		workers:  defaultWorkers,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		cooldown: defaultCooldown,
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get().Named("worker-pool")
	}
	return &Pool[J]{
		queue:    q,
		handler:  h,
		workers:  o.workers,
		limiter:  o.limiter,
		cooldown: o.cooldown,
		clock:    o.clock,
		log:      o.log,
	}
}

// Submit queues a job. It returns false when the queue refuses it.
func (p *Pool[J]) Submit(ctx context.Context, job J) bool {
	p.pending.Add(1)
	if !p.queue.Enqueue(ctx, job) {
		p.finish()
		return false
	}
	return true
}

// finish marks one job as done and closes the queue when it was the last.
func (p *Pool[J]) finish() {
	if p.pending.Add(-1) == 0 {
		_ = p.queue.Close()
	}
}

// Run starts the workers and blocks until every submitted job and its
// follow-ups are handled, or ctx is done.
func (p *Pool[J]) Run(ctx context.Context) (Stats, error) {
	if p.pending.Load() == 0 {
		_ = p.queue.Close()
	}

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			p.work(ctx, p.log.Named(name))
		}("worker-" + strconv.Itoa(i))
	}
	wg.Wait()

	stats := Stats{Handled: p.handled.Load(), Failed: p.failed.Load(), Dropped: p.dropped.Load()}
	if err := ctx.Err(); err != nil {
		_ = p.queue.Close()
		return stats, fmt.Errorf("pool stopped: %w", err)
	}
	return stats, nil
}

func (p *Pool[J]) work(ctx context.Context, log logger.Logger) {
	jobs := p.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			p.process(ctx, log, job)
			if !p.rest(ctx) {
				return
			}
		}
	}
}

func (p *Pool[J]) process(ctx context.Context, log logger.Logger, job J) {
	defer p.finish()

	if err := p.limiter.Wait(ctx); err != nil {
		p.failed.Add(1)
		return
	}
	next, err := p.handler.Handle(ctx, job)
	p.handled.Add(1)
	if err != nil {
		p.failed.Add(1)
		log.Warn(ctx, "job failed, skipping", logger.Error(err))
	}
	for _, n := range next {
		if !p.Submit(ctx, n) {
			p.dropped.Add(1)
			log.Warn(ctx, "follow-up job dropped, queue refused it")
		}
	}
}

// rest waits out the cooldown. It reports false when ctx ended first.
func (p *Pool[J]) rest(ctx context.Context) bool {
	if p.cooldown <= 0 {
		return true
	}
	select {
	case <-p.clock.After(p.cooldown):
		return true
	case <-ctx.Done():
		return false
	}
}
