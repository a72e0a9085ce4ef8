package reddit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/okian/gamepulse/internal/adapters/mq/queue"
	"github.com/okian/gamepulse/internal/adapters/mq/worker"
	"github.com/okian/gamepulse/internal/domain/dedupe"
	"github.com/okian/gamepulse/pkg/logger"
	"github.com/okian/gamepulse/pkg/metrics"
)

// Default collector configuration constants.
const (
	DefaultMaxMore   = 5
	DefaultBatchSize = 700
)

// Fetcher is the part of Client the collector needs.
type Fetcher interface {
	Post(ctx context.Context, postID string) ([]Thing, error)
	MoreChildren(ctx context.Context, postID string, ids []string) ([]Thing, error)
}

// Collector walks a whole comment tree. The thread itself and every "more"
// expansion are jobs on a work queue drained by a bounded, rate-limited
// pool.
type Collector struct {
	fetcher   Fetcher
	workers   int
	rate      float64
	burst     int
	cooldown  time.Duration
	clock     clockwork.Clock
	maxMore   int
	batchSize int
	maxSeen   int
	log       logger.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithPool sets the worker count, request rate, burst, and per-worker
// cooldown.
func WithPool(workers int, perSecond float64, burst int, cooldown time.Duration) CollectorOption {
	return func(c *Collector) {
		c.workers = workers
		c.rate = perSecond
		c.burst = burst
		c.cooldown = cooldown
	}
}

// WithMore caps how many children of each "more" entry are expanded and
// how many IDs go in one request.
func WithMore(maxMore, batchSize int) CollectorOption {
	return func(c *Collector) {
		if maxMore >= 0 {
			c.maxMore = maxMore
		}
		if batchSize > 0 {
			c.batchSize = batchSize
		}
	}
}

// WithMaxSeen bounds how many comment and expansion IDs one collection
// remembers. Once full, the oldest ID is forgotten, so a very large thread
// may yield an occasional repeat. Zero or less means unbounded.
func WithMaxSeen(n int) CollectorOption {
	return func(c *Collector) {
		c.maxSeen = n
	}
}

// WithCollectorClock replaces the clock pacing the cooldown.
func WithCollectorClock(clock clockwork.Clock) CollectorOption {
	return func(c *Collector) {
		c.clock = clock
	}
}

// WithCollectorLogger sets the logger.
func WithCollectorLogger(l logger.Logger) CollectorOption {
	return func(c *Collector) {
		c.log = l
	}
}

// NewCollector creates a Collector over f.
func NewCollector(f Fetcher, opts ...CollectorOption) *Collector {
	c := &Collector{
		fetcher:   f,
		workers:   4,
		rate:      2,
		burst:     1,
		cooldown:  500 * time.Millisecond,
		clock:     clockwork.NewRealClock(),
		maxMore:   DefaultMaxMore,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get().Named("collector")
	}
	return c
}

type job struct {
	id       string
	postID   string
	children []string // nil for the thread itself
}

// collection is the state of one Collect call.
type collection struct {
	*Collector
	seen dedupe.Deduper

	mu       sync.Mutex
	comments []Comment
	rootErr  error
}

// Collect returns every reachable comment of the thread, each once, ordered
// by creation time. Failed "more" expansions are logged and skipped; only
// failing to fetch the thread itself is an error.
func (c *Collector) Collect(ctx context.Context, postID string) ([]Comment, error) {
	run := &collection{Collector: c, seen: dedupe.New(dedupe.WithMaxSize(c.maxSeen))}
	q := queue.NewInMemoryQueue[job](queue.WithSizeObserver(metrics.UpdateFetchQueueSize))
	pool := worker.NewPool[job](q, worker.HandlerFunc[job](run.handle),
		worker.WithWorkers(c.workers),
		worker.WithRate(c.rate, c.burst),
		worker.WithCooldown(c.cooldown),
		worker.WithClock(c.clock),
		worker.WithLogger(c.log.Named("pool")),
	)
	pool.Submit(ctx, job{id: uuid.NewString(), postID: postID})

	stats, err := pool.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", postID, err)
	}
	if run.rootErr != nil {
		return nil, fmt.Errorf("collect %s: %w", postID, run.rootErr)
	}

	comments := run.comments
	sort.SliceStable(comments, func(i, j int) bool {
		a, b := comments[i].CreatedUTC, comments[j].CreatedUTC
		switch {
		case a == nil || b == nil:
			return a != nil && b == nil
		case *a != *b:
			return *a < *b
		default:
			return comments[i].ID < comments[j].ID
		}
	})
	metrics.RecordCommentsCollected(len(comments))
	c.log.Info(ctx, "comments collected",
		logger.String("post", postID),
		logger.Int("comments", len(comments)),
		logger.Int("requests", int(stats.Handled)),
		logger.Int("failed_batches", int(stats.Failed)),
		logger.Int("dropped_batches", int(stats.Dropped)),
	)
	return comments, nil
}

func (r *collection) handle(ctx context.Context, j job) ([]job, error) {
	var (
		things []Thing
		err    error
	)
	if j.children == nil {
		things, err = r.fetcher.Post(ctx, j.postID)
		if err != nil {
			r.mu.Lock()
			r.rootErr = err
			r.mu.Unlock()
			return nil, err
		}
	} else {
		things, err = r.fetcher.MoreChildren(ctx, j.postID, j.children)
		if err != nil {
			// Another placeholder naming these IDs may still expand them.
			for _, id := range j.children {
				r.seen.Forget(moreKey(id))
			}
			return nil, fmt.Errorf("job %s (%d ids): %w", j.id, len(j.children), err)
		}
	}

	comments, more := Walk(things)
	r.mu.Lock()
	for _, cm := range comments {
		if cm.ID != "" && r.seen.SeenAndRecord(cm.ID) {
			continue
		}
		r.comments = append(r.comments, cm)
	}
	r.mu.Unlock()

	var next []job
	for _, ids := range more {
		for _, batch := range Batches(ids, r.maxMore, r.batchSize) {
			if batch = r.claim(batch); len(batch) == 0 {
				continue
			}
			next = append(next, job{id: uuid.NewString(), postID: j.postID, children: batch})
		}
	}
	r.log.Debug(ctx, "job handled",
		logger.String("job", j.id),
		logger.Int("comments", len(comments)),
		logger.Int("follow_ups", len(next)),
	)
	return next, nil
}

// claim drops the IDs an earlier job of this collection already requested.
func (r *collection) claim(ids []string) []string {
	fresh := ids[:0:0]
	for _, id := range ids {
		if !r.seen.SeenAndRecord(moreKey(id)) {
			fresh = append(fresh, id)
		}
	}
	return fresh
}

func moreKey(id string) string { return "more:" + id }
