package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/okian/gamepulse/internal/adapters/reddit"
	"github.com/okian/gamepulse/internal/config"
	"github.com/okian/gamepulse/internal/platform/retry"
	"github.com/okian/gamepulse/pkg/logger"
)

// RedditSource is a CommentSource backed by the comment API. It
// authenticates on first use, again after a failed attempt, and once more
// when the API rejects an expired token.
type RedditSource struct {
	client    *reddit.Client
	collector *reddit.Collector

	mu     sync.Mutex
	authed bool
}

// NewRedditSource builds the client and collector from fetch settings.
// It returns nil when no credentials are configured.
func NewRedditSource(cfg config.FetchConfig, log logger.Logger, opts ...reddit.Option) *RedditSource {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil
	}
	base := []reddit.Option{
		reddit.WithCredentials(cfg.ClientID, cfg.ClientSecret),
		reddit.WithUserAgent(cfg.UserAgent),
		reddit.WithTimeout(time.Duration(cfg.TimeoutMS) * time.Millisecond),
		reddit.WithRetryPolicy(retry.Policy{
			MaxAttempts:      cfg.MaxAttempts,
			InitialBackoff:   500 * time.Millisecond,
			RateLimitBackoff: 5 * time.Second,
		}),
		reddit.WithLogger(log.Named("reddit")),
	}
	client := reddit.NewClient(append(base, opts...)...)
	collector := reddit.NewCollector(client,
		reddit.WithPool(cfg.Workers, cfg.RatePerSecond, cfg.Burst, time.Duration(cfg.CooldownMS)*time.Millisecond),
		reddit.WithMore(cfg.MaxMore, cfg.BatchSize),
		reddit.WithMaxSeen(cfg.MaxSeen),
		reddit.WithCollectorLogger(log.Named("collector")),
	)
	return &RedditSource{client: client, collector: collector}
}

// Collect authenticates if needed and collects the thread's comments. A
// 401 on the thread drops the token and the collection is tried once more.
func (r *RedditSource) Collect(ctx context.Context, postID string) ([]reddit.Comment, error) {
	if err := r.authenticate(ctx); err != nil {
		return nil, err
	}
	comments, err := r.collector.Collect(ctx, postID)
	if !unauthorized(err) {
		return comments, err
	}
	r.mu.Lock()
	r.authed = false
	r.mu.Unlock()
	if err := r.authenticate(ctx); err != nil {
		return nil, err
	}
	return r.collector.Collect(ctx, postID)
}

func unauthorized(err error) bool {
	var status *reddit.StatusError
	return errors.As(err, &status) && status.Code == http.StatusUnauthorized
}

func (r *RedditSource) authenticate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.authed {
		return nil
	}
	if err := r.client.Authenticate(ctx); err != nil {
		return err
	}
	r.authed = true
	return nil
}
