package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/okian/gamepulse/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

const redisBackend = "redis"

// RedisStore keeps documents as plain string values. Each kind has a set
// indexing its keys so List does not need SCAN.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. Keys are namespaced as
// <prefix>:<kind>:<key>.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: "gamepulse"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) docKey(kind Kind, key string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, kind, key)
}

func (s *RedisStore) indexKey(kind Kind) string {
	return fmt.Sprintf("%s:%s:index", s.prefix, kind)
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrBackend, err)
	}
	return nil
}

// Put writes the document and indexes its key in one pipeline.
func (s *RedisStore) Put(ctx context.Context, kind Kind, key string, doc []byte) (err error) {
	defer func() { metrics.RecordStoreOperation(redisBackend, "put", outcome(err)) }()
	if err := validateKey(key); err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.docKey(kind, key), doc, s.ttl)
	pipe.SAdd(ctx, s.indexKey(kind), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: put %s/%s: %w", ErrBackend, kind, key, err)
	}
	return nil
}

// Get reads the document.
func (s *RedisStore) Get(ctx context.Context, kind Kind, key string) (doc []byte, err error) {
	defer func() { metrics.RecordStoreOperation(redisBackend, "get", outcome(err)) }()
	if err := validateKey(key); err != nil {
		return nil, err
	}
	doc, err = s.client.Get(ctx, s.docKey(kind, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, kind, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s/%s: %w", ErrBackend, kind, key, err)
	}
	return doc, nil
}

// List returns the indexed keys of kind. Keys whose document expired are
// pruned from the index on the way.
func (s *RedisStore) List(ctx context.Context, kind Kind) (keys []string, err error) {
	defer func() { metrics.RecordStoreOperation(redisBackend, "list", outcome(err)) }()
	members, err := s.client.SMembers(ctx, s.indexKey(kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrBackend, kind, err)
	}
	if len(members) == 0 {
		return nil, nil
	}
	docKeys := make([]string, len(members))
	for i, m := range members {
		docKeys[i] = s.docKey(kind, m)
	}
	present, err := s.client.Exists(ctx, docKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrBackend, kind, err)
	}
	if int(present) == len(members) {
		sort.Strings(members)
		return members, nil
	}
	for _, m := range members {
		n, err := s.client.Exists(ctx, s.docKey(kind, m)).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: list %s: %w", ErrBackend, kind, err)
		}
		if n == 0 {
			s.client.SRem(ctx, s.indexKey(kind), m)
			continue
		}
		keys = append(keys, m)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
