package repository

import "time"

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithKindDir stores kind in dir instead of root/<kind>.
func WithKindDir(kind Kind, dir string) FileOption {
	return func(s *FileStore) {
		if dir != "" {
			s.dirs[kind] = dir
		}
	}
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix namespaces every key.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL expires documents after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}
