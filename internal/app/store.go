package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/okian/gamepulse/internal/adapters/repository"
	"github.com/okian/gamepulse/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewStore opens the document store selected by cfg.StoreBackend. The file
// backend keeps exports in ExportsDir, reports in OutputDir and scoring
// plays next to ScoringFile.
func NewStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch strings.ToLower(cfg.StoreBackend) {
	case "", "file":
		return repository.NewFileStore(cfg.DataDir,
			repository.WithKindDir(repository.KindExport, cfg.ExportsDir),
			repository.WithKindDir(repository.KindReport, cfg.OutputDir),
			repository.WithKindDir(repository.KindScoring, filepath.Dir(cfg.ScoringFile)),
		), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		store := repository.NewRedisStore(client, repository.WithPrefix(cfg.RedisPrefix))
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown store_backend %q", config.ErrInvalidConfig, cfg.StoreBackend)
	}
}
