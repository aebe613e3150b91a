package store

import (
	"context"
	"fmt"

	"github.com/example/verbadiem/internal/config"
	"github.com/example/verbadiem/internal/database"
	"github.com/redis/go-redis/v9"
)

// Open creates the backend selected by cfg.StoreDriver
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.StoreDriver {
	case "memory":
		return NewMemoryBackend(), nil
	case "sqlite", "postgres":
		db, err := database.Connect(cfg.StoreDriver, cfg.DatabaseURL, cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return NewSQLBackend(db), nil
	case "redis":
		return NewRedisBackend(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
