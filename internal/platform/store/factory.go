package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stockdesk/stockdesk/internal/platform/cache"
	"github.com/stockdesk/stockdesk/internal/platform/db"
)

// Supported drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config selects and configures a backend.
type Config struct {
	Driver        string
	Namespace     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PGDSN         string
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, logger *slog.Logger, cfg Config) (Store, error) {
	if logger != nil {
		logger.Info("initialising record store", slog.String("driver", cfg.Driver), slog.String("namespace", cfg.Namespace))
	}
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverRedis:
		client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Namespace), nil
	case DriverPostgres:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		s, err := NewPGStore(ctx, pool, cfg.Namespace)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}
}
