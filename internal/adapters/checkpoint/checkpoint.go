package checkpoint

import (
	"context"
	"log/slog"
	"strings"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
	"github.com/larriantoniy/tg_relay_bot/internal/ports"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"

	DefaultKey = "last_message"
)

// Config описывает, где лежит слот чекпоинта
type Config struct {
	Driver string
	// Path: JSON-файл для file или файл базы для sqlite
	Path string
	// Key: имя слота в redis/sqlite
	Key string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open выбирает реализацию хранилища по cfg.Driver
func Open(ctx context.Context, cfg Config, log *slog.Logger) (ports.CheckpointStore, error) {
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverFile:
		log.Info("checkpoint storage", "driver", DriverFile, "path", cfg.Path)
		return NewFileStore(cfg.Path)
	case DriverRedis:
		log.Info("checkpoint storage", "driver", DriverRedis, "addr", cfg.RedisAddr, "key", key)
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, oops.With("addr", cfg.RedisAddr, "context", "redis ping").Wrap(err)
		}
		return NewRedisStore(rdb, key), nil
	case DriverSQLite, "sqlite3":
		log.Info("checkpoint storage", "driver", DriverSQLite, "path", cfg.Path, "key", key)
		return OpenSQLiteStore(ctx, cfg.Path, key)
	default:
		return nil, oops.With("driver", cfg.Driver).Wrap(domain.ErrUnsupportedDriver)
	}
}
