package checkpoint

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// RedisStore хранит чекпоинт JSON-строкой под фиксированным ключом
type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (int64, bool, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, oops.With("key", s.key, "context", "redis get").Wrap(err)
	}
	id, ok := decode(data)
	return id, ok, nil
}

func (s *RedisStore) Save(ctx context.Context, id int64) error {
	data, err := encode(id)
	if err != nil {
		return oops.With("id", id).Wrap(err)
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return oops.With("key", s.key, "id", id, "context", "redis set").Wrap(err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
