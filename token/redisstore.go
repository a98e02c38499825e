package token

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists the token in Redis under a per-profile key. It is
// the backend for deployments where several processes on one terminal
// share a signed-in session (front-desk kiosks).
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore returns a RedisStore writing under the given key. A
// non-zero ttl bounds how long an untouched token survives in Redis;
// zero keeps it until cleared.
func NewRedisStore(client *redis.Client, key string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, key: key, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context) (string, error) {
	tok, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return tok, nil
}

func (s *RedisStore) Set(ctx context.Context, tok string) error {
	return s.client.Set(ctx, s.key, tok, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
