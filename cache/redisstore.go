package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Manishmatre/clinicauth/identity"
)

// RedisStore persists the cache in Redis under a per-profile key prefix,
// one key per field so partial updates never rewrite the whole record.
// It is the backend for shared front-desk terminals where several
// processes observe one signed-in session.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a RedisStore writing under the given prefix. A
// non-zero ttl bounds how stale a cached record may grow before Redis
// drops it; zero keeps records until cleared.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "clinicauth"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(field string) string {
	return s.prefix + ":" + field
}

func (s *RedisStore) getString(ctx context.Context, field string) (string, error) {
	val, err := s.client.Get(ctx, s.key(field)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

func (s *RedisStore) LoadRecord(ctx context.Context) (*Record, error) {
	data, err := s.getString(ctx, "record")
	if err != nil || data == "" {
		return nil, err
	}
	rec := &Record{}
	if err := json.Unmarshal([]byte(data), rec); err != nil {
		// Corrupt blob: treat as a cache miss, not a hydration failure.
		return nil, nil
	}
	return rec, nil
}

func (s *RedisStore) SaveRecord(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key("record"), data, s.ttl).Err()
}

func (s *RedisStore) ClearRecord(ctx context.Context) error {
	return s.client.Del(ctx, s.key("record")).Err()
}

func (s *RedisStore) LastEmail(ctx context.Context) (string, error) {
	return s.getString(ctx, "email")
}

func (s *RedisStore) SetLastEmail(ctx context.Context, email string) error {
	return s.client.Set(ctx, s.key("email"), email, 0).Err()
}

func (s *RedisStore) PreferredRole(ctx context.Context) (identity.Role, error) {
	val, err := s.getString(ctx, "role")
	return identity.Role(val), err
}

func (s *RedisStore) SetPreferredRole(ctx context.Context, role identity.Role) error {
	return s.client.Set(ctx, s.key("role"), string(role), 0).Err()
}

func (s *RedisStore) SetRedirectPath(ctx context.Context, path string) error {
	return s.client.Set(ctx, s.key("redirect"), path, s.ttl).Err()
}

// TakeRedirectPath consumes the stored path with GETDEL so two racing
// readers cannot both replay the same post-login destination.
func (s *RedisStore) TakeRedirectPath(ctx context.Context) (string, error) {
	val, err := s.client.GetDel(ctx, s.key("redirect")).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}
