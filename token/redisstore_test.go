package token

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(newTestRedis(t), "portal:default:token", time.Hour)

	if got, err := store.Get(ctx); err != nil || got != "" {
		t.Fatalf("Get on empty store = (%q, %v), want empty", got, err)
	}
	if err := store.Set(ctx, "tok-redis"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, err := store.Get(ctx); err != nil || got != "tok-redis" {
		t.Fatalf("Get = (%q, %v), want tok-redis", got, err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got, err := store.Get(ctx); err != nil || got != "" {
		t.Fatalf("Get after Clear = (%q, %v), want empty", got, err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}
