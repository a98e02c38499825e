package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestRedisStoreContract(t *testing.T) {
	_, rdb := newTestRedis(t)
	storeUnderTest(t, NewRedisStore(rdb, "portal:default", time.Hour))
}

func TestRedisStoreRecordExpires(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "portal:default", time.Minute)

	if err := store.SaveRecord(ctx, sampleRecord()); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	rec, err := store.LoadRecord(ctx)
	if err != nil || rec != nil {
		t.Fatalf("LoadRecord after TTL = (%v, %v), want (nil, nil)", rec, err)
	}
}

func TestRedisStoreCorruptRecordIsMiss(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "portal:default", time.Hour)

	mr.Set("portal:default:record", "{not json")

	rec, err := store.LoadRecord(ctx)
	if err != nil || rec != nil {
		t.Fatalf("LoadRecord on corrupt blob = (%v, %v), want (nil, nil)", rec, err)
	}
}
