//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func setupRedisStoreTest(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("redis ping failed: %v", err)
	}
	return NewRedisStore(client, "cptest-"+uuid.NewString())
}

func TestRedisStoreSetNXAndIncr(t *testing.T) {
	s := setupRedisStoreTest(t)
	ctx := context.Background()

	ok, err := s.SetNX(ctx, "dedup", "1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first setnx should win: ok=%v err=%v", ok, err)
	}
	ok, err = s.SetNX(ctx, "dedup", "1", time.Minute)
	if err != nil || ok {
		t.Fatalf("second setnx should lose: ok=%v err=%v", ok, err)
	}

	for i := int64(1); i <= 3; i++ {
		count, ttl, err := s.IncrWithTTL(ctx, "counter", time.Minute)
		if err != nil {
			t.Fatalf("incr failed: %v", err)
		}
		if count != i {
			t.Fatalf("incr want %d got %d", i, count)
		}
		if ttl <= 0 || ttl > time.Minute {
			t.Fatalf("unexpected ttl: %s", ttl)
		}
	}

	if err := s.Del(ctx, "dedup"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, found, _ := s.Get(ctx, "dedup"); found {
		t.Fatalf("expected key removed")
	}
}
