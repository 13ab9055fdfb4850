package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisStore(rdb, "sg", ttl), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t, time.Hour)

	if err := store.Store(ctx, KeySessionExpiry, "2025-06-01T12:00:00Z"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	value, ok, err := store.Retrieve(ctx, KeySessionExpiry)
	if err != nil || !ok || value != "2025-06-01T12:00:00Z" {
		t.Fatalf("Retrieve = (%q, %v, %v)", value, ok, err)
	}

	if err := store.Remove(ctx, KeySessionExpiry); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, _ := store.Retrieve(ctx, KeySessionExpiry); ok {
		t.Fatal("value still present after Remove")
	}
}

func TestRedisStoreMissingKeyIsAbsentNotError(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t, time.Hour)

	value, ok, err := store.Retrieve(ctx, "never-written")
	if err != nil {
		t.Fatalf("Retrieve returned error for missing key: %v", err)
	}
	if ok || value != "" {
		t.Fatalf("Retrieve = (%q, %v), want absent", value, ok)
	}
}

func TestRedisStoreClearAllRemovesOnlyOwnKeys(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)

	_ = store.Store(ctx, KeySessionExpiry, "a")
	_ = store.Store(ctx, KeyLastActivity, "b")
	mr.Set("unrelated", "keep-me")

	if err := store.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	for _, key := range []string{KeySessionExpiry, KeyLastActivity} {
		if _, ok, _ := store.Retrieve(ctx, key); ok {
			t.Fatalf("key %q survived ClearAll", key)
		}
	}
	if got, err := mr.Get("unrelated"); err != nil || got != "keep-me" {
		t.Fatalf("unrelated key disturbed: (%q, %v)", got, err)
	}
}

func TestRedisStoreValuesExpire(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	_ = store.Store(ctx, KeySessionExpiry, "a")
	mr.FastForward(2 * time.Minute)

	if _, ok, _ := store.Retrieve(ctx, KeySessionExpiry); ok {
		t.Fatal("value survived past TTL")
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	ctx := context.Background()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb, "sg", 0)
	mr.Close()

	if err := store.Store(ctx, KeySessionExpiry, "a"); err == nil {
		t.Fatal("expected error with backend down")
	}
	if _, _, err := store.Retrieve(ctx, KeySessionExpiry); err == nil {
		t.Fatal("expected error with backend down")
	}
}
