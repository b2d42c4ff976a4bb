package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func skipIfNoRedis(t *testing.T) {
	if os.Getenv("REDIS_TEST_ADDR") == "" {
		t.Skip("REDIS_TEST_ADDR not set, skipping Redis tests")
	}
}

func TestNewRedisCache(t *testing.T) {
	skipIfNoRedis(t)

	opts := &Options{
		Backend:       "redis",
		RedisAddr:     os.Getenv("REDIS_TEST_ADDR"),
		RedisPassword: os.Getenv("REDIS_TEST_PASSWORD"),
		RedisDB:       0,
		DefaultTTL:    time.Minute,
	}

	cache, err := NewRedisCache(opts)
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	key := "route:astar:deadbeef:cafe0123"
	payload := []byte(`{"algorithm":"astar","total_weight":23}`)

	if err := cache.Set(ctx, key, payload, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	defer cache.Delete(ctx, key)

	val, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(val) != string(payload) {
		t.Errorf("Get() = %s, want %s", val, payload)
	}
}

func TestRedisCache_NotFound(t *testing.T) {
	skipIfNoRedis(t)

	opts := &Options{
		Backend:   "redis",
		RedisAddr: os.Getenv("REDIS_TEST_ADDR"),
	}

	cache, err := NewRedisCache(opts)
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	defer cache.Close()

	_, err = cache.Get(context.Background(), "route:missing:0000:0000")
	if err != ErrKeyNotFound {
		t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
	}
}

func TestRedisCache_DeleteAndExpiry(t *testing.T) {
	skipIfNoRedis(t)

	opts := &Options{
		Backend:   "redis",
		RedisAddr: os.Getenv("REDIS_TEST_ADDR"),
	}

	cache, err := NewRedisCache(opts)
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	key := "route:dijkstra:feed1234:beef5678"

	if err := cache.Set(ctx, key, []byte("x"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cache.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := cache.Get(ctx, key); err != ErrKeyNotFound {
		t.Errorf("Get() after Delete error = %v, want ErrKeyNotFound", err)
	}

	// Короткий TTL должен перекрыть значение по умолчанию.
	if err := cache.Set(ctx, key, []byte("x"), 50*time.Millisecond); err != nil {
		t.Fatalf("Set() with short TTL error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if _, err := cache.Get(ctx, key); err != ErrKeyNotFound {
		t.Errorf("Get() after expiry error = %v, want ErrKeyNotFound", err)
	}
}
