package ratelimit

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

func TestNewRedisLimiter(t *testing.T) {
	skipIfNoRedis(t)

	cfg := &Config{
		Requests:      10,
		Window:        time.Minute,
		Strategy:      "sliding_window",
		Backend:       "redis",
		RedisAddr:     os.Getenv("REDIS_TEST_ADDR"),
		RedisPassword: os.Getenv("REDIS_TEST_PASSWORD"),
	}

	limiter, err := NewRedisLimiter(cfg)
	if err != nil {
		t.Fatalf("NewRedisLimiter() error = %v", err)
	}
	defer limiter.Close()

	ctx := context.Background()
	key := "route:compute:courier-7"

	limiter.Reset(ctx, key)
	defer limiter.Reset(ctx, key)

	allowed, err := limiter.Allow(ctx, key)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("first request should be allowed")
	}
}

func TestRedisLimiter_Exhaustion(t *testing.T) {
	skipIfNoRedis(t)

	cfg := &Config{
		Requests:  3,
		Window:    time.Minute,
		RedisAddr: os.Getenv("REDIS_TEST_ADDR"),
	}

	limiter, err := NewRedisLimiter(cfg)
	if err != nil {
		t.Fatalf("NewRedisLimiter() error = %v", err)
	}
	defer limiter.Close()

	ctx := context.Background()
	key := "route:export:courier-7"

	limiter.Reset(ctx, key)
	defer limiter.Reset(ctx, key)

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, key)
		if err != nil {
			t.Fatalf("Allow() #%d error = %v", i+1, err)
		}
		if !allowed {
			t.Fatalf("request #%d should be allowed", i+1)
		}
	}

	allowed, err := limiter.Allow(ctx, key)
	if err != nil {
		t.Fatalf("Allow() over limit error = %v", err)
	}
	if allowed {
		t.Error("request over the limit should be denied")
	}

	// Другая операция того же вызывающего живёт в своём окне.
	allowed, err = limiter.Allow(ctx, "route:compute:courier-7")
	if err != nil {
		t.Fatalf("Allow() other key error = %v", err)
	}
	if !allowed {
		t.Error("independent key should not share the window")
	}
	limiter.Reset(ctx, "route:compute:courier-7")
}

func TestRedisLimiter_GetInfo(t *testing.T) {
	skipIfNoRedis(t)

	cfg := &Config{
		Requests:  5,
		Window:    time.Minute,
		RedisAddr: os.Getenv("REDIS_TEST_ADDR"),
	}

	limiter, err := NewRedisLimiter(cfg)
	if err != nil {
		t.Fatalf("NewRedisLimiter() error = %v", err)
	}
	defer limiter.Close()

	ctx := context.Background()
	key := "route:sweep:dispatcher-1"

	limiter.Reset(ctx, key)
	defer limiter.Reset(ctx, key)

	limiter.Allow(ctx, key)
	limiter.Allow(ctx, key)

	info, err := limiter.GetInfo(ctx, key)
	if err != nil {
		t.Fatalf("GetInfo() error = %v", err)
	}

	if info.Limit != 5 {
		t.Errorf("Limit = %d, want 5", info.Limit)
	}
	if info.Remaining != 3 {
		t.Errorf("Remaining = %d, want 3", info.Remaining)
	}
}
