package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestAllowEnforcesPerKeyQuota(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(mr.Addr(), "", "test:ratelimit", 2, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisFixedWindowLimiter: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if !limiter.Allow(ctx, "ip-1") {
			t.Fatalf("request %d should be within quota", i+1)
		}
	}
	if limiter.Allow(ctx, "ip-1") {
		t.Fatal("request over the limit must be denied")
	}
	if !limiter.Allow(ctx, "ip-2") {
		t.Fatal("a different key must have its own quota")
	}
}

func TestAllowFailsClosedWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(mr.Addr(), "", "test:ratelimit", 1, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisFixedWindowLimiter: %v", err)
	}
	mr.Close()
	if limiter.Allow(context.Background(), "ip-1") {
		t.Fatal("limiter must deny when Redis is unreachable")
	}
}

func TestNewRedisFixedWindowLimiterValidatesInput(t *testing.T) {
	cases := []struct {
		name   string
		addr   string
		limit  int
		window time.Duration
	}{
		{"empty addr", "", 1, time.Minute},
		{"zero limit", "localhost:6379", 0, time.Minute},
		{"zero window", "localhost:6379", 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if limiter, err := NewRedisFixedWindowLimiter(tc.addr, "", "test", tc.limit, tc.window); err == nil || limiter != nil {
				t.Fatal("expected a constructor error")
			}
		})
	}
}
