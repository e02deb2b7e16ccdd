package redis

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	rl := NewRateLimiter(client, "auth", 1, time.Minute, zerolog.Nop())
	for i := 0; i < 3; i++ {
		allowed, err := rl.Allow("10.0.0.1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !allowed {
			t.Fatalf("request %d must be allowed when redis is down", i)
		}
	}
}

func TestRateLimiter_KeyPerWindow(t *testing.T) {
	rl := NewRateLimiter(nil, "auth", 5, time.Minute, zerolog.Nop())

	base := time.Date(2026, 5, 1, 10, 0, 10, 0, time.UTC)
	rl.now = func() time.Time { return base }
	first := rl.key("1.2.3.4")

	rl.now = func() time.Time { return base.Add(40 * time.Second) }
	if got := rl.key("1.2.3.4"); got != first {
		t.Fatalf("same window must share a key: %s vs %s", got, first)
	}

	rl.now = func() time.Time { return base.Add(time.Minute) }
	if got := rl.key("1.2.3.4"); got == first {
		t.Fatal("next window must use a new key")
	}

	want := "ratelimit:auth:1.2.3.4:" + "1777629600"
	rl.now = func() time.Time { return base }
	if got := rl.key("1.2.3.4"); got != want {
		t.Fatalf("unexpected key %s, want %s", got, want)
	}
}

func TestNewRateLimiter_DefaultWindow(t *testing.T) {
	rl := NewRateLimiter(nil, "auth", 5, 0, zerolog.Nop())
	if rl.window != time.Minute {
		t.Fatalf("expected default window of one minute, got %v", rl.window)
	}
}

func TestRateLimiter_NonPositiveLimitDisables(t *testing.T) {
	// nil client: any redis call would panic.
	for _, limit := range []int{0, -3} {
		rl := NewRateLimiter(nil, "auth", limit, time.Minute, zerolog.Nop())
		for i := 0; i < 3; i++ {
			allowed, err := rl.Allow("10.0.0.1")
			if err != nil || !allowed {
				t.Fatalf("limit %d request %d: allowed=%v err=%v", limit, i, allowed, err)
			}
		}
	}
}
