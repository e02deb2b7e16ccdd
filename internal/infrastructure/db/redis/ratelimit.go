package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimiter is a fixed-window counter shared by every API instance. It
// satisfies echo's middleware.RateLimiterStore.
// Key format: ratelimit:<scope>:<identifier>:<window_start_unix>
type RateLimiter struct {
	client *redis.Client
	scope  string
	limit  int64
	window time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

// NewRateLimiter allows limit requests per identifier per window. A limit
// of zero or less disables limiting.
func NewRateLimiter(client *redis.Client, scope string, limit int, window time.Duration, log zerolog.Logger) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		client: client,
		scope:  scope,
		limit:  int64(limit),
		window: window,
		log:    log,
		now:    time.Now,
	}
}

// Allow counts one request for identifier. Redis failures let the request
// through.
func (r *RateLimiter) Allow(identifier string) (bool, error) {
	if r.limit <= 0 {
		return true, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	key := r.key(identifier)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Warn().Err(err).Str("identifier", identifier).Msg("rate limiter unavailable, allowing request")
		return true, nil
	}

	return incr.Val() <= r.limit, nil
}

func (r *RateLimiter) key(identifier string) string {
	start := r.now().Truncate(r.window).Unix()
	return fmt.Sprintf("ratelimit:%s:%s:%d", r.scope, identifier, start)
}
