package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/fashion-checkout/pkg/auth"
	"github.com/tair/fashion-checkout/pkg/logger"
)

// WindowCounter records one hit for key and returns how many earlier hits
// fall inside the window.
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisWindow is a sliding window kept in one sorted set per key.
type RedisWindow struct {
	client *redis.Client
}

func NewRedisWindow(client *redis.Client) *RedisWindow {
	return &RedisWindow{client: client}
}

func (w *RedisWindow) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()
	windowStart := now.Add(-window)

	pipe := w.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})
	pipe.Expire(ctx, key, window+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return countCmd.Val(), nil
}

// RateLimiter throttles mutating customer requests such as checkout and
// payment URL creation.
type RateLimiter struct {
	counter     WindowCounter
	scope       string
	maxRequests int
	window      time.Duration
}

func NewRateLimiter(counter WindowCounter, scope string, maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{counter: counter, scope: scope, maxRequests: maxRequests, window: window}
}

// Limit keys on the authenticated customer, or the client IP when there is
// none. It must run inside the auth middleware to see the customer. A counter
// failure lets the request through.
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identifier := "ip:" + ClientIP(r)
		if userID, ok := auth.UserIDFromContext(r.Context()); ok {
			identifier = fmt.Sprintf("user:%d", userID)
		}
		key := fmt.Sprintf("ratelimit:%s:%s", rl.scope, identifier)

		count, err := rl.counter.Hit(r.Context(), key, rl.window)
		if err != nil {
			logger.Error(r.Context()).Err(err).Str("identifier", identifier).Msg("Rate limiter error")
			next(w, r)
			return
		}

		remaining := rl.maxRequests - int(count) - 1
		if remaining < 0 {
			remaining = 0
		}
		resetTime := time.Now().Add(rl.window)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.maxRequests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if count >= int64(rl.maxRequests) {
			logger.Warn(r.Context()).
				Str("identifier", identifier).
				Str("scope", rl.scope).
				Int("limit", rl.maxRequests).
				Msg("Rate limit exceeded")
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			Fail(w, http.StatusTooManyRequests, "Too many requests, try again later")
			return
		}
		next(w, r)
	}
}
