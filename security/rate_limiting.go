package security

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"

	"ticketbari/internal/logging"
)

const DefaultRequestsPerMinute = 30

type RateLimiter struct {
	redis  *redis.Client
	limit  int64
	window time.Duration

	// KeyFunc names the client a request is counted against.
	KeyFunc func(e *core.RequestEvent) string
}

func NewRateLimiter(redisClient *redis.Client, perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = DefaultRequestsPerMinute
	}
	return &RateLimiter{
		redis:  redisClient,
		limit:  int64(perMinute),
		window: time.Minute,
		KeyFunc: func(e *core.RequestEvent) string {
			return "ip:" + e.RemoteIP()
		},
	}
}

// Allow counts one hit for key in the current fixed window.
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := fmt.Sprintf("ratelimit:%s", key)

	count, err := r.redis.Incr(ctx, k).Result()
	if err != nil {
		return true, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := r.redis.Expire(ctx, k, r.window).Err(); err != nil {
			return true, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return count <= r.limit, nil
}

// WriteLimit limits mutating requests. Reads pass through, and so does
// everything when redis is unreachable.
func (r *RateLimiter) WriteLimit() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if r == nil || r.redis == nil || isRead(e.Request.Method) {
			return e.Next()
		}

		ctx := e.Request.Context()
		ok, err := r.Allow(ctx, r.KeyFunc(e))
		if err != nil {
			logging.FromContext(ctx).WithError(err).Warn("rate limiter unavailable, letting request through")
		}
		if !ok {
			return apis.NewApiError(http.StatusTooManyRequests, "Too many requests", nil)
		}
		return e.Next()
	}
}

// BotFilter rejects mutating requests from crawlers and scrapers.
func BotFilter() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if !isRead(e.Request.Method) && IsSuspiciousUserAgent(e.Request.Header.Get("User-Agent")) {
			return apis.NewForbiddenError("Access denied", nil)
		}
		return e.Next()
	}
}

func IsSuspiciousUserAgent(ua string) bool {
	ua = strings.ToLower(ua)
	for _, pattern := range []string{"bot", "crawler", "spider", "scraper"} {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}

func isRead(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
