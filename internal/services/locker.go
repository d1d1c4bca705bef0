package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"ticketbari/internal/status"
	"ticketbari/monitoring"
)

// Locker takes short lived locks shared by every server instance.
type Locker interface {
	// Acquire blocks until key is locked or ctx ends. The returned release
	// func must be called exactly once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// NopLocker is used when no redis is configured; the store transaction is
// then the only guard.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

// releaseScript deletes the lock only if it still holds our token.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

const lockRetryInterval = 25 * time.Millisecond

type RedisLocker struct {
	Redis *redis.Client
	ttl   time.Duration
	wait  time.Duration

	newToken func() string
}

// NewRedisLocker locks keys for ttl and waits at most wait for a held lock.
func NewRedisLocker(redisClient *redis.Client, ttl, wait time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if wait <= 0 {
		wait = ttl
	}
	return &RedisLocker{Redis: redisClient, ttl: ttl, wait: wait, newToken: uuid.NewString}
}

func lockKey(key string) string {
	return fmt.Sprintf("lock:%s", key)
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := lockKey(key)
	token := l.newToken()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.Redis.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", status.ErrBusy, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	acquired := time.Now()
	release := func() {
		kind, _, _ := strings.Cut(key, ":")
		monitoring.TrackSeatLock(kind, time.Since(acquired))

		// The request context may already be cancelled here.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()

		err := l.Redis.Eval(ctx, releaseScript, []string{redisKey}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			logrus.WithError(err).WithField("key", redisKey).Warn("failed to release lock")
		}
	}
	return release, nil
}
