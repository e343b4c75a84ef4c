package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("claim lock not acquired")
)

// Locker guards the critical section around claiming a (doctor, instant)
// pair. It is an optimization that keeps concurrent bookers of the same
// slot from both reaching the store; the store's uniqueness constraint
// remains the correctness mechanism when the lock is unavailable.
type Locker interface {
	WithClaimLock(ctx context.Context, doctorID uuid.UUID, startAt time.Time, fn func(ctx context.Context) error) error
}

type redisClaimLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClaimLocker creates a locker keyed per doctor and slot instant.
func NewRedisClaimLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisClaimLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisClaimLocker) WithClaimLock(ctx context.Context, doctorID uuid.UUID, startAt time.Time, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:claim:%s:%d", doctorID.String(), startAt.Unix())
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire claim lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisClaimLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release claim lock: %w", err)
	}
	return nil
}

// NoopLocker runs the critical section without coordination. Used where
// Redis is absent; the store constraint still serializes claims.
type NoopLocker struct{}

func (NoopLocker) WithClaimLock(ctx context.Context, doctorID uuid.UUID, startAt time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
