package shared

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ProductionLockKey builds the redis key serializing production per resin.
func ProductionLockKey(resinName string) string {
	return fmt.Sprintf("production:resin:%s:lock", resinName)
}

// RecordLockKey builds the redis key guarding deploy/soft-delete per production record.
func RecordLockKey(productionID int64) string {
	return fmt.Sprintf("production:record:%d:lock", productionID)
}

// Locker wraps redislock for per-resource critical sections.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewLocker constructs a Locker. The TTL bounds how long a crashed holder
// can block other workers.
func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &Locker{client: redislock.New(client), ttl: ttl}
}

// Acquire obtains the named lock, retrying briefly before giving up.
func (l *Locker) Acquire(ctx context.Context, key string) (*redislock.Lock, error) {
	if l == nil || l.client == nil {
		return nil, errors.New("locker not initialised")
	}
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 20),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", ErrLockHeld, key)
	}
	if err != nil {
		return nil, err
	}
	return lock, nil
}

// WithLock runs fn while holding the named lock.
func (l *Locker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	lock, err := l.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.Release(ctx)
	}()
	return fn(ctx)
}
