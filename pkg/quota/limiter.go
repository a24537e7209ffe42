// Package quota enforces a per-user daily message allowance.
package quota

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

type Limiter interface {
	// Consume records one unit for key in the current UTC day and reports whether the
	// key is still within its limit.
	Consume(ctx context.Context, key string) (bool, error)
	// Refund returns one unit consumed today, for work that never happened.
	Refund(ctx context.Context, key string) error
}

func dayKey(key string, now time.Time) string {
	return fmt.Sprintf("quota:%s:%s", key, now.UTC().Format("2006-01-02"))
}

type RedisLimiter struct {
	client *redis.Client
	limit  int
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, limit int) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, now: time.Now}
}

func (l *RedisLimiter) Consume(ctx context.Context, key string) (bool, error) {
	k := dayKey(key, l.now())

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("redis incr: %w", err)
	}
	if count == 1 {
		// First hit of the day owns the expiry; a little over a day covers clock skew.
		if err := l.client.Expire(ctx, k, 25*time.Hour).Err(); err != nil {
			return false, fmt.Errorf("redis expire: %w", err)
		}
	}
	return count <= int64(l.limit), nil
}

func (l *RedisLimiter) Refund(ctx context.Context, key string) error {
	if err := l.client.Decr(ctx, dayKey(key, l.now())).Err(); err != nil {
		return fmt.Errorf("redis decr: %w", err)
	}
	return nil
}

// MemoryLimiter keeps counters in process. Used when Redis is not configured.
type MemoryLimiter struct {
	mu    sync.Mutex
	store *cache.Cache
	limit int
	now   func() time.Time
}

func NewMemoryLimiter(limit int) *MemoryLimiter {
	return &MemoryLimiter{
		store: cache.New(25*time.Hour, time.Hour),
		limit: limit,
		now:   time.Now,
	}
}

func (l *MemoryLimiter) Consume(ctx context.Context, key string) (bool, error) {
	k := dayKey(key, l.now())

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Add(k, 1, cache.DefaultExpiration); err == nil {
		return 1 <= l.limit, nil
	}
	count, err := l.store.IncrementInt(k, 1)
	if err != nil {
		return false, err
	}
	return count <= l.limit, nil
}

func (l *MemoryLimiter) Refund(ctx context.Context, key string) error {
	k := dayKey(key, l.now())

	l.mu.Lock()
	defer l.mu.Unlock()

	count, found := l.store.Get(k)
	if !found || count.(int) <= 0 {
		return nil
	}
	_, err := l.store.DecrementInt(k, 1)
	return err
}
