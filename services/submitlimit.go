package services

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// IntervalLimiter enforces a minimum delay between successful submissions
// per client key (normally the client IP). The state lives in Redis when
// available so it survives restarts; otherwise an in-memory map is used.
// Either way this is soft abuse deterrence, not a security control.
type IntervalLimiter struct {
	interval time.Duration
	redis    *redis.Client
	now      func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// NewIntervalLimiter builds a limiter for the given interval. rc may be nil.
func NewIntervalLimiter(interval time.Duration, rc *redis.Client) *IntervalLimiter {
	return &IntervalLimiter{
		interval: interval,
		redis:    rc,
		now:      time.Now,
		last:     map[string]time.Time{},
	}
}

// Allow reports whether key may submit now. It does not record anything;
// call Record after the submission actually succeeds.
func (l *IntervalLimiter) Allow(ctx context.Context, key string) bool {
	if l.interval <= 0 {
		return true
	}
	if l.redis != nil {
		n, err := l.redis.Exists(ctx, l.redisKey(key)).Result()
		if err == nil {
			return n == 0
		}
		// Redis down: fall through to the local map.
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	last, ok := l.last[key]
	return !ok || l.now().Sub(last) >= l.interval
}

// Record stamps key's last successful submission time.
func (l *IntervalLimiter) Record(ctx context.Context, key string) {
	if l.interval <= 0 {
		return
	}
	if l.redis != nil {
		if err := l.redis.Set(ctx, l.redisKey(key), "1", l.interval).Err(); err == nil {
			return
		}
	}
	l.mu.Lock()
	l.last[key] = l.now()
	l.mu.Unlock()
}

func (l *IntervalLimiter) redisKey(key string) string {
	return "submit:last:" + key
}
