// Package ratelimit enforces each portal's crawl budget. The budget is
// scoped to the platform, not the organization: every job crawling the same
// external source draws from one shared window.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/estiacrm/marketintel/internal/platform"
)

// Limiter answers whether one more request to a platform fits its budget.
type Limiter interface {
	Allow(ctx context.Context, platformID string) (bool, error)
	// Wait blocks until a request is allowed or the context ends.
	Wait(ctx context.Context, platformID string) error
}

const retryInterval = 500 * time.Millisecond

// RedisLimiter is a fixed-window counter in redis, shared across every
// process crawling the same platform. Keys roll over per window and expire
// on their own.
type RedisLimiter struct {
	client *redis.Client
	limits map[string]platform.RateLimit
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, registry *platform.Registry) *RedisLimiter {
	limits := make(map[string]platform.RateLimit)
	for _, id := range registry.IDs() {
		pc, err := registry.Get(id)
		if err != nil {
			continue
		}
		limits[id] = pc.RateLimit
	}
	return &RedisLimiter{client: client, limits: limits, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, platformID string) (bool, error) {
	limit, ok := l.limits[platformID]
	if !ok {
		return false, fmt.Errorf("%w: %s", platform.ErrUnknownPlatform, platformID)
	}
	window := time.Duration(limit.PerMinutes) * time.Minute
	bucket := l.now().UnixNano() / int64(window)
	key := fmt.Sprintf("marketintel:rate:%s:%d", platformID, bucket)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit pipeline failed: %w", err)
	}
	if incr.Val() > int64(limit.Requests) {
		return false, nil
	}
	return true, nil
}

func (l *RedisLimiter) Wait(ctx context.Context, platformID string) error {
	return wait(ctx, l, platformID)
}

func wait(ctx context.Context, l Limiter, platformID string) error {
	for {
		ok, err := l.Allow(ctx, platformID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// MemoryLimiter is the in-process fallback used when no redis is configured
// (single-node deployments and tests). Same fixed-window accounting, one
// window per platform guarded by a mutex.
type MemoryLimiter struct {
	limits  map[string]platform.RateLimit
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	bucket int64
	count  int64
}

func NewMemoryLimiter(registry *platform.Registry) *MemoryLimiter {
	limits := make(map[string]platform.RateLimit)
	for _, id := range registry.IDs() {
		pc, err := registry.Get(id)
		if err != nil {
			continue
		}
		limits[id] = pc.RateLimit
	}
	return &MemoryLimiter{
		limits:  limits,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, platformID string) (bool, error) {
	limit, ok := l.limits[platformID]
	if !ok {
		return false, fmt.Errorf("%w: %s", platform.ErrUnknownPlatform, platformID)
	}
	size := time.Duration(limit.PerMinutes) * time.Minute
	bucket := l.now().UnixNano() / int64(size)

	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[platformID]
	if !ok || w.bucket != bucket {
		w = &window{bucket: bucket}
		l.windows[platformID] = w
	}
	w.count++
	return w.count <= int64(limit.Requests), nil
}

func (l *MemoryLimiter) Wait(ctx context.Context, platformID string) error {
	return wait(ctx, l, platformID)
}
