package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PairLock guards one (organization, platform) pair so only one run touches
// it at a time, across every worker process. The running scrape_logs row is
// the durable backstop; the lock just keeps workers from racing to it.
type PairLock interface {
	// Acquire returns a release func and whether the lock was taken. A
	// false ok with nil err means another holder has it.
	Acquire(ctx context.Context, organizationID, platform string, ttl time.Duration) (release func(), ok bool, err error)
}

func pairLockKey(organizationID, platform string) string {
	return fmt.Sprintf("marketintel:lock:%s:%s", organizationID, platform)
}

type RedisPairLock struct {
	client *redis.Client
}

func NewRedisPairLock(client *redis.Client) *RedisPairLock {
	return &RedisPairLock{client: client}
}

func (l *RedisPairLock) Acquire(ctx context.Context, organizationID, platform string, ttl time.Duration) (func(), bool, error) {
	key := pairLockKey(organizationID, platform)
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquiring pair lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// only drop the lock if it is still ours; the TTL may have
		// expired and handed it to someone else
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		held, err := l.client.Get(rctx, key).Result()
		if err == nil && held == token {
			l.client.Del(rctx, key)
		}
	}
	return release, true, nil
}

// MemoryPairLock is the in-process fallback used without Redis and in tests.
type MemoryPairLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryPairLock() *MemoryPairLock {
	return &MemoryPairLock{held: make(map[string]struct{})}
}

func (l *MemoryPairLock) Acquire(_ context.Context, organizationID, platform string, _ time.Duration) (func(), bool, error) {
	key := pairLockKey(organizationID, platform)
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.held[key]; taken {
		return nil, false, nil
	}
	l.held[key] = struct{}{}
	release := func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}
	return release, true, nil
}
