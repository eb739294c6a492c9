package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"

	redisbloom "github.com/RedisBloom/redisbloom-go"
)

const (
	seenApproxItems = 200_000
	seenErrorRate   = 0.001
)

// SeenFilter suppresses duplicate listings within one run. Portals repeat
// cards across result pages, so the first sighting of a dedup key wins and
// later ones are dropped before they hit the store.
type SeenFilter interface {
	Reserve(ctx context.Context, runKey string) error
	// AddIfNew records the key and reports whether this was its first
	// sighting under runKey.
	AddIfNew(ctx context.Context, runKey, key string) (bool, error)
}

func seenFilterKey(runID string) string {
	return fmt.Sprintf("marketintel:seen:%s", runID)
}

// BloomSeenFilter keeps the per-run seen set in RedisBloom so concurrent
// workers on other hosts share it.
type BloomSeenFilter struct {
	client *redisbloom.Client
}

func NewBloomSeenFilter(addr string) *BloomSeenFilter {
	return &BloomSeenFilter{client: redisbloom.NewClient(addr, "", nil)}
}

func (b *BloomSeenFilter) Reserve(_ context.Context, runKey string) error {
	if err := b.client.Reserve(runKey, seenErrorRate, seenApproxItems); err != nil {
		if strings.Contains(err.Error(), "item exists") {
			return nil
		}
		return fmt.Errorf("could not reserve seen filter: %w", err)
	}
	return nil
}

func (b *BloomSeenFilter) AddIfNew(_ context.Context, runKey, key string) (bool, error) {
	added, err := b.client.Add(runKey, key)
	if err != nil {
		return false, fmt.Errorf("failed to check seen filter: %w", err)
	}
	return added, nil
}

// MemorySeenFilter backs the same contract with a plain map for single
// process deployments and tests.
type MemorySeenFilter struct {
	mu   sync.Mutex
	runs map[string]map[string]struct{}
}

func NewMemorySeenFilter() *MemorySeenFilter {
	return &MemorySeenFilter{runs: make(map[string]map[string]struct{})}
}

func (m *MemorySeenFilter) Reserve(context.Context, string) error { return nil }

func (m *MemorySeenFilter) AddIfNew(_ context.Context, runKey, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen, ok := m.runs[runKey]
	if !ok {
		seen = make(map[string]struct{})
		m.runs[runKey] = seen
	}
	if _, dup := seen[key]; dup {
		return false, nil
	}
	seen[key] = struct{}{}
	return true, nil
}
