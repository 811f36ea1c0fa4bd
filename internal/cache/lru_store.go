package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/clock"
	lru "github.com/hashicorp/golang-lru"
)

const memoryTier = "memory"

type lruEntry struct {
	value     []byte
	expiresAt time.Time
}

// LRUStore is the in-process tier, bounded by item count.
type LRUStore struct {
	entries *lru.Cache
	clock   clock.Clock
	metrics Metrics
}

// NewLRUStore creates an in-process tier holding at most size entries.
func NewLRUStore(size int, metrics Metrics) (*LRUStore, error) {
	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &LRUStore{
		entries: entries,
		clock:   clock.Real{},
		metrics: metrics,
	}, nil
}

func (s *LRUStore) Name() string { return memoryTier }

// Get returns a copy of the stored value. Expired entries are removed and reported as a miss.
func (s *LRUStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	raw, ok := s.entries.Get(key)
	if !ok {
		s.metrics.Observe(memoryTier, EventMiss)
		return nil, false, nil
	}
	entry := raw.(lruEntry)
	if !entry.expiresAt.IsZero() && !s.clock.Now().Before(entry.expiresAt) {
		s.entries.Remove(key)
		s.metrics.Observe(memoryTier, EventMiss)
		return nil, false, nil
	}
	s.metrics.Observe(memoryTier, EventHit)
	return append([]byte(nil), entry.value...), true, nil
}

// Set stores a copy of value. A non-positive ttl keeps the entry until it is evicted.
func (s *LRUStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := lruEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = s.clock.Now().Add(ttl)
	}
	s.entries.Add(key, entry)
	s.metrics.Observe(memoryTier, EventSet)
	return nil
}

func (s *LRUStore) Delete(_ context.Context, key string) error {
	s.entries.Remove(key)
	s.metrics.Observe(memoryTier, EventDelete)
	return nil
}

// Len reports the number of entries, including expired ones not yet read.
func (s *LRUStore) Len() int {
	return s.entries.Len()
}
