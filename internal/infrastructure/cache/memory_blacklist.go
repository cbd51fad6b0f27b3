// Package cache holds process-local caches.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
)

const (
	DefaultShardCount = 64

	// approximate per-entry cost: map bucket slot, string header and two time.Time values
	entryOverheadBytes = 96
)

type shard struct {
	mu      sync.RWMutex
	entries map[string]entity.BlacklistEntry
}

// MemoryBlacklist is a sharded in-process blacklist tier. Each shard has its
// own lock so reads of unrelated keys never wait on a writer. Expired entries
// are hidden on read even if no sweep has run.
type MemoryBlacklist struct {
	shards []*shard
	now    func() time.Time

	count atomic.Int64
	bytes atomic.Int64
}

// NewMemoryBlacklist creates a tier with shardCount shards
func NewMemoryBlacklist(shardCount int, now func() time.Time) *MemoryBlacklist {
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}
	if now == nil {
		now = time.Now
	}

	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = &shard{entries: make(map[string]entity.BlacklistEntry)}
	}

	return &MemoryBlacklist{shards: shards, now: now}
}

func (m *MemoryBlacklist) shardFor(tokenID string) *shard {
	return m.shards[xxhash.Sum64String(tokenID)%uint64(len(m.shards))]
}

func entrySize(tokenID string) int64 {
	return int64(len(tokenID)) + entryOverheadBytes
}

func (m *MemoryBlacklist) Get(_ context.Context, tokenID string) (*entity.BlacklistEntry, error) {
	s := m.shardFor(tokenID)

	s.mu.RLock()
	entry, ok := s.entries[tokenID]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	now := m.now()
	if entry.IsExpired(now) {
		m.evictIfExpired(s, tokenID, now)
		return nil, nil
	}

	return &entry, nil
}

// evictIfExpired re-checks under the write lock since a concurrent Set may have extended the entry
func (m *MemoryBlacklist) evictIfExpired(s *shard, tokenID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[tokenID]; ok && entry.IsExpired(now) {
		delete(s.entries, tokenID)
		m.count.Add(-1)
		m.bytes.Add(-entrySize(tokenID))
	}
}

func (m *MemoryBlacklist) Set(_ context.Context, entry *entity.BlacklistEntry) error {
	s := m.shardFor(entry.TokenID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[entry.TokenID]; !exists {
		m.count.Add(1)
		m.bytes.Add(entrySize(entry.TokenID))
	}
	s.entries[entry.TokenID] = *entry

	return nil
}

func (m *MemoryBlacklist) Remove(_ context.Context, tokenID string) error {
	s := m.shardFor(tokenID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[tokenID]; exists {
		delete(s.entries, tokenID)
		m.count.Add(-1)
		m.bytes.Add(-entrySize(tokenID))
	}

	return nil
}

// RemoveExpired locks one shard at a time
func (m *MemoryBlacklist) RemoveExpired(ctx context.Context, now time.Time) (int, error) {
	removed := 0

	for _, s := range m.shards {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		s.mu.Lock()
		for id, entry := range s.entries {
			if entry.IsExpired(now) {
				delete(s.entries, id)
				m.count.Add(-1)
				m.bytes.Add(-entrySize(id))
				removed++
			}
		}
		s.mu.Unlock()
	}

	return removed, nil
}

func (m *MemoryBlacklist) Count(_ context.Context) (int, error) {
	return m.Len(), nil
}

// Len includes expired entries not yet swept
func (m *MemoryBlacklist) Len() int {
	return int(m.count.Load())
}

func (m *MemoryBlacklist) EstimatedBytes() int64 {
	return m.bytes.Load()
}
