package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"
)

const checkCacheStripes = 64

// CheckCache memoises recent blacklist decisions per token id.
//
// Every Delete bumps a generation counter. A caller that read Generation
// before looking the token up stores its answer with SetIfUnchanged, which
// drops the write when an invalidation landed in between. A check that raced
// a revocation therefore never caches its stale answer.
type CheckCache[T any] struct {
	c   *gocache.Cache
	ttl time.Duration

	generation atomic.Uint64
	stripes    [checkCacheStripes]sync.Mutex
}

// NewCheckCache creates a cache whose entries live for at most ttl.
// A non-positive ttl disables caching.
func NewCheckCache[T any](ttl time.Duration) *CheckCache[T] {
	return &CheckCache[T]{c: gocache.New(ttl, 2*ttl), ttl: ttl}
}

func (c *CheckCache[T]) stripe(tokenID string) *sync.Mutex {
	return &c.stripes[xxhash.Sum64String(tokenID)%checkCacheStripes]
}

func (c *CheckCache[T]) Get(tokenID string) (T, bool) {
	var zero T
	v, ok := c.c.Get(tokenID)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Generation is read before the lookup whose result will be cached
func (c *CheckCache[T]) Generation() uint64 {
	return c.generation.Load()
}

// Set stores value for the default ttl or for remaining, whichever is shorter.
// Nothing is stored when remaining is not positive.
func (c *CheckCache[T]) Set(tokenID string, value T, remaining time.Duration) {
	mu := c.stripe(tokenID)
	mu.Lock()
	defer mu.Unlock()
	c.set(tokenID, value, remaining)
}

// SetIfUnchanged behaves like Set while no Delete happened since generation
// was read. It reports whether the value was stored.
func (c *CheckCache[T]) SetIfUnchanged(tokenID string, value T, remaining time.Duration, generation uint64) bool {
	mu := c.stripe(tokenID)
	mu.Lock()
	defer mu.Unlock()
	if c.generation.Load() != generation {
		return false
	}
	return c.set(tokenID, value, remaining)
}

func (c *CheckCache[T]) set(tokenID string, value T, remaining time.Duration) bool {
	if remaining <= 0 || c.ttl <= 0 {
		return false
	}
	ttl := c.ttl
	if remaining < ttl {
		ttl = remaining
	}
	c.c.Set(tokenID, value, ttl)
	return true
}

func (c *CheckCache[T]) Delete(tokenID string) {
	mu := c.stripe(tokenID)
	mu.Lock()
	defer mu.Unlock()
	c.generation.Add(1)
	c.c.Delete(tokenID)
}

func (c *CheckCache[T]) Len() int {
	return c.c.ItemCount()
}
