package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestMemoryBlacklist_GetMissing(t *testing.T) {
	m := NewMemoryBlacklist(4, nil)

	entry, err := m.Get(context.Background(), "never-issued")
	assert.NoError(t, err)
	assert.Nil(t, entry)
}

func TestMemoryBlacklist_LazyExpiry(t *testing.T) {
	clock := newClock()
	m := NewMemoryBlacklist(4, clock.Now)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, entity.NewBlacklistEntry("jti-1", clock.Now(), clock.Now().Add(time.Minute))))

	entry, err := m.Get(ctx, "jti-1")
	require.NoError(t, err)
	require.NotNil(t, entry)

	clock.Advance(time.Minute + time.Nanosecond)

	entry, err = m.Get(ctx, "jti-1")
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, int64(0), m.EstimatedBytes())
}

func TestMemoryBlacklist_SetOverwrites(t *testing.T) {
	clock := newClock()
	m := NewMemoryBlacklist(4, clock.Now)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, entity.NewBlacklistEntry("jti-1", clock.Now(), clock.Now().Add(time.Minute))))
	require.NoError(t, m.Set(ctx, entity.NewBlacklistEntry("jti-1", clock.Now(), clock.Now().Add(time.Hour))))

	assert.Equal(t, 1, m.Len())

	clock.Advance(30 * time.Minute)
	entry, err := m.Get(ctx, "jti-1")
	require.NoError(t, err)
	assert.NotNil(t, entry)
}

func TestMemoryBlacklist_RemoveExpired(t *testing.T) {
	clock := newClock()
	m := NewMemoryBlacklist(DefaultShardCount, clock.Now)
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		expires := clock.Now().Add(time.Duration(i+1) * 3 * time.Second)
		require.NoError(t, m.Set(ctx, entity.NewBlacklistEntry(fmt.Sprintf("jti-%d", i), clock.Now(), expires)))
	}
	require.Equal(t, 1000, m.Len())

	removed, err := m.RemoveExpired(ctx, clock.Now().Add(25*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 500, removed)

	removed, err = m.RemoveExpired(ctx, clock.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 500, removed)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryBlacklist_Remove(t *testing.T) {
	m := NewMemoryBlacklist(4, nil)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, entity.NewBlacklistEntry("jti-1", time.Now(), time.Now().Add(time.Hour))))
	require.NoError(t, m.Remove(ctx, "jti-1"))
	require.NoError(t, m.Remove(ctx, "jti-1"))

	entry, err := m.Get(ctx, "jti-1")
	assert.NoError(t, err)
	assert.Nil(t, entry)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryBlacklist_Concurrent(t *testing.T) {
	m := NewMemoryBlacklist(8, nil)
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("jti-%d-%d", w, i)
				_ = m.Set(ctx, entity.NewBlacklistEntry(id, time.Now(), expires))
				entry, _ := m.Get(ctx, id)
				assert.NotNil(t, entry)
				_, _ = m.RemoveExpired(ctx, time.Now())
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 1600, m.Len())
}
