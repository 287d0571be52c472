package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestMemory() (*memoryService, *time.Time) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryService(nil).(*memoryService)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestMemoryGetSet(t *testing.T) {
	m, _ := newTestMemory()
	ctx := context.Background()

	var got item
	assert.ErrorIs(t, m.Get(ctx, "k", &got), ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "k", item{Name: "Regular", Count: 2}, 0))
	require.NoError(t, m.Get(ctx, "k", &got))
	assert.Equal(t, item{Name: "Regular", Count: 2}, got)
	assert.True(t, m.Exists(ctx, "k"))

	require.NoError(t, m.Delete(ctx, "k"))
	assert.False(t, m.Exists(ctx, "k"))
}

func TestMemoryExpiry(t *testing.T) {
	m, now := newTestMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", 1, time.Minute))
	assert.True(t, m.Exists(ctx, "k"))

	*now = now.Add(2 * time.Minute)
	assert.False(t, m.Exists(ctx, "k"))
}

func TestMemorySetNX(t *testing.T) {
	m, now := newTestMemory()
	ctx := context.Background()

	ok, err := m.SetNX(ctx, "lock", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.SetNX(ctx, "lock", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	*now = now.Add(2 * time.Minute)
	ok, err = m.SetNX(ctx, "lock", "c", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryWritesSweepExpiredEntries(t *testing.T) {
	m, now := newTestMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "abandoned", 1, time.Minute))
	require.NoError(t, m.Set(ctx, "kept", 1, time.Hour))
	*now = now.Add(2 * time.Minute)

	for i := 0; i < sweepEvery; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("k%d", i), i, 0))
	}

	m.mu.Lock()
	_, abandoned := m.entries["abandoned"]
	_, kept := m.entries["kept"]
	size := len(m.entries)
	m.mu.Unlock()
	assert.False(t, abandoned)
	assert.True(t, kept)
	assert.Equal(t, sweepEvery+1, size)
}

func TestMemorySetNXCountsTowardsSweep(t *testing.T) {
	m, now := newTestMemory()
	ctx := context.Background()

	ok, err := m.SetNX(ctx, "lock:old", "a", time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	*now = now.Add(time.Minute)

	for i := 1; i < sweepEvery; i++ {
		_, err := m.SetNX(ctx, fmt.Sprintf("lock:%d", i), "a", time.Hour)
		require.NoError(t, err)
	}

	m.mu.Lock()
	_, old := m.entries["lock:old"]
	m.mu.Unlock()
	assert.False(t, old)
}

func TestMemoryDeletePattern(t *testing.T) {
	m, _ := newTestMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "tikiti:catalog:events:list", 1, 0))
	require.NoError(t, m.Set(ctx, "tikiti:catalog:events:detail:1", 1, 0))
	require.NoError(t, m.Set(ctx, "tikiti:selection:session:x", 1, 0))

	require.NoError(t, m.DeletePattern(ctx, "tikiti:catalog:*"))

	assert.False(t, m.Exists(ctx, "tikiti:catalog:events:list"))
	assert.False(t, m.Exists(ctx, "tikiti:catalog:events:detail:1"))
	assert.True(t, m.Exists(ctx, "tikiti:selection:session:x"))
}

func TestGetOrSet(t *testing.T) {
	m, _ := newTestMemory()
	ctx := context.Background()
	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return []item{{Name: "VIP", Count: 1}}, nil
	}

	var first, second []item
	require.NoError(t, m.GetOrSet(ctx, "list", time.Minute, fetch, &first))
	require.NoError(t, m.GetOrSet(ctx, "list", time.Minute, fetch, &second))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestGetOrSetFetcherError(t *testing.T) {
	m, _ := newTestMemory()
	boom := errors.New("boom")

	var dest []item
	err := m.GetOrSet(context.Background(), "list", time.Minute, func() (interface{}, error) {
		return nil, boom
	}, &dest)

	assert.ErrorIs(t, err, boom)
	assert.False(t, m.Exists(context.Background(), "list"))
}
