package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := New(Config{DefaultTTL: time.Minute})
	defer c.Close()

	c.Set(ctx, "a", 1)
	v, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Delete(ctx, "a")
	_, ok = c.Get(ctx, "a")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := New(Config{})
	defer c.Close()

	c.SetWithTTL(ctx, "short", "v", time.Millisecond)
	c.SetWithTTL(ctx, "forever", "v", 0)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(ctx, "short")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestCacheMaxItems(t *testing.T) {
	ctx := context.Background()
	var (
		mu      sync.Mutex
		evicted []string
	)
	c := New(Config{
		DefaultTTL: time.Hour,
		MaxItems:   2,
		OnEviction: func(key string, _ any) {
			mu.Lock()
			evicted = append(evicted, key)
			mu.Unlock()
		},
	})
	defer c.Close()

	c.SetWithTTL(ctx, "first", 1, time.Minute)
	c.SetWithTTL(ctx, "second", 2, time.Hour)
	c.SetWithTTL(ctx, "third", 3, time.Hour)

	assert.Equal(t, 2, c.Size())
	_, ok := c.Get(ctx, "first")
	assert.False(t, ok)
	assert.Equal(t, []string{"first"}, evicted)

	// overwriting an existing key does not evict
	c.Set(ctx, "second", 22)
	assert.Equal(t, 2, c.Size())
	v, _ := c.Get(ctx, "second")
	assert.Equal(t, 22, v)
}

func TestCacheCleanupLoop(t *testing.T) {
	ctx := context.Background()
	c := New(Config{CleanupInterval: 5 * time.Millisecond})
	defer c.Close()

	c.SetWithTTL(ctx, "k", "v", time.Millisecond)
	assert.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 5*time.Millisecond)
}

func TestCacheClear(t *testing.T) {
	ctx := context.Background()
	c := New(Config{})
	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	c.Clear(ctx)
	assert.Zero(t, c.Size())
	c.Close()
	c.Close()
}
