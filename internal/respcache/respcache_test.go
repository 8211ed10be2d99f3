package respcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetMissReturnsFalse(t *testing.T) {
	c := NewMemoryCache(4)
	_, ok := c.Get(context.Background(), "absent")
	assert.False(t, ok)
}

func TestSetThenGetRoundTrips(t *testing.T) {
	c := NewMemoryCache(4)
	ctx := context.Background()

	c.Set(ctx, "k1", []byte("v1"), time.Minute)

	v, ok := c.Get(ctx, "k1")
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), v)
}

func TestGetExpiredEntryIsEvicted(t *testing.T) {
	c := NewMemoryCache(4)
	ctx := context.Background()

	c.Set(ctx, "k1", []byte("v1"), -time.Second)

	_, ok := c.Get(ctx, "k1")
	assert.False(t, ok)
	assert.Len(t, c.entries, 0)
}

func TestSetEvictsLeastRecentlyUsedWhenFull(t *testing.T) {
	c := NewMemoryCache(2)
	ctx := context.Background()

	c.Set(ctx, "k1", []byte("v1"), time.Minute)
	c.Set(ctx, "k2", []byte("v2"), time.Minute)
	c.Get(ctx, "k1") // k1 now most-recently-used, k2 is the LRU victim
	c.Set(ctx, "k3", []byte("v3"), time.Minute)

	_, k2ok := c.Get(ctx, "k2")
	_, k1ok := c.Get(ctx, "k1")
	_, k3ok := c.Get(ctx, "k3")

	assert.False(t, k2ok)
	assert.True(t, k1ok)
	assert.True(t, k3ok)
}

func TestSetOverwritesExistingKeyAndRefreshesTTL(t *testing.T) {
	c := NewMemoryCache(4)
	ctx := context.Background()

	c.Set(ctx, "k1", []byte("v1"), time.Minute)
	c.Set(ctx, "k1", []byte("v2"), time.Minute)

	v, ok := c.Get(ctx, "k1")
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), v)
	assert.Len(t, c.entries, 1)
}
