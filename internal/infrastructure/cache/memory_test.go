package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Hour))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	exists, err := c.Exists(ctx, "key")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	got, err := c.Get(ctx, "absent")
	require.NoError(t, err)
	assert.Nil(t, got)

	exists, err := c.Exists(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Nil(t, got)

	exists, err := c.Exists(ctx, "key")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), 0))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Hour))
	require.NoError(t, c.Delete(ctx, "key"))
	require.NoError(t, c.Delete(ctx, "key")) // idempotent

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	value := []byte("value")
	require.NoError(t, c.Set(ctx, "key", value, time.Hour))
	value[0] = 'X'

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	got[0] = 'Y'
	again, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), again)
}
