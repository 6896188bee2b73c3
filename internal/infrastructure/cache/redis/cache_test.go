// Package redis_test provides unit tests for the Redis cache adapter.
package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rediscache "github.com/vahan-ai/chat-gateway/internal/infrastructure/cache/redis"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *rediscache.Cache) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	c, err := rediscache.NewCache(rediscache.Config{
		Host:     mr.Host(),
		Port:     mr.Port(),
		Password: "",
		DB:       0,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		c.Close()
		mr.Close()
	})

	return mr, c
}

func TestNewCache_Success(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c, err := rediscache.NewCache(rediscache.Config{
		Host: mr.Host(),
		Port: mr.Port(),
	})

	assert.NoError(t, err)
	assert.NotNil(t, c)

	c.Close()
}

func TestCache_SetAndGet(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	err := c.Set(ctx, "test-key", []byte("test-value"), time.Minute)
	assert.NoError(t, err)

	result, err := c.Get(ctx, "test-key")
	assert.NoError(t, err)
	assert.Equal(t, []byte("test-value"), result)
}

func TestCache_GetNotFound(t *testing.T) {
	_, c := setupMiniredis(t)

	result, err := c.Get(context.Background(), "non-existent-key")

	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestCache_SetRespectsTTL(t *testing.T) {
	mr, c := setupMiniredis(t)
	ctx := context.Background()

	err := c.Set(ctx, "expiring", []byte("value"), time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	result, err := c.Get(ctx, "expiring")
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestCache_SetZeroTTLUsesDefault(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c, err := rediscache.NewCache(rediscache.Config{
		Host:       mr.Host(),
		Port:       mr.Port(),
		DefaultTTL: 10 * time.Minute,
	})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "defaulted", []byte("value"), 0))

	ttl, err := c.GetClient().TTL(ctx, "defaulted").Result()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, ttl)
}

func TestCache_Delete(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "test-key", []byte("test-value"), time.Minute))

	deleted, err := c.Delete(ctx, "test-key")
	assert.NoError(t, err)
	assert.True(t, deleted)

	result, err := c.Get(ctx, "test-key")
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestCache_DeleteMissingKey(t *testing.T) {
	_, c := setupMiniredis(t)

	deleted, err := c.Delete(context.Background(), "never-existed")
	assert.NoError(t, err)
	assert.False(t, deleted)
}

func TestCache_ListOperations(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, c.RPush(ctx, "list", "a", "b"))
	require.NoError(t, c.RPush(ctx, "list", "c"))

	all, err := c.LRange(ctx, "list", 0, -1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, all)

	n, err := c.LLen(ctx, "list")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// Negative start addresses the tail
	tail, err := c.LRange(ctx, "list", -2, -1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, tail)
}

func TestCache_LPushPrepends(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, c.LPush(ctx, "list", "first"))
	require.NoError(t, c.LPush(ctx, "list", "second"))

	all, err := c.LRange(ctx, "list", 0, -1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, all)
}

func TestCache_SortedSetRange(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, c.ZAdd(ctx, "series", 100, "100:1.5"))
	require.NoError(t, c.ZAdd(ctx, "series", 200, "200:2.5"))
	require.NoError(t, c.ZAdd(ctx, "series", 300, "300:3.5"))

	members, err := c.ZRangeByScore(ctx, "series", 150, 300)
	assert.NoError(t, err)
	assert.Equal(t, []string{"200:2.5", "300:3.5"}, members)
}

func TestCache_Ping(t *testing.T) {
	mr, c := setupMiniredis(t)

	assert.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}
