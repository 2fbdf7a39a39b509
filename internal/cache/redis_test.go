package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests need a scratch Redis: MF_TEST_REDIS_ADDR=localhost:6379
func newTestRedis(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("MF_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MF_TEST_REDIS_ADDR not set")
	}
	c := NewRedisCache(addr, "", 0, "mf-test:"+uuid.NewString()+":")
	require.NoError(t, c.Ping(context.Background()))
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisCache_PrefixAndTTL(t *testing.T) {
	ctx := context.Background()
	c := newTestRedis(t)

	_, ok, err := c.Get(ctx, "quote:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "quote:1", `{"balance_due":"1150"}`, time.Minute))

	got, ok, err := c.Get(ctx, "quote:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"balance_due":"1150"}`, got)

	raw, err := c.client.Get(ctx, c.prefix+"quote:1").Result()
	require.NoError(t, err)
	assert.Equal(t, got, raw, "values are stored under the prefixed key")

	exists, err := c.client.Exists(ctx, "quote:1").Result()
	require.NoError(t, err)
	assert.Zero(t, exists, "the bare key is never written")

	ttl, err := c.client.TTL(ctx, c.prefix+"quote:1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisCache_ZeroTTLKeepsKey(t *testing.T) {
	ctx := context.Background()
	c := newTestRedis(t)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	t.Cleanup(func() { c.client.Del(context.Background(), c.prefix+"k") })

	ttl, err := c.client.TTL(ctx, c.prefix+"k").Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl)
}
