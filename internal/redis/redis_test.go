package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCacheIsNoop(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	assert.NoError(t, c.Ping(ctx))
	c.SetJSON(ctx, "k", map[string]int{"a": 1}, 0)
	var out map[string]int
	assert.False(t, c.GetJSON(ctx, "k", &out))
	c.Delete(ctx, "k")
	assert.NoError(t, c.Close())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "availability:user:4", AvailabilityKey(4))
	assert.Equal(t, "availability:idem:4:abc", IdempotencyKey(4, "abc"))
}

func TestCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewCache(mr.Addr(), "", "", time.Minute)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	c.SetJSON(ctx, "default", []int{1, 2}, 0)
	var got []int
	require.True(t, c.GetJSON(ctx, "default", &got))
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, time.Minute, mr.TTL("default"))

	c.SetJSON(ctx, "long", "x", 24*time.Hour)
	assert.Equal(t, 24*time.Hour, mr.TTL("long"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, c.GetJSON(ctx, "default", &got), "expired")

	c.Delete(ctx, "long")
	var s string
	assert.False(t, c.GetJSON(ctx, "long", &s))

	require.NoError(t, mr.Set("junk", "{not json"))
	assert.False(t, c.GetJSON(ctx, "junk", &got))
}
