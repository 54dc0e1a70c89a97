// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedis(mr.Addr(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestRedis(t)

	c.Set(ctx, "geo:1.2.3.4", []byte(`{"latitude":45.5}`), time.Minute)

	val, ok := c.Get(ctx, "geo:1.2.3.4")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"latitude":45.5}`), val)

	_, ok = c.Get(ctx, "geo:5.6.7.8")
	assert.False(t, ok)
}

func TestRedisCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	c.Set(ctx, "key", []byte("value"), 10*time.Second)

	_, ok := c.Get(ctx, "key")
	require.True(t, ok)

	mr.FastForward(11 * time.Second)

	_, ok = c.Get(ctx, "key")
	assert.False(t, ok)
}

func TestRedisCache_ServerDownDegradesToMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	c.Set(ctx, "key", []byte("value"), time.Minute)
	mr.Close()

	// A dead backend must read as a miss, never an error surface.
	_, ok := c.Get(ctx, "key")
	assert.False(t, ok)

	// Writes against a dead backend must not panic.
	c.Set(ctx, "other", []byte("value"), time.Minute)
}

func TestNewRedis_UnreachableServer(t *testing.T) {
	_, err := NewRedis("127.0.0.1:1", zerolog.Nop())
	require.Error(t, err)
}
