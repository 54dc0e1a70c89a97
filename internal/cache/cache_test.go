// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(0)
	defer c.Close()

	c.Set(ctx, "key1", []byte("value1"), 5*time.Minute)

	val, ok := c.Get(ctx, "key1")
	require.True(t, ok, "expected to find key1")
	assert.Equal(t, []byte("value1"), val)

	_, ok = c.Get(ctx, "nonexistent")
	assert.False(t, ok, "expected not to find nonexistent key")
}

func TestMemoryCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(0)
	defer c.Close()

	c.Set(ctx, "shortlived", []byte("value"), 50*time.Millisecond)

	val, ok := c.Get(ctx, "shortlived")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), val)

	time.Sleep(100 * time.Millisecond)

	_, ok = c.Get(ctx, "shortlived")
	assert.False(t, ok, "expected key to be expired")
}

func TestMemoryCache_Overwrite(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(0)
	defer c.Close()

	c.Set(ctx, "key", []byte("first"), time.Minute)
	c.Set(ctx, "key", []byte("second"), time.Minute)

	val, ok := c.Get(ctx, "key")
	require.True(t, ok)
	assert.Equal(t, []byte("second"), val)
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	c := NewMemory(time.Millisecond)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
