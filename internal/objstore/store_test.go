// SPDX-License-Identifier: MIT

package objstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamaisvu/jamaisvu/internal/config"
)

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	payload := []byte("RIFF....WAVE audio bytes")
	require.NoError(t, store.Put(ctx, "clip.wav", payload, "audio/wav"))

	got, err := store.Get(ctx, "clip.wav")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// Mutating the returned slice must not affect the stored object.
	got[0] = 'X'
	again, err := store.Get(ctx, "clip.wav")
	require.NoError(t, err)
	assert.Equal(t, payload, again)

	_, err = store.Get(ctx, "missing.wav")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Presign(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.Put(ctx, "clip.wav", []byte("x"), "audio/wav"))

	url, err := store.Presign(ctx, "clip.wav", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "memory://clip.wav?expires="), url)

	_, err = store.Presign(ctx, "missing.wav", 30*time.Second)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFilesystemStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	payload := []byte("audio bytes")
	require.NoError(t, store.Put(ctx, "clip.wav", payload, "audio/wav"))

	got, err := store.Get(ctx, "clip.wav")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, err = store.Get(ctx, "missing.wav")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFilesystemStore_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewFilesystem(root)
	require.NoError(t, err)

	for _, key := range []string{"../escape.wav", "a/b.wav", "..", "dir\\file.wav"} {
		t.Run(key, func(t *testing.T) {
			err := store.Put(ctx, key, []byte("x"), "audio/wav")
			require.Error(t, err)
		})
	}

	// Nothing may exist outside the root.
	entries, err := os.ReadDir(filepath.Dir(root))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, "escape.wav", e.Name())
	}
}

func TestFilesystemStore_PresignUnsupported(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	_, err = store.Presign(context.Background(), "clip.wav", time.Second)
	require.ErrorIs(t, err, ErrPresignUnsupported)
}

func TestNew_SelectsBackend(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, config.ObjStoreConfig{Backend: config.ObjStoreMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = New(ctx, config.ObjStoreConfig{
		Backend: config.ObjStoreFilesystem,
		Root:    t.TempDir(),
	})
	require.NoError(t, err)
	assert.IsType(t, &FilesystemStore{}, store)

	_, err = New(ctx, config.ObjStoreConfig{Backend: "bogus"})
	require.Error(t, err)
}
