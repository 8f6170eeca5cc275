package abundle

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeCache_PutGetRoundTrip(t *testing.T) {
	cache := NewTypeCache(t.TempDir())

	hash := [16]byte{0xaa, 0xbb}
	raw := []byte{1, 2, 3, 4, 5}

	require.NoError(t, cache.Put(114, hash, raw))

	got, ok := cache.Get(114, hash)
	require.True(t, ok)
	require.Equal(t, raw, got)
}

func TestTypeCache_GetMissReturnsFalse(t *testing.T) {
	cache := NewTypeCache(t.TempDir())

	_, ok := cache.Get(1, [16]byte{})
	require.False(t, ok)
}

func TestTypeCache_PathIsContentAddressed(t *testing.T) {
	cache := NewTypeCache("/tmp/cachetest")
	p := cache.path(114, [16]byte{0x01})
	require.Equal(t, filepath.Join("/tmp/cachetest", "114_01000000000000000000000000000000.type"), p)
}

func TestTypeCache_PutCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	cache := NewTypeCache(dir)

	require.NoError(t, cache.Put(1, [16]byte{1}, []byte("x")))

	got, ok := cache.Get(1, [16]byte{1})
	require.True(t, ok)
	require.Equal(t, []byte("x"), got)
}
