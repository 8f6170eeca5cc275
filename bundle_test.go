package abundle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBundle_OpenSerializedFileEndToEnd(t *testing.T) {
	payload, fileSize := buildSerializedFile(t)
	raw := buildMinimalArchive(t, payload)

	b, err := New(NewStreamBytes(raw), nil)
	require.NoError(t, err)
	defer b.Close()

	require.Len(t, b.Directory().Nodes, 1)

	sf, err := b.SerializedFileByPath("CAB-test")
	require.NoError(t, err)
	require.NotNil(t, sf)
	require.EqualValues(t, fileSize, sf.Header.FileSize)
	require.Equal(t, "2019.4.1f1", sf.UnityVersion)
}

func TestBundle_SerializedFileByPathMissReturnsNil(t *testing.T) {
	payload, _ := buildSerializedFile(t)
	raw := buildMinimalArchive(t, payload)

	b, err := New(NewStreamBytes(raw), nil)
	require.NoError(t, err)
	defer b.Close()

	sf, err := b.SerializedFileByPath("does-not-exist")
	require.NoError(t, err)
	require.Nil(t, sf)
}

func TestBundle_WithTypeCacheDir(t *testing.T) {
	payload, _ := buildSerializedFile(t)
	raw := buildMinimalArchive(t, payload)

	b, err := New(NewStreamBytes(raw), &Options{TypeCacheDir: t.TempDir()})
	require.NoError(t, err)
	defer b.Close()
	require.NotNil(t, b.cache)
}
