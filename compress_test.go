package abundle

import (
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
)

func TestDecompress_None(t *testing.T) {
	src := []byte("abundle")
	out, err := decompress(CompressionNone, src, len(src))
	require.NoError(t, err)
	require.Equal(t, src, out)
}

func TestDecompress_NoneSizeMismatch(t *testing.T) {
	_, err := decompress(CompressionNone, []byte("abundle"), 3)
	require.ErrorIs(t, err, ErrCorruptArchive)
}

func TestDecompress_LZ4(t *testing.T) {
	want := []byte("the quick brown fox jumps over the lazy dog, the quick brown fox")
	compressed := make([]byte, lz4.CompressBlockBound(len(want)))
	n, err := lz4.CompressBlock(want, compressed, nil)
	require.NoError(t, err)
	require.Greater(t, n, 0)

	out, err := decompress(CompressionLZ4, compressed[:n], len(want))
	require.NoError(t, err)
	require.Equal(t, want, out)
}

func TestDecompress_LZHAMUnsupported(t *testing.T) {
	_, err := decompress(CompressionLZHAM, []byte{0x00}, 1)
	require.ErrorIs(t, err, ErrUnsupportedCompression)
}

func TestCompressionType_String(t *testing.T) {
	require.Equal(t, "lz4", CompressionLZ4.String())
	require.Equal(t, "none", CompressionNone.String())
	require.Contains(t, CompressionType(99).String(), "compression(99)")
}
