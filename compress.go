package abundle

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz/lzma"
)

// CompressionType identifies the compression algorithm of a StorageBlock
// or of the archive's blocks-info region.
type CompressionType uint8

// Compression kinds, in the on-wire order used by the low 6 bits of the
// archive header flags and by StorageBlock.flags.
const (
	CompressionNone CompressionType = iota
	CompressionLZMA
	CompressionLZ4
	CompressionLZ4HC
	CompressionLZHAM
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZMA:
		return "lzma"
	case CompressionLZ4:
		return "lz4"
	case CompressionLZ4HC:
		return "lz4hc"
	case CompressionLZHAM:
		return "lzham"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// decompress inflates src into a buffer of exactly expectedSize bytes
// using the given compression kind. It is the "decompression primitive"
// the archive and blocks-info readers build on.
func decompress(kind CompressionType, src []byte, expectedSize int) ([]byte, error) {
	switch kind {
	case CompressionNone:
		if len(src) != expectedSize {
			return nil, fmt.Errorf("none-compressed size %d != expected %d: %w", len(src), expectedSize, ErrCorruptArchive)
		}
		out := make([]byte, expectedSize)
		copy(out, src)
		return out, nil

	case CompressionLZ4, CompressionLZ4HC:
		// LZ4HC only changes how the compressor searches for matches; the
		// bitstream it produces decodes identically to plain LZ4.
		out := make([]byte, expectedSize)
		n, err := lz4.UncompressBlock(src, out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if n != expectedSize {
			return nil, fmt.Errorf("lz4 decompressed %d bytes, expected %d: %w", n, expectedSize, ErrCorruptArchive)
		}
		return out, nil

	case CompressionLZMA:
		r, err := lzma.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("lzma reader: %w", err)
		}
		out := make([]byte, expectedSize)
		if _, err := io.ReadFull(r, out); err != nil {
			return nil, fmt.Errorf("lzma decompress: %w", err)
		}
		return out, nil

	case CompressionLZHAM:
		// No maintained Go LZHAM decoder exists in the ecosystem.
		return nil, fmt.Errorf("lzham: %w", ErrUnsupportedCompression)

	default:
		return nil, fmt.Errorf("compression kind %d: %w", uint8(kind), ErrUnsupportedCompression)
	}
}
