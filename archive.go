package abundle

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Archive header flag bits (ArchiveHeader.Flags).
const (
	archiveFlagCompressionMask                = 0x3f
	archiveFlagBlocksAndDirectoryInfoCombined = 1 << 6
	archiveFlagBlocksInfoAtTheEnd             = 1 << 7
	archiveFlagOldWebPluginCompatibility      = 1 << 8
)

// StorageBlock flag bits (StorageBlock.Flags).
const (
	blockFlagCompressionMask = 0x3f
	blockFlagStreamed        = 1 << 6
)

// FileNode flag bits (FileNode.Flags).
const (
	NodeFlagDirectory      = 0x1
	NodeFlagDeleted        = 0x2
	NodeFlagSerializedFile = 0x4
)

const (
	unityFSSignature = "UnityFS"
	unityWebSig      = "UnityWeb"
	unityRawSig      = "UnityRaw"
)

// ArchiveHeader is the fixed leading structure of a bundle archive.
type ArchiveHeader struct {
	Signature                  string
	Version                    int32
	BundleVersion              string
	MinRevision                string
	TotalSize                  uint64
	CompressedBlocksInfoSize   uint32
	UncompressedBlocksInfoSize uint32
	Flags                      uint32

	// HeaderSize is the number of bytes consumed reading this header,
	// derived rather than read off the wire.
	HeaderSize int64
}

// CompressionType returns the blocks-info compression kind encoded in
// the low 6 bits of Flags.
func (h ArchiveHeader) CompressionType() CompressionType {
	return CompressionType(h.Flags & archiveFlagCompressionMask)
}

// BlocksAndDirectoryCombined reports whether the directory info is
// stored inline with the blocks info.
func (h ArchiveHeader) BlocksAndDirectoryCombined() bool {
	return h.Flags&archiveFlagBlocksAndDirectoryInfoCombined != 0
}

// BlocksAtTheEnd reports whether the blocks-info region is stored at
// the end of the archive rather than right after the header.
func (h ArchiveHeader) BlocksAtTheEnd() bool {
	return h.Flags&archiveFlagBlocksInfoAtTheEnd != 0
}

// OldWebPluginCompat reports the legacy-web-plugin compatibility bit.
func (h ArchiveHeader) OldWebPluginCompat() bool {
	return h.Flags&archiveFlagOldWebPluginCompatibility != 0
}

// blocksInfoOffset computes where the (possibly compressed) blocks-info
// region begins.
func (h ArchiveHeader) blocksInfoOffset() int64 {
	if h.BlocksAtTheEnd() {
		if h.TotalSize == 0 {
			return int64(uint64(math.MaxUint64))
		}
		return int64(h.TotalSize) - int64(h.CompressedBlocksInfoSize)
	}
	if h.Signature == unityWebSig || h.Signature == unityRawSig {
		return 9
	}
	return h.HeaderSize
}

// dataOffset computes where block data starts when blocks-info is not
// stored at the end (it immediately follows the header's compressed
// blocks-info payload).
func (h ArchiveHeader) dataOffset() int64 {
	size := h.HeaderSize
	if !h.BlocksAtTheEnd() {
		size += int64(h.CompressedBlocksInfoSize)
	}
	return size
}

func readArchiveHeader(s *Stream) (ArchiveHeader, error) {
	start := s.Position()
	var h ArchiveHeader

	sig, err := s.ReadCString()
	if err != nil {
		return h, err
	}
	if sig != unityFSSignature {
		return h, fmt.Errorf("signature %q: %w", sig, ErrFormatError)
	}
	h.Signature = sig

	if h.Version, err = s.S32(); err != nil {
		return h, err
	}
	if h.Version == 5 {
		return h, fmt.Errorf("archive version 5 rejected: %w", ErrFormatError)
	}

	if h.BundleVersion, err = s.ReadCString(); err != nil {
		return h, err
	}
	if h.MinRevision, err = s.ReadCString(); err != nil {
		return h, err
	}
	if h.TotalSize, err = s.U64(); err != nil {
		return h, err
	}
	if h.CompressedBlocksInfoSize, err = s.U32(); err != nil {
		return h, err
	}
	if h.UncompressedBlocksInfoSize, err = s.U32(); err != nil {
		return h, err
	}
	if h.Flags, err = s.U32(); err != nil {
		return h, err
	}

	h.HeaderSize = s.Position() - start
	return h, nil
}

// StorageBlock describes one data block of the archive's logical
// stream.
type StorageBlock struct {
	UncompressedSize uint32
	CompressedSize   uint32
	Flags            uint16
}

// CompressionType returns this block's compression kind.
func (b StorageBlock) CompressionType() CompressionType {
	return CompressionType(b.Flags & blockFlagCompressionMask)
}

// Streamed reports whether the block is flagged as streamed.
func (b StorageBlock) Streamed() bool {
	return b.Flags&blockFlagStreamed != 0
}

func readStorageBlock(s *Stream) (StorageBlock, error) {
	var b StorageBlock
	var err error
	if b.UncompressedSize, err = s.U32(); err != nil {
		return b, err
	}
	if b.CompressedSize, err = s.U32(); err != nil {
		return b, err
	}
	if b.Flags, err = s.U16(); err != nil {
		return b, err
	}
	return b, nil
}

// FileNode is one entry of the archive's directory: an offset/size
// window into the logical (decompressed) stream.
type FileNode struct {
	Offset int64
	Size   int64
	Flags  uint32
	Path   string
	Index  int
}

// IsDirectory reports whether this node represents a directory entry
// rather than file content.
func (n FileNode) IsDirectory() bool { return n.Flags&NodeFlagDirectory != 0 }

// IsSerializedFile reports whether this node is expected to hold a
// serialized file (as opposed to an opaque resource).
func (n FileNode) IsSerializedFile() bool { return n.Flags&NodeFlagSerializedFile != 0 }

func readFileNode(s *Stream, index int) (FileNode, error) {
	var n FileNode
	var err error
	var offset, size uint64
	if offset, err = s.U64(); err != nil {
		return n, err
	}
	if size, err = s.U64(); err != nil {
		return n, err
	}
	n.Offset, n.Size = int64(offset), int64(size)
	if n.Flags, err = s.U32(); err != nil {
		return n, err
	}
	if n.Path, err = s.ReadCString(); err != nil {
		return n, err
	}
	n.Index = index
	return n, nil
}

// DirectoryInfo is the archive's table of FileNodes.
type DirectoryInfo struct {
	Nodes []FileNode
}

func readDirectoryInfo(s *Stream) (DirectoryInfo, error) {
	var d DirectoryInfo
	count, err := s.U32()
	if err != nil {
		return d, err
	}
	d.Nodes = make([]FileNode, count)
	for i := range d.Nodes {
		n, err := readFileNode(s, i)
		if err != nil {
			return d, err
		}
		d.Nodes[i] = n
	}
	return d, nil
}

type blocksInfo struct {
	hash   [16]byte
	blocks []StorageBlock
}

func readBlocksInfo(s *Stream) (blocksInfo, error) {
	var bi blocksInfo
	hash, err := s.Read(16)
	if err != nil {
		return bi, err
	}
	copy(bi.hash[:], hash)

	count, err := s.U32()
	if err != nil {
		return bi, err
	}
	bi.blocks = make([]StorageBlock, count)
	for i := range bi.blocks {
		b, err := readStorageBlock(s)
		if err != nil {
			return bi, err
		}
		bi.blocks[i] = b
	}
	return bi, nil
}

// Archive is a decoded bundle: a logical (fully decompressed) stream
// plus the directory of FileNodes addressing it.
type Archive struct {
	Header    ArchiveHeader
	Directory DirectoryInfo
	Logical   *Stream
}

// OpenArchive parses the archive header, decompresses the blocks-info
// region, concatenates the data blocks into a single logical stream,
// and returns the resulting Archive.
func OpenArchive(s *Stream, log zerolog.Logger) (*Archive, error) {
	header, err := readArchiveHeader(s)
	if err != nil {
		return nil, fmt.Errorf("archive header: %w", err)
	}
	log.Debug().
		Str("signature", header.Signature).
		Int32("version", header.Version).
		Uint32("flags", header.Flags).
		Msg("parsed archive header")

	if _, err := s.Seek(header.blocksInfoOffset(), SeekSet); err != nil {
		return nil, fmt.Errorf("seek blocks-info: %w", err)
	}

	compressed, err := s.Read(int(header.CompressedBlocksInfoSize))
	if err != nil {
		return nil, fmt.Errorf("read blocks-info: %w", err)
	}

	var biSrc *Stream
	kind := header.CompressionType()
	if kind != CompressionNone {
		uncompressed, err := decompress(kind, compressed, int(header.UncompressedBlocksInfoSize))
		if err != nil {
			return nil, fmt.Errorf("decompress blocks-info: %w", err)
		}
		biSrc = NewStreamBytes(uncompressed)
	} else {
		if header.CompressedBlocksInfoSize != header.UncompressedBlocksInfoSize {
			return nil, fmt.Errorf("uncompressed blocks-info size mismatch: %w", ErrCorruptArchive)
		}
		biSrc = NewStreamBytes(compressed)
	}

	bi, err := readBlocksInfo(biSrc)
	if err != nil {
		return nil, fmt.Errorf("blocks-info: %w", err)
	}

	var dir DirectoryInfo
	if header.BlocksAndDirectoryCombined() {
		dir, err = readDirectoryInfo(biSrc)
		if err != nil {
			return nil, fmt.Errorf("directory-info: %w", err)
		}
	}

	if _, err := s.Seek(header.dataOffset(), SeekSet); err != nil {
		return nil, fmt.Errorf("seek data: %w", err)
	}

	var logical []byte
	for i, block := range bi.blocks {
		kind := block.CompressionType()
		if kind != CompressionNone {
			compressedData, err := s.Read(int(block.CompressedSize))
			if err != nil {
				return nil, fmt.Errorf("read block %d: %w", i, err)
			}
			data, err := decompress(kind, compressedData, int(block.UncompressedSize))
			if err != nil {
				return nil, fmt.Errorf("decompress block %d: %w", i, err)
			}
			logical = append(logical, data...)
		} else {
			data, err := s.Read(int(block.UncompressedSize))
			if err != nil {
				return nil, fmt.Errorf("read block %d: %w", i, err)
			}
			logical = append(logical, data...)
		}
	}

	if s.Position() != s.Length() {
		return nil, fmt.Errorf("trailing bytes after blocks (pos=%d, len=%d): %w", s.Position(), s.Length(), ErrCorruptArchive)
	}

	return &Archive{
		Header:    header,
		Directory: dir,
		Logical:   NewStreamBytes(logical),
	}, nil
}
