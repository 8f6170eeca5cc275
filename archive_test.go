package abundle

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// buildMinimalArchive assembles an uncompressed, single-block UnityFS
// archive with one directory entry, used to drive OpenArchive end to
// end without any real asset data.
func buildMinimalArchive(t *testing.T, payload []byte) []byte {
	t.Helper()

	var dir bytes.Buffer
	require.NoError(t, binary.Write(&dir, binary.LittleEndian, uint32(1))) // node count
	require.NoError(t, binary.Write(&dir, binary.LittleEndian, uint64(0)))
	require.NoError(t, binary.Write(&dir, binary.LittleEndian, uint64(len(payload))))
	require.NoError(t, binary.Write(&dir, binary.LittleEndian, uint32(NodeFlagSerializedFile)))
	dir.WriteString("CAB-test\x00")

	var blocksInfo bytes.Buffer
	blocksInfo.Write(make([]byte, 16)) // hash
	require.NoError(t, binary.Write(&blocksInfo, binary.LittleEndian, uint32(1)))
	require.NoError(t, binary.Write(&blocksInfo, binary.LittleEndian, uint32(len(payload))))
	require.NoError(t, binary.Write(&blocksInfo, binary.LittleEndian, uint32(len(payload))))
	require.NoError(t, binary.Write(&blocksInfo, binary.LittleEndian, uint16(0))) // none, not streamed
	blocksInfo.Write(dir.Bytes())                                                 // combined directory info

	var buf bytes.Buffer
	buf.WriteString("UnityFS\x00")
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int32(6))) // version, not 5
	buf.WriteString("5.x.x\x00")
	buf.WriteString("5.x.x\x00")

	totalSizeOffset := buf.Len()
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(0))) // total_size, patched below
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(blocksInfo.Len())))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(blocksInfo.Len())))
	flags := uint32(archiveFlagBlocksAndDirectoryInfoCombined) // compression none (0) | combined bit
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, flags))

	buf.Write(blocksInfo.Bytes())
	buf.Write(payload)

	out := buf.Bytes()
	binary.LittleEndian.PutUint64(out[totalSizeOffset:], uint64(len(out)))
	return out
}

func TestOpenArchive_MinimalUncompressed(t *testing.T) {
	payload := []byte("hello serialized file bytes")
	raw := buildMinimalArchive(t, payload)

	a, err := OpenArchive(NewStreamBytes(raw), zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, a.Directory.Nodes, 1)
	require.Equal(t, "CAB-test", a.Directory.Nodes[0].Path)
	require.True(t, a.Directory.Nodes[0].IsSerializedFile())

	got, err := a.Logical.Read(len(payload))
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestOpenArchive_RejectsBadSignature(t *testing.T) {
	raw := append([]byte("NotUnity\x00"), make([]byte, 32)...)
	_, err := OpenArchive(NewStreamBytes(raw), zerolog.Nop())
	require.ErrorIs(t, err, ErrFormatError)
}

func TestArchiveHeader_FlagAccessors(t *testing.T) {
	h := ArchiveHeader{Flags: uint32(CompressionLZ4) | archiveFlagBlocksAndDirectoryInfoCombined}
	require.Equal(t, CompressionLZ4, h.CompressionType())
	require.True(t, h.BlocksAndDirectoryCombined())
	require.False(t, h.BlocksAtTheEnd())
	require.False(t, h.OldWebPluginCompat())
}

func TestFileNode_FlagAccessors(t *testing.T) {
	n := FileNode{Flags: NodeFlagDirectory}
	require.True(t, n.IsDirectory())
	require.False(t, n.IsSerializedFile())
}
