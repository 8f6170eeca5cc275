package abundle

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveString_BuiltinHighBit(t *testing.T) {
	name := resolveString(highBit|427, nil) // 427 -> "m_Name"
	require.Equal(t, "m_Name", name)
}

func TestResolveString_UnknownBuiltinOffset(t *testing.T) {
	name := resolveString(highBit|0xdeadbeef, nil)
	require.Equal(t, "", name)
}

func TestResolveString_PerTreeOffset(t *testing.T) {
	perTree := map[uint32]string{12: "MyField"}
	require.Equal(t, "MyField", resolveString(12, perTree))
}

func TestTypeField_AlignAfter(t *testing.T) {
	f := TypeField{MetaFlags: 0x4000}
	require.True(t, f.AlignAfter())

	f2 := TypeField{MetaFlags: 0}
	require.False(t, f2.AlignAfter())
}

func TestReadTypeField(t *testing.T) {
	buf := make([]byte, 24)
	binary.LittleEndian.PutUint16(buf[0:], uint16(int16(19)))
	buf[2] = 2    // level
	buf[3] = 1    // is_array
	binary.LittleEndian.PutUint32(buf[4:], highBit|427)
	binary.LittleEndian.PutUint32(buf[8:], highBit|840)
	binary.LittleEndian.PutUint32(buf[12:], 4)
	binary.LittleEndian.PutUint32(buf[16:], 3)
	binary.LittleEndian.PutUint32(buf[20:], 0x4000)

	s := NewStreamBytes(buf)
	f, err := readTypeField(s)
	require.NoError(t, err)
	require.EqualValues(t, 19, f.Version)
	require.EqualValues(t, 2, f.Level)
	require.True(t, f.IsArray)
	require.EqualValues(t, 4, f.ByteSize)
	require.EqualValues(t, 3, f.Index)
	require.True(t, f.AlignAfter())
}
