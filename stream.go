package abundle

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Whence mirrors io.Seeker's whence constants so callers don't need to
// import "io" just to call Stream.Seek.
const (
	SeekSet = io.SeekStart
	SeekCur = io.SeekCurrent
	SeekEnd = io.SeekEnd
)

// Stream is a seekable cursor over a byte source with a mutable endian
// setting. It owns no concurrency protection: a single Stream must not
// be shared across decoding goroutines; independent decoders each use
// their own Stream.
type Stream struct {
	r      io.ReadSeeker
	order  binary.ByteOrder
	length int64 // cached; -1 until first computed
}

// NewStream wraps an io.ReadSeeker as a Stream. The initial endian is
// little-endian; callers must set the endian explicitly before any
// typed read once the serialized-file header has told them otherwise
// (see SetEndian).
func NewStream(r io.ReadSeeker) *Stream {
	return &Stream{r: r, order: binary.LittleEndian, length: -1}
}

// NewStreamBytes wraps an in-memory buffer as a Stream.
func NewStreamBytes(b []byte) *Stream {
	return NewStream(bytes.NewReader(b))
}

// SetEndian sets the byte order used by all subsequent typed reads.
// Per the format's ordering guarantees, callers set this at the
// serialized-file header boundary, before any typed read that depends
// on it.
func (s *Stream) SetEndian(big bool) {
	if big {
		s.order = binary.BigEndian
	} else {
		s.order = binary.LittleEndian
	}
}

// Order returns the stream's current byte order.
func (s *Stream) Order() binary.ByteOrder { return s.order }

// Position returns the current cursor offset.
func (s *Stream) Position() int64 {
	pos, _ := s.r.Seek(0, io.SeekCurrent)
	return pos
}

// Length returns the total length of the underlying source.
func (s *Stream) Length() int64 {
	if s.length >= 0 {
		return s.length
	}
	pos := s.Position()
	end, _ := s.r.Seek(0, io.SeekEnd)
	s.r.Seek(pos, io.SeekStart)
	s.length = end
	return end
}

// BytesAvailable returns the number of bytes remaining until the end
// of the underlying source.
func (s *Stream) BytesAvailable() int64 {
	return s.Length() - s.Position()
}

// Seek repositions the cursor; whence is one of SeekSet/SeekCur/SeekEnd.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	return s.r.Seek(offset, whence)
}

// Read reads exactly n bytes, returning ErrEndOfStream if fewer remain.
func (s *Stream) Read(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return nil, fmt.Errorf("read %d bytes: %w", n, ErrEndOfStream)
	}
	return buf, nil
}

func (s *Stream) typed(v interface{}) error {
	if err := binary.Read(s.r, s.order, v); err != nil {
		return fmt.Errorf("typed read: %w", ErrEndOfStream)
	}
	return nil
}

// U8 reads an unsigned 8-bit integer.
func (s *Stream) U8() (uint8, error) {
	var v uint8
	err := s.typed(&v)
	return v, err
}

// S8 reads a signed 8-bit integer.
func (s *Stream) S8() (int8, error) {
	var v int8
	err := s.typed(&v)
	return v, err
}

// Bool reads one byte, true when nonzero.
func (s *Stream) Bool() (bool, error) {
	v, err := s.U8()
	return v != 0, err
}

// U16 reads an unsigned 16-bit integer in the stream's current endian.
func (s *Stream) U16() (uint16, error) {
	var v uint16
	err := s.typed(&v)
	return v, err
}

// S16 reads a signed 16-bit integer in the stream's current endian.
func (s *Stream) S16() (int16, error) {
	var v int16
	err := s.typed(&v)
	return v, err
}

// U32 reads an unsigned 32-bit integer in the stream's current endian.
func (s *Stream) U32() (uint32, error) {
	var v uint32
	err := s.typed(&v)
	return v, err
}

// S32 reads a signed 32-bit integer in the stream's current endian.
func (s *Stream) S32() (int32, error) {
	var v int32
	err := s.typed(&v)
	return v, err
}

// U64 reads an unsigned 64-bit integer in the stream's current endian.
func (s *Stream) U64() (uint64, error) {
	var v uint64
	err := s.typed(&v)
	return v, err
}

// S64 reads a signed 64-bit integer in the stream's current endian.
func (s *Stream) S64() (int64, error) {
	var v int64
	err := s.typed(&v)
	return v, err
}

// F32 reads an IEEE-754 single-precision float in the stream's endian.
func (s *Stream) F32() (float32, error) {
	bits, err := s.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// F64 reads an IEEE-754 double-precision float in the stream's endian.
func (s *Stream) F64() (float64, error) {
	bits, err := s.U64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// ReadCString reads bytes up to and including a 0 terminator, returning
// the prefix (without the terminator) as a string.
func (s *Stream) ReadCString() (string, error) {
	var buf []byte
	for {
		b, err := s.Read(1)
		if err != nil {
			return "", err
		}
		if b[0] == 0 {
			break
		}
		buf = append(buf, b[0])
	}
	return string(buf), nil
}

// ReadFixedString reads exactly n bytes and returns them as a string.
func (s *Stream) ReadFixedString(n int) (string, error) {
	b, err := s.Read(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Align advances the cursor to the next multiple of m (default 4 when
// m==0), matching (m - position%m) % m.
func (s *Stream) Align(m int64) error {
	if m == 0 {
		m = 4
	}
	pos := s.Position()
	rem := pos % m
	if rem == 0 {
		return nil
	}
	_, err := s.Seek(m-rem, SeekCur)
	return err
}
