// Package byteio implements the byte-primitive layer every format parser in
// Artemis is built on: bounded, allocation-free reads over a borrowed slice.
// Every function here is pure - it never mutates its input and never reads
// past the slice it was handed, returning ErrIncomplete instead.
package byteio

import (
	"encoding/binary"
	"errors"
)

// ErrIncomplete is returned whenever fewer bytes remain than a read requires.
// It is the universal "come back with more data" signal; no parser built on
// this package may panic on a short buffer.
var ErrIncomplete = errors.New("byteio: incomplete data")

// Endian selects the byte order a fixed-width read is performed in.
type Endian int

// Supported byte orders.
const (
	LittleEndian Endian = iota
	BigEndian
)

func order(e Endian) binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Take returns the first n bytes of b and the remainder, or ErrIncomplete if
// b is shorter than n. It never copies: both results alias b.
func Take(b []byte, n int) (rest, taken []byte, err error) {
	if n < 0 || len(b) < n {
		return b, nil, ErrIncomplete
	}
	return b[n:], b[:n], nil
}

// TakeWhile consumes a leading run of bytes for which pred holds.
func TakeWhile(b []byte, pred func(byte) bool) (rest, taken []byte) {
	i := 0
	for i < len(b) && pred(b[i]) {
		i++
	}
	return b[i:], b[:i]
}

// TakeUntil consumes bytes up to (not including) the first occurrence of
// needle. If needle never occurs, the whole slice is returned as taken and
// rest is empty.
func TakeUntil(b []byte, needle byte) (rest, taken []byte) {
	for i, c := range b {
		if c == needle {
			return b[i:], b[:i]
		}
	}
	return nil, b
}

// U8 reads one unsigned byte.
func U8(b []byte) (rest []byte, v uint8, err error) {
	rest, taken, err := Take(b, 1)
	if err != nil {
		return b, 0, err
	}
	return rest, taken[0], nil
}

// I8 reads one signed byte.
func I8(b []byte) (rest []byte, v int8, err error) {
	rest, u, err := U8(b)
	return rest, int8(u), err
}

// U16 reads a 2-byte unsigned integer in the given byte order.
func U16(b []byte, e Endian) (rest []byte, v uint16, err error) {
	rest, taken, err := Take(b, 2)
	if err != nil {
		return b, 0, err
	}
	return rest, order(e).Uint16(taken), nil
}

// I16 reads a 2-byte signed integer.
func I16(b []byte, e Endian) (rest []byte, v int16, err error) {
	rest, u, err := U16(b, e)
	return rest, int16(u), err
}

// U32 reads a 4-byte unsigned integer in the given byte order.
func U32(b []byte, e Endian) (rest []byte, v uint32, err error) {
	rest, taken, err := Take(b, 4)
	if err != nil {
		return b, 0, err
	}
	return rest, order(e).Uint32(taken), nil
}

// I32 reads a 4-byte signed integer.
func I32(b []byte, e Endian) (rest []byte, v int32, err error) {
	rest, u, err := U32(b, e)
	return rest, int32(u), err
}

// U64 reads an 8-byte unsigned integer in the given byte order.
func U64(b []byte, e Endian) (rest []byte, v uint64, err error) {
	rest, taken, err := Take(b, 8)
	if err != nil {
		return b, 0, err
	}
	return rest, order(e).Uint64(taken), nil
}

// I64 reads an 8-byte signed integer.
func I64(b []byte, e Endian) (rest []byte, v int64, err error) {
	rest, u, err := U64(b, e)
	return rest, int64(u), err
}

// U128 reads a 16-byte unsigned integer (e.g. a GUID's raw form) and returns
// it untouched - callers decide endianness per field when rendering it.
func U128(b []byte) (rest []byte, v [16]byte, err error) {
	rest, taken, err := Take(b, 16)
	if err != nil {
		return b, v, err
	}
	copy(v[:], taken)
	return rest, v, nil
}

// Reader is a cursor over a borrowed byte slice, for callers that prefer
// sequential reads with an explicit position over the (rest, value) pattern
// above. It never copies the underlying bytes and never advances past len(b).
type Reader struct {
	b   []byte
	pos int
}

// NewReader wraps b in a Reader starting at offset 0.
func NewReader(b []byte) *Reader { return &Reader{b: b} }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.b) - r.pos }

// Pos returns the current cursor position.
func (r *Reader) Pos() int { return r.pos }

// Seek repositions the cursor absolutely. It fails if pos is out of range.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.b) {
		return ErrIncomplete
	}
	r.pos = pos
	return nil
}

// Bytes returns the next n bytes without copying and advances the cursor.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, ErrIncomplete
	}
	v := r.b[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// Remaining returns every unread byte without advancing the cursor.
func (r *Reader) Remaining() []byte { return r.b[r.pos:] }

// U8 reads and advances past one byte.
func (r *Reader) U8() (uint8, error) {
	v, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// U16 reads and advances past a 2-byte integer.
func (r *Reader) U16(e Endian) (uint16, error) {
	v, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return order(e).Uint16(v), nil
}

// U32 reads and advances past a 4-byte integer.
func (r *Reader) U32(e Endian) (uint32, error) {
	v, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return order(e).Uint32(v), nil
}

// U64 reads and advances past an 8-byte integer.
func (r *Reader) U64(e Endian) (uint64, error) {
	v, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return order(e).Uint64(v), nil
}
