// Package registry decodes the Windows Registry hive format: HBIN cells,
// the NK/VK/SK/LF/LH/LI/RI/DB cell types, and a cycle-guarded key walker.
package registry

import (
	"encoding/binary"
	"errors"
)

// ErrNotAHive is returned when the base block signature doesn't match
// "regf".
var ErrNotAHive = errors.New("registry: not a hive file")

// ErrOutsideBoundary is returned when a cell offset or length would read
// past the hive buffer.
var ErrOutsideBoundary = errors.New("registry: read outside boundary")

const (
	baseBlockSize = 4096
	hbinHeaderSize = 32
)

// Hive is a parsed registry hive file held as a single in-memory buffer
// (hives loaded through the raw-I/O substrate are already fully buffered
// by the time they reach this package; nothing here re-reads the volume).
type Hive struct {
	data        []byte
	rootOffset  uint32 // relative to first hbin, i.e. data[rootOffset+hbinHeaderSize... ] after +4096 base block
}

// Open parses the 4096-byte base block and validates the hive signature.
func Open(data []byte) (*Hive, error) {
	if len(data) < baseBlockSize || string(data[0:4]) != "regf" {
		return nil, ErrNotAHive
	}
	rootOffset := binary.LittleEndian.Uint32(data[36:40])
	return &Hive{data: data, rootOffset: rootOffset}, nil
}

// cellAt returns the raw bytes of the cell at the given hive-relative
// offset (relative to the start of the first HBIN, i.e. data[4096+offset:]),
// with the 4-byte cell-size header stripped. A negative size denotes an
// allocated cell; this function accepts either sign and returns the
// payload following the size field.
func (h *Hive) cellAt(offset uint32) ([]byte, error) {
	pos := int(offset) + baseBlockSize
	if pos < baseBlockSize || pos+4 > len(h.data) {
		return nil, ErrOutsideBoundary
	}
	size := int32(binary.LittleEndian.Uint32(h.data[pos : pos+4]))
	absSize := size
	if absSize < 0 {
		absSize = -absSize
	}
	end := pos + int(absSize)
	if end > len(h.data) || end < pos+4 {
		return nil, ErrOutsideBoundary
	}
	return h.data[pos+4 : end], nil
}

// cellAllocated reports whether the cell at offset is in use (negative
// size) rather than free (positive size, to be skipped).
func (h *Hive) cellAllocated(offset uint32) bool {
	pos := int(offset) + baseBlockSize
	if pos < baseBlockSize || pos+4 > len(h.data) {
		return false
	}
	size := int32(binary.LittleEndian.Uint32(h.data[pos : pos+4]))
	return size < 0
}

// RootOffset returns the hive-relative offset of the root NK cell.
func (h *Hive) RootOffset() uint32 { return h.rootOffset }
