package ese

import (
	"encoding/binary"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// Uint32 decodes a fixed-width little-endian column, returning 0 if the
// column is absent or shorter than 4 bytes (a tagged column that simply
// wasn't present on this row, which ESE distinguishes from an explicit
// zero by omitting it entirely - callers that need to tell the two apart
// should check the map directly).
func (r Row) Uint32(name string) uint32 {
	v := r[name]
	if len(v) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(v)
}

// Uint64 decodes an 8-byte little-endian column.
func (r Row) Uint64(name string) uint64 {
	v := r[name]
	if len(v) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(v)
}

// Uint16 decodes a 2-byte little-endian column.
func (r Row) Uint16(name string) uint16 {
	v := r[name]
	if len(v) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(v)
}

// Text decodes a column as UTF-16LE, the native text encoding ESE's
// JET_coltypText/JET_coltypLongText columns use for every Unicode-flagged
// table this module's callers touch (BITS Jobs/Files, Windows Search
// Gthr/PropertyStore).
func (r Row) Text(name string) string {
	return enc.UTF16LE(r[name])
}

// Bytes returns a column's raw, undecoded bytes (e.g. a binary long-value
// payload already reassembled by the caller).
func (r Row) Bytes(name string) []byte {
	return r[name]
}

// GUIDText renders a 16-byte GUID column (JET_coltypBinary fixed at 16
// bytes, the convention BITS/WMI/Search use for job and file identifiers)
// in the standard little-endian 8-4-4-4-12 form.
func GUIDText(r Row, name string) string {
	return enc.GUIDLittleEndian(r[name])
}
