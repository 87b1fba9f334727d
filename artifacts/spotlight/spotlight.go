// Package spotlight decodes the macOS Spotlight metadata store
// (store.db): fixed-size pages, each holding a run of length-prefixed
// property records (attribute name, type tag, value), the format behind
// Spotlight's per-file searchable metadata index.
package spotlight

import (
	"encoding/binary"
	"errors"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// ErrInvalidPage is returned when a page's declared record length runs
// past the page boundary.
var ErrInvalidPage = errors.New("spotlight: invalid page")

// ValueType tags a property record's payload shape.
type ValueType byte

const (
	ValueTypeString ValueType = 0x00
	ValueTypeUint32 ValueType = 0x01
	ValueTypeUint64 ValueType = 0x02
	ValueTypeDate   ValueType = 0x03 // Cocoa reference date, seconds
	ValueTypeBinary ValueType = 0x04
)

// Property is one decoded attribute/value pair attached to an indexed
// file's store record.
type Property struct {
	Name  string
	Type  ValueType
	Text  string
	Num   uint64
	Raw   []byte
}

// Record is one store.db page entry: an inode/document identifier and its
// property list.
type Record struct {
	ItemID     uint64
	Properties []Property
}

const pageHeaderSize = 8

// ParsePage decodes every record in one fixed-size store.db page: an
// 8-byte page header (record count, reserved) followed by length-prefixed
// records.
func ParsePage(raw []byte) ([]Record, error) {
	if len(raw) < pageHeaderSize {
		return nil, ErrInvalidPage
	}
	count := binary.LittleEndian.Uint32(raw[0:4])
	pos := pageHeaderSize

	var out []Record
	for i := uint32(0); i < count; i++ {
		if pos+12 > len(raw) {
			break
		}
		recLen := int(binary.LittleEndian.Uint32(raw[pos : pos+4]))
		itemID := binary.LittleEndian.Uint64(raw[pos+4 : pos+12])
		pos += 12
		if recLen < 12 || pos+(recLen-12) > len(raw) {
			return out, ErrInvalidPage
		}
		body := raw[pos : pos+(recLen-12)]
		pos += recLen - 12

		out = append(out, Record{ItemID: itemID, Properties: parseProperties(body)})
	}
	return out, nil
}

// parseProperties decodes a record body's flat run of
// (nameLen, name, type, valueLen, value) property tuples.
func parseProperties(b []byte) []Property {
	var props []Property
	pos := 0
	for pos+1 <= len(b) {
		if pos+2 > len(b) {
			break
		}
		nameLen := int(b[pos])
		pos++
		if pos+nameLen+1 > len(b) {
			break
		}
		name := string(b[pos : pos+nameLen])
		pos += nameLen
		typ := ValueType(b[pos])
		pos++

		if pos+4 > len(b) {
			break
		}
		valLen := int(binary.LittleEndian.Uint32(b[pos : pos+4]))
		pos += 4
		if pos+valLen > len(b) {
			break
		}
		val := b[pos : pos+valLen]
		pos += valLen

		props = append(props, decodeProperty(name, typ, val))
	}
	return props
}

func decodeProperty(name string, typ ValueType, val []byte) Property {
	p := Property{Name: name, Type: typ, Raw: val}
	switch typ {
	case ValueTypeString:
		p.Text = enc.UTF8NullTerminated(val)
	case ValueTypeUint32:
		if len(val) >= 4 {
			p.Num = uint64(binary.LittleEndian.Uint32(val))
		}
	case ValueTypeUint64:
		if len(val) >= 8 {
			p.Num = binary.LittleEndian.Uint64(val)
		}
	case ValueTypeDate:
		if len(val) >= 8 {
			// store.db records the Cocoa timestamp as a plain
			// little-endian int64 second count, not an IEEE-754 double.
			seconds := int64(binary.LittleEndian.Uint64(val))
			p.Text = enc.CocoaToISO8601(float64(seconds))
		}
	}
	return p
}
