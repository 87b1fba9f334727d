// Package shimdb decodes Windows Application Compatibility Database
// (.sdb) tag streams: a recursive tree of 2-byte tagged values sharing one
// stringtable region that STRINGREF tags index into. Tag type is
// the tag's upper nibble; LIST tags recurse, STRINGREF tags resolve against
// the stringtable the caller must keep alongside the tag stream throughout
// the walk - there is no way to decode a STRINGREF without it.
package shimdb

import (
	"encoding/base64"
	"encoding/binary"
	"errors"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// ErrIncomplete is returned when a tag's declared size runs past the end
// of the buffer it is read from.
var ErrIncomplete = errors.New("shimdb: incomplete tag data")

// TagType is the upper nibble of a tag code, selecting how its value is
// framed.
type TagType uint16

const (
	TagTypeNull      TagType = 0x1000
	TagTypeByte      TagType = 0x2000
	TagTypeWord      TagType = 0x3000
	TagTypeDword     TagType = 0x4000
	TagTypeQword     TagType = 0x5000
	TagTypeStringRef TagType = 0x6000
	TagTypeList      TagType = 0x7000
	TagTypeString    TagType = 0x8000
	TagTypeBinary    TagType = 0x9000
)

func (t TagType) String() string {
	switch t {
	case TagTypeNull:
		return "Null"
	case TagTypeByte:
		return "Byte"
	case TagTypeWord:
		return "Word"
	case TagTypeDword:
		return "Dword"
	case TagTypeQword:
		return "Qword"
	case TagTypeStringRef:
		return "StringRef"
	case TagTypeList:
		return "List"
	case TagTypeString:
		return "String"
	case TagTypeBinary:
		return "Binary"
	default:
		return "Unkonwn" // spec 9: preserved misspelling, matches the
		// upstream project's own unrecognised-tag label.
	}
}

// tagStringTable is the well-known tag id (within the String type) holding
// the shared string pool every STRINGREF in the database indexes into.
const tagStringTable = 0x0801

// Node is one decoded tag, with Children populated only for TagTypeList.
type Node struct {
	Tag      uint16
	Type     TagType
	RawValue []byte
	Word     uint16
	Dword    uint32
	Qword    uint64
	Text     string
	Children []Node
}

// Parse decodes the full top-level tag stream in raw. It first scans for a
// STRINGTABLE tag to resolve STRINGREF values against, then walks the tree.
func Parse(raw []byte) ([]Node, error) {
	stringTable := findStringTable(raw)
	return parseTags(raw, stringTable)
}

// findStringTable scans the tag stream, recursing into lists, for the
// tag carrying the shared string pool, so STRINGREF
// resolution works regardless of where in the tree it happens to live.
func findStringTable(raw []byte) []byte {
	pos := 0
	for pos+2 <= len(raw) {
		tag := binary.LittleEndian.Uint16(raw[pos : pos+2])
		pos += 2
		t := TagType(tag & 0xF000)
		switch t {
		case TagTypeNull:
		case TagTypeByte:
			pos += 1
		case TagTypeWord:
			pos += 2
		case TagTypeDword, TagTypeStringRef:
			pos += 4
		case TagTypeQword:
			pos += 8
		case TagTypeString, TagTypeBinary:
			if pos+4 > len(raw) {
				return nil
			}
			size := int(binary.LittleEndian.Uint32(raw[pos : pos+4]))
			pos += 4
			if pos+size > len(raw) || size < 0 {
				return nil
			}
			if t == TagTypeString && tag&0x0FFF == tagStringTable {
				return raw[pos : pos+size]
			}
			pos += size
		case TagTypeList:
			if pos+4 > len(raw) {
				return nil
			}
			size := int(binary.LittleEndian.Uint32(raw[pos : pos+4]))
			pos += 4
			if pos+size > len(raw) || size < 0 {
				return nil
			}
			if found := findStringTable(raw[pos : pos+size]); found != nil {
				return found
			}
			pos += size
		default:
			return nil
		}
	}
	return nil
}

// parseTags decodes a flat run of sibling tags, recursing into LIST tags.
// An unrecognised tag type base64-encodes everything remaining in this run
// as a single trailing Unkonwn node and stops, per Design Notes §9: the
// source "breaks" on this condition rather than guessing a shape for it.
func parseTags(raw []byte, stringTable []byte) ([]Node, error) {
	var out []Node
	pos := 0
	for pos+2 <= len(raw) {
		tagStart := pos
		tag := binary.LittleEndian.Uint16(raw[pos : pos+2])
		pos += 2
		t := TagType(tag & 0xF000)
		node := Node{Tag: tag, Type: t}

		switch t {
		case TagTypeNull:
		case TagTypeByte:
			if pos+1 > len(raw) {
				return out, ErrIncomplete
			}
			node.Qword = uint64(raw[pos])
			pos += 1
		case TagTypeWord:
			if pos+2 > len(raw) {
				return out, ErrIncomplete
			}
			node.Word = binary.LittleEndian.Uint16(raw[pos : pos+2])
			pos += 2
		case TagTypeStringRef:
			if pos+4 > len(raw) {
				return out, ErrIncomplete
			}
			off := binary.LittleEndian.Uint32(raw[pos : pos+4])
			pos += 4
			node.Text = resolveStringRef(stringTable, off)
		case TagTypeDword:
			if pos+4 > len(raw) {
				return out, ErrIncomplete
			}
			node.Dword = binary.LittleEndian.Uint32(raw[pos : pos+4])
			pos += 4
		case TagTypeQword:
			if pos+8 > len(raw) {
				return out, ErrIncomplete
			}
			node.Qword = binary.LittleEndian.Uint64(raw[pos : pos+8])
			pos += 8
		case TagTypeString:
			data, next, err := readBlock(raw, pos)
			if err != nil {
				return out, err
			}
			node.Text = enc.UTF16LE(data)
			node.RawValue = data
			pos = next
		case TagTypeBinary:
			data, next, err := readBlock(raw, pos)
			if err != nil {
				return out, err
			}
			node.RawValue = data
			pos = next
		case TagTypeList:
			data, next, err := readBlock(raw, pos)
			if err != nil {
				return out, err
			}
			children, _ := parseTags(data, stringTable)
			node.Children = children
			pos = next
		default:
			node.Type = 0
			node.Text = base64.StdEncoding.EncodeToString(raw[tagStart:])
			out = append(out, node)
			return out, nil
		}

		out = append(out, node)
	}
	return out, nil
}

// readBlock reads a 4-byte length-prefixed block starting at pos.
func readBlock(raw []byte, pos int) (data []byte, next int, err error) {
	if pos+4 > len(raw) {
		return nil, pos, ErrIncomplete
	}
	size := int(binary.LittleEndian.Uint32(raw[pos : pos+4]))
	pos += 4
	if size < 0 || pos+size > len(raw) {
		return nil, pos, ErrIncomplete
	}
	return raw[pos : pos+size], pos + size, nil
}

// resolveStringRef decodes the NUL-terminated UTF-16LE string at offset off
// within the shared stringtable.
func resolveStringRef(stringTable []byte, off uint32) string {
	if stringTable == nil || int(off) >= len(stringTable) {
		return ""
	}
	return enc.UTF16LE(stringTable[off:])
}
