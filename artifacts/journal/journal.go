// Package journal decodes SystemD Journal files: the fixed file header, the
// common object header, and Data and Entry objects. Field, hash-table,
// entry-array and Tag objects are identified by type only; their bodies
// are not decoded. The same header fields are read for every header
// version.
package journal

import (
	"encoding/binary"
	"errors"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// ErrInvalidHeader is returned when raw doesn't begin with the journal
// file magic.
var ErrInvalidHeader = errors.New("journal: invalid header")

const magic = "LPKSHHRH"

// Header is the subset of the journal file header every object walk needs.
type Header struct {
	CompatibleFlags   uint32
	IncompatibleFlags uint32
	HeaderSize        uint64
	ArenaSize         uint64
	DataHashTableOff  uint64
	FieldHashTableOff uint64
	EntryArrayOffset  uint64
	TailObjectOffset  uint64
}

// ObjectType is an object's leading type byte.
type ObjectType byte

const (
	ObjectUnused ObjectType = iota
	ObjectData
	ObjectField
	ObjectEntry
	ObjectDataHashTable
	ObjectFieldHashTable
	ObjectEntryArray
	ObjectTag
)

const objectHeaderSize = 64

// ParseHeader decodes the fixed journal file header.
func ParseHeader(raw []byte) (Header, error) {
	var h Header
	if len(raw) < 256 || string(raw[0:8]) != magic {
		return h, ErrInvalidHeader
	}
	h.CompatibleFlags = binary.LittleEndian.Uint32(raw[24:28])
	h.IncompatibleFlags = binary.LittleEndian.Uint32(raw[28:32])
	h.HeaderSize = binary.LittleEndian.Uint64(raw[88:96])
	h.ArenaSize = binary.LittleEndian.Uint64(raw[96:104])
	h.DataHashTableOff = binary.LittleEndian.Uint64(raw[104:112])
	h.FieldHashTableOff = binary.LittleEndian.Uint64(raw[136:144])
	h.EntryArrayOffset = binary.LittleEndian.Uint64(raw[168:176])
	h.TailObjectOffset = binary.LittleEndian.Uint64(raw[184:192])
	return h, nil
}

// ObjectHeader is the common 64-byte prefix every object in the file
// begins with.
type ObjectHeader struct {
	Type ObjectType
	Flags byte
	Size  uint64
}

// ReadObjectHeader decodes the object header at offset off.
func ReadObjectHeader(raw []byte, off uint64) (ObjectHeader, error) {
	var oh ObjectHeader
	if off+objectHeaderSize > uint64(len(raw)) {
		return oh, ErrInvalidHeader
	}
	b := raw[off:]
	oh.Type = ObjectType(b[0])
	oh.Flags = b[1]
	oh.Size = binary.LittleEndian.Uint64(b[8:16])
	return oh, nil
}

// DataObject is a decoded Data object: the raw "FIELD=value" payload plus
// the entry-array chain anchor used to enumerate every entry referencing
// it.
type DataObject struct {
	Payload          []byte
	EntryOffset      uint64
	EntryArrayOffset uint64
	NEntries         uint64
}

// ReadDataObject decodes a Data object's fields beyond the common header.
func ReadDataObject(raw []byte, off uint64) (DataObject, error) {
	var d DataObject
	oh, err := ReadObjectHeader(raw, off)
	if err != nil {
		return d, err
	}
	b := raw[off+objectHeaderSize:]
	if len(b) < 40 {
		return d, ErrInvalidHeader
	}
	d.EntryOffset = binary.LittleEndian.Uint64(b[16:24])
	d.EntryArrayOffset = binary.LittleEndian.Uint64(b[24:32])
	d.NEntries = binary.LittleEndian.Uint64(b[32:40])

	payloadSize := int(oh.Size) - objectHeaderSize - 40
	if payloadSize < 0 {
		payloadSize = 0
	}
	if 40+payloadSize > len(b) {
		payloadSize = len(b) - 40
	}
	d.Payload = b[40 : 40+payloadSize]
	return d, nil
}

// EntryItem links one Data object to the entry that carries its value.
type EntryItem struct {
	ObjectOffset uint64
	Hash         uint64
}

// Entry is one decoded journal entry (a log line): its sequence number,
// realtime/monotonic timestamps, boot id, and the offsets of every Data
// object whose field=value pair makes up this entry's fields.
type Entry struct {
	SeqNum    uint64
	Realtime  string
	Monotonic uint64
	BootID    string
	Items     []EntryItem
}

// ReadEntry decodes an Entry object's fixed fields and its EntryItem array.
func ReadEntry(raw []byte, off uint64) (Entry, error) {
	var e Entry
	oh, err := ReadObjectHeader(raw, off)
	if err != nil {
		return e, err
	}
	b := raw[off+objectHeaderSize:]
	if len(b) < 40 {
		return e, ErrInvalidHeader
	}
	e.SeqNum = binary.LittleEndian.Uint64(b[0:8])
	realtimeUsec := binary.LittleEndian.Uint64(b[8:16])
	e.Realtime = enc.UnixMicrosToISO8601(int64(realtimeUsec))
	e.Monotonic = binary.LittleEndian.Uint64(b[16:24])
	e.BootID = enc.GUIDBigEndian(b[24:40])

	itemsStart := 40
	itemSize := 16
	payloadSize := int(oh.Size) - objectHeaderSize - itemsStart
	if payloadSize < 0 {
		payloadSize = 0
	}
	for pos := itemsStart; pos+itemSize <= itemsStart+payloadSize && pos+itemSize <= len(b); pos += itemSize {
		e.Items = append(e.Items, EntryItem{
			ObjectOffset: binary.LittleEndian.Uint64(b[pos : pos+8]),
			Hash:         binary.LittleEndian.Uint64(b[pos+8 : pos+16]),
		})
	}
	return e, nil
}
