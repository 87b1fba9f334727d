// Package eventlog decodes Windows .evtx event log files: the chunked
// record stream and its binary-XML event bodies, plus the PE-resource
// message-table/template lookups needed to render a provider's raw
// parameter list into human text.
package eventlog

import (
	"encoding/binary"
	"errors"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// ErrInvalidChunk is returned when a chunk doesn't begin with the
// "ElfChnk\x00" signature.
var ErrInvalidChunk = errors.New("eventlog: invalid chunk signature")

// ErrInvalidRecord is returned when a record doesn't begin with the
// "\x2a\x2a\x00\x00" record signature, or its declared size runs past
// the chunk boundary.
var ErrInvalidRecord = errors.New("eventlog: invalid record")

const (
	chunkMagic   = "ElfChnk\x00"
	chunkHeaderSize = 512
	recordMagic  = 0x00002a2a
)

// ChunkHeader is the subset of a chunk's 512-byte header every record
// walk needs.
type ChunkHeader struct {
	FirstRecordNumber uint64
	LastRecordNumber  uint64
	FirstEventRecID   uint64
	LastEventRecID    uint64
	HeaderSize        uint32
	LastRecordOffset  uint32
	FreeSpaceOffset   uint32
}

// ReadChunkHeader decodes the chunk header at the start of raw.
func ReadChunkHeader(raw []byte) (ChunkHeader, error) {
	var ch ChunkHeader
	if len(raw) < chunkHeaderSize || string(raw[0:8]) != chunkMagic {
		return ch, ErrInvalidChunk
	}
	ch.FirstRecordNumber = binary.LittleEndian.Uint64(raw[8:16])
	ch.LastRecordNumber = binary.LittleEndian.Uint64(raw[16:24])
	ch.FirstEventRecID = binary.LittleEndian.Uint64(raw[24:32])
	ch.LastEventRecID = binary.LittleEndian.Uint64(raw[32:40])
	ch.HeaderSize = binary.LittleEndian.Uint32(raw[40:44])
	ch.LastRecordOffset = binary.LittleEndian.Uint32(raw[44:48])
	ch.FreeSpaceOffset = binary.LittleEndian.Uint32(raw[48:52])
	return ch, nil
}

// Record is one decoded event record: its monotonic record number, its
// creation timestamp, and the root element of its binary-XML body.
type Record struct {
	RecordID  uint64
	Timestamp string
	Root      *Element
}

// ReadRecord decodes one record at off within a chunk's raw bytes and
// returns it along with the offset of the record immediately following
// it.
func ReadRecord(raw []byte, off int) (Record, int, error) {
	var r Record
	if off+24 > len(raw) {
		return r, off, ErrInvalidRecord
	}
	if binary.LittleEndian.Uint32(raw[off:off+4]) != recordMagic {
		return r, off, ErrInvalidRecord
	}
	size := int(binary.LittleEndian.Uint32(raw[off+4 : off+8]))
	if size < 24 || off+size > len(raw) {
		return r, off, ErrInvalidRecord
	}
	r.RecordID = binary.LittleEndian.Uint64(raw[off+8 : off+16])
	ft := binary.LittleEndian.Uint64(raw[off+16 : off+24])
	r.Timestamp = enc.FILETIMEToISO8601(ft)

	body := raw[off+24 : off+size-4]
	root, err := DecodeBinaryXML(body)
	if err == nil {
		r.Root = root
	}
	return r, off + size, nil
}

// Records decodes every record found in one chunk's raw bytes, starting
// just past the 512-byte chunk header, stopping at the chunk's declared
// free-space offset (or the first malformed record, whichever comes
// first).
func Records(raw []byte) ([]Record, error) {
	ch, err := ReadChunkHeader(raw)
	if err != nil {
		return nil, err
	}
	limit := len(raw)
	if int(ch.FreeSpaceOffset) > 0 && int(ch.FreeSpaceOffset) <= len(raw) {
		limit = int(ch.FreeSpaceOffset)
	}

	var out []Record
	pos := chunkHeaderSize
	for pos < limit {
		rec, next, err := ReadRecord(raw, pos)
		if err != nil || next <= pos {
			break
		}
		out = append(out, rec)
		pos = next
	}
	return out, nil
}
