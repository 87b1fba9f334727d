// Package fsevents decodes macOS FSEvents store pages: a concatenation of
// DLS1/DLS2/DLS3-tagged streams, each a run of NUL-terminated path records
// followed by a fixed-width event-id/flags (and, from DLS2 on, a node id)
// tail. Source-file timestamps are attached by the caller, not decoded here
// - the on-disk record carries no timestamp of its own.
package fsevents

import (
	"encoding/binary"
	"errors"
)

// ErrNotAStream is returned when raw bytes don't begin with a recognised
// DLS1/DLS2/DLS3 magic.
var ErrNotAStream = errors.New("fsevents: not a DLS stream")

// Generation distinguishes the three on-disk record shapes.
type Generation int

const (
	DLS1 Generation = iota + 1
	DLS2
	DLS3
)

var magics = map[string]Generation{
	"1SLD": DLS1,
	"2SLD": DLS2,
	"3SLD": DLS3,
}

// Flag bits, per the documented FSEventStreamEventFlags bit layout.
const (
	FlagCreated          uint32 = 0x00000100
	FlagRemoved          uint32 = 0x00000200
	FlagInodeMetaMod     uint32 = 0x00000400
	FlagRenamed          uint32 = 0x00000800
	FlagModified         uint32 = 0x00001000
	FlagFinderInfoMod    uint32 = 0x00002000
	FlagChangeOwner      uint32 = 0x00004000
	FlagXattrMod         uint32 = 0x00008000
	FlagIsFile           uint32 = 0x00010000
	FlagIsDirectory      uint32 = 0x00020000
	FlagIsSymlink        uint32 = 0x00040000
	FlagMount            uint32 = 0x00080000
	FlagUnmount          uint32 = 0x00100000
	FlagEndOfTransaction uint32 = 0x20000000
)

var flagLabels = []struct {
	bit   uint32
	label string
}{
	{FlagCreated, "Created"},
	{FlagRemoved, "Removed"},
	{FlagInodeMetaMod, "InodeMetaMod"},
	{FlagRenamed, "Renamed"},
	{FlagModified, "Modified"},
	{FlagFinderInfoMod, "FinderInfoMod"},
	{FlagChangeOwner, "ChangeOwner"},
	{FlagXattrMod, "XattrMod"},
	{FlagIsFile, "IsFile"},
	{FlagIsDirectory, "IsDirectory"},
	{FlagIsSymlink, "IsSymlink"},
	{FlagMount, "Mount"},
	{FlagUnmount, "Unmount"},
	{FlagEndOfTransaction, "EndOfTransaction"},
}

// DecodeFlags renders the labels of every set bit in flags, in declaration
// order, for JSON output that reads naturally to an analyst.
func DecodeFlags(flags uint32) []string {
	var labels []string
	for _, f := range flagLabels {
		if flags&f.bit != 0 {
			labels = append(labels, f.label)
		}
	}
	return labels
}

// Record is one decoded path-change event.
type Record struct {
	Path       string
	EventID    uint64
	Flags      uint32
	FlagLabels []string
	NodeID     uint64
	HasNodeID  bool
	SourceTime string
}

const headerSize = 12

// Parse decodes every stream concatenated in raw, attaching sourceTime (the
// FSEvents file's own filesystem modification time, already converted to
// ISO-8601 by the caller via rawio metadata) to every emitted record.
func Parse(raw []byte, sourceTime string) ([]Record, error) {
	var out []Record
	pos := 0
	sawStream := false

	for pos+headerSize <= len(raw) {
		magic := string(raw[pos : pos+4])
		gen, ok := magics[magic]
		if !ok {
			break
		}
		sawStream = true
		size := binary.LittleEndian.Uint32(raw[pos+8 : pos+12])
		streamStart := pos + headerSize
		streamEnd := streamStart + int(size)
		if streamEnd > len(raw) || streamEnd < streamStart {
			return out, nil
		}
		recs, err := parseStream(raw[streamStart:streamEnd], gen, sourceTime)
		if err != nil {
			return out, nil
		}
		out = append(out, recs...)
		pos = streamEnd
	}

	if !sawStream {
		return nil, ErrNotAStream
	}
	return out, nil
}

func parseStream(b []byte, gen Generation, sourceTime string) ([]Record, error) {
	var out []Record
	for len(b) > 0 {
		nul := indexByte(b, 0)
		if nul < 0 {
			break
		}
		path := string(b[:nul])
		b = b[nul+1:]

		if len(b) < 12 {
			break
		}
		eventID := binary.LittleEndian.Uint64(b[0:8])
		flags := binary.LittleEndian.Uint32(b[8:12])
		b = b[12:]

		rec := Record{
			Path:       path,
			EventID:    eventID,
			Flags:      flags,
			FlagLabels: DecodeFlags(flags),
			SourceTime: sourceTime,
		}

		if gen >= DLS2 {
			if len(b) < 8 {
				break
			}
			rec.NodeID = binary.LittleEndian.Uint64(b[0:8])
			rec.HasNodeID = true
			b = b[8:]
		}
		if gen == DLS3 {
			if len(b) < 4 {
				break
			}
			b = b[4:]
		}

		out = append(out, rec)
	}
	return out, nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
