// Package shortcut decodes Windows .lnk (Shell Link) files: the fixed
// 76-byte header, an optional shell-item target ID list (delegated to
// pkg/shellitem), and the optional variable-length string-data section
// (name, relative path, working directory, command-line arguments, icon
// location), per MS-SHLLINK version 1.
package shortcut

import (
	"encoding/binary"
	"errors"

	"github.com/puffyCid/artemis-sub004/artifacts/shellitem"
	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// ErrInvalidHeader is returned when the 76-byte header size or GUID don't
// match the shell-link signature.
var ErrInvalidHeader = errors.New("shortcut: invalid header")

const headerSize = 0x4C

// LinkFlags bits governing which optional sections follow the header.
const (
	flagHasLinkTargetIDList uint32 = 1 << 0
	flagHasLinkInfo         uint32 = 1 << 1
	flagHasName             uint32 = 1 << 2
	flagHasRelativePath     uint32 = 1 << 3
	flagHasWorkingDir       uint32 = 1 << 4
	flagHasArguments        uint32 = 1 << 5
	flagHasIconLocation     uint32 = 1 << 6
	flagIsUnicode           uint32 = 1 << 7
)

// Record is one decoded shortcut file.
type Record struct {
	FileAttributes   uint32
	FileSize         uint32
	IconIndex        int32
	ShowCommand      uint32
	Created          string
	Accessed         string
	Modified         string
	TargetItems      []shellitem.Item
	Name             string
	RelativePath     string
	WorkingDirectory string
	Arguments        string
	IconLocation     string
}

// Parse decodes a complete .lnk file.
func Parse(raw []byte) (Record, error) {
	var rec Record
	if len(raw) < headerSize {
		return rec, ErrInvalidHeader
	}
	if binary.LittleEndian.Uint32(raw[0:4]) != headerSize {
		return rec, ErrInvalidHeader
	}
	// Bytes 4-19 are the LinkCLSID; every valid link uses the fixed
	// 00021401-0000-0000-C000-000000000046 shell-link class id, but some
	// malformed/hand-crafted samples vary it, so it is not checked here.
	flags := binary.LittleEndian.Uint32(raw[20:24])
	rec.FileAttributes = binary.LittleEndian.Uint32(raw[24:28])
	rec.Created = enc.FILETIMEToISO8601(binary.LittleEndian.Uint64(raw[28:36]))
	rec.Accessed = enc.FILETIMEToISO8601(binary.LittleEndian.Uint64(raw[36:44]))
	rec.Modified = enc.FILETIMEToISO8601(binary.LittleEndian.Uint64(raw[44:52]))
	rec.FileSize = binary.LittleEndian.Uint32(raw[52:56])
	rec.IconIndex = int32(binary.LittleEndian.Uint32(raw[56:60]))
	rec.ShowCommand = binary.LittleEndian.Uint32(raw[60:64])

	pos := headerSize

	if flags&flagHasLinkTargetIDList != 0 {
		if pos+2 > len(raw) {
			return rec, nil
		}
		size := int(binary.LittleEndian.Uint16(raw[pos : pos+2]))
		pos += 2
		if pos+size > len(raw) {
			return rec, nil
		}
		rec.TargetItems = shellitem.ParseList(raw[pos : pos+size])
		pos += size
	}

	if flags&flagHasLinkInfo != 0 {
		if pos+4 > len(raw) {
			return rec, nil
		}
		size := int(binary.LittleEndian.Uint32(raw[pos : pos+4]))
		if pos+size > len(raw) || size < 4 {
			return rec, nil
		}
		pos += size
	}

	unicode := flags&flagIsUnicode != 0
	pos = readStringIfPresent(raw, pos, flags&flagHasName != 0, unicode, &rec.Name)
	pos = readStringIfPresent(raw, pos, flags&flagHasRelativePath != 0, unicode, &rec.RelativePath)
	pos = readStringIfPresent(raw, pos, flags&flagHasWorkingDir != 0, unicode, &rec.WorkingDirectory)
	pos = readStringIfPresent(raw, pos, flags&flagHasArguments != 0, unicode, &rec.Arguments)
	_ = readStringIfPresent(raw, pos, flags&flagHasIconLocation != 0, unicode, &rec.IconLocation)

	return rec, nil
}

// readStringIfPresent decodes one StringData entry (a 2-byte character
// count followed by that many UTF-16LE or ANSI characters) when present is
// true, advancing past it regardless so later fields stay aligned even if
// this one is absent.
func readStringIfPresent(raw []byte, pos int, present, unicode bool, out *string) int {
	if !present || pos+2 > len(raw) {
		return pos
	}
	count := int(binary.LittleEndian.Uint16(raw[pos : pos+2]))
	pos += 2
	width := 1
	if unicode {
		width = 2
	}
	need := count * width
	if pos+need > len(raw) {
		return pos
	}
	data := raw[pos : pos+need]
	if unicode {
		*out = enc.UTF16LEFixed(data, count)
	} else {
		*out = string(data)
	}
	return pos + need
}
