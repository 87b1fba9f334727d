// Package shellitem decodes Windows Explorer shell-item ID lists (used
// inside Shortcuts, Shellbags, and Jumplists): a flat sequence of
// variable-length, type-tagged items. Every variant - directory, drive,
// delegate, control panel, network, URI, MTP, zip, history, property,
// root, game - is normalised to the same uniform record shape so callers
// never branch on the concrete shell-item kind; ParseList is the single
// entry point.
package shellitem

import (
	"encoding/binary"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// Type is the classifying byte every fixed-size item carries right after
// its 2-byte length prefix.
type Type byte

const (
	TypeUnknown Type = iota
	TypeDirectory
	TypeDrive
	TypeDelegate
	TypeControlPanel
	TypeNetwork
	TypeURI
	TypeMTP
	TypeZip
	TypeHistory
	TypeProperty
	TypeRoot
	TypeGame
)

func (t Type) String() string {
	switch t {
	case TypeDirectory:
		return "Directory"
	case TypeDrive:
		return "Drive"
	case TypeDelegate:
		return "Delegate"
	case TypeControlPanel:
		return "ControlPanel"
	case TypeNetwork:
		return "Network"
	case TypeURI:
		return "URI"
	case TypeMTP:
		return "MTP"
	case TypeZip:
		return "Zip"
	case TypeHistory:
		return "History"
	case TypeProperty:
		return "Property"
	case TypeRoot:
		return "Root"
	case TypeGame:
		return "Game"
	default:
		return "Unknown"
	}
}

// classify classifies the on-disk "class type indicator" byte that follows
// the 2-byte length prefix into one of the uniform Type variants.
func classify(b byte) Type {
	switch {
	case b == 0x2F:
		return TypeDrive
	case b&0xF0 == 0x30:
		return TypeDirectory
	case b == 0x61:
		return TypeMTP
	case b == 0x71:
		return TypeControlPanel
	case b == 0x74:
		return TypeDelegate
	case b == 0x52 || b == 0xC3:
		return TypeNetwork
	case b == 0x41:
		return TypeURI
	case b == 0x2E:
		return TypeZip
	case b == 0x00:
		return TypeHistory
	case b == 0x70:
		return TypeProperty
	case b == 0x1F:
		return TypeRoot
	case b == 0x4B:
		return TypeGame
	default:
		return TypeUnknown
	}
}

// Item is one decoded shell-item, normalised regardless of concrete
// variant, sharing a uniform {value, shell_type, created, modified,
// accessed, mft_entry, mft_sequence} record.
type Item struct {
	Value       string
	ShellType   Type
	Created     string
	Modified    string
	Accessed    string
	MFTEntry    uint64
	MFTSequence uint16
}

// extensionSig marks a "beef0004"-family extension block, the region of a
// directory/file item that carries NTFS file-reference and timestamp data.
const extensionSig = 0x0004

// ParseList decodes a flat shell-item ID list: each item is a 2-byte
// little-endian length (including the length field itself) followed by
// length-2 bytes of payload. An item whose declared length is less than 2
// terminates the list.
func ParseList(b []byte) []Item {
	var out []Item
	for len(b) >= 2 {
		size := int(binary.LittleEndian.Uint16(b[0:2]))
		if size < 2 {
			break
		}
		if size > len(b) {
			size = len(b)
		}
		out = append(out, parseOne(b[:size]))
		b = b[size:]
	}
	return out
}

// parseOne dispatches a single fixed-size item on its classifying byte.
func parseOne(item []byte) Item {
	if len(item) < 3 {
		return Item{ShellType: TypeUnknown}
	}
	t := classify(item[2])
	rec := Item{ShellType: t}

	switch t {
	case TypeDirectory:
		decodeDirectory(item, &rec)
	case TypeDelegate:
		decodeDelegate(item, &rec)
	case TypeDrive:
		rec.Value = enc.UTF8NullTerminated(trimAt(item, 3))
	default:
		rec.Value = enc.UTF8NullTerminated(trimAt(item, 3))
	}
	return rec
}

func trimAt(b []byte, from int) []byte {
	if from >= len(b) {
		return nil
	}
	return b[from:]
}

// decodeDirectory extracts the short (8.3) display name and, when a
// beef0004 extension block trails it, the NTFS file reference and the
// created and accessed MS-DOS date/times. Modified is left empty.
func decodeDirectory(item []byte, rec *Item) {
	if len(item) < 12 {
		rec.Value = enc.UTF8NullTerminated(trimAt(item, 3))
		return
	}
	// Bytes 8-11: DOS modified date/time are skipped in favour of the
	// richer beef0004 extension block timestamps when present.
	nameStart := 12
	rec.Value = enc.UTF8NullTerminated(trimAt(item, nameStart))

	sig, off, ok := findExtensionBlock(item)
	if !ok || sig != extensionSig {
		return
	}
	decodeExtensionBlock(item[off:], rec)
}

// decodeDelegate unwraps a delegate item's embedded sub-item, per MS-SHLLINK
// "CFSF" (delegate item) framing: a 2-byte sub-class indicator, a 2-byte
// inner-item-offset, then the CLSID-tagged delegate payload, with the real
// target item embedded at the declared offset.
func decodeDelegate(item []byte, rec *Item) {
	if len(item) < 8 {
		return
	}
	innerOffset := int(binary.LittleEndian.Uint16(item[4:6]))
	if innerOffset <= 0 || innerOffset >= len(item) {
		rec.Value = enc.UTF8NullTerminated(trimAt(item, 6))
		return
	}
	inner := parseOne(item[innerOffset:])
	rec.Value = inner.Value
	rec.Created, rec.Modified, rec.Accessed = inner.Created, inner.Modified, inner.Accessed
	rec.MFTEntry, rec.MFTSequence = inner.MFTEntry, inner.MFTSequence
}

// findExtensionBlock scans the trailing bytes of item for a 2-byte
// version + 2-byte signature pair identifying a beef0004 extension block,
// returning the signature and the offset of the block's body.
func findExtensionBlock(item []byte) (sig uint16, offset int, ok bool) {
	if len(item) < 6 {
		return 0, 0, false
	}
	// The last 2 bytes before the end hold the extension-block offset.
	blockOffset := int(binary.LittleEndian.Uint16(item[len(item)-2:]))
	if blockOffset <= 0 || blockOffset+4 > len(item) {
		return 0, 0, false
	}
	sig = binary.LittleEndian.Uint16(item[blockOffset+2 : blockOffset+4])
	return sig, blockOffset, true
}

// decodeExtensionBlock decodes a beef0004 block's created/accessed MS-DOS
// date/time fields (4 bytes each) and NTFS file reference. Fields are read positionally per the
// documented beef0004 layout used by every Windows version this parser
// targets.
func decodeExtensionBlock(b []byte, rec *Item) {
	const (
		offCreated  = 8
		offAccessed = 12
		offRef      = 16
	)
	if len(b) < offRef+8 {
		return
	}
	rec.Created = dosDateTimeToISO(binary.LittleEndian.Uint32(b[offCreated : offCreated+4]))
	rec.Accessed = dosDateTimeToISO(binary.LittleEndian.Uint32(b[offAccessed : offAccessed+4]))
	ref := binary.LittleEndian.Uint64(b[offRef : offRef+8])
	rec.MFTEntry = ref & 0x0000FFFFFFFFFFFF
	rec.MFTSequence = uint16(ref >> 48)
}

// dosDateTimeToISO converts a packed MS-DOS date/time (time in the low 16
// bits, date in the high 16 bits, as stored in a shell-item extension
// block) to ISO-8601 through enc.DOSDateTimeToISO8601. DOS date/time has
// only 2-second resolution, so the output's seconds are always even. A
// zero value maps to the unset sentinel.
func dosDateTimeToISO(v uint32) string {
	if v == 0 {
		return enc.UnsetISO8601()
	}
	timePart := v & 0xFFFF
	datePart := v >> 16

	sec := int((timePart & 0x1F) * 2)
	min := int((timePart >> 5) & 0x3F)
	hour := int((timePart >> 11) & 0x1F)
	day := int(datePart & 0x1F)
	month := int((datePart >> 5) & 0x0F)
	year := int((datePart>>9)&0x7F) + 1980

	return enc.DOSDateTimeToISO8601(year, month, day, hour, min, sec)
}
