package registry

import "encoding/binary"

// NamedKey is a parsed "nk" cell.
type NamedKey struct {
	LastModified   uint64 // FILETIME, convert with pkg/enc
	ParentOffset   uint32
	SubkeyCount    uint32
	SubkeyListOff  uint32
	ValueCount     uint32
	ValueListOff   uint32
	SecurityOffset uint32
	Name           string
	IsRoot         bool
}

// parseNamedKey decodes an "nk" cell's fixed fields and variable-length
// name; volatile subkey counts/offsets (the 0x8-length second pair used
// by volatile hives) are not populated since no on-disk hive requires
// them.
func parseNamedKey(cell []byte) (NamedKey, error) {
	if len(cell) < 76 || string(cell[0:2]) != "nk" {
		return NamedKey{}, ErrOutsideBoundary
	}
	flags := binary.LittleEndian.Uint16(cell[2:4])
	nameLen := int(binary.LittleEndian.Uint16(cell[72:74]))
	nameStart := 76
	nameEnd := nameStart + nameLen
	if nameEnd > len(cell) {
		return NamedKey{}, ErrOutsideBoundary
	}
	return NamedKey{
		LastModified:   binary.LittleEndian.Uint64(cell[4:12]),
		ParentOffset:   binary.LittleEndian.Uint32(cell[16:20]),
		SubkeyCount:    binary.LittleEndian.Uint32(cell[24:28]),
		SubkeyListOff:  binary.LittleEndian.Uint32(cell[28:32]),
		ValueCount:     binary.LittleEndian.Uint32(cell[40:44]),
		ValueListOff:   binary.LittleEndian.Uint32(cell[44:48]),
		SecurityOffset: binary.LittleEndian.Uint32(cell[48:52]),
		Name:           decodeKeyName(cell[nameStart:nameEnd], flags),
		IsRoot:         flags&0x0004 != 0,
	}, nil
}

func decodeKeyName(b []byte, flags uint16) string {
	// bit 0x20 set: name is stored as ASCII/Latin-1, one byte per char.
	if flags&0x0020 != 0 {
		return string(b)
	}
	runes := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		runes = append(runes, binary.LittleEndian.Uint16(b[i:i+2]))
	}
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = rune(r)
	}
	return string(out)
}

// ValueType enumerates the registry's native value data types.
type ValueType uint32

const (
	RegNone      ValueType = 0
	RegSZ        ValueType = 1
	RegExpandSZ  ValueType = 2
	RegBinary    ValueType = 3
	RegDWORD     ValueType = 4
	RegMultiSZ   ValueType = 7
	RegQWORD     ValueType = 11
)

// Value is a parsed "vk" cell.
type Value struct {
	Name     string
	DataSize uint32
	DataOff  uint32
	Type     ValueType
	Resident bool // true when DataSize's high bit marked the data inline
	Inline   []byte
}

// parseValue decodes a "vk" cell. When the data length's top bit is set,
// the value's data (≤4 bytes) is stored inline in the data-offset field
// itself rather than pointed to by it.
func parseValue(cell []byte) (Value, error) {
	if len(cell) < 20 || string(cell[0:2]) != "vk" {
		return Value{}, ErrOutsideBoundary
	}
	nameLen := int(binary.LittleEndian.Uint16(cell[2:4]))
	rawDataLen := binary.LittleEndian.Uint32(cell[4:8])
	dataOff := binary.LittleEndian.Uint32(cell[8:12])
	valType := binary.LittleEndian.Uint32(cell[12:16])
	flags := binary.LittleEndian.Uint16(cell[16:18])

	nameStart := 24
	nameEnd := nameStart + nameLen
	var name string
	if nameLen == 0 {
		name = "(default)"
	} else if nameEnd <= len(cell) {
		name = decodeKeyName(cell[nameStart:nameEnd], flags)
	}

	v := Value{Name: name, Type: ValueType(valType)}
	const residentFlag = uint32(1) << 31
	if rawDataLen&residentFlag != 0 {
		size := rawDataLen &^ residentFlag
		v.Resident = true
		v.DataSize = size
		inline := make([]byte, 4)
		binary.LittleEndian.PutUint32(inline, dataOff)
		if int(size) <= 4 {
			v.Inline = inline[:size]
		} else {
			v.Inline = inline
		}
	} else {
		v.DataSize = rawDataLen
		v.DataOff = dataOff
	}
	return v, nil
}

// SecurityDescriptor is a parsed "sk" cell (the security descriptor bytes
// themselves are opaque to this package; SID decoding is out of scope for
// any artifact parser in this repository).
type SecurityDescriptor struct {
	Descriptor []byte
}

func parseSecurityDescriptor(cell []byte) (SecurityDescriptor, error) {
	if len(cell) < 20 || string(cell[0:2]) != "sk" {
		return SecurityDescriptor{}, ErrOutsideBoundary
	}
	size := binary.LittleEndian.Uint32(cell[16:20])
	if 20+int(size) > len(cell) {
		return SecurityDescriptor{}, ErrOutsideBoundary
	}
	return SecurityDescriptor{Descriptor: cell[20 : 20+size]}, nil
}
