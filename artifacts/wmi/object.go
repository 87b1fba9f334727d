package wmi

import (
	"encoding/binary"
	"errors"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// ErrShortObjectBlob is returned when an OBJECTS.DATA blob is too short to
// carry its own declared header.
var ErrShortObjectBlob = errors.New("wmi: short object blob")

// PropertyType mirrors the CIM_TYPE_* value-kind enum a class's property
// table declares per column.
type PropertyType uint32

// Selected CIM_TYPE values the parser distinguishes.
const (
	CIMTypeSint32 PropertyType = 3
	CIMTypeString PropertyType = 8
	CIMTypeBool   PropertyType = 11
	CIMTypeObject PropertyType = 13
	CIMTypeSint64 PropertyType = 20
)

// PropertyDef describes one property slot in a class definition: its
// on-disk data type, byte offset into an instance's value blob, and any
// qualifiers attached to it (e.g. "key", "read").
type PropertyDef struct {
	Name       string
	Type       PropertyType
	Offset     uint32
	Qualifiers []string
}

// ClassDefinition is a decoded CD_ object: the class's own name, its
// parent's name (for inheritance resolution), and its declared properties
// in table order.
type ClassDefinition struct {
	Name           string
	SuperClassName string
	Qualifiers     []string
	Properties     []PropertyDef
}

// DecodeClassDefinition decodes a CD_-prefixed object blob: a superclass
// name, a class-qualifier list, and a property table of
// (name, data_type, data_offset, qualifiers) tuples.
func DecodeClassDefinition(blob []byte) (ClassDefinition, error) {
	var cd ClassDefinition
	pos := 0

	name, next, ok := readLengthPrefixedString(blob, pos)
	if !ok {
		return cd, ErrShortObjectBlob
	}
	cd.Name = name
	pos = next

	super, next, ok := readLengthPrefixedString(blob, pos)
	if !ok {
		return cd, ErrShortObjectBlob
	}
	cd.SuperClassName = super
	pos = next

	cd.Qualifiers, pos = readStringList(blob, pos)

	if pos+4 > len(blob) {
		return cd, ErrShortObjectBlob
	}
	count := binary.LittleEndian.Uint32(blob[pos : pos+4])
	pos += 4

	for i := uint32(0); i < count && pos < len(blob); i++ {
		var pd PropertyDef
		pname, next, ok := readLengthPrefixedString(blob, pos)
		if !ok {
			break
		}
		pd.Name = pname
		pos = next

		if pos+8 > len(blob) {
			break
		}
		pd.Type = PropertyType(binary.LittleEndian.Uint32(blob[pos : pos+4]))
		pd.Offset = binary.LittleEndian.Uint32(blob[pos+4 : pos+8])
		pos += 8

		pd.Qualifiers, pos = readStringList(blob, pos)
		cd.Properties = append(cd.Properties, pd)
	}

	return cd, nil
}

// Instance is a decoded IL_-prefixed object blob: the present-bit vector
// cross-referenced against a class's property list, and the decoded value
// for every property that bit marks present.
type Instance struct {
	ClassName string
	Values    map[string]any
}

// DecodeInstance decodes an instance blob against the already-resolved
// (including inherited) property list props, using the leading bit vector
// (one bit per property, in declaration order) to know which property
// slots actually carry a value in this instance - instance decoding
// must cross-reference the class's property list.
func DecodeInstance(className string, blob []byte, props []PropertyDef) (Instance, error) {
	inst := Instance{ClassName: className, Values: map[string]any{}}
	bitVectorLen := (len(props) + 7) / 8
	if len(blob) < bitVectorLen {
		return inst, ErrShortObjectBlob
	}
	present := blob[:bitVectorLen]

	for i, p := range props {
		if present[i/8]&(1<<uint(i%8)) == 0 {
			continue
		}
		if int(p.Offset) >= len(blob) {
			continue
		}
		inst.Values[p.Name] = decodeValue(blob[p.Offset:], p.Type)
	}
	return inst, nil
}

func decodeValue(b []byte, t PropertyType) any {
	switch t {
	case CIMTypeSint32:
		if len(b) < 4 {
			return nil
		}
		return int32(binary.LittleEndian.Uint32(b))
	case CIMTypeSint64:
		if len(b) < 8 {
			return nil
		}
		return int64(binary.LittleEndian.Uint64(b))
	case CIMTypeBool:
		if len(b) < 2 {
			return nil
		}
		return binary.LittleEndian.Uint16(b) != 0
	case CIMTypeString, CIMTypeObject:
		return enc.UTF16LE(b)
	default:
		return nil
	}
}

func readLengthPrefixedString(b []byte, pos int) (s string, next int, ok bool) {
	if pos+4 > len(b) {
		return "", pos, false
	}
	n := int(binary.LittleEndian.Uint32(b[pos : pos+4]))
	pos += 4
	need := n * 2
	if n < 0 || pos+need > len(b) {
		return "", pos, false
	}
	return enc.UTF16LEFixed(b[pos:pos+need], n), pos + need, true
}

func readStringList(b []byte, pos int) ([]string, int) {
	if pos+4 > len(b) {
		return nil, pos
	}
	count := int(binary.LittleEndian.Uint32(b[pos : pos+4]))
	pos += 4
	var out []string
	for i := 0; i < count; i++ {
		s, next, ok := readLengthPrefixedString(b, pos)
		if !ok {
			break
		}
		out = append(out, s)
		pos = next
	}
	return out, pos
}
