// Package ntfs decodes NTFS on-disk structures well enough to serve the
// raw-I/O substrate's live-lock bypass: MFT record fixups, the attribute
// types the artifact parsers need, and data-run decoding into a read-only
// file-content view over a raw volume device.
package ntfs

import (
	"encoding/binary"
	"errors"
)

// ErrInvalidRecord is returned when an MFT record's signature or fixup
// array fails validation.
var ErrInvalidRecord = errors.New("ntfs: invalid MFT record")

// ErrOutsideBoundary is returned when a field or attribute would read past
// the record/run-list it was handed.
var ErrOutsideBoundary = errors.New("ntfs: read outside boundary")

// Attribute type codes.
const (
	AttrStandardInformation = 0x10
	AttrAttributeList       = 0x20
	AttrFileName            = 0x30
	AttrObjectID            = 0x40
	AttrSecurityDescriptor  = 0x50
	AttrVolumeName          = 0x60
	AttrVolumeInformation   = 0x70
	AttrData                = 0x80
	AttrIndexRoot           = 0x90
	AttrIndexAllocation     = 0xA0
	AttrBitmap              = 0xB0
	AttrReparsePoint        = 0xC0
	AttrEAInformation       = 0xD0
	AttrEA                  = 0xE0
	AttrLoggedUtilityStream = 0x100
	AttrEnd                 = 0xFFFFFFFF
)

// Attribute is one parsed attribute record, resident or non-resident.
type Attribute struct {
	Type       uint32
	Name       string // non-empty for named streams (e.g. $TXF_DATA)
	Resident   bool
	ResidentData []byte // valid when Resident
	Runs       []Extent // valid when !Resident
	DataSize   int64    // non-resident real content size
}

// Record is a parsed, fixed-up MFT entry.
type Record struct {
	RecordNumber   uint64
	SequenceNumber uint16
	Flags          uint16 // bit0: in use, bit1: directory
	Attributes     []Attribute
}

// InUse reports whether the FILE record's in-use flag is set.
func (r *Record) InUse() bool { return r.Flags&0x1 != 0 }

// IsDirectory reports whether the FILE record's directory flag is set.
func (r *Record) IsDirectory() bool { return r.Flags&0x2 != 0 }

// ParseRecord decodes one MFT entry from raw, applying the fixup array
// (the last two bytes of every sector are swapped back in from the record
// header's update sequence array) before parsing the attribute list.
func ParseRecord(raw []byte, bytesPerSector int) (*Record, error) {
	if len(raw) < 48 || string(raw[0:4]) != "FILE" {
		return nil, ErrInvalidRecord
	}

	usaOffset := binary.LittleEndian.Uint16(raw[4:6])
	usaCount := binary.LittleEndian.Uint16(raw[6:8])
	if int(usaOffset)+int(usaCount)*2 > len(raw) {
		return nil, ErrInvalidRecord
	}

	fixed := make([]byte, len(raw))
	copy(fixed, raw)
	if usaCount > 0 {
		usaValues := fixed[usaOffset+2 : usaOffset+usaCount*2]
		for sector := 0; sector < int(usaCount)-1; sector++ {
			sectorEnd := (sector+1)*bytesPerSector - 2
			if sectorEnd+2 > len(fixed) {
				break
			}
			copy(fixed[sectorEnd:sectorEnd+2], usaValues[sector*2:sector*2+2])
		}
	}

	seqNumber := binary.LittleEndian.Uint16(fixed[16:18])
	flags := binary.LittleEndian.Uint16(fixed[22:24])
	attrsOffset := binary.LittleEndian.Uint16(fixed[20:22])

	rec := &Record{SequenceNumber: seqNumber, Flags: flags}

	off := int(attrsOffset)
	for off+8 <= len(fixed) {
		attrType := binary.LittleEndian.Uint32(fixed[off : off+4])
		if attrType == AttrEnd {
			break
		}
		attrLen := binary.LittleEndian.Uint32(fixed[off+4 : off+8])
		if attrLen == 0 || off+int(attrLen) > len(fixed) {
			return nil, ErrOutsideBoundary
		}

		attr, err := parseAttribute(fixed[off : off+int(attrLen)])
		if err != nil {
			return nil, err
		}
		rec.Attributes = append(rec.Attributes, attr)
		off += int(attrLen)
	}

	return rec, nil
}

func parseAttribute(buf []byte) (Attribute, error) {
	if len(buf) < 16 {
		return Attribute{}, ErrOutsideBoundary
	}
	attrType := binary.LittleEndian.Uint32(buf[0:4])
	nonResident := buf[8]
	nameLen := buf[9]
	nameOffset := binary.LittleEndian.Uint16(buf[10:12])

	var name string
	if nameLen > 0 {
		end := int(nameOffset) + int(nameLen)*2
		if end > len(buf) {
			return Attribute{}, ErrOutsideBoundary
		}
		name = decodeUTF16LEName(buf[nameOffset:end])
	}

	attr := Attribute{Type: attrType, Name: name}

	if nonResident == 0 {
		contentSize := binary.LittleEndian.Uint32(buf[16:20])
		contentOffset := binary.LittleEndian.Uint16(buf[20:22])
		end := int(contentOffset) + int(contentSize)
		if end > len(buf) {
			return Attribute{}, ErrOutsideBoundary
		}
		attr.Resident = true
		attr.ResidentData = append([]byte(nil), buf[contentOffset:end]...)
		return attr, nil
	}

	if len(buf) < 64 {
		return Attribute{}, ErrOutsideBoundary
	}
	dataSize := int64(binary.LittleEndian.Uint64(buf[48:56]))
	runOffset := binary.LittleEndian.Uint16(buf[32:34])
	if int(runOffset) > len(buf) {
		return Attribute{}, ErrOutsideBoundary
	}
	runs, err := decodeDataRuns(buf[runOffset:])
	if err != nil {
		return Attribute{}, err
	}
	attr.Runs = runs
	attr.DataSize = dataSize
	return attr, nil
}

func decodeUTF16LEName(b []byte) string {
	runes := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		runes = append(runes, binary.LittleEndian.Uint16(b[i:i+2]))
	}
	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		out = append(out, rune(r))
	}
	return string(out)
}

// FindAttribute returns the first attribute of the given type in this
// record. Attributes that $ATTRIBUTE_LIST places in other MFT records are
// not followed or merged in; this package has no code that does so.
func (r *Record) FindAttribute(attrType uint32) (*Attribute, bool) {
	for i := range r.Attributes {
		if r.Attributes[i].Type == attrType {
			return &r.Attributes[i], true
		}
	}
	return nil, false
}
