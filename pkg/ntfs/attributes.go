package ntfs

import "encoding/binary"

// StandardInformation holds the fields artifact parsers need from
// $STANDARD_INFORMATION: the four FILETIME fields and the DOS attribute
// flags.
type StandardInformation struct {
	Created          uint64 // raw FILETIME, convert with pkg/enc
	Modified         uint64
	MFTModified      uint64
	Accessed         uint64
	FileAttributes   uint32
}

// ParseStandardInformation decodes a resident $STANDARD_INFORMATION
// attribute's content.
func ParseStandardInformation(b []byte) (StandardInformation, error) {
	if len(b) < 48 {
		return StandardInformation{}, ErrOutsideBoundary
	}
	return StandardInformation{
		Created:        binary.LittleEndian.Uint64(b[0:8]),
		Modified:       binary.LittleEndian.Uint64(b[8:16]),
		MFTModified:    binary.LittleEndian.Uint64(b[16:24]),
		Accessed:       binary.LittleEndian.Uint64(b[24:32]),
		FileAttributes: binary.LittleEndian.Uint32(b[32:36]),
	}, nil
}

// FileNameNamespace identifies which of the (up to 3) $FILE_NAME records an
// entry carries.
type FileNameNamespace uint8

const (
	NamespacePosix FileNameNamespace = iota
	NamespaceWin32
	NamespaceDOS
	NamespaceWin32AndDOS
)

// FileName holds a decoded $FILE_NAME attribute.
type FileName struct {
	ParentRecordNumber uint64
	ParentSequence     uint16
	Created            uint64
	Modified            uint64
	MFTModified         uint64
	Accessed            uint64
	LogicalSize         uint64
	PhysicalSize        uint64
	Flags               uint32
	Namespace           FileNameNamespace
	Name                string
}

// ParseFileName decodes a resident $FILE_NAME attribute's content.
func ParseFileName(b []byte) (FileName, error) {
	if len(b) < 66 {
		return FileName{}, ErrOutsideBoundary
	}
	parentRef := binary.LittleEndian.Uint64(b[0:8])
	nameLen := int(b[64])
	namespace := FileNameNamespace(b[65])

	nameStart := 66
	nameEnd := nameStart + nameLen*2
	if nameEnd > len(b) {
		return FileName{}, ErrOutsideBoundary
	}

	return FileName{
		ParentRecordNumber: parentRef & 0x0000FFFFFFFFFFFF,
		ParentSequence:     uint16(parentRef >> 48),
		Created:            binary.LittleEndian.Uint64(b[8:16]),
		Modified:           binary.LittleEndian.Uint64(b[16:24]),
		MFTModified:        binary.LittleEndian.Uint64(b[24:32]),
		Accessed:           binary.LittleEndian.Uint64(b[32:40]),
		LogicalSize:        binary.LittleEndian.Uint64(b[40:48]),
		PhysicalSize:       binary.LittleEndian.Uint64(b[48:56]),
		Flags:              binary.LittleEndian.Uint32(b[56:60]),
		Namespace:          namespace,
		Name:               decodeUTF16LEName(b[nameStart:nameEnd]),
	}, nil
}

// AttributeListEntry is one entry of a parsed $ATTRIBUTE_LIST attribute:
// a pointer to the MFT record actually holding an attribute that didn't
// fit in the base record.
type AttributeListEntry struct {
	AttrType           uint32
	Name               string
	RecordNumber       uint64
	SequenceNumber     uint16
}

// ParseAttributeList decodes a resident $ATTRIBUTE_LIST attribute's
// content into its entries. A non-resident attribute list (rare, only for
// entries with thousands of extents) is read by the caller through the
// attribute's Runs before being handed here.
func ParseAttributeList(b []byte) ([]AttributeListEntry, error) {
	var entries []AttributeListEntry
	pos := 0
	for pos+26 <= len(b) {
		entryLen := int(binary.LittleEndian.Uint16(b[pos+4 : pos+6]))
		if entryLen == 0 || pos+entryLen > len(b) {
			return nil, ErrOutsideBoundary
		}
		attrType := binary.LittleEndian.Uint32(b[pos : pos+4])
		nameLen := int(b[pos+6])
		nameOffset := int(b[pos+7])
		fileRef := binary.LittleEndian.Uint64(b[pos+16 : pos+24])

		var name string
		if nameLen > 0 {
			start := pos + nameOffset
			end := start + nameLen*2
			if end > len(b) {
				return nil, ErrOutsideBoundary
			}
			name = decodeUTF16LEName(b[start:end])
		}

		entries = append(entries, AttributeListEntry{
			AttrType:       attrType,
			Name:           name,
			RecordNumber:   fileRef & 0x0000FFFFFFFFFFFF,
			SequenceNumber: uint16(fileRef >> 48),
		})
		pos += entryLen
	}
	return entries, nil
}
