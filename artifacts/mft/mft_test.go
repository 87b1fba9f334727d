package mft

import (
	"encoding/binary"
	"testing"

	"github.com/puffyCid/artemis-sub004/pkg/ntfs"
)

const bytesPerSector = 512

func buildResidentAttribute(attrType uint32, content []byte) []byte {
	attrLen := 24 + len(content)
	buf := make([]byte, attrLen)
	binary.LittleEndian.PutUint32(buf[0:4], attrType)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(attrLen))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(len(content)))
	binary.LittleEndian.PutUint16(buf[20:22], 24)
	copy(buf[24:], content)
	return buf
}

func buildStandardInformation(created, modified, mftModified, accessed uint64) []byte {
	buf := make([]byte, 48)
	binary.LittleEndian.PutUint64(buf[0:8], created)
	binary.LittleEndian.PutUint64(buf[8:16], modified)
	binary.LittleEndian.PutUint64(buf[16:24], mftModified)
	binary.LittleEndian.PutUint64(buf[24:32], accessed)
	return buf
}

func buildFileName(parentEntry uint64, parentSeq uint16, name string, ns ntfs.FileNameNamespace) []byte {
	buf := make([]byte, 66+len(name)*2)
	parentRef := parentEntry | (uint64(parentSeq) << 48)
	binary.LittleEndian.PutUint64(buf[0:8], parentRef)
	binary.LittleEndian.PutUint64(buf[40:48], uint64(len(name)))
	buf[64] = byte(len(name))
	buf[65] = byte(ns)
	for i, r := range name {
		binary.LittleEndian.PutUint16(buf[66+i*2:68+i*2], uint16(r))
	}
	return buf
}

const attrsOffset = 56
const usaOffset = 48
const usaCount = 3

func buildRecord(seq uint16, flags uint16, attrs ...[]byte) []byte {
	raw := make([]byte, recordSize)
	copy(raw[0:4], "FILE")
	binary.LittleEndian.PutUint16(raw[4:6], usaOffset)
	binary.LittleEndian.PutUint16(raw[6:8], usaCount)
	binary.LittleEndian.PutUint16(raw[16:18], seq)
	binary.LittleEndian.PutUint16(raw[20:22], attrsOffset)
	binary.LittleEndian.PutUint16(raw[22:24], flags)

	off := attrsOffset
	for _, a := range attrs {
		copy(raw[off:], a)
		off += len(a)
	}
	binary.LittleEndian.PutUint32(raw[off:off+4], 0xFFFFFFFF)
	return raw
}

func TestParseMergesStandardAndFileName(t *testing.T) {
	root := buildRecord(1, 0x3,
		buildResidentAttribute(ntfs.AttrStandardInformation, buildStandardInformation(1, 2, 3, 4)),
		buildResidentAttribute(ntfs.AttrFileName, buildFileName(5, 1, ".", ntfs.NamespaceWin32)),
	)
	child := buildRecord(1, 0x1,
		buildResidentAttribute(ntfs.AttrStandardInformation, buildStandardInformation(132000000000000000, 132000000000000001, 132000000000000002, 132000000000000003)),
		buildResidentAttribute(ntfs.AttrFileName, buildFileName(0, 1, "NTUSER.DAT", ntfs.NamespaceWin32)),
	)

	raw := append(root, child...)

	records, err := Parse(raw, bytesPerSector)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	var found *Record
	for i := range records {
		if records[i].FileName == "NTUSER.DAT" {
			found = &records[i]
		}
	}
	if found == nil {
		t.Fatalf("did not find NTUSER.DAT entry among %+v", records)
	}
	if found.FullPath != ".\\NTUSER.DAT" {
		t.Fatalf("FullPath = %q, want \".\\\\NTUSER.DAT\"", found.FullPath)
	}
	if found.IsDirectory {
		t.Fatalf("expected NTUSER.DAT entry to not be a directory")
	}
	if !found.InUse {
		t.Fatalf("expected NTUSER.DAT entry to be in-use")
	}
	if found.Created != "2019-04-17T18:40:00.000Z" {
		t.Fatalf("Created = %q", found.Created)
	}
}

func TestParseSkipsNonFileChunks(t *testing.T) {
	garbage := make([]byte, recordSize)
	copy(garbage[0:4], "BAAD")

	records, err := Parse(garbage, bytesPerSector)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records, want 0", len(records))
	}
}
