package ole

import (
	"encoding/binary"
	"testing"
)

func putDirName(e []byte, name string) {
	units := make([]byte, 0, 64)
	for _, r := range name {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(r))
		units = append(units, b...)
	}
	units = append(units, 0, 0)
	copy(e[0:64], units)
	binary.LittleEndian.PutUint16(e[64:66], uint16(len(units)))
}

func buildMinimalCFB(t *testing.T, streamContent []byte) []byte {
	t.Helper()
	const sectorSize = 512

	header := make([]byte, 512)
	copy(header[0:8], signature[:])
	binary.LittleEndian.PutUint16(header[30:32], 9) // sector shift -> 512
	binary.LittleEndian.PutUint32(header[44:48], 1)  // 1 FAT sector
	binary.LittleEndian.PutUint32(header[48:52], 1)  // directory starts at logical sector 1
	binary.LittleEndian.PutUint32(header[76:80], 0)  // DIFAT[0] = sector 0 is the FAT sector

	fatSector := make([]byte, sectorSize)
	binary.LittleEndian.PutUint32(fatSector[0:4], sectorFATSec)
	binary.LittleEndian.PutUint32(fatSector[4:8], sectorEndChain) // directory: 1 sector
	binary.LittleEndian.PutUint32(fatSector[8:12], sectorEndChain) // stream: 1 sector

	dirSector := make([]byte, sectorSize)
	root := dirSector[0:128]
	putDirName(root, "Root Entry")
	root[66] = byte(EntryRootStorage)

	stream := dirSector[128:256]
	putDirName(stream, "TestStream")
	stream[66] = byte(EntryStream)
	binary.LittleEndian.PutUint32(stream[116:120], 2) // start sector
	binary.LittleEndian.PutUint64(stream[120:128], uint64(len(streamContent)))

	streamSector := make([]byte, sectorSize)
	copy(streamSector, streamContent)

	var raw []byte
	raw = append(raw, header...)
	raw = append(raw, fatSector...)
	raw = append(raw, dirSector...)
	raw = append(raw, streamSector...)
	return raw
}

func TestOpenAndReadStream(t *testing.T) {
	raw := buildMinimalCFB(t, []byte("hello"))
	f, err := Open(raw)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(f.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(f.Entries))
	}
	data, ok := f.Stream("TestStream")
	if !ok {
		t.Fatalf("TestStream not found")
	}
	if string(data) != "hello" {
		t.Fatalf("got %q, want hello", data)
	}
}

func TestOpenRejectsBadSignature(t *testing.T) {
	if _, err := Open(make([]byte, 512)); err != ErrInvalidHeader {
		t.Fatalf("got %v, want ErrInvalidHeader", err)
	}
}
