package shellitem

import (
	"encoding/binary"
	"testing"
)

// buildDirectoryItem assembles a minimal directory-class item with a
// trailing beef0004 extension block carrying created/accessed timestamps
// and an NTFS file reference.
func buildDirectoryItem(t *testing.T) []byte {
	t.Helper()

	name := "source\x00"
	nameStart := 12
	extOffset := nameStart + len(name)
	if extOffset%2 != 0 {
		extOffset++
	}
	extBlockSize := 24
	total := extOffset + extBlockSize + 2 // +2 for the trailing offset-to-block word

	buf := make([]byte, total)
	buf[2] = 0x31 // directory class
	copy(buf[nameStart:], name)

	ext := buf[extOffset : extOffset+extBlockSize]
	binary.LittleEndian.PutUint16(ext[0:2], uint16(extBlockSize))
	binary.LittleEndian.PutUint16(ext[2:4], 0x0004) // beef0004 signature
	binary.LittleEndian.PutUint32(ext[8:12], packDOS(2019, 10, 21, 23, 40, 40))
	binary.LittleEndian.PutUint32(ext[12:16], packDOS(2019, 10, 21, 23, 40, 40))
	ref := uint64(278330) | uint64(12)<<48
	binary.LittleEndian.PutUint64(ext[16:24], ref)

	binary.LittleEndian.PutUint16(buf[total-2:], uint16(extOffset))
	binary.LittleEndian.PutUint16(buf[0:2], uint16(total))
	return buf
}

func packDOS(year, month, day, hour, min, sec int) uint32 {
	date := uint32((year-1980)<<9 | month<<5 | day)
	tm := uint32(hour<<11 | min<<5 | sec/2)
	return date<<16 | tm
}

func TestParseListDirectoryWithExtensionBlock(t *testing.T) {
	item := buildDirectoryItem(t)
	items := ParseList(item)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	got := items[0]
	if got.ShellType != TypeDirectory {
		t.Fatalf("got type %v, want Directory", got.ShellType)
	}
	if got.Value != "source" {
		t.Fatalf("got value %q, want source", got.Value)
	}
	if got.MFTEntry != 278330 || got.MFTSequence != 12 {
		t.Fatalf("got entry=%d seq=%d", got.MFTEntry, got.MFTSequence)
	}
	if got.Created != "2019-10-21T23:40:40.000Z" {
		t.Fatalf("got created %q", got.Created)
	}
}

func TestParseListStopsOnShortLength(t *testing.T) {
	raw := []byte{0x01, 0x00, 0xAA, 0xBB}
	items := ParseList(raw)
	if len(items) != 0 {
		t.Fatalf("got %d items, want 0 (length<2 terminates)", len(items))
	}
}
