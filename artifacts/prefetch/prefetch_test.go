package prefetch

import (
	"encoding/binary"
	"testing"
)

// buildV17Header assembles a minimal, uncompressed version-17 Prefetch
// file: the 84-byte common header followed by a version-17 file
// information structure with an empty filename-strings table and a
// single volume entry.
func buildV17Header(t *testing.T) []byte {
	t.Helper()

	const fileInfoSize = 68
	buf := make([]byte, fileInformationOffset+fileInfoSize)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(VersionXP))
	copy(buf[4:8], "SCCA")
	name := "TEST.EXE"
	for i, r := range name {
		binary.LittleEndian.PutUint16(buf[16+i*2:], uint16(r))
	}
	binary.LittleEndian.PutUint32(buf[76:80], 0x136252D4)

	fi := buf[fileInformationOffset:]
	binary.LittleEndian.PutUint32(fi[8:12], 0)  // filename strings offset
	binary.LittleEndian.PutUint32(fi[12:16], 0) // filename strings size
	binary.LittleEndian.PutUint32(fi[16:20], 0) // volume info offset
	binary.LittleEndian.PutUint32(fi[20:24], 0) // volume info count
	binary.LittleEndian.PutUint32(fi[24:28], 0) // volume info size
	binary.LittleEndian.PutUint64(fi[28:36], 132000000000000000)
	binary.LittleEndian.PutUint32(fi[36:40], 7) // run count

	return buf
}

func TestParseV17Header(t *testing.T) {
	raw := buildV17Header(t)

	rec, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Version != VersionXP {
		t.Fatalf("got version %d, want %d", rec.Version, VersionXP)
	}
	if rec.Filename != "TEST.EXE" {
		t.Fatalf("got filename %q, want TEST.EXE", rec.Filename)
	}
	if rec.Hash != "136252D4" {
		t.Fatalf("got hash %q, want 136252D4", rec.Hash)
	}
	if rec.RunCount != 7 {
		t.Fatalf("got run count %d, want 7", rec.RunCount)
	}
	if len(rec.RunTimes) != 1 {
		t.Fatalf("got %d run times, want 1", len(rec.RunTimes))
	}
}

func TestParseRejectsShortOrUnsignedData(t *testing.T) {
	if _, err := Parse(nil); err != ErrNotPrefetch {
		t.Fatalf("got %v, want ErrNotPrefetch", err)
	}
	if _, err := Parse([]byte("short")); err != ErrNotPrefetch {
		t.Fatalf("got %v, want ErrNotPrefetch", err)
	}

	garbage := make([]byte, 100)
	copy(garbage[4:8], "XXXX")
	if _, err := Parse(garbage); err != ErrNotPrefetch {
		t.Fatalf("got %v, want ErrNotPrefetch", err)
	}
}

func TestParseFilenameStringsSplitsFilesAndDirectories(t *testing.T) {
	entries := []string{`\VOLUME\WINDOWS\SYSTEM32`, `\VOLUME\WINDOWS\SYSTEM32\TEST.EXE`, "NOEXTENSIONDIR"}
	var region []byte
	for _, s := range entries {
		for _, r := range s {
			region = append(region, byte(r), 0)
		}
		region = append(region, 0, 0)
	}

	raw := make([]byte, len(region))
	copy(raw, region)

	files, dirs := parseFilenameStrings(raw, 0, uint32(len(raw)))
	if len(files) != 1 || files[0] != `\VOLUME\WINDOWS\SYSTEM32\TEST.EXE` {
		t.Fatalf("got files %+v, want one TEST.EXE entry", files)
	}
	if len(dirs) != 2 {
		t.Fatalf("got dirs %+v, want 2 entries", dirs)
	}
}

func TestEncodeHex32MatchesUppercaseFixedWidth(t *testing.T) {
	if got := encodeHex32(0x136252D4); got != "136252D4" {
		t.Fatalf("got %q, want 136252D4", got)
	}
	if got := encodeHex32(0); got != "00000000" {
		t.Fatalf("got %q, want 00000000", got)
	}
}
