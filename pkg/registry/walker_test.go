package registry

import (
	"encoding/binary"
	"regexp"
	"testing"
)

func mustCompile(pattern string) *regexp.Regexp {
	return regexp.MustCompile(pattern)
}

// hiveBuilder lays out cells back-to-back in a single HBIN, returning each
// cell's hive-relative offset (relative to the start of the first HBIN,
// the unit cellAt/parseNamedKey expect) as cells are added. add returns
// both the offset and the byte range so a later cell's forward reference
// can be patched in after the fact.
type hiveBuilder struct {
	buf []byte
}

func newHiveBuilder() *hiveBuilder {
	b := &hiveBuilder{buf: make([]byte, hbinHeaderSize)}
	copy(b.buf[0:4], "hbin")
	return b
}

func (b *hiveBuilder) add(payload []byte) (offset uint32, dataStart int) {
	offset = uint32(len(b.buf))
	cellLen := 4 + len(payload)
	if cellLen%8 != 0 {
		cellLen += 8 - cellLen%8
	}
	cell := make([]byte, cellLen)
	binary.LittleEndian.PutUint32(cell[0:4], uint32(int32(-cellLen)))
	copy(cell[4:], payload)
	dataStart = len(b.buf) + 4
	b.buf = append(b.buf, cell...)
	return offset, dataStart
}

func (b *hiveBuilder) patchUint32(at int, v uint32) {
	binary.LittleEndian.PutUint32(b.buf[at:at+4], v)
}

func (b *hiveBuilder) finish() []byte {
	full := make([]byte, baseBlockSize+len(b.buf))
	copy(full[0:4], "regf")
	copy(full[baseBlockSize:], b.buf)
	return full
}

func buildNK(name string, subkeyCount, subkeyListOff uint32, isRoot bool) []byte {
	cell := make([]byte, 76+len(name))
	copy(cell[0:2], "nk")
	flags := uint16(0x0020) // ASCII name, matching decodeKeyName's single-byte path
	if isRoot {
		flags |= 0x0004
	}
	binary.LittleEndian.PutUint16(cell[2:4], flags)
	binary.LittleEndian.PutUint64(cell[4:12], 132000000000000000)
	binary.LittleEndian.PutUint32(cell[24:28], subkeyCount)
	binary.LittleEndian.PutUint32(cell[28:32], subkeyListOff)
	binary.LittleEndian.PutUint32(cell[44:48], 0xFFFFFFFF) // no values
	binary.LittleEndian.PutUint16(cell[72:74], uint16(len(name)))
	copy(cell[76:], name)
	return cell
}

func buildLI(offsets ...uint32) []byte {
	cell := make([]byte, 4+len(offsets)*4)
	copy(cell[0:2], "li")
	binary.LittleEndian.PutUint16(cell[2:4], uint16(len(offsets)))
	for i, off := range offsets {
		binary.LittleEndian.PutUint32(cell[4+i*4:8+i*4], off)
	}
	return cell
}

// TestWalkDetectsAndBreaksCycle builds Root -> {ChildA, ChildB}, where
// ChildB's own subkey list points back at Root, a direct parent/child
// cycle. The cycle guard must stop that recursion without an infinite
// loop (the test would hang otherwise), and every distinct key is still
// visited exactly once.
func TestWalkDetectsAndBreaksCycle(t *testing.T) {
	b := newHiveBuilder()

	childAOffset, _ := b.add(buildNK("ChildA", 0, 0, false))

	// ChildB's subkey-list offset is patched in once the cyclic list (which
	// itself needs Root's offset) exists.
	childBOffset, childBData := b.add(buildNK("ChildB", 1, 0, false))

	rootListOffset, _ := b.add(buildLI(childAOffset, childBOffset))
	rootOffset, _ := b.add(buildNK("Root", 2, rootListOffset, true))

	cyclicListOffset, _ := b.add(buildLI(rootOffset))
	// Patch ChildB's subkey-list-offset field (bytes 28:32 of its cell
	// payload) to point at the cyclic list now that both offsets exist.
	b.patchUint32(childBData+28, cyclicListOffset)

	data := b.finish()
	hive, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	w := NewWalker(hive)
	keys, err := w.Walk(rootOffset, nil)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if len(keys) != 3 {
		t.Fatalf("got %d keys, want 3: %+v", len(keys), keys)
	}

	seen := map[string]int{}
	for _, k := range keys {
		seen[k.Path]++
	}
	for _, name := range []string{"ROOT", "ROOT\\ChildA", "ROOT\\ChildB"} {
		if seen[name] != 1 {
			t.Fatalf("path %q visited %d times, want 1", name, seen[name])
		}
	}
}

func TestWalkPathFilter(t *testing.T) {
	b := newHiveBuilder()
	childAOffset, _ := b.add(buildNK("Software", 0, 0, false))
	childBOffset, _ := b.add(buildNK("Hardware", 0, 0, false))
	rootListOffset, _ := b.add(buildLI(childAOffset, childBOffset))
	rootOffset, _ := b.add(buildNK("Root", 2, rootListOffset, true))

	data := b.finish()
	hive, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	w := NewWalker(hive)
	keys, err := w.Walk(rootOffset, mustCompile(`Software$`))
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(keys) != 1 || keys[0].Path != `ROOT\Software` {
		t.Fatalf("got %+v, want exactly ROOT\\Software", keys)
	}
}
