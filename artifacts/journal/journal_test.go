package journal

import (
	"encoding/binary"
	"testing"
)

func buildHeader(t *testing.T) []byte {
	t.Helper()
	raw := make([]byte, 256)
	copy(raw[0:8], magic)
	return raw
}

func TestParseHeaderRejectsBadMagic(t *testing.T) {
	if _, err := ParseHeader(make([]byte, 256)); err != ErrInvalidHeader {
		t.Fatalf("got %v, want ErrInvalidHeader", err)
	}
}

func TestParseHeaderOK(t *testing.T) {
	raw := buildHeader(t)
	h, err := ParseHeader(raw)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	_ = h
}

func buildDataObject(t *testing.T, payload string) []byte {
	t.Helper()
	size := objectHeaderSize + 40 + len(payload)
	raw := make([]byte, size)
	raw[0] = byte(ObjectData)
	binary.LittleEndian.PutUint64(raw[8:16], uint64(size))
	copy(raw[objectHeaderSize+40:], payload)
	return raw
}

func TestReadDataObject(t *testing.T) {
	raw := buildDataObject(t, "MESSAGE=hello")
	d, err := ReadDataObject(raw, 0)
	if err != nil {
		t.Fatalf("ReadDataObject: %v", err)
	}
	if string(d.Payload) != "MESSAGE=hello" {
		t.Fatalf("got %q", d.Payload)
	}
}

func TestReadEntryDecodesItems(t *testing.T) {
	size := objectHeaderSize + 40 + 16
	raw := make([]byte, size)
	raw[0] = byte(ObjectEntry)
	binary.LittleEndian.PutUint64(raw[8:16], uint64(size))
	binary.LittleEndian.PutUint64(raw[objectHeaderSize:objectHeaderSize+8], 42) // seqnum
	itemsOff := objectHeaderSize + 40
	binary.LittleEndian.PutUint64(raw[itemsOff:itemsOff+8], 1000) // object offset

	e, err := ReadEntry(raw, 0)
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if e.SeqNum != 42 {
		t.Fatalf("got seqnum %d, want 42", e.SeqNum)
	}
	if len(e.Items) != 1 || e.Items[0].ObjectOffset != 1000 {
		t.Fatalf("got %+v", e.Items)
	}
}
