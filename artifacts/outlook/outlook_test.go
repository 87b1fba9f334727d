package outlook

import (
	"encoding/binary"
	"testing"
)

func TestResolveDataPlainBlock(t *testing.T) {
	data, err := ResolveData([]byte("hello world"), FormatUnicode64, nil)
	if err != nil {
		t.Fatalf("ResolveData: %v", err)
	}
	if string(data) != "hello world" {
		t.Fatalf("got %q", data)
	}
}

func TestResolveDataXBlockConcatenatesChildren(t *testing.T) {
	children := map[uint64][]byte{
		1: []byte("AAAA"),
		2: []byte("BBBB"),
	}
	lookup := func(id uint64) ([]byte, bool) {
		v, ok := children[id]
		return v, ok
	}

	xblock := make([]byte, xblockHeaderSize+16)
	xblock[0] = btypeInternal
	xblock[1] = cLevelXBlock
	binary.LittleEndian.PutUint16(xblock[2:4], 2)
	binary.LittleEndian.PutUint64(xblock[8:16], 1)
	binary.LittleEndian.PutUint64(xblock[16:24], 2)

	data, err := ResolveData(xblock, FormatUnicode64, lookup)
	if err != nil {
		t.Fatalf("ResolveData: %v", err)
	}
	if string(data) != "AAAABBBB" {
		t.Fatalf("got %q, want AAAABBBB", data)
	}
}

func TestDecodeSubnodeLeaf(t *testing.T) {
	raw := make([]byte, subnodeHeaderSize+subnodeEntrySize)
	binary.LittleEndian.PutUint16(raw[2:4], 1)
	binary.LittleEndian.PutUint32(raw[4:8], 0x42)
	binary.LittleEndian.PutUint64(raw[8:16], 99)

	entries := DecodeSubnodeLeaf(raw)
	if len(entries) != 1 || entries[0].NID != 0x42 || entries[0].DataBID != 99 {
		t.Fatalf("got %+v", entries)
	}
	e, ok := FindSubnode(entries, 0x42)
	if !ok || e.DataBID != 99 {
		t.Fatalf("FindSubnode failed: %+v, %v", e, ok)
	}
}
