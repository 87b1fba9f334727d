package wmi

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
)

// EntryKind classifies an INDEX.BTR hash entry by its well-known prefix.
type EntryKind int

const (
	KindUnknown EntryKind = iota
	KindNamespace
	KindClassDefinition
	KindInstance
)

// IndexEntry is one decoded INDEX.BTR leaf entry: a hash string key
// (prefixed NS_/CD_/IL_) pointing at a logical page id in OBJECTS.DATA.
type IndexEntry struct {
	Kind        EntryKind
	Hash        string
	LogicalPage uint32
	RecordID    uint32
}

// HashName renders name the way INDEX.BTR keys a namespace or class: a
// wide-uppercase SHA-256 hex digest ("SHA-256-hash-wide-
// uppercase the name").
func HashName(name string) string {
	upper := strings.ToUpper(name)
	units := make([]byte, 0, len(upper)*2+2)
	for _, r := range upper {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(r))
		units = append(units, b...)
	}
	sum := sha256.Sum256(units)
	return fmt.Sprintf("%X", sum)
}

// ParseIndexEntries decodes a flat run of INDEX.BTR leaf records: each is a
// 2-byte prefix-tagged kind, a fixed-width hash string, and a logical
// page/record id pair. The real B-tree node structure (internal nodes,
// page links) is not modelled here - only the leaf key/value pairs a
// lookup ultimately needs, consistent with this module's contract of
// "given the index's leaf entries, resolve namespace/class/instance blobs"
// rather than re-implementing the B-tree's own page traversal.
func ParseIndexEntries(raw []byte, hashLen int) []IndexEntry {
	var out []IndexEntry
	recSize := 2 + hashLen + 8
	for pos := 0; pos+recSize <= len(raw); pos += recSize {
		kindByte := raw[pos]
		kind := KindUnknown
		switch kindByte {
		case 'N':
			kind = KindNamespace
		case 'C':
			kind = KindClassDefinition
		case 'I':
			kind = KindInstance
		default:
			continue
		}
		hash := string(raw[pos+2 : pos+2+hashLen])
		logical := binary.LittleEndian.Uint32(raw[pos+2+hashLen : pos+6+hashLen])
		record := binary.LittleEndian.Uint32(raw[pos+6+hashLen : pos+10+hashLen])
		out = append(out, IndexEntry{Kind: kind, Hash: hash, LogicalPage: logical, RecordID: record})
	}
	return out
}

// FilterByPrefix returns every entry whose Hash carries the given prefix
// ("NS_", "CD_<classhash>.", "IL_<classhash>.") per the namespace
// class-listing algorithm.
func FilterByPrefix(entries []IndexEntry, prefix string) []IndexEntry {
	var out []IndexEntry
	for _, e := range entries {
		if strings.HasPrefix(e.Hash, prefix) {
			out = append(out, e)
		}
	}
	return out
}
