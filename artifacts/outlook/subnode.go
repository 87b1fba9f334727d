package outlook

import "encoding/binary"

// SubnodeEntry is one decoded entry of a node's subnode B-tree (the
// descriptor-block flavour), mapping a local node id to the block ids
// carrying its data and, optionally, its own nested subnode tree.
type SubnodeEntry struct {
	NID        uint32
	DataBID    uint64
	SubnodeBID uint64
}

const subnodeHeaderSize = 4
const subnodeEntrySize = 20

// DecodeSubnodeLeaf decodes a leaf-level subnode descriptor block: a
// 4-byte level/count header followed by a flat array of (nid, bidData,
// bidSub) entries.
func DecodeSubnodeLeaf(raw []byte) []SubnodeEntry {
	if len(raw) < subnodeHeaderSize {
		return nil
	}
	count := binary.LittleEndian.Uint16(raw[2:4])
	var out []SubnodeEntry
	for i := uint16(0); i < count; i++ {
		off := subnodeHeaderSize + int(i)*subnodeEntrySize
		if off+subnodeEntrySize > len(raw) {
			break
		}
		e := raw[off : off+subnodeEntrySize]
		out = append(out, SubnodeEntry{
			NID:        binary.LittleEndian.Uint32(e[0:4]),
			DataBID:    binary.LittleEndian.Uint64(e[4:12]),
			SubnodeBID: binary.LittleEndian.Uint64(e[12:20]),
		})
	}
	return out
}

// FindSubnode returns the entry for nid, if present.
func FindSubnode(entries []SubnodeEntry, nid uint32) (SubnodeEntry, bool) {
	for _, e := range entries {
		if e.NID == nid {
			return e, true
		}
	}
	return SubnodeEntry{}, false
}
