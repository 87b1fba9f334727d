// Package outlook decodes Microsoft Outlook OST/PST block stores: the
// block B-tree's four block flavours (raw data, xblock, xxblock, and
// subnode-descriptor blocks) and their reassembly into a node's full data
// stream, across the three on-disk formats (ANSI32, Unicode64,
// Unicode64-4k) the container header selects between.
package outlook

import (
	"encoding/binary"
	"errors"
)

// ErrUnknownBlockKind is returned when a block's signature byte doesn't
// match any of the four recognised flavours.
var ErrUnknownBlockKind = errors.New("outlook: unrecognised block signature")

// Format selects the on-disk block page layout.
type Format int

const (
	FormatANSI32 Format = iota
	FormatUnicode64
	FormatUnicode64_4K
)

// Alignment returns the byte boundary block ids are padded to on disk: 64
// bytes for the legacy ANSI and Unicode64 layouts, 512 bytes for the
// Unicode64-4k ("large header") layout introduced for >2GB stores.
func (f Format) Alignment() int {
	if f == FormatUnicode64_4K {
		return 512
	}
	return 64
}

// BlockKind is the flavour a block's leading signature byte selects.
type BlockKind int

const (
	BlockData BlockKind = iota
	BlockXBlock
	BlockXXBlock
	BlockDescriptor
)

const (
	btypeInternal = 0x01
	cLevelXBlock  = 0x01
	cLevelXXBlock = 0x02
	btypeSubnode  = 0x02
)

// Classify inspects a block's first bytes to determine its flavour. Blocks
// with BTYPE 0x01 are "internal" (xblock at cLevel 1, xxblock at cLevel 2);
// BTYPE 0x02 is a subnode-BTree descriptor block; anything else is treated
// as raw leaf data.
func Classify(raw []byte) BlockKind {
	if len(raw) < 2 {
		return BlockData
	}
	switch raw[0] {
	case btypeInternal:
		if raw[1] == cLevelXXBlock {
			return BlockXXBlock
		}
		return BlockXBlock
	case btypeSubnode:
		return BlockDescriptor
	default:
		return BlockData
	}
}

// Lookup resolves a block id to its raw on-disk bytes via the store's
// global block B-tree (not modelled here - callers own that index; this
// package only reassembles a node's data once individual blocks are
// fetchable by id).
type Lookup func(blockID uint64) ([]byte, bool)

// xblockHeaderSize is the BTYPE/cLevel/cEnt/cbTotal header every xblock
// and xxblock begins with, before its array of child block ids.
const xblockHeaderSize = 8

// ResolveData reassembles a node's full data stream starting from its
// root block, following xblock/xxblock child references through lookup.
// A plain data block is returned as-is. An xxblock's children are
// themselves xblocks and are resolved recursively exactly once each (no
// xxblock-of-xxblock nesting occurs in the format).
func ResolveData(root []byte, format Format, lookup Lookup) ([]byte, error) {
	switch Classify(root) {
	case BlockData:
		return root, nil
	case BlockXBlock:
		return resolveXBlock(root, format, lookup)
	case BlockXXBlock:
		return resolveXXBlock(root, format, lookup)
	default:
		return nil, ErrUnknownBlockKind
	}
}

func resolveXBlock(raw []byte, format Format, lookup Lookup) ([]byte, error) {
	if len(raw) < xblockHeaderSize {
		return nil, ErrUnknownBlockKind
	}
	cEnt := binary.LittleEndian.Uint16(raw[2:4])
	childIDs := readChildIDs(raw[xblockHeaderSize:], int(cEnt))

	var out []byte
	for _, id := range childIDs {
		data, ok := lookup(id)
		if !ok {
			continue
		}
		out = append(out, data...)
	}
	return out, nil
}

func resolveXXBlock(raw []byte, format Format, lookup Lookup) ([]byte, error) {
	if len(raw) < xblockHeaderSize {
		return nil, ErrUnknownBlockKind
	}
	cEnt := binary.LittleEndian.Uint16(raw[2:4])
	childIDs := readChildIDs(raw[xblockHeaderSize:], int(cEnt))

	var out []byte
	for _, id := range childIDs {
		child, ok := lookup(id)
		if !ok {
			continue
		}
		data, err := resolveXBlock(child, format, lookup)
		if err != nil {
			continue
		}
		out = append(out, data...)
	}
	return out, nil
}

// readChildIDs decodes count 8-byte little-endian block ids from b.
func readChildIDs(b []byte, count int) []uint64 {
	out := make([]uint64, 0, count)
	for i := 0; i < count; i++ {
		off := i * 8
		if off+8 > len(b) {
			break
		}
		out = append(out, binary.LittleEndian.Uint64(b[off:off+8]))
	}
	return out
}
