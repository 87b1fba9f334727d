package registry

import "encoding/binary"

// subkeyOffsets resolves a subkey-list cell (lf/lh/li/ri) to the NK-cell
// offsets of its immediate children. ri is an indirection list of further
// lf/lh/li lists, recursed into; lf/lh carry a 4-byte hash alongside each
// offset (ignored here — name comparison during the walk uses the child
// NK's own decoded name, not the hash), li is a bare offset array.
func (h *Hive) subkeyOffsets(listOffset uint32) ([]uint32, error) {
	cell, err := h.cellAt(listOffset)
	if err != nil {
		return nil, err
	}
	if len(cell) < 4 {
		return nil, ErrOutsideBoundary
	}
	sig := string(cell[0:2])
	count := int(binary.LittleEndian.Uint16(cell[2:4]))

	switch sig {
	case "li":
		var out []uint32
		for i := 0; i < count; i++ {
			pos := 4 + i*4
			if pos+4 > len(cell) {
				return nil, ErrOutsideBoundary
			}
			out = append(out, binary.LittleEndian.Uint32(cell[pos:pos+4]))
		}
		return out, nil

	case "lf", "lh":
		var out []uint32
		for i := 0; i < count; i++ {
			pos := 4 + i*8
			if pos+8 > len(cell) {
				return nil, ErrOutsideBoundary
			}
			out = append(out, binary.LittleEndian.Uint32(cell[pos:pos+4]))
		}
		return out, nil

	case "ri":
		var out []uint32
		for i := 0; i < count; i++ {
			pos := 4 + i*4
			if pos+4 > len(cell) {
				return nil, ErrOutsideBoundary
			}
			indirect := binary.LittleEndian.Uint32(cell[pos : pos+4])
			children, err := h.subkeyOffsets(indirect)
			if err != nil {
				return nil, err
			}
			out = append(out, children...)
		}
		return out, nil

	default:
		return nil, ErrOutsideBoundary
	}
}

// valueOffsets resolves a value-list cell to its VK-cell offsets. A zero
// or -1 list offset (no values) yields an empty list rather than an error
// - value lists handle zero/-1 offsets the same way.
func (h *Hive) valueOffsets(listOffset uint32, count uint32) ([]uint32, error) {
	if listOffset == 0 || listOffset == 0xFFFFFFFF || count == 0 {
		return nil, nil
	}
	cell, err := h.cellAt(listOffset)
	if err != nil {
		return nil, err
	}
	var out []uint32
	for i := uint32(0); i < count; i++ {
		pos := int(i) * 4
		if pos+4 > len(cell) {
			break
		}
		out = append(out, binary.LittleEndian.Uint32(cell[pos:pos+4]))
	}
	return out, nil
}
