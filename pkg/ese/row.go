package ese

import "encoding/binary"

// Row is one decoded record: column name to raw value bytes. Interpreting
// the bytes per ColumnType (int, string, GUID, FILETIME, ...) is left to
// the artifact parser, which already has enc.* conversions for every
// on-disk representation it needs.
type Row map[string][]byte

// taggedFlagLongValue marks a tagged-column value as a reference into the
// long-value tree rather than inline data.
const taggedFlagLongValue = 0x8000

// DecodeRow splits one catalog-described record into its column values.
// ESE packs a row as: 2-byte last-fixed-column-id, fixed column data in
// column-id order, 2-byte last-variable-column id, a variable-length
// offset table (2 bytes per variable column, cumulative end-offsets),
// variable column data, then an optional tagged-column region (id+offset
// pairs followed by their data) for columns that are absent from most
// rows.
func DecodeRow(data []byte, columns []ColumnDef) (Row, error) {
	if len(data) < 4 {
		return nil, ErrOutsideBoundary
	}
	row := make(Row, len(columns))

	lastFixed := binary.LittleEndian.Uint16(data[0:2])
	pos := 2

	var fixedCols, variableCols, taggedCols []ColumnDef
	for _, c := range columns {
		switch {
		case c.Tagged:
			taggedCols = append(taggedCols, c)
		case c.Fixed:
			fixedCols = append(fixedCols, c)
		default:
			variableCols = append(variableCols, c)
		}
	}

	for _, c := range fixedCols {
		if c.ColumnID > uint32(lastFixed) {
			break
		}
		size := fixedColumnSize(c.Type)
		if pos+size > len(data) {
			return nil, ErrOutsideBoundary
		}
		row[c.Name] = data[pos : pos+size]
		pos += size
	}

	if pos+2 > len(data) {
		return row, nil
	}
	lastVariable := binary.LittleEndian.Uint16(data[pos : pos+2])
	pos += 2

	numVariable := int(lastVariable)
	offsetTableStart := pos
	offsetTableEnd := offsetTableStart + numVariable*2
	if offsetTableEnd > len(data) {
		return row, nil
	}
	variableDataStart := offsetTableEnd

	prevEnd := uint16(0)
	for i := 0; i < numVariable && i < len(variableCols); i++ {
		raw := binary.LittleEndian.Uint16(data[offsetTableStart+i*2 : offsetTableStart+i*2+2])
		end := raw & 0x7FFF
		isNull := raw&0x8000 != 0
		if isNull {
			prevEnd = end
			continue
		}
		start := variableDataStart + int(prevEnd)
		stop := variableDataStart + int(end)
		if stop > len(data) || start > stop {
			break
		}
		row[variableCols[i].Name] = data[start:stop]
		prevEnd = end
	}

	taggedRegionStart := variableDataStart + int(prevEnd)
	if taggedRegionStart < len(data) {
		decodeTaggedColumns(data[taggedRegionStart:], taggedCols, row)
	}

	return row, nil
}

func decodeTaggedColumns(region []byte, taggedCols []ColumnDef, row Row) {
	if len(region) < 4 {
		return
	}
	firstEntry := binary.LittleEndian.Uint16(region[2:4])
	numEntries := int(firstEntry) / 4
	if numEntries <= 0 || numEntries*4 > len(region) {
		return
	}

	type entry struct {
		id     uint16
		offset uint16
	}
	entries := make([]entry, 0, numEntries)
	for i := 0; i < numEntries; i++ {
		e := region[i*4 : i*4+4]
		entries = append(entries, entry{
			id:     binary.LittleEndian.Uint16(e[0:2]),
			offset: binary.LittleEndian.Uint16(e[2:4]) &^ taggedFlagLongValue,
		})
	}

	byID := map[uint16]ColumnDef{}
	for _, c := range taggedCols {
		byID[uint16(c.ColumnID)] = c
	}

	for i, e := range entries {
		col, ok := byID[e.id]
		if !ok {
			continue
		}
		start := int(e.offset)
		end := len(region)
		if i+1 < len(entries) {
			end = int(entries[i+1].offset)
		}
		if start > len(region) || end > len(region) || start > end {
			continue
		}
		row[col.Name] = region[start:end]
	}
}

func fixedColumnSize(t ColumnType) int {
	switch t {
	case ColTypeBit, ColTypeUnsignedByte:
		return 1
	case ColTypeShort, ColTypeUnsignedShort:
		return 2
	case ColTypeLong, ColTypeUnsignedLong, ColTypeIEEESingle:
		return 4
	case ColTypeCurrency, ColTypeIEEEDouble, ColTypeDateTime, ColTypeLongLong:
		return 8
	case ColTypeGUID:
		return 16
	default:
		return 0
	}
}
