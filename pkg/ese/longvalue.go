package ese

// ReadLongValue reassembles a value stored in the long-value tree: the
// chain of segments keyed by (longValueID, segmentNumber) under the
// table's LV root page. Each segment lives in its own leaf-page tag; this
// walks the leaf pages on the LV root's next-page chain (see
// walkLeafPages) in chain order, concatenating every segment belonging to
// longValueID.
func ReadLongValue(lvRootPage uint32, longValueID uint32, pageAt func(uint32) (*Page, error)) ([]byte, error) {
	var out []byte

	err := walkLeafPages(lvRootPage, pageAt, func(tagData []byte) error {
		id, segment, payload, ok := decodeLongValueKey(tagData)
		if !ok || id != longValueID {
			return nil
		}
		_ = segment // segments are visited in page/tag order, already ascending
		out = append(out, payload...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// decodeLongValueKey splits a long-value leaf tag into its key (long value
// id, segment number) and payload. The key is the first 8 bytes of the
// tag data (4-byte id big-endian per ESE's key-ordering convention, 4-byte
// segment number big-endian), the remainder is the segment's bytes.
func decodeLongValueKey(tagData []byte) (id uint32, segment uint32, payload []byte, ok bool) {
	if len(tagData) < 8 {
		return 0, 0, nil, false
	}
	id = uint32(tagData[0])<<24 | uint32(tagData[1])<<16 | uint32(tagData[2])<<8 | uint32(tagData[3])
	segment = uint32(tagData[4])<<24 | uint32(tagData[5])<<16 | uint32(tagData[6])<<8 | uint32(tagData[7])
	return id, segment, tagData[8:], true
}
