package ntfs

// Extent describes one data-run: a length in clusters starting at an
// absolute cluster number, or a sparse run (Sparse=true, no backing
// clusters, reads as zero).
type Extent struct {
	StartCluster  int64
	LengthCluster int64
	Sparse        bool
}

// decodeDataRuns parses an NTFS mapping-pairs array into a run list. Each
// run header byte packs the byte-length of the following length field in
// its low nibble and the byte-length of the signed LCN-delta field in its
// high nibble; the LCN is cumulative (signed delta from the previous run),
// and a zero-length-field run with no delta bytes denotes a sparse run.
func decodeDataRuns(buf []byte) ([]Extent, error) {
	var runs []Extent
	var lcn int64
	pos := 0

	for pos < len(buf) {
		header := buf[pos]
		if header == 0 {
			break
		}
		lengthBytes := int(header & 0x0F)
		offsetBytes := int(header >> 4)
		pos++

		if pos+lengthBytes+offsetBytes > len(buf) {
			return nil, ErrOutsideBoundary
		}

		length := decodeLittleEndianUnsigned(buf[pos : pos+lengthBytes])
		pos += lengthBytes

		sparse := offsetBytes == 0
		var delta int64
		if !sparse {
			delta = decodeLittleEndianSigned(buf[pos : pos+offsetBytes])
			pos += offsetBytes
			lcn += delta
		}

		run := Extent{LengthCluster: length, Sparse: sparse}
		if !sparse {
			run.StartCluster = lcn
		}
		runs = append(runs, run)
	}

	return runs, nil
}

func decodeLittleEndianUnsigned(b []byte) int64 {
	var v int64
	for i := len(b) - 1; i >= 0; i-- {
		v = (v << 8) | int64(b[i])
	}
	return v
}

func decodeLittleEndianSigned(b []byte) int64 {
	v := decodeLittleEndianUnsigned(b)
	if len(b) > 0 && b[len(b)-1]&0x80 != 0 {
		v -= 1 << (uint(len(b)) * 8)
	}
	return v
}
