package ntfs

// FileReader is a read-only view over one file's content, whether resident
// (stored inline in the MFT record) or non-resident (a run list over the
// volume device's clusters, with sparse runs reading as zero).
type FileReader struct {
	dev          RawDevice
	runs         []Extent
	clusterSize  int64
	residentData []byte
	size         int64
}

// NewFileReaderFromRuns builds a FileReader directly from a precomputed
// run list, for extents resolved outside the NTFS record format. Nothing
// in this repository calls it. Its Size is the total length of the runs.
func NewFileReaderFromRuns(dev RawDevice, runs []Extent, clusterSize int64) *FileReader {
	var size int64
	for _, r := range runs {
		size += r.LengthCluster * clusterSize
	}
	return &FileReader{dev: dev, runs: runs, clusterSize: clusterSize, size: size}
}

// Size reports the file's real content length.
func (fr *FileReader) Size() int64 { return fr.size }

// Close releases the underlying device handle, if any.
func (fr *FileReader) Close() error {
	if fr.dev != nil {
		return fr.dev.Close()
	}
	return nil
}

// ReadAt returns length bytes of file content starting at the given
// byte offset, translating through the run list (or resident buffer)
// as needed. Reads are clipped to the file's real size.
func (fr *FileReader) ReadAt(offset int64, length int) ([]byte, error) {
	if offset < 0 || offset > fr.size {
		return nil, ErrOutsideBoundary
	}
	end := offset + int64(length)
	if end > fr.size {
		end = fr.size
	}
	if end <= offset {
		return []byte{}, nil
	}

	if fr.residentData != nil {
		return append([]byte(nil), fr.residentData[offset:end]...), nil
	}

	out := make([]byte, end-offset)
	var clusterStart int64 // byte offset of the start of the current run
	remainingStart := offset
	filled := int64(0)

	for _, run := range fr.runs {
		runBytes := run.LengthCluster * fr.clusterSize
		runEnd := clusterStart + runBytes

		overlapStart := max64(offset, clusterStart)
		overlapEnd := min64(end, runEnd)
		if overlapStart < overlapEnd {
			withinRun := overlapStart - clusterStart
			n := overlapEnd - overlapStart
			if run.Sparse {
				// zero-filled, out is already zero-valued
			} else {
				devOffset := run.StartCluster*fr.clusterSize + withinRun
				if _, err := fr.dev.ReadAt(out[overlapStart-offset:overlapStart-offset+n], devOffset); err != nil {
					return nil, err
				}
			}
			filled += n
		}
		clusterStart = runEnd
		if clusterStart >= end {
			break
		}
	}
	_ = remainingStart
	return out, nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
