package ntfs

import (
	"encoding/binary"
	"errors"
	"path"
	"strings"
)

// ErrVolumeInit is returned when the boot sector does not describe a valid
// NTFS volume.
var ErrVolumeInit = errors.New("ntfs: not an NTFS volume")

// RawDevice is the minimal random-access read interface a raw volume
// backend (an open \\.\C: handle, a raw block device) must satisfy.
type RawDevice interface {
	ReadAt(p []byte, off int64) (int, error)
	Close() error
}

// Volume is an opened NTFS volume: boot-sector geometry plus a handle to
// the $MFT's own data runs, shared read-only by every FileReader opened
// from it for the remainder of the collection.
type Volume struct {
	dev               RawDevice
	bytesPerSector    uint16
	sectorsPerCluster uint8
	mftRecordSize     int32
	mftRuns           []Extent
	mftDataSize       int64
}

func (v *Volume) clusterSize() int64 {
	return int64(v.bytesPerSector) * int64(v.sectorsPerCluster)
}

// OpenVolume parses the NTFS boot sector from dev and locates $MFT (record
// 0), the entry every other lookup starts from.
func OpenVolume(dev RawDevice) (*Volume, error) {
	boot := make([]byte, 512)
	if _, err := dev.ReadAt(boot, 0); err != nil {
		return nil, err
	}
	if string(boot[3:7]) != "NTFS" {
		return nil, ErrVolumeInit
	}

	v := &Volume{
		dev:               dev,
		bytesPerSector:    binary.LittleEndian.Uint16(boot[11:13]),
		sectorsPerCluster: boot[13],
	}

	mftStartCluster := int64(binary.LittleEndian.Uint64(boot[48:56]))
	rawClustersPerRecord := int8(boot[64])
	if rawClustersPerRecord < 0 {
		v.mftRecordSize = 1 << uint(-rawClustersPerRecord)
	} else {
		v.mftRecordSize = int32(rawClustersPerRecord) * int32(v.clusterSize())
	}

	mftOffset := mftStartCluster * v.clusterSize()
	mftRecord0 := make([]byte, v.mftRecordSize)
	if _, err := dev.ReadAt(mftRecord0, mftOffset); err != nil {
		return nil, err
	}
	rec, err := ParseRecord(mftRecord0, int(v.bytesPerSector))
	if err != nil {
		return nil, err
	}
	dataAttr, ok := rec.FindAttribute(AttrData)
	if !ok || dataAttr.Resident {
		return nil, ErrVolumeInit
	}
	v.mftRuns = dataAttr.Runs
	v.mftDataSize = dataAttr.DataSize
	return v, nil
}

// ReadRecord reads and parses MFT record number n.
func (v *Volume) ReadRecord(n uint64) (*Record, error) {
	fr := &FileReader{dev: v.dev, runs: v.mftRuns, clusterSize: v.clusterSize(), size: v.mftDataSize}
	raw, err := fr.ReadAt(int64(n)*int64(v.mftRecordSize), int(v.mftRecordSize))
	if err != nil {
		return nil, err
	}
	return ParseRecord(raw, int(v.bytesPerSector))
}

// recordCount returns how many MFT entries the volume's $MFT $DATA holds.
func (v *Volume) recordCount() uint64 {
	return uint64(v.mftDataSize) / uint64(v.mftRecordSize)
}

// OpenPath resolves rel (a volume-relative, backslash-delimited path) to a
// FileReader over its $DATA runs.
//
// Full path resolution walks each directory's $INDEX_ROOT/$INDEX_ALLOCATION
// B-tree; that index format is not detailed in this build's scope, so this
// resolves by a bounded linear scan of $MFT and returns the first in-use,
// non-directory record whose first $FILE_NAME matches the final path
// component (case-insensitively). The parent directories in rel are not
// checked, so when several files share a base name the one with the
// lowest record number is returned.
func (v *Volume) OpenPath(rel string) (*FileReader, error) {
	wanted := strings.Split(strings.Trim(path.Clean(strings.ReplaceAll(rel, `\`, "/")), "/"), "/")
	if len(wanted) == 0 {
		return nil, ErrOutsideBoundary
	}
	target := wanted[len(wanted)-1]

	total := v.recordCount()
	for n := uint64(0); n < total; n++ {
		rec, err := v.ReadRecord(n)
		if err != nil || !rec.InUse() || rec.IsDirectory() {
			continue
		}
		fn, ok := firstFileName(rec)
		if !ok || !strings.EqualFold(fn.Name, target) {
			continue
		}

		dataAttr, ok := rec.FindAttribute(AttrData)
		if !ok {
			continue
		}
		if dataAttr.Resident {
			return &FileReader{residentData: dataAttr.ResidentData, size: int64(len(dataAttr.ResidentData))}, nil
		}
		return &FileReader{dev: v.dev, runs: dataAttr.Runs, clusterSize: v.clusterSize(), size: dataAttr.DataSize}, nil
	}
	return nil, ErrOutsideBoundary
}

func firstFileName(rec *Record) (FileName, bool) {
	for _, a := range rec.Attributes {
		if a.Type == AttrFileName && a.Resident {
			fn, err := ParseFileName(a.ResidentData)
			if err == nil {
				return fn, true
			}
		}
	}
	return FileName{}, false
}
