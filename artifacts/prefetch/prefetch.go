// Package prefetch decodes Windows Prefetch (.pf) files: compressed
// (MAM\x04, LZXPRESS-Huffman) and uncompressed (SCCA) headers across
// versions 17, 23, 26, 30, and 31.
package prefetch

import (
	"encoding/binary"
	"errors"

	"github.com/puffyCid/artemis-sub004/pkg/compress"
	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// Version identifies the on-disk Prefetch format revision.
type Version uint32

const (
	VersionXP   Version = 17
	VersionWin8 Version = 23
	VersionWin81 Version = 26
	VersionWin10 Version = 30
	VersionWin11 Version = 31
)

// ErrNotPrefetch is returned when neither the compressed nor the
// uncompressed header signature matches.
var ErrNotPrefetch = errors.New("prefetch: not a prefetch file")

// ErrTruncated is returned when a declared table extends past the file.
var ErrTruncated = errors.New("prefetch: truncated record")

// Volume is one entry of a Prefetch file's volume table.
type Volume struct {
	Serial   string
	Created  string // ISO-8601
	Path     string
}

// Record is one fully decoded Prefetch file.
type Record struct {
	Filename           string
	Hash               string
	Version            Version
	RunCount           uint32
	RunTimes           []string // ISO-8601
	AccessedFiles      []string
	AccessedDirectories []string
	Volumes            []Volume
}

// Parse detects and decodes raw Prefetch bytes (already decompressed if
// necessary by the caller's raw-I/O read, or decompressed internally when
// the MAM\x04 signature is present).
func Parse(raw []byte) (Record, error) {
	if len(raw) < 8 {
		return Record{}, ErrNotPrefetch
	}

	if string(raw[0:3]) == "MAM" && raw[3] == 0x04 {
		uncompressedSize := binary.LittleEndian.Uint32(raw[4:8])
		decompressed, err := compress.LZXPRESSHuffmanDecompress(raw[8:], int(uncompressedSize))
		if err != nil {
			return Record{}, err
		}
		raw = decompressed
	}

	if len(raw) < 84 || string(raw[4:8]) != "SCCA" {
		return Record{}, ErrNotPrefetch
	}

	version := Version(binary.LittleEndian.Uint32(raw[0:4]))
	filename := decodeFixedUTF16(raw[16:76])
	hash := encodeHex32(binary.LittleEndian.Uint32(raw[76:80]))

	rec := Record{Filename: filename, Hash: hash, Version: version}

	switch version {
	case VersionXP:
		parseV17(raw, &rec)
	case VersionWin8:
		parseV23(raw, &rec)
	case VersionWin81, VersionWin10, VersionWin11:
		parseV26Plus(raw, &rec)
	default:
		// Unknown version: header fields beyond the common prefix are not
		// interpreted; filename/hash are still reported.
	}

	return rec, nil
}

func decodeFixedUTF16(b []byte) string {
	return enc.UTF16LE(b)
}

func encodeHex32(v uint32) string {
	const hexDigits = "0123456789ABCDEF"
	out := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		out[i] = hexDigits[v&0xF]
		v >>= 4
	}
	return string(out)
}

// fileInformationOffset locates the format-specific "file information"
// structure, which begins right after the common 84-byte header on every
// version this package supports.
const fileInformationOffset = 84

func parseV17(raw []byte, rec *Record) {
	if len(raw) < fileInformationOffset+68 {
		return
	}
	fi := raw[fileInformationOffset:]
	metricsOffset := binary.LittleEndian.Uint32(fi[0:4])
	metricsCount := binary.LittleEndian.Uint32(fi[4:8])
	filenameStringsOffset := binary.LittleEndian.Uint32(fi[8:12])
	filenameStringsSize := binary.LittleEndian.Uint32(fi[12:16])
	volumeInfoOffset := binary.LittleEndian.Uint32(fi[16:20])
	volumeInfoCount := binary.LittleEndian.Uint32(fi[20:24])
	volumeInfoSize := binary.LittleEndian.Uint32(fi[24:28])
	rec.RunTimes = []string{filetimeAt(fi, 28)}
	rec.RunCount = binary.LittleEndian.Uint32(fi[36:40])

	rec.AccessedFiles, rec.AccessedDirectories = parseFilenameStrings(raw, filenameStringsOffset, filenameStringsSize)
	_ = metricsOffset
	_ = metricsCount
	rec.Volumes = parseVolumeTable(raw, volumeInfoOffset, volumeInfoCount, volumeInfoSize)
}

func parseV23(raw []byte, rec *Record) {
	if len(raw) < fileInformationOffset+156 {
		return
	}
	fi := raw[fileInformationOffset:]
	filenameStringsOffset := binary.LittleEndian.Uint32(fi[8:12])
	filenameStringsSize := binary.LittleEndian.Uint32(fi[12:16])
	volumeInfoOffset := binary.LittleEndian.Uint32(fi[16:20])
	volumeInfoCount := binary.LittleEndian.Uint32(fi[20:24])
	volumeInfoSize := binary.LittleEndian.Uint32(fi[24:28])

	var runTimes []string
	for i := 0; i < 8; i++ {
		runTimes = append(runTimes, filetimeAt(fi, 44+i*8))
	}
	rec.RunTimes = runTimes
	rec.RunCount = binary.LittleEndian.Uint32(fi[124:128])

	rec.AccessedFiles, rec.AccessedDirectories = parseFilenameStrings(raw, filenameStringsOffset, filenameStringsSize)
	rec.Volumes = parseVolumeTable(raw, volumeInfoOffset, volumeInfoCount, volumeInfoSize)
}

func parseV26Plus(raw []byte, rec *Record) {
	if len(raw) < fileInformationOffset+224 {
		return
	}
	fi := raw[fileInformationOffset:]
	filenameStringsOffset := binary.LittleEndian.Uint32(fi[8:12])
	filenameStringsSize := binary.LittleEndian.Uint32(fi[12:16])
	volumeInfoOffset := binary.LittleEndian.Uint32(fi[16:20])
	volumeInfoCount := binary.LittleEndian.Uint32(fi[20:24])
	volumeInfoSize := binary.LittleEndian.Uint32(fi[24:28])

	var runTimes []string
	for i := 0; i < 8; i++ {
		runTimes = append(runTimes, filetimeAt(fi, 44+i*8))
	}
	rec.RunTimes = runTimes
	rec.RunCount = binary.LittleEndian.Uint32(fi[148:152])

	rec.AccessedFiles, rec.AccessedDirectories = parseFilenameStrings(raw, filenameStringsOffset, filenameStringsSize)
	rec.Volumes = parseVolumeTable(raw, volumeInfoOffset, volumeInfoCount, volumeInfoSize)
}

func filetimeAt(b []byte, offset int) string {
	if offset+8 > len(b) {
		return enc.FILETIMEToISO8601(0)
	}
	return enc.FILETIMEToISO8601(binary.LittleEndian.Uint64(b[offset : offset+8]))
}

// parseFilenameStrings reads the NUL-terminated UTF-16LE filename-strings
// table and splits it into accessed files (have an extension) vs.
// accessed directories (do not), the conventional distinction prefetch
// tooling draws from this single flat table.
func parseFilenameStrings(raw []byte, offset, size uint32) (files, dirs []string) {
	if uint64(offset)+uint64(size) > uint64(len(raw)) {
		return nil, nil
	}
	region := raw[offset : offset+size]

	var cur []uint16
	flush := func() {
		if len(cur) == 0 {
			return
		}
		s := enc.UTF16LEFixed(uint16SliceToBytes(cur), len(cur))
		cur = cur[:0]
		if hasFileExtension(s) {
			files = append(files, s)
		} else {
			dirs = append(dirs, s)
		}
	}
	for i := 0; i+1 < len(region); i += 2 {
		v := binary.LittleEndian.Uint16(region[i : i+2])
		if v == 0 {
			flush()
			continue
		}
		cur = append(cur, v)
	}
	flush()
	return files, dirs
}

func hasFileExtension(s string) bool {
	for i := len(s) - 1; i >= 0 && i > len(s)-6; i-- {
		if s[i] == '.' {
			return true
		}
		if s[i] == '\\' {
			return false
		}
	}
	return false
}

func uint16SliceToBytes(u []uint16) []byte {
	out := make([]byte, len(u)*2)
	for i, v := range u {
		binary.LittleEndian.PutUint16(out[i*2:i*2+2], v)
	}
	return out
}

// parseVolumeTable decodes the volume information array: each entry
// carries a device-path offset/length, creation FILETIME, and serial
// number, all relative to the start of this table.
func parseVolumeTable(raw []byte, offset, count, _ uint32) []Volume {
	if uint64(offset) >= uint64(len(raw)) {
		return nil
	}
	entrySize := uint32(104) // version 23+ fixed volume-info-entry size
	var volumes []Volume
	for i := uint32(0); i < count; i++ {
		entryStart := offset + i*entrySize
		if uint64(entryStart)+uint64(entrySize) > uint64(len(raw)) {
			break
		}
		entry := raw[entryStart : entryStart+entrySize]
		pathOffset := binary.LittleEndian.Uint32(entry[0:4])
		pathLength := binary.LittleEndian.Uint32(entry[4:8])
		created := binary.LittleEndian.Uint64(entry[8:16])
		serial := binary.LittleEndian.Uint32(entry[16:20])

		pathStart := offset + pathOffset
		pathEnd := pathStart + pathLength*2
		var path string
		if uint64(pathEnd) <= uint64(len(raw)) {
			path = enc.UTF16LEFixed(raw[pathStart:pathEnd], int(pathLength))
		}

		volumes = append(volumes, Volume{
			Serial:  encodeHex32(serial),
			Created: enc.FILETIMEToISO8601(created),
			Path:    path,
		})
	}
	return volumes
}
