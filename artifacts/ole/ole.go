// Package ole decodes OLE2/Compound File Binary Format containers ([MS-CFB]
// v3): the 512-byte header, FAT sector chains, and directory-entry tree,
// used by Jump Lists (.automaticDestinations-ms) and other artifacts that
// embed shell-item graphs inside a compound-file stream.
package ole

import (
	"encoding/binary"
	"errors"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// ErrInvalidHeader is returned when raw doesn't begin with the CFB magic.
var ErrInvalidHeader = errors.New("ole: invalid compound file header")

var signature = [8]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// sector markers used throughout the FAT and directory chains.
const (
	sectorFree     = 0xFFFFFFFF
	sectorEndChain = 0xFFFFFFFE
	sectorFATSec   = 0xFFFFFFFD
	sectorDIFSec   = 0xFFFFFFFC
	noStream       = 0xFFFFFFFF
)

// EntryType classifies a directory entry.
type EntryType byte

const (
	EntryEmpty       EntryType = 0
	EntryStorage     EntryType = 1
	EntryStream      EntryType = 2
	EntryRootStorage EntryType = 5
)

// DirectoryEntry is one decoded directory-tree node.
type DirectoryEntry struct {
	Name       string
	Type       EntryType
	Left       uint32
	Right      uint32
	Child      uint32
	StartSector uint32
	StreamSize  uint64
	Modified    string
}

// File is a parsed compound file: its sector size, the decoded FAT
// (logical sector -> next sector or an end/free marker), and every
// directory entry in storage order.
type File struct {
	raw        []byte
	sectorSize int
	fat        []uint32
	Entries    []DirectoryEntry
}

// Open parses a complete OLE2 compound file image.
func Open(raw []byte) (*File, error) {
	if len(raw) < 512 {
		return nil, ErrInvalidHeader
	}
	var sig [8]byte
	copy(sig[:], raw[0:8])
	if sig != signature {
		return nil, ErrInvalidHeader
	}

	sectorShift := binary.LittleEndian.Uint16(raw[30:32])
	sectorSize := 1 << sectorShift
	numFATSectors := binary.LittleEndian.Uint32(raw[44:48])
	dirStart := binary.LittleEndian.Uint32(raw[48:52])

	f := &File{raw: raw, sectorSize: sectorSize}

	var fatSectorNums []uint32
	for i := 0; i < 109 && i < (len(raw)-76)/4; i++ {
		off := 76 + i*4
		n := binary.LittleEndian.Uint32(raw[off : off+4])
		if n == sectorFree {
			break
		}
		fatSectorNums = append(fatSectorNums, n)
		if uint32(len(fatSectorNums)) >= numFATSectors {
			break
		}
	}

	entriesPerSector := sectorSize / 4
	f.fat = make([]uint32, 0, len(fatSectorNums)*entriesPerSector)
	for _, sn := range fatSectorNums {
		sec, ok := f.sector(sn)
		if !ok {
			continue
		}
		for i := 0; i+4 <= len(sec); i += 4 {
			f.fat = append(f.fat, binary.LittleEndian.Uint32(sec[i:i+4]))
		}
	}

	f.Entries = f.readDirectoryChain(dirStart)
	return f, nil
}

// sector returns the raw bytes of logical sector n (sectors are indexed
// after the 512-byte header, per [MS-CFB]).
func (f *File) sector(n uint32) ([]byte, bool) {
	start := 512 + int(n)*f.sectorSize
	end := start + f.sectorSize
	if start < 0 || end > len(f.raw) {
		return nil, false
	}
	return f.raw[start:end], true
}

// chain follows the FAT from start until an end-of-chain marker, returning
// every sector's bytes concatenated.
func (f *File) chain(start uint32) []byte {
	var out []byte
	seen := map[uint32]bool{}
	n := start
	for n != sectorEndChain && n != sectorFree && int(n) < len(f.fat) {
		if seen[n] {
			break // cyclic FAT chain guard, same discipline as every tree walker
		}
		seen[n] = true
		sec, ok := f.sector(n)
		if !ok {
			break
		}
		out = append(out, sec...)
		n = f.fat[n]
	}
	return out
}

const directoryEntrySize = 128

// readDirectoryChain decodes every 128-byte directory entry reachable by
// following the FAT chain from the directory stream's first sector.
func (f *File) readDirectoryChain(start uint32) []DirectoryEntry {
	data := f.chain(start)
	var out []DirectoryEntry
	for pos := 0; pos+directoryEntrySize <= len(data); pos += directoryEntrySize {
		e := data[pos : pos+directoryEntrySize]
		nameLenBytes := binary.LittleEndian.Uint16(e[64:66])
		nameLen := int(nameLenBytes)
		if nameLen > 64 {
			nameLen = 64
		}
		if nameLen >= 2 {
			nameLen -= 2 // trailing NUL code unit
		} else {
			nameLen = 0
		}
		entry := DirectoryEntry{
			Name:        enc.UTF16LEFixed(e[0:64], nameLen/2),
			Type:        EntryType(e[66]),
			Left:        binary.LittleEndian.Uint32(e[68:72]),
			Right:       binary.LittleEndian.Uint32(e[72:76]),
			Child:       binary.LittleEndian.Uint32(e[76:80]),
			StartSector: binary.LittleEndian.Uint32(e[116:120]),
			StreamSize:  binary.LittleEndian.Uint64(e[120:128]),
			Modified:    enc.FILETIMEToISO8601(binary.LittleEndian.Uint64(e[108:116])),
		}
		if entry.Type == EntryEmpty {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// Stream returns the decoded byte content of the named stream, following
// its FAT chain and truncating to its declared size. Ministream-resident
// (small, <4096-byte) streams are read from the same regular-sector FAT
// chain as larger ones; the mini FAT and mini stream are not read.
func (f *File) Stream(name string) ([]byte, bool) {
	for _, e := range f.Entries {
		if e.Type == EntryStream && e.Name == name {
			data := f.chain(e.StartSector)
			if uint64(len(data)) > e.StreamSize {
				data = data[:e.StreamSize]
			}
			return data, true
		}
	}
	return nil, false
}
