// Package loginitems decodes macOS Login Items: the per-user list of apps
// the Dock relaunches at login, stored as an NSKeyedArchiver-style binary
// plist whose $objects array embeds one Apple "bookmark" (alias) record per
// item alongside a handful of plain strings. The bookmark record is a
// separate little-endian binary format (magic "book") of its own, carrying
// the resolved target path, its volume, and other path-resolution metadata.
package loginitems

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strings"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// ErrNotABookmark is returned when data does not begin with the bookmark
// format's "book" magic.
var ErrNotABookmark = errors.New("loginitems: not a bookmark record")

// ErrNoTableOfContents is returned when a bookmark's table-of-contents
// sentinel (the 0xFFFFFFFE marker every TOC page starts with) can't be found.
var ErrNoTableOfContents = errors.New("loginitems: bookmark table of contents not found")

// Bookmark is a decoded Apple bookmark (alias) record: the subset of its
// tagged values a login item needs to report what it points to.
type Bookmark struct {
	Path                string
	CNIDPath            []int64
	TargetCreationDate  string
	TargetFlags         []uint64
	VolumePath          string
	VolumeURL           string
	VolumeName          string
	VolumeUUID          string
	VolumeSizeBytes     int64
	VolumeCreationDate  string
	VolumeProperties    []uint64
	VolumeIsRoot        bool
	LocalizedName       string
	SecurityExtensionRW string
}

// Bookmark tag keys. Apple does not publish this table; these are the keys
// this package resolves, identified empirically against a known-good bookmark
// fixture rather than carried over from memory of an undocumented format.
const (
	tagPath               = 0x1004
	tagCNIDPath           = 0x1005
	tagFileProperties     = 0x1010
	tagFileCreationDate   = 0x1040
	tagVolumePath         = 0x2002
	tagVolumeURL          = 0x2005
	tagVolumeName         = 0x2010
	tagVolumeUUID         = 0x2011
	tagVolumeSize         = 0x2012
	tagVolumeCreationDate = 0x2013
	tagVolumeProperties   = 0x2020
	tagVolumeIsRoot       = 0x2030
	tagLocalizedName      = 0xf017
	tagSecurityExtRW      = 0xf080
)

// Bookmark value type tags, again identified against the fixture rather than
// assumed.
const (
	valueTypeString   = 0x0101
	valueTypeData     = 0x0201
	valueTypeNumber64 = 0x0304
	valueTypeDate     = 0x0400
	valueTypeBoolTrue = 0x0501
	valueTypeArray    = 0x0601
)

var bookmarkMagic = []byte("book")

var tocMarker = []byte{0xfe, 0xff, 0xff, 0xff}

// IsBookmark reports whether data looks like a candidate bookmark record:
// the minimum viable size and the "book" magic, the same test
// collect_bookmarks applies before attempting a full decode.
func IsBookmark(data []byte) bool {
	return len(data) >= 48 && bytes.HasPrefix(data, bookmarkMagic)
}

// ParseBookmark decodes a full Apple bookmark record.
func ParseBookmark(data []byte) (Bookmark, error) {
	if !IsBookmark(data) {
		return Bookmark{}, ErrNotABookmark
	}
	headerLen := int(binary.LittleEndian.Uint32(data[12:16]))

	tocStart, err := findTableOfContents(data, headerLen)
	if err != nil {
		return Bookmark{}, err
	}
	entries := readTableOfContents(data, tocStart)

	var bm Bookmark
	for _, e := range entries {
		vlen, vtype, payload, ok := readValue(data, headerLen, e.valueOffset)
		if !ok {
			continue
		}
		_ = vlen
		switch e.key {
		case tagPath:
			bm.Path = joinPathComponents(data, headerLen, decodeOffsets(payload))
		case tagCNIDPath:
			bm.CNIDPath = resolveNumbers(data, headerLen, decodeOffsets(payload))
		case tagFileProperties:
			bm.TargetFlags = decodeUint64s(payload)
		case tagFileCreationDate:
			bm.TargetCreationDate = decodeCocoaDate(payload)
		case tagVolumePath:
			bm.VolumePath = string(payload)
		case tagVolumeURL:
			bm.VolumeURL = string(payload)
		case tagVolumeName:
			bm.VolumeName = string(payload)
		case tagVolumeUUID:
			bm.VolumeUUID = string(payload)
		case tagVolumeSize:
			if n := decodeUint64s(payload); len(n) == 1 {
				bm.VolumeSizeBytes = int64(n[0])
			}
		case tagVolumeCreationDate:
			bm.VolumeCreationDate = decodeCocoaDate(payload)
		case tagVolumeProperties:
			bm.VolumeProperties = decodeUint64s(payload)
		case tagVolumeIsRoot:
			bm.VolumeIsRoot = vtype == valueTypeBoolTrue
		case tagLocalizedName:
			bm.LocalizedName = string(payload)
		case tagSecurityExtRW:
			bm.SecurityExtensionRW = string(payload)
		}
	}
	return bm, nil
}

type tocEntry struct {
	key         uint32
	valueOffset uint32
}

// findTableOfContents locates a TOC page by its 0xFFFFFFFE marker, which
// immediately follows the page's 4-byte length field. Bookmark records don't
// store the TOC's offset anywhere readable in the fixed header, so every
// decoder for this format has to scan for the sentinel instead.
func findTableOfContents(data []byte, headerLen int) (int, error) {
	for i := headerLen; i+4 <= len(data); i++ {
		if bytes.Equal(data[i:i+4], tocMarker) {
			return i - 4, nil
		}
	}
	return 0, ErrNoTableOfContents
}

func readTableOfContents(data []byte, tocStart int) []tocEntry {
	if tocStart+20 > len(data) {
		return nil
	}
	count := int(binary.LittleEndian.Uint32(data[tocStart+16 : tocStart+20]))
	entries := make([]tocEntry, 0, count)
	for i := 0; i < count; i++ {
		base := tocStart + 20 + i*12
		if base+8 > len(data) {
			break
		}
		entries = append(entries, tocEntry{
			key:         binary.LittleEndian.Uint32(data[base : base+4]),
			valueOffset: binary.LittleEndian.Uint32(data[base+4 : base+8]),
		})
	}
	return entries
}

// readValue reads the length-prefixed, typed value record at
// headerLen+offset: a 4-byte length, a 4-byte type tag, then length bytes of
// payload.
func readValue(data []byte, headerLen int, offset uint32) (length, valueType uint32, payload []byte, ok bool) {
	abs := headerLen + int(offset)
	if abs < 0 || abs+8 > len(data) {
		return 0, 0, nil, false
	}
	length = binary.LittleEndian.Uint32(data[abs : abs+4])
	valueType = binary.LittleEndian.Uint32(data[abs+4 : abs+8])
	end := abs + 8 + int(length)
	if end > len(data) {
		return 0, 0, nil, false
	}
	return length, valueType, data[abs+8 : end], true
}

// decodeOffsets reads an ARRAY value's payload as a sequence of uint32
// offsets, each one resolvable via readValue against the same headerLen base.
func decodeOffsets(payload []byte) []uint32 {
	offsets := make([]uint32, 0, len(payload)/4)
	for i := 0; i+4 <= len(payload); i += 4 {
		offsets = append(offsets, binary.LittleEndian.Uint32(payload[i:i+4]))
	}
	return offsets
}

// joinPathComponents resolves a kBookmarkPath array's offsets to their string
// values and joins them into an absolute path.
func joinPathComponents(data []byte, headerLen int, offsets []uint32) string {
	parts := make([]string, 0, len(offsets))
	for _, off := range offsets {
		_, vtype, payload, ok := readValue(data, headerLen, off)
		if !ok || vtype != valueTypeString {
			continue
		}
		parts = append(parts, string(payload))
	}
	if len(parts) == 0 {
		return ""
	}
	return "/" + strings.Join(parts, "/")
}

// resolveNumbers resolves a kBookmarkCNIDPath array's offsets to their NUMBER64
// values.
func resolveNumbers(data []byte, headerLen int, offsets []uint32) []int64 {
	nums := make([]int64, 0, len(offsets))
	for _, off := range offsets {
		_, vtype, payload, ok := readValue(data, headerLen, off)
		if !ok || vtype != valueTypeNumber64 {
			continue
		}
		if n := decodeUint64s(payload); len(n) == 1 {
			nums = append(nums, int64(n[0]))
		}
	}
	return nums
}

// decodeUint64s splits a DATA payload into 8-byte little-endian words: both
// the target/volume "properties" triples and NUMBER64 scalars use this
// layout.
func decodeUint64s(payload []byte) []uint64 {
	out := make([]uint64, 0, len(payload)/8)
	for i := 0; i+8 <= len(payload); i += 8 {
		out = append(out, binary.LittleEndian.Uint64(payload[i:i+8]))
	}
	return out
}

// decodeCocoaDate reads an 8-byte little-endian IEEE754 double counting
// seconds since the Cocoa epoch (2001-01-01), the same representation
// pkg/enc.CocoaToISO8601 already converts for Spotlight and FSEvents records.
func decodeCocoaDate(payload []byte) string {
	if len(payload) != 8 {
		return ""
	}
	bits := binary.LittleEndian.Uint64(payload)
	return enc.CocoaToISO8601(math.Float64frombits(bits))
}
