// Package ese implements enough of the Extensible Storage Engine (Jet Blue)
// on-disk format to stream rows out of the system tables Windows Search,
// WMI, and BITS build on: page headers, the tag array, the catalog, and
// long-value reassembly.
package ese

import (
	"encoding/binary"
	"errors"
)

// ErrInvalidPage is returned when a page's header fails its basic sanity
// checks (impossible tag count, size mismatch).
var ErrInvalidPage = errors.New("ese: invalid page")

// ErrOutsideBoundary is returned when a tag or record would read past its
// page.
var ErrOutsideBoundary = errors.New("ese: read outside page boundary")

// Supported page sizes.
const (
	PageSize4K  = 4096
	PageSize16K = 16384
	PageSize32K = 32768
)

// pageHeaderSize is the common (post-Windows-Vista) extended page header,
// used uniformly across the supported page sizes; large pages carry extra
// padding after this fixed region, not a different header shape.
const pageHeaderSize = 40

// tagCountMask masks the 12-bit field Windows 11 24H2 uses for the
// available-page-tag count; the remaining 4 high bits of the same 16-bit
// field are flags unrelated to the count and must not be treated as part
// of it.
const tagCountMask = 0x0FFF

// Tag is one decoded entry of a page's tag array: the byte range within
// the page holding one record (or a branch of the catalog/long-value
// B-tree), plus its flags.
type Tag struct {
	Offset uint16
	Size   uint16
	Flags  uint8
}

// Page is a parsed ESE database page.
type Page struct {
	PageNumber uint32
	PrevPage   uint32
	NextPage   uint32
	ObjidFDP   uint32
	Flags      uint32
	Tags       []Tag
	raw        []byte
}

// IsLeaf reports whether the page is a B-tree leaf page (as opposed to a
// branch/internal page).
func (p *Page) IsLeaf() bool { return p.Flags&0x0002 != 0 }

// IsRoot reports whether the page is a B-tree root page.
func (p *Page) IsRoot() bool { return p.Flags&0x0001 != 0 }

// TagData returns the raw bytes for tag i.
func (p *Page) TagData(i int) ([]byte, error) {
	if i < 0 || i >= len(p.Tags) {
		return nil, ErrOutsideBoundary
	}
	t := p.Tags[i]
	start := pageHeaderSize + int(t.Offset)
	end := start + int(t.Size)
	if start < 0 || end > len(p.raw) || end < start {
		return nil, ErrOutsideBoundary
	}
	return p.raw[start:end], nil
}

// ParsePage decodes one page of pageSize bytes. largePage controls whether
// tag flags are read from the trailer (pageSize <= 8192, the historical
// layout) or from the high bits of each tag's own offset field (16K/32K
// pages: "tag flags live at the tag's offset, not in the
// trailer; a second pass patches them").
func ParsePage(raw []byte, pageSize int) (*Page, error) {
	if len(raw) != pageSize || len(raw) < pageHeaderSize {
		return nil, ErrInvalidPage
	}
	largePage := pageSize > 8192

	p := &Page{
		PageNumber: binary.LittleEndian.Uint32(raw[4:8]),
		PrevPage:   binary.LittleEndian.Uint32(raw[16:20]),
		NextPage:   binary.LittleEndian.Uint32(raw[20:24]),
		ObjidFDP:   binary.LittleEndian.Uint32(raw[24:28]),
		Flags:      binary.LittleEndian.Uint32(raw[32:36]),
		raw:        raw,
	}

	availTagField := binary.LittleEndian.Uint16(raw[36:38])
	tagCount := int(availTagField & tagCountMask)

	tags := make([]Tag, 0, tagCount)
	for i := 0; i < tagCount; i++ {
		entryOffset := len(raw) - (i+1)*4
		if entryOffset < pageHeaderSize {
			return nil, ErrOutsideBoundary
		}
		entry := raw[entryOffset : entryOffset+4]
		valueOffset := binary.LittleEndian.Uint16(entry[0:2])
		valueSize := binary.LittleEndian.Uint16(entry[2:4])

		var tag Tag
		if largePage {
			// Flags live in the top 3 bits of the offset word at the
			// tag's own data location, not in this trailer entry; the
			// trailer here carries only offset (13 bits) and size
			// (13 bits low, 3 bits unused).
			tag = Tag{Offset: valueOffset & 0x1FFF, Size: valueSize & 0x1FFF}
		} else {
			tag = Tag{
				Offset: valueOffset & 0x1FFF,
				Size:   valueSize & 0x1FFF,
				Flags:  uint8(valueSize >> 13),
			}
		}
		tags = append(tags, tag)
	}

	if largePage {
		// Second pass: patch in the flags that live at the tag's own
		// offset within the page body for large pages.
		for i := range tags {
			start := pageHeaderSize + int(tags[i].Offset)
			if start+2 > len(raw) {
				continue
			}
			flagWord := binary.LittleEndian.Uint16(raw[start : start+2])
			tags[i].Flags = uint8(flagWord >> 13)
		}
	}

	p.Tags = tags
	return p, nil
}
