// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package peresource

import (
	"encoding/binary"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// Resource type IDs relevant to event-log message resolution.
const (
	RTString       = 6
	RTMessageTable = 11
	RTVersion      = 16
)

// wevtTemplateName is the well-known resource name carrying a provider's
// binary event template (WEVT_TEMPLATE), addressed by name rather than ID.
const wevtTemplateName = "WEVT_TEMPLATE"

type imageResourceDirectory struct {
	Characteristics      uint32
	TimeDateStamp        uint32
	MajorVersion         uint16
	MinorVersion         uint16
	NumberOfNamedEntries uint16
	NumberOfIDEntries    uint16
}

type imageResourceDirectoryEntry struct {
	Name         uint32
	OffsetToData uint32
}

type imageResourceDataEntry struct {
	OffsetToData uint32
	Size         uint32
	CodePage     uint32
	Reserved     uint32
}

// resourceLeaf is one resolved (type, name-or-id, lang) -> raw bytes mapping.
type resourceLeaf struct {
	Type    uint32
	Name    string
	ID      uint32
	Lang    uint16
	Data    []byte
}

type resourceDirectory struct {
	Leaves []resourceLeaf
}

const maxAllowedEntries = 0x1000

// walkResourceDirectory recurses the three-level resource tree (type / name /
// language), guarding against directory-entry cycles the same way the
// registry walker does: every directory RVA visited during the walk is
// tracked, and a second visit returns instead of looping forever.
func (img *Image) walkResourceDirectory(rva, baseRVA uint32, level int, typeID uint32, name string, id uint32, visited map[uint32]bool) {
	if visited[rva] {
		return
	}
	visited[rva] = true

	var dir imageResourceDirectory
	dirSize := uint32(binary.Size(dir))
	offset := img.rvaToOffset(rva)
	if err := img.structUnpack(&dir, offset, dirSize); err != nil {
		return
	}

	entryRVA := rva + dirSize
	count := int(dir.NumberOfNamedEntries) + int(dir.NumberOfIDEntries)
	if count > maxAllowedEntries {
		return
	}

	var entry imageResourceDirectoryEntry
	entrySize := uint32(binary.Size(entry))
	for i := 0; i < count; i++ {
		entryOffset := img.rvaToOffset(entryRVA)
		if err := img.structUnpack(&entry, entryOffset, entrySize); err != nil {
			break
		}

		entryName := ""
		entryID := uint32(0)
		if entry.Name&0x80000000 != 0 {
			nameOffset := baseRVA + (entry.Name &^ 0x80000000)
			entryName = img.readUnicodeResourceName(nameOffset)
		} else {
			entryID = entry.Name
		}

		dataIsDir := entry.OffsetToData&0x80000000 != 0
		childRVA := baseRVA + (entry.OffsetToData &^ 0x80000000)

		switch level {
		case 0:
			if dataIsDir {
				img.walkResourceDirectory(childRVA, baseRVA, 1, entryID, entryName, 0, visited)
			}
		case 1:
			if dataIsDir {
				img.walkResourceDirectory(childRVA, baseRVA, 2, typeID, entryName, entryID, visited)
			}
		default:
			if !dataIsDir {
				img.emitLeaf(childRVA, baseRVA, typeID, name, id, uint16(entry.Name&0x3ff))
			}
		}
		entryRVA += entrySize
	}
}

func (img *Image) emitLeaf(dataEntryRVA, baseRVA, typeID uint32, name string, id uint32, lang uint16) {
	var de imageResourceDataEntry
	deSize := uint32(binary.Size(de))
	if err := img.structUnpack(&de, img.rvaToOffset(dataEntryRVA), deSize); err != nil {
		return
	}
	data, err := img.readBytesAt(img.rvaToOffset(de.OffsetToData), de.Size)
	if err != nil {
		return
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	img.resources.Leaves = append(img.resources.Leaves, resourceLeaf{
		Type: typeID, Name: name, ID: id, Lang: lang, Data: cp,
	})
}

func (img *Image) readUnicodeResourceName(offset uint32) string {
	fileOffset := img.rvaToOffset(offset)
	length, err := img.readUint16(fileOffset)
	if err != nil {
		return ""
	}
	b, err := img.readBytesAt(fileOffset+2, uint32(length)*2)
	if err != nil {
		return ""
	}
	return enc.UTF16LEFixed(b, int(length))
}

// parseResourceDirectory walks the whole resource tree once and caches it.
func (img *Image) parseResourceDirectory() error {
	if img.hasResDir {
		return nil
	}
	dd, ok := img.resourceDataDirectory()
	if !ok {
		return ErrNoResourceDirectory
	}
	img.walkResourceDirectory(dd.VirtualAddress, dd.VirtualAddress, 0, 0, "", 0, map[uint32]bool{})
	img.hasResDir = true
	return nil
}

// FindResourceByID returns the raw bytes of a numeric resource (e.g.
// RTMessageTable), preferring the requested language and falling back to the
// first language present.
func (img *Image) FindResourceByID(typeID uint32, id uint32, lang uint16) ([]byte, error) {
	if err := img.parseResourceDirectory(); err != nil {
		return nil, err
	}
	var fallback []byte
	for _, leaf := range img.resources.Leaves {
		if leaf.Type != typeID || leaf.ID != id {
			continue
		}
		if leaf.Lang == lang {
			return leaf.Data, nil
		}
		if fallback == nil {
			fallback = leaf.Data
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, ErrResourceNotFound
}

// FindResourceByName returns the raw bytes of a named resource, such as
// WEVT_TEMPLATE.
func (img *Image) FindResourceByName(name string) ([]byte, error) {
	if err := img.parseResourceDirectory(); err != nil {
		return nil, err
	}
	for _, leaf := range img.resources.Leaves {
		if leaf.Name == name {
			return leaf.Data, nil
		}
	}
	return nil, ErrResourceNotFound
}

// FindWEVTTemplate returns the raw WEVT_TEMPLATE provider-template blob.
func (img *Image) FindWEVTTemplate() ([]byte, error) {
	return img.FindResourceByName(wevtTemplateName)
}
