// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package peresource

import "encoding/binary"

type imageSectionHeader struct {
	Name                 [8]uint8
	VirtualSize          uint32
	VirtualAddress       uint32
	SizeOfRawData        uint32
	PointerToRawData     uint32
	PointerToRelocations uint32
	PointerToLineNumbers uint32
	NumberOfRelocations  uint16
	NumberOfLineNumbers  uint16
	Characteristics      uint32
}

// parseSectionHeaders reads the section table that immediately follows the
// optional header; it is required to translate resource-directory RVAs into
// file offsets.
func (img *Image) parseSectionHeaders() error {
	offset := img.ntHeader.optionalHdrOffset + uint32(img.ntHeader.fileHeader.SizeOfOptionalHeader)
	var hdr imageSectionHeader
	hdrSize := uint32(binary.Size(hdr))

	n := img.ntHeader.fileHeader.NumberOfSections
	img.sections = make([]imageSectionHeader, 0, n)
	for i := uint16(0); i < n; i++ {
		if err := img.structUnpack(&hdr, offset, hdrSize); err != nil {
			return err
		}
		img.sections = append(img.sections, hdr)
		offset += hdrSize
	}
	return nil
}

// rvaToOffset converts a relative virtual address to a file offset by
// locating the section whose virtual range contains it.
func (img *Image) rvaToOffset(rva uint32) uint32 {
	for _, s := range img.sections {
		size := s.VirtualSize
		if size == 0 {
			size = s.SizeOfRawData
		}
		if rva >= s.VirtualAddress && rva < s.VirtualAddress+size {
			return rva - s.VirtualAddress + s.PointerToRawData
		}
	}
	// Fall back to a 1:1 mapping, typical of unsectioned or already
	// file-offset addresses (e.g. the resource directory root rva itself
	// when called before section headers resolve cleanly).
	return rva
}
