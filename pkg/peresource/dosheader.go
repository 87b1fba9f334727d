// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package peresource

import "encoding/binary"

const (
	imageDOSSignature   = 0x5A4D // MZ
	imageDOSZMSignature = 0x4D5A // ZM
)

// imageDOSHeader is the MS-DOS stub every PE image begins with; the only
// field the resource walk needs out of it is e_lfanew.
type imageDOSHeader struct {
	Magic                    uint16
	BytesOnLastPageOfFile    uint16
	PagesInFile              uint16
	Relocations              uint16
	SizeOfHeader             uint16
	MinExtraParagraphsNeeded uint16
	MaxExtraParagraphsNeeded uint16
	InitialSS                uint16
	InitialSP                uint16
	Checksum                 uint16
	InitialIP                uint16
	InitialCS                uint16
	AddressOfRelocationTable uint16
	OverlayNumber            uint16
	ReservedWords1           [4]uint16
	OEMIdentifier            uint16
	OEMInformation           uint16
	ReservedWords2           [10]uint16
	AddressOfNewEXEHeader    uint32
}

func (img *Image) parseDOSHeader() error {
	size := uint32(binary.Size(img.dosHeader))
	if err := img.structUnpack(&img.dosHeader, 0, size); err != nil {
		return err
	}
	if img.dosHeader.Magic != imageDOSSignature && img.dosHeader.Magic != imageDOSZMSignature {
		return ErrDOSMagicNotFound
	}
	if img.dosHeader.AddressOfNewEXEHeader < 4 || img.dosHeader.AddressOfNewEXEHeader > img.size {
		return ErrInvalidElfanew
	}
	return nil
}
