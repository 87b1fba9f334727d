// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package peresource extracts the message-table, event-template, and MUI
// resources that the Windows event log parser needs from a PE image
// (EventMessageFile / ParameterMessageFile / MUI forwarder DLLs). It is not a
// general-purpose PE parser: only the header fields required to walk the
// resource directory are decoded.
package peresource

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// Errors returned while locating the resource directory of a PE image.
var (
	ErrInvalidPESize        = errors.New("peresource: file too small to be a PE image")
	ErrDOSMagicNotFound     = errors.New("peresource: DOS header magic not found")
	ErrInvalidElfanew       = errors.New("peresource: invalid e_lfanew value")
	ErrNtSignatureNotFound  = errors.New("peresource: PE00 signature not found")
	ErrOptionalHeaderMagic  = errors.New("peresource: unsupported optional header magic")
	ErrOutsideBoundary      = errors.New("peresource: read outside file boundary")
	ErrNoResourceDirectory  = errors.New("peresource: image has no resource directory")
	ErrResourceNotFound     = errors.New("peresource: resource not found")
)

// tinyPESize is the smallest possible PE image (XP x86).
const tinyPESize = 97

// Image is a read-only view over a PE/COFF module loaded off disk, scoped to
// whatever is needed to reach its resource directory.
type Image struct {
	data       []byte
	size       uint32
	dosHeader  imageDOSHeader
	ntHeader   imageNtHeader
	is64       bool
	sections   []imageSectionHeader
	resources  resourceDirectory
	hasResDir  bool
}

// New parses the DOS/NT/section headers of a PE image held in memory. It does
// not decode the resource directory eagerly; FindResourceByID,
// FindResourceByName and FindWEVTTemplate do that on first use.
func New(data []byte) (*Image, error) {
	if len(data) < tinyPESize {
		return nil, ErrInvalidPESize
	}
	img := &Image{data: data, size: uint32(len(data))}
	if err := img.parseDOSHeader(); err != nil {
		return nil, err
	}
	if err := img.parseNTHeader(); err != nil {
		return nil, err
	}
	if err := img.parseSectionHeaders(); err != nil {
		return nil, err
	}
	return img, nil
}

func (img *Image) readUint16(offset uint32) (uint16, error) {
	if offset > img.size-2 {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint16(img.data[offset:]), nil
}

func (img *Image) readUint32(offset uint32) (uint32, error) {
	if offset > img.size-4 {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint32(img.data[offset:]), nil
}

func (img *Image) readBytesAt(offset, size uint32) ([]byte, error) {
	total := offset + size
	if (total > offset) != (size > 0) || offset >= img.size || total > img.size {
		return nil, ErrOutsideBoundary
	}
	return img.data[offset:total], nil
}

func (img *Image) structUnpack(iface interface{}, offset, size uint32) error {
	total := offset + size
	if (total > offset) != (size > 0) || offset >= img.size || total > img.size {
		return ErrOutsideBoundary
	}
	return binary.Read(bytes.NewReader(img.data[offset:total]), binary.LittleEndian, iface)
}
