// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package peresource

import (
	"encoding/binary"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// messageResourceEntryUnicode marks a MESSAGE_RESOURCE_ENTRY whose Text is
// UTF-16LE rather than ANSI.
const messageResourceEntryUnicode = 0x0001

// MessageTable decodes a RT_MESSAGETABLE resource's MESSAGE_RESOURCE_DATA
// layout into a map from numeric message ID to its format string (still
// containing %1.."%N" / "%%n" placeholders for the event-log template
// renderer to substitute).
func MessageTable(data []byte) (map[uint32]string, error) {
	if len(data) < 4 {
		return nil, ErrOutsideBoundary
	}
	numBlocks := binary.LittleEndian.Uint32(data)
	out := make(map[uint32]string)

	blockOffset := 4
	for i := uint32(0); i < numBlocks; i++ {
		if blockOffset+12 > len(data) {
			break
		}
		lowID := binary.LittleEndian.Uint32(data[blockOffset:])
		highID := binary.LittleEndian.Uint32(data[blockOffset+4:])
		entriesOffset := binary.LittleEndian.Uint32(data[blockOffset+8:])
		blockOffset += 12

		off := int(entriesOffset)
		for id := lowID; id <= highID && id >= lowID; id++ {
			if off+4 > len(data) {
				break
			}
			entryLen := binary.LittleEndian.Uint16(data[off:])
			flags := binary.LittleEndian.Uint16(data[off+2:])
			if entryLen < 4 || off+int(entryLen) > len(data) {
				break
			}
			text := data[off+4 : off+int(entryLen)]
			if flags&messageResourceEntryUnicode != 0 {
				out[id] = enc.UTF16LE(text)
			} else {
				out[id] = enc.UTF8NullTerminated(text)
			}
			off += int(entryLen)

			if id == highID {
				break
			}
		}
	}
	return out, nil
}
