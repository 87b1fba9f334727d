// Package mft turns raw NTFS MFT records (pkg/ntfs) into artifact records:
// one entry per file/directory, with its flat $STANDARD_INFORMATION/
// $FILE_NAME fields and, once every record in a volume has been seen, full
// paths resolved by walking each entry's parent chain. Only resident
// attributes of each base record are read; $ATTRIBUTE_LIST entries are
// not followed or merged.
package mft

import (
	"errors"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
	"github.com/puffyCid/artemis-sub004/pkg/ntfs"
)

// ErrNotAnEntry is returned when raw bytes don't carry the "FILE" signature.
var ErrNotAnEntry = errors.New("mft: not an MFT entry")

const recordSize = 1024

// Record is one decoded MFT entry, built from its base record's resident
// attributes, with its timestamps rendered as ISO-8601.
type Record struct {
	EntryNumber    uint64
	SequenceNumber uint16
	ParentEntry    uint64
	ParentSequence uint16
	IsDirectory    bool
	InUse          bool
	FullPath       string
	FileName       string
	Namespace      ntfs.FileNameNamespace
	Created        string
	Modified       string
	MFTModified    string
	Accessed       string
	LogicalSize    uint64
	PhysicalSize   uint64
}

// Parse decodes every 1024-byte MFT record in raw (a contiguous dump of the
// $MFT's data, as returned by a raw-I/O read of the NTFS volume) and merges
// each entry's best-namespace $FILE_NAME with its $STANDARD_INFORMATION.
// Paths are resolved in a second pass once every entry number is known.
func Parse(raw []byte, bytesPerSector int) ([]Record, error) {
	var out []Record
	byEntry := make(map[uint64]int)

	for offset := 0; offset+recordSize <= len(raw); offset += recordSize {
		chunk := raw[offset : offset+recordSize]
		if string(chunk[0:4]) != "FILE" {
			continue
		}
		rec, err := ntfs.ParseRecord(chunk, bytesPerSector)
		if err != nil {
			continue
		}
		entryNumber := uint64(offset / recordSize)

		out = append(out, decodeEntry(entryNumber, rec))
		byEntry[entryNumber] = len(out) - 1
	}

	resolvePaths(out, byEntry)
	return out, nil
}

// decodeEntry flattens one parsed MFT record: the best resident
// $FILE_NAME (Win32 or Win32AndDOS, ranked equal so the first one seen
// wins, over POSIX, then DOS) and $STANDARD_INFORMATION's timestamps, as
// found among the record's own attributes. Attributes that live in other
// records through an $ATTRIBUTE_LIST are not read.
func decodeEntry(entryNumber uint64, rec *ntfs.Record) Record {
	out := Record{
		EntryNumber:    entryNumber,
		SequenceNumber: rec.SequenceNumber,
		IsDirectory:    rec.IsDirectory(),
		InUse:          rec.InUse(),
	}

	var best *ntfs.FileName
	for i := range rec.Attributes {
		if rec.Attributes[i].Type != ntfs.AttrFileName || !rec.Attributes[i].Resident {
			continue
		}
		fn, err := ntfs.ParseFileName(rec.Attributes[i].ResidentData)
		if err != nil {
			continue
		}
		if best == nil || preferNamespace(fn.Namespace, best.Namespace) {
			copyFn := fn
			best = &copyFn
		}
	}
	if best != nil {
		out.FileName = best.Name
		out.Namespace = best.Namespace
		out.ParentEntry = best.ParentRecordNumber
		out.ParentSequence = best.ParentSequence
		out.LogicalSize = best.LogicalSize
		out.PhysicalSize = best.PhysicalSize
	}

	if attr, ok := rec.FindAttribute(ntfs.AttrStandardInformation); ok && attr.Resident {
		if si, err := ntfs.ParseStandardInformation(attr.ResidentData); err == nil {
			out.Created = enc.FILETIMEToISO8601(si.Created)
			out.Modified = enc.FILETIMEToISO8601(si.Modified)
			out.MFTModified = enc.FILETIMEToISO8601(si.MFTModified)
			out.Accessed = enc.FILETIMEToISO8601(si.Accessed)
		}
	} else if best != nil {
		// $STANDARD_INFORMATION missing or non-resident: fall back to the
		// $FILE_NAME attribute's own timestamps, which Windows keeps in
		// sync for most files.
		out.Created = enc.FILETIMEToISO8601(best.Created)
		out.Modified = enc.FILETIMEToISO8601(best.Modified)
		out.MFTModified = enc.FILETIMEToISO8601(best.MFTModified)
		out.Accessed = enc.FILETIMEToISO8601(best.Accessed)
	}

	return out
}

// preferNamespace reports whether candidate should replace current as the
// entry's display name: Win32 and Win32AndDOS (the long name Explorer
// shows) outrank bare DOS (8.3) and POSIX names.
func preferNamespace(candidate, current ntfs.FileNameNamespace) bool {
	rank := func(n ntfs.FileNameNamespace) int {
		switch n {
		case ntfs.NamespaceWin32, ntfs.NamespaceWin32AndDOS:
			return 2
		case ntfs.NamespacePosix:
			return 1
		default:
			return 0
		}
	}
	return rank(candidate) > rank(current)
}

// resolvePaths walks each entry's parent chain (bounded by len(entries) to
// guard against a corrupt or cyclic parent pointer) and fills FullPath.
func resolvePaths(entries []Record, byEntry map[uint64]int) {
	for i := range entries {
		entries[i].FullPath = buildPath(entries, byEntry, i, len(entries)+1)
	}
}

func buildPath(entries []Record, byEntry map[uint64]int, idx int, budget int) string {
	if budget <= 0 {
		return entries[idx].FileName
	}
	if entries[idx].EntryNumber == 5 || entries[idx].ParentEntry == entries[idx].EntryNumber {
		// Conventional NTFS root entry number, or a self-referencing
		// parent pointer in a corrupt record.
		return entries[idx].FileName
	}
	parentIdx, ok := byEntry[entries[idx].ParentEntry]
	if !ok {
		return entries[idx].FileName
	}
	parentPath := buildPath(entries, byEntry, parentIdx, budget-1)
	if parentPath == "" {
		return entries[idx].FileName
	}
	return parentPath + "\\" + entries[idx].FileName
}
