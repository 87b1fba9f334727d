// Package bits decodes the Windows Background Intelligent Transfer
// Service queue: the legacy qmgr0.dat/qmgr1.dat custom binary format and
// the modern (Win10+) ESE-backed qmgr.db Jobs/Files tables, plus
// best-effort carving of deleted entries from either format's file slack
// . Carved ESE job and file records are emitted separately
// because the cross-table file_id link is indeterminate once a row has
// been deleted - this is treated as an intentional limitation, not a gap:
// "BITS ESE carving does not join jobs and files, by design."
package bits

import "github.com/puffyCid/artemis-sub004/pkg/enc"

// JobState mirrors BG_JOB_STATE.
type JobState uint32

// Known BG_JOB_STATE values.
const (
	JobStateQueued JobState = iota
	JobStateConnecting
	JobStateTransferring
	JobStateSuspended
	JobStateError
	JobStateTransientError
	JobStateTransferred
	JobStateAcknowledged
	JobStateCancelled
)

// JobInfo is one decoded BITS job, from either the legacy or ESE format.
type JobInfo struct {
	JobID       string
	Name        string
	Description string
	Type        uint32
	State       JobState
	Created     string
	Modified    string
	Carved      bool
}

// FileInfo is one decoded BITS file transfer entry.
type FileInfo struct {
	FileID         string
	JobID          string
	RemoteName     string
	TmpFullPath    string
	DestFullPath   string
	DownloadedSize uint64
	TotalSize      uint64
	Carved         bool
}

// BitsInfo is a job joined with its files (ParseESE attaches each Files row
// to the job whose JobId it carries).
type BitsInfo struct {
	Job   JobInfo
	Files []FileInfo
}

// zeroIfUnset normalises a FILETIME-family field per the shared timestamp
// convention: unknown or zeroed timestamps become the native unset
// sentinel.
func zeroIfUnset(ft uint64) string {
	return enc.FILETIMEToISO8601(ft)
}
