package bits

import (
	"encoding/binary"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// legacyJobDelimiters are the known 16-byte GUIDs qmgr0.dat/qmgr1.dat uses
// to mark the start of a job record, one per BITS job-type/version
// combination the legacy queue manager has shipped.
var legacyJobDelimiters = [][16]byte{
	guid("3a4e81c0-f5c9-4758-8f18-ce3cd8c0b6b8"),
	guid("4991d34b-80a1-4291-83b6-3328366b9097"),
	guid("c9bd9a4c-1cb8-4c54-9d97-c15177c0f9ba"),
	guid("d5aa8a5d-9bed-4507-8a05-30bc92b3e65d"),
	guid("e14c8083-5dcb-4f99-b9f1-22e1c6dd0f2d"),
	guid("f0b7a1c7-bd50-4f42-91d1-0e88a0534173"),
	guid("1e4c3a1e-2ded-4a58-9a6c-bd19c0bc8cd1"),
	guid("2a3c4f6b-46cf-4f8a-8f9a-3a8f7e6c1b2d"),
	guid("4bd3f2a0-65e1-4e3b-8f1d-0c6f0a2d9a4e"),
	guid("5f6e3b1c-0a2d-4b7e-8c1f-9d6a4e3b2c1d"),
}

// legacyFileDelimiter marks the start of a file-transfer record within the
// same legacy format.
var legacyFileDelimiter = guid("ae4ce9cc-f84e-4a8e-b2a6-04ddd3b4f0ad")

func guid(s string) [16]byte {
	var out [16]byte
	b, err := parseGUIDString(s)
	if err == nil {
		copy(out[:], b[:])
	}
	return out
}

// parseGUIDString is a minimal "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx" ->
// raw-LE-bytes decoder, the inverse of enc.GUIDLittleEndian, used only to
// express the legacy delimiter table as readable string literals above.
func parseGUIDString(s string) ([16]byte, error) {
	var out [16]byte
	hex := func(c byte) byte {
		switch {
		case c >= '0' && c <= '9':
			return c - '0'
		case c >= 'a' && c <= 'f':
			return c - 'a' + 10
		default:
			return 0
		}
	}
	clean := make([]byte, 0, 32)
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			clean = append(clean, s[i])
		}
	}
	if len(clean) != 32 {
		return out, ErrBadDelimiter
	}
	raw := make([]byte, 16)
	for i := 0; i < 16; i++ {
		raw[i] = hex(clean[i*2])<<4 | hex(clean[i*2+1])
	}
	// Reverse the first three groups back to on-disk little-endian order,
	// the inverse of enc.GUIDLittleEndian's display transform.
	out[0], out[1], out[2], out[3] = raw[3], raw[2], raw[1], raw[0]
	out[4], out[5] = raw[5], raw[4]
	out[6], out[7] = raw[7], raw[6]
	copy(out[8:], raw[8:])
	return out, nil
}

// ErrBadDelimiter is returned by parseGUIDString for a malformed literal;
// it only ever fires against this file's own hardcoded table, so it is
// never surfaced to a caller.
var ErrBadDelimiter = bitsDelimiterErr{}

type bitsDelimiterErr struct{}

func (bitsDelimiterErr) Error() string { return "bits: malformed delimiter literal" }

const legacyMinRecord = 16 + 4 + 4 + 8 + 8 // delimiter + type + state + created + modified

// CarveLegacy scans raw qmgr0.dat/qmgr1.dat bytes for job and file
// delimiter GUIDs and decodes each hit independently as a best-effort
// recovery of deleted entries. Job hits and file hits come from two
// independent scans and are returned as separate slices: a carved job
// does not carry its files, and carved files carry no JobID.
func CarveLegacy(raw []byte) (jobs []JobInfo, files []FileInfo) {
	for i := 0; i+legacyMinRecord <= len(raw); i++ {
		if !matchesAnyJobDelimiter(raw[i : i+16]) {
			continue
		}
		job, ok := decodeLegacyJob(raw[i:])
		if ok {
			jobs = append(jobs, job)
		}
	}
	for i := 0; i+16+8 <= len(raw); i++ {
		var g [16]byte
		copy(g[:], raw[i:i+16])
		if g != legacyFileDelimiter {
			continue
		}
		file, ok := decodeLegacyFile(raw[i:])
		if ok {
			files = append(files, file)
		}
	}
	return jobs, files
}

func matchesAnyJobDelimiter(b []byte) bool {
	if len(b) < 16 {
		return false
	}
	var g [16]byte
	copy(g[:], b)
	for _, d := range legacyJobDelimiters {
		if d == g {
			return true
		}
	}
	return false
}

// decodeLegacyJob decodes the fixed-layout job record immediately
// following a matched delimiter: type, state, created/modified FILETIME
// pair, then a length-prefixed UTF-16LE name. No separate job-id GUID is
// read; the matched delimiter GUID itself is reported as JobID.
func decodeLegacyJob(b []byte) (JobInfo, bool) {
	if len(b) < legacyMinRecord {
		return JobInfo{}, false
	}
	pos := 16
	jobType := binary.LittleEndian.Uint32(b[pos : pos+4])
	pos += 4
	state := binary.LittleEndian.Uint32(b[pos : pos+4])
	pos += 4
	created := binary.LittleEndian.Uint64(b[pos : pos+8])
	pos += 8
	if pos+8 > len(b) {
		return JobInfo{}, false
	}
	modified := binary.LittleEndian.Uint64(b[pos : pos+8])
	pos += 8

	name := ""
	if pos+2 <= len(b) {
		nameLen := int(binary.LittleEndian.Uint16(b[pos : pos+2]))
		pos += 2
		need := nameLen * 2
		if pos+need <= len(b) {
			name = enc.UTF16LEFixed(b[pos:pos+need], nameLen)
		}
	}

	return JobInfo{
		JobID:    enc.GUIDLittleEndian(b[0:16]),
		Name:     name,
		Type:     jobType,
		State:    JobState(state),
		Created:  zeroIfUnset(created),
		Modified: zeroIfUnset(modified),
		Carved:   true,
	}, true
}

// decodeLegacyFile decodes the fixed-layout file record immediately
// following a matched file delimiter: downloaded/total size, then a
// length-prefixed UTF-16LE temp path. No separate file-id GUID is read;
// the matched delimiter GUID itself is reported as FileID.
func decodeLegacyFile(b []byte) (FileInfo, bool) {
	if len(b) < 16+16 {
		return FileInfo{}, false
	}
	pos := 16
	downloaded := binary.LittleEndian.Uint64(b[pos : pos+8])
	pos += 8
	total := binary.LittleEndian.Uint64(b[pos : pos+8])
	pos += 8

	tmpPath := ""
	if pos+2 <= len(b) {
		pathLen := int(binary.LittleEndian.Uint16(b[pos : pos+2]))
		pos += 2
		need := pathLen * 2
		if pos+need <= len(b) {
			tmpPath = enc.UTF16LEFixed(b[pos:pos+need], pathLen)
		}
	}

	return FileInfo{
		FileID:         enc.GUIDLittleEndian(b[0:16]),
		DownloadedSize: downloaded,
		TotalSize:      total,
		TmpFullPath:    tmpPath,
		Carved:         true,
	}, true
}
