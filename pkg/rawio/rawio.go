// Package rawio implements the path-to-byte-range raw-I/O substrate every
// format parser is layered on: it opens a path either through ordinary OS
// file APIs or, where live locks would otherwise block a read, by walking
// the volume's own filesystem metadata. Only NTFS on Windows has such a
// raw-volume backend; there is no ext4 walker, and on Linux and other
// platforms every path is read through the OS.
package rawio

import "errors"

// ErrPathNotFound is returned when a path cannot be resolved by any backend.
var ErrPathNotFound = errors.New("rawio: path not found")

// ErrVolumeInitFailed is returned when opening the raw volume device fails.
var ErrVolumeInitFailed = errors.New("rawio: volume init failed")

// Reader is a read-only byte-range handle over an opened path. Reads are
// idempotent and share no seek state across callers: every Read call takes
// an explicit offset.
type Reader interface {
	// ReadAt returns a freshly owned copy of length bytes starting at
	// offset. Implementations never return a slice aliasing internal state.
	ReadAt(offset int64, length int) ([]byte, error)
	// Size reports the backing object's total byte length.
	Size() int64
	Close() error
}

// Options configures how a path is opened.
type Options struct {
	// PreferRawVolume tries a volume-backed read first even for paths that
	// would otherwise open cleanly through the OS; if the volume read
	// fails, Open still falls back to the OS backend.
	PreferRawVolume bool
}

// alwaysRawPrefixesWindows lists the path fragments that are routinely
// locked by the running OS and must be served by walking the volume's own
// metadata instead of opening the file handle directly.
var alwaysRawPrefixesWindows = []string{
	`\Windows\System32\config`,
	`\Windows\System32\winevt\Logs`,
	`\Windows\Prefetch`,
	`$Recycle.Bin`,
}

// Open resolves path to a Reader. On Windows, paths under the
// always-locked prefixes (registry hives, event logs, Prefetch, recycle
// bin) are served by walking NTFS; everything else, and every path on
// other platforms, opens through the OS file backend.
func Open(path string, opts Options) (Reader, error) {
	if opts.PreferRawVolume || requiresVolumeRead(path) {
		r, err := openViaVolume(path)
		if err == nil {
			return r, nil
		}
		// Fall back to a plain OS read; the caller may be running against
		// a staged copy of a live-locked file (e.g. a test fixture) rather
		// than an actual online volume.
	}
	return openOSFile(path)
}

func requiresVolumeRead(path string) bool {
	if !isWindowsPlatform() {
		return false
	}
	for _, prefix := range alwaysRawPrefixesWindows {
		if hasPathSuffixFold(path, prefix) {
			return true
		}
	}
	return false
}
