package rawio

import (
	"os"
	"runtime"
	"strings"

	mmap "github.com/edsrzf/mmap-go"
)

// osFile is a memory-mapped read-only file, the same strategy the PE
// resource loader's teacher package uses to avoid read/write syscalls for
// every access: map once, slice freely.
type osFile struct {
	f    *os.File
	data mmap.MMap
}

func openOSFile(path string) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		// mmap-go rejects zero-length mappings; an empty file is valid
		// input (the universal "zero bytes" edge case every parser must
		// reject gracefully rather than via this layer panicking).
		return &emptyFile{f: f}, nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &osFile{f: f, data: data}, nil
}

func (o *osFile) ReadAt(offset int64, length int) ([]byte, error) {
	if offset < 0 || offset > int64(len(o.data)) {
		return nil, ErrPathNotFound
	}
	end := offset + int64(length)
	if end > int64(len(o.data)) {
		end = int64(len(o.data))
	}
	out := make([]byte, end-offset)
	copy(out, o.data[offset:end])
	return out, nil
}

func (o *osFile) Size() int64 { return int64(len(o.data)) }

func (o *osFile) Close() error {
	_ = o.data.Unmap()
	return o.f.Close()
}

// emptyFile serves reads against a valid, zero-length file.
type emptyFile struct{ f *os.File }

func (e *emptyFile) ReadAt(offset int64, length int) ([]byte, error) {
	if offset != 0 {
		return nil, ErrPathNotFound
	}
	return []byte{}, nil
}
func (e *emptyFile) Size() int64   { return 0 }
func (e *emptyFile) Close() error  { return e.f.Close() }

func isWindowsPlatform() bool { return runtime.GOOS == "windows" }

func hasPathSuffixFold(path, suffix string) bool {
	normPath := strings.ToLower(strings.ReplaceAll(path, "/", `\`))
	normSuffix := strings.ToLower(strings.ReplaceAll(suffix, "/", `\`))
	return strings.Contains(normPath, normSuffix)
}
