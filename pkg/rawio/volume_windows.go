package rawio

import (
	"path/filepath"
	"strings"

	"github.com/puffyCid/artemis-sub004/pkg/ntfs"
	"golang.org/x/sys/windows"
)

// volumeReader adapts an ntfs.FileReader to the rawio.Reader interface.
type volumeReader struct {
	fr *ntfs.FileReader
}

func (v *volumeReader) ReadAt(offset int64, length int) ([]byte, error) {
	return v.fr.ReadAt(offset, length)
}
func (v *volumeReader) Size() int64 { return v.fr.Size() }
func (v *volumeReader) Close() error {
	return v.fr.Close()
}

// openViaVolume resolves path by opening the raw NTFS volume device
// (\\.\C:) for the path's drive letter and walking the MFT, bypassing
// whatever process holds an exclusive handle on the live file.
func openViaVolume(path string) (Reader, error) {
	drive := filepath.VolumeName(path)
	if drive == "" {
		drive = "C:"
	}
	devicePath := `\\.\` + strings.TrimSuffix(drive, `\`)

	h, err := windows.CreateFile(
		windows.StringToUTF16Ptr(devicePath),
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return nil, ErrVolumeInitFailed
	}

	vol, err := ntfs.OpenVolume(windowsHandleReader{h})
	if err != nil {
		windows.CloseHandle(h)
		return nil, ErrVolumeInitFailed
	}

	rel := strings.TrimPrefix(path, drive)
	fr, err := vol.OpenPath(rel)
	if err != nil {
		windows.CloseHandle(h)
		return nil, ErrPathNotFound
	}
	return &volumeReader{fr: fr}, nil
}

// windowsHandleReader adapts a raw volume HANDLE to ntfs.RawDevice.
type windowsHandleReader struct {
	h windows.Handle
}

func (w windowsHandleReader) ReadAt(p []byte, off int64) (int, error) {
	var overlapped windows.Overlapped
	overlapped.Offset = uint32(off)
	overlapped.OffsetHigh = uint32(off >> 32)
	var n uint32
	err := windows.ReadFile(w.h, p, &n, &overlapped)
	return int(n), err
}

func (w windowsHandleReader) Close() error {
	return windows.CloseHandle(w.h)
}
