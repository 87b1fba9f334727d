package rawio

// openViaVolume on Linux would serve journal reads (`/var/log/journal/*`)
// by walking ext4 extents on the device backing the path's mount point.
// Unlike NTFS, a live systemd-journald does not take an exclusive lock on
// its journal files (it opens them O_RDWR but shares read access), so the
// plain OS backend already reads them without contention; there is no
// live-lock case on Linux that demands bypassing the filesystem driver.
// requiresVolumeRead therefore never returns true for the Linux build, and
// openViaVolume is only reached with PreferRawVolume set. It always
// returns ErrVolumeInitFailed, and Open then falls back to the OS backend.
func openViaVolume(path string) (Reader, error) {
	return nil, ErrVolumeInitFailed
}
