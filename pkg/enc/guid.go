package enc

import "fmt"

// GUIDBytes is the raw 16-byte on-disk representation of a GUID/UUID.
type GUIDBytes [16]byte

// GUIDLittleEndian renders 16 raw bytes as the canonical lowercase
// 8-4-4-4-12 form, treating the first three groups as little-endian (the
// Windows/COM convention used by NTFS object IDs, Registry, WMI, etc.).
func GUIDLittleEndian(b []byte) string {
	if len(b) < 16 {
		return ""
	}
	return fmt.Sprintf("%08x-%04x-%04x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		uint32(b[3])<<24|uint32(b[2])<<16|uint32(b[1])<<8|uint32(b[0]),
		uint16(b[5])<<8|uint16(b[4]),
		uint16(b[7])<<8|uint16(b[6]),
		b[8], b[9],
		b[10], b[11], b[12], b[13], b[14], b[15])
}

// GUIDBigEndian renders 16 raw bytes as the canonical lowercase form,
// preserving on-disk order for every group (used by formats that store the
// identifier as a plain byte string rather than a COM GUID).
func GUIDBigEndian(b []byte) string {
	if len(b) < 16 {
		return ""
	}
	return fmt.Sprintf("%02x%02x%02x%02x-%02x%02x-%02x%02x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7],
		b[8], b[9], b[10], b[11], b[12], b[13], b[14], b[15])
}
