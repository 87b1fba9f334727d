// Package enc implements the encoding and time-conversion primitives shared
// by every format parser: string extraction, GUID rendering, base64, and the
// handful of on-disk epochs Windows/macOS/Linux artifacts use.
package enc

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"unicode/utf16"
	"unicode/utf8"
)

// UTF8NullTerminated returns the text preceding the first NUL byte in b, or
// all of b if no NUL is present.
func UTF8NullTerminated(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// decodeUTF16 renders UTF-16LE code units to a Go string, substituting
// U+FFFD for any code unit that does not form a valid rune.
func decodeUTF16(units []uint16) string {
	runes := utf16.Decode(units)
	var buf bytes.Buffer
	buf.Grow(len(runes))
	for _, r := range runes {
		if r == utf8.RuneError {
			buf.WriteRune('�')
			continue
		}
		buf.WriteRune(r)
	}
	return buf.String()
}

// UTF16LE extracts a UTF-16LE string from b, stopping at the first NUL code
// unit (or the end of b). Invalid surrogate pairs become U+FFFD rather than
// aborting the decode.
func UTF16LE(b []byte) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u := binary.LittleEndian.Uint16(b[i:])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return decodeUTF16(units)
}

// UTF16LEFixed decodes exactly n code units (2*n bytes) of UTF-16LE,
// including embedded NULs, useful for fixed-width on-disk string fields.
func UTF16LEFixed(b []byte, n int) string {
	units := make([]uint16, 0, n)
	for i := 0; i < n && i*2+1 < len(b); i++ {
		units = append(units, binary.LittleEndian.Uint16(b[i*2:]))
	}
	return decodeUTF16(units)
}

// LengthPrefixedUTF16LE decodes a 2-byte-length-prefixed UTF-16LE string
// (the convention the NTFS $FILE_NAME attribute and MS-SHLLINK strings use),
// returning the decoded text and the slice following it.
func LengthPrefixedUTF16LE(b []byte) (rest []byte, s string, ok bool) {
	if len(b) < 2 {
		return b, "", false
	}
	charCount := int(binary.LittleEndian.Uint16(b))
	need := 2 + charCount*2
	if len(b) < need {
		return b, "", false
	}
	return b[need:], UTF16LEFixed(b[2:need], charCount), true
}

// Base64Encode encodes b using the standard, padded alphabet.
func Base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Base64Decode decodes s, accepting both padded and unpadded standard
// base64, since several artifact formats (Windows Search property values)
// emit it without padding.
func Base64Decode(s string) ([]byte, error) {
	if d, err := base64.StdEncoding.DecodeString(s); err == nil {
		return d, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
