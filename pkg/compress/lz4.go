package compress

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4BlockDecompress decompresses a single LZ4 block (no frame header) into
// a buffer of the caller-supplied uncompressed size, the form several
// artifact payloads embed.
func LZ4BlockDecompress(src []byte, uncompressedSize int) ([]byte, error) {
	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// LZ4FrameDecompress decompresses a full LZ4 frame (with header/checksums).
func LZ4FrameDecompress(src []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(src))
	return io.ReadAll(r)
}
