// Package compress implements the decompression codecs Artemis format
// parsers and the output pipeline need: gzip (output compression and some
// artifact payloads), LZ4, and the LZXPRESS-Huffman scheme Windows Prefetch
// v30+ and several other system files use.
package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Gunzip decompresses a full gzip byte stream.
func Gunzip(b []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Gzip compresses b at the given level (use gzip.DefaultCompression for -1).
func Gzip(b []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(b); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewGzipWriter wraps w in a streaming gzip writer. The output pipeline
// does not use it: Pipeline.Emit frames the whole payload first and
// compresses it with Gzip.
func NewGzipWriter(w io.Writer) *gzip.Writer {
	return gzip.NewWriter(w)
}
