package compress

import (
	"bytes"
	"testing"

	"github.com/pierrec/lz4/v4"
)

func TestLZ4BlockRoundTrip(t *testing.T) {
	original := []byte("the quick brown fox jumps over the lazy dog the quick brown fox")

	compressed := make([]byte, lz4.CompressBlockBound(len(original)))
	var c lz4.Compressor
	n, err := c.CompressBlock(original, compressed)
	if err != nil {
		t.Fatalf("CompressBlock: %v", err)
	}
	compressed = compressed[:n]

	got, err := LZ4BlockDecompress(compressed, len(original))
	if err != nil {
		t.Fatalf("LZ4BlockDecompress: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Fatalf("got %q, want %q", got, original)
	}
}

func TestLZ4FrameRoundTrip(t *testing.T) {
	original := []byte("frame-encoded payload with some repeated repeated repeated text")

	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(original); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := LZ4FrameDecompress(buf.Bytes())
	if err != nil {
		t.Fatalf("LZ4FrameDecompress: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Fatalf("got %q, want %q", got, original)
	}
}
