package ntfs

import "testing"

func TestDecodeDataRunsSingle(t *testing.T) {
	// header 0x31: length field 1 byte, offset field 3 bytes.
	// length=0x0C (12 clusters), LCN delta = 0x0004C0 little-endian.
	buf := []byte{0x31, 0x0C, 0xC0, 0x04, 0x00, 0x00}
	runs, err := decodeDataRuns(buf)
	if err != nil {
		t.Fatalf("decodeDataRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].LengthCluster != 12 {
		t.Fatalf("LengthCluster = %d, want 12", runs[0].LengthCluster)
	}
	if runs[0].StartCluster != 0x4C0 {
		t.Fatalf("StartCluster = %#x, want 0x4c0", runs[0].StartCluster)
	}
	if runs[0].Sparse {
		t.Fatal("expected non-sparse run")
	}
}

func TestDecodeDataRunsSparseThenData(t *testing.T) {
	// first run: sparse, length 16 (0x10), offset field length 0.
	// second run: length 1 byte = 0x05, LCN delta 1 byte = 0x0A.
	buf := []byte{0x01, 0x10, 0x11, 0x05, 0x0A, 0x00}
	runs, err := decodeDataRuns(buf)
	if err != nil {
		t.Fatalf("decodeDataRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].Sparse {
		t.Fatal("expected first run sparse")
	}
	if runs[0].LengthCluster != 16 {
		t.Fatalf("first LengthCluster = %d, want 16", runs[0].LengthCluster)
	}
	if runs[1].Sparse {
		t.Fatal("expected second run non-sparse")
	}
	if runs[1].StartCluster != 0x0A {
		t.Fatalf("second StartCluster = %#x, want 0xa", runs[1].StartCluster)
	}
}

func TestDecodeDataRunsNegativeDelta(t *testing.T) {
	// A second run whose LCN delta is negative (fragment located before
	// the previous one), encoded as a single signed byte 0xFE (-2).
	buf := []byte{0x11, 0x05, 0x0A, 0x11, 0x03, 0xFE}
	runs, err := decodeDataRuns(buf)
	if err != nil {
		t.Fatalf("decodeDataRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].StartCluster != 0x0A {
		t.Fatalf("first StartCluster = %#x, want 0xa", runs[0].StartCluster)
	}
	if runs[1].StartCluster != 0x08 {
		t.Fatalf("second StartCluster = %#x, want 0x8 (0xa - 2)", runs[1].StartCluster)
	}
}
