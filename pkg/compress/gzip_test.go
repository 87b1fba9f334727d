package compress

import "testing"

func TestGzipRoundTrip(t *testing.T) {
	original := []byte(`{"artifact":"prefetch","path":"C:\\Windows\\Prefetch\\FOO.EXE-1234ABCD.pf"}`)

	compressed, err := Gzip(original, -1)
	if err != nil {
		t.Fatalf("Gzip: %v", err)
	}
	if len(compressed) == 0 {
		t.Fatal("expected non-empty compressed output")
	}

	decompressed, err := Gunzip(compressed)
	if err != nil {
		t.Fatalf("Gunzip: %v", err)
	}
	if string(decompressed) != string(original) {
		t.Fatalf("got %q, want %q", decompressed, original)
	}
}

func TestGunzipInvalidStream(t *testing.T) {
	if _, err := Gunzip([]byte("not a gzip stream")); err == nil {
		t.Fatal("expected error decompressing non-gzip data")
	}
}
