package enc

import "testing"

func TestUTF8NullTerminated(t *testing.T) {
	if got := UTF8NullTerminated([]byte("hello\x00world")); got != "hello" {
		t.Fatalf("got %q", got)
	}
	if got := UTF8NullTerminated([]byte("noterm")); got != "noterm" {
		t.Fatalf("got %q", got)
	}
}

func TestUTF16LE(t *testing.T) {
	// "AB" in UTF-16LE followed by a NUL code unit.
	b := []byte{'A', 0, 'B', 0, 0, 0, 'X', 0}
	if got := UTF16LE(b); got != "AB" {
		t.Fatalf("got %q", got)
	}
}

func TestLengthPrefixedUTF16LE(t *testing.T) {
	b := []byte{2, 0, 'h', 0, 'i', 0, 0xFF}
	rest, s, ok := LengthPrefixedUTF16LE(b)
	if !ok || s != "hi" || len(rest) != 1 {
		t.Fatalf("got s=%q ok=%v rest=%v", s, ok, rest)
	}
}

func TestBase64RoundTrip(t *testing.T) {
	s := Base64Encode([]byte("artemis"))
	d, err := Base64Decode(s)
	if err != nil || string(d) != "artemis" {
		t.Fatalf("round trip failed: %v %v", d, err)
	}
}

func TestGUIDLittleEndian(t *testing.T) {
	b := []byte{
		0x00, 0x01, 0x02, 0x03,
		0x04, 0x05,
		0x06, 0x07,
		0x08, 0x09,
		0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
	}
	got := GUIDLittleEndian(b)
	want := "03020100-0504-0706-0809-0a0b0c0d0e0f"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}
