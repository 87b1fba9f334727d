package byteio

import "testing"

func TestTakeIncomplete(t *testing.T) {
	b := []byte{1, 2, 3}
	if _, _, err := Take(b, 4); err != ErrIncomplete {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
}

func TestU32LittleVsBig(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04}
	_, le, err := U32(b, LittleEndian)
	if err != nil || le != 0x04030201 {
		t.Fatalf("little endian mismatch: %x, %v", le, err)
	}
	_, be, err := U32(b, BigEndian)
	if err != nil || be != 0x01020304 {
		t.Fatalf("big endian mismatch: %x, %v", be, err)
	}
}

func TestTakeUntil(t *testing.T) {
	rest, taken := TakeUntil([]byte("abc\x00def"), 0)
	if string(taken) != "abc" || string(rest) != "\x00def" {
		t.Fatalf("unexpected split: taken=%q rest=%q", taken, rest)
	}
}

func TestReaderSequential(t *testing.T) {
	r := NewReader([]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE})
	b, err := r.U8()
	if err != nil || b != 0xAA {
		t.Fatalf("U8 failed: %x %v", b, err)
	}
	v, err := r.U32(LittleEndian)
	if err != nil || v != 0xEEDDCCBB {
		t.Fatalf("U32 failed: %x %v", v, err)
	}
	if r.Len() != 0 {
		t.Fatalf("expected exhausted reader, %d bytes left", r.Len())
	}
	if _, err := r.U8(); err != ErrIncomplete {
		t.Fatalf("expected ErrIncomplete at end, got %v", err)
	}
}

func TestReaderNeverReadsPastPrefix(t *testing.T) {
	full := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	for n := 0; n <= len(full); n++ {
		prefix := full[:n]
		r := NewReader(prefix)
		for {
			if _, err := r.U8(); err != nil {
				break
			}
		}
		if r.Len() != 0 {
			t.Fatalf("reader over prefix of length %d left %d unread", n, r.Len())
		}
	}
}
