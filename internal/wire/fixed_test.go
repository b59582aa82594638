package wire

import "testing"

func TestUint32RoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 0xFF, 0x100, 0xFFFF, 0x10000, 0xFFFFFFFF}
	for _, v := range cases {
		buf := AppendUint32(nil, v)
		if len(buf) != 4 {
			t.Fatalf("AppendUint32(%d): got %d bytes, want 4", v, len(buf))
		}
		got, err := DecodeUint32(buf)
		if err != nil {
			t.Fatalf("DecodeUint32(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
	}
}

func TestUint64RoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 0xFFFFFFFF, 0x100000000, 0xFFFFFFFFFFFFFFFF}
	for _, v := range cases {
		buf := AppendUint64(nil, v)
		got, err := DecodeUint64(buf)
		if err != nil {
			t.Fatalf("DecodeUint64(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
	}
}

func TestFloatBitsPreservedExactly(t *testing.T) {
	// Floats must round-trip their exact bit pattern, including -0.0 and
	// NaN payloads, unlike the teacher's canonicalizing fixed-width codec.
	neg0 := float64(0)
	neg0 = -neg0
	buf := AppendFloat64(nil, neg0)
	got, err := DecodeFloat64(buf)
	if err != nil {
		t.Fatal(err)
	}
	gotBits := int64FromFloat(got)
	wantBits := int64FromFloat(neg0)
	if gotBits != wantBits {
		t.Errorf("negative zero bits not preserved: got %x want %x", gotBits, wantBits)
	}
}

func int64FromFloat(f float64) uint64 {
	var buf [8]byte
	b := AppendFloat64(buf[:0], f)
	v, _ := DecodeUint64(b)
	return v
}

func TestTruncatedInput(t *testing.T) {
	if _, err := DecodeUint32([]byte{1, 2}); err != ErrTruncated {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
	if _, err := DecodeUint64([]byte{1, 2, 3}); err != ErrTruncated {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}
