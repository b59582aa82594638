package buffer

import "testing"

func TestNewClampsToMinReserve(t *testing.T) {
	b := New(4)
	if b.Cap() < MinReserve {
		t.Fatalf("got cap %d, want at least %d", b.Cap(), MinReserve)
	}
}

func TestWriteAppendsAndGrows(t *testing.T) {
	b := New(MinReserve)
	b.WriteString("hello")
	b.WriteByte(' ')
	b.Write([]byte("world"))
	if string(b.Bytes()) != "hello world" {
		t.Fatalf("got %q", b.Bytes())
	}
	if b.Len() != len("hello world") {
		t.Fatalf("got len %d", b.Len())
	}
}

func TestGrowExpandsCapacityByOneAndHalf(t *testing.T) {
	b := New(MinReserve)
	// Force growth past the initial capacity.
	big := make([]byte, MinReserve*2)
	b.Write(big)
	// required = 64, so the new capacity is ceil(1.5*64) = 96.
	if want := (len(big)*3 + 1) / 2; b.Cap() != want {
		t.Fatalf("got cap %d, want %d", b.Cap(), want)
	}
}

func TestTruncateDiscardsTrailingBytes(t *testing.T) {
	b := New(MinReserve)
	b.WriteString("hello world")
	b.Truncate(5)
	if string(b.Bytes()) != "hello" {
		t.Fatalf("got %q", b.Bytes())
	}
}

func TestResetClearsLengthKeepsCapacity(t *testing.T) {
	b := New(MinReserve)
	b.WriteString("hello")
	capBefore := b.Cap()
	b.Reset()
	if b.Len() != 0 {
		t.Fatalf("got len %d, want 0", b.Len())
	}
	if b.Cap() != capBefore {
		t.Fatalf("got cap %d, want %d", b.Cap(), capBefore)
	}
}

func TestNewIntoBorrowsAtOffset(t *testing.T) {
	dst := make([]byte, 4, 16)
	b := NewInto(dst, 2)
	if b.Len() != 2 {
		t.Fatalf("got len %d, want 2", b.Len())
	}
	b.WriteString("ab")
	if string(b.Bytes()) != string(dst[:2])+"ab" {
		t.Fatalf("got %q", b.Bytes())
	}
}

func TestNewIntoClampsNegativeOffsetToLength(t *testing.T) {
	dst := []byte("abcd")
	b := NewInto(dst, -1)
	if b.Len() != len(dst) {
		t.Fatalf("got len %d, want %d", b.Len(), len(dst))
	}
}
