package jsoncodec

import (
	"testing"

	schemapkg "github.com/blockberries/schemawire/pkg/schema"
)

func TestSkipValueLeavesReaderPositioned(t *testing.T) {
	r := newReader([]byte(`123, "hi"`), 0, schemapkg.NoLimits)
	if err := skip(r); err != nil {
		t.Fatal(err)
	}
	if r.pos != 3 {
		t.Fatalf("expected reader at offset 3 after skipping number, got %d", r.pos)
	}
	r.pos++ // consume comma
	if err := skip(r); err != nil {
		t.Fatal(err)
	}
}

func TestSkipNestedObject(t *testing.T) {
	data := []byte(`{"a":1,"b":{"c":2}}`)
	r := newReader(data, 0, schemapkg.NoLimits)
	if err := skip(r); err != nil {
		t.Fatal(err)
	}
	if r.pos != len(data) {
		t.Fatalf("expected reader to consume entire object, got pos %d of %d", r.pos, len(data))
	}
}

func TestSkipArrayRejectsTrailingComma(t *testing.T) {
	r := newReader([]byte(`[1,2,]`), 0, schemapkg.NoLimits)
	if err := skip(r); err == nil {
		t.Fatal("expected trailing comma to be rejected")
	}
}

func TestSkipObjectRequiresStringKeys(t *testing.T) {
	r := newReader([]byte(`{1:2}`), 0, schemapkg.NoLimits)
	if err := skip(r); err == nil {
		t.Fatal("expected non-string key to be rejected")
	}
}

func TestSkipRespectsMaxDepth(t *testing.T) {
	r := newReader([]byte(`[[[0]]]`), 2, schemapkg.NoLimits)
	if err := skip(r); err == nil {
		t.Fatal("expected max-depth error")
	}
}
