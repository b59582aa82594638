package jsoncodec

import (
	"strings"
	"testing"
	"time"

	schemapkg "github.com/blockberries/schemawire/pkg/schema"
)

func mustNode(t *testing.T, d schemapkg.Desc) *schemapkg.TypeNode {
	t.Helper()
	n, err := schemapkg.BuildTypeNode(d)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestDecodeInt(t *testing.T) {
	v, err := Decode([]byte("42"), mustNode(t, schemapkg.IntDesc()))
	if err != nil {
		t.Fatal(err)
	}
	if v.(int64) != 42 {
		t.Fatalf("got %v, want 42", v)
	}
}

func TestDecodeIntRejectsFloatToken(t *testing.T) {
	_, err := Decode([]byte("4.2"), mustNode(t, schemapkg.IntDesc()))
	if err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestDecodeIntWidensToFloatSchema(t *testing.T) {
	v, err := Decode([]byte("5"), mustNode(t, schemapkg.FloatDesc()))
	if err != nil {
		t.Fatal(err)
	}
	if v.(float64) != 5.0 {
		t.Fatalf("got %v, want 5.0", v)
	}
}

func TestDecodeStringWithEscapes(t *testing.T) {
	v, err := Decode([]byte(`"hi\nthereA"`), mustNode(t, schemapkg.StrDesc()))
	if err != nil {
		t.Fatal(err)
	}
	if v.(string) != "hi\nthereA" {
		t.Fatalf("got %q", v)
	}
}

func TestDecodeBase64Bytes(t *testing.T) {
	v, err := Decode([]byte(`"AAEC"`), mustNode(t, schemapkg.BytesDesc()))
	if err != nil {
		t.Fatal(err)
	}
	b := v.([]byte)
	if len(b) != 3 || b[0] != 0 || b[1] != 1 || b[2] != 2 {
		t.Fatalf("got %v", b)
	}
}

func TestDecodeDatetimeFromRFC3339(t *testing.T) {
	v, err := Decode([]byte(`"2023-01-01T00:00:00Z"`), mustNode(t, schemapkg.DatetimeDesc()))
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	if !v.(time.Time).Equal(want) {
		t.Fatalf("got %v, want %v", v, want)
	}
}

func TestDecodeArrayTrailingCommaRejected(t *testing.T) {
	node := mustNode(t, schemapkg.ListOf(schemapkg.IntDesc()))
	_, err := Decode([]byte("[1,2,]"), node)
	if err == nil {
		t.Fatal("expected trailing comma to be rejected")
	}
}

func TestDecodeObjectTrailingCommaRejected(t *testing.T) {
	node := mustNode(t, schemapkg.DictOf(schemapkg.StrDesc(), schemapkg.IntDesc()))
	_, err := Decode([]byte(`{"a":1,}`), node)
	if err == nil {
		t.Fatal("expected trailing comma to be rejected")
	}
}

func TestDecodeDictKeyCoercedToInt(t *testing.T) {
	node := mustNode(t, schemapkg.DictOf(schemapkg.IntDesc(), schemapkg.StrDesc()))
	v, err := Decode([]byte(`{"1":"one","2":"two"}`), node)
	if err != nil {
		t.Fatal(err)
	}
	m := v.(map[any]any)
	if m[int64(1)].(string) != "one" {
		t.Fatalf("got %v", m)
	}
}

func TestDecodeRecordObjectForm(t *testing.T) {
	meta, err := schemapkg.NewStructMeta("User", []schemapkg.FieldDef{
		{Name: "name", Desc: schemapkg.StrDesc()},
		{Name: "groups", Desc: schemapkg.ListOf(schemapkg.StrDesc())},
	}, schemapkg.StructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	node := mustNode(t, schemapkg.StructRef(meta))
	v, err := Decode([]byte(`{"name":"alice","groups":["admin"]}`), node)
	if err != nil {
		t.Fatal(err)
	}
	inst := v.(*schemapkg.Instance)
	if inst.GetIndex(0).(string) != "alice" {
		t.Fatalf("got %v", inst.GetIndex(0))
	}
}

// TestScenarioGroupsIntMismatchError covers spec scenario 3: JSON-decode
// {"groups": [123]} against schema User raises a ValidationError whose
// message contains groups[0], "expected STR", and "got int".
func TestScenarioGroupsIntMismatchError(t *testing.T) {
	meta, err := schemapkg.NewStructMeta("User", []schemapkg.FieldDef{
		{Name: "groups", Desc: schemapkg.ListOf(schemapkg.StrDesc())},
	}, schemapkg.StructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	node := mustNode(t, schemapkg.StructRef(meta))
	_, err = Decode([]byte(`{"groups": [123]}`), node)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "groups[0]") {
		t.Fatalf("error message missing groups[0]: %s", msg)
	}
	if !strings.Contains(msg, "expected STR") {
		t.Fatalf("error message missing 'expected STR': %s", msg)
	}
	if !strings.Contains(msg, "got int") {
		t.Fatalf("error message missing 'got int': %s", msg)
	}
}

func TestDecodeUnknownFieldSkipped(t *testing.T) {
	meta, err := schemapkg.NewStructMeta("Point", []schemapkg.FieldDef{
		{Name: "x", Desc: schemapkg.IntDesc()},
	}, schemapkg.StructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	node := mustNode(t, schemapkg.StructRef(meta))
	v, err := Decode([]byte(`{"x":1,"z":[1,2,{"a":1}]}`), node)
	if err != nil {
		t.Fatal(err)
	}
	inst := v.(*schemapkg.Instance)
	if inst.GetIndex(0).(int64) != 1 {
		t.Fatalf("got %v", inst.GetIndex(0))
	}
}

func TestDecodeMissingRequiredFieldErrors(t *testing.T) {
	meta, err := schemapkg.NewStructMeta("Point", []schemapkg.FieldDef{
		{Name: "x", Desc: schemapkg.IntDesc()},
		{Name: "y", Desc: schemapkg.IntDesc()},
	}, schemapkg.StructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	node := mustNode(t, schemapkg.StructRef(meta))
	_, err = Decode([]byte(`{"x":1}`), node)
	if err == nil {
		t.Fatal("expected missing-required-field error")
	}
	if !strings.Contains(err.Error(), "y") {
		t.Fatalf("expected error naming field y, got: %s", err.Error())
	}
}
