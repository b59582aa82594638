package msgpack

import (
	"reflect"
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

func TestDecodePosFixint(t *testing.T) {
	v, err := Decode([]byte{0x7f}, mustNode(t, schemapkg.IntDesc()))
	if err != nil {
		t.Fatal(err)
	}
	if v.(int64) != 127 {
		t.Fatalf("got %v, want 127", v)
	}
}

func TestDecodeUint8Format(t *testing.T) {
	v, err := Decode([]byte{0xcc, 0x80}, mustNode(t, schemapkg.IntDesc()))
	if err != nil {
		t.Fatal(err)
	}
	if v.(int64) != 128 {
		t.Fatalf("got %v, want 128", v)
	}
}

func TestDecodeNegFixint(t *testing.T) {
	v, err := Decode([]byte{0xe0}, mustNode(t, schemapkg.IntDesc()))
	if err != nil {
		t.Fatal(err)
	}
	if v.(int64) != -32 {
		t.Fatalf("got %v, want -32", v)
	}
}

func TestDecodeInt8Format(t *testing.T) {
	v, err := Decode([]byte{0xd0, 0xdf}, mustNode(t, schemapkg.IntDesc()))
	if err != nil {
		t.Fatal(err)
	}
	if v.(int64) != -33 {
		t.Fatalf("got %v, want -33", v)
	}
}

func TestDecodeIntWidensToFloat(t *testing.T) {
	v, err := Decode([]byte{0x05}, mustNode(t, schemapkg.FloatDesc()))
	if err != nil {
		t.Fatal(err)
	}
	if v.(float64) != 5.0 {
		t.Fatalf("got %v, want 5.0", v)
	}
}

func TestDecodeTimestamp32(t *testing.T) {
	data, err := Encode(time.Unix(1000, 0).UTC())
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != mpFixext4 {
		t.Fatalf("expected fixext4, got % x", data)
	}
	v, err := Decode(data, mustNode(t, schemapkg.DatetimeDesc()))
	if err != nil {
		t.Fatal(err)
	}
	got := v.(time.Time)
	if got.Unix() != 1000 {
		t.Fatalf("got %v, want unix 1000", got)
	}
}

func TestDecodeArrayLikeStructHeader(t *testing.T) {
	meta, err := schemapkg.NewStructMeta("Point", []schemapkg.FieldDef{
		{Name: "x", Desc: schemapkg.IntDesc()},
		{Name: "y", Desc: schemapkg.IntDesc()},
	}, schemapkg.StructOptions{ArrayLike: true})
	if err != nil {
		t.Fatal(err)
	}
	node := mustNode(t, schemapkg.StructRef(meta))
	data := []byte{0x92, 0x01, 0x02}
	v, err := Decode(data, node)
	if err != nil {
		t.Fatal(err)
	}
	inst := v.(*schemapkg.Instance)
	if inst.GetIndex(0).(int64) != 1 || inst.GetIndex(1).(int64) != 2 {
		t.Fatalf("got %v, %v", inst.GetIndex(0), inst.GetIndex(1))
	}
}

func TestRoundTripUserWithGroupsAndSet(t *testing.T) {
	meta, err := schemapkg.NewStructMeta("User", []schemapkg.FieldDef{
		{Name: "name", Desc: schemapkg.StrDesc()},
		{Name: "groups", Desc: schemapkg.ListOf(schemapkg.StrDesc())},
		{Name: "tags", Desc: schemapkg.SetOf(schemapkg.StrDesc())},
	}, schemapkg.StructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	node := mustNode(t, schemapkg.StructRef(meta))

	tags := schemapkg.NewSet()
	tags.Add("x")
	tags.Add("y")
	inst, err := meta.Construct([]any{"alice", []any{"admins", "users"}, tags}, nil)
	if err != nil {
		t.Fatal(err)
	}

	data, err := Encode(inst)
	if err != nil {
		t.Fatal(err)
	}

	v, err := Decode(data, node)
	if err != nil {
		t.Fatal(err)
	}
	got := v.(*schemapkg.Instance)
	if got.GetIndex(0).(string) != "alice" {
		t.Fatalf("got name %v", got.GetIndex(0))
	}
	groups := got.GetIndex(1).([]any)
	want := []any{"admins", "users"}
	if !reflect.DeepEqual(groups, want) {
		t.Fatalf("got groups %v, want %v", groups, want)
	}
}

func TestDecodeErrorPathForGroupsMismatch(t *testing.T) {
	meta, err := schemapkg.NewStructMeta("User", []schemapkg.FieldDef{
		{Name: "name", Desc: schemapkg.StrDesc()},
		{Name: "groups", Desc: schemapkg.ListOf(schemapkg.StrDesc())},
	}, schemapkg.StructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	node := mustNode(t, schemapkg.StructRef(meta))

	// map-form record: {"name": "bob", "groups": [1]} — groups[0] is an
	// int where a str is required.
	data := []byte{
		0x82,
		0xa4, 'n', 'a', 'm', 'e',
		0xa3, 'b', 'o', 'b',
		0xa6, 'g', 'r', 'o', 'u', 'p', 's',
		0x91, 0x01,
	}
	_, err = Decode(data, node)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "groups") || !strings.Contains(msg, "STR") || !strings.Contains(msg, "int") {
		t.Fatalf("error message missing expected path/type info: %s", msg)
	}
}

func TestDecodeMapFormRepeatedKeyLastWriteWins(t *testing.T) {
	node := mustNode(t, schemapkg.DictOf(schemapkg.StrDesc(), schemapkg.IntDesc()))
	data := []byte{
		0x82,
		0xa1, 'a', 0x01,
		0xa1, 'a', 0x02,
	}
	v, err := Decode(data, node)
	if err != nil {
		t.Fatal(err)
	}
	m := v.(map[any]any)
	if m["a"].(int64) != 2 {
		t.Fatalf("expected last write to win, got %v", m["a"])
	}
}

func TestDecodeFixTupleArityMismatch(t *testing.T) {
	node := mustNode(t, schemapkg.TupleOf(schemapkg.IntDesc(), schemapkg.IntDesc()))
	data := []byte{0x91, 0x01}
	_, err := Decode(data, node)
	if err == nil {
		t.Fatal("expected arity mismatch error")
	}
}

func TestDecodeUnknownFieldsAreSkipped(t *testing.T) {
	meta, err := schemapkg.NewStructMeta("Point", []schemapkg.FieldDef{
		{Name: "x", Desc: schemapkg.IntDesc()},
	}, schemapkg.StructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	node := mustNode(t, schemapkg.StructRef(meta))
	data := []byte{
		0x82,
		0xa1, 'x', 0x01,
		0xa1, 'z', 0x02,
	}
	v, err := Decode(data, node)
	if err != nil {
		t.Fatal(err)
	}
	inst := v.(*schemapkg.Instance)
	if inst.GetIndex(0).(int64) != 1 {
		t.Fatalf("got %v", inst.GetIndex(0))
	}
}
