package msgpack

import (
	"bytes"
	"testing"
	"time"

	schemapkg "github.com/blockberries/schemawire/pkg/schema"
)

// TestScenarioUserWithGroupsSetAndNilEmail covers spec scenario 1: encode
// a User record with a set field and a nil-admitting field, then decode
// back to an equal record.
func TestScenarioUserWithGroupsSetAndNilEmail(t *testing.T) {
	meta, err := schemapkg.NewStructMeta("User", []schemapkg.FieldDef{
		{Name: "name", Desc: schemapkg.StrDesc()},
		{Name: "groups", Desc: schemapkg.SetOf(schemapkg.StrDesc())},
		{Name: "email", Desc: schemapkg.UnionOf(schemapkg.StrDesc(), schemapkg.NoneDesc())},
	}, schemapkg.StructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	node, err := schemapkg.BuildTypeNode(schemapkg.StructRef(meta))
	if err != nil {
		t.Fatal(err)
	}

	groups := schemapkg.NewSet()
	groups.Add("admin")
	inst, err := meta.Construct([]any{"alice", groups, nil}, nil)
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
		t.Fatalf("name mismatch: %v", got.GetIndex(0))
	}
	set, ok := got.GetIndex(1).(*schemapkg.Set)
	if !ok {
		t.Fatalf("expected groups to decode as a set, got %T", got.GetIndex(1))
	}
	if len(set.Items()) != 1 || set.Items()[0].(string) != "admin" {
		t.Fatalf("unexpected groups contents: %v", set.Items())
	}
	if got.GetIndex(2) != nil {
		t.Fatalf("expected email nil, got %v", got.GetIndex(2))
	}
}

// TestScenarioIntegerFormatBoundaries covers spec scenario 2.
func TestScenarioIntegerFormatBoundaries(t *testing.T) {
	cases := []struct {
		v    int64
		want []byte
	}{
		{127, []byte{0x7f}},
		{128, []byte{0xcc, 0x80}},
		{-32, []byte{0xe0}},
		{-33, []byte{0xd0, 0xdf}},
	}
	for _, c := range cases {
		got, err := Encode(c.v)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, c.want) {
			t.Fatalf("Encode(%d) = % x, want % x", c.v, got, c.want)
		}
	}
}

// TestScenarioTimestampFixext4RoundTrip covers spec scenario 4.
func TestScenarioTimestampFixext4RoundTrip(t *testing.T) {
	want := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	data, err := Encode(want)
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != mpFixext4 || int8(data[1]) != extTimestamp {
		t.Fatalf("expected fixext4 timestamp header, got % x", data)
	}
	node, err := schemapkg.BuildTypeNode(schemapkg.DatetimeDesc())
	if err != nil {
		t.Fatal(err)
	}
	v, err := Decode(data, node)
	if err != nil {
		t.Fatal(err)
	}
	got := v.(time.Time)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// TestScenarioArrayLikePointEncoding covers spec scenario 5.
func TestScenarioArrayLikePointEncoding(t *testing.T) {
	meta, err := schemapkg.NewStructMeta("Point", []schemapkg.FieldDef{
		{Name: "x", Desc: schemapkg.FloatDesc()},
		{Name: "y", Desc: schemapkg.FloatDesc()},
	}, schemapkg.StructOptions{ArrayLike: true})
	if err != nil {
		t.Fatal(err)
	}
	inst, err := meta.Construct([]any{1.5, 2.0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Encode(inst)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 19 || got[0] != 0x92 {
		t.Fatalf("expected 0x92 header followed by two float64s, got % x", got)
	}
}
