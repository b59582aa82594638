package schema

import "testing"

func TestNewStructMetaRejectsDuplicateField(t *testing.T) {
	_, err := NewStructMeta("Point", []FieldDef{
		{Name: "x", Desc: IntDesc()},
		{Name: "x", Desc: IntDesc()},
	}, StructOptions{})
	if err == nil {
		t.Fatal("expected duplicate field name to be rejected")
	}
}

func TestNewStructMetaRejectsRequiredAfterOptional(t *testing.T) {
	_, err := NewStructMeta("Point", []FieldDef{
		{Name: "x", Desc: IntDesc(), Default: func() any { return int64(0) }},
		{Name: "y", Desc: IntDesc()},
	}, StructOptions{})
	if err == nil {
		t.Fatal("expected a required field after an optional one to be rejected")
	}
}

func TestFieldIndexHintWrapsAndFinds(t *testing.T) {
	meta, err := NewStructMeta("Triple", []FieldDef{
		{Name: "a", Desc: IntDesc()},
		{Name: "b", Desc: IntDesc()},
		{Name: "c", Desc: IntDesc()},
	}, StructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	idx, next, ok := meta.FieldIndexHint("c", 0)
	if !ok || idx != 2 {
		t.Fatalf("got idx=%d ok=%v, want idx=2", idx, ok)
	}
	idx, _, ok = meta.FieldIndexHint("a", next)
	if !ok || idx != 0 {
		t.Fatalf("got idx=%d ok=%v, want idx=0 (wrap-around)", idx, ok)
	}
	if _, _, ok := meta.FieldIndexHint("missing", 0); ok {
		t.Fatal("expected unknown field name to miss")
	}
}

func TestConstructPositionalAndDefaults(t *testing.T) {
	meta, err := NewStructMeta("User", []FieldDef{
		{Name: "name", Desc: StrDesc()},
		{Name: "age", Desc: IntDesc(), Default: func() any { return int64(0) }},
	}, StructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	inst, err := meta.Construct([]any{"Alice"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if inst.GetIndex(0).(string) != "Alice" {
		t.Fatalf("got %v", inst.GetIndex(0))
	}
	if inst.GetIndex(1).(int64) != 0 {
		t.Fatalf("got %v, want default 0", inst.GetIndex(1))
	}
}

func TestConstructNamedArguments(t *testing.T) {
	meta, err := NewStructMeta("User", []FieldDef{
		{Name: "name", Desc: StrDesc()},
		{Name: "age", Desc: IntDesc()},
	}, StructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	inst, err := meta.Construct(nil, map[string]any{"name": "Bob", "age": int64(40)})
	if err != nil {
		t.Fatal(err)
	}
	if inst.GetIndex(0).(string) != "Bob" || inst.GetIndex(1).(int64) != 40 {
		t.Fatalf("got name=%v age=%v", inst.GetIndex(0), inst.GetIndex(1))
	}
}

func TestConstructMissingRequiredField(t *testing.T) {
	meta, err := NewStructMeta("User", []FieldDef{
		{Name: "name", Desc: StrDesc()},
	}, StructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := meta.Construct(nil, nil); err == nil {
		t.Fatal("expected missing required field to error")
	}
}

func TestConstructRejectsFieldSuppliedTwice(t *testing.T) {
	meta, err := NewStructMeta("User", []FieldDef{
		{Name: "name", Desc: StrDesc()},
	}, StructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := meta.Construct([]any{"Alice"}, map[string]any{"name": "Bob"}); err == nil {
		t.Fatal("expected field supplied both positionally and by name to error")
	}
}

func TestConstructRejectsExtraNamedArgument(t *testing.T) {
	meta, err := NewStructMeta("User", []FieldDef{
		{Name: "name", Desc: StrDesc()},
	}, StructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := meta.Construct([]any{"Alice"}, map[string]any{"nickname": "Al"}); err == nil {
		t.Fatal("expected unknown named argument to error")
	}
}

func TestSetFieldsRejectsSecondCall(t *testing.T) {
	m := NewStructMetaForward("User")
	if err := m.SetFields([]FieldDef{{Name: "name", Desc: StrDesc()}}, StructOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetFields([]FieldDef{{Name: "name", Desc: StrDesc()}}, StructOptions{}); err == nil {
		t.Fatal("expected a second SetFields call to be rejected")
	}
}

func TestSelfReferentialStructBuildsWithoutDeadlock(t *testing.T) {
	node := NewStructMetaForward("Node")
	err := node.SetFields([]FieldDef{
		{Name: "value", Desc: IntDesc()},
		{Name: "next", Desc: UnionOf(StructRef(node), NoneDesc())},
	}, StructOptions{})
	if err != nil {
		t.Fatal(err)
	}

	typ, err := BuildTypeNode(StructRef(node))
	if err != nil {
		t.Fatal(err)
	}
	if typ.StructMeta() != node {
		t.Fatal("expected the built node to reference the same StructMeta")
	}
	nextType := node.FieldType(1)
	if !nextType.Tag().Has(Struct) || !nextType.Tag().Has(None) {
		t.Fatalf("got next field tag %s, want STRUCT|NONE", nextType.Tag())
	}
	if nextType.StructMeta() != node {
		t.Fatal("expected the self-reference field to resolve back to the same StructMeta")
	}
}

func TestMutuallyRecursiveStructsBuildWithoutDeadlock(t *testing.T) {
	a := NewStructMetaForward("A")
	b := NewStructMetaForward("B")
	if err := a.SetFields([]FieldDef{
		{Name: "label", Desc: StrDesc()},
		{Name: "b", Desc: UnionOf(StructRef(b), NoneDesc())},
	}, StructOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := b.SetFields([]FieldDef{
		{Name: "label", Desc: StrDesc()},
		{Name: "a", Desc: UnionOf(StructRef(a), NoneDesc())},
	}, StructOptions{}); err != nil {
		t.Fatal(err)
	}

	if _, err := BuildTypeNode(StructRef(a)); err != nil {
		t.Fatal(err)
	}
	if a.FieldType(1).StructMeta() != b {
		t.Fatal("expected A.b to resolve to B's StructMeta")
	}
	if b.FieldType(1).StructMeta() != a {
		t.Fatal("expected B.a to resolve to A's StructMeta")
	}
}

func TestConstructRunsPostInit(t *testing.T) {
	meta, err := NewStructMeta("User", []FieldDef{
		{Name: "name", Desc: StrDesc()},
	}, StructOptions{
		PostInit: func(inst *Instance) error {
			return inst.SetIndex(0, "post-init:"+inst.GetIndex(0).(string))
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	inst, err := meta.Construct([]any{"Alice"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if inst.GetIndex(0).(string) != "post-init:Alice" {
		t.Fatalf("got %v", inst.GetIndex(0))
	}
}
