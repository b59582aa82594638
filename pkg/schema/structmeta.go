package schema

import (
	"fmt"
	"sync/atomic"
)

// DefaultFactory produces a field's default value. It is called once per
// Construct invocation that needs the default, so it must itself allocate
// a fresh value when the default is a mutable collection (§4.4): a
// DefaultFactory of `func() any { return []string{} }` already satisfies
// this, since each call allocates anew.
type DefaultFactory func() any

// FieldDef declares one field of a record type: its name, the Desc used
// to lazily build its TypeNode, and its default (nil means required).
type FieldDef struct {
	Name    string
	Desc    Desc
	Default DefaultFactory
}

// StructOptions configures a record type's construction and encoding
// behavior.
type StructOptions struct {
	// Immutable disallows Instance.Set after construction and enables
	// Instance.Hash.
	Immutable bool

	// ArrayLike encodes instances as an ordered array of field values
	// instead of a field-name-keyed map (MessagePack only; JSON records
	// always encode as objects per §4.6).
	ArrayLike bool

	// PostInit, if set, runs after all fields are assigned during
	// Construct. An error it returns is wrapped as a ValidationError.
	PostInit func(*Instance) error

	// Freelist overrides the pool Instances of this type are allocated
	// from. Defaults to the package-wide defaultFreelist.
	Freelist *Freelist
}

// StructMeta holds per-record-type metadata: ordered fields, defaults,
// lazily-built per-field schemas, and configuration flags.
type StructMeta struct {
	Name string

	fields     []FieldDef
	fieldIndex map[string]int

	Immutable bool
	ArrayLike bool
	PostInit  func(*Instance) error
	freelist  *Freelist

	types []*TypeNode
	built atomic.Bool
	// buildErr is only safe to read once built.Load() is true: the
	// happens-before edge is established by the atomic store in
	// ensureFieldTypesBuilt.
	buildErr error
}

// NewStructMetaForward declares a record type's name without its fields,
// returning the pointer immediately so field Descs built before SetFields
// runs can reference it via StructRef. This is what makes a
// self-referential or mutually recursive record schema constructible at
// all: StructRef needs an already-allocated *StructMeta, and NewStructMeta
// only hands one back once its fields are already known.
func NewStructMetaForward(name string) *StructMeta {
	return &StructMeta{Name: name}
}

// SetFields completes a StructMeta obtained from NewStructMetaForward,
// validating and installing its fields and options exactly as NewStructMeta
// does. It must be called exactly once per StructMeta, before the type is
// used in any Desc other than as a StructRef target.
func (m *StructMeta) SetFields(fields []FieldDef, opts StructOptions) error {
	if m.fieldIndex != nil {
		return NewSchemaError(fmt.Sprintf("struct %s: fields already set", m.Name), nil)
	}
	fieldIndex := make(map[string]int, len(fields))
	seenOptional := false
	for i, f := range fields {
		if f.Name == "" {
			return NewSchemaError(fmt.Sprintf("struct %s: field %d has an empty name", m.Name, i), nil)
		}
		if _, dup := fieldIndex[f.Name]; dup {
			return NewSchemaError(fmt.Sprintf("struct %s: duplicate field name %q", m.Name, f.Name), nil)
		}
		fieldIndex[f.Name] = i
		if f.Default != nil {
			seenOptional = true
		} else if seenOptional {
			return NewSchemaError(fmt.Sprintf("struct %s: required field %q follows an optional field", m.Name, f.Name), nil)
		}
	}
	fl := opts.Freelist
	if fl == nil {
		fl = defaultFreelist
	}
	m.fields = append([]FieldDef(nil), fields...)
	m.fieldIndex = fieldIndex
	m.Immutable = opts.Immutable
	m.ArrayLike = opts.ArrayLike
	m.PostInit = opts.PostInit
	m.freelist = fl
	return nil
}

// NewStructMeta declares a record type. Fields with no default must
// precede fields with one (§3.2's trailing-D convention: the first N-D
// fields are required); field names must be unique within the type.
// Returns a SchemaError on either violation. Callers that need a field to
// reference the type being declared (a cyclic record schema) should use
// NewStructMetaForward and SetFields instead.
func NewStructMeta(name string, fields []FieldDef, opts StructOptions) (*StructMeta, error) {
	m := NewStructMetaForward(name)
	if err := m.SetFields(fields, opts); err != nil {
		return nil, err
	}
	return m, nil
}

// Fields returns the declared fields in order.
func (m *StructMeta) Fields() []FieldDef {
	return m.fields
}

// NumFields returns the field (slot) count.
func (m *StructMeta) NumFields() int {
	return len(m.fields)
}

// FieldType returns the lazily-built TypeNode for field i. Callers must
// have called ensureFieldTypesBuilt (via BuildTypeNode(StructRef(m)) or
// directly) first; codecs always do this before touching a struct schema.
func (m *StructMeta) FieldType(i int) *TypeNode {
	return m.types[i]
}

// ensureFieldTypesBuilt builds every field's TypeNode from its Desc, the
// first time this StructMeta is used in a codec context (§4.2). Per-field
// Descs may reference this very StructMeta, directly or through a chain of
// other structs (cyclic record types); visiting tracks the StructMetas
// already being built further up the current call stack so a reference
// back to one of them short-circuits instead of re-entering its build.
// That reference only needs m's identity, not its fully-built field
// types yet — those are filled in once the outer build this call is
// nested inside finishes.
//
// Like the teacher's struct-info cache, this does not block a concurrent
// first-use build of the same StructMeta from a second goroutine: the
// build is a pure function of m.fields, so two goroutines racing to build
// it redundantly both compute the same result and the atomic built.Store
// at the end of each simply makes the last one to finish win. A mutex
// held across the recursive calls into other StructMetas below would
// instead risk a cross-goroutine lock-ordering deadlock on a cycle
// entered from both ends at once, which is worse than the rare
// duplicated work this allows.
func (m *StructMeta) ensureFieldTypesBuilt(visiting map[*StructMeta]bool) error {
	if m.built.Load() {
		return m.buildErr
	}
	if visiting[m] {
		return nil
	}
	if visiting == nil {
		visiting = make(map[*StructMeta]bool)
	}
	visiting[m] = true
	defer delete(visiting, m)

	types := make([]*TypeNode, len(m.fields))
	for i, f := range m.fields {
		n, berr := buildTypeNode(f.Desc, visiting)
		if berr != nil {
			buildErr := NewSchemaError(fmt.Sprintf("struct %s field %q: %v", m.Name, f.Name, berr), berr)
			m.buildErr = buildErr
			m.built.Store(true)
			return buildErr
		}
		types[i] = n
	}
	m.types = types
	m.built.Store(true)
	return nil
}

// FieldIndexHint resolves name to a field index using a rolling-hint
// linear scan that starts just after the previous hit: when keys arrive
// in declared order (the common case for both MessagePack map-form and
// JSON object-form struct decoding), this is amortised O(1) rather than a
// map lookup per field. Returns the index, the hint to pass on the next
// call, and whether name was found.
func (m *StructMeta) FieldIndexHint(name string, hint int) (idx, nextHint int, ok bool) {
	n := len(m.fields)
	if n == 0 {
		return 0, 0, false
	}
	if hint < 0 || hint >= n {
		hint = 0
	}
	for i := 0; i < n; i++ {
		j := hint + i
		if j >= n {
			j -= n
		}
		if m.fields[j].Name == name {
			next := j + 1
			if next >= n {
				next = 0
			}
			return j, next, true
		}
	}
	return 0, hint, false
}

// FieldByName returns the field index for name via direct map lookup.
func (m *StructMeta) FieldByName(name string) (int, bool) {
	i, ok := m.fieldIndex[name]
	return i, ok
}
