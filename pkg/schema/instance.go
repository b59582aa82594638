package schema

import (
	"fmt"
	"hash/maphash"
	"reflect"
)

// Instance is a fixed-layout record value: one slot per declared field,
// indexed the same way as its StructMeta's Fields(). It is the erased-
// value-vector representation §9 describes as the alternative to a
// reflected native Go struct — necessary here since a struct's shape must
// be constructible entirely at runtime.
type Instance struct {
	meta   *StructMeta
	values []any
}

// Meta returns the record type metadata for inst.
func (inst *Instance) Meta() *StructMeta {
	return inst.meta
}

// Get returns the value stored for field name.
func (inst *Instance) Get(name string) (any, bool) {
	i, ok := inst.meta.fieldIndex[name]
	if !ok {
		return nil, false
	}
	return inst.values[i], true
}

// GetIndex returns the value stored at slot i.
func (inst *Instance) GetIndex(i int) any {
	return inst.values[i]
}

// Set assigns field name's value. Fails with ErrImmutable if the record
// type disables mutation.
func (inst *Instance) Set(name string, v any) error {
	if inst.meta.Immutable {
		return ErrImmutable
	}
	i, ok := inst.meta.fieldIndex[name]
	if !ok {
		return fmt.Errorf("schemawire: unknown field %q", name)
	}
	inst.values[i] = v
	return nil
}

// SetIndex assigns slot i's value directly; used by callers that already
// know the slot index from a field-type lookup. Subject to the same
// immutability rule as Set, since the instance is already constructed.
func (inst *Instance) SetIndex(i int, v any) error {
	if inst.meta.Immutable {
		return ErrImmutable
	}
	inst.values[i] = v
	return nil
}

// FillIndex assigns slot i's value directly, bypassing the immutability
// check. Immutability guards mutation of an already-constructed instance;
// it does not apply while a decoder is still populating a freshly
// allocated one (NewInstance) field by field.
func (inst *Instance) FillIndex(i int, v any) {
	inst.values[i] = v
}

// newInstance allocates an Instance for meta from its configured
// freelist.
func newInstance(meta *StructMeta) *Instance {
	return &Instance{
		meta:   meta,
		values: meta.freelist.get(len(meta.fields)),
	}
}

// NewInstance allocates a blank Instance of meta with every slot nil, for
// callers (the wire decoders) that fill slots directly via FillIndex rather
// than going through Construct's positional/named argument matching.
func NewInstance(meta *StructMeta) *Instance {
	return newInstance(meta)
}

// Release clears inst's slots and returns its value vector to the
// freelist. Callers that own an Instance exclusively (e.g. after a
// failed decode) may call this to avoid waiting for GC; it is optional.
func (inst *Instance) Release() {
	if inst.values == nil {
		return
	}
	inst.meta.freelist.put(inst.values)
	inst.values = nil
}

// Construct builds a new Instance of m from positional and named
// arguments per §4.3: positional arguments fill fields left to right,
// named arguments fill whatever remains, defaults cover the rest, and any
// field supplied both ways or any unconsumed name is an error.
func (m *StructMeta) Construct(positional []any, named map[string]any) (*Instance, error) {
	inst := newInstance(m)
	consumed := make(map[string]bool, len(named))
	for i, f := range m.fields {
		switch {
		case i < len(positional):
			if _, ok := named[f.Name]; ok {
				inst.Release()
				return nil, &ValidationError{DecodeError: NewDecodeError(m.Name, nil, -1,
					fmt.Sprintf("field %q supplied both positionally and by name", f.Name), ErrDuplicateArgument)}
			}
			inst.values[i] = positional[i]
		default:
			if v, ok := named[f.Name]; ok {
				inst.values[i] = v
				consumed[f.Name] = true
				continue
			}
			if f.Default == nil {
				inst.Release()
				return nil, NewRequiredFieldError(m.Name, nil, f.Name)
			}
			inst.values[i] = f.Default()
		}
	}
	for k := range named {
		if !consumed[k] {
			if _, isField := m.fieldIndex[k]; isField {
				continue // supplied positionally; already checked above
			}
			inst.Release()
			return nil, &ValidationError{DecodeError: NewDecodeError(m.Name, nil, -1,
				fmt.Sprintf("extra keyword argument %q", k), ErrExtraArguments)}
		}
	}
	if m.PostInit != nil {
		if err := m.PostInit(inst); err != nil {
			inst.Release()
			return nil, &ValidationError{DecodeError: NewDecodeError(m.Name, nil, -1, err.Error(), err)}
		}
	}
	return inst, nil
}

// Equal reports whether inst and other have the same StructMeta and
// field-by-field equal values.
func (inst *Instance) Equal(other *Instance) bool {
	if inst == other {
		return true
	}
	if other == nil || inst.meta != other.meta {
		return false
	}
	for i := range inst.values {
		if !reflect.DeepEqual(inst.values[i], other.values[i]) {
			return false
		}
	}
	return true
}

// Hash returns a content hash for inst. Only defined for immutable
// structs; fails with ErrUnhashable if a field holds a slice, map, or
// mutable Instance (none of which support the host's notion of equality-
// by-value).
func (inst *Instance) Hash() (uint64, error) {
	if !inst.meta.Immutable {
		return 0, ErrImmutable
	}
	var h maphash.Hash
	h.SetSeed(hashSeed)
	for _, v := range inst.values {
		if err := hashValue(&h, v); err != nil {
			return 0, err
		}
	}
	return h.Sum64(), nil
}

var hashSeed = maphash.MakeSeed()

func hashValue(h *maphash.Hash, v any) error {
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Slice, reflect.Map:
		return ErrUnhashable
	case reflect.Invalid:
		h.WriteByte(0)
		return nil
	default:
		if inst, ok := v.(*Instance); ok {
			if !inst.meta.Immutable {
				return ErrUnhashable
			}
			sub, err := inst.Hash()
			if err != nil {
				return err
			}
			var buf [8]byte
			for i := range buf {
				buf[i] = byte(sub >> (8 * i))
			}
			h.Write(buf[:])
			return nil
		}
		fmt.Fprintf(h, "%#v", v)
		return nil
	}
}
