package schema

import "fmt"

// IntEnumMeta describes an integer-valued enumeration: its members are
// (name, value) pairs, encoded on the wire as the integer value and
// resolved back to a member by value on decode.
type IntEnumMeta struct {
	Name    string
	byValue map[int64]string
	byName  map[string]int64
}

// NewIntEnumMeta builds an IntEnumMeta from a name-to-value map. Returns a
// SchemaError if members is empty or contains a duplicate value.
func NewIntEnumMeta(name string, members map[string]int64) (*IntEnumMeta, error) {
	if len(members) == 0 {
		return nil, NewSchemaError(fmt.Sprintf("int enum %s: no members", name), nil)
	}
	m := &IntEnumMeta{
		Name:    name,
		byValue: make(map[int64]string, len(members)),
		byName:  make(map[string]int64, len(members)),
	}
	for memberName, v := range members {
		if existing, ok := m.byValue[v]; ok {
			return nil, NewSchemaError(fmt.Sprintf("int enum %s: value %d claimed by both %s and %s", name, v, existing, memberName), nil)
		}
		m.byValue[v] = memberName
		m.byName[memberName] = v
	}
	return m, nil
}

// NameOf returns the member name for a value, if one exists.
func (m *IntEnumMeta) NameOf(v int64) (string, bool) {
	name, ok := m.byValue[v]
	return name, ok
}

// ValueOf returns the value for a member name, if one exists.
func (m *IntEnumMeta) ValueOf(name string) (int64, bool) {
	v, ok := m.byName[name]
	return v, ok
}

// Contains reports whether v is a known member value.
func (m *IntEnumMeta) Contains(v int64) bool {
	_, ok := m.byValue[v]
	return ok
}

// StrEnumMeta describes a string-valued enumeration: members are names,
// encoded on the wire as the name itself.
type StrEnumMeta struct {
	Name    string
	members map[string]struct{}
	order   []string
}

// NewStrEnumMeta builds a StrEnumMeta from an ordered member-name list.
// Returns a SchemaError if members is empty or contains a duplicate.
func NewStrEnumMeta(name string, members []string) (*StrEnumMeta, error) {
	if len(members) == 0 {
		return nil, NewSchemaError(fmt.Sprintf("str enum %s: no members", name), nil)
	}
	m := &StrEnumMeta{
		Name:    name,
		members: make(map[string]struct{}, len(members)),
		order:   append([]string(nil), members...),
	}
	for _, memberName := range members {
		if _, ok := m.members[memberName]; ok {
			return nil, NewSchemaError(fmt.Sprintf("str enum %s: duplicate member %q", name, memberName), nil)
		}
		m.members[memberName] = struct{}{}
	}
	return m, nil
}

// Contains reports whether name is a known member.
func (m *StrEnumMeta) Contains(name string) bool {
	_, ok := m.members[name]
	return ok
}

// Members returns the member names in declared order.
func (m *StrEnumMeta) Members() []string {
	return m.order
}
