package schema

import "reflect"

// Payload slot indices within TypeNode.slots. Only one of the reference
// slots (struct/int-enum/str-enum/custom) is ever occupied at once, since
// §3.1 forbids more than one of {STRUCT, INT_ENUM, ENUM, CUSTOM} per union;
// dict's key/value and a sibling array-like child can coexist, so they get
// their own slots.
const (
	slotRef = iota
	slotDictKey
	slotDictValue
	slotElem
	slotCount
)

// CustomType describes the runtime type behind a CUSTOM or CUSTOM_GENERIC
// tag. Origin is set only for CUSTOM_GENERIC and holds the unparametrised
// generic base the decoder compares a decoded value's origin against.
type CustomType struct {
	Type   reflect.Type
	Origin reflect.Type
}

// TypeNode describes an expected type position: a bit-set of tags plus,
// when needed, payload slots referencing children or user-type metadata.
// It has no interior mutability after BuildTypeNode returns it — every
// field below is written once, during construction.
type TypeNode struct {
	tag   Tag
	slots [slotCount]any

	// fixElems holds, in order, the per-position children of a FIX_TUPLE.
	// Unused for every other tag.
	fixElems []*TypeNode
}

// Tag returns the node's tag bit-set.
func (n *TypeNode) Tag() Tag { return n.tag }

// StructMeta returns the struct metadata for a node carrying STRUCT, or nil.
func (n *TypeNode) StructMeta() *StructMeta {
	m, _ := n.slots[slotRef].(*StructMeta)
	return m
}

// IntEnumMeta returns the int-enum metadata for a node carrying INT_ENUM, or nil.
func (n *TypeNode) IntEnumMeta() *IntEnumMeta {
	m, _ := n.slots[slotRef].(*IntEnumMeta)
	return m
}

// StrEnumMeta returns the str-enum metadata for a node carrying ENUM, or nil.
func (n *TypeNode) StrEnumMeta() *StrEnumMeta {
	m, _ := n.slots[slotRef].(*StrEnumMeta)
	return m
}

// CustomType returns the custom-type descriptor for a node carrying CUSTOM
// or CUSTOM_GENERIC, or nil.
func (n *TypeNode) CustomType() *CustomType {
	c, _ := n.slots[slotRef].(*CustomType)
	return c
}

// DictKey returns the key child of a node carrying DICT, or nil.
func (n *TypeNode) DictKey() *TypeNode {
	c, _ := n.slots[slotDictKey].(*TypeNode)
	return c
}

// DictValue returns the value child of a node carrying DICT, or nil.
func (n *TypeNode) DictValue() *TypeNode {
	c, _ := n.slots[slotDictValue].(*TypeNode)
	return c
}

// Elem returns the element child of a node carrying LIST, SET, or
// VAR_TUPLE, or nil.
func (n *TypeNode) Elem() *TypeNode {
	c, _ := n.slots[slotElem].(*TypeNode)
	return c
}

// FixElems returns the ordered per-position children of a node carrying
// FIX_TUPLE, or nil.
func (n *TypeNode) FixElems() []*TypeNode {
	return n.fixElems
}

// anyNode is the single shared instance for the absorbing ANY tag; BuildTypeNode
// always returns this value rather than allocating a fresh one.
var anyNode = &TypeNode{tag: Any}

// noneNode is the shared instance for the NONE tag alone.
var noneNode = &TypeNode{tag: None}
