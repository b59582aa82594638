package schema

import "fmt"

// BuildTypeNode walks a Desc and produces a TypeNode, validating the §3.1
// union constraints. A Union Desc collects tags and payload slots from
// each alternative into one combined node; every other Desc kind produces
// a single-tag node.
func BuildTypeNode(d Desc) (*TypeNode, error) {
	return buildTypeNode(d, nil)
}

// buildTypeNode is BuildTypeNode's internal entry point, threading a
// visiting set through the recursion so a struct reference that loops
// back on one already being built (a self-referential or mutually
// recursive record schema) can recognize that and stop, instead of
// recursing forever.
func buildTypeNode(d Desc, visiting map[*StructMeta]bool) (*TypeNode, error) {
	if d.Kind == DescAny {
		return anyNode, nil
	}
	if d.Kind == DescUnion {
		return buildUnion(d.Children, visiting)
	}
	n, err := buildSingle(d, visiting)
	if err != nil {
		return nil, err
	}
	if err := validateNode(n); err != nil {
		return nil, err
	}
	return n, nil
}

func buildSingle(d Desc, visiting map[*StructMeta]bool) (*TypeNode, error) {
	switch d.Kind {
	case DescNone:
		return noneNode, nil
	case DescBool:
		return &TypeNode{tag: Bool}, nil
	case DescInt:
		return &TypeNode{tag: Int}, nil
	case DescFloat:
		return &TypeNode{tag: Float}, nil
	case DescStr:
		return &TypeNode{tag: Str}, nil
	case DescBytes:
		return &TypeNode{tag: Bytes}, nil
	case DescByteArray:
		return &TypeNode{tag: ByteArray}, nil
	case DescDatetime:
		return &TypeNode{tag: Datetime}, nil
	case DescExt:
		return &TypeNode{tag: Ext}, nil
	case DescList:
		return buildContainer(List, d.Elem, visiting)
	case DescSet:
		return buildContainer(Set, d.Elem, visiting)
	case DescVarTuple:
		return buildContainer(VarTuple, d.Elem, visiting)
	case DescTuple:
		children := make([]*TypeNode, len(d.Children))
		for i, c := range d.Children {
			cn, err := buildTypeNode(c, visiting)
			if err != nil {
				return nil, err
			}
			children[i] = cn
		}
		return &TypeNode{tag: FixTuple, fixElems: children}, nil
	case DescDict:
		if d.Key == nil || d.Value == nil {
			return nil, NewSchemaError("dict description missing key or value", nil)
		}
		key, err := buildTypeNode(*d.Key, visiting)
		if err != nil {
			return nil, err
		}
		value, err := buildTypeNode(*d.Value, visiting)
		if err != nil {
			return nil, err
		}
		n := &TypeNode{tag: Dict}
		n.slots[slotDictKey] = key
		n.slots[slotDictValue] = value
		return n, nil
	case DescStructRef:
		if d.Struct == nil {
			return nil, NewSchemaError("struct reference is nil", nil)
		}
		if err := d.Struct.ensureFieldTypesBuilt(visiting); err != nil {
			return nil, err
		}
		n := &TypeNode{tag: Struct}
		n.slots[slotRef] = d.Struct
		return n, nil
	case DescIntEnumRef:
		if d.IntEnum == nil {
			return nil, NewSchemaError("int enum reference is nil", nil)
		}
		n := &TypeNode{tag: IntEnum}
		n.slots[slotRef] = d.IntEnum
		return n, nil
	case DescStrEnumRef:
		if d.StrEnum == nil {
			return nil, NewSchemaError("str enum reference is nil", nil)
		}
		n := &TypeNode{tag: Enum}
		n.slots[slotRef] = d.StrEnum
		return n, nil
	case DescCustomRef:
		if d.Custom == nil {
			return nil, NewSchemaError("custom type reference is nil", nil)
		}
		tag := Custom
		if d.Custom.Origin != nil {
			tag = CustomGeneric
		}
		n := &TypeNode{tag: tag}
		n.slots[slotRef] = d.Custom
		return n, nil
	default:
		return nil, NewSchemaError(fmt.Sprintf("unsupported description kind %d", d.Kind), nil)
	}
}

func buildContainer(tag Tag, elem *Desc, visiting map[*StructMeta]bool) (*TypeNode, error) {
	if elem == nil {
		return nil, NewSchemaError("container description missing element type", nil)
	}
	child, err := buildTypeNode(*elem, visiting)
	if err != nil {
		return nil, err
	}
	n := &TypeNode{tag: tag}
	n.slots[slotElem] = child
	return n, nil
}

// buildUnion merges every alternative's tags and payload slots into a
// single combined TypeNode, then validates the result.
func buildUnion(alternatives []Desc, visiting map[*StructMeta]bool) (*TypeNode, error) {
	if len(alternatives) == 0 {
		return nil, NewSchemaError("union with no alternatives", nil)
	}
	combined := &TypeNode{}
	for _, alt := range alternatives {
		n, err := buildTypeNode(alt, visiting)
		if err != nil {
			return nil, err
		}
		if n.tag == Any {
			return anyNode, nil
		}
		mergeInto(combined, n)
	}
	if err := validateNode(combined); err != nil {
		return nil, err
	}
	return combined, nil
}

func mergeInto(dst *TypeNode, src *TypeNode) {
	dst.tag |= src.tag
	for i, v := range src.slots {
		if v != nil {
			dst.slots[i] = v
		}
	}
	if src.fixElems != nil {
		dst.fixElems = src.fixElems
	}
}

// validateNode enforces §3.1's union constraints on a fully-built node.
func validateNode(n *TypeNode) error {
	t := n.tag
	if t.Has(Any) && t != Any {
		return NewSchemaError("ANY must be the only tag", nil)
	}
	if t.HasAny(Custom | CustomGeneric) {
		if t&^(Custom|CustomGeneric|None) != 0 {
			return NewSchemaError("CUSTOM/CUSTOM_GENERIC may combine only with NONE", nil)
		}
	}
	if (t & (Struct | IntEnum | Enum | Custom | CustomGeneric)).Count() > 1 {
		return NewSchemaError("at most one of STRUCT, INT_ENUM, ENUM, CUSTOM per union", nil)
	}
	if (t & containerTags).Count() > 1 {
		return NewSchemaError("at most one of LIST, SET, VAR_TUPLE, FIX_TUPLE per union", nil)
	}
	if t.Has(IntEnum) && t.Has(Int) {
		return NewSchemaError("INT_ENUM excludes INT", nil)
	}
	if t.Has(Enum) && t.Has(Str) {
		return NewSchemaError("ENUM excludes STR", nil)
	}
	if t.Has(Struct) {
		meta := n.StructMeta()
		if meta.ArrayLike {
			if (t & containerTags) != 0 {
				return NewSchemaError("array-like STRUCT may not co-occur with another array-container tag", nil)
			}
		} else if t.Has(Dict) {
			return NewSchemaError("map-form STRUCT may not co-occur with DICT", nil)
		}
	}
	return nil
}
