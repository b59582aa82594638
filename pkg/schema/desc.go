package schema

// DescKind enumerates the shapes a Desc can describe; it is the input
// vocabulary BuildTypeNode consumes to produce a TypeNode.
type DescKind int

const (
	DescAny DescKind = iota
	DescNone
	DescBool
	DescInt
	DescFloat
	DescStr
	DescBytes
	DescByteArray
	DescDatetime
	DescExt
	DescList
	DescSet
	DescVarTuple
	DescTuple
	DescDict
	DescUnion
	DescStructRef
	DescIntEnumRef
	DescStrEnumRef
	DescCustomRef
)

// Desc is a caller-constructed description of an expected type position.
// It is the explicit builder input §9 calls for in place of reflecting
// over language-level type annotations: callers build a Desc tree by hand
// (or a future derive-style generator emits the calls), then pass it to
// BuildTypeNode.
type Desc struct {
	Kind DescKind

	// Elem is the element description for List, Set, and VarTuple.
	Elem *Desc

	// Children holds the positional children of Tuple or the
	// alternatives of Union.
	Children []Desc

	// Key and Value are the child descriptions for Dict.
	Key   *Desc
	Value *Desc

	Struct  *StructMeta
	IntEnum *IntEnumMeta
	StrEnum *StrEnumMeta
	Custom  *CustomType
}

func AnyDesc() Desc       { return Desc{Kind: DescAny} }
func NoneDesc() Desc      { return Desc{Kind: DescNone} }
func BoolDesc() Desc      { return Desc{Kind: DescBool} }
func IntDesc() Desc       { return Desc{Kind: DescInt} }
func FloatDesc() Desc     { return Desc{Kind: DescFloat} }
func StrDesc() Desc       { return Desc{Kind: DescStr} }
func BytesDesc() Desc     { return Desc{Kind: DescBytes} }
func ByteArrayDesc() Desc { return Desc{Kind: DescByteArray} }
func DatetimeDesc() Desc  { return Desc{Kind: DescDatetime} }
func ExtDesc() Desc       { return Desc{Kind: DescExt} }

func ListOf(elem Desc) Desc     { return Desc{Kind: DescList, Elem: &elem} }
func SetOf(elem Desc) Desc      { return Desc{Kind: DescSet, Elem: &elem} }
func VarTupleOf(elem Desc) Desc { return Desc{Kind: DescVarTuple, Elem: &elem} }

func TupleOf(children ...Desc) Desc {
	return Desc{Kind: DescTuple, Children: children}
}

func DictOf(key, value Desc) Desc {
	return Desc{Kind: DescDict, Key: &key, Value: &value}
}

func UnionOf(alternatives ...Desc) Desc {
	return Desc{Kind: DescUnion, Children: alternatives}
}

func StructRef(meta *StructMeta) Desc   { return Desc{Kind: DescStructRef, Struct: meta} }
func IntEnumRef(meta *IntEnumMeta) Desc { return Desc{Kind: DescIntEnumRef, IntEnum: meta} }
func StrEnumRef(meta *StrEnumMeta) Desc { return Desc{Kind: DescStrEnumRef, StrEnum: meta} }
func CustomRef(c *CustomType) Desc      { return Desc{Kind: DescCustomRef, Custom: c} }
