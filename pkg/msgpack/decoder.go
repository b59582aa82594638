package msgpack

import (
	"fmt"
	"reflect"
	"time"

	"github.com/blockberries/schemawire/internal/wire"
	schemapkg "github.com/blockberries/schemawire/pkg/schema"
)

// Decoder decodes MessagePack bytes against a fixed schema, validating as
// it parses (§4.7).
type Decoder struct {
	schema *schemapkg.TypeNode
	opts   decOptions
}

// NewDecoder builds a Decoder bound to schema.
func NewDecoder(schema *schemapkg.TypeNode, opts ...DecoderOption) *Decoder {
	o := defaultDecOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Decoder{schema: schema, opts: o}
}

// Decode parses data against d's schema and returns the resulting value.
func (d *Decoder) Decode(data []byte) (any, error) {
	if d.opts.limits.MaxMessageSize > 0 && int64(len(data)) > d.opts.limits.MaxMessageSize {
		return nil, schemapkg.NewDecodeError("", nil, 0, "message exceeds maximum size", schemapkg.ErrMaxMessageSize)
	}
	r := newReader(data, d.opts.limits.MaxDepth, d.opts.limits)
	v, err := d.decodeValue(r, d.schema, "", nil)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Decode is the free-function form of NewDecoder(schema, opts...).Decode(data).
func Decode(data []byte, schema *schemapkg.TypeNode, opts ...DecoderOption) (any, error) {
	return NewDecoder(schema, opts...).Decode(data)
}

func (d *Decoder) eofErr(typeName string, path schemapkg.Path, pos int) error {
	return schemapkg.NewDecodeError(typeName, path, pos, "unexpected end of input", schemapkg.ErrUnexpectedEOF)
}

func (d *Decoder) mismatch(typeName string, path schemapkg.Path, expected *schemapkg.TypeNode, got string) error {
	return schemapkg.NewValidationError(typeName, path, expected.Tag().String(), got)
}

// decodeValue is the entry point for a single schema-directed value,
// implementing §4.7's numbered steps.
func (d *Decoder) decodeValue(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	tag := t.Tag()

	if tag == schemapkg.Any {
		return d.decodeAny(r, typeName, path)
	}
	if tag.HasAny(schemapkg.Custom | schemapkg.CustomGeneric) {
		return d.decodeCustom(r, t, typeName, path)
	}

	code, err := r.peekByte()
	if err != nil {
		return nil, d.eofErr(typeName, path, r.pos)
	}

	switch {
	case code == mpNil:
		if !tag.Has(schemapkg.None) {
			return nil, d.mismatch(typeName, path, t, "nil")
		}
		r.readByte()
		return nil, nil
	case code == mpFalse || code == mpTrue:
		if !tag.Has(schemapkg.Bool) {
			return nil, d.mismatch(typeName, path, t, "bool")
		}
		r.readByte()
		return code == mpTrue, nil
	case isPosFixint(code) || isNegFixint(code) || isIntFormat(code):
		return d.decodeIntFamily(r, t, typeName, path)
	case code == mpFloat32 || code == mpFloat64:
		return d.decodeFloatFamily(r, t, typeName, path)
	case isFixstr(code) || code == mpStr8 || code == mpStr16 || code == mpStr32:
		return d.decodeStrFamily(r, t, typeName, path)
	case code == mpBin8 || code == mpBin16 || code == mpBin32:
		return d.decodeBinFamily(r, t, typeName, path)
	case isFixarray(code) || code == mpArray16 || code == mpArray32:
		return d.decodeArrayFamily(r, t, typeName, path)
	case isFixmap(code) || code == mpMap16 || code == mpMap32:
		return d.decodeMapFamily(r, t, typeName, path)
	case isExtFormat(code):
		return d.decodeExtFamily(r, t, typeName, path)
	default:
		return nil, schemapkg.NewDecodeError(typeName, path, r.pos, "invalid opcode", schemapkg.ErrInvalidOpcode)
	}
}

func isIntFormat(code byte) bool {
	switch code {
	case mpUint8, mpUint16, mpUint32, mpUint64, mpInt8, mpInt16, mpInt32, mpInt64:
		return true
	default:
		return false
	}
}

func isExtFormat(code byte) bool {
	switch code {
	case mpFixext1, mpFixext2, mpFixext4, mpFixext8, mpFixext16, mpExt8, mpExt16, mpExt32:
		return true
	default:
		return false
	}
}

// decodeCustom implements §4.7 step 1: decode generically, hand the
// generic value and the custom-type descriptor to dec_hook, and verify
// the hook's result matches the declared custom type (or its origin, for
// CUSTOM_GENERIC).
func (d *Decoder) decodeCustom(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	if t.Tag().Has(schemapkg.None) {
		if b, err := r.peekByte(); err == nil && b == mpNil {
			r.readByte()
			return nil, nil
		}
	}
	generic, err := d.decodeAny(r, typeName, path)
	if err != nil {
		return nil, err
	}
	if d.opts.decHook == nil {
		return nil, schemapkg.NewValidationError(typeName, path, "custom type (dec_hook configured)", "no dec_hook configured")
	}
	custom := t.CustomType()
	val, err := d.opts.decHook(custom, generic)
	if err != nil {
		return nil, &schemapkg.ValidationError{
			DecodeError: schemapkg.NewDecodeError(typeName, path, -1, "dec_hook failed: "+err.Error(), err),
		}
	}
	want := custom.Type
	if custom.Origin != nil {
		want = custom.Origin
	}
	if val != nil && want != nil && !reflect.TypeOf(val).AssignableTo(want) {
		return nil, d.mismatch(typeName, path, t, reflect.TypeOf(val).String())
	}
	return val, nil
}

func (d *Decoder) decodeIntFamily(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	v, err := d.readIntValue(r)
	if err != nil {
		return nil, err
	}
	tag := t.Tag()
	switch {
	case tag.Has(schemapkg.IntEnum):
		meta := t.IntEnumMeta()
		if !meta.Contains(v) {
			return nil, schemapkg.NewValidationError(typeName, path, "enum "+meta.Name, "value not a member")
		}
		return v, nil
	case tag.Has(schemapkg.Int):
		return v, nil
	case tag.Has(schemapkg.Float):
		return float64(v), nil
	default:
		return nil, d.mismatch(typeName, path, t, "int")
	}
}

// readIntValue reads any integer wire format and returns it as an int64,
// matching the narrowest-format encoding the writer chose.
func (d *Decoder) readIntValue(r *reader) (int64, error) {
	code, err := r.readByte()
	if err != nil {
		return 0, err
	}
	switch {
	case isPosFixint(code):
		return int64(code), nil
	case isNegFixint(code):
		return int64(int8(code)), nil
	}
	switch code {
	case mpUint8:
		v, err := r.readUint8()
		return int64(v), err
	case mpUint16:
		v, err := r.readUint16()
		return int64(v), err
	case mpUint32:
		v, err := r.readUint32()
		return int64(v), err
	case mpUint64:
		v, err := r.readUint64()
		return int64(v), err
	case mpInt8:
		v, err := r.readInt8()
		return int64(v), err
	case mpInt16:
		v, err := r.readInt16()
		return int64(v), err
	case mpInt32:
		v, err := r.readInt32()
		return int64(v), err
	case mpInt64:
		return r.readInt64()
	default:
		return 0, schemapkg.ErrInvalidOpcode
	}
}

func (d *Decoder) decodeFloatFamily(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	if !t.Tag().Has(schemapkg.Float) {
		return nil, d.mismatch(typeName, path, t, "float")
	}
	code, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if code == mpFloat32 {
		v, err := r.readFloat32()
		return float64(v), err
	}
	return r.readFloat64()
}

func (d *Decoder) decodeStrFamily(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	s, err := d.readStrValue(r)
	if err != nil {
		return nil, err
	}
	tag := t.Tag()
	switch {
	case tag.Has(schemapkg.Enum):
		meta := t.StrEnumMeta()
		if !meta.Contains(s) {
			return nil, schemapkg.NewValidationError(typeName, path, "enum "+meta.Name, "value not a member")
		}
		return s, nil
	case tag.Has(schemapkg.Str):
		return s, nil
	default:
		return nil, d.mismatch(typeName, path, t, "str")
	}
}

func (d *Decoder) readStrValue(r *reader) (string, error) {
	code, err := r.readByte()
	if err != nil {
		return "", err
	}
	var n int
	switch {
	case isFixstr(code):
		n = int(code & 0x1f)
	case code == mpStr8:
		v, err := r.readUint8()
		if err != nil {
			return "", err
		}
		n = int(v)
	case code == mpStr16:
		v, err := r.readUint16()
		if err != nil {
			return "", err
		}
		n = int(v)
	case code == mpStr32:
		v, err := r.readUint32()
		if err != nil {
			return "", err
		}
		n = int(v)
	default:
		return "", schemapkg.ErrInvalidOpcode
	}
	if err := r.checkStringLimit(n); err != nil {
		return "", err
	}
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *Decoder) decodeBinFamily(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	b, err := d.readBinValue(r)
	if err != nil {
		return nil, err
	}
	tag := t.Tag()
	switch {
	case tag.Has(schemapkg.Bytes), tag.Has(schemapkg.ByteArray):
		return b, nil
	default:
		return nil, d.mismatch(typeName, path, t, "bin")
	}
}

func (d *Decoder) readBinValue(r *reader) ([]byte, error) {
	code, err := r.readByte()
	if err != nil {
		return nil, err
	}
	var n int
	switch code {
	case mpBin8:
		v, err := r.readUint8()
		if err != nil {
			return nil, err
		}
		n = int(v)
	case mpBin16:
		v, err := r.readUint16()
		if err != nil {
			return nil, err
		}
		n = int(v)
	case mpBin32:
		v, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		n = int(v)
	default:
		return nil, schemapkg.ErrInvalidOpcode
	}
	if err := r.checkStringLimit(n); err != nil {
		return nil, err
	}
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

func (d *Decoder) readArrayLen(r *reader) (int, error) {
	code, err := r.readByte()
	if err != nil {
		return 0, err
	}
	switch {
	case isFixarray(code):
		return int(code & 0x0f), nil
	case code == mpArray16:
		v, err := r.readUint16()
		return int(v), err
	case code == mpArray32:
		v, err := r.readUint32()
		return int(v), err
	default:
		return 0, schemapkg.ErrInvalidOpcode
	}
}

func (d *Decoder) readMapLen(r *reader) (int, error) {
	code, err := r.readByte()
	if err != nil {
		return 0, err
	}
	switch {
	case isFixmap(code):
		return int(code & 0x0f), nil
	case code == mpMap16:
		v, err := r.readUint16()
		return int(v), err
	case code == mpMap32:
		v, err := r.readUint32()
		return int(v), err
	default:
		return 0, schemapkg.ErrInvalidOpcode
	}
}

// decodeArrayFamily dispatches a wire array to whichever of
// {FIX_TUPLE, VAR_TUPLE, LIST, SET, array-like STRUCT} the schema admits.
func (d *Decoder) decodeArrayFamily(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	tag := t.Tag()
	if tag.Has(schemapkg.Struct) && t.StructMeta().ArrayLike {
		return d.decodeStructArray(r, t, typeName, path)
	}

	n, err := d.readArrayLen(r)
	if err != nil {
		return nil, err
	}
	if err := r.checkArrayLimit(n); err != nil {
		return nil, err
	}

	switch {
	case tag.Has(schemapkg.FixTuple):
		elems := t.FixElems()
		if n != len(elems) {
			return nil, &schemapkg.ValidationError{
				DecodeError: schemapkg.NewDecodeError(typeName, path, -1,
					fmt.Sprintf("fixed-tuple arity mismatch: expected %d elements, got %d", len(elems), n),
					schemapkg.ErrFixTupleArity),
			}
		}
		if err := r.enter(); err != nil {
			return nil, schemapkg.NewDecodeError(typeName, path, r.pos, err.Error(), err)
		}
		defer r.leave()
		out := make([]any, n)
		for i := 0; i < n; i++ {
			childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathIndex, Index: i})
			v, err := d.decodeValue(r, elems[i], typeName, childPath)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case tag.Has(schemapkg.VarTuple), tag.Has(schemapkg.List):
		elem := t.Elem()
		if err := r.enter(); err != nil {
			return nil, schemapkg.NewDecodeError(typeName, path, r.pos, err.Error(), err)
		}
		defer r.leave()
		out := make([]any, n)
		for i := 0; i < n; i++ {
			childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathIndex, Index: i})
			v, err := d.decodeValue(r, elem, typeName, childPath)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case tag.Has(schemapkg.Set):
		elem := t.Elem()
		if err := r.enter(); err != nil {
			return nil, schemapkg.NewDecodeError(typeName, path, r.pos, err.Error(), err)
		}
		defer r.leave()
		out := schemapkg.NewSet()
		for i := 0; i < n; i++ {
			childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathIndex, Index: i})
			v, err := d.decodeValue(r, elem, typeName, childPath)
			if err != nil {
				return nil, err
			}
			out.Add(v)
		}
		return out, nil
	default:
		return nil, d.mismatch(typeName, path, t, "array")
	}
}

// decodeStructArray implements §4.7's "record (array form)": positional
// consumption up to N elements; missing required → error; surplus
// elements → skipped.
func (d *Decoder) decodeStructArray(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	meta := t.StructMeta()
	n, err := d.readArrayLen(r)
	if err != nil {
		return nil, err
	}
	if err := r.checkArrayLimit(n); err != nil {
		return nil, err
	}
	if err := r.enter(); err != nil {
		return nil, schemapkg.NewDecodeError(typeName, path, r.pos, err.Error(), err)
	}
	defer r.leave()

	inst := schemapkg.NewInstance(meta)
	fields := meta.Fields()
	nameForPath := meta.Name

	for i := 0; i < n && i < len(fields); i++ {
		childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathField, Field: fields[i].Name})
		v, err := d.decodeValue(r, meta.FieldType(i), nameForPath, childPath)
		if err != nil {
			inst.Release()
			return nil, err
		}
		inst.FillIndex(i, v)
	}
	for i := len(fields); i < n; i++ {
		if err := skip(r); err != nil {
			inst.Release()
			return nil, err
		}
	}
	for i := n; i < len(fields); i++ {
		if fields[i].Default == nil {
			inst.Release()
			return nil, schemapkg.NewRequiredFieldError(nameForPath, path, fields[i].Name)
		}
		inst.FillIndex(i, fields[i].Default())
	}
	return inst, nil
}

// decodeMapFamily dispatches a wire map to whichever of
// {DICT, map-form STRUCT} the schema admits.
func (d *Decoder) decodeMapFamily(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	tag := t.Tag()
	if tag.Has(schemapkg.Struct) && !t.StructMeta().ArrayLike {
		return d.decodeStructMap(r, t, typeName, path)
	}
	if !tag.Has(schemapkg.Dict) {
		return nil, d.mismatch(typeName, path, t, "map")
	}

	n, err := d.readMapLen(r)
	if err != nil {
		return nil, err
	}
	if err := r.checkArrayLimit(n); err != nil {
		return nil, err
	}
	if err := r.enter(); err != nil {
		return nil, schemapkg.NewDecodeError(typeName, path, r.pos, err.Error(), err)
	}
	defer r.leave()

	keyType, valType := t.DictKey(), t.DictValue()
	out := make(map[any]any, n)
	for i := 0; i < n; i++ {
		k, err := d.decodeValue(r, keyType, typeName, path)
		if err != nil {
			return nil, err
		}
		childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathKey, Key: formatMapKey(k)})
		v, err := d.decodeValue(r, valType, typeName, childPath)
		if err != nil {
			return nil, err
		}
		out[k] = v // last write wins on a repeated key, matching wire map semantics
	}
	return out, nil
}

func formatMapKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return reflect.ValueOf(k).String()
}

// decodeStructMap implements §4.7's "record (map form)": rolling-hint
// field lookup, unknown keys skipped, missing required fields error,
// missing optional fields get their default.
func (d *Decoder) decodeStructMap(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	meta := t.StructMeta()
	n, err := d.readMapLen(r)
	if err != nil {
		return nil, err
	}
	if err := r.checkArrayLimit(n); err != nil {
		return nil, err
	}
	if err := r.enter(); err != nil {
		return nil, schemapkg.NewDecodeError(typeName, path, r.pos, err.Error(), err)
	}
	defer r.leave()

	inst := schemapkg.NewInstance(meta)
	filled := make([]bool, meta.NumFields())
	nameForPath := meta.Name
	hint := 0

	for i := 0; i < n; i++ {
		key, err := d.readStrValue(r)
		if err != nil {
			inst.Release()
			return nil, err
		}
		idx, next, ok := meta.FieldIndexHint(key, hint)
		if !ok {
			if err := skip(r); err != nil {
				inst.Release()
				return nil, err
			}
			continue
		}
		hint = next
		childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathField, Field: key})
		v, err := d.decodeValue(r, meta.FieldType(idx), nameForPath, childPath)
		if err != nil {
			inst.Release()
			return nil, err
		}
		inst.FillIndex(idx, v) // a repeated key overwrites; last write wins
		filled[idx] = true
	}
	for i, f := range meta.Fields() {
		if filled[i] {
			continue
		}
		if f.Default == nil {
			inst.Release()
			return nil, schemapkg.NewRequiredFieldError(nameForPath, path, f.Name)
		}
		inst.FillIndex(i, f.Default())
	}
	return inst, nil
}

// decodeExtFamily handles the Timestamp extension (code -1) and all other
// extension types, per §4.7 step 4.
func (d *Decoder) decodeExtFamily(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	code, payload, err := d.readExtValue(r)
	if err != nil {
		return nil, err
	}
	tag := t.Tag()
	if code == extTimestamp {
		if !tag.Has(schemapkg.Datetime) {
			return nil, d.mismatch(typeName, path, t, "timestamp")
		}
		return decodeTimestampPayload(payload, d.opts.tzUTC)
	}
	if !tag.Has(schemapkg.Ext) {
		return nil, d.mismatch(typeName, path, t, "ext")
	}
	if d.opts.extHook != nil {
		return d.opts.extHook(code, payload)
	}
	return schemapkg.ExtValue{Code: code, Data: append([]byte(nil), payload...)}, nil
}

func (d *Decoder) readExtValue(r *reader) (int8, []byte, error) {
	code, err := r.readByte()
	if err != nil {
		return 0, nil, err
	}
	var n int
	switch code {
	case mpFixext1:
		n = 1
	case mpFixext2:
		n = 2
	case mpFixext4:
		n = 4
	case mpFixext8:
		n = 8
	case mpFixext16:
		n = 16
	case mpExt8:
		v, err := r.readUint8()
		if err != nil {
			return 0, nil, err
		}
		n = int(v)
	case mpExt16:
		v, err := r.readUint16()
		if err != nil {
			return 0, nil, err
		}
		n = int(v)
	case mpExt32:
		v, err := r.readUint32()
		if err != nil {
			return 0, nil, err
		}
		n = int(v)
	default:
		return 0, nil, schemapkg.ErrInvalidOpcode
	}
	typeCode, err := r.readInt8()
	if err != nil {
		return 0, nil, err
	}
	payload, err := r.take(n)
	if err != nil {
		return 0, nil, err
	}
	return typeCode, payload, nil
}

// decodeTimestampPayload decodes the (seconds, nanoseconds) pair from
// whichever of the timestamp-32/64/96 layouts payload's length matches.
func decodeTimestampPayload(payload []byte, utc bool) (time.Time, error) {
	var sec int64
	var nsec int32
	switch len(payload) {
	case 4:
		v, err := wire.DecodeUint32(payload)
		if err != nil {
			return time.Time{}, err
		}
		sec = int64(v)
	case 8:
		v, err := wire.DecodeUint64(payload)
		if err != nil {
			return time.Time{}, err
		}
		nsec = int32(v >> 34)
		sec = int64(v & 0x3ffffffff)
	case 12:
		nv, err := wire.DecodeUint32(payload[:4])
		if err != nil {
			return time.Time{}, err
		}
		sv, err := wire.DecodeUint64(payload[4:])
		if err != nil {
			return time.Time{}, err
		}
		nsec = int32(nv)
		sec = int64(sv)
	default:
		return time.Time{}, schemapkg.NewDecodeError("", nil, -1, "invalid timestamp extension length", schemapkg.ErrInvalidOpcode)
	}
	t := time.Unix(sec, int64(nsec))
	if utc {
		t = t.UTC()
	}
	return t, nil
}

// decodeAny decodes a value of unconstrained (ANY) schema into its most
// natural native representation.
func (d *Decoder) decodeAny(r *reader, typeName string, path schemapkg.Path) (any, error) {
	code, err := r.peekByte()
	if err != nil {
		return nil, d.eofErr(typeName, path, r.pos)
	}

	switch {
	case code == mpNil:
		r.readByte()
		return nil, nil
	case code == mpFalse || code == mpTrue:
		r.readByte()
		return code == mpTrue, nil
	case isPosFixint(code) || isNegFixint(code) || isIntFormat(code):
		return d.readIntValue(r)
	case code == mpFloat32 || code == mpFloat64:
		rc, _ := r.readByte()
		if rc == mpFloat32 {
			v, err := r.readFloat32()
			return float64(v), err
		}
		return r.readFloat64()
	case isFixstr(code) || code == mpStr8 || code == mpStr16 || code == mpStr32:
		return d.readStrValue(r)
	case code == mpBin8 || code == mpBin16 || code == mpBin32:
		return d.readBinValue(r)
	case isFixarray(code) || code == mpArray16 || code == mpArray32:
		n, err := d.readArrayLen(r)
		if err != nil {
			return nil, err
		}
		if err := r.checkArrayLimit(n); err != nil {
			return nil, err
		}
		if err := r.enter(); err != nil {
			return nil, schemapkg.NewDecodeError(typeName, path, r.pos, err.Error(), err)
		}
		defer r.leave()
		out := make([]any, n)
		for i := 0; i < n; i++ {
			childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathIndex, Index: i})
			v, err := d.decodeAny(r, typeName, childPath)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case isFixmap(code) || code == mpMap16 || code == mpMap32:
		n, err := d.readMapLen(r)
		if err != nil {
			return nil, err
		}
		if err := r.checkArrayLimit(n); err != nil {
			return nil, err
		}
		if err := r.enter(); err != nil {
			return nil, schemapkg.NewDecodeError(typeName, path, r.pos, err.Error(), err)
		}
		defer r.leave()
		out := make(map[any]any, n)
		for i := 0; i < n; i++ {
			k, err := d.decodeAny(r, typeName, path)
			if err != nil {
				return nil, err
			}
			v, err := d.decodeAny(r, typeName, path)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case isExtFormat(code):
		extCode, payload, err := d.readExtValue(r)
		if err != nil {
			return nil, err
		}
		if extCode == extTimestamp {
			return decodeTimestampPayload(payload, d.opts.tzUTC)
		}
		if d.opts.extHook != nil {
			return d.opts.extHook(extCode, payload)
		}
		return schemapkg.ExtValue{Code: extCode, Data: append([]byte(nil), payload...)}, nil
	default:
		return nil, schemapkg.NewDecodeError(typeName, path, r.pos, "invalid opcode", schemapkg.ErrInvalidOpcode)
	}
}
