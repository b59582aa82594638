package jsoncodec

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"strconv"
	"time"

	schemapkg "github.com/blockberries/schemawire/pkg/schema"
)

// Decoder decodes JSON bytes against a fixed schema, validating as it
// parses (§4.9), mirroring pkg/msgpack's Decoder.
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
	if _, ok := r.peek(); ok {
		return nil, schemapkg.NewDecodeError("", nil, r.pos, "trailing data after JSON value", schemapkg.ErrInvalidJSON)
	}
	return v, nil
}

// Decode is the free-function form of NewDecoder(schema, opts...).Decode(data).
func Decode(data []byte, schema *schemapkg.TypeNode, opts ...DecoderOption) (any, error) {
	return NewDecoder(schema, opts...).Decode(data)
}

func (d *Decoder) mismatch(typeName string, path schemapkg.Path, expected *schemapkg.TypeNode, got string) error {
	return schemapkg.NewValidationError(typeName, path, expected.Tag().String(), got)
}

func (d *Decoder) decodeValue(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	tag := t.Tag()
	if tag == schemapkg.Any {
		return d.decodeAny(r, typeName, path)
	}
	if tag.HasAny(schemapkg.Custom | schemapkg.CustomGeneric) {
		return d.decodeCustom(r, t, typeName, path)
	}

	c, ok := r.peek()
	if !ok {
		return nil, schemapkg.NewDecodeError(typeName, path, r.pos, "unexpected end of input", schemapkg.ErrUnexpectedEOF)
	}

	switch {
	case c == 'n':
		if !tag.Has(schemapkg.None) {
			return nil, d.mismatch(typeName, path, t, "null")
		}
		return nil, r.literal("null")
	case c == 't' || c == 'f':
		if !tag.Has(schemapkg.Bool) {
			return nil, d.mismatch(typeName, path, t, "bool")
		}
		if c == 't' {
			return true, r.literal("true")
		}
		return false, r.literal("false")
	case c == '-' || (c >= '0' && c <= '9'):
		return d.decodeNumber(r, t, typeName, path)
	case c == '"':
		return d.decodeString(r, t, typeName, path)
	case c == '[':
		return d.decodeArray(r, t, typeName, path)
	case c == '{':
		return d.decodeObject(r, t, typeName, path)
	default:
		return nil, schemapkg.NewDecodeError(typeName, path, r.pos, "unexpected character in JSON input", schemapkg.ErrInvalidJSON)
	}
}

func (d *Decoder) decodeCustom(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	if t.Tag().Has(schemapkg.None) {
		if c, ok := r.peek(); ok && c == 'n' {
			if err := r.literal("null"); err != nil {
				return nil, err
			}
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

func (d *Decoder) decodeNumber(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	raw, isFloat, err := r.readRawNumber()
	if err != nil {
		return nil, err
	}
	tag := t.Tag()
	switch {
	case tag.Has(schemapkg.IntEnum):
		if isFloat {
			return nil, d.mismatch(typeName, path, t, "float")
		}
		v, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			return nil, schemapkg.NewDecodeError(typeName, path, r.pos, "invalid integer literal", schemapkg.ErrInvalidJSON)
		}
		meta := t.IntEnumMeta()
		if !meta.Contains(v) {
			return nil, schemapkg.NewValidationError(typeName, path, "enum "+meta.Name, "value not a member")
		}
		return v, nil
	case tag.Has(schemapkg.Int) && !isFloat:
		v, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			return nil, schemapkg.NewDecodeError(typeName, path, r.pos, "invalid integer literal", schemapkg.ErrInvalidJSON)
		}
		return v, nil
	case tag.Has(schemapkg.Float):
		v, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			return nil, schemapkg.NewDecodeError(typeName, path, r.pos, "invalid number literal", schemapkg.ErrInvalidJSON)
		}
		return v, nil
	default:
		got := "int"
		if isFloat {
			got = "float"
		}
		return nil, d.mismatch(typeName, path, t, got)
	}
}

func (d *Decoder) decodeString(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	tag := t.Tag()
	switch {
	case tag.Has(schemapkg.Enum):
		s, err := r.readQuotedString()
		if err != nil {
			return nil, err
		}
		meta := t.StrEnumMeta()
		if !meta.Contains(s) {
			return nil, schemapkg.NewValidationError(typeName, path, "enum "+meta.Name, "value not a member")
		}
		return s, nil
	case tag.Has(schemapkg.Str):
		s, err := r.readQuotedString()
		if err != nil {
			return nil, err
		}
		if err := r.checkStringLimit(len(s)); err != nil {
			return nil, err
		}
		return s, nil
	case tag.Has(schemapkg.Bytes), tag.Has(schemapkg.ByteArray):
		s, err := r.readQuotedString()
		if err != nil {
			return nil, err
		}
		b, derr := base64.StdEncoding.DecodeString(s)
		if derr != nil {
			return nil, schemapkg.NewDecodeError(typeName, path, r.pos, "invalid base64", schemapkg.ErrInvalidBase64)
		}
		return b, nil
	case tag.Has(schemapkg.Datetime):
		s, err := r.readQuotedString()
		if err != nil {
			return nil, err
		}
		ts, terr := time.Parse(time.RFC3339Nano, s)
		if terr != nil {
			return nil, schemapkg.NewDecodeError(typeName, path, r.pos, "invalid RFC 3339 timestamp", terr)
		}
		if d.opts.tzUTC {
			ts = ts.UTC()
		}
		return ts, nil
	default:
		if _, err := r.readQuotedString(); err != nil {
			return nil, err
		}
		return nil, d.mismatch(typeName, path, t, "string")
	}
}

func (d *Decoder) decodeArray(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	tag := t.Tag()
	if err := r.expect('['); err != nil {
		return nil, err
	}
	if err := r.enter(); err != nil {
		return nil, schemapkg.NewDecodeError(typeName, path, r.pos, err.Error(), err)
	}
	defer r.leave()

	switch {
	case tag.Has(schemapkg.FixTuple):
		elems := t.FixElems()
		out := make([]any, 0, len(elems))
		if c, ok := r.peek(); ok && c == ']' {
			r.pos++
		} else {
			for i := 0; ; i++ {
				if i >= len(elems) {
					return nil, &schemapkg.ValidationError{DecodeError: schemapkg.NewDecodeError(typeName, path, -1,
						fmt.Sprintf("fixed-tuple arity mismatch: expected %d elements, got more", len(elems)),
						schemapkg.ErrFixTupleArity)}
				}
				childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathIndex, Index: i})
				v, err := d.decodeValue(r, elems[i], typeName, childPath)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
				closed, err := d.nextArrayStep(r)
				if err != nil {
					return nil, err
				}
				if closed {
					break
				}
			}
		}
		if len(out) != len(elems) {
			return nil, &schemapkg.ValidationError{DecodeError: schemapkg.NewDecodeError(typeName, path, -1,
				fmt.Sprintf("fixed-tuple arity mismatch: expected %d elements, got %d", len(elems), len(out)),
				schemapkg.ErrFixTupleArity)}
		}
		return out, nil
	case tag.Has(schemapkg.VarTuple), tag.Has(schemapkg.List):
		elem := t.Elem()
		var out []any
		if c, ok := r.peek(); ok && c == ']' {
			r.pos++
			return []any{}, nil
		}
		for i := 0; ; i++ {
			childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathIndex, Index: i})
			v, err := d.decodeValue(r, elem, typeName, childPath)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			if err := r.checkArrayLimit(len(out)); err != nil {
				return nil, err
			}
			closed, err := d.nextArrayStep(r)
			if err != nil {
				return nil, err
			}
			if closed {
				break
			}
		}
		return out, nil
	case tag.Has(schemapkg.Set):
		elem := t.Elem()
		out := schemapkg.NewSet()
		if c, ok := r.peek(); ok && c == ']' {
			r.pos++
			return out, nil
		}
		for i := 0; ; i++ {
			childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathIndex, Index: i})
			v, err := d.decodeValue(r, elem, typeName, childPath)
			if err != nil {
				return nil, err
			}
			out.Add(v)
			closed, err := d.nextArrayStep(r)
			if err != nil {
				return nil, err
			}
			if closed {
				break
			}
		}
		return out, nil
	default:
		if err := skipArray(r); err != nil {
			return nil, err
		}
		return nil, d.mismatch(typeName, path, t, "array")
	}
}

// nextArrayStep consumes the ',' or ']' after an array element, rejecting
// a trailing comma before ']'.
func (d *Decoder) nextArrayStep(r *reader) (closed bool, err error) {
	c, err := r.readByte()
	if err != nil {
		return false, err
	}
	if c == ']' {
		return true, nil
	}
	if c != ',' {
		return false, schemapkg.NewDecodeError("", nil, r.pos-1, "expected ',' or ']'", schemapkg.ErrInvalidJSON)
	}
	if c2, ok := r.peek(); ok && c2 == ']' {
		return false, schemapkg.NewDecodeError("", nil, r.pos, "trailing comma not allowed", schemapkg.ErrInvalidJSON)
	}
	return false, nil
}

// decodeObject dispatches a JSON object to whichever of {DICT, STRUCT}
// the schema admits. Records always decode from object form in JSON
// (§4.6: "the array_like flag does not apply to JSON in this core").
func (d *Decoder) decodeObject(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	tag := t.Tag()
	if tag.Has(schemapkg.Struct) {
		return d.decodeStruct(r, t, typeName, path)
	}
	if !tag.Has(schemapkg.Dict) {
		if err := skipObject(r); err != nil {
			return nil, err
		}
		return nil, d.mismatch(typeName, path, t, "object")
	}

	if err := r.expect('{'); err != nil {
		return nil, err
	}
	if err := r.enter(); err != nil {
		return nil, schemapkg.NewDecodeError(typeName, path, r.pos, err.Error(), err)
	}
	defer r.leave()

	keyType, valType := t.DictKey(), t.DictValue()
	out := make(map[any]any)
	if c, ok := r.peek(); ok && c == '}' {
		r.pos++
		return out, nil
	}
	for {
		keyStr, err := r.readQuotedString()
		if err != nil {
			return nil, err
		}
		if err := r.expect(':'); err != nil {
			return nil, err
		}
		key, err := d.decodeDictKey(keyStr, keyType, typeName, path)
		if err != nil {
			return nil, err
		}
		childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathKey, Key: keyStr})
		v, err := d.decodeValue(r, valType, typeName, childPath)
		if err != nil {
			return nil, err
		}
		out[key] = v
		c, err := r.readByte()
		if err != nil {
			return nil, err
		}
		if c == '}' {
			break
		}
		if c != ',' {
			return nil, schemapkg.NewDecodeError(typeName, path, r.pos-1, "expected ',' or '}'", schemapkg.ErrInvalidJSON)
		}
		if c2, ok := r.peek(); ok && c2 == '}' {
			return nil, schemapkg.NewDecodeError(typeName, path, r.pos, "trailing comma not allowed", schemapkg.ErrInvalidJSON)
		}
	}
	if err := r.checkArrayLimit(len(out)); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeDictKey parses a JSON object key string against the dict's key
// schema, coercing to int/float/datetime as the schema requires.
func (d *Decoder) decodeDictKey(s string, keyType *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	tag := keyType.Tag()
	switch {
	case tag.Has(schemapkg.Str):
		return s, nil
	case tag.Has(schemapkg.Int):
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, schemapkg.NewValidationError(typeName, path, "int-convertible key", s)
		}
		return v, nil
	case tag.Has(schemapkg.Float):
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, schemapkg.NewValidationError(typeName, path, "float-convertible key", s)
		}
		return v, nil
	case tag.Has(schemapkg.Datetime):
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, schemapkg.NewValidationError(typeName, path, "datetime-convertible key", s)
		}
		return ts, nil
	default:
		return nil, schemapkg.NewValidationError(typeName, path, "string-convertible key", s)
	}
}

// decodeStruct implements the object-form record decode shared by §4.7's
// rolling-hint lookup.
func (d *Decoder) decodeStruct(r *reader, t *schemapkg.TypeNode, typeName string, path schemapkg.Path) (any, error) {
	meta := t.StructMeta()
	if err := r.expect('{'); err != nil {
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

	if c, ok := r.peek(); !ok || c != '}' {
		for {
			key, err := r.readQuotedString()
			if err != nil {
				inst.Release()
				return nil, err
			}
			if err := r.expect(':'); err != nil {
				inst.Release()
				return nil, err
			}
			idx, next, ok := meta.FieldIndexHint(key, hint)
			if !ok {
				if err := skip(r); err != nil {
					inst.Release()
					return nil, err
				}
			} else {
				hint = next
				childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathField, Field: key})
				v, err := d.decodeValue(r, meta.FieldType(idx), nameForPath, childPath)
				if err != nil {
					inst.Release()
					return nil, err
				}
				inst.FillIndex(idx, v)
				filled[idx] = true
			}
			c, err := r.readByte()
			if err != nil {
				inst.Release()
				return nil, err
			}
			if c == '}' {
				break
			}
			if c != ',' {
				inst.Release()
				return nil, schemapkg.NewDecodeError(nameForPath, path, r.pos-1, "expected ',' or '}'", schemapkg.ErrInvalidJSON)
			}
			if c2, ok := r.peek(); ok && c2 == '}' {
				inst.Release()
				return nil, schemapkg.NewDecodeError(nameForPath, path, r.pos, "trailing comma not allowed", schemapkg.ErrInvalidJSON)
			}
		}
	} else {
		r.pos++
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

// decodeAny decodes a value of unconstrained (ANY) schema into its most
// natural native representation.
func (d *Decoder) decodeAny(r *reader, typeName string, path schemapkg.Path) (any, error) {
	c, ok := r.peek()
	if !ok {
		return nil, schemapkg.NewDecodeError(typeName, path, r.pos, "unexpected end of input", schemapkg.ErrUnexpectedEOF)
	}
	switch {
	case c == 'n':
		return nil, r.literal("null")
	case c == 't':
		return true, r.literal("true")
	case c == 'f':
		return false, r.literal("false")
	case c == '-' || (c >= '0' && c <= '9'):
		raw, isFloat, err := r.readRawNumber()
		if err != nil {
			return nil, err
		}
		if isFloat {
			return strconv.ParseFloat(raw, 64)
		}
		return strconv.ParseInt(raw, 10, 64)
	case c == '"':
		return r.readQuotedString()
	case c == '[':
		if err := r.expect('['); err != nil {
			return nil, err
		}
		if err := r.enter(); err != nil {
			return nil, schemapkg.NewDecodeError(typeName, path, r.pos, err.Error(), err)
		}
		defer r.leave()
		var out []any
		if c2, ok := r.peek(); ok && c2 == ']' {
			r.pos++
			return []any{}, nil
		}
		for i := 0; ; i++ {
			childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathIndex, Index: i})
			v, err := d.decodeAny(r, typeName, childPath)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			closed, err := d.nextArrayStep(r)
			if err != nil {
				return nil, err
			}
			if closed {
				break
			}
		}
		return out, nil
	case c == '{':
		if err := r.expect('{'); err != nil {
			return nil, err
		}
		if err := r.enter(); err != nil {
			return nil, schemapkg.NewDecodeError(typeName, path, r.pos, err.Error(), err)
		}
		defer r.leave()
		out := make(map[string]any)
		if c2, ok := r.peek(); ok && c2 == '}' {
			r.pos++
			return out, nil
		}
		for {
			key, err := r.readQuotedString()
			if err != nil {
				return nil, err
			}
			if err := r.expect(':'); err != nil {
				return nil, err
			}
			v, err := d.decodeAny(r, typeName, path)
			if err != nil {
				return nil, err
			}
			out[key] = v
			c2, err := r.readByte()
			if err != nil {
				return nil, err
			}
			if c2 == '}' {
				break
			}
			if c2 != ',' {
				return nil, schemapkg.NewDecodeError(typeName, path, r.pos-1, "expected ',' or '}'", schemapkg.ErrInvalidJSON)
			}
		}
		return out, nil
	default:
		return nil, schemapkg.NewDecodeError(typeName, path, r.pos, "unexpected character in JSON input", schemapkg.ErrInvalidJSON)
	}
}
