package jsoncodec

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/blockberries/schemawire/internal/buffer"
	schemapkg "github.com/blockberries/schemawire/pkg/schema"
)

// Encoder encodes Go values to JSON, dispatching on each value's runtime
// type rather than a schema, mirroring pkg/msgpack's Encoder.
type Encoder struct {
	opts encOptions
}

// NewEncoder builds an Encoder with the given options.
func NewEncoder(opts ...EncoderOption) *Encoder {
	o := defaultEncOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Encoder{opts: o}
}

// Encode returns v's JSON encoding.
func (e *Encoder) Encode(v any) ([]byte, error) {
	buf := buffer.New(e.opts.writeBufferSize)
	w := getWriter(buf, e.opts.limits.MaxDepth)
	defer putWriter(w)
	if err := e.encodeValue(w, reflect.ValueOf(v), "", nil); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// EncodeInto writes v's JSON encoding into dst starting at offset.
func (e *Encoder) EncodeInto(v any, dst []byte, offset int) ([]byte, error) {
	buf := buffer.NewInto(dst, offset)
	w := getWriter(buf, e.opts.limits.MaxDepth)
	defer putWriter(w)
	if err := e.encodeValue(w, reflect.ValueOf(v), "", nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode is the free-function form of NewEncoder(opts...).Encode(v).
func Encode(v any, opts ...EncoderOption) ([]byte, error) {
	return NewEncoder(opts...).Encode(v)
}

func (e *Encoder) encodeValue(w *writer, rv reflect.Value, typeName string, path schemapkg.Path) error {
	if !rv.IsValid() {
		w.writeNull()
		return nil
	}
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			w.writeNull()
			return nil
		}
		return e.encodeValue(w, rv.Elem(), typeName, path)
	}

	if rv.CanInterface() {
		switch val := rv.Interface().(type) {
		case *schemapkg.Instance:
			return e.encodeInstance(w, val, path)
		case *schemapkg.Set:
			return e.encodeSet(w, val, typeName, path)
		case schemapkg.ExtValue:
			return e.encodeViaHook(w, reflect.ValueOf(val), typeName, path)
		case time.Time:
			return e.encodeTime(w, val)
		}
	}

	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			w.writeNull()
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Invalid:
		w.writeNull()
		return nil
	case reflect.Bool:
		w.writeBool(rv.Bool())
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.encodeInt(w, rv.Int(), typeName, path)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return e.encodeUint(w, rv.Uint(), typeName, path)
	case reflect.Float32, reflect.Float64:
		if err := w.writeFloat(rv.Float()); err != nil {
			return schemapkg.NewEncodeError(typeName, path, err.Error(), err)
		}
		return nil
	case reflect.String:
		w.writeString(rv.String())
		return nil
	}

	if err := w.enter(); err != nil {
		return schemapkg.NewEncodeError(typeName, path, err.Error(), err)
	}
	defer w.leave()

	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			w.writeBase64(rv.Bytes())
			return nil
		}
		return e.encodeArray(w, rv, typeName, path)
	case reflect.Array:
		return e.encodeArray(w, rv, typeName, path)
	case reflect.Map:
		return e.encodeMap(w, rv, typeName, path)
	default:
		return e.encodeViaHook(w, rv, typeName, path)
	}
}

// encodeInt rejects integers §9 resolves to reject: out of signed-64
// range never happens for a native Go int64, so this only exists to keep
// the int/uint paths symmetric with encodeUint.
func (e *Encoder) encodeInt(w *writer, v int64, typeName string, path schemapkg.Path) error {
	w.writeInt(v)
	return nil
}

// encodeUint rejects values in [2^63, 2^64) unless WithBigInt was
// requested, per §9's Open Question resolution; WithBigInt itself is not
// implemented, so requesting it surfaces ErrNotImplemented rather than
// silently encoding a value the decoder could not round-trip.
func (e *Encoder) encodeUint(w *writer, v uint64, typeName string, path schemapkg.Path) error {
	if v > 1<<63-1 {
		if e.opts.bigInt {
			return schemapkg.NewEncodeError(typeName, path, "big-integer JSON encoding is not implemented", schemapkg.ErrNotImplemented)
		}
		return schemapkg.NewEncodeError(typeName, path, fmt.Sprintf("integer %d exceeds signed 64-bit range for JSON", v), nil)
	}
	w.writeUint(v)
	return nil
}

func (e *Encoder) encodeTime(w *writer, t time.Time) error {
	w.writeString(t.UTC().Format(time.RFC3339Nano))
	return nil
}

func (e *Encoder) encodeArray(w *writer, rv reflect.Value, typeName string, path schemapkg.Path) error {
	w.beginArray()
	n := rv.Len()
	for i := 0; i < n; i++ {
		childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathIndex, Index: i})
		if err := e.encodeValue(w, rv.Index(i), typeName, childPath); err != nil {
			return err
		}
		w.comma()
	}
	w.endArray(n > 0)
	return nil
}

func (e *Encoder) encodeSet(w *writer, s *schemapkg.Set, typeName string, path schemapkg.Path) error {
	items := s.Items()
	w.beginArray()
	for i, it := range items {
		childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathIndex, Index: i})
		if err := e.encodeValue(w, reflect.ValueOf(it), typeName, childPath); err != nil {
			return err
		}
		w.comma()
	}
	w.endArray(len(items) > 0)
	return nil
}

// encodeMap requires string (or string-convertible) keys, per §4.6; keys
// are always sorted for deterministic output, since JSON has no inherent
// map ordering to preserve.
func (e *Encoder) encodeMap(w *writer, rv reflect.Value, typeName string, path schemapkg.Path) error {
	keys := rv.MapKeys()
	keyStrs := make([]string, len(keys))
	for i, k := range keys {
		s, err := mapKeyString(k)
		if err != nil {
			return schemapkg.NewEncodeError(typeName, path, err.Error(), nil)
		}
		keyStrs[i] = s
	}
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return keyStrs[order[a]] < keyStrs[order[b]] })

	w.beginObject()
	for _, i := range order {
		w.writeString(keyStrs[i])
		w.colon()
		childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathKey, Key: keyStrs[i]})
		if err := e.encodeValue(w, rv.MapIndex(keys[i]), typeName, childPath); err != nil {
			return err
		}
		w.comma()
	}
	w.endObject(len(keys) > 0)
	return nil
}

func mapKeyString(k reflect.Value) (string, error) {
	for k.Kind() == reflect.Interface && !k.IsNil() {
		k = k.Elem()
	}
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprint(k.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprint(k.Uint()), nil
	default:
		return "", fmt.Errorf("dict key of type %s is not string-convertible", k.Type())
	}
}

// encodeInstance always emits an object: §4.6 states "the array_like flag
// does not apply to JSON in this core".
func (e *Encoder) encodeInstance(w *writer, inst *schemapkg.Instance, path schemapkg.Path) error {
	meta := inst.Meta()
	fields := meta.Fields()
	w.beginObject()
	for i, f := range fields {
		w.writeString(f.Name)
		w.colon()
		childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathField, Field: f.Name})
		if err := e.encodeValue(w, reflect.ValueOf(inst.GetIndex(i)), meta.Name, childPath); err != nil {
			return err
		}
		w.comma()
	}
	w.endObject(len(fields) > 0)
	return nil
}

func (e *Encoder) encodeViaHook(w *writer, rv reflect.Value, typeName string, path schemapkg.Path) error {
	if e.opts.encHook == nil {
		return schemapkg.NewEncodeError(typeName, path, fmt.Sprintf("unsupported type %s", rv.Type()), nil)
	}
	v2, err := e.opts.encHook(rv.Interface())
	if err != nil {
		return schemapkg.NewEncodeError(typeName, path, "enc_hook failed", err)
	}
	return e.encodeValue(w, reflect.ValueOf(v2), typeName, path)
}
