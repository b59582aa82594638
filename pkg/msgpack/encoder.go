package msgpack

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/blockberries/schemawire/internal/buffer"
	schemapkg "github.com/blockberries/schemawire/pkg/schema"
)

// Encoder encodes Go values to MessagePack, dispatching on each value's
// runtime type rather than a schema (§4.5 takes no schema argument).
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

// Encode returns v's MessagePack encoding.
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

// EncodeInto writes v's MessagePack encoding into dst starting at offset
// (offset < 0 appends to dst's current length; offset > len(dst) clamps
// to the end), growing dst as needed, and returns the resulting slice.
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
		w.writeNil()
		return nil
	}
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			w.writeNil()
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
			return w.writeExt(val.Code, val.Data)
		case time.Time:
			return w.writeTimestamp(val.Unix(), int32(val.Nanosecond()))
		}
	}

	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			w.writeNil()
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Invalid:
		w.writeNil()
		return nil
	case reflect.Bool:
		w.writeBool(rv.Bool())
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		w.writeSignedInt(rv.Int())
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		w.writeUnsignedInt(rv.Uint())
		return nil
	case reflect.Float32, reflect.Float64:
		w.writeFloat64(rv.Float())
		return nil
	case reflect.String:
		return w.writeStr(rv.String())
	}

	if err := w.enter(); err != nil {
		return schemapkg.NewEncodeError(typeName, path, err.Error(), err)
	}
	defer w.leave()

	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return w.writeBin(rv.Bytes())
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

func (e *Encoder) encodeArray(w *writer, rv reflect.Value, typeName string, path schemapkg.Path) error {
	n := rv.Len()
	if err := w.writeArrayHeader(n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathIndex, Index: i})
		if err := e.encodeValue(w, rv.Index(i), typeName, childPath); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeSet(w *writer, s *schemapkg.Set, typeName string, path schemapkg.Path) error {
	items := s.Items()
	if err := w.writeArrayHeader(len(items)); err != nil {
		return err
	}
	for i, it := range items {
		childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathIndex, Index: i})
		if err := e.encodeValue(w, reflect.ValueOf(it), typeName, childPath); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeMap(w *writer, rv reflect.Value, typeName string, path schemapkg.Path) error {
	keys := rv.MapKeys()
	if err := w.writeMapHeader(len(keys)); err != nil {
		return err
	}
	if e.opts.deterministicMapKeys {
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
	}
	for _, k := range keys {
		if err := e.encodeValue(w, k, typeName, path); err != nil {
			return err
		}
		if err := e.encodeValue(w, rv.MapIndex(k), typeName, path); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeInstance(w *writer, inst *schemapkg.Instance, path schemapkg.Path) error {
	meta := inst.Meta()
	fields := meta.Fields()
	if meta.ArrayLike {
		if err := w.writeArrayHeader(len(fields)); err != nil {
			return err
		}
		for i, f := range fields {
			childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathField, Field: f.Name})
			if err := e.encodeValue(w, reflect.ValueOf(inst.GetIndex(i)), meta.Name, childPath); err != nil {
				return err
			}
		}
		return nil
	}
	if err := w.writeMapHeader(len(fields)); err != nil {
		return err
	}
	for i, f := range fields {
		if err := w.writeStr(f.Name); err != nil {
			return err
		}
		childPath := append(path, schemapkg.PathSegment{Kind: schemapkg.PathField, Field: f.Name})
		if err := e.encodeValue(w, reflect.ValueOf(inst.GetIndex(i)), meta.Name, childPath); err != nil {
			return err
		}
	}
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
