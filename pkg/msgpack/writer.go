package msgpack

import (
	"sync"

	"github.com/blockberries/schemawire/internal/buffer"
	"github.com/blockberries/schemawire/internal/wire"
	schemapkg "github.com/blockberries/schemawire/pkg/schema"
)

// writer accumulates MessagePack bytes. It owns a recursion-depth counter
// shared between container nesting and enc_hook recursion, per §5/§6.
type writer struct {
	buf    *buffer.Buffer
	depth  int
	maxDepth int
}

var writerPool = sync.Pool{
	New: func() any { return &writer{} },
}

func getWriter(buf *buffer.Buffer, maxDepth int) *writer {
	w := writerPool.Get().(*writer)
	w.buf = buf
	w.depth = 0
	w.maxDepth = maxDepth
	return w
}

func putWriter(w *writer) {
	w.buf = nil
	writerPool.Put(w)
}

func (w *writer) enter() error {
	w.depth++
	if w.maxDepth > 0 && w.depth > w.maxDepth {
		return schemapkg.ErrMaxDepthExceeded
	}
	return nil
}

func (w *writer) leave() {
	w.depth--
}

func (w *writer) writeNil()      { w.buf.WriteByte(mpNil) }
func (w *writer) writeBool(b bool) {
	if b {
		w.buf.WriteByte(mpTrue)
	} else {
		w.buf.WriteByte(mpFalse)
	}
}

// writeSignedInt selects the narrowest format across the full int64
// domain: negative fixint/int8/16/32/64, or positive fixint/uint8/16/32/64
// for nonnegative values.
func (w *writer) writeSignedInt(v int64) {
	switch {
	case v >= 0:
		w.writeUnsignedInt(uint64(v))
	case v >= -32:
		w.buf.WriteByte(byte(v))
	case v >= -128:
		w.buf.WriteByte(mpInt8)
		w.buf.WriteByte(byte(v))
	case v >= -32768:
		w.buf.WriteByte(mpInt16)
		w.buf.Write(wire.AppendUint16(nil, uint16(v)))
	case v >= -2147483648:
		w.buf.WriteByte(mpInt32)
		w.buf.Write(wire.AppendUint32(nil, uint32(v)))
	default:
		w.buf.WriteByte(mpInt64)
		w.buf.Write(wire.AppendUint64(nil, uint64(v)))
	}
}

// writeUnsignedInt selects the narrowest unsigned format across the full
// uint64 domain, used both for nonnegative writeSignedInt values and for
// Go unsigned source types (including the [2^63, 2^64) range int64 cannot
// represent).
func (w *writer) writeUnsignedInt(v uint64) {
	switch {
	case v <= mpPosFixintMax:
		w.buf.WriteByte(byte(v))
	case v <= 0xff:
		w.buf.WriteByte(mpUint8)
		w.buf.WriteByte(byte(v))
	case v <= 0xffff:
		w.buf.WriteByte(mpUint16)
		w.buf.Write(wire.AppendUint16(nil, uint16(v)))
	case v <= 0xffffffff:
		w.buf.WriteByte(mpUint32)
		w.buf.Write(wire.AppendUint32(nil, uint32(v)))
	default:
		w.buf.WriteByte(mpUint64)
		w.buf.Write(wire.AppendUint64(nil, v))
	}
}

func (w *writer) writeFloat64(v float64) {
	w.buf.WriteByte(mpFloat64)
	w.buf.Write(wire.AppendFloat64(nil, v))
}

func (w *writer) writeStrHeader(n int) error {
	switch {
	case n <= 31:
		w.buf.WriteByte(byte(mpFixstrMin | n))
	case n <= 0xff:
		w.buf.WriteByte(mpStr8)
		w.buf.WriteByte(byte(n))
	case n <= 0xffff:
		w.buf.WriteByte(mpStr16)
		w.buf.Write(wire.AppendUint16(nil, uint16(n)))
	case int64(n) <= 0xffffffff:
		w.buf.WriteByte(mpStr32)
		w.buf.Write(wire.AppendUint32(nil, uint32(n)))
	default:
		return schemapkg.NewEncodeError("", nil, "string exceeds maximum MessagePack length (2^32-1)", nil)
	}
	return nil
}

func (w *writer) writeStr(s string) error {
	if err := w.writeStrHeader(len(s)); err != nil {
		return err
	}
	w.buf.WriteString(s)
	return nil
}

func (w *writer) writeBinHeader(n int) error {
	switch {
	case n <= 0xff:
		w.buf.WriteByte(mpBin8)
		w.buf.WriteByte(byte(n))
	case n <= 0xffff:
		w.buf.WriteByte(mpBin16)
		w.buf.Write(wire.AppendUint16(nil, uint16(n)))
	case int64(n) <= 0xffffffff:
		w.buf.WriteByte(mpBin32)
		w.buf.Write(wire.AppendUint32(nil, uint32(n)))
	default:
		return schemapkg.NewEncodeError("", nil, "binary exceeds maximum MessagePack length (2^32-1)", nil)
	}
	return nil
}

func (w *writer) writeBin(b []byte) error {
	if err := w.writeBinHeader(len(b)); err != nil {
		return err
	}
	w.buf.Write(b)
	return nil
}

func (w *writer) writeArrayHeader(n int) error {
	switch {
	case n <= 15:
		w.buf.WriteByte(byte(mpFixarrayMin | n))
	case n <= 0xffff:
		w.buf.WriteByte(mpArray16)
		w.buf.Write(wire.AppendUint16(nil, uint16(n)))
	case int64(n) <= 0xffffffff:
		w.buf.WriteByte(mpArray32)
		w.buf.Write(wire.AppendUint32(nil, uint32(n)))
	default:
		return schemapkg.NewEncodeError("", nil, "array exceeds maximum MessagePack length (2^32-1)", nil)
	}
	return nil
}

func (w *writer) writeMapHeader(n int) error {
	switch {
	case n <= 15:
		w.buf.WriteByte(byte(mpFixmapMin | n))
	case n <= 0xffff:
		w.buf.WriteByte(mpMap16)
		w.buf.Write(wire.AppendUint16(nil, uint16(n)))
	case int64(n) <= 0xffffffff:
		w.buf.WriteByte(mpMap32)
		w.buf.Write(wire.AppendUint32(nil, uint32(n)))
	default:
		return schemapkg.NewEncodeError("", nil, "map exceeds maximum MessagePack length (2^32-1)", nil)
	}
	return nil
}

func (w *writer) writeExtHeader(n int, code int8) error {
	switch n {
	case 1:
		w.buf.WriteByte(mpFixext1)
	case 2:
		w.buf.WriteByte(mpFixext2)
	case 4:
		w.buf.WriteByte(mpFixext4)
	case 8:
		w.buf.WriteByte(mpFixext8)
	case 16:
		w.buf.WriteByte(mpFixext16)
	default:
		switch {
		case n <= 0xff:
			w.buf.WriteByte(mpExt8)
			w.buf.WriteByte(byte(n))
		case n <= 0xffff:
			w.buf.WriteByte(mpExt16)
			w.buf.Write(wire.AppendUint16(nil, uint16(n)))
		case int64(n) <= 0xffffffff:
			w.buf.WriteByte(mpExt32)
			w.buf.Write(wire.AppendUint32(nil, uint32(n)))
		default:
			return schemapkg.NewEncodeError("", nil, "extension payload exceeds maximum MessagePack length (2^32-1)", nil)
		}
	}
	w.buf.WriteByte(byte(code))
	return nil
}

// writeExt emits an extension header (choosing a fixext width when data's
// length matches one) followed by its payload.
func (w *writer) writeExt(code int8, data []byte) error {
	if err := w.writeExtHeader(len(data), code); err != nil {
		return err
	}
	w.buf.Write(data)
	return nil
}

// writeTimestamp emits the smallest of the timestamp-32/64/96 layouts
// that exactly represents (sec, nsec).
func (w *writer) writeTimestamp(sec int64, nsec int32) error {
	switch {
	case nsec == 0 && sec >= 0 && sec <= 0xffffffff:
		if err := w.writeExtHeader(4, extTimestamp); err != nil {
			return err
		}
		w.buf.Write(wire.AppendUint32(nil, uint32(sec)))
	case sec >= 0 && sec < (1<<34):
		if err := w.writeExtHeader(8, extTimestamp); err != nil {
			return err
		}
		v := (uint64(nsec) << 34) | uint64(sec)
		w.buf.Write(wire.AppendUint64(nil, v))
	default:
		if err := w.writeExtHeader(12, extTimestamp); err != nil {
			return err
		}
		w.buf.Write(wire.AppendUint32(nil, uint32(nsec)))
		w.buf.Write(wire.AppendUint64(nil, uint64(sec)))
	}
	return nil
}
