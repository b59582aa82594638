package msgpack

import (
	"github.com/blockberries/schemawire/internal/wire"
	schemapkg "github.com/blockberries/schemawire/pkg/schema"
)

// reader holds a borrow of the input buffer for the duration of a single
// decode call (§5: "the decoder holds a borrow of the input buffer...
// and releases it before returning") plus the recursion-depth guard
// shared with container nesting.
type reader struct {
	data     []byte
	pos      int
	depth    int
	maxDepth int
	limits   schemapkg.Limits
}

func newReader(data []byte, maxDepth int, limits schemapkg.Limits) *reader {
	return &reader{data: data, maxDepth: maxDepth, limits: limits}
}

func (r *reader) enter() error {
	r.depth++
	if r.maxDepth > 0 && r.depth > r.maxDepth {
		return schemapkg.ErrMaxDepthExceeded
	}
	return nil
}

func (r *reader) leave() {
	r.depth--
}

func (r *reader) remaining() int {
	return len(r.data) - r.pos
}

func (r *reader) peekByte() (byte, error) {
	if r.remaining() < 1 {
		return 0, schemapkg.ErrUnexpectedEOF
	}
	return r.data[r.pos], nil
}

func (r *reader) readByte() (byte, error) {
	b, err := r.peekByte()
	if err != nil {
		return 0, err
	}
	r.pos++
	return b, nil
}

// take returns the next n bytes as a borrowed slice and advances pos.
func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, schemapkg.ErrUnexpectedEOF
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) readUint8() (uint8, error) {
	b, err := r.readByte()
	return b, err
}

func (r *reader) readUint16() (uint16, error) {
	b, err := r.take(wire.Size16)
	if err != nil {
		return 0, err
	}
	return wire.DecodeUint16(b)
}

func (r *reader) readUint32() (uint32, error) {
	b, err := r.take(wire.Size32)
	if err != nil {
		return 0, err
	}
	return wire.DecodeUint32(b)
}

func (r *reader) readUint64() (uint64, error) {
	b, err := r.take(wire.Size64)
	if err != nil {
		return 0, err
	}
	return wire.DecodeUint64(b)
}

func (r *reader) readInt8() (int8, error) {
	b, err := r.readByte()
	return int8(b), err
}

func (r *reader) readInt16() (int16, error) {
	v, err := r.readUint16()
	return int16(v), err
}

func (r *reader) readInt32() (int32, error) {
	v, err := r.readUint32()
	return int32(v), err
}

func (r *reader) readInt64() (int64, error) {
	v, err := r.readUint64()
	return int64(v), err
}

func (r *reader) readFloat32() (float32, error) {
	b, err := r.take(wire.Float32Len)
	if err != nil {
		return 0, err
	}
	return wire.DecodeFloat32(b)
}

func (r *reader) readFloat64() (float64, error) {
	b, err := r.take(wire.Float64Len)
	if err != nil {
		return 0, err
	}
	return wire.DecodeFloat64(b)
}

// checkStringLimit enforces Limits.MaxStringLength on a decoded string or
// binary payload length.
func (r *reader) checkStringLimit(n int) error {
	if r.limits.MaxStringLength > 0 && n > r.limits.MaxStringLength {
		return schemapkg.ErrMaxStringLength
	}
	return nil
}

// checkArrayLimit enforces Limits.MaxArrayLength on a decoded array/map/
// tuple/set element count.
func (r *reader) checkArrayLimit(n int) error {
	if r.limits.MaxArrayLength > 0 && n > r.limits.MaxArrayLength {
		return schemapkg.ErrMaxArrayLength
	}
	return nil
}
