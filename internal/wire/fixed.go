// Package wire implements the low-level, big-endian fixed-width byte
// primitives the MessagePack codec builds its opcodes on top of.
// MessagePack headers are a one-byte family marker followed by a
// fixed-width big-endian length or value field — there is no varint or
// protobuf-style field tag in this wire format, so this package carries
// only the fixed-width helpers (no float canonicalization either: §4.5
// requires floats to round-trip their exact bits, not a canonical NaN).
package wire

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrTruncated indicates the input ran out of bytes before a fixed-width
// field could be read.
var ErrTruncated = errors.New("schemawire: truncated fixed-width field")

// Size constants for fixed-width fields.
const (
	Size8      = 1
	Size16     = 2
	Size32     = 4
	Size64     = 8
	Float32Len = 4
	Float64Len = 8
)

// AppendUint16 appends a big-endian uint16.
func AppendUint16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

// AppendUint32 appends a big-endian uint32.
func AppendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// AppendUint64 appends a big-endian uint64.
func AppendUint64(buf []byte, v uint64) []byte {
	return append(buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v),
	)
}

// AppendFloat32 appends v's raw IEEE-754 bits, big-endian, unmodified.
func AppendFloat32(buf []byte, v float32) []byte {
	return AppendUint32(buf, math.Float32bits(v))
}

// AppendFloat64 appends v's raw IEEE-754 bits, big-endian, unmodified.
func AppendFloat64(buf []byte, v float64) []byte {
	return AppendUint64(buf, math.Float64bits(v))
}

// DecodeUint16 reads a big-endian uint16.
func DecodeUint16(data []byte) (uint16, error) {
	if len(data) < 2 {
		return 0, ErrTruncated
	}
	return binary.BigEndian.Uint16(data), nil
}

// DecodeUint32 reads a big-endian uint32.
func DecodeUint32(data []byte) (uint32, error) {
	if len(data) < 4 {
		return 0, ErrTruncated
	}
	return binary.BigEndian.Uint32(data), nil
}

// DecodeUint64 reads a big-endian uint64.
func DecodeUint64(data []byte) (uint64, error) {
	if len(data) < 8 {
		return 0, ErrTruncated
	}
	return binary.BigEndian.Uint64(data), nil
}

// DecodeFloat32 reads 4 raw big-endian IEEE-754 bytes.
func DecodeFloat32(data []byte) (float32, error) {
	bits, err := DecodeUint32(data)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// DecodeFloat64 reads 8 raw big-endian IEEE-754 bytes.
func DecodeFloat64(data []byte) (float64, error) {
	bits, err := DecodeUint64(data)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}
