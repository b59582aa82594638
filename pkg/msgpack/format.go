// Package msgpack implements a MessagePack encoder and type-directed
// decoder that validates against a schema.TypeNode as it decodes,
// fusing parsing with schema validation in a single pass.
package msgpack

// MessagePack format family markers, per the 2017 specification.
const (
	mpPosFixintMax = 0x7f
	mpFixmapMin    = 0x80
	mpFixmapMax    = 0x8f
	mpFixarrayMin  = 0x90
	mpFixarrayMax  = 0x9f
	mpFixstrMin    = 0xa0
	mpFixstrMax    = 0xbf

	mpNil     = 0xc0
	mpUnused  = 0xc1
	mpFalse   = 0xc2
	mpTrue    = 0xc3
	mpBin8    = 0xc4
	mpBin16   = 0xc5
	mpBin32   = 0xc6
	mpExt8    = 0xc7
	mpExt16   = 0xc8
	mpExt32   = 0xc9
	mpFloat32 = 0xca
	mpFloat64 = 0xcb
	mpUint8   = 0xcc
	mpUint16  = 0xcd
	mpUint32  = 0xce
	mpUint64  = 0xcf
	mpInt8    = 0xd0
	mpInt16   = 0xd1
	mpInt32   = 0xd2
	mpInt64   = 0xd3
	mpFixext1 = 0xd4
	mpFixext2 = 0xd5
	mpFixext4 = 0xd6
	mpFixext8 = 0xd7
	mpFixext16 = 0xd8
	mpStr8    = 0xd9
	mpStr16   = 0xda
	mpStr32   = 0xdb
	mpArray16 = 0xdc
	mpArray32 = 0xdd
	mpMap16   = 0xde
	mpMap32   = 0xdf

	mpNegFixintMin = 0xe0
)

// extTimestamp is the reserved MessagePack extension type code for the
// Timestamp extension.
const extTimestamp int8 = -1

func isPosFixint(b byte) bool { return b <= mpPosFixintMax }
func isNegFixint(b byte) bool { return b >= mpNegFixintMin }
func isFixmap(b byte) bool    { return b >= mpFixmapMin && b <= mpFixmapMax }
func isFixarray(b byte) bool  { return b >= mpFixarrayMin && b <= mpFixarrayMax }
func isFixstr(b byte) bool    { return b >= mpFixstrMin && b <= mpFixstrMax }
