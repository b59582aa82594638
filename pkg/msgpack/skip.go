package msgpack

import schemapkg "github.com/blockberries/schemawire/pkg/schema"

// skip consumes exactly one value of any shape from r without
// materialising it (§4.8), used to discard unknown record fields and
// surplus array-form record elements. Behaves like a decode-to-any pass
// that never allocates.
func skip(r *reader) error {
	code, err := r.readByte()
	if err != nil {
		return err
	}

	switch {
	case isPosFixint(code), isNegFixint(code):
		return nil
	case isFixstr(code):
		return skipBytes(r, int(code&0x1f))
	case isFixarray(code):
		return skipN(r, int(code&0x0f), skipValue)
	case isFixmap(code):
		return skipN(r, 2*int(code&0x0f), skipValue)
	}

	switch code {
	case mpNil, mpFalse, mpTrue:
		return nil
	case mpUint8, mpInt8:
		_, err := r.take(1)
		return err
	case mpUint16, mpInt16:
		_, err := r.take(2)
		return err
	case mpUint32, mpInt32, mpFloat32:
		_, err := r.take(4)
		return err
	case mpUint64, mpInt64, mpFloat64:
		_, err := r.take(8)
		return err
	case mpBin8, mpStr8:
		n, err := r.readUint8()
		if err != nil {
			return err
		}
		return skipBytes(r, int(n))
	case mpBin16, mpStr16:
		n, err := r.readUint16()
		if err != nil {
			return err
		}
		return skipBytes(r, int(n))
	case mpBin32, mpStr32:
		n, err := r.readUint32()
		if err != nil {
			return err
		}
		return skipBytes(r, int(n))
	case mpArray16:
		n, err := r.readUint16()
		if err != nil {
			return err
		}
		return skipN(r, int(n), skipValue)
	case mpArray32:
		n, err := r.readUint32()
		if err != nil {
			return err
		}
		return skipN(r, int(n), skipValue)
	case mpMap16:
		n, err := r.readUint16()
		if err != nil {
			return err
		}
		return skipN(r, 2*int(n), skipValue)
	case mpMap32:
		n, err := r.readUint32()
		if err != nil {
			return err
		}
		return skipN(r, 2*int(n), skipValue)
	case mpFixext1:
		return skipExt(r, 1)
	case mpFixext2:
		return skipExt(r, 2)
	case mpFixext4:
		return skipExt(r, 4)
	case mpFixext8:
		return skipExt(r, 8)
	case mpFixext16:
		return skipExt(r, 16)
	case mpExt8:
		n, err := r.readUint8()
		if err != nil {
			return err
		}
		return skipExt(r, int(n))
	case mpExt16:
		n, err := r.readUint16()
		if err != nil {
			return err
		}
		return skipExt(r, int(n))
	case mpExt32:
		n, err := r.readUint32()
		if err != nil {
			return err
		}
		return skipExt(r, int(n))
	default:
		return schemapkg.ErrInvalidOpcode
	}
}

func skipValue(r *reader) error {
	return skip(r)
}

func skipBytes(r *reader, n int) error {
	_, err := r.take(n)
	return err
}

func skipExt(r *reader, n int) error {
	if _, err := r.take(1); err != nil { // type code
		return err
	}
	return skipBytes(r, n)
}

func skipN(r *reader, n int, fn func(*reader) error) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.leave()
	for i := 0; i < n; i++ {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}
