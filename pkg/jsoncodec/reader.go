package jsoncodec

import (
	schemapkg "github.com/blockberries/schemawire/pkg/schema"
)

// reader holds a borrow of the input buffer for one decode call plus a
// reusable scratch buffer for un-escaping strings (§4.9), and the
// recursion-depth guard shared with container nesting.
type reader struct {
	data     []byte
	pos      int
	scratch  []byte
	depth    int
	maxDepth int
	limits   schemapkg.Limits
}

func newReader(data []byte, maxDepth int, limits schemapkg.Limits) *reader {
	return &reader{data: data, limits: limits, maxDepth: maxDepth}
}

func (r *reader) enter() error {
	r.depth++
	if r.maxDepth > 0 && r.depth > r.maxDepth {
		return schemapkg.ErrMaxDepthExceeded
	}
	return nil
}

func (r *reader) leave() { r.depth-- }

func isWS(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

func (r *reader) skipWS() {
	for r.pos < len(r.data) && isWS(r.data[r.pos]) {
		r.pos++
	}
}

func (r *reader) peek() (byte, bool) {
	r.skipWS()
	if r.pos >= len(r.data) {
		return 0, false
	}
	return r.data[r.pos], true
}

func (r *reader) readByte() (byte, error) {
	b, ok := r.peek()
	if !ok {
		return 0, schemapkg.ErrUnexpectedEOF
	}
	r.pos++
	return b, nil
}

// expect consumes the next non-whitespace byte, requiring it equal b.
func (r *reader) expect(b byte) error {
	got, err := r.readByte()
	if err != nil {
		return err
	}
	if got != b {
		return schemapkg.NewDecodeError("", nil, r.pos-1, "unexpected character in JSON input", schemapkg.ErrInvalidJSON)
	}
	return nil
}

// literal consumes exactly s, assuming the first byte was already peeked
// to decide which literal to expect.
func (r *reader) literal(s string) error {
	if r.pos+len(s) > len(r.data) || string(r.data[r.pos:r.pos+len(s)]) != s {
		return schemapkg.NewDecodeError("", nil, r.pos, "invalid JSON literal", schemapkg.ErrInvalidJSON)
	}
	r.pos += len(s)
	return nil
}

// readRawNumber consumes a JSON number token and reports whether it
// contains a '.', 'e', or 'E' (and so must be treated as a float).
func (r *reader) readRawNumber() (string, bool, error) {
	start := r.pos
	isFloat := false
	if r.pos < len(r.data) && r.data[r.pos] == '-' {
		r.pos++
	}
	for r.pos < len(r.data) {
		c := r.data[r.pos]
		switch {
		case c >= '0' && c <= '9':
			r.pos++
		case c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-':
			isFloat = true
			r.pos++
		default:
			goto done
		}
	}
done:
	if r.pos == start {
		return "", false, schemapkg.NewDecodeError("", nil, r.pos, "invalid JSON number", schemapkg.ErrInvalidJSON)
	}
	return string(r.data[start:r.pos]), isFloat, nil
}

// readQuotedString consumes a JSON string token (the reader must be
// positioned at the opening quote) and returns its unescaped contents,
// rejecting invalid \u escapes and unterminated strings.
func (r *reader) readQuotedString() (string, error) {
	if err := r.expect('"'); err != nil {
		return "", err
	}
	start := r.pos
	for r.pos < len(r.data) && r.data[r.pos] != '"' && r.data[r.pos] != '\\' {
		r.pos++
	}
	if r.pos < len(r.data) && r.data[r.pos] == '"' {
		s := string(r.data[start:r.pos])
		r.pos++
		return s, nil
	}
	// Slow path: needs unescaping.
	r.scratch = append(r.scratch[:0], r.data[start:r.pos]...)
	for {
		if r.pos >= len(r.data) {
			return "", schemapkg.ErrUnexpectedEOF
		}
		c := r.data[r.pos]
		if c == '"' {
			r.pos++
			return string(r.scratch), nil
		}
		if c != '\\' {
			r.scratch = append(r.scratch, c)
			r.pos++
			continue
		}
		r.pos++
		if r.pos >= len(r.data) {
			return "", schemapkg.ErrUnexpectedEOF
		}
		esc := r.data[r.pos]
		r.pos++
		switch esc {
		case '"':
			r.scratch = append(r.scratch, '"')
		case '\\':
			r.scratch = append(r.scratch, '\\')
		case '/':
			r.scratch = append(r.scratch, '/')
		case 'b':
			r.scratch = append(r.scratch, '\b')
		case 'f':
			r.scratch = append(r.scratch, '\f')
		case 'n':
			r.scratch = append(r.scratch, '\n')
		case 'r':
			r.scratch = append(r.scratch, '\r')
		case 't':
			r.scratch = append(r.scratch, '\t')
		case 'u':
			cp, err := r.readHex4()
			if err != nil {
				return "", err
			}
			if cp >= 0xd800 && cp <= 0xdbff {
				if r.pos+1 < len(r.data) && r.data[r.pos] == '\\' && r.data[r.pos+1] == 'u' {
					r.pos += 2
					low, err := r.readHex4()
					if err != nil {
						return "", err
					}
					if low >= 0xdc00 && low <= 0xdfff {
						cp = 0x10000 + (cp-0xd800)<<10 + (low - 0xdc00)
					} else {
						return "", schemapkg.NewDecodeError("", nil, r.pos, "invalid surrogate pair", schemapkg.ErrInvalidUTF8)
					}
				} else {
					return "", schemapkg.NewDecodeError("", nil, r.pos, "unpaired surrogate", schemapkg.ErrInvalidUTF8)
				}
			} else if cp >= 0xdc00 && cp <= 0xdfff {
				return "", schemapkg.NewDecodeError("", nil, r.pos, "unpaired surrogate", schemapkg.ErrInvalidUTF8)
			}
			r.scratch = appendRune(r.scratch, cp)
		default:
			return "", schemapkg.NewDecodeError("", nil, r.pos, "invalid escape sequence", schemapkg.ErrInvalidJSON)
		}
	}
}

func (r *reader) readHex4() (rune, error) {
	if r.pos+4 > len(r.data) {
		return 0, schemapkg.ErrUnexpectedEOF
	}
	var v rune
	for i := 0; i < 4; i++ {
		c := r.data[r.pos+i]
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			v |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= rune(c-'A') + 10
		default:
			return 0, schemapkg.NewDecodeError("", nil, r.pos, "invalid \\u escape", schemapkg.ErrInvalidJSON)
		}
	}
	r.pos += 4
	return v, nil
}

func appendRune(dst []byte, r rune) []byte {
	if r < 0x80 {
		return append(dst, byte(r))
	}
	var buf [4]byte
	n := encodeRuneUTF8(buf[:], r)
	return append(dst, buf[:n]...)
}

// encodeRuneUTF8 is a small hand-rolled UTF-8 encoder (mirrors the
// byte-counting style of a leading-byte-driven UTF-8 walk) so this package
// does not need to import unicode/utf8 purely for EncodeRune.
func encodeRuneUTF8(buf []byte, r rune) int {
	switch {
	case r < 0x80:
		buf[0] = byte(r)
		return 1
	case r < 0x800:
		buf[0] = 0xC0 | byte(r>>6)
		buf[1] = 0x80 | byte(r&0x3F)
		return 2
	case r < 0x10000:
		buf[0] = 0xE0 | byte(r>>12)
		buf[1] = 0x80 | byte((r>>6)&0x3F)
		buf[2] = 0x80 | byte(r&0x3F)
		return 3
	default:
		buf[0] = 0xF0 | byte(r>>18)
		buf[1] = 0x80 | byte((r>>12)&0x3F)
		buf[2] = 0x80 | byte((r>>6)&0x3F)
		buf[3] = 0x80 | byte(r&0x3F)
		return 4
	}
}

func (r *reader) checkStringLimit(n int) error {
	if r.limits.MaxStringLength > 0 && n > r.limits.MaxStringLength {
		return schemapkg.ErrMaxStringLength
	}
	return nil
}

func (r *reader) checkArrayLimit(n int) error {
	if r.limits.MaxArrayLength > 0 && n > r.limits.MaxArrayLength {
		return schemapkg.ErrMaxArrayLength
	}
	return nil
}
