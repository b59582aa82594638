package jsoncodec

import schemapkg "github.com/blockberries/schemawire/pkg/schema"

// skip consumes exactly one JSON value of any shape without materialising
// it (§4.9's unknown-field skipper), rejecting trailing commas along the
// way like every other structural parse in this package.
func skip(r *reader) error {
	c, ok := r.peek()
	if !ok {
		return schemapkg.ErrUnexpectedEOF
	}
	switch {
	case c == '"':
		_, err := r.readQuotedString()
		return err
	case c == 'n':
		return r.literal("null")
	case c == 't':
		return r.literal("true")
	case c == 'f':
		return r.literal("false")
	case c == '-' || (c >= '0' && c <= '9'):
		_, _, err := r.readRawNumber()
		return err
	case c == '[':
		return skipArray(r)
	case c == '{':
		return skipObject(r)
	default:
		return schemapkg.NewDecodeError("", nil, r.pos, "unexpected character in JSON input", schemapkg.ErrInvalidJSON)
	}
}

func skipArray(r *reader) error {
	if err := r.expect('['); err != nil {
		return err
	}
	if err := r.enter(); err != nil {
		return err
	}
	defer r.leave()
	if c, ok := r.peek(); ok && c == ']' {
		r.pos++
		return nil
	}
	for {
		if err := skip(r); err != nil {
			return err
		}
		c, err := r.readByte()
		if err != nil {
			return err
		}
		if c == ']' {
			return nil
		}
		if c != ',' {
			return schemapkg.NewDecodeError("", nil, r.pos-1, "expected ',' or ']'", schemapkg.ErrInvalidJSON)
		}
		if c2, ok := r.peek(); ok && c2 == ']' {
			return schemapkg.NewDecodeError("", nil, r.pos, "trailing comma not allowed", schemapkg.ErrInvalidJSON)
		}
	}
}

func skipObject(r *reader) error {
	if err := r.expect('{'); err != nil {
		return err
	}
	if err := r.enter(); err != nil {
		return err
	}
	defer r.leave()
	if c, ok := r.peek(); ok && c == '}' {
		r.pos++
		return nil
	}
	for {
		if c, ok := r.peek(); !ok || c != '"' {
			return schemapkg.NewDecodeError("", nil, r.pos, "object keys must be strings", schemapkg.ErrInvalidJSON)
		}
		if _, err := r.readQuotedString(); err != nil {
			return err
		}
		if err := r.expect(':'); err != nil {
			return err
		}
		if err := skip(r); err != nil {
			return err
		}
		c, err := r.readByte()
		if err != nil {
			return err
		}
		if c == '}' {
			return nil
		}
		if c != ',' {
			return schemapkg.NewDecodeError("", nil, r.pos-1, "expected ',' or '}'", schemapkg.ErrInvalidJSON)
		}
		if c2, ok := r.peek(); ok && c2 == '}' {
			return schemapkg.NewDecodeError("", nil, r.pos, "trailing comma not allowed", schemapkg.ErrInvalidJSON)
		}
	}
}
