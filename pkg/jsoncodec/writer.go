// Package jsoncodec implements a JSON (RFC 8259) encoder and type-directed
// decoder that validates against a schema.TypeNode as it decodes, mirroring
// pkg/msgpack's fused-parse-and-validate design for the JSON wire format.
package jsoncodec

import (
	"encoding/base64"
	"math"
	"strconv"
	"sync"

	"github.com/blockberries/schemawire/internal/buffer"
	schemapkg "github.com/blockberries/schemawire/pkg/schema"
)

// IsNaNOrInf reports whether v cannot be represented as a JSON number.
func IsNaNOrInf(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// writer accumulates JSON bytes. Container writers use the
// write-element-then-comma, overwrite-the-trailing-comma-with-the-closing-
// bracket technique (§4.6) to avoid branching on first-element.
type writer struct {
	buf      *buffer.Buffer
	depth    int
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

func (w *writer) writeNull() { w.buf.WriteString("null") }

func (w *writer) writeBool(b bool) {
	if b {
		w.buf.WriteString("true")
	} else {
		w.buf.WriteString("false")
	}
}

func (w *writer) writeInt(v int64) {
	var scratch [20]byte
	w.buf.Write(strconv.AppendInt(scratch[:0], v, 10))
}

func (w *writer) writeUint(v uint64) {
	var scratch [20]byte
	w.buf.Write(strconv.AppendUint(scratch[:0], v, 10))
}

func (w *writer) writeFloat(v float64) error {
	if IsNaNOrInf(v) {
		return schemapkg.NewEncodeError("", nil, "float is NaN or infinite, which JSON cannot represent", nil)
	}
	var scratch [32]byte
	w.buf.Write(strconv.AppendFloat(scratch[:0], v, 'g', -1, 64))
	return nil
}

// writeString emits s as a double-quoted JSON string, escaping the
// RFC 8259-mandated characters and control bytes; all other bytes
// (including multi-byte UTF-8 sequences) are copied verbatim.
func (w *writer) writeString(s string) {
	w.buf.WriteByte('"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		if start < i {
			w.buf.WriteString(s[start:i])
		}
		switch c {
		case '"':
			w.buf.WriteString(`\"`)
		case '\\':
			w.buf.WriteString(`\\`)
		case '\b':
			w.buf.WriteString(`\b`)
		case '\f':
			w.buf.WriteString(`\f`)
		case '\n':
			w.buf.WriteString(`\n`)
		case '\r':
			w.buf.WriteString(`\r`)
		case '\t':
			w.buf.WriteString(`\t`)
		default:
			const hex = "0123456789abcdef"
			w.buf.WriteString(`\u00`)
			w.buf.WriteByte(hex[c>>4])
			w.buf.WriteByte(hex[c&0xf])
		}
		start = i + 1
	}
	if start < len(s) {
		w.buf.WriteString(s[start:])
	}
	w.buf.WriteByte('"')
}

// writeBase64 emits b as a base64-encoded JSON string (§4.6's rule for
// byte-string and byte-array schemas).
func (w *writer) writeBase64(b []byte) {
	w.buf.WriteByte('"')
	w.buf.WriteString(base64.StdEncoding.EncodeToString(b))
	w.buf.WriteByte('"')
}

// Container state: beginArray/beginObject write the opening
// bracket; element/pair writes append a trailing comma after every entry;
// end* overwrites that trailing comma with the closing bracket, or just
// appends the closing bracket directly if nothing was written.
func (w *writer) beginArray() { w.buf.WriteByte('[') }

func (w *writer) endArray(wrote bool) {
	if wrote {
		w.buf.Truncate(w.buf.Len() - 1)
	}
	w.buf.WriteByte(']')
}

func (w *writer) beginObject() { w.buf.WriteByte('{') }

func (w *writer) endObject(wrote bool) {
	if wrote {
		w.buf.Truncate(w.buf.Len() - 1)
	}
	w.buf.WriteByte('}')
}

func (w *writer) comma() { w.buf.WriteByte(',') }

func (w *writer) colon() { w.buf.WriteByte(':') }
