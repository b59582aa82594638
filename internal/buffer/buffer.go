// Package buffer implements the growable output buffer both wire codecs
// write through: a byte region with a length <= capacity invariant, an
// amortised 1.5x growth policy, and two ownership modes.
package buffer

// DefaultReserve is the initial capacity a Buffer reserves when the
// caller does not specify one.
const DefaultReserve = 512

// MinReserve is the floor below which a requested initial capacity is
// clamped up.
const MinReserve = 32

// Buffer is a growable byte region. In owned mode the backing array is
// allocated here and grows freely; in borrowed mode it starts from a
// caller-supplied slice and the caller is expected to use the returned
// bytes directly (e.g. "encode into" at a given offset).
type Buffer struct {
	buf      []byte
	borrowed bool
}

// New creates an owned Buffer with the given initial capacity, clamped up
// to MinReserve.
func New(sizeHint int) *Buffer {
	if sizeHint < MinReserve {
		sizeHint = MinReserve
	}
	return &Buffer{buf: make([]byte, 0, sizeHint)}
}

// NewInto wraps dst as a borrowed Buffer, writing starting at offset.
// offset < 0 means "append to dst's current length"; offset > len(dst)
// clamps to the end.
func NewInto(dst []byte, offset int) *Buffer {
	if offset < 0 || offset > len(dst) {
		offset = len(dst)
	}
	return &Buffer{buf: dst[:offset], borrowed: true}
}

// grow ensures n more bytes can be appended without a further
// reallocation, following new_capacity = max(8, ceil(1.5*required)).
func (b *Buffer) grow(n int) {
	required := len(b.buf) + n
	if required <= cap(b.buf) {
		return
	}
	newCap := (required*3 + 1) / 2
	if newCap < 8 {
		newCap = 8
	}
	nb := make([]byte, len(b.buf), newCap)
	copy(nb, b.buf)
	b.buf = nb
	b.borrowed = false
}

// Write appends p, growing the buffer if needed.
func (b *Buffer) Write(p []byte) {
	b.grow(len(p))
	b.buf = append(b.buf, p...)
}

// WriteByte appends a single byte.
func (b *Buffer) WriteByte(c byte) {
	b.grow(1)
	b.buf = append(b.buf, c)
}

// WriteString appends s without a []byte conversion allocation.
func (b *Buffer) WriteString(s string) {
	b.grow(len(s))
	b.buf = append(b.buf, s...)
}

// Len returns the buffer's current logical length.
func (b *Buffer) Len() int { return len(b.buf) }

// Cap returns the buffer's current capacity.
func (b *Buffer) Cap() int { return cap(b.buf) }

// Truncate resets the logical length to n, retaining capacity. Used to
// discard a partially-written value on error while keeping the buffer
// for reuse.
func (b *Buffer) Truncate(n int) {
	b.buf = b.buf[:n]
}

// Bytes returns the buffer's current contents. The slice is valid until
// the next Write/Reset call.
func (b *Buffer) Bytes() []byte { return b.buf }

// Reset clears the buffer for reuse. Only meaningful in owned mode; a
// borrowed buffer should simply be discarded.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
}
