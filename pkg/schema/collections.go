package schema

import (
	"fmt"
	"reflect"
)

// Set is the runtime representation of a SET-tagged value: an
// insertion-ordered collection with duplicate coalescing, since Go has no
// native set type. Both codecs insert into it via Add, matching §4.7's
// "insert via the host's set type; duplicates silently coalesce."
type Set struct {
	order []any
	index map[any]int
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{index: make(map[any]int)}
}

// setKey returns a comparable surrogate for v suitable for use as a map
// key. A SET whose element Desc is e.g. BytesDesc() holds []byte members,
// and []byte (like any slice or map) is not comparable — indexing
// s.index[v] directly would panic on the first decode of valid wire
// input. []byte is special-cased to its string conversion (cheap, and
// equal byte content always coalesces as SET§4.7 requires); any other
// non-comparable kind falls back to a %#v rendering, which is still
// consistent hashing/equality for deduplication purposes even though it
// is not the cheapest possible key.
func setKey(v any) any {
	if v == nil {
		return v
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	if reflect.TypeOf(v).Comparable() {
		return v
	}
	return fmt.Sprintf("%#v", v)
}

// Add inserts v if not already present.
func (s *Set) Add(v any) {
	k := setKey(v)
	if _, ok := s.index[k]; ok {
		return
	}
	s.index[k] = len(s.order)
	s.order = append(s.order, v)
}

// Contains reports whether v is a member.
func (s *Set) Contains(v any) bool {
	_, ok := s.index[setKey(v)]
	return ok
}

// Len returns the member count.
func (s *Set) Len() int {
	return len(s.order)
}

// Items returns the members in insertion order.
func (s *Set) Items() []any {
	return s.order
}

// Equal reports whether s and other have the same members, regardless of
// insertion order.
func (s *Set) Equal(other *Set) bool {
	if other == nil || s.Len() != other.Len() {
		return false
	}
	for k := range s.index {
		if _, ok := other.index[k]; !ok {
			return false
		}
	}
	return true
}

// ExtValue is the runtime representation of an EXT-tagged value: a
// MessagePack extension type code plus its opaque payload.
type ExtValue struct {
	Code int8
	Data []byte
}
