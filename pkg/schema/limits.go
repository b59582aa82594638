package schema

// Limits bounds the resources a single encode or decode call may consume.
// Shared by both codecs so callers configure one set of knobs regardless
// of wire format.
type Limits struct {
	// MaxMessageSize is the maximum total encoded size in bytes. 0 means
	// no limit.
	MaxMessageSize int64

	// MaxDepth is the maximum nesting depth of structs/containers. 0
	// means no limit.
	MaxDepth int

	// MaxStringLength is the maximum length of a decoded string or bytes
	// value, in bytes. 0 means no limit.
	MaxStringLength int

	// MaxArrayLength is the maximum number of elements in a decoded
	// array, tuple, set, or map. 0 means no limit.
	MaxArrayLength int
}

// DefaultLimits are generous limits suitable for trusted input.
var DefaultLimits = Limits{
	MaxMessageSize:  64 * 1024 * 1024,
	MaxDepth:        100,
	MaxStringLength: 10 * 1024 * 1024,
	MaxArrayLength:  1_000_000,
}

// SecureLimits are conservative limits appropriate for untrusted input.
var SecureLimits = Limits{
	MaxMessageSize:  1 * 1024 * 1024,
	MaxDepth:        32,
	MaxStringLength: 1 * 1024 * 1024,
	MaxArrayLength:  10_000,
}

// NoLimits disables all resource limits. Use only for trusted input.
var NoLimits = Limits{}
