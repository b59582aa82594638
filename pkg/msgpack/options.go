package msgpack

import (
	"github.com/blockberries/schemawire/internal/buffer"
	schemapkg "github.com/blockberries/schemawire/pkg/schema"
)

type encOptions struct {
	encHook              schemapkg.EncHook
	writeBufferSize      int
	limits               schemapkg.Limits
	deterministicMapKeys bool
}

func defaultEncOptions() encOptions {
	return encOptions{
		writeBufferSize:      buffer.DefaultReserve,
		limits:               schemapkg.DefaultLimits,
		deterministicMapKeys: true,
	}
}

// EncoderOption configures an Encoder.
type EncoderOption func(*encOptions)

// WithEncHook installs the hook invoked for runtime types the encoder
// cannot natively emit.
func WithEncHook(hook schemapkg.EncHook) EncoderOption {
	return func(o *encOptions) { o.encHook = hook }
}

// WithWriteBufferSize sets the encoder's initial buffer reservation.
// Values below buffer.MinReserve are clamped up to it rather than erroring
// (§6: "write_buffer_size (>= 32)").
func WithWriteBufferSize(n int) EncoderOption {
	return func(o *encOptions) {
		if n < buffer.MinReserve {
			n = buffer.MinReserve
		}
		o.writeBufferSize = n
	}
}

// WithEncodeLimits overrides the resource limits (currently only
// MaxDepth applies on the encode path, guarding enc_hook recursion).
func WithEncodeLimits(l schemapkg.Limits) EncoderOption {
	return func(o *encOptions) { o.limits = l }
}

// WithDeterministicMapKeys controls whether map keys are sorted before
// encoding. Enabled by default for reproducible output; disable for a
// small speedup when determinism across calls does not matter.
func WithDeterministicMapKeys(enabled bool) EncoderOption {
	return func(o *encOptions) { o.deterministicMapKeys = enabled }
}

type decOptions struct {
	decHook schemapkg.DecHook
	extHook schemapkg.ExtHook
	limits  schemapkg.Limits
	tzUTC   bool
}

func defaultDecOptions() decOptions {
	return decOptions{limits: schemapkg.DefaultLimits, tzUTC: true}
}

// DecoderOption configures a Decoder.
type DecoderOption func(*decOptions)

// WithDecHook installs the hook invoked for CUSTOM/CUSTOM_GENERIC schemas.
func WithDecHook(hook schemapkg.DecHook) DecoderOption {
	return func(o *decOptions) { o.decHook = hook }
}

// WithExtHook installs the hook invoked for non-timestamp extension
// types when the schema is ANY or EXT.
func WithExtHook(hook schemapkg.ExtHook) DecoderOption {
	return func(o *decOptions) { o.extHook = hook }
}

// WithDecodeLimits overrides the resource limits enforced while decoding.
func WithDecodeLimits(l schemapkg.Limits) DecoderOption {
	return func(o *decOptions) { o.limits = l }
}
