package jsoncodec

import (
	"github.com/blockberries/schemawire/internal/buffer"
	schemapkg "github.com/blockberries/schemawire/pkg/schema"
)

type encOptions struct {
	encHook         schemapkg.EncHook
	writeBufferSize int
	limits          schemapkg.Limits
	bigInt          bool
}

func defaultEncOptions() encOptions {
	return encOptions{writeBufferSize: buffer.DefaultReserve, limits: schemapkg.DefaultLimits}
}

// EncoderOption configures an Encoder.
type EncoderOption func(*encOptions)

// WithEncHook installs the hook invoked for runtime types the encoder
// cannot natively emit.
func WithEncHook(hook schemapkg.EncHook) EncoderOption {
	return func(o *encOptions) { o.encHook = hook }
}

// WithWriteBufferSize sets the encoder's initial buffer reservation,
// clamped up to buffer.MinReserve (§6: "write_buffer_size (>= 32)").
func WithWriteBufferSize(n int) EncoderOption {
	return func(o *encOptions) {
		if n < buffer.MinReserve {
			n = buffer.MinReserve
		}
		o.writeBufferSize = n
	}
}

// WithEncodeLimits overrides the resource limits enforced while encoding.
func WithEncodeLimits(l schemapkg.Limits) EncoderOption {
	return func(o *encOptions) { o.limits = l }
}

// WithBigInt is reserved for the "encode out-of-int64-range integers as
// JSON numbers anyway" reading of the large-integer open question. It is
// not implemented: enabling it returns ErrNotImplemented rather than
// silently falling back to the reject behavior, so a caller who opts in
// is not misled into thinking it took effect.
func WithBigInt(enabled bool) EncoderOption {
	return func(o *encOptions) { o.bigInt = enabled }
}

type decOptions struct {
	decHook schemapkg.DecHook
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

// WithDecodeLimits overrides the resource limits enforced while decoding.
func WithDecodeLimits(l schemapkg.Limits) DecoderOption {
	return func(o *decOptions) { o.limits = l }
}
