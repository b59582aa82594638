package schema

// EncHook is invoked when the encoder encounters a runtime value whose
// type it cannot natively emit. Its return value is re-encoded; an error
// propagates as the cause of an EncodeError.
type EncHook func(v any) (any, error)

// DecHook is invoked by the decoder for CUSTOM and CUSTOM_GENERIC
// schemas, receiving the custom type descriptor and the value decoded
// generically as ANY. Its return value must be an instance of the custom
// type (for CUSTOM_GENERIC, its origin).
type DecHook func(custom *CustomType, generic any) (any, error)

// ExtHook is invoked by the MessagePack decoder for non-timestamp
// extension types when the schema is ANY or EXT. payload is a borrow
// valid only for the duration of the call.
type ExtHook func(code int8, payload []byte) (any, error)
