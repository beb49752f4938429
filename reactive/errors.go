package reactive

import "github.com/juju/errors"

const (
	// ErrRunawayCascade is reported through the error handler when writes made by
	// effects keep scheduling more effects past the flush iteration limit. The work
	// that was still pending is dropped.
	ErrRunawayCascade = errors.ConstError("reactive: runaway effect cascade")

	// ErrUnhashableKey is the panic value used when a Map key or Set member cannot be
	// used as a Go map key.
	ErrUnhashableKey = errors.ConstError("reactive: unhashable key")

	// ErrEffectPanic wraps a value recovered from an effect that panicked during a flush.
	ErrEffectPanic = errors.ConstError("reactive: effect panicked")

	ErrInvalidConfig = errors.ConstError("reactive: invalid config")
)
