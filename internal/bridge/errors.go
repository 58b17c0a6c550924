package bridge

import (
	"errors"
	"fmt"
)

// Domain errors for the bridge package.
var (
	// ErrInvalidValue is returned when a caller requests a mode, preset, fan
	// or swing value that is not currently valid for the device. It is a
	// caller error: surfaced immediately, never retried.
	ErrInvalidValue = errors.New("bridge: invalid value")

	// ErrNotSupported is returned when an entity does not implement the
	// requested operation at all (e.g. presets on a device without any, or
	// power control on a refrigerator compartment).
	ErrNotSupported = errors.New("bridge: operation not supported")

	// ErrEntityNotFound is returned when a command targets an unknown entity.
	ErrEntityNotFound = errors.New("bridge: entity not found")
)

// invalidValue builds an ErrInvalidValue naming the rejected field and value.
func invalidValue(field, value string) error {
	return fmt.Errorf("%w: %s %q", ErrInvalidValue, field, value)
}
