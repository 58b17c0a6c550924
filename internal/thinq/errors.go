package thinq

import "errors"

// Domain errors for the ThinQ session layer.
var (
	// ErrNotConnected is returned when an operation requires an authenticated
	// session but none is established.
	ErrNotConnected = errors.New("thinq: not connected")

	// ErrRequestFailed is returned when an API request fails at the HTTP or
	// protocol level.
	ErrRequestFailed = errors.New("thinq: api request failed")

	// ErrCommandFailed is returned when a device control command is rejected
	// or cannot be delivered. Callers propagate it unchanged; the session
	// layer owns any retry policy.
	ErrCommandFailed = errors.New("thinq: device command failed")

	// ErrDeviceNotFound is returned when a device ID is unknown to the
	// session.
	ErrDeviceNotFound = errors.New("thinq: device not found")

	// ErrUnsupportedDevice is returned when a discovered device type has no
	// model in this package.
	ErrUnsupportedDevice = errors.New("thinq: unsupported device type")
)
