package offload

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied is returned when the caller lacks the admin
	// capability required to request offload.
	ErrPermissionDenied = errors.New("offload requires the admin capability")

	// ErrInvalidArgument is returned for malformed admission requests:
	// nonzero flags, an empty device handle, or a device that is not
	// fully registered at bind time.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotSupported is returned when a device exists but exposes no
	// offload command handler.
	ErrNotSupported = errors.New("device does not support offload")

	// ErrNoDevice is returned when an operation needs a bound device
	// and the descriptor's device is gone, or when a command is
	// dispatched against an empty device handle.
	ErrNoDevice = errors.New("no device")
)

// DriverError wraps an opaque failure returned by a device's command
// handler. The underlying error passes through unmodified.
type DriverError struct {
	Cmd Command
	Err error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("driver %s command: %v", e.Cmd, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }
