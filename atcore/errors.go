// Package atcore implements the async dispatcher half of the AT-family
// serial command core: a byte ring fed from interrupt context, a line
// framer, an ordered handler table, the dispatcher loop that ties them
// together, a synchronous send-receive coordinator and a transmitter.
package atcore

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the library surface. Callers compare with
// errors.Is; internal plumbing wraps these with %w so the sentinel
// survives while extra context is preserved in the message.
var (
	// ErrInvalidArg is returned when a caller argument is malformed
	// (nil buffer, zero capacity, empty prefix, oversized command).
	ErrInvalidArg = errors.New("atcore: invalid argument")

	// ErrResource is returned when a fixed-size resource (a handler
	// table slot) cannot be obtained.
	ErrResource = errors.New("atcore: resource exhausted")

	// ErrInitFail is returned when platform initialization or a full
	// reset fails; the caller is expected to stop using the library.
	ErrInitFail = errors.New("atcore: initialization failed")

	// ErrBusy is returned when a mutex could not be acquired within
	// its configured timeout, or a send-receive is already in flight.
	ErrBusy = errors.New("atcore: busy")

	// ErrSendFail is returned when the platform's transmit path
	// rejects a write.
	ErrSendFail = errors.New("atcore: send failed")

	// ErrTimeout is returned when a wait (transmit completion,
	// send-receive match) exceeded its deadline.
	ErrTimeout = errors.New("atcore: timeout")

	// ErrNotFound is returned by Unregister when no entry with the
	// given prefix exists.
	ErrNotFound = errors.New("atcore: not found")

	// ErrInternal is returned for bookkeeping failures that indicate
	// a bug rather than caller misuse (e.g. the send-receive slot's
	// own handler entry could not be installed).
	ErrInternal = errors.New("atcore: internal error")
)

// wrapf wraps sentinel with a formatted message, preserving errors.Is
// matching via %w (the fmt.Errorf("...: %w", err) convention).
func wrapf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, sentinel)...)
}
