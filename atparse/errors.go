// Package atparse implements the response parser library: pure,
// allocation-free functions that extract typed values from a line that
// begins (anywhere, not necessarily at offset zero — see locatePrefix)
// with a caller-specified textual prefix.
//
// Every parser shares the same discipline: locate the prefix as a
// substring of response, skip SP/HT, apply the parser-specific body,
// and on any return other than nil the caller's output is left
// unchanged or zero/empty-and-null-terminated — never uninitialised.
//
// Grounded on usbarmory-tamago's internal/reg and bits packages for the
// "small, pure, no-allocation functions operating on caller-owned
// memory" idiom, generalized here from bit-level register twiddling to
// byte-level response scanning.
package atparse

import "errors"

// Sentinel errors returned by the parser functions.
var (
	// ErrNullArg is returned when a required argument is nil.
	ErrNullArg = errors.New("atparse: null argument")

	// ErrPrefixNotFound is returned when prefix does not occur in
	// response.
	ErrPrefixNotFound = errors.New("atparse: prefix not found")

	// ErrInvalidFormat is returned on a structural parse failure.
	ErrInvalidFormat = errors.New("atparse: invalid format")

	// ErrBufferTooSmall is returned when the caller's output buffer
	// could not hold the full result; it is still filled and
	// null-terminated with whatever fit.
	ErrBufferTooSmall = errors.New("atparse: buffer too small")

	// ErrInvalidValue denotes a value that was structurally parseable
	// but semantically out of range. None of the parsers in this
	// package return it; ParseIPAddress reports an octet greater than
	// 255 as ErrInvalidFormat.
	ErrInvalidValue = errors.New("atparse: invalid value")

	// ErrOverflow is returned by ParseInt when the scanned decimal
	// literal saturates a signed 32-bit integer, rather than silently
	// truncating it.
	ErrOverflow = errors.New("atparse: integer overflow")
)
