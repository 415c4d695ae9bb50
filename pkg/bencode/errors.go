package bencode

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrMalformed indicates input that violates the bencode grammar.
	ErrMalformed = errors.New("bencode: malformed input")

	// ErrTruncated indicates the input ended in the middle of a value.
	ErrTruncated = errors.New("bencode: truncated input")

	// ErrOverflow indicates an integer or length that does not fit in an int64.
	ErrOverflow = errors.New("bencode: numeric overflow")

	// ErrTooDeep indicates nesting beyond the configured maximum depth.
	ErrTooDeep = errors.New("bencode: nesting exceeds maximum depth")

	// ErrTooLarge indicates a byte string length exceeding the configured maximum.
	ErrTooLarge = errors.New("bencode: length exceeds maximum")

	// ErrSinkFailure indicates the underlying writer failed.
	ErrSinkFailure = errors.New("bencode: write failed")
)

// DecodeError provides detailed information about a decoding failure.
type DecodeError struct {
	Offset int64  // Bytes consumed when the error was detected
	Depth  int    // Container nesting depth at the failure
	Reason string // Human-readable explanation
	Err    error  // Sentinel or underlying read error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bencode: decode error at offset %d (depth %d): %s", e.Offset, e.Depth, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError reports a failed write to the encoder's sink.
// It matches both ErrSinkFailure and the writer's own error.
type EncodeError struct {
	Offset int64 // Bytes successfully written before the failure
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("bencode: write failed after %d bytes: %v", e.Offset, e.Err)
}

func (e *EncodeError) Unwrap() []error {
	return []error{ErrSinkFailure, e.Err}
}

// ValueError reports a Value that cannot be encoded, such as the zero
// Value or a dictionary with a repeated key. It indicates a bug in the
// code that built the value rather than bad input.
type ValueError struct {
	Reason string
}

func (e *ValueError) Error() string {
	return "bencode: invalid value: " + e.Reason
}
