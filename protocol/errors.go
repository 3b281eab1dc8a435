package protocol

import (
	"errors"
	"fmt"
)

// ErrUnsupportedVersion matches any *VersionError.
var ErrUnsupportedVersion = errors.New("unsupported bridge protocol version")

// ParseError reports a frame that is not valid JSON or whose fields have
// the wrong types.
type ParseError struct {
	Cause error
	Line  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse frame: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// VersionError reports a ready handshake carrying a protocol version other
// than Version.
type VersionError struct {
	Got int
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("expected version %d, got %d", Version, e.Got)
}

func (e *VersionError) Is(target error) bool {
	return target == ErrUnsupportedVersion
}

// FrameError reports well-formed JSON that cannot be a bridge message: a
// non-object value, or a connect/disconnect without a client id.
type FrameError struct {
	Line   string
	Reason string
}

func (e *FrameError) Error() string {
	return "invalid frame: " + e.Reason
}

// FieldError reports a field whose JSON type does not fit the message being
// decoded. It is the Cause of the enclosing *ParseError.
type FieldError struct {
	Field string
	Want  string
	Got   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: expected %s, got %s", e.Field, e.Want, e.Got)
}
