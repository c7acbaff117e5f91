package vebset

import (
	"errors"
	"fmt"
)

// Sentinel causes of a failed Deserialize. Wrapped by DeserializeError,
// which additionally carries the buffer position where the failure was
// detected.
var (
	ErrBadMagic       = errors.New("vebset: bad magic")
	ErrBadVersion     = errors.New("vebset: unsupported encoding version")
	ErrUnsupportedTag = errors.New("vebset: unsupported variant tag")
	ErrShortBuffer    = errors.New("vebset: buffer too short")
)

// DeserializeError reports a failure decoding a wire-format buffer,
// naming both the underlying cause and where in the buffer it was found.
type DeserializeError struct {
	Err error
	Pos int
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("vebset: deserialize at byte %d: %v", e.Pos, e.Err)
}

func (e *DeserializeError) Unwrap() error {
	return e.Err
}
