package ingest

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat indicates a file extension outside the supported set.
// No read is attempted for such files.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// FormatError names the file and extension that were rejected.
type FormatError struct {
	Path      string
	Extension string
}

// Error implements the error interface
func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q: %s", e.Extension, e.Path)
}

// Is implements errors.Is support
func (e *FormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// ReadError wraps a reader failure (corrupt file, parse error, I/O error).
type ReadError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *ReadError) Error() string {
	return fmt.Sprintf("error reading %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ReadError) Unwrap() error {
	return e.Err
}

// IsUnsupportedFormat reports whether err is an unsupported-format failure.
func IsUnsupportedFormat(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat)
}

// IsReadError reports whether err is a read failure.
func IsReadError(err error) bool {
	var re *ReadError
	return errors.As(err, &re)
}
