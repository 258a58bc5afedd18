// Package format defines the error taxonomy shared by all codec packages.
// Every error is terminal for the file being processed; codecs never
// attempt recovery from structurally invalid input.
package format

import "errors"

var (
	// ErrMalformedHeader means the magic/signature did not match.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrUnsupportedVersion means the magic was recognized but the
	// version number is not handled.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrUnexpectedEOF means the buffer is shorter than a field or
	// section requires.
	ErrUnexpectedEOF = errors.New("unexpected end of data")

	// ErrInvalidFieldValue means a field holds a value outside its hard
	// limits (mip count mismatch, vertex count over the index width, ...).
	ErrInvalidFieldValue = errors.New("invalid field value")

	// ErrUnsupportedPixelFormat means a fourCC or pixel-format flag set
	// does not map to a known codec.
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")
)
