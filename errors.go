package qrstudio

import "errors"

var (
	// ErrEmpty is returned when there is no text to encode.
	ErrEmpty = errors.New("no input text")

	// ErrTooBig is returned when the payload exceeds the capacity of the
	// largest symbol at the requested error correction level.
	ErrTooBig = errors.New("data too big for a QR code")

	// ErrExport is returned when an export artifact cannot be produced.
	ErrExport = errors.New("export failed")

	// ErrNotFound is returned when no QR code is found in an image.
	ErrNotFound = errors.New("qr code not found")

	// ErrFormat is returned when a symbol cannot be decoded due to format issues.
	ErrFormat = errors.New("format error")

	// ErrChecksum is returned when error correction cannot repair a symbol.
	ErrChecksum = errors.New("checksum error")

	// ErrCamera is returned when a camera cannot be started.
	ErrCamera = errors.New("camera unavailable")

	// ErrInvalidMatrix is returned for malformed module matrices.
	ErrInvalidMatrix = errors.New("invalid module matrix")

	// ErrInvalidOptions is returned for out of range encode options.
	ErrInvalidOptions = errors.New("invalid encode options")
)

// Failure classifies why an encode did not produce a matrix.
type Failure int

const (
	FailureNone Failure = iota
	FailureEmpty
	FailureTooBig
	FailureUnknown
)

// String returns the stable category name used by user-facing messages.
func (f Failure) String() string {
	switch f {
	case FailureNone:
		return ""
	case FailureEmpty:
		return "empty"
	case FailureTooBig:
		return "too-big"
	default:
		return "unknown"
	}
}

// Classify maps an encoder error to its failure category.
func Classify(err error) Failure {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrEmpty):
		return FailureEmpty
	case errors.Is(err, ErrTooBig):
		return FailureTooBig
	default:
		return FailureUnknown
	}
}
