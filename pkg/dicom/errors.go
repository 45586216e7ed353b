package dicom

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes of the engine. Callers test with
// errors.Is; messages wrap these with element and offset context.
var (
	// ErrNotDicom marks a missing DICM magic or a missing TransferSyntaxUID.
	ErrNotDicom = errors.New("not a DICOM file")
	// ErrUnsupportedSyntax marks a recognized transfer syntax the engine
	// cannot read. The message carries the human name of the syntax.
	ErrUnsupportedSyntax = errors.New("unsupported transfer syntax")
	// ErrOutOfBounds marks a cursor access past the end of the buffer.
	ErrOutOfBounds = errors.New("offset out of bounds")
	// ErrMalformedElement marks an unrecognized VR, an implausible length,
	// or a missing delimiter. Parsing aborts; partial results are discarded.
	ErrMalformedElement = errors.New("malformed data element")
	// ErrMalformedImage marks a data set without Rows or Columns.
	ErrMalformedImage = errors.New("malformed image")
	// ErrSliceMismatch marks an AppendSlice precondition violation.
	ErrSliceMismatch = errors.New("slice mismatch")
	// ErrDecoderFailure marks a frame decoder error, surfaced through the
	// pipeline observer without corrupting the data set.
	ErrDecoderFailure = errors.New("frame decoder failure")
)

func outOfBounds(offset, n uint32, size int) error {
	return fmt.Errorf("%w: %d bytes at offset %d in buffer of %d", ErrOutOfBounds, n, offset, size)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedElement, fmt.Sprintf(format, args...))
}
