// Package transfer defines DICOM Transfer Syntaxes
package transfer

import "strings"

// Syntax represents a DICOM Transfer Syntax
type Syntax string

// Standard Transfer Syntaxes
const (
	// Uncompressed
	ImplicitVRLittleEndian Syntax = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian Syntax = "1.2.840.10008.1.2.1"
	ExplicitVRBigEndian    Syntax = "1.2.840.10008.1.2.2" // Retired

	// JPEG Baseline
	JPEGBaseline Syntax = "1.2.840.10008.1.2.4.50"
	JPEGExtended Syntax = "1.2.840.10008.1.2.4.51"

	// JPEG Lossless
	JPEGLossless           Syntax = "1.2.840.10008.1.2.4.57"
	JPEGLosslessFirstOrder Syntax = "1.2.840.10008.1.2.4.70" // Most common

	// JPEG 2000
	JPEG2000Lossless Syntax = "1.2.840.10008.1.2.4.90"
	JPEG2000         Syntax = "1.2.840.10008.1.2.4.91"

	// Recognized but not readable here
	JPEGLSLossless     Syntax = "1.2.840.10008.1.2.4.80"
	JPEGLSNearLossless Syntax = "1.2.840.10008.1.2.4.81"
	RLELossless        Syntax = "1.2.840.10008.1.2.5"
	DeflatedExplicitVR Syntax = "1.2.840.10008.1.2.1.99"
)

// Decode algorithm families for encapsulated pixel data.
const (
	AlgorithmNone         = "none"
	AlgorithmJPEGBaseline = "jpeg-baseline"
	AlgorithmJPEGLossless = "jpeg-lossless"
	AlgorithmJPEG2000     = "jpeg2000"
)

// IsImplicitVR returns true if this transfer syntax carries no VR field
func (s Syntax) IsImplicitVR() bool {
	return s == ImplicitVRLittleEndian
}

// IsBigEndian returns true if the data set is encoded big endian.
// File Meta group bytes are little endian regardless.
func (s Syntax) IsBigEndian() bool {
	return s == ExplicitVRBigEndian
}

// IsEncapsulated returns true if pixel data is encapsulated (compressed)
func (s Syntax) IsEncapsulated() bool {
	switch s {
	case ImplicitVRLittleEndian, ExplicitVRLittleEndian, ExplicitVRBigEndian:
		return false
	}
	return true
}

// Algorithm returns the decode algorithm family for this syntax.
func (s Syntax) Algorithm() string {
	switch s {
	case JPEGBaseline, JPEGExtended:
		return AlgorithmJPEGBaseline
	case JPEGLossless, JPEGLosslessFirstOrder:
		return AlgorithmJPEGLossless
	case JPEG2000Lossless, JPEG2000:
		return AlgorithmJPEG2000
	}
	return AlgorithmNone
}

// IsSupported returns true for the syntaxes this engine can read and write.
// Retired JPEG processes (4.5x outside 50/51/57/70) and the 4.6x family
// stay unsupported.
func (s Syntax) IsSupported() bool {
	switch s {
	case ImplicitVRLittleEndian, ExplicitVRLittleEndian, ExplicitVRBigEndian,
		JPEGBaseline, JPEGExtended,
		JPEGLossless, JPEGLosslessFirstOrder,
		JPEG2000Lossless, JPEG2000:
		return true
	}
	return false
}

// Name returns a human-readable name for the transfer syntax
func (s Syntax) Name() string {
	switch s {
	case ImplicitVRLittleEndian:
		return "Little Endian Implicit"
	case ExplicitVRLittleEndian:
		return "Little Endian Explicit"
	case ExplicitVRBigEndian:
		return "Big Endian Explicit (Retired)"
	case JPEGBaseline:
		return "JPEG Baseline (Process 1)"
	case JPEGExtended:
		return "JPEG Extended (Process 2 & 4)"
	case JPEGLossless:
		return "JPEG Lossless (Process 14)"
	case JPEGLosslessFirstOrder:
		return "JPEG Lossless First-Order (Process 14, SV1)"
	case JPEG2000Lossless:
		return "JPEG 2000 Lossless"
	case JPEG2000:
		return "JPEG 2000"
	case JPEGLSLossless:
		return "JPEG-LS Lossless"
	case JPEGLSNearLossless:
		return "JPEG-LS Near-Lossless"
	case RLELossless:
		return "RLE Lossless"
	case DeflatedExplicitVR:
		return "Deflated Explicit VR Little Endian"
	}
	if strings.HasPrefix(string(s), "1.2.840.10008.1.2.4.5") {
		return "Retired JPEG"
	}
	if strings.HasPrefix(string(s), "1.2.840.10008.1.2.4.6") {
		return "Retired JPEG"
	}
	return string(s)
}

// FromUID converts a UID string to a Syntax, dropping trailing padding.
func FromUID(uid string) Syntax {
	return Syntax(strings.TrimRight(uid, "\x00 "))
}
