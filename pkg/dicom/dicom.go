// Package dicom implements a round-trip parser and writer for the DICOM
// part-10 file encoding, together with the pixel pipeline that turns the
// parsed element stream into a multi-frame image with geometry and
// rescaling metadata.
//
// Basic usage:
//
//	// Read a DICOM file
//	ds, err := dicom.ReadFile("/path/to/file.dcm")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Build the image entity
//	pipeline := dicom.NewPipeline(nil, nil)
//	img, err := pipeline.Load(ctx, ds)
//
//	// Write it back, anonymized
//	w := &dicom.Writer{Rules: rules}
//	out, err := w.Write(ds)
//
// Image decompression codecs are external: register a FrameDecoder for
// the JPEG algorithm families before loading encapsulated pixel data.
package dicom

import (
	"fmt"
	"os"
)

// ReadFile parses a DICOM file from disk.
func ReadFile(path string) (*DataSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return Parse(data)
}

// WriteFile serializes a data set to disk.
func WriteFile(path string, ds *DataSet) error {
	data, err := WriteBytes(ds)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
