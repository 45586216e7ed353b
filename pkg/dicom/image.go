package dicom

import (
	"fmt"
	"strings"

	"github.com/hantq/dwv.go/pkg/dicom/tag"
	"github.com/hantq/dwv.go/pkg/dicom/transfer"
)

// RSI is the per-slice rescale slope and intercept.
type RSI struct {
	Slope     float64
	Intercept float64
}

// IdentityRSI leaves stored values untouched.
var IdentityRSI = RSI{Slope: 1, Intercept: 0}

// IsIdentity returns true for the (1, 0) transform.
func (r RSI) IsIdentity() bool { return r.Slope == 1 && r.Intercept == 0 }

// Apply rescales a stored value.
func (r RSI) Apply(v float64) float64 { return v*r.Slope + r.Intercept }

// Meta is the image-level metadata carried out of the data set.
// AppendSlice requires it to match exactly between images.
type Meta struct {
	Modality          string
	StudyInstanceUID  string
	SeriesInstanceUID string
	BitsStored        int
	IsSigned          bool
}

// Image is a decoded multi-frame image. Frames[f] is a typed numeric
// slice sized slices x rows x columns x components.
type Image struct {
	Geometry                  *Geometry
	Frames                    []any
	RSIs                      []RSI
	PhotometricInterpretation string
	PlanarConfiguration       int
	Components                int
	Meta                      Meta
}

// NewImageFromDataSet builds the image entity from a parsed data set and
// its first frame buffer.
func NewImageFromDataSet(ds *DataSet, frame any) (*Image, error) {
	rows, cols := ds.Rows(), ds.Columns()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: missing Rows or Columns", ErrMalformedImage)
	}

	geometry := geometryFromDataSet(ds, rows, cols)

	photometric, _ := ds.GetString(tag.PhotometricInterpretation)
	if syntax, ok := ds.TransferSyntax(); ok {
		// Codec output contract: the JPEG decoders hand back RGB for
		// anything that is not monochrome.
		if syntax.Algorithm() != transfer.AlgorithmNone &&
			photometric != "MONOCHROME1" && photometric != "MONOCHROME2" {
			photometric = "RGB"
		}
	}

	rsi := IdentityRSI
	if slope, ok := ds.GetFloats(tag.RescaleSlope); ok && len(slope) > 0 {
		rsi.Slope = slope[0]
	}
	if intercept, ok := ds.GetFloats(tag.RescaleIntercept); ok && len(intercept) > 0 {
		rsi.Intercept = intercept[0]
	}

	meta := Meta{
		BitsStored: ds.IntOr(tag.BitsStored, 0),
		IsSigned:   ds.IsSigned(),
	}
	meta.Modality, _ = ds.GetString(tag.Modality)
	meta.StudyInstanceUID, _ = ds.GetString(tag.StudyInstanceUID)
	meta.SeriesInstanceUID, _ = ds.GetString(tag.SeriesInstanceUID)

	img := &Image{
		Geometry:                  geometry,
		RSIs:                      []RSI{rsi},
		PhotometricInterpretation: photometric,
		PlanarConfiguration:       ds.IntOr(tag.PlanarConfiguration, 0),
		Components:                ds.SamplesPerPixel(),
		Meta:                      meta,
	}
	if frame != nil {
		img.Frames = append(img.Frames, frame)
	}
	return img, nil
}

func geometryFromDataSet(ds *DataSet, rows, cols int) *Geometry {
	// PixelSpacing values are "row\col": first is the row spacing,
	// second the column spacing.
	spacing := Spacing{Column: 1, Row: 1, Slice: 1}
	values, ok := ds.GetFloats(tag.PixelSpacing)
	if !ok || len(values) < 2 {
		values, ok = ds.GetFloats(tag.ImagerPixelSpacing)
	}
	if ok && len(values) >= 2 {
		spacing.Row = values[0]
		spacing.Column = values[1]
	}
	if thickness, ok := ds.GetFloats(tag.SliceThickness); ok && len(thickness) > 0 && thickness[0] > 0 {
		spacing.Slice = thickness[0]
	}

	origin := Point3{}
	if pos, ok := ds.GetFloats(tag.ImagePositionPatient); ok && len(pos) >= 3 {
		origin = Point3{pos[0], pos[1], pos[2]}
	}

	geometry := NewGeometry(origin, Size{Columns: cols, Rows: rows, Slices: 1}, spacing)

	if cosines, ok := ds.GetFloats(tag.ImageOrientationPatient); ok && len(cosines) >= 6 {
		row := Point3{cosines[0], cosines[1], cosines[2]}
		col := Point3{cosines[3], cosines[4], cosines[5]}
		normal := row.Cross(col)
		geometry.Orientation = Matrix3{
			row[0], row[1], row[2],
			col[0], col[1], col[2],
			normal[0], normal[1], normal[2],
		}
	}
	return geometry
}

// AppendFrame adds a frame buffer at the end of the frame list.
func (img *Image) AppendFrame(frame any) {
	img.Frames = append(img.Frames, frame)
}

// AppendSlice merges a single-slice image into this one at the position
// selected by the geometry's slice index rule. Shapes, photometric
// interpretation and metadata must match exactly.
func (img *Image) AppendSlice(other *Image) error {
	switch {
	case other == nil || other.Geometry == nil:
		return fmt.Errorf("%w: nil image", ErrSliceMismatch)
	case !img.Geometry.Equal(other.Geometry):
		return fmt.Errorf("%w: geometry differs", ErrSliceMismatch)
	case img.PhotometricInterpretation != other.PhotometricInterpretation:
		return fmt.Errorf("%w: photometric interpretation differs", ErrSliceMismatch)
	case img.Components != other.Components:
		return fmt.Errorf("%w: component count differs", ErrSliceMismatch)
	case img.Meta != other.Meta:
		return fmt.Errorf("%w: metadata differs", ErrSliceMismatch)
	case len(img.Frames) != len(other.Frames):
		return fmt.Errorf("%w: frame count differs", ErrSliceMismatch)
	}

	index := img.Geometry.SliceIndex(other.Geometry.Origin())
	sliceLen := img.Geometry.Size.Rows * img.Geometry.Size.Columns * img.Components

	for f := range img.Frames {
		spliced, err := spliceSlice(img.Frames[f], other.Frames[f], index, sliceLen)
		if err != nil {
			return err
		}
		img.Frames[f] = spliced
	}

	img.Geometry.InsertOrigin(index, other.Geometry.Origin())

	rsi := IdentityRSI
	if len(other.RSIs) > 0 {
		rsi = other.RSIs[0]
	}
	img.RSIs = append(img.RSIs, IdentityRSI)
	copy(img.RSIs[index+1:], img.RSIs[index:])
	img.RSIs[index] = rsi
	return nil
}

// spliceSlice allocates a buffer one slice larger and inserts the new
// slice at index. Buffer types must match.
func spliceSlice(dst, src any, index, sliceLen int) (any, error) {
	switch d := dst.(type) {
	case []uint8:
		s, ok := src.([]uint8)
		if !ok {
			return nil, fmt.Errorf("%w: pixel type differs", ErrSliceMismatch)
		}
		return spliceTyped(d, s, index, sliceLen), nil
	case []int8:
		s, ok := src.([]int8)
		if !ok {
			return nil, fmt.Errorf("%w: pixel type differs", ErrSliceMismatch)
		}
		return spliceTyped(d, s, index, sliceLen), nil
	case []uint16:
		s, ok := src.([]uint16)
		if !ok {
			return nil, fmt.Errorf("%w: pixel type differs", ErrSliceMismatch)
		}
		return spliceTyped(d, s, index, sliceLen), nil
	case []int16:
		s, ok := src.([]int16)
		if !ok {
			return nil, fmt.Errorf("%w: pixel type differs", ErrSliceMismatch)
		}
		return spliceTyped(d, s, index, sliceLen), nil
	case []uint32:
		s, ok := src.([]uint32)
		if !ok {
			return nil, fmt.Errorf("%w: pixel type differs", ErrSliceMismatch)
		}
		return spliceTyped(d, s, index, sliceLen), nil
	case []int32:
		s, ok := src.([]int32)
		if !ok {
			return nil, fmt.Errorf("%w: pixel type differs", ErrSliceMismatch)
		}
		return spliceTyped(d, s, index, sliceLen), nil
	case []float32:
		s, ok := src.([]float32)
		if !ok {
			return nil, fmt.Errorf("%w: pixel type differs", ErrSliceMismatch)
		}
		return spliceTyped(d, s, index, sliceLen), nil
	case []float64:
		s, ok := src.([]float64)
		if !ok {
			return nil, fmt.Errorf("%w: pixel type differs", ErrSliceMismatch)
		}
		return spliceTyped(d, s, index, sliceLen), nil
	}
	return nil, fmt.Errorf("%w: unsupported pixel type %T", ErrSliceMismatch, dst)
}

func spliceTyped[T any](dst, src []T, index, sliceLen int) []T {
	out := make([]T, 0, len(dst)+sliceLen)
	out = append(out, dst[:index*sliceLen]...)
	out = append(out, src[:sliceLen]...)
	out = append(out, dst[index*sliceLen:]...)
	return out
}

// Value returns the stored value at (column, row, slice) of a frame.
func (img *Image) Value(col, row, slice, frame int) (float64, bool) {
	size := img.Geometry.Size
	if col < 0 || col >= size.Columns || row < 0 || row >= size.Rows ||
		slice < 0 || slice >= size.Slices ||
		frame < 0 || frame >= len(img.Frames) {
		return 0, false
	}
	idx := ((slice*size.Rows+row)*size.Columns + col) * img.Components
	return valueAt(img.Frames[frame], idx)
}

// RescaledValue returns the stored value with the slice's rescale
// transform applied.
func (img *Image) RescaledValue(col, row, slice, frame int) (float64, bool) {
	v, ok := img.Value(col, row, slice, frame)
	if !ok {
		return 0, false
	}
	rsi := IdentityRSI
	if slice < len(img.RSIs) {
		rsi = img.RSIs[slice]
	}
	return rsi.Apply(v), true
}

func valueAt(buf any, idx int) (float64, bool) {
	switch b := buf.(type) {
	case []uint8:
		if idx < len(b) {
			return float64(b[idx]), true
		}
	case []int8:
		if idx < len(b) {
			return float64(b[idx]), true
		}
	case []uint16:
		if idx < len(b) {
			return float64(b[idx]), true
		}
	case []int16:
		if idx < len(b) {
			return float64(b[idx]), true
		}
	case []uint32:
		if idx < len(b) {
			return float64(b[idx]), true
		}
	case []int32:
		if idx < len(b) {
			return float64(b[idx]), true
		}
	case []float32:
		if idx < len(b) {
			return float64(b[idx]), true
		}
	case []float64:
		if idx < len(b) {
			return b[idx], true
		}
	}
	return 0, false
}

// IsMonochrome returns true for the MONOCHROME photometric families.
func (img *Image) IsMonochrome() bool {
	return strings.HasPrefix(img.PhotometricInterpretation, "MONOCHROME")
}
