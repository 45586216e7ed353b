package dicom

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSliceFile(t *testing.T, z float64, pixels []uint16) *DataSet {
	t.Helper()
	b := newFileBuilder("1.2.840.10008.1.2.1", false)
	b.explicitElem(0x0008, 0x0060, "CS", []byte("CT"))
	b.explicitElem(0x0020, 0x000D, "UI", []byte("1.2.3\x00"))
	b.explicitElem(0x0020, 0x000E, "UI", []byte("1.2.3.4\x00"))
	pos := fmt.Sprintf("0\\0\\%g", z)
	if len(pos)%2 != 0 {
		pos += " "
	}
	b.explicitElem(0x0020, 0x0032, "DS", []byte(pos))
	b.explicitElem(0x0020, 0x0037, "DS", []byte("1\\0\\0\\0\\1\\0 "))
	b.explicitElem(0x0028, 0x0010, "US", leU16(2))
	b.explicitElem(0x0028, 0x0011, "US", leU16(2))
	b.explicitElem(0x0028, 0x0030, "DS", []byte("0.5\\0.25"))
	b.explicitElem(0x0028, 0x0100, "US", leU16(16))
	b.explicitElem(0x0028, 0x0101, "US", leU16(12))
	b.explicitElem(0x0028, 0x1052, "DS", []byte("-1024 "))
	b.explicitElem(0x0028, 0x1053, "DS", []byte("2 "))
	b.explicitElem(0x7FE0, 0x0010, "OW", leU16(pixels...))

	ds, err := Parse(b.bytes())
	require.NoError(t, err)
	return ds
}

func loadImage(t *testing.T, ds *DataSet) *Image {
	t.Helper()
	img, err := NewPipeline(nil, nil).Load(nil, ds)
	require.NoError(t, err)
	return img
}

func TestImage_FromDataSet(t *testing.T) {
	ds := buildSliceFile(t, 0, []uint16{1, 2, 3, 4})
	img := loadImage(t, ds)

	assert.Equal(t, Size{Columns: 2, Rows: 2, Slices: 1}, img.Geometry.Size)
	// PixelSpacing is "row\col": 0.5 is the row spacing, 0.25 the column.
	assert.Equal(t, 0.5, img.Geometry.Spacing.Row)
	assert.Equal(t, 0.25, img.Geometry.Spacing.Column)
	assert.Equal(t, Identity3, img.Geometry.Orientation)

	assert.Equal(t, RSI{Slope: 2, Intercept: -1024}, img.RSIs[0])
	assert.False(t, img.RSIs[0].IsIdentity())

	assert.Equal(t, "CT", img.Meta.Modality)
	assert.Equal(t, "1.2.3", img.Meta.StudyInstanceUID)
	assert.Equal(t, 12, img.Meta.BitsStored)
	assert.False(t, img.Meta.IsSigned)
}

func TestImage_MissingRowsIsMalformed(t *testing.T) {
	b := newFileBuilder("1.2.840.10008.1.2.1", false)
	b.explicitElem(0x0028, 0x0100, "US", leU16(8))
	b.explicitElem(0x7FE0, 0x0010, "OW", []byte{1, 2})
	ds, err := Parse(b.bytes())
	require.NoError(t, err)

	_, err = NewPipeline(nil, nil).Load(nil, ds)
	assert.ErrorIs(t, err, ErrMalformedImage)
}

func TestImage_ValueAndRescale(t *testing.T) {
	ds := buildSliceFile(t, 0, []uint16{1, 2, 3, 4})
	img := loadImage(t, ds)

	v, ok := img.Value(0, 0, 0, 0)
	require.True(t, ok)
	assert.Equal(t, float64(1), v)

	v, ok = img.Value(1, 1, 0, 0)
	require.True(t, ok)
	assert.Equal(t, float64(4), v)

	r, ok := img.RescaledValue(1, 0, 0, 0)
	require.True(t, ok)
	assert.Equal(t, 2*2.0-1024, r)

	_, ok = img.Value(2, 0, 0, 0)
	assert.False(t, ok)
}

func TestRSI_IdentityLaw(t *testing.T) {
	b := newFileBuilder("1.2.840.10008.1.2.1", false)
	b.explicitElem(0x0028, 0x0010, "US", leU16(1))
	b.explicitElem(0x0028, 0x0011, "US", leU16(2))
	b.explicitElem(0x0028, 0x0100, "US", leU16(16))
	b.explicitElem(0x7FE0, 0x0010, "OW", leU16(7, 9))
	ds, err := Parse(b.bytes())
	require.NoError(t, err)
	img := loadImage(t, ds)

	require.True(t, img.RSIs[0].IsIdentity())
	for col := 0; col < 2; col++ {
		v, ok := img.Value(col, 0, 0, 0)
		require.True(t, ok)
		r, ok := img.RescaledValue(col, 0, 0, 0)
		require.True(t, ok)
		assert.Equal(t, v, r)
	}
}

// A slice whose origin lies between two known origins lands between
// them; origins, RSIs and frame buffers splice at the same index.
func TestImage_AppendSliceOrdering(t *testing.T) {
	first := loadImage(t, buildSliceFile(t, 0, []uint16{1, 1, 1, 1}))
	far := loadImage(t, buildSliceFile(t, 4, []uint16{3, 3, 3, 3}))
	middle := loadImage(t, buildSliceFile(t, 2, []uint16{2, 2, 2, 2}))

	require.NoError(t, first.AppendSlice(far))
	require.NoError(t, first.AppendSlice(middle))

	require.Len(t, first.Geometry.Origins, 3)
	assert.Equal(t, Point3{0, 0, 0}, first.Geometry.Origins[0])
	assert.Equal(t, Point3{0, 0, 2}, first.Geometry.Origins[1])
	assert.Equal(t, Point3{0, 0, 4}, first.Geometry.Origins[2])
	assert.Equal(t, 3, first.Geometry.Size.Slices)

	require.Len(t, first.Frames, 1)
	assert.Equal(t, []uint16{1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3}, first.Frames[0])
	require.Len(t, first.RSIs, 3)

	// Values address the spliced slices.
	v, ok := first.Value(0, 0, 1, 0)
	require.True(t, ok)
	assert.Equal(t, float64(2), v)
}

func TestImage_AppendSliceMismatch(t *testing.T) {
	img := loadImage(t, buildSliceFile(t, 0, []uint16{1, 1, 1, 1}))

	other := loadImage(t, buildSliceFile(t, 1, []uint16{2, 2, 2, 2}))
	other.Meta.Modality = "MR"
	assert.ErrorIs(t, img.AppendSlice(other), ErrSliceMismatch)

	other = loadImage(t, buildSliceFile(t, 1, []uint16{2, 2, 2, 2}))
	other.PhotometricInterpretation = "MONOCHROME1"
	assert.ErrorIs(t, img.AppendSlice(other), ErrSliceMismatch)

	other = loadImage(t, buildSliceFile(t, 1, []uint16{2, 2, 2, 2}))
	other.Geometry.Size.Columns = 3
	assert.ErrorIs(t, img.AppendSlice(other), ErrSliceMismatch)
}

func TestImage_AppendFrame(t *testing.T) {
	img := loadImage(t, buildSliceFile(t, 0, []uint16{1, 2, 3, 4}))
	img.AppendFrame([]uint16{5, 6, 7, 8})
	require.Len(t, img.Frames, 2)

	v, ok := img.Value(0, 0, 0, 1)
	require.True(t, ok)
	assert.Equal(t, float64(5), v)
}
