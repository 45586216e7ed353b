package dicom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_TypedReads(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	le := NewCursor(buf, false)
	v16, err := le.ReadUint16(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v16)

	v32, err := le.ReadUint32(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x04030201), v32)

	be := NewCursor(buf, true)
	v16, err = be.ReadUint16(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0102), v16)

	v32, err = be.ReadUint32(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), v32)
}

func TestCursor_OutOfBounds(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02}, false)

	_, err := c.ReadUint32(0)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = c.ReadUint16(1)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = c.ReadBytes(0, 3)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = c.WriteUint32(0, 1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

// Reading big-endian words on a little-endian view is the wire scenario
// for the retired big-endian syntax: the same bytes read LE then
// byte-swapped must equal the BE read.
func TestCursor_EndianFlip(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	le := NewCursor(buf, false)
	leVals, err := le.ReadUint16Slice(0, 8)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0201, 0x0403, 0x0605, 0x0807}, leVals)

	be := NewCursor(buf, true)
	beVals, err := be.ReadUint16Slice(0, 8)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0102, 0x0304, 0x0506, 0x0708}, beVals)

	for i := range leVals {
		swapped := leVals[i]<<8 | leVals[i]>>8
		assert.Equal(t, beVals[i], swapped)
	}
}

// A misaligned offset must produce the same values as an aligned one.
func TestCursor_MisalignedSliceRead(t *testing.T) {
	buf := []byte{0xFF, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	c := NewCursor(buf, false)

	aligned, err := NewCursor(buf[1:], false).ReadUint16Slice(0, 8)
	require.NoError(t, err)
	misaligned, err := c.ReadUint16Slice(1, 8)
	require.NoError(t, err)
	assert.Equal(t, aligned, misaligned)
}

func TestCursor_ReadHex16(t *testing.T) {
	c := NewCursor([]byte{0xE0, 0x7F}, false)
	s, err := c.ReadHex16(0)
	require.NoError(t, err)
	assert.Equal(t, "0x7FE0", s)
}

func TestCursor_ReadString(t *testing.T) {
	c := NewCursor([]byte("DICM"), false)
	s, err := c.ReadString(0, 4)
	require.NoError(t, err)
	assert.Equal(t, "DICM", s)
}

func TestCursor_WriteReadRoundTrip(t *testing.T) {
	buf := make([]byte, 32)
	c := NewCursor(buf, false)

	offset := uint32(0)
	var err error
	offset, err = c.WriteUint16(offset, 0xBEEF)
	require.NoError(t, err)
	offset, err = c.WriteInt32(offset, -42)
	require.NoError(t, err)
	offset, err = c.WriteFloat64(offset, 3.5)
	require.NoError(t, err)
	offset, err = c.WriteString(offset, "CT")
	require.NoError(t, err)
	assert.Equal(t, uint32(16), offset)

	u, err := c.ReadUint16(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), u)

	i, err := c.ReadInt32(2)
	require.NoError(t, err)
	assert.Equal(t, int32(-42), i)

	f, err := c.ReadFloat64(6)
	require.NoError(t, err)
	assert.Equal(t, 3.5, f)

	s, err := c.ReadString(14, 2)
	require.NoError(t, err)
	assert.Equal(t, "CT", s)
}

func TestCursor_FloatSlices(t *testing.T) {
	buf := make([]byte, 12)
	c := NewCursor(buf, false)
	_, err := c.WriteFloat32(0, 1.5)
	require.NoError(t, err)
	_, err = c.WriteFloat32(4, -2.25)
	require.NoError(t, err)
	_, err = c.WriteFloat32(8, 0)
	require.NoError(t, err)

	vals, err := c.ReadFloat32Slice(0, 12)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -2.25, 0}, vals)
}
