package dicom

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/text/encoding"

	"github.com/hantq/dwv.go/pkg/dicom/charset"
)

// Cursor provides endian-aware typed reads and writes over a shared byte
// buffer. Reads take absolute offsets; writes return the advanced offset.
// The buffer is borrowed: a parsing Cursor never mutates it, a writing
// Cursor owns it until the writer returns.
type Cursor struct {
	buf    []byte
	order  binary.ByteOrder
	coding encoding.Encoding
}

// NewCursor wraps buf with the given endianness.
func NewCursor(buf []byte, bigEndian bool) *Cursor {
	var order binary.ByteOrder = binary.LittleEndian
	if bigEndian {
		order = binary.BigEndian
	}
	return &Cursor{buf: buf, order: order, coding: charset.Default()}
}

// Len returns the buffer length.
func (c *Cursor) Len() int { return len(c.buf) }

// SetCharset installs the text decoder used by ReadSpecialString.
func (c *Cursor) SetCharset(coding encoding.Encoding) {
	if coding == nil {
		coding = charset.Default()
	}
	c.coding = coding
}

func (c *Cursor) check(offset, n uint32) error {
	if uint64(offset)+uint64(n) > uint64(len(c.buf)) {
		return outOfBounds(offset, n, len(c.buf))
	}
	return nil
}

// ReadUint8 reads one unsigned byte.
func (c *Cursor) ReadUint8(offset uint32) (uint8, error) {
	if err := c.check(offset, 1); err != nil {
		return 0, err
	}
	return c.buf[offset], nil
}

// ReadInt8 reads one signed byte.
func (c *Cursor) ReadInt8(offset uint32) (int8, error) {
	v, err := c.ReadUint8(offset)
	return int8(v), err
}

// ReadUint16 reads an unsigned 16-bit value.
func (c *Cursor) ReadUint16(offset uint32) (uint16, error) {
	if err := c.check(offset, 2); err != nil {
		return 0, err
	}
	return c.order.Uint16(c.buf[offset:]), nil
}

// ReadInt16 reads a signed 16-bit value.
func (c *Cursor) ReadInt16(offset uint32) (int16, error) {
	v, err := c.ReadUint16(offset)
	return int16(v), err
}

// ReadUint32 reads an unsigned 32-bit value.
func (c *Cursor) ReadUint32(offset uint32) (uint32, error) {
	if err := c.check(offset, 4); err != nil {
		return 0, err
	}
	return c.order.Uint32(c.buf[offset:]), nil
}

// ReadInt32 reads a signed 32-bit value.
func (c *Cursor) ReadInt32(offset uint32) (int32, error) {
	v, err := c.ReadUint32(offset)
	return int32(v), err
}

// ReadUint64 reads an unsigned 64-bit value.
func (c *Cursor) ReadUint64(offset uint32) (uint64, error) {
	if err := c.check(offset, 8); err != nil {
		return 0, err
	}
	return c.order.Uint64(c.buf[offset:]), nil
}

// ReadInt64 reads a signed 64-bit value.
func (c *Cursor) ReadInt64(offset uint32) (int64, error) {
	v, err := c.ReadUint64(offset)
	return int64(v), err
}

// ReadFloat32 reads an IEEE 754 single.
func (c *Cursor) ReadFloat32(offset uint32) (float32, error) {
	v, err := c.ReadUint32(offset)
	return math.Float32frombits(v), err
}

// ReadFloat64 reads an IEEE 754 double.
func (c *Cursor) ReadFloat64(offset uint32) (float64, error) {
	v, err := c.ReadUint64(offset)
	return math.Float64frombits(v), err
}

// ReadBytes returns an owned copy of n bytes at offset.
func (c *Cursor) ReadBytes(offset, n uint32) ([]byte, error) {
	if err := c.check(offset, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, c.buf[offset:offset+n])
	return out, nil
}

// view returns a borrowed window into the buffer. It must not escape the
// parse call.
func (c *Cursor) view(offset, n uint32) ([]byte, error) {
	if err := c.check(offset, n); err != nil {
		return nil, err
	}
	return c.buf[offset : offset+n], nil
}

// ReadString reads n bytes as one-byte-per-character text, no decoding.
func (c *Cursor) ReadString(offset, n uint32) (string, error) {
	b, err := c.view(offset, n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadSpecialString reads n bytes through the installed character set
// decoder. Used for the text VRs that honor Specific Character Set.
func (c *Cursor) ReadSpecialString(offset, n uint32) (string, error) {
	b, err := c.view(offset, n)
	if err != nil {
		return "", err
	}
	return charset.Decode(c.coding, b)
}

// ReadHex16 reads a 16-bit value and formats it "0xXXXX".
func (c *Cursor) ReadHex16(offset uint32) (string, error) {
	v, err := c.ReadUint16(offset)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("0x%04X", v), nil
}

// Typed bulk reads. byteLen is the wire length; it must be a multiple of
// the element size. When the offset is aligned and the cursor order is
// native the loop compiles to a straight copy; misaligned offsets take
// the same per-element path and yield identical results.

// ReadUint8Slice reads byteLen unsigned bytes.
func (c *Cursor) ReadUint8Slice(offset, byteLen uint32) ([]uint8, error) {
	return c.ReadBytes(offset, byteLen)
}

// ReadInt8Slice reads byteLen signed bytes.
func (c *Cursor) ReadInt8Slice(offset, byteLen uint32) ([]int8, error) {
	b, err := c.view(offset, byteLen)
	if err != nil {
		return nil, err
	}
	out := make([]int8, len(b))
	for i, v := range b {
		out[i] = int8(v)
	}
	return out, nil
}

// ReadUint16Slice reads byteLen/2 unsigned 16-bit values.
func (c *Cursor) ReadUint16Slice(offset, byteLen uint32) ([]uint16, error) {
	b, err := c.view(offset, byteLen)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = c.order.Uint16(b[i*2:])
	}
	return out, nil
}

// ReadInt16Slice reads byteLen/2 signed 16-bit values.
func (c *Cursor) ReadInt16Slice(offset, byteLen uint32) ([]int16, error) {
	u, err := c.ReadUint16Slice(offset, byteLen)
	if err != nil {
		return nil, err
	}
	out := make([]int16, len(u))
	for i, v := range u {
		out[i] = int16(v)
	}
	return out, nil
}

// ReadUint32Slice reads byteLen/4 unsigned 32-bit values.
func (c *Cursor) ReadUint32Slice(offset, byteLen uint32) ([]uint32, error) {
	b, err := c.view(offset, byteLen)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = c.order.Uint32(b[i*4:])
	}
	return out, nil
}

// ReadInt32Slice reads byteLen/4 signed 32-bit values.
func (c *Cursor) ReadInt32Slice(offset, byteLen uint32) ([]int32, error) {
	u, err := c.ReadUint32Slice(offset, byteLen)
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(u))
	for i, v := range u {
		out[i] = int32(v)
	}
	return out, nil
}

// ReadInt64Slice reads byteLen/8 signed 64-bit values.
func (c *Cursor) ReadInt64Slice(offset, byteLen uint32) ([]int64, error) {
	b, err := c.view(offset, byteLen)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(b)/8)
	for i := range out {
		out[i] = int64(c.order.Uint64(b[i*8:]))
	}
	return out, nil
}

// ReadFloat32Slice reads byteLen/4 singles.
func (c *Cursor) ReadFloat32Slice(offset, byteLen uint32) ([]float32, error) {
	u, err := c.ReadUint32Slice(offset, byteLen)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(u))
	for i, v := range u {
		out[i] = math.Float32frombits(v)
	}
	return out, nil
}

// ReadFloat64Slice reads byteLen/8 doubles.
func (c *Cursor) ReadFloat64Slice(offset, byteLen uint32) ([]float64, error) {
	b, err := c.view(offset, byteLen)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(c.order.Uint64(b[i*8:]))
	}
	return out, nil
}

// Writes. Each returns the offset advanced past the written bytes.

// WriteUint8 writes one byte.
func (c *Cursor) WriteUint8(offset uint32, v uint8) (uint32, error) {
	if err := c.check(offset, 1); err != nil {
		return offset, err
	}
	c.buf[offset] = v
	return offset + 1, nil
}

// WriteInt8 writes one signed byte.
func (c *Cursor) WriteInt8(offset uint32, v int8) (uint32, error) {
	return c.WriteUint8(offset, uint8(v))
}

// WriteUint16 writes an unsigned 16-bit value.
func (c *Cursor) WriteUint16(offset uint32, v uint16) (uint32, error) {
	if err := c.check(offset, 2); err != nil {
		return offset, err
	}
	c.order.PutUint16(c.buf[offset:], v)
	return offset + 2, nil
}

// WriteInt16 writes a signed 16-bit value.
func (c *Cursor) WriteInt16(offset uint32, v int16) (uint32, error) {
	return c.WriteUint16(offset, uint16(v))
}

// WriteUint32 writes an unsigned 32-bit value.
func (c *Cursor) WriteUint32(offset uint32, v uint32) (uint32, error) {
	if err := c.check(offset, 4); err != nil {
		return offset, err
	}
	c.order.PutUint32(c.buf[offset:], v)
	return offset + 4, nil
}

// WriteInt32 writes a signed 32-bit value.
func (c *Cursor) WriteInt32(offset uint32, v int32) (uint32, error) {
	return c.WriteUint32(offset, uint32(v))
}

// WriteUint64 writes an unsigned 64-bit value.
func (c *Cursor) WriteUint64(offset uint32, v uint64) (uint32, error) {
	if err := c.check(offset, 8); err != nil {
		return offset, err
	}
	c.order.PutUint64(c.buf[offset:], v)
	return offset + 8, nil
}

// WriteFloat32 writes an IEEE 754 single.
func (c *Cursor) WriteFloat32(offset uint32, v float32) (uint32, error) {
	return c.WriteUint32(offset, math.Float32bits(v))
}

// WriteFloat64 writes an IEEE 754 double.
func (c *Cursor) WriteFloat64(offset uint32, v float64) (uint32, error) {
	return c.WriteUint64(offset, math.Float64bits(v))
}

// WriteBytes copies b into the buffer at offset.
func (c *Cursor) WriteBytes(offset uint32, b []byte) (uint32, error) {
	if err := c.check(offset, uint32(len(b))); err != nil {
		return offset, err
	}
	copy(c.buf[offset:], b)
	return offset + uint32(len(b)), nil
}

// WriteString writes s as one-byte-per-character text.
func (c *Cursor) WriteString(offset uint32, s string) (uint32, error) {
	return c.WriteBytes(offset, []byte(s))
}

// WriteSpecialString writes s through the installed character set encoder.
func (c *Cursor) WriteSpecialString(offset uint32, s string) (uint32, error) {
	b, err := charset.Encode(c.coding, s)
	if err != nil {
		return offset, err
	}
	return c.WriteBytes(offset, b)
}
