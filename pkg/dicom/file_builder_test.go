package dicom

import (
	"bytes"
	"encoding/binary"
)

// fileBuilder assembles part-10 byte buffers for tests.
type fileBuilder struct {
	buf   bytes.Buffer
	order binary.ByteOrder
}

// newFileBuilder starts a buffer with a zero preamble, the DICM magic,
// and a File Meta group carrying the given transfer syntax.
func newFileBuilder(tsUID string, bigEndian bool) *fileBuilder {
	b := &fileBuilder{order: binary.LittleEndian}
	b.buf.Write(make([]byte, 128))
	b.buf.WriteString("DICM")

	uid := []byte(tsUID)
	if len(uid)%2 != 0 {
		uid = append(uid, 0x00)
	}
	metaLength := uint32(8 + len(uid))

	// (0002,0000) UL 4
	b.tag(0x0002, 0x0000)
	b.buf.WriteString("UL")
	b.u16(4)
	b.u32(metaLength)
	// (0002,0010) UI
	b.tag(0x0002, 0x0010)
	b.buf.WriteString("UI")
	b.u16(uint16(len(uid)))
	b.buf.Write(uid)

	if bigEndian {
		b.order = binary.BigEndian
	}
	return b
}

func (b *fileBuilder) tag(group, element uint16) {
	b.u16(group)
	b.u16(element)
}

func (b *fileBuilder) u16(v uint16) {
	binary.Write(&b.buf, b.order, v)
}

func (b *fileBuilder) u32(v uint32) {
	binary.Write(&b.buf, b.order, v)
}

// implicitElem writes an implicit VR element.
func (b *fileBuilder) implicitElem(group, element uint16, value []byte) {
	b.tag(group, element)
	b.u32(uint32(len(value)))
	b.buf.Write(value)
}

// explicitElem writes an explicit VR element, choosing the short or long
// length layout from the VR.
func (b *fileBuilder) explicitElem(group, element uint16, vrCode string, value []byte) {
	b.tag(group, element)
	b.buf.WriteString(vrCode)
	switch vrCode {
	case "OB", "OD", "OF", "OW", "SQ", "UT", "UN":
		b.buf.Write([]byte{0, 0})
		b.u32(uint32(len(value)))
	default:
		b.u16(uint16(len(value)))
	}
	b.buf.Write(value)
}

// explicitUndefined writes an explicit VR element header with undefined
// length; the caller appends items and the delimiter.
func (b *fileBuilder) explicitUndefined(group, element uint16, vrCode string) {
	b.tag(group, element)
	b.buf.WriteString(vrCode)
	b.buf.Write([]byte{0, 0})
	b.u32(0xFFFFFFFF)
}

// item writes an item header with an explicit byte length.
func (b *fileBuilder) item(length uint32) {
	b.tag(0xFFFE, 0xE000)
	b.u32(length)
}

// delimiter writes a zero-length delimitation item.
func (b *fileBuilder) delimiter(element uint16) {
	b.tag(0xFFFE, element)
	b.u32(0)
}

func (b *fileBuilder) bytes() []byte {
	return b.buf.Bytes()
}

// leU16 packs values little endian, the layout of LE test elements.
func leU16(values ...uint16) []byte {
	out := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[i*2:], v)
	}
	return out
}

// beU16 packs values big endian.
func beU16(values ...uint16) []byte {
	out := make([]byte, len(values)*2)
	for i, v := range values {
		binary.BigEndian.PutUint16(out[i*2:], v)
	}
	return out
}

// buildMinimalImplicit is the minimal implicit-LE monochrome file: one
// 1x1 8-bit pixel with value 42.
func buildMinimalImplicit() []byte {
	b := newFileBuilder("1.2.840.10008.1.2", false)
	b.implicitElem(0x0028, 0x0002, leU16(1))              // SamplesPerPixel
	b.implicitElem(0x0028, 0x0004, []byte("MONOCHROME2 ")) // PhotometricInterpretation
	b.implicitElem(0x0028, 0x0010, leU16(1))              // Rows
	b.implicitElem(0x0028, 0x0011, leU16(1))              // Columns
	b.implicitElem(0x0028, 0x0100, leU16(8))              // BitsAllocated
	b.implicitElem(0x0028, 0x0103, leU16(0))              // PixelRepresentation
	b.implicitElem(0x7FE0, 0x0010, []byte{42, 0})         // PixelData
	return b.bytes()
}
