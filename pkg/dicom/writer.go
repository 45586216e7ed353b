package dicom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/hantq/dwv.go/pkg/dicom/charset"
	"github.com/hantq/dwv.go/pkg/dicom/tag"
	"github.com/hantq/dwv.go/pkg/dicom/transfer"
	"github.com/hantq/dwv.go/pkg/dicom/vr"
	"github.com/hantq/dwv.go/pkg/util"
)

// Implementation identity written into every produced file.
var (
	implementationClassUID    = util.HashUID("dwv.go")
	implementationVersionName = "DWVGO_1.0"
)

// Writer serializes a DataSet back to part-10 bytes. An optional Rules
// table rewrites elements on the way out.
type Writer struct {
	Rules Rules
	Log   *slog.Logger
}

// WriteBytes serializes ds with a default writer.
func WriteBytes(ds *DataSet) ([]byte, error) {
	w := &Writer{}
	return w.Write(ds)
}

func (w *Writer) log() *slog.Logger {
	if w.Log != nil {
		return w.Log
	}
	return slog.Default()
}

// Write applies the rules, partitions File Meta from the data set, and
// emits preamble, magic, File Meta (always Explicit VR Little Endian)
// and the data set in its transfer syntax.
func (w *Writer) Write(ds *DataSet) ([]byte, error) {
	transformed := w.Rules.Apply(ds)

	syntax := transfer.ExplicitVRLittleEndian
	if s, ok := transformed.TransferSyntax(); ok {
		syntax = s
	} else {
		w.log().Warn("no transfer syntax in data set, writing Little Endian Explicit")
	}
	if !syntax.IsSupported() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSyntax, syntax.Name())
	}

	var meta, data []*Element
	transformed.Walk(func(e *Element) error {
		if e.Tag.IsFileMeta() {
			meta = append(meta, e)
		} else {
			data = append(data, e)
		}
		return nil
	})
	meta = w.synthesizeMeta(meta, syntax)

	var dataOrder binary.ByteOrder = binary.LittleEndian
	if syntax.IsBigEndian() {
		dataOrder = binary.BigEndian
	}
	coding := writeCharset(transformed)

	enc := &encoder{order: binary.LittleEndian, coding: charset.Default(), implicit: false}
	var metaBuf bytes.Buffer
	var metaLength uint32
	for _, e := range meta {
		if e.Tag.Equals(tag.FileMetaInformationGroupLength) {
			continue
		}
		b, err := enc.element(e)
		if err != nil {
			return nil, err
		}
		metaLength += uint32(len(b))
		metaBuf.Write(b)
	}

	groupLength := &Element{
		Tag:   tag.FileMetaInformationGroupLength,
		VR:    vr.UL,
		VL:    DefinedVL(4),
		Value: []uint32{metaLength},
	}
	groupLengthBytes, err := enc.element(groupLength)
	if err != nil {
		return nil, err
	}

	denc := &encoder{order: dataOrder, coding: coding, implicit: syntax.IsImplicitVR()}
	var dataBuf bytes.Buffer
	for _, e := range data {
		b, err := denc.element(e)
		if err != nil {
			return nil, err
		}
		dataBuf.Write(b)
	}

	total := preambleSize + magicSize + len(groupLengthBytes) + metaBuf.Len() + dataBuf.Len()
	out := make([]byte, 0, total)
	out = append(out, make([]byte, preambleSize)...)
	out = append(out, "DICM"...)
	out = append(out, groupLengthBytes...)
	out = append(out, metaBuf.Bytes()...)
	out = append(out, dataBuf.Bytes()...)
	return out, nil
}

// synthesizeMeta forces the writer-controlled File Meta elements and
// returns the group sorted by tag.
func (w *Writer) synthesizeMeta(meta []*Element, syntax transfer.Syntax) []*Element {
	byTag := make(map[tag.Tag]*Element, len(meta)+3)
	for _, e := range meta {
		byTag[e.Tag] = e
	}
	byTag[tag.ImplementationClassUID] = &Element{
		Tag:   tag.ImplementationClassUID,
		VR:    vr.UI,
		Value: []string{implementationClassUID},
	}
	version := implementationVersionName
	if len(version)%2 != 0 {
		version += "\x00"
	}
	byTag[tag.ImplementationVersionName] = &Element{
		Tag:   tag.ImplementationVersionName,
		VR:    vr.SH,
		Value: []string{version},
	}
	if _, ok := byTag[tag.TransferSyntaxUID]; !ok {
		byTag[tag.TransferSyntaxUID] = &Element{
			Tag:   tag.TransferSyntaxUID,
			VR:    vr.UI,
			Value: []string{string(syntax)},
		}
	}

	out := make([]*Element, 0, len(byTag))
	for _, e := range byTag {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tag.Group != out[j].Tag.Group {
			return out[i].Tag.Group < out[j].Tag.Group
		}
		return out[i].Tag.Element < out[j].Tag.Element
	})
	return out
}

// writeCharset resolves the data set's Specific Character Set for text
// encoding, using the second value when code extensions are announced.
func writeCharset(ds *DataSet) encoding.Encoding {
	elem, ok := ds.Get(tag.SpecificCharacterSet)
	if !ok {
		return charset.Default()
	}
	terms, ok := elem.GetStrings()
	if !ok || len(terms) == 0 {
		return charset.Default()
	}
	term := terms[0]
	if len(terms) > 1 {
		term = terms[1]
	}
	coding, _ := charset.Lookup(term)
	return coding
}

// encoder serializes elements for one byte order and charset.
type encoder struct {
	order    binary.ByteOrder
	coding   encoding.Encoding
	implicit bool
}

// element returns the complete wire bytes of one element.
func (enc *encoder) element(e *Element) ([]byte, error) {
	elemVR := enc.resolveVR(e)

	switch {
	case e.VL.Undefined && elemVR == vr.SQ:
		items, ok := e.GetItems()
		if !ok {
			return nil, malformed("undefined-length %v without items", e.Tag)
		}
		content, err := enc.items(items)
		if err != nil {
			return nil, err
		}
		content = appendDelimiter(content, enc.order, tag.SequenceDelimitationItem)
		return enc.withPrefix(e.Tag, elemVR, UndefinedVL, content)

	case e.Tag.Equals(tag.PixelData):
		if frags, ok := e.GetFragments(); ok {
			content := enc.fragments(frags)
			return enc.withPrefix(e.Tag, elemVR, UndefinedVL, content)
		}
	}

	switch elemVR {
	case vr.SQ:
		items, ok := e.GetItems()
		if !ok {
			return nil, malformed("SQ element %v without items", e.Tag)
		}
		content, err := enc.items(items)
		if err != nil {
			return nil, err
		}
		return enc.withPrefix(e.Tag, elemVR, DefinedVL(uint32(len(content))), content)
	default:
		value, err := enc.value(e, elemVR)
		if err != nil {
			return nil, err
		}
		return enc.withPrefix(e.Tag, elemVR, DefinedVL(uint32(len(value))), value)
	}
}

// resolveVR maps the ambiguous pixel data sentinel to a concrete VR for
// explicit syntaxes: OB for 8-bit values, OW otherwise.
func (enc *encoder) resolveVR(e *Element) vr.VR {
	if e.VR != vr.OX {
		return e.VR
	}
	switch e.Value.(type) {
	case []uint8, []int8:
		return vr.OB
	}
	return vr.OW
}

// withPrefix emits the element prefix per the rule of 5 and appends the
// value bytes: 8 bytes for implicit VR and delimiter tags, 12 for
// explicit long-length VRs, 8 for explicit short-length VRs.
func (enc *encoder) withPrefix(t tag.Tag, elemVR vr.VR, vl VL, value []byte) ([]byte, error) {
	var buf bytes.Buffer
	binary.Write(&buf, enc.order, t.Group)
	binary.Write(&buf, enc.order, t.Element)

	if enc.implicit || t.IsDelimiter() || elemVR == vr.NA {
		binary.Write(&buf, enc.order, vl.Wire())
		buf.Write(value)
		return buf.Bytes(), nil
	}

	if !elemVR.IsValid() {
		return nil, malformed("cannot write VR %q for %v", elemVR, t)
	}
	buf.WriteString(string(elemVR))
	if elemVR.IsLongLength() {
		buf.Write([]byte{0, 0})
		binary.Write(&buf, enc.order, vl.Wire())
	} else {
		if vl.Undefined || vl.Length > 0xFFFF {
			return nil, malformed("length %d does not fit VR %s of %v", vl.Length, elemVR, t)
		}
		binary.Write(&buf, enc.order, uint16(vl.Length))
	}
	buf.Write(value)
	return buf.Bytes(), nil
}

// items encodes sequence items, preserving explicit or undefined item
// lengths as parsed.
func (enc *encoder) items(items []*DataSet) ([]byte, error) {
	var buf bytes.Buffer
	for _, item := range items {
		var body bytes.Buffer
		for _, child := range item.Elements() {
			b, err := enc.element(child)
			if err != nil {
				return nil, err
			}
			body.Write(b)
		}
		binary.Write(&buf, enc.order, tag.Item.Group)
		binary.Write(&buf, enc.order, tag.Item.Element)
		if item.UndefinedLength {
			binary.Write(&buf, enc.order, uint32(undefinedLength))
			buf.Write(body.Bytes())
			binary.Write(&buf, enc.order, tag.ItemDelimitationItem.Group)
			binary.Write(&buf, enc.order, tag.ItemDelimitationItem.Element)
			binary.Write(&buf, enc.order, uint32(0))
		} else {
			binary.Write(&buf, enc.order, uint32(body.Len()))
			buf.Write(body.Bytes())
		}
	}
	return buf.Bytes(), nil
}

// fragments encodes encapsulated pixel data: an empty Basic Offset Table
// item, one item per fragment, and the sequence delimitation item.
func (enc *encoder) fragments(frags [][]byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, enc.order, tag.Item.Group)
	binary.Write(&buf, enc.order, tag.Item.Element)
	binary.Write(&buf, enc.order, uint32(0))
	for _, frag := range frags {
		if len(frag)%2 != 0 {
			frag = append(frag[:len(frag):len(frag)], 0)
		}
		binary.Write(&buf, enc.order, tag.Item.Group)
		binary.Write(&buf, enc.order, tag.Item.Element)
		binary.Write(&buf, enc.order, uint32(len(frag)))
		buf.Write(frag)
	}
	return appendDelimiter(buf.Bytes(), enc.order, tag.SequenceDelimitationItem)
}

func appendDelimiter(b []byte, order binary.ByteOrder, t tag.Tag) []byte {
	var buf bytes.Buffer
	buf.Write(b)
	binary.Write(&buf, order, t.Group)
	binary.Write(&buf, order, t.Element)
	binary.Write(&buf, order, uint32(0))
	return buf.Bytes()
}

// value encodes a non-sequence value. The inverse of the parser's
// readValue dispatch.
func (enc *encoder) value(e *Element, elemVR vr.VR) ([]byte, error) {
	if e.Value == nil {
		return []byte{}, nil
	}

	if elemVR == vr.AT {
		return enc.attributeTags(e)
	}

	switch v := e.Value.(type) {
	case []string:
		return enc.strings(e, elemVR, v)
	case []uint8:
		return padEven(append([]byte(nil), v...)), nil
	case []int8:
		b := make([]byte, len(v))
		for i, x := range v {
			b[i] = byte(x)
		}
		return padEven(b), nil
	case []uint16:
		b := make([]byte, len(v)*2)
		for i, x := range v {
			enc.order.PutUint16(b[i*2:], x)
		}
		return b, nil
	case []int16:
		b := make([]byte, len(v)*2)
		for i, x := range v {
			enc.order.PutUint16(b[i*2:], uint16(x))
		}
		return b, nil
	case []uint32:
		b := make([]byte, len(v)*4)
		for i, x := range v {
			enc.order.PutUint32(b[i*4:], x)
		}
		return b, nil
	case []int32:
		b := make([]byte, len(v)*4)
		for i, x := range v {
			enc.order.PutUint32(b[i*4:], uint32(x))
		}
		return b, nil
	case []int64:
		b := make([]byte, len(v)*8)
		for i, x := range v {
			enc.order.PutUint64(b[i*8:], uint64(x))
		}
		return b, nil
	case []float32:
		b := make([]byte, len(v)*4)
		for i, x := range v {
			enc.order.PutUint32(b[i*4:], math.Float32bits(x))
		}
		return b, nil
	case []float64:
		b := make([]byte, len(v)*8)
		for i, x := range v {
			enc.order.PutUint64(b[i*8:], math.Float64bits(x))
		}
		return b, nil
	}
	return nil, malformed("unsupported value type %T for %v", e.Value, e.Tag)
}

// attributeTags parses "(GGGG,EEEE)" strings back into u16 pairs.
func (enc *encoder) attributeTags(e *Element) ([]byte, error) {
	ss, ok := e.Value.([]string)
	if !ok {
		return nil, malformed("AT element %v does not hold tag strings", e.Tag)
	}
	b := make([]byte, len(ss)*4)
	for i, s := range ss {
		t, ok := tag.FromString(s)
		if !ok {
			return nil, malformed("AT value %q of %v is not a tag", s, e.Tag)
		}
		enc.order.PutUint16(b[i*4:], t.Group)
		enc.order.PutUint16(b[i*4+2:], t.Element)
	}
	return b, nil
}

// strings joins multi-valued text with backslash, encodes per the
// charset policy, and pads to even length with the VR's padding byte.
func (enc *encoder) strings(e *Element, elemVR vr.VR, ss []string) ([]byte, error) {
	joined := strings.Join(ss, "\\")
	var b []byte
	var err error
	if elemVR.UsesSpecificCharset() {
		b, err = charset.Encode(enc.coding, joined)
		if err != nil {
			return nil, fmt.Errorf("encoding %v: %w", e.Tag, err)
		}
	} else {
		b = []byte(joined)
	}
	if len(b)%2 != 0 {
		b = append(b, elemVR.Padding())
	}
	return b, nil
}

func padEven(b []byte) []byte {
	if len(b)%2 != 0 {
		return append(b, 0)
	}
	return b
}
