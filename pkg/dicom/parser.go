package dicom

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hantq/dwv.go/pkg/dicom/charset"
	"github.com/hantq/dwv.go/pkg/dicom/tag"
	"github.com/hantq/dwv.go/pkg/dicom/transfer"
	"github.com/hantq/dwv.go/pkg/dicom/vr"
)

const (
	preambleSize = 128
	magicSize    = 4
	metaStart    = preambleSize + magicSize
)

// Parser consumes a DICOM part-10 byte buffer and produces an ordered
// DataSet. Parsing is all-or-nothing: a malformed element aborts the
// whole stream. Recoverable oddities are logged as warnings.
type Parser struct {
	// DefaultCharacterSet names the initial text decoder used when the
	// stream carries no (0008,0005). Empty means the default repertoire.
	DefaultCharacterSet string
	// Log receives warnings. Defaults to slog.Default().
	Log *slog.Logger
}

// Parse parses buf and returns the element map. The buffer is borrowed
// read-only for the duration of the call.
func Parse(buf []byte) (*DataSet, error) {
	p := &Parser{}
	return p.Parse(buf)
}

func (p *Parser) log() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}

// Parse parses a complete DICOM file buffer.
func (p *Parser) Parse(buf []byte) (*DataSet, error) {
	metaCursor := NewCursor(buf, false)

	magic, err := metaCursor.ReadString(preambleSize, magicSize)
	if err != nil {
		return nil, fmt.Errorf("%w: buffer shorter than the part-10 header", ErrNotDicom)
	}
	if magic != "DICM" {
		return nil, fmt.Errorf("%w: missing DICM magic", ErrNotDicom)
	}

	ds := NewDataSet()

	// File Meta group, always Explicit VR Little Endian. The first
	// element is (0002,0000) FileMetaInformationGroupLength; everything
	// after it up to the announced byte count belongs to the group.
	groupLengthElem, offset, err := p.readDataElement(metaCursor, metaStart, false, ds)
	if err != nil {
		return nil, err
	}
	if !groupLengthElem.Tag.Equals(tag.FileMetaInformationGroupLength) {
		return nil, malformed("expected (0002,0000) at offset %d, got %v", metaStart, groupLengthElem.Tag)
	}
	metaLength, ok := groupLengthElem.GetInt()
	if !ok {
		return nil, malformed("unreadable file meta group length")
	}
	ds.Set(groupLengthElem)

	metaEnd := offset + uint32(metaLength)
	for offset < metaEnd {
		var elem *Element
		elem, offset, err = p.readDataElement(metaCursor, offset, false, ds)
		if err != nil {
			return nil, err
		}
		ds.Set(elem)
	}

	tsUID, ok := ds.GetString(tag.TransferSyntaxUID)
	if !ok {
		return nil, fmt.Errorf("%w: missing TransferSyntaxUID (0002,0010)", ErrNotDicom)
	}
	syntax := transfer.FromUID(tsUID)
	if !syntax.IsSupported() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSyntax, syntax.Name())
	}

	dataCursor := NewCursor(buf, syntax.IsBigEndian())
	if p.DefaultCharacterSet != "" {
		coding, err := charset.Lookup(p.DefaultCharacterSet)
		if err != nil {
			p.log().Warn("default character set not usable", "charset", p.DefaultCharacterSet, "error", err)
		}
		dataCursor.SetCharset(coding)
	}

	implicit := syntax.IsImplicitVR()
	end := uint32(dataCursor.Len())
	for offset < end {
		var elem *Element
		elem, offset, err = p.readDataElement(dataCursor, offset, implicit, ds)
		if err != nil {
			return nil, err
		}
		ds.Set(elem)

		if elem.Tag.Equals(tag.SpecificCharacterSet) {
			p.installCharset(dataCursor, elem)
		}
	}

	if err := p.checkPixelData(ds, syntax); err != nil {
		return nil, err
	}
	return ds, nil
}

// installCharset switches the cursor's text decoder when (0008,0005) is
// encountered mid-stream. With code extensions announced, the second
// value names the repertoire used for decoding.
func (p *Parser) installCharset(c *Cursor, elem *Element) {
	terms, ok := elem.GetStrings()
	if !ok || len(terms) == 0 {
		return
	}
	term := terms[0]
	if len(terms) > 1 {
		p.log().Warn("specific character set uses code extensions, decoding with the second value",
			"first", terms[0], "second", terms[1])
		term = terms[1]
	}
	coding, err := charset.Lookup(term)
	if err != nil {
		p.log().Warn("specific character set fallback", "error", err)
	}
	c.SetCharset(coding)
}

// readTag reads a group and element number at offset.
func (p *Parser) readTag(c *Cursor, offset uint32) (tag.Tag, uint32, error) {
	group, err := c.ReadUint16(offset)
	if err != nil {
		return tag.Tag{}, offset, err
	}
	element, err := c.ReadUint16(offset + 2)
	if err != nil {
		return tag.Tag{}, offset, err
	}
	return tag.New(group, element), offset + 4, nil
}

// readVL reads the VR and VL fields per the transfer syntax rules and
// returns them with the offset advanced to the value bytes.
func (p *Parser) readVL(c *Cursor, offset uint32, t tag.Tag, implicit bool) (vr.VR, VL, uint32, error) {
	var elemVR vr.VR

	switch {
	case t.IsDelimiter():
		// Delimiters carry no VR in any syntax; 32-bit length.
		elemVR = vr.NA
		raw, err := c.ReadUint32(offset)
		if err != nil {
			return elemVR, VL{}, offset, err
		}
		if raw == undefinedLength {
			return elemVR, UndefinedVL, offset + 4, nil
		}
		return elemVR, DefinedVL(raw), offset + 4, nil

	case implicit:
		if t.Equals(tag.PixelData) {
			elemVR = vr.OX
		} else if entry, ok := tag.Lookup(t); ok {
			elemVR = vr.VR(entry.VR)
		} else {
			elemVR = vr.UN
		}
		raw, err := c.ReadUint32(offset)
		if err != nil {
			return elemVR, VL{}, offset, err
		}
		if raw == undefinedLength {
			return elemVR, UndefinedVL, offset + 4, nil
		}
		return elemVR, DefinedVL(raw), offset + 4, nil

	default:
		code, err := c.ReadString(offset, 2)
		if err != nil {
			return vr.None, VL{}, offset, err
		}
		elemVR = vr.VR(code)
		if !elemVR.IsValid() {
			return elemVR, VL{}, offset, malformed("unrecognized VR %q for %v at offset %d", code, t, offset)
		}
		offset += 2
		if elemVR.IsLongLength() {
			// 2 reserved bytes, then a 32-bit length.
			raw, err := c.ReadUint32(offset + 2)
			if err != nil {
				return elemVR, VL{}, offset, err
			}
			offset += 6
			if raw == undefinedLength {
				return elemVR, UndefinedVL, offset, nil
			}
			return elemVR, DefinedVL(raw), offset, nil
		}
		raw, err := c.ReadUint16(offset)
		if err != nil {
			return elemVR, VL{}, offset, err
		}
		return elemVR, DefinedVL(uint32(raw)), offset + 2, nil
	}
}

// readDataElement reads one complete data element starting at offset and
// returns it with the offset past its value. root provides the already
// parsed elements for context-dependent reads (pixel data typing).
func (p *Parser) readDataElement(c *Cursor, offset uint32, implicit bool, root *DataSet) (*Element, uint32, error) {
	t, offset, err := p.readTag(c, offset)
	if err != nil {
		return nil, offset, err
	}
	elemVR, vl, offset, err := p.readVL(c, offset, t, implicit)
	if err != nil {
		return nil, offset, err
	}

	elem := &Element{Tag: t, VR: elemVR, VL: vl, Start: offset}

	if vl.Undefined {
		switch {
		case t.Equals(tag.PixelData):
			frags, end, botVL, err := p.readPixelItemSequence(c, offset, implicit)
			if err != nil {
				return nil, offset, err
			}
			// The Basic Offset Table is not a fragment; the value starts
			// past it.
			elem.Start = offset + botVL
			elem.Value = frags
			elem.End = end
			return elem, end, nil

		case elemVR == vr.SQ, elemVR == vr.UN, elemVR == vr.OX:
			// Undefined length outside pixel data is only legal for a
			// delimiter-terminated sequence.
			items, end, err := p.readSequence(c, offset, implicit, UndefinedVL)
			if err != nil {
				return nil, offset, err
			}
			elem.VR = vr.SQ
			elem.Value = items
			elem.End = end
			return elem, end, nil

		default:
			return nil, offset, malformed("undefined length on non-sequence element %v", t)
		}
	}

	end := offset + vl.Length
	if err := c.check(offset, vl.Length); err != nil {
		return nil, offset, err
	}
	elem.End = end

	value, err := p.readValue(c, elem, implicit, root)
	if err != nil {
		return nil, offset, err
	}
	elem.Value = value
	return elem, end, nil
}

// readValue decodes the value bytes of an element with explicit length.
func (p *Parser) readValue(c *Cursor, elem *Element, implicit bool, root *DataSet) (any, error) {
	t, length, offset := elem.Tag, elem.VL.Length, elem.Start

	if t.Equals(tag.PixelData) {
		return p.readPixelValue(c, elem, root)
	}

	switch elem.VR {
	case vr.SQ:
		items, _, err := p.readSequence(c, offset, implicit, elem.VL)
		return items, err
	case vr.OB:
		return c.ReadInt8Slice(offset, length)
	case vr.OW:
		return c.ReadInt16Slice(offset, length)
	case vr.OF:
		return c.ReadInt32Slice(offset, length)
	case vr.OD:
		return c.ReadInt64Slice(offset, length)
	case vr.US:
		return c.ReadUint16Slice(offset, length)
	case vr.SS:
		return c.ReadInt16Slice(offset, length)
	case vr.UL:
		return c.ReadUint32Slice(offset, length)
	case vr.SL:
		return c.ReadInt32Slice(offset, length)
	case vr.FL:
		return c.ReadFloat32Slice(offset, length)
	case vr.FD:
		return c.ReadFloat64Slice(offset, length)
	case vr.AT:
		return p.readAttributeTags(c, offset, length)
	case vr.UN, vr.NA:
		return c.ReadUint8Slice(offset, length)
	default:
		return p.readStringValue(c, elem)
	}
}

// readAttributeTags reads AT pairs of u16 formatted "(GGGG,EEEE)".
func (p *Parser) readAttributeTags(c *Cursor, offset, length uint32) ([]string, error) {
	out := make([]string, 0, length/4)
	for pos := offset; pos < offset+length; pos += 4 {
		group, err := c.ReadUint16(pos)
		if err != nil {
			return nil, err
		}
		element, err := c.ReadUint16(pos + 2)
		if err != nil {
			return nil, err
		}
		out = append(out, tag.New(group, element).String())
	}
	return out, nil
}

// readStringValue decodes text bytes per the charset policy and splits
// multi-valued strings on backslash. Trailing padding is dropped.
func (p *Parser) readStringValue(c *Cursor, elem *Element) ([]string, error) {
	var s string
	var err error
	if elem.VR.UsesSpecificCharset() {
		s, err = c.ReadSpecialString(elem.Start, elem.VL.Length)
	} else {
		s, err = c.ReadString(elem.Start, elem.VL.Length)
	}
	if err != nil {
		return nil, err
	}
	s = strings.TrimRight(s, "\x00 ")
	if s == "" {
		return []string{}, nil
	}
	return strings.Split(s, "\\"), nil
}

// readPixelValue reads explicit-length pixel data as a typed array sized
// by BitsAllocated and PixelRepresentation.
func (p *Parser) readPixelValue(c *Cursor, elem *Element, root *DataSet) (any, error) {
	bits := root.BitsAllocated()
	if bits == 0 {
		p.log().Warn("BitsAllocated missing for pixel data, assuming 16")
		bits = 16
	}
	switch {
	case elem.VR == vr.OW && bits == 8:
		p.log().Warn("pixel data read as OW but BitsAllocated is 8")
	case elem.VR == vr.OB && bits == 16:
		p.log().Warn("pixel data read as OB but BitsAllocated is 16")
	}

	signed := root.IsSigned()
	switch {
	case bits == 8 && signed:
		return c.ReadInt8Slice(elem.Start, elem.VL.Length)
	case bits == 8:
		return c.ReadUint8Slice(elem.Start, elem.VL.Length)
	case bits == 32 && signed:
		return c.ReadInt32Slice(elem.Start, elem.VL.Length)
	case bits == 32:
		return c.ReadUint32Slice(elem.Start, elem.VL.Length)
	case signed:
		return c.ReadInt16Slice(elem.Start, elem.VL.Length)
	default:
		return c.ReadUint16Slice(elem.Start, elem.VL.Length)
	}
}

// readSequence reads SQ items. Explicit lengths are driven by the end
// offset; undefined lengths by the sequence delimitation item.
func (p *Parser) readSequence(c *Cursor, offset uint32, implicit bool, vl VL) ([]*DataSet, uint32, error) {
	items := []*DataSet{}
	if vl.Undefined {
		for {
			item, end, isSeqDelim, err := p.readItem(c, offset, implicit)
			if err != nil {
				return nil, offset, err
			}
			offset = end
			if isSeqDelim {
				return items, offset, nil
			}
			items = append(items, item)
		}
	}

	seqEnd := offset + vl.Length
	for offset < seqEnd {
		item, end, isSeqDelim, err := p.readItem(c, offset, implicit)
		if err != nil {
			return nil, offset, err
		}
		offset = end
		if isSeqDelim {
			p.log().Warn("sequence delimitation inside explicit-length sequence", "offset", offset)
			break
		}
		items = append(items, item)
	}
	return items, offset, nil
}

// readItem reads one sequence item. The boolean is true when the read
// hit the sequence delimitation item instead.
func (p *Parser) readItem(c *Cursor, offset uint32, implicit bool) (*DataSet, uint32, bool, error) {
	t, pos, err := p.readTag(c, offset)
	if err != nil {
		return nil, offset, false, err
	}
	raw, err := c.ReadUint32(pos)
	if err != nil {
		return nil, offset, false, err
	}
	pos += 4

	switch {
	case t.Equals(tag.SequenceDelimitationItem):
		return nil, pos, true, nil
	case !t.Equals(tag.Item):
		return nil, offset, false, malformed("expected item tag at offset %d, got %v", offset, t)
	}

	item := NewDataSet()
	if raw != undefinedLength {
		itemEnd := pos + raw
		for pos < itemEnd {
			var elem *Element
			elem, pos, err = p.readDataElement(c, pos, implicit, item)
			if err != nil {
				return nil, pos, false, err
			}
			item.Set(elem)
		}
		return item, pos, false, nil
	}

	// Undefined item length: read until the item delimitation item,
	// which is consumed but not stored.
	item.UndefinedLength = true
	for {
		var elem *Element
		elem, pos, err = p.readDataElement(c, pos, implicit, item)
		if err != nil {
			return nil, pos, false, err
		}
		if elem.Tag.Equals(tag.ItemDelimitationItem) {
			return item, pos, false, nil
		}
		item.Set(elem)
	}
}

// readPixelItemSequence reads encapsulated pixel data: the Basic Offset
// Table item followed by fragment items up to the sequence delimiter.
// Returns the fragments, the end offset, and the offset table's VL.
func (p *Parser) readPixelItemSequence(c *Cursor, offset uint32, implicit bool) ([][]byte, uint32, uint32, error) {
	t, pos, err := p.readTag(c, offset)
	if err != nil {
		return nil, offset, 0, err
	}
	if !t.Equals(tag.Item) {
		return nil, offset, 0, malformed("expected basic offset table item at offset %d, got %v", offset, t)
	}
	botVL, err := c.ReadUint32(pos)
	if err != nil {
		return nil, offset, 0, err
	}
	pos += 4
	// The offset table is consulted for the value start offset but is
	// not kept as a fragment; it is rebuilt empty on write.
	if err := c.check(pos, botVL); err != nil {
		return nil, offset, 0, err
	}
	pos += botVL

	fragments := [][]byte{}
	for {
		t, next, err := p.readTag(c, pos)
		if err != nil {
			return nil, pos, 0, err
		}
		length, err := c.ReadUint32(next)
		if err != nil {
			return nil, pos, 0, err
		}
		next += 4
		switch {
		case t.Equals(tag.SequenceDelimitationItem):
			return fragments, next, botVL, nil
		case !t.Equals(tag.Item):
			return nil, pos, 0, malformed("expected pixel item at offset %d, got %v", pos, t)
		}
		frag, err := c.ReadBytes(next, length)
		if err != nil {
			return nil, pos, 0, err
		}
		fragments = append(fragments, frag)
		pos = next + length
	}
}

// checkPixelData validates the frame structure invariants after parsing.
func (p *Parser) checkPixelData(ds *DataSet, syntax transfer.Syntax) error {
	elem, ok := ds.Get(tag.PixelData)
	if !ok {
		return nil
	}
	frames := ds.NumberOfFrames()

	if frags, ok := elem.GetFragments(); ok {
		if len(frags) > frames && len(frags)%frames != 0 {
			p.log().Warn("fragment count not divisible by frame count, using one fragment per frame",
				"fragments", len(frags), "frames", frames)
		}
		return nil
	}

	if syntax.IsEncapsulated() {
		p.log().Warn("compressed transfer syntax but pixel data is not encapsulated",
			"syntax", syntax.Name())
	}

	rows, cols := ds.Rows(), ds.Columns()
	samples := ds.SamplesPerPixel()
	if frames > 1 && rows > 0 && cols > 0 {
		sliceSize := rows * cols * samples
		if total := elem.ValueCount(); total != sliceSize*frames {
			p.log().Warn("pixel data does not partition into frames",
				"values", total, "frames", frames, "slice_size", sliceSize)
		}
	}
	return nil
}
