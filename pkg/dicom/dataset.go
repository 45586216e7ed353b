package dicom

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hantq/dwv.go/pkg/dicom/tag"
	"github.com/hantq/dwv.go/pkg/dicom/transfer"
)

// DataSet is an ordered map of data elements keyed by canonical tag key.
// Insertion order is preserved; it matches parse order and determines
// write order after the File Meta group.
type DataSet struct {
	keys     []string
	elements map[string]*Element

	// UndefinedLength records that this map was parsed as a sequence
	// item with undefined length; the writer rematerializes the item
	// delimitation item instead of an explicit length.
	UndefinedLength bool
}

// NewDataSet creates an empty data set.
func NewDataSet() *DataSet {
	return &DataSet{elements: make(map[string]*Element)}
}

// Len returns the element count.
func (ds *DataSet) Len() int { return len(ds.keys) }

// Get returns the element for a tag.
func (ds *DataSet) Get(t tag.Tag) (*Element, bool) {
	e, ok := ds.elements[t.Key()]
	return e, ok
}

// GetByKey returns the element for a canonical key.
func (ds *DataSet) GetByKey(key string) (*Element, bool) {
	e, ok := ds.elements[key]
	return e, ok
}

// Set inserts or replaces an element. New tags append in order.
func (ds *DataSet) Set(e *Element) {
	key := e.Key()
	if _, ok := ds.elements[key]; !ok {
		ds.keys = append(ds.keys, key)
	}
	ds.elements[key] = e
}

// Delete removes an element, preserving the order of the rest.
func (ds *DataSet) Delete(t tag.Tag) {
	key := t.Key()
	if _, ok := ds.elements[key]; !ok {
		return
	}
	delete(ds.elements, key)
	for i, k := range ds.keys {
		if k == key {
			ds.keys = append(ds.keys[:i], ds.keys[i+1:]...)
			break
		}
	}
}

// Walk visits elements in insertion order. Returning a non-nil error
// stops the walk.
func (ds *DataSet) Walk(fn func(*Element) error) error {
	for _, k := range ds.keys {
		if err := fn(ds.elements[k]); err != nil {
			return err
		}
	}
	return nil
}

// Elements returns the elements in insertion order.
func (ds *DataSet) Elements() []*Element {
	out := make([]*Element, 0, len(ds.keys))
	for _, k := range ds.keys {
		out = append(out, ds.elements[k])
	}
	return out
}

// Equal compares two data sets structurally over (tag, vr, value),
// ignoring offsets.
func (ds *DataSet) Equal(other *DataSet) bool {
	if ds.Len() != other.Len() {
		return false
	}
	for _, k := range ds.keys {
		a := ds.elements[k]
		b, ok := other.elements[k]
		if !ok || a.VR != b.VR || !valueEqual(a.Value, b.Value) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	ia, aIsItems := a.([]*DataSet)
	ib, bIsItems := b.([]*DataSet)
	if aIsItems || bIsItems {
		if !aIsItems || !bIsItems || len(ia) != len(ib) {
			return false
		}
		for i := range ia {
			if !ia[i].Equal(ib[i]) {
				return false
			}
		}
		return true
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// Convenience getters for the elements the engine itself consults.

// GetString returns the first string value for a tag.
func (ds *DataSet) GetString(t tag.Tag) (string, bool) {
	if e, ok := ds.Get(t); ok {
		return e.GetString()
	}
	return "", false
}

// GetInt returns the first value for a tag as an int.
func (ds *DataSet) GetInt(t tag.Tag) (int, bool) {
	if e, ok := ds.Get(t); ok {
		return e.GetInt()
	}
	return 0, false
}

// IntOr returns the first value for a tag as an int, or def when absent.
func (ds *DataSet) IntOr(t tag.Tag, def int) int {
	if v, ok := ds.GetInt(t); ok {
		return v
	}
	return def
}

// GetFloats returns a tag's values as float64s.
func (ds *DataSet) GetFloats(t tag.Tag) ([]float64, bool) {
	if e, ok := ds.Get(t); ok {
		return e.GetFloats()
	}
	return nil, false
}

// TransferSyntax returns the data set's transfer syntax.
func (ds *DataSet) TransferSyntax() (transfer.Syntax, bool) {
	s, ok := ds.GetString(tag.TransferSyntaxUID)
	if !ok {
		return "", false
	}
	return transfer.FromUID(s), true
}

// Rows returns (0028,0010).
func (ds *DataSet) Rows() int { return ds.IntOr(tag.Rows, 0) }

// Columns returns (0028,0011).
func (ds *DataSet) Columns() int { return ds.IntOr(tag.Columns, 0) }

// NumberOfFrames returns (0028,0008), defaulting to 1.
func (ds *DataSet) NumberOfFrames() int {
	n := ds.IntOr(tag.NumberOfFrames, 1)
	if n < 1 {
		return 1
	}
	return n
}

// SamplesPerPixel returns (0028,0002), defaulting to 1.
func (ds *DataSet) SamplesPerPixel() int {
	n := ds.IntOr(tag.SamplesPerPixel, 1)
	if n < 1 {
		return 1
	}
	return n
}

// BitsAllocated returns (0028,0100), zero when absent.
func (ds *DataSet) BitsAllocated() int { return ds.IntOr(tag.BitsAllocated, 0) }

// IsSigned returns true when (0028,0103) PixelRepresentation is 1.
func (ds *DataSet) IsSigned() bool { return ds.IntOr(tag.PixelRepresentation, 0) == 1 }

// String returns a readable dump, one element per line, insertion order.
func (ds *DataSet) String() string {
	if ds == nil {
		return "<nil>"
	}
	var b strings.Builder
	for _, k := range ds.keys {
		b.WriteString(ds.elements[k].String())
		b.WriteString("\n")
	}
	return b.String()
}

// String returns a string representation of the Element
func (e *Element) String() string {
	name := tag.KeywordOf(e.Tag)
	if name != "" {
		name = " " + name
	}

	valStr := ""
	switch v := e.Value.(type) {
	case [][]byte:
		valStr = fmt.Sprintf("Encapsulated Pixel Data (%d fragments)", len(v))
	case []*DataSet:
		valStr = fmt.Sprintf("Sequence (%d items)", len(v))
	case []uint8:
		if len(v) > 20 {
			valStr = fmt.Sprintf("Binary Data (%d bytes)", len(v))
		} else {
			valStr = fmt.Sprintf("%v", v)
		}
	case []int8:
		if len(v) > 20 {
			valStr = fmt.Sprintf("Binary Data (%d bytes)", len(v))
		} else {
			valStr = fmt.Sprintf("%v", v)
		}
	case []uint16:
		if len(v) > 10 {
			valStr = fmt.Sprintf("Array of %d values", len(v))
		} else {
			valStr = fmt.Sprintf("%v", v)
		}
	case []int16:
		if len(v) > 10 {
			valStr = fmt.Sprintf("Array of %d values", len(v))
		} else {
			valStr = fmt.Sprintf("%v", v)
		}
	case []string:
		valStr = strings.Join(v, "\\")
	default:
		valStr = fmt.Sprintf("%v", v)
	}

	return fmt.Sprintf("[%s] %s%s: %s", e.Tag, e.VR, name, valStr)
}

// MarshalJSON returns a JSON representation of the Element
func (e *Element) MarshalJSON() ([]byte, error) {
	var value any = e.Value
	if frags, ok := e.Value.([][]byte); ok {
		sizes := make([]int, len(frags))
		for i, f := range frags {
			sizes[i] = len(f)
		}
		value = map[string]any{"fragments": sizes}
	}
	return json.Marshal(&struct {
		Tag   string `json:"tag"`
		Name  string `json:"name,omitempty"`
		VR    string `json:"vr"`
		Value any    `json:"value"`
	}{
		Tag:   e.Tag.String(),
		Name:  tag.KeywordOf(e.Tag),
		VR:    string(e.VR),
		Value: value,
	})
}

// MarshalJSON returns the elements as an array in insertion order.
func (ds *DataSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(ds.Elements())
}
