package dicom

import (
	"strconv"
	"strings"

	"github.com/hantq/dwv.go/pkg/dicom/tag"
	"github.com/hantq/dwv.go/pkg/dicom/vr"
)

// undefinedLength is the on-wire sentinel for undefined value lengths.
const undefinedLength = 0xFFFFFFFF

// VL is a value length: a byte count or the undefined-length variant.
type VL struct {
	Length    uint32
	Undefined bool
}

// DefinedVL builds an explicit value length.
func DefinedVL(n uint32) VL { return VL{Length: n} }

// UndefinedVL is the undefined-length variant. The immediate read length
// is zero; termination is driven by delimitation items.
var UndefinedVL = VL{Undefined: true}

// Bytes returns the byte count used for sizing, zero when undefined.
func (v VL) Bytes() uint32 {
	if v.Undefined {
		return 0
	}
	return v.Length
}

// Wire returns the 32-bit on-wire encoding of the length.
func (v VL) Wire() uint32 {
	if v.Undefined {
		return undefinedLength
	}
	return v.Length
}

// Element is a single parsed data element.
//
// Value holds one of:
//   - a typed numeric slice ([]int8, []uint8, []int16, []uint16, []int32,
//     []uint32, []int64, []float32, []float64)
//   - []string after backslash splitting for multi-valued string VRs
//   - []*DataSet for SQ items
//   - [][]byte fragments for encapsulated pixel data
type Element struct {
	Tag   tag.Tag
	VR    vr.VR
	VL    VL
	Value any

	// Start and End delimit the value bytes in the source buffer.
	// End-Start equals VL for explicit lengths.
	Start uint32
	End   uint32
}

// Key returns the element's canonical map key.
func (e *Element) Key() string { return e.Tag.Key() }

// GetString returns the first string value.
func (e *Element) GetString() (string, bool) {
	if ss, ok := e.Value.([]string); ok && len(ss) > 0 {
		return ss[0], true
	}
	return "", false
}

// GetStrings returns all string values.
func (e *Element) GetStrings() ([]string, bool) {
	ss, ok := e.Value.([]string)
	return ss, ok
}

// GetInt returns the first value as an int. String values parse decimal
// (IS and DS carry numbers as text).
func (e *Element) GetInt() (int, bool) {
	switch v := e.Value.(type) {
	case []uint8:
		if len(v) > 0 {
			return int(v[0]), true
		}
	case []int8:
		if len(v) > 0 {
			return int(v[0]), true
		}
	case []uint16:
		if len(v) > 0 {
			return int(v[0]), true
		}
	case []int16:
		if len(v) > 0 {
			return int(v[0]), true
		}
	case []uint32:
		if len(v) > 0 {
			return int(v[0]), true
		}
	case []int32:
		if len(v) > 0 {
			return int(v[0]), true
		}
	case []int64:
		if len(v) > 0 {
			return int(v[0]), true
		}
	case []string:
		if len(v) > 0 {
			if i, err := strconv.Atoi(strings.TrimSpace(v[0])); err == nil {
				return i, true
			}
			if f, err := strconv.ParseFloat(strings.TrimSpace(v[0]), 64); err == nil {
				return int(f), true
			}
		}
	}
	return 0, false
}

// GetFloat returns the first value as a float64.
func (e *Element) GetFloat() (float64, bool) {
	if fs, ok := e.GetFloats(); ok && len(fs) > 0 {
		return fs[0], true
	}
	return 0, false
}

// GetFloats returns all values as float64s. String values parse decimal.
func (e *Element) GetFloats() ([]float64, bool) {
	switch v := e.Value.(type) {
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out, true
	case []float64:
		return v, true
	case []uint16:
		out := make([]float64, len(v))
		for i, u := range v {
			out[i] = float64(u)
		}
		return out, true
	case []int16:
		out := make([]float64, len(v))
		for i, u := range v {
			out[i] = float64(u)
		}
		return out, true
	case []uint32:
		out := make([]float64, len(v))
		for i, u := range v {
			out[i] = float64(u)
		}
		return out, true
	case []int32:
		out := make([]float64, len(v))
		for i, u := range v {
			out[i] = float64(u)
		}
		return out, true
	case []string:
		out := make([]float64, 0, len(v))
		for _, s := range v {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}

// GetItems returns the child item data sets of an SQ element.
func (e *Element) GetItems() ([]*DataSet, bool) {
	items, ok := e.Value.([]*DataSet)
	return items, ok
}

// GetFragments returns the raw fragments of encapsulated pixel data.
func (e *Element) GetFragments() ([][]byte, bool) {
	frags, ok := e.Value.([][]byte)
	return frags, ok
}

// ValueCount returns the multiplicity of the element's value.
func (e *Element) ValueCount() int {
	switch v := e.Value.(type) {
	case nil:
		return 0
	case []uint8:
		return len(v)
	case []int8:
		return len(v)
	case []uint16:
		return len(v)
	case []int16:
		return len(v)
	case []uint32:
		return len(v)
	case []int32:
		return len(v)
	case []int64:
		return len(v)
	case []float32:
		return len(v)
	case []float64:
		return len(v)
	case []string:
		return len(v)
	case []*DataSet:
		return len(v)
	case [][]byte:
		return len(v)
	}
	return 1
}
