package dicom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoint3_Math(t *testing.T) {
	p := Point3{1, 2, 3}
	q := Point3{4, 5, 6}

	assert.Equal(t, Point3{5, 7, 9}, p.Add(q))
	assert.Equal(t, Point3{-3, -3, -3}, p.Sub(q))
	assert.Equal(t, float64(32), p.Dot(q))

	x := Point3{1, 0, 0}
	y := Point3{0, 1, 0}
	assert.Equal(t, Point3{0, 0, 1}, x.Cross(y))
}

func TestMatrix3_Identity(t *testing.T) {
	v := Point3{3, -2, 7}
	assert.Equal(t, v, Identity3.MulVec(v))
	assert.Equal(t, Identity3, Identity3.Transpose())
}

func TestGeometry_Defaults(t *testing.T) {
	g := NewGeometry(Point3{}, Size{Columns: 2, Rows: 2, Slices: 1}, Spacing{})
	assert.Equal(t, Spacing{Column: 1, Row: 1, Slice: 1}, g.Spacing)
	assert.Equal(t, Identity3, g.Orientation)
	assert.Equal(t, Point3{0, 0, 1}, g.Normal())
}

func TestGeometry_WorldToIndexIsInverse(t *testing.T) {
	g := NewGeometry(Point3{10, 20, 30}, Size{Columns: 4, Rows: 4, Slices: 2},
		Spacing{Column: 0.5, Row: 0.75, Slice: 2})

	for _, index := range []Point3{{0, 0, 0}, {1, 2, 1}, {3, 3, 0}} {
		world := g.IndexToWorld(index)
		back := g.WorldToIndex(world)
		for i := 0; i < 3; i++ {
			assert.InDelta(t, index[i], back[i], 1e-9)
		}
	}
}

func TestGeometry_SliceIndex(t *testing.T) {
	g := NewGeometry(Point3{0, 0, 0}, Size{Columns: 1, Rows: 1, Slices: 1}, Spacing{})
	g.Origins = append(g.Origins, Point3{0, 0, 2}, Point3{0, 0, 4})
	g.Size.Slices = 3

	// Past the last slice along the normal.
	assert.Equal(t, 3, g.SliceIndex(Point3{0, 0, 5}))
	// Between two known origins: nearest is slice 1, positive side.
	assert.Equal(t, 2, g.SliceIndex(Point3{0, 0, 3}))
	// Before the first slice.
	assert.Equal(t, 0, g.SliceIndex(Point3{0, 0, -1}))
	// On a known origin.
	assert.Equal(t, 1, g.SliceIndex(Point3{0, 0, 2}))
}

func TestGeometry_InsertOrigin(t *testing.T) {
	g := NewGeometry(Point3{0, 0, 0}, Size{Columns: 1, Rows: 1, Slices: 1}, Spacing{})
	g.Origins = append(g.Origins, Point3{0, 0, 4})

	g.InsertOrigin(1, Point3{0, 0, 2})
	require.Len(t, g.Origins, 3)
	assert.Equal(t, Point3{0, 0, 0}, g.Origins[0])
	assert.Equal(t, Point3{0, 0, 2}, g.Origins[1])
	assert.Equal(t, Point3{0, 0, 4}, g.Origins[2])
	assert.Equal(t, 3, g.Size.Slices)
}
