package dicom

import "math"

// Point3 is a point or vector in patient space, millimeters.
type Point3 [3]float64

// Add returns p + q.
func (p Point3) Add(q Point3) Point3 {
	return Point3{p[0] + q[0], p[1] + q[1], p[2] + q[2]}
}

// Sub returns p - q.
func (p Point3) Sub(q Point3) Point3 {
	return Point3{p[0] - q[0], p[1] - q[1], p[2] - q[2]}
}

// Dot returns the dot product.
func (p Point3) Dot(q Point3) float64 {
	return p[0]*q[0] + p[1]*q[1] + p[2]*q[2]
}

// Cross returns the cross product.
func (p Point3) Cross(q Point3) Point3 {
	return Point3{
		p[1]*q[2] - p[2]*q[1],
		p[2]*q[0] - p[0]*q[2],
		p[0]*q[1] - p[1]*q[0],
	}
}

// Dist returns the Euclidean distance between two points.
func (p Point3) Dist(q Point3) float64 {
	d := p.Sub(q)
	return math.Sqrt(d.Dot(d))
}

// Matrix3 is a 3x3 matrix, row major.
type Matrix3 [9]float64

// Identity3 is the identity matrix.
var Identity3 = Matrix3{1, 0, 0, 0, 1, 0, 0, 0, 1}

// Row returns row i as a vector.
func (m Matrix3) Row(i int) Point3 {
	return Point3{m[i*3], m[i*3+1], m[i*3+2]}
}

// MulVec returns m * v.
func (m Matrix3) MulVec(v Point3) Point3 {
	return Point3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

// Transpose returns the transposed matrix. For the orthonormal
// orientation matrices used here this is the inverse.
func (m Matrix3) Transpose() Matrix3 {
	return Matrix3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Size is the voxel grid extent.
type Size struct {
	Columns int
	Rows    int
	Slices  int
}

// Spacing is the voxel extent in millimeters.
type Spacing struct {
	Column float64
	Row    float64
	Slice  float64
}

// Geometry describes where the image grid sits in patient space.
// Orientation rows are the row cosine, the column cosine, and their
// cross product (the slice normal).
type Geometry struct {
	Origins     []Point3
	Size        Size
	Spacing     Spacing
	Orientation Matrix3
}

// NewGeometry builds a geometry with identity orientation and unit
// spacing defaults filled in.
func NewGeometry(origin Point3, size Size, spacing Spacing) *Geometry {
	if spacing.Column == 0 {
		spacing.Column = 1
	}
	if spacing.Row == 0 {
		spacing.Row = 1
	}
	if spacing.Slice == 0 {
		spacing.Slice = 1
	}
	return &Geometry{
		Origins:     []Point3{origin},
		Size:        size,
		Spacing:     spacing,
		Orientation: Identity3,
	}
}

// Origin returns the first slice origin.
func (g *Geometry) Origin() Point3 {
	if len(g.Origins) == 0 {
		return Point3{}
	}
	return g.Origins[0]
}

// Normal returns the slice normal, row cosine cross column cosine.
func (g *Geometry) Normal() Point3 {
	return g.Orientation.Row(2)
}

// SliceIndex returns the insertion index for a slice at origin: the
// nearest known origin, bumped by one when the new origin lies on the
// positive side of the normal through it.
func (g *Geometry) SliceIndex(origin Point3) int {
	if len(g.Origins) == 0 {
		return 0
	}
	nearest := 0
	best := origin.Dist(g.Origins[0])
	for k := 1; k < len(g.Origins); k++ {
		if d := origin.Dist(g.Origins[k]); d < best {
			best = d
			nearest = k
		}
	}
	if g.Normal().Dot(origin.Sub(g.Origins[nearest])) > 0 {
		return nearest + 1
	}
	return nearest
}

// InsertOrigin splices a slice origin at index.
func (g *Geometry) InsertOrigin(index int, origin Point3) {
	g.Origins = append(g.Origins, Point3{})
	copy(g.Origins[index+1:], g.Origins[index:])
	g.Origins[index] = origin
	g.Size.Slices = len(g.Origins)
}

// IndexToWorld maps grid indices (column, row, slice) to patient space.
func (g *Geometry) IndexToWorld(index Point3) Point3 {
	scaled := Point3{
		index[0] * g.Spacing.Column,
		index[1] * g.Spacing.Row,
		index[2] * g.Spacing.Slice,
	}
	return g.Origin().Add(g.Orientation.Transpose().MulVec(scaled))
}

// WorldToIndex is the exact inverse of IndexToWorld.
func (g *Geometry) WorldToIndex(world Point3) Point3 {
	v := g.Orientation.MulVec(world.Sub(g.Origin()))
	return Point3{
		v[0] / g.Spacing.Column,
		v[1] / g.Spacing.Row,
		v[2] / g.Spacing.Slice,
	}
}

// Equal compares sizes, spacings and orientations, ignoring origins.
func (g *Geometry) Equal(other *Geometry) bool {
	return g.Size.Columns == other.Size.Columns &&
		g.Size.Rows == other.Size.Rows &&
		g.Spacing == other.Spacing &&
		g.Orientation == other.Orientation
}
