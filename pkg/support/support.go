// Package support holds the geometry a legged body exposes about its
// contact with the ground: a support polygon in a plane spanned by two
// world axes, its centroid, and the body's centre of mass. The package only
// derives world-space positions and the balance classification from those
// inputs; drawing them is left to the caller.
package support

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/rotor/pkg/so3"
	"github.com/chazu/rotor/pkg/transform"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	vec "gonum.org/v1/gonum/spatial/r3"
)

// AxisTolerance bounds |a1·a2| for axes to count as orthogonal and their
// norms for them to count as non-degenerate.
const AxisTolerance = 1e-6

// edgeTolerance is the distance from an edge at which a point is treated as
// lying on it.
const edgeTolerance = 1e-12

var (
	ErrEmptyPolygon      = errors.New("support: polygon has no vertices")
	ErrDegenerateAxes    = errors.New("support: degenerate axis")
	ErrAxesNotOrthogonal = errors.New("support: axes are not orthogonal")
)

// Geometry is the read-only snapshot a host hands over for one body (or one
// tree of a body). Polygon and Centroid are expressed in the plane
// coordinates of Axes; COM is a world-space point.
type Geometry struct {
	Polygon  []r2.Point
	Axes     [2]r3.Vector
	Centroid r2.Point
	COM      r3.Vector
}

// AxesFromUp returns two unit axes spanning the plane normal to up, ordered
// so that their cross product points along up.
func AxesFromUp(up r3.Vector) ([2]r3.Vector, error) {
	if up.Norm() < AxisTolerance {
		return [2]r3.Vector{}, fmt.Errorf("%w: up vector %v", ErrDegenerateAxes, up)
	}
	u := up.Normalize()
	a1 := u.Ortho()
	return [2]r3.Vector{a1, u.Cross(a1).Normalize()}, nil
}

// Validate checks that the axes are usable and the polygon is non-empty.
func (g Geometry) Validate() error {
	if len(g.Polygon) == 0 {
		return ErrEmptyPolygon
	}
	for i, a := range g.Axes {
		if a.Norm() < AxisTolerance {
			return fmt.Errorf("%w: axis %d is %v", ErrDegenerateAxes, i, a)
		}
	}
	a1, a2 := g.Axes[0].Normalize(), g.Axes[1].Normalize()
	if d := math.Abs(a1.Dot(a2)); d > AxisTolerance {
		return fmt.Errorf("%w: |a1·a2| = %g", ErrAxesNotOrthogonal, d)
	}
	return nil
}

// Up returns the plane normal a1×a2.
func (g Geometry) Up() r3.Vector {
	return g.Axes[0].Cross(g.Axes[1])
}

// Lift maps a plane point into world space, raised by elevation along Up.
func (g Geometry) Lift(p r2.Point, elevation float64) r3.Vector {
	return g.Axes[0].Mul(p.X).
		Add(g.Axes[1].Mul(p.Y)).
		Add(g.Up().Mul(elevation))
}

// Vertices returns the polygon lifted into world space.
func (g Geometry) Vertices(elevation float64) []r3.Vector {
	out := make([]r3.Vector, len(g.Polygon))
	for i, p := range g.Polygon {
		out[i] = g.Lift(p, elevation)
	}
	return out
}

// ProjectCOM returns the centre of mass in plane coordinates.
func (g Geometry) ProjectCOM() r2.Point {
	return r2.Point{X: g.COM.Dot(g.Axes[0]), Y: g.COM.Dot(g.Axes[1])}
}

// Bounds returns the axis-aligned bounding rectangle of the polygon.
func (g Geometry) Bounds() r2.Rect {
	return r2.RectFromPoints(g.Polygon...)
}

// Contains reports whether p lies inside the polygon or on its boundary.
// A single vertex contains only itself and two vertices contain the segment
// between them; larger polygons use the even-odd rule.
func (g Geometry) Contains(p r2.Point) bool {
	poly := g.Polygon
	switch len(poly) {
	case 0:
		return false
	case 1:
		return p.Sub(poly[0]).Norm() <= edgeTolerance
	case 2:
		return onSegment(p, poly[0], poly[1])
	}
	if !g.Bounds().ExpandedByMargin(edgeTolerance).ContainsPoint(p) {
		return false
	}

	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[j], poly[i]
		if onSegment(p, a, b) {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// COMInside reports whether the projected centre of mass lies in the
// polygon.
func (g Geometry) COMInside() bool {
	return g.Contains(g.ProjectCOM())
}

// Frame returns the rotation whose columns are the normalized axes and Up.
func (g Geometry) Frame() so3.SO3[so3.RotationMatrix] {
	x := g.Axes[0].Normalize()
	z := x.Cross(g.Axes[1]).Normalize()
	y := z.Cross(x)
	return so3.Wrap(so3.RotationMatrix{
		x.X, y.X, z.X,
		x.Y, y.Y, z.Y,
		x.Z, y.Z, z.Z,
	})
}

// CentroidPose returns the pose of a marker at the polygon centroid: the
// support frame, placed at the lifted centroid.
func (g Geometry) CentroidPose(elevation float64) transform.Isometry {
	return g.pose(g.Lift(g.Centroid, elevation))
}

// COMPose is CentroidPose for the projected centre of mass.
func (g Geometry) COMPose(elevation float64) transform.Isometry {
	return g.pose(g.Lift(g.ProjectCOM(), elevation))
}

func (g Geometry) pose(at r3.Vector) transform.Isometry {
	return transform.Isometry{
		Rotation:    g.Frame(),
		Translation: vec.Vec{X: at.X, Y: at.Y, Z: at.Z},
	}
}

func onSegment(p, a, b r2.Point) bool {
	ab, ap := b.Sub(a), p.Sub(a)
	l := ab.Norm()
	if l == 0 {
		return ap.Norm() <= edgeTolerance
	}
	if math.Abs(ab.Cross(ap))/l > edgeTolerance {
		return false
	}
	t := ab.Dot(ap) / (l * l)
	return t >= -edgeTolerance && t <= 1+edgeTolerance
}
