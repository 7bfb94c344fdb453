// Package transform composes rotations with translations into rigid
// motions and hands them to the sdfx geometry kernel as homogeneous 4×4
// matrices.
package transform

import (
	"math"
	"strconv"

	"github.com/chazu/rotor/pkg/so3"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// gimbalTolerance is the cos(pitch) below which EulerZYX treats the
// decomposition as gimbal locked.
const gimbalTolerance = 1e-9

// Isometry is a rigid motion: a rotation followed by a translation.
type Isometry struct {
	Rotation    so3.SO3[so3.RotationMatrix]
	Translation r3.Vec
}

// Identity returns the isometry that leaves every point in place.
func Identity() Isometry {
	return Isometry{Rotation: so3.Identity[so3.RotationMatrix]()}
}

// New returns the isometry that rotates by rot and then translates by t.
func New[R so3.Rep[R]](rot so3.SO3[R], t r3.Vec) Isometry {
	return Isometry{Rotation: so3.Cast[so3.RotationMatrix](rot), Translation: t}
}

// Translation returns a pure translation by t.
func Translation(t r3.Vec) Isometry {
	iso := Identity()
	iso.Translation = t
	return iso
}

// FromEulerXYZ returns the rotation Rz(z)·Ry(y)·Rx(x), angles in radians.
func FromEulerXYZ(x, y, z float64) Isometry {
	rz := so3.Exp[so3.RotationMatrix](so3.Tangent{Z: z})
	ry := so3.Exp[so3.RotationMatrix](so3.Tangent{Y: y})
	rx := so3.Exp[so3.RotationMatrix](so3.Tangent{X: x})
	return Isometry{Rotation: rz.Mul(ry).Mul(rx)}
}

// Mul returns a∘b: b is applied first.
func (a Isometry) Mul(b Isometry) Isometry {
	return Isometry{
		Rotation:    a.Rotation.Mul(b.Rotation),
		Translation: r3.Add(a.Rotation.Rotate(b.Translation), a.Translation),
	}
}

// Inverse returns the isometry that undoes a.
func (a Isometry) Inverse() Isometry {
	inv := a.Rotation.Inverse()
	return Isometry{
		Rotation:    inv,
		Translation: r3.Scale(-1, inv.Rotate(a.Translation)),
	}
}

// Apply maps p through a.
func (a Isometry) Apply(p r3.Vec) r3.Vec {
	return r3.Add(a.Rotation.Rotate(p), a.Translation)
}

// ApplyV3 is Apply for sdfx vectors.
func (a Isometry) ApplyV3(p v3.Vec) v3.Vec {
	q := a.Apply(r3.Vec{X: p.X, Y: p.Y, Z: p.Z})
	return v3.Vec{X: q.X, Y: q.Y, Z: q.Z}
}

// IsApprox reports whether a and b rotate within tol radians of each other
// and translate within tol of each other.
func (a Isometry) IsApprox(b Isometry, tol float64) bool {
	return a.Rotation.IsApprox(b.Rotation, tol) &&
		r3.Norm(r3.Sub(a.Translation, b.Translation)) <= tol
}

// EulerZYX decomposes the rotation of a into angles with
// R = Rz(z)·Ry(y)·Rx(x) and y in [-π/2, π/2]. When gimbal locked, z is 0.
func (a Isometry) EulerZYX() (x, y, z float64) {
	m := a.Rotation.RepData()
	cy := math.Hypot(m.At(0, 0), m.At(1, 0))
	y = math.Atan2(-m.At(2, 0), cy)
	if cy > gimbalTolerance {
		x = math.Atan2(m.At(2, 1), m.At(2, 2))
		z = math.Atan2(m.At(1, 0), m.At(0, 0))
		return x, y, z
	}
	x = math.Atan2(-m.At(1, 2), m.At(1, 1))
	return x, y, 0
}

// M44 returns a as an sdfx homogeneous matrix.
func (a Isometry) M44() sdf.M44 {
	x, y, z := a.EulerZYX()
	rot := sdf.RotateZ(z).Mul(sdf.RotateY(y)).Mul(sdf.RotateX(x))
	t := a.Translation
	return sdf.Translate3d(v3.Vec{X: t.X, Y: t.Y, Z: t.Z}).Mul(rot)
}

// Place positions the solid s with a.
func (a Isometry) Place(s sdf.SDF3) sdf.SDF3 {
	return sdf.Transform3D(s, a.M44())
}

func (a Isometry) String() string {
	return a.Rotation.String() + " + " + vecString(a.Translation)
}

func vecString(v r3.Vec) string {
	return "(" + strconv.FormatFloat(v.X, 'g', -1, 64) + ", " +
		strconv.FormatFloat(v.Y, 'g', -1, 64) + ", " +
		strconv.FormatFloat(v.Z, 'g', -1, 64) + ")"
}
