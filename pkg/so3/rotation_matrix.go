package so3

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// RotationMatrix stores a 3×3 orthonormal matrix with determinant +1 in
// row-major order: element (i, j) is m[3*i+j].
type RotationMatrix [9]float64

// FromRotationMatrix copies a 3×3 matrix into a rotation. It fails with
// ErrInvalidDimension for any other shape. Orthonormality is not checked;
// see SO3.IsValid.
func FromRotationMatrix(m mat.Matrix) (SO3[RotationMatrix], error) {
	return FromCoordinates[RotationMatrix](m)
}

// Kind returns KindRotationMatrix.
func (RotationMatrix) Kind() Kind { return KindRotationMatrix }

// At returns element (i, j).
func (m RotationMatrix) At(i, j int) float64 { return m[3*i+j] }

// Mat returns a copy of m as a gonum 3×3 matrix.
func (m RotationMatrix) Mat() *r3.Mat {
	vals := m
	return r3.NewMat(vals[:])
}

// Row returns row i.
func (m RotationMatrix) Row(i int) r3.Vec {
	return r3.Vec{X: m[3*i], Y: m[3*i+1], Z: m[3*i+2]}
}

// Col returns column j.
func (m RotationMatrix) Col(j int) r3.Vec {
	return r3.Vec{X: m[j], Y: m[3+j], Z: m[6+j]}
}

// Det returns the determinant of m.
func (m RotationMatrix) Det() float64 {
	return r3.Dot(m.Row(0), r3.Cross(m.Row(1), m.Row(2)))
}

func (m RotationMatrix) quaternion() Quaternion { return MatrixToQuaternion(m) }

func (RotationMatrix) fromQuaternion(q Quaternion) RotationMatrix {
	return QuaternionToMatrix(q)
}

func (RotationMatrix) identity() RotationMatrix {
	return RotationMatrix{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

func (m RotationMatrix) inverse() RotationMatrix {
	return RotationMatrix{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

func (m RotationMatrix) mul(o RotationMatrix) RotationMatrix {
	var p RotationMatrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			p[3*i+j] = m[3*i]*o[j] + m[3*i+1]*o[3+j] + m[3*i+2]*o[6+j]
		}
	}
	return p
}

// compose is the matrix product, re-orthonormalized once the accumulated
// drift exceeds DriftTolerance.
func (m RotationMatrix) compose(other RotationMatrix) RotationMatrix {
	p := m.mul(other)
	if d := p.drift(); d > DriftTolerance {
		Logger().Debug("so3: re-orthonormalizing matrix product", "drift", d)
		return p.renormalize()
	}
	return p
}

func (m RotationMatrix) rotate(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0]*p.X + m[1]*p.Y + m[2]*p.Z,
		Y: m[3]*p.X + m[4]*p.Y + m[5]*p.Z,
		Z: m[6]*p.X + m[7]*p.Y + m[8]*p.Z,
	}
}

func (RotationMatrix) exp(v Tangent) RotationMatrix { return ExpMatrix(v) }

func (m RotationMatrix) log() Tangent { return LogMatrix(m) }

// random fills the first two rows with uniform coefficients and projects
// them onto SO(3) by Gram–Schmidt; the third row is their cross product so
// the determinant is +1.
func (m RotationMatrix) random(src sampler) RotationMatrix {
	for {
		x := r3.Vec{X: uniform(src, -1, 1), Y: uniform(src, -1, 1), Z: uniform(src, -1, 1)}
		y := r3.Vec{X: uniform(src, -1, 1), Y: uniform(src, -1, 1), Z: uniform(src, -1, 1)}
		if r3.Norm(x) < 1e-6 {
			continue
		}
		x = r3.Unit(x)
		y = r3.Sub(y, r3.Scale(r3.Dot(x, y), x))
		if r3.Norm(y) < 1e-6 {
			continue
		}
		return fromRows(x, r3.Unit(y), r3.Cross(x, r3.Unit(y)))
	}
}

// renormalize splits the orthogonality error of the first two rows evenly
// between them, rebuilds the third row as their cross product and rescales
// all rows to unit length. A degenerate matrix is replaced by identity.
func (m RotationMatrix) renormalize() RotationMatrix {
	x, y := m.Row(0), m.Row(1)
	e := r3.Dot(x, y)
	x, y = r3.Sub(x, r3.Scale(0.5*e, y)), r3.Sub(y, r3.Scale(0.5*e, x))
	z := r3.Cross(x, y)
	nx, ny, nz := r3.Norm(x), r3.Norm(y), r3.Norm(z)
	if nx == 0 || ny == 0 || nz == 0 {
		return m.identity()
	}
	return fromRows(r3.Scale(1/nx, x), r3.Scale(1/ny, y), r3.Scale(1/nz, z))
}

// drift returns ‖RRᵀ − I‖∞ together with any determinant sign error.
func (m RotationMatrix) drift() float64 {
	var d float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := r3.Dot(m.Row(i), m.Row(j))
			if i == j {
				v--
			}
			if math.IsNaN(v) {
				return math.Inf(1)
			}
			d = math.Max(d, math.Abs(v))
		}
	}
	if m.Det() < 0 {
		return math.Max(d, 2)
	}
	return d
}

func (RotationMatrix) shape() (rows, cols int) { return 3, 3 }

func (m RotationMatrix) coordinates() []float64 {
	c := make([]float64, 9)
	copy(c, m[:])
	return c
}

func (RotationMatrix) fromCoordinates(c []float64) RotationMatrix {
	var m RotationMatrix
	copy(m[:], c)
	return m
}

func fromRows(x, y, z r3.Vec) RotationMatrix {
	return RotationMatrix{
		x.X, x.Y, x.Z,
		y.X, y.Y, y.Z,
		z.X, z.Y, z.Z,
	}
}
