package so3

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// RotationVector stores a rotation as its axis scaled by its angle. Every
// finite vector is a valid rotation and the zero vector is the identity, so
// the zero value of SO3[RotationVector] is usable as-is.
type RotationVector r3.Vec

// FromRotationVector returns the rotation with rotation vector v.
func FromRotationVector(v r3.Vec) SO3[RotationVector] {
	return SO3[RotationVector]{rep: RotationVector(v)}
}

// NewRotationVector returns the rotation with rotation vector (x, y, z).
func NewRotationVector(x, y, z float64) SO3[RotationVector] {
	return SO3[RotationVector]{rep: RotationVector{X: x, Y: y, Z: z}}
}

// ParseRotationVector copies a 3×1 vector into a rotation. Any other shape
// fails with ErrInvalidDimension; in particular a 3×3 matrix is rejected
// rather than interpreted as a rotation matrix.
func ParseRotationVector(v mat.Matrix) (SO3[RotationVector], error) {
	return FromCoordinates[RotationVector](v)
}

// Kind returns KindRotationVector.
func (RotationVector) Kind() Kind { return KindRotationVector }

// Vec returns the rotation vector.
func (v RotationVector) Vec() r3.Vec { return r3.Vec(v) }

// Angle returns the rotation angle ‖v‖.
func (v RotationVector) Angle() float64 { return r3.Norm(r3.Vec(v)) }

func (v RotationVector) quaternion() Quaternion { return ExpQuaternion(Tangent(v)) }

func (RotationVector) fromQuaternion(q Quaternion) RotationVector {
	return RotationVector(LogQuaternion(q))
}

func (RotationVector) identity() RotationVector { return RotationVector{} }

func (v RotationVector) inverse() RotationVector {
	return RotationVector{X: -v.X, Y: -v.Y, Z: -v.Z}
}

func (v RotationVector) compose(other RotationVector) RotationVector {
	return v.fromQuaternion(v.quaternion().compose(other.quaternion()))
}

func (v RotationVector) rotate(p r3.Vec) r3.Vec {
	return ExpMatrix(Tangent(v)).rotate(p)
}

// exp is the identity map: rotation vector coordinates are so(3)
// coordinates.
func (RotationVector) exp(t Tangent) RotationVector { return RotationVector(t) }

func (v RotationVector) log() Tangent { return CanonicalTangent(Tangent(v)) }

// random fills each coefficient uniformly in [-1, 1]. No projection is
// needed since every vector is a valid rotation.
func (RotationVector) random(src sampler) RotationVector {
	return RotationVector{
		X: uniform(src, -1, 1),
		Y: uniform(src, -1, 1),
		Z: uniform(src, -1, 1),
	}
}

func (v RotationVector) renormalize() RotationVector {
	if v.drift() != 0 {
		return v.identity()
	}
	return v
}

func (v RotationVector) drift() float64 {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return math.Inf(1)
		}
	}
	return 0
}

func (RotationVector) shape() (rows, cols int) { return 3, 1 }

func (v RotationVector) coordinates() []float64 { return []float64{v.X, v.Y, v.Z} }

func (RotationVector) fromCoordinates(c []float64) RotationVector {
	return RotationVector{X: c[0], Y: c[1], Z: c[2]}
}
