package so3

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tangent is an element of the Lie algebra so(3) in vector form: its
// direction is a rotation axis and its length an angle in radians. It is not
// itself a rotation; Exp turns it into one and Log recovers it.
type Tangent r3.Vec

// Kind returns KindTangent.
func (Tangent) Kind() Kind { return KindTangent }

// Vec returns t as an r3.Vec.
func (t Tangent) Vec() r3.Vec { return r3.Vec(t) }

// Norm returns the rotation angle ‖t‖.
func (t Tangent) Norm() float64 { return r3.Norm(r3.Vec(t)) }

// Hat returns the skew-symmetric matrix [t]× such that [t]×p = t × p.
func (t Tangent) Hat() *r3.Mat { return r3.Skew(r3.Vec(t)) }

// Vee extracts the tangent vector from a 3×3 skew-symmetric matrix, averaging
// the mirrored entries. It is the inverse of Tangent.Hat.
func Vee(m mat.Matrix) (Tangent, error) {
	if r, c := m.Dims(); r != 3 || c != 3 {
		return Tangent{}, shapeError(KindTangent, 3, 3, r, c)
	}
	return Tangent{
		X: 0.5 * (m.At(2, 1) - m.At(1, 2)),
		Y: 0.5 * (m.At(0, 2) - m.At(2, 0)),
		Z: 0.5 * (m.At(1, 0) - m.At(0, 1)),
	}, nil
}

func (t Tangent) quaternion() Quaternion {
	return ExpQuaternion(t)
}

func (Tangent) fromQuaternion(q Quaternion) Tangent {
	return LogQuaternion(q)
}

// CanonicalTangent returns the tangent vector describing the same rotation
// as t with its angle wrapped into [0, π].
func CanonicalTangent(t Tangent) Tangent {
	theta := t.Norm()
	if theta <= math.Pi || math.IsInf(theta, 0) || math.IsNaN(theta) {
		return t
	}
	wrapped := math.Mod(theta, 2*math.Pi)
	if wrapped > math.Pi {
		wrapped -= 2 * math.Pi
	}
	if wrapped == 0 {
		return Tangent{}
	}
	return Tangent(r3.Scale(wrapped/theta, r3.Vec(t)))
}
