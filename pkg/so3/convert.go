package so3

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Convert returns from re-encoded as To. Every encoding converts through the
// unit quaternion hub; converting a value to its own type returns it
// unchanged. Conversions into or out of Tangent apply ExpQuaternion or
// LogQuaternion.
func Convert[To Encoding[To], From Encoding[From]](from From) To {
	if same, ok := any(from).(To); ok {
		return same
	}
	var to To
	return to.fromQuaternion(from.quaternion())
}

// MatrixToQuaternion extracts a unit quaternion from a rotation matrix with
// Shepperd's method, pivoting on the largest of the trace and the diagonal
// so the square root argument stays away from zero. The result has a
// non-negative scalar part.
func MatrixToQuaternion(m RotationMatrix) Quaternion {
	m00, m01, m02 := m[0], m[1], m[2]
	m10, m11, m12 := m[3], m[4], m[5]
	m20, m21, m22 := m[6], m[7], m[8]

	var q Quaternion
	switch tr := m00 + m11 + m22; {
	case tr > 0:
		s := 2 * math.Sqrt(tr+1)
		q = Quaternion{Real: 0.25 * s, Imag: (m21 - m12) / s, Jmag: (m02 - m20) / s, Kmag: (m10 - m01) / s}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = Quaternion{Real: (m21 - m12) / s, Imag: 0.25 * s, Jmag: (m01 + m10) / s, Kmag: (m02 + m20) / s}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = Quaternion{Real: (m02 - m20) / s, Imag: (m01 + m10) / s, Jmag: 0.25 * s, Kmag: (m12 + m21) / s}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = Quaternion{Real: (m10 - m01) / s, Imag: (m02 + m20) / s, Jmag: (m12 + m21) / s, Kmag: 0.25 * s}
	}

	if q.Real < 0 {
		q = Quaternion(quat.Scale(-1, quat.Number(q)))
	}
	return q.renormalize()
}

// QuaternionToMatrix returns the rotation matrix of q. q and −q produce
// bit-identical matrices. A q whose norm drifted past Epsilon is normalized
// first.
func QuaternionToMatrix(q Quaternion) RotationMatrix {
	if q.drift() > Epsilon {
		q = q.renormalize()
	}
	r := r3.Rotation(q).Mat()
	var m RotationMatrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[3*i+j] = r.At(i, j)
		}
	}
	return m
}

// AxisAngleToQuaternion returns the unit quaternion of a. A zero axis yields
// the identity.
func AxisAngleToQuaternion(a AxisAngle) Quaternion {
	n := r3.Norm(a.Axis)
	if n == 0 {
		return Quaternion{Real: 1}
	}
	s, c := math.Sincos(0.5 * a.Angle)
	s /= n
	return Quaternion{Real: c, Imag: s * a.Axis.X, Jmag: s * a.Axis.Y, Kmag: s * a.Axis.Z}
}

// QuaternionToAxisAngle returns the axis-angle form of q with the angle in
// [0, π]. The zero rotation maps to axis (1, 0, 0) and angle 0.
func QuaternionToAxisAngle(q Quaternion) AxisAngle {
	return RotationVectorToAxisAngle(RotationVector(LogQuaternion(q)))
}

// RotationVectorToAxisAngle splits v into its direction and length. The
// angle is not wrapped. The zero vector maps to axis (1, 0, 0) and angle 0.
func RotationVectorToAxisAngle(v RotationVector) AxisAngle {
	theta := v.Angle()
	if theta == 0 {
		return AxisAngle{Axis: r3.Vec{X: 1}}
	}
	return AxisAngle{Axis: r3.Scale(1/theta, r3.Vec(v)), Angle: theta}
}

// AxisAngleToRotationVector scales the normalized axis of a by its angle.
func AxisAngleToRotationVector(a AxisAngle) RotationVector {
	n := r3.Norm(a.Axis)
	if n == 0 {
		return RotationVector{}
	}
	return RotationVector(r3.Scale(a.Angle/n, a.Axis))
}

// RotationVectorToMatrix is ExpMatrix on the rotation vector.
func RotationVectorToMatrix(v RotationVector) RotationMatrix {
	return ExpMatrix(Tangent(v))
}

// MatrixToRotationVector is LogMatrix, returning a rotation vector with
// angle in [0, π].
func MatrixToRotationVector(m RotationMatrix) RotationVector {
	return RotationVector(LogMatrix(m))
}
