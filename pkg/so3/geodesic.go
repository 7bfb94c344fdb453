package so3

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// AngleBetween returns the geodesic distance between a and b: the angle, in
// [0, π], of the rotation that takes a to b.
func AngleBetween(a, b Rotation) float64 {
	qa, qb := a.Hub().Number(), b.Hub().Number()
	d := Quaternion(quat.Mul(quat.Conj(qa), qb))
	return r3.Norm(r3.Vec(LogQuaternion(d)))
}

// Approx reports whether a and b describe the same physical rotation within
// tol radians, regardless of their representations. Unlike SO3.Equal it is
// insensitive to the quaternion double cover and to axis-angle ambiguity.
func Approx(a, b Rotation, tol float64) bool {
	return AngleBetween(a, b) <= tol
}

// Slerp interpolates along the shortest geodesic from a (t = 0) to b (t = 1).
func Slerp[R Rep[R]](a, b SO3[R], t float64) SO3[R] {
	qa, qb := a.Hub().Number(), b.Hub().Number()
	delta := LogQuaternion(Quaternion(quat.Mul(quat.Conj(qa), qb)))
	step := ExpQuaternion(Tangent(r3.Scale(t, r3.Vec(delta))))
	q := Quaternion(quat.Mul(qa, step.Number()))
	return From[R](q)
}
