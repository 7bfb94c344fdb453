package so3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// piMargin is the distance from π below which LogMatrix abandons the closed
// form, whose axis is ill-conditioned there, for the quaternion route.
const piMargin = 1e-2

// ExpMatrix returns the rotation matrix exp([v]×) using Rodrigues' formula
//
//	R = I + a[v]× + b[v]×²,  a = sin θ/θ,  b = (1 − cos θ)/θ²
//
// with θ = ‖v‖. Below SmallAngle a and b are evaluated from their Taylor
// series.
func ExpMatrix(v Tangent) RotationMatrix {
	x, y, z := v.X, v.Y, v.Z
	theta2 := x*x + y*y + z*z
	theta := math.Sqrt(theta2)

	var a, b float64
	if theta < SmallAngle {
		a = 1 - theta2/6 + theta2*theta2/120
		b = 0.5 - theta2/24 + theta2*theta2/720
	} else {
		sinHalf := math.Sin(0.5 * theta)
		a = math.Sin(theta) / theta
		b = 2 * sinHalf * sinHalf / theta2
	}

	return RotationMatrix{
		1 - b*(y*y+z*z), -a*z + b*x*y, a*y + b*x*z,
		a*z + b*x*y, 1 - b*(x*x+z*z), -a*x + b*y*z,
		-a*y + b*x*z, a*x + b*y*z, 1 - b*(x*x+y*y),
	}
}

// ExpQuaternion returns the unit quaternion (cos θ/2, sin(θ/2)·v/θ) with
// θ = ‖v‖, using Taylor series below SmallAngle.
func ExpQuaternion(v Tangent) Quaternion {
	theta2 := v.X*v.X + v.Y*v.Y + v.Z*v.Z
	theta := math.Sqrt(theta2)

	var w, s float64
	if theta < SmallAngle {
		w = 1 - theta2/8 + theta2*theta2/384
		s = 0.5 - theta2/48 + theta2*theta2/3840
	} else {
		sinHalf, cosHalf := math.Sincos(0.5 * theta)
		w = cosHalf
		s = sinHalf / theta
	}
	return Quaternion{Real: w, Imag: s * v.X, Jmag: s * v.Y, Kmag: s * v.Z}
}

// LogQuaternion returns the tangent vector of q with angle in [0, π]. The
// sign of q is canonicalized first, so q and −q give the same result: the
// scalar part is made non-negative and, for a half turn where it is zero,
// the first non-zero vector component is made positive. The
// angle is recovered with atan2, which stays well conditioned near both 0
// and π; near 0 the scale factor comes from its Taylor series. q need not be
// exactly unit length.
func LogQuaternion(q Quaternion) Tangent {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	if w < 0 || (w == 0 && firstNonZeroNegative(x, y, z)) {
		w, x, y, z = -w, -x, -y, -z
	}
	n2 := x*x + y*y + z*z
	n := math.Sqrt(n2)
	if n == 0 {
		return Tangent{}
	}

	var scale float64
	if n < SmallAngle*w {
		// 2·atan(n/w)/n expanded around n/w = 0.
		r2 := n2 / (w * w)
		scale = 2 / w * (1 - r2/3 + r2*r2/5)
	} else {
		scale = 2 * math.Atan2(n, w) / n
	}
	return Tangent{X: scale * x, Y: scale * y, Z: scale * z}
}

func firstNonZeroNegative(x, y, z float64) bool {
	switch {
	case x != 0:
		return x < 0
	case y != 0:
		return y < 0
	}
	return z < 0
}

// LogMatrix returns the tangent vector of the rotation matrix m with angle
// in [0, π]. Three regimes are used: a Taylor series near the identity, the
// closed form θ/(2 sin θ)·(R − Rᵀ)ˇ in between, and a Shepperd quaternion
// extraction within piMargin of a half turn.
func LogMatrix(m RotationMatrix) Tangent {
	// (R − Rᵀ)ˇ/2 = sin θ · n
	w := r3.Vec{
		X: 0.5 * (m[7] - m[5]),
		Y: 0.5 * (m[2] - m[6]),
		Z: 0.5 * (m[3] - m[1]),
	}
	sinTheta := r3.Norm(w)
	cosTheta := 0.5 * (m[0] + m[4] + m[8] - 1)
	theta := math.Atan2(sinTheta, cosTheta)

	switch {
	case theta < SmallAngle:
		t2 := theta * theta
		return Tangent(r3.Scale(1+t2/6+7*t2*t2/360, w))
	case theta < math.Pi-piMargin:
		return Tangent(r3.Scale(theta/sinTheta, w))
	default:
		return LogQuaternion(MatrixToQuaternion(m))
	}
}
