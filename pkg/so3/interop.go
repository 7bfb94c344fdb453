package so3

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// FromMglQuat converts a mathgl quaternion into representation R.
func FromMglQuat[R Rep[R]](q mgl64.Quat) SO3[R] {
	return From[R](Quaternion{Real: q.W, Imag: q.V[0], Jmag: q.V[1], Kmag: q.V[2]})
}

// ToMglQuat returns s as a mathgl quaternion.
func ToMglQuat[R Rep[R]](s SO3[R]) mgl64.Quat {
	q := s.Hub()
	return mgl64.Quat{W: q.Real, V: mgl64.Vec3{q.Imag, q.Jmag, q.Kmag}}
}

// FromMglMat3 converts a mathgl 3×3 rotation matrix into representation R.
// mathgl matrices are column-major; the element order is translated.
func FromMglMat3[R Rep[R]](m mgl64.Mat3) SO3[R] {
	var rm RotationMatrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rm[3*i+j] = m.At(i, j)
		}
	}
	return From[R](rm)
}

// ToMglMat3 returns s as a column-major mathgl matrix.
func ToMglMat3[R Rep[R]](s SO3[R]) mgl64.Mat3 {
	rm := Convert[RotationMatrix](s.rep)
	return mgl64.Mat3FromCols(
		mgl64.Vec3{rm[0], rm[3], rm[6]},
		mgl64.Vec3{rm[1], rm[4], rm[7]},
		mgl64.Vec3{rm[2], rm[5], rm[8]},
	)
}

// FromMglVec3 returns the rotation with rotation vector v in representation R.
func FromMglVec3[R Rep[R]](v mgl64.Vec3) SO3[R] {
	return Exp[R](Tangent{X: v[0], Y: v[1], Z: v[2]})
}

// FromGonumRotation converts a gonum r3.Rotation into representation R.
func FromGonumRotation[R Rep[R]](r r3.Rotation) SO3[R] {
	return From[R](Quaternion(r))
}

// ToGonumRotation returns s as a gonum r3.Rotation.
func ToGonumRotation[R Rep[R]](s SO3[R]) r3.Rotation {
	return r3.Rotation(s.Hub())
}
