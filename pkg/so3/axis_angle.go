package so3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// AxisAngle stores a rotation as a unit axis and an angle in radians. The
// identity, and any rotation decoded from a zero angle, uses the axis
// (1, 0, 0): the axis of a zero rotation is otherwise undefined.
type AxisAngle struct {
	Axis  r3.Vec
	Angle float64
}

// FromAxisAngle returns the rotation by angle about axis. The axis is
// normalized; a zero axis yields the identity.
func FromAxisAngle(axis r3.Vec, angle float64) SO3[AxisAngle] {
	return SO3[AxisAngle]{rep: AxisAngle{Axis: axis, Angle: angle}.renormalize()}
}

// Kind returns KindAxisAngle.
func (AxisAngle) Kind() Kind { return KindAxisAngle }

func (a AxisAngle) quaternion() Quaternion { return AxisAngleToQuaternion(a) }

func (AxisAngle) fromQuaternion(q Quaternion) AxisAngle { return QuaternionToAxisAngle(q) }

func (AxisAngle) identity() AxisAngle { return AxisAngle{Axis: r3.Vec{X: 1}} }

// inverse negates the angle so that the axis stays a unit vector and the
// identity maps to itself.
func (a AxisAngle) inverse() AxisAngle { return AxisAngle{Axis: a.Axis, Angle: -a.Angle} }

func (a AxisAngle) compose(other AxisAngle) AxisAngle {
	return QuaternionToAxisAngle(a.quaternion().compose(other.quaternion()))
}

func (a AxisAngle) rotate(p r3.Vec) r3.Vec { return a.quaternion().rotate(p) }

func (AxisAngle) exp(v Tangent) AxisAngle { return RotationVectorToAxisAngle(RotationVector(v)) }

func (a AxisAngle) log() Tangent {
	return CanonicalTangent(Tangent(AxisAngleToRotationVector(a)))
}

// random draws a normalized Gaussian axis, which is uniform on the sphere,
// and an angle uniform in [0, π].
func (a AxisAngle) random(src sampler) AxisAngle {
	for {
		axis := r3.Vec{X: src.NormFloat64(), Y: src.NormFloat64(), Z: src.NormFloat64()}
		if n := r3.Norm(axis); n > 1e-6 {
			return AxisAngle{Axis: r3.Scale(1/n, axis), Angle: math.Pi * src.Float64()}
		}
	}
}

func (a AxisAngle) renormalize() AxisAngle {
	n := r3.Norm(a.Axis)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return a.identity()
	}
	return AxisAngle{Axis: r3.Scale(1/n, a.Axis), Angle: a.Angle}
}

func (a AxisAngle) drift() float64 {
	d := math.Abs(1 - r3.Norm(a.Axis))
	if math.IsNaN(d) || math.IsNaN(a.Angle) || math.IsInf(a.Angle, 0) {
		return math.Inf(1)
	}
	return d
}

func (AxisAngle) shape() (rows, cols int) { return 4, 1 }

func (a AxisAngle) coordinates() []float64 {
	return []float64{a.Axis.X, a.Axis.Y, a.Axis.Z, a.Angle}
}

func (AxisAngle) fromCoordinates(c []float64) AxisAngle {
	return AxisAngle{Axis: r3.Vec{X: c[0], Y: c[1], Z: c[2]}, Angle: c[3]}
}
