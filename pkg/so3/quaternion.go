package so3

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quaternion stores a rotation as a unit quaternion Real + Imag·i + Jmag·j +
// Kmag·k. It is the hub of the conversion engine. q and −q describe the same
// rotation.
type Quaternion quat.Number

// FromQuaternion wraps q without normalizing it.
func FromQuaternion(q quat.Number) SO3[Quaternion] {
	return SO3[Quaternion]{rep: Quaternion(q)}
}

// Kind returns KindQuaternion.
func (Quaternion) Kind() Kind { return KindQuaternion }

// Number returns q as a gonum quaternion.
func (q Quaternion) Number() quat.Number { return quat.Number(q) }

// Norm returns ‖q‖.
func (q Quaternion) Norm() float64 { return quat.Abs(quat.Number(q)) }

func (q Quaternion) quaternion() Quaternion { return q }

func (Quaternion) fromQuaternion(q Quaternion) Quaternion { return q }

func (Quaternion) identity() Quaternion { return Quaternion{Real: 1} }

func (q Quaternion) inverse() Quaternion {
	return Quaternion(quat.Conj(quat.Number(q)))
}

// compose is the Hamilton product. A result whose norm drifted by more than
// Epsilon is renormalized.
func (q Quaternion) compose(other Quaternion) Quaternion {
	p := Quaternion(quat.Mul(quat.Number(q), quat.Number(other)))
	if d := p.drift(); d > Epsilon {
		Logger().Debug("so3: renormalizing quaternion product", "drift", d)
		return p.renormalize()
	}
	return p
}

func (q Quaternion) rotate(p r3.Vec) r3.Vec {
	return r3.Rotation(q).Rotate(p)
}

func (Quaternion) exp(v Tangent) Quaternion { return ExpQuaternion(v) }

func (q Quaternion) log() Tangent { return LogQuaternion(q) }

// random draws four normal deviates and normalizes them, which is uniform
// over SO(3).
func (Quaternion) random(src sampler) Quaternion {
	for {
		q := Quaternion{
			Real: src.NormFloat64(),
			Imag: src.NormFloat64(),
			Jmag: src.NormFloat64(),
			Kmag: src.NormFloat64(),
		}
		if q.Norm() > 1e-6 {
			return q.renormalize()
		}
	}
}

func (q Quaternion) renormalize() Quaternion {
	n := q.Norm()
	if n == 0 || math.IsNaN(n) {
		return q.identity()
	}
	return Quaternion(quat.Scale(1/n, quat.Number(q)))
}

func (q Quaternion) drift() float64 {
	d := math.Abs(1 - q.Norm())
	if math.IsNaN(d) {
		return math.Inf(1)
	}
	return d
}

func (Quaternion) shape() (rows, cols int) { return 4, 1 }

func (q Quaternion) coordinates() []float64 {
	return []float64{q.Real, q.Imag, q.Jmag, q.Kmag}
}

func (Quaternion) fromCoordinates(c []float64) Quaternion {
	return Quaternion{Real: c[0], Imag: c[1], Jmag: c[2], Kmag: c[3]}
}
