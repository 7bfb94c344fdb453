package so3

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kind identifies a rotation encoding at runtime. The compile-time tag of an
// SO3 value is its storage type; Kind is the matching runtime descriptor used
// for logging, printing and scripting.
type Kind int

const (
	KindRotationMatrix Kind = iota // 3×3 orthonormal matrix
	KindQuaternion                 // unit quaternion
	KindAxisAngle                  // unit axis and angle
	KindRotationVector             // axis scaled by angle
	KindTangent                    // element of so(3)
)

func (k Kind) String() string {
	switch k {
	case KindRotationMatrix:
		return "rotation-matrix"
	case KindQuaternion:
		return "quaternion"
	case KindAxisAngle:
		return "axis-angle"
	case KindRotationVector:
		return "rotation-vector"
	case KindTangent:
		return "tangent"
	default:
		return "unknown"
	}
}

// ParseKind resolves a kind name. Besides the names returned by Kind.String
// it accepts the short forms "matrix", "quat", "aa", "rotvec" and "so3".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rotation-matrix", "matrix", "mat":
		return KindRotationMatrix, nil
	case "quaternion", "quat":
		return KindQuaternion, nil
	case "axis-angle", "axisangle", "aa":
		return KindAxisAngle, nil
	case "rotation-vector", "rotvec":
		return KindRotationVector, nil
	case "tangent", "so3":
		return KindTangent, nil
	}
	return 0, fmt.Errorf("so3: unknown representation %q", s)
}

// Encoding is satisfied by every value the conversion engine can read or
// write, the tangent pseudo-representation included. The unexported methods
// close the set to this package: a new encoding must provide both hub
// conversions or it does not compile.
type Encoding[E any] interface {
	comparable
	Kind() Kind
	quaternion() Quaternion
	fromQuaternion(q Quaternion) E
}

// Rep is satisfied by the storage types that can back an SO3 value. It adds
// the representation-dependent group operations to Encoding.
type Rep[R any] interface {
	Encoding[R]

	identity() R
	inverse() R
	compose(other R) R
	rotate(p r3.Vec) r3.Vec

	exp(v Tangent) R
	log() Tangent

	random(src sampler) R
	renormalize() R
	drift() float64

	shape() (rows, cols int)
	coordinates() []float64
	fromCoordinates(c []float64) R
}
