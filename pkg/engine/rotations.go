package engine

import (
	"fmt"
	"math/rand"

	"github.com/chazu/rotor/pkg/so3"
)

// matrixTolerance bounds the drift of a matrix typed into a script.
const matrixTolerance = 1e-6

// as returns r in representation R, converting through the quaternion hub
// unless r already has that representation.
func as[R so3.Rep[R]](r so3.Rotation) so3.SO3[R] {
	if s, ok := r.(so3.SO3[R]); ok {
		return s
	}
	return so3.From[R](r.Hub())
}

func convertRotation(k so3.Kind, r so3.Rotation) (so3.Rotation, error) {
	switch k {
	case so3.KindRotationMatrix:
		return as[so3.RotationMatrix](r), nil
	case so3.KindQuaternion:
		return as[so3.Quaternion](r), nil
	case so3.KindAxisAngle:
		return as[so3.AxisAngle](r), nil
	case so3.KindRotationVector:
		return as[so3.RotationVector](r), nil
	}
	return nil, fmt.Errorf("%s is not a rotation representation", k)
}

// compose returns a∘b in a's representation.
func compose(a, b so3.Rotation) so3.Rotation {
	switch a := a.(type) {
	case so3.SO3[so3.RotationMatrix]:
		return a.Mul(as[so3.RotationMatrix](b))
	case so3.SO3[so3.Quaternion]:
		return a.Mul(as[so3.Quaternion](b))
	case so3.SO3[so3.AxisAngle]:
		return a.Mul(as[so3.AxisAngle](b))
	case so3.SO3[so3.RotationVector]:
		return a.Mul(as[so3.RotationVector](b))
	}
	panic(fmt.Sprintf("engine: unexpected rotation type %T", a))
}

func invert(r so3.Rotation) so3.Rotation {
	switch r := r.(type) {
	case so3.SO3[so3.RotationMatrix]:
		return r.Inverse()
	case so3.SO3[so3.Quaternion]:
		return r.Inverse()
	case so3.SO3[so3.AxisAngle]:
		return r.Inverse()
	case so3.SO3[so3.RotationVector]:
		return r.Inverse()
	}
	panic(fmt.Sprintf("engine: unexpected rotation type %T", r))
}

// slerp interpolates from a to b in a's representation.
func slerp(a, b so3.Rotation, t float64) so3.Rotation {
	switch a := a.(type) {
	case so3.SO3[so3.RotationMatrix]:
		return so3.Slerp(a, as[so3.RotationMatrix](b), t)
	case so3.SO3[so3.Quaternion]:
		return so3.Slerp(a, as[so3.Quaternion](b), t)
	case so3.SO3[so3.AxisAngle]:
		return so3.Slerp(a, as[so3.AxisAngle](b), t)
	case so3.SO3[so3.RotationVector]:
		return so3.Slerp(a, as[so3.RotationVector](b), t)
	}
	panic(fmt.Sprintf("engine: unexpected rotation type %T", a))
}

func expAs(k so3.Kind, v so3.Tangent) (so3.Rotation, error) {
	switch k {
	case so3.KindRotationMatrix:
		return so3.Exp[so3.RotationMatrix](v), nil
	case so3.KindQuaternion:
		return so3.Exp[so3.Quaternion](v), nil
	case so3.KindAxisAngle:
		return so3.Exp[so3.AxisAngle](v), nil
	case so3.KindRotationVector:
		return so3.Exp[so3.RotationVector](v), nil
	}
	return nil, fmt.Errorf("%s is not a rotation representation", k)
}

func randomAs(k so3.Kind, rnd *rand.Rand) (so3.Rotation, error) {
	switch k {
	case so3.KindRotationMatrix:
		return so3.Random[so3.RotationMatrix](rnd), nil
	case so3.KindQuaternion:
		return so3.Random[so3.Quaternion](rnd), nil
	case so3.KindAxisAngle:
		return so3.Random[so3.AxisAngle](rnd), nil
	case so3.KindRotationVector:
		return so3.Random[so3.RotationVector](rnd), nil
	}
	return nil, fmt.Errorf("%s is not a rotation representation", k)
}
