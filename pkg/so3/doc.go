// Package so3 implements the rotation group SO(3) over several
// interchangeable encodings: rotation matrices, unit quaternions,
// axis-angle pairs and rotation vectors.
//
// A rotation value is an SO3[R], where the type parameter R is the storage
// type that backs it. The storage types double as representation tags, so
// the representation is fixed at compile time:
//
//	r := so3.FromRotationVector(r3.Vec{X: math.Pi / 2})
//	m := so3.Cast[so3.RotationMatrix](r) // conversion happens here, eagerly
//	p := m.Rotate(r3.Vec{Y: 1})          // ≈ (0, 0, 1)
//
// Every encoding converts to and from the unit quaternion, which acts as the
// hub of the conversion engine. The Lie algebra so(3) is modelled by Tangent;
// Exp and Log move between it and any encoding.
//
// Values are plain Go values. Nothing in this package locks, blocks or
// allocates shared state, so distinct values may be used from different
// goroutines freely. Mutating one value from several goroutines must be
// serialized by the caller.
package so3
