package so3

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidDimension is returned when a raw coordinate blob does not have
// the shape required by the target representation.
var ErrInvalidDimension = errors.New("so3: invalid dimension")

func shapeError(k Kind, wantRows, wantCols, rows, cols int) error {
	return fmt.Errorf("%w: %s expects %dx%d coordinates, got %dx%d",
		ErrInvalidDimension, k, wantRows, wantCols, rows, cols)
}

// Numerical tolerances shared by the package.
const (
	// Epsilon bounds the unit-norm drift tolerated after one quaternion
	// product before the result is renormalized.
	Epsilon = 1e-12

	// DriftTolerance bounds ‖RRᵀ − I‖∞ after a matrix product before the
	// result is re-orthonormalized.
	DriftTolerance = 1e-10

	// SmallAngle is the rotation angle below which Exp and Log switch to
	// truncated Taylor series.
	SmallAngle = 1e-4
)

// SO3 is a rotation backed by exactly one encoding R. It is a value type:
// copying an SO3 copies its storage.
//
// The zero value of SO3[RotationVector] is the identity. For the other
// encodings the zero value does not describe a rotation; use Identity or
// New to obtain a usable value.
type SO3[R Rep[R]] struct {
	rep R
}

// Rotation is the representation-erased view of an SO3 value. Every
// instantiation of SO3 implements it.
type Rotation interface {
	Kind() Kind
	Hub() Quaternion
	Log() Tangent
	Rotate(p r3.Vec) r3.Vec
	IsIdentity() bool
	String() string
}

var (
	_ Rotation = SO3[RotationMatrix]{}
	_ Rotation = SO3[Quaternion]{}
	_ Rotation = SO3[AxisAngle]{}
	_ Rotation = SO3[RotationVector]{}
)

// New returns the identity rotation in representation R.
func New[R Rep[R]]() SO3[R] {
	return Identity[R]()
}

// Identity returns the identity rotation in representation R.
func Identity[R Rep[R]]() SO3[R] {
	var r R
	return SO3[R]{rep: r.identity()}
}

// Wrap returns an SO3 holding rep as-is. No validation or normalization is
// performed.
func Wrap[R Rep[R]](rep R) SO3[R] {
	return SO3[R]{rep: rep}
}

// From converts any encoding into an SO3 backed by To.
func From[To Rep[To], E Encoding[E]](src E) SO3[To] {
	return SO3[To]{rep: Convert[To](src)}
}

// Cast converts a rotation into representation To. When To and From are the
// same type the storage is copied.
func Cast[To Rep[To], From Rep[From]](s SO3[From]) SO3[To] {
	return SO3[To]{rep: Convert[To](s.rep)}
}

// Assign overwrites dst with src converted into dst's representation.
func Assign[To Rep[To], From Rep[From]](dst *SO3[To], src SO3[From]) {
	dst.rep = Convert[To](src.rep)
}

// Exp maps a tangent vector to the rotation by ‖v‖ about v/‖v‖.
func Exp[R Rep[R]](v Tangent) SO3[R] {
	var r R
	return SO3[R]{rep: r.exp(v)}
}

// Log returns the tangent vector v with Exp(v) = s and ‖v‖ in [0, π].
func Log[R Rep[R]](s SO3[R]) Tangent {
	return s.rep.log()
}

// Random returns a random rotation in representation R drawn from rnd, or
// from the package-level math/rand source when rnd is nil.
func Random[R Rep[R]](rnd *rand.Rand) SO3[R] {
	var s SO3[R]
	s.SetRandom(rnd)
	return s
}

// FromCoordinates builds a rotation from raw storage coordinates. The shape
// of m must match the representation: 3×3 for RotationMatrix, 4×1 (w,x,y,z)
// for Quaternion, 4×1 (x,y,z,θ) for AxisAngle and 3×1 for RotationVector.
func FromCoordinates[R Rep[R]](m mat.Matrix) (SO3[R], error) {
	var s SO3[R]
	if err := s.SetCoordinates(m); err != nil {
		return SO3[R]{}, err
	}
	return s, nil
}

// MustFromCoordinates is like FromCoordinates but panics on a shape
// mismatch.
func MustFromCoordinates[R Rep[R]](m mat.Matrix) SO3[R] {
	s, err := FromCoordinates[R](m)
	if err != nil {
		panic(err)
	}
	return s
}

// Kind returns the runtime descriptor of the representation.
func (s SO3[R]) Kind() Kind {
	return s.rep.Kind()
}

// RepData returns the underlying storage.
func (s SO3[R]) RepData() R {
	return s.rep
}

// SetRepData replaces the underlying storage without conversion.
func (s *SO3[R]) SetRepData(rep R) {
	s.rep = rep
}

// Coordinates returns a copy of the raw storage shaped as described in
// FromCoordinates.
func (s SO3[R]) Coordinates() *mat.Dense {
	r, c := s.rep.shape()
	return mat.NewDense(r, c, s.rep.coordinates())
}

// SetCoordinates overwrites the storage from raw coordinates. It returns an
// error wrapping ErrInvalidDimension, and leaves the receiver untouched,
// when m has the wrong shape.
func (s *SO3[R]) SetCoordinates(m mat.Matrix) error {
	wr, wc := s.rep.shape()
	r, c := m.Dims()
	if r != wr || c != wc {
		return shapeError(s.rep.Kind(), wr, wc, r, c)
	}
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}
	s.rep = s.rep.fromCoordinates(data)
	return nil
}

// Mul returns the composition s∘other: rotating by the result equals
// rotating by other first and then by s.
func (s SO3[R]) Mul(other SO3[R]) SO3[R] {
	return SO3[R]{rep: s.rep.compose(other.rep)}
}

// MulAssign sets s to s∘other.
func (s *SO3[R]) MulAssign(other SO3[R]) {
	s.rep = s.rep.compose(other.rep)
}

// Rotate applies the rotation to p.
func (s SO3[R]) Rotate(p r3.Vec) r3.Vec {
	return s.rep.rotate(p)
}

// SetIdentity sets s to the identity encoding of its representation.
func (s *SO3[R]) SetIdentity() {
	s.rep = s.rep.identity()
}

// IsIdentity reports whether the storage is exactly the identity encoding.
// Storage that describes the identity only approximately returns false.
func (s SO3[R]) IsIdentity() bool {
	return s.rep == s.rep.identity()
}

// Invert replaces s with its inverse.
func (s *SO3[R]) Invert() {
	s.rep = s.rep.inverse()
}

// Inverse returns the inverse rotation, leaving s unchanged.
func (s SO3[R]) Inverse() SO3[R] {
	return SO3[R]{rep: s.rep.inverse()}
}

// SetExp sets s to Exp(v).
func (s *SO3[R]) SetExp(v Tangent) {
	s.rep = s.rep.exp(v)
}

// Log returns Log(s).
func (s SO3[R]) Log() Tangent {
	return s.rep.log()
}

// Hub returns the rotation as a unit quaternion.
func (s SO3[R]) Hub() Quaternion {
	return s.rep.quaternion()
}

// SetRandom overwrites s with a random rotation. Each representation samples
// its own storage and projects the sample onto the rotation manifold where
// raw coefficients would not be valid. A nil rnd uses the package-level
// math/rand source.
func (s *SO3[R]) SetRandom(rnd *rand.Rand) {
	var src sampler = globalSampler{}
	if rnd != nil {
		src = rnd
	}
	s.rep = s.rep.random(src)
}

// Renormalize projects accumulated floating-point drift back onto the
// rotation manifold.
func (s *SO3[R]) Renormalize() {
	before := s.rep.drift()
	s.rep = s.rep.renormalize()
	Logger().Debug("so3: renormalized", "kind", s.rep.Kind().String(), "drift", before)
}

// IsValid reports whether the storage decodes to a rotation within tol:
// orthonormality for matrices, unit norm for quaternions and axes.
func (s SO3[R]) IsValid(tol float64) bool {
	return s.rep.drift() <= tol
}

// Equal reports whether the storage of s and other is exactly equal.
// Two encodings of the same physical rotation need not be Equal; use
// IsApprox for a geometric comparison.
func (s SO3[R]) Equal(other SO3[R]) bool {
	return s.rep == other.rep
}

// IsApprox reports whether s and other describe the same physical rotation
// within tol radians.
func (s SO3[R]) IsApprox(other SO3[R], tol float64) bool {
	return Approx(s, other, tol)
}

func (s SO3[R]) String() string {
	c := s.rep.coordinates()
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return fmt.Sprintf("%s(%s)", s.rep.Kind(), strings.Join(parts, ", "))
}
