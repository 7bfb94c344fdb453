package so3

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const testTol = 1e-9

func vecClose(a, b r3.Vec, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) &&
		scalar.EqualWithinAbs(a.Y, b.Y, tol) &&
		scalar.EqualWithinAbs(a.Z, b.Z, tol)
}

func randomVec(rnd *rand.Rand) r3.Vec {
	return r3.Vec{X: 2*rnd.Float64() - 1, Y: 2*rnd.Float64() - 1, Z: 2*rnd.Float64() - 1}
}

// ---------------------------------------------------------------------------
// Concrete scenarios
// ---------------------------------------------------------------------------

func TestZeroRotationVectorIsIdentity(t *testing.T) {
	if !NewRotationVector(0, 0, 0).IsIdentity() {
		t.Fatal("rotation vector (0, 0, 0) should be the identity")
	}
	var zero SO3[RotationVector]
	if !zero.IsIdentity() {
		t.Fatal("zero value of SO3[RotationVector] should be the identity")
	}
}

func TestQuarterTurnAboutX(t *testing.T) {
	r := NewRotationVector(math.Pi/2, 0, 0)
	m := Cast[RotationMatrix](r)
	got := m.Rotate(r3.Vec{Y: 1})
	if !vecClose(got, r3.Vec{Z: 1}, 1e-12) {
		t.Fatalf("matrix form maps (0,1,0) to %v, want (0,0,1)", got)
	}
	if got := r.Rotate(r3.Vec{Y: 1}); !vecClose(got, r3.Vec{Z: 1}, 1e-12) {
		t.Fatalf("rotation vector maps (0,1,0) to %v, want (0,0,1)", got)
	}
}

func TestLogOfExpZero(t *testing.T) {
	checks := map[string]Tangent{
		"rotation-matrix": Log(Exp[RotationMatrix](Tangent{})),
		"quaternion":      Log(Exp[Quaternion](Tangent{})),
		"axis-angle":      Log(Exp[AxisAngle](Tangent{})),
		"rotation-vector": Log(Exp[RotationVector](Tangent{})),
	}
	for name, got := range checks {
		if got != (Tangent{}) {
			t.Errorf("%s: Log(Exp(0)) = %v, want 0", name, got)
		}
	}
}

func TestRotationVectorInverseNegates(t *testing.T) {
	for _, theta := range []float64{0.1, 1, math.Pi / 2, 3} {
		inv := NewRotationVector(theta, 0, 0).Inverse()
		if want := (RotationVector{X: -theta}); inv.RepData() != want {
			t.Errorf("inverse of (%g,0,0) = %v, want %v", theta, inv.RepData(), want)
		}
	}
}

func TestQuaternionDoubleCoverSameMatrix(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		q := Random[Quaternion](rnd).RepData()
		neg := Quaternion{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
		a := Cast[RotationMatrix](Wrap(q))
		b := Cast[RotationMatrix](Wrap(neg))
		if !a.Equal(b) {
			t.Fatalf("q=%v and -q gave different matrices:\n%v\n%v", q, a, b)
		}
	}
}

// ---------------------------------------------------------------------------
// Group structure
// ---------------------------------------------------------------------------

func checkIdentity[R Rep[R]](t *testing.T) {
	t.Helper()
	id := Identity[R]()
	if !id.IsIdentity() {
		t.Errorf("%s: Identity() is not identity", id.Kind())
	}
	if !New[R]().Equal(id) {
		t.Errorf("%s: New() differs from Identity()", id.Kind())
	}
	if !Exp[R](Tangent{}).IsIdentity() {
		t.Errorf("%s: Exp(0) is not identity", id.Kind())
	}
	p := r3.Vec{X: 1, Y: -2, Z: 3}
	if got := id.Rotate(p); !vecClose(got, p, 1e-15) {
		t.Errorf("%s: identity moved %v to %v", id.Kind(), p, got)
	}
	var s SO3[R]
	s.SetRandom(rand.New(rand.NewSource(2)))
	s.SetIdentity()
	if !s.IsIdentity() {
		t.Errorf("%s: SetIdentity did not reset", id.Kind())
	}
}

func TestIdentity(t *testing.T) {
	checkIdentity[RotationMatrix](t)
	checkIdentity[Quaternion](t)
	checkIdentity[AxisAngle](t)
	checkIdentity[RotationVector](t)
}

func checkInverse[R Rep[R]](t *testing.T, rnd *rand.Rand) {
	t.Helper()
	for i := 0; i < 50; i++ {
		a := Random[R](rnd)
		if !a.Inverse().Inverse().Equal(a) {
			t.Fatalf("%s: inverse is not an involution for %v", a.Kind(), a)
		}
		if d := AngleBetween(a.Mul(a.Inverse()), Identity[R]()); d > testTol {
			t.Fatalf("%s: a*a^-1 is %g rad from identity", a.Kind(), d)
		}
		p := randomVec(rnd)
		if got := a.Inverse().Rotate(a.Rotate(p)); !vecClose(got, p, testTol) {
			t.Fatalf("%s: inverse did not undo rotation: %v -> %v", a.Kind(), p, got)
		}

		b := a
		b.Invert()
		if !b.Equal(a.Inverse()) {
			t.Fatalf("%s: Invert and Inverse disagree", a.Kind())
		}
	}
}

func TestInverse(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	checkInverse[RotationMatrix](t, rnd)
	checkInverse[Quaternion](t, rnd)
	checkInverse[AxisAngle](t, rnd)
	checkInverse[RotationVector](t, rnd)
}

func checkComposition[R Rep[R]](t *testing.T, rnd *rand.Rand) {
	t.Helper()
	for i := 0; i < 50; i++ {
		a, b := Random[R](rnd), Random[R](rnd)
		p := randomVec(rnd)
		want := a.Rotate(b.Rotate(p))
		if got := a.Mul(b).Rotate(p); !vecClose(got, want, testTol) {
			t.Fatalf("%s: (a*b)p = %v, want a(bp) = %v", a.Kind(), got, want)
		}
		c := a
		c.MulAssign(b)
		if !c.Equal(a.Mul(b)) {
			t.Fatalf("%s: MulAssign and Mul disagree", a.Kind())
		}
	}
}

func TestComposition(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	checkComposition[RotationMatrix](t, rnd)
	checkComposition[Quaternion](t, rnd)
	checkComposition[AxisAngle](t, rnd)
	checkComposition[RotationVector](t, rnd)
}

func TestCompositionStaysOnManifold(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))

	m := Identity[RotationMatrix]()
	q := Identity[Quaternion]()
	for i := 0; i < 10000; i++ {
		step := Random[Quaternion](rnd)
		m = m.Mul(Cast[RotationMatrix](step))
		q = q.Mul(step)
		if !m.IsValid(DriftTolerance) {
			t.Fatalf("matrix drifted after %d products: %v", i+1, m)
		}
		if !q.IsValid(Epsilon) {
			t.Fatalf("quaternion drifted after %d products: %v", i+1, q)
		}
	}
	if d := AngleBetween(m, q); d > 1e-8 {
		t.Fatalf("matrix and quaternion chains diverged by %g rad", d)
	}
}

// ---------------------------------------------------------------------------
// Validation and renormalization
// ---------------------------------------------------------------------------

func TestRandomIsValid(t *testing.T) {
	rnd := rand.New(rand.NewSource(6))
	for i := 0; i < 200; i++ {
		m := Random[RotationMatrix](rnd)
		if !m.IsValid(1e-12) {
			t.Fatalf("random matrix not orthonormal: %v", m)
		}
		if det := m.RepData().Det(); !scalar.EqualWithinAbs(det, 1, 1e-12) {
			t.Fatalf("random matrix has det %g", det)
		}
		if q := Random[Quaternion](rnd); !q.IsValid(1e-12) {
			t.Fatalf("random quaternion not unit: %v", q)
		}
		aa := Random[AxisAngle](rnd)
		if !aa.IsValid(1e-12) {
			t.Fatalf("random axis-angle axis not unit: %v", aa)
		}
		if a := aa.RepData().Angle; a < 0 || a > math.Pi {
			t.Fatalf("random axis-angle angle %g outside [0, π]", a)
		}
		if v := Random[RotationVector](rnd); !v.IsValid(0) {
			t.Fatalf("random rotation vector not finite: %v", v)
		}
	}
	if q := Random[Quaternion](nil); !q.IsValid(1e-12) {
		t.Fatalf("random quaternion from global source not unit: %v", q)
	}
}

func TestRenormalize(t *testing.T) {
	t.Run("matrix", func(t *testing.T) {
		m := Wrap(RotationMatrix{
			1, 1e-6, 0,
			0, 1, 0,
			0, 0, 1,
		})
		if m.IsValid(DriftTolerance) {
			t.Fatal("perturbed matrix reported valid")
		}
		m.Renormalize()
		if !m.IsValid(1e-12) {
			t.Fatalf("matrix still drifted after Renormalize: %v", m)
		}
		if d := AngleBetween(m, Identity[RotationMatrix]()); d > 1e-6 {
			t.Fatalf("Renormalize moved the rotation by %g rad", d)
		}
	})
	t.Run("matrix product", func(t *testing.T) {
		m := Wrap(RotationMatrix{
			1, 1e-6, 0,
			0, 1, 0,
			0, 0, 1,
		})
		if p := m.Mul(Identity[RotationMatrix]()); !p.IsValid(DriftTolerance) {
			t.Fatalf("product was not re-orthonormalized: %v", p)
		}
	})
	t.Run("quaternion", func(t *testing.T) {
		q := FromQuaternion(Quaternion{Real: 2, Kmag: 2}.Number())
		q.Renormalize()
		want := Quaternion{Real: math.Sqrt2 / 2, Kmag: math.Sqrt2 / 2}
		got := q.RepData()
		if !scalar.EqualWithinAbs(got.Real, want.Real, 1e-15) || !scalar.EqualWithinAbs(got.Kmag, want.Kmag, 1e-15) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})
	t.Run("zero quaternion", func(t *testing.T) {
		var q SO3[Quaternion]
		q.Renormalize()
		if !q.IsIdentity() {
			t.Fatalf("zero quaternion renormalized to %v, want identity", q)
		}
	})
	t.Run("axis-angle", func(t *testing.T) {
		a := Wrap(AxisAngle{Axis: r3.Vec{Y: 4}, Angle: 0.5})
		a.Renormalize()
		if got := a.RepData(); got.Axis != (r3.Vec{Y: 1}) || got.Angle != 0.5 {
			t.Fatalf("got %+v", got)
		}
	})
	t.Run("non-finite rotation vector", func(t *testing.T) {
		v := NewRotationVector(math.NaN(), 0, 0)
		if v.IsValid(1) {
			t.Fatal("NaN rotation vector reported valid")
		}
		v.Renormalize()
		if !v.IsIdentity() {
			t.Fatalf("got %v, want identity", v)
		}
	})
	t.Run("reflection", func(t *testing.T) {
		m := Wrap(RotationMatrix{
			-1, 0, 0,
			0, 1, 0,
			0, 0, 1,
		})
		if m.IsValid(0.5) {
			t.Fatal("reflection reported as a valid rotation")
		}
	})
}

func TestFromAxisAngleNormalizesAxis(t *testing.T) {
	a := FromAxisAngle(r3.Vec{Z: 2}, 1)
	if got := a.RepData(); got.Axis != (r3.Vec{Z: 1}) || got.Angle != 1 {
		t.Fatalf("got %+v", got)
	}
	if !FromAxisAngle(r3.Vec{}, 1).IsIdentity() {
		t.Fatal("zero axis should give identity")
	}
}

// ---------------------------------------------------------------------------
// Raw coordinates
// ---------------------------------------------------------------------------

func TestSetCoordinatesShape(t *testing.T) {
	tests := []struct {
		name string
		set  func() error
	}{
		{"rotation vector from 3x3", func() error {
			_, err := ParseRotationVector(mat.NewDense(3, 3, nil))
			return err
		}},
		{"rotation vector from 1x3", func() error {
			_, err := ParseRotationVector(mat.NewDense(1, 3, []float64{1, 2, 3}))
			return err
		}},
		{"matrix from 3x1", func() error {
			_, err := FromRotationMatrix(mat.NewVecDense(3, nil))
			return err
		}},
		{"quaternion from 3x1", func() error {
			_, err := FromCoordinates[Quaternion](mat.NewVecDense(3, nil))
			return err
		}},
		{"axis-angle from 3x1", func() error {
			_, err := FromCoordinates[AxisAngle](mat.NewVecDense(3, nil))
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrInvalidDimension) {
				t.Fatalf("error %v does not wrap ErrInvalidDimension", err)
			}
		})
	}
}

func TestSetCoordinatesLeavesReceiverOnError(t *testing.T) {
	v := NewRotationVector(1, 2, 3)
	if err := v.SetCoordinates(mat.NewDense(3, 3, nil)); err == nil {
		t.Fatal("expected an error")
	}
	if v.RepData() != (RotationVector{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("receiver modified to %v", v)
	}
}

func TestMustFromCoordinatesPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustFromCoordinates[Quaternion](mat.NewVecDense(2, nil))
}

func checkCoordinatesRoundTrip[R Rep[R]](t *testing.T, rnd *rand.Rand) {
	t.Helper()
	a := Random[R](rnd)
	b, err := FromCoordinates[R](a.Coordinates())
	if err != nil {
		t.Fatalf("%s: %v", a.Kind(), err)
	}
	if !a.Equal(b) {
		t.Fatalf("%s: coordinates round trip changed %v to %v", a.Kind(), a, b)
	}
}

func TestCoordinatesRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	checkCoordinatesRoundTrip[RotationMatrix](t, rnd)
	checkCoordinatesRoundTrip[Quaternion](t, rnd)
	checkCoordinatesRoundTrip[AxisAngle](t, rnd)
	checkCoordinatesRoundTrip[RotationVector](t, rnd)
}

func TestMatrixCoordinatesAreRowMajor(t *testing.T) {
	m := Exp[RotationMatrix](Tangent{Z: math.Pi / 2})
	c := m.Coordinates()
	// Rz(π/2) has -1 at (0, 1) and +1 at (1, 0).
	if !scalar.EqualWithinAbs(c.At(0, 1), -1, 1e-15) || !scalar.EqualWithinAbs(c.At(1, 0), 1, 1e-15) {
		t.Fatalf("unexpected layout:\n%v", mat.Formatted(c))
	}
}

// ---------------------------------------------------------------------------
// Equality and printing
// ---------------------------------------------------------------------------

func TestEqualIsExact(t *testing.T) {
	q := Wrap(Quaternion{Real: math.Sqrt2 / 2, Imag: math.Sqrt2 / 2})
	neg := Wrap(Quaternion{Real: -math.Sqrt2 / 2, Imag: -math.Sqrt2 / 2})
	if q.Equal(neg) {
		t.Fatal("q and -q should not be Equal")
	}
	if !q.IsApprox(neg, 1e-12) {
		t.Fatal("q and -q should be IsApprox")
	}

	a := NewRotationVector(0.3, 0, 0)
	b := NewRotationVector(0.3+1e-13, 0, 0)
	if a.Equal(b) {
		t.Fatal("distinct storage reported Equal")
	}
	if !a.IsApprox(b, 1e-12) {
		t.Fatal("nearby rotations should be IsApprox")
	}
}

func TestSetRepDataStoresVerbatim(t *testing.T) {
	// Non-unit, non-canonical storage is kept bit for bit.
	raw := Quaternion{Real: -2, Imag: 0.5, Jmag: 0, Kmag: 3}
	q := Identity[Quaternion]()
	q.SetRepData(raw)
	if q.RepData() != raw {
		t.Fatalf("RepData = %v, want %v", q.RepData(), raw)
	}
	if q.IsValid(1e-6) {
		t.Error("non-unit quaternion should not be valid after SetRepData")
	}

	m := RotationMatrix{2, 0, 0, 0, 2, 0, 0, 0, 2}
	var s SO3[RotationMatrix]
	s.SetRepData(m)
	if s.RepData() != m {
		t.Fatalf("RepData = %v, want %v", s.RepData(), m)
	}

	v := RotationVector{X: 7}
	rv := New[RotationVector]()
	rv.SetRepData(v)
	if rv.RepData() != v {
		t.Fatalf("RepData = %v, want %v (angle must not be wrapped)", rv.RepData(), v)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{NewRotationVector(1, 0, 0).String(), "rotation-vector(1, 0, 0)"},
		{Identity[Quaternion]().String(), "quaternion(1, 0, 0, 0)"},
		{Identity[AxisAngle]().String(), "axis-angle(1, 0, 0, 0)"},
		{Identity[RotationMatrix]().String(), "rotation-matrix(1, 0, 0, 0, 1, 0, 0, 0, 1)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"matrix", KindRotationMatrix},
		{"rotation-matrix", KindRotationMatrix},
		{"quat", KindQuaternion},
		{"AA", KindAxisAngle},
		{"rotvec", KindRotationVector},
		{" so3 ", KindTangent},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil {
			t.Errorf("ParseKind(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if back, _ := ParseKind(got.String()); back != got {
			t.Errorf("ParseKind(%v.String()) = %v", got, back)
		}
	}
	if _, err := ParseKind("euler"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
