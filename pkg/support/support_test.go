package support

import (
	"errors"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats/scalar"
	vec "gonum.org/v1/gonum/spatial/r3"
)

func flatGeometry(poly ...r2.Point) Geometry {
	return Geometry{
		Polygon: poly,
		Axes:    [2]r3.Vector{{X: 1}, {Y: 1}},
	}
}

func unitSquare() Geometry {
	return flatGeometry(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0}, r2.Point{X: 1, Y: 1}, r2.Point{X: 0, Y: 1})
}

func vectorClose(a, b r3.Vector, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) &&
		scalar.EqualWithinAbs(a.Y, b.Y, tol) &&
		scalar.EqualWithinAbs(a.Z, b.Z, tol)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		g    Geometry
		want error
	}{
		{"square", unitSquare(), nil},
		{"single contact", flatGeometry(r2.Point{X: 1, Y: 1}), nil},
		{"empty", flatGeometry(), ErrEmptyPolygon},
		{"zero axis", Geometry{Polygon: unitSquare().Polygon, Axes: [2]r3.Vector{{X: 1}, {}}}, ErrDegenerateAxes},
		{"skewed axes", Geometry{Polygon: unitSquare().Polygon, Axes: [2]r3.Vector{{X: 1}, {X: 0.1, Y: 1}}}, ErrAxesNotOrthogonal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAxesFromUp(t *testing.T) {
	for _, up := range []r3.Vector{{Z: 1}, {X: 1}, {X: 1, Y: -2, Z: 0.5}} {
		axes, err := AxesFromUp(up)
		if err != nil {
			t.Fatal(err)
		}
		g := Geometry{Polygon: unitSquare().Polygon, Axes: axes}
		if err := g.Validate(); err != nil {
			t.Fatalf("up %v: %v", up, err)
		}
		if !vectorClose(g.Up(), up.Normalize(), 1e-12) {
			t.Fatalf("up %v: a1×a2 = %v", up, g.Up())
		}
	}
	if _, err := AxesFromUp(r3.Vector{}); !errors.Is(err, ErrDegenerateAxes) {
		t.Fatalf("zero up: error = %v", err)
	}
}

func TestLift(t *testing.T) {
	g := unitSquare()
	got := g.Vertices(0.5)
	want := []r3.Vector{{Z: 0.5}, {X: 1, Z: 0.5}, {X: 1, Y: 1, Z: 0.5}, {Y: 1, Z: 0.5}}
	for i := range want {
		if !vectorClose(got[i], want[i], 0) {
			t.Errorf("vertex %d = %v, want %v", i, got[i], want[i])
		}
	}

	tilted := Geometry{Axes: [2]r3.Vector{{Y: 1}, {Z: 1}}}
	if p := tilted.Lift(r2.Point{X: 2, Y: 3}, 1); !vectorClose(p, r3.Vector{X: 1, Y: 2, Z: 3}, 0) {
		t.Errorf("tilted lift = %v, want (1,2,3)", p)
	}
}

func TestContains(t *testing.T) {
	lShape := flatGeometry(
		r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 0}, r2.Point{X: 2, Y: 1},
		r2.Point{X: 1, Y: 1}, r2.Point{X: 1, Y: 2}, r2.Point{X: 0, Y: 2},
	)
	tests := []struct {
		name string
		g    Geometry
		p    r2.Point
		want bool
	}{
		{"square interior", unitSquare(), r2.Point{X: 0.5, Y: 0.5}, true},
		{"square exterior", unitSquare(), r2.Point{X: 1.5, Y: 0.5}, false},
		{"square edge", unitSquare(), r2.Point{X: 1, Y: 0.5}, true},
		{"square vertex", unitSquare(), r2.Point{X: 0, Y: 0}, true},
		{"level with vertex outside", unitSquare(), r2.Point{X: -1, Y: 1}, false},
		{"concave arm", lShape, r2.Point{X: 1.5, Y: 0.5}, true},
		{"concave notch", lShape, r2.Point{X: 1.5, Y: 1.5}, false},
		{"single contact hit", flatGeometry(r2.Point{X: 1, Y: 1}), r2.Point{X: 1, Y: 1}, true},
		{"single contact miss", flatGeometry(r2.Point{X: 1, Y: 1}), r2.Point{X: 1, Y: 1.1}, false},
		{"segment midpoint", flatGeometry(r2.Point{}, r2.Point{X: 2, Y: 2}), r2.Point{X: 1, Y: 1}, true},
		{"segment beyond end", flatGeometry(r2.Point{}, r2.Point{X: 2, Y: 2}), r2.Point{X: 3, Y: 3}, false},
		{"segment off line", flatGeometry(r2.Point{}, r2.Point{X: 2, Y: 2}), r2.Point{X: 1, Y: 0}, false},
		{"empty", flatGeometry(), r2.Point{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.g.Contains(tt.p); got != tt.want {
				t.Fatalf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestCOM(t *testing.T) {
	g := unitSquare()
	g.COM = r3.Vector{X: 0.25, Y: 0.75, Z: 3}
	if p := g.ProjectCOM(); p != (r2.Point{X: 0.25, Y: 0.75}) {
		t.Fatalf("ProjectCOM = %v", p)
	}
	if !g.COMInside() {
		t.Fatal("COM above the square should be inside")
	}
	g.COM = r3.Vector{X: -0.25, Y: 0.75, Z: 3}
	if g.COMInside() {
		t.Fatal("COM beside the square should be outside")
	}

	pose := g.COMPose(0.1)
	if want := (vec.Vec{X: -0.25, Y: 0.75, Z: 0.1}); pose.Translation != want {
		t.Fatalf("COM marker at %v, want %v", pose.Translation, want)
	}
}

func TestCentroidPose(t *testing.T) {
	g := unitSquare()
	g.Centroid = r2.Point{X: 0.5, Y: 0.5}
	pose := g.CentroidPose(0.2)
	if want := (vec.Vec{X: 0.5, Y: 0.5, Z: 0.2}); pose.Translation != want {
		t.Fatalf("centroid marker at %v, want %v", pose.Translation, want)
	}
	if !pose.Rotation.IsIdentity() {
		t.Fatalf("flat support frame = %v, want identity", pose.Rotation)
	}

	axes, err := AxesFromUp(r3.Vector{X: 1, Y: 1, Z: 1})
	if err != nil {
		t.Fatal(err)
	}
	tilted := Geometry{Polygon: g.Polygon, Axes: axes, Centroid: r2.Point{X: 1, Y: 2}}
	frame := tilted.Frame()
	if !frame.IsValid(1e-12) {
		t.Fatalf("frame is not a rotation: %v", frame)
	}
	tp := tilted.CentroidPose(0.3)
	lifted := tilted.Lift(tilted.Centroid, 0.3)
	if got := tp.Apply(vec.Vec{}); !scalar.EqualWithinAbs(got.X, lifted.X, 1e-12) ||
		!scalar.EqualWithinAbs(got.Y, lifted.Y, 1e-12) ||
		!scalar.EqualWithinAbs(got.Z, lifted.Z, 1e-12) {
		t.Fatalf("marker origin at %v, want %v", got, lifted)
	}
	// The marker's local x axis follows the first support axis.
	x := tp.Rotation.Rotate(vec.Vec{X: 1})
	if !vectorClose(r3.Vector{X: x.X, Y: x.Y, Z: x.Z}, axes[0], 1e-12) {
		t.Fatalf("marker x axis = %v, want %v", x, axes[0])
	}
}
