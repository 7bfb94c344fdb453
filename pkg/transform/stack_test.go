package transform

import (
	"math"
	"testing"

	"github.com/chazu/rotor/pkg/so3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestStackEmpty(t *testing.T) {
	s := NewStack()
	if s.Depth() != 0 {
		t.Fatalf("depth = %d, want 0", s.Depth())
	}
	if !s.Accumulated().IsApprox(Identity(), 0) {
		t.Fatal("empty stack should accumulate to identity")
	}
	if _, ok := s.Pop(); ok {
		t.Fatal("Pop on empty stack reported ok")
	}
}

func TestStackComposesInPushOrder(t *testing.T) {
	s := NewStack()
	s.PushTranslation(r3.Vec{X: 5})
	s.PushRotation(so3.NewRotationVector(0, 0, math.Pi/2))
	s.PushTranslation(r3.Vec{X: 1})

	// The innermost origin sits one unit along the rotated x axis, which
	// points along world y, from the outer offset.
	if got := s.Apply(r3.Vec{}); !vecClose(got, r3.Vec{X: 5, Y: 1}, 1e-12) {
		t.Fatalf("innermost origin at %v, want (5,1,0)", got)
	}

	if _, ok := s.Pop(); !ok {
		t.Fatal("Pop reported empty")
	}
	if got := s.Apply(r3.Vec{X: 1}); !vecClose(got, r3.Vec{X: 5, Y: 1}, 1e-12) {
		t.Fatalf("after pop (1,0,0) maps to %v, want (5,1,0)", got)
	}
	if s.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", s.Depth())
	}
}

func TestStackRotationsDoNotCommute(t *testing.T) {
	rx := so3.NewRotationVector(math.Pi/2, 0, 0)
	rz := Identity()
	rz.Rotation = so3.Exp[so3.RotationMatrix](so3.Tangent{Z: math.Pi / 2})

	xz := NewStack()
	xz.PushRotation(rx)
	xz.Push(rz)

	zx := NewStack()
	zx.Push(rz)
	zx.PushRotation(rx)

	p := r3.Vec{X: 1}
	// Rx∘Rz: (1,0,0) -> (0,1,0) -> (0,0,1).
	if got := xz.Apply(p); !vecClose(got, r3.Vec{Z: 1}, 1e-12) {
		t.Fatalf("Rx∘Rz maps %v to %v, want (0,0,1)", p, got)
	}
	// Rz∘Rx: (1,0,0) -> (1,0,0) -> (0,1,0).
	if got := zx.Apply(p); !vecClose(got, r3.Vec{Y: 1}, 1e-12) {
		t.Fatalf("Rz∘Rx maps %v to %v, want (0,1,0)", p, got)
	}
}
