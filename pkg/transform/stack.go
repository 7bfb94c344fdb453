package transform

import (
	"github.com/chazu/rotor/pkg/so3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Stack accumulates nested poses, outermost first, as a walk descends a
// hierarchy of frames.
type Stack struct {
	poses []Isometry
}

// NewStack returns an empty stack. Its accumulated pose is the identity.
func NewStack() *Stack {
	return &Stack{}
}

// Push enters the frame p, expressed in the current frame.
func (s *Stack) Push(p Isometry) {
	s.poses = append(s.poses, p)
}

// PushTranslation enters a frame offset by t.
func (s *Stack) PushTranslation(t r3.Vec) {
	s.Push(Translation(t))
}

// PushRotation enters a frame rotated by r, in any representation.
func (s *Stack) PushRotation(r so3.Rotation) {
	s.Push(Isometry{Rotation: so3.From[so3.RotationMatrix](r.Hub())})
}

// Pop leaves the innermost frame. It reports false on an empty stack.
func (s *Stack) Pop() (Isometry, bool) {
	if len(s.poses) == 0 {
		return Isometry{}, false
	}
	p := s.poses[len(s.poses)-1]
	s.poses = s.poses[:len(s.poses)-1]
	return p, true
}

// Depth returns the number of frames on the stack.
func (s *Stack) Depth() int {
	return len(s.poses)
}

// Accumulated returns the pose of the innermost frame in the outermost one:
// the composition of every pushed pose in push order.
func (s *Stack) Accumulated() Isometry {
	acc := Identity()
	for _, p := range s.poses {
		acc = acc.Mul(p)
	}
	return acc
}

// Apply maps p from the innermost frame to the outermost one.
func (s *Stack) Apply(p r3.Vec) r3.Vec {
	return s.Accumulated().Apply(p)
}
