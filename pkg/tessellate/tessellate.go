// Package tessellate walks a tree of posed solids and produces triangle
// meshes with sdfx marching cubes. One mesh is produced per solid.
package tessellate

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/rotor/pkg/transform"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultCells controls the marching cubes resolution along the longest
// side of a solid's bounding box.
const DefaultCells = 200

// ErrNoCells is returned for a non-positive cell count.
var ErrNoCells = errors.New("tessellate: cell count must be positive")

// Part is a node of a placement tree. Pose places the part relative to its
// parent; a nil Pose is the identity. Parts without a Solid only group and
// place their children.
type Part struct {
	Name     string
	Solid    sdf.SDF3
	Pose     *transform.Isometry
	Children []*Part
}

// Mesh is a triangle mesh with flat arrays: 3 floats per vertex, 3 floats
// per normal and 3 indices per triangle.
type Mesh struct {
	Vertices []float32
	Normals  []float32
	Indices  []uint32
	PartName string
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Bounds returns the axis-aligned extent of the vertices. An empty mesh
// returns two zero vectors.
func (m *Mesh) Bounds() (min, max r3.Vec) {
	if m.IsEmpty() {
		return r3.Vec{}, r3.Vec{}
	}
	min = r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max = r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		x, y, z := float64(m.Vertices[i]), float64(m.Vertices[i+1]), float64(m.Vertices[i+2])
		min = r3.Vec{X: math.Min(min.X, x), Y: math.Min(min.Y, y), Z: math.Min(min.Z, z)}
		max = r3.Vec{X: math.Max(max.X, x), Y: math.Max(max.Y, y), Z: math.Max(max.Z, z)}
	}
	return min, max
}

// Tessellate walks the trees rooted at roots and returns one mesh per solid,
// each placed by the composition of the poses from its root down. The parts
// are not modified.
func Tessellate(roots []*Part, cells int) ([]*Mesh, error) {
	if cells <= 0 {
		return nil, ErrNoCells
	}
	var meshes []*Mesh
	ts := transform.NewStack()
	for i, root := range roots {
		if root == nil {
			continue
		}
		collected, err := walk(root, ts, cells)
		if err != nil {
			return nil, fmt.Errorf("tessellate: root %d: %w", i, err)
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

// walk pushes the part's pose, meshes its solid, recurses into its
// children, then pops.
func walk(p *Part, ts *transform.Stack, cells int) ([]*Mesh, error) {
	pose := transform.Identity()
	if p.Pose != nil {
		pose = *p.Pose
	}
	ts.Push(pose)
	defer ts.Pop()

	var meshes []*Mesh
	if p.Solid != nil {
		mesh, err := ToMesh(ts.Accumulated().Place(p.Solid), cells)
		if err != nil {
			return nil, fmt.Errorf("part %q: %w", p.Name, err)
		}
		mesh.PartName = p.Name
		meshes = append(meshes, mesh)
	}
	for _, child := range p.Children {
		if child == nil {
			continue
		}
		collected, err := walk(child, ts, cells)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func ToMesh(s sdf.SDF3, cells int) (*Mesh, error) {
	if cells <= 0 {
		return nil, ErrNoCells
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
