package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Mesh is a set of triangles with explicit corner positions, e.g. for collision checks.
type Mesh struct {
	label     string
	triangles []*Triangle
}

// NewMesh creates a Mesh from triangles.
func NewMesh(triangles []*Triangle, label string) *Mesh {
	return &Mesh{
		label:     label,
		triangles: triangles,
	}
}

func (m *Mesh) Label() string {
	return m.label
}

func (m *Mesh) Triangles() []*Triangle {
	return m.triangles
}

// Bounds returns the minimum and maximum corners of the mesh's axis aligned bounding box.
func (m *Mesh) Bounds() (r3.Vector, r3.Vector) {
	if len(m.triangles) == 0 {
		return r3.Vector{}, r3.Vector{}
	}
	lo := m.triangles[0].p0
	hi := lo
	for _, t := range m.triangles {
		for _, p := range t.Points() {
			lo = r3.Vector{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
			hi = r3.Vector{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
		}
	}
	return lo, hi
}

// SurfaceArea returns the sum of the areas of the mesh's triangles.
func (m *Mesh) SurfaceArea() float64 {
	var area float64
	for _, t := range m.triangles {
		area += t.Area()
	}
	return area
}
