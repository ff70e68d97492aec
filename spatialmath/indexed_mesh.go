package spatialmath

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/ply/pointcloud"
)

// Texture is an image a mesh's faces may sample, addressed by Index from Face.Texture.
type Texture struct {
	Index int
	Name  string
	Path  string
}

// IndexedMesh is a set of polygons whose corners index into a shared vertex source.
type IndexedMesh struct {
	label    string
	vertices pointcloud.PointCloud
	faces    []IndexedFace
	textures []Texture
}

// NewIndexedMesh returns an empty mesh with no vertex source.
func NewIndexedMesh() *IndexedMesh {
	return &IndexedMesh{}
}

// SetVertices sets the vertex source faces index into.
func (m *IndexedMesh) SetVertices(vertices pointcloud.PointCloud) {
	m.vertices = vertices
}

// Vertices returns the vertex source.
func (m *IndexedMesh) Vertices() pointcloud.PointCloud {
	return m.vertices
}

// AddFace appends a face to the mesh.
func (m *IndexedMesh) AddFace(f IndexedFace) error {
	if f == nil {
		return errors.New("cannot add nil face")
	}
	m.faces = append(m.faces, f)
	return nil
}

// Faces returns the faces in the order they were added.
func (m *IndexedMesh) Faces() []IndexedFace {
	return m.faces
}

// AddTexture registers a texture. Indices must be unique within a mesh.
func (m *IndexedMesh) AddTexture(index int, name, path string) error {
	if _, found := lo.Find(m.textures, func(t Texture) bool { return t.Index == index }); found {
		return errors.Errorf("texture %d already registered", index)
	}
	m.textures = append(m.textures, Texture{Index: index, Name: name, Path: path})
	return nil
}

// Textures returns the registered textures.
func (m *IndexedMesh) Textures() []Texture {
	return m.textures
}

func (m *IndexedMesh) SetName(name string) {
	m.label = name
}

func (m *IndexedMesh) Label() string {
	return m.label
}

// Validate checks that every face has at least three corners, that every corner is a valid
// position in the vertex source, and that every textured face references a registered texture.
// All problems found are returned together.
func (m *IndexedMesh) Validate() error {
	if m.vertices == nil {
		return errors.New("mesh has no vertex source")
	}
	size := m.vertices.Size()
	var err error
	for fi, f := range m.faces {
		indices := f.Indices()
		if len(indices) < 3 {
			err = multierr.Append(err, errors.Errorf("face %d has %d corners, need at least 3", fi, len(indices)))
		}
		for _, idx := range indices {
			if idx < 0 || idx >= size {
				err = multierr.Append(err, errors.Errorf("face %d references vertex %d, have %d vertices", fi, idx, size))
			}
		}
		if tf, ok := f.(*Face); ok && tf.texture != NoTexture && len(m.textures) > 0 {
			if _, found := lo.Find(m.textures, func(t Texture) bool { return t.Index == tf.texture }); !found {
				err = multierr.Append(err, errors.Errorf("face %d references unknown texture %d", fi, tf.texture))
			}
		}
	}
	return err
}

// IndexedTriangleMesh is an IndexedMesh whose faces all have exactly three corners.
type IndexedTriangleMesh struct {
	IndexedMesh
}

// NewIndexedTriangleMesh returns an empty triangle mesh over vertices.
func NewIndexedTriangleMesh(vertices pointcloud.PointCloud) *IndexedTriangleMesh {
	return &IndexedTriangleMesh{IndexedMesh{vertices: vertices}}
}

// AddFace appends a face, rejecting any that is not a triangle.
func (m *IndexedTriangleMesh) AddFace(f IndexedFace) error {
	if f == nil {
		return errors.New("cannot add nil face")
	}
	if n := len(f.Indices()); n != 3 {
		return errors.Errorf("triangle mesh cannot hold a face with %d corners", n)
	}
	return m.IndexedMesh.AddFace(f)
}

// ToMesh resolves every triangle's corners against the vertex source.
func (m *IndexedTriangleMesh) ToMesh() (*Mesh, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	corner := func(idx int, _ int) r3.Vector {
		p, _, _ := m.vertices.At(idx)
		return p
	}
	triangles := lo.Map(m.faces, func(f IndexedFace, _ int) *Triangle {
		pts := lo.Map(f.Indices(), corner)
		return NewTriangle(pts[0], pts[1], pts[2])
	})
	return NewMesh(triangles, m.label), nil
}
