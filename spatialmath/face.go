package spatialmath

import (
	"github.com/golang/geo/r2"
)

// NoTexture is the texture index of faces that do not reference a texture.
const NoTexture = -1

// IndexedFace is a polygon whose corners are positions in a vertex source.
type IndexedFace interface {
	Indices() []int
}

// Face is a general polygon over a vertex source, optionally textured.
type Face struct {
	indices   []int
	texCoords []r2.Point
	texture   int

	id   int
	name string
}

// NewFace returns an untextured polygon with the given corner indices.
func NewFace(indices []int) *Face {
	return &Face{indices: indices, texture: NoTexture}
}

// NewTexturedFace returns a polygon with per-corner texture coordinates and the index of the
// texture they sample. Either may be absent: nil coordinates or NoTexture.
func NewTexturedFace(indices []int, texCoords []r2.Point, texture int) *Face {
	return &Face{indices: indices, texCoords: texCoords, texture: texture}
}

func (f *Face) Indices() []int {
	return f.indices
}

// TexCoords returns the per-corner texture coordinates, if any.
func (f *Face) TexCoords() []r2.Point {
	return f.texCoords
}

// Texture returns the index of the texture this face samples or NoTexture.
func (f *Face) Texture() int {
	return f.texture
}

func (f *Face) SetID(id int) {
	f.id = id
}

func (f *Face) ID() int {
	return f.id
}

func (f *Face) SetName(name string) {
	f.name = name
}

func (f *Face) Name() string {
	return f.name
}

// IndexedTriangle is a three cornered face over a vertex source.
type IndexedTriangle struct {
	indices [3]int

	id   int
	name string
}

// NewIndexedTriangle returns the triangle (i, j, k).
func NewIndexedTriangle(i, j, k int) *IndexedTriangle {
	return &IndexedTriangle{indices: [3]int{i, j, k}}
}

func (t *IndexedTriangle) Indices() []int {
	return t.indices[:]
}

func (t *IndexedTriangle) SetID(id int) {
	t.id = id
}

func (t *IndexedTriangle) ID() int {
	return t.id
}

func (t *IndexedTriangle) SetName(name string) {
	t.name = name
}

func (t *IndexedTriangle) Name() string {
	return t.name
}
