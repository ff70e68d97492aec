package ply

import (
	"image/color"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/ply/pointcloud"
	"go.viam.com/ply/spatialmath"
)

// Mesh is an indexed mesh under construction.
type Mesh interface {
	// SetVertices sets the vertex source faces index into.
	SetVertices(vertices pointcloud.PointCloud)
	// AddFace appends a face.
	AddFace(f spatialmath.IndexedFace) error
	// Validate checks every face against the vertex source.
	Validate() error
}

// Factory builds the geometry a decode produces. Decoders never construct geometry themselves.
type Factory interface {
	// NewPointCloud returns an empty cloud of 2 or 3 dimensions able to hold sizeHint points.
	NewPointCloud(dims, sizeHint int) pointcloud.PointCloud
	// NewPointData returns the payload for one decoded vertex.
	NewPointData() (pointcloud.Data, error)
	// NewIndexedMesh returns a mesh able to hold faces of any size.
	NewIndexedMesh() Mesh
	// NewIndexedTriangleMesh returns a mesh over vertices that only holds triangles.
	NewIndexedTriangleMesh(vertices pointcloud.PointCloud) Mesh
	NewFace(indices []int) spatialmath.IndexedFace
	NewTexturedFace(indices []int, texCoords []r2.Point, texture int) spatialmath.IndexedFace
	NewTriangle(i, j, k int) spatialmath.IndexedFace
	NewPoint2D(u, v float64) r2.Point
}

// Optional capabilities of point data, faces and meshes. A decoder checks for each one on every
// object it builds and skips what the object does not implement.
type (
	// Colorable accepts a vertex color.
	Colorable interface {
		SetColor(c color.NRGBA)
	}
	// NormalCarrier accepts a vertex normal.
	NormalCarrier interface {
		SetNormal(n r3.Vector)
	}
	// Identifiable accepts an integer identity: the vertex id property or a face ordinal.
	Identifiable interface {
		SetID(id int)
	}
	// Nameable accepts a display name.
	Nameable interface {
		SetName(name string)
	}
	// TexCoordCarrier accepts a per-vertex texture coordinate.
	TexCoordCarrier interface {
		SetTexCoord(uv r2.Point)
	}
	// PropertyCarrier accepts properties that have no well-known meaning.
	PropertyCarrier interface {
		SetProperty(name string, value float64)
	}
	// TextureHolder accepts the textures a header references.
	TextureHolder interface {
		AddTexture(index int, name, path string) error
	}
)

var (
	_ Mesh          = (*spatialmath.IndexedMesh)(nil)
	_ Mesh          = (*spatialmath.IndexedTriangleMesh)(nil)
	_ TextureHolder = (*spatialmath.IndexedMesh)(nil)
	_ Nameable      = (*spatialmath.IndexedMesh)(nil)
	_ Identifiable  = (*spatialmath.IndexedTriangle)(nil)
	_ Nameable      = (*spatialmath.IndexedTriangle)(nil)
	_ Identifiable  = (*spatialmath.Face)(nil)
)

type defaultFactory struct{}

// DefaultFactory returns the factory backed by the pointcloud and spatialmath packages.
func DefaultFactory() Factory {
	return defaultFactory{}
}

func (defaultFactory) NewPointCloud(dims, sizeHint int) pointcloud.PointCloud {
	return pointcloud.NewWithDimensions(dims, sizeHint)
}

func (defaultFactory) NewPointData() (pointcloud.Data, error) {
	return pointcloud.NewBasicData(), nil
}

func (defaultFactory) NewIndexedMesh() Mesh {
	return spatialmath.NewIndexedMesh()
}

func (defaultFactory) NewIndexedTriangleMesh(vertices pointcloud.PointCloud) Mesh {
	return spatialmath.NewIndexedTriangleMesh(vertices)
}

func (defaultFactory) NewFace(indices []int) spatialmath.IndexedFace {
	return spatialmath.NewFace(indices)
}

func (defaultFactory) NewTexturedFace(indices []int, texCoords []r2.Point, texture int) spatialmath.IndexedFace {
	return spatialmath.NewTexturedFace(indices, texCoords, texture)
}

func (defaultFactory) NewTriangle(i, j, k int) spatialmath.IndexedFace {
	return spatialmath.NewIndexedTriangle(i, j, k)
}

func (defaultFactory) NewPoint2D(u, v float64) r2.Point {
	return r2.Point{X: u, Y: v}
}
