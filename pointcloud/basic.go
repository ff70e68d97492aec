package pointcloud

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// maxPrealloc caps the capacity reserved up front. Sizes are hints, often taken from untrusted
// file headers; appends grow the cloud past it.
const maxPrealloc = 1 << 16

// Coordinates outside this range cannot be stored without float64 losing integer precision.
const (
	maxPreciseFloat64 = float64(1 << 53)
	minPreciseFloat64 = -maxPreciseFloat64
)

// PointAndData is a tiny struct to facilitate returning points and data.
type PointAndData struct {
	P r3.Vector
	D Data
}

// basicPointCloud is the basic implementation of the PointCloud interface backed by
// a slice of points in insertion order.
type basicPointCloud struct {
	points []PointAndData
	dims   int
	meta   MetaData
}

// New returns an empty three dimensional PointCloud backed by a basicPointCloud.
func New() PointCloud {
	return NewWithPrealloc(0)
}

// NewWithPrealloc returns an empty, preallocated three dimensional PointCloud.
func NewWithPrealloc(size int) PointCloud {
	return NewWithDimensions(3, size)
}

// NewWithDimensions returns an empty PointCloud of the given dimensionality with room for
// size points, up to maxPrealloc. Planar clouds (dims == 2) drop the Z component of every
// point they store.
func NewWithDimensions(dims, size int) PointCloud {
	if dims != 2 {
		dims = 3
	}
	size = max(0, min(size, maxPrealloc))
	return &basicPointCloud{
		points: make([]PointAndData, 0, size),
		dims:   dims,
		meta:   NewMetaData(),
	}
}

func (cloud *basicPointCloud) Size() int {
	return len(cloud.points)
}

func (cloud *basicPointCloud) Dimensions() int {
	return cloud.dims
}

func (cloud *basicPointCloud) MetaData() MetaData {
	return cloud.meta
}

func (cloud *basicPointCloud) At(i int) (r3.Vector, Data, bool) {
	if i < 0 || i >= len(cloud.points) {
		return r3.Vector{}, nil, false
	}
	pd := cloud.points[i]
	return pd.P, pd.D, true
}

// Set validates that the point can be precisely stored before appending it to the cloud.
func (cloud *basicPointCloud) Set(p r3.Vector, d Data) error {
	if cloud.dims == 2 {
		p.Z = 0
	}
	if p.X > maxPreciseFloat64 || p.X < minPreciseFloat64 {
		return errors.Errorf("x component (%f) is out of range [%f,%f]", p.X, minPreciseFloat64, maxPreciseFloat64)
	}
	if p.Y > maxPreciseFloat64 || p.Y < minPreciseFloat64 {
		return errors.Errorf("y component (%f) is out of range [%f,%f]", p.Y, minPreciseFloat64, maxPreciseFloat64)
	}
	if p.Z > maxPreciseFloat64 || p.Z < minPreciseFloat64 {
		return errors.Errorf("z component (%f) is out of range [%f,%f]", p.Z, minPreciseFloat64, maxPreciseFloat64)
	}
	cloud.points = append(cloud.points, PointAndData{P: p, D: d})
	cloud.meta.Merge(p, d)
	return nil
}

func (cloud *basicPointCloud) Iterate(numBatches, myBatch int, fn func(p r3.Vector, d Data) bool) {
	lowerBound := 0
	upperBound := len(cloud.points)
	if numBatches > 0 {
		batchSize := (len(cloud.points) + numBatches - 1) / numBatches
		lowerBound = myBatch * batchSize
		upperBound = (myBatch + 1) * batchSize
	}
	if upperBound > len(cloud.points) {
		upperBound = len(cloud.points)
	}
	for i := lowerBound; i < upperBound; i++ {
		if !fn(cloud.points[i].P, cloud.points[i].D) {
			return
		}
	}
}
