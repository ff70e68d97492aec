package ply

import (
	"image/color"
	"math"
	"strconv"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/ply/logging"
	"go.viam.com/ply/pointcloud"
	"go.viam.com/ply/spatialmath"
	"go.viam.com/ply/utils"
)

// Result is the outcome of a decode. Points is set whenever the header declares a vertex
// element; Mesh is set only for polyhedra and indexes into Points.
type Result struct {
	Header         *FileDescriptor
	Classification Classification
	Points         pointcloud.PointCloud
	Mesh           Mesh
}

// TriangleMesh converts a decoded triangle mesh into triangles of points. It fails when the
// mesh is missing or was built by a factory without that conversion.
func (r *Result) TriangleMesh() (*spatialmath.Mesh, error) {
	converter, ok := r.Mesh.(interface {
		ToMesh() (*spatialmath.Mesh, error)
	})
	if !ok {
		return nil, elementError(ErrUnsupportedGeometry, nil, "", -1,
			utils.NewUnimplementedInterfaceError("ToMesh", r.Mesh), "result holds no triangle mesh")
	}
	return converter.ToMesh()
}

// elementRole is what the assembler does with the records of an element.
type elementRole int

const (
	skipRecords elementRole = iota
	vertexRecords
	faceRecords
)

// faceRecord is one decoded face before it is handed to the factory.
type faceRecord struct {
	indices   []int
	texCoords []float64
	texture   int
}

// assembler turns decoded records into factory geometry and reports them to listeners.
type assembler struct {
	opts    Options
	factory Factory
	logger  logging.Logger
	events  *dispatcher
	source  string
	hdr     *header

	cloud        pointcloud.PointCloud
	faces        []spatialmath.IndexedFace
	allTriangles bool
	faceOrdinal  int
	warned       map[string]bool
}

func newAssembler(
	opts Options, factory Factory, logger logging.Logger, events *dispatcher, source string, hdr *header,
) *assembler {
	return &assembler{
		opts:         opts,
		factory:      factory,
		logger:       logger,
		events:       events,
		source:       source,
		hdr:          hdr,
		allTriangles: true,
		warned:       map[string]bool{},
	}
}

func (a *assembler) roleOf(e *ElementDescriptor) elementRole {
	switch e {
	case a.hdr.vertex:
		return vertexRecords
	case a.hdr.face:
		if a.hdr.Classification == Polyhedron {
			return faceRecords
		}
		return skipRecords
	}
	if k := e.Kind(); k == KindVertex || k == KindFace {
		a.warnOnce("element:"+e.Name, "skipping repeated element, only the first of each kind is decoded",
			"element", e.Name, "kind", k.String())
	}
	return skipRecords
}

func (a *assembler) warnOnce(key, msg string, keysAndValues ...interface{}) {
	if a.warned[key] {
		return
	}
	a.warned[key] = true
	a.logger.Warnw(msg, keysAndValues...)
}

// begin prepares the point container once the header is known.
func (a *assembler) begin() error {
	fd := a.hdr.FileDescriptor
	if fd.Classification == Polyhedron && fd.VertexDimensions == 2 {
		return elementError(ErrUnsupportedGeometry, a.hdr.vertex, "", -1, nil, "polyhedra need 3D vertices")
	}
	if a.hdr.vertex != nil {
		a.cloud = a.factory.NewPointCloud(fd.VertexDimensions, a.hdr.vertex.Count)
	}
	return nil
}

func (a *assembler) notify(n Notification) error {
	n.Source = a.source
	n.Header = a.hdr.FileDescriptor
	return a.events.notify(n)
}

func (a *assembler) startElement(e *ElementDescriptor) error {
	a.logger.Debugw("decoding element", "element", e.Name, "count", e.Count)
	return a.notify(Notification{Event: EventElementStarted, Element: e})
}

func (a *assembler) finishElement(e *ElementDescriptor, read int) error {
	return a.notify(Notification{Event: EventElementFinished, Element: e, Ordinal: read})
}

// channel converts a color property to 0-255, scaling float channels from [0, 1].
func channel(t PrimitiveType, v float64) uint8 {
	if t.IsFloat() {
		v *= 255
	}
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

// addVertex maps the scalar values of one vertex record onto a point. set marks which
// properties the record actually carried.
func (a *assembler) addVertex(pos position, values []float64, set []bool) error {
	e := a.hdr.vertex
	idx := a.hdr.index(e)
	get := func(r role) (float64, bool) {
		i := idx.slots[r]
		if i < 0 || !set[i] {
			return 0, false
		}
		return values[i], true
	}

	mandatory := []role{roleX, roleY}
	if a.hdr.VertexDimensions == 3 {
		mandatory = append(mandatory, roleZ)
	}
	var coords [3]float64
	for i, r := range mandatory {
		v, ok := get(r)
		if !ok {
			return pos.fail(ErrInvalidVertexRecord, nil, "missing %s coordinate", []string{"x", "y", "z"}[i])
		}
		coords[i] = v
	}
	p := r3.Vector{X: coords[0], Y: coords[1], Z: coords[2]}

	data, err := a.factory.NewPointData()
	if err != nil {
		return pos.fail(ErrInvalidVertexRecord, err, "cannot construct point data")
	}
	if data != nil {
		a.applyVertexCapabilities(data, idx, values, set, get)
	}

	if err := a.cloud.Set(p, data); err != nil {
		return pos.fail(ErrInvalidVertexRecord, err, "cannot add point")
	}
	return a.notify(Notification{Event: EventVertexDecoded, Element: e, Ordinal: pos.instance, Point: p, Data: data})
}

func (a *assembler) applyVertexCapabilities(
	data pointcloud.Data, idx *propertyIndex, values []float64, set []bool, get func(role) (float64, bool),
) {
	e := a.hdr.vertex
	if c, ok := data.(Colorable); ok && a.opts.IncludeColors {
		r, okR := get(roleRed)
		g, okG := get(roleGreen)
		b, okB := get(roleBlue)
		if okR && okG && okB {
			typeOf := func(rl role) PrimitiveType { return e.Properties[idx.slots[rl]].Type }
			rgba := color.NRGBA{
				R: channel(typeOf(roleRed), r),
				G: channel(typeOf(roleGreen), g),
				B: channel(typeOf(roleBlue), b),
				A: 255,
			}
			if alpha, ok := get(roleAlpha); ok {
				rgba.A = channel(typeOf(roleAlpha), alpha)
			}
			c.SetColor(rgba)
		}
	}
	if n, ok := data.(NormalCarrier); ok && a.opts.IncludeNormals {
		nx, okX := get(roleNX)
		ny, okY := get(roleNY)
		nz, okZ := get(roleNZ)
		if okX && okY && okZ {
			n.SetNormal(r3.Vector{X: nx, Y: ny, Z: nz})
		}
	}
	if t, ok := data.(TexCoordCarrier); ok {
		u, okU := get(roleTextureU)
		v, okV := get(roleTextureV)
		if okU && okV {
			t.SetTexCoord(a.point2D(u, v))
		}
	}
	if id, ok := get(roleID); ok {
		if ider, ok := data.(Identifiable); ok {
			ider.SetID(int(id))
		}
	}

	bag, hasBag := data.(PropertyCarrier)
	for i, prop := range e.Properties {
		if !set[i] || idx.roleAt(i) != roleNone {
			continue
		}
		if hasBag {
			bag.SetProperty(prop.Name, values[i])
			continue
		}
		a.warnOnce("property:"+prop.Name, "discarding vertex property, point data has no property bag",
			"property", prop.Name)
	}
}

func (a *assembler) point2D(u, v float64) r2.Point {
	if a.opts.FlipTextureV {
		v = 1 - v
	}
	return a.factory.NewPoint2D(u, v)
}

// addFace builds a face from a record, tags triangles and reports it.
func (a *assembler) addFace(pos position, rec faceRecord) error {
	if len(rec.texCoords)%2 != 0 {
		return pos.fail(ErrInvalidFaceRecord, nil, "texcoord list has odd length %d", len(rec.texCoords))
	}

	var face spatialmath.IndexedFace
	switch {
	case len(rec.texCoords) > 0 || rec.texture != spatialmath.NoTexture:
		coords := make([]r2.Point, 0, len(rec.texCoords)/2)
		for i := 0; i < len(rec.texCoords); i += 2 {
			coords = append(coords, a.point2D(rec.texCoords[i], rec.texCoords[i+1]))
		}
		face = a.factory.NewTexturedFace(rec.indices, coords, rec.texture)
	case len(rec.indices) == 3:
		face = a.factory.NewTriangle(rec.indices[0], rec.indices[1], rec.indices[2])
	default:
		face = a.factory.NewFace(rec.indices)
	}
	if face == nil {
		return pos.fail(ErrInvalidFaceRecord, nil, "factory built no face")
	}

	ordinal := a.faceOrdinal
	a.faceOrdinal++
	if len(rec.indices) == 3 {
		if ider, ok := face.(Identifiable); ok {
			ider.SetID(ordinal)
		}
		if namer, ok := face.(Nameable); ok {
			namer.SetName(a.opts.DefaultFaceName + strconv.Itoa(ordinal))
		}
	} else {
		a.allTriangles = false
	}
	a.faces = append(a.faces, face)
	return a.notify(Notification{Event: EventFaceDecoded, Element: a.hdr.face, Ordinal: ordinal, Face: face})
}

// finish builds the result once every element has been decoded.
func (a *assembler) finish() (*Result, error) {
	fd := a.hdr.FileDescriptor
	res := &Result{Header: fd, Classification: fd.Classification}
	switch fd.Classification {
	case NoGeometry:
		return res, nil
	case PointsOnly:
		res.Points = a.cloud
		return res, nil
	case Polyhedron:
	}
	res.Points = a.cloud

	var mesh Mesh
	if a.allTriangles {
		mesh = a.factory.NewIndexedTriangleMesh(a.cloud)
	} else {
		mesh = a.factory.NewIndexedMesh()
		mesh.SetVertices(a.cloud)
	}
	for i, f := range a.faces {
		if err := mesh.AddFace(f); err != nil {
			return nil, elementError(ErrInvalidFaceRecord, a.hdr.face, "", i, err, "mesh rejected face")
		}
	}

	if textures := fd.Textures; len(textures) > 0 {
		if holder, ok := mesh.(TextureHolder); ok {
			for _, t := range textures {
				if err := holder.AddTexture(t.Index, t.LocalName, t.Path); err != nil {
					return nil, elementError(ErrUnsupportedGeometry, nil, "", -1, err, "cannot attach texture %q", t.LocalName)
				}
			}
		} else {
			a.logger.Warnw("dropping textures, mesh cannot hold them", "textures", len(textures))
		}
	}
	if namer, ok := mesh.(Nameable); ok {
		namer.SetName(a.opts.DefaultMeshName)
	}
	if err := mesh.Validate(); err != nil {
		return nil, elementError(ErrInvalidFaceRecord, a.hdr.face, "", -1, err, "mesh failed validation")
	}
	res.Mesh = mesh
	return res, nil
}
