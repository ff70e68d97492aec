package pointcloud

import (
	"image/color"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// NewVector convenience method for creating a vector.
func NewVector(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

// Data describes data associated single point within a PointCloud.
type Data interface {
	// HasColor returns whether or not this point is colored.
	HasColor() bool

	// RGB255 returns, if colored, the RGB components of the color.
	RGB255() (uint8, uint8, uint8)

	// Color returns the native color of the point, alpha included.
	Color() color.Color

	// HasValue returns whether or not this point has some user data value
	// associated with it.
	HasValue() bool

	// Value returns the user data set value, if it exists.
	Value() int
}

// basicData is the default point payload. Beyond Data it carries normals, texture coordinates
// and arbitrary named scalar properties, each of which is optional.
type basicData struct {
	hasColor bool
	c        color.NRGBA

	hasValue bool
	value    int

	hasNormal bool
	normal    r3.Vector

	hasTexCoord bool
	uv          r2.Point

	props map[string]float64
}

// NewBasicData returns a point that is solely positionally based.
func NewBasicData() Data {
	return &basicData{}
}

// NewColoredData returns a point that has both position and color.
func NewColoredData(c color.NRGBA) Data {
	return &basicData{c: c, hasColor: true}
}

// NewValueData returns a point that has both position and a user data value.
func NewValueData(v int) Data {
	return &basicData{value: v, hasValue: true}
}

func (bp *basicData) SetColor(c color.NRGBA) {
	bp.c = c
	bp.hasColor = true
}

func (bp *basicData) HasColor() bool {
	return bp.hasColor
}

func (bp *basicData) RGB255() (uint8, uint8, uint8) {
	return bp.c.R, bp.c.G, bp.c.B
}

func (bp *basicData) Color() color.Color {
	return &bp.c
}

func (bp *basicData) SetValue(v int) {
	bp.hasValue = true
	bp.value = v
}

// SetID stores a per-point identifier as the point's value.
func (bp *basicData) SetID(id int) {
	bp.SetValue(id)
}

func (bp *basicData) HasValue() bool {
	return bp.hasValue
}

func (bp *basicData) Value() int {
	return bp.value
}

func (bp *basicData) SetNormal(n r3.Vector) {
	bp.normal = n
	bp.hasNormal = true
}

// Normal returns the point's normal and whether one was set.
func (bp *basicData) Normal() (r3.Vector, bool) {
	return bp.normal, bp.hasNormal
}

func (bp *basicData) SetTexCoord(uv r2.Point) {
	bp.uv = uv
	bp.hasTexCoord = true
}

// TexCoord returns the point's texture coordinate and whether one was set.
func (bp *basicData) TexCoord() (r2.Point, bool) {
	return bp.uv, bp.hasTexCoord
}

func (bp *basicData) SetProperty(name string, value float64) {
	if bp.props == nil {
		bp.props = map[string]float64{}
	}
	bp.props[name] = value
}

// Property returns the named scalar property and whether it exists.
func (bp *basicData) Property(name string) (float64, bool) {
	v, ok := bp.props[name]
	return v, ok
}

// PropertyNames returns the names of all extra properties in sorted order.
func (bp *basicData) PropertyNames() []string {
	names := make([]string, 0, len(bp.props))
	for name := range bp.props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NormalOf returns the normal carried by d, if d carries one.
func NormalOf(d Data) (r3.Vector, bool) {
	if n, ok := d.(interface{ Normal() (r3.Vector, bool) }); ok {
		return n.Normal()
	}
	return r3.Vector{}, false
}

// TexCoordOf returns the texture coordinate carried by d, if d carries one.
func TexCoordOf(d Data) (r2.Point, bool) {
	if tc, ok := d.(interface{ TexCoord() (r2.Point, bool) }); ok {
		return tc.TexCoord()
	}
	return r2.Point{}, false
}

// PropertyOf returns the named extra property carried by d, if d carries it.
func PropertyOf(d Data, name string) (float64, bool) {
	if p, ok := d.(interface {
		Property(name string) (float64, bool)
	}); ok {
		return p.Property(name)
	}
	return 0, false
}
