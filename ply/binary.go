package ply

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"go.viam.com/ply/spatialmath"
)

// binaryDecoder reads the data section of a binary file in a single forward pass.
type binaryDecoder struct {
	r       *bufio.Reader
	order   binary.ByteOrder
	hdr     *header
	asm     *assembler
	scratch []byte
}

func newBinaryDecoder(r *bufio.Reader, hdr *header, asm *assembler) *binaryDecoder {
	return &binaryDecoder{r: r, order: hdr.Format.ByteOrder(), hdr: hdr, asm: asm, scratch: make([]byte, 64)}
}

// decodeScalar decodes a value of type t from the front of b, which holds at least its width.
func decodeScalar(order binary.ByteOrder, t PrimitiveType, b []byte) float64 {
	switch t {
	case TypeChar:
		return float64(int8(b[0]))
	case TypeUChar:
		return float64(b[0])
	case TypeShort:
		return float64(int16(order.Uint16(b)))
	case TypeUShort:
		return float64(order.Uint16(b))
	case TypeInt:
		return float64(int32(order.Uint32(b)))
	case TypeUInt:
		return float64(order.Uint32(b))
	case TypeFloat:
		return float64(math.Float32frombits(order.Uint32(b)))
	case TypeDouble:
		return math.Float64frombits(order.Uint64(b))
	case TypeUnknown, TypeList:
	}
	return 0
}

func (d *binaryDecoder) buffer(n int) []byte {
	if cap(d.scratch) < n {
		d.scratch = make([]byte, n)
	}
	return d.scratch[:n]
}

func (d *binaryDecoder) decode() error {
	for _, e := range d.hdr.Elements {
		if err := d.asm.startElement(e); err != nil {
			return err
		}
		var err error
		switch d.asm.roleOf(e) {
		case vertexRecords:
			err = d.vertices(e)
		case faceRecords:
			err = d.faces(e)
		case skipRecords:
			err = d.skip(e)
		}
		if err != nil {
			return err
		}
		if err := d.asm.finishElement(e, e.Count); err != nil {
			return err
		}
	}
	return nil
}

func (d *binaryDecoder) vertices(e *ElementDescriptor) error {
	width := 0
	offsets := make([]int, len(e.Properties))
	for i, p := range e.Properties {
		w := WidthOf(p.Type)
		if w == 0 {
			return elementError(ErrUnsupportedPropertyType, e, p.Name, -1, nil, "%s has no fixed width", p.Type)
		}
		offsets[i] = width
		width += w
	}

	values := make([]float64, len(e.Properties))
	set := make([]bool, len(e.Properties))
	for i := range set {
		set[i] = true
	}
	record := make([]byte, width)
	for i := 0; i < e.Count; i++ {
		if _, err := io.ReadFull(d.r, record); err != nil {
			return elementError(ErrUnexpectedEndOfStream, e, "", i, err, "record %d of %d is incomplete", i+1, e.Count)
		}
		for j, p := range e.Properties {
			values[j] = decodeScalar(d.order, p.Type, record[offsets[j]:])
		}
		if err := d.asm.addVertex(position{element: e, instance: i}, values, set); err != nil {
			return err
		}
	}
	return nil
}

func (d *binaryDecoder) readScalar(pos position, p PropertyDescriptor, t PrimitiveType) (float64, error) {
	b := d.buffer(WidthOf(t))
	if _, err := io.ReadFull(d.r, b); err != nil {
		return 0, pos.failProperty(ErrUnexpectedEndOfStream, err, p.Name, "cannot read %s", t)
	}
	return decodeScalar(d.order, t, b), nil
}

// readCount reads the length prefix of a list property.
func (d *binaryDecoder) readCount(pos position, p PropertyDescriptor) (int, error) {
	v, err := d.readScalar(pos, p, p.CountType)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, pos.failProperty(ErrInvalidFaceRecord, nil, p.Name, "negative list length %v", v)
	}
	return int(v), nil
}

// listChunk bounds how many bytes of a list are buffered at once. Counts come from the stream,
// so memory only grows as values actually arrive.
const listChunk = 64 * 1024

// readList reads the values of a list property.
func (d *binaryDecoder) readList(pos position, p PropertyDescriptor, n int) ([]float64, error) {
	w := WidthOf(p.ValueType)
	per := listChunk / w
	out := make([]float64, 0, min(n, per))
	for len(out) < n {
		k := min(n-len(out), per)
		b := d.buffer(k * w)
		if _, err := io.ReadFull(d.r, b); err != nil {
			return nil, pos.failProperty(ErrUnexpectedEndOfStream, err, p.Name, "cannot read %d values, got %d", n, len(out))
		}
		for i := 0; i < k; i++ {
			out = append(out, decodeScalar(d.order, p.ValueType, b[i*w:]))
		}
	}
	return out, nil
}

func (d *binaryDecoder) discard(pos position, p PropertyDescriptor, n int) error {
	if _, err := d.r.Discard(n); err != nil {
		return pos.failProperty(ErrUnexpectedEndOfStream, err, p.Name, "cannot skip %d bytes", n)
	}
	return nil
}

func (d *binaryDecoder) faces(e *ElementDescriptor) error {
	idx := d.hdr.index(e)
	if idx.slots[roleVertexIndices] != 0 {
		property := ""
		if len(e.Properties) > 0 {
			property = e.Properties[0].Name
		}
		return elementError(ErrInvalidFaceRecord, e, property, -1, nil, "first property must be the vertex index list")
	}

	for i := 0; i < e.Count; i++ {
		pos := position{element: e, instance: i}
		rec := faceRecord{texture: spatialmath.NoTexture}
		for j, p := range e.Properties {
			r := idx.roleAt(j)
			if !p.IsList() {
				v, err := d.readScalar(pos, p, p.Type)
				if err != nil {
					return err
				}
				if r == roleTextureIndex {
					rec.texture = int(v)
				}
				continue
			}

			n, err := d.readCount(pos, p)
			if err != nil {
				return err
			}
			switch r {
			case roleVertexIndices:
				values, err := d.readList(pos, p, n)
				if err != nil {
					return err
				}
				rec.indices = make([]int, len(values))
				for k, v := range values {
					rec.indices[k] = int(v)
				}
			case roleTexCoords:
				if rec.texCoords, err = d.readList(pos, p, n); err != nil {
					return err
				}
			default:
				if err := d.discard(pos, p, n*WidthOf(p.ValueType)); err != nil {
					return err
				}
			}
		}
		if err := d.asm.addFace(pos, rec); err != nil {
			return err
		}
	}
	return nil
}

// skip reads past the records of an element that produces no geometry.
func (d *binaryDecoder) skip(e *ElementDescriptor) error {
	width, fixed := 0, true
	for _, p := range e.Properties {
		if p.IsList() {
			fixed = false
			break
		}
		width += WidthOf(p.Type)
	}
	if fixed {
		pos := position{element: e, instance: 0}
		if _, err := d.r.Discard(width * e.Count); err != nil {
			return pos.fail(ErrUnexpectedEndOfStream, err, "cannot skip %d records", e.Count)
		}
		return nil
	}

	for i := 0; i < e.Count; i++ {
		pos := position{element: e, instance: i}
		for _, p := range e.Properties {
			if !p.IsList() {
				if err := d.discard(pos, p, WidthOf(p.Type)); err != nil {
					return err
				}
				continue
			}
			n, err := d.readCount(pos, p)
			if err != nil {
				return err
			}
			if err := d.discard(pos, p, n*WidthOf(p.ValueType)); err != nil {
				return err
			}
		}
	}
	return nil
}
