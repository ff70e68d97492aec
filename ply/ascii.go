package ply

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/ply/spatialmath"
)

// asciiDecoder reads the data section of an ascii file one line per record.
type asciiDecoder struct {
	lr  *lineReader
	hdr *header
	asm *assembler
}

// splitFields splits a data line on single spaces. Repeated separators are not collapsed, so
// "1  2" has an empty middle field.
func splitFields(line string) []string {
	return strings.Split(strings.TrimSpace(line), " ")
}

func (d *asciiDecoder) decode() error {
	for _, e := range d.hdr.Elements {
		if err := d.asm.startElement(e); err != nil {
			return err
		}
		role := d.asm.roleOf(e)
		if role == faceRecords && !d.hdr.index(e).has(roleVertexIndices) {
			return elementError(ErrInvalidFaceRecord, e, "", -1, nil, "no vertex_indices list declared")
		}

		var (
			values = make([]float64, len(e.Properties))
			set    = make([]bool, len(e.Properties))
		)
		for i := 0; i < e.Count; i++ {
			line, err := d.lr.next()
			if errors.Is(err, io.EOF) {
				return elementError(ErrElementCountMismatch, e, "", -1, nil, "declared %d records, read %d", e.Count, i)
			}
			if err != nil {
				return elementError(ErrUnexpectedEndOfStream, e, "", i, err, "cannot read record")
			}
			pos := position{line: d.lr.line, text: line, element: e, instance: i}

			switch role {
			case vertexRecords:
				if err := d.vertex(pos, splitFields(line), values, set); err != nil {
					return err
				}
			case faceRecords:
				if err := d.face(pos, splitFields(line)); err != nil {
					return err
				}
			case skipRecords:
			}
		}
		if err := d.asm.finishElement(e, e.Count); err != nil {
			return err
		}
	}
	return nil
}

// vertex parses scalar fields in declaration order. Fields missing from the end of the line
// leave their properties unset; extra fields are ignored.
func (d *asciiDecoder) vertex(pos position, fields []string, values []float64, set []bool) error {
	for i := range set {
		set[i] = false
	}
	cursor := 0
	for i, p := range pos.element.Properties {
		if cursor >= len(fields) {
			break
		}
		if p.IsList() {
			n, err := strconv.Atoi(fields[cursor])
			if err != nil || n < 0 {
				return pos.failProperty(ErrInvalidVertexRecord, err, p.Name, "invalid list length %q", fields[cursor])
			}
			if n > len(fields)-cursor-1 {
				return pos.failProperty(ErrInvalidVertexRecord, nil, p.Name,
					"list declares %d values, line has %d", n, len(fields)-cursor-1)
			}
			cursor += 1 + n
			continue
		}
		v, err := strconv.ParseFloat(fields[cursor], 64)
		if err != nil {
			return pos.failProperty(ErrInvalidVertexRecord, err, p.Name, "invalid %s value %q", p.Type, fields[cursor])
		}
		values[i] = v
		set[i] = true
		cursor++
	}
	return d.asm.addVertex(pos, values, set)
}

func (d *asciiDecoder) face(pos position, fields []string) error {
	idx := d.hdr.index(pos.element)
	rec := faceRecord{texture: spatialmath.NoTexture}
	cursor := 0
	for i, p := range pos.element.Properties {
		if cursor >= len(fields) {
			break
		}
		r := idx.roleAt(i)
		if !p.IsList() {
			if r == roleTextureIndex {
				t, err := strconv.Atoi(fields[cursor])
				if err != nil {
					return pos.failProperty(ErrInvalidFaceRecord, err, p.Name, "invalid texture index %q", fields[cursor])
				}
				rec.texture = t
			}
			cursor++
			continue
		}

		n, err := strconv.Atoi(fields[cursor])
		if err != nil || n < 0 {
			return pos.failProperty(ErrInvalidFaceRecord, err, p.Name, "invalid list length %q", fields[cursor])
		}
		if n > len(fields)-cursor-1 {
			if r == roleVertexIndices {
				return pos.failProperty(ErrInvalidFaceRecord, nil, p.Name,
					"list declares %d values, line has %d", n, len(fields)-cursor-1)
			}
			break
		}
		items := fields[cursor+1 : cursor+1+n]
		cursor += 1 + n

		switch r {
		case roleVertexIndices:
			rec.indices = make([]int, n)
			for j, item := range items {
				if rec.indices[j], err = strconv.Atoi(item); err != nil {
					return pos.failProperty(ErrInvalidFaceRecord, err, p.Name, "invalid vertex index %q", item)
				}
			}
		case roleTexCoords:
			rec.texCoords = make([]float64, n)
			for j, item := range items {
				if rec.texCoords[j], err = strconv.ParseFloat(item, 64); err != nil {
					return pos.failProperty(ErrInvalidFaceRecord, err, p.Name, "invalid texture coordinate %q", item)
				}
			}
		default:
		}
	}
	if rec.indices == nil {
		return pos.fail(ErrInvalidFaceRecord, nil, "missing vertex index list")
	}
	return d.asm.addFace(pos, rec)
}
