package ply

import (
	"fmt"
	"strings"
)

// PropertyDescriptor is one field of an element record. Scalar properties have a scalar Type,
// list properties have Type == TypeList along with the types of their count and values.
type PropertyDescriptor struct {
	Name      string
	Type      PrimitiveType
	CountType PrimitiveType
	ValueType PrimitiveType
}

// IsList is true for list properties.
func (p PropertyDescriptor) IsList() bool {
	return p.Type == TypeList
}

// String renders the property as its header line.
func (p PropertyDescriptor) String() string {
	if p.IsList() {
		return fmt.Sprintf("property list %s %s %s", p.CountType, p.ValueType, p.Name)
	}
	return fmt.Sprintf("property %s %s", p.Type, p.Name)
}

// ElementKind classifies elements by the well-known names.
type ElementKind int

// Element kinds; anything not named vertex, face or edge is KindOther.
const (
	KindOther ElementKind = iota
	KindVertex
	KindFace
	KindEdge
)

func (k ElementKind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindFace:
		return "face"
	case KindEdge:
		return "edge"
	case KindOther:
	}
	return "other"
}

func kindOf(name string) ElementKind {
	switch strings.ToLower(name) {
	case "vertex":
		return KindVertex
	case "face":
		return KindFace
	case "edge":
		return KindEdge
	}
	return KindOther
}

// ElementDescriptor is a named, counted collection of records. Properties are in declaration
// order, which is the order fields appear in every record in both ascii and binary data.
type ElementDescriptor struct {
	Name       string
	Count      int
	Properties []PropertyDescriptor
}

// Kind returns the element's kind derived from its name.
func (e *ElementDescriptor) Kind() ElementKind {
	return kindOf(e.Name)
}

// Property returns the position of the first property named name, compared case-insensitively.
func (e *ElementDescriptor) Property(name string) (int, bool) {
	for i, p := range e.Properties {
		if strings.EqualFold(p.Name, name) {
			return i, true
		}
	}
	return -1, false
}

// String renders the element as its header lines.
func (e *ElementDescriptor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "element %s %d", e.Name, e.Count)
	for _, p := range e.Properties {
		sb.WriteString("\n")
		sb.WriteString(p.String())
	}
	return sb.String()
}

// Classification is what kind of geometry a header describes.
type Classification int

// Classifications, decided when the header ends.
const (
	NoGeometry Classification = iota
	PointsOnly
	Polyhedron
)

func (c Classification) String() string {
	switch c {
	case PointsOnly:
		return "points"
	case Polyhedron:
		return "polyhedron"
	case NoGeometry:
	}
	return "none"
}

// TextureReference is a texture image named by a "comment TextureFile <name>" header line.
// Path is LocalName resolved against the directory of the decoded file; Resolved is false when
// the file's location was unknown.
type TextureReference struct {
	LocalName string
	Index     int
	Path      string
	Resolved  bool
}

// FileDescriptor is everything a header declares. Elements with a zero count are not listed.
// It is never modified after the header is parsed.
type FileDescriptor struct {
	Format   Format
	Version  string
	Elements []*ElementDescriptor
	Comments []string
	ObjInfo  []string
	Textures []TextureReference

	// HeaderLineCount is the number of lines up to and including end_header.
	HeaderLineCount int

	VertexCount      int
	FaceCount        int
	EdgeCount        int
	VertexDimensions int
	Classification   Classification
}

// Element returns the first element named name, compared case-insensitively.
func (fd *FileDescriptor) Element(name string) *ElementDescriptor {
	for _, e := range fd.Elements {
		if strings.EqualFold(e.Name, name) {
			return e
		}
	}
	return nil
}
