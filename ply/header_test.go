package ply

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"

	"go.viam.com/test"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"go.viam.com/ply/logging"
)

func parseTestHeader(t *testing.T, text, source string) (*header, *bufio.Reader, error) {
	t.Helper()
	r := bufio.NewReader(strings.NewReader(text))
	hdr, err := parseHeader(r, nil, source, logging.NewTestLogger(t), nil)
	return hdr, r, err
}

func TestParseHeader(t *testing.T) {
	text := strings.Join([]string{
		"ply",
		"format binary_little_endian 1.0",
		"comment made by hand",
		"comment TextureFile wood.png",
		"obj_info scanner 7",
		"",
		"element vertex 8",
		"property float x",
		"property float y",
		"property float z",
		"property uchar red",
		"element material 0",
		"property float shine",
		"element face 6",
		"property list uchar int vertex_indices",
		"element edge 0",
		"property int vertex1",
		"property int vertex2",
		"end_header",
		"DATA",
	}, "\n")

	hdr, r, err := parseTestHeader(t, text, "/models/box.ply")
	test.That(t, err, test.ShouldBeNil)

	test.That(t, hdr.Format, test.ShouldEqual, FormatBinaryLittleEndian)
	test.That(t, hdr.Version, test.ShouldEqual, "1.0")
	test.That(t, hdr.Comments, test.ShouldResemble, []string{"made by hand"})
	test.That(t, hdr.ObjInfo, test.ShouldResemble, []string{"scanner 7"})
	test.That(t, hdr.Textures, test.ShouldResemble, []TextureReference{
		{LocalName: "wood.png", Index: 0, Path: "/models/wood.png", Resolved: true},
	})
	test.That(t, hdr.HeaderLineCount, test.ShouldEqual, 19)
	test.That(t, hdr.VertexCount, test.ShouldEqual, 8)
	test.That(t, hdr.FaceCount, test.ShouldEqual, 6)
	test.That(t, hdr.EdgeCount, test.ShouldEqual, 0)
	test.That(t, hdr.VertexDimensions, test.ShouldEqual, 3)
	test.That(t, hdr.Classification, test.ShouldEqual, Polyhedron)

	// zero count elements are pruned after classification
	test.That(t, hdr.Elements, test.ShouldHaveLength, 2)
	test.That(t, hdr.Elements[0].Name, test.ShouldEqual, "vertex")
	test.That(t, hdr.Elements[1].Name, test.ShouldEqual, "face")
	test.That(t, hdr.Element("material"), test.ShouldBeNil)
	test.That(t, hdr.Element("FACE"), test.ShouldEqual, hdr.Elements[1])
	test.That(t, hdr.Elements[1].Properties[0], test.ShouldResemble, PropertyDescriptor{
		Name: "vertex_indices", Type: TypeList, CountType: TypeUChar, ValueType: TypeInt,
	})

	// the reader is left at the first data byte
	rest, err := io.ReadAll(r)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(rest), test.ShouldEqual, "DATA")
}

func TestParseHeaderClassification(t *testing.T) {
	for _, tc := range []struct {
		name           string
		elements       string
		classification Classification
		dims           int
	}{
		{"points", "element vertex 2\nproperty float x\nproperty float y\nproperty float z\n", PointsOnly, 3},
		{"points with empty faces", "element vertex 2\nproperty float x\nproperty float y\nproperty float z\n" +
			"element face 0\nproperty list uchar int vertex_indices\n", PointsOnly, 3},
		{"planar points", "element vertex 2\nproperty float x\nproperty float y\n", PointsOnly, 2},
		{"polyhedron", "element vertex 3\nproperty float x\nproperty float y\nproperty float z\n" +
			"element face 1\nproperty list uchar int vertex_indices\n", Polyhedron, 3},
		{"wireframe", "element vertex 2\nproperty float x\nproperty float y\nproperty float z\n" +
			"element edge 1\nproperty int vertex1\nproperty int vertex2\n", Polyhedron, 3},
		{"nothing", "element material 2\nproperty float shine\n", NoGeometry, 0},
		{"faces only", "element face 2\nproperty list uchar int vertex_indices\n", NoGeometry, 0},
		{"upper case names", "element VERTEX 2\nproperty float X\nproperty float Y\nproperty float Z\n", PointsOnly, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			hdr, _, err := parseTestHeader(t, "ply\nformat ascii 1.0\n"+tc.elements+"end_header\n", "")
			test.That(t, err, test.ShouldBeNil)
			test.That(t, hdr.Classification, test.ShouldEqual, tc.classification)
			test.That(t, hdr.VertexDimensions, test.ShouldEqual, tc.dims)
		})
	}
}

func TestParseHeaderErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		text string
		kind error
		line int
	}{
		{"empty", "", ErrMalformedHeader, 1},
		{"bad magic", "plx\nformat ascii 1.0\nend_header\n", ErrMalformedHeader, 1},
		{"no format", "ply\nelement vertex 1\nend_header\n", ErrUnknownFormat, 2},
		{"unknown format", "ply\nformat binary_middle_endian 1.0\nend_header\n", ErrUnknownFormat, 2},
		{"format without version", "ply\nformat ascii\nend_header\n", ErrUnknownFormat, 2},
		{"non numeric count", "ply\nformat ascii 1.0\nelement vertex many\nend_header\n", ErrInvalidElementDeclaration, 3},
		{"negative count", "ply\nformat ascii 1.0\nelement vertex -1\nend_header\n", ErrInvalidElementDeclaration, 3},
		{"short element", "ply\nformat ascii 1.0\nelement vertex\nend_header\n", ErrInvalidElementDeclaration, 3},
		{"property first", "ply\nformat ascii 1.0\nproperty float x\nend_header\n", ErrPropertyOutsideElement, 3},
		{"unknown type", "ply\nformat ascii 1.0\nelement vertex 1\nproperty half x\nend_header\n", ErrInvalidPropertyDeclaration, 4},
		{"short property", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float\nend_header\n", ErrInvalidPropertyDeclaration, 4},
		{"short list", "ply\nformat ascii 1.0\nelement face 1\nproperty list uchar vertex_indices\nend_header\n",
			ErrInvalidPropertyDeclaration, 4},
		{"float list count", "ply\nformat ascii 1.0\nelement face 1\nproperty list float int vertex_indices\nend_header\n",
			ErrInvalidPropertyDeclaration, 4},
		{"list of lists", "ply\nformat ascii 1.0\nelement face 1\nproperty list uchar list vertex_indices\nend_header\n",
			ErrInvalidPropertyDeclaration, 4},
		{"unknown keyword", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nvertices 3\nend_header\n",
			ErrMalformedHeader, 5},
		{"no end", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\n", ErrMalformedHeader, 5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := parseTestHeader(t, tc.text, "")
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, errors.Is(err, tc.kind), test.ShouldBeTrue)

			var de *DecodeError
			test.That(t, errors.As(err, &de), test.ShouldBeTrue)
			test.That(t, de.Line, test.ShouldEqual, tc.line)
		})
	}
}

func TestParseHeaderErrorText(t *testing.T) {
	_, _, err := parseTestHeader(t, "ply\nformat ascii 1.0\nelement vertex lots\n", "")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldEqual,
		`ply: invalid element declaration: line 3 "element vertex lots": count is not a number: `+
			`strconv.Atoi: parsing "lots": invalid syntax`)
}

func TestParseHeaderErrorTextIsClipped(t *testing.T) {
	line := "element vertex " + strings.Repeat("9", 200)
	_, _, err := parseTestHeader(t, "ply\nformat ascii 1.0\n"+line+"\n", "")
	var de *DecodeError
	test.That(t, errors.As(err, &de), test.ShouldBeTrue)
	test.That(t, de.Line, test.ShouldEqual, 3)
	test.That(t, de.Text, test.ShouldHaveLength, maxErrorText+3)
	test.That(t, de.Text, test.ShouldStartWith, "element vertex 999")
	test.That(t, de.Text, test.ShouldEndWith, "...")

	test.That(t, clipText("short"), test.ShouldEqual, "short")
	test.That(t, clipText(strings.Repeat("a", maxErrorText-1)+"é"), test.ShouldEqual, strings.Repeat("a", maxErrorText-1)+"...")
}

type rejectingTransformer struct {
	transform.NopResetter
}

func (rejectingTransformer) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	return 0, 0, errors.New("undecodable")
}

func TestLineReaderKeepsUndecodableLines(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	lr := &lineReader{
		r:       bufio.NewReader(strings.NewReader("ply\r\n")),
		decoder: &encoding.Decoder{Transformer: rejectingTransformer{}},
		logger:  logger,
	}
	line, err := lr.next()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, line, test.ShouldEqual, "ply")
	test.That(t, logs.FilterMessageSnippet("cannot decode line").Len(), test.ShouldEqual, 1)
}

func TestParseHeaderCRLF(t *testing.T) {
	hdr, r, err := parseTestHeader(t,
		"ply\r\nformat ascii 1.0\r\nelement vertex 1\r\nproperty float x\r\nproperty float y\r\nend_header\r\n0 0\r\n", "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hdr.Format, test.ShouldEqual, FormatASCII)
	test.That(t, hdr.Elements[0].Properties[1].Name, test.ShouldEqual, "y")
	test.That(t, hdr.HeaderLineCount, test.ShouldEqual, 6)
	rest, err := io.ReadAll(r)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(rest), test.ShouldEqual, "0 0\r\n")
}

func TestParseHeaderTextures(t *testing.T) {
	text := "ply\nformat ascii 1.0\n" +
		"comment TextureFile a.png\n" +
		"comment texturefile sub/b.png\n" +
		"comment TextureFile with spaces.png\n" +
		"end_header\n"

	logger, logs := logging.NewObservedTestLogger(t)
	hdr, err := parseHeader(bufio.NewReader(strings.NewReader(text)), nil, "", logger, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hdr.Textures, test.ShouldHaveLength, 2)
	test.That(t, hdr.Textures[0].LocalName, test.ShouldEqual, "a.png")
	test.That(t, hdr.Textures[1].LocalName, test.ShouldEqual, "sub/b.png")
	test.That(t, hdr.Textures[1].Index, test.ShouldEqual, 1)
	test.That(t, hdr.Textures[1].Resolved, test.ShouldBeFalse)
	test.That(t, hdr.Comments, test.ShouldResemble, []string{"TextureFile with spaces.png"})
	test.That(t, logs.FilterMessageSnippet("texture path left unresolved").Len(), test.ShouldEqual, 2)
}

func TestParseHeaderDiscovery(t *testing.T) {
	text := "ply\nformat ascii 1.0\n" +
		"element vertex 1\nproperty float x\n" +
		"element face 0\nproperty list uchar int vertex_indices\n" +
		"element extra 2\nproperty int flag\n" +
		"end_header\n"

	var names []string
	_, err := parseHeader(bufio.NewReader(strings.NewReader(text)), nil, "", logging.NewTestLogger(t),
		func(e *ElementDescriptor) error {
			names = append(names, e.Name)
			return nil
		})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, names, test.ShouldResemble, []string{"vertex", "face", "extra"})

	stop := errors.New("stop")
	_, err = parseHeader(bufio.NewReader(strings.NewReader(text)), nil, "", logging.NewTestLogger(t),
		func(e *ElementDescriptor) error { return stop })
	test.That(t, err, test.ShouldEqual, stop)
}
