package ply

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"

	"go.viam.com/ply/logging"
	"go.viam.com/ply/utils"
)

const (
	magicLine        = "ply"
	endHeaderKeyword = "end_header"
	textureKeyword   = "TextureFile"
)

// header is a parsed header plus what the data decoders need beyond the FileDescriptor.
type header struct {
	*FileDescriptor

	// first-seen elements of each well-known kind; later ones of the same kind are skipped.
	vertex *ElementDescriptor
	face   *ElementDescriptor
	edge   *ElementDescriptor

	indexes map[*ElementDescriptor]*propertyIndex
}

func (h *header) index(e *ElementDescriptor) *propertyIndex {
	return h.indexes[e]
}

// lineReader reads text lines and counts them. Line numbers are 1-based.
type lineReader struct {
	r       *bufio.Reader
	decoder *encoding.Decoder
	logger  logging.Logger
	line    int
	text    string
}

// next reads the next line without its terminator. It returns io.EOF only when nothing at all
// could be read.
func (lr *lineReader) next() (string, error) {
	raw, err := lr.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && raw != "") {
		return "", err
	}
	lr.line++
	raw = strings.TrimRight(raw, "\r\n")
	if lr.decoder != nil {
		decoded, derr := lr.decoder.String(raw)
		if derr == nil {
			raw = decoded
		} else if lr.logger != nil {
			lr.logger.Debugw("cannot decode line, keeping raw bytes", "line", lr.line, "error", derr)
		}
	}
	lr.text = raw
	return raw, nil
}

type headerParser struct {
	lr       *lineReader
	source   string
	logger   logging.Logger
	discover func(e *ElementDescriptor) error

	hdr     *header
	all     []*ElementDescriptor
	current *ElementDescriptor
}

// parseHeader reads a header from r, leaving r positioned at the first byte of data.
// discover is called once for every element when its declaration is complete.
func parseHeader(
	r *bufio.Reader, dec *encoding.Decoder, source string, logger logging.Logger, discover func(e *ElementDescriptor) error,
) (*header, error) {
	hp := &headerParser{
		lr:       &lineReader{r: r, decoder: dec, logger: logger},
		source:   source,
		logger:   logger,
		discover: discover,
		hdr: &header{
			FileDescriptor: &FileDescriptor{},
			indexes:        map[*ElementDescriptor]*propertyIndex{},
		},
	}
	if err := hp.parse(); err != nil {
		return nil, err
	}
	return hp.hdr, nil
}

func (hp *headerParser) errorf(kind error, cause error, format string, args ...interface{}) error {
	return lineError(kind, hp.lr.line, hp.lr.text, cause, format, args...)
}

func (hp *headerParser) nextLine() (string, error) {
	line, err := hp.lr.next()
	if errors.Is(err, io.EOF) {
		return "", lineError(ErrMalformedHeader, hp.lr.line+1, "", nil, "header ended before %s", endHeaderKeyword)
	}
	if err != nil {
		return "", hp.errorf(ErrMalformedHeader, err, "cannot read header")
	}
	return line, nil
}

func (hp *headerParser) parse() error {
	line, err := hp.nextLine()
	if err != nil {
		return err
	}
	if strings.TrimSpace(line) != magicLine {
		return hp.errorf(ErrMalformedHeader, nil, "expected %q", magicLine)
	}

	line, err = hp.nextLine()
	if err != nil {
		return err
	}
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != "format" || FormatOf(fields[1]) == FormatUnknown {
		return hp.errorf(ErrUnknownFormat, nil, "expected format ascii, binary_little_endian or binary_big_endian")
	}
	hp.hdr.Format = FormatOf(fields[1])
	hp.hdr.Version = fields[2]

	for {
		line, err := hp.nextLine()
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "comment":
			hp.comment(line, fields)
		case "obj_info":
			hp.hdr.ObjInfo = append(hp.hdr.ObjInfo, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "obj_info")))
		case "element":
			if err := hp.element(fields); err != nil {
				return err
			}
		case "property":
			if err := hp.property(fields); err != nil {
				return err
			}
		case endHeaderKeyword:
			if err := hp.closeElement(); err != nil {
				return err
			}
			hp.hdr.HeaderLineCount = hp.lr.line
			hp.finish()
			return nil
		default:
			return hp.errorf(ErrMalformedHeader, nil, "unknown keyword %q", fields[0])
		}
	}
}

func (hp *headerParser) comment(line string, fields []string) {
	if len(fields) == 3 && strings.EqualFold(fields[1], textureKeyword) {
		ref := TextureReference{LocalName: fields[2], Index: len(hp.hdr.Textures)}
		ref.Path, ref.Resolved = utils.ResolveSibling(hp.source, ref.LocalName)
		if !ref.Resolved {
			hp.logger.Warnw("texture path left unresolved, source location unknown", "texture", ref.LocalName, "line", hp.lr.line)
		}
		hp.hdr.Textures = append(hp.hdr.Textures, ref)
		return
	}
	hp.hdr.Comments = append(hp.hdr.Comments, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "comment")))
}

func (hp *headerParser) element(fields []string) error {
	if len(fields) != 3 {
		return hp.errorf(ErrInvalidElementDeclaration, nil, "expected element <name> <count>")
	}
	count, err := strconv.Atoi(fields[2])
	if err != nil {
		return hp.errorf(ErrInvalidElementDeclaration, err, "count is not a number")
	}
	if count < 0 {
		return hp.errorf(ErrInvalidElementDeclaration, nil, "count %d is negative", count)
	}
	if err := hp.closeElement(); err != nil {
		return err
	}
	hp.current = &ElementDescriptor{Name: fields[1], Count: count}
	return nil
}

func (hp *headerParser) property(fields []string) error {
	if hp.current == nil {
		return hp.errorf(ErrPropertyOutsideElement, nil, "no element declared")
	}
	if len(fields) >= 2 && fields[1] == "list" {
		if len(fields) != 5 {
			return hp.errorf(ErrInvalidPropertyDeclaration, nil, "expected property list <count type> <value type> <name>")
		}
		countType, valueType := TypeOf(fields[2]), TypeOf(fields[3])
		if !countType.IsIntegral() {
			return hp.errorf(ErrInvalidPropertyDeclaration, nil, "list count type %q is not an integer type", fields[2])
		}
		if !valueType.IsScalar() {
			return hp.errorf(ErrInvalidPropertyDeclaration, nil, "list value type %q is not a scalar type", fields[3])
		}
		hp.current.Properties = append(hp.current.Properties, PropertyDescriptor{
			Name:      fields[4],
			Type:      TypeList,
			CountType: countType,
			ValueType: valueType,
		})
		return nil
	}
	if len(fields) != 3 {
		return hp.errorf(ErrInvalidPropertyDeclaration, nil, "expected property <type> <name>")
	}
	t := TypeOf(fields[1])
	if !t.IsScalar() {
		return hp.errorf(ErrInvalidPropertyDeclaration, nil, "type %q is not a scalar type", fields[1])
	}
	hp.current.Properties = append(hp.current.Properties, PropertyDescriptor{Name: fields[2], Type: t})
	return nil
}

func (hp *headerParser) closeElement() error {
	e := hp.current
	if e == nil {
		return nil
	}
	hp.current = nil
	hp.all = append(hp.all, e)
	switch e.Kind() {
	case KindVertex:
		if hp.hdr.vertex == nil {
			hp.hdr.vertex = e
		}
	case KindFace:
		if hp.hdr.face == nil {
			hp.hdr.face = e
		}
	case KindEdge:
		if hp.hdr.edge == nil {
			hp.hdr.edge = e
		}
	case KindOther:
	}
	if hp.discover != nil {
		return hp.discover(e)
	}
	return nil
}

// finish classifies the header, derives property indexes and drops empty elements.
func (hp *headerParser) finish() {
	fd := hp.hdr.FileDescriptor
	if v := hp.hdr.vertex; v != nil {
		fd.VertexCount = v.Count
		fd.VertexDimensions = 2
		if _, ok := v.Property("z"); ok {
			fd.VertexDimensions = 3
		}
	}
	if f := hp.hdr.face; f != nil {
		fd.FaceCount = f.Count
	}
	if e := hp.hdr.edge; e != nil {
		fd.EdgeCount = e.Count
	}
	switch {
	case hp.hdr.vertex != nil && (fd.FaceCount > 0 || fd.EdgeCount > 0):
		fd.Classification = Polyhedron
	case hp.hdr.vertex != nil:
		fd.Classification = PointsOnly
	default:
		fd.Classification = NoGeometry
	}

	for _, e := range []*ElementDescriptor{hp.hdr.vertex, hp.hdr.face} {
		if e != nil {
			hp.hdr.indexes[e] = newPropertyIndex(e)
		}
	}
	for _, e := range hp.all {
		if e.Count > 0 {
			fd.Elements = append(fd.Elements, e)
		}
	}
}
