package ply

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Decoding failures. Every error a decode returns, other than one raised by a listener, wraps
// exactly one of these; test with errors.Is.
var (
	ErrMalformedHeader            = errors.New("malformed header")
	ErrUnknownFormat              = errors.New("unknown format")
	ErrInvalidElementDeclaration  = errors.New("invalid element declaration")
	ErrPropertyOutsideElement     = errors.New("property outside element")
	ErrInvalidPropertyDeclaration = errors.New("invalid property declaration")
	ErrInvalidVertexRecord        = errors.New("invalid vertex record")
	ErrInvalidFaceRecord          = errors.New("invalid face record")
	ErrElementCountMismatch       = errors.New("element count mismatch")
	ErrUnsupportedPropertyType    = errors.New("unsupported property type")
	ErrUnexpectedEndOfStream      = errors.New("unexpected end of stream")
	ErrUnsupportedGeometry        = errors.New("unsupported geometry")
)

// DecodeError locates a decoding failure. Text positions (Line, Text) are set for header and
// ascii failures, Element/Property/Instance for binary and assembly failures.
type DecodeError struct {
	Kind error

	Line int
	Text string // at most maxErrorText bytes of the line

	Element  string
	Property string
	Instance int

	Detail string
	Err    error
}

func (e *DecodeError) Error() string {
	parts := []string{"ply: " + e.Kind.Error()}
	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("line %d %q", e.Line, e.Text))
	}
	if e.Element != "" {
		loc := "element " + e.Element
		if e.Instance >= 0 {
			loc += fmt.Sprintf("[%d]", e.Instance)
		}
		if e.Property != "" {
			loc += " property " + e.Property
		}
		parts = append(parts, loc)
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap exposes both the failure kind and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// maxErrorText is how much of an offending line a DecodeError keeps.
const maxErrorText = 80

// clipText shortens text to at most maxErrorText bytes without splitting a rune.
func clipText(text string) string {
	if len(text) <= maxErrorText {
		return text
	}
	cut := maxErrorText
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func lineError(kind error, line int, text string, cause error, format string, args ...interface{}) error {
	return &DecodeError{
		Kind:     kind,
		Line:     line,
		Text:     clipText(text),
		Instance: -1,
		Detail:   fmt.Sprintf(format, args...),
		Err:      cause,
	}
}

func elementError(
	kind error, element *ElementDescriptor, property string, instance int, cause error, format string, args ...interface{},
) error {
	de := &DecodeError{
		Kind:     kind,
		Property: property,
		Instance: instance,
		Detail:   fmt.Sprintf(format, args...),
		Err:      cause,
	}
	if element != nil {
		de.Element = element.Name
	}
	return de
}

func recordError(
	kind error, line int, text string, element *ElementDescriptor, instance int, cause error, format string, args ...interface{},
) error {
	de := &DecodeError{
		Kind:     kind,
		Line:     line,
		Text:     clipText(text),
		Instance: instance,
		Detail:   fmt.Sprintf(format, args...),
		Err:      cause,
	}
	if element != nil {
		de.Element = element.Name
	}
	return de
}

// position is where in the data section a record is being decoded. line is 0 for binary data.
type position struct {
	line     int
	text     string
	element  *ElementDescriptor
	instance int
}

func (p position) fail(kind, cause error, format string, args ...interface{}) error {
	return recordError(kind, p.line, p.text, p.element, p.instance, cause, format, args...)
}

func (p position) failProperty(kind, cause error, property string, format string, args ...interface{}) error {
	err := p.fail(kind, cause, format, args...)
	//nolint:errorlint
	err.(*DecodeError).Property = property
	return err
}
