package ply

import (
	"encoding/binary"
)

// PrimitiveType is the type of a property value as declared in a PLY header.
type PrimitiveType int

// The PLY primitive types. TypeUnknown is returned for any unrecognized name and is never valid
// in a decodable header.
const (
	TypeUnknown PrimitiveType = iota
	TypeChar
	TypeUChar
	TypeShort
	TypeUShort
	TypeInt
	TypeUInt
	TypeFloat
	TypeDouble
	TypeList
)

var typeNames = [...]string{
	TypeUnknown: "unknown",
	TypeChar:    "char",
	TypeUChar:   "uchar",
	TypeShort:   "short",
	TypeUShort:  "ushort",
	TypeInt:     "int",
	TypeUInt:    "uint",
	TypeFloat:   "float",
	TypeDouble:  "double",
	TypeList:    "list",
}

var typeWidths = [...]int{
	TypeChar:   1,
	TypeUChar:  1,
	TypeShort:  2,
	TypeUShort: 2,
	TypeInt:    4,
	TypeUInt:   4,
	TypeFloat:  4,
	TypeDouble: 8,
	TypeList:   0,
}

// sized aliases written by most modern exporters.
var typesByName = map[string]PrimitiveType{
	"char":    TypeChar,
	"uchar":   TypeUChar,
	"short":   TypeShort,
	"ushort":  TypeUShort,
	"int":     TypeInt,
	"uint":    TypeUInt,
	"float":   TypeFloat,
	"double":  TypeDouble,
	"list":    TypeList,
	"int8":    TypeChar,
	"uint8":   TypeUChar,
	"int16":   TypeShort,
	"uint16":  TypeUShort,
	"int32":   TypeInt,
	"uint32":  TypeUInt,
	"float32": TypeFloat,
	"float64": TypeDouble,
}

// TypeOf returns the type with the given name or TypeUnknown.
func TypeOf(name string) PrimitiveType {
	if t, ok := typesByName[name]; ok {
		return t
	}
	return TypeUnknown
}

// WidthOf returns the encoded width in bytes of a scalar type, 0 for TypeUnknown and TypeList.
func WidthOf(t PrimitiveType) int {
	if t <= TypeUnknown || t > TypeList {
		return 0
	}
	return typeWidths[t]
}

// String returns the canonical header name of the type.
func (t PrimitiveType) String() string {
	if t < TypeUnknown || t > TypeList {
		return typeNames[TypeUnknown]
	}
	return typeNames[t]
}

// IsScalar is true for every fixed width type.
func (t PrimitiveType) IsScalar() bool {
	return WidthOf(t) > 0
}

// IsIntegral is true for the scalar integer types, the only ones allowed as list counts.
func (t PrimitiveType) IsIntegral() bool {
	return t.IsScalar() && t != TypeFloat && t != TypeDouble
}

// IsFloat is true for float and double.
func (t PrimitiveType) IsFloat() bool {
	return t == TypeFloat || t == TypeDouble
}

// Format is the encoding of the data section of a PLY file.
type Format int

// The formats a header can declare.
const (
	FormatUnknown Format = iota
	FormatASCII
	FormatBinaryLittleEndian
	FormatBinaryBigEndian
)

var formatTokens = map[string]Format{
	"ascii":                FormatASCII,
	"binary_little_endian": FormatBinaryLittleEndian,
	"binary_big_endian":    FormatBinaryBigEndian,
}

// FormatOf returns the format named by a header token or FormatUnknown.
func FormatOf(token string) Format {
	return formatTokens[token]
}

func (f Format) String() string {
	for token, format := range formatTokens {
		if format == f {
			return token
		}
	}
	return "unknown"
}

// IsBinary is true for both binary encodings.
func (f Format) IsBinary() bool {
	return f == FormatBinaryLittleEndian || f == FormatBinaryBigEndian
}

// ByteOrder returns the byte order of a binary format, nil for ascii.
func (f Format) ByteOrder() binary.ByteOrder {
	switch f {
	case FormatBinaryLittleEndian:
		return binary.LittleEndian
	case FormatBinaryBigEndian:
		return binary.BigEndian
	case FormatUnknown, FormatASCII:
	}
	return nil
}
