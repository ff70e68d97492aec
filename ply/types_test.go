package ply

import (
	"encoding/binary"
	"testing"

	"go.viam.com/test"
)

func TestTypeTable(t *testing.T) {
	for _, tc := range []struct {
		name  string
		typ   PrimitiveType
		width int
	}{
		{"char", TypeChar, 1},
		{"uchar", TypeUChar, 1},
		{"short", TypeShort, 2},
		{"ushort", TypeUShort, 2},
		{"int", TypeInt, 4},
		{"uint", TypeUInt, 4},
		{"float", TypeFloat, 4},
		{"double", TypeDouble, 8},
		{"int8", TypeChar, 1},
		{"uint8", TypeUChar, 1},
		{"int16", TypeShort, 2},
		{"uint16", TypeUShort, 2},
		{"int32", TypeInt, 4},
		{"uint32", TypeUInt, 4},
		{"float32", TypeFloat, 4},
		{"float64", TypeDouble, 8},
	} {
		t.Run(tc.name, func(t *testing.T) {
			typ := TypeOf(tc.name)
			test.That(t, typ, test.ShouldEqual, tc.typ)
			test.That(t, WidthOf(typ), test.ShouldEqual, tc.width)
			test.That(t, typ.IsScalar(), test.ShouldBeTrue)
		})
	}

	t.Run("sentinels", func(t *testing.T) {
		test.That(t, TypeOf("quaternion"), test.ShouldEqual, TypeUnknown)
		test.That(t, TypeOf("FLOAT"), test.ShouldEqual, TypeUnknown)
		test.That(t, WidthOf(TypeUnknown), test.ShouldEqual, 0)
		test.That(t, WidthOf(TypeList), test.ShouldEqual, 0)
		test.That(t, WidthOf(PrimitiveType(42)), test.ShouldEqual, 0)
		test.That(t, TypeList.IsScalar(), test.ShouldBeFalse)
		test.That(t, PrimitiveType(42).String(), test.ShouldEqual, "unknown")
	})

	t.Run("names", func(t *testing.T) {
		test.That(t, TypeOf("float32").String(), test.ShouldEqual, "float")
		test.That(t, TypeUChar.String(), test.ShouldEqual, "uchar")
		test.That(t, TypeList.String(), test.ShouldEqual, "list")
	})

	t.Run("classes", func(t *testing.T) {
		test.That(t, TypeUInt.IsIntegral(), test.ShouldBeTrue)
		test.That(t, TypeDouble.IsIntegral(), test.ShouldBeFalse)
		test.That(t, TypeFloat.IsFloat(), test.ShouldBeTrue)
		test.That(t, TypeChar.IsFloat(), test.ShouldBeFalse)
		test.That(t, TypeList.IsIntegral(), test.ShouldBeFalse)
	})
}

func TestFormat(t *testing.T) {
	test.That(t, FormatOf("ascii"), test.ShouldEqual, FormatASCII)
	test.That(t, FormatOf("binary_little_endian"), test.ShouldEqual, FormatBinaryLittleEndian)
	test.That(t, FormatOf("binary_big_endian"), test.ShouldEqual, FormatBinaryBigEndian)
	test.That(t, FormatOf("binary"), test.ShouldEqual, FormatUnknown)

	test.That(t, FormatASCII.IsBinary(), test.ShouldBeFalse)
	test.That(t, FormatASCII.ByteOrder(), test.ShouldBeNil)
	test.That(t, FormatBinaryLittleEndian.ByteOrder(), test.ShouldResemble, binary.LittleEndian)
	test.That(t, FormatBinaryBigEndian.ByteOrder(), test.ShouldResemble, binary.BigEndian)
	test.That(t, FormatBinaryBigEndian.String(), test.ShouldEqual, "binary_big_endian")
	test.That(t, FormatUnknown.String(), test.ShouldEqual, "unknown")
}

func TestDecodeScalar(t *testing.T) {
	test.That(t, decodeScalar(binary.LittleEndian, TypeChar, []byte{0xff}), test.ShouldEqual, -1.0)
	test.That(t, decodeScalar(binary.LittleEndian, TypeUChar, []byte{0xff}), test.ShouldEqual, 255.0)
	test.That(t, decodeScalar(binary.LittleEndian, TypeShort, []byte{0xfe, 0xff}), test.ShouldEqual, -2.0)
	test.That(t, decodeScalar(binary.BigEndian, TypeShort, []byte{0xff, 0xfe}), test.ShouldEqual, -2.0)
	test.That(t, decodeScalar(binary.BigEndian, TypeUShort, []byte{0x01, 0x00}), test.ShouldEqual, 256.0)
	test.That(t, decodeScalar(binary.LittleEndian, TypeInt, []byte{0xff, 0xff, 0xff, 0xff}), test.ShouldEqual, -1.0)
	test.That(t, decodeScalar(binary.LittleEndian, TypeUInt, []byte{0xff, 0xff, 0xff, 0xff}), test.ShouldEqual, 4294967295.0)
	test.That(t, decodeScalar(binary.BigEndian, TypeFloat, []byte{0x3f, 0xc0, 0, 0}), test.ShouldEqual, 1.5)
	test.That(t, decodeScalar(binary.LittleEndian, TypeDouble, []byte{0, 0, 0, 0, 0, 0, 0xf8, 0x3f}), test.ShouldEqual, 1.5)
}
