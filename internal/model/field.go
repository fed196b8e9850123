package model

// FieldType tags the semantic type carried by a FrameField's value, per
// spec §3 and the tagged-union design note in spec §9.
type FieldType string

const (
	FieldTypeUint8  FieldType = "uint8"
	FieldTypeUint16 FieldType = "uint16"
	FieldTypeUint32 FieldType = "uint32"
	FieldTypeInt8   FieldType = "int8"
	FieldTypeInt16  FieldType = "int16"
	FieldTypeInt32  FieldType = "int32"
	FieldTypeFloat  FieldType = "float"
	FieldTypeString FieldType = "string"
	FieldTypeBytes  FieldType = "bytes"
)

// FieldValue is a tagged union holding exactly one of the members
// selected by the owning FrameField's Type.
type FieldValue struct {
	Uint8  uint8
	Uint16 uint16
	Uint32 uint32
	Int8   int8
	Int16  int16
	Int32  int32
	Float  float64
	String string
	Bytes  []byte
}

// FrameField is one decoded field within a DecodedFrame.
type FrameField struct {
	Name    string
	Type    FieldType
	Value   FieldValue
	Raw     []byte
	Offset  int
	Scaling float64
	Unit    string
}

func FieldUint8(name string, v uint8, raw []byte, offset int) FrameField {
	return FrameField{Name: name, Type: FieldTypeUint8, Value: FieldValue{Uint8: v}, Raw: raw, Offset: offset}
}

func FieldUint16(name string, v uint16, raw []byte, offset int) FrameField {
	return FrameField{Name: name, Type: FieldTypeUint16, Value: FieldValue{Uint16: v}, Raw: raw, Offset: offset}
}

func FieldUint32(name string, v uint32, raw []byte, offset int) FrameField {
	return FrameField{Name: name, Type: FieldTypeUint32, Value: FieldValue{Uint32: v}, Raw: raw, Offset: offset}
}

func FieldBool(name string, v bool, raw []byte, offset int) FrameField {
	var u uint8
	if v {
		u = 1
	}
	return FrameField{Name: name, Type: FieldTypeUint8, Value: FieldValue{Uint8: u}, Raw: raw, Offset: offset}
}

func FieldString(name string, v string, raw []byte, offset int) FrameField {
	return FrameField{Name: name, Type: FieldTypeString, Value: FieldValue{String: v}, Raw: raw, Offset: offset}
}

func FieldBytes(name string, v []byte, offset int) FrameField {
	return FrameField{Name: name, Type: FieldTypeBytes, Value: FieldValue{Bytes: v}, Raw: v, Offset: offset}
}

func FieldFloatScaled(name string, v float64, unit string, raw []byte, offset int, scaling float64) FrameField {
	return FrameField{Name: name, Type: FieldTypeFloat, Value: FieldValue{Float: v}, Raw: raw, Offset: offset, Scaling: scaling, Unit: unit}
}

// ChecksumInfo reports one checksum/CRC validation result attached to a
// DecodedFrame, per spec §3.
type ChecksumInfo struct {
	Type       string
	Expected   uint64
	Calculated uint64
	Valid      bool
}

// DecodedFrame is the codec's total-function output for one raw frame.
type DecodedFrame struct {
	Protocol string
	Fields   []FrameField
	Checksum *ChecksumInfo
	Metadata map[string]string
}
