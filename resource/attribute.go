package resource

import (
	"bytes"
	"fmt"
	"math"
	"slices"
)

// TranslatedString is localizable text: the displayed value and the handle
// used to look up translations.
type TranslatedString struct {
	Value  string
	Handle string
}

// NodeAttribute is a typed value. The dynamic type of Value is determined by
// Type:
//
//	DTNone                          nil
//	DTByte, DTInt8                  uint8, int8
//	DTShort, DTUShort               int16, uint16
//	DTInt, DTUInt                   int32, uint32
//	DTLong, DTULongLong             int64, uint64
//	DTFloat, DTDouble               float32, float64
//	DTBool                          bool
//	DTIVec2..DTIVec4                []int32 (2..4 elements)
//	DTVec2..DTMat4                  []float32 (2..16 elements)
//	string kinds                    string
//	DTTranslatedString              TranslatedString
//	DTScratchBuffer                 []byte
type NodeAttribute struct {
	Type  DataType
	Value any
}

// NewAttribute returns an attribute of type t holding v, failing when v does
// not have the shape t requires.
func NewAttribute(t DataType, v any) (NodeAttribute, error) {
	a := NodeAttribute{Type: t, Value: v}
	if err := a.Validate(); err != nil {
		return NodeAttribute{}, err
	}
	return a, nil
}

func FromByte(v uint8) NodeAttribute      { return NodeAttribute{Type: DTByte, Value: v} }
func FromInt8(v int8) NodeAttribute       { return NodeAttribute{Type: DTInt8, Value: v} }
func FromInt16(v int16) NodeAttribute     { return NodeAttribute{Type: DTShort, Value: v} }
func FromUInt16(v uint16) NodeAttribute   { return NodeAttribute{Type: DTUShort, Value: v} }
func FromInt32(v int32) NodeAttribute     { return NodeAttribute{Type: DTInt, Value: v} }
func FromUInt32(v uint32) NodeAttribute   { return NodeAttribute{Type: DTUInt, Value: v} }
func FromInt64(v int64) NodeAttribute     { return NodeAttribute{Type: DTLong, Value: v} }
func FromUInt64(v uint64) NodeAttribute   { return NodeAttribute{Type: DTULongLong, Value: v} }
func FromFloat32(v float32) NodeAttribute { return NodeAttribute{Type: DTFloat, Value: v} }
func FromFloat64(v float64) NodeAttribute { return NodeAttribute{Type: DTDouble, Value: v} }
func FromBool(v bool) NodeAttribute       { return NodeAttribute{Type: DTBool, Value: v} }
func FromBuffer(v []byte) NodeAttribute   { return NodeAttribute{Type: DTScratchBuffer, Value: v} }

func FromTranslatedString(value, handle string) NodeAttribute {
	return NodeAttribute{Type: DTTranslatedString, Value: TranslatedString{Value: value, Handle: handle}}
}

// FromString returns a string attribute. t must be one of the string kinds
// (DTString, DTPath, DTFixedString, DTLSString, DTWString, DTLSWString).
func FromString(t DataType, v string) NodeAttribute {
	if !t.IsString() {
		panic(fmt.Sprintf("resource: %s is not a string type", t))
	}
	return NodeAttribute{Type: t, Value: v}
}

// FromFloats returns a float vector or matrix attribute.
func FromFloats(t DataType, vs ...float32) NodeAttribute {
	return NodeAttribute{Type: t, Value: vs}
}

// FromInts returns an integer vector attribute.
func FromInts(t DataType, vs ...int32) NodeAttribute {
	return NodeAttribute{Type: t, Value: vs}
}

// Validate checks that the value has the shape implied by the type.
func (a NodeAttribute) Validate() error {
	if !a.Type.Valid() {
		return FormatErrorf("unsupported attribute data type: %d", uint32(a.Type))
	}
	ok := false
	switch a.Type {
	case DTNone:
		ok = a.Value == nil
	case DTByte:
		_, ok = a.Value.(uint8)
	case DTInt8:
		_, ok = a.Value.(int8)
	case DTShort:
		_, ok = a.Value.(int16)
	case DTUShort:
		_, ok = a.Value.(uint16)
	case DTInt:
		_, ok = a.Value.(int32)
	case DTUInt:
		_, ok = a.Value.(uint32)
	case DTLong:
		_, ok = a.Value.(int64)
	case DTULongLong:
		_, ok = a.Value.(uint64)
	case DTFloat:
		_, ok = a.Value.(float32)
	case DTDouble:
		_, ok = a.Value.(float64)
	case DTBool:
		_, ok = a.Value.(bool)
	case DTTranslatedString:
		_, ok = a.Value.(TranslatedString)
	case DTScratchBuffer:
		_, ok = a.Value.([]byte)
	default:
		switch {
		case a.Type.IsString():
			_, ok = a.Value.(string)
		case a.Type.isIntVector():
			var v []int32
			v, ok = a.Value.([]int32)
			ok = ok && len(v) == kinds[a.Type].count
		case a.Type.isFloatVector():
			var v []float32
			v, ok = a.Value.([]float32)
			ok = ok && len(v) == kinds[a.Type].count
		}
	}
	if !ok {
		return FormatErrorf("value %T (%v) does not match attribute type %s", a.Value, a.Value, a.Type)
	}
	return nil
}

// Equal reports whether a and b have the same type and value. Floating point
// values are compared by bit pattern, so NaN equals itself.
func (a NodeAttribute) Equal(b NodeAttribute) bool {
	if a.Type != b.Type {
		return false
	}
	switch x := a.Value.(type) {
	case float32:
		y, ok := b.Value.(float32)
		return ok && math.Float32bits(x) == math.Float32bits(y)
	case float64:
		y, ok := b.Value.(float64)
		return ok && math.Float64bits(x) == math.Float64bits(y)
	case []float32:
		y, ok := b.Value.([]float32)
		return ok && slices.EqualFunc(x, y, func(p, q float32) bool {
			return math.Float32bits(p) == math.Float32bits(q)
		})
	case []int32:
		y, ok := b.Value.([]int32)
		return ok && slices.Equal(x, y)
	case []byte:
		y, ok := b.Value.([]byte)
		return ok && bytes.Equal(x, y)
	default:
		return a.Value == b.Value
	}
}

func (a NodeAttribute) String() string {
	s, err := FormatValue(a)
	if err != nil {
		return fmt.Sprintf("%s(%v)", a.Type, a.Value)
	}
	if ts, ok := a.Value.(TranslatedString); ok {
		return fmt.Sprintf("%s(%q, handle=%q)", a.Type, s, ts.Handle)
	}
	return fmt.Sprintf("%s(%s)", a.Type, s)
}
