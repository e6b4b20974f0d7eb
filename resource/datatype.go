package resource

import (
	"fmt"
	"strconv"
)

// DataType is the closed set of attribute kinds. The ordinals are part of
// the binary formats and must not change.
type DataType uint32

const (
	DTNone DataType = iota
	DTByte
	DTShort
	DTUShort
	DTInt
	DTUInt
	DTFloat
	DTDouble
	DTIVec2
	DTIVec3
	DTIVec4
	DTVec2
	DTVec3
	DTVec4
	DTMat2
	DTMat3
	DTMat3x4
	DTMat4x3
	DTMat4
	DTBool
	DTString
	DTPath
	DTFixedString
	DTLSString
	DTULongLong
	DTScratchBuffer
	DTLong
	DTInt8
	DTTranslatedString
	DTWString
	DTLSWString

	// DTMax is the largest valid DataType.
	DTMax = DTLSWString
)

type kindInfo struct {
	name string
	// size is the width of one element; 0 marks a variable length kind.
	size  int
	count int
}

var kinds = [...]kindInfo{
	DTNone:             {"None", 0, 0},
	DTByte:             {"uint8", 1, 1},
	DTShort:            {"int16", 2, 1},
	DTUShort:           {"uint16", 2, 1},
	DTInt:              {"int32", 4, 1},
	DTUInt:             {"uint32", 4, 1},
	DTFloat:            {"float", 4, 1},
	DTDouble:           {"double", 8, 1},
	DTIVec2:            {"ivec2", 4, 2},
	DTIVec3:            {"ivec3", 4, 3},
	DTIVec4:            {"ivec4", 4, 4},
	DTVec2:             {"fvec2", 4, 2},
	DTVec3:             {"fvec3", 4, 3},
	DTVec4:             {"fvec4", 4, 4},
	DTMat2:             {"mat2x2", 4, 4},
	DTMat3:             {"mat3x3", 4, 9},
	DTMat3x4:           {"mat3x4", 4, 12},
	DTMat4x3:           {"mat4x3", 4, 12},
	DTMat4:             {"mat4x4", 4, 16},
	DTBool:             {"bool", 1, 1},
	DTString:           {"string", 0, 0},
	DTPath:             {"path", 0, 0},
	DTFixedString:      {"FixedString", 0, 0},
	DTLSString:         {"LSString", 0, 0},
	DTULongLong:        {"uint64", 8, 1},
	DTScratchBuffer:    {"ScratchBuffer", 0, 0},
	DTLong:             {"old_int64", 8, 1},
	DTInt8:             {"int8", 1, 1},
	DTTranslatedString: {"TranslatedString", 0, 0},
	DTWString:          {"WString", 0, 0},
	DTLSWString:        {"LSWString", 0, 0},
}

var kindsByName = func() map[string]DataType {
	res := make(map[string]DataType, len(kinds))
	for i, k := range kinds {
		res[k.name] = DataType(i)
	}
	return res
}()

func (t DataType) Valid() bool { return t <= DTMax }

func (t DataType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("<unknown type %d>", uint32(t))
	}
	return kinds[t].name
}

func (t DataType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, FormatErrorf("unsupported attribute data type: %d", uint32(t))
	}
	return []byte(kinds[t].name), nil
}

func (t *DataType) UnmarshalText(d []byte) error {
	pt, err := ParseDataType(string(d))
	if err != nil {
		return err
	}
	*t = pt
	return nil
}

// ParseDataType accepts either a type name ("int32", "FixedString") or a
// decimal type id.
func ParseDataType(s string) (DataType, error) {
	if t, ok := kindsByName[s]; ok {
		return t, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, FormatErrorf("unrecognized attribute data type %q", s)
	}
	t := DataType(n)
	if !t.Valid() {
		return 0, FormatErrorf("unsupported attribute data type: %d", n)
	}
	return t, nil
}

// FixedSize returns the element width and element count of a fixed width
// kind. ok is false for variable length and invalid kinds.
func (t DataType) FixedSize() (size, count int, ok bool) {
	if !t.Valid() || t.IsVariable() {
		return 0, 0, false
	}
	k := kinds[t]
	return k.size, k.count, true
}

// Width is the encoded width in bytes of a fixed width kind, 0 otherwise.
func (t DataType) Width() int {
	size, count, _ := t.FixedSize()
	return size * count
}

// IsVariable reports whether values of t carry their own length.
func (t DataType) IsVariable() bool {
	switch t {
	case DTString, DTPath, DTFixedString, DTLSString,
		DTWString, DTLSWString, DTTranslatedString, DTScratchBuffer:
		return true
	}
	return false
}

// IsString reports whether values of t are plain strings.
func (t DataType) IsString() bool {
	switch t {
	case DTString, DTPath, DTFixedString, DTLSString, DTWString, DTLSWString:
		return true
	}
	return false
}

func (t DataType) IsWide() bool { return t == DTWString || t == DTLSWString }

func (t DataType) isIntVector() bool {
	return t >= DTIVec2 && t <= DTIVec4
}

func (t DataType) isFloatVector() bool {
	return t >= DTVec2 && t <= DTMat4
}

func DataTypes() []DataType {
	res := make([]DataType, 0, DTMax+1)
	for t := DTNone; t <= DTMax; t++ {
		res = append(res, t)
	}
	return res
}
