package resource

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// FormatValue renders the value of a as text, the way the textual formats
// store it. For translated strings only the value is rendered; the handle is
// stored separately.
func FormatValue(a NodeAttribute) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	switch v := a.Value.(type) {
	case nil:
		return "", nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case bool:
		if v {
			return "True", nil
		}
		return "False", nil
	case string:
		return v, nil
	case TranslatedString:
		return v.Value, nil
	case []byte:
		return base64.StdEncoding.EncodeToString(v), nil
	case []int32:
		parts := make([]string, len(v))
		for i, x := range v {
			parts[i] = strconv.FormatInt(int64(x), 10)
		}
		return strings.Join(parts, " "), nil
	case []float32:
		parts := make([]string, len(v))
		for i, x := range v {
			parts[i] = strconv.FormatFloat(float64(x), 'g', -1, 32)
		}
		return strings.Join(parts, " "), nil
	}
	return "", FormatErrorf("cannot render %T", a.Value)
}

// ParseAttribute parses the textual rendering of a value of type t. handle
// is only used for translated strings.
func ParseAttribute(t DataType, value, handle string) (NodeAttribute, error) {
	if !t.Valid() {
		return NodeAttribute{}, FormatErrorf("unsupported attribute data type: %d", uint32(t))
	}
	a := NodeAttribute{Type: t}
	var err error
	switch t {
	case DTNone:
	case DTByte:
		a.Value, err = parseUint[uint8](value, 8)
	case DTInt8:
		a.Value, err = parseInt[int8](value, 8)
	case DTShort:
		a.Value, err = parseInt[int16](value, 16)
	case DTUShort:
		a.Value, err = parseUint[uint16](value, 16)
	case DTInt:
		a.Value, err = parseInt[int32](value, 32)
	case DTUInt:
		a.Value, err = parseUint[uint32](value, 32)
	case DTLong:
		a.Value, err = parseInt[int64](value, 64)
	case DTULongLong:
		a.Value, err = parseUint[uint64](value, 64)
	case DTFloat:
		var f float64
		f, err = strconv.ParseFloat(strings.TrimSpace(value), 32)
		a.Value = float32(f)
	case DTDouble:
		a.Value, err = strconv.ParseFloat(strings.TrimSpace(value), 64)
	case DTBool:
		a.Value, err = strconv.ParseBool(strings.TrimSpace(value))
	case DTTranslatedString:
		a.Value = TranslatedString{Value: value, Handle: handle}
	case DTScratchBuffer:
		a.Value, err = base64.StdEncoding.DecodeString(value)
	default:
		switch {
		case t.IsString():
			a.Value = value
		case t.isIntVector():
			a.Value, err = parseVector(value, kinds[t].count, func(s string) (int32, error) {
				return parseInt[int32](s, 32)
			})
		case t.isFloatVector():
			a.Value, err = parseVector(value, kinds[t].count, func(s string) (float32, error) {
				f, err := strconv.ParseFloat(s, 32)
				return float32(f), err
			})
		}
	}
	if err != nil {
		return NodeAttribute{}, FormatErrorf("bad %s value %q: %v", t, value, err)
	}
	return a, nil
}

type signed interface {
	~int8 | ~int16 | ~int32 | ~int64
}
type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

func parseInt[T signed](s string, bits int) (T, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, bits)
	return T(n), err
}

func parseUint[T unsigned](s string, bits int) (T, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, bits)
	return T(n), err
}

func parseVector[T any](s string, n int, parse func(string) (T, error)) ([]T, error) {
	fields := strings.Fields(s)
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d components, got %d", n, len(fields))
	}
	res := make([]T, n)
	for i, f := range fields {
		v, err := parse(f)
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}
