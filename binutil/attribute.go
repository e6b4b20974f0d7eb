package binutil

import (
	"encoding/binary"
	"math"

	"github.com/signadot/ls-format/go-ls/resource"
)

// ReadAttribute decodes a fixed width attribute of type t. Variable length
// and unknown types are rejected: their width is not implied by the type.
func ReadAttribute(r *Reader, t resource.DataType) (resource.NodeAttribute, error) {
	size, count, ok := t.FixedSize()
	if !ok {
		return resource.NodeAttribute{}, resource.FormatErrorAt(r.Pos(), "unsupported or invalid attribute type %d", uint32(t))
	}
	b, err := r.Bytes(size * count)
	if err != nil {
		return resource.NodeAttribute{}, err
	}
	le := binary.LittleEndian
	a := resource.NodeAttribute{Type: t}
	switch t {
	case resource.DTNone:
	case resource.DTByte:
		a.Value = b[0]
	case resource.DTInt8:
		a.Value = int8(b[0])
	case resource.DTBool:
		a.Value = b[0] != 0
	case resource.DTShort:
		a.Value = int16(le.Uint16(b))
	case resource.DTUShort:
		a.Value = le.Uint16(b)
	case resource.DTInt:
		a.Value = int32(le.Uint32(b))
	case resource.DTUInt:
		a.Value = le.Uint32(b)
	case resource.DTLong:
		a.Value = int64(le.Uint64(b))
	case resource.DTULongLong:
		a.Value = le.Uint64(b)
	case resource.DTFloat:
		a.Value = math.Float32frombits(le.Uint32(b))
	case resource.DTDouble:
		a.Value = math.Float64frombits(le.Uint64(b))
	case resource.DTIVec2, resource.DTIVec3, resource.DTIVec4:
		v := make([]int32, count)
		for i := range v {
			v[i] = int32(le.Uint32(b[i*size:]))
		}
		a.Value = v
	default:
		v := make([]float32, count)
		for i := range v {
			v[i] = math.Float32frombits(le.Uint32(b[i*size:]))
		}
		a.Value = v
	}
	return a, nil
}

// WriteAttribute encodes a fixed width attribute, writing exactly
// a.Type.Width() bytes.
func WriteAttribute(w *Writer, a resource.NodeAttribute) error {
	if a.Type.IsVariable() {
		return resource.FormatErrorf("attribute type %s is not fixed width", a.Type)
	}
	if err := a.Validate(); err != nil {
		return err
	}
	switch v := a.Value.(type) {
	case nil:
	case uint8:
		w.U8(v)
	case int8:
		w.U8(uint8(v))
	case bool:
		if v {
			w.U8(1)
		} else {
			w.U8(0)
		}
	case int16:
		w.U16(uint16(v))
	case uint16:
		w.U16(v)
	case int32:
		w.I32(v)
	case uint32:
		w.U32(v)
	case int64:
		w.U64(uint64(v))
	case uint64:
		w.U64(v)
	case float32:
		w.F32(v)
	case float64:
		w.F64(v)
	case []int32:
		for _, x := range v {
			w.I32(x)
		}
	case []float32:
		for _, x := range v {
			w.F32(x)
		}
	}
	return nil
}
