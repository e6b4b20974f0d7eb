package binutil

import (
	"encoding/binary"
	"math"

	"github.com/signadot/ls-format/go-ls/resource"
)

// Reader is a little endian cursor over an in-memory buffer. Reads past the
// end fail with a *resource.FormatError rather than panicking, so corrupt
// lengths and offsets in a file surface as format errors.
type Reader struct {
	data []byte
	pos  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) Pos() int64 { return int64(r.pos) }

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int64 { return int64(len(r.data)) }

func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// Seek moves the cursor to the absolute offset off.
func (r *Reader) Seek(off int64) error {
	if off < 0 || off > int64(len(r.data)) {
		return resource.FormatErrorAt(r.Pos(), "seek to %d outside of %d byte stream", off, len(r.data))
	}
	r.pos = int(off)
	return nil
}

// Bytes returns the next n bytes. The result aliases the buffer.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, resource.FormatErrorAt(r.Pos(), "negative length %d", n)
	}
	if n > r.Remaining() {
		return nil, resource.FormatErrorAt(r.Pos(), "truncated: need %d bytes, %d remaining", n, r.Remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) U8() (uint8, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) U16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) U32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

func (r *Reader) U64() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	return math.Float32frombits(v), err
}

func (r *Reader) F64() (float64, error) {
	v, err := r.U64()
	return math.Float64frombits(v), err
}
