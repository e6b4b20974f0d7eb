package binutil

import (
	"math"

	"golang.org/x/text/encoding/unicode"

	"github.com/signadot/ls-format/go-ls/resource"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// ReadString reads an i32 length followed by that many bytes of UTF-8. The
// length counts a trailing NUL.
//
// With terminated set, length-1 bytes of text are read followed by a
// separate terminator byte. Some writers store stray NULs (or a NUL and a
// stray byte) at the end of the text; trailing NULs are stripped from the
// value and, when any were stripped, a non-zero terminator is tolerated.
//
// Without terminated, all length bytes are read and trailing NULs stripped.
func ReadString(r *Reader, terminated bool) (string, error) {
	at := r.Pos()
	n, err := r.I32()
	if err != nil {
		return "", err
	}
	if terminated {
		n--
	}
	if n < 0 {
		return "", resource.FormatErrorAt(at, "invalid string length %d", n)
	}
	b, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	end := len(b)
	stripped := false
	for end > 0 && b[end-1] == 0 {
		end--
		stripped = true
	}
	s := string(b[:end])
	if terminated {
		tAt := r.Pos()
		t, err := r.U8()
		if err != nil {
			return "", err
		}
		if t != 0 && !stripped {
			return "", resource.FormatErrorAt(tAt, "illegal null terminated string")
		}
	}
	return s, nil
}

// ReadWideString reads an i32 count of UTF-16LE code units (counting the
// terminator), the units, and a zero terminator unit.
func ReadWideString(r *Reader) (string, error) {
	at := r.Pos()
	n, err := r.I32()
	if err != nil {
		return "", err
	}
	n--
	if n < 0 || int64(n)*2 > math.MaxInt32 {
		return "", resource.FormatErrorAt(at, "invalid wide string length %d", n)
	}
	b, err := r.Bytes(int(n) * 2)
	if err != nil {
		return "", err
	}
	tAt := r.Pos()
	t, err := r.U16()
	if err != nil {
		return "", err
	}
	if t != 0 {
		return "", resource.FormatErrorAt(tAt, "illegal null terminated widestring")
	}
	d, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", resource.FormatErrorAt(at, "bad wide string: %v", err)
	}
	return string(d), nil
}

// ReadBuffer reads an i32 length and that many opaque bytes.
func ReadBuffer(r *Reader) ([]byte, error) {
	at := r.Pos()
	n, err := r.I32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, resource.FormatErrorAt(at, "invalid buffer length %d", n)
	}
	b, err := r.Bytes(int(n))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// WriteString writes s in the framing read by ReadString: length including
// the terminator, the bytes, a NUL.
func WriteString(w *Writer, s string) error {
	if len(s) >= math.MaxInt32 {
		return resource.FormatErrorf("string of %d bytes is too long", len(s))
	}
	w.I32(int32(len(s) + 1))
	w.buf = append(w.buf, s...)
	w.U8(0)
	return nil
}

func WriteWideString(w *Writer, s string) error {
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return resource.FormatErrorf("cannot encode %q as UTF-16: %v", s, err)
	}
	units := len(b) / 2
	if units >= math.MaxInt32 {
		return resource.FormatErrorf("wide string of %d units is too long", units)
	}
	w.I32(int32(units + 1))
	w.buf = append(w.buf, b...)
	w.U16(0)
	return nil
}

func WriteBuffer(w *Writer, b []byte) error {
	if len(b) > math.MaxInt32 {
		return resource.FormatErrorf("buffer of %d bytes is too long", len(b))
	}
	w.I32(int32(len(b)))
	w.buf = append(w.buf, b...)
	return nil
}
