package binutil

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/ls-format/go-ls/resource"
	"github.com/signadot/ls-format/go-ls/resource/restest"
)

func TestAttributeRoundTrip(t *testing.T) {
	for name, a := range restest.AllTypes() {
		if a.Type.IsVariable() {
			continue
		}
		t.Run(name, func(t *testing.T) {
			w := NewWriter()
			if err := WriteAttribute(w, a); err != nil {
				t.Fatal(err)
			}
			if w.Len() != a.Type.Width() {
				t.Fatalf("wrote %d bytes, want %d", w.Len(), a.Type.Width())
			}
			r := NewReader(w.Bytes())
			got, err := ReadAttribute(r, a.Type)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(a) {
				t.Errorf("got %v want %v", got, a)
			}
			if r.Remaining() != 0 {
				t.Errorf("%d bytes left over", r.Remaining())
			}
		})
	}
}

func TestReadAttributeRejects(t *testing.T) {
	tests := []resource.DataType{
		resource.DTString,
		resource.DTScratchBuffer,
		resource.DTMax + 1,
		1 << 20,
	}
	for _, dt := range tests {
		_, err := ReadAttribute(NewReader(make([]byte, 64)), dt)
		if !errors.Is(err, resource.ErrFormat) {
			t.Errorf("type %d: got %v, want format error", uint32(dt), err)
		}
	}
}

func TestTruncated(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	_, err := r.U32()
	var fe *resource.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("got %v, want *FormatError", err)
	}
	if fe.Offset != 0 {
		t.Errorf("offset %d", fe.Offset)
	}
	if err := r.Seek(4); err == nil {
		t.Error("seek past end succeeded")
	}
}

func TestBoolNonZero(t *testing.T) {
	a, err := ReadAttribute(NewReader([]byte{7}), resource.DTBool)
	if err != nil {
		t.Fatal(err)
	}
	if a.Value != true {
		t.Errorf("got %v", a.Value)
	}
}

func stringPayload(length int32, body ...byte) []byte {
	w := NewWriter()
	w.I32(length)
	w.Write(body)
	return w.Bytes()
}

func TestReadStringTerminators(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    string
		wantErr bool
	}{
		{"exact", stringPayload(4, 'a', 'b', 'c', 0), "abc", false},
		{"one extra zero", stringPayload(5, 'a', 'b', 'c', 0, 0), "abc", false},
		{"two extra zeros", stringPayload(6, 'a', 'b', 'c', 0, 0, 0), "abc", false},
		{"stray after strip", stringPayload(5, 'a', 'b', 'c', 0, 'x'), "abc", false},
		{"unterminated", stringPayload(4, 'a', 'b', 'c', 'd'), "", true},
		{"empty", stringPayload(1, 0), "", false},
		{"zero length", stringPayload(0), "", true},
		{"negative length", stringPayload(-3), "", true},
		{"short", stringPayload(10, 'a'), "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadString(NewReader(tc.in), true)
			if tc.wantErr {
				if !errors.Is(err, resource.ErrFormat) {
					t.Fatalf("got %q, %v; want format error", got, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestReadStringTable(t *testing.T) {
	got, err := ReadString(NewReader(stringPayload(6, 'n', 'a', 'm', 'e', 0, 0)), false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "name" {
		t.Errorf("got %q", got)
	}
}

func TestWideString(t *testing.T) {
	for _, s := range []string{"", "plain", "wide ☃ 𝄞"} {
		w := NewWriter()
		if err := WriteWideString(w, s); err != nil {
			t.Fatal(err)
		}
		got, err := ReadWideString(NewReader(w.Bytes()))
		if err != nil {
			t.Fatal(err)
		}
		if got != s {
			t.Errorf("got %q want %q", got, s)
		}
	}
}

func TestWideStringOddByte(t *testing.T) {
	// two units declared (one char + terminator) but only three bytes follow
	in := stringPayload(2, 'a', 0, 0)
	_, err := ReadWideString(NewReader(in))
	if !errors.Is(err, resource.ErrFormat) {
		t.Fatalf("got %v, want format error", err)
	}
	bad := stringPayload(2, 'a', 0, 'b', 0)
	if _, err := ReadWideString(NewReader(bad)); !errors.Is(err, resource.ErrFormat) {
		t.Fatalf("non-zero terminator: got %v", err)
	}
}

func TestBuffer(t *testing.T) {
	w := NewWriter()
	if err := WriteBuffer(w, []byte{0, 1, 2, 0xff}); err != nil {
		t.Fatal(err)
	}
	if err := WriteString(w, "after"); err != nil {
		t.Fatal(err)
	}
	r := NewReader(w.Bytes())
	b, err := ReadBuffer(r)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0, 1, 2, 0xff}, b); diff != "" {
		t.Error(diff)
	}
	s, err := ReadString(r, true)
	if err != nil || s != "after" {
		t.Errorf("got %q, %v", s, err)
	}
}

func TestPatch(t *testing.T) {
	w := NewWriter()
	at := w.Len()
	w.U32(0)
	w.U8(9)
	w.PatchU32(at, 0xdeadbeef)
	r := NewReader(w.Bytes())
	v, _ := r.U32()
	if v != 0xdeadbeef {
		t.Errorf("got %x", v)
	}
}
