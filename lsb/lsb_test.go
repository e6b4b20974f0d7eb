package lsb

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/signadot/ls-format/go-ls/binutil"
	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/resource"
	"github.com/signadot/ls-format/go-ls/resource/restest"
)

type tableString struct {
	id uint32
	s  string
}

// assemble builds an LSB file from raw node encodings. order gives, for
// each slot of the region table, the index of the region to put there.
func assemble(strs []tableString, regionNames []uint32, nodes [][]byte, order []int) []byte {
	w := binutil.NewWriter()
	w.U32(Signature)
	w.U32(0)
	w.U32(0)
	w.U32(0)
	w.U64(1)
	w.U32(1)
	w.U32(2)
	w.U32(3)
	w.U32(4)
	w.U32(uint32(len(strs)))
	for _, s := range strs {
		binutil.WriteString(w, s.s)
		w.U32(s.id)
	}
	w.U32(uint32(len(order)))
	table := w.Len()
	for range order {
		w.U32(0)
		w.U32(0)
	}
	offs := make([]uint32, len(nodes))
	for i, n := range nodes {
		offs[i] = uint32(w.Len())
		w.Write(n)
	}
	for slot, i := range order {
		w.PatchU32(table+slot*8, regionNames[i])
		w.PatchU32(table+slot*8+4, offs[i])
	}
	w.PatchU32(4, uint32(w.Len()))
	return w.Bytes()
}

func rawNode(nameID uint32, attrs [][]byte, children ...[]byte) []byte {
	w := binutil.NewWriter()
	w.U32(nameID)
	w.U32(uint32(len(attrs)))
	w.U32(uint32(len(children)))
	for _, a := range attrs {
		w.Write(a)
	}
	for _, c := range children {
		w.Write(c)
	}
	return w.Bytes()
}

func rawAttr(nameID, typeID uint32, payload ...byte) []byte {
	w := binutil.NewWriter()
	w.U32(nameID)
	w.U32(typeID)
	w.Write(payload)
	return w.Bytes()
}

func le32(v int32) []byte {
	w := binutil.NewWriter()
	w.I32(v)
	return w.Bytes()
}

func cat(bs ...[]byte) []byte {
	return bytes.Join(bs, nil)
}

var names = []tableString{{0, "Region"}, {1, "root"}, {2, "Attr"}, {3, "Other"}}

func singleAttr(typeID uint32, payload []byte) []byte {
	return assemble(names, []uint32{0}, [][]byte{rawNode(1, [][]byte{rawAttr(2, typeID, payload...)})}, []int{0})
}

func wantFormatError(t *testing.T, err error, contains string) {
	t.Helper()
	if !errors.Is(err, resource.ErrFormat) {
		t.Fatalf("got %v, want format error", err)
	}
	if !strings.Contains(err.Error(), contains) {
		t.Errorf("error %q does not mention %q", err, contains)
	}
}

func TestRoundTrip(t *testing.T) {
	want := restest.Sample()
	buf := bytes.NewBuffer(nil)
	if err := Encode(buf, want); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := restest.Diff(want, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
	if !resource.Equal(want, got) {
		t.Error("not structurally equal")
	}
	cfg := got.Region("Config")
	item := cfg.Root.Children[1]
	if item.Parent != cfg.Root {
		t.Error("parent not set")
	}
}

func TestEncodeDeterministic(t *testing.T) {
	a, b := bytes.NewBuffer(nil), bytes.NewBuffer(nil)
	if err := Encode(a, restest.Sample()); err != nil {
		t.Fatal(err)
	}
	if err := Encode(b, restest.Sample()); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("encodings differ")
	}
}

func TestEncodeRejects(t *testing.T) {
	res := resource.NewResource()
	root := resource.NewNode("root")
	root.SetAttribute("Bad", resource.NodeAttribute{Type: resource.DTIVec3, Value: []int32{1, 2}})
	res.AddRegion("R", root)
	buf := bytes.NewBuffer(nil)
	if err := Encode(buf, res); !errors.Is(err, resource.ErrFormat) {
		t.Fatalf("got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes", buf.Len())
	}
	err := Encode(buf, restest.Sample(), WithVersion(format.Version(2)))
	if !errors.Is(err, format.ErrBadVersion) {
		t.Errorf("got %v, want bad version", err)
	}
}

func TestHeaderValidation(t *testing.T) {
	good := bytes.NewBuffer(nil)
	if err := Encode(good, restest.Sample()); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name     string
		mod      func([]byte) []byte
		contains string
	}{
		{"signature", func(b []byte) []byte { b[3] = 0x41; return b }, "signature"},
		{"size longer", func(b []byte) []byte { return append(b, 0) }, "file size"},
		{"size shorter", func(b []byte) []byte { return b[:len(b)-1] }, "file size"},
		{"big endian", func(b []byte) []byte { b[8] = 1; return b }, "big-endian"},
		{"empty", func(b []byte) []byte { return nil }, "truncated"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.mod(bytes.Clone(good.Bytes()))
			res, err := DecodeBytes(in)
			if res != nil {
				t.Error("resource returned with error")
			}
			wantFormatError(t, err, tc.contains)
		})
	}
}

func TestSizeCheckedBeforeTables(t *testing.T) {
	in := singleAttr(uint32(resource.DTInt), le32(5))
	// a string count this large would fail as truncated if it were parsed
	in[43] = 0x7f
	in = append(in, 0)
	_, err := DecodeBytes(in)
	wantFormatError(t, err, "file size")
}

func TestDuplicateStringID(t *testing.T) {
	strs := []tableString{{0, "Region"}, {7, "root"}, {7, "again"}}
	in := assemble(strs, []uint32{0}, [][]byte{rawNode(7, nil)}, []int{0})
	_, err := DecodeBytes(in)
	wantFormatError(t, err, "String ID 7 duplicated")
}

func TestUnknownStringID(t *testing.T) {
	in := assemble(names, []uint32{0}, [][]byte{rawNode(99, nil)}, []int{0})
	_, err := DecodeBytes(in)
	wantFormatError(t, err, "name not found")
}

func TestAttributeKindBound(t *testing.T) {
	wide := cat(le32(3), []byte{'h', 0, 'i', 0, 0, 0})
	res, err := DecodeBytes(singleAttr(uint32(resource.DTMax), wide))
	if err != nil {
		t.Fatal(err)
	}
	a, _ := res.Region("Region").Root.Attribute("Attr")
	if a.Type != resource.DTLSWString || a.Value != "hi" {
		t.Errorf("got %v", a)
	}
	_, err = DecodeBytes(singleAttr(uint32(resource.DTMax)+1, wide))
	wantFormatError(t, err, "unsupported attribute data type: 31")
}

func TestNullTerminatorTolerance(t *testing.T) {
	str := uint32(resource.DTString)
	tests := []struct {
		name    string
		payload []byte
	}{
		{"exact", cat(le32(4), []byte("abc\x00"))},
		{"one extra", cat(le32(5), []byte("abc\x00\x00"))},
		{"two extra", cat(le32(6), []byte("abc\x00\x00\x00"))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := DecodeBytes(singleAttr(str, tc.payload))
			if err != nil {
				t.Fatal(err)
			}
			a, _ := res.Region("Region").Root.Attribute("Attr")
			if a.Value != "abc" {
				t.Errorf("got %q", a.Value)
			}
		})
	}
	_, err := DecodeBytes(singleAttr(str, cat(le32(4), []byte("abcd"))))
	wantFormatError(t, err, "null terminated")

	ts := cat(le32(3), []byte("v\x00\x00"), le32(2), []byte("h\x00"))
	res, err := DecodeBytes(singleAttr(uint32(resource.DTTranslatedString), ts))
	if err != nil {
		t.Fatal(err)
	}
	a, _ := res.Region("Region").Root.Attribute("Attr")
	if a.Value != (resource.TranslatedString{Value: "v", Handle: "h"}) {
		t.Errorf("got %v", a)
	}
}

func TestWideStringOddByte(t *testing.T) {
	// the stream ends half way through the terminator unit
	in := singleAttr(uint32(resource.DTWString), cat(le32(2), []byte{'a', 0, 0}))
	_, err := DecodeBytes(in)
	wantFormatError(t, err, "truncated")
}

func TestRegionOrderIndependence(t *testing.T) {
	strs := []tableString{{0, "A"}, {1, "B"}, {2, "root"}, {3, "x"}, {4, "child"}}
	nodes := [][]byte{
		rawNode(2, [][]byte{rawAttr(3, uint32(resource.DTInt), le32(1)...)}),
		rawNode(2, [][]byte{rawAttr(3, uint32(resource.DTInt), le32(2)...)}, rawNode(4, nil)),
	}
	first, err := DecodeBytes(assemble(strs, []uint32{0, 1}, nodes, []int{0, 1}))
	if err != nil {
		t.Fatal(err)
	}
	second, err := DecodeBytes(assemble(strs, []uint32{0, 1}, nodes, []int{1, 0}))
	if err != nil {
		t.Fatal(err)
	}
	if diff := restest.Diff(first, second); diff != "" {
		t.Errorf("(-first +second):\n%s", diff)
	}
	for _, res := range []*resource.Resource{first, second} {
		a, _ := res.Region("A").Root.Attribute("x")
		b, _ := res.Region("B").Root.Attribute("x")
		if a.Value != int32(1) || b.Value != int32(2) {
			t.Errorf("got A.x=%v B.x=%v", a.Value, b.Value)
		}
		if n := len(res.Region("B").Root.Children); n != 1 {
			t.Errorf("B has %d children", n)
		}
	}
}

func TestRegionOffsetOutOfRange(t *testing.T) {
	in := assemble(names, []uint32{0}, [][]byte{rawNode(1, nil)}, []int{0})
	// region offset lives after the string table and region count
	at := len(in) - 12 - 4
	in[at+3] = 0x7f
	_, err := DecodeBytes(in)
	wantFormatError(t, err, "seek")
}
