package lsf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"runtime"
	"strings"
	"testing"

	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/resource"
	"github.com/signadot/ls-format/go-ls/resource/restest"
)

const headerSize = 72

func encodeBytes(t *testing.T, res *resource.Resource, opts ...EncodeOption) []byte {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	if err := Encode(buf, res, opts...); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func sectionSizes(b []byte, i int) (size, onDisk uint32) {
	at := 32 + 8*i
	return binary.LittleEndian.Uint32(b[at:]), binary.LittleEndian.Uint32(b[at+4:])
}

func TestRoundTrip(t *testing.T) {
	versions := []format.Version{format.LSFVerInitial, format.LSFVerChunkedCompress, format.LSFVerExtendedNodes}
	methods := []Method{MethodNone, MethodZlib, MethodLZ4, MethodZstd}
	levels := []Level{LevelFast, LevelDefault, LevelMax}
	for _, v := range versions {
		for _, m := range methods {
			for _, l := range levels {
				name := fmt.Sprintf("v%d/%s/%s", v, m, l)
				t.Run(name, func(t *testing.T) {
					want := restest.Sample()
					buf := bytes.NewBuffer(nil)
					err := Encode(buf, want, WithVersion(v), WithCompression(m, l))
					if m == MethodZstd && v == format.LSFVerInitial {
						if !errors.Is(err, format.ErrBadVersion) {
							t.Fatalf("got %v, want bad version", err)
						}
						if buf.Len() != 0 {
							t.Errorf("wrote %d bytes", buf.Len())
						}
						return
					}
					if err != nil {
						t.Fatal(err)
					}
					got, err := Decode(buf)
					if err != nil {
						t.Fatal(err)
					}
					if diff := restest.Diff(want, got); diff != "" {
						t.Errorf("(-want +got):\n%s", diff)
					}
					if want.Digest() != got.Digest() {
						t.Error("digest changed")
					}
				})
			}
		}
	}
}

func TestDefaults(t *testing.T) {
	b := encodeBytes(t, restest.Sample())
	if v := binary.LittleEndian.Uint32(b[4:]); v != uint32(format.LSFVerChunkedCompress) {
		t.Errorf("default version %d", v)
	}
	if flags := b[64]; Method(flags&0x0f) != MethodLZ4 || Level(flags&0xf0) != LevelDefault {
		t.Errorf("default flags %#x", flags)
	}
	var zero Codec
	buf := bytes.NewBuffer(nil)
	if err := zero.Encode(buf, restest.Sample()); err != nil {
		t.Fatal(err)
	}
	if buf.Bytes()[64] != 0 {
		t.Errorf("zero codec flags %#x", buf.Bytes()[64])
	}
}

func TestIncompressibleStoredRaw(t *testing.T) {
	res := resource.NewResource()
	res.AddRegion("R", resource.NewNode("root"))
	b := encodeBytes(t, res, WithCompression(MethodZlib, LevelDefault))
	if _, onDisk := sectionSizes(b, secAttributes); onDisk != 0 {
		t.Errorf("attributes section compressed to %d", onDisk)
	}
	if size, onDisk := sectionSizes(b, secStrings); onDisk == 0 || onDisk >= size {
		t.Errorf("strings section %d -> %d", size, onDisk)
	}
	got, err := DecodeBytes(b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := restest.Diff(res, got); diff != "" {
		t.Error(diff)
	}
}

func TestRejectOptions(t *testing.T) {
	err := Encode(bytes.NewBuffer(nil), restest.Sample(), WithCompression(Method(9), LevelDefault))
	if !format.IsArgumentError(err) {
		t.Errorf("method: got %v", err)
	}
	err = Encode(bytes.NewBuffer(nil), restest.Sample(), WithCompression(MethodLZ4, Level(0x30)))
	if !format.IsArgumentError(err) {
		t.Errorf("level: got %v", err)
	}
	err = Encode(bytes.NewBuffer(nil), restest.Sample(), WithVersion(7))
	if !errors.Is(err, format.ErrBadVersion) {
		t.Errorf("version: got %v", err)
	}
}

// twoChildren is a region whose nodes section is easy to patch: root, a, b.
func twoChildren() *resource.Resource {
	res := resource.NewResource()
	root := resource.NewNode("root")
	root.AppendChild(resource.NewNode("a"))
	root.AppendChild(resource.NewNode("b"))
	res.AddRegion("R", root)
	return res
}

func nodesOffset(b []byte) int {
	size, _ := sectionSizes(b, secStrings)
	return headerSize + int(size)
}

func TestCorrupt(t *testing.T) {
	raw := func(v format.Version) []byte {
		return encodeBytes(t, twoChildren(), WithVersion(v), WithCompression(MethodNone, 0))
	}
	tests := []struct {
		name     string
		in       func() []byte
		contains string
	}{
		{"magic", func() []byte { b := raw(2); b[0] = 'X'; return b }, "signature"},
		{"version", func() []byte { b := raw(2); b[4] = 9; return b }, "version"},
		{"method", func() []byte { b := raw(2); b[64] = 0x07; return b }, "compression method"},
		{"trailing", func() []byte { return append(raw(2), 0) }, "trailing"},
		{"truncated", func() []byte { b := raw(2); return b[:len(b)-1] }, "truncated"},
		{"parent", func() []byte {
			b := raw(2)
			// region count, region entry, node count, node 0, then node 1's parent
			at := nodesOffset(b) + 4 + 8 + 4 + 12 + 4
			binary.LittleEndian.PutUint32(b[at:], 1)
			return b
		}, "not an earlier node"},
		{"sibling", func() []byte {
			b := raw(3)
			at := nodesOffset(b) + 4 + 8 + 4 + 16 + 8
			binary.LittleEndian.PutUint32(b[at:], 0xffffffff)
			return b
		}, "next sibling"},
		{"region root", func() []byte {
			b := raw(2)
			at := nodesOffset(b) + 4 + 4
			binary.LittleEndian.PutUint32(b[at:], 1)
			return b
		}, "has a parent"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := DecodeBytes(tc.in())
			if res != nil {
				t.Error("resource returned with error")
			}
			if !errors.Is(err, resource.ErrFormat) {
				t.Fatalf("got %v, want format error", err)
			}
			if !strings.Contains(err.Error(), tc.contains) {
				t.Errorf("error %q does not mention %q", err, tc.contains)
			}
		})
	}
}

func TestZstdInVersion1Rejected(t *testing.T) {
	b := encodeBytes(t, restest.Sample(), WithCompression(MethodZstd, LevelDefault))
	binary.LittleEndian.PutUint32(b[4:], uint32(format.LSFVerInitial))
	_, err := DecodeBytes(b)
	if !errors.Is(err, resource.ErrFormat) || !strings.Contains(err.Error(), "zstd") {
		t.Fatalf("got %v", err)
	}
}

func TestCorruptCompressedSection(t *testing.T) {
	b := encodeBytes(t, restest.Sample(), WithCompression(MethodZstd, LevelDefault))
	size, onDisk := sectionSizes(b, secStrings)
	if onDisk == 0 {
		t.Fatalf("strings section of %d bytes not compressed", size)
	}
	for i := range 8 {
		b[headerSize+i] ^= 0xff
	}
	_, err := DecodeBytes(b)
	if !errors.Is(err, resource.ErrFormat) {
		t.Fatalf("got %v, want format error", err)
	}
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in string
		m  Method
		l  Level
	}{
		{"lz4", MethodLZ4, LevelDefault},
		{"ZSTD:max", MethodZstd, LevelMax},
		{"zlib:fast", MethodZlib, LevelFast},
		{"none", MethodNone, LevelDefault},
	}
	for _, tc := range tests {
		m, l, err := ParseCompression(tc.in)
		if err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if m != tc.m || l != tc.l {
			t.Errorf("%s: got %s:%s", tc.in, m, l)
		}
	}
	for _, in := range []string{"gzip", "lz4:slow", ""} {
		if _, _, err := ParseCompression(in); !errors.Is(err, format.ErrBadOption) {
			t.Errorf("%q: got %v", in, err)
		}
	}
}

func TestZstdSectionSizeLimit(t *testing.T) {
	bomb := zstdEncoders[LevelMax].EncodeAll(make([]byte, 64<<20), nil)
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	_, err := decompressSection(bomb, MethodZstd, format.LSFVerChunkedCompress, 16)
	runtime.ReadMemStats(&after)
	if err == nil {
		t.Fatal("oversized section accepted")
	}
	if grew := after.TotalAlloc - before.TotalAlloc; grew > 8<<20 {
		t.Errorf("allocated %d bytes for a 16 byte section", grew)
	}
	for _, n := range []int{1, 100, 4 << 10, 2 << 20, 9 << 20} {
		data := bytes.Repeat([]byte("region node attribute "), n/22+1)[:n]
		out, err := decompressSection(zstdEncoders[LevelDefault].EncodeAll(data, nil), MethodZstd, format.LSFVerExtendedNodes, n)
		if err != nil {
			t.Fatalf("%d bytes: %v", n, err)
		}
		if !bytes.Equal(data, out) {
			t.Errorf("%d bytes: content changed", n)
		}
	}
}

func TestStringBucketLimit(t *testing.T) {
	h := fnv.New32a()
	h.Write([]byte("Name"))
	b := h.Sum32() % stringBuckets

	st := newStringTable()
	st.buckets[b] = make([]string, math.MaxUint16-1)
	ref, err := st.ref("Name")
	if err != nil {
		t.Fatal(err)
	}
	if ref != b<<16|(math.MaxUint16-1) {
		t.Errorf("got ref %#x", ref)
	}

	st = newStringTable()
	st.buckets[b] = make([]string, math.MaxUint16)
	if _, err := st.ref("Name"); !errors.Is(err, resource.ErrFormat) {
		t.Errorf("bucket of %d names accepted: %v", math.MaxUint16+1, err)
	}
}

func TestEmptyBufferDecodesNonNil(t *testing.T) {
	res := resource.NewResource()
	root := resource.NewNode("root")
	root.SetAttribute("Buf", resource.FromBuffer(nil))
	res.AddRegion("R", root)
	got, err := DecodeBytes(encodeBytes(t, res))
	if err != nil {
		t.Fatal(err)
	}
	a, _ := got.Region("R").Root.Attribute("Buf")
	if b, ok := a.Value.([]byte); !ok || b == nil || len(b) != 0 {
		t.Errorf("got %#v", a.Value)
	}
}
