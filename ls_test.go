package ls

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/lsf"
	"github.com/signadot/ls-format/go-ls/resource"
	"github.com/signadot/ls-format/go-ls/resource/restest"
)

func TestNewCodec(t *testing.T) {
	for _, f := range format.AllFormats() {
		c, err := NewCodec(f)
		if err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		if c.Format() != f {
			t.Errorf("codec for %s reports %s", f, c.Format())
		}
	}
	_, err := NewCodec(format.LSBFormat, WithVersion(9))
	if !errors.Is(err, format.ErrBadVersion) || !format.IsArgumentError(err) {
		t.Errorf("got %v, want bad version", err)
	}
	_, err = NewCodec(format.Format(42))
	if !errors.Is(err, format.ErrBadFormat) {
		t.Errorf("got %v, want bad format", err)
	}
}

func TestCrossFormat(t *testing.T) {
	want := restest.Sample()
	for _, from := range format.AllFormats() {
		for _, to := range format.AllFormats() {
			buf := bytes.NewBuffer(nil)
			if err := Encode(buf, want, from); err != nil {
				t.Fatalf("%s: %v", from, err)
			}
			mid, err := Decode(buf, from)
			if err != nil {
				t.Fatalf("%s: %v", from, err)
			}
			buf.Reset()
			if err := Encode(buf, mid, to, WithCompact(true)); err != nil {
				t.Fatalf("%s -> %s: %v", from, to, err)
			}
			got, err := Decode(buf, to)
			if err != nil {
				t.Fatalf("%s -> %s: %v", from, to, err)
			}
			if diff := restest.Diff(want, got); diff != "" {
				t.Errorf("%s -> %s (-want +got):\n%s", from, to, diff)
			}
		}
	}
}

func TestExtremesEveryVersion(t *testing.T) {
	for _, f := range format.AllFormats() {
		for _, v := range f.Versions() {
			for _, compact := range []bool{false, true} {
				name := fmt.Sprintf("%s/v%d/compact=%t", f, v, compact)
				t.Run(name, func(t *testing.T) {
					opts := []Option{WithVersion(v), WithCompact(compact)}
					if f == format.LSFFormat && v >= format.LSFVerChunkedCompress {
						opts = append(opts, WithCompression(lsf.MethodZstd, lsf.LevelDefault))
					}
					want := restest.Extremes()
					buf := bytes.NewBuffer(nil)
					if err := Encode(buf, want, f, opts...); err != nil {
						t.Fatal(err)
					}
					got, err := Decode(buf, f)
					if err != nil {
						t.Fatal(err)
					}
					if diff := restest.Diff(want, got); diff != "" {
						t.Errorf("(-want +got):\n%s", diff)
					}
					if !resource.Equal(want, got) {
						t.Error("not structurally equal")
					}
					a, _ := got.Region("Extremes").Root.Children[0].Attribute("NegZeroDouble")
					if !math.Signbit(a.Value.(float64)) {
						t.Errorf("negative zero decoded as %v", a)
					}
				})
			}
		}
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "Sample.LSF")
	want := restest.Sample()
	if err := Save(want, path, WithCompression(lsf.MethodZstd, lsf.LevelMax)); err != nil {
		t.Fatal(err)
	}
	ents, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 1 || ents[0].Name() != "Sample.LSF" {
		t.Errorf("unexpected directory contents %v", ents)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := restest.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSaveLoadErrors(t *testing.T) {
	dir := t.TempDir()
	res := restest.Sample()

	if err := Save(res, filepath.Join(dir, "x.txt")); !errors.Is(err, format.ErrBadFormat) {
		t.Errorf("save: got %v, want bad format", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.lsb")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("load: got %v, want not exist", err)
	}

	corrupt := filepath.Join(dir, "corrupt.lsb")
	if err := os.WriteFile(corrupt, []byte("not a resource"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(corrupt)
	if !errors.Is(err, resource.ErrFormat) {
		t.Fatalf("got %v, want format error", err)
	}
	if !strings.Contains(err.Error(), corrupt) {
		t.Errorf("error %q does not name the file", err)
	}

	bad := restest.Sample()
	bad.Region("Config").Root.SetAttribute("Bad", resource.NodeAttribute{Type: resource.DTInt, Value: "x"})
	target := filepath.Join(dir, "out", "bad.lsj")
	if err := Save(bad, target); !errors.Is(err, resource.ErrFormat) {
		t.Errorf("got %v, want format error", err)
	}
	ents, err := os.ReadDir(filepath.Dir(target))
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 0 {
		t.Errorf("failed save left %v", ents)
	}
}

func TestTextDiff(t *testing.T) {
	d, err := TextDiff(restest.Sample(), restest.Sample())
	if err != nil {
		t.Fatal(err)
	}
	if d != "" {
		t.Errorf("identical resources differ:\n%s", d)
	}

	changed := restest.Sample()
	changed.Region("Characters").Root.Children[0].SetAttribute("Level", resource.FromInt32(13))
	d, err = TextDiff(restest.Sample(), changed)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(d, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got:\n%s", d)
	}
	if !strings.HasPrefix(lines[0], "- ") || !strings.Contains(lines[0], `value="12"`) {
		t.Errorf("bad removal %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "+ ") || !strings.Contains(lines[1], `value="13"`) {
		t.Errorf("bad addition %q", lines[1])
	}
}
