package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signadot/ls-format/go-ls"
	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/resource"
	"github.com/signadot/ls-format/go-ls/resource/restest"
)

func sampleFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, ls.Save(restest.Sample(), path))
	return path
}

func fmtPtr(f format.Format) *format.Format { return &f }

func TestToAndHash(t *testing.T) {
	dir := t.TempDir()
	in := sampleFile(t, dir, "sample.lsx")
	cfg := &MainConfig{Compress: "zlib:max", Version: 3}
	buf := bytes.NewBuffer(nil)

	out := filepath.Join(dir, "out", "sample.lsf")
	require.NoError(t, convertFile(cfg, buf, in, out))
	assert.Equal(t, "wrote "+out+"\n", buf.String())

	buf.Reset()
	require.NoError(t, hashFiles(&MainConfig{}, buf, []string{in, out}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	da, _, _ := strings.Cut(lines[0], " ")
	db, _, _ := strings.Cut(lines[1], " ")
	assert.Equal(t, da, db, "digest is format independent")
	assert.Len(t, da, 64)
}

func TestToRejectsOptions(t *testing.T) {
	dir := t.TempDir()
	in := sampleFile(t, dir, "sample.lsb")

	err := convertFile(&MainConfig{Compress: "gzip"}, bytes.NewBuffer(nil), in, filepath.Join(dir, "x.lsf"))
	assert.True(t, format.IsArgumentError(err))

	err = convertFile(&MainConfig{Version: 9}, bytes.NewBuffer(nil), in, filepath.Join(dir, "x.lsx"))
	assert.ErrorIs(t, err, format.ErrBadVersion)

	err = convertFile(&MainConfig{}, bytes.NewBuffer(nil), in, filepath.Join(dir, "x.xml"))
	assert.ErrorIs(t, err, cli.ErrUsage)
}

func TestInvalidInputNamed(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.lsf")
	require.NoError(t, os.WriteFile(bad, []byte("LSOF garbage"), 0o644))

	_, err := (&MainConfig{}).load(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, resource.ErrFormat)
	assert.Contains(t, err.Error(), bad+" is not a valid lsf file")

	_, err = (&MainConfig{}).load(filepath.Join(dir, "missing.lsf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotContains(t, err.Error(), "not a valid")

	cfg := &MainConfig{InFormat: fmtPtr(format.LSBFormat)}
	_, err = cfg.load(bad)
	assert.Contains(t, err.Error(), "not a valid lsb file")
}

func TestConvertDirs(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	sampleFile(t, in, filepath.Join("a", "b.lsb"))
	sampleFile(t, in, filepath.Join("a", "c.lsb"))

	cfg := &ConvertConfig{
		MainConfig: &MainConfig{InFormat: fmtPtr(format.LSBFormat), OutFormat: fmtPtr(format.LSJFormat)},
		Workers:    1,
	}
	buf := bytes.NewBuffer(nil)
	require.NoError(t, runConvert(context.Background(), cfg, buf, in, out))
	want := "Enumerating files ...\n" +
		"Converting resources ...\n" +
		"[1/2] Converting: " + filepath.Join(in, "a", "b.lsb") + "\n" +
		"[2/2] Converting: " + filepath.Join(in, "a", "c.lsb") + "\n" +
		"converted 2 of 2 resources\n"
	assert.Equal(t, want, buf.String())

	_, err := ls.Load(filepath.Join(out, "a", "c.lsj"))
	assert.NoError(t, err)
}

func TestConvertDirsFailures(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	sampleFile(t, in, "good.lsx")
	bad := filepath.Join(in, "bad.lsx")
	require.NoError(t, os.WriteFile(bad, []byte("<save>"), 0o644))

	cfg := &ConvertConfig{
		MainConfig:      &MainConfig{InFormat: fmtPtr(format.LSXFormat), OutFormat: fmtPtr(format.LSBFormat)},
		ContinueOnError: true,
		Quiet:           true,
	}
	buf := bytes.NewBuffer(nil)
	err := runConvert(context.Background(), cfg, buf, in, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad+" is not a valid lsx file")
	assert.Equal(t, "converted 1 of 2 resources\n", buf.String())
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	sampleFile(t, dir, filepath.Join("src", "one.lsf"))
	jobs := filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(jobs, []byte("jobs:\n- {input: src, output: out, from: lsf, to: lsx}\n"), 0o644))

	buf := bytes.NewBuffer(nil)
	require.NoError(t, runBatch(context.Background(), &BatchConfig{MainConfig: &MainConfig{}, Quiet: true}, buf, jobs))
	assert.Equal(t, "1 jobs: converted 1 of 1 resources\n", buf.String())
	_, err := ls.Load(filepath.Join(dir, "out", "one.lsx"))
	assert.NoError(t, err)
}

func TestViewDiff(t *testing.T) {
	dir := t.TempDir()
	a := sampleFile(t, dir, "a.lsj")
	changed := restest.Sample()
	changed.Region("Config").Root.Children[1].SetAttribute("Name", resource.FromString(resource.DTFixedString, "renamed"))
	b := filepath.Join(dir, "b.lsb")
	require.NoError(t, ls.Save(changed, b))

	buf := bytes.NewBuffer(nil)
	require.NoError(t, viewFiles(&MainConfig{}, buf, []string{a}))
	assert.True(t, strings.HasPrefix(buf.String(), "<?xml"))
	assert.NotContains(t, buf.String(), "\x1b[", "no colors off a terminal")

	noColor := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = noColor }()
	buf.Reset()
	require.NoError(t, viewFiles(&MainConfig{Color: true}, buf, []string{a}))
	assert.Contains(t, buf.String(), "\x1b[")

	buf.Reset()
	same, err := diffFiles(&MainConfig{}, buf, a, a)
	require.NoError(t, err)
	assert.True(t, same)
	assert.Empty(t, buf.String())

	same, err = diffFiles(&MainConfig{}, buf, a, b)
	require.NoError(t, err)
	assert.False(t, same)
	assert.Contains(t, buf.String(), `- `)
	assert.Contains(t, buf.String(), `value="renamed"`)
}

func TestGetFind(t *testing.T) {
	dir := t.TempDir()
	a := sampleFile(t, dir, "a.lsf")

	buf := bytes.NewBuffer(nil)
	require.NoError(t, getFiles(&MainConfig{}, buf, ".save.regions.Config.root.Item[*].Index.value", []string{a}))
	assert.Equal(t, "0\n1\n2\n", buf.String())

	buf.Reset()
	cfg := &FindConfig{MainConfig: &MainConfig{}, Limit: 2}
	require.NoError(t, findFiles(cfg, buf, `name == "Item"`, []string{a}))
	assert.Equal(t, "Config:root/Item\nConfig:root/Item\n", buf.String())

	err := findFiles(cfg, buf, `name ==`, []string{a})
	assert.ErrorIs(t, err, cli.ErrUsage)
}

func TestPatch(t *testing.T) {
	dir := t.TempDir()
	in := sampleFile(t, dir, "in.lsx")
	p := filepath.Join(dir, "p.json")
	require.NoError(t, os.WriteFile(p, []byte(`[{"op":"replace","path":"/save/regions/Characters/Characters/Character/0/Level/value","value":40}]`), 0o644))

	out := filepath.Join(dir, "out.lsb")
	require.NoError(t, patchFile(&MainConfig{}, bytes.NewBuffer(nil), p, in, out))
	res, err := ls.Load(out)
	require.NoError(t, err)
	a, ok := res.Region("Characters").Root.Children[0].Attribute("Level")
	require.True(t, ok)
	assert.Equal(t, int32(40), a.Value)

	buf := bytes.NewBuffer(nil)
	require.NoError(t, patchFile(&MainConfig{}, buf, p, in, ""))
	assert.Contains(t, buf.String(), `id="Level" value="40"`)
}
