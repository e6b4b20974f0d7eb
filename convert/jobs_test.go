package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signadot/ls-format/go-ls"
	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/resource/restest"
)

const batchYAML = `workers: 2
jobs:
- input: src
  output: out/lsf
  from: lsx
  to: lsf
  version: 3
  compression: zstd:max
- input: src
  output: out/lsj
  from: x
  to: lsj
  compact: true
`

func TestLoadJobs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	writeFile(t, path, batchYAML)

	b, err := LoadJobs(path)
	require.NoError(t, err)
	assert.Equal(t, dir, b.Root)
	assert.Equal(t, 2, b.Workers)
	assert.False(t, b.ContinueOnError)
	require.Len(t, b.Jobs, 2)
	assert.Equal(t, Job{Input: "src", Output: "out/lsf", From: "lsx", To: "lsf", Version: 3, Compression: "zstd:max"}, b.Jobs[0])
	assert.True(t, b.Jobs[1].Compact)
}

func TestLoadJobsErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"format", "jobs:\n- {input: a, output: b, from: xml, to: lsb}\n", format.ErrBadFormat},
		{"version", "jobs:\n- {input: a, output: b, from: lsx, to: lsb, version: 2}\n", format.ErrBadVersion},
		{"compression", "jobs:\n- {input: a, output: b, from: lsx, to: lsf, compression: gzip}\n", format.ErrBadOption},
		{"paths", "jobs:\n- {from: lsx, to: lsf}\n", format.ErrBadOption},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".yaml")
			writeFile(t, path, tc.yaml)
			_, err := LoadJobs(path)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := LoadJobs(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "syntax.yaml")
	writeFile(t, path, "jobs: [\n")
	_, err = LoadJobs(path)
	assert.Error(t, err)
}

func TestRunJobs(t *testing.T) {
	dir := t.TempDir()
	writeResource(t, filepath.Join(dir, "src", "one.lsx"))
	writeResource(t, filepath.Join(dir, "src", "nested", "two.lsx"))
	path := filepath.Join(dir, "batch.yaml")
	writeFile(t, path, batchYAML)

	b, err := LoadJobs(path)
	require.NoError(t, err)
	reports, err := RunJobs(context.Background(), b)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	for _, p := range []string{
		filepath.Join(dir, "out", "lsf", "one.lsf"),
		filepath.Join(dir, "out", "lsf", "nested", "two.lsf"),
		filepath.Join(dir, "out", "lsj", "one.lsj"),
		filepath.Join(dir, "out", "lsj", "nested", "two.lsj"),
	} {
		got, err := ls.Load(p)
		require.NoError(t, err, p)
		assert.Empty(t, restest.Diff(restest.Sample(), got), p)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out", "lsf", "one.lsf"))
	require.NoError(t, err)
	assert.Equal(t, byte(3), data[4], "lsf version")
}
