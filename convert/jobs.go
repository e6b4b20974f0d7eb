package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/signadot/ls-format/go-ls"
	"github.com/signadot/ls-format/go-ls/debug"
	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/lsf"
)

// Batch is a list of directory conversions read from a YAML file:
//
//	workers: 4
//	continueOnError: true
//	jobs:
//	- input: Public/Game/Stats
//	  output: out/Stats
//	  from: lsx
//	  to: lsf
//	  version: 3
//	  compression: zstd:max
//
// Relative directories are resolved against the directory holding the
// file.
type Batch struct {
	Root            string `json:"-"`
	Workers         int    `json:"workers,omitempty"`
	ContinueOnError bool   `json:"continueOnError,omitempty"`
	Jobs            []Job  `json:"jobs"`
}

type Job struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	From        string `json:"from"`
	To          string `json:"to"`
	Version     uint32 `json:"version,omitempty"`
	Compact     bool   `json:"compact,omitempty"`
	Compression string `json:"compression,omitempty"`
}

// LoadJobs reads and checks a batch file.
func LoadJobs(path string) (*Batch, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %q: %w", path, err)
	}
	b := &Batch{}
	if err := yaml.Unmarshal(d, b); err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", path, err)
	}
	b.Root = filepath.Dir(path)
	for i := range b.Jobs {
		if _, err := b.Jobs[i].resolve(b.Root); err != nil {
			return nil, fmt.Errorf("%s: job %d: %w", path, i, err)
		}
	}
	if debug.Convert() {
		debug.Logf("loaded %d jobs from %s\n", len(b.Jobs), path)
	}
	return b, nil
}

type resolvedJob struct {
	in, out       string
	inFmt, outFmt format.Format
	opts          []Option
}

func (j *Job) resolve(root string) (*resolvedJob, error) {
	if j.Input == "" || j.Output == "" {
		return nil, fmt.Errorf("%w: input and output are required", format.ErrBadOption)
	}
	rj := &resolvedJob{in: abs(root, j.Input), out: abs(root, j.Output)}
	var err error
	if rj.inFmt, err = format.ParseFormat(j.From); err != nil {
		return nil, err
	}
	if rj.outFmt, err = format.ParseFormat(j.To); err != nil {
		return nil, err
	}
	v := format.Version(j.Version)
	if _, err := rj.outFmt.Resolve(v); err != nil {
		return nil, err
	}
	encOpts := []ls.Option{ls.WithCompact(j.Compact)}
	if j.Compression != "" {
		m, l, err := lsf.ParseCompression(j.Compression)
		if err != nil {
			return nil, err
		}
		encOpts = append(encOpts, ls.WithCompression(m, l))
	}
	rj.opts = []Option{WithVersion(v), WithEncodeOptions(encOpts...)}
	return rj, nil
}

func abs(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// RunJobs runs the jobs of b in order. opts apply to every job, after the
// batch's own worker and error settings. Unless the batch continues on
// error, the first failing job stops the run.
func RunJobs(ctx context.Context, b *Batch, opts ...Option) ([]*Report, error) {
	var reports []*Report
	var failed []error
	for i := range b.Jobs {
		rj, err := b.Jobs[i].resolve(b.Root)
		if err != nil {
			return reports, fmt.Errorf("job %d: %w", i, err)
		}
		if debug.Convert() {
			debug.LogAny(&b.Jobs[i])
		}
		jopts := append([]Option{WithWorkers(b.Workers), WithContinueOnError(b.ContinueOnError)}, rj.opts...)
		jopts = append(jopts, opts...)
		rep, err := Resources(ctx, rj.in, rj.out, rj.inFmt, rj.outFmt, jopts...)
		if rep != nil {
			reports = append(reports, rep)
		}
		if err != nil {
			err = fmt.Errorf("job %d (%s): %w", i, b.Jobs[i].Input, err)
			if !b.ContinueOnError || ctx.Err() != nil || format.IsArgumentError(err) {
				return reports, err
			}
			failed = append(failed, err)
		}
	}
	return reports, errors.Join(failed...)
}
