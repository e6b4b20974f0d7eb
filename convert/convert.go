// Package convert converts every resource of one format under a directory
// tree into another format, mirroring the tree.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/signadot/ls-format/go-ls"
	"github.com/signadot/ls-format/go-ls/debug"
	"github.com/signadot/ls-format/go-ls/format"
)

// Failure is a file that could not be converted.
type Failure struct {
	Input string
	Err   error
}

// Report lists the outcome of a conversion. Converted holds output paths
// in enumeration order.
type Report struct {
	Total     int
	Converted []string
	Failed    []Failure
}

type job struct {
	index   int
	in, out string
}

type outcome struct {
	done bool
	err  error
}

// Resources converts each file under inDir whose extension matches inFmt
// into outFmt, writing it to the same relative path under outDir with the
// extension replaced.
//
// Unless WithContinueOnError is given, the first failure stops the run and
// is returned. Otherwise failures are recorded in the report and returned
// joined. Cancelling ctx stops the run before the next file.
func Resources(ctx context.Context, inDir, outDir string, inFmt, outFmt format.Format, opts ...Option) (*Report, error) {
	cfg := newConfig(opts)
	if _, err := ls.NewCodec(inFmt); err != nil {
		return nil, err
	}
	if _, err := ls.NewCodec(outFmt, cfg.encodeOptions()...); err != nil {
		return nil, err
	}

	cfg.Progress("Enumerating files ...", 0, 1)
	inputs, err := enumerate(inDir, inFmt)
	if err != nil {
		return nil, err
	}
	jobs := make([]job, len(inputs))
	for i, in := range inputs {
		rel, err := filepath.Rel(inDir, in)
		if err != nil {
			return nil, err
		}
		jobs[i] = job{index: i, in: in, out: filepath.Join(outDir, outFmt.ReplaceSuffix(rel))}
	}
	cfg.Log.Debug("enumerated resources", "dir", inDir, "format", inFmt, "count", len(jobs))

	cfg.Progress("Converting resources ...", 0, 1)
	r := &runner{cfg: cfg, inFmt: inFmt, outFmt: outFmt, jobs: jobs, outcomes: make([]outcome, len(jobs))}
	if cfg.Workers == 1 {
		err = r.sequential(ctx)
	} else {
		err = r.parallel(ctx)
	}
	rep := r.report()
	if err != nil {
		return rep, err
	}
	if len(rep.Failed) != 0 {
		errs := make([]error, len(rep.Failed))
		for i := range rep.Failed {
			errs[i] = rep.Failed[i].Err
		}
		return rep, errors.Join(errs...)
	}
	return rep, nil
}

// enumerate lists files below dir with the suffix of f in lexical order.
// The suffix is matched case insensitively.
func enumerate(dir string, f format.Format) ([]string, error) {
	var res []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.EqualFold(filepath.Ext(path), f.Suffix()) {
			res = append(res, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerating %s: %w", dir, err)
	}
	return res, nil
}

type runner struct {
	cfg           *Config
	inFmt, outFmt format.Format
	jobs          []job

	mu       sync.Mutex
	next     int
	outcomes []outcome
}

// progress serializes callbacks and hands out non-decreasing indices.
func (r *runner) progress(j job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.Progress("Converting: "+j.in, r.next, len(r.jobs))
	r.next++
}

func (r *runner) sequential(ctx context.Context) error {
	for _, j := range r.jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.run(j); err != nil && !r.cfg.ContinueOnError {
			return err
		}
	}
	return nil
}

func (r *runner) parallel(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for _, j := range r.jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := r.run(j); err != nil && !r.cfg.ContinueOnError {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (r *runner) run(j job) error {
	r.progress(j)
	err := r.convert(j)
	r.mu.Lock()
	r.outcomes[j.index] = outcome{done: true, err: err}
	r.mu.Unlock()
	if err != nil {
		if r.cfg.ContinueOnError {
			r.cfg.Log.Warn("conversion failed", "input", j.in, "error", err)
		}
		return err
	}
	r.cfg.Log.Debug("converted", "input", j.in, "output", j.out)
	return nil
}

func (r *runner) convert(j job) error {
	if debug.Convert() {
		debug.Logf("convert %s (%s) -> %s (%s)\n", j.in, r.inFmt, j.out, r.outFmt)
	}
	res, err := ls.LoadFormat(j.in, r.inFmt)
	if err != nil {
		return err
	}
	return ls.SaveFormat(res, j.out, r.outFmt, r.cfg.encodeOptions()...)
}

func (r *runner) report() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep := &Report{Total: len(r.jobs)}
	for i, o := range r.outcomes {
		switch {
		case !o.done:
		case o.err != nil:
			rep.Failed = append(rep.Failed, Failure{Input: r.jobs[i].in, Err: o.err})
		default:
			rep.Converted = append(rep.Converted, r.jobs[i].out)
		}
	}
	return rep
}
