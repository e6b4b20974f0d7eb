package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/google/gops/agent"
	"github.com/scott-cotton/cli"

	"github.com/signadot/ls-format/go-ls/convert"
	"github.com/signadot/ls-format/go-ls/format"
)

func convertDirs(cfg *ConvertConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Convert.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: convert requires an input and an output directory", cli.ErrUsage)
	}
	if cfg.InFormat == nil || cfg.OutFormat == nil {
		return fmt.Errorf("%w: convert requires -I and -O", cli.ErrUsage)
	}
	if cfg.Gops {
		startGops(cc.Out)
		defer agent.Close()
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return runConvert(ctx, cfg, cc.Out, args[0], args[1])
}

func runConvert(ctx context.Context, cfg *ConvertConfig, w io.Writer, in, out string) error {
	encOpts, err := cfg.encOpts()
	if err != nil {
		return err
	}
	opts := []convert.Option{
		convert.WithEncodeOptions(encOpts...),
		convert.WithWorkers(cfg.Workers),
		convert.WithContinueOnError(cfg.ContinueOnError),
		convert.WithLogger(theLog),
	}
	if !cfg.Quiet {
		opts = append(opts, convert.WithProgress(progress(w)))
	}
	rep, err := convert.Resources(ctx, in, out, *cfg.InFormat, *cfg.OutFormat, opts...)
	return summarize(w, rep, err, *cfg.InFormat)
}

func progress(w io.Writer) convert.ProgressFunc {
	return func(msg string, index, total int) {
		if total <= 1 && index == 0 {
			fmt.Fprintln(w, msg)
			return
		}
		fmt.Fprintf(w, "[%d/%d] %s\n", index+1, total, msg)
	}
}

// summarize prints the outcome of a conversion and rewrites the errors of
// failed files so that invalid input is named as such.
func summarize(w io.Writer, rep *convert.Report, err error, inFmt format.Format) error {
	if rep == nil {
		return err
	}
	fmt.Fprintf(w, "converted %d of %d resources\n", len(rep.Converted), rep.Total)
	if err == nil || len(rep.Failed) == 0 {
		return err
	}
	errs := make([]error, len(rep.Failed))
	for i, f := range rep.Failed {
		errs[i] = describe(f.Err, f.Input, inFmt)
	}
	return errors.Join(errs...)
}

func startGops(w io.Writer) {
	if err := agent.Listen(agent.Options{}); err != nil {
		fmt.Fprintf(w, "gops agent failed: %v\n", err)
	}
}
