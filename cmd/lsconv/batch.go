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

func batch(cfg *BatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Batch.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: batch requires one jobs file", cli.ErrUsage)
	}
	if cfg.Gops {
		startGops(cc.Out)
		defer agent.Close()
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return runBatch(ctx, cfg, cc.Out, args[0])
}

func runBatch(ctx context.Context, cfg *BatchConfig, w io.Writer, path string) error {
	b, err := convert.LoadJobs(path)
	if err != nil {
		return err
	}
	opts := []convert.Option{convert.WithLogger(theLog)}
	if !cfg.Quiet {
		opts = append(opts, convert.WithProgress(progress(w)))
	}
	reports, err := convert.RunJobs(ctx, b, opts...)
	total, converted, failed := 0, 0, 0
	for _, rep := range reports {
		total += rep.Total
		converted += len(rep.Converted)
		failed += len(rep.Failed)
	}
	fmt.Fprintf(w, "%d jobs: converted %d of %d resources\n", len(b.Jobs), converted, total)
	if err != nil && failed > 0 {
		var errs []error
		for _, rep := range reports {
			for _, f := range rep.Failed {
				// inputs are enumerated by extension
				inFmt, _ := format.ExtensionToFormat(f.Input)
				errs = append(errs, describe(f.Err, f.Input, inFmt))
			}
		}
		return errors.Join(errs...)
	}
	return err
}
