package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"

	"github.com/signadot/ls-format/go-ls"
)

func to(cfg *ToConfig, cc *cli.Context, args []string) error {
	args, err := cfg.To.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: to requires an input and an output file", cli.ErrUsage)
	}
	return convertFile(cfg.MainConfig, cc.Out, args[0], args[1])
}

func convertFile(cfg *MainConfig, w io.Writer, in, out string) error {
	res, err := cfg.load(in)
	if err != nil {
		return err
	}
	f, err := cfg.outFormat(out)
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	opts, err := cfg.encOpts()
	if err != nil {
		return err
	}
	if err := ls.SaveFormat(res, out, f, opts...); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %s\n", out)
	return nil
}
