package main

import (
	"fmt"
	"io"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/signadot/ls-format/go-ls"
	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/lsj"
)

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 && len(args) != 3 {
		return fmt.Errorf("%w: patch requires a patch file, an input and optionally an output", cli.ErrUsage)
	}
	out := ""
	if len(args) == 3 {
		out = args[2]
	}
	return patchFile(cfg.MainConfig, cc.Out, args[0], args[1], out)
}

func patchFile(cfg *MainConfig, w io.Writer, patchPath, in, out string) error {
	p, err := os.ReadFile(patchPath)
	if err != nil {
		return fmt.Errorf("could not read patch: %w", err)
	}
	res, err := cfg.load(in)
	if err != nil {
		return err
	}
	res, err = lsj.Patch(res, p)
	if err != nil {
		return fmt.Errorf("error patching %s with %s: %w", in, patchPath, err)
	}
	if out == "" {
		opts, err := cfg.viewOpts(w)
		if err != nil {
			return err
		}
		return ls.Encode(w, res, format.LSXFormat, opts...)
	}
	f, err := cfg.outFormat(out)
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	opts, err := cfg.encOpts()
	if err != nil {
		return err
	}
	return ls.SaveFormat(res, out, f, opts...)
}
