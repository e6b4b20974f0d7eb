package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"

	"github.com/signadot/ls-format/go-ls"
	"github.com/signadot/ls-format/go-ls/format"
)

func view(cfg *ViewConfig, cc *cli.Context, args []string) error {
	args, err := cfg.View.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: view requires at least one file", cli.ErrUsage)
	}
	return viewFiles(cfg.MainConfig, cc.Out, args)
}

func viewFiles(cfg *MainConfig, w io.Writer, files []string) error {
	opts, err := cfg.viewOpts(w)
	if err != nil {
		return err
	}
	for i, file := range files {
		res, err := cfg.load(file)
		if err != nil {
			return err
		}
		if i > 0 {
			io.WriteString(w, "\n")
		}
		if err := ls.Encode(w, res, format.LSXFormat, opts...); err != nil {
			return fmt.Errorf("error rendering %s: %w", file, err)
		}
	}
	return nil
}
