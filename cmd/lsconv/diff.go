package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"

	"github.com/signadot/ls-format/go-ls"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires two files", cli.ErrUsage)
	}
	same, err := diffFiles(cfg.MainConfig, cc.Out, args[0], args[1])
	if err != nil {
		return err
	}
	if !same {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// diffFiles writes the differences between a and b and reports whether
// there were none.
func diffFiles(cfg *MainConfig, w io.Writer, a, b string) (bool, error) {
	from, err := cfg.load(a)
	if err != nil {
		return false, err
	}
	to, err := cfg.load(b)
	if err != nil {
		return false, err
	}
	d, err := ls.TextDiff(from, to)
	if err != nil {
		return false, err
	}
	if d == "" {
		return true, nil
	}
	fmt.Fprintf(w, "--- %s\n+++ %s\n%s", a, b, d)
	return false, nil
}
