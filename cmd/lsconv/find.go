package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"

	"github.com/signadot/ls-format/go-ls/search"
)

func find(cfg *FindConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Find.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: find requires an expression and at least one file", cli.ErrUsage)
	}
	return findFiles(cfg, cc.Out, args[0], args[1:])
}

func findFiles(cfg *FindConfig, w io.Writer, src string, files []string) error {
	q, err := search.Compile(src)
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	var opts []search.Opt
	if cfg.Region != "" {
		opts = append(opts, search.InRegion(cfg.Region))
	}
	if cfg.Limit > 0 {
		opts = append(opts, search.Limit(cfg.Limit))
	}
	for _, file := range files {
		res, err := cfg.load(file)
		if err != nil {
			return err
		}
		ms, err := q.Find(res, opts...)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		for _, m := range ms {
			if len(files) > 1 {
				fmt.Fprintf(w, "%s: ", file)
			}
			fmt.Fprintf(w, "%s:%s\n", m.Region, m.Node.Path())
		}
	}
	return nil
}
