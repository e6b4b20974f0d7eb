package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"
)

func hash(cfg *HashConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Hash.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: hash requires at least one file", cli.ErrUsage)
	}
	return hashFiles(cfg.MainConfig, cc.Out, args)
}

func hashFiles(cfg *MainConfig, w io.Writer, files []string) error {
	for _, file := range files {
		res, err := cfg.load(file)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%x  %s\n", res.Digest(), file)
	}
	return nil
}
