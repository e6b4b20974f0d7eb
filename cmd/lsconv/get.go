package main

import (
	"fmt"
	"io"

	"github.com/ohler55/ojg/oj"
	"github.com/scott-cotton/cli"

	"github.com/signadot/ls-format/go-ls/lsj"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: get requires a jsonpath and at least one file", cli.ErrUsage)
	}
	return getFiles(cfg.MainConfig, cc.Out, args[0], args[1:])
}

func getFiles(cfg *MainConfig, w io.Writer, path string, files []string) error {
	if path == "" {
		return fmt.Errorf("%w: invalid query \"\"", cli.ErrUsage)
	}
	if path[0] != '$' {
		path = "$" + path
	}
	for _, file := range files {
		res, err := cfg.load(file)
		if err != nil {
			return err
		}
		vals, err := lsj.Query(res, path)
		if err != nil {
			return fmt.Errorf("error querying %s with %s: %w", file, path, err)
		}
		for _, v := range vals {
			if len(files) > 1 {
				fmt.Fprintf(w, "%s: ", file)
			}
			fmt.Fprintln(w, oj.JSON(v))
		}
	}
	return nil
}
