package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/signadot/ls-format/go-ls"
	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/resource"
)

func lsconvMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	defer func() {
		if cfg.CloseOut != nil {
			cfg.CloseOut()
		}
	}()
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

// load reads path, naming the format in the error when the content is not
// a valid resource.
func (cfg *MainConfig) load(path string) (*resource.Resource, error) {
	f, err := cfg.inFormat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	res, err := ls.LoadFormat(path, f)
	if err != nil {
		return nil, describe(err, path, f)
	}
	return res, nil
}

func describe(err error, path string, f format.Format) error {
	var fe *resource.FormatError
	if errors.As(err, &fe) {
		return fmt.Errorf("%s is not a valid %s file: %w", path, f, fe)
	}
	return err
}
