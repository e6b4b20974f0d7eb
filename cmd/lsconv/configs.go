package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/signadot/ls-format/go-ls"
	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/lsf"
	"github.com/signadot/ls-format/go-ls/lsx"
)

type MainConfig struct {
	Color    bool   `cli:"name=color desc='color lsx output'"`
	Compact  bool   `cli:"name=compact desc='no indentation in lsx and lsj output'"`
	Version  int    `cli:"name=version desc='format version to write (0 for the default)'"`
	Compress string `cli:"name=compress desc='lsf compression, method[:level] with method none, zlib, lz4 or zstd and level fast, default or max'"`

	InFormat, OutFormat *format.Format

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) fmtFunc(fps ...**format.Format) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := format.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		for _, fp := range fps {
			*fp = &f
		}
		return f, nil
	})
}

// inFormat is the -I format, or the one named by the extension of path.
func (cfg *MainConfig) inFormat(path string) (format.Format, error) {
	if cfg.InFormat != nil {
		return *cfg.InFormat, nil
	}
	return format.ExtensionToFormat(path)
}

func (cfg *MainConfig) outFormat(path string) (format.Format, error) {
	if cfg.OutFormat != nil {
		return *cfg.OutFormat, nil
	}
	return format.ExtensionToFormat(path)
}

// encOpts are the encoding options from the flags, for writing files.
func (cfg *MainConfig) encOpts() ([]ls.Option, error) {
	if cfg.Version < 0 {
		return nil, fmt.Errorf("%w: negative version %d", format.ErrBadVersion, cfg.Version)
	}
	res := []ls.Option{
		ls.WithVersion(format.Version(cfg.Version)),
		ls.WithCompact(cfg.Compact),
	}
	if cfg.Compress != "" {
		m, l, err := lsf.ParseCompression(cfg.Compress)
		if err != nil {
			return nil, err
		}
		res = append(res, ls.WithCompression(m, l))
	}
	return res, nil
}

// viewOpts are encOpts plus colors when -color is given, or when it is not
// given and w is a terminal.
func (cfg *MainConfig) viewOpts(w io.Writer) ([]ls.Option, error) {
	res, err := cfg.encOpts()
	if err != nil {
		return nil, err
	}
	if cfg.colors(w) {
		res = append(res, ls.WithColors(lsx.NewColors()))
	}
	return res, nil
}

func (cfg *MainConfig) colors(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	if cfg.Main != nil {
		for _, opt := range cfg.Main.Opts {
			if opt.Name == "color" && opt.Value != nil {
				return false
			}
		}
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

type ConvertConfig struct {
	*MainConfig
	Workers         int  `cli:"name=workers desc='number of files converted at once'"`
	ContinueOnError bool `cli:"name=k desc='keep going after a file fails'"`
	Quiet           bool `cli:"name=q desc='do not report progress'"`
	Gops            bool `cli:"name=gops desc='start a gops diagnostics agent'"`

	Convert *cli.Command
}

type BatchConfig struct {
	*MainConfig
	Quiet bool `cli:"name=q desc='do not report progress'"`
	Gops  bool `cli:"name=gops desc='start a gops diagnostics agent'"`

	Batch *cli.Command
}

type ViewConfig struct {
	*MainConfig
	View *cli.Command
}

type ToConfig struct {
	*MainConfig
	To *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Diff *cli.Command
}

type GetConfig struct {
	*MainConfig
	Get *cli.Command
}

type FindConfig struct {
	*MainConfig
	Region string `cli:"name=region desc='only search this region'"`
	Limit  int    `cli:"name=n desc='stop after n matches'"`

	Find *cli.Command
}

type PatchConfig struct {
	*MainConfig
	Patch *cli.Command
}

type HashConfig struct {
	*MainConfig
	Hash *cli.Command
}
