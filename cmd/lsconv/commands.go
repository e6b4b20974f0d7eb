package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, []*cli.Opt{
		{
			Name:        "o",
			Description: "output file (default stdout)",
			Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
		},
		{
			Name:        "I",
			Aliases:     []string{"ifmt"},
			Description: "input format: lsx/x, lsb/b, lsf/f, lsj/j (default from the file extension)",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.InFormat), "(format)"),
		},
		{
			Name:        "O",
			Aliases:     []string{"ofmt"},
			Description: "output format: lsx/x, lsb/b, lsf/f, lsj/j (default from the file extension)",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.OutFormat), "(format)"),
		}}...)

	return cli.NewCommandAt(&cfg.Main, "lsconv").
		WithSynopsis("lsconv [opts] command [opts]").
		WithDescription("lsconv converts and inspects game resource files (lsx, lsb, lsf, lsj).").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return lsconvMain(cfg, cc, args)
		}).
		WithSubs(
			ConvertCommand(cfg),
			BatchCommand(cfg),
			ViewCommand(cfg),
			ToCommand(cfg),
			DiffCommand(cfg),
			GetCommand(cfg),
			FindCommand(cfg),
			PatchCommand(cfg),
			HashCommand(cfg))
}

func ConvertCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ConvertConfig{MainConfig: mainCfg, Workers: 1}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Convert, "convert").
		WithAliases("c").
		WithSynopsis("convert [opts] <input-dir> <output-dir>").
		WithDescription(convertDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return convertDirs(cfg, cc, args)
		})
}

const convertDescription = `convert converts every resource of the -I format under input-dir to the -O
format, writing each to the same relative path under output-dir with the
extension replaced.

By default the first file that fails stops the conversion. With -k every file
is attempted and the failures are listed at the end.`

func BatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &BatchConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Batch, "batch").
		WithSynopsis("batch [opts] <jobs.yaml>").
		WithDescription(batchDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return batch(cfg, cc, args)
		})
}

const batchDescription = `batch runs the directory conversions listed in a yaml file:

  workers: 4
  continueOnError: false
  jobs:
  - input: Public/Game/Stats
    output: out/Stats
    from: lsx
    to: lsf
    version: 3
    compression: zstd:max

Relative directories are resolved against the directory of the yaml file.`

func ViewCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ViewConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.View, "view").
		WithAliases("v").
		WithSynopsis("view [files]").
		WithDescription("view resources as lsx, in color on terminals").
		WithRun(func(cc *cli.Context, args []string) error {
			return view(cfg, cc, args)
		})
}

func ToCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ToConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.To, "to").
		WithAliases("t").
		WithSynopsis("to <input> <output>").
		WithDescription("convert a single resource, formats are taken from the extensions unless -I or -O are given").
		WithRun(func(cc *cli.Context, args []string) error {
			return to(cfg, cc, args)
		})
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Diff, "diff").
		WithAliases("d", "di").
		WithSynopsis("diff a b").
		WithDescription("show the lines that differ between the lsx renderings of two resources").
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
}

func GetCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &GetConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Get, "get").
		WithAliases("g").
		WithSynopsis("get <jsonpath> [files]").
		WithDescription("query the lsj form of resources with a jsonpath, e.g. '$.save.regions.Config.root.Item[*].Index.value'").
		WithRun(func(cc *cli.Context, args []string) error {
			return get(cfg, cc, args)
		})
}

func FindCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &FindConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Find, "find").
		WithAliases("f").
		WithSynopsis("find [opts] <expr> [files]").
		WithDescription(`list nodes for which an expr expression holds, e.g. 'name == "Item" && attrs.Index > 2'`).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return find(cfg, cc, args)
		})
}

func PatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PatchConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Patch, "patch").
		WithAliases("p").
		WithSynopsis("patch <patch.json> <input> [output]").
		WithDescription("apply an RFC 6902 json patch to the lsj form of a resource; without output the result is shown as lsx").
		WithRun(func(cc *cli.Context, args []string) error {
			return patch(cfg, cc, args)
		})
}

func HashCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &HashConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Hash, "hash").
		WithSynopsis("hash [files]").
		WithDescription("print a format independent blake3 digest of each resource").
		WithRun(func(cc *cli.Context, args []string) error {
			return hash(cfg, cc, args)
		})
}
