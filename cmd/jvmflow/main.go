// Command jvmflow prints the abstract frame before every instruction of the
// methods in JVM bytecode listings.
//
// Usage:
//
//	jvmflow [-config jvmflow.toml] [-format text|cbor] [-debug] [-dce] [-opt] [-v] files...
//
// Files ending in .txtar are archives of listings. Without -config, a
// jvmflow.toml in the current directory or one of its parents is used.
//
// The exit status is 1 if any method failed analysis and 2 on other errors.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/mpyw/jvmflow"
	"github.com/mpyw/jvmflow/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("jvmflow", flag.ContinueOnError)
	configPath := fs.String("config", "", "configuration file")
	format := fs.String("format", "", "output format: text or cbor")
	debugOut := fs.Bool("debug", false, "write a frame table per method to stderr")
	dce := fs.Bool("dce", false, "remove unreachable instructions before printing")
	opt := fs.Bool("opt", false, "propagate local copies and remove redundant stores before printing")
	verbose := fs.Int("v", -1, "log verbosity (overrides the configuration)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: jvmflow [flags] files...")
		fs.PrintDefaults()
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jvmflow: %v\n", err)
		return 2
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	cfg.Output.Debug = cfg.Output.Debug || *debugOut
	cfg.Analysis.EliminateDeadCode = cfg.Analysis.EliminateDeadCode || *dce
	cfg.Analysis.OptimizeLocals = cfg.Analysis.OptimizeLocals || *opt
	if *verbose >= 0 {
		cfg.Log.Verbosity = *verbose
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "jvmflow: %v\n", err)
		return 2
	}
	commonlog.Configure(cfg.Log.Verbosity, cfg.LogFile())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sources, err := jvmflow.ReadSources(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "jvmflow: %v\n", err)
		return 2
	}
	results, err := jvmflow.Run(ctx, cfg, sources)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jvmflow: %v\n", err)
		return 2
	}

	write := jvmflow.WriteText
	if cfg.Output.Format == config.FormatCBOR {
		write = jvmflow.WriteCBOR
	}
	if err := write(os.Stdout, results); err != nil {
		fmt.Fprintf(os.Stderr, "jvmflow: %v\n", err)
		return 2
	}
	if cfg.Output.Debug {
		if err := jvmflow.WriteDebug(os.Stderr, results); err != nil {
			fmt.Fprintf(os.Stderr, "jvmflow: %v\n", err)
			return 2
		}
	}

	for _, r := range results {
		if r.Failed() {
			return 1
		}
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.FindAndLoad(".")
}
