// Package jvmflow computes, for every instruction of a JVM method, the
// abstract types held by each local variable and operand stack slot.
//
// Methods are read from textual listings (see internal/listing). Each method
// is analyzed to a fixpoint independently of the others, so Run analyzes
// methods in parallel. Unreachable instructions, copies between locals and
// redundant stores can optionally be removed.
package jvmflow

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/txtar"

	"github.com/mpyw/jvmflow/internal/analysis"
	"github.com/mpyw/jvmflow/internal/config"
	"github.com/mpyw/jvmflow/internal/debug"
	"github.com/mpyw/jvmflow/internal/directive"
	"github.com/mpyw/jvmflow/internal/insn"
	"github.com/mpyw/jvmflow/internal/listing"
	"github.com/mpyw/jvmflow/internal/transform"
)

var log = commonlog.GetLogger("jvmflow")

// Source is one listing to analyze.
type Source struct {
	Name string
	Data []byte
}

// Result is the outcome for one method.
type Result struct {
	Source string

	// Method is the analyzed method. When dead code elimination or local
	// variable optimization is enabled it is the rewritten method, and
	// Analysis describes the rewritten body.
	Method   *insn.Method
	Analysis *analysis.Analysis

	// Dead lists the unreachable instructions of the method as written.
	Dead []int

	Debug *debug.Info // set when debug output is enabled
	Err   error
}

// Failed returns true if the method could not be analyzed.
func (r *Result) Failed() bool { return r.Err != nil }

// ReadSources reads listing files. A file with the .txtar extension is an
// archive whose members are read as separate sources named "path/member".
func ReadSources(paths []string) ([]Source, error) {
	var sources []Source
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		}
		if filepath.Ext(path) != ".txtar" {
			sources = append(sources, Source{Name: path, Data: data})
			continue
		}
		sources = append(sources, archiveSources(path, txtar.Parse(data))...)
	}
	return sources, nil
}

func archiveSources(name string, ar *txtar.Archive) []Source {
	sources := make([]Source, 0, len(ar.Files))
	for _, f := range ar.Files {
		sources = append(sources, Source{Name: name + "/" + f.Name, Data: f.Data})
	}
	return sources
}

// Run analyzes every method of the given sources.
//
// Methods marked with a jvmflow:ignore directive are skipped.
// A listing syntax error aborts the run. A method that fails analysis gets
// a Result with Err set, and the remaining methods are still analyzed.
// Results follow source and method order.
func Run(ctx context.Context, cfg *config.Config, sources []Source) ([]Result, error) {
	var results []Result
	for _, src := range sources {
		methods, err := listing.Parse(bytes.NewReader(src.Data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Name, err)
		}
		ignores := directive.BuildIgnoreSet(src.Data)
		for _, m := range methods {
			if ignores.ShouldIgnore(m.ID()) {
				log.Debugf("%s: %s ignored", src.Name, m.ID())
				continue
			}
			results = append(results, Result{Source: src.Name, Method: m})
		}
		for _, line := range ignores.UnusedLines() {
			log.Warningf("%s:%d: unused jvmflow:ignore directive", src.Name, line)
		}
	}

	var analyzer debug.MethodAnalyzer = analysis.New()
	var tracker *debug.Tracker
	if cfg.Output.Debug {
		tracker = debug.NewTracker(analyzer)
		analyzer = tracker
	}

	workers := cfg.Analysis.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range results {
		r := &results[i]
		g.Go(func() error {
			if err := analyze(gctx, analyzer, cfg, r); err != nil {
				return err
			}
			if tracker != nil {
				r.Debug = tracker.Collector().Info(r.Method)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for i := range results {
		if results[i].Failed() {
			failed++
		}
	}
	log.Infof("analyzed %d methods from %d sources, %d failed", len(results), len(sources), failed)
	return results, nil
}

// analyze fills in r. Only context errors are returned.
func analyze(ctx context.Context, analyzer debug.MethodAnalyzer, cfg *config.Config, r *Result) error {
	a, err := analyzer.Analyze(ctx, r.Method)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warningf("%s: %v", r.Source, err)
		r.Err = err
		return nil
	}
	r.Analysis = a
	r.Dead = transform.DeadCode(a)

	rewritten := false
	if cfg.Analysis.EliminateDeadCode && len(r.Dead) > 0 {
		log.Debugf("%s: removing %d dead instructions", r.Method.ID(), len(r.Dead))
		r.Method = transform.RemoveDeadCode(a)
		rewritten = true
	}
	if cfg.Analysis.OptimizeLocals {
		m, err := transform.OptimizeLocals(ctx, r.Method)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.Err = fmt.Errorf("local variable optimization: %w", err)
			return nil
		}
		if removed := len(r.Method.Instructions) - len(m.Instructions); removed > 0 {
			log.Debugf("%s: local variable optimization removed %d instructions", r.Method.ID(), removed)
		}
		r.Method = m
		rewritten = true
	}
	if !rewritten {
		return nil
	}

	if r.Analysis, err = analyzer.Analyze(ctx, r.Method); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.Err = fmt.Errorf("after rewriting: %w", err)
	}
	return nil
}
