package debug

import (
	"context"

	"github.com/mpyw/jvmflow/internal/analysis"
	"github.com/mpyw/jvmflow/internal/insn"
)

// MethodAnalyzer is the interface shared by analysis.Analyzer and Tracker.
type MethodAnalyzer interface {
	Analyze(ctx context.Context, m *insn.Method) (*analysis.Analysis, error)
}

var (
	_ MethodAnalyzer = (*analysis.Analyzer)(nil)
	_ MethodAnalyzer = (*Tracker)(nil)
)

// Tracker wraps a MethodAnalyzer and records every result in a Collector.
type Tracker struct {
	MethodAnalyzer
	collector *Collector
}

// NewTracker creates a debug-enabled analyzer that wraps a base analyzer.
func NewTracker(base MethodAnalyzer) *Tracker {
	return &Tracker{
		MethodAnalyzer: base,
		collector:      NewCollector(),
	}
}

// Analyze wraps the base Analyze and records its outcome.
// Context errors are not recorded.
func (t *Tracker) Analyze(ctx context.Context, m *insn.Method) (*analysis.Analysis, error) {
	a, err := t.MethodAnalyzer.Analyze(ctx, m)
	switch {
	case err == nil:
		t.collector.Record(a)
	case ctx.Err() == nil:
		t.collector.RecordFailure(m, err)
	}
	return a, err
}

// Collector returns the collector holding the recorded results.
func (t *Tracker) Collector() *Collector {
	return t.collector
}
