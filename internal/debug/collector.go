package debug

import (
	"sort"
	"sync"

	"github.com/mpyw/jvmflow/internal/analysis"
	"github.com/mpyw/jvmflow/internal/insn"
)

// Collector encapsulates debug information collection.
// This keeps debug logic isolated from the main analysis code.
// It is safe for concurrent use.
//
// Entries are keyed by method identity, not by method key: two listings may
// both define demo/T.f()V.
type Collector struct {
	mu    sync.Mutex
	infos map[*insn.Method]*Info
}

// NewCollector creates a new Collector.
func NewCollector() *Collector {
	return &Collector{infos: make(map[*insn.Method]*Info)}
}

// Record stores debug info for a finished analysis.
func (c *Collector) Record(a *analysis.Analysis) {
	info := NewInfo(a)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.infos[a.Method] = info
}

// RecordFailure stores the error of a method whose analysis failed.
func (c *Collector) RecordFailure(m *insn.Method, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.infos[m] = &Info{Method: m.ID(), Err: err}
}

// Info returns the debug info of m, or nil if none was recorded.
func (c *Collector) Info(m *insn.Method) *Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.infos[m]
}

// Infos returns all recorded info sorted by method key.
func (c *Collector) Infos() []*Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Info, 0, len(c.infos))
	for _, info := range c.infos {
		out = append(out, info)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out
}
