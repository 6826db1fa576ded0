package debug

import (
	"github.com/mpyw/jvmflow/internal/analysis"
	"github.com/mpyw/jvmflow/internal/insn"
)

// Info contains collected debug information for one analyzed method.
type Info struct {
	Method string
	Steps  int
	Dead   int // number of unreachable meaningful instructions
	Rows   []Row
	Err    error // non-nil if the analysis failed
}

// Row contains the state before a single instruction.
type Row struct {
	Index      int
	Insn       string
	Locals     string // one value string per slot, concatenated
	Stack      string
	Dead       bool // never reached
	InLoop     bool
	LoopHeader bool // target of a back-edge
}

// NewInfo creates Info from a finished analysis.
func NewInfo(a *analysis.Analysis) *Info {
	info := &Info{Method: a.Method.ID(), Steps: a.Steps}
	if a.Graph == nil {
		return info
	}

	loops := a.Graph.DetectLoops()
	headers := make(map[int]bool, len(loops.Headers()))
	for _, h := range loops.Headers() {
		headers[h] = true
	}

	info.Rows = make([]Row, len(a.Method.Instructions))
	for i, in := range a.Method.Instructions {
		row := Row{
			Index:      i,
			Insn:       in.String(),
			InLoop:     loops.IsInLoop(i),
			LoopHeader: headers[i],
		}
		if f := a.Frames[i]; f != nil {
			row.Locals, row.Stack = splitFrame(f.String())
		} else {
			row.Dead = true
			if insn.IsMeaningful(in) {
				info.Dead++
			}
		}
		info.Rows[i] = row
	}
	return info
}

// splitFrame splits a frame string into its locals and stack halves.
func splitFrame(s string) (locals, stack string) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ' ' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}
