package transform

import (
	"golang.org/x/tools/container/intsets"

	"github.com/mpyw/jvmflow/internal/cfg"
	"github.com/mpyw/jvmflow/internal/insn"
	"github.com/mpyw/jvmflow/internal/opcode"
)

// Liveness records which local slots may still be read on some path.
//
// A slot is live before instruction i when a path from i loads it before
// storing it. A wide value counts as live through its first slot.
type Liveness struct {
	g  *cfg.Graph
	in []intsets.Sparse
}

// AnalyzeLiveness computes liveness for every instruction of m by backward
// iteration over g. An exception handler's live slots are live before every
// instruction it covers.
func AnalyzeLiveness(m *insn.Method, g *cfg.Graph) *Liveness {
	n := len(m.Instructions)
	l := &Liveness{g: g, in: make([]intsets.Sparse, n)}

	var worklist intsets.Sparse
	for i := range n {
		worklist.Insert(i)
	}
	var next intsets.Sparse
	for !worklist.IsEmpty() {
		// Backward problem: later instructions first.
		i := worklist.Max()
		worklist.Remove(i)

		next.Clear()
		l.liveOut(i, &next)
		use, def := slotEffect(m.Instructions[i])
		if def >= 0 {
			next.Remove(def)
		}
		if use >= 0 {
			next.Insert(use)
		}
		for _, h := range g.Handlers(i) {
			next.UnionWith(&l.in[h.Index])
		}

		if next.Equals(&l.in[i]) {
			continue
		}
		l.in[i].Copy(&next)
		for _, p := range g.Preds(i) {
			worklist.Insert(p)
		}
	}
	return l
}

func (l *Liveness) liveOut(i int, out *intsets.Sparse) {
	for _, s := range l.g.Succs(i) {
		out.UnionWith(&l.in[s])
	}
}

// LiveBefore returns true if slot may be read on a path starting at
// instruction i.
func (l *Liveness) LiveBefore(i, slot int) bool { return l.in[i].Has(slot) }

// LiveAfter returns true if slot may be read on a path starting at a
// normal successor of instruction i.
func (l *Liveness) LiveAfter(i, slot int) bool {
	for _, s := range l.g.Succs(i) {
		if l.in[s].Has(slot) {
			return true
		}
	}
	return false
}

// liveInHandlers returns true if a handler covering instruction i may read
// slot.
func (l *Liveness) liveInHandlers(i, slot int) bool {
	for _, h := range l.g.Handlers(i) {
		if l.in[h.Index].Has(slot) {
			return true
		}
	}
	return false
}

// slotEffect returns the local slot in reads and the one it overwrites, or
// -1 for none.
func slotEffect(in insn.Instruction) (use, def int) {
	switch in := in.(type) {
	case *insn.Var:
		switch in.Op().Category() {
		case opcode.CategoryLoad:
			return in.Index, -1
		case opcode.CategoryStore:
			return -1, in.Index
		}
		return in.Index, -1 // RET
	case *insn.Iinc:
		return in.Index, -1
	}
	return -1, -1
}
