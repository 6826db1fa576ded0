package transform

import (
	"context"

	"golang.org/x/tools/container/intsets"

	"github.com/mpyw/jvmflow/internal/analysis"
	"github.com/mpyw/jvmflow/internal/insn"
	"github.com/mpyw/jvmflow/internal/interp"
	"github.com/mpyw/jvmflow/internal/opcode"
)

// loadedInterpreter tags the values pushed by loads and by DUP with the
// position of that instruction plus one.
type loadedInterpreter struct {
	taggedInterpreter[int]
	index map[insn.Instruction]int
}

func newLoadedInterpreter(m *insn.Method) loadedInterpreter {
	return loadedInterpreter{
		taggedInterpreter: taggedInterpreter[int]{base: interp.New()},
		index:             indexOf(m),
	}
}

func (l loadedInterpreter) CopyOperation(in insn.Instruction, v tagged[int]) tagged[int] {
	r := l.taggedInterpreter.CopyOperation(in, v)
	if isLoad(in) || isDupOf(in, v) {
		r.tag = l.index[in] + 1
	}
	return r
}

func (l loadedInterpreter) Merge(a, b tagged[int]) tagged[int] {
	r := l.taggedInterpreter.Merge(a, b)
	if a.tag == b.tag {
		r.tag = a.tag
	}
	return r
}

// RemoveRedundantStores returns a copy of m without stores whose value is
// never read. The original method is not modified.
//
// For a store to a slot that is dead afterwards:
//
//   - if the value was pushed by a load (or the DUP of one) earlier in the
//     same straight-line block, both the push and the store go
//   - otherwise the store becomes POP or POP2
//
// A store immediately reloaded from a slot that is dead after the reload
// is dropped together with the reload.
//
// m must analyze cleanly; the analysis error is returned otherwise.
func RemoveRedundantStores(ctx context.Context, m *insn.Method) (*insn.Method, error) {
	a, err := analysis.Run[tagged[int]](ctx, m, newLoadedInterpreter(m))
	if err != nil {
		return nil, err
	}
	out := m.Clone()
	if a.Graph == nil {
		return out, nil
	}
	live := AnalyzeLiveness(m, a.Graph)

	code := m.Instructions
	var drop intsets.Sparse
	replace := make(map[int]insn.Instruction)
	for i, in := range code {
		store, ok := in.(*insn.Var)
		if !ok || !isStore(store) || a.Frames[i] == nil || drop.Has(i) {
			continue
		}
		switch {
		case !live.LiveAfter(i, store.Index):
			v, _ := a.Frames[i].StackTop()
			if src, ok := removableSource(a, i, v); ok && !drop.Has(src) {
				drop.Insert(src)
				drop.Insert(i)
			} else {
				replace[i] = popFor(store)
			}
		case i+1 < len(code) && reloads(code[i+1], store) &&
			!live.LiveAfter(i+1, store.Index) && !live.liveInHandlers(i+1, store.Index):
			// ISTORE n; ILOAD n with n dead after the load.
			drop.Insert(i)
			drop.Insert(i + 1)
		}
	}
	if drop.IsEmpty() && len(replace) == 0 {
		return out, nil
	}

	kept := out.Instructions[:0]
	for i, in := range code {
		if drop.Has(i) {
			continue
		}
		if r, ok := replace[i]; ok {
			in = r
		}
		kept = append(kept, in)
	}
	out.Instructions = kept
	out.TryCatch = liveTryCatch(out)
	return out, nil
}

// removableSource returns the instruction that can be removed together with
// the store at s, which consumes v. That is the load that pushed v, or the
// DUP that copied it. Everything between it and s must be straight-line
// code that leaves the stack below v alone.
func removableSource(a *analysis.Of[tagged[int]], s int, v tagged[int]) (int, bool) {
	if v.tag == 0 {
		return 0, false
	}
	src := v.tag - 1
	if src >= s {
		return 0, false
	}

	code := a.Method.Instructions
	dup := -1
	for j := src + 1; j < s; j++ {
		in := code[j]
		if _, ok := in.(*insn.Label); ok || insn.Targets(in) != nil {
			return 0, false
		}
		if in.Op().Category() != opcode.CategoryStack {
			continue
		}
		if a.Frames[j] == nil || dup >= 0 {
			return 0, false
		}
		// Only a DUP of v itself may sit in between. It goes instead of
		// the load.
		top, err := a.Frames[j].StackTop()
		if err != nil || top != v || !isDupOf(in, v) {
			return 0, false
		}
		dup = j
	}
	if dup >= 0 {
		return dup, true
	}
	return src, true
}

func isLoad(in insn.Instruction) bool { return in.Op().Category() == opcode.CategoryLoad }

func isStore(in insn.Instruction) bool { return in.Op().Category() == opcode.CategoryStore }

// isDupOf returns true if in duplicates exactly the value v on top of the
// stack.
func isDupOf[T comparable](in insn.Instruction, v tagged[T]) bool {
	switch in.Op() {
	case opcode.Dup:
		return true
	case opcode.Dup2:
		return v.Size() == 2
	}
	return false
}

// reloads returns true if next loads the slot store just wrote.
func reloads(next insn.Instruction, store *insn.Var) bool {
	load, ok := next.(*insn.Var)
	return ok && isLoad(load) && load.Index == store.Index
}

func popFor(store *insn.Var) insn.Instruction {
	switch store.Op() {
	case opcode.Lstore, opcode.Dstore:
		return &insn.Simple{Opcode: opcode.Pop2}
	}
	return &insn.Simple{Opcode: opcode.Pop}
}
