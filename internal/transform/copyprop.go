package transform

import (
	"context"
	"fmt"
	"slices"

	"github.com/mpyw/jvmflow/internal/analysis"
	"github.com/mpyw/jvmflow/internal/insn"
	"github.com/mpyw/jvmflow/internal/interp"
	"github.com/mpyw/jvmflow/internal/opcode"
)

// defSet is a set of definition sites: positions of stores and IINCs.
// Sets are interned per analysis, so equal sets are the same pointer.
type defSet struct {
	sites []int // ascending
}

// reachingInterpreter tags every local with the definitions that may have
// written it. Loads and stack shuffles carry the tag along, so the value a
// store consumes still names where it was loaded from.
type reachingInterpreter struct {
	taggedInterpreter[*defSet]
	index map[insn.Instruction]int
	sets  map[string]*defSet
}

func newReachingInterpreter(m *insn.Method) *reachingInterpreter {
	return &reachingInterpreter{
		taggedInterpreter: taggedInterpreter[*defSet]{base: interp.New()},
		index:             indexOf(m),
		sets:              make(map[string]*defSet),
	}
}

func (r *reachingInterpreter) intern(sites []int) *defSet {
	key := fmt.Sprint(sites)
	if d, ok := r.sets[key]; ok {
		return d
	}
	d := &defSet{sites: sites}
	r.sets[key] = d
	return d
}

func (r *reachingInterpreter) union(a, b *defSet) *defSet {
	if a == b {
		return a
	}
	sites := slices.Concat(a.sites, b.sites)
	slices.Sort(sites)
	return r.intern(slices.Compact(sites))
}

func (r *reachingInterpreter) CopyOperation(in insn.Instruction, v tagged[*defSet]) tagged[*defSet] {
	out := r.taggedInterpreter.CopyOperation(in, v)
	if isStore(in) {
		out.tag = r.intern([]int{r.index[in]})
	} else {
		out.tag = v.tag
	}
	return out
}

func (r *reachingInterpreter) UnaryOperation(in insn.Instruction, v tagged[*defSet]) (tagged[*defSet], bool, error) {
	out, ok, err := r.taggedInterpreter.UnaryOperation(in, v)
	if in.Op() == opcode.Iinc {
		out.tag = r.intern([]int{r.index[in]})
	}
	return out, ok, err
}

func (r *reachingInterpreter) Merge(a, b tagged[*defSet]) tagged[*defSet] {
	out := r.taggedInterpreter.Merge(a, b)
	if a.tag != nil && b.tag != nil {
		out.tag = r.union(a.tag, b.tag)
	}
	return out
}

// copyResolver follows chains of copies back to the definition they
// started from.
//
// Example:
//
//	0: BIPUSH 7
//	1: ISTORE 1
//	2: ILOAD 1
//	3: ISTORE 2
//	4: ILOAD 2
//	5: ISTORE 3
//
// The copies at 3 and 5 resolve to the definition at 1. While it still
// reaches them, ILOAD 2 and ILOAD 3 may read slot 1.
type copyResolver struct {
	a    *analysis.Of[tagged[*defSet]]
	memo map[int]*defSet
}

func (c *copyResolver) resolve(d *defSet) *defSet {
	if len(d.sites) != 1 {
		return d
	}
	site := d.sites[0]
	if p, ok := c.memo[site]; ok {
		return p
	}
	c.memo[site] = d // cycle guard

	f := c.a.Frames[site]
	if !isStore(c.a.Method.Instructions[site]) || f == nil {
		return d
	}
	stored, err := f.StackTop()
	if err != nil || stored.tag == nil {
		return d
	}
	p := c.resolve(stored.tag)
	c.memo[site] = p
	return p
}

// PropagateCopies returns a copy of m where a load of a slot that only
// holds a copy of another slot reads the other slot instead, as long as the
// other slot still holds the same definition. The original method is not
// modified.
//
// The stores that made the copies usually become dead; RemoveRedundantStores
// cleans them up.
//
// m must analyze cleanly; the analysis error is returned otherwise.
func PropagateCopies(ctx context.Context, m *insn.Method) (*insn.Method, error) {
	a, err := analysis.Run[tagged[*defSet]](ctx, m, newReachingInterpreter(m))
	if err != nil {
		return nil, err
	}
	out := m.Clone()
	if a.Graph == nil {
		return out, nil
	}

	c := &copyResolver{a: a, memo: make(map[int]*defSet)}
	for i, in := range m.Instructions {
		load, ok := in.(*insn.Var)
		if !ok || !isLoad(load) || a.Frames[i] == nil {
			continue
		}
		cur, err := a.Frames[i].Local(load.Index)
		if err != nil || cur.tag == nil {
			continue
		}
		def := c.resolve(cur.tag)
		slot := definedSlot(m.Instructions[def.sites[0]])
		if slot == load.Index {
			continue
		}
		// The source slot must still hold exactly that definition here.
		cand, err := a.Frames[i].Local(slot)
		if err != nil || cand.tag != def || cand.Value != cur.Value {
			continue
		}
		out.Instructions[i] = &insn.Var{Opcode: load.Opcode, Index: slot}
	}
	return out, nil
}

// definedSlot returns the slot written by a store or IINC.
func definedSlot(in insn.Instruction) int {
	switch in := in.(type) {
	case *insn.Var:
		return in.Index
	case *insn.Iinc:
		return in.Index
	}
	panic(fmt.Sprintf("transform: %s defines no local", in))
}

// OptimizeLocals runs PropagateCopies and then RemoveRedundantStores.
func OptimizeLocals(ctx context.Context, m *insn.Method) (*insn.Method, error) {
	m, err := PropagateCopies(ctx, m)
	if err != nil {
		return nil, err
	}
	return RemoveRedundantStores(ctx, m)
}
