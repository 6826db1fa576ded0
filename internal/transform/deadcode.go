// Package transform rewrites method bodies using analysis results.
//
// # Dead Code Removal
//
// An instruction is dead when the analyzer never reached it, i.e. its frame
// is nil. Removal runs in two phases:
//
//  1. Drop every dead meaningful instruction. Labels and line numbers stay,
//     so branch targets and exception ranges still resolve.
//  2. Drop exception table entries that no longer protect any instruction.
//
// # Example
//
//	// Before
//	    ICONST_1
//	    GOTO L1
//	    ICONST_2       // dead
//	    POP            // dead
//	L1:
//	    IRETURN
//
//	// After
//	    ICONST_1
//	    GOTO L1
//	L1:
//	    IRETURN
package transform

import (
	"golang.org/x/tools/container/intsets"

	"github.com/mpyw/jvmflow/internal/analysis"
	"github.com/mpyw/jvmflow/internal/insn"
)

// DeadCode returns the indices of meaningful instructions the analysis never
// reached, in ascending order.
func DeadCode(a *analysis.Analysis) []int {
	set := deadSet(a)
	return set.AppendTo(nil)
}

func deadSet(a *analysis.Analysis) *intsets.Sparse {
	var set intsets.Sparse
	if a.Graph == nil {
		return &set // no code
	}
	for i, in := range a.Method.Instructions {
		if a.Frames[i] == nil && insn.IsMeaningful(in) {
			set.Insert(i)
		}
	}
	return &set
}

// RemoveDeadCode returns a copy of the analyzed method without its dead
// instructions. The original method is not modified. If nothing is dead the
// copy is identical to the original.
func RemoveDeadCode(a *analysis.Analysis) *insn.Method {
	m := a.Method.Clone()
	dead := deadSet(a)
	if dead.IsEmpty() {
		return m
	}

	// Phase 1: drop dead instructions.
	kept := m.Instructions[:0]
	for i, in := range a.Method.Instructions {
		if !dead.Has(i) {
			kept = append(kept, in)
		}
	}
	m.Instructions = kept

	// Phase 2: drop exception ranges left empty.
	m.TryCatch = liveTryCatch(m)
	return m
}

// liveTryCatch returns the entries of m.TryCatch whose range still holds a
// meaningful instruction.
func liveTryCatch(m *insn.Method) []insn.TryCatch {
	labels, err := m.Labels()
	if err != nil {
		panic(err) // the analyzer already resolved every label
	}

	var out []insn.TryCatch
	for _, tc := range m.TryCatch {
		start, end := labels[tc.Start], labels[tc.End]
		if hasMeaningful(m.Instructions, start, end) {
			out = append(out, tc)
		}
	}
	return out
}

func hasMeaningful(code []insn.Instruction, start, end int) bool {
	for i := start; i < end; i++ {
		if insn.IsMeaningful(code[i]) {
			return true
		}
	}
	return false
}
