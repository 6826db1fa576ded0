package listing

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mpyw/jvmflow/internal/frame"
	"github.com/mpyw/jvmflow/internal/insn"
)

// DeadMarker annotates unreachable instructions in printed listings.
const DeadMarker = "dead"

// Print writes one method in listing form. When frames is not nil, each
// instruction is followed by a comment holding the frame before it, or
// DeadMarker if the instruction is unreachable.
func Print(w io.Writer, m *insn.Method, frames []*frame.Frame) error {
	bw := bufio.NewWriter(w)
	printMethod(bw, m, frames)
	return bw.Flush()
}

// PrintAll writes methods, emitting a .class directive whenever the owner
// changes.
func PrintAll(w io.Writer, methods []*insn.Method) error {
	bw := bufio.NewWriter(w)
	owner := ""
	for i, m := range methods {
		if i > 0 {
			bw.WriteByte('\n')
		}
		if m.Owner != owner {
			owner = m.Owner
			fmt.Fprintf(bw, ".class %s\n", owner)
		}
		printMethod(bw, m, nil)
	}
	return bw.Flush()
}

func printMethod(w *bufio.Writer, m *insn.Method, frames []*frame.Frame) {
	fmt.Fprintf(w, ".method %s%s%s\n", flagPrefix(m.Access), m.Name, m.Desc)
	fmt.Fprintf(w, ".limit locals %d\n", m.MaxLocals)
	if m.MaxStack > 0 {
		fmt.Fprintf(w, ".limit stack %d\n", m.MaxStack)
	}
	for _, tc := range m.TryCatch {
		typ := tc.Type
		if typ == "" {
			typ = "any"
		}
		fmt.Fprintf(w, ".catch %s from %s to %s using %s\n", typ, tc.Start, tc.End, tc.Handler)
	}

	for i, in := range m.Instructions {
		line := in.String()
		if _, ok := in.(*insn.Label); !ok {
			line = "    " + line
		}
		if frames != nil && insn.IsMeaningful(in) {
			note := DeadMarker
			if i < len(frames) && frames[i] != nil {
				note = strings.TrimRight(frames[i].String(), " ")
			}
			line = fmt.Sprintf("%-40s // %s", line, note)
		}
		w.WriteString(line)
		w.WriteByte('\n')
	}
	w.WriteString(".end method\n")
}

// flagPrefix renders access flags in a fixed order, each followed by a
// space.
func flagPrefix(access int) string {
	names := make([]string, 0, len(accessFlags))
	for name, flag := range accessFlags {
		if access&flag != 0 {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return accessFlags[names[i]] < accessFlags[names[j]]
	})
	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(' ')
	}
	return b.String()
}
