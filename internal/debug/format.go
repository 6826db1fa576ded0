package debug

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Format returns a formatted debug dump of one method.
func Format(info *Info) string {
	if info == nil {
		return ""
	}

	var buf strings.Builder

	// Method header
	fmt.Fprintf(&buf, "Method: %s\n", info.Method)
	if info.Err != nil {
		fmt.Fprintf(&buf, "  └─ error: %v\n", info.Err)
		return buf.String()
	}
	if len(info.Rows) == 0 {
		fmt.Fprintf(&buf, "  └─ no code\n")
		return buf.String()
	}
	fmt.Fprintf(&buf, "  ├─ steps: %d\n", info.Steps)
	fmt.Fprintf(&buf, "  └─ dead: %d\n\n", info.Dead)

	// Frames
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  #\tloop\tinstruction\tlocals\tstack")
	for _, r := range info.Rows {
		locals, stack := r.Locals, r.Stack
		if r.Dead {
			locals, stack = "(dead)", ""
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\n", r.Index, loopMark(r), r.Insn, locals, stack)
	}
	tw.Flush()

	return buf.String()
}

// FormatAll formats every method, separated by blank lines.
func FormatAll(infos []*Info) string {
	parts := make([]string, len(infos))
	for i, info := range infos {
		parts[i] = Format(info)
	}
	return strings.Join(parts, "\n")
}

func loopMark(r Row) string {
	switch {
	case r.LoopHeader:
		return "┌"
	case r.InLoop:
		return "│"
	default:
		return ""
	}
}
