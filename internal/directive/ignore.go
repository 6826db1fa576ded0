package directive

import (
	"bufio"
	"bytes"
	"sort"
	"strings"
)

// ignoreEntry tracks an ignore directive and whether it was used.
type ignoreEntry struct {
	line int  // Line of the ignore comment
	used bool // Whether this ignore matched a method
}

// IgnoreSet holds the ignore directives of one listing.
type IgnoreSet struct {
	file    bool
	methods map[string]*ignoreEntry // method key -> directive
	orphans []int                   // directives not followed by a method
}

// BuildIgnoreSet scans a listing for ignore directives.
//
// Example:
//
//	//jvmflow:ignore               // Line 3 → orphan unless a .method follows
//	.method static f()V            // Line 4 → "demo/T.f()V" ignored
//
// Keys have the form returned by insn.Method.ID.
func BuildIgnoreSet(data []byte) *IgnoreSet {
	s := &IgnoreSet{methods: make(map[string]*ignoreEntry)}

	owner := ""
	pending := 0 // line of a directive waiting for its .method, or 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		code, comment := splitComment(text)

		if code == "" {
			if !IsIgnoreDirective(comment) {
				continue
			}
			if owner == "" {
				// File-level ignore: before the first .class
				s.file = true
				continue
			}
			if pending != 0 {
				s.orphans = append(s.orphans, pending)
			}
			pending = line
			continue
		}

		fields := strings.Fields(code)
		switch fields[0] {
		case ".class":
			if len(fields) > 1 {
				owner = fields[1]
			}
		case ".method":
			key := owner + "." + fields[len(fields)-1]
			switch {
			case IsIgnoreDirective(comment):
				s.methods[key] = &ignoreEntry{line: line}
			case pending != 0:
				s.methods[key] = &ignoreEntry{line: pending}
				pending = 0
			}
			continue
		}
		if pending != 0 {
			s.orphans = append(s.orphans, pending)
			pending = 0
		}
	}
	if pending != 0 {
		s.orphans = append(s.orphans, pending)
	}
	return s
}

// splitComment splits a line at its first "//" outside a string literal.
func splitComment(line string) (code, comment string) {
	inString := false
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '\\' && inString:
			i++
		case c == '"':
			inString = !inString
		case c == '/' && !inString && i+1 < len(line) && line[i+1] == '/':
			return strings.TrimSpace(line[:i]), line[i:]
		}
	}
	return line, ""
}

// ShouldIgnore returns true if the method with the given key is ignored,
// and marks the matching directive as used.
func (s *IgnoreSet) ShouldIgnore(key string) bool {
	if s.file {
		return true
	}
	if e, ok := s.methods[key]; ok {
		e.used = true
		return true
	}
	return false
}

// IsFileIgnored returns true if the whole listing is ignored.
func (s *IgnoreSet) IsFileIgnored() bool { return s.file }

// UnusedLines returns the lines of directives that matched no method,
// in ascending order.
func (s *IgnoreSet) UnusedLines() []int {
	lines := append([]int(nil), s.orphans...)
	for _, e := range s.methods {
		if !e.used {
			lines = append(lines, e.line)
		}
	}
	sort.Ints(lines)
	return lines
}
