package descriptor

import (
	"fmt"
	"strings"
)

// SyntaxError reports a malformed descriptor or internal name.
type SyntaxError struct {
	Desc string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("descriptor: invalid %q: %s", e.Desc, e.Msg)
}

// Parse parses a field, return or method descriptor.
// The whole string must be consumed.
func Parse(desc string) (Type, error) {
	if desc == "" {
		return Type{}, &SyntaxError{Desc: desc, Msg: "empty descriptor"}
	}
	if desc[0] == '(' {
		return parseMethod(desc)
	}
	t, next, err := parseReturn(desc, 0)
	if err != nil {
		return Type{}, err
	}
	if next != len(desc) {
		return Type{}, &SyntaxError{Desc: desc, Msg: "trailing characters"}
	}
	return t, nil
}

func parseMethod(desc string) (Type, error) {
	i := 1
	for {
		if i >= len(desc) {
			return Type{}, &SyntaxError{Desc: desc, Msg: "missing ')'"}
		}
		if desc[i] == ')' {
			break
		}
		_, next, err := parseField(desc, i)
		if err != nil {
			return Type{}, err
		}
		i = next
	}
	_, next, err := parseReturn(desc, i+1)
	if err != nil {
		return Type{}, err
	}
	if next != len(desc) {
		return Type{}, &SyntaxError{Desc: desc, Msg: "trailing characters"}
	}
	return Type{sort: SortMethod, desc: desc}, nil
}

// parseReturn parses a field type or V at desc[i:].
func parseReturn(desc string, i int) (Type, int, error) {
	if i < len(desc) && desc[i] == 'V' {
		return Void, i + 1, nil
	}
	return parseField(desc, i)
}

// parseField parses one field type at desc[i:] and returns it with the index
// just past it.
func parseField(desc string, i int) (Type, int, error) {
	if i >= len(desc) {
		return Type{}, i, &SyntaxError{Desc: desc, Msg: "unexpected end"}
	}
	switch desc[i] {
	case 'Z':
		return Boolean, i + 1, nil
	case 'C':
		return Char, i + 1, nil
	case 'B':
		return Byte, i + 1, nil
	case 'S':
		return Short, i + 1, nil
	case 'I':
		return Int, i + 1, nil
	case 'F':
		return Float, i + 1, nil
	case 'J':
		return Long, i + 1, nil
	case 'D':
		return Double, i + 1, nil
	case 'L':
		end := strings.IndexByte(desc[i:], ';')
		if end < 0 {
			return Type{}, i, &SyntaxError{Desc: desc, Msg: "missing ';'"}
		}
		name := desc[i+1 : i+end]
		if err := checkInternalName(name); err != nil {
			return Type{}, i, &SyntaxError{Desc: desc, Msg: err.(*SyntaxError).Msg}
		}
		return Type{sort: SortObject, desc: desc[i : i+end+1]}, i + end + 1, nil
	case '[':
		start := i
		for i < len(desc) && desc[i] == '[' {
			i++
		}
		if i-start > 255 {
			return Type{}, i, &SyntaxError{Desc: desc, Msg: "too many array dimensions"}
		}
		_, next, err := parseField(desc, i)
		if err != nil {
			return Type{}, next, err
		}
		return Type{sort: SortArray, desc: desc[start:next]}, next, nil
	default:
		return Type{}, i, &SyntaxError{Desc: desc, Msg: fmt.Sprintf("unexpected %q at %d", desc[i], i)}
	}
}

// checkInternalName validates a binary class name in internal form.
func checkInternalName(name string) error {
	if name == "" {
		return &SyntaxError{Desc: name, Msg: "empty class name"}
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" {
			return &SyntaxError{Desc: name, Msg: "empty name segment"}
		}
		if strings.ContainsAny(part, ".;[") {
			return &SyntaxError{Desc: name, Msg: "illegal character in class name"}
		}
	}
	return nil
}
