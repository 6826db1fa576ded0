package listing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mpyw/jvmflow/internal/descriptor"
	"github.com/mpyw/jvmflow/internal/insn"
)

// parseConstant parses an LDC operand:
//
//	42          int
//	42L         long
//	1.5F        float
//	1.5D        double
//	"text"      string (Go quoting)
//	Type(desc)  class, array class or method type
//	Handle(TAG OWNER.NAME DESC [itf])
//	Dynamic(NAME DESC Handle(...))
func parseConstant(s string) (insn.Constant, error) {
	if s == "" {
		return nil, errors.New("LDC needs an operand")
	}

	switch {
	case s[0] == '"':
		str, err := strconv.Unquote(s)
		if err != nil {
			return nil, fmt.Errorf("bad string constant %s", s)
		}
		return insn.String(str), nil

	case strings.HasPrefix(s, "Type("):
		inner, err := unwrap(s, "Type")
		if err != nil {
			return nil, err
		}
		t, err := descriptor.Parse(inner)
		if err != nil {
			return nil, err
		}
		return insn.TypeConstant{Type: t}, nil

	case strings.HasPrefix(s, "Handle("):
		return parseHandle(s)

	case strings.HasPrefix(s, "Dynamic("):
		inner, err := unwrap(s, "Dynamic")
		if err != nil {
			return nil, err
		}
		parts := strings.SplitN(inner, " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("usage: Dynamic(NAME DESC Handle(...))")
		}
		bsm, err := parseHandle(parts[2])
		if err != nil {
			return nil, err
		}
		return insn.Dynamic{Name: parts[0], Desc: parts[1], Bootstrap: bsm}, nil
	}

	body := s[:len(s)-1]
	switch s[len(s)-1] {
	case 'L':
		n, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad long constant %s", s)
		}
		return insn.Long(n), nil
	case 'F':
		f, err := strconv.ParseFloat(body, 32)
		if err != nil {
			return nil, fmt.Errorf("bad float constant %s", s)
		}
		return insn.Float(f), nil
	case 'D':
		f, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return nil, fmt.Errorf("bad double constant %s", s)
		}
		return insn.Double(f), nil
	}

	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("bad constant %s", s)
	}
	return insn.Integer(n), nil
}

// unwrap returns the text between "name(" and the final ")".
func unwrap(s, name string) (string, error) {
	if !strings.HasPrefix(s, name+"(") || !strings.HasSuffix(s, ")") {
		return "", fmt.Errorf("bad %s constant %s", name, s)
	}
	return s[len(name)+1 : len(s)-1], nil
}

func parseHandle(s string) (insn.Handle, error) {
	inner, err := unwrap(s, "Handle")
	if err != nil {
		return insn.Handle{}, err
	}
	f := strings.Fields(inner)
	if len(f) != 3 && !(len(f) == 4 && f[3] == "itf") {
		return insn.Handle{}, fmt.Errorf("usage: Handle(TAG OWNER.NAME DESC [itf])")
	}
	tag, err := strconv.Atoi(f[0])
	if err != nil || tag < insn.HGetField || tag > insn.HInvokeInterface {
		return insn.Handle{}, fmt.Errorf("bad handle kind %q", f[0])
	}
	dot := strings.LastIndexByte(f[1], '.')
	if dot <= 0 || dot == len(f[1])-1 {
		return insn.Handle{}, fmt.Errorf("bad handle member %q", f[1])
	}
	return insn.Handle{
		Tag:       tag,
		Owner:     f[1][:dot],
		Name:      f[1][dot+1:],
		Desc:      f[2],
		Interface: len(f) == 4,
	}, nil
}
