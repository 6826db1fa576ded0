// Package listing reads and writes method bodies in a line-oriented text
// form close to the output of bytecode disassemblers:
//
//	.class Example
//	.method public static max(II)I
//	.limit locals 2
//	.limit stack 2
//	    ILOAD 0
//	    ILOAD 1
//	    IF_ICMPLE L1
//	    ILOAD 0
//	    IRETURN
//	L1:
//	    ILOAD 1
//	    IRETURN
//	.end method
//
// Directives start with a dot. A line ending in ':' is a label. Everything
// after "//" outside a string literal is a comment. Exception handlers are
// declared with
//
//	.catch java/lang/Exception from L0 to L1 using L2
//
// where "any" in place of the class catches everything.
package listing

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mpyw/jvmflow/internal/descriptor"
	"github.com/mpyw/jvmflow/internal/insn"
	"github.com/mpyw/jvmflow/internal/opcode"
)

// SyntaxError reports a malformed listing line.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

var accessFlags = map[string]int{
	"public":       insn.AccPublic,
	"private":      insn.AccPrivate,
	"protected":    insn.AccProtected,
	"static":       insn.AccStatic,
	"final":        insn.AccFinal,
	"synchronized": insn.AccSynchronized,
	"bridge":       insn.AccBridge,
	"varargs":      insn.AccVarargs,
	"native":       insn.AccNative,
	"abstract":     insn.AccAbstract,
	"strict":       insn.AccStrict,
	"synthetic":    insn.AccSynthetic,
}

// parser holds the state of one Parse call.
type parser struct {
	line    int
	owner   string
	methods []*insn.Method

	cur         *insn.Method
	localsSet   bool
	localsLimit int
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

// Parse reads every method in r.
func Parse(r io.Reader) ([]*insn.Method, error) {
	p := &parser{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		p.line++
		line := strings.TrimSpace(stripComment(sc.Text()))
		if line == "" {
			continue
		}
		if err := p.parseLine(line); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if p.cur != nil {
		return nil, p.errorf("missing .end method for %s", p.cur.Name)
	}
	return p.methods, nil
}

// stripComment removes a trailing "//" comment that is not inside a string
// literal.
func stripComment(s string) string {
	inString := false
	for i := 0; i < len(s); i++ {
		switch {
		case inString && s[i] == '\\':
			i++
		case s[i] == '"':
			inString = !inString
		case !inString && strings.HasPrefix(s[i:], "//"):
			return s[:i]
		}
	}
	return s
}

func (p *parser) parseLine(line string) error {
	if strings.HasPrefix(line, ".") {
		return p.parseDirective(line)
	}
	if p.cur == nil {
		return p.errorf("instruction outside of a method")
	}
	if strings.HasSuffix(line, ":") && !strings.ContainsAny(line, " \t") {
		p.cur.Instructions = append(p.cur.Instructions, &insn.Label{Name: strings.TrimSuffix(line, ":")})
		return nil
	}
	in, err := p.parseInstruction(line)
	if err != nil {
		return err
	}
	p.cur.Instructions = append(p.cur.Instructions, in)
	return nil
}

// =============================================================================
// Directives
// =============================================================================

func (p *parser) parseDirective(line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case ".class":
		if p.cur != nil {
			return p.errorf(".class inside a method")
		}
		if len(fields) != 2 {
			return p.errorf("usage: .class NAME")
		}
		if _, err := descriptor.ObjectType(fields[1]); err != nil {
			return p.errorf("bad class name: %v", err)
		}
		p.owner = fields[1]
		return nil

	case ".method":
		return p.beginMethod(fields[1:])

	case ".limit":
		if p.cur == nil {
			return p.errorf(".limit outside of a method")
		}
		if len(fields) != 3 {
			return p.errorf("usage: .limit locals|stack N")
		}
		n, err := strconv.Atoi(fields[2])
		if err != nil || n < 0 {
			return p.errorf("bad limit %q", fields[2])
		}
		switch fields[1] {
		case "locals":
			p.localsSet = true
			p.localsLimit = n
		case "stack":
			p.cur.MaxStack = n
		default:
			return p.errorf("unknown limit %q", fields[1])
		}
		return nil

	case ".catch":
		if p.cur == nil {
			return p.errorf(".catch outside of a method")
		}
		if len(fields) != 8 || fields[2] != "from" || fields[4] != "to" || fields[6] != "using" {
			return p.errorf("usage: .catch TYPE|any from START to END using HANDLER")
		}
		tc := insn.TryCatch{Start: fields[3], End: fields[5], Handler: fields[7]}
		if fields[1] != "any" {
			if _, err := descriptor.ObjectType(fields[1]); err != nil {
				return p.errorf("bad catch type: %v", err)
			}
			tc.Type = fields[1]
		}
		p.cur.TryCatch = append(p.cur.TryCatch, tc)
		return nil

	case ".end":
		if len(fields) != 2 || fields[1] != "method" {
			return p.errorf("usage: .end method")
		}
		return p.endMethod()

	default:
		return p.errorf("unknown directive %s", fields[0])
	}
}

func (p *parser) beginMethod(args []string) error {
	if p.cur != nil {
		return p.errorf("nested .method")
	}
	if p.owner == "" {
		return p.errorf(".method before .class")
	}
	if len(args) == 0 {
		return p.errorf("usage: .method [FLAGS] NAME(DESC)")
	}
	m := &insn.Method{Owner: p.owner}
	for _, flag := range args[:len(args)-1] {
		acc, ok := accessFlags[flag]
		if !ok {
			return p.errorf("unknown access flag %q", flag)
		}
		m.Access |= acc
	}
	sig := args[len(args)-1]
	paren := strings.IndexByte(sig, '(')
	if paren <= 0 {
		return p.errorf("bad method signature %q", sig)
	}
	m.Name, m.Desc = sig[:paren], sig[paren:]
	if _, err := m.Type(); err != nil {
		return p.errorf("%v", err)
	}
	p.cur = m
	p.localsSet = false
	p.localsLimit = 0
	return nil
}

func (p *parser) endMethod() error {
	if p.cur == nil {
		return p.errorf(".end method without .method")
	}
	m := p.cur
	if p.localsSet {
		m.MaxLocals = p.localsLimit
	} else {
		n, err := inferMaxLocals(m)
		if err != nil {
			return p.errorf("%v", err)
		}
		m.MaxLocals = n
	}
	p.methods = append(p.methods, m)
	p.cur = nil
	return nil
}

// inferMaxLocals returns the smallest local count that fits the parameters
// and every local variable instruction.
func inferMaxLocals(m *insn.Method) (int, error) {
	n, err := m.ParameterSlots()
	if err != nil {
		return 0, err
	}
	for _, in := range m.Instructions {
		switch in := in.(type) {
		case *insn.Var:
			size := 1
			switch in.Opcode {
			case opcode.Lload, opcode.Dload, opcode.Lstore, opcode.Dstore:
				size = 2
			}
			n = max(n, in.Index+size)
		case *insn.Iinc:
			n = max(n, in.Index+1)
		}
	}
	return n, nil
}

// =============================================================================
// Instructions
// =============================================================================

func (p *parser) parseInstruction(line string) (insn.Instruction, error) {
	mnemonic, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	if mnemonic == "LINENUMBER" {
		if len(args) != 2 {
			return nil, p.errorf("usage: LINENUMBER N LABEL")
		}
		n, err := p.atoi(args[0])
		if err != nil {
			return nil, err
		}
		return &insn.LineNumber{Line: n, Start: args[1]}, nil
	}

	op, ok := opcode.Lookup(mnemonic)
	if !ok {
		return nil, p.errorf("unknown instruction %s", mnemonic)
	}

	want := func(n int) error {
		if len(args) != n {
			return p.errorf("%s takes %d operand(s), got %d", op, n, len(args))
		}
		return nil
	}

	switch op.Form() {
	case opcode.FormSimple:
		if err := want(0); err != nil {
			return nil, err
		}
		return &insn.Simple{Opcode: op}, nil

	case opcode.FormInt:
		if err := want(1); err != nil {
			return nil, err
		}
		if op == opcode.Newarray {
			if code, ok := opcode.LookupArrayType(args[0]); ok {
				return &insn.IntOperand{Opcode: op, Operand: code}, nil
			}
		}
		n, err := p.atoi(args[0])
		if err != nil {
			return nil, err
		}
		return &insn.IntOperand{Opcode: op, Operand: n}, nil

	case opcode.FormVar:
		if err := want(1); err != nil {
			return nil, err
		}
		n, err := p.atoi(args[0])
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, p.errorf("negative local index %d", n)
		}
		return &insn.Var{Opcode: op, Index: n}, nil

	case opcode.FormType:
		if err := want(1); err != nil {
			return nil, err
		}
		return &insn.TypeInsn{Opcode: op, Desc: args[0]}, nil

	case opcode.FormField:
		if len(args) != 3 || args[1] != ":" {
			return nil, p.errorf("usage: %s OWNER.NAME : DESC", op)
		}
		owner, name, err := p.member(args[0])
		if err != nil {
			return nil, err
		}
		return &insn.Field{Opcode: op, Owner: owner, Name: name, Desc: args[2]}, nil

	case opcode.FormMethod:
		itf := op == opcode.Invokeinterface
		if len(args) == 3 && args[2] == "(itf)" {
			itf = true
			args = args[:2]
		}
		if err := want(2); err != nil {
			return nil, err
		}
		owner, name, err := p.member(args[0])
		if err != nil {
			return nil, err
		}
		return &insn.MethodCall{Opcode: op, Owner: owner, Name: name, Desc: args[1], Interface: itf}, nil

	case opcode.FormInvokeDynamic:
		if err := want(1); err != nil {
			return nil, err
		}
		paren := strings.IndexByte(args[0], '(')
		if paren <= 0 {
			return nil, p.errorf("usage: INVOKEDYNAMIC NAME(DESC)")
		}
		return &insn.InvokeDynamic{Name: args[0][:paren], Desc: args[0][paren:]}, nil

	case opcode.FormJump:
		if err := want(1); err != nil {
			return nil, err
		}
		return &insn.Jump{Opcode: op, Label: args[0]}, nil

	case opcode.FormLdc:
		c, err := parseConstant(rest)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		return &insn.Ldc{Value: c}, nil

	case opcode.FormIinc:
		if err := want(2); err != nil {
			return nil, err
		}
		idx, err := p.atoi(args[0])
		if err != nil {
			return nil, err
		}
		inc, err := p.atoi(args[1])
		if err != nil {
			return nil, err
		}
		return &insn.Iinc{Index: idx, Increment: inc}, nil

	case opcode.FormTableSwitch:
		return p.tableSwitch(args)

	case opcode.FormLookupSwitch:
		return p.lookupSwitch(args)

	case opcode.FormMultiANewArray:
		if err := want(2); err != nil {
			return nil, err
		}
		dims, err := p.atoi(args[1])
		if err != nil {
			return nil, err
		}
		if dims < 1 {
			return nil, p.errorf("MULTIANEWARRAY needs at least one dimension")
		}
		return &insn.MultiANewArray{Desc: args[0], Dims: dims}, nil

	default:
		return nil, p.errorf("cannot parse %s", op)
	}
}

func (p *parser) atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, p.errorf("bad integer %q", s)
	}
	return n, nil
}

// member splits "owner.name" at the last dot.
func (p *parser) member(s string) (owner, name string, err error) {
	dot := strings.LastIndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return "", "", p.errorf("bad member reference %q", s)
	}
	return s[:dot], s[dot+1:], nil
}

// defaultClause strips a trailing "default LABEL" from switch operands.
func (p *parser) defaultClause(args []string) ([]string, string, error) {
	if len(args) < 2 || args[len(args)-2] != "default" {
		return nil, "", p.errorf("switch needs a default label")
	}
	return args[:len(args)-2], args[len(args)-1], nil
}

func (p *parser) tableSwitch(args []string) (insn.Instruction, error) {
	args, def, err := p.defaultClause(args)
	if err != nil {
		return nil, err
	}
	if len(args) < 1 {
		return nil, p.errorf("usage: TABLESWITCH MIN LABEL... default LABEL")
	}
	lo, err := p.atoi(args[0])
	if err != nil {
		return nil, err
	}
	return &insn.TableSwitch{Min: lo, Labels: args[1:], Default: def}, nil
}

func (p *parser) lookupSwitch(args []string) (insn.Instruction, error) {
	args, def, err := p.defaultClause(args)
	if err != nil {
		return nil, err
	}
	sw := &insn.LookupSwitch{Default: def}
	for _, arg := range args {
		k, label, ok := strings.Cut(arg, ":")
		if !ok {
			return nil, p.errorf("bad lookup switch case %q", arg)
		}
		key, err := p.atoi(k)
		if err != nil {
			return nil, err
		}
		sw.Keys = append(sw.Keys, key)
		sw.Labels = append(sw.Labels, label)
	}
	return sw, nil
}
