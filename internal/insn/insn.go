// Package insn models decoded JVM instructions and method bodies.
//
// Instruction is a closed interface: only the variants declared here
// implement it, so a type switch over them covers every instruction shape.
// Each variant carries the operands of one operand form (see opcode.Form).
package insn

import (
	"fmt"
	"strings"

	"github.com/mpyw/jvmflow/internal/opcode"
)

// =============================================================================
// Instruction
// =============================================================================

// Instruction is one element of a method's instruction list.
type Instruction interface {
	// Op returns the opcode, or opcode.None for pseudo-instructions.
	Op() opcode.Op
	String() string
	isInstruction()
}

// Simple is an instruction without operands (IADD, ARETURN, ...).
type Simple struct {
	Opcode opcode.Op
}

// IntOperand is BIPUSH, SIPUSH or NEWARRAY with its immediate operand.
type IntOperand struct {
	Opcode  opcode.Op
	Operand int
}

// Var is a local variable load or store, or RET.
type Var struct {
	Opcode opcode.Op
	Index  int
}

// TypeInsn is NEW, ANEWARRAY, CHECKCAST or INSTANCEOF.
// Desc is an internal name, or an array descriptor for array classes.
type TypeInsn struct {
	Opcode opcode.Op
	Desc   string
}

// Field is a field access.
type Field struct {
	Opcode opcode.Op
	Owner  string
	Name   string
	Desc   string
}

// MethodCall is an INVOKEVIRTUAL/SPECIAL/STATIC/INTERFACE instruction.
type MethodCall struct {
	Opcode    opcode.Op
	Owner     string
	Name      string
	Desc      string
	Interface bool
}

// InvokeDynamic is an INVOKEDYNAMIC call site.
type InvokeDynamic struct {
	Name string
	Desc string
}

// Jump is a conditional or unconditional branch, or JSR.
type Jump struct {
	Opcode opcode.Op
	Label  string
}

// Ldc pushes a constant pool entry.
type Ldc struct {
	Value Constant
}

// Iinc increments a local int variable.
type Iinc struct {
	Index     int
	Increment int
}

// TableSwitch is a dense switch: key Min+i jumps to Labels[i].
type TableSwitch struct {
	Min     int
	Labels  []string
	Default string
}

// LookupSwitch is a sparse switch: key Keys[i] jumps to Labels[i].
type LookupSwitch struct {
	Keys    []int
	Labels  []string
	Default string
}

// MultiANewArray allocates a multi-dimensional array.
type MultiANewArray struct {
	Desc string
	Dims int
}

// Label marks a position in the instruction list. It does not execute.
type Label struct {
	Name string
}

// LineNumber attaches a source line to a label. It does not execute.
type LineNumber struct {
	Line  int
	Start string
}

func (i *Simple) Op() opcode.Op        { return i.Opcode }
func (i *IntOperand) Op() opcode.Op    { return i.Opcode }
func (i *Var) Op() opcode.Op           { return i.Opcode }
func (i *TypeInsn) Op() opcode.Op      { return i.Opcode }
func (i *Field) Op() opcode.Op         { return i.Opcode }
func (i *MethodCall) Op() opcode.Op    { return i.Opcode }
func (*InvokeDynamic) Op() opcode.Op   { return opcode.Invokedynamic }
func (i *Jump) Op() opcode.Op          { return i.Opcode }
func (*Ldc) Op() opcode.Op             { return opcode.Ldc }
func (*Iinc) Op() opcode.Op            { return opcode.Iinc }
func (*TableSwitch) Op() opcode.Op     { return opcode.Tableswitch }
func (*LookupSwitch) Op() opcode.Op    { return opcode.Lookupswitch }
func (*MultiANewArray) Op() opcode.Op  { return opcode.Multianewarray }
func (*Label) Op() opcode.Op           { return opcode.None }
func (*LineNumber) Op() opcode.Op      { return opcode.None }
func (*Simple) isInstruction()         {}
func (*IntOperand) isInstruction()     {}
func (*Var) isInstruction()            {}
func (*TypeInsn) isInstruction()       {}
func (*Field) isInstruction()          {}
func (*MethodCall) isInstruction()     {}
func (*InvokeDynamic) isInstruction()  {}
func (*Jump) isInstruction()           {}
func (*Ldc) isInstruction()            {}
func (*Iinc) isInstruction()           {}
func (*TableSwitch) isInstruction()    {}
func (*LookupSwitch) isInstruction()   {}
func (*MultiANewArray) isInstruction() {}
func (*Label) isInstruction()          {}
func (*LineNumber) isInstruction()     {}

// =============================================================================
// Textual Form
// =============================================================================

func (i *Simple) String() string { return i.Opcode.String() }

func (i *IntOperand) String() string {
	if i.Opcode == opcode.Newarray {
		if name, ok := opcode.ArrayTypeName(i.Operand); ok {
			return "NEWARRAY " + name
		}
	}
	return fmt.Sprintf("%s %d", i.Opcode, i.Operand)
}

func (i *Var) String() string      { return fmt.Sprintf("%s %d", i.Opcode, i.Index) }
func (i *TypeInsn) String() string { return fmt.Sprintf("%s %s", i.Opcode, i.Desc) }

func (i *Field) String() string {
	return fmt.Sprintf("%s %s.%s : %s", i.Opcode, i.Owner, i.Name, i.Desc)
}

func (i *MethodCall) String() string {
	s := fmt.Sprintf("%s %s.%s %s", i.Opcode, i.Owner, i.Name, i.Desc)
	if i.Interface && i.Opcode != opcode.Invokeinterface {
		s += " (itf)"
	}
	return s
}

func (i *InvokeDynamic) String() string { return "INVOKEDYNAMIC " + i.Name + i.Desc }
func (i *Jump) String() string          { return fmt.Sprintf("%s %s", i.Opcode, i.Label) }
func (i *Ldc) String() string           { return "LDC " + i.Value.String() }

func (i *Iinc) String() string { return fmt.Sprintf("IINC %d %d", i.Index, i.Increment) }

func (i *TableSwitch) String() string {
	return fmt.Sprintf("TABLESWITCH %d %s default %s", i.Min, strings.Join(i.Labels, " "), i.Default)
}

func (i *LookupSwitch) String() string {
	var b strings.Builder
	b.WriteString("LOOKUPSWITCH")
	for k, key := range i.Keys {
		fmt.Fprintf(&b, " %d:%s", key, i.Labels[k])
	}
	fmt.Fprintf(&b, " default %s", i.Default)
	return b.String()
}

func (i *MultiANewArray) String() string {
	return fmt.Sprintf("MULTIANEWARRAY %s %d", i.Desc, i.Dims)
}

func (i *Label) String() string      { return i.Name + ":" }
func (i *LineNumber) String() string { return fmt.Sprintf("LINENUMBER %d %s", i.Line, i.Start) }

// IsMeaningful returns false for pseudo-instructions (labels, line numbers),
// which carry no behavior and are never dead code.
func IsMeaningful(in Instruction) bool {
	return in.Op() != opcode.None
}

// Targets returns the labels a branching instruction may jump to,
// including switch defaults. Non-branching instructions return nil.
func Targets(in Instruction) []string {
	switch i := in.(type) {
	case *Jump:
		return []string{i.Label}
	case *TableSwitch:
		return append([]string{i.Default}, i.Labels...)
	case *LookupSwitch:
		return append([]string{i.Default}, i.Labels...)
	default:
		return nil
	}
}
