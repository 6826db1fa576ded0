// Package frame holds the abstract state of a method at one program point:
// the values in the local variable slots and on the operand stack.
//
// A Frame is mutable. The analyzer keeps one frame per instruction, clones
// it to execute the instruction, and merges the result into the frames of
// the successors:
//
//	frames[i] ──Clone──> f ──Execute(insn[i])──> f ──Merge──> frames[succ]
//
// Long and double values take two local slots. The second slot holds
// Uninitialized. On the stack every value takes one entry, and stack
// shuffles consult Value.Size to tell category 1 from category 2.
package frame

import (
	"fmt"
	"strings"

	"github.com/mpyw/jvmflow/internal/descriptor"
	"github.com/mpyw/jvmflow/internal/insn"
	"github.com/mpyw/jvmflow/internal/opcode"
	"github.com/mpyw/jvmflow/internal/value"
)

// Slot is a value a frame can hold. Passes that track where a value came
// from wrap value.Value in their own comparable type.
type Slot interface {
	comparable
	Size() int
	String() string
}

// InterpreterOf computes the values produced by instructions.
type InterpreterOf[V Slot] interface {
	NewValue(t descriptor.Type) (V, bool)
	NewEmptyValue() V
	NewOperation(in insn.Instruction) (V, error)
	CopyOperation(in insn.Instruction, v V) V
	UnaryOperation(in insn.Instruction, v V) (V, bool, error)
	BinaryOperation(in insn.Instruction, v1, v2 V) (V, bool, error)
	TernaryOperation(in insn.Instruction, v1, v2, v3 V) (V, bool, error)
	NaryOperation(in insn.Instruction, values []V) (V, bool, error)
	ReturnOperation(in insn.Instruction, v, expected V) error
	Merge(a, b V) V
}

// Interpreter computes plain abstract values.
// *interp.Interpreter implements it.
type Interpreter = InterpreterOf[value.Value]

// Of is the abstract state at one program point.
type Of[V Slot] struct {
	locals   []V
	stack    []V
	maxStack int // <= 0 means unbounded

	ret    V // Expected return value
	hasRet bool
}

// Frame is a frame of plain abstract values.
type Frame = Of[value.Value]

// New creates a frame with numLocals Uninitialized locals and an empty
// stack limited to maxStack values (unbounded if maxStack <= 0).
func New(numLocals, maxStack int) *Frame {
	return NewOf[value.Value](numLocals, maxStack)
}

// NewOf is New for any slot type. Locals start as the zero V.
func NewOf[V Slot](numLocals, maxStack int) *Of[V] {
	return &Of[V]{
		locals:   make([]V, numLocals),
		maxStack: maxStack,
	}
}

// SetReturn records the value the method is declared to return.
// Frames of void methods never call it.
func (f *Of[V]) SetReturn(v V) {
	f.ret = v
	f.hasRet = true
}

// Return returns the declared return value, if any.
func (f *Of[V]) Return() (V, bool) { return f.ret, f.hasRet }

// Locals returns the number of local slots.
func (f *Of[V]) Locals() int { return len(f.locals) }

// MaxStack returns the stack limit, or 0 if unbounded.
func (f *Of[V]) MaxStack() int {
	if f.maxStack < 0 {
		return 0
	}
	return f.maxStack
}

// Local returns the value in slot i.
func (f *Of[V]) Local(i int) (V, error) {
	if i < 0 || i >= len(f.locals) {
		var zero V
		return zero, &LocalError{Index: i, Locals: len(f.locals)}
	}
	return f.locals[i], nil
}

// SetLocal stores v in slot i.
func (f *Of[V]) SetLocal(i int, v V) error {
	if i < 0 || i >= len(f.locals) {
		return &LocalError{Index: i, Locals: len(f.locals)}
	}
	f.locals[i] = v
	return nil
}

// StackSize returns the number of values on the stack.
func (f *Of[V]) StackSize() int { return len(f.stack) }

// Stack returns the i-th stack value, counting from the bottom.
func (f *Of[V]) Stack(i int) V { return f.stack[i] }

// StackTop returns the top stack value without popping it.
func (f *Of[V]) StackTop() (V, error) {
	if len(f.stack) == 0 {
		var zero V
		return zero, &StackError{Op: opcode.None, Msg: "stack underflow"}
	}
	return f.stack[len(f.stack)-1], nil
}

// Push pushes v.
func (f *Of[V]) Push(v V) error {
	if f.maxStack > 0 && len(f.stack) >= f.maxStack {
		return &StackError{Op: opcode.None, Msg: fmt.Sprintf("stack overflow (max %d)", f.maxStack)}
	}
	f.stack = append(f.stack, v)
	return nil
}

// Pop removes and returns the top stack value.
func (f *Of[V]) Pop() (V, error) {
	if len(f.stack) == 0 {
		var zero V
		return zero, &StackError{Op: opcode.None, Msg: "stack underflow"}
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v, nil
}

// ClearStack empties the stack.
func (f *Of[V]) ClearStack() { f.stack = f.stack[:0] }

// Clone returns an independent copy of f.
func (f *Of[V]) Clone() *Of[V] {
	c := *f
	c.locals = append([]V(nil), f.locals...)
	c.stack = append(make([]V, 0, cap(f.stack)), f.stack...)
	return &c
}

// Equal returns true if both frames hold the same values.
func (f *Of[V]) Equal(other *Of[V]) bool {
	if len(f.locals) != len(other.locals) || len(f.stack) != len(other.stack) {
		return false
	}
	for i := range f.locals {
		if f.locals[i] != other.locals[i] {
			return false
		}
	}
	for i := range f.stack {
		if f.stack[i] != other.stack[i] {
			return false
		}
	}
	return true
}

// Merge joins other into f slot by slot and reports whether f changed.
// Both frames must have the same stack height.
func (f *Of[V]) Merge(other *Of[V], interp InterpreterOf[V]) (changed bool, err error) {
	if len(f.stack) != len(other.stack) {
		return false, &IncompatibleStackError{Want: len(f.stack), Got: len(other.stack)}
	}
	if len(f.locals) != len(other.locals) {
		return false, &LocalError{Index: len(other.locals) - 1, Locals: len(f.locals)}
	}
	for i := range f.locals {
		v := interp.Merge(f.locals[i], other.locals[i])
		if v != f.locals[i] {
			f.locals[i] = v
			changed = true
		}
	}
	for i := range f.stack {
		v := interp.Merge(f.stack[i], other.stack[i])
		if v != f.stack[i] {
			f.stack[i] = v
			changed = true
		}
	}
	return changed, nil
}

// String renders the locals, a space, and the stack, one short form per
// value (bottom of the stack first).
//
// Example:
//
//	Ljava/lang/String;J.I IZ
//
// is a frame whose locals are a String, a long (two slots) and an int, with
// an int and a boolean on the stack.
func (f *Of[V]) String() string {
	var b strings.Builder
	for _, v := range f.locals {
		b.WriteString(v.String())
	}
	b.WriteByte(' ')
	for _, v := range f.stack {
		b.WriteString(v.String())
	}
	return b.String()
}
