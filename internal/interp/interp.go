// Package interp implements the transfer functions of the abstract value
// domain: how each JVM instruction turns input values into an output value,
// and how two values meeting at a control-flow join are merged.
//
// The package mirrors the callback surface a fixpoint driver expects:
//
//	NewValue          declared type        -> value
//	NewOperation      0-operand insn       -> value
//	CopyOperation     load/store/DUP/SWAP  -> same value
//	UnaryOperation    1-operand insn       -> value | absent
//	BinaryOperation   2-operand insn       -> value | absent
//	TernaryOperation  array store          -> absent
//	NaryOperation     invoke, MULTIANEWARRAY -> value | absent
//	Merge             join of two values
//
// Every operation is a pure function of its inputs. An opcode routed to the
// wrong callback panics with *InternalError. Malformed operands (unsupported
// LDC constants, bad NEWARRAY codes, bad descriptors) are returned as errors
// matching ErrIllegalOperand.
package interp

import (
	"github.com/mpyw/jvmflow/internal/descriptor"
	"github.com/mpyw/jvmflow/internal/insn"
	"github.com/mpyw/jvmflow/internal/opcode"
	"github.com/mpyw/jvmflow/internal/value"
)

// Reference tags produced by constant loads.
const (
	StringDescriptor       = "Ljava/lang/String;"
	ClassDescriptor        = "Ljava/lang/Class;"
	MethodTypeDescriptor   = "Ljava/lang/invoke/MethodType;"
	MethodHandleDescriptor = "Ljava/lang/invoke/MethodHandle;"
	ThrowableDescriptor    = "Ljava/lang/Throwable;"
)

// Interpreter computes abstract values for instructions.
// It holds no state; one value can serve any number of analyses.
type Interpreter struct{}

// New creates a new Interpreter.
func New() *Interpreter {
	return &Interpreter{}
}

// =============================================================================
// Value Constructors
// =============================================================================

// NewValue returns the value of a declared type. The zero Type stands for a
// slot whose type is not known yet and yields Uninitialized. Void yields no
// value (ok is false).
func (*Interpreter) NewValue(t descriptor.Type) (v value.Value, ok bool) {
	switch t.Sort() {
	case descriptor.SortNone:
		return value.Uninitialized(), true
	case descriptor.SortVoid:
		return value.Value{}, false
	case descriptor.SortBoolean:
		return value.Boolean(), true
	case descriptor.SortChar:
		return value.Char(), true
	case descriptor.SortByte:
		return value.Byte(), true
	case descriptor.SortShort:
		return value.Short(), true
	case descriptor.SortInt:
		return value.Int(), true
	case descriptor.SortFloat:
		return value.Float(), true
	case descriptor.SortLong:
		return value.Long(), true
	case descriptor.SortDouble:
		return value.Double(), true
	case descriptor.SortObject, descriptor.SortArray:
		return value.ReferenceOf(t), true
	default:
		panic(internalError(opcode.None, "no value for type %s of sort %s", t, t.Sort()))
	}
}

// NewOperation returns the value pushed by an instruction that consumes
// nothing from the stack.
func (i *Interpreter) NewOperation(in insn.Instruction) (value.Value, error) {
	switch op := in.Op(); op {
	case opcode.AconstNull:
		return value.Null(), nil
	case opcode.IconstM1, opcode.Iconst0, opcode.Iconst1, opcode.Iconst2,
		opcode.Iconst3, opcode.Iconst4, opcode.Iconst5,
		opcode.Bipush, opcode.Sipush:
		return value.Int(), nil
	case opcode.Lconst0, opcode.Lconst1:
		return value.Long(), nil
	case opcode.Fconst0, opcode.Fconst1, opcode.Fconst2:
		return value.Float(), nil
	case opcode.Dconst0, opcode.Dconst1:
		return value.Double(), nil
	case opcode.Ldc:
		return constantValue(operand[*insn.Ldc](in).Value)
	case opcode.Getstatic:
		f := operand[*insn.Field](in)
		return i.fieldValue(op, f.Desc)
	case opcode.New:
		t, err := classType(op, operand[*insn.TypeInsn](in).Desc)
		if err != nil {
			return value.Value{}, err
		}
		return value.ReferenceOf(t), nil
	default:
		panic(internalError(op, "not a zero-operand instruction"))
	}
}

// CopyOperation returns the value moved by a load, store or stack shuffle.
func (*Interpreter) CopyOperation(in insn.Instruction, v value.Value) value.Value {
	switch in.Op().Category() {
	case opcode.CategoryLoad, opcode.CategoryStore, opcode.CategoryStack:
		return v
	default:
		panic(internalError(in.Op(), "not a copy instruction"))
	}
}

// NewParameterValue returns the initial value of a parameter slot.
func (i *Interpreter) NewParameterValue(t descriptor.Type) value.Value {
	v, _ := i.NewValue(t)
	return v
}

// NewReturnTypeValue returns the value a method is expected to return, or
// ok false for void methods.
func (i *Interpreter) NewReturnTypeValue(t descriptor.Type) (value.Value, bool) {
	return i.NewValue(t)
}

// NewEmptyValue returns the value of a local slot that holds nothing yet.
func (*Interpreter) NewEmptyValue() value.Value {
	return value.Uninitialized()
}

// NewExceptionValue returns the value pushed on entry to an exception
// handler. An empty catch type denotes a finally handler.
func (*Interpreter) NewExceptionValue(catchType string) (value.Value, error) {
	if catchType == "" {
		return value.Reference(ThrowableDescriptor), nil
	}
	t, err := descriptor.ObjectType(catchType)
	if err != nil {
		return value.Value{}, &OperandError{Op: opcode.None, Operand: catchType, Err: err}
	}
	return value.ReferenceOf(t), nil
}

// ReturnOperation is called for value-returning instructions with the
// returned value and the declared return value. The domain does not check
// return types.
func (*Interpreter) ReturnOperation(in insn.Instruction, v, expected value.Value) error {
	return nil
}

// =============================================================================
// Operand Helpers
// =============================================================================

// operand asserts the instruction variant an opcode must come with.
func operand[T insn.Instruction](in insn.Instruction) T {
	v, ok := in.(T)
	if !ok {
		panic(internalError(in.Op(), "unexpected instruction form %T", in))
	}
	return v
}

func constantValue(c insn.Constant) (value.Value, error) {
	switch c := c.(type) {
	case insn.Integer:
		return value.Int(), nil
	case insn.Float:
		return value.Float(), nil
	case insn.Long:
		return value.Long(), nil
	case insn.Double:
		return value.Double(), nil
	case insn.String:
		return value.Reference(StringDescriptor), nil
	case insn.TypeConstant:
		switch c.Type.Sort() {
		case descriptor.SortObject, descriptor.SortArray:
			return value.Reference(ClassDescriptor), nil
		case descriptor.SortMethod:
			return value.Reference(MethodTypeDescriptor), nil
		}
	case insn.Handle:
		return value.Reference(MethodHandleDescriptor), nil
	}
	return value.Value{}, &IllegalConstantError{Constant: c}
}

// fieldValue returns the value of a field with the given descriptor.
func (i *Interpreter) fieldValue(op opcode.Op, desc string) (value.Value, error) {
	t, err := descriptor.Parse(desc)
	if err != nil {
		return value.Value{}, &OperandError{Op: op, Operand: desc, Err: err}
	}
	if t.Sort() == descriptor.SortVoid || t.Sort() == descriptor.SortMethod {
		return value.Value{}, &OperandError{Op: op, Operand: desc, Err: errNotFieldType}
	}
	v, _ := i.NewValue(t)
	return v, nil
}

// classType parses the operand of NEW, ANEWARRAY, CHECKCAST and INSTANCEOF.
func classType(op opcode.Op, name string) (descriptor.Type, error) {
	t, err := descriptor.ObjectType(name)
	if err != nil {
		return descriptor.Type{}, &OperandError{Op: op, Operand: name, Err: err}
	}
	return t, nil
}
