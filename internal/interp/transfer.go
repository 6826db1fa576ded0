package interp

import (
	"errors"
	"fmt"

	"github.com/mpyw/jvmflow/internal/descriptor"
	"github.com/mpyw/jvmflow/internal/insn"
	"github.com/mpyw/jvmflow/internal/opcode"
	"github.com/mpyw/jvmflow/internal/value"
)

var (
	errNotFieldType  = errors.New("not a field type")
	errNotMethodType = errors.New("not a method type")
	errNotArrayType  = errors.New("not an array type")
	errBadDims       = errors.New("dimension count out of range for the array type")
)

// primitiveArrays maps NEWARRAY codes to the array type they allocate.
var primitiveArrays = map[int]string{
	opcode.TBoolean: "[Z",
	opcode.TChar:    "[C",
	opcode.TByte:    "[B",
	opcode.TShort:   "[S",
	opcode.TInt:     "[I",
	opcode.TFloat:   "[F",
	opcode.TDouble:  "[D",
	opcode.TLong:    "[J",
}

// =============================================================================
// Unary Transfer
// =============================================================================

// UnaryOperation returns the value produced by an instruction consuming one
// value. ok is false for sinks (stores to fields, returns, conditional
// branches on one value, switches, monitors, ATHROW).
//
// CHECKCAST retags its operand unconditionally: the input is trusted to have
// been verified already.
func (i *Interpreter) UnaryOperation(in insn.Instruction, v value.Value) (result value.Value, ok bool, err error) {
	switch op := in.Op(); op {
	case opcode.Ineg, opcode.Iinc, opcode.L2i, opcode.F2i, opcode.D2i,
		opcode.I2b, opcode.I2c, opcode.I2s:
		return value.Int(), true, nil
	case opcode.Fneg, opcode.I2f, opcode.L2f, opcode.D2f:
		return value.Float(), true, nil
	case opcode.Lneg, opcode.I2l, opcode.F2l, opcode.D2l:
		return value.Long(), true, nil
	case opcode.Dneg, opcode.I2d, opcode.L2d, opcode.F2d:
		return value.Double(), true, nil

	case opcode.Ifeq, opcode.Ifne, opcode.Iflt, opcode.Ifge, opcode.Ifgt, opcode.Ifle,
		opcode.Tableswitch, opcode.Lookupswitch,
		opcode.Ireturn, opcode.Lreturn, opcode.Freturn, opcode.Dreturn, opcode.Areturn,
		opcode.Putstatic, opcode.Athrow,
		opcode.Monitorenter, opcode.Monitorexit,
		opcode.Ifnull, opcode.Ifnonnull:
		return value.Value{}, false, nil

	case opcode.Getfield:
		r, err := i.fieldValue(op, operand[*insn.Field](in).Desc)
		return r, err == nil, err

	case opcode.Newarray:
		code := operand[*insn.IntOperand](in).Operand
		desc, found := primitiveArrays[code]
		if !found {
			return value.Value{}, false, &InvalidArrayTypeError{Code: code}
		}
		return value.Reference(desc), true, nil

	case opcode.Anewarray:
		elem, err := classType(op, operand[*insn.TypeInsn](in).Desc)
		if err != nil {
			return value.Value{}, false, err
		}
		return value.ReferenceOf(descriptor.ArrayOf(elem)), true, nil

	case opcode.Arraylength, opcode.Instanceof:
		return value.Int(), true, nil

	case opcode.Checkcast:
		t, err := classType(op, operand[*insn.TypeInsn](in).Desc)
		if err != nil {
			return value.Value{}, false, err
		}
		return value.ReferenceOf(t), true, nil

	default:
		panic(internalError(op, "not a unary instruction"))
	}
}

// =============================================================================
// Binary Transfer
// =============================================================================

// BinaryOperation returns the value produced by an instruction consuming two
// values, given in push order. ok is false for sinks (two-value conditional
// branches, PUTFIELD).
//
// AALOAD yields the generic top reference: element types of reference arrays
// are not tracked.
func (*Interpreter) BinaryOperation(in insn.Instruction, v1, v2 value.Value) (result value.Value, ok bool, err error) {
	switch op := in.Op(); op {
	case opcode.Iaload, opcode.Baload, opcode.Caload, opcode.Saload,
		opcode.Iadd, opcode.Isub, opcode.Imul, opcode.Idiv, opcode.Irem,
		opcode.Ishl, opcode.Ishr, opcode.Iushr,
		opcode.Iand, opcode.Ior, opcode.Ixor:
		return value.Int(), true, nil
	case opcode.Faload, opcode.Fadd, opcode.Fsub, opcode.Fmul, opcode.Fdiv, opcode.Frem:
		return value.Float(), true, nil
	case opcode.Laload, opcode.Ladd, opcode.Lsub, opcode.Lmul, opcode.Ldiv, opcode.Lrem,
		opcode.Lshl, opcode.Lshr, opcode.Lushr,
		opcode.Land, opcode.Lor, opcode.Lxor:
		return value.Long(), true, nil
	case opcode.Daload, opcode.Dadd, opcode.Dsub, opcode.Dmul, opcode.Ddiv, opcode.Drem:
		return value.Double(), true, nil
	case opcode.Aaload:
		return value.TopReference(), true, nil
	case opcode.Lcmp, opcode.Fcmpl, opcode.Fcmpg, opcode.Dcmpl, opcode.Dcmpg:
		return value.Int(), true, nil
	case opcode.IfIcmpeq, opcode.IfIcmpne, opcode.IfIcmplt, opcode.IfIcmpge,
		opcode.IfIcmpgt, opcode.IfIcmple, opcode.IfAcmpeq, opcode.IfAcmpne,
		opcode.Putfield:
		return value.Value{}, false, nil
	default:
		panic(internalError(op, "not a binary instruction"))
	}
}

// =============================================================================
// Ternary and N-ary Transfer
// =============================================================================

// TernaryOperation handles array stores, which produce nothing.
func (*Interpreter) TernaryOperation(in insn.Instruction, v1, v2, v3 value.Value) (result value.Value, ok bool, err error) {
	if in.Op().Category() != opcode.CategoryArrayStore {
		panic(internalError(in.Op(), "not a ternary instruction"))
	}
	return value.Value{}, false, nil
}

// NaryOperation returns the value produced by a method invocation or
// MULTIANEWARRAY. Invocations of void methods produce nothing.
func (i *Interpreter) NaryOperation(in insn.Instruction, values []value.Value) (result value.Value, ok bool, err error) {
	op := in.Op()
	var desc string
	switch op {
	case opcode.Invokevirtual, opcode.Invokespecial, opcode.Invokestatic, opcode.Invokeinterface:
		desc = operand[*insn.MethodCall](in).Desc
	case opcode.Invokedynamic:
		desc = operand[*insn.InvokeDynamic](in).Desc
	case opcode.Multianewarray:
		m := operand[*insn.MultiANewArray](in)
		t, err := descriptor.Parse(m.Desc)
		if err != nil {
			return value.Value{}, false, &OperandError{Op: op, Operand: m.Desc, Err: err}
		}
		if t.Sort() != descriptor.SortArray {
			return value.Value{}, false, &OperandError{Op: op, Operand: m.Desc, Err: errNotArrayType}
		}
		if m.Dims < 1 || m.Dims > t.Dimensions() {
			return value.Value{}, false, &OperandError{Op: op, Operand: fmt.Sprintf("%s %d", m.Desc, m.Dims), Err: errBadDims}
		}
		return value.ReferenceOf(t), true, nil
	default:
		panic(internalError(op, "not an n-ary instruction"))
	}

	t, err := descriptor.Parse(desc)
	if err != nil {
		return value.Value{}, false, &OperandError{Op: op, Operand: desc, Err: err}
	}
	if t.Sort() != descriptor.SortMethod {
		return value.Value{}, false, &OperandError{Op: op, Operand: desc, Err: errNotMethodType}
	}
	result, ok = i.NewValue(t.ReturnType())
	return result, ok, nil
}
