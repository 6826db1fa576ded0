package frame

import (
	"fmt"

	"github.com/mpyw/jvmflow/internal/descriptor"
	"github.com/mpyw/jvmflow/internal/insn"
	"github.com/mpyw/jvmflow/internal/opcode"
)

// =============================================================================
// Instruction Execution
// =============================================================================

// Execute applies the stack effect of in to f, asking interp for the values
// it produces. Labels and line numbers leave f unchanged.
//
// On error f is left in an unspecified state.
func (f *Of[V]) Execute(in insn.Instruction, interp InterpreterOf[V]) error {
	x := &executor[V]{f: f, in: in, op: in.Op(), interp: interp}
	x.run()
	return x.err
}

// executor runs one instruction. The first error sticks: later pops return
// Uninitialized and pushes are dropped, so dispatch code can stay linear.
type executor[V Slot] struct {
	f      *Of[V]
	in     insn.Instruction
	op     opcode.Op
	interp InterpreterOf[V]
	err    error
}

func (x *executor[V]) fail(err error) {
	if x.err == nil {
		x.err = err
	}
}

func (x *executor[V]) failf(format string, args ...any) {
	x.fail(&StackError{Op: x.op, Msg: fmt.Sprintf(format, args...)})
}

func (x *executor[V]) pop() V {
	if x.err != nil || len(x.f.stack) == 0 {
		if x.err == nil {
			x.failf("stack underflow")
		}
		var zero V
		return zero
	}
	v, _ := x.f.Pop()
	return v
}

// popSize pops a value that must have the given size.
func (x *executor[V]) popSize(size int) V {
	v := x.pop()
	if x.err == nil && v.Size() != size {
		x.failf("illegal use on a value of size %d", v.Size())
	}
	return v
}

func (x *executor[V]) push(vs ...V) {
	for _, v := range vs {
		if x.err != nil {
			return
		}
		if x.f.maxStack > 0 && len(x.f.stack) >= x.f.maxStack {
			x.failf("stack overflow (max %d)", x.f.maxStack)
			return
		}
		x.f.stack = append(x.f.stack, v)
	}
}

// pushResult pushes the result of an interpreter callback.
func (x *executor[V]) pushResult(v V, ok bool, err error) {
	if err != nil {
		x.fail(err)
		return
	}
	if ok {
		x.push(v)
	}
}

func (x *executor[V]) local(i int) V {
	v, err := x.f.Local(i)
	if err != nil {
		x.fail(err)
	}
	return v
}

func (x *executor[V]) setLocal(i int, v V) {
	if x.err != nil {
		return
	}
	if err := x.f.SetLocal(i, v); err != nil {
		x.fail(err)
	}
}

func (x *executor[V]) copy(v V) V {
	return x.interp.CopyOperation(x.in, v)
}

func (x *executor[V]) run() {
	switch x.op {
	case opcode.None, opcode.Nop, opcode.Goto:
		return
	case opcode.Jsr, opcode.Ret:
		x.fail(&SubroutineError{Op: x.op})
		return
	case opcode.Iinc:
		i := x.in.(*insn.Iinc).Index
		v, ok, err := x.interp.UnaryOperation(x.in, x.local(i))
		if err != nil {
			x.fail(err)
		} else if ok {
			x.setLocal(i, v)
		}
		return
	case opcode.Ireturn, opcode.Lreturn, opcode.Freturn, opcode.Dreturn, opcode.Areturn:
		x.returnValue()
		return
	case opcode.Return:
		if x.f.hasRet {
			x.fail(&ReturnError{Op: x.op})
		}
		return
	}

	switch x.op.Dispatch() {
	case opcode.DispatchNew:
		v, err := x.interp.NewOperation(x.in)
		x.pushResult(v, err == nil, err)
	case opcode.DispatchCopy:
		x.copyOp()
	case opcode.DispatchUnary:
		v := x.pop()
		if x.err == nil {
			x.pushResult(x.interp.UnaryOperation(x.in, v))
		}
	case opcode.DispatchBinary:
		v2 := x.pop()
		v1 := x.pop()
		if x.err == nil {
			x.pushResult(x.interp.BinaryOperation(x.in, v1, v2))
		}
	case opcode.DispatchTernary:
		v3 := x.pop()
		v2 := x.pop()
		v1 := x.pop()
		if x.err == nil {
			x.pushResult(x.interp.TernaryOperation(x.in, v1, v2, v3))
		}
	case opcode.DispatchNary:
		x.naryOp()
	default:
		panic(fmt.Sprintf("frame: unexpected opcode %v", x.op))
	}
}

func (x *executor[V]) returnValue() {
	v := x.pop()
	if x.err != nil {
		return
	}
	if _, _, err := x.interp.UnaryOperation(x.in, v); err != nil {
		x.fail(err)
		return
	}
	if !x.f.hasRet {
		x.fail(&ReturnError{Op: x.op})
		return
	}
	if err := x.interp.ReturnOperation(x.in, v, x.f.ret); err != nil {
		x.fail(err)
	}
}

// =============================================================================
// Loads, Stores and Stack Shuffles
// =============================================================================

func (x *executor[V]) copyOp() {
	switch x.op.Category() {
	case opcode.CategoryLoad:
		i := x.in.(*insn.Var).Index
		x.push(x.copy(x.local(i)))
	case opcode.CategoryStore:
		i := x.in.(*insn.Var).Index
		v := x.copy(x.pop())
		x.setLocal(i, v)
		if v.Size() == 2 {
			x.setLocal(i+1, x.interp.NewEmptyValue())
		}
		// Overwriting the second half of a long or double kills it.
		if i > 0 && x.err == nil {
			if prev := x.local(i - 1); prev.Size() == 2 {
				x.setLocal(i-1, x.interp.NewEmptyValue())
			}
		}
	case opcode.CategoryStack:
		x.stackOp()
	default:
		panic(fmt.Sprintf("frame: unexpected copy opcode %v", x.op))
	}
}

// stackOp implements POP, DUP and friends. Category 2 values count as one
// stack entry but as two words for the shuffle forms.
func (x *executor[V]) stackOp() {
	switch x.op {
	case opcode.Pop:
		x.popSize(1)

	case opcode.Pop2:
		if v := x.pop(); x.err == nil && v.Size() == 1 {
			x.popSize(1)
		}

	case opcode.Dup:
		v1 := x.popSize(1)
		x.push(v1, x.copy(v1))

	case opcode.DupX1:
		v1 := x.popSize(1)
		v2 := x.popSize(1)
		x.push(x.copy(v1), v2, v1)

	case opcode.DupX2:
		v1 := x.popSize(1)
		v2 := x.pop()
		if x.err != nil {
			return
		}
		if v2.Size() == 1 {
			v3 := x.popSize(1)
			x.push(x.copy(v1), v3, v2, v1)
		} else {
			x.push(x.copy(v1), v2, v1)
		}

	case opcode.Dup2:
		v1 := x.pop()
		if x.err != nil {
			return
		}
		if v1.Size() == 1 {
			v2 := x.popSize(1)
			x.push(v2, v1, x.copy(v2), x.copy(v1))
		} else {
			x.push(v1, x.copy(v1))
		}

	case opcode.Dup2X1:
		v1 := x.pop()
		if x.err != nil {
			return
		}
		if v1.Size() == 1 {
			v2 := x.popSize(1)
			v3 := x.popSize(1)
			x.push(x.copy(v2), x.copy(v1), v3, v2, v1)
		} else {
			v2 := x.popSize(1)
			x.push(x.copy(v1), v2, v1)
		}

	case opcode.Dup2X2:
		v1 := x.pop()
		if x.err != nil {
			return
		}
		if v1.Size() == 1 {
			v2 := x.popSize(1)
			v3 := x.pop()
			if x.err != nil {
				return
			}
			if v3.Size() == 1 {
				v4 := x.popSize(1)
				x.push(x.copy(v2), x.copy(v1), v4, v3, v2, v1)
			} else {
				x.push(x.copy(v2), x.copy(v1), v3, v2, v1)
			}
		} else {
			v2 := x.pop()
			if x.err != nil {
				return
			}
			if v2.Size() == 1 {
				v3 := x.popSize(1)
				x.push(x.copy(v1), v3, v2, v1)
			} else {
				x.push(x.copy(v1), v2, v1)
			}
		}

	case opcode.Swap:
		v2 := x.popSize(1)
		v1 := x.popSize(1)
		x.push(x.copy(v2), x.copy(v1))

	default:
		panic(fmt.Sprintf("frame: unexpected stack opcode %v", x.op))
	}
}

// =============================================================================
// Invocations
// =============================================================================

func (x *executor[V]) naryOp() {
	var n int
	switch in := x.in.(type) {
	case *insn.MethodCall:
		t, err := descriptor.Parse(in.Desc)
		if err != nil || t.Sort() != descriptor.SortMethod {
			x.fail(fmt.Errorf("%s: bad method descriptor %q", x.op, in.Desc))
			return
		}
		n = len(t.ArgumentTypes())
		if x.op != opcode.Invokestatic {
			n++
		}
	case *insn.InvokeDynamic:
		t, err := descriptor.Parse(in.Desc)
		if err != nil || t.Sort() != descriptor.SortMethod {
			x.fail(fmt.Errorf("%s: bad method descriptor %q", x.op, in.Desc))
			return
		}
		n = len(t.ArgumentTypes())
	case *insn.MultiANewArray:
		n = in.Dims
	default:
		panic(fmt.Sprintf("frame: unexpected n-ary instruction %T", x.in))
	}

	values := make([]V, n)
	for i := n - 1; i >= 0; i-- {
		values[i] = x.pop()
	}
	if x.err == nil {
		x.pushResult(x.interp.NaryOperation(x.in, values))
	}
}
