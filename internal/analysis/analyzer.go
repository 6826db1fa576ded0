// Package analysis runs the abstract interpreter over a method body until
// the frame at every instruction stops changing.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/tliron/commonlog"
	"golang.org/x/tools/container/intsets"

	"github.com/mpyw/jvmflow/internal/cfg"
	"github.com/mpyw/jvmflow/internal/descriptor"
	"github.com/mpyw/jvmflow/internal/frame"
	"github.com/mpyw/jvmflow/internal/insn"
	"github.com/mpyw/jvmflow/internal/interp"
	"github.com/mpyw/jvmflow/internal/value"
)

var log = commonlog.GetLogger("jvmflow.analysis")

// ErrFallsOff is reported when execution can run past the last instruction.
var ErrFallsOff = errors.New("execution can fall off the end of the code")

// Error reports a failure at one instruction of a method.
type Error struct {
	Method string
	Index  int // -1 for errors in the method signature
	Insn   insn.Instruction
	Err    error
}

func (e *Error) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("%s: %d: %s: %v", e.Method, e.Index, e.Insn, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Of is the outcome of analyzing one method with values of type V.
type Of[V frame.Slot] struct {
	Method *insn.Method
	Graph  *cfg.Graph
	// Frames[i] is the state before Instructions[i], or nil if the
	// instruction is unreachable.
	Frames []*frame.Of[V]
	// Steps is the number of instructions executed to reach the fixpoint.
	Steps int
}

// Analysis is the outcome of analyzing one method.
type Analysis = Of[value.Value]

// Interpreter is the value domain driven by Run.
// *interp.Interpreter implements it for plain values.
type Interpreter[V frame.Slot] interface {
	frame.InterpreterOf[V]
	NewParameterValue(t descriptor.Type) V
	NewReturnTypeValue(t descriptor.Type) (V, bool)
	NewExceptionValue(catchType string) (V, error)
}

var _ Interpreter[value.Value] = (*interp.Interpreter)(nil)

// Analyzer computes per-instruction frames.
// It is stateless and can be shared between goroutines.
type Analyzer struct {
	interp *interp.Interpreter
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{interp: interp.New()}
}

// Analyze computes the frame before every instruction of m.
//
// The entry frame holds `this` (for instance methods) and the parameters in
// the first locals, Uninitialized in the others, and an empty stack. Each
// worklist step pops the lowest pending index, executes its instruction on
// a copy of its frame and merges the result into the successors. Handlers
// receive the frame before the instruction with the stack replaced by the
// caught exception. Successors whose frame changed are queued again.
//
// Errors from the interpreter or the frame abort this method only.
// Internal errors of the interpreter are panics and are not recovered.
func (a *Analyzer) Analyze(ctx context.Context, m *insn.Method) (*Analysis, error) {
	return Run[value.Value](ctx, m, a.interp)
}

// Run is Analyze over any value domain. Passes that need to know where
// values come from run it with an interpreter wrapping *interp.Interpreter.
func Run[V frame.Slot](ctx context.Context, m *insn.Method, in Interpreter[V]) (*Of[V], error) {
	result := &Of[V]{Method: m, Frames: make([]*frame.Of[V], len(m.Instructions))}
	if !m.HasCode() {
		return result, nil
	}

	g, err := cfg.Build(m)
	if err != nil {
		return nil, err
	}
	result.Graph = g

	entry, err := entryFrame(m, in)
	if err != nil {
		return nil, &Error{Method: m.ID(), Index: -1, Err: err}
	}
	frames := result.Frames
	frames[0] = entry

	var worklist intsets.Sparse
	worklist.Insert(0)

	for !worklist.IsEmpty() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var i int
		worklist.TakeMin(&i)
		result.Steps++

		ins := m.Instructions[i]
		fail := func(err error) error {
			return &Error{Method: m.ID(), Index: i, Insn: ins, Err: err}
		}

		if g.FallsOff(i) {
			return nil, fail(ErrFallsOff)
		}

		after := frames[i].Clone()
		if err := after.Execute(ins, in); err != nil {
			return nil, fail(err)
		}
		for _, succ := range g.Succs(i) {
			changed, err := mergeInto(frames, succ, after, in)
			if err != nil {
				return nil, fail(err)
			}
			if changed {
				worklist.Insert(succ)
			}
		}

		for _, h := range g.Handlers(i) {
			exc, err := in.NewExceptionValue(h.Type)
			if err != nil {
				return nil, fail(err)
			}
			handler := frames[i].Clone()
			handler.ClearStack()
			if err := handler.Push(exc); err != nil {
				return nil, fail(err)
			}
			changed, err := mergeInto(frames, h.Index, handler, in)
			if err != nil {
				return nil, fail(err)
			}
			if changed {
				worklist.Insert(h.Index)
			}
		}
	}

	log.Debugf("%s: fixpoint after %d steps over %d instructions", m.ID(), result.Steps, len(m.Instructions))
	return result, nil
}

// entryFrame builds the frame on method entry.
func entryFrame[V frame.Slot](m *insn.Method, in Interpreter[V]) (*frame.Of[V], error) {
	mt, err := m.Type()
	if err != nil {
		return nil, err
	}
	slots, err := m.ParameterSlots()
	if err != nil {
		return nil, err
	}
	if slots > m.MaxLocals {
		return nil, fmt.Errorf("parameters need %d locals, max locals is %d", slots, m.MaxLocals)
	}

	f := frame.NewOf[V](m.MaxLocals, m.MaxStack)
	if ret, ok := in.NewReturnTypeValue(mt.ReturnType()); ok {
		f.SetReturn(ret)
	}

	local := 0
	if !m.IsStatic() {
		owner, err := descriptor.ObjectType(m.Owner)
		if err != nil {
			return nil, fmt.Errorf("owner: %w", err)
		}
		_ = f.SetLocal(local, in.NewParameterValue(owner))
		local++
	}
	for _, arg := range mt.ArgumentTypes() {
		_ = f.SetLocal(local, in.NewParameterValue(arg))
		local++
		if arg.Size() == 2 {
			_ = f.SetLocal(local, in.NewEmptyValue())
			local++
		}
	}
	return f, nil
}

// mergeInto merges f into frames[j], installing a copy if frames[j] was
// never reached before.
func mergeInto[V frame.Slot](frames []*frame.Of[V], j int, f *frame.Of[V], in frame.InterpreterOf[V]) (bool, error) {
	if frames[j] == nil {
		frames[j] = f.Clone()
		return true, nil
	}
	return frames[j].Merge(f, in)
}
