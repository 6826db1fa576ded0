package transform

import (
	"github.com/mpyw/jvmflow/internal/descriptor"
	"github.com/mpyw/jvmflow/internal/insn"
	"github.com/mpyw/jvmflow/internal/interp"
	"github.com/mpyw/jvmflow/internal/value"
)

// tagged is an abstract value plus pass-specific provenance. The zero tag
// means nothing is known about where the value came from.
type tagged[T comparable] struct {
	value.Value
	tag T
}

// taggedInterpreter runs the plain value domain and drops tags on every
// result. Passes embed it and override the callbacks that create or keep
// tags.
type taggedInterpreter[T comparable] struct {
	base *interp.Interpreter
}

func plain[T comparable](v value.Value) tagged[T] { return tagged[T]{Value: v} }

func untag[T comparable](vs []tagged[T]) []value.Value {
	out := make([]value.Value, len(vs))
	for i, v := range vs {
		out[i] = v.Value
	}
	return out
}

func (t taggedInterpreter[T]) NewValue(d descriptor.Type) (tagged[T], bool) {
	v, ok := t.base.NewValue(d)
	return plain[T](v), ok
}

func (t taggedInterpreter[T]) NewEmptyValue() tagged[T] {
	return plain[T](t.base.NewEmptyValue())
}

func (t taggedInterpreter[T]) NewParameterValue(d descriptor.Type) tagged[T] {
	return plain[T](t.base.NewParameterValue(d))
}

func (t taggedInterpreter[T]) NewReturnTypeValue(d descriptor.Type) (tagged[T], bool) {
	v, ok := t.base.NewReturnTypeValue(d)
	return plain[T](v), ok
}

func (t taggedInterpreter[T]) NewExceptionValue(catchType string) (tagged[T], error) {
	v, err := t.base.NewExceptionValue(catchType)
	return plain[T](v), err
}

func (t taggedInterpreter[T]) NewOperation(in insn.Instruction) (tagged[T], error) {
	v, err := t.base.NewOperation(in)
	return plain[T](v), err
}

func (t taggedInterpreter[T]) CopyOperation(in insn.Instruction, v tagged[T]) tagged[T] {
	return plain[T](t.base.CopyOperation(in, v.Value))
}

func (t taggedInterpreter[T]) UnaryOperation(in insn.Instruction, v tagged[T]) (tagged[T], bool, error) {
	r, ok, err := t.base.UnaryOperation(in, v.Value)
	return plain[T](r), ok, err
}

func (t taggedInterpreter[T]) BinaryOperation(in insn.Instruction, v1, v2 tagged[T]) (tagged[T], bool, error) {
	r, ok, err := t.base.BinaryOperation(in, v1.Value, v2.Value)
	return plain[T](r), ok, err
}

func (t taggedInterpreter[T]) TernaryOperation(in insn.Instruction, v1, v2, v3 tagged[T]) (tagged[T], bool, error) {
	r, ok, err := t.base.TernaryOperation(in, v1.Value, v2.Value, v3.Value)
	return plain[T](r), ok, err
}

func (t taggedInterpreter[T]) NaryOperation(in insn.Instruction, values []tagged[T]) (tagged[T], bool, error) {
	r, ok, err := t.base.NaryOperation(in, untag(values))
	return plain[T](r), ok, err
}

func (t taggedInterpreter[T]) ReturnOperation(in insn.Instruction, v, expected tagged[T]) error {
	return t.base.ReturnOperation(in, v.Value, expected.Value)
}

func (t taggedInterpreter[T]) Merge(a, b tagged[T]) tagged[T] {
	return plain[T](t.base.Merge(a.Value, b.Value))
}

// indexOf maps every instruction of m to its position. Instructions are
// pointers, so equal-looking instructions at different positions stay apart.
func indexOf(m *insn.Method) map[insn.Instruction]int {
	index := make(map[insn.Instruction]int, len(m.Instructions))
	for i, in := range m.Instructions {
		index[in] = i
	}
	return index
}
