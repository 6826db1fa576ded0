package interp

import (
	"errors"
	"fmt"

	"github.com/mpyw/jvmflow/internal/insn"
	"github.com/mpyw/jvmflow/internal/opcode"
)

// ErrIllegalOperand matches every recoverable error produced by the
// interpreter. A caller that sees it abandons the current method only.
var ErrIllegalOperand = errors.New("illegal operand")

// InternalError reports an instruction the interpreter was never meant to
// see, which means the decoder and the domain disagree. It is raised with
// panic and never returned.
type InternalError struct {
	Op  opcode.Op // opcode.None when not tied to an instruction
	Msg string
}

func (e *InternalError) Error() string {
	if e.Op == opcode.None {
		return "interp: internal error: " + e.Msg
	}
	return fmt.Sprintf("interp: internal error at %s: %s", e.Op, e.Msg)
}

func internalError(op opcode.Op, format string, args ...any) *InternalError {
	return &InternalError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// IllegalConstantError reports an LDC whose constant kind has no abstract
// value.
type IllegalConstantError struct {
	Constant insn.Constant
}

func (e *IllegalConstantError) Error() string {
	return fmt.Sprintf("illegal LDC constant: %s", e.Constant)
}

// Is makes IllegalConstantError match ErrIllegalOperand.
func (e *IllegalConstantError) Is(target error) bool { return target == ErrIllegalOperand }

// InvalidArrayTypeError reports a NEWARRAY operand that is not a T_* code.
type InvalidArrayTypeError struct {
	Code int
}

func (e *InvalidArrayTypeError) Error() string {
	return fmt.Sprintf("invalid array type code: %d", e.Code)
}

// Is makes InvalidArrayTypeError match ErrIllegalOperand.
func (e *InvalidArrayTypeError) Is(target error) bool { return target == ErrIllegalOperand }

// OperandError reports a malformed descriptor or internal name carried by an
// instruction operand.
type OperandError struct {
	Op      opcode.Op
	Operand string
	Err     error
}

func (e *OperandError) Error() string {
	return fmt.Sprintf("%s: bad operand %q: %v", e.Op, e.Operand, e.Err)
}

func (e *OperandError) Unwrap() error { return e.Err }

// Is makes OperandError match ErrIllegalOperand.
func (e *OperandError) Is(target error) bool { return target == ErrIllegalOperand }
