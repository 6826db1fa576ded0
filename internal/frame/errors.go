package frame

import (
	"fmt"

	"github.com/mpyw/jvmflow/internal/opcode"
)

// StackError reports an operand stack overflow, underflow, or a stack
// shuffle applied to values of the wrong size.
type StackError struct {
	Op  opcode.Op // opcode.None outside Execute
	Msg string
}

func (e *StackError) Error() string {
	if e.Op == opcode.None {
		return "frame: " + e.Msg
	}
	return fmt.Sprintf("frame: %s: %s", e.Op, e.Msg)
}

// IncompatibleStackError reports two frames with different stack heights
// meeting at the same program point.
type IncompatibleStackError struct {
	Want int
	Got  int
}

func (e *IncompatibleStackError) Error() string {
	return fmt.Sprintf("frame: incompatible stack heights: %d and %d", e.Want, e.Got)
}

// LocalError reports an access to a local slot outside the frame.
type LocalError struct {
	Index  int
	Locals int
}

func (e *LocalError) Error() string {
	return fmt.Sprintf("frame: local %d out of range (max locals %d)", e.Index, e.Locals)
}

// ReturnError reports a return instruction that does not match the
// declared return type's presence.
type ReturnError struct {
	Op opcode.Op
}

func (e *ReturnError) Error() string {
	return fmt.Sprintf("frame: %s: incompatible return type", e.Op)
}

// SubroutineError reports JSR or RET, which the analysis does not support.
type SubroutineError struct {
	Op opcode.Op
}

func (e *SubroutineError) Error() string {
	return fmt.Sprintf("frame: %s: subroutines are not supported", e.Op)
}
