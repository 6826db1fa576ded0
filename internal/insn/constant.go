package insn

import (
	"fmt"
	"strconv"

	"github.com/mpyw/jvmflow/internal/descriptor"
)

// =============================================================================
// Constant Pool Entries
// =============================================================================

// Constant is the operand of an LDC instruction.
// Like Instruction, it is a closed set of variants.
type Constant interface {
	String() string
	isConstant()
}

// Integer is a CONSTANT_Integer entry.
type Integer int32

// Float is a CONSTANT_Float entry.
type Float float32

// Long is a CONSTANT_Long entry.
type Long int64

// Double is a CONSTANT_Double entry.
type Double float64

// String is a CONSTANT_String entry.
type String string

// TypeConstant is a CONSTANT_Class (object or array sort) or
// CONSTANT_MethodType (method sort) entry.
type TypeConstant struct {
	Type descriptor.Type
}

// Handle reference kinds.
const (
	HGetField         = 1
	HGetStatic        = 2
	HPutField         = 3
	HPutStatic        = 4
	HInvokeVirtual    = 5
	HInvokeStatic     = 6
	HInvokeSpecial    = 7
	HNewInvokeSpecial = 8
	HInvokeInterface  = 9
)

// Handle is a CONSTANT_MethodHandle entry.
type Handle struct {
	Tag       int
	Owner     string
	Name      string
	Desc      string
	Interface bool
}

// Dynamic is a CONSTANT_Dynamic entry (a dynamically computed constant).
type Dynamic struct {
	Name      string
	Desc      string
	Bootstrap Handle
}

func (Integer) isConstant()      {}
func (Float) isConstant()        {}
func (Long) isConstant()         {}
func (Double) isConstant()       {}
func (String) isConstant()       {}
func (TypeConstant) isConstant() {}
func (Handle) isConstant()       {}
func (Dynamic) isConstant()      {}

func (c Integer) String() string { return strconv.FormatInt(int64(c), 10) }
func (c Float) String() string {
	return strconv.FormatFloat(float64(c), 'g', -1, 32) + "F"
}
func (c Long) String() string { return strconv.FormatInt(int64(c), 10) + "L" }
func (c Double) String() string {
	return strconv.FormatFloat(float64(c), 'g', -1, 64) + "D"
}
func (c String) String() string       { return strconv.Quote(string(c)) }
func (c TypeConstant) String() string { return "Type(" + c.Type.Descriptor() + ")" }

func (c Handle) String() string {
	s := fmt.Sprintf("Handle(%d %s.%s %s", c.Tag, c.Owner, c.Name, c.Desc)
	if c.Interface {
		s += " itf"
	}
	return s + ")"
}

func (c Dynamic) String() string {
	return fmt.Sprintf("Dynamic(%s %s %s)", c.Name, c.Desc, c.Bootstrap.String())
}
