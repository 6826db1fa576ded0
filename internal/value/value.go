// Package value provides the abstract values tracked by the bytecode
// dataflow analysis.
//
// An abstract value stands in for a runtime value at one program point.
// The domain has ten kinds:
//   - Uninitialized: bottom, nothing is known (yet)
//   - Boolean, Char, Byte, Short, Int: int-storable primitives
//   - Float, Long, Double: other primitives
//   - Reference: an object, tagged with a type descriptor
//
// Values are comparable structs. Equality is structural: two references are
// equal iff their descriptors are equal, no matter where they were built.
package value

import (
	"fmt"

	"github.com/mpyw/jvmflow/internal/descriptor"
)

// =============================================================================
// Value Kind
// =============================================================================

// Kind represents the category of an abstract value.
type Kind uint8

const (
	// KindUninitialized is the bottom of the domain.
	KindUninitialized Kind = iota
	KindBoolean
	KindChar
	KindByte
	KindShort
	KindInt
	KindFloat
	KindLong
	KindDouble
	// KindReference represents an object or array value.
	KindReference
)

var kindNames = [...]string{
	KindUninitialized: "Uninitialized",
	KindBoolean:       "Boolean",
	KindChar:          "Char",
	KindByte:          "Byte",
	KindShort:         "Short",
	KindInt:           "Int",
	KindFloat:         "Float",
	KindLong:          "Long",
	KindDouble:        "Double",
	KindReference:     "Reference",
}

// String returns a string representation of the Kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// =============================================================================
// Reference Tags
// =============================================================================

const (
	// NullDescriptor tags the value pushed by ACONST_NULL.
	NullDescriptor = "Lnull;"
	// ObjectDescriptor tags the generic top reference.
	ObjectDescriptor = "Ljava/lang/Object;"
)

// =============================================================================
// Value
// =============================================================================

// Value is an abstract value. The zero Value is Uninitialized.
type Value struct {
	kind Kind
	desc string // Non-empty only for KindReference
}

// Uninitialized returns the bottom value.
func Uninitialized() Value { return Value{} }

// Boolean returns the boolean value.
func Boolean() Value { return Value{kind: KindBoolean} }

// Char returns the char value.
func Char() Value { return Value{kind: KindChar} }

// Byte returns the byte value.
func Byte() Value { return Value{kind: KindByte} }

// Short returns the short value.
func Short() Value { return Value{kind: KindShort} }

// Int returns the int value.
func Int() Value { return Value{kind: KindInt} }

// Float returns the float value.
func Float() Value { return Value{kind: KindFloat} }

// Long returns the long value.
func Long() Value { return Value{kind: KindLong} }

// Double returns the double value.
func Double() Value { return Value{kind: KindDouble} }

// Reference returns a reference value tagged with the given descriptor.
// An empty descriptor yields the generic top reference.
func Reference(desc string) Value {
	if desc == "" {
		desc = ObjectDescriptor
	}
	return Value{kind: KindReference, desc: desc}
}

// ReferenceOf returns a reference value tagged with t's descriptor.
func ReferenceOf(t descriptor.Type) Value {
	return Reference(t.Descriptor())
}

// Null returns the reference pushed for a null literal.
func Null() Value { return Reference(NullDescriptor) }

// TopReference returns the generic "some object" reference.
func TopReference() Value { return Reference(ObjectDescriptor) }

// =============================================================================
// Value Accessors
// =============================================================================

// Kind returns the kind of this value.
func (v Value) Kind() Kind { return v.kind }

// Descriptor returns the reference tag, or "" for non-references.
func (v Value) Descriptor() string { return v.desc }

// IsUninitialized returns true if the value is bottom.
func (v Value) IsUninitialized() bool { return v.kind == KindUninitialized }

// IsReference returns true if the value is a reference.
func (v Value) IsReference() bool { return v.kind == KindReference }

// IsTopReference returns true if the value is the generic top reference.
func (v Value) IsTopReference() bool {
	return v.kind == KindReference && v.desc == ObjectDescriptor
}

// IsIntStorable returns true if the value fits an int local slot
// (boolean, char, byte, short or int).
func (v Value) IsIntStorable() bool {
	switch v.kind {
	case KindBoolean, KindChar, KindByte, KindShort, KindInt:
		return true
	default:
		return false
	}
}

// Size returns the number of stack or local slots the value occupies.
func (v Value) Size() int {
	if v.kind == KindLong || v.kind == KindDouble {
		return 2
	}
	return 1
}

// Equal returns true if two values are structurally equal.
func (v Value) Equal(other Value) bool {
	return v == other
}

// String returns the short form used in frame dumps: "." for
// Uninitialized, the primitive descriptor letter, or the reference tag.
func (v Value) String() string {
	switch v.kind {
	case KindUninitialized:
		return "."
	case KindBoolean:
		return "Z"
	case KindChar:
		return "C"
	case KindByte:
		return "B"
	case KindShort:
		return "S"
	case KindInt:
		return "I"
	case KindFloat:
		return "F"
	case KindLong:
		return "J"
	case KindDouble:
		return "D"
	case KindReference:
		return v.desc
	default:
		return fmt.Sprintf("Value(%d)", v.kind)
	}
}

// Parse is the inverse of Value.String.
func Parse(s string) (Value, error) {
	switch s {
	case ".":
		return Uninitialized(), nil
	case "Z":
		return Boolean(), nil
	case "C":
		return Char(), nil
	case "B":
		return Byte(), nil
	case "S":
		return Short(), nil
	case "I":
		return Int(), nil
	case "F":
		return Float(), nil
	case "J":
		return Long(), nil
	case "D":
		return Double(), nil
	}
	t, err := descriptor.Parse(s)
	if err != nil {
		return Value{}, fmt.Errorf("value: %w", err)
	}
	if t.Sort() != descriptor.SortObject && t.Sort() != descriptor.SortArray {
		return Value{}, fmt.Errorf("value: %q is not a reference descriptor", s)
	}
	return ReferenceOf(t), nil
}
