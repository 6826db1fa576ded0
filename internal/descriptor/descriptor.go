// Package descriptor parses and builds JVM type descriptors.
//
// A descriptor is the compact type notation used by class files:
//
//	I                     int
//	Ljava/lang/String;    object type (class java/lang/String)
//	[[J                   two-dimensional long array
//	(ILjava/lang/Object;)V method taking (int, Object) returning void
//
// Types are small comparable values, so two independently parsed types with
// the same descriptor are equal under ==.
package descriptor

import (
	"fmt"
	"strings"
)

// =============================================================================
// Sort
// =============================================================================

// Sort is the syntactic category of a Type.
type Sort int

const (
	// SortNone is the sort of the zero Type. It stands for "no type".
	SortNone Sort = iota
	SortVoid
	SortBoolean
	SortChar
	SortByte
	SortShort
	SortInt
	SortFloat
	SortLong
	SortDouble
	SortArray
	SortObject
	SortMethod
)

var sortNames = [...]string{
	SortNone:    "none",
	SortVoid:    "void",
	SortBoolean: "boolean",
	SortChar:    "char",
	SortByte:    "byte",
	SortShort:   "short",
	SortInt:     "int",
	SortFloat:   "float",
	SortLong:    "long",
	SortDouble:  "double",
	SortArray:   "array",
	SortObject:  "object",
	SortMethod:  "method",
}

// String returns a string representation of the Sort.
func (s Sort) String() string {
	if s >= 0 && int(s) < len(sortNames) {
		return sortNames[s]
	}
	return fmt.Sprintf("Sort(%d)", int(s))
}

// =============================================================================
// Type
// =============================================================================

// Type is a parsed JVM type descriptor.
// The zero value has SortNone and represents the absence of a type.
type Type struct {
	sort Sort
	desc string
}

// Primitive and void types.
var (
	Void    = Type{sort: SortVoid, desc: "V"}
	Boolean = Type{sort: SortBoolean, desc: "Z"}
	Char    = Type{sort: SortChar, desc: "C"}
	Byte    = Type{sort: SortByte, desc: "B"}
	Short   = Type{sort: SortShort, desc: "S"}
	Int     = Type{sort: SortInt, desc: "I"}
	Float   = Type{sort: SortFloat, desc: "F"}
	Long    = Type{sort: SortLong, desc: "J"}
	Double  = Type{sort: SortDouble, desc: "D"}
)

// Sort returns the sort of the type.
func (t Type) Sort() Sort { return t.sort }

// Descriptor returns the descriptor string of the type.
func (t Type) Descriptor() string { return t.desc }

// IsZero reports whether t is the zero Type.
func (t Type) IsZero() bool { return t.sort == SortNone }

// IsPrimitive reports whether t is one of the eight primitive types.
func (t Type) IsPrimitive() bool {
	return t.sort >= SortBoolean && t.sort <= SortDouble
}

// String returns the descriptor, or "<none>" for the zero Type.
func (t Type) String() string {
	if t.sort == SortNone {
		return "<none>"
	}
	return t.desc
}

// InternalName returns the internal name of an object type
// (java/lang/String for Ljava/lang/String;). Array types return their
// descriptor, as class files do. Other sorts return the descriptor.
func (t Type) InternalName() string {
	if t.sort == SortObject {
		return t.desc[1 : len(t.desc)-1]
	}
	return t.desc
}

// Dimensions returns the number of array dimensions, or 0 for non-arrays.
func (t Type) Dimensions() int {
	if t.sort != SortArray {
		return 0
	}
	n := 0
	for n < len(t.desc) && t.desc[n] == '[' {
		n++
	}
	return n
}

// ElementType returns the innermost element type of an array type.
// For [[I it returns I. Non-array types return themselves.
func (t Type) ElementType() Type {
	if t.sort != SortArray {
		return t
	}
	elem, _, err := parseField(t.desc, t.Dimensions())
	if err != nil {
		// Array types are only built from valid descriptors.
		panic(fmt.Sprintf("descriptor: corrupt array type %q", t.desc))
	}
	return elem
}

// Size returns the number of local or stack slots a value of this type
// occupies: 2 for long and double, 0 for void, 1 otherwise.
func (t Type) Size() int {
	switch t.sort {
	case SortVoid, SortNone:
		return 0
	case SortLong, SortDouble:
		return 2
	default:
		return 1
	}
}

// ArgumentTypes returns the parameter types of a method type.
// Non-method types return nil.
func (t Type) ArgumentTypes() []Type {
	if t.sort != SortMethod {
		return nil
	}
	var args []Type
	i := 1
	for t.desc[i] != ')' {
		arg, next, err := parseField(t.desc, i)
		if err != nil {
			panic(fmt.Sprintf("descriptor: corrupt method type %q", t.desc))
		}
		args = append(args, arg)
		i = next
	}
	return args
}

// ReturnType returns the return type of a method type.
// Non-method types return the zero Type.
func (t Type) ReturnType() Type {
	if t.sort != SortMethod {
		return Type{}
	}
	i := strings.IndexByte(t.desc, ')')
	ret, _, err := parseReturn(t.desc, i+1)
	if err != nil {
		panic(fmt.Sprintf("descriptor: corrupt method type %q", t.desc))
	}
	return ret
}

// ArgumentsSize returns the number of local slots taken by the arguments of
// a method type, not counting the receiver.
func (t Type) ArgumentsSize() int {
	n := 0
	for _, arg := range t.ArgumentTypes() {
		n += arg.Size()
	}
	return n
}

// =============================================================================
// Constructors
// =============================================================================

// ObjectType returns the type for an internal name such as java/lang/String.
// Class files use array descriptors in place of internal names for array
// classes, so a name starting with '[' is parsed as an array descriptor.
func ObjectType(internalName string) (Type, error) {
	if strings.HasPrefix(internalName, "[") {
		t, err := Parse(internalName)
		if err != nil {
			return Type{}, err
		}
		if t.sort != SortArray {
			return Type{}, &SyntaxError{Desc: internalName, Msg: "not an array descriptor"}
		}
		return t, nil
	}
	if err := checkInternalName(internalName); err != nil {
		return Type{}, err
	}
	return Type{sort: SortObject, desc: "L" + internalName + ";"}, nil
}

// ArrayOf returns the one-dimension-deeper array type of elem.
func ArrayOf(elem Type) Type {
	return Type{sort: SortArray, desc: "[" + elem.desc}
}

// MustParse is like Parse but panics on error.
// It is meant for descriptors that are constants in the program.
func MustParse(desc string) Type {
	t, err := Parse(desc)
	if err != nil {
		panic(err)
	}
	return t
}

// MustObjectType is like ObjectType but panics on error.
func MustObjectType(internalName string) Type {
	t, err := ObjectType(internalName)
	if err != nil {
		panic(err)
	}
	return t
}
