package insn

import (
	"fmt"

	"github.com/mpyw/jvmflow/internal/descriptor"
)

// Method access flags.
const (
	AccPublic       = 0x0001
	AccPrivate      = 0x0002
	AccProtected    = 0x0004
	AccStatic       = 0x0008
	AccFinal        = 0x0010
	AccSynchronized = 0x0020
	AccBridge       = 0x0040
	AccVarargs      = 0x0080
	AccNative       = 0x0100
	AccAbstract     = 0x0400
	AccStrict       = 0x0800
	AccSynthetic    = 0x1000
)

// TryCatch is an exception table entry. Start, End and Handler are label
// names; the protected range is [Start, End). Type is the internal name of
// the caught class, or "" for a finally handler.
type TryCatch struct {
	Start   string
	End     string
	Handler string
	Type    string
}

// Method is a decoded method body.
type Method struct {
	Owner        string // Internal name of the declaring class
	Name         string
	Desc         string
	Access       int
	MaxLocals    int
	MaxStack     int // 0 means unbounded
	Instructions []Instruction
	TryCatch     []TryCatch
}

// IsStatic returns true if the method has no receiver.
func (m *Method) IsStatic() bool { return m.Access&AccStatic != 0 }

// HasCode returns true if the method has a body to analyze.
func (m *Method) HasCode() bool {
	return m.Access&(AccAbstract|AccNative) == 0 && len(m.Instructions) > 0
}

// ID returns the method key, e.g. "demo/T.run(I)V".
func (m *Method) ID() string {
	return fmt.Sprintf("%s.%s%s", m.Owner, m.Name, m.Desc)
}

// Type returns the parsed method descriptor.
func (m *Method) Type() (descriptor.Type, error) {
	t, err := descriptor.Parse(m.Desc)
	if err != nil {
		return descriptor.Type{}, err
	}
	if t.Sort() != descriptor.SortMethod {
		return descriptor.Type{}, fmt.Errorf("method %s: %q is not a method descriptor", m.Name, m.Desc)
	}
	return t, nil
}

// ParameterSlots returns the number of local slots taken by the receiver
// (if any) and the arguments.
func (m *Method) ParameterSlots() (int, error) {
	t, err := m.Type()
	if err != nil {
		return 0, err
	}
	n := t.ArgumentsSize()
	if !m.IsStatic() {
		n++
	}
	return n, nil
}

// Labels returns the instruction index of every label.
func (m *Method) Labels() (map[string]int, error) {
	labels := make(map[string]int)
	for i, in := range m.Instructions {
		l, ok := in.(*Label)
		if !ok {
			continue
		}
		if _, dup := labels[l.Name]; dup {
			return nil, fmt.Errorf("method %s: duplicate label %s", m.ID(), l.Name)
		}
		labels[l.Name] = i
	}
	return labels, nil
}

// Clone returns a copy of m with its own instruction and try/catch slices.
// Instructions themselves are shared; they are never mutated.
func (m *Method) Clone() *Method {
	c := *m
	c.Instructions = append([]Instruction(nil), m.Instructions...)
	c.TryCatch = append([]TryCatch(nil), m.TryCatch...)
	return &c
}
