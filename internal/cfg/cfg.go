// Package cfg builds the control-flow graph of a method body at
// instruction granularity.
//
// Node i of the graph is Instructions[i]. Labels and line numbers are nodes
// too; they simply fall through. Two kinds of edges leave a node:
//
//   - normal edges: fall-through, branch targets, switch cases
//   - handler edges: to every exception handler whose range covers the node
//
// The fixpoint analyzer propagates the frame after an instruction along
// normal edges, and the frame before it along handler edges.
package cfg

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mpyw/jvmflow/internal/insn"
	"github.com/mpyw/jvmflow/internal/opcode"
)

// ErrSubroutine is returned for methods using JSR or RET.
var ErrSubroutine = errors.New("subroutines are not supported")

// Error reports a malformed method body.
type Error struct {
	Method string
	Index  int // -1 when not tied to an instruction
	Err    error
}

func (e *Error) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("%s: instruction %d: %v", e.Method, e.Index, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Handler is an exception edge: control may reach instruction Index with
// the stack holding one exception of class Type ("" catches anything).
type Handler struct {
	Index int
	Type  string
}

// Graph is the control-flow graph of one method.
type Graph struct {
	succs    [][]int
	handlers [][]Handler
	preds    [][]int
	fallsOff []bool
}

// Build constructs the graph of m.
func Build(m *insn.Method) (*Graph, error) {
	labels, err := m.Labels()
	if err != nil {
		return nil, &Error{Method: m.ID(), Index: -1, Err: err}
	}
	resolve := func(i int, name string) (int, error) {
		target, ok := labels[name]
		if !ok {
			return 0, &Error{Method: m.ID(), Index: i, Err: fmt.Errorf("undefined label %s", name)}
		}
		return target, nil
	}

	n := len(m.Instructions)
	g := &Graph{
		succs:    make([][]int, n),
		handlers: make([][]Handler, n),
		preds:    make([][]int, n),
		fallsOff: make([]bool, n),
	}

	for i, in := range m.Instructions {
		op := in.Op()
		if op == opcode.Jsr || op == opcode.Ret {
			return nil, &Error{Method: m.ID(), Index: i, Err: ErrSubroutine}
		}

		for _, name := range insn.Targets(in) {
			target, err := resolve(i, name)
			if err != nil {
				return nil, err
			}
			g.addEdge(i, target)
		}

		if !fallsThrough(op) {
			continue
		}
		if i+1 < n {
			g.addEdge(i, i+1)
		} else {
			g.fallsOff[i] = true
		}
	}

	for _, tc := range m.TryCatch {
		start, err := resolve(-1, tc.Start)
		if err != nil {
			return nil, err
		}
		end, err := resolve(-1, tc.End)
		if err != nil {
			return nil, err
		}
		handler, err := resolve(-1, tc.Handler)
		if err != nil {
			return nil, err
		}
		if start > end {
			return nil, &Error{Method: m.ID(), Index: -1, Err: fmt.Errorf("try/catch range %s..%s is reversed", tc.Start, tc.End)}
		}
		for i := start; i < end; i++ {
			g.handlers[i] = append(g.handlers[i], Handler{Index: handler, Type: tc.Type})
			if !slices.Contains(g.preds[handler], i) {
				g.preds[handler] = append(g.preds[handler], i)
			}
		}
	}

	return g, nil
}

// fallsThrough returns false for instructions after which control never
// reaches the next instruction.
func fallsThrough(op opcode.Op) bool {
	switch op.Category() {
	case opcode.CategoryReturn, opcode.CategoryThrow, opcode.CategorySwitch:
		return false
	}
	return op != opcode.Goto
}

func (g *Graph) addEdge(from, to int) {
	if slices.Contains(g.succs[from], to) {
		return
	}
	g.succs[from] = append(g.succs[from], to)
	g.preds[to] = append(g.preds[to], from)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.succs) }

// Succs returns the normal successors of node i.
func (g *Graph) Succs(i int) []int { return g.succs[i] }

// Handlers returns the exception handlers covering node i.
func (g *Graph) Handlers(i int) []Handler { return g.handlers[i] }

// Preds returns the predecessors of node i along both kinds of edges.
func (g *Graph) Preds(i int) []int { return g.preds[i] }

// FallsOff returns true if node i is the last instruction and control
// continues past it.
func (g *Graph) FallsOff(i int) bool { return g.fallsOff[i] }
