// Package snapshot encodes analysis results as deterministic CBOR, so runs
// can be cached and compared byte for byte.
package snapshot

import (
	"fmt"
	"slices"

	"github.com/fxamacker/cbor/v2"

	"github.com/mpyw/jvmflow/internal/analysis"
	"github.com/mpyw/jvmflow/internal/value"
)

// Version is the current snapshot format version.
const Version = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot is the encoded outcome of analyzing one method.
type Snapshot struct {
	Version byte    `cbor:"1,keyasint"`
	Method  string  `cbor:"2,keyasint"`
	Steps   int     `cbor:"3,keyasint"`
	Frames  []Frame `cbor:"4,keyasint,omitempty"` // reachable instructions only
	Dead    []int   `cbor:"5,keyasint,omitempty"` // unreachable instructions of the input method
	Err     string  `cbor:"6,keyasint,omitempty"`
}

// Frame is the state before one reachable instruction. Values are stored in
// their string form.
type Frame struct {
	Index  int      `cbor:"1,keyasint"`
	Locals []string `cbor:"2,keyasint,omitempty"`
	Stack  []string `cbor:"3,keyasint,omitempty"`
}

// FromAnalysis builds the snapshot of a finished analysis.
func FromAnalysis(a *analysis.Analysis, dead []int) *Snapshot {
	s := &Snapshot{
		Version: Version,
		Method:  a.Method.ID(),
		Steps:   a.Steps,
		Dead:    dead,
	}
	for i, f := range a.Frames {
		if f == nil {
			continue
		}
		sf := Frame{Index: i}
		for j := range f.Locals() {
			v, _ := f.Local(j)
			sf.Locals = append(sf.Locals, v.String())
		}
		for j := range f.StackSize() {
			sf.Stack = append(sf.Stack, f.Stack(j).String())
		}
		s.Frames = append(s.Frames, sf)
	}
	return s
}

// FromError builds the snapshot of a method whose analysis failed.
func FromError(method string, err error) *Snapshot {
	return &Snapshot{Version: Version, Method: method, Err: err.Error()}
}

// Values decodes the locals and stack of f.
func (f Frame) Values() (locals, stack []value.Value, err error) {
	locals, err = parseValues(f.Locals)
	if err != nil {
		return nil, nil, fmt.Errorf("frame %d locals: %w", f.Index, err)
	}
	stack, err = parseValues(f.Stack)
	if err != nil {
		return nil, nil, fmt.Errorf("frame %d stack: %w", f.Index, err)
	}
	return locals, stack, nil
}

func parseValues(ss []string) ([]value.Value, error) {
	vs := make([]value.Value, len(ss))
	for i, s := range ss {
		v, err := value.Parse(s)
		if err != nil {
			return nil, err
		}
		vs[i] = v
	}
	return vs, nil
}

// Marshal serializes a Snapshot to CBOR bytes.
func Marshal(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// Unmarshal deserializes a Snapshot from CBOR bytes.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// MarshalAll serializes a list of snapshots as one CBOR array.
func MarshalAll(ss []*Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(ss)
}

// UnmarshalAll deserializes a list written by MarshalAll.
func UnmarshalAll(data []byte) ([]*Snapshot, error) {
	var ss []*Snapshot
	if err := cbor.Unmarshal(data, &ss); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal list: %w", err)
	}
	for _, s := range ss {
		if err := s.validate(); err != nil {
			return nil, err
		}
	}
	return ss, nil
}

func (s *Snapshot) validate() error {
	if s.Version != Version {
		return fmt.Errorf("snapshot: unsupported version %d", s.Version)
	}
	for _, f := range s.Frames {
		if _, _, err := f.Values(); err != nil {
			return fmt.Errorf("snapshot: %s: %w", s.Method, err)
		}
	}
	return nil
}

// Diff returns the indices of the instructions whose frame differs between
// two snapshots of the same method, including instructions reachable in only
// one of them.
func Diff(a, b *Snapshot) []int {
	fa, fb := index(a), index(b)
	var out []int
	seen := make(map[int]bool)
	for _, f := range append(append([]Frame(nil), a.Frames...), b.Frames...) {
		if seen[f.Index] {
			continue
		}
		seen[f.Index] = true
		x, okA := fa[f.Index]
		y, okB := fb[f.Index]
		if okA != okB || !slices.Equal(x.Locals, y.Locals) || !slices.Equal(x.Stack, y.Stack) {
			out = append(out, f.Index)
		}
	}
	slices.Sort(out)
	return out
}

func index(s *Snapshot) map[int]Frame {
	m := make(map[int]Frame, len(s.Frames))
	for _, f := range s.Frames {
		m[f.Index] = f
	}
	return m
}
