package interp

import "github.com/mpyw/jvmflow/internal/value"

// =============================================================================
// Merge
// =============================================================================

// Merge joins two values that reach the same program point.
//
// Rules, first match wins:
//   - a == b                          → a
//   - either is Uninitialized         → Uninitialized
//   - both references, tags differ    → top reference (Ljava/lang/Object;)
//   - both int-storable (ZCBSI)       → Int
//   - otherwise                       → Uninitialized
//
// Distinct references are not resolved to a common superclass; they widen
// straight to the top reference.
//
// Example:
//
//	Merge(Int, Char)                   = Int
//	Merge(Ljava/lang/String;, Lnull;)  = Ljava/lang/Object;
//	Merge(Int, Float)                  = Uninitialized
func Merge(a, b value.Value) value.Value {
	if a == b {
		return a
	}
	if a.IsUninitialized() || b.IsUninitialized() {
		return value.Uninitialized()
	}
	if a.IsReference() && b.IsReference() {
		return value.TopReference()
	}
	if a.IsIntStorable() && b.IsIntStorable() {
		return value.Int()
	}
	return value.Uninitialized()
}

// Merge joins two values. See the package-level Merge.
func (*Interpreter) Merge(a, b value.Value) value.Value {
	return Merge(a, b)
}
