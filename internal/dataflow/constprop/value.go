// Package constprop implements constant propagation for integer-holding
// variables: the three-state value lattice, the fact map, and the forward
// analysis with its expression evaluator.
package constprop

import "strconv"

type valueKind int

const (
	kindUndef valueKind = iota
	kindConst
	kindNAC
)

// Value is an element of the constant-propagation lattice: Undef (bottom),
// a single 32-bit constant, or NAC (top, "not a constant"). Values are
// immutable and comparable.
type Value struct {
	kind valueKind
	c    int32
}

// Undef returns the bottom element.
func Undef() Value { return Value{kind: kindUndef} }

// NAC returns the top element.
func NAC() Value { return Value{kind: kindNAC} }

// MakeConstant returns the lattice element for the constant c.
func MakeConstant(c int32) Value { return Value{kind: kindConst, c: c} }

// IsUndef reports whether v is the bottom element.
func (v Value) IsUndef() bool { return v.kind == kindUndef }

// IsConstant reports whether v is a single constant.
func (v Value) IsConstant() bool { return v.kind == kindConst }

// IsNAC reports whether v is the top element.
func (v Value) IsNAC() bool { return v.kind == kindNAC }

// Constant returns the constant held by v. It panics unless IsConstant.
func (v Value) Constant() int32 {
	if v.kind != kindConst {
		panic("constprop: Constant() on non-constant value")
	}
	return v.c
}

func (v Value) String() string {
	switch v.kind {
	case kindUndef:
		return "UNDEF"
	case kindNAC:
		return "NAC"
	default:
		return strconv.FormatInt(int64(v.c), 10)
	}
}

// MeetValue returns the greatest lower bound of v1 and v2: Undef is the
// identity, NAC absorbs, and distinct constants collapse to NAC.
func MeetValue(v1, v2 Value) Value {
	switch {
	case v1.IsNAC() || v2.IsNAC():
		return NAC()
	case v1.IsUndef():
		return v2
	case v2.IsUndef():
		return v1
	case v1 == v2:
		return v1
	default:
		return NAC()
	}
}
