package constprop

import (
	"github.com/dkellner/pinpoint/internal/cfg"
	"github.com/dkellner/pinpoint/internal/ir"
)

// Analysis is the forward constant-propagation analysis.
type Analysis struct{}

// New returns the analysis.
func New() *Analysis { return &Analysis{} }

// IsForward reports the direction; constant propagation runs forward.
func (*Analysis) IsForward() bool { return true }

// NewBoundaryFact binds every integer-holding parameter to NAC: callers are
// unknown at the intra-procedural level.
func (*Analysis) NewBoundaryFact(c *cfg.CFG) *Fact {
	fact := NewFact()
	for _, p := range c.Method.Params {
		if ir.CanHoldInt(p) {
			fact.Update(p, NAC())
		}
	}
	return fact
}

// NewInitialFact returns the empty fact; every variable reads as Undef.
func (*Analysis) NewInitialFact() *Fact { return NewFact() }

// MeetInto meets fact into target, variable by variable.
func (*Analysis) MeetInto(fact, target *Fact) {
	fact.ForEach(func(v *ir.Var, val Value) {
		target.Update(v, MeetValue(val, target.Get(v)))
	})
}

// TransferNode applies the statement transfer: for a definition x = rhs of
// an integer-holding x, OUT = IN[x ↦ evaluate(rhs, IN)]; otherwise OUT = IN.
// It reports whether OUT changed.
func (a *Analysis) TransferNode(s ir.Stmt, in, out *Fact) bool {
	lhs, rhs, isDef := ir.Def(s)
	if isDef && ir.CanHoldInt(lhs) {
		changed := false
		in.ForEach(func(v *ir.Var, val Value) {
			if v != lhs && out.Update(v, val) {
				changed = true
			}
		})
		if out.Update(lhs, Evaluate(rhs, in)) {
			changed = true
		}
		return changed
	}
	changed := false
	in.ForEach(func(v *ir.Var, val Value) {
		if out.Update(v, val) {
			changed = true
		}
	})
	return changed
}

// Evaluate computes the lattice value of exp under the bindings of in.
// Division and remainder by a constant zero yield Undef: the definition
// never commits to a value. Every expression kind outside literals,
// variables and binaries (field and array accesses, invocations, casts,
// allocations) evaluates to NAC.
func Evaluate(exp ir.Exp, in *Fact) Value {
	switch e := exp.(type) {
	case *ir.IntLiteral:
		return MakeConstant(e.Value)
	case *ir.Var:
		return in.Get(e)
	case *ir.BinaryExp:
		v1 := Evaluate(e.X, in)
		v2 := Evaluate(e.Y, in)
		if (e.Op == ir.OpDiv || e.Op == ir.OpRem) && v2.IsConstant() && v2.Constant() == 0 {
			return Undef()
		}
		if v1.IsConstant() && v2.IsConstant() {
			return MakeConstant(evalBinary(e.Op, v1.Constant(), v2.Constant()))
		}
		if v1.IsNAC() || v2.IsNAC() {
			return NAC()
		}
		return Undef()
	default:
		return NAC()
	}
}

// evalBinary computes op over two 32-bit constants with two's-complement
// wrap; shift counts are masked to 5 bits and comparisons yield 0 or 1.
func evalBinary(op ir.BinaryOp, c1, c2 int32) int32 {
	switch op {
	case ir.OpAdd:
		return c1 + c2
	case ir.OpSub:
		return c1 - c2
	case ir.OpMul:
		return c1 * c2
	case ir.OpDiv:
		return c1 / c2
	case ir.OpRem:
		return c1 % c2
	case ir.OpShl:
		return c1 << (uint32(c2) & 31)
	case ir.OpShr:
		return c1 >> (uint32(c2) & 31)
	case ir.OpUshr:
		return int32(uint32(c1) >> (uint32(c2) & 31))
	case ir.OpAnd:
		return c1 & c2
	case ir.OpOr:
		return c1 | c2
	case ir.OpXor:
		return c1 ^ c2
	case ir.OpEq:
		return b2i(c1 == c2)
	case ir.OpNe:
		return b2i(c1 != c2)
	case ir.OpLt:
		return b2i(c1 < c2)
	case ir.OpGt:
		return b2i(c1 > c2)
	case ir.OpLe:
		return b2i(c1 <= c2)
	case ir.OpGe:
		return b2i(c1 >= c2)
	default:
		panic("constprop: unknown binary operator")
	}
}

func b2i(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
