package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkellner/pinpoint/internal/cfg"
	"github.com/dkellner/pinpoint/internal/ir"
)

// reachAnalysis is a minimal forward analysis used to exercise the solver:
// each fact is the set of definition statements that may reach a point.
type reachAnalysis struct{}

func (reachAnalysis) IsForward() bool { return true }

func (reachAnalysis) NewBoundaryFact(c *cfg.CFG) *SetFact[ir.Stmt] { return NewSetFact[ir.Stmt]() }

func (reachAnalysis) NewInitialFact() *SetFact[ir.Stmt] { return NewSetFact[ir.Stmt]() }

func (reachAnalysis) MeetInto(fact, target *SetFact[ir.Stmt]) { target.Union(fact) }

func (reachAnalysis) TransferNode(s ir.Stmt, in, out *SetFact[ir.Stmt]) bool {
	gen := in.Copy()
	if _, _, ok := ir.Def(s); ok {
		gen.Add(s)
	}
	return out.SetTo(gen)
}

func loopMethod(t *testing.T) (*ir.Method, []ir.Stmt) {
	t.Helper()
	c := &ir.Class{Name: "Test"}
	m := &ir.Method{Name: "m", Subsig: "m()", IsStatic: true, ReturnType: ir.Void}
	c.AddMethod(m)
	x := &ir.Var{Name: "x", Type: ir.Int, Method: m}
	s0 := &ir.Assign{LHS: x, RHS: &ir.IntLiteral{Value: 0}}
	s1 := &ir.If{Cond: &ir.BinaryExp{Op: ir.OpLt, X: x, Y: &ir.IntLiteral{Value: 10}}}
	s2 := &ir.Assign{LHS: x, RHS: &ir.BinaryExp{Op: ir.OpAdd, X: x, Y: &ir.IntLiteral{Value: 1}}}
	s3 := &ir.Goto{Target: s1}
	s4 := &ir.Return{}
	// Layout: s0; s1 (if → s2, else fall through to s4); s4; s2; s3 (goto s1)
	s1.Target = s2
	m.Stmts = []ir.Stmt{s0, s1, s4, s2, s3}
	ir.IndexStmts(m)
	return m, []ir.Stmt{s0, s1, s2, s3, s4}
}

// The fixpoint must satisfy IN[n] = ⊓ OUT[p] over predecessors and
// OUT[n] = transfer(IN[n]) on every node, loops included.
func TestForwardSolverConvergence(t *testing.T) {
	m, _ := loopMethod(t)
	c := cfg.New(m)
	a := reachAnalysis{}
	result := Solve[*SetFact[ir.Stmt]](a, c)

	for _, n := range c.Nodes() {
		if c.IsEntry(n) {
			continue
		}
		in := NewSetFact[ir.Stmt]()
		for _, p := range c.PredsOf(n) {
			in.Union(result.OutFact(p))
		}
		assert.True(t, in.Equals(result.InFact(n)), "IN[%d] is the meet of predecessor OUTs", n.Index())

		out := result.InFact(n).Copy()
		if _, _, ok := ir.Def(n); ok {
			out.Add(n)
		}
		assert.True(t, out.Equals(result.OutFact(n)), "OUT[%d] = transfer(IN[%d])", n.Index(), n.Index())
	}
}

func TestSolverDirectionChecks(t *testing.T) {
	_, err := NewWorkListSolver[*SetFact[ir.Stmt]](reachAnalysis{})
	require.NoError(t, err)
	_, err = NewIterativeSolver[*SetFact[ir.Stmt]](reachAnalysis{})
	assert.Error(t, err, "the iterative solver rejects forward analyses")
}
