package dataflow

import (
	"errors"

	"github.com/dkellner/pinpoint/internal/analysis"
	"github.com/dkellner/pinpoint/internal/cfg"
	"github.com/dkellner/pinpoint/internal/ir"
)

// Solver runs an Analysis to its fixed point over a CFG. Construct one with
// NewWorkListSolver or NewIterativeSolver; each supports a single
// direction, checked once at construction.
type Solver[Fact any] struct {
	analysis Analysis[Fact]
	backward bool
}

// NewWorkListSolver returns a worklist solver for a forward analysis.
func NewWorkListSolver[Fact any](a Analysis[Fact]) (*Solver[Fact], error) {
	if !a.IsForward() {
		return nil, errors.New("dataflow: worklist solver supports forward analyses only")
	}
	return &Solver[Fact]{analysis: a}, nil
}

// NewIterativeSolver returns an iterative solver for a backward analysis.
func NewIterativeSolver[Fact any](a Analysis[Fact]) (*Solver[Fact], error) {
	if a.IsForward() {
		return nil, errors.New("dataflow: iterative solver supports backward analyses only")
	}
	return &Solver[Fact]{analysis: a, backward: true}, nil
}

// Solve picks the solver matching the direction of a and runs it over c.
func Solve[Fact any](a Analysis[Fact], c *cfg.CFG) *Result[Fact] {
	s := &Solver[Fact]{analysis: a, backward: !a.IsForward()}
	return s.Solve(c)
}

// Solve runs the analysis over c until the facts converge.
func (s *Solver[Fact]) Solve(c *cfg.CFG) *Result[Fact] {
	result := s.initialize(c)
	if s.backward {
		s.solveBackward(c, result)
	} else {
		s.solveForward(c, result)
	}
	return result
}

func (s *Solver[Fact]) initialize(c *cfg.CFG) *Result[Fact] {
	result := NewResult[Fact]()
	for _, n := range c.Nodes() {
		result.SetInFact(n, s.analysis.NewInitialFact())
		result.SetOutFact(n, s.analysis.NewInitialFact())
	}
	if s.backward {
		result.SetInFact(c.Exit(), s.analysis.NewBoundaryFact(c))
	} else {
		result.SetOutFact(c.Entry(), s.analysis.NewBoundaryFact(c))
	}
	return result
}

// solveForward seeds the worklist with every node, recomputes IN as the
// meet of predecessor OUTs, and re-enqueues successors whenever a transfer
// changes OUT.
func (s *Solver[Fact]) solveForward(c *cfg.CFG, result *Result[Fact]) {
	workList := append([]ir.Stmt(nil), c.Nodes()...)
	iterations := 0
	for len(workList) > 0 {
		node := workList[0]
		workList = workList[1:]
		iterations++

		in := s.analysis.NewInitialFact()
		for _, pred := range c.PredsOf(node) {
			s.analysis.MeetInto(result.OutFact(pred), in)
		}
		out := result.OutFact(node)
		if s.analysis.TransferNode(node, in, out) {
			workList = append(workList, c.SuccsOf(node)...)
		}
		result.SetInFact(node, in)
		result.SetOutFact(node, out)
	}
	analysis.Debugf("[dataflow] forward solve of %s converged after %d pops", c.Method, iterations)
}

// solveBackward sweeps all nodes repeatedly, recomputing OUT as the meet of
// successor INs, until a full pass changes nothing.
func (s *Solver[Fact]) solveBackward(c *cfg.CFG, result *Result[Fact]) {
	passes := 0
	for changed := true; changed; {
		changed = false
		passes++
		for _, node := range c.Nodes() {
			out := s.analysis.NewInitialFact()
			for _, succ := range c.SuccsOf(node) {
				s.analysis.MeetInto(result.InFact(succ), out)
			}
			in := result.InFact(node)
			if s.analysis.TransferNode(node, out, in) {
				changed = true
			}
			result.SetInFact(node, in)
			result.SetOutFact(node, out)
		}
	}
	analysis.Debugf("[dataflow] backward solve of %s converged after %d passes", c.Method, passes)
}
