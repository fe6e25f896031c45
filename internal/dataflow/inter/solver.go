package inter

import (
	"github.com/dkellner/pinpoint/internal/analysis"
	"github.com/dkellner/pinpoint/internal/cfg"
	"github.com/dkellner/pinpoint/internal/dataflow"
	"github.com/dkellner/pinpoint/internal/ir"
)

// Solver drives an inter-procedural analysis over an ICFG to its fixed
// point with a worklist.
type Solver[Fact any] struct {
	analysis Analysis[Fact]
	icfg     *cfg.ICFG

	result   *dataflow.Result[Fact]
	workList []ir.Stmt
}

// NewSolver returns a solver for a over icfg.
func NewSolver[Fact any](a Analysis[Fact], icfg *cfg.ICFG) *Solver[Fact] {
	return &Solver[Fact]{analysis: a, icfg: icfg}
}

// Solve runs to convergence and returns the per-node facts.
func (s *Solver[Fact]) Solve() *dataflow.Result[Fact] {
	s.result = dataflow.NewResult[Fact]()
	s.initialize()
	s.solve()
	return s.result
}

func (s *Solver[Fact]) initialize() {
	for _, n := range s.icfg.Nodes() {
		s.result.SetOutFact(n, s.analysis.NewInitialFact())
		s.result.SetInFact(n, s.analysis.NewInitialFact())
	}
	for _, m := range s.icfg.EntryMethods() {
		entry := s.icfg.EntryOf(m)
		s.result.SetOutFact(entry, s.analysis.NewBoundaryFact(entry))
	}
}

func (s *Solver[Fact]) solve() {
	s.workList = append([]ir.Stmt(nil), s.icfg.Nodes()...)
	enqueue := func(n ir.Stmt) { s.workList = append(s.workList, n) }
	storeHandler, hasStores := any(s.analysis).(StoreHandler[Fact])
	pops := 0
	for len(s.workList) > 0 {
		node := s.workList[0]
		s.workList = s.workList[1:]
		pops++

		in := s.analysis.NewInitialFact()
		for _, e := range s.icfg.InEdgesOf(node) {
			s.analysis.MeetInto(s.analysis.TransferEdge(e, s.result.OutFact(e.Source)), in)
		}
		if hasStores {
			storeHandler.HandleStore(node, in, enqueue)
		}
		out := s.result.OutFact(node)
		if s.analysis.TransferNode(node, in, out) {
			for _, succ := range s.icfg.SuccsOf(node) {
				enqueue(succ)
			}
		}
		s.result.SetInFact(node, in)
		s.result.SetOutFact(node, out)
	}
	analysis.Debugf("[inter] solver converged after %d worklist pops over %d nodes", pops, len(s.icfg.Nodes()))
}
