package ci

import (
	"github.com/dkellner/pinpoint/internal/analysis"
	"github.com/dkellner/pinpoint/internal/callgraph"
	"github.com/dkellner/pinpoint/internal/ir"
	"github.com/dkellner/pinpoint/internal/pta"
)

type entry struct {
	pointer Pointer
	pts     *PointsToSet
}

// Solver runs the context-insensitive points-to analysis.
type Solver struct {
	program *ir.Program
	heap    *pta.HeapModel

	cg       *callgraph.Graph
	pfg      *PFG
	workList []entry
}

// NewSolver returns a solver for p using the given heap model.
func NewSolver(p *ir.Program, heap *pta.HeapModel) *Solver {
	return &Solver{program: p, heap: heap}
}

// Solve runs the analysis to completion and returns its result.
func Solve(p *ir.Program) *Result {
	s := NewSolver(p, pta.NewHeapModel())
	return s.Solve()
}

// Solve initializes from the entry method and drains the worklist.
func (s *Solver) Solve() *Result {
	s.initialize()
	s.analyze()
	return &Result{pfg: s.pfg, cg: s.cg}
}

func (s *Solver) initialize() {
	s.pfg = NewPFG()
	s.cg = callgraph.NewGraph(s.program.Main)
	s.addReachable(s.program.Main)
}

// addReachable marks a method reachable and processes the statements that
// do not depend on receiver objects. Instance field and array accesses and
// virtual invokes are handled lazily in the main loop once receivers become
// known.
func (s *Solver) addReachable(m *ir.Method) {
	if !s.cg.AddReachable(m) {
		return
	}
	for _, stmt := range m.Stmts {
		switch stmt := stmt.(type) {
		case *ir.New:
			obj := s.heap.Obj(stmt)
			s.addEntry(s.pfg.VarPtr(stmt.LHS), pta.NewPointsToSet(obj))
		case *ir.Copy:
			s.addPFGEdge(s.pfg.VarPtr(stmt.RHS), s.pfg.VarPtr(stmt.LHS))
		case *ir.LoadField:
			if stmt.IsStatic() {
				s.addPFGEdge(s.pfg.StaticField(stmt.Access.Field), s.pfg.VarPtr(stmt.LHS))
			}
		case *ir.StoreField:
			if stmt.IsStatic() {
				s.addPFGEdge(s.pfg.VarPtr(stmt.RHS), s.pfg.StaticField(stmt.Access.Field))
			}
		case *ir.Invoke:
			if stmt.IsStatic() {
				if callee := callgraph.ResolveCallee(nil, stmt); callee != nil {
					s.processSingleCall(stmt, callee)
				}
			}
		}
	}
}

func (s *Solver) addEntry(p Pointer, pts *PointsToSet) {
	s.workList = append(s.workList, entry{p, pts})
}

// addPFGEdge inserts a subset edge and, when new, immediately pushes the
// source's current points-to set to the target.
func (s *Solver) addPFGEdge(source, target Pointer) {
	if s.pfg.AddEdge(source, target) {
		if !source.PTS().IsEmpty() {
			s.addEntry(target, source.PTS())
		}
	}
}

func (s *Solver) analyze() {
	pops := 0
	for len(s.workList) > 0 {
		e := s.workList[0]
		s.workList = s.workList[1:]
		pops++
		delta := s.propagate(e.pointer, e.pts)
		vp, isVar := e.pointer.(*VarPtr)
		if !isVar {
			continue
		}
		v := vp.Var
		for _, obj := range delta.Objects() {
			for _, st := range v.StoreFields {
				s.addPFGEdge(s.pfg.VarPtr(st.RHS), s.pfg.InstanceField(obj, st.Access.Field))
			}
			for _, ld := range v.LoadFields {
				s.addPFGEdge(s.pfg.InstanceField(obj, ld.Access.Field), s.pfg.VarPtr(ld.LHS))
			}
			for _, st := range v.StoreArrays {
				s.addPFGEdge(s.pfg.VarPtr(st.RHS), s.pfg.ArrayIndex(obj))
			}
			for _, ld := range v.LoadArrays {
				s.addPFGEdge(s.pfg.ArrayIndex(obj), s.pfg.VarPtr(ld.LHS))
			}
			s.processCall(v, obj)
		}
	}
	analysis.Debugf("[pta/ci] converged after %d worklist pops: %d reachable methods, %d call edges",
		pops, len(s.cg.Reachable()), len(s.cg.Edges()))
}

// propagate adds pts \ pt(p) to pt(p), forwards the delta to the PFG
// successors of p, and returns the delta.
func (s *Solver) propagate(p Pointer, pts *PointsToSet) *PointsToSet {
	delta := pta.NewPointsToSet[*pta.Obj]()
	for _, obj := range pts.Objects() {
		if !p.PTS().Contains(obj) {
			delta.Add(obj)
		}
	}
	if !delta.IsEmpty() {
		for _, obj := range delta.Objects() {
			p.PTS().Add(obj)
		}
		for _, succ := range s.pfg.SuccsOf(p) {
			s.addEntry(succ, delta)
		}
	}
	return delta
}

// processCall resolves the invokes through v against the dynamic type of a
// newly discovered receiver object.
func (s *Solver) processCall(v *ir.Var, recv *pta.Obj) {
	for _, site := range v.Invokes {
		callee := callgraph.ResolveCallee(recv.Type, site)
		if callee == nil {
			continue
		}
		s.addEntry(s.pfg.VarPtr(callee.This), pta.NewPointsToSet(recv))
		s.processSingleCall(site, callee)
	}
}

// processSingleCall adds the call edge and, when new, wires arguments to
// parameters and return variables to the call-site LHS.
func (s *Solver) processSingleCall(site *ir.Invoke, callee *ir.Method) {
	edge := callgraph.Edge{Kind: site.Call.Kind, Site: site, Callee: callee}
	if s.cg.HasEdge(edge) {
		return
	}
	s.cg.AddEdge(edge)
	s.addReachable(callee)
	if len(callee.Params) != len(site.Call.Args) {
		panic("pta: argument/parameter arity mismatch at " + ir.StmtString(site))
	}
	for i, param := range callee.Params {
		s.addPFGEdge(s.pfg.VarPtr(site.Call.Args[i]), s.pfg.VarPtr(param))
	}
	if site.LHS != nil {
		for _, ret := range callee.ReturnVars {
			s.addPFGEdge(s.pfg.VarPtr(ret), s.pfg.VarPtr(site.LHS))
		}
	}
}
