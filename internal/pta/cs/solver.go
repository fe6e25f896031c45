package cs

import (
	"github.com/dkellner/pinpoint/internal/analysis"
	"github.com/dkellner/pinpoint/internal/callgraph"
	"github.com/dkellner/pinpoint/internal/ir"
	"github.com/dkellner/pinpoint/internal/pta"
)

// Observer is a plugin on the solver loop. OnCallEdge fires after a new
// call edge is added (base is nil for static calls); OnNewPointsTo fires
// after new objects land in a variable's points-to set; OnFinish fires once
// the worklist drains. The taint overlay is the only in-tree observer.
type Observer interface {
	OnCallEdge(site *CSCallSite, callee *CSMethod, base *CSVar)
	OnNewPointsTo(v *CSVar, delta *PointsToSet)
	OnFinish(r *Result)
}

type entry struct {
	pointer Pointer
	pts     *PointsToSet
}

type pfg struct {
	succs   map[Pointer][]Pointer
	succSet map[Pointer]map[Pointer]bool
}

func newPFG() *pfg {
	return &pfg{
		succs:   make(map[Pointer][]Pointer),
		succSet: make(map[Pointer]map[Pointer]bool),
	}
}

func (g *pfg) addEdge(source, target Pointer) bool {
	set := g.succSet[source]
	if set == nil {
		set = make(map[Pointer]bool)
		g.succSet[source] = set
	}
	if set[target] {
		return false
	}
	set[target] = true
	g.succs[source] = append(g.succs[source], target)
	return true
}

// Solver runs the context-sensitive points-to analysis.
type Solver struct {
	program  *ir.Program
	heap     *pta.HeapModel
	selector Selector

	csm       *Manager
	cg        *CSCallGraph
	graph     *pfg
	workList  []entry
	observers []Observer
	result    *Result
}

// NewSolver returns a solver for p with the given heap model and context
// selector.
func NewSolver(p *ir.Program, heap *pta.HeapModel, selector Selector) *Solver {
	return &Solver{program: p, heap: heap, selector: selector, csm: NewManager()}
}

// Manager exposes the canonicalization tables to plugins.
func (s *Solver) Manager() *Manager { return s.csm }

// Selector exposes the context selector to plugins.
func (s *Solver) Selector() Selector { return s.selector }

// Heap exposes the heap model to plugins.
func (s *Solver) Heap() *pta.HeapModel { return s.heap }

// AddObserver registers a plugin before Solve runs.
func (s *Solver) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// AddEntry enqueues a (pointer, points-to set) pair; plugins use this to
// inject objects.
func (s *Solver) AddEntry(p Pointer, pts *PointsToSet) {
	s.workList = append(s.workList, entry{p, pts})
}

// Solve runs the analysis to completion and returns its result.
func (s *Solver) Solve() *Result {
	s.initialize()
	s.analyze()
	s.result = &Result{csm: s.csm, cg: s.cg, graph: s.graph}
	for _, o := range s.observers {
		o.OnFinish(s.result)
	}
	return s.result
}

func (s *Solver) initialize() {
	s.graph = newPFG()
	entryMethod := s.csm.CSMethod(s.selector.EmptyContext(), s.program.Main)
	s.cg = NewCSCallGraph(entryMethod)
	s.addReachable(entryMethod)
}

// addReachable marks a context-qualified method reachable and processes
// the statements that do not depend on receiver objects.
func (s *Solver) addReachable(csMethod *CSMethod) {
	if !s.cg.AddReachable(csMethod) {
		return
	}
	ctx := csMethod.Context()
	for _, stmt := range csMethod.Method().Stmts {
		switch stmt := stmt.(type) {
		case *ir.New:
			obj := s.heap.Obj(stmt)
			heapCtx := s.selector.SelectHeapContext(csMethod, obj)
			csObj := s.csm.CSObj(heapCtx, obj)
			s.AddEntry(s.csm.CSVar(ctx, stmt.LHS), pta.NewPointsToSet(csObj))
		case *ir.Copy:
			s.addPFGEdge(s.csm.CSVar(ctx, stmt.RHS), s.csm.CSVar(ctx, stmt.LHS))
		case *ir.LoadField:
			if stmt.IsStatic() {
				s.addPFGEdge(s.csm.StaticField(stmt.Access.Field), s.csm.CSVar(ctx, stmt.LHS))
			}
		case *ir.StoreField:
			if stmt.IsStatic() {
				s.addPFGEdge(s.csm.CSVar(ctx, stmt.RHS), s.csm.StaticField(stmt.Access.Field))
			}
		case *ir.Invoke:
			if stmt.IsStatic() {
				callee := callgraph.ResolveCallee(nil, stmt)
				if callee == nil {
					continue
				}
				csSite := s.csm.CSCallSite(ctx, stmt)
				calleeCtx := s.selector.SelectStaticContext(csSite, callee)
				s.processSingleCall(csSite, s.csm.CSMethod(calleeCtx, callee), nil)
			}
		}
	}
}

// addPFGEdge inserts a subset edge and, when new, immediately pushes the
// source's current points-to set to the target.
func (s *Solver) addPFGEdge(source, target Pointer) {
	if s.graph.addEdge(source, target) {
		if !source.PTS().IsEmpty() {
			s.AddEntry(target, source.PTS())
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
		if delta.IsEmpty() {
			continue
		}
		vp, isVar := e.pointer.(*CSVar)
		if !isVar {
			continue
		}
		v, ctx := vp.Var(), vp.Context()
		for _, obj := range delta.Objects() {
			for _, st := range v.StoreFields {
				s.addPFGEdge(s.csm.CSVar(ctx, st.RHS), s.csm.InstanceField(obj, st.Access.Field))
			}
			for _, ld := range v.LoadFields {
				s.addPFGEdge(s.csm.InstanceField(obj, ld.Access.Field), s.csm.CSVar(ctx, ld.LHS))
			}
			for _, st := range v.StoreArrays {
				s.addPFGEdge(s.csm.CSVar(ctx, st.RHS), s.csm.ArrayIndex(obj))
			}
			for _, ld := range v.LoadArrays {
				s.addPFGEdge(s.csm.ArrayIndex(obj), s.csm.CSVar(ctx, ld.LHS))
			}
			s.processCall(vp, obj)
		}
		for _, o := range s.observers {
			o.OnNewPointsTo(vp, delta)
		}
	}
	analysis.Debugf("[pta/cs] converged after %d worklist pops: %d reachable cs-methods, %d cs-edges",
		pops, len(s.cg.Reachable()), len(s.cg.Edges()))
}

// propagate adds pts \ pt(p) to pt(p), forwards the delta to the PFG
// successors of p, and returns the delta.
func (s *Solver) propagate(p Pointer, pts *PointsToSet) *PointsToSet {
	delta := pta.NewPointsToSet[*CSObj]()
	for _, obj := range pts.Objects() {
		if !p.PTS().Contains(obj) {
			delta.Add(obj)
		}
	}
	if !delta.IsEmpty() {
		for _, obj := range delta.Objects() {
			p.PTS().Add(obj)
		}
		for _, succ := range s.graph.succs[p] {
			s.AddEntry(succ, delta)
		}
	}
	return delta
}

// processCall resolves the invokes through recv against the dynamic type
// of a newly discovered receiver object.
func (s *Solver) processCall(recv *CSVar, recvObj *CSObj) {
	for _, site := range recv.Var().Invokes {
		callee := callgraph.ResolveCallee(recvObj.Obj().Type, site)
		if callee == nil {
			continue
		}
		csSite := s.csm.CSCallSite(recv.Context(), site)
		calleeCtx := s.selector.SelectInstanceContext(csSite, recvObj, callee)
		csCallee := s.csm.CSMethod(calleeCtx, callee)
		s.AddEntry(s.csm.CSVar(calleeCtx, callee.This), pta.NewPointsToSet(recvObj))
		s.processSingleCall(csSite, csCallee, recv)
	}
}

// processSingleCall adds the call edge and, when new, wires arguments to
// parameters and return variables to the call-site LHS, then notifies
// observers.
func (s *Solver) processSingleCall(csSite *CSCallSite, csCallee *CSMethod, base *CSVar) {
	if s.cg.HasCallee(csSite, csCallee) {
		return
	}
	site := csSite.Site()
	callerCtx := csSite.Context()
	calleeCtx := csCallee.Context()
	callee := csCallee.Method()
	s.cg.AddEdge(CSEdge{Kind: site.Call.Kind, Site: csSite, Callee: csCallee})
	s.addReachable(csCallee)
	if len(callee.Params) != len(site.Call.Args) {
		panic("pta: argument/parameter arity mismatch at " + ir.StmtString(site))
	}
	for i, param := range callee.Params {
		s.addPFGEdge(s.csm.CSVar(callerCtx, site.Call.Args[i]), s.csm.CSVar(calleeCtx, param))
	}
	if site.LHS != nil {
		for _, ret := range callee.ReturnVars {
			s.addPFGEdge(s.csm.CSVar(calleeCtx, ret), s.csm.CSVar(callerCtx, site.LHS))
		}
	}
	for _, o := range s.observers {
		o.OnCallEdge(csSite, csCallee, base)
	}
}
