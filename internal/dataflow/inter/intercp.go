package inter

import (
	"github.com/dkellner/pinpoint/internal/cfg"
	"github.com/dkellner/pinpoint/internal/dataflow/constprop"
	"github.com/dkellner/pinpoint/internal/ir"
	"github.com/dkellner/pinpoint/internal/pta"
)

// PTAResult is the slice of a points-to result inter-CP needs for alias
// resolution; both the ci and cs results satisfy it.
type PTAResult interface {
	Vars() []*ir.Var
	PointsToSet(v *ir.Var) []*pta.Obj
}

type instanceKey struct {
	obj   *pta.Obj
	field *ir.Field
}

type staticKey struct {
	class *ir.Class
	field *ir.Field
}

// heapState is the auxiliary state of one inter-CP run: abstract values
// per heap location, the alias sets derived from the points-to result, and
// the static-load index. It lives for a single Solve invocation.
type heapState struct {
	instVals map[instanceKey]constprop.Value
	statVals map[staticKey]constprop.Value
	arrVals  map[*pta.Obj]map[constprop.Value]constprop.Value

	aliases     map[*pta.Obj][]*ir.Var
	staticLoads map[staticKey][]*ir.LoadField
}

// InterCP is inter-procedural constant propagation: the intra transfer
// extended with call-edge mapping of arguments and returns, and heap-aware
// handling of field and array accesses using alias sets from a points-to
// result.
type InterCP struct {
	cp   *constprop.Analysis
	icfg *cfg.ICFG
	heap *heapState
	pta  PTAResult
}

// NewInterCP builds the analysis for icfg, deriving alias sets from the
// points-to result.
func NewInterCP(icfg *cfg.ICFG, ptaResult PTAResult) *InterCP {
	heap := &heapState{
		instVals:    make(map[instanceKey]constprop.Value),
		statVals:    make(map[staticKey]constprop.Value),
		arrVals:     make(map[*pta.Obj]map[constprop.Value]constprop.Value),
		aliases:     make(map[*pta.Obj][]*ir.Var),
		staticLoads: make(map[staticKey][]*ir.LoadField),
	}
	for _, v := range ptaResult.Vars() {
		for _, obj := range ptaResult.PointsToSet(v) {
			heap.aliases[obj] = append(heap.aliases[obj], v)
		}
	}
	for _, n := range icfg.Nodes() {
		if ld, ok := n.(*ir.LoadField); ok && ld.IsStatic() {
			key := staticKey{ld.Access.Field.Class, ld.Access.Field}
			heap.staticLoads[key] = append(heap.staticLoads[key], ld)
		}
	}
	return &InterCP{cp: constprop.New(), icfg: icfg, heap: heap, pta: ptaResult}
}

// IsForward reports the direction; constant propagation runs forward.
func (a *InterCP) IsForward() bool { return true }

// NewBoundaryFact binds the integer-holding parameters of the entry's
// method to NAC.
func (a *InterCP) NewBoundaryFact(entry ir.Stmt) *constprop.Fact {
	return a.cp.NewBoundaryFact(a.icfg.CFGOf(a.icfg.MethodOf(entry)))
}

// NewInitialFact returns the empty fact.
func (a *InterCP) NewInitialFact() *constprop.Fact { return a.cp.NewInitialFact() }

// MeetInto meets fact into target, variable by variable.
func (a *InterCP) MeetInto(fact, target *constprop.Fact) { a.cp.MeetInto(fact, target) }

// TransferNode treats call nodes as identity (the edge transfers carry the
// call semantics), reads field and array loads from the heap state, and
// falls back to the intra transfer elsewhere.
func (a *InterCP) TransferNode(n ir.Stmt, in, out *constprop.Fact) bool {
	switch n := n.(type) {
	case *ir.Invoke:
		return copyInto(in, out)
	case *ir.LoadField:
		if ir.CanHoldInt(n.LHS) {
			return a.transferLoad(n.LHS, a.loadFieldValue(n), in, out)
		}
		return copyInto(in, out)
	case *ir.LoadArray:
		if ir.CanHoldInt(n.LHS) {
			return a.transferLoad(n.LHS, a.loadArrayValue(n, in), in, out)
		}
		return copyInto(in, out)
	default:
		return a.cp.TransferNode(n, in, out)
	}
}

func copyInto(in, out *constprop.Fact) bool {
	changed := false
	in.ForEach(func(v *ir.Var, val constprop.Value) {
		if out.Update(v, val) {
			changed = true
		}
	})
	return changed
}

func (a *InterCP) transferLoad(lhs *ir.Var, val constprop.Value, in, out *constprop.Fact) bool {
	changed := false
	in.ForEach(func(v *ir.Var, x constprop.Value) {
		if v != lhs && out.Update(v, x) {
			changed = true
		}
	})
	if out.Update(lhs, val) {
		changed = true
	}
	return changed
}

// loadFieldValue meets the stored values of every field slot the load may
// read: one slot per pointed-to object for instance loads, the single
// class slot for static loads.
func (a *InterCP) loadFieldValue(n *ir.LoadField) constprop.Value {
	f := n.Access.Field
	if n.IsStatic() {
		return a.heap.statVals[staticKey{f.Class, f}]
	}
	val := constprop.Undef()
	for _, obj := range a.pta.PointsToSet(n.Access.Base) {
		val = constprop.MeetValue(val, a.heap.instVals[instanceKey{obj, f}])
	}
	return val
}

// loadArrayValue meets the stored values at every compatible index of
// every pointed-to array object.
func (a *InterCP) loadArrayValue(n *ir.LoadArray, in *constprop.Fact) constprop.Value {
	idx := constprop.Evaluate(n.Access.Index, in)
	if idx.IsUndef() {
		return constprop.Undef()
	}
	val := constprop.Undef()
	for _, obj := range a.pta.PointsToSet(n.Access.Base) {
		for storedIdx, stored := range a.heap.arrVals[obj] {
			if indexCompatible(storedIdx, idx) {
				val = constprop.MeetValue(val, stored)
			}
		}
	}
	return val
}

// indexCompatible decides whether a stored index and a load index may
// denote the same slot: equal constants, or one NAC against anything but
// Undef.
func indexCompatible(s, l constprop.Value) bool {
	if s.IsConstant() && l.IsConstant() {
		return s == l
	}
	return (s.IsNAC() && !l.IsUndef()) || (l.IsNAC() && !s.IsUndef())
}

// TransferEdge applies the call semantics: Normal edges pass through,
// CallToReturn kills the call-site LHS, Call maps actuals to formals, and
// Return meets the callee's return values into the LHS binding.
func (a *InterCP) TransferEdge(e *cfg.ICFGEdge, out *constprop.Fact) *constprop.Fact {
	switch e.Kind {
	case cfg.ICFGNormal:
		return out
	case cfg.ICFGCallToReturn:
		result := out.Copy()
		site := e.Source.(*ir.Invoke)
		if site.LHS != nil {
			result.Remove(site.LHS)
		}
		return result
	case cfg.ICFGCall:
		site := e.Source.(*ir.Invoke)
		result := constprop.NewFact()
		if len(e.Callee.Params) != len(site.Call.Args) {
			panic("inter: argument/parameter arity mismatch at " + ir.StmtString(site))
		}
		for i, param := range e.Callee.Params {
			result.Update(param, out.Get(site.Call.Args[i]))
		}
		return result
	case cfg.ICFGReturn:
		result := constprop.NewFact()
		if lhs := e.CallSite.LHS; lhs != nil {
			for _, ret := range e.ReturnVars {
				result.Update(lhs, constprop.MeetValue(result.Get(lhs), out.Get(ret)))
			}
		}
		return result
	default:
		panic("inter: unknown ICFG edge kind")
	}
}

// HandleStore folds field and array stores into the heap state and
// re-enqueues every load that may observe the written slot through an
// alias.
func (a *InterCP) HandleStore(n ir.Stmt, in *constprop.Fact, enqueue func(ir.Stmt)) {
	switch s := n.(type) {
	case *ir.StoreField:
		if !ir.CanHoldInt(s.RHS) {
			return
		}
		newVal := constprop.Evaluate(s.RHS, in)
		f := s.Access.Field
		if s.IsStatic() {
			key := staticKey{f.Class, f}
			old := a.heap.statVals[key]
			merged := constprop.MeetValue(old, newVal)
			a.heap.statVals[key] = merged
			if merged != old {
				for _, ld := range a.heap.staticLoads[key] {
					enqueue(ld)
				}
			}
			return
		}
		for _, obj := range a.pta.PointsToSet(s.Access.Base) {
			key := instanceKey{obj, f}
			old := a.heap.instVals[key]
			merged := constprop.MeetValue(old, newVal)
			a.heap.instVals[key] = merged
			if merged == old {
				continue
			}
			aliases, ok := a.heap.aliases[obj]
			if !ok {
				panic("inter: missing alias entry for " + obj.String())
			}
			for _, v := range aliases {
				for _, ld := range v.LoadFields {
					if ld.Access.Field == f {
						enqueue(ld)
					}
				}
			}
		}
	case *ir.StoreArray:
		if !ir.CanHoldInt(s.RHS) {
			return
		}
		idx := constprop.Evaluate(s.Access.Index, in)
		if idx.IsUndef() {
			return
		}
		newVal := constprop.Evaluate(s.RHS, in)
		for _, obj := range a.pta.PointsToSet(s.Access.Base) {
			slots := a.heap.arrVals[obj]
			if slots == nil {
				slots = make(map[constprop.Value]constprop.Value)
				a.heap.arrVals[obj] = slots
			}
			old := slots[idx]
			merged := constprop.MeetValue(old, newVal)
			slots[idx] = merged
			if merged == old {
				continue
			}
			aliases, ok := a.heap.aliases[obj]
			if !ok {
				panic("inter: missing alias entry for " + obj.String())
			}
			for _, v := range aliases {
				for _, ld := range v.LoadArrays {
					enqueue(ld)
				}
			}
		}
	}
}
