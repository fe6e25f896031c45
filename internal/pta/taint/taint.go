package taint

import (
	"sort"
	"strconv"

	"github.com/dkellner/pinpoint/internal/analysis"
	"github.com/dkellner/pinpoint/internal/ir"
	"github.com/dkellner/pinpoint/internal/pta"
	"github.com/dkellner/pinpoint/internal/pta/cs"
)

// Flow records that taint born at Source reached argument Index of Sink.
type Flow struct {
	Source *ir.Invoke
	Sink   *ir.Invoke
	Index  int
}

func stmtKey(s *ir.Invoke) string {
	return s.Container().String() + "/" + strconv.Itoa(s.Index())
}

type transferTarget struct {
	target cs.Pointer
	typ    ir.Type
}

// Analysis is the taint overlay. It observes the context-sensitive solver:
// new call edges materialize source taint and register transfer edges, new
// points-to facts push taint across registered transfers, and solver
// completion scans sink arguments for accumulated taint.
type Analysis struct {
	solver  *cs.Solver
	config  *Config
	manager *Manager

	transfers map[cs.Pointer][]transferTarget

	flows []Flow
}

// New registers the overlay on solver and returns it. Flows are available
// after the solver finishes.
func New(solver *cs.Solver, config *Config) *Analysis {
	a := &Analysis{
		solver:    solver,
		config:    config,
		manager:   NewManager(solver.Heap()),
		transfers: make(map[cs.Pointer][]transferTarget),
	}
	solver.AddObserver(a)
	return a
}

// Manager exposes taint-object identification, mainly to tests.
func (a *Analysis) Manager() *Manager { return a.manager }

// Flows returns the collected taint flows in their reporting order.
func (a *Analysis) Flows() []Flow { return a.flows }

// OnCallEdge materializes taint at source calls and registers the transfer
// edges induced by the callee's rules.
func (a *Analysis) OnCallEdge(site *cs.CSCallSite, callee *cs.CSMethod, base *cs.CSVar) {
	m := callee.Method()
	callSite := site.Site()
	csm := a.solver.Manager()
	ctx := site.Context()
	empty := a.solver.Selector().EmptyContext()

	if t, ok := a.config.sourceTypeOf(m); ok && callSite.LHS != nil {
		obj := a.manager.MakeTaint(callSite, t)
		lhs := csm.CSVar(ctx, callSite.LHS)
		a.solver.AddEntry(lhs, pta.NewPointsToSet(csm.CSObj(empty, obj)))
	}

	for _, rule := range a.config.transfersOf(m) {
		src := a.endpointPointer(rule.From, site, base)
		tgt := a.endpointPointer(rule.To, site, base)
		if src == nil || tgt == nil {
			continue
		}
		a.transfers[src] = append(a.transfers[src], transferTarget{target: tgt, typ: rule.Type})
		a.propagate(src.PTS().Objects(), tgt, rule.Type)
	}
}

// endpointPointer resolves a transfer endpoint to a pointer at the call
// site; nil when the endpoint does not exist there (no base on static
// calls, no LHS, argument index out of range).
func (a *Analysis) endpointPointer(endpoint int, site *cs.CSCallSite, base *cs.CSVar) cs.Pointer {
	callSite := site.Site()
	csm := a.solver.Manager()
	switch {
	case endpoint == EndpointBase:
		if base == nil {
			return nil
		}
		return base
	case endpoint == EndpointResult:
		if callSite.LHS == nil {
			return nil
		}
		return csm.CSVar(site.Context(), callSite.LHS)
	case endpoint >= 0 && endpoint < len(callSite.Call.Args):
		return csm.CSVar(site.Context(), callSite.Call.Args[endpoint])
	default:
		return nil
	}
}

// OnNewPointsTo pushes freshly discovered taint objects across the
// transfers registered on v.
func (a *Analysis) OnNewPointsTo(v *cs.CSVar, delta *cs.PointsToSet) {
	for _, t := range a.transfers[v] {
		a.propagate(delta.Objects(), t.target, t.typ)
	}
}

func (a *Analysis) propagate(objs []*cs.CSObj, target cs.Pointer, typ ir.Type) {
	csm := a.solver.Manager()
	empty := a.solver.Selector().EmptyContext()
	for _, co := range objs {
		if !a.manager.IsTaint(co.Obj()) {
			continue
		}
		forged := a.manager.MakeTaint(a.manager.SourceCall(co.Obj()), typ)
		a.solver.AddEntry(target, pta.NewPointsToSet(csm.CSObj(empty, forged)))
	}
}

// OnFinish scans every reachable call edge for sink rules and collects the
// taint flows, deterministically ordered.
func (a *Analysis) OnFinish(r *cs.Result) {
	csm := a.solver.Manager()
	cg := r.CSCallGraph()
	seen := make(map[Flow]bool)
	for _, csMethod := range cg.Reachable() {
		for _, site := range cg.CallersOf(csMethod) {
			callSite := site.Site()
			for _, idx := range a.config.sinkIndexesOf(csMethod.Method()) {
				if idx < 0 || idx >= len(callSite.Call.Args) {
					continue
				}
				arg := csm.CSVar(site.Context(), callSite.Call.Args[idx])
				for _, co := range arg.PTS().Objects() {
					if !a.manager.IsTaint(co.Obj()) {
						continue
					}
					f := Flow{Source: a.manager.SourceCall(co.Obj()), Sink: callSite, Index: idx}
					if !seen[f] {
						seen[f] = true
						a.flows = append(a.flows, f)
					}
				}
			}
		}
	}
	sort.Slice(a.flows, func(i, j int) bool {
		fi, fj := a.flows[i], a.flows[j]
		if ki, kj := stmtKey(fi.Source), stmtKey(fj.Source); ki != kj {
			return ki < kj
		}
		if ki, kj := stmtKey(fi.Sink), stmtKey(fj.Sink); ki != kj {
			return ki < kj
		}
		return fi.Index < fj.Index
	})
	analysis.Infof("[taint] %d taint flows detected", len(a.flows))
}
