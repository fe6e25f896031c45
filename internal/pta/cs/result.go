package cs

import (
	"github.com/dkellner/pinpoint/internal/ir"
	"github.com/dkellner/pinpoint/internal/pta"
)

// Result exposes the outcome of the context-sensitive analysis, both in
// context-qualified form and projected down to plain variables and
// objects.
type Result struct {
	csm   *Manager
	cg    *CSCallGraph
	graph *pfg
}

// CSVars returns every context-qualified variable in creation order.
func (r *Result) CSVars() []*CSVar { return r.csm.CSVars() }

// PointsToSetCS returns the context-qualified objects v may point to.
func (r *Result) PointsToSetCS(v *CSVar) []*CSObj { return v.PTS().Objects() }

// Vars returns the distinct variables with points-to information, in
// discovery order.
func (r *Result) Vars() []*ir.Var {
	seen := make(map[*ir.Var]bool)
	var vars []*ir.Var
	for _, cv := range r.csm.CSVars() {
		if !seen[cv.Var()] {
			seen[cv.Var()] = true
			vars = append(vars, cv.Var())
		}
	}
	return vars
}

// PointsToSet projects the points-to set of v over all contexts down to
// plain objects, in discovery order.
func (r *Result) PointsToSet(v *ir.Var) []*pta.Obj {
	seen := make(map[*pta.Obj]bool)
	var objs []*pta.Obj
	for _, cv := range r.csm.CSVars() {
		if cv.Var() != v {
			continue
		}
		for _, co := range cv.PTS().Objects() {
			if !seen[co.Obj()] {
				seen[co.Obj()] = true
				objs = append(objs, co.Obj())
			}
		}
	}
	return objs
}

// CSCallGraph returns the context-sensitive call graph.
func (r *Result) CSCallGraph() *CSCallGraph { return r.cg }

// PlainEdge is a call edge with contexts stripped.
type PlainEdge struct {
	Kind   ir.CallKind
	Site   *ir.Invoke
	Callee *ir.Method
}

// CallEdges projects the context-sensitive edges down to plain
// (kind, site, callee) triples, deduplicated in discovery order.
func (r *Result) CallEdges() []PlainEdge {
	seen := make(map[PlainEdge]bool)
	var out []PlainEdge
	for _, e := range r.cg.Edges() {
		p := PlainEdge{e.Kind, e.Site.Site(), e.Callee.Method()}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
