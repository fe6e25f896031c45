package ci

import (
	"github.com/dkellner/pinpoint/internal/callgraph"
	"github.com/dkellner/pinpoint/internal/ir"
	"github.com/dkellner/pinpoint/internal/pta"
)

// Result exposes the outcome of the context-insensitive analysis: per-var
// points-to sets and the on-the-fly call graph.
type Result struct {
	pfg *PFG
	cg  *callgraph.Graph
}

// PointsToSet returns the objects v may point to, in discovery order.
func (r *Result) PointsToSet(v *ir.Var) []*pta.Obj {
	if p, ok := r.pfg.varPtrs[v]; ok {
		return p.PTS().Objects()
	}
	return nil
}

// Vars returns every variable with a points-to set, in discovery order.
func (r *Result) Vars() []*ir.Var { return r.pfg.Vars() }

// CallGraph returns the call graph grown during solving.
func (r *Result) CallGraph() *callgraph.Graph { return r.cg }

// PFG exposes the pointer flow graph (tests assert the subset invariant on
// it).
func (r *Result) PFG() *PFG { return r.pfg }
