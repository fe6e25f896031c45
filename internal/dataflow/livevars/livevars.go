// Package livevars implements backward live-variable analysis.
package livevars

import (
	"github.com/dkellner/pinpoint/internal/cfg"
	"github.com/dkellner/pinpoint/internal/dataflow"
	"github.com/dkellner/pinpoint/internal/ir"
)

// Fact is the set of live variables at a program point.
type Fact = dataflow.SetFact[*ir.Var]

// Analysis is the backward live-variable analysis. Facts meet by union.
type Analysis struct{}

// New returns the analysis.
func New() *Analysis { return &Analysis{} }

// IsForward reports the direction; liveness runs backward.
func (*Analysis) IsForward() bool { return false }

// NewBoundaryFact returns the empty set: nothing is live after the exit.
func (*Analysis) NewBoundaryFact(c *cfg.CFG) *Fact {
	return dataflow.NewSetFact[*ir.Var]()
}

// NewInitialFact returns the empty set.
func (*Analysis) NewInitialFact() *Fact {
	return dataflow.NewSetFact[*ir.Var]()
}

// MeetInto unions fact into target.
func (*Analysis) MeetInto(fact, target *Fact) {
	target.Union(fact)
}

// TransferNode computes IN = (OUT \ defs) ∪ uses. The backward solver
// passes OUT as in and IN as out.
func (*Analysis) TransferNode(s ir.Stmt, in, out *Fact) bool {
	live := in.Copy()
	if lhs, _, ok := ir.Def(s); ok {
		live.Remove(lhs)
	}
	for _, u := range ir.Uses(s) {
		live.Add(u)
	}
	return out.SetTo(live)
}
