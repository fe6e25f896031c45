// Package dataflow is the intra-procedural data-flow framework: the
// analysis abstraction, generic fact containers, and the fixed-point
// solvers that drive any analysis declared through the abstraction.
package dataflow

import (
	"github.com/dkellner/pinpoint/internal/cfg"
	"github.com/dkellner/pinpoint/internal/ir"
)

// Analysis declares the shape of a data-flow analysis: its direction, its
// boundary and initial facts, the meet that combines facts across edges,
// and the per-statement transfer.
//
// TransferNode receives the fact flowing into the transfer first and the
// fact it produces second. For forward analyses that is (IN, OUT); the
// backward solver passes (OUT, IN). It reports whether the produced fact
// changed.
type Analysis[Fact any] interface {
	IsForward() bool
	NewBoundaryFact(c *cfg.CFG) Fact
	NewInitialFact() Fact
	// MeetInto meets fact into target: target becomes target ⊓ fact.
	MeetInto(fact, target Fact)
	TransferNode(s ir.Stmt, in, out Fact) bool
}
