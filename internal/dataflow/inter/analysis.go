// Package inter is the inter-procedural data-flow framework: an edge-aware
// analysis abstraction solved by a worklist over the ICFG, and the
// alias-aware inter-procedural constant propagation built on it.
package inter

import (
	"github.com/dkellner/pinpoint/internal/cfg"
	"github.com/dkellner/pinpoint/internal/ir"
)

// Analysis declares an inter-procedural data-flow analysis. Node transfers
// see call nodes as identity; the call semantics live in TransferEdge,
// applied to every inbound ICFG edge before the meet.
type Analysis[Fact any] interface {
	IsForward() bool
	NewBoundaryFact(entry ir.Stmt) Fact
	NewInitialFact() Fact
	// MeetInto meets fact into target: target becomes target ⊓ fact.
	MeetInto(fact, target Fact)
	TransferNode(n ir.Stmt, in, out Fact) bool
	TransferEdge(e *cfg.ICFGEdge, out Fact) Fact
}

// StoreHandler is implemented by analyses that maintain auxiliary heap
// state. The solver invokes it with the freshly met IN fact before the
// node transfer; enqueue re-schedules statements invalidated by a heap
// update.
type StoreHandler[Fact any] interface {
	HandleStore(n ir.Stmt, in Fact, enqueue func(ir.Stmt))
}
