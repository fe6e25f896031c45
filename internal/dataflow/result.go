package dataflow

import "github.com/dkellner/pinpoint/internal/ir"

// Result maps every node of a solved graph to its IN and OUT facts.
type Result[Fact any] struct {
	in  map[ir.Stmt]Fact
	out map[ir.Stmt]Fact
}

// NewResult returns an empty result.
func NewResult[Fact any]() *Result[Fact] {
	return &Result[Fact]{
		in:  make(map[ir.Stmt]Fact),
		out: make(map[ir.Stmt]Fact),
	}
}

// InFact returns the fact flowing into n.
func (r *Result[Fact]) InFact(n ir.Stmt) Fact { return r.in[n] }

// OutFact returns the fact flowing out of n.
func (r *Result[Fact]) OutFact(n ir.Stmt) Fact { return r.out[n] }

// SetInFact records the IN fact of n.
func (r *Result[Fact]) SetInFact(n ir.Stmt, f Fact) { r.in[n] = f }

// SetOutFact records the OUT fact of n.
func (r *Result[Fact]) SetOutFact(n ir.Stmt, f Fact) { r.out[n] = f }
