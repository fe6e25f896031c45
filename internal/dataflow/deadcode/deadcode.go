// Package deadcode detects unreachable statements and useless assignments
// by combining reachability, constant-folded branches and liveness.
package deadcode

import (
	"sort"

	"github.com/dkellner/pinpoint/internal/cfg"
	"github.com/dkellner/pinpoint/internal/dataflow"
	"github.com/dkellner/pinpoint/internal/dataflow/constprop"
	"github.com/dkellner/pinpoint/internal/dataflow/livevars"
	"github.com/dkellner/pinpoint/internal/ir"
)

// Detect returns the dead statements of c, ordered by statement index. A
// statement is dead when the entry-reachability walk never marks it live:
// branches with constant conditions contribute only the taken edge, and an
// assignment to a non-live variable with a side-effect-free right-hand side
// passes the walk through without being marked. The CFG exit is never
// reported.
func Detect(c *cfg.CFG,
	constants *dataflow.Result[*constprop.Fact],
	liveVars *dataflow.Result[*livevars.Fact]) []ir.Stmt {

	liveCode := make(map[ir.Stmt]bool)
	queue := []ir.Stmt{c.Entry()}
	queued := map[ir.Stmt]bool{c.Entry(): true}
	enqueue := func(targets ...ir.Stmt) {
		for _, t := range targets {
			if !queued[t] {
				queued[t] = true
				queue = append(queue, t)
			}
		}
	}

	for len(queue) > 0 {
		stmt := queue[0]
		queue = queue[1:]
		// Useless assignment: pass through without marking live.
		if lhs, rhs, ok := assignDef(stmt); ok {
			if !liveVars.OutFact(stmt).Contains(lhs) && hasNoSideEffect(rhs) {
				enqueue(c.SuccsOf(stmt)...)
				continue
			}
		}
		if liveCode[stmt] {
			continue
		}
		liveCode[stmt] = true
		switch s := stmt.(type) {
		case *ir.If:
			cond := constprop.Evaluate(s.Cond, constants.InFact(stmt))
			if cond.IsConstant() {
				for _, e := range c.OutEdgesOf(stmt) {
					if (cond.Constant() == 1 && e.Kind == cfg.EdgeIfTrue) ||
						(cond.Constant() == 0 && e.Kind == cfg.EdgeIfFalse) {
						enqueue(e.Target)
					}
				}
			} else {
				enqueue(c.SuccsOf(stmt)...)
			}
		case *ir.Switch:
			val := constprop.Evaluate(s.Var, constants.InFact(stmt))
			if val.IsConstant() {
				hit := false
				for _, cs := range s.Cases {
					if cs.Value == val.Constant() {
						hit = true
						enqueue(cs.Target)
					}
				}
				if !hit {
					enqueue(s.Default)
				}
			} else {
				enqueue(c.SuccsOf(stmt)...)
			}
		default:
			enqueue(c.SuccsOf(stmt)...)
		}
	}

	var dead []ir.Stmt
	for _, n := range c.Nodes() {
		if !liveCode[n] && !c.IsExit(n) {
			dead = append(dead, n)
		}
	}
	sort.Slice(dead, func(i, j int) bool { return dead[i].Index() < dead[j].Index() })
	return dead
}

// assignDef returns the LHS variable and RHS expression of statements whose
// left-hand side is a plain variable. Invocations are excluded: a call is
// never a useless assignment.
func assignDef(s ir.Stmt) (*ir.Var, ir.Exp, bool) {
	switch s.(type) {
	case *ir.New, *ir.Copy, *ir.Assign, *ir.LoadField, *ir.LoadArray:
		return ir.Def(s)
	}
	return nil, nil, false
}

// hasNoSideEffect reports whether evaluating rhs is unobservable:
// allocations modify the heap, casts may trap, field and array accesses may
// fault or trigger initialization, and DIV/REM may trap on zero.
func hasNoSideEffect(rhs ir.Exp) bool {
	switch e := rhs.(type) {
	case *ir.NewExp, *ir.CastExp, *ir.FieldAccess, *ir.ArrayAccess, *ir.InvokeExp:
		return false
	case *ir.BinaryExp:
		return e.Op != ir.OpDiv && e.Op != ir.OpRem
	}
	return true
}
