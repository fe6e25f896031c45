package callgraph

import (
	"sort"

	"github.com/dkellner/pinpoint/internal/analysis"
	"github.com/dkellner/pinpoint/internal/ir"
)

// SCC is a strongly connected component of the call graph: a group of
// mutually recursive methods (or a single self-recursive method).
type SCC struct {
	ID      int
	Methods []*ir.Method
}

// sccState holds Tarjan's algorithm state for a single method.
type sccState struct {
	index   int
	lowlink int
	onStack bool
}

// DetectSCCs finds the strongly connected components of g using Tarjan's
// algorithm. Only components with more than one method or a self-loop are
// returned; trivial single-method components are skipped.
func DetectSCCs(g *Graph) []*SCC {
	var (
		index int
		stack []*ir.Method
		state = make(map[*ir.Method]*sccState)
		sccs  []*SCC
	)

	succs := func(m *ir.Method) []*ir.Method {
		var out []*ir.Method
		seen := make(map[*ir.Method]bool)
		for _, s := range m.Stmts {
			if site, ok := s.(*ir.Invoke); ok {
				for _, callee := range g.CalleesOf(site) {
					if !seen[callee] {
						seen[callee] = true
						out = append(out, callee)
					}
				}
			}
		}
		return out
	}

	var strongConnect func(v *ir.Method)
	strongConnect = func(v *ir.Method) {
		state[v] = &sccState{index: index, lowlink: index, onStack: true}
		index++
		stack = append(stack, v)

		for _, w := range succs(v) {
			ws := state[w]
			if ws == nil {
				strongConnect(w)
				if state[w].lowlink < state[v].lowlink {
					state[v].lowlink = state[w].lowlink
				}
			} else if ws.onStack {
				if ws.index < state[v].lowlink {
					state[v].lowlink = ws.index
				}
			}
		}

		if state[v].lowlink == state[v].index {
			var methods []*ir.Method
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				state[w].onStack = false
				methods = append(methods, w)
				if w == v {
					break
				}
			}
			if len(methods) > 1 || hasSelfLoop(g, methods[0]) {
				sccs = append(sccs, &SCC{ID: len(sccs), Methods: methods})
			}
		}
	}

	for _, m := range g.Reachable() {
		if state[m] == nil {
			strongConnect(m)
		}
	}
	analysis.Debugf("[scc] detected %d non-trivial components", len(sccs))
	return sccs
}

func hasSelfLoop(g *Graph, m *ir.Method) bool {
	for _, s := range m.Stmts {
		if site, ok := s.(*ir.Invoke); ok {
			for _, callee := range g.CalleesOf(site) {
				if callee == m {
					return true
				}
			}
		}
	}
	return false
}

// TopologicalOrder returns the reachable methods in reverse topological
// order: callees before callers, methods in cycles ordered arbitrarily
// within their component. The traversal order is deterministic.
func TopologicalOrder(g *Graph) []*ir.Method {
	visited := make(map[*ir.Method]bool)
	var result []*ir.Method

	var visit func(m *ir.Method)
	visit = func(m *ir.Method) {
		if visited[m] {
			return
		}
		visited[m] = true
		var callees []*ir.Method
		seen := make(map[*ir.Method]bool)
		for _, s := range m.Stmts {
			if site, ok := s.(*ir.Invoke); ok {
				for _, callee := range g.CalleesOf(site) {
					if !seen[callee] {
						seen[callee] = true
						callees = append(callees, callee)
					}
				}
			}
		}
		sort.Slice(callees, func(i, j int) bool {
			return callees[i].String() < callees[j].String()
		})
		for _, callee := range callees {
			visit(callee)
		}
		result = append(result, m)
	}

	for _, m := range g.Reachable() {
		visit(m)
	}
	return result
}

// ReverseTopologicalOrder returns callers before callees.
func ReverseTopologicalOrder(g *Graph) []*ir.Method {
	order := TopologicalOrder(g)
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}
