package callgraph

import (
	"github.com/dkellner/pinpoint/internal/analysis"
	"github.com/dkellner/pinpoint/internal/ir"
)

// BuildCHA builds the call graph of p by class-hierarchy analysis: a
// worklist of methods seeded with main, resolving every invoke statement
// against the static hierarchy.
func BuildCHA(p *ir.Program) *Graph {
	g := NewGraph(p.Main)
	workList := []*ir.Method{p.Main}
	for len(workList) > 0 {
		m := workList[0]
		workList = workList[1:]
		if !g.AddReachable(m) {
			continue
		}
		for _, s := range m.Stmts {
			site, ok := s.(*ir.Invoke)
			if !ok {
				continue
			}
			for _, callee := range ResolveCHA(p.Hierarchy, site) {
				g.AddEdge(Edge{Kind: site.Call.Kind, Site: site, Callee: callee})
				workList = append(workList, callee)
			}
		}
	}
	analysis.Debugf("[cha] %d reachable methods, %d edges", len(g.Reachable()), len(g.Edges()))
	return g
}

// ResolveCHA returns the possible targets of a call site under CHA.
// Static calls bind to the declared method; special calls dispatch upward
// from the declaring class; virtual and interface calls collect the upward
// dispatch of every class in the sub-hierarchy of the declared receiver.
// Sites that resolve to nothing contribute no targets.
func ResolveCHA(h *ir.Hierarchy, site *ir.Invoke) []*ir.Method {
	call := site.Call
	var targets []*ir.Method
	seen := make(map[*ir.Method]bool)
	add := func(m *ir.Method) {
		if m != nil && !seen[m] {
			seen[m] = true
			targets = append(targets, m)
		}
	}
	switch call.Kind {
	case ir.CallStatic:
		add(call.Decl.DeclaredMethod(call.Subsig))
	case ir.CallSpecial:
		add(ir.Dispatch(call.Decl, call.Subsig))
	case ir.CallVirtual, ir.CallInterface:
		queue := []*ir.Class{call.Decl}
		visited := map[*ir.Class]bool{call.Decl: true}
		for len(queue) > 0 {
			c := queue[0]
			queue = queue[1:]
			add(ir.Dispatch(c, call.Subsig))
			var subs []*ir.Class
			if c.IsInterface {
				subs = append(subs, h.DirectSubinterfacesOf(c)...)
				subs = append(subs, h.DirectImplementorsOf(c)...)
			} else {
				subs = h.DirectSubclassesOf(c)
			}
			for _, sub := range subs {
				if !visited[sub] {
					visited[sub] = true
					queue = append(queue, sub)
				}
			}
		}
	}
	return targets
}
