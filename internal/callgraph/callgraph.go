// Package callgraph provides the call-graph container, the class-hierarchy
// (CHA) builder, single-target callee resolution for the points-to solvers,
// and Tarjan SCC / topological-order utilities over the graph.
package callgraph

import "github.com/dkellner/pinpoint/internal/ir"

// Edge is a resolved call: its dispatch kind, the call site, and the
// callee.
type Edge struct {
	Kind   ir.CallKind
	Site   *ir.Invoke
	Callee *ir.Method
}

// Graph is a call graph: the reachable methods and the resolved call
// edges, both growing monotonically during construction.
type Graph struct {
	entry *ir.Method

	reachable []*ir.Method
	reachSet  map[*ir.Method]bool

	edges   []Edge
	edgeSet map[Edge]bool

	calleesOf map[*ir.Invoke][]*ir.Method
	callersOf map[*ir.Method][]*ir.Invoke
}

// NewGraph returns an empty call graph with the given entry method.
func NewGraph(entry *ir.Method) *Graph {
	return &Graph{
		entry:     entry,
		reachSet:  make(map[*ir.Method]bool),
		edgeSet:   make(map[Edge]bool),
		calleesOf: make(map[*ir.Invoke][]*ir.Method),
		callersOf: make(map[*ir.Method][]*ir.Invoke),
	}
}

// Entry returns the entry method.
func (g *Graph) Entry() *ir.Method { return g.entry }

// AddReachable marks m reachable and reports whether it was new.
func (g *Graph) AddReachable(m *ir.Method) bool {
	if g.reachSet[m] {
		return false
	}
	g.reachSet[m] = true
	g.reachable = append(g.reachable, m)
	return true
}

// Contains reports whether m is reachable.
func (g *Graph) Contains(m *ir.Method) bool { return g.reachSet[m] }

// Reachable returns the reachable methods in discovery order.
func (g *Graph) Reachable() []*ir.Method { return g.reachable }

// AddEdge records a call edge and reports whether it was new.
func (g *Graph) AddEdge(e Edge) bool {
	if g.edgeSet[e] {
		return false
	}
	g.edgeSet[e] = true
	g.edges = append(g.edges, e)
	g.calleesOf[e.Site] = append(g.calleesOf[e.Site], e.Callee)
	g.callersOf[e.Callee] = append(g.callersOf[e.Callee], e.Site)
	return true
}

// HasEdge reports whether the edge is present.
func (g *Graph) HasEdge(e Edge) bool { return g.edgeSet[e] }

// Edges returns every edge in insertion order.
func (g *Graph) Edges() []Edge { return g.edges }

// CalleesOf returns the callees resolved for a call site.
func (g *Graph) CalleesOf(site *ir.Invoke) []*ir.Method { return g.calleesOf[site] }

// CallersOf returns the call sites targeting m.
func (g *Graph) CallersOf(m *ir.Method) []*ir.Invoke { return g.callersOf[m] }
