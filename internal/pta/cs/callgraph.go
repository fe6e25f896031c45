package cs

import "github.com/dkellner/pinpoint/internal/ir"

// CSEdge is a context-sensitive call edge.
type CSEdge struct {
	Kind   ir.CallKind
	Site   *CSCallSite
	Callee *CSMethod
}

// CSCallGraph is the call graph over (context, method) nodes grown during
// context-sensitive solving.
type CSCallGraph struct {
	entry *CSMethod

	reachable []*CSMethod
	reachSet  map[*CSMethod]bool

	edges   []CSEdge
	edgeSet map[CSEdge]bool

	calleesOf map[*CSCallSite][]*CSMethod
	callersOf map[*CSMethod][]*CSCallSite
}

// NewCSCallGraph returns an empty graph with the given entry.
func NewCSCallGraph(entry *CSMethod) *CSCallGraph {
	return &CSCallGraph{
		entry:     entry,
		reachSet:  make(map[*CSMethod]bool),
		edgeSet:   make(map[CSEdge]bool),
		calleesOf: make(map[*CSCallSite][]*CSMethod),
		callersOf: make(map[*CSMethod][]*CSCallSite),
	}
}

// Entry returns the entry node.
func (g *CSCallGraph) Entry() *CSMethod { return g.entry }

// AddReachable marks m reachable and reports whether it was new.
func (g *CSCallGraph) AddReachable(m *CSMethod) bool {
	if g.reachSet[m] {
		return false
	}
	g.reachSet[m] = true
	g.reachable = append(g.reachable, m)
	return true
}

// Contains reports whether m is reachable.
func (g *CSCallGraph) Contains(m *CSMethod) bool { return g.reachSet[m] }

// Reachable returns the reachable nodes in discovery order.
func (g *CSCallGraph) Reachable() []*CSMethod { return g.reachable }

// AddEdge records an edge and reports whether it was new.
func (g *CSCallGraph) AddEdge(e CSEdge) bool {
	if g.edgeSet[e] {
		return false
	}
	g.edgeSet[e] = true
	g.edges = append(g.edges, e)
	g.calleesOf[e.Site] = append(g.calleesOf[e.Site], e.Callee)
	g.callersOf[e.Callee] = append(g.callersOf[e.Callee], e.Site)
	return true
}

// HasCallee reports whether the site already targets callee.
func (g *CSCallGraph) HasCallee(site *CSCallSite, callee *CSMethod) bool {
	for _, c := range g.calleesOf[site] {
		if c == callee {
			return true
		}
	}
	return false
}

// Edges returns every edge in insertion order.
func (g *CSCallGraph) Edges() []CSEdge { return g.edges }

// CalleesOf returns the callees of a context-qualified site.
func (g *CSCallGraph) CalleesOf(site *CSCallSite) []*CSMethod { return g.calleesOf[site] }

// CallersOf returns the context-qualified sites targeting m.
func (g *CSCallGraph) CallersOf(m *CSMethod) []*CSCallSite { return g.callersOf[m] }
