package cfg

import "github.com/dkellner/pinpoint/internal/ir"

// CallGraph is the slice of a call graph the ICFG builder needs. The
// concrete implementation lives in internal/callgraph; the interface keeps
// this package independent of how the graph was built (CHA or points-to).
type CallGraph interface {
	Entry() *ir.Method
	Reachable() []*ir.Method
	CalleesOf(site *ir.Invoke) []*ir.Method
}

// ICFGEdgeKind classifies inter-procedural CFG edges.
type ICFGEdgeKind int

const (
	ICFGNormal ICFGEdgeKind = iota
	ICFGCallToReturn
	ICFGCall
	ICFGReturn
)

func (k ICFGEdgeKind) String() string {
	switch k {
	case ICFGNormal:
		return "normal"
	case ICFGCallToReturn:
		return "call-to-return"
	case ICFGCall:
		return "call"
	case ICFGReturn:
		return "return"
	default:
		return "unknown"
	}
}

// ICFGEdge is a directed ICFG edge. Callee is set on Call edges; CallSite
// and ReturnVars are set on Return edges.
type ICFGEdge struct {
	Kind   ICFGEdgeKind
	Source ir.Stmt
	Target ir.Stmt

	Callee     *ir.Method
	CallSite   *ir.Invoke
	ReturnVars []*ir.Var
}

// ICFG is the inter-procedural control-flow graph over every reachable
// method of a call graph.
type ICFG struct {
	nodes []ir.Stmt
	out   map[ir.Stmt][]*ICFGEdge
	in    map[ir.Stmt][]*ICFGEdge

	entryMethods []*ir.Method
	entries      map[*ir.Method]ir.Stmt
	exits        map[*ir.Method]ir.Stmt
	methodOf     map[ir.Stmt]*ir.Method
	cfgs         map[*ir.Method]*CFG
}

// BuildICFG splices the per-method CFGs of every reachable method along the
// call edges of cg. Call sites with no resolved callee keep their plain
// intra-procedural edges.
func BuildICFG(cg CallGraph) *ICFG {
	g := &ICFG{
		out:          make(map[ir.Stmt][]*ICFGEdge),
		in:           make(map[ir.Stmt][]*ICFGEdge),
		entryMethods: []*ir.Method{cg.Entry()},
		entries:      make(map[*ir.Method]ir.Stmt),
		exits:        make(map[*ir.Method]ir.Stmt),
		methodOf:     make(map[ir.Stmt]*ir.Method),
		cfgs:         make(map[*ir.Method]*CFG),
	}
	methods := cg.Reachable()
	for _, m := range methods {
		c := New(m)
		g.cfgs[m] = c
		g.entries[m] = c.Entry()
		g.exits[m] = c.Exit()
		for _, n := range c.Nodes() {
			g.nodes = append(g.nodes, n)
			g.methodOf[n] = m
		}
	}
	for _, m := range methods {
		c := g.cfgs[m]
		for _, n := range c.Nodes() {
			site, isCall := n.(*ir.Invoke)
			var callees []*ir.Method
			if isCall {
				callees = cg.CalleesOf(site)
			}
			for _, e := range c.OutEdgesOf(n) {
				if len(callees) > 0 {
					g.addEdge(&ICFGEdge{Kind: ICFGCallToReturn, Source: n, Target: e.Target})
					for _, callee := range callees {
						g.addEdge(&ICFGEdge{
							Kind:       ICFGReturn,
							Source:     g.exits[callee],
							Target:     e.Target,
							CallSite:   site,
							ReturnVars: callee.ReturnVars,
						})
					}
				} else {
					g.addEdge(&ICFGEdge{Kind: ICFGNormal, Source: n, Target: e.Target})
				}
			}
			for _, callee := range callees {
				g.addEdge(&ICFGEdge{Kind: ICFGCall, Source: n, Target: g.entries[callee], Callee: callee})
			}
		}
	}
	return g
}

func (g *ICFG) addEdge(e *ICFGEdge) {
	g.out[e.Source] = append(g.out[e.Source], e)
	g.in[e.Target] = append(g.in[e.Target], e)
}

// Nodes returns every node of the graph in method/statement order.
func (g *ICFG) Nodes() []ir.Stmt { return g.nodes }

// EntryMethods returns the program entry methods.
func (g *ICFG) EntryMethods() []*ir.Method { return g.entryMethods }

// EntryOf returns the synthetic entry node of m.
func (g *ICFG) EntryOf(m *ir.Method) ir.Stmt { return g.entries[m] }

// ExitOf returns the synthetic exit node of m.
func (g *ICFG) ExitOf(m *ir.Method) ir.Stmt { return g.exits[m] }

// MethodOf returns the method containing n.
func (g *ICFG) MethodOf(n ir.Stmt) *ir.Method { return g.methodOf[n] }

// CFGOf returns the intra-procedural CFG of m.
func (g *ICFG) CFGOf(m *ir.Method) *CFG { return g.cfgs[m] }

// InEdgesOf returns the incoming edges of n.
func (g *ICFG) InEdgesOf(n ir.Stmt) []*ICFGEdge { return g.in[n] }

// OutEdgesOf returns the outgoing edges of n.
func (g *ICFG) OutEdgesOf(n ir.Stmt) []*ICFGEdge { return g.out[n] }

// SuccsOf returns the successor nodes of n.
func (g *ICFG) SuccsOf(n ir.Stmt) []ir.Stmt {
	edges := g.out[n]
	succs := make([]ir.Stmt, len(edges))
	for i, e := range edges {
		succs[i] = e.Target
	}
	return succs
}
