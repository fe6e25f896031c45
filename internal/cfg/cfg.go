// Package cfg provides intra-procedural control-flow graphs and the
// inter-procedural control-flow graph layered on a call graph. The solvers
// only traverse these graphs; construction lives here so fixtures and the
// CLI can build them from plain IR.
package cfg

import "github.com/dkellner/pinpoint/internal/ir"

// EdgeKind classifies intra-procedural CFG edges.
type EdgeKind int

const (
	EdgeNormal EdgeKind = iota
	EdgeIfTrue
	EdgeIfFalse
	EdgeSwitchCase
	EdgeSwitchDefault
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeNormal:
		return "normal"
	case EdgeIfTrue:
		return "if-true"
	case EdgeIfFalse:
		return "if-false"
	case EdgeSwitchCase:
		return "switch-case"
	case EdgeSwitchDefault:
		return "switch-default"
	default:
		return "unknown"
	}
}

// Edge is a directed CFG edge. CaseValue is meaningful only for
// EdgeSwitchCase edges.
type Edge struct {
	Kind      EdgeKind
	Source    ir.Stmt
	Target    ir.Stmt
	CaseValue int32
}

// CFG is the control-flow graph of one method, with synthetic entry and
// exit nops.
type CFG struct {
	Method *ir.Method
	entry  ir.Stmt
	exit   ir.Stmt

	nodes []ir.Stmt
	out   map[ir.Stmt][]*Edge
	in    map[ir.Stmt][]*Edge
}

// New builds the CFG of m. IndexStmts must have run on m.
func New(m *ir.Method) *CFG {
	c := &CFG{
		Method: m,
		entry:  ir.NewEntryNop(m),
		exit:   ir.NewExitNop(m),
		out:    make(map[ir.Stmt][]*Edge),
		in:     make(map[ir.Stmt][]*Edge),
	}
	c.nodes = append(c.nodes, c.entry)
	c.nodes = append(c.nodes, m.Stmts...)
	c.nodes = append(c.nodes, c.exit)

	if len(m.Stmts) == 0 {
		c.addEdge(EdgeNormal, c.entry, c.exit, 0)
		return c
	}
	c.addEdge(EdgeNormal, c.entry, m.Stmts[0], 0)
	for i, s := range m.Stmts {
		next := c.exit
		if i+1 < len(m.Stmts) {
			next = m.Stmts[i+1]
		}
		switch s := s.(type) {
		case *ir.Goto:
			c.addEdge(EdgeNormal, s, s.Target, 0)
		case *ir.If:
			c.addEdge(EdgeIfTrue, s, s.Target, 0)
			c.addEdge(EdgeIfFalse, s, next, 0)
		case *ir.Switch:
			for _, cs := range s.Cases {
				c.addEdge(EdgeSwitchCase, s, cs.Target, cs.Value)
			}
			c.addEdge(EdgeSwitchDefault, s, s.Default, 0)
		case *ir.Return:
			c.addEdge(EdgeNormal, s, c.exit, 0)
		default:
			c.addEdge(EdgeNormal, s, next, 0)
		}
	}
	return c
}

func (c *CFG) addEdge(kind EdgeKind, src, tgt ir.Stmt, caseValue int32) {
	e := &Edge{Kind: kind, Source: src, Target: tgt, CaseValue: caseValue}
	c.out[src] = append(c.out[src], e)
	c.in[tgt] = append(c.in[tgt], e)
}

// Entry returns the synthetic entry node.
func (c *CFG) Entry() ir.Stmt { return c.entry }

// Exit returns the synthetic exit node.
func (c *CFG) Exit() ir.Stmt { return c.exit }

// IsEntry reports whether s is the entry node.
func (c *CFG) IsEntry(s ir.Stmt) bool { return s == c.entry }

// IsExit reports whether s is the exit node.
func (c *CFG) IsExit(s ir.Stmt) bool { return s == c.exit }

// Nodes returns all nodes including entry and exit, in statement order.
func (c *CFG) Nodes() []ir.Stmt { return c.nodes }

// SuccsOf returns the successor statements of s in edge insertion order.
func (c *CFG) SuccsOf(s ir.Stmt) []ir.Stmt {
	edges := c.out[s]
	succs := make([]ir.Stmt, len(edges))
	for i, e := range edges {
		succs[i] = e.Target
	}
	return succs
}

// PredsOf returns the predecessor statements of s in edge insertion order.
func (c *CFG) PredsOf(s ir.Stmt) []ir.Stmt {
	edges := c.in[s]
	preds := make([]ir.Stmt, len(edges))
	for i, e := range edges {
		preds[i] = e.Source
	}
	return preds
}

// OutEdgesOf returns the outgoing edges of s.
func (c *CFG) OutEdgesOf(s ir.Stmt) []*Edge { return c.out[s] }

// InEdgesOf returns the incoming edges of s.
func (c *CFG) InEdgesOf(s ir.Stmt) []*Edge { return c.in[s] }
