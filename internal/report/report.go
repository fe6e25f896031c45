// Package report renders analysis results as JSON or plain text with a
// stable ordering, so repeated runs over the same program are
// byte-identical.
package report

import (
	"sort"
	"strconv"

	"github.com/dkellner/pinpoint/internal/callgraph"
	"github.com/dkellner/pinpoint/internal/cfg"
	"github.com/dkellner/pinpoint/internal/dataflow"
	"github.com/dkellner/pinpoint/internal/dataflow/constprop"
	"github.com/dkellner/pinpoint/internal/dataflow/livevars"
	"github.com/dkellner/pinpoint/internal/ir"
	"github.com/dkellner/pinpoint/internal/pta"
	"github.com/dkellner/pinpoint/internal/pta/taint"
)

// NodeFacts is one statement with its rendered IN and OUT facts.
type NodeFacts struct {
	Index int    `json:"index"`
	Stmt  string `json:"stmt"`
	In    string `json:"in"`
	Out   string `json:"out"`
}

// FactsReport is a per-method data-flow result.
type FactsReport struct {
	Method string      `json:"method"`
	Facts  []NodeFacts `json:"facts"`
}

// StmtLine is one statement with its index.
type StmtLine struct {
	Index int    `json:"index"`
	Stmt  string `json:"stmt"`
}

// DeadCodeReport lists the dead statements of a method.
type DeadCodeReport struct {
	Method string     `json:"method"`
	Dead   []StmtLine `json:"dead"`
}

// CallEdgeLine is one rendered call edge.
type CallEdgeLine struct {
	Kind   string `json:"kind"`
	Site   string `json:"site"`
	Callee string `json:"callee"`
}

// CallGraphReport is a rendered call graph with its recursion groups.
type CallGraphReport struct {
	Entry     string         `json:"entry"`
	Reachable []string       `json:"reachable"`
	Edges     []CallEdgeLine `json:"edges"`
	Recursive [][]string     `json:"recursive,omitempty"`
}

// VarPointsTo is one variable with its abstract objects.
type VarPointsTo struct {
	Var     string   `json:"var"`
	Objects []string `json:"objects"`
}

// PointsToReport is a rendered points-to result.
type PointsToReport struct {
	Vars []VarPointsTo `json:"vars"`
}

// TaintFlowLine is one rendered taint flow.
type TaintFlowLine struct {
	Source string `json:"source"`
	Sink   string `json:"sink"`
	Index  int    `json:"index"`
}

// TaintReport lists the detected taint flows.
type TaintReport struct {
	Flows []TaintFlowLine `json:"flows"`
}

func siteString(s *ir.Invoke) string {
	return s.Container().String() + "/" + strconv.Itoa(s.Index())
}

// BuildConstPropReport renders a constant-propagation result over c.
func BuildConstPropReport(c *cfg.CFG, r *dataflow.Result[*constprop.Fact]) FactsReport {
	rep := FactsReport{Method: c.Method.String()}
	for _, n := range c.Nodes() {
		rep.Facts = append(rep.Facts, NodeFacts{
			Index: n.Index(),
			Stmt:  ir.StmtString(n),
			In:    r.InFact(n).String(),
			Out:   r.OutFact(n).String(),
		})
	}
	return rep
}

// BuildLiveVarsReport renders a live-variable result over c.
func BuildLiveVarsReport(c *cfg.CFG, r *dataflow.Result[*livevars.Fact]) FactsReport {
	rep := FactsReport{Method: c.Method.String()}
	for _, n := range c.Nodes() {
		rep.Facts = append(rep.Facts, NodeFacts{
			Index: n.Index(),
			Stmt:  ir.StmtString(n),
			In:    varSetString(r.InFact(n)),
			Out:   varSetString(r.OutFact(n)),
		})
	}
	return rep
}

func varSetString(f *livevars.Fact) string {
	names := make([]string, 0, f.Len())
	for _, v := range f.Items() {
		names = append(names, v.Name)
	}
	sort.Strings(names)
	s := "{"
	for i, n := range names {
		if i > 0 {
			s += ", "
		}
		s += n
	}
	return s + "}"
}

// BuildDeadCodeReport renders the dead statements of a method.
func BuildDeadCodeReport(m *ir.Method, dead []ir.Stmt) DeadCodeReport {
	rep := DeadCodeReport{Method: m.String()}
	for _, s := range dead {
		rep.Dead = append(rep.Dead, StmtLine{Index: s.Index(), Stmt: ir.StmtString(s)})
	}
	return rep
}

// BuildCallGraphReport renders g with its recursion groups, sorted.
func BuildCallGraphReport(g *callgraph.Graph) CallGraphReport {
	rep := CallGraphReport{Entry: g.Entry().String()}
	for _, m := range g.Reachable() {
		rep.Reachable = append(rep.Reachable, m.String())
	}
	sort.Strings(rep.Reachable)
	for _, e := range g.Edges() {
		rep.Edges = append(rep.Edges, CallEdgeLine{
			Kind:   e.Kind.String(),
			Site:   siteString(e.Site),
			Callee: e.Callee.String(),
		})
	}
	sort.Slice(rep.Edges, func(i, j int) bool {
		a, b := rep.Edges[i], rep.Edges[j]
		if a.Site != b.Site {
			return a.Site < b.Site
		}
		return a.Callee < b.Callee
	})
	for _, scc := range callgraph.DetectSCCs(g) {
		var group []string
		for _, m := range scc.Methods {
			group = append(group, m.String())
		}
		sort.Strings(group)
		rep.Recursive = append(rep.Recursive, group)
	}
	sort.Slice(rep.Recursive, func(i, j int) bool {
		return rep.Recursive[i][0] < rep.Recursive[j][0]
	})
	return rep
}

// PTAResult is the projection of a points-to result the report needs.
type PTAResult interface {
	Vars() []*ir.Var
	PointsToSet(v *ir.Var) []*pta.Obj
}

// BuildPointsToReport renders a points-to result, sorted by variable.
func BuildPointsToReport(r PTAResult) PointsToReport {
	var rep PointsToReport
	for _, v := range r.Vars() {
		vp := VarPointsTo{Var: v.String()}
		for _, o := range r.PointsToSet(v) {
			vp.Objects = append(vp.Objects, o.String())
		}
		sort.Strings(vp.Objects)
		rep.Vars = append(rep.Vars, vp)
	}
	sort.Slice(rep.Vars, func(i, j int) bool { return rep.Vars[i].Var < rep.Vars[j].Var })
	return rep
}

// BuildTaintReport renders taint flows; they arrive already sorted.
func BuildTaintReport(flows []taint.Flow) TaintReport {
	var rep TaintReport
	for _, f := range flows {
		rep.Flows = append(rep.Flows, TaintFlowLine{
			Source: siteString(f.Source),
			Sink:   siteString(f.Sink),
			Index:  f.Index,
		})
	}
	return rep
}
