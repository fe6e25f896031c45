package report

import (
	"fmt"
	"io"
	"strings"
)

// WriteFacts renders a data-flow result as aligned text.
func WriteFacts(w io.Writer, r FactsReport) {
	fmt.Fprintf(w, "=== %s ===\n", r.Method)
	for _, f := range r.Facts {
		fmt.Fprintf(w, "[%3d] %-40s IN: %s\n", f.Index, f.Stmt, f.In)
		fmt.Fprintf(w, "      %-40s OUT: %s\n", "", f.Out)
	}
}

// WriteDeadCode renders the dead statements of a method.
func WriteDeadCode(w io.Writer, r DeadCodeReport) {
	fmt.Fprintf(w, "=== dead code in %s ===\n", r.Method)
	if len(r.Dead) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}
	for _, s := range r.Dead {
		fmt.Fprintf(w, "[%3d] %s\n", s.Index, s.Stmt)
	}
}

// WriteCallGraph renders a call graph report.
func WriteCallGraph(w io.Writer, r CallGraphReport) {
	fmt.Fprintf(w, "=== call graph from %s ===\n", r.Entry)
	fmt.Fprintf(w, "%d reachable methods\n", len(r.Reachable))
	for _, e := range r.Edges {
		fmt.Fprintf(w, "%-10s %s -> %s\n", e.Kind, e.Site, e.Callee)
	}
	for _, group := range r.Recursive {
		fmt.Fprintf(w, "recursive: %s\n", strings.Join(group, ", "))
	}
}

// WritePointsTo renders a points-to report.
func WritePointsTo(w io.Writer, r PointsToReport) {
	fmt.Fprintln(w, "=== points-to sets ===")
	for _, v := range r.Vars {
		fmt.Fprintf(w, "%-50s {%s}\n", v.Var, strings.Join(v.Objects, ", "))
	}
}

// WriteTaint renders detected taint flows.
func WriteTaint(w io.Writer, r TaintReport) {
	fmt.Fprintln(w, "=== taint flows ===")
	if len(r.Flows) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}
	for _, f := range r.Flows {
		fmt.Fprintf(w, "%s -> %s arg %d\n", f.Source, f.Sink, f.Index)
	}
}
