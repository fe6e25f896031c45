package cs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkellner/pinpoint/internal/ir"
	"github.com/dkellner/pinpoint/internal/pta"
)

// idProgram builds the classic context-sensitivity example:
//
//	static id(p) { return p; }
//	main() { x1 = new A; x2 = new A; r1 = id(x1); r2 = id(x2); }
type idProgram struct {
	p          *ir.Program
	newA, newB *ir.New
	r1, r2     *ir.Var
}

func buildIDProgram(t *testing.T) *idProgram {
	t.Helper()
	h := ir.NewHierarchy()
	aClass := &ir.Class{Name: "A"}
	mainClass := &ir.Class{Name: "Main"}
	h.AddClass(aClass)
	h.AddClass(mainClass)
	aType := &ir.ClassType{Class: aClass}

	id := &ir.Method{Name: "id", IsStatic: true, ReturnType: aType}
	id.Subsig = ir.Subsignature("id", []ir.Type{aType})
	mainClass.AddMethod(id)
	p := &ir.Var{Name: "p", Type: aType, Method: id}
	id.Params = []*ir.Var{p}
	id.Stmts = []ir.Stmt{&ir.Return{Var: p}}
	id.ReturnVars = []*ir.Var{p}
	ir.IndexStmts(id)

	main := &ir.Method{Name: "main", Subsig: "main()", IsStatic: true, ReturnType: ir.Void}
	mainClass.AddMethod(main)
	x1 := &ir.Var{Name: "x1", Type: aType, Method: main}
	x2 := &ir.Var{Name: "x2", Type: aType, Method: main}
	r1 := &ir.Var{Name: "r1", Type: aType, Method: main}
	r2 := &ir.Var{Name: "r2", Type: aType, Method: main}
	newA := &ir.New{LHS: x1, Exp: &ir.NewExp{Type: aType}}
	newB := &ir.New{LHS: x2, Exp: &ir.NewExp{Type: aType}}
	call1 := &ir.Invoke{LHS: r1, Call: &ir.InvokeExp{Kind: ir.CallStatic, Decl: mainClass, Subsig: id.Subsig, Args: []*ir.Var{x1}}}
	call2 := &ir.Invoke{LHS: r2, Call: &ir.InvokeExp{Kind: ir.CallStatic, Decl: mainClass, Subsig: id.Subsig, Args: []*ir.Var{x2}}}
	main.Stmts = []ir.Stmt{newA, newB, call1, call2, &ir.Return{}}
	ir.IndexStmts(main)

	return &idProgram{
		p:    &ir.Program{Hierarchy: h, Methods: []*ir.Method{id, main}, Main: main},
		newA: newA, newB: newB, r1: r1, r2: r2,
	}
}

func TestContextInsensitiveMergesCallSites(t *testing.T) {
	prog := buildIDProgram(t)
	solver := NewSolver(prog.p, pta.NewHeapModel(), CISelector{})
	result := solver.Solve()

	assert.Len(t, result.PointsToSet(prog.r1), 2, "both allocations merge through id")
	assert.Len(t, result.PointsToSet(prog.r2), 2)
}

func TestOneCallSiteSensitivitySplits(t *testing.T) {
	prog := buildIDProgram(t)
	solver := NewSolver(prog.p, pta.NewHeapModel(), KCallSelector{K: 1})
	result := solver.Solve()

	r1Objs := result.PointsToSet(prog.r1)
	require.Len(t, r1Objs, 1)
	assert.Equal(t, ir.Stmt(prog.newA), r1Objs[0].Alloc)

	r2Objs := result.PointsToSet(prog.r2)
	require.Len(t, r2Objs, 1)
	assert.Equal(t, ir.Stmt(prog.newB), r2Objs[0].Alloc)
}

func TestContextAppendTruncation(t *testing.T) {
	c := &ir.Class{Name: "T"}
	m := &ir.Method{Name: "m", Subsig: "m()", IsStatic: true, ReturnType: ir.Void}
	c.AddMethod(m)
	s1 := &ir.Invoke{Call: &ir.InvokeExp{Kind: ir.CallStatic, Decl: c, Subsig: "m()"}}
	s2 := &ir.Invoke{Call: &ir.InvokeExp{Kind: ir.CallStatic, Decl: c, Subsig: "m()"}}
	s3 := &ir.Invoke{Call: &ir.InvokeExp{Kind: ir.CallStatic, Decl: c, Subsig: "m()"}}
	m.Stmts = []ir.Stmt{s1, s2, s3}
	ir.IndexStmts(m)

	ctx := EmptyContext().
		Append(CallSiteElem{s1}, 2).
		Append(CallSiteElem{s2}, 2).
		Append(CallSiteElem{s3}, 2)
	require.Equal(t, 2, ctx.Len(), "contexts keep the last k elements")
	assert.Equal(t, CallSiteElem{s2}, ctx.Elems()[0])
	assert.Equal(t, CallSiteElem{s3}, ctx.Elems()[1])

	assert.Equal(t, EmptyContext(), ctx.Truncate(0))
	assert.Equal(t, 1, ctx.Truncate(1).Len())
}

func TestManagerCanonicalizes(t *testing.T) {
	csm := NewManager()
	v := &ir.Var{Name: "v", Type: ir.Int}

	c := &ir.Class{Name: "T"}
	m := &ir.Method{Name: "m", Subsig: "m()", IsStatic: true, ReturnType: ir.Void}
	c.AddMethod(m)
	site := &ir.Invoke{Call: &ir.InvokeExp{Kind: ir.CallStatic, Decl: c, Subsig: "m()"}}
	m.Stmts = []ir.Stmt{site}
	ir.IndexStmts(m)

	ctx1 := EmptyContext().Append(CallSiteElem{site}, 2)
	ctx2 := EmptyContext().Append(CallSiteElem{site}, 2)
	require.NotSame(t, ctx1, ctx2, "separately built contexts are distinct values")
	assert.Same(t, csm.CSVar(ctx1, v), csm.CSVar(ctx2, v),
		"equal (context, var) pairs map to one pointer identity")

	obj := &pta.Obj{ID: 1, Type: ir.Int}
	assert.Same(t, csm.CSObj(ctx1, obj), csm.CSObj(ctx2, obj))
	assert.Same(t, csm.CSMethod(ctx1, m), csm.CSMethod(ctx2, m))
	assert.Same(t, csm.CSCallSite(ctx1, site), csm.CSCallSite(ctx2, site))
}

func TestObjectSensitivityStaticCallsMerge(t *testing.T) {
	prog := buildIDProgram(t)
	solver := NewSolver(prog.p, pta.NewHeapModel(), KObjSelector{K: 1})
	result := solver.Solve()

	// Static calls keep the caller's context under object sensitivity, so
	// the two id() calls still merge.
	assert.Len(t, result.PointsToSet(prog.r1), 2)
	assert.NotEmpty(t, result.CSVars())
}
