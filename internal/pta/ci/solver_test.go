package ci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkellner/pinpoint/internal/ir"
)

// program builds:
//
//	class A { A f; set(p) { this.f = p; } get() { return this.f; } }
//	main() { a = new A(); v = new A(); a.set(v); r = a.get(); }
type program struct {
	p *ir.Program

	main, set, get *ir.Method
	newA, newB     *ir.New
	a, v, r        *ir.Var
	setSite        *ir.Invoke
	getSite        *ir.Invoke
}

func buildProgram(t *testing.T) *program {
	t.Helper()
	h := ir.NewHierarchy()
	aClass := &ir.Class{Name: "A"}
	h.AddClass(aClass)
	aType := &ir.ClassType{Class: aClass}
	f := &ir.Field{Name: "f", Type: aType}
	aClass.AddField(f)

	// set(p) { this.f = p; return }
	set := &ir.Method{Name: "set", ReturnType: ir.Void}
	set.Subsig = ir.Subsignature("set", []ir.Type{aType})
	aClass.AddMethod(set)
	set.This = &ir.Var{Name: "this", Type: aType, Method: set}
	p := &ir.Var{Name: "p", Type: aType, Method: set}
	set.Params = []*ir.Var{p}
	set.Stmts = []ir.Stmt{
		&ir.StoreField{Access: &ir.FieldAccess{Base: set.This, Field: f}, RHS: p},
		&ir.Return{},
	}
	ir.IndexStmts(set)

	// get() { t = this.f; return t }
	get := &ir.Method{Name: "get", Subsig: "get()", ReturnType: aType}
	aClass.AddMethod(get)
	get.This = &ir.Var{Name: "this", Type: aType, Method: get}
	tmp := &ir.Var{Name: "t", Type: aType, Method: get}
	get.Stmts = []ir.Stmt{
		&ir.LoadField{LHS: tmp, Access: &ir.FieldAccess{Base: get.This, Field: f}},
		&ir.Return{Var: tmp},
	}
	get.ReturnVars = []*ir.Var{tmp}
	ir.IndexStmts(get)

	mainClass := &ir.Class{Name: "Main"}
	h.AddClass(mainClass)
	main := &ir.Method{Name: "main", Subsig: "main()", IsStatic: true, ReturnType: ir.Void}
	mainClass.AddMethod(main)
	a := &ir.Var{Name: "a", Type: aType, Method: main}
	v := &ir.Var{Name: "v", Type: aType, Method: main}
	r := &ir.Var{Name: "r", Type: aType, Method: main}
	newA := &ir.New{LHS: a, Exp: &ir.NewExp{Type: aType}}
	newB := &ir.New{LHS: v, Exp: &ir.NewExp{Type: aType}}
	setSite := &ir.Invoke{Call: &ir.InvokeExp{Kind: ir.CallVirtual, Decl: aClass, Subsig: set.Subsig, Base: a, Args: []*ir.Var{v}}}
	getSite := &ir.Invoke{LHS: r, Call: &ir.InvokeExp{Kind: ir.CallVirtual, Decl: aClass, Subsig: "get()", Base: a}}
	main.Stmts = []ir.Stmt{newA, newB, setSite, getSite, &ir.Return{}}
	ir.IndexStmts(main)

	return &program{
		p:       &ir.Program{Hierarchy: h, Methods: []*ir.Method{set, get, main}, Main: main},
		main:    main,
		set:     set,
		get:     get,
		newA:    newA,
		newB:    newB,
		a:       a,
		v:       v,
		r:       r,
		setSite: setSite,
		getSite: getSite,
	}
}

func TestFieldFlowThroughCalls(t *testing.T) {
	prog := buildProgram(t)
	result := Solve(prog.p)

	aObjs := result.PointsToSet(prog.a)
	require.Len(t, aObjs, 1)
	assert.Equal(t, ir.Stmt(prog.newA), aObjs[0].Alloc)

	// v = new B flows through set's parameter into a.f and out of get.
	rObjs := result.PointsToSet(prog.r)
	require.Len(t, rObjs, 1)
	assert.Equal(t, ir.Stmt(prog.newB), rObjs[0].Alloc)

	// this in both callees points to the receiver object.
	thisObjs := result.PointsToSet(prog.set.This)
	require.Len(t, thisObjs, 1)
	assert.Equal(t, ir.Stmt(prog.newA), thisObjs[0].Alloc)
}

func TestCallGraphGrowsOnDemand(t *testing.T) {
	prog := buildProgram(t)
	result := Solve(prog.p)

	g := result.CallGraph()
	assert.True(t, g.Contains(prog.main))
	assert.True(t, g.Contains(prog.set))
	assert.True(t, g.Contains(prog.get))
	assert.Equal(t, []*ir.Method{prog.set}, g.CalleesOf(prog.setSite))
	assert.Equal(t, []*ir.Method{prog.get}, g.CalleesOf(prog.getSite))
}

// Whenever the PFG contains a → b, PTS(a) ⊆ PTS(b) at fixpoint.
func TestInclusionSoundness(t *testing.T) {
	prog := buildProgram(t)
	result := Solve(prog.p)

	g := result.PFG()
	check := func(src Pointer) {
		for _, dst := range g.SuccsOf(src) {
			for _, obj := range src.PTS().Objects() {
				assert.True(t, dst.PTS().Contains(obj),
					"successor must include every object of its source")
			}
		}
	}
	for _, v := range g.Vars() {
		check(g.VarPtr(v))
	}
	for _, p := range g.instanceFields {
		check(p)
	}
	for _, p := range g.staticFields {
		check(p)
	}
	for _, p := range g.arrayIndexes {
		check(p)
	}
}

func TestStaticFieldAndArrayFlow(t *testing.T) {
	h := ir.NewHierarchy()
	cClass := &ir.Class{Name: "C"}
	h.AddClass(cClass)
	cType := &ir.ClassType{Class: cClass}
	sField := &ir.Field{Name: "s", Type: cType, IsStatic: true}
	cClass.AddField(sField)

	main := &ir.Method{Name: "main", Subsig: "main()", IsStatic: true, ReturnType: ir.Void}
	cClass.AddMethod(main)
	o := &ir.Var{Name: "o", Type: cType, Method: main}
	w := &ir.Var{Name: "w", Type: cType, Method: main}
	arr := &ir.Var{Name: "arr", Type: &ir.ArrayType{Elem: cType}, Method: main}
	idx := &ir.Var{Name: "idx", Type: ir.Int, Method: main}
	e1 := &ir.Var{Name: "e1", Type: cType, Method: main}

	newO := &ir.New{LHS: o, Exp: &ir.NewExp{Type: cType}}
	newArr := &ir.New{LHS: arr, Exp: &ir.NewExp{Type: &ir.ArrayType{Elem: cType}}}
	main.Stmts = []ir.Stmt{
		newO,
		newArr,
		&ir.StoreField{Access: &ir.FieldAccess{Field: sField}, RHS: o},
		&ir.LoadField{LHS: w, Access: &ir.FieldAccess{Field: sField}},
		&ir.StoreArray{Access: &ir.ArrayAccess{Base: arr, Index: idx}, RHS: o},
		&ir.LoadArray{LHS: e1, Access: &ir.ArrayAccess{Base: arr, Index: idx}},
		&ir.Return{},
	}
	ir.IndexStmts(main)
	p := &ir.Program{Hierarchy: h, Methods: []*ir.Method{main}, Main: main}

	result := Solve(p)
	wObjs := result.PointsToSet(w)
	require.Len(t, wObjs, 1)
	assert.Equal(t, ir.Stmt(newO), wObjs[0].Alloc)

	eObjs := result.PointsToSet(e1)
	require.Len(t, eObjs, 1)
	assert.Equal(t, ir.Stmt(newO), eObjs[0].Alloc)
}
