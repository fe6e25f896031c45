package inter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkellner/pinpoint/internal/cfg"
	"github.com/dkellner/pinpoint/internal/dataflow/constprop"
	"github.com/dkellner/pinpoint/internal/ir"
	"github.com/dkellner/pinpoint/internal/pta/ci"
)

// TestConstantThroughCall builds:
//
//	static int id(int x) { return x; }
//	main() { y = id(42); done = y; }
func TestConstantThroughCall(t *testing.T) {
	h := ir.NewHierarchy()
	mainClass := &ir.Class{Name: "Main"}
	h.AddClass(mainClass)

	id := &ir.Method{Name: "id", IsStatic: true, ReturnType: ir.Int}
	id.Subsig = ir.Subsignature("id", []ir.Type{ir.Int})
	mainClass.AddMethod(id)
	x := &ir.Var{Name: "x", Type: ir.Int, Method: id}
	id.Params = []*ir.Var{x}
	id.Stmts = []ir.Stmt{&ir.Return{Var: x}}
	id.ReturnVars = []*ir.Var{x}
	ir.IndexStmts(id)

	main := &ir.Method{Name: "main", Subsig: "main()", IsStatic: true, ReturnType: ir.Void}
	mainClass.AddMethod(main)
	arg := &ir.Var{Name: "arg", Type: ir.Int, Method: main}
	y := &ir.Var{Name: "y", Type: ir.Int, Method: main}
	done := &ir.Var{Name: "done", Type: ir.Int, Method: main}
	setArg := &ir.Assign{LHS: arg, RHS: &ir.IntLiteral{Value: 42}}
	call := &ir.Invoke{LHS: y, Call: &ir.InvokeExp{Kind: ir.CallStatic, Decl: mainClass, Subsig: id.Subsig, Args: []*ir.Var{arg}}}
	after := &ir.Copy{LHS: done, RHS: y}
	main.Stmts = []ir.Stmt{setArg, call, after, &ir.Return{}}
	ir.IndexStmts(main)

	p := &ir.Program{Hierarchy: h, Methods: []*ir.Method{id, main}, Main: main}
	ptaResult := ci.Solve(p)
	icfg := cfg.BuildICFG(ptaResult.CallGraph())
	result := NewSolver[*constprop.Fact](NewInterCP(icfg, ptaResult), icfg).Solve()

	// The return edge materializes y = 42 at the return site.
	assert.Equal(t, constprop.MakeConstant(42), result.InFact(after).Get(y))
	assert.Equal(t, constprop.MakeConstant(42), result.OutFact(after).Get(done))
	// Inside the callee the parameter carries the actual's value.
	assert.Equal(t, constprop.MakeConstant(42), result.InFact(id.Stmts[0]).Get(x))
}

// TestAliasAwareFieldLoad builds two variables pointing at one object, a store
// through one and a load through the other:
//
//	a = new C; b = a; a.f = 7; v = b.f;
func TestAliasAwareFieldLoad(t *testing.T) {
	h := ir.NewHierarchy()
	cClass := &ir.Class{Name: "C"}
	mainClass := &ir.Class{Name: "Main"}
	h.AddClass(cClass)
	h.AddClass(mainClass)
	cType := &ir.ClassType{Class: cClass}
	f := &ir.Field{Name: "f", Type: ir.Int}
	cClass.AddField(f)

	main := &ir.Method{Name: "main", Subsig: "main()", IsStatic: true, ReturnType: ir.Void}
	mainClass.AddMethod(main)
	a := &ir.Var{Name: "a", Type: cType, Method: main}
	b := &ir.Var{Name: "b", Type: cType, Method: main}
	v := &ir.Var{Name: "v", Type: ir.Int, Method: main}
	w := &ir.Var{Name: "w", Type: ir.Int, Method: main}
	seven := &ir.Var{Name: "seven", Type: ir.Int, Method: main}

	alloc := &ir.New{LHS: a, Exp: &ir.NewExp{Type: cType}}
	copyAB := &ir.Copy{LHS: b, RHS: a}
	setSeven := &ir.Assign{LHS: seven, RHS: &ir.IntLiteral{Value: 7}}
	store := &ir.StoreField{Access: &ir.FieldAccess{Base: a, Field: f}, RHS: seven}
	load := &ir.LoadField{LHS: v, Access: &ir.FieldAccess{Base: b, Field: f}}
	use := &ir.Copy{LHS: w, RHS: v}
	main.Stmts = []ir.Stmt{alloc, copyAB, setSeven, store, load, use, &ir.Return{}}
	ir.IndexStmts(main)

	p := &ir.Program{Hierarchy: h, Methods: []*ir.Method{main}, Main: main}
	ptaResult := ci.Solve(p)
	require.Len(t, ptaResult.PointsToSet(b), 1, "b aliases a")

	icfg := cfg.BuildICFG(ptaResult.CallGraph())
	result := NewSolver[*constprop.Fact](NewInterCP(icfg, ptaResult), icfg).Solve()

	assert.Equal(t, constprop.MakeConstant(7), result.OutFact(load).Get(v),
		"the load through the alias observes the stored constant")
	assert.Equal(t, constprop.MakeConstant(7), result.OutFact(use).Get(w))
}

func TestStaticFieldLoad(t *testing.T) {
	h := ir.NewHierarchy()
	cClass := &ir.Class{Name: "C"}
	h.AddClass(cClass)
	g := &ir.Field{Name: "g", Type: ir.Int, IsStatic: true}
	cClass.AddField(g)

	main := &ir.Method{Name: "main", Subsig: "main()", IsStatic: true, ReturnType: ir.Void}
	cClass.AddMethod(main)
	x := &ir.Var{Name: "x", Type: ir.Int, Method: main}
	y := &ir.Var{Name: "y", Type: ir.Int, Method: main}
	setX := &ir.Assign{LHS: x, RHS: &ir.IntLiteral{Value: 5}}
	store := &ir.StoreField{Access: &ir.FieldAccess{Field: g}, RHS: x}
	load := &ir.LoadField{LHS: y, Access: &ir.FieldAccess{Field: g}}
	main.Stmts = []ir.Stmt{setX, store, load, &ir.Return{}}
	ir.IndexStmts(main)

	p := &ir.Program{Hierarchy: h, Methods: []*ir.Method{main}, Main: main}
	ptaResult := ci.Solve(p)
	icfg := cfg.BuildICFG(ptaResult.CallGraph())
	result := NewSolver[*constprop.Fact](NewInterCP(icfg, ptaResult), icfg).Solve()

	assert.Equal(t, constprop.MakeConstant(5), result.OutFact(load).Get(y))
}

func TestIndexCompatible(t *testing.T) {
	c := constprop.MakeConstant
	tests := []struct {
		name string
		s, l constprop.Value
		want bool
	}{
		{"equal-consts", c(3), c(3), true},
		{"distinct-consts", c(3), c(4), false},
		{"store-nac-load-const", constprop.NAC(), c(3), true},
		{"store-const-load-nac", c(3), constprop.NAC(), true},
		{"nac-nac", constprop.NAC(), constprop.NAC(), true},
		{"store-nac-load-undef", constprop.NAC(), constprop.Undef(), false},
		{"store-undef-load-nac", constprop.Undef(), constprop.NAC(), false},
		{"undef-const", constprop.Undef(), c(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, indexCompatible(tt.s, tt.l))
		})
	}
}

// Array stores at a constant index must only reach loads at a compatible
// index.
func TestArrayIndexPrecision(t *testing.T) {
	h := ir.NewHierarchy()
	mainClass := &ir.Class{Name: "Main"}
	h.AddClass(mainClass)
	arrType := &ir.ArrayType{Elem: ir.Int}

	main := &ir.Method{Name: "main", Subsig: "main()", IsStatic: true, ReturnType: ir.Void}
	mainClass.AddMethod(main)
	arr := &ir.Var{Name: "arr", Type: arrType, Method: main}
	i0 := &ir.Var{Name: "i0", Type: ir.Int, Method: main}
	i1 := &ir.Var{Name: "i1", Type: ir.Int, Method: main}
	val := &ir.Var{Name: "val", Type: ir.Int, Method: main}
	same := &ir.Var{Name: "same", Type: ir.Int, Method: main}
	other := &ir.Var{Name: "other", Type: ir.Int, Method: main}

	alloc := &ir.New{LHS: arr, Exp: &ir.NewExp{Type: arrType}}
	setI0 := &ir.Assign{LHS: i0, RHS: &ir.IntLiteral{Value: 0}}
	setI1 := &ir.Assign{LHS: i1, RHS: &ir.IntLiteral{Value: 1}}
	setVal := &ir.Assign{LHS: val, RHS: &ir.IntLiteral{Value: 9}}
	store := &ir.StoreArray{Access: &ir.ArrayAccess{Base: arr, Index: i0}, RHS: val}
	loadSame := &ir.LoadArray{LHS: same, Access: &ir.ArrayAccess{Base: arr, Index: i0}}
	loadOther := &ir.LoadArray{LHS: other, Access: &ir.ArrayAccess{Base: arr, Index: i1}}
	main.Stmts = []ir.Stmt{alloc, setI0, setI1, setVal, store, loadSame, loadOther, &ir.Return{}}
	ir.IndexStmts(main)

	p := &ir.Program{Hierarchy: h, Methods: []*ir.Method{main}, Main: main}
	ptaResult := ci.Solve(p)
	icfg := cfg.BuildICFG(ptaResult.CallGraph())
	result := NewSolver[*constprop.Fact](NewInterCP(icfg, ptaResult), icfg).Solve()

	assert.Equal(t, constprop.MakeConstant(9), result.OutFact(loadSame).Get(same))
	assert.True(t, result.OutFact(loadOther).Get(other).IsUndef(),
		"a load at a different constant index observes nothing")
}

func TestCallToReturnKillsLHS(t *testing.T) {
	// Build an isolated CallToReturn edge and check the LHS kill.
	y := &ir.Var{Name: "y", Type: ir.Int}
	z := &ir.Var{Name: "z", Type: ir.Int}
	decl := &ir.Class{Name: "D"}
	site := &ir.Invoke{LHS: y, Call: &ir.InvokeExp{Kind: ir.CallStatic, Decl: decl, Subsig: "f()"}}

	out := constprop.NewFact()
	out.Update(y, constprop.MakeConstant(1))
	out.Update(z, constprop.MakeConstant(2))

	a := &InterCP{cp: constprop.New()}
	got := a.TransferEdge(&cfg.ICFGEdge{Kind: cfg.ICFGCallToReturn, Source: site}, out)
	assert.True(t, got.Get(y).IsUndef(), "the call-site LHS is killed")
	assert.Equal(t, constprop.MakeConstant(2), got.Get(z))
	assert.Equal(t, constprop.MakeConstant(1), out.Get(y), "the source fact is untouched")
}
