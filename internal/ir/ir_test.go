package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubsignature(t *testing.T) {
	assert.Equal(t, "foo()", Subsignature("foo", nil))
	assert.Equal(t, "foo(int,A)", Subsignature("foo", []Type{Int, &ClassType{Class: &Class{Name: "A"}}}))
	assert.Equal(t, "bar(int[])", Subsignature("bar", []Type{&ArrayType{Elem: Int}}))
}

func TestCanHoldInt(t *testing.T) {
	tests := []struct {
		typ  Type
		want bool
	}{
		{Byte, true},
		{Short, true},
		{Int, true},
		{Char, true},
		{Boolean, true},
		{Long, false},
		{Void, false},
		{&ClassType{Class: &Class{Name: "A"}}, false},
		{&ArrayType{Elem: Int}, false},
	}
	for _, tt := range tests {
		v := &Var{Name: "v", Type: tt.typ}
		assert.Equal(t, tt.want, CanHoldInt(v), "type %s", tt.typ.TypeName())
	}
}

func buildHierarchy(t *testing.T) (*Hierarchy, *Class, *Class, *Class) {
	t.Helper()
	h := NewHierarchy()
	a := &Class{Name: "A"}
	b := &Class{Name: "B", Super: a}
	c := &Class{Name: "C", Super: a}
	h.AddClass(a)
	h.AddClass(b)
	h.AddClass(c)
	return h, a, b, c
}

func TestDispatch(t *testing.T) {
	_, a, b, c := buildHierarchy(t)
	afoo := &Method{Name: "foo", Subsig: "foo()"}
	a.AddMethod(afoo)
	bfoo := &Method{Name: "foo", Subsig: "foo()"}
	b.AddMethod(bfoo)

	assert.Equal(t, afoo, Dispatch(a, "foo()"))
	assert.Equal(t, bfoo, Dispatch(b, "foo()"))
	assert.Equal(t, afoo, Dispatch(c, "foo()"), "C inherits A.foo")
	assert.Nil(t, Dispatch(a, "bar()"))
}

func TestDispatchSkipsAbstract(t *testing.T) {
	_, a, b, _ := buildHierarchy(t)
	a.AddMethod(&Method{Name: "foo", Subsig: "foo()", IsAbstract: false})
	b.AddMethod(&Method{Name: "foo", Subsig: "foo()", IsAbstract: true})

	got := Dispatch(b, "foo()")
	require.NotNil(t, got)
	assert.Equal(t, a, got.Class, "abstract override dispatches to the concrete super method")
}

func TestHierarchyLinks(t *testing.T) {
	h := NewHierarchy()
	iface := &Class{Name: "I", IsInterface: true}
	sub := &Class{Name: "J", IsInterface: true, Interfaces: []*Class{iface}}
	impl := &Class{Name: "Impl", Interfaces: []*Class{iface}}
	h.AddClass(iface)
	h.AddClass(sub)
	h.AddClass(impl)

	assert.Equal(t, []*Class{sub}, h.DirectSubinterfacesOf(iface))
	assert.Equal(t, []*Class{impl}, h.DirectImplementorsOf(iface))
	assert.Empty(t, h.DirectSubclassesOf(iface))
}

func TestTypeNamed(t *testing.T) {
	h, a, _, _ := buildHierarchy(t)

	typ, ok := h.TypeNamed("int")
	require.True(t, ok)
	assert.Equal(t, Int, typ)

	typ, ok = h.TypeNamed("A")
	require.True(t, ok)
	assert.Equal(t, a, typ.(*ClassType).Class)

	typ, ok = h.TypeNamed("A[]")
	require.True(t, ok)
	assert.Equal(t, "A[]", typ.TypeName())

	_, ok = h.TypeNamed("Missing")
	assert.False(t, ok)
}

func TestIndexStmtsRegistries(t *testing.T) {
	cls := &Class{Name: "A"}
	m := &Method{Name: "m", Subsig: "m()", IsStatic: true, ReturnType: Void}
	cls.AddMethod(m)

	f := &Field{Name: "f", Type: Int}
	cls.AddField(f)

	o := &Var{Name: "o", Type: &ClassType{Class: cls}, Method: m}
	x := &Var{Name: "x", Type: Int, Method: m}
	i := &Var{Name: "i", Type: Int, Method: m}
	arr := &Var{Name: "arr", Type: &ArrayType{Elem: Int}, Method: m}

	store := &StoreField{Access: &FieldAccess{Base: o, Field: f}, RHS: x}
	load := &LoadField{LHS: x, Access: &FieldAccess{Base: o, Field: f}}
	astore := &StoreArray{Access: &ArrayAccess{Base: arr, Index: i}, RHS: x}
	aload := &LoadArray{LHS: x, Access: &ArrayAccess{Base: arr, Index: i}}
	call := &Invoke{Call: &InvokeExp{Kind: CallVirtual, Decl: cls, Subsig: "m()", Base: o}}
	m.Stmts = []Stmt{store, load, astore, aload, call}
	IndexStmts(m)

	assert.Equal(t, []*StoreField{store}, o.StoreFields)
	assert.Equal(t, []*LoadField{load}, o.LoadFields)
	assert.Equal(t, []*StoreArray{astore}, arr.StoreArrays)
	assert.Equal(t, []*LoadArray{aload}, arr.LoadArrays)
	assert.Equal(t, []*Invoke{call}, o.Invokes)

	for idx, s := range m.Stmts {
		assert.Equal(t, idx, s.Index())
		assert.Equal(t, m, s.Container())
	}

	// Re-indexing must not duplicate registry entries.
	IndexStmts(m)
	assert.Len(t, o.StoreFields, 1)
	assert.Len(t, o.Invokes, 1)
}

func TestDefAndUses(t *testing.T) {
	x := &Var{Name: "x", Type: Int}
	y := &Var{Name: "y", Type: Int}

	cp := &Copy{LHS: x, RHS: y}
	lhs, rhs, ok := Def(cp)
	require.True(t, ok)
	assert.Equal(t, x, lhs)
	assert.Equal(t, y, rhs)
	assert.Equal(t, []*Var{y}, Uses(cp))

	ret := &Return{Var: x}
	_, _, ok = Def(ret)
	assert.False(t, ok)
	assert.Equal(t, []*Var{x}, Uses(ret))

	noResult := &Invoke{Call: &InvokeExp{Kind: CallStatic, Decl: &Class{Name: "A"}, Subsig: "m(int)", Args: []*Var{y}}}
	_, _, ok = Def(noResult)
	assert.False(t, ok, "an invoke without LHS defines nothing")
	assert.Equal(t, []*Var{y}, Uses(noResult))

	store := &StoreField{Access: &FieldAccess{Field: &Field{Name: "f", IsStatic: true}}, RHS: y}
	_, _, ok = Def(store)
	assert.False(t, ok, "stores define heap slots, not variables")
}
