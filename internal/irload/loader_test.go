package irload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkellner/pinpoint/internal/ir"
)

func TestLoadDispatchProgram(t *testing.T) {
	p, err := Load("testdata/dispatch.yaml")
	require.NoError(t, err)

	require.NotNil(t, p.Main)
	assert.Equal(t, "<Main: main()>", p.Main.String())
	assert.Len(t, p.Methods, 3)

	a := p.Hierarchy.Class("A")
	b := p.Hierarchy.Class("B")
	c := p.Hierarchy.Class("C")
	require.NotNil(t, a)
	assert.Equal(t, a, b.Super)
	assert.Equal(t, []*ir.Class{b, c}, p.Hierarchy.DirectSubclassesOf(a))

	// B overrides foo; C inherits A's.
	assert.Equal(t, b, ir.Dispatch(b, "foo()").Class)
	assert.Equal(t, a, ir.Dispatch(c, "foo()").Class)
}

func TestLoadWiresRegistries(t *testing.T) {
	p, err := Load("testdata/dispatch.yaml")
	require.NoError(t, err)

	var invoke *ir.Invoke
	var recv *ir.Var
	for _, s := range p.Main.Stmts {
		if inv, ok := s.(*ir.Invoke); ok {
			invoke = inv
			recv = inv.Call.Base
		}
	}
	require.NotNil(t, invoke)
	require.NotNil(t, recv)
	assert.Equal(t, []*ir.Invoke{invoke}, recv.Invokes)
	assert.Equal(t, ir.CallVirtual, invoke.Call.Kind)
	assert.NotNil(t, invoke.LHS)

	for i, s := range p.Main.Stmts {
		assert.Equal(t, i, s.Index())
		assert.Equal(t, p.Main, s.Container())
	}
}

func TestParseBranchesAndOperands(t *testing.T) {
	p, err := Parse([]byte(`
main: { class: M, method: "main()" }
classes:
  - name: M
    methods:
      - name: main
        static: true
        vars:
          - { name: x, type: int }
          - { name: y, type: int }
        stmts:
          - { op: const, lhs: x, value: 3 }
          - { op: if, x: x, bop: "==", y: 3, target: L1 }
          - { op: binary, lhs: y, bop: "*", x: x, y: 2 }
          - { label: L1, op: switch, var: x, cases: [ { value: 3, target: L2 } ], default: L3 }
          - { label: L2, op: return, var: x }
          - { label: L3, op: return, var: y }
`))
	require.NoError(t, err)

	branch, ok := p.Main.Stmts[1].(*ir.If)
	require.True(t, ok)
	cond := branch.Cond.(*ir.BinaryExp)
	assert.Equal(t, ir.OpEq, cond.Op)
	_, isVar := cond.X.(*ir.Var)
	assert.True(t, isVar)
	lit, isLit := cond.Y.(*ir.IntLiteral)
	require.True(t, isLit, "integer operands decode as literals")
	assert.Equal(t, int32(3), lit.Value)
	assert.Equal(t, p.Main.Stmts[3], branch.Target)

	sw, ok := p.Main.Stmts[3].(*ir.Switch)
	require.True(t, ok)
	require.Len(t, sw.Cases, 1)
	assert.Equal(t, p.Main.Stmts[4], sw.Cases[0].Target)
	assert.Equal(t, p.Main.Stmts[5], sw.Default)

	// Both returns contribute return vars.
	assert.Len(t, p.Main.ReturnVars, 2)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad yaml", "classes: [unclosed"},
		{"unknown super", `
main: { class: M, method: "main()" }
classes:
  - { name: M, super: Nope, methods: [ { name: main, static: true } ] }
`},
		{"undeclared var", `
main: { class: M, method: "main()" }
classes:
  - name: M
    methods:
      - name: main
        static: true
        stmts:
          - { op: const, lhs: ghost, value: 1 }
`},
		{"unknown label", `
main: { class: M, method: "main()" }
classes:
  - name: M
    methods:
      - name: main
        static: true
        stmts:
          - { op: goto, target: Nowhere }
`},
		{"missing main", `
main: { class: M, method: "gone()" }
classes:
  - { name: M, methods: [ { name: main, static: true } ] }
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			assert.Error(t, err)
		})
	}
}
