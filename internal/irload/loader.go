// Package irload deserializes prebuilt IR programs from YAML so the CLI
// and tests can feed the engine whole programs without a source frontend.
package irload

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dkellner/pinpoint/internal/ir"
)

// rawProgram mirrors the YAML structure before names are resolved.
type rawProgram struct {
	Main    rawMethodRef `yaml:"main"`
	Classes []rawClass   `yaml:"classes"`
}

type rawMethodRef struct {
	Class  string `yaml:"class"`
	Method string `yaml:"method"`
}

type rawClass struct {
	Name       string      `yaml:"name"`
	Super      string      `yaml:"super"`
	Implements []string    `yaml:"implements"`
	Interface  bool        `yaml:"interface"`
	Abstract   bool        `yaml:"abstract"`
	Fields     []rawField  `yaml:"fields"`
	Methods    []rawMethod `yaml:"methods"`
}

type rawField struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Static bool   `yaml:"static"`
}

type rawMethod struct {
	Name     string    `yaml:"name"`
	Static   bool      `yaml:"static"`
	Abstract bool      `yaml:"abstract"`
	Params   []rawVar  `yaml:"params"`
	Return   string    `yaml:"return"`
	Vars     []rawVar  `yaml:"vars"`
	Stmts    []rawStmt `yaml:"stmts"`
}

type rawVar struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type rawStmt struct {
	Label string `yaml:"label"`
	Op    string `yaml:"op"`

	LHS   string    `yaml:"lhs"`
	RHS   string    `yaml:"rhs"`
	Value *int32    `yaml:"value"`
	X     yaml.Node `yaml:"x"`
	Y     yaml.Node `yaml:"y"`
	Bop   string    `yaml:"bop"`
	Type  string    `yaml:"type"`

	Base  string `yaml:"base"`
	Field string `yaml:"field"`
	Index string `yaml:"index"`

	Kind   string   `yaml:"kind"`
	Class  string   `yaml:"class"`
	Method string   `yaml:"method"`
	Args   []string `yaml:"args"`

	Var     string `yaml:"var"`
	Target  string `yaml:"target"`
	Default string `yaml:"default"`
	Cases   []struct {
		Value  int32  `yaml:"value"`
		Target string `yaml:"target"`
	} `yaml:"cases"`
}

// Load reads and resolves a program file.
func Load(path string) (*ir.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}
	return Parse(data)
}

// Parse resolves a program from YAML bytes.
func Parse(data []byte) (*ir.Program, error) {
	var raw rawProgram
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse program: %w", err)
	}

	h := ir.NewHierarchy()
	classes := make(map[string]*ir.Class, len(raw.Classes))
	for _, rc := range raw.Classes {
		if _, dup := classes[rc.Name]; dup {
			return nil, fmt.Errorf("duplicate class %q", rc.Name)
		}
		classes[rc.Name] = &ir.Class{
			Name:        rc.Name,
			IsInterface: rc.Interface,
			IsAbstract:  rc.Abstract,
		}
	}
	for _, rc := range raw.Classes {
		c := classes[rc.Name]
		if rc.Super != "" {
			super, ok := classes[rc.Super]
			if !ok {
				return nil, fmt.Errorf("class %s: unknown superclass %q", rc.Name, rc.Super)
			}
			c.Super = super
		}
		for _, name := range rc.Implements {
			iface, ok := classes[name]
			if !ok {
				return nil, fmt.Errorf("class %s: unknown interface %q", rc.Name, name)
			}
			c.Interfaces = append(c.Interfaces, iface)
		}
		h.AddClass(c)
	}

	for _, rc := range raw.Classes {
		c := classes[rc.Name]
		for _, rf := range rc.Fields {
			t, ok := h.TypeNamed(rf.Type)
			if !ok {
				return nil, fmt.Errorf("field %s.%s: unknown type %q", rc.Name, rf.Name, rf.Type)
			}
			c.AddField(&ir.Field{Name: rf.Name, Type: t, IsStatic: rf.Static})
		}
	}

	p := &ir.Program{Hierarchy: h}
	// Declare every method before building bodies so bodies may reference
	// any signature.
	type pending struct {
		method *ir.Method
		raw    rawMethod
	}
	var bodies []pending
	for _, rc := range raw.Classes {
		c := classes[rc.Name]
		for _, rm := range rc.Methods {
			m, err := declareMethod(h, c, rm)
			if err != nil {
				return nil, err
			}
			c.AddMethod(m)
			p.Methods = append(p.Methods, m)
			bodies = append(bodies, pending{m, rm})
		}
	}
	for _, b := range bodies {
		if err := buildBody(h, b.method, b.raw); err != nil {
			return nil, err
		}
	}

	main, err := p.MethodAt(raw.Main.Class, raw.Main.Method)
	if err != nil {
		return nil, fmt.Errorf("resolve main: %w", err)
	}
	p.Main = main
	return p, nil
}

func declareMethod(h *ir.Hierarchy, c *ir.Class, rm rawMethod) (*ir.Method, error) {
	m := &ir.Method{
		Name:       rm.Name,
		IsStatic:   rm.Static,
		IsAbstract: rm.Abstract,
	}
	ret := rm.Return
	if ret == "" {
		ret = "void"
	}
	retType, ok := h.TypeNamed(ret)
	if !ok {
		return nil, fmt.Errorf("method %s.%s: unknown return type %q", c.Name, rm.Name, ret)
	}
	m.ReturnType = retType

	paramTypes := make([]ir.Type, len(rm.Params))
	for i, rp := range rm.Params {
		t, ok := h.TypeNamed(rp.Type)
		if !ok {
			return nil, fmt.Errorf("method %s.%s: unknown param type %q", c.Name, rm.Name, rp.Type)
		}
		paramTypes[i] = t
		m.Params = append(m.Params, &ir.Var{Name: rp.Name, Type: t, Method: m})
	}
	m.Subsig = ir.Subsignature(rm.Name, paramTypes)
	if !rm.Static {
		m.This = &ir.Var{Name: "this", Type: &ir.ClassType{Class: c}, Method: m}
	}
	return m, nil
}

// bodyBuilder resolves one method body: its variable scope and the
// label-to-statement links.
type bodyBuilder struct {
	h      *ir.Hierarchy
	method *ir.Method
	vars   map[string]*ir.Var
	labels map[string]ir.Stmt
}

func buildBody(h *ir.Hierarchy, m *ir.Method, rm rawMethod) error {
	if rm.Abstract {
		return nil
	}
	b := &bodyBuilder{h: h, method: m, vars: make(map[string]*ir.Var), labels: make(map[string]ir.Stmt)}
	for _, p := range m.Params {
		b.vars[p.Name] = p
	}
	if m.This != nil {
		b.vars[m.This.Name] = m.This
	}
	for _, rv := range rm.Vars {
		t, ok := h.TypeNamed(rv.Type)
		if !ok {
			return fmt.Errorf("%s: unknown type %q for var %s", m, rv.Type, rv.Name)
		}
		if _, dup := b.vars[rv.Name]; dup {
			return fmt.Errorf("%s: duplicate var %s", m, rv.Name)
		}
		b.vars[rv.Name] = &ir.Var{Name: rv.Name, Type: t, Method: m}
	}

	// First pass creates statements; the second resolves branch targets.
	for i, rs := range rm.Stmts {
		s, err := b.buildStmt(rs)
		if err != nil {
			return fmt.Errorf("%s stmt %d: %w", m, i, err)
		}
		m.Stmts = append(m.Stmts, s)
		if rs.Label != "" {
			if _, dup := b.labels[rs.Label]; dup {
				return fmt.Errorf("%s: duplicate label %q", m, rs.Label)
			}
			b.labels[rs.Label] = s
		}
	}
	for i, rs := range rm.Stmts {
		if err := b.resolveTargets(m.Stmts[i], rs); err != nil {
			return fmt.Errorf("%s stmt %d: %w", m, i, err)
		}
	}

	seenRet := make(map[*ir.Var]bool)
	for _, s := range m.Stmts {
		if ret, ok := s.(*ir.Return); ok && ret.Var != nil && !seenRet[ret.Var] {
			seenRet[ret.Var] = true
			m.ReturnVars = append(m.ReturnVars, ret.Var)
		}
	}
	ir.IndexStmts(m)
	return nil
}

func (b *bodyBuilder) lookupVar(name string) (*ir.Var, error) {
	v, ok := b.vars[name]
	if !ok {
		return nil, fmt.Errorf("undeclared var %q", name)
	}
	return v, nil
}

// operand decodes a binary operand: an integer literal or a variable name.
func (b *bodyBuilder) operand(n yaml.Node) (ir.Exp, error) {
	if n.IsZero() {
		return nil, fmt.Errorf("missing operand")
	}
	if n.Tag == "!!int" {
		var v int32
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return &ir.IntLiteral{Value: v}, nil
	}
	var name string
	if err := n.Decode(&name); err != nil {
		return nil, err
	}
	return b.lookupVar(name)
}

func (b *bodyBuilder) fieldRef(ref string) (*ir.Field, error) {
	class, name, ok := strings.Cut(ref, ".")
	if !ok {
		return nil, fmt.Errorf("bad field reference %q (want Class.field)", ref)
	}
	c := b.h.Class(class)
	if c == nil {
		return nil, fmt.Errorf("unknown class %q in field reference", class)
	}
	f := c.DeclaredField(name)
	if f == nil {
		return nil, fmt.Errorf("class %s declares no field %q", class, name)
	}
	return f, nil
}

func (b *bodyBuilder) buildStmt(rs rawStmt) (ir.Stmt, error) {
	switch rs.Op {
	case "nop":
		return &ir.Nop{}, nil
	case "const":
		lhs, err := b.lookupVar(rs.LHS)
		if err != nil {
			return nil, err
		}
		if rs.Value == nil {
			return nil, fmt.Errorf("const needs a value")
		}
		return &ir.Assign{LHS: lhs, RHS: &ir.IntLiteral{Value: *rs.Value}}, nil
	case "copy":
		lhs, err := b.lookupVar(rs.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := b.lookupVar(rs.RHS)
		if err != nil {
			return nil, err
		}
		return &ir.Copy{LHS: lhs, RHS: rhs}, nil
	case "binary":
		lhs, err := b.lookupVar(rs.LHS)
		if err != nil {
			return nil, err
		}
		exp, err := b.binaryExp(rs)
		if err != nil {
			return nil, err
		}
		return &ir.Assign{LHS: lhs, RHS: exp}, nil
	case "cast":
		lhs, err := b.lookupVar(rs.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := b.lookupVar(rs.RHS)
		if err != nil {
			return nil, err
		}
		t, ok := b.h.TypeNamed(rs.Type)
		if !ok {
			return nil, fmt.Errorf("unknown cast type %q", rs.Type)
		}
		return &ir.Assign{LHS: lhs, RHS: &ir.CastExp{Var: rhs, Type: t}}, nil
	case "new":
		lhs, err := b.lookupVar(rs.LHS)
		if err != nil {
			return nil, err
		}
		t, ok := b.h.TypeNamed(rs.Type)
		if !ok {
			return nil, fmt.Errorf("unknown type %q", rs.Type)
		}
		return &ir.New{LHS: lhs, Exp: &ir.NewExp{Type: t}}, nil
	case "loadfield":
		lhs, err := b.lookupVar(rs.LHS)
		if err != nil {
			return nil, err
		}
		access, err := b.fieldAccess(rs)
		if err != nil {
			return nil, err
		}
		return &ir.LoadField{LHS: lhs, Access: access}, nil
	case "storefield":
		rhs, err := b.lookupVar(rs.RHS)
		if err != nil {
			return nil, err
		}
		access, err := b.fieldAccess(rs)
		if err != nil {
			return nil, err
		}
		return &ir.StoreField{Access: access, RHS: rhs}, nil
	case "loadarray":
		lhs, err := b.lookupVar(rs.LHS)
		if err != nil {
			return nil, err
		}
		access, err := b.arrayAccess(rs)
		if err != nil {
			return nil, err
		}
		return &ir.LoadArray{LHS: lhs, Access: access}, nil
	case "storearray":
		rhs, err := b.lookupVar(rs.RHS)
		if err != nil {
			return nil, err
		}
		access, err := b.arrayAccess(rs)
		if err != nil {
			return nil, err
		}
		return &ir.StoreArray{Access: access, RHS: rhs}, nil
	case "invoke":
		return b.invokeStmt(rs)
	case "if":
		exp, err := b.binaryExp(rs)
		if err != nil {
			return nil, err
		}
		return &ir.If{Cond: exp}, nil
	case "goto":
		return &ir.Goto{}, nil
	case "switch":
		v, err := b.lookupVar(rs.Var)
		if err != nil {
			return nil, err
		}
		return &ir.Switch{Var: v}, nil
	case "return":
		if rs.Var == "" {
			return &ir.Return{}, nil
		}
		v, err := b.lookupVar(rs.Var)
		if err != nil {
			return nil, err
		}
		return &ir.Return{Var: v}, nil
	default:
		return nil, fmt.Errorf("unknown op %q", rs.Op)
	}
}

func (b *bodyBuilder) binaryExp(rs rawStmt) (*ir.BinaryExp, error) {
	op, ok := ir.BinaryOpFromString(rs.Bop)
	if !ok {
		return nil, fmt.Errorf("unknown operator %q", rs.Bop)
	}
	x, err := b.operand(rs.X)
	if err != nil {
		return nil, err
	}
	y, err := b.operand(rs.Y)
	if err != nil {
		return nil, err
	}
	return &ir.BinaryExp{Op: op, X: x, Y: y}, nil
}

func (b *bodyBuilder) fieldAccess(rs rawStmt) (*ir.FieldAccess, error) {
	f, err := b.fieldRef(rs.Field)
	if err != nil {
		return nil, err
	}
	if rs.Base == "" {
		if !f.IsStatic {
			return nil, fmt.Errorf("instance field %s accessed without a base", f)
		}
		return &ir.FieldAccess{Field: f}, nil
	}
	base, err := b.lookupVar(rs.Base)
	if err != nil {
		return nil, err
	}
	return &ir.FieldAccess{Base: base, Field: f}, nil
}

func (b *bodyBuilder) arrayAccess(rs rawStmt) (*ir.ArrayAccess, error) {
	base, err := b.lookupVar(rs.Base)
	if err != nil {
		return nil, err
	}
	index, err := b.lookupVar(rs.Index)
	if err != nil {
		return nil, err
	}
	return &ir.ArrayAccess{Base: base, Index: index}, nil
}

func (b *bodyBuilder) invokeStmt(rs rawStmt) (ir.Stmt, error) {
	var kind ir.CallKind
	switch rs.Kind {
	case "static":
		kind = ir.CallStatic
	case "special":
		kind = ir.CallSpecial
	case "virtual":
		kind = ir.CallVirtual
	case "interface":
		kind = ir.CallInterface
	default:
		return nil, fmt.Errorf("unknown invoke kind %q", rs.Kind)
	}
	decl := b.h.Class(rs.Class)
	if decl == nil {
		return nil, fmt.Errorf("unknown class %q", rs.Class)
	}
	call := &ir.InvokeExp{Kind: kind, Decl: decl, Subsig: rs.Method}
	if kind != ir.CallStatic {
		if rs.Base == "" {
			return nil, fmt.Errorf("%s invoke needs a base", rs.Kind)
		}
		base, err := b.lookupVar(rs.Base)
		if err != nil {
			return nil, err
		}
		call.Base = base
	}
	for _, arg := range rs.Args {
		v, err := b.lookupVar(arg)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, v)
	}
	s := &ir.Invoke{Call: call}
	if rs.LHS != "" {
		lhs, err := b.lookupVar(rs.LHS)
		if err != nil {
			return nil, err
		}
		s.LHS = lhs
	}
	return s, nil
}

func (b *bodyBuilder) resolveTargets(s ir.Stmt, rs rawStmt) error {
	target := func(label string) (ir.Stmt, error) {
		t, ok := b.labels[label]
		if !ok {
			return nil, fmt.Errorf("unknown label %q", label)
		}
		return t, nil
	}
	switch s := s.(type) {
	case *ir.If:
		t, err := target(rs.Target)
		if err != nil {
			return err
		}
		s.Target = t
	case *ir.Goto:
		t, err := target(rs.Target)
		if err != nil {
			return err
		}
		s.Target = t
	case *ir.Switch:
		for _, rc := range rs.Cases {
			t, err := target(rc.Target)
			if err != nil {
				return err
			}
			s.Cases = append(s.Cases, ir.SwitchCase{Value: rc.Value, Target: t})
		}
		t, err := target(rs.Default)
		if err != nil {
			return err
		}
		s.Default = t
	}
	return nil
}
