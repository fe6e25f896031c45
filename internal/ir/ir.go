// Package ir defines the typed object-oriented intermediate representation
// the analyses run on: types, variables, fields, methods, classes and the
// class hierarchy, plus the statement and expression forms in stmt.go and
// exp.go. Programs arrive prebuilt (hand-assembled in tests or deserialized
// by irload); this package never parses source.
package ir

import (
	"fmt"
	"strings"
)

// Type is the type of a variable, field or expression.
type Type interface {
	TypeName() string
}

// PrimType is a primitive type.
type PrimType int

const (
	Byte PrimType = iota
	Short
	Int
	Char
	Boolean
	Long
	Void
)

func (t PrimType) TypeName() string {
	switch t {
	case Byte:
		return "byte"
	case Short:
		return "short"
	case Int:
		return "int"
	case Char:
		return "char"
	case Boolean:
		return "boolean"
	case Long:
		return "long"
	case Void:
		return "void"
	default:
		return "unknown"
	}
}

// ClassType is a reference type backed by a class or interface.
type ClassType struct {
	Class *Class
}

func (t *ClassType) TypeName() string { return t.Class.Name }

// ArrayType is an array of Elem.
type ArrayType struct {
	Elem Type
}

func (t *ArrayType) TypeName() string { return t.Elem.TypeName() + "[]" }

// CanHoldInt reports whether v holds an integer-compatible primitive value.
// Only such variables participate in constant propagation.
func CanHoldInt(v *Var) bool {
	p, ok := v.Type.(PrimType)
	if !ok {
		return false
	}
	switch p {
	case Byte, Short, Int, Char, Boolean:
		return true
	}
	return false
}

// Var is a local variable, parameter, this-reference or return variable of
// a single method. Identity is the pointer. The slices below are registries
// of the statements that access the heap or invoke methods through this
// variable; the points-to solvers consult them when new receiver objects
// are discovered. IndexStmts populates them.
type Var struct {
	Name   string
	Type   Type
	Method *Method

	StoreFields []*StoreField // stores o.f = x with this var as o
	LoadFields  []*LoadField  // loads x = o.f with this var as o
	StoreArrays []*StoreArray // stores o[i] = x with this var as o
	LoadArrays  []*LoadArray  // loads x = o[i] with this var as o
	Invokes     []*Invoke     // invocations with this var as receiver
}

func (v *Var) String() string {
	if v.Method != nil {
		return v.Method.String() + "/" + v.Name
	}
	return v.Name
}

// Field is a (possibly static) field declared by a class.
type Field struct {
	Class    *Class
	Name     string
	Type     Type
	IsStatic bool
}

func (f *Field) String() string {
	return "<" + f.Class.Name + ": " + f.Type.TypeName() + " " + f.Name + ">"
}

// Method is a method of a class. Subsig is the subsignature, the dispatch
// key within the hierarchy: "name(paramType,...)".
type Method struct {
	Class      *Class
	Name       string
	Subsig     string
	IsStatic   bool
	IsAbstract bool
	ReturnType Type

	Params     []*Var
	This       *Var // nil for static methods
	ReturnVars []*Var
	Stmts      []Stmt
}

func (m *Method) String() string {
	return "<" + m.Class.Name + ": " + m.Subsig + ">"
}

// Subsignature builds the dispatch key for a method name and parameter types.
func Subsignature(name string, params []Type) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.TypeName()
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

// Class is a class or interface. Direct hierarchy links are kept on the
// class; the Hierarchy indexes them for sub-hierarchy traversal.
type Class struct {
	Name        string
	Super       *Class
	Interfaces  []*Class
	IsInterface bool
	IsAbstract  bool

	Methods     map[string]*Method // subsignature → declared method
	methodOrder []string
	Fields      map[string]*Field
}

// DeclaredMethod returns the method declared by c with the given
// subsignature, or nil.
func (c *Class) DeclaredMethod(subsig string) *Method {
	return c.Methods[subsig]
}

// DeclaredField returns the field declared by c with the given name, or nil.
func (c *Class) DeclaredField(name string) *Field {
	return c.Fields[name]
}

// AddMethod declares m on c.
func (c *Class) AddMethod(m *Method) {
	if c.Methods == nil {
		c.Methods = make(map[string]*Method)
	}
	m.Class = c
	if _, dup := c.Methods[m.Subsig]; !dup {
		c.methodOrder = append(c.methodOrder, m.Subsig)
	}
	c.Methods[m.Subsig] = m
}

// AddField declares f on c.
func (c *Class) AddField(f *Field) {
	if c.Fields == nil {
		c.Fields = make(map[string]*Field)
	}
	f.Class = c
	c.Fields[f.Name] = f
}

// DeclaredMethods returns c's methods in declaration order.
func (c *Class) DeclaredMethods() []*Method {
	ms := make([]*Method, 0, len(c.methodOrder))
	for _, sig := range c.methodOrder {
		ms = append(ms, c.Methods[sig])
	}
	return ms
}

// Program is a whole program: its hierarchy, all methods in a stable order,
// and the entry method.
type Program struct {
	Hierarchy *Hierarchy
	Methods   []*Method
	Main      *Method
}

// MethodAt looks up a method by class name and subsignature.
func (p *Program) MethodAt(class, subsig string) (*Method, error) {
	c := p.Hierarchy.Class(class)
	if c == nil {
		return nil, fmt.Errorf("unknown class %q", class)
	}
	m := c.DeclaredMethod(subsig)
	if m == nil {
		return nil, fmt.Errorf("class %s declares no method %q", class, subsig)
	}
	return m, nil
}
