package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Stmt is a statement in three-address form. The set is sealed; analyses
// match with a type switch. Index is the stable position of the statement
// within its method, assigned by IndexStmts; the synthetic CFG entry/exit
// nops carry negative indices.
type Stmt interface {
	Index() int
	Container() *Method
	isStmt()
}

type stmtBase struct {
	index  int
	method *Method
}

func (s *stmtBase) Index() int         { return s.index }
func (s *stmtBase) Container() *Method { return s.method }
func (s *stmtBase) isStmt()            {}

// Nop does nothing. The CFG uses nops as synthetic entry and exit nodes.
type Nop struct {
	stmtBase
}

// New allocates an object: lhs = new T. The statement itself is the
// allocation site the heap model names objects after.
type New struct {
	stmtBase
	LHS *Var
	Exp *NewExp
}

// Copy assigns one variable to another: lhs = rhs.
type Copy struct {
	stmtBase
	LHS *Var
	RHS *Var
}

// Assign is a general definition whose right-hand side is a literal,
// binary or cast expression: lhs = exp.
type Assign struct {
	stmtBase
	LHS *Var
	RHS Exp
}

// LoadField reads a field: lhs = o.f, or lhs = C.f when static.
type LoadField struct {
	stmtBase
	LHS    *Var
	Access *FieldAccess
}

// IsStatic reports whether the load reads a static field.
func (s *LoadField) IsStatic() bool { return s.Access.IsStatic() }

// StoreField writes a field: o.f = rhs, or C.f = rhs when static.
type StoreField struct {
	stmtBase
	Access *FieldAccess
	RHS    *Var
}

// IsStatic reports whether the store writes a static field.
func (s *StoreField) IsStatic() bool { return s.Access.IsStatic() }

// LoadArray reads an array slot: lhs = o[i].
type LoadArray struct {
	stmtBase
	LHS    *Var
	Access *ArrayAccess
}

// StoreArray writes an array slot: o[i] = rhs.
type StoreArray struct {
	stmtBase
	Access *ArrayAccess
	RHS    *Var
}

// Invoke calls a method: lhs = call(...), with a nil LHS when the result is
// discarded.
type Invoke struct {
	stmtBase
	LHS  *Var // nil when the call result is unused
	Call *InvokeExp
}

// IsStatic reports whether the call dispatches statically.
func (s *Invoke) IsStatic() bool { return s.Call.Kind == CallStatic }

// If branches to Target when Cond evaluates to a non-zero value and falls
// through otherwise.
type If struct {
	stmtBase
	Cond   Exp
	Target Stmt
}

// Goto jumps unconditionally.
type Goto struct {
	stmtBase
	Target Stmt
}

// SwitchCase pairs a case value with its target statement.
type SwitchCase struct {
	Value  int32
	Target Stmt
}

// Switch dispatches on an integer selector.
type Switch struct {
	stmtBase
	Var     *Var
	Cases   []SwitchCase
	Default Stmt
}

// Return leaves the method, optionally yielding Var.
type Return struct {
	stmtBase
	Var *Var // nil for void returns
}

// NewEntryNop and NewExitNop build the synthetic CFG boundary nodes.
func NewEntryNop(m *Method) *Nop { return &Nop{stmtBase{index: -1, method: m}} }
func NewExitNop(m *Method) *Nop  { return &Nop{stmtBase{index: -2, method: m}} }

// IndexStmts assigns statement indices, sets container back-references and
// rebuilds the per-variable access registries of m. It must run once after
// a method body is assembled and before any analysis touches it.
func IndexStmts(m *Method) {
	for _, v := range methodVars(m) {
		v.StoreFields = nil
		v.LoadFields = nil
		v.StoreArrays = nil
		v.LoadArrays = nil
		v.Invokes = nil
	}
	for i, s := range m.Stmts {
		setBase(s, i, m)
		switch s := s.(type) {
		case *StoreField:
			if b := s.Access.Base; b != nil {
				b.StoreFields = append(b.StoreFields, s)
			}
		case *LoadField:
			if b := s.Access.Base; b != nil {
				b.LoadFields = append(b.LoadFields, s)
			}
		case *StoreArray:
			b := s.Access.Base
			b.StoreArrays = append(b.StoreArrays, s)
		case *LoadArray:
			b := s.Access.Base
			b.LoadArrays = append(b.LoadArrays, s)
		case *Invoke:
			if b := s.Call.Base; b != nil {
				b.Invokes = append(b.Invokes, s)
			}
		}
	}
}

func setBase(s Stmt, index int, m *Method) {
	switch s := s.(type) {
	case *Nop:
		s.index, s.method = index, m
	case *New:
		s.index, s.method = index, m
	case *Copy:
		s.index, s.method = index, m
	case *Assign:
		s.index, s.method = index, m
	case *LoadField:
		s.index, s.method = index, m
	case *StoreField:
		s.index, s.method = index, m
	case *LoadArray:
		s.index, s.method = index, m
	case *StoreArray:
		s.index, s.method = index, m
	case *Invoke:
		s.index, s.method = index, m
	case *If:
		s.index, s.method = index, m
	case *Goto:
		s.index, s.method = index, m
	case *Switch:
		s.index, s.method = index, m
	case *Return:
		s.index, s.method = index, m
	default:
		panic(fmt.Sprintf("ir: unknown statement type %T", s))
	}
}

func methodVars(m *Method) []*Var {
	seen := make(map[*Var]bool)
	var vars []*Var
	add := func(v *Var) {
		if v != nil && !seen[v] {
			seen[v] = true
			vars = append(vars, v)
		}
	}
	add(m.This)
	for _, v := range m.Params {
		add(v)
	}
	for _, s := range m.Stmts {
		if lhs, _, ok := Def(s); ok {
			add(lhs)
		}
		for _, u := range Uses(s) {
			add(u)
		}
	}
	return vars
}

// Def returns the variable defined by s together with its defining
// expression. It covers every statement that writes a variable, including
// invocations with a result; stores define heap slots, not variables, and
// report false.
func Def(s Stmt) (*Var, Exp, bool) {
	switch s := s.(type) {
	case *New:
		return s.LHS, s.Exp, true
	case *Copy:
		return s.LHS, s.RHS, true
	case *Assign:
		return s.LHS, s.RHS, true
	case *LoadField:
		return s.LHS, s.Access, true
	case *LoadArray:
		return s.LHS, s.Access, true
	case *Invoke:
		if s.LHS != nil {
			return s.LHS, s.Call, true
		}
	}
	return nil, nil, false
}

// Uses returns the variables read by s, in a stable order.
func Uses(s Stmt) []*Var {
	var uses []*Var
	add := func(vs ...*Var) {
		for _, v := range vs {
			if v != nil {
				uses = append(uses, v)
			}
		}
	}
	switch s := s.(type) {
	case *Copy:
		add(s.RHS)
	case *Assign:
		add(expUses(s.RHS)...)
	case *LoadField:
		add(s.Access.Base)
	case *StoreField:
		add(s.Access.Base, s.RHS)
	case *LoadArray:
		add(s.Access.Base, s.Access.Index)
	case *StoreArray:
		add(s.Access.Base, s.Access.Index, s.RHS)
	case *Invoke:
		add(s.Call.Base)
		add(s.Call.Args...)
	case *If:
		add(expUses(s.Cond)...)
	case *Switch:
		add(s.Var)
	case *Return:
		add(s.Var)
	}
	return uses
}

func expUses(e Exp) []*Var {
	switch e := e.(type) {
	case *Var:
		return []*Var{e}
	case *BinaryExp:
		return append(expUses(e.X), expUses(e.Y)...)
	case *CastExp:
		return []*Var{e.Var}
	}
	return nil
}

// StmtString renders s for reports and logs.
func StmtString(s Stmt) string {
	switch s := s.(type) {
	case *Nop:
		return "nop"
	case *New:
		return s.LHS.Name + " = new " + s.Exp.Type.TypeName()
	case *Copy:
		return s.LHS.Name + " = " + s.RHS.Name
	case *Assign:
		return s.LHS.Name + " = " + ExpString(s.RHS)
	case *LoadField:
		return s.LHS.Name + " = " + ExpString(s.Access)
	case *StoreField:
		return ExpString(s.Access) + " = " + s.RHS.Name
	case *LoadArray:
		return s.LHS.Name + " = " + ExpString(s.Access)
	case *StoreArray:
		return ExpString(s.Access) + " = " + s.RHS.Name
	case *Invoke:
		call := ExpString(s.Call)
		if s.LHS != nil {
			return s.LHS.Name + " = " + call
		}
		return call
	case *If:
		return "if (" + ExpString(s.Cond) + ") goto " + strconv.Itoa(s.Target.Index())
	case *Goto:
		return "goto " + strconv.Itoa(s.Target.Index())
	case *Switch:
		return "switch " + s.Var.Name
	case *Return:
		if s.Var != nil {
			return "return " + s.Var.Name
		}
		return "return"
	default:
		return fmt.Sprintf("%T", s)
	}
}

// ExpString renders e for reports and logs.
func ExpString(e Exp) string {
	switch e := e.(type) {
	case *IntLiteral:
		return strconv.FormatInt(int64(e.Value), 10)
	case *Var:
		return e.Name
	case *BinaryExp:
		return ExpString(e.X) + " " + e.Op.String() + " " + ExpString(e.Y)
	case *FieldAccess:
		if e.IsStatic() {
			return e.Field.Class.Name + "." + e.Field.Name
		}
		return e.Base.Name + "." + e.Field.Name
	case *ArrayAccess:
		return e.Base.Name + "[" + e.Index.Name + "]"
	case *NewExp:
		return "new " + e.Type.TypeName()
	case *CastExp:
		return "(" + e.Type.TypeName() + ") " + e.Var.Name
	case *InvokeExp:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = a.Name
		}
		recv := e.Decl.Name
		if e.Base != nil {
			recv = e.Base.Name
		}
		return e.Kind.String() + " " + recv + "." + e.Subsig + "(" + strings.Join(args, ", ") + ")"
	default:
		return fmt.Sprintf("%T", e)
	}
}
