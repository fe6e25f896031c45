// Package ci implements context-insensitive, inclusion-based (Andersen)
// whole-program points-to analysis. The solver grows the call graph on
// demand while propagating points-to deltas over the pointer flow graph.
package ci

import (
	"github.com/dkellner/pinpoint/internal/ir"
	"github.com/dkellner/pinpoint/internal/pta"
)

// PointsToSet abbreviates the context-insensitive set type.
type PointsToSet = pta.PointsToSet[*pta.Obj]

// Pointer is a node of the pointer flow graph. Each pointer owns its
// points-to set.
type Pointer interface {
	PTS() *PointsToSet
	isPointer()
}

type pointerBase struct {
	pts *PointsToSet
}

func newPointerBase() pointerBase        { return pointerBase{pts: pta.NewPointsToSet[*pta.Obj]()} }
func (p *pointerBase) PTS() *PointsToSet { return p.pts }
func (p *pointerBase) isPointer()        {}

// VarPtr is the pointer of a local variable.
type VarPtr struct {
	pointerBase
	Var *ir.Var
}

// StaticFieldPtr is the pointer of a static field.
type StaticFieldPtr struct {
	pointerBase
	Field *ir.Field
}

// InstanceFieldPtr is the pointer of a field slot of one abstract object.
type InstanceFieldPtr struct {
	pointerBase
	Obj   *pta.Obj
	Field *ir.Field
}

// ArrayIndexPtr is the pointer of the merged element slot of one abstract
// array object.
type ArrayIndexPtr struct {
	pointerBase
	Obj *pta.Obj
}

type instanceFieldKey struct {
	obj   *pta.Obj
	field *ir.Field
}

// PFG is the pointer flow graph: canonical pointers plus subset edges. An
// edge a → b means the points-to set of b must include that of a.
type PFG struct {
	varPtrs        map[*ir.Var]*VarPtr
	staticFields   map[*ir.Field]*StaticFieldPtr
	instanceFields map[instanceFieldKey]*InstanceFieldPtr
	arrayIndexes   map[*pta.Obj]*ArrayIndexPtr

	succs   map[Pointer][]Pointer
	succSet map[Pointer]map[Pointer]bool

	vars []*ir.Var // var pointer creation order
}

// NewPFG returns an empty pointer flow graph.
func NewPFG() *PFG {
	return &PFG{
		varPtrs:        make(map[*ir.Var]*VarPtr),
		staticFields:   make(map[*ir.Field]*StaticFieldPtr),
		instanceFields: make(map[instanceFieldKey]*InstanceFieldPtr),
		arrayIndexes:   make(map[*pta.Obj]*ArrayIndexPtr),
		succs:          make(map[Pointer][]Pointer),
		succSet:        make(map[Pointer]map[Pointer]bool),
	}
}

// VarPtr returns the canonical pointer of v.
func (g *PFG) VarPtr(v *ir.Var) *VarPtr {
	if p, ok := g.varPtrs[v]; ok {
		return p
	}
	p := &VarPtr{pointerBase: newPointerBase(), Var: v}
	g.varPtrs[v] = p
	g.vars = append(g.vars, v)
	return p
}

// StaticField returns the canonical pointer of f.
func (g *PFG) StaticField(f *ir.Field) *StaticFieldPtr {
	if p, ok := g.staticFields[f]; ok {
		return p
	}
	p := &StaticFieldPtr{pointerBase: newPointerBase(), Field: f}
	g.staticFields[f] = p
	return p
}

// InstanceField returns the canonical pointer of the field f of obj.
func (g *PFG) InstanceField(obj *pta.Obj, f *ir.Field) *InstanceFieldPtr {
	key := instanceFieldKey{obj, f}
	if p, ok := g.instanceFields[key]; ok {
		return p
	}
	p := &InstanceFieldPtr{pointerBase: newPointerBase(), Obj: obj, Field: f}
	g.instanceFields[key] = p
	return p
}

// ArrayIndex returns the canonical pointer of the element slot of obj.
func (g *PFG) ArrayIndex(obj *pta.Obj) *ArrayIndexPtr {
	if p, ok := g.arrayIndexes[obj]; ok {
		return p
	}
	p := &ArrayIndexPtr{pointerBase: newPointerBase(), Obj: obj}
	g.arrayIndexes[obj] = p
	return p
}

// AddEdge inserts the subset edge source → target and reports whether it
// was new.
func (g *PFG) AddEdge(source, target Pointer) bool {
	set := g.succSet[source]
	if set == nil {
		set = make(map[Pointer]bool)
		g.succSet[source] = set
	}
	if set[target] {
		return false
	}
	set[target] = true
	g.succs[source] = append(g.succs[source], target)
	return true
}

// SuccsOf returns the subset successors of p in insertion order.
func (g *PFG) SuccsOf(p Pointer) []Pointer { return g.succs[p] }

// Vars returns every variable with a pointer, in creation order.
func (g *PFG) Vars() []*ir.Var { return g.vars }
