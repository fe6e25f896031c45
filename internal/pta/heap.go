// Package pta holds the building blocks shared by both points-to solvers:
// the allocation-site heap model and the points-to set container.
package pta

import (
	"strconv"

	"github.com/dkellner/pinpoint/internal/ir"
)

// Obj is an abstract heap object. Alloc is the statement that names it: a
// *ir.New for ordinary allocations, or the originating *ir.Invoke for mock
// objects such as taint objects. Identity is the pointer; IDs are assigned
// in creation order so reports stay stable.
type Obj struct {
	ID    int
	Type  ir.Type
	Alloc ir.Stmt
}

func (o *Obj) String() string {
	return "o" + strconv.Itoa(o.ID) + ":" + o.Type.TypeName()
}

// HeapModel names abstract objects after allocation sites: one canonical
// Obj per New statement. Mock objects bypass the site map but share the ID
// space.
type HeapModel struct {
	objs   map[*ir.New]*Obj
	all    []*Obj
	nextID int
}

// NewHeapModel returns an empty heap model.
func NewHeapModel() *HeapModel {
	return &HeapModel{objs: make(map[*ir.New]*Obj)}
}

// Obj returns the canonical abstract object for an allocation site.
func (h *HeapModel) Obj(site *ir.New) *Obj {
	if o, ok := h.objs[site]; ok {
		return o
	}
	o := h.newObj(site.Exp.Type, site)
	h.objs[site] = o
	return o
}

// MockObj creates a fresh abstract object that is not named by a New
// statement; the taint manager uses this for taint objects. Callers are
// responsible for canonicalizing per (alloc, type).
func (h *HeapModel) MockObj(alloc ir.Stmt, t ir.Type) *Obj {
	return h.newObj(t, alloc)
}

func (h *HeapModel) newObj(t ir.Type, alloc ir.Stmt) *Obj {
	o := &Obj{ID: h.nextID, Type: t, Alloc: alloc}
	h.nextID++
	h.all = append(h.all, o)
	return o
}

// Objs returns every object created so far, in creation order.
func (h *HeapModel) Objs() []*Obj { return h.all }
