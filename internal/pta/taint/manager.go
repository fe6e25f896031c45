package taint

import (
	"github.com/dkellner/pinpoint/internal/ir"
	"github.com/dkellner/pinpoint/internal/pta"
)

type taintKey struct {
	source *ir.Invoke
	typ    string
}

// Manager creates and identifies taint objects. A taint object is a mock
// heap object canonical per (originating source call, type); it remembers
// the source call so flows can be traced back after transfers re-type it.
type Manager struct {
	heap    *pta.HeapModel
	objs    map[taintKey]*pta.Obj
	sources map[*pta.Obj]*ir.Invoke
}

// NewManager returns a manager allocating through heap.
func NewManager(heap *pta.HeapModel) *Manager {
	return &Manager{
		heap:    heap,
		objs:    make(map[taintKey]*pta.Obj),
		sources: make(map[*pta.Obj]*ir.Invoke),
	}
}

// MakeTaint returns the canonical taint object for a source call and type.
func (m *Manager) MakeTaint(source *ir.Invoke, t ir.Type) *pta.Obj {
	key := taintKey{source, t.TypeName()}
	if o, ok := m.objs[key]; ok {
		return o
	}
	o := m.heap.MockObj(source, t)
	m.objs[key] = o
	m.sources[o] = source
	return o
}

// IsTaint reports whether o is a taint object.
func (m *Manager) IsTaint(o *pta.Obj) bool {
	_, ok := m.sources[o]
	return ok
}

// SourceCall returns the source call a taint object originates from.
func (m *Manager) SourceCall(o *pta.Obj) *ir.Invoke {
	return m.sources[o]
}
