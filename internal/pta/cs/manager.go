package cs

import (
	"github.com/dkellner/pinpoint/internal/ir"
	"github.com/dkellner/pinpoint/internal/pta"
)

// PointsToSet abbreviates the context-sensitive set type.
type PointsToSet = pta.PointsToSet[*CSObj]

// Pointer is a node of the context-sensitive pointer flow graph.
type Pointer interface {
	PTS() *PointsToSet
	isPointer()
}

type pointerBase struct {
	pts *PointsToSet
}

func newPointerBase() pointerBase        { return pointerBase{pts: pta.NewPointsToSet[*CSObj]()} }
func (p *pointerBase) PTS() *PointsToSet { return p.pts }
func (p *pointerBase) isPointer()        {}

// CSVar is a variable qualified by a context.
type CSVar struct {
	pointerBase
	ctx *Context
	v   *ir.Var
}

func (p *CSVar) Context() *Context { return p.ctx }
func (p *CSVar) Var() *ir.Var      { return p.v }
func (p *CSVar) String() string    { return p.ctx.String() + ":" + p.v.String() }

// StaticFieldPtr is the pointer of a static field; static fields carry no
// context.
type StaticFieldPtr struct {
	pointerBase
	f *ir.Field
}

func (p *StaticFieldPtr) Field() *ir.Field { return p.f }

// InstanceFieldPtr is the field slot of one context-qualified object.
type InstanceFieldPtr struct {
	pointerBase
	obj *CSObj
	f   *ir.Field
}

func (p *InstanceFieldPtr) Obj() *CSObj      { return p.obj }
func (p *InstanceFieldPtr) Field() *ir.Field { return p.f }

// ArrayIndexPtr is the merged element slot of one context-qualified array
// object.
type ArrayIndexPtr struct {
	pointerBase
	obj *CSObj
}

func (p *ArrayIndexPtr) Obj() *CSObj { return p.obj }

// CSObj is an abstract object qualified by a heap context.
type CSObj struct {
	ctx *Context
	obj *pta.Obj
}

func (o *CSObj) Context() *Context { return o.ctx }
func (o *CSObj) Obj() *pta.Obj     { return o.obj }
func (o *CSObj) String() string    { return o.ctx.String() + ":" + o.obj.String() }

// CSMethod is a method qualified by a context.
type CSMethod struct {
	ctx *Context
	m   *ir.Method
}

func (m *CSMethod) Context() *Context  { return m.ctx }
func (m *CSMethod) Method() *ir.Method { return m.m }
func (m *CSMethod) String() string     { return m.ctx.String() + ":" + m.m.String() }

// CSCallSite is a call site qualified by the caller's context.
type CSCallSite struct {
	ctx  *Context
	site *ir.Invoke
}

func (c *CSCallSite) Context() *Context { return c.ctx }
func (c *CSCallSite) Site() *ir.Invoke  { return c.site }

type varKey struct {
	ctx string
	v   *ir.Var
}

type objKey struct {
	ctx string
	o   *pta.Obj
}

type methodKey struct {
	ctx string
	m   *ir.Method
}

type siteKey struct {
	ctx  string
	site *ir.Invoke
}

type instanceFieldKey struct {
	obj *CSObj
	f   *ir.Field
}

// Manager interns every context-qualified entity so that equal
// (context, entity) pairs are represented by one identity across the whole
// analysis.
type Manager struct {
	vars           map[varKey]*CSVar
	objs           map[objKey]*CSObj
	methods        map[methodKey]*CSMethod
	sites          map[siteKey]*CSCallSite
	staticFields   map[*ir.Field]*StaticFieldPtr
	instanceFields map[instanceFieldKey]*InstanceFieldPtr
	arrayIndexes   map[*CSObj]*ArrayIndexPtr

	varOrder []*CSVar
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{
		vars:           make(map[varKey]*CSVar),
		objs:           make(map[objKey]*CSObj),
		methods:        make(map[methodKey]*CSMethod),
		sites:          make(map[siteKey]*CSCallSite),
		staticFields:   make(map[*ir.Field]*StaticFieldPtr),
		instanceFields: make(map[instanceFieldKey]*InstanceFieldPtr),
		arrayIndexes:   make(map[*CSObj]*ArrayIndexPtr),
	}
}

// CSVar returns the canonical context-qualified variable.
func (m *Manager) CSVar(ctx *Context, v *ir.Var) *CSVar {
	key := varKey{ctx.Key(), v}
	if p, ok := m.vars[key]; ok {
		return p
	}
	p := &CSVar{pointerBase: newPointerBase(), ctx: ctx, v: v}
	m.vars[key] = p
	m.varOrder = append(m.varOrder, p)
	return p
}

// CSObj returns the canonical context-qualified object.
func (m *Manager) CSObj(ctx *Context, o *pta.Obj) *CSObj {
	key := objKey{ctx.Key(), o}
	if c, ok := m.objs[key]; ok {
		return c
	}
	c := &CSObj{ctx: ctx, obj: o}
	m.objs[key] = c
	return c
}

// CSMethod returns the canonical context-qualified method.
func (m *Manager) CSMethod(ctx *Context, method *ir.Method) *CSMethod {
	key := methodKey{ctx.Key(), method}
	if c, ok := m.methods[key]; ok {
		return c
	}
	c := &CSMethod{ctx: ctx, m: method}
	m.methods[key] = c
	return c
}

// CSCallSite returns the canonical context-qualified call site.
func (m *Manager) CSCallSite(ctx *Context, site *ir.Invoke) *CSCallSite {
	key := siteKey{ctx.Key(), site}
	if c, ok := m.sites[key]; ok {
		return c
	}
	c := &CSCallSite{ctx: ctx, site: site}
	m.sites[key] = c
	return c
}

// StaticField returns the canonical static-field pointer.
func (m *Manager) StaticField(f *ir.Field) *StaticFieldPtr {
	if p, ok := m.staticFields[f]; ok {
		return p
	}
	p := &StaticFieldPtr{pointerBase: newPointerBase(), f: f}
	m.staticFields[f] = p
	return p
}

// InstanceField returns the canonical instance-field pointer.
func (m *Manager) InstanceField(obj *CSObj, f *ir.Field) *InstanceFieldPtr {
	key := instanceFieldKey{obj, f}
	if p, ok := m.instanceFields[key]; ok {
		return p
	}
	p := &InstanceFieldPtr{pointerBase: newPointerBase(), obj: obj, f: f}
	m.instanceFields[key] = p
	return p
}

// ArrayIndex returns the canonical array-element pointer.
func (m *Manager) ArrayIndex(obj *CSObj) *ArrayIndexPtr {
	if p, ok := m.arrayIndexes[obj]; ok {
		return p
	}
	p := &ArrayIndexPtr{pointerBase: newPointerBase(), obj: obj}
	m.arrayIndexes[obj] = p
	return p
}

// CSVars returns every context-qualified variable in creation order.
func (m *Manager) CSVars() []*CSVar { return m.varOrder }
