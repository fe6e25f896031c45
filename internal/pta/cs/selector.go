package cs

import (
	"github.com/dkellner/pinpoint/internal/ir"
	"github.com/dkellner/pinpoint/internal/pta"
)

// Selector chooses the contexts that qualify methods and objects.
// SelectStaticContext picks the callee context of a static call;
// SelectInstanceContext picks it for an instance call given the receiver
// object; SelectHeapContext picks the heap context of an allocation.
type Selector interface {
	EmptyContext() *Context
	SelectStaticContext(site *CSCallSite, callee *ir.Method) *Context
	SelectInstanceContext(site *CSCallSite, recv *CSObj, callee *ir.Method) *Context
	SelectHeapContext(m *CSMethod, obj *pta.Obj) *Context
}

// CISelector makes the analysis context-insensitive: every context is the
// empty context.
type CISelector struct{}

func (CISelector) EmptyContext() *Context { return EmptyContext() }

func (CISelector) SelectStaticContext(*CSCallSite, *ir.Method) *Context { return EmptyContext() }

func (CISelector) SelectInstanceContext(*CSCallSite, *CSObj, *ir.Method) *Context {
	return EmptyContext()
}

func (CISelector) SelectHeapContext(*CSMethod, *pta.Obj) *Context { return EmptyContext() }

// KCallSelector implements k-limited call-site sensitivity: callee contexts
// are the last K call sites of the call string, heap contexts the last K-1.
type KCallSelector struct {
	K int
}

func (s KCallSelector) EmptyContext() *Context { return EmptyContext() }

func (s KCallSelector) SelectStaticContext(site *CSCallSite, _ *ir.Method) *Context {
	return site.Context().Append(CallSiteElem{site.Site()}, s.K)
}

func (s KCallSelector) SelectInstanceContext(site *CSCallSite, _ *CSObj, _ *ir.Method) *Context {
	return site.Context().Append(CallSiteElem{site.Site()}, s.K)
}

func (s KCallSelector) SelectHeapContext(m *CSMethod, _ *pta.Obj) *Context {
	return m.Context().Truncate(s.K - 1)
}

// KObjSelector implements k-limited object sensitivity: callee contexts of
// instance calls are the receiver's allocation chain, static calls keep the
// caller's context.
type KObjSelector struct {
	K int
}

func (s KObjSelector) EmptyContext() *Context { return EmptyContext() }

func (s KObjSelector) SelectStaticContext(site *CSCallSite, _ *ir.Method) *Context {
	return site.Context()
}

func (s KObjSelector) SelectInstanceContext(_ *CSCallSite, recv *CSObj, _ *ir.Method) *Context {
	return recv.Context().Append(ObjElem{recv.Obj()}, s.K)
}

func (s KObjSelector) SelectHeapContext(m *CSMethod, _ *pta.Obj) *Context {
	return m.Context().Truncate(s.K - 1)
}

// KTypeSelector implements k-limited type sensitivity: like object
// sensitivity but abstracting each allocation by the class containing its
// allocation site.
type KTypeSelector struct {
	K int
}

func (s KTypeSelector) EmptyContext() *Context { return EmptyContext() }

func (s KTypeSelector) SelectStaticContext(site *CSCallSite, _ *ir.Method) *Context {
	return site.Context()
}

func (s KTypeSelector) SelectInstanceContext(_ *CSCallSite, recv *CSObj, _ *ir.Method) *Context {
	return recv.Context().Append(TypeElem{allocType(recv.Obj())}, s.K)
}

func (s KTypeSelector) SelectHeapContext(m *CSMethod, _ *pta.Obj) *Context {
	return m.Context().Truncate(s.K - 1)
}

// allocType is the type element naming an allocation: the class declaring
// the method that contains the allocation site, falling back to the
// object's own type for mock objects without a container.
func allocType(o *pta.Obj) ir.Type {
	if o.Alloc != nil && o.Alloc.Container() != nil {
		return &ir.ClassType{Class: o.Alloc.Container().Class}
	}
	return o.Type
}
