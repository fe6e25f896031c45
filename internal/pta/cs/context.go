// Package cs implements context-sensitive, inclusion-based points-to
// analysis: every pointer and object of the context-insensitive algorithm
// is qualified by an abstract context chosen by a pluggable selector.
package cs

import (
	"strconv"
	"strings"

	"github.com/dkellner/pinpoint/internal/ir"
	"github.com/dkellner/pinpoint/internal/pta"
)

// Elem is one element of a context tuple: a call site, an abstract object,
// or a type, depending on the selector in use. ContextKey must be stable
// across runs.
type Elem interface {
	ContextKey() string
}

// CallSiteElem qualifies a context by a call site.
type CallSiteElem struct {
	Site *ir.Invoke
}

func (e CallSiteElem) ContextKey() string {
	return e.Site.Container().String() + "/" + strconv.Itoa(e.Site.Index())
}

// ObjElem qualifies a context by an allocation.
type ObjElem struct {
	Obj *pta.Obj
}

func (e ObjElem) ContextKey() string { return e.Obj.String() }

// TypeElem qualifies a context by a type.
type TypeElem struct {
	Type ir.Type
}

func (e TypeElem) ContextKey() string { return e.Type.TypeName() }

// Context is an immutable tuple of elements. Contexts with equal keys are
// interchangeable everywhere; the manager canonicalizes all
// (context, entity) pairs by key.
type Context struct {
	elems []Elem
	key   string
}

var emptyContext = &Context{}

// EmptyContext returns the distinguished empty context.
func EmptyContext() *Context { return emptyContext }

// Key returns the stable identity of the context.
func (c *Context) Key() string { return c.key }

// Len returns the number of elements.
func (c *Context) Len() int { return len(c.elems) }

// Elems returns the tuple elements, innermost last.
func (c *Context) Elems() []Elem { return c.elems }

func (c *Context) String() string {
	if len(c.elems) == 0 {
		return "[]"
	}
	parts := make([]string, len(c.elems))
	for i, e := range c.elems {
		parts[i] = e.ContextKey()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Append returns the context extended by e, truncated to its last limit
// elements; limit <= 0 yields the empty context.
func (c *Context) Append(e Elem, limit int) *Context {
	if limit <= 0 {
		return emptyContext
	}
	elems := append(append([]Elem(nil), c.elems...), e)
	if len(elems) > limit {
		elems = elems[len(elems)-limit:]
	}
	return newContext(elems)
}

// Truncate returns the context reduced to its last limit elements.
func (c *Context) Truncate(limit int) *Context {
	if limit <= 0 || len(c.elems) == 0 {
		return emptyContext
	}
	if len(c.elems) <= limit {
		return c
	}
	return newContext(append([]Elem(nil), c.elems[len(c.elems)-limit:]...))
}

func newContext(elems []Elem) *Context {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.ContextKey()
	}
	return &Context{elems: elems, key: strings.Join(parts, "|")}
}
