package ir

import "strings"

// Hierarchy indexes the class hierarchy of a program: registered classes in
// a stable order plus the reverse links (direct subclasses, subinterfaces
// and implementors) the call-graph builders traverse.
type Hierarchy struct {
	classes map[string]*Class
	order   []*Class

	subclasses    map[*Class][]*Class
	subinterfaces map[*Class][]*Class
	implementors  map[*Class][]*Class
}

// NewHierarchy returns an empty hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{
		classes:       make(map[string]*Class),
		subclasses:    make(map[*Class][]*Class),
		subinterfaces: make(map[*Class][]*Class),
		implementors:  make(map[*Class][]*Class),
	}
}

// AddClass registers c and records its hierarchy links. The superclass and
// interfaces of c must already be registered.
func (h *Hierarchy) AddClass(c *Class) {
	if _, dup := h.classes[c.Name]; dup {
		return
	}
	h.classes[c.Name] = c
	h.order = append(h.order, c)
	if c.Super != nil {
		h.subclasses[c.Super] = append(h.subclasses[c.Super], c)
	}
	for _, iface := range c.Interfaces {
		if c.IsInterface {
			h.subinterfaces[iface] = append(h.subinterfaces[iface], c)
		} else {
			h.implementors[iface] = append(h.implementors[iface], c)
		}
	}
}

// Class returns the registered class with the given name, or nil.
func (h *Hierarchy) Class(name string) *Class { return h.classes[name] }

// Classes returns all registered classes in registration order.
func (h *Hierarchy) Classes() []*Class { return h.order }

// DirectSubclassesOf returns the classes whose direct superclass is c.
func (h *Hierarchy) DirectSubclassesOf(c *Class) []*Class { return h.subclasses[c] }

// DirectSubinterfacesOf returns the interfaces directly extending c.
func (h *Hierarchy) DirectSubinterfacesOf(c *Class) []*Class { return h.subinterfaces[c] }

// DirectImplementorsOf returns the classes directly implementing c.
func (h *Hierarchy) DirectImplementorsOf(c *Class) []*Class { return h.implementors[c] }

// TypeNamed resolves a type name: a primitive name, a registered class
// name, or either suffixed with "[]" for arrays.
func (h *Hierarchy) TypeNamed(name string) (Type, bool) {
	if elem, ok := strings.CutSuffix(name, "[]"); ok {
		t, ok := h.TypeNamed(elem)
		if !ok {
			return nil, false
		}
		return &ArrayType{Elem: t}, true
	}
	switch name {
	case "byte":
		return Byte, true
	case "short":
		return Short, true
	case "int":
		return Int, true
	case "char":
		return Char, true
	case "boolean":
		return Boolean, true
	case "long":
		return Long, true
	case "void":
		return Void, true
	}
	if c := h.classes[name]; c != nil {
		return &ClassType{Class: c}, true
	}
	return nil, false
}

// Dispatch walks from c up the superclass chain and returns the first
// non-abstract method with the given subsignature, or nil when the chain
// ends without one.
func Dispatch(c *Class, subsig string) *Method {
	for ; c != nil; c = c.Super {
		if m := c.DeclaredMethod(subsig); m != nil && !m.IsAbstract {
			return m
		}
	}
	return nil
}
