package constprop

import (
	"sort"
	"strings"

	"github.com/dkellner/pinpoint/internal/ir"
)

// Fact maps variables to lattice values. Absent keys read as Undef.
type Fact struct {
	m map[*ir.Var]Value
}

// NewFact returns an empty fact.
func NewFact() *Fact {
	return &Fact{m: make(map[*ir.Var]Value)}
}

// Get returns the value bound to v, Undef when unbound.
func (f *Fact) Get(v *ir.Var) Value {
	return f.m[v]
}

// Update binds v to val and reports whether the stored value changed.
// Undef is the absent value: binding it unbinds v.
func (f *Fact) Update(v *ir.Var, val Value) bool {
	old, present := f.m[v]
	if val.IsUndef() {
		if present {
			delete(f.m, v)
			return !old.IsUndef()
		}
		return false
	}
	f.m[v] = val
	return !present || old != val
}

// Remove unbinds v.
func (f *Fact) Remove(v *ir.Var) {
	delete(f.m, v)
}

// Copy returns an independent fact with the same bindings.
func (f *Fact) Copy() *Fact {
	c := NewFact()
	for v, val := range f.m {
		c.m[v] = val
	}
	return c
}

// ForEach visits every binding. Visit order is unspecified; all uses are
// order-insensitive (meets) or sort afterwards.
func (f *Fact) ForEach(fn func(v *ir.Var, val Value)) {
	for v, val := range f.m {
		fn(v, val)
	}
}

// Equals reports whether both facts hold identical bindings.
func (f *Fact) Equals(other *Fact) bool {
	if len(f.m) != len(other.m) {
		return false
	}
	for v, val := range f.m {
		if other.m[v] != val {
			return false
		}
	}
	return true
}

// Len returns the number of bindings.
func (f *Fact) Len() int { return len(f.m) }

func (f *Fact) String() string {
	entries := make([]string, 0, len(f.m))
	for v, val := range f.m {
		entries = append(entries, v.Name+"="+val.String())
	}
	sort.Strings(entries)
	return "{" + strings.Join(entries, ", ") + "}"
}
