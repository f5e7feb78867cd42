// Package scope implements contexts: chained variable bindings that
// expressions are evaluated against.
//
// A Scope maps names to values and can have a base scope. Lookups fall
// through to the base when a name is not bound locally; writes always bind
// locally, shadowing the base without modifying it. Lists and maps written
// into a scope are wrapped so that later in-place mutations are observable.
package scope

import (
	"sort"
	"strings"

	"src.circular.dev/pkg/events"
	"src.circular.dev/pkg/observe"
	"src.circular.dev/pkg/vals"
)

// Scope is a context of variable bindings. The zero value is not usable; use
// New or FromMap.
type Scope struct {
	em       events.Emitter
	base     *Scope
	baseBind *events.Binding
	vars     map[string]any
	saved    map[string][]savedVar
	tpls     map[string]any
}

type savedVar struct {
	value   any
	present bool
}

// New creates an empty Scope with the given base, which may be nil.
func New(base *Scope) *Scope {
	s := &Scope{base: base, vars: map[string]any{}}
	if base != nil {
		s.baseBind = base.em.Bind(observe.EventChange, s.baseChanged)
	}
	return s
}

// FromMap creates a Scope with the given base and bindings.
func FromMap(m map[string]any, base *Scope) *Scope {
	s := New(base)
	for k, v := range m {
		s.vars[k] = observe.Wrap(v)
	}
	return s
}

// Events returns the emitter of the scope. Every change of a visible binding
// emits a "change" event with an *observe.Change payload whose Key is the
// name.
func (s *Scope) Events() *events.Emitter { return &s.em }

// Base returns the base scope, or nil.
func (s *Scope) Base() *Scope { return s.base }

// Forward changes of names visible through the base, i.e. not shadowed.
func (s *Scope) baseChanged(ev *events.Event) {
	c, ok := ev.Data.(*observe.Change)
	if !ok {
		return
	}
	if name, ok := c.Key.(string); ok {
		if _, local := s.vars[name]; local {
			return
		}
	}
	s.em.Emit(observe.EventChange, c)
}

// Close detaches the scope from its base, so that it no longer forwards
// changes from the base. The scope can still be used for lookups.
func (s *Scope) Close() {
	s.baseBind.Unbind()
	s.baseBind = nil
}

// Get looks up a name, falling through to the base scope.
func (s *Scope) Get(name string) (any, bool) {
	for sc := s; sc != nil; sc = sc.base {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether a name is visible in the scope.
func (s *Scope) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// HasLocal reports whether a name is bound in the scope itself.
func (s *Scope) HasLocal(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// Set binds a name in the scope, wrapping lists and maps, and emits a change.
func (s *Scope) Set(name string, v any) {
	v = observe.Wrap(v)
	old, hasOld := s.Get(name)
	s.vars[name] = v
	s.em.Emit(observe.EventChange, &observe.Change{Object: s, Kind: observe.Set,
		Key: name, Old: old, HasOld: hasOld, Value: v, HasValue: true})
}

// SetQuiet is like Set, but does not emit a change.
func (s *Scope) SetQuiet(name string, v any) {
	s.vars[name] = observe.Wrap(v)
}

// Delete removes a local binding and emits a change. It does nothing if the
// name is not bound locally.
func (s *Scope) Delete(name string) {
	old, ok := s.vars[name]
	if !ok {
		return
	}
	delete(s.vars, name)
	s.em.Emit(observe.EventChange, &observe.Change{Object: s, Kind: observe.Delete,
		Key: name, Old: old, HasOld: true})
}

// Reset replaces all local bindings with the given ones. It emits one change
// for every name that was removed and for every name in the new bindings.
func (s *Scope) Reset(m map[string]any) {
	for _, name := range s.Names() {
		if _, ok := m[name]; !ok {
			s.Delete(name)
		}
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.Set(name, m[name])
	}
}

// Names returns the locally bound names, sorted.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save pushes the current local binding of a name, or its absence, to a
// per-name stack. It is used to temporarily shadow a name, for example with a
// loop variable. Save and Restore do not emit changes.
func (s *Scope) Save(name string) {
	if s.saved == nil {
		s.saved = map[string][]savedVar{}
	}
	v, ok := s.vars[name]
	s.saved[name] = append(s.saved[name], savedVar{v, ok})
}

// Restore pops the binding pushed by the last call to Save with the same
// name. If the name was not bound locally when saved, it is unbound.
func (s *Scope) Restore(name string) {
	stack := s.saved[name]
	if len(stack) == 0 {
		return
	}
	sv := stack[len(stack)-1]
	s.saved[name] = stack[:len(stack)-1]
	if len(s.saved[name]) == 0 {
		delete(s.saved, name)
	}
	if sv.present {
		s.vars[name] = sv.value
	} else {
		delete(s.vars, name)
	}
}

// DefineTemplate registers a compiled template under a name, visible to this
// scope and all scopes derived from it.
func (s *Scope) DefineTemplate(name string, t any) {
	if s.tpls == nil {
		s.tpls = map[string]any{}
	}
	s.tpls[name] = t
}

// LookupTemplate looks up a template by name, walking the chain of base
// scopes.
func (s *Scope) LookupTemplate(name string) (any, bool) {
	for sc := s; sc != nil; sc = sc.base {
		if t, ok := sc.tpls[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// GetAttr implements vals.AttrGetter, so that scopes can be used as objects.
func (s *Scope) GetAttr(name string) (any, bool) { return s.Get(name) }

// SetAttr implements vals.AttrSetter.
func (s *Scope) SetAttr(name string, v any) error {
	s.Set(name, v)
	return nil
}

// Kind implements vals.Kinder.
func (s *Scope) Kind() string { return "context" }

// Repr returns a representation of the local bindings.
func (s *Scope) Repr() string {
	var sb strings.Builder
	sb.WriteString("context(")
	for i, name := range s.Names() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name + "=" + vals.Repr(s.vars[name]))
	}
	sb.WriteString(")")
	return sb.String()
}
