package observe

import (
	"reflect"

	"src.circular.dev/pkg/events"
	"src.circular.dev/pkg/vals"
)

// Map is an observable map. Keys are kept in insertion order.
type Map struct {
	em   events.Emitter
	m    map[any]any
	keys []any
}

// NewMap returns a new empty Map.
func NewMap() *Map { return &Map{m: map[any]any{}} }

// MapOf returns a new Map populated from a Go map, whose values are wrapped.
func MapOf(m map[string]any) *Map {
	return Wrap(m).(*Map)
}

// Populates the map without emitting events.
func (m *Map) init(k, v any) {
	if _, ok := m.m[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.m[k] = Wrap(v)
}

// Events returns the emitter of the map.
func (m *Map) Events() *events.Emitter { return &m.em }

func (m *Map) emit(c *Change) {
	c.Object = m
	m.em.Emit(EventChange, c)
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Get returns the value for the key and whether it exists.
func (m *Map) Get(k any) (any, bool) {
	if !hashable(k) {
		return nil, false
	}
	v, ok := m.m[k]
	return v, ok
}

// Has reports whether the key exists.
func (m *Map) Has(k any) bool {
	_, ok := m.Get(k)
	return ok
}

// Keys returns the keys in insertion order. The caller must not modify the
// returned slice.
func (m *Map) Keys() []any { return m.keys }

// Values returns the values in the order of Keys.
func (m *Map) Values() []any {
	res := make([]any, len(m.keys))
	for i, k := range m.keys {
		res[i] = m.m[k]
	}
	return res
}

// Repr returns the representation of the map.
func (m *Map) Repr() string { return vals.ReprMap(m) }

func hashable(k any) bool {
	return k == nil || reflect.TypeOf(k).Comparable()
}

func unhashable(k any) error {
	return vals.TypeError{Message: "unhashable type: '" + vals.Kind(k) + "'"}
}

// Set sets the value for the key.
func (m *Map) Set(k, v any) error {
	if !hashable(k) {
		return unhashable(k)
	}
	v = Wrap(v)
	old, hasOld := m.m[k]
	if !hasOld {
		m.keys = append(m.keys, k)
	}
	m.m[k] = v
	m.emit(&Change{Kind: Set, Key: k, Old: old, HasOld: hasOld, Value: v, HasValue: true})
	return nil
}

// SetIndex implements vals.IndexSetter.
func (m *Map) SetIndex(k, v any) error { return m.Set(k, v) }

// Delete removes the key.
func (m *Map) Delete(k any) error {
	_, err := m.Pop(k)
	return err
}

// Pop removes the key and returns its value.
func (m *Map) Pop(k any) (any, error) {
	old, ok := m.Get(k)
	if !ok {
		return nil, vals.NoSuchKey(k)
	}
	delete(m.m, k)
	for i, key := range m.keys {
		if key == k {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
	m.emit(&Change{Kind: Delete, Key: k, Old: old, HasOld: true})
	return old, nil
}

// Clear removes all entries.
func (m *Map) Clear() {
	old := m.keys
	m.m = map[any]any{}
	m.keys = nil
	m.emit(&Change{Kind: Clear, Old: old, HasOld: true})
}

// Update sets all the entries of a map-like value, emitting one Set change per
// entry.
func (m *Map) Update(other any) error {
	keys, err := vals.Iterate(other)
	if err != nil || !vals.IsMap(other) {
		return vals.TypeError{Message: "update() argument must be a dict, not " + vals.Kind(other)}
	}
	for _, k := range keys {
		v, err := vals.Index(other, k)
		if err != nil {
			return err
		}
		if err := m.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// GetAttr implements vals.AttrGetter, exposing the methods of Python dicts.
// Like in Python, keys are not accessible as attributes.
func (m *Map) GetAttr(name string) (any, bool) {
	switch name {
	case "update":
		return method1(func(v any) (any, error) { return nil, m.Update(v) }), true
	case "clear":
		return method0(func() { m.Clear() }), true
	case "pop":
		return vals.Func(func(args []any, kwargs vals.Kwargs) (any, error) {
			if len(args) < 1 || len(args) > 2 || len(kwargs) > 0 {
				return nil, vals.TypeError{Message: "pop expected 1 or 2 arguments"}
			}
			v, err := m.Pop(args[0])
			if err != nil && len(args) == 2 {
				return args[1], nil
			}
			return v, err
		}), true
	case "setdefault":
		return vals.Func(func(args []any, kwargs vals.Kwargs) (any, error) {
			if len(args) < 1 || len(args) > 2 || len(kwargs) > 0 {
				return nil, vals.TypeError{Message: "setdefault expected 1 or 2 arguments"}
			}
			if v, ok := m.Get(args[0]); ok {
				return v, nil
			}
			var def any
			if len(args) == 2 {
				def = args[1]
			}
			if err := m.Set(args[0], def); err != nil {
				return nil, err
			}
			v, _ := m.Get(args[0])
			return v, nil
		}), true
	}
	return vals.MapMethod(m, name)
}
