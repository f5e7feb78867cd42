// Package observe makes structured values observable.
//
// Observable values are instances of the wrapper types List, Map and Object,
// each of which owns an events.Emitter. Every mutation method of a wrapper
// emits a "change" event whose payload is a *Change describing the mutation
// in enough detail for consumers to apply an incremental update.
//
// Plain Go lists and maps are converted to wrappers with Wrap; the conversion
// is recursive, and values inserted later through mutation methods are
// wrapped too.
package observe

import (
	"errors"
	"fmt"
	"reflect"

	"src.circular.dev/pkg/events"
	"src.circular.dev/pkg/vals"
)

// EventChange is the name of the event emitted on every mutation.
const EventChange = "change"

// Kind identifies the kind of a mutation.
type Kind int

// Kinds of mutations.
const (
	Set Kind = iota
	Delete
	Insert
	Append
	Remove
	Clear
	Extend
	Sort
	Reverse
)

var kindNames = [...]string{
	Set: "set", Delete: "delete", Insert: "insert", Append: "append",
	Remove: "remove", Clear: "clear", Extend: "extend", Sort: "sort",
	Reverse: "reverse",
}

func (k Kind) String() string {
	if 0 <= k && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Change describes a mutation. It is the payload of "change" events.
type Change struct {
	// The value that was mutated.
	Object any
	Kind   Kind
	// The index, key or attribute name that was affected, if any. For Extend,
	// the index of the first added element.
	Key any
	// The value before the mutation, if known. For Clear, the list of removed
	// elements (or keys of a map).
	Old    any
	HasOld bool
	// The value after the mutation, if known. For Extend, the list of added
	// elements.
	Value    any
	HasValue bool
}

// Observable is implemented by values that emit change events.
type Observable interface {
	Events() *events.Emitter
}

// ErrPrimitive is wrapped by errors returned when observing a primitive
// scalar value.
var ErrPrimitive = errors.New("primitive values cannot be observed")

// ErrNotWrapped is wrapped by errors returned when observing a structured
// value that is not one of the wrapper types.
var ErrNotWrapped = errors.New("value must be wrapped to be observed")

// Error is returned when a value cannot be observed.
type Error struct {
	Value any
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cannot observe value of type %s: %v", vals.Kind(e.Value), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Observe returns the emitter of an observable value. Observing the same value
// again returns the same emitter. Primitive values cannot be observed, and
// neither can structured values that have not been wrapped.
func Observe(v any) (*events.Emitter, error) {
	if o, ok := v.(Observable); ok {
		return o.Events(), nil
	}
	if isPrimitive(v) {
		return nil, &Error{v, ErrPrimitive}
	}
	return nil, &Error{v, ErrNotWrapped}
}

// TryObserve is like Observe, but returns nil instead of an error.
func TryObserve(v any) *events.Emitter {
	em, _ := Observe(v)
	return em
}

func isPrimitive(v any) bool {
	switch v.(type) {
	case nil, bool, int, int64, float64, string:
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64, reflect.Float32, reflect.Float64,
		reflect.String, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// Wrap converts Go lists and maps to their observable wrappers, recursively.
// Lists become *List and maps become *Map; values that are already
// observable, and all other values, are returned unchanged.
func Wrap(v any) any {
	switch v := v.(type) {
	case nil, Observable:
		return v
	case []any:
		return NewList(v...)
	case map[string]any:
		m := NewMap()
		for _, k := range sortedKeys(v) {
			m.init(k, v[k.(string)])
		}
		return m
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			// Byte slices are data, not lists.
			return v
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return NewList(items...)
	case reflect.Map:
		keys := make([]any, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.Interface())
		}
		vals.SortKeys(keys)
		m := NewMap()
		for _, k := range keys {
			m.init(k, rv.MapIndex(reflect.ValueOf(k)).Interface())
		}
		return m
	}
	return v
}

func sortedKeys(m map[string]any) []any {
	keys := make([]any, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	vals.SortKeys(keys)
	return keys
}

// Unwrap converts wrappers back to plain Go values, recursively: *List
// becomes []any, *Map becomes map[string]any if all its keys are strings and
// map[any]any otherwise, and *Object becomes map[string]any.
func Unwrap(v any) any {
	switch v := v.(type) {
	case *List:
		res := make([]any, len(v.items))
		for i, item := range v.items {
			res[i] = Unwrap(item)
		}
		return res
	case *Map:
		allStrings := true
		for _, k := range v.keys {
			if _, ok := k.(string); !ok {
				allStrings = false
				break
			}
		}
		if allStrings {
			res := make(map[string]any, len(v.keys))
			for _, k := range v.keys {
				res[k.(string)] = Unwrap(v.m[k])
			}
			return res
		}
		res := make(map[any]any, len(v.keys))
		for _, k := range v.keys {
			res[k] = Unwrap(v.m[k])
		}
		return res
	case *Object:
		res := make(map[string]any, len(v.names))
		for _, name := range v.names {
			res[name] = Unwrap(v.attrs[name])
		}
		return res
	}
	return v
}
