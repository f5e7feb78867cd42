// Package vals contains the semantics of values in the expression language.
//
// Values are represented as plain Go values of type any. The language knows
// about the following kinds of values:
//
//   - nil, which is spelled None in the language;
//   - bool, int, float64 and string;
//   - lists, which are []any or types satisfying Lister;
//   - maps, which are map[string]any, map[any]any or types satisfying Mapper;
//   - objects with attributes, which are types satisfying AttrGetter, or Go
//     structs and pointers to structs (accessed via reflection);
//   - callables, which are types satisfying Callable (like Func), or plain Go
//     functions (called via reflection).
//
// The operations in this package mirror the semantics of the corresponding
// Python operators, since the expression language is a subset of Python's.
package vals

import (
	"fmt"
	"strconv"
)

// Lister is satisfied by list-like containers.
type Lister interface {
	Len() int
	// Items returns the elements of the list. Callers must not modify the
	// returned slice.
	Items() []any
}

// Mapper is satisfied by map-like containers.
type Mapper interface {
	Len() int
	Get(k any) (any, bool)
	// Keys returns the keys of the map in iteration order.
	Keys() []any
}

// AttrGetter wraps the GetAttr method.
type AttrGetter interface {
	// GetAttr returns the named attribute and whether it exists.
	GetAttr(name string) (any, bool)
}

// AttrSetter wraps the SetAttr method.
type AttrSetter interface {
	SetAttr(name string, v any) error
}

// IndexSetter wraps the SetIndex method.
type IndexSetter interface {
	SetIndex(k, v any) error
}

// Kwargs holds keyword arguments of a call. A Go function whose last
// parameter has this type receives the keyword arguments of the call there.
type Kwargs map[string]any

// Callable is satisfied by values that can be called.
type Callable interface {
	Call(args []any, kwargs Kwargs) (any, error)
}

// Func is a Callable implemented by a Go function.
type Func func(args []any, kwargs Kwargs) (any, error)

// Call calls f.
func (f Func) Call(args []any, kwargs Kwargs) (any, error) { return f(args, kwargs) }

// Kind returns the name of the type of the value, using the names that the
// Python equivalents would have. It is used in error messages.
func Kind(v any) string {
	switch v := v.(type) {
	case nil:
		return "NoneType"
	case bool:
		return "bool"
	case int:
		return "int"
	case float64:
		return "float"
	case string:
		return "str"
	case []any, Lister:
		return "list"
	case map[string]any, map[any]any, Mapper:
		return "dict"
	case Func, Callable:
		return "function"
	case Kinder:
		return v.Kind()
	default:
		return kindOfReflect(v)
	}
}

// Kinder wraps the Kind method.
type Kinder interface {
	Kind() string
}

// OutOfRange encodes an error where a value is out of its valid range.
type OutOfRange struct {
	What   string
	Len    int
	Actual string
}

func (e OutOfRange) Error() string {
	return e.What + " out of range: " + e.Actual + " (length " + strconv.Itoa(e.Len) + ")"
}

// TypeError is returned when an operation is applied to a value of
// inappropriate type.
type TypeError struct {
	Message string
}

func (e TypeError) Error() string { return "type error: " + e.Message }

func typeErrorf(format string, args ...any) error {
	return TypeError{fmt.Sprintf(format, args...)}
}

type noSuchKeyError struct{ key any }

// NoSuchKey returns an error indicating that a key is not found in a map-like
// value.
func NoSuchKey(k any) error { return noSuchKeyError{k} }

func (err noSuchKeyError) Error() string { return "no such key: " + Repr(err.key) }

type noSuchAttrError struct {
	kind string
	name string
}

// NoSuchAttr returns an error indicating that a value has no attribute of
// the given name.
func NoSuchAttr(v any, name string) error { return noSuchAttrError{Kind(v), name} }

func (err noSuchAttrError) Error() string {
	return "'" + err.kind + "' object has no attribute '" + err.name + "'"
}

// ErrDivideByZero is returned when dividing by zero.
var ErrDivideByZero = divideByZeroError{}

type divideByZeroError struct{}

func (divideByZeroError) Error() string { return "division by zero" }

// ErrOverflow is returned when the result of integer arithmetic does not fit
// in an int.
var ErrOverflow = overflowError{}

type overflowError struct{}

func (overflowError) Error() string { return "integer overflow" }

// ErrRepeatTooLarge is returned when repeating a string or list would build a
// value longer than MaxRepeat.
var ErrRepeatTooLarge = repeatTooLargeError{}

type repeatTooLargeError struct{}

func (repeatTooLargeError) Error() string { return "repeated sequence too large" }
