package vals

import "reflect"

// Booler wraps the Bool method.
type Booler interface {
	// Bool computes the truth value of the receiver.
	Bool() bool
}

// Bool converts a value to bool, following the truth-value rules of Python:
// None, false, zero numbers and empty strings and containers are false;
// everything else is true.
func Bool(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case int:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	case Booler:
		return v.Bool()
	case []any:
		return len(v) > 0
	case Lister:
		return v.Len() > 0
	case Mapper:
		return v.Len() > 0
	case map[string]any:
		return len(v) > 0
	case map[any]any:
		return len(v) > 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// Not returns the boolean negation of the truth value of v.
func Not(v any) bool { return !Bool(v) }
