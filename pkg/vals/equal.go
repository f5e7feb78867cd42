package vals

import (
	"reflect"
)

// Equaler wraps the Equal method.
type Equaler interface {
	// Equal compares the receiver to another value.
	Equal(other any) bool
}

// Equal returns whether two values are equal, following the semantics of the
// == operator in Python: numbers compare by value across int, float64 and
// bool, lists and maps compare element-wise, and other values compare by
// identity when they are comparable Go values.
func Equal(x, y any) bool {
	if xn, ok := toNum(x); ok {
		if yn, ok := toNum(y); ok {
			return xn.cmp(yn) == 0
		}
		return false
	}
	switch x := x.(type) {
	case nil:
		return y == nil
	case string:
		ys, ok := y.(string)
		return ok && x == ys
	case Equaler:
		return x.Equal(y)
	}
	if xs, ok := listItems(x); ok {
		if ys, ok := listItems(y); ok {
			return equalItems(xs, ys)
		}
		return false
	}
	if xm, ok := asMapper(x); ok {
		if ym, ok := asMapper(y); ok {
			return equalMap(xm, ym)
		}
		return false
	}
	if y, ok := y.(Equaler); ok {
		return y.Equal(x)
	}
	tx, ty := reflect.TypeOf(x), reflect.TypeOf(y)
	if tx == ty && tx.Comparable() {
		return x == y
	}
	return reflect.DeepEqual(x, y)
}

func equalItems(xs, ys []any) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !Equal(xs[i], ys[i]) {
			return false
		}
	}
	return true
}

func equalMap(x, y Mapper) bool {
	if x.Len() != y.Len() {
		return false
	}
	for _, k := range x.Keys() {
		vx, _ := x.Get(k)
		vy, ok := y.Get(k)
		if !ok || !Equal(vx, vy) {
			return false
		}
	}
	return true
}

// Is reports whether x and y are the same value, following the semantics of
// the is operator in Python. Scalars are the same if they have the same type
// and value; containers, objects and functions are the same only if they are
// the identical Go value.
func Is(x, y any) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	tx, ty := reflect.TypeOf(x), reflect.TypeOf(y)
	if tx != ty {
		return false
	}
	switch tx.Kind() {
	case reflect.Slice, reflect.Map, reflect.Func:
		return reflect.ValueOf(x).Pointer() == reflect.ValueOf(y).Pointer()
	}
	if tx.Comparable() {
		return x == y
	}
	return false
}
