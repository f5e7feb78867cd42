package vals

import (
	"errors"
	"reflect"
	"strconv"
)

// Indexer wraps the Index method, for types with custom indexing.
type Indexer interface {
	// Index retrieves the value corresponding to the specified key.
	Index(k any) (any, error)
}

// ErrZeroStep is returned when slicing with a step of 0.
var ErrZeroStep = errors.New("slice step cannot be zero")

// Index indexes a value with the given key: strings and lists by integer,
// with negative integers counting from the end, and maps by key.
func Index(a, k any) (any, error) {
	switch a := a.(type) {
	case Indexer:
		return a.Index(k)
	case string:
		i, err := intIndex("string", k)
		if err != nil {
			return nil, err
		}
		runes := []rune(a)
		n, err := normIndex("string index", i, len(runes))
		if err != nil {
			return nil, err
		}
		return string(runes[n]), nil
	}
	if items, ok := listItems(a); ok {
		i, err := intIndex("list", k)
		if err != nil {
			return nil, err
		}
		n, err := normIndex("list index", i, len(items))
		if err != nil {
			return nil, err
		}
		return items[n], nil
	}
	if m, ok := asMapper(a); ok {
		v, ok := m.Get(k)
		if !ok {
			return nil, NoSuchKey(k)
		}
		return v, nil
	}
	return nil, typeErrorf("'%s' object is not subscriptable", Kind(a))
}

func intIndex(what string, k any) (int, error) {
	switch k := k.(type) {
	case int:
		return k, nil
	case bool:
		if k {
			return 1, nil
		}
		return 0, nil
	case int64:
		return int(k), nil
	}
	return 0, typeErrorf("%s indices must be integers or slices, not %s", what, Kind(k))
}

func normIndex(what string, i, n int) (int, error) {
	j := i
	if j < 0 {
		j += n
	}
	if j < 0 || j >= n {
		return 0, OutOfRange{What: what, Len: n, Actual: strconv.Itoa(i)}
	}
	return j, nil
}

// Slice slices a string or a list. Each of lo, hi and step may be nil to
// select the default, following the semantics of Python slices.
func Slice(a, lo, hi, step any) (any, error) {
	switch a := a.(type) {
	case string:
		runes := []rune(a)
		idx, err := sliceIndices(len(runes), lo, hi, step)
		if err != nil {
			return nil, err
		}
		res := make([]rune, len(idx))
		for i, j := range idx {
			res[i] = runes[j]
		}
		return string(res), nil
	}
	items, ok := listItems(a)
	if !ok {
		return nil, typeErrorf("'%s' object is not subscriptable", Kind(a))
	}
	idx, err := sliceIndices(len(items), lo, hi, step)
	if err != nil {
		return nil, err
	}
	res := make([]any, len(idx))
	for i, j := range idx {
		res[i] = items[j]
	}
	return res, nil
}

func sliceIndices(n int, lo, hi, step any) ([]int, error) {
	st := 1
	if step != nil {
		s, err := sliceBound(step)
		if err != nil {
			return nil, err
		}
		if s == 0 {
			return nil, ErrZeroStep
		}
		st = s
	}
	var start, stop int
	if st > 0 {
		start, stop = 0, n
	} else {
		start, stop = n-1, -1
	}
	if lo != nil {
		i, err := sliceBound(lo)
		if err != nil {
			return nil, err
		}
		start = clampBound(i, n, st)
	}
	if hi != nil {
		i, err := sliceBound(hi)
		if err != nil {
			return nil, err
		}
		stop = clampBound(i, n, st)
	}
	var idx []int
	if st > 0 {
		for i := start; i < stop; i += st {
			idx = append(idx, i)
		}
	} else {
		for i := start; i > stop; i += st {
			idx = append(idx, i)
		}
	}
	return idx, nil
}

func sliceBound(v any) (int, error) {
	switch v := v.(type) {
	case int:
		return v, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case int64:
		return int(v), nil
	}
	return 0, typeErrorf("slice indices must be integers or None, not %s", Kind(v))
}

func clampBound(i, n, step int) int {
	if i < 0 {
		i += n
		if i < 0 {
			if step < 0 {
				return -1
			}
			return 0
		}
	} else if i >= n {
		if step < 0 {
			return n - 1
		}
		return n
	}
	return i
}

// SetIndex assigns v to the element of a at key k. Lists are assigned in
// place by integer index; maps by key.
func SetIndex(a, k, v any) error {
	switch a := a.(type) {
	case IndexSetter:
		return a.SetIndex(k, v)
	case []any:
		i, err := intIndex("list", k)
		if err != nil {
			return err
		}
		n, err := normIndex("list assignment index", i, len(a))
		if err != nil {
			return err
		}
		a[n] = v
		return nil
	case map[string]any:
		s, ok := k.(string)
		if !ok {
			return typeErrorf("map key must be str, not %s", Kind(k))
		}
		a[s] = v
		return nil
	case map[any]any:
		a[k] = v
		return nil
	}
	rv := reflect.ValueOf(a)
	if rv.Kind() == reflect.Map {
		kv, vv := reflect.ValueOf(k), reflect.ValueOf(v)
		kt, vt := rv.Type().Key(), rv.Type().Elem()
		if kv.IsValid() && kv.Type().AssignableTo(kt) && (v == nil && canBeNil(vt) || vv.IsValid() && vv.Type().AssignableTo(vt)) {
			if !vv.IsValid() {
				vv = reflect.Zero(vt)
			}
			rv.SetMapIndex(kv, vv)
			return nil
		}
		return typeErrorf("cannot assign %s to key %s of %s", Kind(v), Repr(k), Kind(a))
	}
	return typeErrorf("'%s' object does not support item assignment", Kind(a))
}

func canBeNil(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}
