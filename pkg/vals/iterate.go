package vals

import (
	"reflect"
	"sort"
	"strings"
)

// listItems returns the elements of a list-like value.
func listItems(v any) ([]any, bool) {
	switch v := v.(type) {
	case []any:
		return v, true
	case Lister:
		return v.Items(), true
	case string, nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// IsList reports whether v is list-like.
func IsList(v any) bool {
	_, ok := listItems(v)
	return ok
}

// IsMap reports whether v is map-like.
func IsMap(v any) bool {
	_, ok := asMapper(v)
	return ok
}

func asMapper(v any) (Mapper, bool) {
	switch v := v.(type) {
	case Mapper:
		return v, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	return goMap{rv}, true
}

// goMap adapts a Go map to the Mapper interface. Keys are sorted, since Go
// maps have no iteration order.
type goMap struct{ rv reflect.Value }

func (m goMap) Len() int { return m.rv.Len() }

func (m goMap) Get(k any) (any, bool) {
	kv := reflect.ValueOf(k)
	if !kv.IsValid() {
		if m.rv.Type().Key().Kind() != reflect.Interface {
			return nil, false
		}
		kv = reflect.Zero(m.rv.Type().Key())
	} else if !kv.Type().Comparable() {
		return nil, false
	}
	if !kv.Type().AssignableTo(m.rv.Type().Key()) {
		if !kv.Type().ConvertibleTo(m.rv.Type().Key()) || kv.Kind() != m.rv.Type().Key().Kind() {
			return nil, false
		}
		kv = kv.Convert(m.rv.Type().Key())
	}
	v := m.rv.MapIndex(kv)
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}

func (m goMap) Keys() []any {
	keys := make([]any, 0, m.rv.Len())
	for _, k := range m.rv.MapKeys() {
		keys = append(keys, k.Interface())
	}
	SortKeys(keys)
	return keys
}

// SortKeys sorts map keys deterministically: numbers before strings, numbers
// by value and strings lexically; other keys are sorted by their repr.
func SortKeys(keys []any) {
	sort.SliceStable(keys, func(i, j int) bool {
		return keyLess(keys[i], keys[j])
	})
}

func keyLess(a, b any) bool {
	an, aNum := toNum(a)
	bn, bNum := toNum(b)
	switch {
	case aNum && bNum:
		return an.cmp(bn) < 0
	case aNum != bNum:
		return aNum
	}
	as, aStr := a.(string)
	bs, bStr := b.(string)
	switch {
	case aStr && bStr:
		return as < bs
	case aStr != bStr:
		return aStr
	}
	return Repr(a) < Repr(b)
}

// Len returns the length of a string, list or map.
func Len(v any) (int, error) {
	switch v := v.(type) {
	case string:
		return len([]rune(v)), nil
	case []any:
		return len(v), nil
	case Lister:
		return v.Len(), nil
	case Mapper:
		return v.Len(), nil
	}
	if items, ok := listItems(v); ok {
		return len(items), nil
	}
	if m, ok := asMapper(v); ok {
		return m.Len(), nil
	}
	return 0, typeErrorf("object of type '%s' has no len()", Kind(v))
}

// Iterate returns the elements of an iterable value: the items of a list, the
// keys of a map or the characters of a string.
func Iterate(v any) ([]any, error) {
	if s, ok := v.(string); ok {
		items := make([]any, 0, len(s))
		for _, r := range s {
			items = append(items, string(r))
		}
		return items, nil
	}
	if items, ok := listItems(v); ok {
		return items, nil
	}
	if m, ok := asMapper(v); ok {
		return m.Keys(), nil
	}
	return nil, typeErrorf("'%s' object is not iterable", Kind(v))
}

// In implements the in operator: substring test for strings, element test for
// lists and key test for maps.
func In(elem, container any) (bool, error) {
	if s, ok := container.(string); ok {
		sub, ok := elem.(string)
		if !ok {
			return false, typeErrorf("'in <string>' requires string as left operand, not %s", Kind(elem))
		}
		return strings.Contains(s, sub), nil
	}
	if items, ok := listItems(container); ok {
		for _, item := range items {
			if Equal(item, elem) {
				return true, nil
			}
		}
		return false, nil
	}
	if m, ok := asMapper(container); ok {
		_, ok := m.Get(elem)
		return ok, nil
	}
	return false, typeErrorf("argument of type '%s' is not iterable", Kind(container))
}
