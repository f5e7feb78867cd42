package vals

import (
	"reflect"
	"unicode"
	"unicode/utf8"
)

// GetAttr returns the named attribute of a value.
//
// Values implementing AttrGetter provide their own attributes. Strings, lists
// and maps have the methods of their Python counterparts that do not mutate
// the value. Go structs and pointers to structs expose their exported fields
// and methods; the attribute name may be spelled with a lower-case initial.
func GetAttr(v any, name string) (any, error) {
	switch v := v.(type) {
	case AttrGetter:
		if attr, ok := v.GetAttr(name); ok {
			return attr, nil
		}
		return nil, NoSuchAttr(v, name)
	case string:
		if m, ok := stringMethod(v, name); ok {
			return m, nil
		}
		return nil, NoSuchAttr(v, name)
	case nil:
		return nil, NoSuchAttr(v, name)
	}
	if items, ok := listItems(v); ok {
		if m, ok := ListMethod(items, name); ok {
			return m, nil
		}
	} else if m, ok := asMapper(v); ok {
		if m, ok := MapMethod(m, name); ok {
			return m, nil
		}
	}
	if attr, ok := reflectAttr(reflect.ValueOf(v), name); ok {
		return attr, nil
	}
	return nil, NoSuchAttr(v, name)
}

// SetAttr sets the named attribute of a value. Values implementing
// AttrSetter handle the assignment themselves; pointers to structs get their
// exported field set.
func SetAttr(v any, name string, val any) error {
	if v, ok := v.(AttrSetter); ok {
		return v.SetAttr(name, val)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
		f := structField(rv.Elem(), name)
		if f.IsValid() && f.CanSet() {
			conv, err := convertArg(val, f.Type())
			if err != nil {
				return err
			}
			f.Set(conv)
			return nil
		}
	}
	return typeErrorf("cannot set attribute '%s' of '%s' object", name, Kind(v))
}

func reflectAttr(rv reflect.Value, name string) (any, bool) {
	if !rv.IsValid() {
		return nil, false
	}
	for _, n := range exportedNames(name) {
		if m := rv.MethodByName(n); m.IsValid() {
			return m.Interface(), true
		}
	}
	sv := rv
	for sv.Kind() == reflect.Ptr || sv.Kind() == reflect.Interface {
		if sv.IsNil() {
			return nil, false
		}
		sv = sv.Elem()
	}
	if sv.Kind() != reflect.Struct {
		return nil, false
	}
	if f := structField(sv, name); f.IsValid() && f.CanInterface() {
		return f.Interface(), true
	}
	return nil, false
}

func structField(sv reflect.Value, name string) reflect.Value {
	for _, n := range exportedNames(name) {
		if sf, ok := sv.Type().FieldByName(n); ok && sf.IsExported() {
			return sv.FieldByIndex(sf.Index)
		}
	}
	return reflect.Value{}
}

// exportedNames returns the Go identifiers an attribute name may correspond
// to: the name itself and the name with an upper-case initial.
func exportedNames(name string) []string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return []string{name}
	}
	return []string{name, string(unicode.ToUpper(r)) + name[size:]}
}

func kindOfReflect(v any) string {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Map:
		return "dict"
	case reflect.Func:
		return "function"
	case reflect.Ptr:
		if t := rv.Type().Elem(); t.Name() != "" {
			return t.Name()
		}
	}
	if name := rv.Type().Name(); name != "" {
		return name
	}
	return rv.Type().String()
}
