package vals

import (
	"reflect"
)

var (
	kwargsType = reflect.TypeOf(Kwargs(nil))
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// Call calls a value with positional and keyword arguments.
//
// Values implementing Callable are called directly. Other Go functions are
// called via reflection: arguments are converted to the parameter types where
// possible, and if the last parameter has type Kwargs, it receives the keyword
// arguments. If the last return value of the function is an error, it is
// returned as the error of the call. Functions with no return values return
// nil; functions with more than one non-error return value return a list.
func Call(fn any, args []any, kwargs Kwargs) (any, error) {
	if c, ok := fn.(Callable); ok {
		return c.Call(args, kwargs)
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, typeErrorf("'%s' object is not callable", Kind(fn))
	}
	in, err := callArgs(rv.Type(), args, kwargs)
	if err != nil {
		return nil, err
	}
	return callRets(rv.Call(in))
}

func callArgs(t reflect.Type, args []any, kwargs Kwargs) ([]reflect.Value, error) {
	nparams := t.NumIn()
	wantKwargs := nparams > 0 && t.In(nparams-1) == kwargsType
	if wantKwargs {
		nparams--
	} else if len(kwargs) > 0 {
		for k := range kwargs {
			return nil, typeErrorf("function got an unexpected keyword argument '%s'", k)
		}
	}
	variadic := t.IsVariadic() && !wantKwargs
	if variadic {
		if len(args) < nparams-1 {
			return nil, typeErrorf("function takes at least %d arguments (%d given)", nparams-1, len(args))
		}
	} else if len(args) != nparams {
		return nil, typeErrorf("function takes %d arguments (%d given)", nparams, len(args))
	}
	in := make([]reflect.Value, 0, len(args)+1)
	for i, arg := range args {
		var pt reflect.Type
		if variadic && i >= nparams-1 {
			pt = t.In(nparams - 1).Elem()
		} else {
			pt = t.In(i)
		}
		v, err := convertArg(arg, pt)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}
	if wantKwargs {
		if kwargs == nil {
			kwargs = Kwargs{}
		}
		in = append(in, reflect.ValueOf(kwargs))
	}
	return in, nil
}

func convertArg(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		if canBeNil(t) {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, typeErrorf("cannot use None as %s", t)
	}
	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if n, ok := toNum(arg); ok {
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if !n.isFloat {
				return reflect.ValueOf(n.i).Convert(t), nil
			}
		case reflect.Float32, reflect.Float64:
			return reflect.ValueOf(n.float()).Convert(t), nil
		}
	}
	if t.Kind() == reflect.Slice {
		if items, ok := listItems(arg); ok {
			res := reflect.MakeSlice(t, len(items), len(items))
			for i, item := range items {
				ev, err := convertArg(item, t.Elem())
				if err != nil {
					return reflect.Value{}, err
				}
				res.Index(i).Set(ev)
			}
			return res, nil
		}
	}
	return reflect.Value{}, typeErrorf("cannot use %s as %s", Kind(arg), t)
}

func callRets(rets []reflect.Value) (any, error) {
	if n := len(rets); n > 0 && rets[n-1].Type() == errorType {
		if err := rets[n-1].Interface(); err != nil {
			return nil, err.(error)
		}
		rets = rets[:n-1]
	}
	switch len(rets) {
	case 0:
		return nil, nil
	case 1:
		return rets[0].Interface(), nil
	}
	res := make([]any, len(rets))
	for i, r := range rets {
		res[i] = r.Interface()
	}
	return res, nil
}
