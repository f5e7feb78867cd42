package vals

import (
	"strings"
)

func checkArity(name string, args []any, kwargs Kwargs, min, max int) error {
	for k := range kwargs {
		return typeErrorf("%s() got an unexpected keyword argument '%s'", name, k)
	}
	if len(args) < min || len(args) > max {
		if min == max {
			return typeErrorf("%s() takes exactly %d argument(s) (%d given)", name, min, len(args))
		}
		return typeErrorf("%s() takes from %d to %d arguments (%d given)", name, min, max, len(args))
	}
	return nil
}

func stringArg(fname string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", typeErrorf("%s() argument must be str, not %s", fname, Kind(v))
	}
	return s, nil
}

type strFn func(s string, args []any) (any, error)

var stringMethods = map[string]struct {
	min, max int
	fn       strFn
}{
	"upper": {0, 0, func(s string, _ []any) (any, error) { return strings.ToUpper(s), nil }},
	"lower": {0, 0, func(s string, _ []any) (any, error) { return strings.ToLower(s), nil }},
	"strip": {0, 1, func(s string, args []any) (any, error) {
		return trim(s, args, strings.TrimSpace, strings.Trim)
	}},
	"lstrip": {0, 1, func(s string, args []any) (any, error) {
		return trim(s, args, func(s string) string { return strings.TrimLeft(s, " \t\n\r\v\f") }, strings.TrimLeft)
	}},
	"rstrip": {0, 1, func(s string, args []any) (any, error) {
		return trim(s, args, func(s string) string { return strings.TrimRight(s, " \t\n\r\v\f") }, strings.TrimRight)
	}},
	"startswith": {1, 1, func(s string, args []any) (any, error) {
		p, err := stringArg("startswith", args[0])
		return strings.HasPrefix(s, p), err
	}},
	"endswith": {1, 1, func(s string, args []any) (any, error) {
		p, err := stringArg("endswith", args[0])
		return strings.HasSuffix(s, p), err
	}},
	"find": {1, 1, func(s string, args []any) (any, error) {
		sub, err := stringArg("find", args[0])
		if err != nil {
			return nil, err
		}
		i := strings.Index(s, sub)
		if i < 0 {
			return -1, nil
		}
		return len([]rune(s[:i])), nil
	}},
	"count": {1, 1, func(s string, args []any) (any, error) {
		sub, err := stringArg("count", args[0])
		if err != nil {
			return nil, err
		}
		if sub == "" {
			return len([]rune(s)) + 1, nil
		}
		return strings.Count(s, sub), nil
	}},
	"replace": {2, 3, func(s string, args []any) (any, error) {
		old, err := stringArg("replace", args[0])
		if err != nil {
			return nil, err
		}
		new, err := stringArg("replace", args[1])
		if err != nil {
			return nil, err
		}
		n := -1
		if len(args) == 3 {
			if n, err = intIndex("replace() count", args[2]); err != nil {
				return nil, err
			}
		}
		return strings.Replace(s, old, new, n), nil
	}},
	"split": {0, 2, func(s string, args []any) (any, error) {
		var parts []string
		n := -1
		if len(args) == 2 {
			var err error
			if n, err = intIndex("split() maxsplit", args[1]); err != nil {
				return nil, err
			}
		}
		if len(args) == 0 || args[0] == nil {
			if n >= 0 {
				parts = splitFieldsN(s, n)
			} else {
				parts = strings.Fields(s)
			}
		} else {
			sep, err := stringArg("split", args[0])
			if err != nil {
				return nil, err
			}
			if sep == "" {
				return nil, typeErrorf("empty separator")
			}
			if n >= 0 {
				n++
			}
			parts = strings.SplitN(s, sep, n)
		}
		res := make([]any, len(parts))
		for i, p := range parts {
			res[i] = p
		}
		return res, nil
	}},
	"join": {1, 1, func(s string, args []any) (any, error) {
		items, err := Iterate(args[0])
		if err != nil {
			return nil, err
		}
		strs := make([]string, len(items))
		for i, item := range items {
			str, ok := item.(string)
			if !ok {
				return nil, typeErrorf("sequence item %d: expected str instance, %s found", i, Kind(item))
			}
			strs[i] = str
		}
		return strings.Join(strs, s), nil
	}},
}

func trim(s string, args []any, space func(string) string, cutset func(string, string) string) (any, error) {
	if len(args) == 0 || args[0] == nil {
		return space(s), nil
	}
	chars, err := stringArg("strip", args[0])
	if err != nil {
		return nil, err
	}
	return cutset(s, chars), nil
}

func splitFieldsN(s string, n int) []string {
	var parts []string
	rest := strings.TrimLeft(s, " \t\n\r\v\f")
	for i := 0; i < n && rest != ""; i++ {
		j := strings.IndexAny(rest, " \t\n\r\v\f")
		if j < 0 {
			break
		}
		parts = append(parts, rest[:j])
		rest = strings.TrimLeft(rest[j:], " \t\n\r\v\f")
	}
	if rest != "" {
		parts = append(parts, rest)
	}
	return parts
}

func stringMethod(s, name string) (Func, bool) {
	m, ok := stringMethods[name]
	if !ok {
		return nil, false
	}
	return func(args []any, kwargs Kwargs) (any, error) {
		if err := checkArity(name, args, kwargs, m.min, m.max); err != nil {
			return nil, err
		}
		return m.fn(s, args)
	}, true
}

// ListMethod returns the named non-mutating method of a list with the given
// items.
func ListMethod(items []any, name string) (Func, bool) {
	switch name {
	case "index":
		return func(args []any, kwargs Kwargs) (any, error) {
			if err := checkArity(name, args, kwargs, 1, 1); err != nil {
				return nil, err
			}
			for i, item := range items {
				if Equal(item, args[0]) {
					return i, nil
				}
			}
			return nil, typeErrorf("%s is not in list", Repr(args[0]))
		}, true
	case "count":
		return func(args []any, kwargs Kwargs) (any, error) {
			if err := checkArity(name, args, kwargs, 1, 1); err != nil {
				return nil, err
			}
			n := 0
			for _, item := range items {
				if Equal(item, args[0]) {
					n++
				}
			}
			return n, nil
		}, true
	}
	return nil, false
}

// MapMethod returns the named non-mutating method of a map.
func MapMethod(m Mapper, name string) (Func, bool) {
	switch name {
	case "keys":
		return func(args []any, kwargs Kwargs) (any, error) {
			if err := checkArity(name, args, kwargs, 0, 0); err != nil {
				return nil, err
			}
			return m.Keys(), nil
		}, true
	case "values", "items":
		return func(args []any, kwargs Kwargs) (any, error) {
			if err := checkArity(name, args, kwargs, 0, 0); err != nil {
				return nil, err
			}
			keys := m.Keys()
			res := make([]any, len(keys))
			for i, k := range keys {
				v, _ := m.Get(k)
				if name == "values" {
					res[i] = v
				} else {
					res[i] = []any{k, v}
				}
			}
			return res, nil
		}, true
	case "get":
		return func(args []any, kwargs Kwargs) (any, error) {
			if err := checkArity(name, args, kwargs, 1, 2); err != nil {
				return nil, err
			}
			if v, ok := m.Get(args[0]); ok {
				return v, nil
			}
			if len(args) == 2 {
				return args[1], nil
			}
			return nil, nil
		}, true
	}
	return nil, false
}
