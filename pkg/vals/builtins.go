package vals

import (
	"math"
	"strconv"
	"strings"
)

// Builtins are the functions available to every expression without being
// bound in a context.
var Builtins = map[string]Func{
	"str": builtinStr,
	"int": builtinInt,
	"len": builtinLen,
}

func builtinStr(args []any, kwargs Kwargs) (any, error) {
	if err := checkArity("str", args, kwargs, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return "", nil
	}
	return ToString(args[0]), nil
}

func builtinInt(args []any, kwargs Kwargs) (any, error) {
	if err := checkArity("int", args, kwargs, 0, 2); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return 0, nil
	}
	if len(args) == 2 {
		s, ok := args[0].(string)
		if !ok {
			return nil, typeErrorf("int() can't convert non-string with explicit base")
		}
		base, err := intIndex("int() base", args[1])
		if err != nil {
			return nil, err
		}
		return parseInt(s, base)
	}
	switch v := args[0].(type) {
	case string:
		return parseInt(v, 10)
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, typeErrorf("cannot convert float %s to integer", formatFloat(v))
		}
		return int(v), nil
	}
	if n, ok := toNum(args[0]); ok {
		return n.i, nil
	}
	return nil, typeErrorf("int() argument must be a string or a number, not '%s'", Kind(args[0]))
}

func parseInt(s string, base int) (any, error) {
	t := strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	i, err := strconv.ParseInt(t, base, 0)
	if err != nil {
		return nil, typeErrorf("invalid literal for int() with base %d: %s", base, Quote(s))
	}
	return int(i), nil
}

func builtinLen(args []any, kwargs Kwargs) (any, error) {
	if err := checkArity("len", args, kwargs, 1, 1); err != nil {
		return nil, err
	}
	return Len(args[0])
}
