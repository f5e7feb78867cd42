package vals

// Ordering operators supported by Compare.
const (
	OpLess      = "<"
	OpLessEq    = "<="
	OpGreater   = ">"
	OpGreaterEq = ">="
)

// Compare compares two values with one of the ordering operators and returns
// the result. Numbers compare by value, strings lexically and lists
// lexicographically; comparing other values is a TypeError, as is comparing
// values of different kinds.
func Compare(op string, x, y any) (bool, error) {
	c, err := cmp(op, x, y)
	if err != nil {
		return false, err
	}
	if c == 2 {
		// Unordered (NaN).
		return false, nil
	}
	switch op {
	case OpLess:
		return c < 0, nil
	case OpLessEq:
		return c <= 0, nil
	case OpGreater:
		return c > 0, nil
	case OpGreaterEq:
		return c >= 0, nil
	}
	return false, typeErrorf("unknown comparison operator %s", op)
}

func cmp(op string, x, y any) (int, error) {
	if a, ok := toNum(x); ok {
		if b, ok := toNum(y); ok {
			return a.cmp(b), nil
		}
	} else if xs, ok := x.(string); ok {
		if ys, ok := y.(string); ok {
			switch {
			case xs < ys:
				return -1, nil
			case xs > ys:
				return 1, nil
			}
			return 0, nil
		}
	} else if xl, ok := listItems(x); ok {
		if yl, ok := listItems(y); ok {
			for i := 0; i < len(xl) && i < len(yl); i++ {
				if Equal(xl[i], yl[i]) {
					continue
				}
				return cmp(op, xl[i], yl[i])
			}
			return cmpInt(len(xl), len(yl)), nil
		}
	}
	return 0, typeErrorf("'%s' not supported between instances of '%s' and '%s'", op, Kind(x), Kind(y))
}
