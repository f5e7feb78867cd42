package vals

import (
	"math"
	"strings"
)

// num is the internal representation of a number during arithmetic. Booleans
// take part in arithmetic as the integers 0 and 1.
type num struct {
	isFloat bool
	i       int
	f       float64
}

func toNum(v any) (num, bool) {
	switch v := v.(type) {
	case bool:
		if v {
			return num{i: 1}, true
		}
		return num{}, true
	case int:
		return num{i: v}, true
	case int64:
		return num{i: int(v)}, true
	case int32:
		return num{i: int(v)}, true
	case uint:
		return num{i: int(v)}, true
	case float64:
		return num{isFloat: true, f: v}, true
	case float32:
		return num{isFloat: true, f: float64(v)}, true
	}
	return num{}, false
}

func (n num) float() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func (n num) value() any {
	if n.isFloat {
		return n.f
	}
	return n.i
}

func (n num) cmp(m num) int {
	if !n.isFloat && !m.isFloat {
		return cmpInt(n.i, m.i)
	}
	a, b := n.float(), m.float()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	case a == b:
		return 0
	}
	// NaN
	return 2
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// IsNum reports whether v takes part in arithmetic as a number.
func IsNum(v any) bool {
	_, ok := toNum(v)
	return ok
}

func unsupported(op string, x, y any) error {
	return typeErrorf("unsupported operand type(s) for %s: '%s' and '%s'", op, Kind(x), Kind(y))
}

// Add implements the + operator.
func Add(x, y any) (any, error) {
	if a, ok := toNum(x); ok {
		if b, ok := toNum(y); ok {
			if !a.isFloat && !b.isFloat {
				return addInt(a.i, b.i)
			}
			return a.float() + b.float(), nil
		}
		return nil, unsupported("+", x, y)
	}
	if xs, ok := x.(string); ok {
		if ys, ok := y.(string); ok {
			return xs + ys, nil
		}
		return nil, typeErrorf("can only concatenate str (not \"%s\") to str", Kind(y))
	}
	if xl, ok := listItems(x); ok {
		if yl, ok := listItems(y); ok {
			res := make([]any, 0, len(xl)+len(yl))
			return append(append(res, xl...), yl...), nil
		}
		return nil, typeErrorf("can only concatenate list (not \"%s\") to list", Kind(y))
	}
	return nil, unsupported("+", x, y)
}

// Sub implements the binary - operator.
func Sub(x, y any) (any, error) {
	a, ok1 := toNum(x)
	b, ok2 := toNum(y)
	if !ok1 || !ok2 {
		return nil, unsupported("-", x, y)
	}
	if !a.isFloat && !b.isFloat {
		if b.i == math.MinInt {
			return nil, ErrOverflow
		}
		return addInt(a.i, -b.i)
	}
	return a.float() - b.float(), nil
}

// Mul implements the * operator, including repetition of strings and lists.
func Mul(x, y any) (any, error) {
	a, ok1 := toNum(x)
	b, ok2 := toNum(y)
	switch {
	case ok1 && ok2:
		if !a.isFloat && !b.isFloat {
			return mulInt(a.i, b.i)
		}
		return a.float() * b.float(), nil
	case ok1 && !a.isFloat:
		if r, ok, err := repeat(y, a.i); ok {
			return r, err
		}
	case ok2 && !b.isFloat:
		if r, ok, err := repeat(x, b.i); ok {
			return r, err
		}
	}
	return nil, unsupported("*", x, y)
}

// MaxRepeat is the maximum length of a string or list built by repetition.
const MaxRepeat = 1 << 24

func repeat(v any, n int) (any, bool, error) {
	if n < 0 {
		n = 0
	}
	var size int
	if s, ok := v.(string); ok {
		size = len(s)
	} else if items, ok := listItems(v); ok {
		size = len(items)
	} else {
		return nil, false, nil
	}
	if size > 0 && n > MaxRepeat/size {
		return nil, true, ErrRepeatTooLarge
	}
	if s, ok := v.(string); ok {
		return strings.Repeat(s, n), true, nil
	}
	items, _ := listItems(v)
	res := make([]any, 0, size*n)
	for i := 0; i < n; i++ {
		res = append(res, items...)
	}
	return res, true, nil
}

// Div implements the / operator. The result is always a float64.
func Div(x, y any) (any, error) {
	a, ok1 := toNum(x)
	b, ok2 := toNum(y)
	if !ok1 || !ok2 {
		return nil, unsupported("/", x, y)
	}
	if b.float() == 0 {
		return nil, ErrDivideByZero
	}
	return a.float() / b.float(), nil
}

// FloorDiv implements the // operator, rounding toward negative infinity.
func FloorDiv(x, y any) (any, error) {
	a, ok1 := toNum(x)
	b, ok2 := toNum(y)
	if !ok1 || !ok2 {
		return nil, unsupported("//", x, y)
	}
	if b.float() == 0 {
		return nil, ErrDivideByZero
	}
	if !a.isFloat && !b.isFloat {
		if a.i == math.MinInt && b.i == -1 {
			return nil, ErrOverflow
		}
		q := a.i / b.i
		if (a.i%b.i != 0) && ((a.i < 0) != (b.i < 0)) {
			q--
		}
		return q, nil
	}
	return math.Floor(a.float() / b.float()), nil
}

// Mod implements the % operator. The result has the sign of the divisor.
func Mod(x, y any) (any, error) {
	a, ok1 := toNum(x)
	b, ok2 := toNum(y)
	if !ok1 || !ok2 {
		return nil, unsupported("%", x, y)
	}
	if b.float() == 0 {
		return nil, ErrDivideByZero
	}
	if !a.isFloat && !b.isFloat {
		r := a.i % b.i
		if r != 0 && (r < 0) != (b.i < 0) {
			r += b.i
		}
		return r, nil
	}
	fb := b.float()
	r := math.Mod(a.float(), fb)
	if r != 0 && (r < 0) != (fb < 0) {
		r += fb
	}
	return r, nil
}

// Pow implements the ** operator. Raising an integer to a non-negative
// integer power gives an integer; everything else gives a float64.
func Pow(x, y any) (any, error) {
	a, ok1 := toNum(x)
	b, ok2 := toNum(y)
	if !ok1 || !ok2 {
		return nil, unsupported("** or pow()", x, y)
	}
	if !a.isFloat && !b.isFloat && b.i >= 0 {
		return powInt(a.i, b.i)
	}
	if a.float() == 0 && b.float() < 0 {
		return nil, ErrDivideByZero
	}
	return math.Pow(a.float(), b.float()), nil
}

// Neg implements the unary - operator.
func Neg(x any) (any, error) {
	a, ok := toNum(x)
	if !ok {
		return nil, typeErrorf("bad operand type for unary -: '%s'", Kind(x))
	}
	if a.isFloat {
		return -a.f, nil
	}
	if a.i == math.MinInt {
		return nil, ErrOverflow
	}
	return -a.i, nil
}

func addInt(a, b int) (any, error) {
	c := a + b
	if (c > a) != (b > 0) {
		return nil, ErrOverflow
	}
	return c, nil
}

func mulInt(a, b int) (any, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		return nil, ErrOverflow
	}
	return c, nil
}

func powInt(base, exp int) (any, error) {
	res := 1
	for {
		if exp&1 == 1 {
			r, err := mulInt(res, base)
			if err != nil {
				return nil, err
			}
			res = r.(int)
		}
		exp >>= 1
		if exp == 0 {
			return res, nil
		}
		b, err := mulInt(base, base)
		if err != nil {
			return nil, err
		}
		base = b.(int)
	}
}
