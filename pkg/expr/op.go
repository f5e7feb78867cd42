package expr

import (
	"errors"
	"strings"

	"src.circular.dev/pkg/vals"
)

// Operator priorities, lowest first.
const (
	prioCompare = 0
	prioNot     = 1
	prioAdd     = 2
	prioMul     = 3
	prioPow     = 4
	prioPostfix = 5
)

var binaryPriority = map[string]int{
	"==": prioCompare, "!=": prioCompare, "<": prioCompare, ">": prioCompare,
	"<=": prioCompare, ">=": prioCompare, "and": prioCompare, "or": prioCompare,
	"is": prioCompare, "is not": prioCompare, "in": prioCompare,
	"+": prioAdd, "-": prioAdd,
	"*": prioMul, "/": prioMul, "//": prioMul, "%": prioMul,
	"**": prioPow,
}

var arithmetic = map[string]func(x, y any) (any, error){
	"+": vals.Add, "-": vals.Sub, "*": vals.Mul, "/": vals.Div,
	"//": vals.FloorDiv, "%": vals.Mod, "**": vals.Pow,
}

// Returns the priority of the operator at the root of n, used to decide
// where parentheses are needed.
func priority(n Node) int {
	switch n := n.(type) {
	case *Op:
		switch {
		case n.Left == nil && n.Op == "-":
			return prioPow
		case n.Left == nil || n.Op == "()":
			return prioPostfix
		}
		return binaryPriority[n.Op]
	case *Const:
		if vals.IsNum(n.V) {
			if neg, _ := vals.Compare(vals.OpLess, n.V, 0); neg {
				return prioPow
			}
		}
	}
	return prioPostfix
}

func paren(n Node, needed bool) string {
	if needed {
		return "(" + n.String() + ")"
	}
	return n.String()
}

var errNotCall = errors.New("expression is not a function call")

// Op is an operation. For unary operations ("-" and "not"), Left is nil. A
// call is an Op with Op "()" and a *FuncArgs as Right.
type Op struct {
	node
	Op    string
	Left  Node
	Right Node
	kids  []Node
}

func newOp(op string, left, right Node) *Op {
	o := &Op{Op: op, Left: left, Right: right}
	if left == nil {
		o.kids = []Node{right}
	} else {
		o.kids = []Node{left, right}
	}
	o.init(o)
	return o
}

func (o *Op) String() string {
	switch {
	case o.Left == nil && o.Op == "not":
		return "(not " + paren(o.Right, priority(o.Right) < prioNot) + ")"
	case o.Left == nil:
		return o.Op + paren(o.Right, priority(o.Right) < prioPow)
	case o.Op == "()":
		return paren(o.Left, priority(o.Left) < prioPostfix) + "(" + o.Right.String() + ")"
	case o.Op == "**":
		return paren(o.Left, priority(o.Left) <= prioPow) + "**" + paren(o.Right, priority(o.Right) < prioPow)
	}
	p := binaryPriority[o.Op]
	return paren(o.Left, priority(o.Left) < p) + " " + o.Op + " " + paren(o.Right, priority(o.Right) <= p)
}

func (o *Op) Clone() Node {
	var left Node
	if o.Left != nil {
		left = o.Left.Clone()
	}
	return newOp(o.Op, left, o.Right.Clone())
}

func (o *Op) IsFunctionCall() bool { return o.Op == "()" }

func (o *Op) children() []Node { return o.kids }

func (o *Op) compute(force bool) (any, error) {
	values, err := evalAll(o.kids, force)
	if err != nil {
		return nil, err
	}
	return o.apply(values)
}

func (o *Op) evalIn(ctx Context) (any, error) {
	values, err := evalAllIn(o.kids, ctx)
	if err != nil {
		return nil, err
	}
	return o.apply(values)
}

func (o *Op) apply(values []any) (any, error) {
	if o.Left == nil {
		if o.Op == "not" {
			return vals.Not(values[0]), nil
		}
		v, err := vals.Neg(values[0])
		return v, evalError(o, err)
	}
	l, r := values[0], values[1]
	switch o.Op {
	case "()":
		args := r.(Args)
		v, err := vals.Call(l, args.Positional, args.Keyword)
		return v, evalError(o, err)
	case "and":
		if !vals.Bool(l) {
			return l, nil
		}
		return r, nil
	case "or":
		if vals.Bool(l) {
			return l, nil
		}
		return r, nil
	case "==":
		return vals.Equal(l, r), nil
	case "!=":
		return !vals.Equal(l, r), nil
	case "is":
		return vals.Is(l, r), nil
	case "is not":
		return !vals.Is(l, r), nil
	case "in":
		v, err := vals.In(l, r)
		return v, evalError(o, err)
	case vals.OpLess, vals.OpLessEq, vals.OpGreater, vals.OpGreaterEq:
		v, err := vals.Compare(o.Op, l, r)
		return v, evalError(o, err)
	}
	v, err := arithmetic[o.Op](l, r)
	return v, evalError(o, err)
}

// Call calls a function call expression, appending args to the positional
// arguments in the expression and adding kwargs to its keyword arguments.
// Keyword arguments in kwargs take precedence.
func (o *Op) Call(args []any, kwargs vals.Kwargs) (any, error) {
	if o.Op != "()" {
		return nil, evalError(o, errNotCall)
	}
	fn, err := o.Left.Eval(false)
	if err != nil {
		return nil, err
	}
	static, err := o.Right.Eval(false)
	if err != nil {
		return nil, err
	}
	merged := static.(Args).merge(args, kwargs)
	v, err := vals.Call(fn, merged.Positional, merged.Keyword)
	return v, evalError(o, err)
}

// Args is the value of a FuncArgs node.
type Args struct {
	Positional []any
	Keyword    vals.Kwargs
}

func (a Args) merge(args []any, kwargs vals.Kwargs) Args {
	res := Args{Positional: append(a.Positional[:len(a.Positional):len(a.Positional)], args...)}
	if len(a.Keyword)+len(kwargs) > 0 {
		res.Keyword = vals.Kwargs{}
		for k, v := range a.Keyword {
			res.Keyword[k] = v
		}
		for k, v := range kwargs {
			res.Keyword[k] = v
		}
	}
	return res
}

// FuncArgs is the argument list of a call.
type FuncArgs struct {
	node
	Positional []Node
	KwNames    []string
	KwValues   []Node
	kids       []Node
}

func newFuncArgs(positional []Node, kwNames []string, kwValues []Node) *FuncArgs {
	a := &FuncArgs{Positional: positional, KwNames: kwNames, KwValues: kwValues}
	a.kids = append(append([]Node(nil), positional...), kwValues...)
	a.init(a)
	return a
}

func (a *FuncArgs) String() string {
	parts := make([]string, 0, len(a.kids))
	for _, p := range a.Positional {
		parts = append(parts, p.String())
	}
	for i, name := range a.KwNames {
		parts = append(parts, name+"="+a.KwValues[i].String())
	}
	return strings.Join(parts, ", ")
}

func (a *FuncArgs) Clone() Node {
	return newFuncArgs(cloneAll(a.Positional), a.KwNames, cloneAll(a.KwValues))
}

func (a *FuncArgs) children() []Node { return a.kids }

func (a *FuncArgs) compute(force bool) (any, error) {
	values, err := evalAll(a.kids, force)
	if err != nil {
		return nil, err
	}
	return a.args(values), nil
}

func (a *FuncArgs) evalIn(ctx Context) (any, error) {
	values, err := evalAllIn(a.kids, ctx)
	if err != nil {
		return nil, err
	}
	return a.args(values), nil
}

func (a *FuncArgs) args(values []any) Args {
	n := len(a.Positional)
	res := Args{Positional: values[:n:n]}
	if len(a.KwNames) > 0 {
		res.Keyword = make(vals.Kwargs, len(a.KwNames))
		for i, name := range a.KwNames {
			res.Keyword[name] = values[n+i]
		}
	}
	return res
}
