package expr

import (
	"strings"

	"src.circular.dev/pkg/observe"
	"src.circular.dev/pkg/vals"
)

// List is a list literal.
type List struct {
	node
	Items []Node
}

func newList(items []Node) *List {
	l := &List{Items: items}
	l.init(l)
	return l
}

func (l *List) String() string {
	parts := make([]string, len(l.Items))
	for i, item := range l.Items {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (l *List) Clone() Node { return newList(cloneAll(l.Items)) }

func (l *List) children() []Node { return l.Items }

func (l *List) compute(force bool) (any, error) {
	values, err := evalAll(l.Items, force)
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (l *List) evalIn(ctx Context) (any, error) { return evalAllIn(l.Items, ctx) }

// ListCompr is a list comprehension, like [x*2 for x in lst if x > 0].
//
// The loop variable is bound in the context while evaluating Expr and Cond
// for each element, and the previous binding is restored afterwards. When
// the source list of a bound ListCompr gets an element appended, the node
// appends the corresponding result to its cached value and stays clean. An
// in-place mutation of any element makes the node dirty.
type ListCompr struct {
	node
	Expr Node
	Var  string
	Src  Node
	Cond Node
	kids []Node

	elems []*valueObserver
}

func newListCompr(expr Node, v string, src, cond Node) *ListCompr {
	lc := &ListCompr{Expr: expr, Var: v, Src: src, Cond: cond}
	lc.kids = []Node{src, expr}
	if cond != nil {
		lc.kids = append(lc.kids, cond)
	}
	lc.init(lc)
	return lc
}

func (lc *ListCompr) String() string {
	s := "[" + lc.Expr.String() + " for " + lc.Var + " in " + lc.Src.String()
	if lc.Cond != nil {
		s += " if " + lc.Cond.String()
	}
	return s + "]"
}

func (lc *ListCompr) Clone() Node {
	var cond Node
	if lc.Cond != nil {
		cond = lc.Cond.Clone()
	}
	return newListCompr(lc.Expr.Clone(), lc.Var, lc.Src.Clone(), cond)
}

func (lc *ListCompr) children() []Node { return lc.kids }

func evalForced(n Node) (any, error) { return n.Eval(true) }

func (lc *ListCompr) compute(force bool) (any, error) {
	src, err := lc.Src.Eval(force)
	if err != nil {
		return nil, err
	}
	if lc.ctx == nil {
		return nil, evalError(lc, ErrNoContext)
	}
	res, err := lc.collect(lc.ctx, src, evalForced)
	if err == nil {
		lc.watchElems(src)
	}
	return res, err
}

func (lc *ListCompr) watchElems(src any) {
	lc.stopElems()
	items, _ := vals.Iterate(src)
	for _, item := range items {
		lc.watchElem(item)
	}
}

func (lc *ListCompr) watchElem(item any) {
	o := &valueObserver{}
	o.observe(item, func(*observe.Change) { lc.markDirty() })
	if o.b != nil {
		lc.elems = append(lc.elems, o)
	}
}

func (lc *ListCompr) stopElems() {
	for _, o := range lc.elems {
		o.stop()
	}
	lc.elems = nil
}

func (lc *ListCompr) unbindSelf() { lc.stopElems() }

func (lc *ListCompr) evalIn(ctx Context) (any, error) {
	src, err := lc.Src.EvalWith(ctx)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		return nil, evalError(lc, ErrNoContext)
	}
	return lc.collect(ctx, src, func(n Node) (any, error) { return n.EvalWith(ctx) })
}

func (lc *ListCompr) collect(ctx Context, src any, eval func(Node) (any, error)) (any, error) {
	items, err := vals.Iterate(src)
	if err != nil {
		return nil, evalError(lc.Src, err)
	}
	res := []any{}
	for _, item := range items {
		v, ok, err := lc.each(ctx, item, eval)
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, v)
		}
	}
	return res, nil
}

// Evaluates the condition and the expression for one element. The boolean
// result is false if the condition excludes the element.
func (lc *ListCompr) each(ctx Context, item any, eval func(Node) (any, error)) (any, bool, error) {
	ctx.Save(lc.Var)
	defer ctx.Restore(lc.Var)
	ctx.SetQuiet(lc.Var, item)
	if lc.Cond != nil {
		c, err := eval(lc.Cond)
		if err != nil {
			return nil, false, err
		}
		if !vals.Bool(c) {
			return nil, false, nil
		}
	}
	v, err := eval(lc.Expr)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (lc *ListCompr) childChanged(ch Node, c *Change) {
	if ch == lc.Src && c.Mutation != nil && !c.HasValue &&
		c.Mutation.Kind == observe.Append && lc.CacheStatus() && lc.ctx != nil {
		v, ok, err := lc.each(lc.ctx, c.Mutation.Value, evalForced)
		if err == nil {
			lc.watchElem(c.Mutation.Value)
			if ok {
				old := lc.cache.([]any)
				lc.update(append(old[:len(old):len(old)], v))
			}
			return
		}
	}
	lc.markDirty()
}

// Fragment is an interpolated expression inside a string, like {{ x }}. Its
// value is the string form of the expression, or the empty string when the
// expression is not defined.
type Fragment struct {
	node
	Expr Node
}

func newFragment(expr Node) *Fragment {
	f := &Fragment{Expr: expr}
	f.init(f)
	return f
}

func (f *Fragment) String() string { return "{{ " + f.Expr.String() + " }}" }

func (f *Fragment) Clone() Node { return newFragment(f.Expr.Clone()) }

func (f *Fragment) children() []Node { return []Node{f.Expr} }

func (f *Fragment) compute(force bool) (any, error) {
	v, err := f.Expr.Eval(force)
	if err != nil {
		return "", nil
	}
	return vals.ToString(v), nil
}

func (f *Fragment) evalIn(ctx Context) (any, error) {
	v, err := f.Expr.EvalWith(ctx)
	if err != nil {
		return "", nil
	}
	return vals.ToString(v), nil
}

func (f *Fragment) childChanged(_ Node, c *Change) {
	if c.HasValue {
		f.update(vals.ToString(c.Value))
		return
	}
	f.markDirty()
}
