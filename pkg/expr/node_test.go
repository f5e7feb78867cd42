package expr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.circular.dev/pkg/observe"
	"src.circular.dev/pkg/scope"
	"src.circular.dev/pkg/testutil"
	"src.circular.dev/pkg/vals"
)

func bind(t *testing.T, src string, ctx Context) (Node, *testutil.Recorder) {
	t.Helper()
	n, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) -> %v", src, err)
	}
	n.BindCtx(ctx)
	t.Cleanup(n.Unbind)
	return n, testutil.Record(t, n.Events(), EventChange)
}

func mustEval(t *testing.T, n Node, want any) {
	t.Helper()
	v, err := n.Eval(false)
	if err != nil {
		t.Fatalf("%s: Eval -> error %v", n, err)
	}
	if !cmp.Equal(observe.Unwrap(v), want) {
		t.Errorf("%s: Eval -> %v, want %v", n, v, want)
	}
}

func wantEvents(t *testing.T, r *testutil.Recorder, n int) {
	t.Helper()
	if r.Count() != n {
		t.Errorf("got %d change events, want %d: %v", r.Count(), n, r.Data())
	}
}

func lastChange(t *testing.T, r *testutil.Recorder) *Change {
	t.Helper()
	c, ok := r.Last().(*Change)
	if !ok {
		t.Fatalf("last event data is %v, want *Change", r.Last())
	}
	return c
}

func getList(ctx *scope.Scope, name string) *observe.List {
	v, _ := ctx.Get(name)
	return v.(*observe.List)
}

func TestNode_DependencyTracking(t *testing.T) {
	ctx := scope.FromMap(map[string]any{"a": 1, "b": 2, "c": 3, "x": 4, "d": 0}, nil)
	n, r := bind(t, "a*x**2+b*x+c*x", ctx)
	if !n.Dirty() {
		t.Errorf("freshly bound node is clean")
	}
	mustEval(t, n, 36)
	if n.Dirty() || !n.CacheStatus() {
		t.Errorf("node is dirty after Eval")
	}

	ctx.Set("x", 1)
	wantEvents(t, r, 1)
	if !n.Dirty() {
		t.Errorf("node is clean after a dependency changed")
	}
	ctx.Set("x", 2)
	wantEvents(t, r, 1)
	mustEval(t, n, 14)

	ctx.Set("d", 5)
	wantEvents(t, r, 1)
	if n.Dirty() {
		t.Errorf("node is dirty after an unrelated name changed")
	}

	ctx.Set("a", 0)
	wantEvents(t, r, 2)
	mustEval(t, n, 10)
}

func TestNode_UndefinedUntilSet(t *testing.T) {
	ctx := scope.FromMap(map[string]any{"a": 1, "b": -2, "c": 0.5}, nil)
	n, r := bind(t, "a*x**2 + b*x + c*x", ctx)
	if _, err := n.Eval(false); err == nil || n.Defined() || n.CacheStatus() {
		t.Errorf("expression with an undefined name is defined")
	}

	ctx.Set("d", 10)
	wantEvents(t, r, 0)

	for i, test := range []struct {
		x    any
		want any
	}{{0, 0}, {1, -0.5}} {
		ctx.Set("x", test.x)
		wantEvents(t, r, i+1)
		if v, ok := n.Value(); !ok || !vals.Equal(v, test.want) {
			t.Errorf("x = %v: Value() -> %v, %v, want %v", test.x, v, ok, test.want)
		}
	}
}

func TestNode_CachedValue(t *testing.T) {
	calls := 0
	ctx := scope.FromMap(map[string]any{
		"f": func(x int) int { calls++; return x },
		"y": 1,
	}, nil)
	n, _ := bind(t, "f(2) + y", ctx)
	mustEval(t, n, 3)
	mustEval(t, n, 3)
	if calls != 1 {
		t.Errorf("function called %d times, want 1", calls)
	}
	ctx.Set("y", 2)
	mustEval(t, n, 4)
	if calls != 1 {
		t.Errorf("function called again when only another operand changed")
	}
	n.Eval(true)
	if calls != 2 {
		t.Errorf("forced Eval did not call the function")
	}
	if v, ok := n.Value(); !ok || v != 4 {
		t.Errorf("Value() -> %v, %v", v, ok)
	}
}

func TestNode_Clone(t *testing.T) {
	ctx1 := scope.FromMap(map[string]any{"x": 1}, nil)
	ctx2 := scope.FromMap(map[string]any{"x": 10}, nil)
	n1, r1 := bind(t, "x + 1", ctx1)
	n2 := n1.Clone()
	n2.BindCtx(ctx2)
	defer n2.Unbind()
	r2 := testutil.Record(t, n2.Events(), EventChange)
	mustEval(t, n1, 2)
	mustEval(t, n2, 11)

	ctx1.Set("x", 5)
	wantEvents(t, r1, 1)
	wantEvents(t, r2, 0)
	if n2.Dirty() {
		t.Errorf("clone affected by the context of the original")
	}
	mustEval(t, n2, 11)

	n3 := n1.Clone()
	if !n3.Dirty() || n3.String() != n1.String() {
		t.Errorf("clone is not a fresh copy")
	}
	if _, err := n3.Eval(false); !errors.Is(err, ErrUndefinedName) {
		t.Errorf("unbound clone evaluates to error %v", err)
	}
}

func TestNode_Unbind(t *testing.T) {
	ctx := scope.FromMap(map[string]any{"x": 1, "lst": []any{1}}, nil)
	n, r := bind(t, "x + len(lst)", ctx)
	mustEval(t, n, 2)
	n.Unbind()
	ctx.Set("x", 2)
	getList(ctx, "lst").Append(2)
	wantEvents(t, r, 0)
}

func TestIdent(t *testing.T) {
	ctx := scope.FromMap(map[string]any{"x": 1}, nil)
	n, r := bind(t, "x", ctx)
	mustEval(t, n, 1)

	ctx.Set("x", 5)
	wantEvents(t, r, 1)
	if c := lastChange(t, r); !c.HasValue || c.Value != 5 {
		t.Errorf("got change %+v, want value 5", c)
	}
	if n.Dirty() {
		t.Errorf("ident is dirty after its name was set")
	}

	ctx.Delete("x")
	wantEvents(t, r, 2)
	if c := lastChange(t, r); c.HasValue {
		t.Errorf("change after Delete has a value")
	}
	if _, err := n.Eval(false); !errors.Is(err, ErrUndefinedName) {
		t.Errorf("Eval after Delete -> %v", err)
	}
	if n.Defined() || n.Dirty() {
		t.Errorf("failed Eval left defined=%v dirty=%v", n.Defined(), n.Dirty())
	}

	ctx.Set("x", 7)
	mustEval(t, n, 7)
}

func TestIdent_BaseScope(t *testing.T) {
	base := scope.FromMap(map[string]any{"x": 1, "y": 2}, nil)
	ctx := scope.FromMap(map[string]any{"y": 20}, base)
	n, r := bind(t, "x + y", ctx)
	mustEval(t, n, 21)

	base.Set("y", 3)
	wantEvents(t, r, 0)
	base.Set("x", 2)
	wantEvents(t, r, 1)
	mustEval(t, n, 22)
}

func TestConstantNames(t *testing.T) {
	ctx := scope.FromMap(map[string]any{"None": 1, "len": 2}, nil)
	n, r := bind(t, "len([None])", ctx)
	mustEval(t, n, 1)
	ctx.Set("len", 3)
	wantEvents(t, r, 0)
	if id := n.(*Op).Left; id.Clone() != id {
		t.Errorf("constant names are cloned")
	}
}

func TestNode_Mutation(t *testing.T) {
	ctx := scope.FromMap(map[string]any{"lst": []any{1, 2}}, nil)
	n, r := bind(t, "len(lst)", ctx)
	mustEval(t, n, 2)
	getList(ctx, "lst").Append(3)
	wantEvents(t, r, 1)
	mustEval(t, n, 3)

	// A mutated value is reported without making the node dirty.
	id, r2 := bind(t, "lst", ctx)
	id.Eval(false)
	getList(ctx, "lst").Append(4)
	wantEvents(t, r2, 1)
	if c := lastChange(t, r2); c.Mutation == nil || c.Mutation.Kind != observe.Append {
		t.Errorf("got change %+v, want a mutation", c)
	}
	if id.Dirty() {
		t.Errorf("ident dirty after its value was mutated")
	}
}

func TestAttr(t *testing.T) {
	obj := observe.NewObject(map[string]any{"a": 1})
	ctx := scope.FromMap(map[string]any{"obj": obj}, nil)
	n, r := bind(t, "obj.a", ctx)
	mustEval(t, n, 1)

	obj.SetAttr("a", 2)
	wantEvents(t, r, 1)
	if c := lastChange(t, r); !c.HasValue || c.Value != 2 {
		t.Errorf("got change %+v, want value 2", c)
	}
	obj.SetAttr("b", 3)
	wantEvents(t, r, 1)

	obj.DelAttr("a")
	wantEvents(t, r, 2)
	if _, err := n.Eval(false); err == nil {
		t.Errorf("deleted attribute evaluates")
	}
}

func TestAttr_Nested(t *testing.T) {
	inner := observe.NewObject(map[string]any{"c": 1})
	obj := observe.NewObject(map[string]any{"b": inner})
	ctx := scope.FromMap(map[string]any{"obj": obj}, nil)
	n, r := bind(t, "obj.b.c", ctx)
	mustEval(t, n, 1)

	inner.SetAttr("c", 2)
	wantEvents(t, r, 1)
	mustEval(t, n, 2)

	obj.SetAttr("b", observe.NewObject(map[string]any{"c": 5}))
	wantEvents(t, r, 2)
	mustEval(t, n, 5)

	// The old object is no longer observed.
	inner.SetAttr("c", 9)
	wantEvents(t, r, 2)
}

func TestAttr_Method(t *testing.T) {
	ctx := scope.FromMap(map[string]any{"m": map[string]any{"keys": 1}}, nil)
	n, r := bind(t, "len(m.keys())", ctx)
	mustEval(t, n, 1)
	m, _ := ctx.Get("m")
	m.(*observe.Map).Set("b", 2)
	wantEvents(t, r, 1)
	mustEval(t, n, 2)
}

func TestFuncChange(t *testing.T) {
	ctx := scope.FromMap(map[string]any{"f": func(x int) int { return x + 1 }}, nil)
	n, r := bind(t, "f(2)", ctx)
	mustEval(t, n, 3)
	ctx.Set("f", func(x int) int { return x * 10 })
	wantEvents(t, r, 1)
	mustEval(t, n, 20)
}

func TestIndex(t *testing.T) {
	ctx := scope.FromMap(map[string]any{"lst": []any{1, 2, 3}}, nil)
	lst := getList(ctx, "lst")
	n, r := bind(t, "lst[1]", ctx)
	neg, rneg := bind(t, "lst[-1]", ctx)
	mustEval(t, n, 2)
	mustEval(t, neg, 3)

	lst.Set(1, 5)
	wantEvents(t, r, 1)
	if c := lastChange(t, r); !c.HasValue || c.Value != 5 {
		t.Errorf("got change %+v, want value 5", c)
	}
	lst.Set(0, 9)
	wantEvents(t, r, 1)
	wantEvents(t, rneg, 0)

	lst.Set(2, 8)
	wantEvents(t, rneg, 1)
	mustEval(t, neg, 8)

	lst.Insert(0, 7)
	wantEvents(t, r, 2)
	mustEval(t, n, 9)
}

func TestIndex_OtherElements(t *testing.T) {
	ctx := scope.FromMap(map[string]any{
		"lst": []any{map[string]any{"x": 1, "y": 2, "z": 3}, 0},
		"a":   "x",
	}, nil)
	n, r := bind(t, "lst[0][a]", ctx)
	mustEval(t, n, 1)

	getList(ctx, "lst").Set(1, 2)
	wantEvents(t, r, 0)
	m, _ := getList(ctx, "lst").Get(0)
	m.(*observe.Map).Delete("z")
	wantEvents(t, r, 0)

	ctx.Set("a", "y")
	wantEvents(t, r, 1)
	mustEval(t, n, 2)
	m.(*observe.Map).Set("y", 4)
	wantEvents(t, r, 2)
	mustEval(t, n, 4)
}

func TestIndex_Slice(t *testing.T) {
	ctx := scope.FromMap(map[string]any{"lst": []any{1, 2, 3}}, nil)
	n, r := bind(t, "lst[1:]", ctx)
	mustEval(t, n, []any{2, 3})
	getList(ctx, "lst").Set(0, 0)
	wantEvents(t, r, 1)
	mustEval(t, n, []any{2, 3})
}

func TestListCompr_Append(t *testing.T) {
	ctx := scope.FromMap(map[string]any{"lst": []any{1, 2, 3}}, nil)
	lst := getList(ctx, "lst")
	n, r := bind(t, "[x*2 for x in lst if x != 2]", ctx)
	mustEval(t, n, []any{2, 6})

	lst.Append(4)
	wantEvents(t, r, 1)
	if !n.CacheStatus() {
		t.Errorf("comprehension dirty after an append")
	}
	if c := lastChange(t, r); !c.HasValue || !cmp.Equal(c.Value, []any{2, 6, 8}) {
		t.Errorf("got change %+v, want the extended list", c)
	}

	lst.Append(2)
	wantEvents(t, r, 1)
	mustEval(t, n, []any{2, 6, 8})

	lst.Insert(0, 5)
	wantEvents(t, r, 2)
	mustEval(t, n, []any{10, 2, 6, 8})

	if ctx.Has("x") {
		t.Errorf("loop variable leaked into the context")
	}
}

func TestListCompr_RestoresShadowedName(t *testing.T) {
	ctx := scope.FromMap(map[string]any{"x": "outer", "lst": []any{1, 2}}, nil)
	n, r := bind(t, "[x for x in lst] + [x]", ctx)
	mustEval(t, n, []any{1, 2, "outer"})
	wantEvents(t, r, 0)
}

func TestAssign(t *testing.T) {
	obj := observe.NewObject(map[string]any{"a": 1})
	ctx := scope.FromMap(map[string]any{"obj": obj, "lst": []any{1, 2}}, nil)

	x, _ := bind(t, "x", ctx)
	if err := x.Assign(3); err != nil {
		t.Errorf("Assign -> %v", err)
	}
	if v, _ := ctx.Get("x"); v != 3 {
		t.Errorf("x = %v after assignment", v)
	}

	a, _ := bind(t, "obj.a", ctx)
	a.Assign(7)
	if v, _ := obj.GetAttr("a"); v != 7 {
		t.Errorf("obj.a = %v after assignment", v)
	}

	i, _ := bind(t, "lst[-1]", ctx)
	i.Assign("z")
	if v, _ := getList(ctx, "lst").Get(1); v != "z" {
		t.Errorf("lst[-1] = %v after assignment", v)
	}

	for _, src := range []string{"True", "1 + x", "lst[0:1]", "f(x)", "[x]"} {
		n, _ := bind(t, src, ctx)
		err := n.Assign(1)
		var aerr *AssignError
		if !errors.Is(err, ErrNotAssignable) || !errors.As(err, &aerr) {
			t.Errorf("%s: Assign -> %v, want ErrNotAssignable", src, err)
		}
	}

	y, _ := Parse("y")
	if err := y.Assign(1); !errors.Is(err, ErrNoContext) {
		t.Errorf("unbound Assign -> %v", err)
	}
}

func TestOpCall(t *testing.T) {
	var got vals.Kwargs
	ctx := scope.FromMap(map[string]any{
		"handler": func(x int, kw vals.Kwargs) int {
			got = kw
			return x
		},
		"add": func(x, y int) int { return x + y },
	}, nil)

	n, _ := bind(t, "handler(1, tag='t')", ctx)
	v, err := n.(*Op).Call(nil, vals.Kwargs{"event": "click"})
	if err != nil || v != 1 {
		t.Errorf("Call -> %v, %v", v, err)
	}
	want := vals.Kwargs{"tag": "t", "event": "click"}
	if !cmp.Equal(got, want) {
		t.Errorf("handler got kwargs %v, want %v", got, want)
	}
	n.(*Op).Call(nil, vals.Kwargs{"tag": "u"})
	if got["tag"] != "u" {
		t.Errorf("extra kwargs do not take precedence")
	}

	add, _ := bind(t, "add(1)", ctx)
	if v, err := add.(*Op).Call([]any{2}, nil); err != nil || v != 3 {
		t.Errorf("Call with extra positional args -> %v, %v", v, err)
	}

	sum, _ := bind(t, "1 + 2", ctx)
	if _, err := sum.(*Op).Call(nil, nil); err == nil {
		t.Errorf("Call on a non-call succeeded")
	}
}

func TestEvalError(t *testing.T) {
	ctx := scope.FromMap(map[string]any{"lst": []any{}}, nil)
	n, _ := bind(t, "1 + lst[0]", ctx)
	_, err := n.Eval(false)
	var eerr *EvalError
	if !errors.As(err, &eerr) || eerr.Expr != "lst[0]" {
		t.Fatalf("got error %v, want EvalError for lst[0]", err)
	}
	if want := "cannot evaluate lst[0]: "; err.Error()[:len(want)] != want {
		t.Errorf("got message %q", err.Error())
	}
	if n.Defined() {
		t.Errorf("node defined after a failed Eval")
	}
	getList(ctx, "lst").Append(41)
	mustEval(t, n, 42)
}

func TestListCompr_ElementMutation(t *testing.T) {
	ctx := scope.FromMap(map[string]any{"cs": []any{
		map[string]any{"name": "Red"},
		map[string]any{"name": "Blue"},
	}}, nil)
	n, r := bind(t, "[c['name'] for c in cs]", ctx)
	mustEval(t, n, []any{"Red", "Blue"})

	first, _ := getList(ctx, "cs").Get(0)
	first.(*observe.Map).Set("name", "Reddish")
	wantEvents(t, r, 1)
	if !n.Dirty() {
		t.Errorf("comprehension clean after an element changed")
	}
	mustEval(t, n, []any{"Reddish", "Blue"})

	getList(ctx, "cs").Append(map[string]any{"name": "Green"})
	wantEvents(t, r, 2)
	last, _ := getList(ctx, "cs").Get(2)
	last.(*observe.Map).Set("name", "Lime")
	wantEvents(t, r, 3)
	mustEval(t, n, []any{"Reddish", "Blue", "Lime"})
}
