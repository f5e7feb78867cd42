package observe

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.circular.dev/pkg/testutil"
	"src.circular.dev/pkg/vals"
)

func changes(r *testutil.Recorder) []Change {
	var res []Change
	for _, d := range r.Data() {
		c := *d.(*Change)
		c.Object = nil
		res = append(res, c)
	}
	return res
}

func TestObserve_Primitive(t *testing.T) {
	for _, v := range []any{nil, 1, 1.5, "x", true} {
		em, err := Observe(v)
		if em != nil || !errors.Is(err, ErrPrimitive) {
			t.Errorf("Observe(%v) -> %v, %v, want ErrPrimitive", v, em, err)
		}
		if TryObserve(v) != nil {
			t.Errorf("TryObserve(%v) != nil", v)
		}
	}
	if _, err := Observe([]any{}); !errors.Is(err, ErrNotWrapped) {
		t.Errorf("Observe of plain list -> %v, want ErrNotWrapped", err)
	}
	var oerr *Error
	if _, err := Observe(1); !errors.As(err, &oerr) || oerr.Value != 1 {
		t.Errorf("Observe(1) error is not an *Error carrying the value")
	}
}

func TestObserve_Idempotent(t *testing.T) {
	l := NewList()
	em1, err1 := Observe(l)
	em2, err2 := Observe(l)
	if err1 != nil || err2 != nil || em1 != em2 {
		t.Errorf("observing twice gave %p, %p", em1, em2)
	}
}

func TestWrap_Recursive(t *testing.T) {
	v := Wrap(map[string]any{
		"colours": []any{map[string]any{"name": "Red"}},
		"n":       1,
	})
	m, ok := v.(*Map)
	if !ok {
		t.Fatalf("Wrap(map) -> %T, want *Map", v)
	}
	colours, _ := m.Get("colours")
	l, ok := colours.(*List)
	if !ok {
		t.Fatalf("nested list wrapped as %T", colours)
	}
	if _, ok := l.Items()[0].(*Map); !ok {
		t.Errorf("list element wrapped as %T", l.Items()[0])
	}
	if diff := cmp.Diff([]any{"colours", "n"}, m.Keys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	if got := Wrap([]string{"a"}); vals.Repr(got) != "['a']" {
		t.Errorf("Wrap([]string) -> %s", vals.Repr(got))
	}
	if got := Wrap(m); got != m {
		t.Errorf("Wrap of a wrapper is not identity")
	}

	back := Unwrap(m)
	want := map[string]any{"colours": []any{map[string]any{"name": "Red"}}, "n": 1}
	if diff := cmp.Diff(want, back); diff != "" {
		t.Errorf("Unwrap (-want +got):\n%s", diff)
	}
}

func TestList_Mutations(t *testing.T) {
	l := NewList(1, 2)
	r := testutil.Record(t, l.Events(), EventChange)

	l.Append(3)
	l.Set(0, 10)
	l.Insert(0, 0)
	l.Remove(2)
	l.Pop(-1)
	l.Extend([]any{5, 6})
	l.Reverse()
	l.Sort(false)
	l.Clear()

	want := []Change{
		{Kind: Append, Key: 2, Value: 3, HasValue: true},
		{Kind: Set, Key: 0, Old: 1, HasOld: true, Value: 10, HasValue: true},
		{Kind: Insert, Key: 0, Value: 0, HasValue: true},
		{Kind: Remove, Key: 2, Old: 2, HasOld: true},
		{Kind: Delete, Key: 2, Old: 3, HasOld: true},
		{Kind: Extend, Key: 2, Value: []any{5, 6}, HasValue: true},
		{Kind: Reverse},
		{Kind: Sort},
		{Kind: Clear, Old: []any{0, 5, 6, 10}, HasOld: true},
	}
	if diff := cmp.Diff(want, changes(r)); diff != "" {
		t.Errorf("changes (-want +got):\n%s", diff)
	}
	if l.Len() != 0 {
		t.Errorf("list not empty after Clear")
	}
}

func TestList_Errors(t *testing.T) {
	l := NewList(1)
	if err := l.Set(5, 0); err == nil {
		t.Errorf("Set out of range succeeded")
	}
	if err := l.Remove(9); err == nil {
		t.Errorf("Remove of absent value succeeded")
	}
	l.Append("x")
	if err := l.Sort(false); err == nil {
		t.Errorf("Sort of incomparable values succeeded")
	}
}

func TestList_AppendWraps(t *testing.T) {
	l := NewList()
	l.Append([]any{1})
	if _, ok := l.Items()[0].(*List); !ok {
		t.Errorf("appended list not wrapped: %T", l.Items()[0])
	}
}

func TestList_Methods(t *testing.T) {
	l := NewList(3, 1)
	call := func(name string, args []any, kwargs vals.Kwargs) {
		t.Helper()
		m, err := vals.GetAttr(l, name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := vals.Call(m, args, kwargs); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	call("append", []any{2}, nil)
	call("sort", nil, vals.Kwargs{"reverse": true})
	call("insert", []any{0, 9}, nil)
	if got := vals.Repr(l); got != "[9, 3, 2, 1]" {
		t.Errorf("after methods, list is %s", got)
	}
	idx, _ := vals.GetAttr(l, "index")
	if i, _ := vals.Call(idx, []any{2}, nil); i != 2 {
		t.Errorf("index(2) -> %v", i)
	}
}

func TestMap_Mutations(t *testing.T) {
	m := NewMap()
	r := testutil.Record(t, m.Events(), EventChange)

	m.Set("a", 1)
	m.Set("a", 2)
	m.Delete("a")
	m.Update(map[string]any{"b": 3})
	m.Clear()

	want := []Change{
		{Kind: Set, Key: "a", Value: 1, HasValue: true},
		{Kind: Set, Key: "a", Old: 1, HasOld: true, Value: 2, HasValue: true},
		{Kind: Delete, Key: "a", Old: 2, HasOld: true},
		{Kind: Set, Key: "b", Value: 3, HasValue: true},
		{Kind: Clear, Old: []any{"b"}, HasOld: true},
	}
	if diff := cmp.Diff(want, changes(r)); diff != "" {
		t.Errorf("changes (-want +got):\n%s", diff)
	}
	if err := m.Delete("zzz"); err == nil {
		t.Errorf("Delete of absent key succeeded")
	}
	if err := m.Set([]any{}, 1); err == nil {
		t.Errorf("Set with unhashable key succeeded")
	}
}

func TestMap_AsValue(t *testing.T) {
	m := MapOf(map[string]any{"x": 1, "y": "z"})
	if v, err := vals.Index(m, "y"); err != nil || v != "z" {
		t.Errorf("Index(m, y) -> %v, %v", v, err)
	}
	if err := vals.SetIndex(m, "x", 5); err != nil {
		t.Fatal(err)
	}
	if got := vals.Repr(m); got != "{'x': 5, 'y': 'z'}" {
		t.Errorf("Repr -> %s", got)
	}
	if _, err := vals.GetAttr(m, "x"); err == nil {
		t.Errorf("map keys are accessible as attributes")
	}
	if !vals.Equal(m, map[string]any{"x": 5, "y": "z"}) {
		t.Errorf("wrapped map not equal to plain map")
	}
}

func TestObject(t *testing.T) {
	o := NewObject(map[string]any{"name": "Red"})
	r := testutil.Record(t, o.Events(), EventChange)

	if err := vals.SetAttr(o, "name", "Reddish"); err != nil {
		t.Fatal(err)
	}
	if v, _ := vals.GetAttr(o, "name"); v != "Reddish" {
		t.Errorf("name -> %v", v)
	}
	o.DelAttr("name")
	want := []Change{
		{Kind: Set, Key: "name", Old: "Red", HasOld: true, Value: "Reddish", HasValue: true},
		{Kind: Delete, Key: "name", Old: "Reddish", HasOld: true},
	}
	if diff := cmp.Diff(want, changes(r)); diff != "" {
		t.Errorf("changes (-want +got):\n%s", diff)
	}
	if vals.Kind(o) != "object" {
		t.Errorf("Kind -> %s", vals.Kind(o))
	}
}
