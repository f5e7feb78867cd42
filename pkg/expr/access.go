package expr

import (
	"src.circular.dev/pkg/observe"
	"src.circular.dev/pkg/vals"
)

// Attr is an attribute access, like a.b.
//
// Besides its child, a bound Attr observes the object it accesses, so that
// setting the attribute updates the node without evaluating the child again.
type Attr struct {
	node
	Obj       Node
	Name      string
	container valueObserver
	value     valueObserver
}

func newAttr(obj Node, name string) *Attr {
	a := &Attr{Obj: obj, Name: name}
	a.init(a)
	return a
}

func (a *Attr) String() string {
	return paren(a.Obj, priority(a.Obj) < prioPostfix) + "." + a.Name
}

func (a *Attr) Clone() Node { return newAttr(a.Obj.Clone(), a.Name) }

func (a *Attr) IsAssignable() bool { return true }

func (a *Attr) Assign(v any) error {
	obj, err := a.Obj.Eval(false)
	if err != nil {
		return assignError(a, err)
	}
	if err := vals.SetAttr(obj, a.Name, v); err != nil {
		return assignError(a, err)
	}
	return nil
}

func (a *Attr) children() []Node { return []Node{a.Obj} }

func (a *Attr) unbindSelf() {
	a.container.stop()
	a.value.stop()
}

func (a *Attr) compute(force bool) (any, error) {
	obj, err := a.Obj.Eval(force)
	if err != nil {
		a.unbindSelf()
		return nil, err
	}
	// Attributes of lists and maps are methods, which never change.
	if vals.IsList(obj) || vals.IsMap(obj) {
		a.container.stop()
	} else {
		a.container.observe(obj, a.containerChanged)
	}
	v, err := vals.GetAttr(obj, a.Name)
	if err != nil {
		a.value.stop()
		return nil, evalError(a, err)
	}
	a.value.observe(v, a.mutated)
	return v, nil
}

func (a *Attr) evalIn(ctx Context) (any, error) {
	obj, err := a.Obj.EvalWith(ctx)
	if err != nil {
		return nil, err
	}
	v, err := vals.GetAttr(obj, a.Name)
	return v, evalError(a, err)
}

func (a *Attr) containerChanged(c *observe.Change) {
	if a.dirty {
		return
	}
	switch {
	case c.Key == a.Name && c.Kind == observe.Set && c.HasValue:
		a.value.observe(c.Value, a.mutated)
		a.update(c.Value)
	case c.Key == a.Name || c.Kind == observe.Clear:
		a.value.stop()
		a.markDirty()
	}
}

func (a *Attr) childChanged(_ Node, c *Change) {
	if c.Mutation != nil && !c.HasValue && a.container.b != nil {
		// Mutations of the object are seen directly.
		return
	}
	a.markDirty()
}

// Index is an index or slice expression, like a[i] or a[i:j].
//
// A bound Index observes the list or map it indexes. Setting the indexed
// element updates the node directly; other structural mutations make it
// dirty.
type Index struct {
	node
	Obj       Node
	Sub       *Slice
	key       any
	container valueObserver
	value     valueObserver
}

func newIndex(obj Node, sub *Slice) *Index {
	ix := &Index{Obj: obj, Sub: sub}
	ix.init(ix)
	return ix
}

func (ix *Index) String() string {
	return paren(ix.Obj, priority(ix.Obj) < prioPostfix) + "[" + ix.Sub.String() + "]"
}

func (ix *Index) Clone() Node { return newIndex(ix.Obj.Clone(), ix.Sub.Clone().(*Slice)) }

func (ix *Index) IsAssignable() bool { return !ix.Sub.IsSlice }

func (ix *Index) Assign(v any) error {
	if ix.Sub.IsSlice {
		return assignError(ix, ErrNotAssignable)
	}
	values, err := evalAll(ix.children(), false)
	if err != nil {
		return assignError(ix, err)
	}
	if err := vals.SetIndex(values[0], values[1], v); err != nil {
		return assignError(ix, err)
	}
	return nil
}

func (ix *Index) children() []Node { return []Node{ix.Obj, ix.Sub} }

func (ix *Index) unbindSelf() {
	ix.container.stop()
	ix.value.stop()
}

func (ix *Index) compute(force bool) (any, error) {
	values, err := evalAll(ix.children(), force)
	obj := values[0]
	if ix.Obj.Defined() && (vals.IsList(obj) || vals.IsMap(obj)) {
		ix.container.observe(obj, ix.containerChanged)
	} else {
		ix.container.stop()
	}
	if err != nil {
		ix.value.stop()
		return nil, err
	}
	if ix.Sub.IsSlice {
		ix.value.stop()
		s := values[1].(sliceKey)
		v, err := vals.Slice(obj, s.start, s.stop, s.step)
		return v, evalError(ix, err)
	}
	ix.key = normKey(obj, values[1])
	v, err := vals.Index(obj, values[1])
	if err != nil {
		ix.value.stop()
		return nil, evalError(ix, err)
	}
	ix.value.observe(v, ix.mutated)
	return v, nil
}

func (ix *Index) evalIn(ctx Context) (any, error) {
	values, err := evalAllIn(ix.children(), ctx)
	if err != nil {
		return nil, err
	}
	if ix.Sub.IsSlice {
		s := values[1].(sliceKey)
		v, err := vals.Slice(values[0], s.start, s.stop, s.step)
		return v, evalError(ix, err)
	}
	v, err := vals.Index(values[0], values[1])
	return v, evalError(ix, err)
}

// Converts negative list indices to the non-negative ones used in changes.
func normKey(obj, key any) any {
	if i, ok := key.(int); ok && i < 0 && vals.IsList(obj) {
		if n, err := vals.Len(obj); err == nil {
			return i + n
		}
	}
	return key
}

func (ix *Index) containerChanged(c *observe.Change) {
	if ix.dirty {
		return
	}
	if ix.Sub.IsSlice {
		ix.markDirty()
		return
	}
	sameKey := c.Key != nil && vals.Equal(c.Key, ix.key)
	switch {
	case c.Kind == observe.Set && sameKey && c.HasValue:
		ix.value.observe(c.Value, ix.mutated)
		ix.update(c.Value)
	case c.Kind == observe.Set && !sameKey:
		// Another element.
	case c.Kind == observe.Delete && !sameKey && vals.IsMap(c.Object):
		// Another key; deleting from a list shifts the elements.
	default:
		ix.value.stop()
		ix.markDirty()
	}
}

func (ix *Index) childChanged(ch Node, c *Change) {
	if ch == ix.Obj && c.Mutation != nil && !c.HasValue && ix.container.b != nil {
		return
	}
	ix.markDirty()
}

// Slice is the part of an Index expression between the brackets. When
// IsSlice is false, Parts[0] is the index; otherwise Parts holds the start,
// stop and step of the slice, with nil for the omitted ones.
type Slice struct {
	node
	Parts   [3]Node
	IsSlice bool
	kids    []Node
}

type sliceKey struct{ start, stop, step any }

func newSlice(parts [3]Node, isSlice bool) *Slice {
	s := &Slice{Parts: parts, IsSlice: isSlice}
	for _, p := range parts {
		if p != nil {
			s.kids = append(s.kids, p)
		}
	}
	s.init(s)
	return s
}

func (s *Slice) String() string {
	if !s.IsSlice {
		return s.Parts[0].String()
	}
	part := func(i int) string {
		if s.Parts[i] == nil {
			return ""
		}
		return s.Parts[i].String()
	}
	str := part(0) + ":" + part(1)
	if s.Parts[2] != nil {
		str += ":" + part(2)
	}
	return str
}

func (s *Slice) Clone() Node {
	var parts [3]Node
	for i, p := range s.Parts {
		if p != nil {
			parts[i] = p.Clone()
		}
	}
	return newSlice(parts, s.IsSlice)
}

func (s *Slice) children() []Node { return s.kids }

func (s *Slice) compute(force bool) (any, error) {
	values, err := evalAll(s.kids, force)
	if err != nil {
		return nil, err
	}
	return s.key(values), nil
}

func (s *Slice) evalIn(ctx Context) (any, error) {
	values, err := evalAllIn(s.kids, ctx)
	if err != nil {
		return nil, err
	}
	return s.key(values), nil
}

func (s *Slice) key(values []any) any {
	if !s.IsSlice {
		return values[0]
	}
	var bounds [3]any
	j := 0
	for i, p := range s.Parts {
		if p != nil {
			bounds[i] = values[j]
			j++
		}
	}
	return sliceKey{bounds[0], bounds[1], bounds[2]}
}
