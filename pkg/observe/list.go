package observe

import (
	"sort"
	"strconv"

	"src.circular.dev/pkg/events"
	"src.circular.dev/pkg/vals"
)

// List is an observable list.
type List struct {
	em    events.Emitter
	items []any
}

// NewList returns a new List with the given items, which are wrapped.
func NewList(items ...any) *List {
	l := &List{items: make([]any, len(items))}
	for i, item := range items {
		l.items[i] = Wrap(item)
	}
	return l
}

// Events returns the emitter of the list.
func (l *List) Events() *events.Emitter { return &l.em }

func (l *List) emit(c *Change) {
	c.Object = l
	l.em.Emit(EventChange, c)
}

// Len returns the number of items.
func (l *List) Len() int { return len(l.items) }

// Items returns the items of the list. The caller must not modify the
// returned slice.
func (l *List) Items() []any { return l.items }

// Repr returns the representation of the list.
func (l *List) Repr() string { return vals.ReprList(l.items) }

func (l *List) index(what string, i int) (int, error) {
	j := i
	if j < 0 {
		j += len(l.items)
	}
	if j < 0 || j >= len(l.items) {
		return 0, vals.OutOfRange{What: what, Len: len(l.items), Actual: strconv.Itoa(i)}
	}
	return j, nil
}

// Get returns the item at index i, which may be negative.
func (l *List) Get(i int) (any, error) {
	j, err := l.index("list index", i)
	if err != nil {
		return nil, err
	}
	return l.items[j], nil
}

// Set replaces the item at index i.
func (l *List) Set(i int, v any) error {
	j, err := l.index("list assignment index", i)
	if err != nil {
		return err
	}
	v = Wrap(v)
	old := l.items[j]
	l.items[j] = v
	l.emit(&Change{Kind: Set, Key: j, Old: old, HasOld: true, Value: v, HasValue: true})
	return nil
}

// SetIndex implements vals.IndexSetter.
func (l *List) SetIndex(k, v any) error {
	i, ok := k.(int)
	if !ok {
		return vals.TypeError{Message: "list indices must be integers, not " + vals.Kind(k)}
	}
	return l.Set(i, v)
}

// Delete removes the item at index i.
func (l *List) Delete(i int) error {
	_, err := l.Pop(i)
	return err
}

// Pop removes and returns the item at index i.
func (l *List) Pop(i int) (any, error) {
	j, err := l.index("pop index", i)
	if err != nil {
		return nil, err
	}
	old := l.items[j]
	l.items = append(l.items[:j:j], l.items[j+1:]...)
	l.emit(&Change{Kind: Delete, Key: j, Old: old, HasOld: true})
	return old, nil
}

// Append appends an item.
func (l *List) Append(v any) {
	v = Wrap(v)
	l.items = append(l.items, v)
	l.emit(&Change{Kind: Append, Key: len(l.items) - 1, Value: v, HasValue: true})
}

// Insert inserts an item before index i. Like in Python, out-of-range indices
// are clamped.
func (l *List) Insert(i int, v any) {
	n := len(l.items)
	if i < 0 {
		i += n
		if i < 0 {
			i = 0
		}
	} else if i > n {
		i = n
	}
	v = Wrap(v)
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
	l.emit(&Change{Kind: Insert, Key: i, Value: v, HasValue: true})
}

// IndexOf returns the index of the first item equal to v, or -1.
func (l *List) IndexOf(v any) int {
	for i, item := range l.items {
		if vals.Equal(item, v) {
			return i
		}
	}
	return -1
}

// Remove removes the first item equal to v.
func (l *List) Remove(v any) error {
	i := l.IndexOf(v)
	if i < 0 {
		return vals.TypeError{Message: "list.remove(x): x not in list"}
	}
	old := l.items[i]
	l.items = append(l.items[:i:i], l.items[i+1:]...)
	l.emit(&Change{Kind: Remove, Key: i, Old: old, HasOld: true})
	return nil
}

// Clear removes all items.
func (l *List) Clear() {
	old := l.items
	l.items = nil
	l.emit(&Change{Kind: Clear, Old: old, HasOld: true})
}

// Extend appends all the given items.
func (l *List) Extend(items []any) {
	start := len(l.items)
	added := make([]any, len(items))
	for i, item := range items {
		added[i] = Wrap(item)
	}
	l.items = append(l.items, added...)
	l.emit(&Change{Kind: Extend, Key: start, Value: added, HasValue: true})
}

// Sort sorts the list in place, using the < operator of the expression
// language. The sort is stable.
func (l *List) Sort(reverse bool) error {
	var err error
	sorted := append([]any(nil), l.items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if reverse {
			a, b = b, a
		}
		less, e := vals.Compare(vals.OpLess, a, b)
		if e != nil && err == nil {
			err = e
		}
		return less
	})
	if err != nil {
		return err
	}
	l.items = sorted
	l.emit(&Change{Kind: Sort})
	return nil
}

// Reverse reverses the list in place.
func (l *List) Reverse() {
	for i, j := 0, len(l.items)-1; i < j; i, j = i+1, j-1 {
		l.items[i], l.items[j] = l.items[j], l.items[i]
	}
	l.emit(&Change{Kind: Reverse})
}

// GetAttr implements vals.AttrGetter, exposing the methods of Python lists.
func (l *List) GetAttr(name string) (any, bool) {
	switch name {
	case "append":
		return method1(func(v any) (any, error) { l.Append(v); return nil, nil }), true
	case "insert":
		return vals.Func(func(args []any, kwargs vals.Kwargs) (any, error) {
			if len(args) != 2 || len(kwargs) > 0 {
				return nil, vals.TypeError{Message: "insert expected 2 arguments"}
			}
			i, ok := args[0].(int)
			if !ok {
				return nil, vals.TypeError{Message: "list indices must be integers, not " + vals.Kind(args[0])}
			}
			l.Insert(i, args[1])
			return nil, nil
		}), true
	case "remove":
		return method1(func(v any) (any, error) { return nil, l.Remove(v) }), true
	case "pop":
		return vals.Func(func(args []any, kwargs vals.Kwargs) (any, error) {
			if len(args) > 1 || len(kwargs) > 0 {
				return nil, vals.TypeError{Message: "pop expected at most 1 argument"}
			}
			i := -1
			if len(args) == 1 {
				var ok bool
				if i, ok = args[0].(int); !ok {
					return nil, vals.TypeError{Message: "list indices must be integers, not " + vals.Kind(args[0])}
				}
			}
			return l.Pop(i)
		}), true
	case "clear":
		return method0(func() { l.Clear() }), true
	case "extend":
		return method1(func(v any) (any, error) {
			items, err := vals.Iterate(v)
			if err != nil {
				return nil, err
			}
			l.Extend(items)
			return nil, nil
		}), true
	case "sort":
		return vals.Func(func(args []any, kwargs vals.Kwargs) (any, error) {
			if len(args) > 0 {
				return nil, vals.TypeError{Message: "sort() takes no positional arguments"}
			}
			return nil, l.Sort(vals.Bool(kwargs["reverse"]))
		}), true
	case "reverse":
		return method0(func() { l.Reverse() }), true
	}
	return vals.ListMethod(l.items, name)
}

func method0(f func()) vals.Func {
	return func(args []any, kwargs vals.Kwargs) (any, error) {
		if len(args) > 0 || len(kwargs) > 0 {
			return nil, vals.TypeError{Message: "method takes no arguments"}
		}
		f()
		return nil, nil
	}
}

func method1(f func(any) (any, error)) vals.Func {
	return func(args []any, kwargs vals.Kwargs) (any, error) {
		if len(args) != 1 || len(kwargs) > 0 {
			return nil, vals.TypeError{Message: "method takes exactly one argument"}
		}
		return f(args[0])
	}
}
