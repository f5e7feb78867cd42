// Package expr implements the expression language used in templates.
//
// The language is a small subset of Python expressions: arithmetic,
// comparisons, boolean operators, attribute access, indexing and slicing,
// calls with keyword arguments, list literals and list comprehensions.
//
// An expression is parsed into a tree of Node values. A tree can be evaluated
// once against a Context with EvalWith, or bound to a Context with BindCtx.
// A bound tree caches the values of its nodes and tracks the names and
// values it depends on: when one of them changes, the affected nodes become
// dirty and the root emits a "change" event. Only dirty nodes are
// recomputed by the next Eval.
package expr

import (
	"src.circular.dev/pkg/events"
	"src.circular.dev/pkg/observe"
)

// Context is what expressions are evaluated against. It is implemented by
// *scope.Scope.
type Context interface {
	Get(name string) (any, bool)
	// Set binds a name and emits a change.
	Set(name string, v any)
	// SetQuiet binds a name without emitting a change.
	SetQuiet(name string, v any)
	// Save and Restore push and pop the local binding of a name.
	Save(name string)
	Restore(name string)
	// Events returns the emitter of changes, which are *observe.Change
	// values keyed by name.
	Events() *events.Emitter
}

// EventChange is the name of the event emitted by bound nodes when their
// value may have changed.
const EventChange = observe.EventChange

// Change is the data of a "change" event emitted by a node.
type Change struct {
	// Value is the new value of the node, if HasValue is true. A node that
	// emits a change with a value stays clean.
	Value    any
	HasValue bool
	// Mutation is set when the value of the node is the same as before but
	// has been mutated in place.
	Mutation *observe.Change
}

// Node is a node of an expression tree.
type Node interface {
	// String returns a representation of the node in the expression syntax.
	String() string

	// Eval evaluates the node against the bound context. Unless force is
	// true, clean nodes return their cached values.
	Eval(force bool) (any, error)
	// EvalWith evaluates the node against ctx, without using or changing
	// any state of the node.
	EvalWith(ctx Context) (any, error)
	// Value returns the value of the node, evaluating it if the cached
	// value is stale, and whether it is defined.
	Value() (any, bool)

	// BindCtx binds the node to a context, replacing any earlier binding.
	// A freshly bound node is dirty.
	BindCtx(ctx Context)
	// Unbind releases all subscriptions of the node.
	Unbind()
	// Events returns the emitter of "change" events.
	Events() *events.Emitter

	// Defined reports whether the last evaluation succeeded.
	Defined() bool
	// Dirty reports whether the cached value may be stale.
	Dirty() bool
	// CacheStatus reports whether the cached value can be used, i.e. the
	// node is clean and defined.
	CacheStatus() bool

	// Clone returns an unbound copy of the node.
	Clone() Node
	IsFunctionCall() bool
	IsAssignable() bool
	// Assign assigns to the expression, which must be assignable.
	Assign(v any) error

	n() *node
	children() []Node
	compute(force bool) (any, error)
	evalIn(ctx Context) (any, error)
	childChanged(ch Node, c *Change)
	bindSelf()
	unbindSelf()
	isConst() bool
}

// node contains the state common to all nodes. It is embedded in all the
// concrete node types and implements most of Node.
type node struct {
	self    Node
	em      events.Emitter
	ctx     Context
	dirty   bool
	defined bool
	cache   any
	subs    []*events.Binding
}

func (n *node) n() *node { return n }

func (n *node) init(self Node) { n.self, n.dirty = self, true }

func (n *node) Events() *events.Emitter { return &n.em }

func (n *node) Defined() bool { return n.defined }

func (n *node) Dirty() bool { return n.dirty }

func (n *node) CacheStatus() bool { return !n.dirty && n.defined }

func (n *node) Eval(force bool) (any, error) {
	if !force && !n.dirty && n.defined {
		return n.cache, nil
	}
	v, err := n.self.compute(force)
	n.dirty = false
	n.defined = err == nil
	if err != nil {
		v = nil
	}
	n.cache = v
	return v, err
}

func (n *node) EvalWith(ctx Context) (any, error) { return n.self.evalIn(ctx) }

func (n *node) Value() (any, bool) {
	if n.CacheStatus() {
		return n.cache, true
	}
	v, err := n.Eval(false)
	return v, err == nil
}

func (n *node) BindCtx(ctx Context) {
	n.self.Unbind()
	n.ctx = ctx
	n.dirty, n.defined, n.cache = true, false, nil
	for _, ch := range n.self.children() {
		ch.BindCtx(ctx)
		if ch.isConst() {
			continue
		}
		ch := ch
		n.subs = append(n.subs, ch.Events().Bind(EventChange, func(ev *events.Event) {
			if c, ok := ev.Data.(*Change); ok {
				n.self.childChanged(ch, c)
			}
		}))
	}
	n.self.bindSelf()
}

func (n *node) Unbind() {
	for _, b := range n.subs {
		b.Unbind()
	}
	n.subs = nil
	for _, ch := range n.self.children() {
		ch.Unbind()
	}
	n.self.unbindSelf()
	n.ctx = nil
}

func (n *node) IsFunctionCall() bool { return false }

func (n *node) IsAssignable() bool { return false }

func (n *node) Assign(any) error { return assignError(n.self, ErrNotAssignable) }

func (n *node) children() []Node { return nil }

func (n *node) childChanged(Node, *Change) { n.markDirty() }

func (n *node) bindSelf() {}

func (n *node) unbindSelf() {}

func (n *node) isConst() bool { return false }

// Marks the node dirty, emitting a change on the clean to dirty transition.
func (n *node) markDirty() {
	if n.dirty {
		return
	}
	n.dirty = true
	n.em.Emit(EventChange, &Change{})
}

// Sets the cached value directly and emits it.
func (n *node) update(v any) {
	n.cache, n.defined, n.dirty = v, true, false
	n.em.Emit(EventChange, &Change{Value: v, HasValue: true})
}

// Propagates an in-place mutation of the cached value.
func (n *node) mutated(c *observe.Change) {
	if n.dirty {
		return
	}
	n.em.Emit(EventChange, &Change{Mutation: c})
}

// Evaluates all nodes, returning their values and the first error.
func evalAll(nodes []Node, force bool) ([]any, error) {
	values := make([]any, len(nodes))
	var firstErr error
	for i, ch := range nodes {
		v, err := ch.Eval(force)
		values[i] = v
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return values, firstErr
}

func evalAllIn(nodes []Node, ctx Context) ([]any, error) {
	values := make([]any, len(nodes))
	for i, ch := range nodes {
		v, err := ch.EvalWith(ctx)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// A subscription to the observable of a value, replaced whenever the value
// is resolved again.
type valueObserver struct {
	b *events.Binding
}

func (o *valueObserver) observe(v any, h func(*observe.Change)) {
	o.stop()
	if em := observe.TryObserve(v); em != nil {
		o.b = em.Bind(observe.EventChange, func(ev *events.Event) {
			if c, ok := ev.Data.(*observe.Change); ok {
				h(c)
			}
		})
	}
}

func (o *valueObserver) stop() {
	o.b.Unbind()
	o.b = nil
}

func cloneAll(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	res := make([]Node, len(nodes))
	for i, n := range nodes {
		res[i] = n.Clone()
	}
	return res
}
