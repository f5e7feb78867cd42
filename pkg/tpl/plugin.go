package tpl

import (
	"src.circular.dev/pkg/dom"
	"src.circular.dev/pkg/events"
	"src.circular.dev/pkg/scope"
)

// EventChange is the name of the event a plugin emits when it needs an
// update.
const EventChange = "change"

// Plugin is a node of a compiled template, responsible for rendering one
// source node.
type Plugin interface {
	// BindCtx binds the plugin to a context and returns the rendered nodes.
	BindCtx(ctx *scope.Scope) ([]dom.Node, error)
	// Update applies pending changes. If the rendered nodes have been
	// replaced, it returns the new nodes and true.
	Update() ([]dom.Node, bool, error)
	// Clone returns an unbound copy of the plugin, sharing the same
	// compiled source.
	Clone() Plugin
	// Unbind releases all subscriptions.
	Unbind()

	// DirtySelf reports whether the output of the plugin itself is stale.
	DirtySelf() bool
	// DirtySubtree reports whether the output of a descendant is stale.
	DirtySubtree() bool
	Bound() bool
	// Events returns the emitter of "change" events, emitted once when the
	// plugin becomes dirty.
	Events() *events.Emitter
}

// Contains the state common to all plugins.
type base struct {
	em           events.Emitter
	ctx          *scope.Scope
	dirtySelf    bool
	dirtySubtree bool
	bound        bool
}

func (b *base) Events() *events.Emitter { return &b.em }

func (b *base) DirtySelf() bool { return b.dirtySelf }

func (b *base) DirtySubtree() bool { return b.dirtySubtree }

func (b *base) Bound() bool { return b.bound }

func (b *base) bindBase(ctx *scope.Scope) {
	b.ctx = ctx
	b.dirtySelf, b.dirtySubtree, b.bound = false, false, true
}

func (b *base) unbindBase() {
	b.ctx = nil
	b.bound = false
}

func (b *base) dirty() bool { return b.dirtySelf || b.dirtySubtree }

func (b *base) selfChanged() {
	if b.dirtySelf {
		return
	}
	b.dirtySelf = true
	if !b.dirtySubtree {
		b.em.Emit(EventChange, nil)
	}
}

func (b *base) subtreeChanged() {
	if b.dirtySubtree {
		return
	}
	b.dirtySubtree = true
	if !b.dirtySelf {
		b.em.Emit(EventChange, nil)
	}
}

// Returns a handler calling f, for subscribing to the changes of children.
func on(f func()) events.Handler { return func(*events.Event) { f() } }

func isDirty(p Plugin) bool { return p.DirtySelf() || p.DirtySubtree() }
