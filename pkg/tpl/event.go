package tpl

import (
	"src.circular.dev/pkg/dom"
	"src.circular.dev/pkg/events"
	"src.circular.dev/pkg/expr"
	"src.circular.dev/pkg/scope"
	"src.circular.dev/pkg/vals"
)

// Event calls a handler when a DOM event fires on the rendered elements.
// The handler is a function call expression like "remove(item)"; the DOM
// event is passed as the keyword argument event, so Go functions used as
// handlers need a trailing vals.Kwargs parameter.
type Event struct {
	base
	name    string
	handler *expr.Op
	child   Plugin

	nodes    []dom.Node
	bindings []*events.Binding
}

func newEvent(b *Build, name string) (Plugin, error) {
	h, err := expr.Parse(b.Arg)
	if err != nil {
		return nil, pluginError(name, err, "")
	}
	op, ok := h.(*expr.Op)
	if !ok || !op.IsFunctionCall() {
		return nil, pluginError(name, ErrNotFunctionCall, "handler needs to be a function call: "+b.Arg)
	}
	child, err := b.Next()
	if err != nil {
		return nil, err
	}
	return newEventFrom(name, op, child), nil
}

func newEventFrom(name string, handler *expr.Op, child Plugin) *Event {
	e := &Event{name: name, handler: handler, child: child}
	child.Events().Bind(EventChange, on(e.subtreeChanged))
	return e
}

// Clone implements Plugin.
func (e *Event) Clone() Plugin {
	return newEventFrom(e.name, e.handler.Clone().(*expr.Op), e.child.Clone())
}

// BindCtx implements Plugin.
func (e *Event) BindCtx(ctx *scope.Scope) ([]dom.Node, error) {
	e.unbindEvents()
	e.bindBase(ctx)
	nodes, err := e.child.BindCtx(ctx)
	if err != nil {
		return nil, err
	}
	e.handler.BindCtx(ctx)
	e.bindEvents(nodes)
	return nodes, nil
}

func (e *Event) bindEvents(nodes []dom.Node) {
	e.nodes = nodes
	for _, n := range dom.Elements(nodes) {
		e.bindings = append(e.bindings, n.Bind(e.name, e.handle))
	}
}

func (e *Event) unbindEvents() {
	for _, b := range e.bindings {
		b.Unbind()
	}
	e.bindings, e.nodes = nil, nil
}

func (e *Event) handle(ev *events.Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("%s handler %s panicked: %v", e.name, e.handler, r)
		}
	}()
	if _, err := e.handler.Call(nil, vals.Kwargs{"event": ev}); err != nil {
		logger.Printf("%s handler %s: %v", e.name, e.handler, err)
	}
}

// Update implements Plugin.
func (e *Event) Update() ([]dom.Node, bool, error) {
	if !e.bound || !e.dirtySubtree {
		return nil, false, nil
	}
	e.dirtySubtree = false
	nodes, replaced, err := e.child.Update()
	if replaced {
		e.unbindEvents()
		e.bindEvents(nodes)
	}
	return nodes, replaced, err
}

// Unbind implements Plugin.
func (e *Event) Unbind() {
	e.unbindEvents()
	e.handler.Unbind()
	e.child.Unbind()
	e.unbindBase()
}

func (e *Event) String() string { return "<" + e.name + " " + e.handler.String() + ">" }
