package tpl

import (
	"strconv"
	"time"

	"src.circular.dev/pkg/dom"
	"src.circular.dev/pkg/events"
	"src.circular.dev/pkg/expr"
	"src.circular.dev/pkg/sched"
	"src.circular.dev/pkg/scope"
	"src.circular.dev/pkg/vals"
)

// Model binds the value of a form control to an assignable expression, in
// both directions.
//
// The element is updated when the expression changes, and the expression is
// assigned when the update event (by default "input") fires on the element.
// With an update interval in milliseconds, both directions are debounced
// through the scheduler. Values are only written when they differ, so a
// write on one side is never echoed back.
type Model struct {
	base
	model    expr.Node
	event    string
	interval time.Duration
	sched    sched.Scheduler
	child    Plugin

	elem       dom.Node
	nodes      []dom.Node
	elemBind   *events.Binding
	modelTimer sched.Handle
	inputTimer sched.Handle
}

const defaultUpdateEvent = "input"

func newModel(b *Build) (Plugin, error) {
	model, err := expr.Parse(b.Arg)
	if err != nil {
		return nil, pluginError("model", err, "")
	}
	if !model.IsAssignable() {
		return nil, pluginError("model", ErrNotAssignable, "cannot assign to "+b.Arg)
	}
	event := defaultUpdateEvent
	if e, ok := b.Kwargs["update_event"]; ok && e != "" {
		event = e
	}
	var interval time.Duration
	if s, ok := b.Kwargs["update_interval"]; ok {
		ms, err := strconv.Atoi(s)
		if err != nil || ms < 0 {
			return nil, pluginError("model", ErrBadArgument, "invalid update_interval: "+s)
		}
		interval = time.Duration(ms) * time.Millisecond
	}
	child, err := b.Next()
	if err != nil {
		return nil, err
	}
	return newModelFrom(model, event, interval, b.Scheduler(), child), nil
}

func newModelFrom(model expr.Node, event string, interval time.Duration, s sched.Scheduler, child Plugin) *Model {
	m := &Model{model: model, event: event, interval: interval, sched: s, child: child}
	if m.debounced() {
		model.Events().Bind(expr.EventChange, on(m.deferModelChange))
	} else {
		model.Events().Bind(expr.EventChange, func(ev *events.Event) {
			c, _ := ev.Data.(*expr.Change)
			m.modelChanged(c)
		})
	}
	child.Events().Bind(EventChange, on(m.subtreeChanged))
	return m
}

func (m *Model) debounced() bool { return m.interval > 0 && m.sched != nil }

// Clone implements Plugin.
func (m *Model) Clone() Plugin {
	return newModelFrom(m.model.Clone(), m.event, m.interval, m.sched, m.child.Clone())
}

// BindCtx implements Plugin.
func (m *Model) BindCtx(ctx *scope.Scope) ([]dom.Node, error) {
	m.unbindElem()
	m.bindBase(ctx)
	nodes, err := m.child.BindCtx(ctx)
	if err != nil {
		return nil, err
	}
	m.model.BindCtx(ctx)
	if err := m.attach(nodes); err != nil {
		return nil, err
	}
	m.modelChanged(nil)
	return nodes, nil
}

func (m *Model) attach(nodes []dom.Node) error {
	elems := dom.Elements(nodes)
	if len(elems) == 0 {
		return pluginError("model", ErrNoElement, "")
	}
	m.nodes, m.elem = nodes, elems[0]
	if m.debounced() {
		m.elemBind = m.elem.Bind(m.event, on(m.deferInputChange))
	} else {
		m.elemBind = m.elem.Bind(m.event, on(m.inputChanged))
	}
	return nil
}

func (m *Model) deferModelChange() {
	if m.modelTimer == 0 {
		m.modelTimer = m.sched.SetInterval(func() { m.modelChanged(nil) }, m.interval)
	}
}

func (m *Model) deferInputChange() {
	if m.inputTimer == 0 {
		m.inputTimer = m.sched.SetInterval(m.inputChanged, m.interval)
	}
}

// Writes the value of the expression into the element.
func (m *Model) modelChanged(c *expr.Change) {
	m.stopTimer(&m.modelTimer)
	if m.elem == nil {
		return
	}
	var v any
	if c != nil && c.HasValue {
		v = c.Value
	} else {
		var ok bool
		if v, ok = m.model.Value(); !ok {
			return
		}
	}
	if s := vals.ToString(v); m.elem.Value() != s {
		m.elem.SetValue(s)
	}
}

// Assigns the value of the element to the expression.
func (m *Model) inputChanged() {
	m.stopTimer(&m.inputTimer)
	if m.elem == nil {
		return
	}
	s := m.elem.Value()
	if v, ok := m.model.Value(); ok && vals.ToString(v) == s {
		return
	}
	if err := m.model.Assign(s); err != nil {
		logger.Printf("model %s: %v", m.model, err)
	}
}

func (m *Model) stopTimer(h *sched.Handle) {
	if *h != 0 {
		m.sched.ClearInterval(*h)
		*h = 0
	}
}

// Update implements Plugin.
func (m *Model) Update() ([]dom.Node, bool, error) {
	if !m.bound || !m.dirtySubtree {
		return nil, false, nil
	}
	m.dirtySubtree = false
	nodes, replaced, err := m.child.Update()
	if replaced {
		m.unbindElem()
		if err := m.attach(nodes); err != nil {
			return nil, false, err
		}
		m.modelChanged(nil)
	}
	return nodes, replaced, err
}

func (m *Model) unbindElem() {
	m.elemBind.Unbind()
	m.elemBind, m.elem, m.nodes = nil, nil, nil
}

// Unbind implements Plugin.
func (m *Model) Unbind() {
	m.unbindElem()
	if m.sched != nil {
		m.stopTimer(&m.modelTimer)
		m.stopTimer(&m.inputTimer)
	}
	m.model.Unbind()
	m.child.Unbind()
	m.unbindBase()
}

func (m *Model) String() string { return "<Model " + m.model.String() + ">" }
