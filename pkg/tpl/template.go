// Package tpl implements data-bound templates.
//
// A template is compiled from a markup element into a tree of plugins, one
// per source node. Directives, attributes like for="item in items" or
// model="name", select the plugins handling an element. A bound template
// keeps the document in sync with its context: changes in the context mark
// plugins dirty, and the root schedules one update pass that patches only
// the dirty parts of the document.
package tpl

import (
	"time"

	"src.circular.dev/pkg/dom"
	"src.circular.dev/pkg/sched"
	"src.circular.dev/pkg/scope"
)

// DefaultInterval is the default interval of update passes.
const DefaultInterval = 50 * time.Millisecond

// Options configures a Template.
type Options struct {
	// Scheduler runs the update passes. If nil, updates only happen when
	// Update is called.
	Scheduler sched.Scheduler
	// Interval between update passes; DefaultInterval if zero.
	Interval time.Duration
	// Registry of plugins; DefaultRegistry() if nil.
	Registry *Registry
}

// Template is a compiled template.
//
// When bound, the source element is replaced in its parent by the rendered
// nodes, which are followed by an empty comment marking their position.
type Template struct {
	opts  Options
	src   dom.Node
	root  Plugin
	fence dom.Node
	nodes []dom.Node
	timer sched.Handle
}

// New compiles a template from an element.
func New(el dom.Node, opts Options) (*Template, error) {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	root, err := NewCompiler(opts.Registry, opts.Scheduler).Compile(el)
	if err != nil {
		return nil, err
	}
	t := &Template{opts: opts, src: el, root: root}
	root.Events().Bind(EventChange, on(t.changed))
	return t, nil
}

// Root returns the root plugin.
func (t *Template) Root() Plugin { return t.root }

// Nodes returns the rendered nodes.
func (t *Template) Nodes() []dom.Node { return t.nodes }

// Pending reports whether an update pass is scheduled.
func (t *Template) Pending() bool { return t.timer != 0 }

// BindCtx binds the template to a context and renders it. Binding a bound
// template again re-renders it in place.
func (t *Template) BindCtx(ctx *scope.Scope) error {
	t.stop()
	nodes, err := t.root.BindCtx(ctx)
	if err != nil {
		return err
	}
	if t.fence == nil {
		if parent := t.src.Parent(); parent != nil {
			t.fence = t.src.OwnerDocument().CreateComment("")
			parent.ReplaceChild(t.fence, t.src)
		}
	}
	t.place(nodes)
	return nil
}

func (t *Template) place(nodes []dom.Node) {
	dom.Detach(t.nodes...)
	t.nodes = nodes
	if t.fence == nil {
		return
	}
	parent := t.fence.Parent()
	for _, n := range nodes {
		parent.InsertBefore(n, t.fence)
	}
}

func (t *Template) changed() {
	if t.timer == 0 && t.opts.Scheduler != nil {
		t.timer = t.opts.Scheduler.SetInterval(t.tick, t.opts.Interval)
	}
}

func (t *Template) tick() {
	if t.root.Bound() && isDirty(t.root) {
		if err := t.Update(); err != nil {
			logger.Printf("update: %v", err)
		}
	}
	if !isDirty(t.root) {
		t.stop()
	}
}

// Update applies all pending changes to the document.
func (t *Template) Update() error {
	nodes, replaced, err := t.root.Update()
	if replaced {
		t.place(nodes)
	}
	return err
}

func (t *Template) stop() {
	if t.timer != 0 {
		t.opts.Scheduler.ClearInterval(t.timer)
		t.timer = 0
	}
}

// Unbind releases all subscriptions and cancels any pending update.
func (t *Template) Unbind() {
	t.stop()
	t.root.Unbind()
}
